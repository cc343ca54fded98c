package modes

// Mode selects how strictly the runtime checks itself.
type Mode uint8

const (
	ModeProduction Mode = iota + 1
	// ModeDevelopment verifies arena invariants around every collection.
	ModeDevelopment
)

func (m Mode) String() string {
	switch m {
	case ModeProduction:
		return "production"
	case ModeDevelopment:
		return "development"
	}
	return "unknown"
}

func (m Mode) CheckInvariants() bool {
	return m == ModeDevelopment
}
