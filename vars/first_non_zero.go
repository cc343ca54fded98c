package vars

// FirstNonZero returns the first argument that is not the zero value of T.
// Callers list sources by precedence: flag, config file, default.
func FirstNonZero[T comparable](values ...T) T {
	var zero T
	for _, value := range values {
		if value == zero {
			continue
		}
		return value
	}
	return zero
}
