package lispconfigs

import (
	"os"
	"path/filepath"

	"github.com/reusee/tailisp/cmds"
	"github.com/reusee/tailisp/configs"
	"github.com/reusee/tailisp/nodes"
	"github.com/reusee/tailisp/vars"
)

type ChunkSize int

var chunkSizeFlag = cmds.Var[int]("-chunk-size")

func (Module) ChunkSize(
	loader configs.Loader,
) ChunkSize {
	return ChunkSize(vars.FirstNonZero(
		*chunkSizeFlag,
		configs.First[int](loader, "chunk_size"),
		nodes.DefaultChunkSize,
	))
}

type MaxSlots int

var maxSlotsFlag = cmds.Var[int]("-max-slots")

func (Module) MaxSlots(
	loader configs.Loader,
) MaxSlots {
	n := vars.FirstNonZero(
		*maxSlotsFlag,
		configs.First[int](loader, "max_slots"),
		nodes.DefaultMaxSlots,
	)
	return MaxSlots(min(n, nodes.DefaultMaxSlots))
}

// GCInterval is the number of top-level commands between collections.
// Negative disables interval collection.
type GCInterval int

var gcIntervalFlag = cmds.Var[int]("-gc-interval")

func (Module) GCInterval(
	loader configs.Loader,
) GCInterval {
	return GCInterval(vars.FirstNonZero(
		*gcIntervalFlag,
		configs.First[int](loader, "gc_interval"),
		1,
	))
}

// GCThreshold is the number of slots in use that triggers a collection.
// Zero disables threshold collection.
type GCThreshold int

var gcThresholdFlag = cmds.Var[int]("-gc-threshold")

func (Module) GCThreshold(
	loader configs.Loader,
) GCThreshold {
	return GCThreshold(vars.FirstNonZero(
		*gcThresholdFlag,
		configs.First[int](loader, "gc_threshold"),
	))
}

// Prelude lists source files evaluated before any other input.
type Prelude []string

var preludeFlag = cmds.Collect[string]("-prelude")

func (Module) Prelude(
	loader configs.Loader,
) Prelude {
	ret := append(Prelude(nil), *preludeFlag...)
	for paths := range configs.All[[]string](loader, "prelude") {
		ret = append(ret, paths...)
	}
	return ret
}

type HistoryFile string

var historyFileFlag = cmds.Var[string]("-history-file")

func (Module) HistoryFile(
	loader configs.Loader,
) HistoryFile {
	var def string
	if dir, err := os.UserCacheDir(); err == nil {
		def = filepath.Join(dir, "tailisp_history")
	}
	return HistoryFile(vars.FirstNonZero(
		*historyFileFlag,
		configs.First[string](loader, "history_file"),
		def,
	))
}
