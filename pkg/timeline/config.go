package timeline

import (
	"flag"
	"fmt"
	"runtime"

	_ "go.uber.org/automaxprocs"
)

// Mode selects how the intervals of a thread are laid out.
type Mode string

const (
	// ModeMarkers packs intervals into rows per marker name.
	ModeMarkers Mode = "markers"
	// ModeTracer treats intervals as properly nested calls and builds a call
	// tree with self-time samples.
	ModeTracer Mode = "tracer"
)

type Config struct {
	Mode        Mode `yaml:"mode"`
	Concurrency int  `yaml:"concurrency"`
	CacheSize   int  `yaml:"cache_size"`
}

func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.Mode = ModeMarkers
	f.Func("timeline.mode", "Layout of the intervals: markers or tracer. (default markers)", func(s string) error {
		cfg.Mode = Mode(s)
		return cfg.Validate()
	})
	f.IntVar(&cfg.Concurrency, "timeline.concurrency", runtime.GOMAXPROCS(0), "Number of threads processed concurrently.")
	f.IntVar(&cfg.CacheSize, "timeline.cache-size", 64, "Number of thread results kept in memory. 0 disables the cache.")
}

func (cfg *Config) Validate() error {
	switch cfg.Mode {
	case ModeMarkers, ModeTracer:
	default:
		return fmt.Errorf("unknown timeline mode %q", cfg.Mode)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("timeline concurrency must be positive, got %d", cfg.Concurrency)
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("timeline cache size must not be negative, got %d", cfg.CacheSize)
	}
	return nil
}
