package util

import (
	"flag"
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// LogConfig selects the format and the verbosity of the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (cfg *LogConfig) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&cfg.Level, "log.level", "info", "Only log messages with the given severity or above. Valid levels: [debug, info, warn, error]")
	f.StringVar(&cfg.Format, "log.format", "logfmt", "Output log messages in the given format. Valid formats: [logfmt, json]")
}

func (cfg *LogConfig) Validate() error {
	if _, err := levelFilter(cfg.Level); err != nil {
		return err
	}
	switch cfg.Format {
	case "logfmt", "json", "":
		return nil
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func levelFilter(lvl string) (level.Option, error) {
	switch lvl {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}
}

// NewLogger builds a go-kit logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (log.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var logger log.Logger
	if cfg.Format == "json" {
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	} else {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	}
	opt, _ := levelFilter(cfg.Level)
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}
