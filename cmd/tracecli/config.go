package main

import (
	"bytes"
	"flag"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/grafana/tracetiming/pkg/timeline"
	"github.com/grafana/tracetiming/pkg/util"
)

type config struct {
	Log      util.LogConfig  `yaml:"log"`
	Timeline timeline.Config `yaml:"timeline"`
}

func (c *config) RegisterFlags(f *flag.FlagSet) {
	c.Log.RegisterFlags(f)
	c.Timeline.RegisterFlags(f)
}

func (c *config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Timeline.Validate()
}

// applyFlags overrides conf with the command line flags that were set.
func applyFlags(conf *config) {
	if cfg.verbose {
		conf.Log.Level = "debug"
	}
	if cfg.mode != "" {
		conf.Timeline.Mode = timeline.Mode(cfg.mode)
	}
	if cfg.concurrency > 0 {
		conf.Timeline.Concurrency = cfg.concurrency
	}
}

func defaultConfig() config {
	var c config
	c.RegisterFlags(flag.NewFlagSet("defaults", flag.PanicOnError))
	return c
}

// loadConfig returns the defaults overridden by the YAML file at path, if
// any.
func loadConfig(path string) (config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "reading config file")
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err = dec.Decode(&c); err != nil && err != io.EOF {
		return c, errors.Wrapf(err, "parsing config file %s", path)
	}
	return c, c.Validate()
}
