/*
 * config.go, part of molview.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package config loads the molview YAML configuration, with defaults for
// every value and overrides from .env files and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/timeline"
)

// Environment variables that override the file.
const (
	EnvLogLevel      = "MOLVIEW_LOG_LEVEL"
	EnvLogFormat     = "MOLVIEW_LOG_FORMAT"
	EnvLogOutput     = "MOLVIEW_LOG_OUTPUT"
	EnvBondMult      = "MOLVIEW_BOND_MULTIPLIER"
	EnvFrameDuration = "MOLVIEW_FRAME_DURATION"
)

type Config struct {
	Bonds    BondsConfig    `yaml:"bonds"`
	Timeline TimelineConfig `yaml:"timeline"`
	Log      LogConfig      `yaml:"log"`
}

type BondsConfig struct {
	Enabled         bool    `yaml:"enabled"`
	VdwMultiplier   float64 `yaml:"vdw_multiplier"`
	MaxDistance     float64 `yaml:"max_distance"`
	MinDistance     float64 `yaml:"min_distance"`
	SameResidueOnly bool    `yaml:"same_residue_only"`
	InferOrder      bool    `yaml:"infer_order"`
	UseSpatialIndex bool    `yaml:"use_spatial_index"`
	Workers         int     `yaml:"workers"`
}

type TimelineConfig struct {
	FrameDuration float64 `yaml:"frame_duration"`
	Speed         float64 `yaml:"speed"`
	Loop          bool    `yaml:"loop"`
	Interpolate   bool    `yaml:"interpolate"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	b := chem.DefaultBondConfig()
	t := timeline.DefaultOptions()
	return &Config{
		Bonds: BondsConfig{
			Enabled:         b.Enabled,
			VdwMultiplier:   b.VdwMultiplier,
			MaxDistance:     b.MaxDistance,
			MinDistance:     b.MinDistance,
			SameResidueOnly: b.SameResidueOnly,
			InferOrder:      b.InferOrder,
			UseSpatialIndex: true,
			Workers:         0,
		},
		Timeline: TimelineConfig{
			FrameDuration: t.FrameDuration,
			Speed:         t.Speed,
			Loop:          t.Loop,
			Interpolate:   t.Interpolate,
		},
		Log: LogConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

// Parse reads a configuration from r. Values missing in r keep their defaults;
// unknown keys are an error.
func Parse(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// Load reads the configuration file at path. A missing file gives the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadEnv loads the given .env files (".env" if none) into the environment,
// ignoring missing ones, and applies the MOLVIEW_* overrides to c.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return c.ApplyEnv()
}

// ApplyEnv applies the MOLVIEW_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvLogOutput); v != "" {
		c.Log.Output = v
	}
	float := func(name string, dst *float64) error {
		v := os.Getenv(name)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = f
		return nil
	}
	if err := float(EnvBondMult, &c.Bonds.VdwMultiplier); err != nil {
		return err
	}
	return float(EnvFrameDuration, &c.Timeline.FrameDuration)
}

// Validate checks the ranges of every section.
func (c *Config) Validate() error {
	if err := c.BondConfig().Validate(); err != nil {
		return err
	}
	if c.Timeline.FrameDuration <= 0 {
		return fmt.Errorf("timeline.frame_duration must be positive, got %g", c.Timeline.FrameDuration)
	}
	if c.Timeline.Speed < timeline.MinSpeed || c.Timeline.Speed > timeline.MaxSpeed {
		return fmt.Errorf("timeline.speed must be within [%g, %g], got %g", timeline.MinSpeed, timeline.MaxSpeed, c.Timeline.Speed)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format '%s'", c.Log.Format)
	}
	return nil
}

// BondConfig converts the bonds section.
func (c *Config) BondConfig() chem.BondConfig {
	return chem.BondConfig{
		Enabled:         c.Bonds.Enabled,
		VdwMultiplier:   c.Bonds.VdwMultiplier,
		MaxDistance:     c.Bonds.MaxDistance,
		MinDistance:     c.Bonds.MinDistance,
		SameResidueOnly: c.Bonds.SameResidueOnly,
		InferOrder:      c.Bonds.InferOrder,
		UseSpatialIndex: c.Bonds.UseSpatialIndex,
		Workers:         c.Bonds.Workers,
	}
}

// TimelineOptions converts the timeline section.
func (c *Config) TimelineOptions() timeline.Options {
	return timeline.Options{
		FrameDuration: c.Timeline.FrameDuration,
		Speed:         c.Timeline.Speed,
		Loop:          c.Timeline.Loop,
		Interpolate:   c.Timeline.Interpolate,
	}
}
