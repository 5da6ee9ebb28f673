// Package config holds every tunable of the segmentation pipeline and the
// inspection stage in a single YAML-backed struct.
//
// Defaults reproduce the heuristics the pipeline was tuned with. A config
// file only needs to name the values it changes; everything else keeps its
// default.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned (wrapped) by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid configuration")

// Kernel is a rectangular structuring element applied Iterations times.
type Kernel struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	Iterations int `yaml:"iterations"`
}

// Canny holds the hysteresis thresholds on the Sobel magnitude scale.
type Canny struct {
	Low  int `yaml:"low"`
	High int `yaml:"high"`
}

// Loader configures page rasterization.
type Loader struct {
	DPI         int     `yaml:"dpi"`
	MarginRatio float64 `yaml:"margin_ratio"`
}

// Views configures the view detector.
type Views struct {
	Canny     Canny   `yaml:"canny"`
	Dilation  Kernel  `yaml:"dilation"`
	MinArea   int     `yaml:"min_area"`
	MinAspect float64 `yaml:"min_aspect"`
	MaxAspect float64 `yaml:"max_aspect"`
}

// Notes configures the notes detector.
type Notes struct {
	BlockSize         int     `yaml:"block_size"`
	Offset            int     `yaml:"offset"`
	RowDensity        float64 `yaml:"row_density"`
	MaxHeightFraction float64 `yaml:"max_height_fraction"`
}

// TitleBlock configures the title block detector.
type TitleBlock struct {
	BandFraction     float64 `yaml:"band_fraction"`
	Canny            Canny   `yaml:"canny"`
	Dilation         Kernel  `yaml:"dilation"`
	MinArea          int     `yaml:"min_area"`
	MinWidthFraction float64 `yaml:"min_width_fraction"`
}

// Overlay configures the debug overlay colours (hex, "#RRGGBB").
type Overlay struct {
	ViewColor  string `yaml:"view_color"`
	OtherColor string `yaml:"other_color"`
	Thickness  int    `yaml:"thickness"`
}

// Inspection configures the vision model used for rule evaluation.
type Inspection struct {
	ProjectID    string  `yaml:"project_id"`
	Region       string  `yaml:"region"`
	Model        string  `yaml:"model"`
	MaxAttempts  int     `yaml:"max_attempts"`
	InitialDelay float64 `yaml:"initial_delay_seconds"`
}

// Publish configures the optional upload of a run directory.
type Publish struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// Config is the complete configuration surface.
type Config struct {
	Loader     Loader     `yaml:"loader"`
	Views      Views      `yaml:"views"`
	Notes      Notes      `yaml:"notes"`
	TitleBlock TitleBlock `yaml:"title_block"`
	Overlay    Overlay    `yaml:"overlay"`
	Inspection Inspection `yaml:"inspection"`
	Publish    Publish    `yaml:"publish"`
}

// Default returns the configuration the heuristics were tuned with.
func Default() *Config {
	return &Config{
		Loader: Loader{
			DPI:         400,
			MarginRatio: 0.03,
		},
		Views: Views{
			Canny:     Canny{Low: 50, High: 150},
			Dilation:  Kernel{Width: 15, Height: 15, Iterations: 2},
			MinArea:   30000,
			MinAspect: 0.25,
			MaxAspect: 4.5,
		},
		Notes: Notes{
			BlockSize:         41,
			Offset:            15,
			RowDensity:        0.15,
			MaxHeightFraction: 0.4,
		},
		TitleBlock: TitleBlock{
			BandFraction:     0.72,
			Canny:            Canny{Low: 50, High: 150},
			Dilation:         Kernel{Width: 50, Height: 10, Iterations: 2},
			MinArea:          40000,
			MinWidthFraction: 0.25,
		},
		Overlay: Overlay{
			ViewColor:  "#00FF00",
			OtherColor: "#FF0000",
			Thickness:  2,
		},
		Inspection: Inspection{
			Region:       "us-central1",
			Model:        "gemini-2.5-flash",
			MaxAttempts:  3,
			InitialDelay: 10,
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Inspection.ProjectID = getEnv("GDT_PROJECT_ID", c.Inspection.ProjectID)
	c.Inspection.Region = getEnv("GDT_REGION", c.Inspection.Region)
	c.Inspection.Model = getEnv("GDT_MODEL", c.Inspection.Model)
	c.Publish.Bucket = getEnv("GDT_BUCKET", c.Publish.Bucket)
}

// getEnv reads an environment variable or returns the fallback.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// Validate rejects settings the detectors cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Loader.DPI <= 0:
		return fmt.Errorf("%w: loader.dpi must be positive", ErrInvalid)
	case c.Loader.MarginRatio < 0 || c.Loader.MarginRatio >= 0.5:
		return fmt.Errorf("%w: loader.margin_ratio must be in [0, 0.5)", ErrInvalid)
	case c.Views.MinAspect >= c.Views.MaxAspect:
		return fmt.Errorf("%w: views.min_aspect must be below views.max_aspect", ErrInvalid)
	case c.Notes.BlockSize < 3 || c.Notes.BlockSize%2 == 0:
		return fmt.Errorf("%w: notes.block_size must be odd and at least 3", ErrInvalid)
	case c.Notes.MaxHeightFraction <= 0 || c.Notes.MaxHeightFraction > 1:
		return fmt.Errorf("%w: notes.max_height_fraction must be in (0, 1]", ErrInvalid)
	case c.TitleBlock.BandFraction < 0 || c.TitleBlock.BandFraction >= 1:
		return fmt.Errorf("%w: title_block.band_fraction must be in [0, 1)", ErrInvalid)
	case c.Overlay.Thickness <= 0:
		return fmt.Errorf("%w: overlay.thickness must be positive", ErrInvalid)
	case c.Inspection.MaxAttempts <= 0:
		return fmt.Errorf("%w: inspection.max_attempts must be positive", ErrInvalid)
	}
	for name, k := range map[string]Kernel{
		"views.dilation":       c.Views.Dilation,
		"title_block.dilation": c.TitleBlock.Dilation,
	} {
		if k.Width <= 0 || k.Height <= 0 || k.Iterations < 0 {
			return fmt.Errorf("%w: %s needs a positive size and non-negative iterations", ErrInvalid, name)
		}
	}
	for name, t := range map[string]Canny{
		"views.canny":       c.Views.Canny,
		"title_block.canny": c.TitleBlock.Canny,
	} {
		if t.Low < 0 || t.High < t.Low {
			return fmt.Errorf("%w: %s needs 0 <= low <= high", ErrInvalid, name)
		}
	}
	return nil
}
