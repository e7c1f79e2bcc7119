// Package config loads the settings of the fcd tools from a YAML file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/layers"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/parser"
)

// DefaultFile is the name of the configuration file looked up in $HOME
const DefaultFile = ".fcd.yaml"

var (
	ErrLayerIndex = errors.New("layer index out of range")
	ErrColor      = errors.New("invalid colour")
)

// Grid is the snapping grid, in logical units
type Grid struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Layer overrides one entry of the standard layer table. Fields left out
// keep the standard value.
type Layer struct {
	Index   int      `yaml:"index"`
	Name    string   `yaml:"name,omitempty"`
	Color   string   `yaml:"color,omitempty"` // "#rrggbb"
	Alpha   *float32 `yaml:"alpha,omitempty"`
	Visible *bool    `yaml:"visible,omitempty"`
}

// Server holds the settings of the HTTP API
type Server struct {
	Addr         string `yaml:"addr"`
	MaxDocuments int    `yaml:"max_documents"`
}

// Config controls how drawings are read and written by the tools.
type Config struct {
	LibraryDir          string `yaml:"library_dir"`
	Extensions          bool   `yaml:"extensions"`
	SplitStandardMacros bool   `yaml:"split_standard_macros"`

	Grid Grid `yaml:"grid"`
	Snap bool `yaml:"snap"`

	TextFont     string `yaml:"text_font"`
	TextFontSize int    `yaml:"text_font_size"`

	Defaults parser.DocumentDefaults `yaml:"defaults"`
	Layers   []Layer                 `yaml:"layers"`

	// CacheFile is a msgpack snapshot of the libraries, read instead of
	// LibraryDir when it exists
	CacheFile string `yaml:"cache_file"`
	Server    Server `yaml:"server"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Extensions:   true,
		Grid:         Grid{X: 5, Y: 5},
		Snap:         true,
		TextFont:     "Courier New",
		TextFontSize: 4,
		Defaults:     parser.DefaultDocumentDefaults(),
		Server:       Server{Addr: ":8088", MaxDocuments: 100},
	}
}

// Load reads the configuration file at path
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg, err := LoadReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// LoadReader reads a configuration from r. Settings missing from r keep
// their default value.
func LoadReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate clamps out of range settings and checks the layer overrides.
func (c *Config) Validate() error {
	if c.Grid.X < 1 {
		c.Grid.X = 1
	}
	if c.Grid.Y < 1 {
		c.Grid.Y = 1
	}
	if c.TextFontSize < 1 {
		c.TextFontSize = 1
	}
	if c.TextFont == "" {
		c.TextFont = "Courier New"
	}
	if c.Server.MaxDocuments < 1 {
		c.Server.MaxDocuments = 1
	}

	def := parser.DefaultDocumentDefaults()
	if c.Defaults.ConnectionDiameter <= 0 {
		c.Defaults.ConnectionDiameter = def.ConnectionDiameter
	}
	if c.Defaults.LineWidth <= 0 {
		c.Defaults.LineWidth = def.LineWidth
	}
	if c.Defaults.LineWidthCircles <= 0 {
		c.Defaults.LineWidthCircles = def.LineWidthCircles
	}

	for _, l := range c.Layers {
		if l.Index < 0 || l.Index >= layers.MaxLayers {
			return fmt.Errorf("layer %d: %w", l.Index, ErrLayerIndex)
		}
		if l.Color != "" {
			if _, err := parseColor(l.Color); err != nil {
				return fmt.Errorf("layer %d: %w", l.Index, err)
			}
		}
	}

	c.LibraryDir = expandHome(c.LibraryDir)
	c.CacheFile = expandHome(c.CacheFile)
	return nil
}

// ApplyLayers writes the layer overrides into ll. A changed colour, alpha
// or name marks the layer as modified.
func (c *Config) ApplyLayers(ll []*layers.Layer) error {
	for _, o := range c.Layers {
		if o.Index < 0 || o.Index >= len(ll) {
			return fmt.Errorf("layer %d: %w", o.Index, ErrLayerIndex)
		}
		l := ll[o.Index]
		if o.Color != "" {
			col, err := parseColor(o.Color)
			if err != nil {
				return fmt.Errorf("layer %d: %w", o.Index, err)
			}
			alpha := l.Alpha
			if o.Alpha != nil {
				alpha = *o.Alpha
			}
			l.SetColorARGB(layers.ARGB(col), alpha)
		} else if o.Alpha != nil {
			l.SetColorARGB(layers.ARGB(l.Color), *o.Alpha)
		}
		if o.Name != "" && o.Name != l.Description {
			l.SetDescription(o.Name)
		}
		if o.Visible != nil {
			l.Visible = *o.Visible
		}
	}
	return nil
}

// NewMapper returns a unit mapper using the grid and snap settings
func (c *Config) NewMapper() *geom.MapCoordinates {
	m := geom.NewMapCoordinates()
	m.SetXGridStep(c.Grid.X)
	m.SetYGridStep(c.Grid.Y)
	m.SetSnap(c.Snap)
	return m
}

// parseColor reads a "#rrggbb" colour
func parseColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w %q", ErrColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w %q", ErrColor, s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
