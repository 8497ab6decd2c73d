// Package config loads the engine configuration file. JSON and YAML are both
// accepted and share one set of keys.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// MaxOutlineWidth bounds the selection and focus outline widths.
const MaxOutlineWidth = 64

type Config struct {
	Game      Game     `json:"game" yaml:"game"`
	Input     Input    `json:"input" yaml:"input"`
	Graphics  Graphics `json:"graphics" yaml:"graphics"`
	Resources PathList `json:"resources" yaml:"resources"`
	Prefabs   PathList `json:"prefabs" yaml:"prefabs"`
	Catalogs  PathList `json:"catalogs" yaml:"catalogs"`

	// dir is the directory relative paths resolve against.
	dir string
}

type Game struct {
	Name     string `json:"name" yaml:"name"`
	State    string `json:"state" yaml:"state"`
	Theme    string `json:"theme,omitempty" yaml:"theme,omitempty"`
	LogFile  string `json:"logfile,omitempty" yaml:"logfile,omitempty"`
	LogLevel string `json:"loglevel,omitempty" yaml:"loglevel,omitempty"`
}

type Input struct {
	Sensitivity Sensitivity `json:"sensitivity" yaml:"sensitivity"`
}

// Sensitivity scales mouse deltas for camera moves, rotations and zoom.
type Sensitivity struct {
	Move   float32 `json:"move" yaml:"move"`
	Rotate float32 `json:"rotate" yaml:"rotate"`
	Zoom   float32 `json:"zoom" yaml:"zoom"`
}

type Graphics struct {
	Width      int     `json:"width" yaml:"width"`
	Height     int     `json:"height" yaml:"height"`
	Fullscreen bool    `json:"fullscreen" yaml:"fullscreen"`
	Resizable  bool    `json:"resizable" yaml:"resizable"`
	Selection  Outline `json:"selection" yaml:"selection"`
	Focus      Outline `json:"focus" yaml:"focus"`
	Font       Font    `json:"font" yaml:"font"`
}

// Outline is the contour drawn around selected or focused models. Color
// channels are in [0,1].
type Outline struct {
	Width float32    `json:"width" yaml:"width"`
	Color [4]float32 `json:"color" yaml:"color"`
}

type Font struct {
	Path  string     `json:"path,omitempty" yaml:"path,omitempty"`
	Size  float32    `json:"size" yaml:"size"`
	Color [4]float32 `json:"color" yaml:"color"`
}

// Default is the configuration missing keys fall back to.
func Default() *Config {
	return &Config{
		Game: Game{Name: "floorplan", LogLevel: "info"},
		Input: Input{Sensitivity: Sensitivity{
			Move:   100,
			Rotate: 100,
			Zoom:   100,
		}},
		Graphics: Graphics{
			Width:     1280,
			Height:    720,
			Resizable: true,
			Selection: Outline{Width: 3, Color: [4]float32{1, 0.6, 0, 1}},
			Focus:     Outline{Width: 2, Color: [4]float32{0.2, 0.6, 1, 1}},
			Font:      Font{Size: 13, Color: [4]float32{0.1, 0.1, 0.1, 1}},
		},
	}
}

// Load reads a .json, .yaml or .yml file over Default and validates it.
// Relative paths in the file resolve against its directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c.dir = filepath.Dir(path)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Resolve makes p absolute against the config file's directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Validate checks value ranges and that every listed file is named once.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: resolution %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height))
	}
	errs = append(errs,
		c.Graphics.Selection.validate("selection"),
		c.Graphics.Focus.validate("focus"),
		checkColor("font.color", c.Graphics.Font.Color),
	)
	if c.Graphics.Font.Size <= 0 {
		errs = append(errs, fmt.Errorf("%w: font size %g", ErrInvalid, c.Graphics.Font.Size))
	}

	seen := make(map[string]string)
	for _, list := range []struct {
		key   string
		paths PathList
	}{
		{"resources", c.Resources},
		{"prefabs", c.Prefabs},
		{"catalogs", c.Catalogs},
	} {
		for i, p := range list.paths {
			if strings.TrimSpace(p) == "" {
				errs = append(errs, fmt.Errorf("%w: %s[%d] is empty", ErrInvalid, list.key, i))
				continue
			}
			if prev, dup := seen[p]; dup {
				errs = append(errs, fmt.Errorf("%w: %s listed in %s and %s", ErrInvalid, p, prev, list.key))
				continue
			}
			seen[p] = list.key
		}
	}
	return errors.Join(errs...)
}

func (o Outline) validate(key string) error {
	if o.Width <= 0 || o.Width >= MaxOutlineWidth {
		return fmt.Errorf("%w: %s.width %g not in (0, %d)", ErrInvalid, key, o.Width, MaxOutlineWidth)
	}
	return checkColor(key+".color", o.Color)
}

func checkColor(key string, c [4]float32) error {
	for i, v := range c {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s[%d] = %g not in [0, 1]", ErrInvalid, key, i, v)
		}
	}
	return nil
}

// Files resolves every listed file against the config directory. Missing or
// empty files are reported as errors.
func (c *Config) Files() ([]string, error) {
	var all []string
	all = append(all, c.Resources...)
	all = append(all, c.Prefabs...)
	all = append(all, c.Catalogs...)

	var errs []error
	out := make([]string, 0, len(all))
	for _, p := range all {
		full := c.Resolve(p)
		info, err := os.Stat(full)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
		case info.Size() == 0:
			errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvalid, full))
		default:
			out = append(out, full)
		}
	}
	return out, errors.Join(errs...)
}

// PathList is one path or a list of paths.
type PathList []string

func (p *PathList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*p = PathList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("path list: %w", err)
	}
	*p = many
	return nil
}

func (p *PathList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = PathList{node.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return fmt.Errorf("path list: %w", err)
		}
		*p = many
		return nil
	}
	return fmt.Errorf("path list: unexpected yaml node at line %d", node.Line)
}
