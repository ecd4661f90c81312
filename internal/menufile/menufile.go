// Package menufile loads declarative menu definitions from TOML or YAML and
// builds them into a tree.Store.
//
// A definition names an action for every selectable leaf; the host supplies
// the functions behind those names in an Actions registry.
package menufile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a menu file encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the string representation of the format.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// ErrUnknownFormat is returned for file extensions other than .toml, .yaml
// and .yml.
var ErrUnknownFormat = errors.New("unknown menu file format")

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Menu is the root of a menu definition.
type Menu struct {
	Title string `toml:"title" yaml:"title"`
	Mode  string `toml:"mode,omitempty" yaml:"mode,omitempty"`
	Items []Item `toml:"items,omitempty" yaml:"items,omitempty"`
}

// Item is one entry of a menu. An item with Items is a submenu; an item
// without is a leaf and may name an Action.
type Item struct {
	Title    string `toml:"title" yaml:"title"`
	Info     string `toml:"info,omitempty" yaml:"info,omitempty"`
	Mode     string `toml:"mode,omitempty" yaml:"mode,omitempty"`
	Selected bool   `toml:"selected,omitempty" yaml:"selected,omitempty"`
	Action   string `toml:"action,omitempty" yaml:"action,omitempty"`
	Items    []Item `toml:"items,omitempty" yaml:"items,omitempty"`
}

// Load reads and parses the menu file at path.
func Load(path string) (*Menu, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a menu definition. Unknown keys are rejected so that typos
// do not silently drop items.
func Parse(data []byte, format Format) (*Menu, error) {
	var m Menu
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownFormat
	}

	if strings.TrimSpace(m.Title) == "" {
		return nil, fmt.Errorf("menu has no title")
	}
	return &m, nil
}

// Marshal encodes m in the given format.
func Marshal(m *Menu, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(m); err != nil {
			return nil, err
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownFormat
	}
	return buf.Bytes(), nil
}
