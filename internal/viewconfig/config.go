// Package viewconfig decides which panels a run's report shows and builds the
// panel document from logged rows.
package viewconfig

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Config is a view configuration file.
type Config struct {
	// Index names the columns that identify a run, in path order
	Index  FieldList     `yaml:"index" mapstructure:"index"`
	Panels []PanelConfig `yaml:"panels" mapstructure:"panels"`
}

// PanelConfig selects the columns of one panel.
type PanelConfig struct {
	Name    string         `yaml:"name" mapstructure:"name"`
	Columns Columns        `yaml:"columns" mapstructure:"columns"`
	Type    core.PanelType `yaml:"type" mapstructure:"type"`
	Index   FieldList      `yaml:"index,omitempty" mapstructure:"index"`
	Slider  string         `yaml:"slider,omitempty" mapstructure:"slider"`
}

// FieldList is one or more column names. It decodes from a string or a list.
type FieldList []string

// MarshalYAML writes a single field as a plain string.
func (f FieldList) MarshalYAML() (any, error) {
	if len(f) == 1 {
		return f[0], nil
	}
	return []string(f), nil
}

// Columns is "*" for every column, or an explicit list.
type Columns struct {
	All   bool
	Names []string
}

// AllColumns selects every column.
var AllColumns = Columns{All: true}

// MarshalYAML writes "*" or the list of names.
func (c Columns) MarshalYAML() (any, error) {
	if c.All {
		return "*", nil
	}
	return c.Names, nil
}

// UnknownFieldError reports a key the view config does not define.
type UnknownFieldError struct {
	Where string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q in %s", e.Field, e.Where)
}

var (
	knownTopFields   = map[string]bool{"index": true, "panels": true}
	knownPanelFields = map[string]bool{"name": true, "columns": true, "type": true, "index": true, "slider": true}
)

// Load reads a view config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read view config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes view config YAML. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := checkFields(raw); err != nil {
		return nil, err
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(fieldListHook, columnsHook),
		Result:     &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode view config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func checkFields(raw map[string]any) error {
	for _, key := range sortedKeys(raw) {
		if !knownTopFields[key] {
			return &UnknownFieldError{Where: "view config", Field: key}
		}
	}
	panels, _ := raw["panels"].([]any)
	for i, p := range panels {
		m, ok := p.(map[string]any)
		if !ok {
			return fmt.Errorf("panels[%d]: expected a mapping", i)
		}
		for _, key := range sortedKeys(m) {
			if !knownPanelFields[key] {
				return &UnknownFieldError{Where: fmt.Sprintf("panels[%d]", i), Field: key}
			}
		}
	}
	return nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Panels))
	for i, p := range c.Panels {
		if p.Name == "" {
			return fmt.Errorf("panels[%d]: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("panels[%d]: duplicate panel name %q", i, p.Name)
		}
		seen[p.Name] = true
		if !p.Columns.All && len(p.Columns.Names) == 0 {
			return fmt.Errorf("panel %q: columns is required", p.Name)
		}
	}
	return nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode view config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write view config: %w", err)
	}
	return nil
}

var (
	fieldListType = reflect.TypeOf(FieldList{})
	columnsType   = reflect.TypeOf(Columns{})
)

// fieldListHook accepts `index: step` as well as `index: [step]`.
func fieldListHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != fieldListType {
		return data, nil
	}
	switch v := data.(type) {
	case nil:
		return FieldList(nil), nil
	case string:
		return FieldList{v}, nil
	case []any:
		out := make(FieldList, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected field name, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return data, nil
	}
}

// columnsHook accepts `columns: "*"`, a single name, or a list of names.
func columnsHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != columnsType {
		return data, nil
	}
	switch v := data.(type) {
	case Columns:
		return v, nil
	case string:
		if v == "*" {
			return AllColumns, nil
		}
		return Columns{Names: []string{v}}, nil
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected column name, got %T", item)
			}
			names = append(names, s)
		}
		return Columns{Names: names}, nil
	default:
		return nil, fmt.Errorf("columns must be \"*\" or a list, got %T", data)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
