package uasset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meigma/uasset/unversioned"
	"github.com/meigma/uasset/version"
)

// Config is the file form of the decode options.
//
//	engine_version: UE4_27
//	mappings: ${GAME_DIR}/Mappings.usmap
//	max_asset_size: 536870912
//	overrides:
//	  map_key:
//	    Inventory: ItemId
//	  array_struct:
//	    Waypoints: Vector
//
// Environment variables are expanded before parsing.
type Config struct {
	EngineVersion version.EngineVersion `yaml:"engine_version"`
	Mappings      string                `yaml:"mappings"`
	MaxAssetSize  *uint64               `yaml:"max_asset_size"`
	Overrides     ConfigOverrides       `yaml:"overrides"`
}

// ConfigOverrides names the struct types of container elements by
// property name.
type ConfigOverrides struct {
	MapKey      map[string]string `yaml:"map_key"`
	MapValue    map[string]string `yaml:"map_value"`
	ArrayStruct map[string]string `yaml:"array_struct"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Options converts c into decode options, loading the mappings file when
// one is named.
func (c *Config) Options() ([]Option, error) {
	var opts []Option
	if c.EngineVersion.Valid() {
		opts = append(opts, WithEngineVersion(c.EngineVersion))
	}
	if c.Mappings != "" {
		m, err := unversioned.Load(c.Mappings)
		if err != nil {
			return nil, fmt.Errorf("load mappings: %w", err)
		}
		opts = append(opts, WithMappings(m))
	}
	if c.MaxAssetSize != nil {
		opts = append(opts, WithMaxAssetSize(*c.MaxAssetSize))
	}
	for name, st := range c.Overrides.MapKey {
		opts = append(opts, WithMapKeyStruct(name, st))
	}
	for name, st := range c.Overrides.MapValue {
		opts = append(opts, WithMapValueStruct(name, st))
	}
	for name, st := range c.Overrides.ArrayStruct {
		opts = append(opts, WithArrayStructType(name, st))
	}
	return opts, nil
}
