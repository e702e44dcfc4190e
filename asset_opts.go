package uasset

import (
	"log/slog"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/unversioned"
	"github.com/meigma/uasset/version"
)

// DefaultMaxAssetSize is the default limit on the combined size of a
// package and its export data.
const DefaultMaxAssetSize = 2 << 30

type config struct {
	engine       version.EngineVersion
	schema       unversioned.Schema
	logger       *slog.Logger
	exportData   []byte
	headerOnly   bool
	rawExports   bool
	maxAssetSize uint64
	overrides    archive.Overrides
}

func newConfig(opts []Option) config {
	c := config{maxAssetSize: DefaultMaxAssetSize}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures Decode, New and DecodeFromContainer.
type Option func(*config)

// WithEngineVersion sets the engine release used for unversioned packages.
// Versions recorded in a package header always take precedence.
func WithEngineVersion(e version.EngineVersion) Option {
	return func(c *config) {
		c.engine = e
	}
}

// WithMappings sets the schema used to decode unversioned properties.
// A schema is read-only and may be shared across decodes.
func WithMappings(s unversioned.Schema) Option {
	return func(c *config) {
		c.schema = s
	}
}

// WithLogger sets the logger for decode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithExportData supplies the .uexp half of a split package. Serial
// offsets are absolute in the concatenation of both halves.
func WithExportData(uexp []byte) Option {
	return func(c *config) {
		c.exportData = uexp
	}
}

// WithHeaderOnly stops decoding after the tables. Every export becomes an
// UnknownExport and the asset cannot be encoded.
func WithHeaderOnly() Option {
	return func(c *config) {
		c.headerOnly = true
	}
}

// WithRawExports keeps every export payload as raw bytes.
func WithRawExports() Option {
	return func(c *config) {
		c.rawExports = true
	}
}

// WithMaxAssetSize limits the combined size of package and export data.
// Set limit to 0 to disable the limit.
func WithMaxAssetSize(limit uint64) Option {
	return func(c *config) {
		c.maxAssetSize = limit
	}
}

// WithMapKeyStruct names the struct type of the keys of map property name.
func WithMapKeyStruct(name, structType string) Option {
	return func(c *config) {
		setOverride(&c.overrides.MapKey, name, structType)
	}
}

// WithMapValueStruct names the struct type of the values of map property
// name.
func WithMapValueStruct(name, structType string) Option {
	return func(c *config) {
		setOverride(&c.overrides.MapValue, name, structType)
	}
}

// WithArrayStructType names the struct type of the elements of array or
// set property name.
func WithArrayStructType(name, structType string) Option {
	return func(c *config) {
		setOverride(&c.overrides.ArrayStruct, name, structType)
	}
}

func setOverride(m *map[string]string, name, structType string) {
	if *m == nil {
		*m = make(map[string]string)
	}
	(*m)[name] = structType
}
