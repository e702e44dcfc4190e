// Package exports implements the export table and the payload layouts of
// exported objects.
//
// Every export starts life as a BaseExport read from the export table.
// Decoding then refines it, by the name of its class, into a richer
// variant that embeds the simpler one it extends:
//
//	BaseExport
//	├── UnknownExport   header only, payload not read
//	├── RawExport       payload kept verbatim
//	└── NormalExport    property list
//	    ├── StructExport
//	    │   ├── ScriptStructExport
//	    │   ├── FunctionExport
//	    │   └── ClassExport
//	    ├── EnumExport
//	    ├── PropertyExport
//	    ├── StringTableExport
//	    └── DataTableExport
//
// A payload that cannot be decoded, or whose class cannot be resolved,
// becomes a RawExport so the package still re-encodes byte for byte.
package exports
