// Package unversioned provides the schema table that unversioned property
// data is decoded against.
//
// Packages cooked with unversioned properties carry no property tags; each
// value is identified only by its position in the owning struct's schema.
// The schema comes from a usmap mappings file generated from the running
// game. A loaded Usmap is read-only and safe to share between concurrent
// decodes.
package unversioned
