// Package properties decodes and encodes the property lists that make up
// the serialized state of most package objects.
//
// Two wire forms exist. Tagged lists prefix every value with a tag naming
// the property, its type and its size, and end with a "None" name.
// Unversioned lists, written by cooked games, drop the tags and instead
// start with a compact header selecting which slots of the owning struct's
// schema carry a non-zero value; decoding them requires a mappings file.
//
// A tagged property whose type is unknown, or whose value does not decode
// to exactly its recorded size, is kept as a RawValue holding the verbatim
// tag data and value bytes, and decoding continues with the next property.
package properties
