// Package types holds the value types shared by every layer of the package
// codec: names, package indices, GUIDs, strings and import records.
package types
