// Package archive provides the positioned little-endian readers and writers
// every part of the codec serializes through.
//
// Both carry a Context: the package-wide state (object and custom versions,
// name table, imports, schema) that layout decisions consult. Readers and
// writers use sticky errors: after the first failure every further read
// returns a zero value, and Err reports what went wrong.
//
// Writer is an interface so it can be decorated. Passthrough forwards every
// method to the wrapped writer; decorators embed it and override only the
// primitives they intercept.
package archive
