// Package version describes the serialization versions a package can carry:
// the UE4 and UE5 object versions, engine releases, and the ordered set of
// custom versions keyed by GUID.
//
// Layout decisions across the codec consult these values. A custom version
// that a package does not record is "not present"; every branch that depends
// on one states what it does in that case.
package version
