// Package uasset decodes and encodes Unreal Engine package files.
//
// A package is a .uasset header, optionally followed by a .uexp file that
// holds the export payloads. [Decode] parses both into an [Asset] whose
// tables, exports and property values can be inspected and edited, and
// [Asset.Encode] writes it back. An asset decoded and encoded without
// changes reproduces its input byte for byte.
//
// # Quick Start
//
// Decode a split package and read a property:
//
//	header, _ := os.ReadFile("Hero.uasset")
//	data, _ := os.ReadFile("Hero.uexp")
//	a, err := uasset.Decode(header,
//	    uasset.WithExportData(data),
//	    uasset.WithEngineVersion(version.UE4_27),
//	)
//	if err != nil {
//	    return err
//	}
//	e, _ := a.Export(1)
//	if n := e.Normal(); n != nil {
//	    p, ok := n.Properties.Find("Health")
//	    ...
//	}
//
// Write it back out:
//
//	header, data, err = a.EncodeSplit()
//
// # Versions
//
// Packages record the object and custom versions they were saved with, and
// every layout decision follows them. Cooked packages saved unversioned
// record none; decode those with [WithEngineVersion], and with
// [WithMappings] when their properties are serialized without tags.
//
// # Errors
//
// Decode failures are *[Error] values carrying the stage and byte offset
// where decoding stopped. Match kinds with errors.Is against
// [ErrStructural], [ErrUnresolvedReference], [ErrUnknownType] and
// [ErrEncodeSizeMismatch]. Exports whose payload cannot be interpreted are
// kept as [exports.RawExport] and still encode to their original bytes.
//
// # Containers
//
// [DecodeFromContainer] reads a package out of any [Container]; the bundle
// subpackage provides a zstd compressed, digest verified container for
// packing many packages together.
package uasset
