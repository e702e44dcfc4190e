package version

import (
	"github.com/meigma/uasset/types"
)

// Well-known custom version keys.
var (
	EditorObjectVersion    = types.GUIDFromParts(0xE4B068ED, 0xF49442E9, 0xA231DA0B, 0x2E46BB41)
	FrameworkObjectVersion = types.GUIDFromParts(0xCFFC743F, 0x43B04480, 0x939114DF, 0x171D2073)
	CoreObjectVersion      = types.GUIDFromParts(0x375EC13C, 0x06E448FB, 0xB50084F0, 0x262A717E)
	ReleaseObjectVersion   = types.GUIDFromParts(0x9C54D522, 0xA8264FBE, 0x94210746, 0x61B482D0)
	SequencerObjectVersion = types.GUIDFromParts(0x7B5AE74C, 0xD2704C10, 0xA9585798, 0x0B212A5A)
	FortniteMainBranch     = types.GUIDFromParts(0x601D1886, 0xAC644F84, 0xAA16D3DE, 0x0DEAC7D6)
	UE5ReleaseStream       = types.GUIDFromParts(0xD89B5E42, 0x24BD4D46, 0x8412ACA8, 0xDF641779)
)

// Custom version values that gate layout decisions.
const (
	// CoreEnumProperties: enums serialize their C++ form as a byte.
	CoreEnumProperties int32 = 2
	// CoreFProperties: structs carry child FProperties.
	CoreFProperties int32 = 4
	// FrameworkRemoveUFieldNext: UField no longer serializes Next and
	// struct children become a counted list.
	FrameworkRemoveUFieldNext int32 = 29
	// ReleasePropertiesSerializeRepCondition: properties carry a
	// replication condition byte.
	ReleasePropertiesSerializeRepCondition int32 = 21
	// EditorCultureInvariantTextKeyStability: untagged texts may carry a
	// culture invariant string.
	EditorCultureInvariantTextKeyStability int32 = 32
)

// KnownCustomVersions maps well-known keys to their friendly names.
var KnownCustomVersions = map[types.GUID]string{
	EditorObjectVersion:    "FEditorObjectVersion",
	FrameworkObjectVersion: "FFrameworkObjectVersion",
	CoreObjectVersion:      "FCoreObjectVersion",
	ReleaseObjectVersion:   "FReleaseObjectVersion",
	SequencerObjectVersion: "FSequencerObjectVersion",
	FortniteMainBranch:     "FFortniteMainBranchObjectVersion",
	UE5ReleaseStream:       "FUE5ReleaseStreamObjectVersion",
}

// CustomVersion is one (key, version) entry. FriendlyName is only
// serialized by the older GUID-list header format.
type CustomVersion struct {
	Key          types.GUID
	Version      int32
	FriendlyName types.FString
}

// Name returns the friendly name recorded for the entry, or the known name
// for its key.
func (c CustomVersion) Name() string {
	if c.FriendlyName.Value != "" {
		return c.FriendlyName.Value
	}
	if n, ok := KnownCustomVersions[c.Key]; ok {
		return n
	}
	return c.Key.String()
}

// CustomVersions is an ordered collection of custom versions keyed by GUID.
// Order is serialization order and is preserved across Set calls.
type CustomVersions struct {
	entries []CustomVersion
	index   map[types.GUID]int
}

// NewCustomVersions returns an empty collection.
func NewCustomVersions() *CustomVersions {
	return &CustomVersions{index: make(map[types.GUID]int)}
}

// Get returns the version recorded for key.
func (c *CustomVersions) Get(key types.GUID) (int32, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.index[key]
	if !ok {
		return 0, false
	}
	return c.entries[i].Version, true
}

// Set records version for key, overwriting an existing entry in place.
func (c *CustomVersions) Set(key types.GUID, v int32) {
	c.Add(CustomVersion{Key: key, Version: v})
}

// Add appends cv, or overwrites the version of an existing entry with the
// same key while keeping its position and friendly name.
func (c *CustomVersions) Add(cv CustomVersion) {
	if c.index == nil {
		c.index = make(map[types.GUID]int)
	}
	if i, ok := c.index[cv.Key]; ok {
		c.entries[i].Version = cv.Version
		return
	}
	c.index[cv.Key] = len(c.entries)
	c.entries = append(c.entries, cv)
}

// Len returns the number of entries.
func (c *CustomVersions) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// All returns the entries in serialization order. The slice must not be
// modified.
func (c *CustomVersions) All() []CustomVersion {
	if c == nil {
		return nil
	}
	return c.entries
}

// Clone returns an independent copy.
func (c *CustomVersions) Clone() *CustomVersions {
	out := NewCustomVersions()
	for _, e := range c.All() {
		out.Add(e)
	}
	return out
}

type introduced struct {
	engine  EngineVersion
	version int32
}

// defaultTable lists, per key, the custom version saved by the first
// release of each step. Releases between steps save the earlier value.
var defaultTable = map[types.GUID][]introduced{
	CoreObjectVersion: {
		{UE4_12, 1}, {UE4_15, CoreEnumProperties}, {UE4_22, 3}, {UE4_25, CoreFProperties}, {UE5_0, 10},
	},
	FrameworkObjectVersion: {
		{UE4_12, 6}, {UE4_15, 22}, {UE4_22, 28}, {UE4_25, 37}, {UE5_0, 42},
	},
	EditorObjectVersion: {
		{UE4_12, 14}, {UE4_22, 30}, {UE4_24, 34}, {UE4_25, 37}, {UE5_0, 40},
	},
	ReleaseObjectVersion: {
		{UE4_20, 14}, {UE4_23, 23}, {UE4_25, 28}, {UE5_0, 30},
	},
}

var defaultOrder = []types.GUID{
	CoreObjectVersion, EditorObjectVersion, FrameworkObjectVersion, ReleaseObjectVersion,
}

// DefaultCustomVersions returns the custom versions an engine release saves
// with. It is used for packages whose header records none. Unknown engines
// yield an empty collection.
func DefaultCustomVersions(e EngineVersion) *CustomVersions {
	out := NewCustomVersions()
	if !e.Valid() {
		return out
	}
	for _, key := range defaultOrder {
		var v int32
		found := false
		for _, step := range defaultTable[key] {
			if step.engine > e {
				break
			}
			v, found = step.version, true
		}
		if found {
			out.Set(key, v)
		}
	}
	return out
}
