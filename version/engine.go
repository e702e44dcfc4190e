package version

import (
	"fmt"
	"strings"
)

// EngineVersion identifies an engine release. It supplies object and custom
// versions for packages saved without them.
type EngineVersion int

const (
	EngineUnknown EngineVersion = iota
	UE4_0
	UE4_1
	UE4_2
	UE4_3
	UE4_4
	UE4_5
	UE4_6
	UE4_7
	UE4_8
	UE4_9
	UE4_10
	UE4_11
	UE4_12
	UE4_13
	UE4_14
	UE4_15
	UE4_16
	UE4_17
	UE4_18
	UE4_19
	UE4_20
	UE4_21
	UE4_22
	UE4_23
	UE4_24
	UE4_25
	UE4_26
	UE4_27
	UE5_0
	UE5_1
	UE5_2
	UE5_3
	engineVersionCount
)

// LatestEngineVersion is the newest release the codec knows.
const LatestEngineVersion = engineVersionCount - 1

type engineInfo struct {
	ue4 ObjectVersion
	ue5 ObjectVersionUE5
}

var engineTable = [engineVersionCount]engineInfo{
	EngineUnknown: {},
	UE4_0:         {ue4: 342},
	UE4_1:         {ue4: 352},
	UE4_2:         {ue4: 363},
	UE4_3:         {ue4: 382},
	UE4_4:         {ue4: 385},
	UE4_5:         {ue4: 401},
	UE4_6:         {ue4: 413},
	UE4_7:         {ue4: 434},
	UE4_8:         {ue4: 451},
	UE4_9:         {ue4: 482},
	UE4_10:        {ue4: 482},
	UE4_11:        {ue4: 498},
	UE4_12:        {ue4: 504},
	UE4_13:        {ue4: 505},
	UE4_14:        {ue4: 508},
	UE4_15:        {ue4: 510},
	UE4_16:        {ue4: 513},
	UE4_17:        {ue4: 513},
	UE4_18:        {ue4: 513},
	UE4_19:        {ue4: 514},
	UE4_20:        {ue4: 516},
	UE4_21:        {ue4: 517},
	UE4_22:        {ue4: 517},
	UE4_23:        {ue4: 517},
	UE4_24:        {ue4: 518},
	UE4_25:        {ue4: 518},
	UE4_26:        {ue4: 519},
	UE4_27:        {ue4: 522},
	UE5_0:         {ue4: 522, ue5: UE5LargeWorldCoordinates},
	UE5_1:         {ue4: 522, ue5: UE5AddSoftObjectPathList},
	UE5_2:         {ue4: 522, ue5: UE5DataResources},
	UE5_3:         {ue4: 522, ue5: UE5DataResources},
}

// ObjectVersion returns the UE4 object version saved by e.
func (e EngineVersion) ObjectVersion() ObjectVersion {
	if !e.Valid() {
		return Unversioned
	}
	return engineTable[e].ue4
}

// ObjectVersionUE5 returns the UE5 object version saved by e.
func (e EngineVersion) ObjectVersionUE5() ObjectVersionUE5 {
	if !e.Valid() {
		return UE5Unversioned
	}
	return engineTable[e].ue5
}

// Valid reports whether e names a known release.
func (e EngineVersion) Valid() bool {
	return e > EngineUnknown && e < engineVersionCount
}

// String returns the release name, e.g. "UE4_27".
func (e EngineVersion) String() string {
	switch {
	case !e.Valid():
		return "Unknown"
	case e >= UE5_0:
		return fmt.Sprintf("UE5_%d", int(e-UE5_0))
	default:
		return fmt.Sprintf("UE4_%d", int(e-UE4_0))
	}
}

// ParseEngineVersion parses names such as "UE4_27", "ue5.1" or "4.26".
func ParseEngineVersion(s string) (EngineVersion, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, ".", "_")
	if !strings.HasPrefix(norm, "UE") {
		norm = "UE" + norm
	}
	for e := UE4_0; e < engineVersionCount; e++ {
		if e.String() == norm {
			return e, nil
		}
	}
	if norm == "UEUNKNOWN" || norm == "UE" {
		return EngineUnknown, nil
	}
	return EngineUnknown, fmt.Errorf("unknown engine version %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EngineVersion) UnmarshalText(text []byte) error {
	v, err := ParseEngineVersion(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (e EngineVersion) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}
