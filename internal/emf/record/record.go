// Package record defines the metafile record catalog shared by the
// enumerator, the decoders and the whitespace heuristic.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag identifies a metafile record kind. EMF record types occupy 1..122 and
// EMF+ record types occupy 0x4000..0x403A, so both fit in one namespace.
type Tag uint32

// Record is one record handed out by an enumerator. Payload excludes the
// record header: 8 bytes for EMF records, 12 bytes for EMF+ records.
type Record struct {
	Tag     Tag
	Flags   uint16
	Payload []byte
}

// Size returns the payload length in bytes
func (r Record) Size() int {
	return len(r.Payload)
}

var nameToTag map[string]Tag

func init() {
	nameToTag = make(map[string]Tag, len(emfNames)+2*len(emfPlusNames))
	for i, name := range emfNames {
		if name == "" {
			continue
		}
		nameToTag[strings.ToLower(name)] = Tag(i)
	}
	for i, name := range emfPlusNames {
		tag := EmfPlusRecordBase + Tag(i)
		nameToTag[strings.ToLower(name)] = tag
		if !strings.HasPrefix(name, "EmfPlus") {
			nameToTag["emfplus"+strings.ToLower(name)] = tag
		}
	}
}

// String returns the catalog name of the tag, or a hex fallback for unknown values
func (t Tag) String() string {
	switch {
	case t > 0 && int(t) < len(emfNames):
		return emfNames[t]
	case t >= EmfPlusRecordBase && int(t-EmfPlusRecordBase) < len(emfPlusNames):
		return emfPlusNames[t-EmfPlusRecordBase]
	default:
		return fmt.Sprintf("Tag(0x%X)", uint32(t))
	}
}

// Known reports whether the tag is part of the catalog
func (t Tag) Known() bool {
	return (t > 0 && int(t) < len(emfNames)) ||
		(t >= EmfPlusRecordBase && int(t-EmfPlusRecordBase) < len(emfPlusNames))
}

// IsEMFPlus reports whether the tag belongs to the EMF+ range
func (t Tag) IsEMFPlus() bool {
	return t >= EmfPlusRecordBase && t <= EmfPlusRecordBase+0xFFF
}

// IsText reports whether records of this kind carry decodable text
func (t Tag) IsText() bool {
	switch t {
	case DrawString, EmfSmallTextOut, EmfExtTextOutW:
		return true
	default:
		return false
	}
}

// ParseTag resolves a tag from its catalog name (case-insensitive, the
// "EmfPlus" prefix is optional for EMF+ kinds) or from a decimal or 0x-prefixed
// hex number.
func ParseTag(s string) (Tag, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return 0, fmt.Errorf("empty record tag")
	}

	if tag, ok := nameToTag[strings.ToLower(name)]; ok {
		return tag, nil
	}

	if n, err := strconv.ParseUint(name, 0, 32); err == nil {
		return Tag(n), nil
	}

	return 0, fmt.Errorf("unknown record tag: %q", s)
}

// ParseTags resolves a list of names, skipping blanks
func ParseTags(names []string) ([]Tag, error) {
	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tag, err := ParseTag(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// MarshalText encodes the tag by name so JSON output stays readable
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts anything ParseTag does
func (t *Tag) UnmarshalText(text []byte) error {
	tag, err := ParseTag(string(text))
	if err != nil {
		return err
	}
	*t = tag
	return nil
}
