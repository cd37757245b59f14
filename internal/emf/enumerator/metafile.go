package enumerator

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"

	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
)

const (
	// Signature is the " EMF" value stored at offset 40 of EMR_HEADER
	Signature uint32 = 0x464D4520
	// PlusSignature identifies an EMR_GDICOMMENT that carries EMF+ records
	PlusSignature uint32 = 0x2B464D45

	headerMinSize     = 88
	emfRecordHeader   = 8
	plusRecordHeader  = 12
	loadGuidance      = "make sure the file contains a valid EMF header"
	descriptionOffset = 60
)

// Rect is a RECTL in logical or device units
type Rect struct {
	Left   int32 `json:"left"`
	Top    int32 `json:"top"`
	Right  int32 `json:"right"`
	Bottom int32 `json:"bottom"`
}

// Size is a SIZEL
type Size struct {
	CX int32 `json:"cx"`
	CY int32 `json:"cy"`
}

// Header holds the fields of EMR_HEADER used for reporting
type Header struct {
	Bounds      Rect   `json:"bounds"`
	Frame       Rect   `json:"frame"`
	Version     uint32 `json:"version"`
	Bytes       uint32 `json:"bytes"`
	Records     uint32 `json:"records"`
	Handles     uint16 `json:"handles"`
	Description string `json:"description,omitempty"`
	Device      Size   `json:"device"`
	Millimeters Size   `json:"millimeters"`
}

// Metafile is a loaded, indexed metafile. It is immutable after Open and may
// be enumerated from several goroutines at once.
type Metafile struct {
	data     []byte
	header   Header
	records  []record.Record
	emfCount int
	hasPlus  bool
}

// Open copies data and indexes its record list. It fails with a
// SourceLoadFailure when data does not start with a valid EMR_HEADER or when
// the record list is corrupt.
func Open(data []byte) (*Metafile, error) {
	buf := make([]byte, len(data))
	copy(buf, data)

	m := &Metafile{data: buf}
	if err := m.parseHeader(); err != nil {
		return nil, err
	}
	if err := m.index(); err != nil {
		return nil, err
	}
	return m, nil
}

// OpenFile reads path and opens it as a metafile
func OpenFile(path string) (*Metafile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, emferrors.Wrap(emferrors.ErrorTypeSourceLoadFailure, "cannot read metafile", err).WithFile(path)
	}
	m, err := Open(data)
	if err != nil {
		var e *emferrors.EMFError
		if errors.As(err, &e) {
			e.WithFile(path)
		}
		return nil, err
	}
	return m, nil
}

// Header returns the parsed EMR_HEADER fields
func (m *Metafile) Header() Header {
	return m.header
}

// Size returns the metafile size in bytes
func (m *Metafile) Size() int {
	return len(m.data)
}

// Len returns the number of records the enumerator hands out, EMF+ records
// included
func (m *Metafile) Len() int {
	return len(m.records)
}

// EMFRecordCount returns the number of top-level EMF records
func (m *Metafile) EMFRecordCount() int {
	return m.emfCount
}

// HasEMFPlus reports whether any GDI comment carried EMF+ records
func (m *Metafile) HasEMFPlus() bool {
	return m.hasPlus
}

func (m *Metafile) parseHeader() error {
	data := m.data
	le := binary.LittleEndian

	if len(data) < headerMinSize {
		return loadError(fmt.Sprintf("file is %d bytes, shorter than an EMF header", len(data)), 0)
	}
	if t := le.Uint32(data[0:]); t != uint32(record.EmfHeader) {
		return loadError(fmt.Sprintf("first record type is %d, not EMR_HEADER", t), 0)
	}
	size := le.Uint32(data[4:])
	if size < headerMinSize || int64(size) > int64(len(data)) {
		return loadError(fmt.Sprintf("header size %d is invalid", size), 4)
	}
	if sig := le.Uint32(data[40:]); sig != Signature {
		return loadError(fmt.Sprintf("bad signature 0x%08X", sig), 40)
	}

	h := Header{
		Bounds:      readRect(data[8:]),
		Frame:       readRect(data[24:]),
		Version:     le.Uint32(data[44:]),
		Bytes:       le.Uint32(data[48:]),
		Records:     le.Uint32(data[52:]),
		Handles:     le.Uint16(data[56:]),
		Device:      Size{CX: int32(le.Uint32(data[72:])), CY: int32(le.Uint32(data[76:]))},
		Millimeters: Size{CX: int32(le.Uint32(data[80:])), CY: int32(le.Uint32(data[84:]))},
	}

	nDesc := int64(le.Uint32(data[descriptionOffset:]))
	offDesc := int64(le.Uint32(data[descriptionOffset+4:]))
	if nDesc > 0 && offDesc >= headerMinSize && offDesc+2*nDesc <= int64(size) {
		h.Description = decodeDescription(data[offDesc : offDesc+2*nDesc])
	}

	m.header = h
	return nil
}

func (m *Metafile) index() error {
	data := m.data
	le := binary.LittleEndian

	for off := 0; off < len(data); {
		if len(data)-off < emfRecordHeader {
			return loadError("truncated record header", int64(off))
		}
		tag := record.Tag(le.Uint32(data[off:]))
		size := int64(le.Uint32(data[off+4:]))
		if size < emfRecordHeader || size > int64(len(data)-off) {
			return loadError(fmt.Sprintf("record %s has invalid size %d", tag, size), int64(off))
		}

		payload := data[off+emfRecordHeader : off+int(size)]
		m.emfCount++

		if tag == record.EmfGdiComment && isPlusComment(payload) {
			if err := m.indexPlus(payload, int64(off)); err != nil {
				return err
			}
		} else {
			m.records = append(m.records, record.Record{Tag: tag, Payload: payload})
		}

		off += int(size)
		if tag == record.EmfEOF {
			break
		}
	}
	return nil
}

// indexPlus expands the EMF+ records held by one GDI comment
func (m *Metafile) indexPlus(comment []byte, base int64) error {
	le := binary.LittleEndian
	dataSize := int64(le.Uint32(comment[0:]))
	end := 4 + dataSize
	if end > int64(len(comment)) {
		end = int64(len(comment))
	}
	block := comment[8:end]
	m.hasPlus = true

	for p := 0; len(block)-p >= plusRecordHeader; {
		tag := record.Tag(le.Uint16(block[p:]))
		flags := le.Uint16(block[p+2:])
		size := int64(le.Uint32(block[p+4:]))
		dsize := int64(le.Uint32(block[p+8:]))
		if size < plusRecordHeader || size > int64(len(block)-p) || dsize > size-plusRecordHeader {
			return loadError(fmt.Sprintf("EMF+ record %s has invalid size %d", tag, size), base+16+int64(p))
		}

		m.records = append(m.records, record.Record{
			Tag:     tag,
			Flags:   flags,
			Payload: block[p+plusRecordHeader : p+plusRecordHeader+int(dsize)],
		})
		p += int(size)
	}
	return nil
}

func isPlusComment(payload []byte) bool {
	return len(payload) >= 8 &&
		binary.LittleEndian.Uint32(payload[0:]) >= 4 &&
		binary.LittleEndian.Uint32(payload[4:]) == PlusSignature
}

func readRect(b []byte) Rect {
	le := binary.LittleEndian
	return Rect{
		Left:   int32(le.Uint32(b[0:])),
		Top:    int32(le.Uint32(b[4:])),
		Right:  int32(le.Uint32(b[8:])),
		Bottom: int32(le.Uint32(b[12:])),
	}
}

// decodeDescription joins the NUL-separated application and picture names
func decodeDescription(raw []byte) string {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	var parts []string
	for _, part := range strings.Split(string(out), "\x00") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " / ")
}

func loadError(msg string, offset int64) error {
	return emferrors.New(emferrors.ErrorTypeSourceLoadFailure, msg).
		WithContext(loadGuidance).
		WithOffset(offset)
}
