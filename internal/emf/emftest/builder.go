// Package emftest builds synthetic EMF, EMF+ and SPL byte streams for tests.
package emftest

import (
	"encoding/binary"
	"math"
	"unicode/utf16"

	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
)

const (
	// HeaderSize is the size of the EMR_HEADER record written by Builder
	HeaderSize = 88

	emfSignature  = 0x464D4520
	emfVersion    = 0x00010000
	plusSignature = 0x2B464D45

	// ETO_NO_RECT: no bounds rectangle precedes SmallTextOut text
	etoNoRect = 0x100
	// EMRI_METAFILE_DATA spool record type
	spoolMetafileData = 0x0C
	spoolHeaderSize   = 24
)

// Builder assembles a metafile record by record. Bytes appends EMR_EOF.
type Builder struct {
	records     [][]byte
	description string
	handles     uint16
}

// NewBuilder returns an empty metafile builder
func NewBuilder() *Builder {
	return &Builder{handles: 1}
}

// Description sets the header description string
func (b *Builder) Description(s string) *Builder {
	b.description = s
	return b
}

// Record appends an EMF record with the given payload
func (b *Builder) Record(tag record.Tag, payload []byte) *Builder {
	b.records = append(b.records, emfRecord(uint32(tag), payload))
	return b
}

// Records appends payload-less EMF records
func (b *Builder) Records(tags ...record.Tag) *Builder {
	for _, tag := range tags {
		b.Record(tag, nil)
	}
	return b
}

// ExtTextOutW appends an EMR_EXTTEXTOUTW record drawing text
func (b *Builder) ExtTextOutW(text string) *Builder {
	return b.Record(record.EmfExtTextOutW, ExtTextOutWPayload(text))
}

// SmallTextOut appends an EMR_SMALLTEXTOUT record drawing text
func (b *Builder) SmallTextOut(text string) *Builder {
	return b.Record(record.EmfSmallTextOut, SmallTextOutPayload(text))
}

// Plus appends one EMR_GDICOMMENT record carrying the given EMF+ records
func (b *Builder) Plus(records ...record.Record) *Builder {
	var body []byte
	for _, rec := range records {
		body = append(body, plusRecord(rec)...)
	}

	payload := make([]byte, 8, 8+len(body))
	binary.LittleEndian.PutUint32(payload[0:], uint32(4+len(body)))
	binary.LittleEndian.PutUint32(payload[4:], plusSignature)
	payload = append(payload, body...)
	return b.Record(record.EmfGdiComment, payload)
}

// DrawString appends an EMF+ DrawString record in its own comment
func (b *Builder) DrawString(text string) *Builder {
	return b.Plus(record.Record{Tag: record.DrawString, Payload: DrawStringPayload(text)})
}

// Comment appends a plain (non EMF+) GDI comment
func (b *Builder) Comment(data []byte) *Builder {
	payload := make([]byte, 4, 4+len(data))
	binary.LittleEndian.PutUint32(payload, uint32(len(data)))
	return b.Record(record.EmfGdiComment, append(payload, data...))
}

// Bytes returns the complete metafile: header, records, EOF
func (b *Builder) Bytes() []byte {
	eof := emfRecord(uint32(record.EmfEOF), make([]byte, 12))
	desc := utf16Bytes(b.description)
	if len(desc) > 0 {
		desc = append(desc, 0, 0)
	}
	headerSize := pad4(HeaderSize + len(desc))

	total := headerSize + len(eof)
	for _, rec := range b.records {
		total += len(rec)
	}

	out := make([]byte, headerSize, total)
	le := binary.LittleEndian
	le.PutUint32(out[0:], uint32(record.EmfHeader))
	le.PutUint32(out[4:], uint32(headerSize))
	// bounds
	le.PutUint32(out[16:], 100)
	le.PutUint32(out[20:], 200)
	// frame, .01mm
	le.PutUint32(out[32:], 21000)
	le.PutUint32(out[36:], 29700)
	le.PutUint32(out[40:], emfSignature)
	le.PutUint32(out[44:], emfVersion)
	le.PutUint32(out[48:], uint32(total))
	le.PutUint32(out[52:], uint32(len(b.records)+2))
	le.PutUint16(out[56:], b.handles)
	if len(desc) > 0 {
		le.PutUint32(out[60:], uint32(len(desc)/2))
		le.PutUint32(out[64:], HeaderSize)
		copy(out[HeaderSize:], desc)
	}
	// device and millimeters
	le.PutUint32(out[72:], 2480)
	le.PutUint32(out[76:], 3508)
	le.PutUint32(out[80:], 210)
	le.PutUint32(out[84:], 297)

	for _, rec := range b.records {
		out = append(out, rec...)
	}
	return append(out, eof...)
}

// WrapSPL embeds emf in a minimal spool file the way the spooler writes an
// EMRI_METAFILE_DATA record right after the SPL header.
func WrapSPL(emf []byte) []byte {
	out := make([]byte, spoolHeaderSize+8, spoolHeaderSize+8+len(emf)+8)
	le := binary.LittleEndian
	le.PutUint32(out[0:], 0x00010000)
	le.PutUint32(out[4:], spoolHeaderSize)
	le.PutUint32(out[spoolHeaderSize:], spoolMetafileData)
	le.PutUint32(out[spoolHeaderSize+4:], uint32(len(emf)))
	out = append(out, emf...)
	// trailing EMRI_METAFILE_EXT record
	return append(out, 0x0D, 0, 0, 0, 0, 0, 0, 0)
}

// ExtTextOutWPayload lays out an EMR_EXTTEXTOUTW body (without the 8-byte
// record header) whose EmrText points at text.
func ExtTextOutWPayload(text string) []byte {
	units := utf16.Encode([]rune(text))
	const textStart = 68
	textLen := pad4(2 * len(units))

	payload := make([]byte, textStart+textLen+4*len(units))
	le := binary.LittleEndian
	// iGraphicsMode, exScale, eyScale
	le.PutUint32(payload[16:], 1)
	le.PutUint32(payload[20:], math.Float32bits(1))
	le.PutUint32(payload[24:], math.Float32bits(1))
	le.PutUint32(payload[36:], uint32(len(units)))
	le.PutUint32(payload[40:], textStart+8)
	le.PutUint32(payload[64:], uint32(textStart+8+textLen))
	for i, u := range units {
		le.PutUint16(payload[textStart+2*i:], u)
	}
	return payload
}

// ExtTextOutWRaw lays out an EMR_EXTTEXTOUTW body with arbitrary count and
// offset fields, for malformed-record tests.
func ExtTextOutWRaw(size int, chars, offString uint32) []byte {
	payload := make([]byte, size)
	if size >= 44 {
		binary.LittleEndian.PutUint32(payload[36:], chars)
		binary.LittleEndian.PutUint32(payload[40:], offString)
	}
	return payload
}

// DrawStringPayload lays out an EMF+ DrawString body
func DrawStringPayload(text string) []byte {
	units := utf16.Encode([]rune(text))
	payload := make([]byte, 28+2*len(units))
	le := binary.LittleEndian
	le.PutUint32(payload[8:], uint32(len(units)))
	// layout rect width and height
	le.PutUint32(payload[20:], math.Float32bits(400))
	le.PutUint32(payload[24:], math.Float32bits(20))
	for i, u := range units {
		le.PutUint16(payload[28+2*i:], u)
	}
	return payload
}

// SmallTextOutPayload lays out an EMR_SMALLTEXTOUT body with 16-bit
// characters and no bounds rectangle.
func SmallTextOutPayload(text string) []byte {
	units := utf16.Encode([]rune(text))
	payload := make([]byte, 28+pad4(2*len(units)))
	le := binary.LittleEndian
	le.PutUint32(payload[8:], uint32(len(units)))
	le.PutUint32(payload[12:], etoNoRect)
	le.PutUint32(payload[16:], 1)
	le.PutUint32(payload[20:], math.Float32bits(1))
	le.PutUint32(payload[24:], math.Float32bits(1))
	for i, u := range units {
		le.PutUint16(payload[28+2*i:], u)
	}
	return payload
}

func emfRecord(tag uint32, payload []byte) []byte {
	size := 8 + pad4(len(payload))
	rec := make([]byte, size)
	binary.LittleEndian.PutUint32(rec[0:], tag)
	binary.LittleEndian.PutUint32(rec[4:], uint32(size))
	copy(rec[8:], payload)
	return rec
}

func plusRecord(r record.Record) []byte {
	size := 12 + pad4(len(r.Payload))
	rec := make([]byte, size)
	le := binary.LittleEndian
	le.PutUint16(rec[0:], uint16(r.Tag))
	le.PutUint16(rec[2:], r.Flags)
	le.PutUint32(rec[4:], uint32(size))
	le.PutUint32(rec[8:], uint32(len(r.Payload)))
	copy(rec[12:], r.Payload)
	return rec
}

func utf16Bytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}
	return out
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
