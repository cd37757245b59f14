// Package decoder turns the payloads of the three text-bearing metafile
// records into text. Every function is pure; payloads are the record bodies
// handed out by the enumerator, without the record header.
package decoder

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
)

// Layout offsets, relative to the payload.
const (
	drawStringLengthOffset = 8
	drawStringTextOffset   = 28

	smallTextOutTextOffset = 28
	smallTextOutMinSize    = smallTextOutTextOffset + 2

	extTextOutCharsOffset  = 36
	extTextOutStringOffset = 40
	extTextOutMinSize      = extTextOutStringOffset + 4

	// extTextOutW stores offString relative to the whole record, which is
	// 8 bytes longer than the payload.
	recordHeaderSize = 8
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Fragment is one piece of decoded text tagged with the record it came from.
// SmallTextOut fragments always hold exactly one character.
type Fragment struct {
	Tag  record.Tag
	Text string
}

// Rune returns the first character of the fragment, or 0 when empty
func (f Fragment) Rune() rune {
	for _, r := range f.Text {
		return r
	}
	return 0
}

// Decode dispatches rec to the decoder for its kind. The boolean is false when
// there is nothing to record: rec is not text-bearing, or it is an
// ExtTextOutW whose text is blank.
func Decode(rec record.Record) (Fragment, bool, error) {
	frag := Fragment{Tag: rec.Tag}

	switch rec.Tag {
	case record.DrawString:
		text, err := DecodeDrawString(rec.Payload)
		if err != nil {
			return frag, false, err
		}
		frag.Text = text
		return frag, true, nil

	case record.EmfSmallTextOut:
		r, err := DecodeSmallTextOut(rec.Payload)
		if err != nil {
			return frag, false, err
		}
		frag.Text = string(r)
		return frag, true, nil

	case record.EmfExtTextOutW:
		text, err := DecodeExtTextOutW(rec.Payload)
		if err != nil {
			return frag, false, err
		}
		if IsBlank(text) {
			return frag, false, nil
		}
		frag.Text = text
		return frag, true, nil

	default:
		return frag, false, nil
	}
}

// DecodeDrawString decodes an EMF+ DrawString payload: an int32 character
// count at offset 8 and that many UTF-16LE code units starting at offset 28.
func DecodeDrawString(payload []byte) (string, error) {
	if len(payload) < drawStringLengthOffset+4 {
		return "", emferrors.Malformed(record.DrawString, "payload too short for length field").
			WithContext(sizeContext(drawStringLengthOffset+4, len(payload)))
	}

	n := int64(int32(binary.LittleEndian.Uint32(payload[drawStringLengthOffset:])))
	if n < 0 {
		return "", emferrors.Malformed(record.DrawString, "negative character count %d", n)
	}

	end := drawStringTextOffset + 2*n
	if end > int64(len(payload)) {
		return "", emferrors.Malformed(record.DrawString, "string runs past payload").
			WithContext(sizeContext(end, len(payload)))
	}

	raw := payload[drawStringTextOffset:end]
	if !validUTF16(raw) {
		return "", emferrors.Malformed(record.DrawString, "invalid UTF-16 text")
	}
	return decodeUTF16(record.DrawString, raw)
}

// DecodeSmallTextOut returns the character at offset 28 of an
// EMR_SMALLTEXTOUT payload.
//
// Only the first character is recovered even though the record carries a
// character count. Where the text starts depends on fuOptions (an optional
// bounds rectangle and 8-bit characters), and the single fixed read is kept
// until that layout is handled.
func DecodeSmallTextOut(payload []byte) (rune, error) {
	if len(payload) < smallTextOutMinSize {
		return 0, emferrors.Malformed(record.EmfSmallTextOut, "payload too short").
			WithContext(sizeContext(smallTextOutMinSize, len(payload)))
	}
	return rune(binary.LittleEndian.Uint16(payload[smallTextOutTextOffset:])), nil
}

// DecodeExtTextOutW decodes an EMR_EXTTEXTOUTW payload. The code unit count
// is at offset 36 and the record-relative string offset at offset 40.
func DecodeExtTextOutW(payload []byte) (string, error) {
	if len(payload) < extTextOutMinSize {
		return "", emferrors.Malformed(record.EmfExtTextOutW, "payload too short for text header").
			WithContext(sizeContext(extTextOutMinSize, len(payload)))
	}

	length := int64(binary.LittleEndian.Uint32(payload[extTextOutCharsOffset:]))
	offString := int64(binary.LittleEndian.Uint32(payload[extTextOutStringOffset:]))
	if length == 0 {
		// no string is read, offString is often 0 for background fills
		return "", nil
	}

	start := offString - recordHeaderSize
	if start < 0 {
		return "", emferrors.Malformed(record.EmfExtTextOutW, "string offset %d inside record header", offString)
	}

	end := start + 2*length
	if end > int64(len(payload)) {
		return "", emferrors.Malformed(record.EmfExtTextOutW, "string runs past payload").
			WithContext(sizeContext(end, len(payload))).
			WithOffset(start)
	}

	return decodeUTF16(record.EmfExtTextOutW, payload[start:end])
}

// IsBlank reports whether s is empty once spaces are removed
func IsBlank(s string) bool {
	return strings.ReplaceAll(s, " ", "") == ""
}

func decodeUTF16(tag record.Tag, raw []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", emferrors.Malformed(tag, "cannot decode UTF-16 text: %v", err)
	}
	return string(out), nil
}

// validUTF16 rejects unpaired surrogates
func validUTF16(raw []byte) bool {
	for i := 0; i+1 < len(raw); i += 2 {
		u := binary.LittleEndian.Uint16(raw[i:])
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+3 >= len(raw) {
				return false
			}
			next := binary.LittleEndian.Uint16(raw[i+2:])
			if next < 0xDC00 || next > 0xDFFF {
				return false
			}
			i += 2
		case u >= 0xDC00 && u <= 0xDFFF:
			return false
		}
	}
	return true
}

func sizeContext(need int64, have int) string {
	return fmt.Sprintf("need %d bytes, have %d", need, have)
}
