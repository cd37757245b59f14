package decoder

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-emf-reader/internal/emf/emftest"
	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
)

func TestDecodeExtTextOutW(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "ascii", text: "Hello"},
		{name: "single char", text: "A"},
		{name: "hangul", text: "안녕하세요"},
		{name: "surrogate pair", text: "note 𝄞"},
		{name: "odd length pads", text: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeExtTextOutW(emftest.ExtTextOutWPayload(tt.text))
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)
		})
	}
}

func TestDecodeExtTextOutW_ReadsFromRecordRelativeOffset(t *testing.T) {
	payload := emftest.ExtTextOutWRaw(64, 3, 52)
	// offString 52 is record-relative, so the text starts at payload offset 44
	copy(payload[44:], []byte{'x', 0, 'y', 0, 'z', 0})

	got, err := DecodeExtTextOutW(payload)
	require.NoError(t, err)
	assert.Equal(t, "xyz", got)
}

func TestDecodeExtTextOutW_ZeroLength(t *testing.T) {
	// background fills carry no string and leave offString at 0
	for _, offString := range []uint32{0, 4, 0xFFFFFFFF} {
		got, err := DecodeExtTextOutW(emftest.ExtTextOutWRaw(68, 0, offString))
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestDecodeExtTextOutW_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "shorter than header", payload: make([]byte, 43)},
		{name: "offset inside record header", payload: emftest.ExtTextOutWRaw(64, 1, 4)},
		{name: "string past end", payload: emftest.ExtTextOutWRaw(64, 20, 52)},
		{name: "offset past end", payload: emftest.ExtTextOutWRaw(64, 1, 0xFFFFFFFF)},
		{name: "huge length", payload: emftest.ExtTextOutWRaw(64, 0xFFFFFFFF, 52)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeExtTextOutW(tt.payload)
			require.Error(t, err)
			assert.ErrorIs(t, err, emferrors.ErrMalformedRecord)
		})
	}
}

func TestDecodeExtTextOutW_Truncated(t *testing.T) {
	full := emftest.ExtTextOutWPayload("Hello")
	// text occupies [68, 78) of the payload
	_, err := DecodeExtTextOutW(full[:77])
	assert.ErrorIs(t, err, emferrors.ErrMalformedRecord)

	got, err := DecodeExtTextOutW(full[:78])
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
}

func TestDecodeDrawString(t *testing.T) {
	for _, text := range []string{"", "Invoice 2024", "Größe", "日本語テキスト"} {
		t.Run(text, func(t *testing.T) {
			got, err := DecodeDrawString(emftest.DrawStringPayload(text))
			require.NoError(t, err)
			assert.Equal(t, text, got)
		})
	}
}

func TestDecodeDrawString_Malformed(t *testing.T) {
	negative := make([]byte, 40)
	binary.LittleEndian.PutUint32(negative[8:], 0xFFFFFFFF)

	tooLong := emftest.DrawStringPayload("abc")
	binary.LittleEndian.PutUint32(tooLong[8:], 4)

	loneSurrogate := emftest.DrawStringPayload("ab")
	binary.LittleEndian.PutUint16(loneSurrogate[28:], 0xD800)

	trailingLow := emftest.DrawStringPayload("ab")
	binary.LittleEndian.PutUint16(trailingLow[30:], 0xDC00)

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "no length field", payload: make([]byte, 11)},
		{name: "negative count", payload: negative},
		{name: "count past end", payload: tooLong},
		{name: "unpaired high surrogate", payload: loneSurrogate},
		{name: "unpaired low surrogate", payload: trailingLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDrawString(tt.payload)
			require.Error(t, err)
			assert.ErrorIs(t, err, emferrors.ErrMalformedRecord)
			assert.True(t, emferrors.IsType(err, emferrors.ErrorTypeMalformedRecord))
		})
	}
}

func TestDecodeSmallTextOut(t *testing.T) {
	r, err := DecodeSmallTextOut(emftest.SmallTextOutPayload("Q"))
	require.NoError(t, err)
	assert.Equal(t, 'Q', r)

	// only the first character is recovered
	r, err = DecodeSmallTextOut(emftest.SmallTextOutPayload("Total"))
	require.NoError(t, err)
	assert.Equal(t, 'T', r)

	exact := make([]byte, 30)
	binary.LittleEndian.PutUint16(exact[28:], 'z')
	r, err = DecodeSmallTextOut(exact)
	require.NoError(t, err)
	assert.Equal(t, 'z', r)
}

func TestDecodeSmallTextOut_Malformed(t *testing.T) {
	for _, size := range []int{0, 8, 28, 29} {
		_, err := DecodeSmallTextOut(make([]byte, size))
		assert.ErrorIs(t, err, emferrors.ErrMalformedRecord, "size %d", size)
	}
}

func TestDecode_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		rec      record.Record
		wantText string
		wantKeep bool
		wantErr  bool
	}{
		{
			name:     "draw string",
			rec:      record.Record{Tag: record.DrawString, Payload: emftest.DrawStringPayload("plus")},
			wantText: "plus",
			wantKeep: true,
		},
		{
			name:     "small text out",
			rec:      record.Record{Tag: record.EmfSmallTextOut, Payload: emftest.SmallTextOutPayload("x")},
			wantText: "x",
			wantKeep: true,
		},
		{
			name:     "ext text out",
			rec:      record.Record{Tag: record.EmfExtTextOutW, Payload: emftest.ExtTextOutWPayload("gdi")},
			wantText: "gdi",
			wantKeep: true,
		},
		{
			name:     "blank ext text out is dropped",
			rec:      record.Record{Tag: record.EmfExtTextOutW, Payload: emftest.ExtTextOutWPayload("    ")},
			wantKeep: false,
		},
		{
			name:     "empty ext text out is dropped",
			rec:      record.Record{Tag: record.EmfExtTextOutW, Payload: emftest.ExtTextOutWPayload("")},
			wantKeep: false,
		},
		{
			name:     "ext text out without characters is dropped",
			rec:      record.Record{Tag: record.EmfExtTextOutW, Payload: emftest.ExtTextOutWRaw(68, 0, 0)},
			wantKeep: false,
		},
		{
			name:     "ext text out with inner spaces kept",
			rec:      record.Record{Tag: record.EmfExtTextOutW, Payload: emftest.ExtTextOutWPayload(" a b ")},
			wantText: " a b ",
			wantKeep: true,
		},
		{
			name:     "non text record",
			rec:      record.Record{Tag: record.EmfSelectObject, Payload: []byte{1, 0, 0, 0}},
			wantKeep: false,
		},
		{
			name:    "malformed",
			rec:     record.Record{Tag: record.EmfExtTextOutW, Payload: []byte{1, 2, 3}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, keep, err := Decode(tt.rec)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, keep)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeep, keep)
			assert.Equal(t, tt.rec.Tag, frag.Tag)
			if tt.wantKeep {
				assert.Equal(t, tt.wantText, frag.Text)
			}
		})
	}
}

func TestFragment_Rune(t *testing.T) {
	assert.Equal(t, 'H', Fragment{Text: "Hi"}.Rune())
	assert.Equal(t, rune(0), Fragment{}.Rune())
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("   "))
	assert.False(t, IsBlank(" . "))
	assert.False(t, IsBlank("\t"))
}
