package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag_String(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{EmfHeader, "EmfHeader"},
		{EmfExtTextOutW, "EmfExtTextOutW"},
		{EmfSmallTextOut, "EmfSmallTextOut"},
		{EmfIntersectClipRect, "EmfIntersectClipRect"},
		{EmfCreateColorSpaceW, "EmfCreateColorSpaceW"},
		{DrawString, "DrawString"},
		{EmfPlusHeader, "Header"},
		{EmfPlusSetTSClip, "SetTSClip"},
		{Tag(0), "Tag(0x0)"},
		{Tag(0x9999), "Tag(0x9999)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tag.String())
		})
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		input   string
		want    Tag
		wantErr bool
	}{
		{"EmfSelectObject", EmfSelectObject, false},
		{"emfselectobject", EmfSelectObject, false},
		{"  EmfDeleteObject ", EmfDeleteObject, false},
		{"DrawString", DrawString, false},
		{"EmfPlusDrawString", DrawString, false},
		{"EmfPlusRecordBase", EmfPlusRecordBase, false},
		{"30", EmfIntersectClipRect, false},
		{"0x401C", DrawString, false},
		{"", 0, true},
		{"NotARecord", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTag(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTag_RoundTripsCatalog(t *testing.T) {
	for tag := EmfHeader; tag <= EmfCreateColorSpaceW; tag++ {
		got, err := ParseTag(tag.String())
		require.NoError(t, err, tag.String())
		assert.Equal(t, tag, got)
	}
	for tag := EmfPlusRecordBase; tag <= EmfPlusSetTSClip; tag++ {
		got, err := ParseTag(tag.String())
		require.NoError(t, err, tag.String())
		assert.Equal(t, tag, got)
	}
}

func TestParseTags(t *testing.T) {
	tags, err := ParseTags([]string{"EmfSelectObject", "", "EmfDeleteObject"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{EmfSelectObject, EmfDeleteObject}, tags)

	_, err = ParseTags([]string{"EmfSelectObject", "bogus"})
	assert.Error(t, err)
}

func TestTag_Classification(t *testing.T) {
	assert.True(t, DrawString.IsText())
	assert.True(t, EmfSmallTextOut.IsText())
	assert.True(t, EmfExtTextOutW.IsText())
	assert.False(t, EmfExtTextOutA.IsText())
	assert.False(t, EmfSelectObject.IsText())

	assert.True(t, DrawString.IsEMFPlus())
	assert.False(t, EmfExtTextOutW.IsEMFPlus())

	assert.True(t, EmfGdiComment.Known())
	assert.False(t, Tag(500).Known())
}

func TestRecord_Size(t *testing.T) {
	assert.Equal(t, 0, Record{Tag: EmfSaveDC}.Size())
	assert.Equal(t, 4, Record{Tag: EmfSelectObject, Payload: []byte{1, 0, 0, 0}}.Size())
}

func TestTag_JSON(t *testing.T) {
	out, err := json.Marshal(map[string]Tag{"tag": EmfExtTextOutW})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tag":"EmfExtTextOutW"}`, string(out))

	var back struct{ Tag Tag }
	require.NoError(t, json.Unmarshal([]byte(`{"Tag":"DrawString"}`), &back))
	assert.Equal(t, DrawString, back.Tag)

	assert.Error(t, json.Unmarshal([]byte(`{"Tag":"nope"}`), &back))
}
