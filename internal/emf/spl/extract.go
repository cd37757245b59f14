// Package spl slices the embedded EMF data out of a Windows print spool file.
package spl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
)

// Signature is the SPL header record type found at offset 0 of spool files
const Signature uint32 = 0x00010000

const (
	headerSizeOffset = 4
	fieldSize        = 4
)

// ExtractEMF returns a copy of the metafile bytes embedded in splFile.
//
// The int32 at offset 4 is the position of the metafile data record; the
// int32 at position+4 is the metafile size and the metafile itself starts at
// position+8. The sliced bytes are not validated as a metafile.
func ExtractEMF(splFile []byte) ([]byte, error) {
	position, err := readInt32(splFile, headerSizeOffset, "record position")
	if err != nil {
		return nil, err
	}

	size, err := readInt32(splFile, position+4, "metafile size")
	if err != nil {
		return nil, err
	}

	start := position + 8
	end := start + size
	if size < 0 || end > int64(len(splFile)) {
		return nil, emferrors.New(emferrors.ErrorTypeOutOfRange, "embedded metafile exceeds spool buffer").
			WithContext(fmt.Sprintf("range [%d, %d) in %d bytes", start, end, len(splFile))).
			WithOffset(start)
	}

	emf := make([]byte, size)
	copy(emf, splFile[start:end])
	return emf, nil
}

// ExtractEMFFile reads a spool file from disk and extracts its metafile
func ExtractEMFFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spool file: %w", err)
	}

	emf, err := ExtractEMF(data)
	if err != nil {
		var e *emferrors.EMFError
		if errors.As(err, &e) {
			e.WithFile(path)
		}
		return nil, err
	}
	return emf, nil
}

// IsSpool reports whether data starts with the SPL header signature
func IsSpool(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == Signature
}

// readInt32 reads a little-endian int32 at offset, widened to int64 so that
// offset arithmetic on hostile values cannot overflow.
func readInt32(buf []byte, offset int64, field string) (int64, error) {
	if offset < 0 || offset+fieldSize > int64(len(buf)) {
		return 0, emferrors.New(emferrors.ErrorTypeOutOfRange, "cannot read "+field).
			WithContext(fmt.Sprintf("offset %d in %d bytes", offset, len(buf))).
			WithOffset(offset)
	}
	return int64(int32(binary.LittleEndian.Uint32(buf[offset:]))), nil
}
