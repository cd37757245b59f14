// Package enumerator walks the records of a loaded metafile in playback
// order. EMF+ records carried in GDI comments are handed out in place of the
// comment that holds them, with their header stripped.
package enumerator

import (
	"sync"

	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
)

// Callback receives one record per call. Returning false stops the
// traversal.
type Callback func(rec record.Record) bool

// Enumerator is the record source used by an extraction session
type Enumerator interface {
	// ForEachRecord calls cb for every record of src in order
	ForEachRecord(src *Metafile, cb Callback) error
	// Replay plays rec back against the rendering state for src
	Replay(src *Metafile, rec record.Record) error
}

// Walker is the built-in Enumerator. Replay feeds a Playback ledger instead
// of a rendering surface.
type Walker struct {
	playback *Playback
}

// NewWalker creates a walker with an empty playback ledger
func NewWalker() *Walker {
	return &Walker{playback: NewPlayback()}
}

// ForEachRecord resets the playback ledger and calls cb for each record
func (w *Walker) ForEachRecord(src *Metafile, cb Callback) error {
	if src == nil {
		return errNoSource()
	}
	w.playback.Reset()
	for _, rec := range src.records {
		if !cb(rec) {
			return nil
		}
	}
	return nil
}

// Replay records rec in the playback ledger
func (w *Walker) Replay(src *Metafile, rec record.Record) error {
	if src == nil {
		return errNoSource()
	}
	w.playback.add(rec)
	return nil
}

// Playback returns the ledger of replayed records
func (w *Walker) Playback() *Playback {
	return w.playback
}

func errNoSource() error {
	return emferrors.New(emferrors.ErrorTypeNotLoaded, "no metafile to enumerate")
}

// Playback counts replayed records per tag
type Playback struct {
	mu      sync.Mutex
	counts  map[record.Tag]int
	records int
	bytes   int64
}

// NewPlayback creates an empty ledger
func NewPlayback() *Playback {
	return &Playback{counts: make(map[record.Tag]int)}
}

func (p *Playback) add(rec record.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[rec.Tag]++
	p.records++
	p.bytes += int64(rec.Size())
}

// Reset empties the ledger
func (p *Playback) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts = make(map[record.Tag]int)
	p.records = 0
	p.bytes = 0
}

// Records returns the number of replayed records
func (p *Playback) Records() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records
}

// Bytes returns the total payload bytes replayed
func (p *Playback) Bytes() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bytes
}

// Count returns how many records with tag were replayed
func (p *Playback) Count(tag record.Tag) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[tag]
}

// Counts returns a copy of the per-tag counts
func (p *Playback) Counts() map[record.Tag]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[record.Tag]int, len(p.counts))
	for tag, n := range p.counts {
		out[tag] = n
	}
	return out
}
