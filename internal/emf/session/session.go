// Package session drives one traversal of a loaded metafile, decodes the
// text-bearing records and assembles either per-kind fragment lists or a
// single combined string with guessed whitespace.
//
// A Session is not safe for concurrent use. Separate sessions over separate
// sources may run in parallel.
package session

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-emf-reader/internal/emf/decoder"
	"github.com/a3tai/mcp-emf-reader/internal/emf/enumerator"
	emferrors "github.com/a3tai/mcp-emf-reader/internal/emf/errors"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
	"github.com/a3tai/mcp-emf-reader/internal/emf/spl"
	"github.com/a3tai/mcp-emf-reader/internal/emf/whitespace"
)

// Mode selects what a traversal produces
type Mode int

const (
	// ModeStructured fills the per-kind lists only
	ModeStructured Mode = iota
	// ModeCombined also builds the combined string
	ModeCombined
)

// String returns the mode name used in logs and metric labels
func (m Mode) String() string {
	if m == ModeCombined {
		return "combined"
	}
	return "structured"
}

// FailedRecord is a text-bearing record whose payload could not be decoded
type FailedRecord struct {
	Tag     record.Tag `json:"tag"`
	Payload []byte     `json:"payload"`
	Reason  string     `json:"reason"`
}

// Result holds the output of the last traversal
type Result struct {
	DrawStrings   []string       `json:"draw_strings"`
	ExtTextOutWs  []string       `json:"ext_text_out_ws"`
	SmallTextOuts []rune         `json:"small_text_outs"`
	FailedRecords []FailedRecord `json:"failed_records,omitempty"`
	Combined      string         `json:"combined,omitempty"`
	Records       int            `json:"records"`
}

// Fragments returns the number of decoded text fragments
func (r *Result) Fragments() int {
	return len(r.DrawStrings) + len(r.ExtTextOutWs) + len(r.SmallTextOuts)
}

// Observer receives traversal events, typically to export metrics
type Observer interface {
	RecordSeen(tag record.Tag)
	FragmentDecoded(tag record.Tag)
	DecodeFailed(tag record.Tag)
	ExtractionDone(mode Mode, elapsed time.Duration, err error)
}

// Session owns the loaded source and the accumulators of one extraction
type Session struct {
	enum        enumerator.Enumerator
	src         *enumerator.Metafile
	logger      *zap.Logger
	observer    Observer
	heuristic   *whitespace.Heuristic
	logFailures bool

	result   Result
	combined strings.Builder
}

// Option configures a Session
type Option func(*Session)

// WithEnumerator replaces the built-in Walker
func WithEnumerator(e enumerator.Enumerator) Option {
	return func(s *Session) {
		if e != nil {
			s.enum = e
		}
	}
}

// WithLogger sets the logger used for decode failures
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers an Observer
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// WithWhitespace sets the candidate sets used by ExtractCombined
func WithWhitespace(cfg whitespace.Config) Option {
	return func(s *Session) {
		s.heuristic = whitespace.New(cfg)
	}
}

// WithFailureLogging enables the failure log
func WithFailureLogging(enabled bool) Option {
	return func(s *Session) {
		s.logFailures = enabled
	}
}

// New creates a session with no source loaded
func New(opts ...Option) *Session {
	s := &Session{
		enum:      enumerator.NewWalker(),
		logger:    zap.NewNop(),
		heuristic: whitespace.New(whitespace.Config{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load binds an already opened metafile
func (s *Session) Load(src *enumerator.Metafile) {
	s.src = src
}

// LoadBytes opens data as a metafile and binds it
func (s *Session) LoadBytes(data []byte) error {
	src, err := enumerator.Open(data)
	if err != nil {
		return err
	}
	s.src = src
	return nil
}

// LoadFile opens the metafile at path and binds it
func (s *Session) LoadFile(path string) error {
	src, err := enumerator.OpenFile(path)
	if err != nil {
		return err
	}
	s.src = src
	return nil
}

// LoadSPL extracts the metafile embedded in a spool buffer and binds it
func (s *Session) LoadSPL(data []byte) error {
	emf, err := spl.ExtractEMF(data)
	if err != nil {
		return err
	}
	return s.LoadBytes(emf)
}

// LoadSPLFile extracts the metafile embedded in the spool file at path
func (s *Session) LoadSPLFile(path string) error {
	emf, err := spl.ExtractEMFFile(path)
	if err != nil {
		return err
	}
	src, err := enumerator.Open(emf)
	if err != nil {
		var e *emferrors.EMFError
		if errors.As(err, &e) {
			e.WithFile(path)
		}
		return err
	}
	s.src = src
	return nil
}

// Unload drops the bound source. The accumulators keep the last result.
func (s *Session) Unload() {
	s.src = nil
}

// IsLoaded reports whether a source is bound
func (s *Session) IsLoaded() bool {
	return s.src != nil
}

// Source returns the bound metafile, or nil
func (s *Session) Source() *enumerator.Metafile {
	return s.src
}

// SetWhitespace replaces the candidate sets
func (s *Session) SetWhitespace(cfg whitespace.Config) {
	s.heuristic = whitespace.New(cfg)
}

// SetFailureLogging toggles the failure log
func (s *Session) SetFailureLogging(enabled bool) {
	s.logFailures = enabled
}

// Whitespace returns the candidate sets in use
func (s *Session) Whitespace() whitespace.Config {
	return s.heuristic.Config()
}

// FailureLogging reports whether the failure log is enabled
func (s *Session) FailureLogging() bool {
	return s.logFailures
}

// Extract traverses the source and returns the per-kind fragment lists and
// the failure log. The whitespace heuristic is not consulted.
func (s *Session) Extract() (*Result, error) {
	if err := s.run(ModeStructured); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// ExtractCombined traverses the source and returns all decoded text joined
// in playback order, with a guessed separator before each fragment.
func (s *Session) ExtractCombined() (string, error) {
	if err := s.run(ModeCombined); err != nil {
		return "", err
	}
	return s.result.Combined, nil
}

// Result returns a copy of the accumulators from the last traversal
func (s *Session) Result() *Result {
	return s.snapshot()
}

func (s *Session) run(mode Mode) (err error) {
	if s.src == nil {
		return emferrors.New(emferrors.ErrorTypeNotLoaded, "no metafile loaded").
			WithContext("load a metafile or spool file before extracting")
	}

	start := time.Now()
	defer func() {
		if s.observer != nil {
			s.observer.ExtractionDone(mode, time.Since(start), err)
		}
	}()

	s.reset()

	var replayErr error
	err = s.enum.ForEachRecord(s.src, func(rec record.Record) bool {
		s.visit(rec, mode)
		if rerr := s.enum.Replay(s.src, rec); rerr != nil {
			replayErr = rerr
			return false
		}
		return true
	})
	if err == nil {
		err = replayErr
	}
	if err != nil {
		return err
	}

	s.result.Combined = s.combined.String()
	s.logger.Debug("traversal complete",
		zap.Stringer("mode", mode),
		zap.Int("records", s.result.Records),
		zap.Int("fragments", s.result.Fragments()),
		zap.Int("failed", len(s.result.FailedRecords)),
	)
	return nil
}

func (s *Session) visit(rec record.Record, mode Mode) {
	s.result.Records++
	if s.observer != nil {
		s.observer.RecordSeen(rec.Tag)
	}

	// records without a payload, such as EMR_SAVEDC, count as candidates too
	if !rec.Tag.IsText() {
		if mode == ModeCombined {
			s.heuristic.Observe(rec.Tag)
		}
		return
	}

	frag, keep, err := decoder.Decode(rec)
	if err != nil {
		s.fail(rec, err)
		return
	}
	if !keep {
		return
	}

	if s.observer != nil {
		s.observer.FragmentDecoded(rec.Tag)
	}

	switch rec.Tag {
	case record.DrawString:
		s.result.DrawStrings = append(s.result.DrawStrings, frag.Text)
	case record.EmfSmallTextOut:
		s.result.SmallTextOuts = append(s.result.SmallTextOuts, frag.Rune())
	case record.EmfExtTextOutW:
		s.result.ExtTextOutWs = append(s.result.ExtTextOutWs, frag.Text)
	}

	if mode == ModeCombined {
		s.combined.WriteString(s.heuristic.Next().Text())
		s.combined.WriteString(frag.Text)
	}
}

func (s *Session) fail(rec record.Record, err error) {
	s.logger.Debug("record decode failed",
		zap.Stringer("tag", rec.Tag),
		zap.Int("size", rec.Size()),
		zap.Error(err),
	)
	if s.observer != nil {
		s.observer.DecodeFailed(rec.Tag)
	}
	if !s.logFailures {
		return
	}

	payload := make([]byte, len(rec.Payload))
	copy(payload, rec.Payload)
	s.result.FailedRecords = append(s.result.FailedRecords, FailedRecord{
		Tag:     rec.Tag,
		Payload: payload,
		Reason:  err.Error(),
	})
}

func (s *Session) reset() {
	s.result = Result{}
	s.combined.Reset()
	s.heuristic.Reset()
}

func (s *Session) snapshot() *Result {
	r := s.result
	r.DrawStrings = append([]string(nil), s.result.DrawStrings...)
	r.ExtTextOutWs = append([]string(nil), s.result.ExtTextOutWs...)
	r.SmallTextOuts = append([]rune(nil), s.result.SmallTextOuts...)
	r.FailedRecords = append([]FailedRecord(nil), s.result.FailedRecords...)
	return &r
}
