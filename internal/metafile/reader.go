package metafile

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-emf-reader/internal/emf/decoder"
	"github.com/a3tai/mcp-emf-reader/internal/emf/enumerator"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
	"github.com/a3tai/mcp-emf-reader/internal/emf/session"
	"github.com/a3tai/mcp-emf-reader/internal/emf/whitespace"
)

const (
	// DefaultRecordLimit caps EMFExtractRecords when no limit is given
	DefaultRecordLimit = 1000
	// MaxRecordLimit is the largest accepted limit
	MaxRecordLimit = 100000
)

// Reader handles text and record extraction
type Reader struct {
	validator *Validator
	settings  *settings
}

// NewReader creates a new reader with the specified constraints
func NewReader(maxFileSize int64, opts ...Option) *Reader {
	return &Reader{
		validator: NewValidator(maxFileSize),
		settings:  newSettings(opts),
	}
}

// ExtractText recovers the text of a metafile, either as one combined string
// or as per-kind fragment lists
func (r *Reader) ExtractText(req EMFExtractTextRequest) (*EMFExtractTextResult, error) {
	mode, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	src, err := r.validator.open(req.Path)
	if err != nil {
		return nil, err
	}

	logFailed := r.settings.logFailed
	if req.LogFailed != nil {
		logFailed = *req.LogFailed
	}

	sess := r.settings.newSession(src.path, logFailed)
	sess.Load(src.metafile)

	var res *session.Result
	result := &EMFExtractTextResult{
		Path:      src.path,
		Container: src.container,
		Mode:      mode.String(),
		Size:      src.info.Size(),
	}

	switch mode {
	case session.ModeCombined:
		text, err := sess.ExtractCombined()
		if err != nil {
			return nil, fmt.Errorf("failed to extract text: %w", err)
		}
		result.Text = text
		res = sess.Result()
	default:
		if res, err = sess.Extract(); err != nil {
			return nil, fmt.Errorf("failed to extract text: %w", err)
		}
		result.DrawStrings = res.DrawStrings
		result.ExtTextOutWs = res.ExtTextOutWs
		result.SmallTextOuts = string(res.SmallTextOuts)
	}

	result.Records = res.Records
	result.Fragments = res.Fragments()
	result.FailedRecords = res.FailedRecords

	r.settings.logger.Info("extracted text",
		zap.String("path", src.path),
		zap.String("container", string(src.container)),
		zap.Stringer("mode", mode),
		zap.Int("records", res.Records),
		zap.Int("fragments", result.Fragments),
		zap.Int("failed", len(res.FailedRecords)),
	)

	return result, nil
}

// ExtractRecords lists the records of a metafile in playback order,
// optionally filtered by tag name. Text-bearing records carry their decoded
// text or the decode error.
func (r *Reader) ExtractRecords(req EMFExtractRecordsRequest) (*EMFExtractRecordsResult, error) {
	limit := req.Limit
	switch {
	case limit <= 0:
		limit = DefaultRecordLimit
	case limit > MaxRecordLimit:
		return nil, fmt.Errorf("limit %d exceeds maximum of %d", limit, MaxRecordLimit)
	}

	filter, err := whitespace.ParseTagSet(req.Tags)
	if err != nil {
		return nil, fmt.Errorf("invalid tag filter: %w", err)
	}

	src, err := r.validator.open(req.Path)
	if err != nil {
		return nil, err
	}

	result := &EMFExtractRecordsResult{
		Path:      src.path,
		Container: src.container,
		Records:   []RecordInfo{},
	}

	index := -1
	err = enumerator.NewWalker().ForEachRecord(src.metafile, func(rec record.Record) bool {
		index++
		if len(filter) > 0 && !filter.Contains(rec.Tag) {
			return true
		}
		result.TotalCount++
		if len(result.Records) >= limit {
			result.Truncated = true
			return true
		}
		result.Records = append(result.Records, describeRecord(index, rec))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate records: %w", err)
	}

	return result, nil
}

func describeRecord(index int, rec record.Record) RecordInfo {
	info := RecordInfo{
		Index: index,
		Tag:   rec.Tag.String(),
		Type:  uint32(rec.Tag),
		Flags: rec.Flags,
		Size:  rec.Size(),
	}
	if !rec.Tag.IsText() {
		return info
	}

	frag, keep, err := decoder.Decode(rec)
	switch {
	case err != nil:
		info.Error = err.Error()
	case keep:
		info.Text = frag.Text
	}
	return info
}

func parseMode(s string) (session.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", ModeCombined:
		return session.ModeCombined, nil
	case ModeStructured:
		return session.ModeStructured, nil
	default:
		return session.ModeCombined, fmt.Errorf("invalid mode: %s (must be '%s' or '%s')",
			s, ModeCombined, ModeStructured)
	}
}
