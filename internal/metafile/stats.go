package metafile

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-emf-reader/internal/emf/enumerator"
	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
	"github.com/a3tai/mcp-emf-reader/internal/emf/session"
)

// Stats handles metafile statistics operations
type Stats struct {
	validator *Validator
	settings  *settings
}

// NewStats creates a new stats handler with the specified constraints
func NewStats(maxFileSize int64, opts ...Option) *Stats {
	return &Stats{
		validator: NewValidator(maxFileSize),
		settings:  newSettings(opts),
	}
}

// GetFileStats replays a metafile once and reports its header, record
// counts per kind and text totals
func (s *Stats) GetFileStats(req EMFStatsFileRequest) (*EMFStatsFileResult, error) {
	src, err := s.validator.open(req.Path)
	if err != nil {
		return nil, err
	}

	walker := enumerator.NewWalker()
	sess := s.settings.newSession(src.path, true, session.WithEnumerator(walker))
	sess.Load(src.metafile)

	res, err := sess.Extract()
	if err != nil {
		return nil, fmt.Errorf("failed to replay metafile: %w", err)
	}

	playback := walker.Playback()
	result := &EMFStatsFileResult{
		Path:          src.path,
		Container:     src.container,
		Size:          src.info.Size(),
		MetafileSize:  src.metafile.Size(),
		ModifiedDate:  src.info.ModTime().Format("2006-01-02 15:04:05"),
		Header:        src.metafile.Header(),
		EMFRecords:    src.metafile.EMFRecordCount(),
		Records:       playback.Records(),
		HasEMFPlus:    src.metafile.HasEMFPlus(),
		TextFragments: res.Fragments(),
		FailedRecords: len(res.FailedRecords),
		ReplayedBytes: playback.Bytes(),
		RecordsByKind: sortedCounts(playback.Counts()),
	}

	s.settings.logger.Debug("collected file stats",
		zap.String("path", src.path),
		zap.Int("records", result.Records),
		zap.Int("kinds", len(result.RecordsByKind)),
	)

	return result, nil
}

// sortedCounts orders kinds by descending count, then by tag value
func sortedCounts(counts map[record.Tag]int) []TagCount {
	tags := make([]record.Tag, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})

	out := make([]TagCount, len(tags))
	for i, tag := range tags {
		out[i] = TagCount{Tag: tag.String(), Count: counts[tag]}
	}
	return out
}
