package metafile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-emf-reader/internal/emf/session"
	"github.com/a3tai/mcp-emf-reader/internal/emf/whitespace"
	"github.com/a3tai/mcp-emf-reader/internal/metafile/security"
)

// Service handles metafile operations by orchestrating the reader, stats,
// search and spool components
type Service struct {
	maxFileSize   int64
	settings      *settings
	reader        *Reader
	validator     *Validator
	stats         *Stats
	search        *Search
	spool         *Spool
	serverInfo    *ServerInfo
	pathValidator *security.PathValidator
}

// settings carries the extraction options shared by the components
type settings struct {
	logger     *zap.Logger
	observer   session.Observer
	whitespace whitespace.Config
	logFailed  bool
}

// Option configures a Service
type Option func(*settings)

// WithLogger sets the logger used for summaries and decode failures
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers a traversal observer such as the metrics collector
func WithObserver(o session.Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// WithWhitespace sets the separator candidate sets used in combined mode
func WithWhitespace(cfg whitespace.Config) Option {
	return func(s *settings) {
		s.whitespace = cfg
	}
}

// WithFailureLogging sets the default for the failure log
func WithFailureLogging(enabled bool) Option {
	return func(s *settings) {
		s.logFailed = enabled
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger:    zap.NewNop(),
		logFailed: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *settings) newSession(path string, logFailed bool, extra ...session.Option) *session.Session {
	opts := []session.Option{
		session.WithLogger(s.logger.With(zap.String("path", path))),
		session.WithWhitespace(s.whitespace),
		session.WithFailureLogging(logFailed),
	}
	if s.observer != nil {
		opts = append(opts, session.WithObserver(s.observer))
	}
	return session.New(append(opts, extra...)...)
}

// NewService creates a new metafile service with all components
func NewService(maxFileSize int64, configuredDirectory string, opts ...Option) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	s := &Service{
		maxFileSize:   maxFileSize,
		settings:      newSettings(opts),
		validator:     NewValidator(maxFileSize),
		search:        NewSearch(maxFileSize),
		pathValidator: pathValidator,
	}
	s.validator.cache = NewMetafileCache(DefaultCacheCapacity)
	s.reader = &Reader{validator: s.validator, settings: s.settings}
	s.stats = &Stats{validator: s.validator, settings: s.settings}
	s.spool = &Spool{validator: s.validator, logger: s.settings.logger}
	s.serverInfo = NewServerInfo(s)

	return s, nil
}

// EMFExtractText recovers the text of a metafile
func (s *Service) EMFExtractText(req EMFExtractTextRequest) (*EMFExtractTextResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.reader.ExtractText(req)
}

// EMFExtractRecords lists the records of a metafile
func (s *Service) EMFExtractRecords(req EMFExtractRecordsRequest) (*EMFExtractRecordsResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.reader.ExtractRecords(req)
}

// EMFValidateFile checks that a file opens as a metafile
func (s *Service) EMFValidateFile(req EMFValidateFileRequest) (*EMFValidateFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(req)
}

// EMFStatsFile returns detailed statistics about a single metafile
func (s *Service) EMFStatsFile(req EMFStatsFileRequest) (*EMFStatsFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.stats.GetFileStats(req)
}

// EMFSearchDirectory searches for metafiles in a directory
func (s *Service) EMFSearchDirectory(req EMFSearchDirectoryRequest) (*EMFSearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.search.SearchDirectory(req)
}

// EMFStatsDirectory returns statistics about the metafiles in a directory
func (s *Service) EMFStatsDirectory(req EMFStatsDirectoryRequest) (*EMFStatsDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.search.GetDirectoryStats(req)
}

// SPLExtractEMF writes the metafile embedded in a spool file to disk
func (s *Service) SPLExtractEMF(req SPLExtractEMFRequest) (*SPLExtractEMFResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if req.OutputPath != "" {
		if err := s.pathValidator.ValidatePath(req.OutputPath); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}
	return s.spool.ExtractEMF(req)
}

// EMFServerInfo returns server information and usage guidance
func (s *Service) EMFServerInfo(ctx context.Context, serverName, version,
	defaultDirectory string,
) (*EMFServerInfoResult, error) {
	return s.serverInfo.GetServerInfo(ctx, serverName, version, defaultDirectory)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// CacheStats reports how often parsed metafiles were reused
func (s *Service) CacheStats() CacheStats {
	return s.validator.cache.Stats()
}

// Whitespace returns the configured candidate sets
func (s *Service) Whitespace() whitespace.Config {
	return s.settings.whitespace
}

// FailureLogging reports the default for the failure log
func (s *Service) FailureLogging() bool {
	return s.settings.logFailed
}

// IsValidMetafile performs a quick validation check on a file
func (s *Service) IsValidMetafile(filePath string) bool {
	return s.validator.IsValidMetafile(filePath)
}

// CountMetafilesInDirectory counts the valid metafiles in a directory
func (s *Service) CountMetafilesInDirectory(directory string) (int, error) {
	return s.search.CountMetafilesInDirectory(directory)
}

// FindMetafilesInDirectory finds all metafiles in a directory without filtering
func (s *Service) FindMetafilesInDirectory(directory string) ([]FileInfo, error) {
	return s.search.FindMetafilesInDirectory(directory)
}

// SearchByPattern searches for metafiles whose name matches a glob pattern
func (s *Service) SearchByPattern(directory, pattern string) (*EMFSearchDirectoryResult, error) {
	if err := s.pathValidator.ValidateDirectory(directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.search.SearchByPattern(directory, pattern)
}

// WhitespaceNames lists the configured candidate sets by record name
func WhitespaceNames(cfg whitespace.Config) Whitespace {
	return Whitespace{
		LineBreakAny: tagNames(cfg.LineBreakAny),
		LineBreakAll: tagNames(cfg.LineBreakAll),
		SpaceAny:     tagNames(cfg.SpaceAny),
		SpaceAll:     tagNames(cfg.SpaceAll),
	}
}

func tagNames(set whitespace.TagSet) []string {
	if len(set) == 0 {
		return nil
	}
	tags := set.Tags()
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.String()
	}
	return names
}
