package metafile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a3tai/mcp-emf-reader/internal/descriptions"
)

const (
	serverInfoCacheTTL  = 5 * time.Minute
	serverInfoMaxDepth  = 5
	serverInfoFileLimit = 100
	serverInfoScanLimit = 3 * time.Second
	serverInfoTimeout   = 10 * time.Second
)

// DirectoryCache keeps directory listings for a fixed time
type DirectoryCache struct {
	entries map[string]*CacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

// CacheEntry is one cached listing
type CacheEntry struct {
	files      []FileInfo
	lastUpdate time.Time
	scanning   bool
}

// NewDirectoryCache creates a cache whose entries expire after ttl
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]*CacheEntry),
		ttl:     ttl,
	}
}

// Get returns the listing for path, or nil when absent or expired
func (c *DirectoryCache) Get(path string) *CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || entry.lastUpdate.IsZero() || time.Since(entry.lastUpdate) > c.ttl {
		return nil
	}
	return entry
}

// Set stores the listing for path
func (c *DirectoryCache) Set(path string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		entry = &CacheEntry{}
		c.entries[path] = entry
	}
	entry.files = files
	entry.lastUpdate = time.Now()
}

// TryStartScan marks path as being scanned. It returns false when a scan is
// already running.
func (c *DirectoryCache) TryStartScan(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		entry = &CacheEntry{}
		c.entries[path] = entry
	}
	if entry.scanning {
		return false
	}
	entry.scanning = true
	return true
}

// FinishScan clears the scanning mark for path
func (c *DirectoryCache) FinishScan(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[path]; ok {
		entry.scanning = false
	}
}

// Clear removes expired entries
func (c *DirectoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for path, entry := range c.entries {
		if !entry.scanning && now.Sub(entry.lastUpdate) > c.ttl {
			delete(c.entries, path)
		}
	}
}

// Len returns the number of entries, expired ones included
func (c *DirectoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ScanResult is the outcome of one bounded directory scan
type ScanResult struct {
	Files        []FileInfo
	ScanTime     time.Duration
	FilesScanned int
	Truncated    bool
}

// LazyDirectoryScanner walks a directory tree within depth, file count and
// time limits
type LazyDirectoryScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
}

// NewLazyDirectoryScanner creates a scanner. Zero disables a limit.
func NewLazyDirectoryScanner(maxDepth, fileLimit int, timeLimit time.Duration) *LazyDirectoryScanner {
	return &LazyDirectoryScanner{
		maxDepth:  maxDepth,
		fileLimit: fileLimit,
		timeLimit: timeLimit,
	}
}

type scanState struct {
	start   time.Time
	visited map[string]bool
	result  *ScanResult
}

// ScanDirectory lists the non-empty metafiles below root. Hidden entries and
// symlinks are skipped.
func (s *LazyDirectoryScanner) ScanDirectory(ctx context.Context, root string) (*ScanResult, error) {
	st := &scanState{
		start:   time.Now(),
		visited: make(map[string]bool),
		result:  &ScanResult{Files: []FileInfo{}},
	}

	err := s.scan(ctx, root, 0, st)
	st.result.ScanTime = time.Since(st.start)
	return st.result, err
}

func (s *LazyDirectoryScanner) scan(ctx context.Context, dir string, depth int, st *scanState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.maxDepth > 0 && depth >= s.maxDepth {
		return nil
	}
	if s.limitReached(st) {
		st.result.Truncated = true
		return nil
	}

	realPath, err := filepath.EvalSymlinks(dir)
	if err != nil || st.visited[realPath] {
		return nil //nolint:nilerr // unresolvable or already visited
	}
	st.visited[realPath] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil //nolint:nilerr // unreadable directories are skipped
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		st.result.FilesScanned++

		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		path := filepath.Join(dir, name)
		if entry.IsDir() {
			if err := s.scan(ctx, path, depth+1, st); err != nil {
				return err
			}
			continue
		}

		if !IsMetafileName(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		st.result.Files = append(st.result.Files, newFileInfo(path, info))

		if s.limitReached(st) {
			st.result.Truncated = true
			return nil
		}
	}

	return nil
}

func (s *LazyDirectoryScanner) limitReached(st *scanState) bool {
	if s.fileLimit > 0 && len(st.result.Files) >= s.fileLimit {
		return true
	}
	return s.timeLimit > 0 && time.Since(st.start) > s.timeLimit
}

// ServerInfo builds the emf_server_info response
type ServerInfo struct {
	cache   *DirectoryCache
	scanner *LazyDirectoryScanner
	service *Service
}

// NewServerInfo creates a server info handler bound to service
func NewServerInfo(service *Service) *ServerInfo {
	return &ServerInfo{
		cache:   NewDirectoryCache(serverInfoCacheTTL),
		scanner: NewLazyDirectoryScanner(serverInfoMaxDepth, serverInfoFileLimit, serverInfoScanLimit),
		service: service,
	}
}

// GetServerInfo returns server capabilities and a bounded listing of the
// default directory
func (p *ServerInfo) GetServerInfo(ctx context.Context, serverName, version,
	defaultDirectory string,
) (*EMFServerInfoResult, error) {
	validatedDir := defaultDirectory
	if err := p.service.pathValidator.ValidateDirectory(defaultDirectory); err != nil {
		validatedDir = p.service.pathValidator.GetConfiguredDirectory()
	}

	return &EMFServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  validatedDir,
		MaxFileSize:       p.service.maxFileSize,
		AvailableTools:    AvailableTools(),
		DirectoryContents: p.listDirectory(ctx, validatedDir),
		Whitespace:        WhitespaceNames(p.service.Whitespace()),
		Cache:             p.service.CacheStats(),
		UsageGuidance:     p.usageGuidance(),
		SupportedFormats:  SupportedExtensions,
	}, nil
}

func (p *ServerInfo) listDirectory(ctx context.Context, dir string) []FileInfo {
	if cached := p.cache.Get(dir); cached != nil {
		return cached.files
	}

	// a concurrent scan of the same directory fills the cache; answer empty
	if !p.cache.TryStartScan(dir) {
		return []FileInfo{}
	}
	defer p.cache.FinishScan(dir)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, serverInfoTimeout)
		defer cancel()
	}

	result, err := p.scanner.ScanDirectory(ctx, dir)
	if err != nil {
		return []FileInfo{}
	}

	p.cache.Set(dir, result.Files)
	return result.Files
}

// ClearCache removes expired directory listings
func (p *ServerInfo) ClearCache() {
	p.cache.Clear()
}

// AvailableTools describes the tools the server registers
func AvailableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "emf_extract_text",
			Description: descriptions.GetToolDescription("emf_extract_text"),
			Usage: "Use 'combined' mode for one string with guessed line breaks and spaces, " +
				"'structured' mode for the fragments of each text record kind.",
			Parameters: "path (required): Path to the .emf or .spl file, " +
				"mode (optional): 'combined' (default) or 'structured', " +
				"log_failed (optional): Include undecodable text records",
		},
		{
			Name:        "emf_extract_records",
			Description: descriptions.GetToolDescription("emf_extract_records"),
			Usage:       "Use this tool to inspect which records separate text fragments when tuning whitespace rules.",
			Parameters: "path (required): Path to the .emf or .spl file, " +
				"tags (optional): Record names to keep, " +
				"limit (optional): Maximum records returned (default 1000)",
		},
		{
			Name:        "emf_validate_file",
			Description: descriptions.GetToolDescription("emf_validate_file"),
			Usage:       "Use this tool before extraction to check a file is readable.",
			Parameters:  "path (required): Path to the .emf or .spl file",
		},
		{
			Name:        "emf_stats_file",
			Description: descriptions.GetToolDescription("emf_stats_file"),
			Usage:       "Use this tool to see bounds, description, EMF+ presence and record counts per kind.",
			Parameters:  "path (required): Path to the .emf or .spl file",
		},
		{
			Name:        "emf_search_directory",
			Description: descriptions.GetToolDescription("emf_search_directory"),
			Usage:       "Use this tool to find metafiles in the default or a specified directory.",
			Parameters: "directory (optional): Directory to search (uses default if empty), " +
				"query (optional): Search query for fuzzy filename matching",
		},
		{
			Name:        "emf_stats_directory",
			Description: descriptions.GetToolDescription("emf_stats_directory"),
			Usage:       "Use this tool for an overview of file counts and sizes.",
			Parameters:  "directory (optional): Directory to analyze (uses default if empty)",
		},
		{
			Name:        "spl_extract_emf",
			Description: descriptions.GetToolDescription("spl_extract_emf"),
			Usage:       "Use this tool to save the EMF payload of an .spl file for other tools.",
			Parameters: "path (required): Path to the .spl file, " +
				"output_path (optional): Destination (defaults to the spool path with an .emf extension)",
		},
		{
			Name:        "emf_server_info",
			Description: descriptions.GetToolDescription("emf_server_info"),
			Usage:       "Use this tool first to learn the server configuration.",
			Parameters:  "none",
		},
	}
}

func (p *ServerInfo) usageGuidance() string {
	return fmt.Sprintf(`EMF MCP Server Usage Guide:

1. START WITH DISCOVERY:
   - Use 'emf_search_directory' to find .emf and .spl files
   - Use 'emf_stats_directory' for an overview of the directory

2. VALIDATE FILES:
   - Use 'emf_validate_file' to check a file opens before extracting

3. EXTRACT TEXT:
   - Use 'emf_extract_text' with mode 'combined' for readable text
   - Use mode 'structured' to get DrawString, ExtTextOutW and SmallTextOut fragments separately
   - Spool (.spl) files are unwrapped automatically

4. TUNE WHITESPACE:
   - Line breaks and spaces are guessed from the records between two text fragments
   - Use 'emf_extract_records' to see those records
   - The rules are set at startup with --linebreak-any, --linebreak-all, --space-any and --space-all

5. INSPECT:
   - Use 'emf_stats_file' for header fields and record counts
   - Use 'spl_extract_emf' to save the metafile inside a spool file

IMPORTANT NOTES:
- The server can handle files up to %dMB
- Only text drawn with ExtTextOutW, SmallTextOut or EMF+ DrawString is recovered
- Text rendered as paths or bitmaps cannot be extracted
- Directory contents are cached for %d minutes and limited to %d files`,
		p.service.maxFileSize/(1024*1024),
		int(serverInfoCacheTTL.Minutes()),
		serverInfoFileLimit,
	)
}
