package metafile

import (
	"github.com/a3tai/mcp-emf-reader/internal/emf/enumerator"
	"github.com/a3tai/mcp-emf-reader/internal/emf/session"
)

// Container identifies how a metafile is stored on disk
type Container string

const (
	ContainerEMF Container = "emf"
	ContainerSPL Container = "spl"
)

// Extraction modes accepted by EMFExtractText
const (
	ModeCombined   = "combined"
	ModeStructured = "structured"
)

// FileInfo represents information about an EMF or SPL file
type FileInfo struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	Container    Container `json:"container"`
	ModifiedTime string    `json:"modified_time"`
}

// RecordInfo describes one enumerated record
type RecordInfo struct {
	Index int    `json:"index"`
	Tag   string `json:"tag"`
	Type  uint32 `json:"type"`
	Flags uint16 `json:"flags,omitempty"`
	Size  int    `json:"size"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// TagCount is the number of records of one kind
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Request Types

// EMFExtractTextRequest represents a request to recover text from a metafile
type EMFExtractTextRequest struct {
	Path string `json:"path"`
	// Mode is "combined" (default) or "structured"
	Mode string `json:"mode,omitempty"`
	// LogFailed overrides the configured failure logging when set
	LogFailed *bool `json:"log_failed,omitempty"`
}

// EMFExtractRecordsRequest represents a request to list the records of a metafile
type EMFExtractRecordsRequest struct {
	Path  string   `json:"path"`
	Tags  []string `json:"tags,omitempty"`
	Limit int      `json:"limit,omitempty"`
}

// EMFValidateFileRequest represents a request to validate a metafile
type EMFValidateFileRequest struct {
	Path string `json:"path"`
}

// EMFStatsFileRequest represents a request to get stats about a metafile
type EMFStatsFileRequest struct {
	Path string `json:"path"`
}

// EMFSearchDirectoryRequest represents a request to search for metafiles in a directory
type EMFSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// EMFStatsDirectoryRequest represents a request to get directory statistics
type EMFStatsDirectoryRequest struct {
	Directory string `json:"directory"`
}

// SPLExtractEMFRequest represents a request to pull the metafile out of a spool file
type SPLExtractEMFRequest struct {
	Path string `json:"path"`
	// OutputPath defaults to the spool path with an .emf extension
	OutputPath string `json:"output_path,omitempty"`
}

// EMFServerInfoRequest represents a request to get server information and capabilities
type EMFServerInfoRequest struct{}

// Response Types

// EMFExtractTextResult represents the result of a text extraction
type EMFExtractTextResult struct {
	Path          string                 `json:"path"`
	Container     Container              `json:"container"`
	Mode          string                 `json:"mode"`
	Size          int64                  `json:"size"`
	Text          string                 `json:"text,omitempty"`
	Records       int                    `json:"records"`
	Fragments     int                    `json:"fragments"`
	DrawStrings   []string               `json:"draw_strings,omitempty"`
	ExtTextOutWs  []string               `json:"ext_text_out_ws,omitempty"`
	SmallTextOuts string                 `json:"small_text_outs,omitempty"`
	FailedRecords []session.FailedRecord `json:"failed_records,omitempty"`
}

// EMFExtractRecordsResult represents the result of a record listing
type EMFExtractRecordsResult struct {
	Path       string       `json:"path"`
	Container  Container    `json:"container"`
	Records    []RecordInfo `json:"records"`
	TotalCount int          `json:"total_count"`
	Truncated  bool         `json:"truncated,omitempty"`
}

// EMFValidateFileResult represents the result of a metafile validation
type EMFValidateFileResult struct {
	Valid     bool      `json:"valid"`
	Path      string    `json:"path"`
	Container Container `json:"container,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// EMFStatsFileResult represents the result of a metafile stats operation
type EMFStatsFileResult struct {
	Path          string            `json:"path"`
	Container     Container         `json:"container"`
	Size          int64             `json:"size"`
	MetafileSize  int               `json:"metafile_size"`
	ModifiedDate  string            `json:"modified_date"`
	Header        enumerator.Header `json:"header"`
	EMFRecords    int               `json:"emf_records"`
	Records       int               `json:"records"`
	HasEMFPlus    bool              `json:"has_emf_plus"`
	TextFragments int               `json:"text_fragments"`
	FailedRecords int               `json:"failed_records"`
	ReplayedBytes int64             `json:"replayed_bytes"`
	RecordsByKind []TagCount        `json:"records_by_kind"`
}

// EMFSearchDirectoryResult represents the result of a metafile search
type EMFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// EMFStatsDirectoryResult represents the result of directory statistics
type EMFStatsDirectoryResult struct {
	Directory        string `json:"directory"`
	TotalFiles       int    `json:"total_files"`
	EMFFiles         int    `json:"emf_files"`
	SPLFiles         int    `json:"spl_files"`
	TotalSize        int64  `json:"total_size"`
	LargestFileSize  int64  `json:"largest_file_size"`
	LargestFileName  string `json:"largest_file_name"`
	SmallestFileSize int64  `json:"smallest_file_size"`
	SmallestFileName string `json:"smallest_file_name"`
	AverageFileSize  int64  `json:"average_file_size"`
}

// SPLExtractEMFResult represents the result of a spool extraction
type SPLExtractEMFResult struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
	Size       int    `json:"size"`
	Valid      bool   `json:"valid"`
	Message    string `json:"message,omitempty"`
}

// EMFServerInfoResult represents server information and usage guidance
type EMFServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	Whitespace        Whitespace `json:"whitespace"`
	Cache             CacheStats `json:"cache"`
	UsageGuidance     string     `json:"usage_guidance"`
	SupportedFormats  []string   `json:"supported_formats"`
}

// Whitespace lists the configured candidate record names
type Whitespace struct {
	LineBreakAny []string `json:"linebreak_any,omitempty"`
	LineBreakAll []string `json:"linebreak_all,omitempty"`
	SpaceAny     []string `json:"space_any,omitempty"`
	SpaceAll     []string `json:"space_all,omitempty"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
