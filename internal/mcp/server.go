package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-emf-reader/internal/config"
	"github.com/a3tai/mcp-emf-reader/internal/descriptions"
	"github.com/a3tai/mcp-emf-reader/internal/metafile"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *metafile.Service
	mcpServer *server.MCPServer
	logger    *zap.Logger
	gatherer  prometheus.Gatherer
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger used for transport and request logging
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer sets the registry exposed on /metrics in server mode
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *metafile.Service, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if service == nil {
		return nil, errors.New("metafile service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // tool list is fixed at startup
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
		logger:    zap.NewNop(),
		gatherer:  prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractTextTool := mcp.NewTool(
		"emf_extract_text",
		mcp.WithDescription(descriptions.GetToolDescription("emf_extract_text")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the .emf or .spl file"),
		),
		mcp.WithString("mode",
			mcp.Description("'combined' for one string with guessed whitespace, 'structured' for fragments per record kind"),
			mcp.Enum(metafile.ModeCombined, metafile.ModeStructured),
		),
		mcp.WithBoolean("log_failed",
			mcp.Description("Include text records that could not be decoded (defaults to the server setting)"),
		),
	)
	s.mcpServer.AddTool(extractTextTool, s.handleEMFExtractText)

	extractRecordsTool := mcp.NewTool(
		"emf_extract_records",
		mcp.WithDescription(descriptions.GetToolDescription("emf_extract_records")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the .emf or .spl file"),
		),
		mcp.WithArray("tags",
			mcp.Description("Record names to keep, for example EmfExtTextOutW or DrawString"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of records returned (default %d, at most %d)",
				metafile.DefaultRecordLimit, metafile.MaxRecordLimit)),
		),
	)
	s.mcpServer.AddTool(extractRecordsTool, s.handleEMFExtractRecords)

	validateFileTool := mcp.NewTool(
		"emf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("emf_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the .emf or .spl file"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleEMFValidateFile)

	statsFileTool := mcp.NewTool(
		"emf_stats_file",
		mcp.WithDescription(descriptions.GetToolDescription("emf_stats_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the .emf or .spl file"),
		),
	)
	s.mcpServer.AddTool(statsFileTool, s.handleEMFStatsFile)

	searchDirectoryTool := mcp.NewTool(
		"emf_search_directory",
		mcp.WithDescription(descriptions.GetToolDescription("emf_search_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	)
	s.mcpServer.AddTool(searchDirectoryTool, s.handleEMFSearchDirectory)

	statsDirectoryTool := mcp.NewTool(
		"emf_stats_directory",
		mcp.WithDescription(descriptions.GetToolDescription("emf_stats_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory path to analyze (uses default if empty)"),
		),
	)
	s.mcpServer.AddTool(statsDirectoryTool, s.handleEMFStatsDirectory)

	splExtractTool := mcp.NewTool(
		"spl_extract_emf",
		mcp.WithDescription(descriptions.GetToolDescription("spl_extract_emf")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the .spl file"),
		),
		mcp.WithString("output_path",
			mcp.Description("Destination of the metafile (defaults to the spool path with an .emf extension)"),
		),
	)
	s.mcpServer.AddTool(splExtractTool, s.handleSPLExtractEMF)

	serverInfoTool := mcp.NewTool(
		"emf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("emf_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleEMFServerInfo)
}

// Handler functions
func (s *Server) handleEMFExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	req := metafile.EMFExtractTextRequest{Path: path}
	if mode, ok := args["mode"].(string); ok {
		req.Mode = mode
	}
	if logFailed, ok := args["log_failed"].(bool); ok {
		req.LogFailed = &logFailed
	}

	result, err := s.service.EMFExtractText(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatEMFExtractTextResult(result)), nil
}

func (s *Server) handleEMFExtractRecords(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	tags, err := parseTags(args["tags"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := metafile.EMFExtractRecordsRequest{Path: path, Tags: tags}
	// JSON numbers arrive as float64
	if limit, ok := args["limit"].(float64); ok {
		req.Limit = int(limit)
	}

	result, err := s.service.EMFExtractRecords(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatEMFExtractRecordsResult(result)), nil
}

func (s *Server) handleEMFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.EMFValidateFile(metafile.EMFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("Metafile %s is valid and readable (%s)", result.Path, result.Container)
		if result.Message != "" {
			responseText += ": " + result.Message
		}
	} else {
		responseText = fmt.Sprintf("Metafile validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleEMFStatsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.EMFStatsFile(metafile.EMFStatsFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatEMFStatsFileResult(result)), nil
}

func (s *Server) handleEMFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.EMFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	result, err := s.service.EMFSearchDirectory(metafile.EMFSearchDirectoryRequest{
		Directory: directory,
		Query:     query,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No metafiles found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatEMFSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleEMFStatsDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.EMFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	result, err := s.service.EMFStatsDirectory(metafile.EMFStatsDirectoryRequest{Directory: directory})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatEMFStatsDirectoryResult(result)), nil
}

func (s *Server) handleSPLExtractEMF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := metafile.SPLExtractEMFRequest{Path: path}
	if out, ok := request.GetArguments()["output_path"].(string); ok {
		req.OutputPath = out
	}

	result, err := s.service.SPLExtractEMF(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Extracted metafile from %s\n", result.Path)
	responseText += fmt.Sprintf("Written to: %s\n", result.OutputPath)
	responseText += fmt.Sprintf("Size: %d bytes\n", result.Size)
	if result.Valid {
		responseText += fmt.Sprintf("Valid EMF: %s\n", result.Message)
	} else {
		responseText += fmt.Sprintf("\n⚠️  WARNING: The payload does not parse as EMF: %s\n", result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleEMFServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.EMFServerInfo(ctx, s.config.ServerName, s.config.Version, s.config.EMFDirectory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatEMFServerInfoResult(result)), nil
}

// parseTags accepts a JSON array of names or a comma separated string
func parseTags(v any) ([]string, error) {
	switch tags := v.(type) {
	case nil:
		return nil, nil
	case string:
		return config.SplitList(tags), nil
	case []string:
		return tags, nil
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			name, ok := t.(string)
			if !ok {
				return nil, fmt.Errorf("tags must be strings, got %T", t)
			}
			out = append(out, name)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tags must be an array of strings, got %T", v)
	}
}

// Formatting methods
func (s *Server) formatEMFExtractTextResult(result *metafile.EMFExtractTextResult) string {
	text := fmt.Sprintf("Extracted text from: %s\n", result.Path)
	text += fmt.Sprintf("Container: %s\n", result.Container)
	text += fmt.Sprintf("Mode: %s\n", result.Mode)
	text += fmt.Sprintf("Records: %d\n", result.Records)
	text += fmt.Sprintf("Text fragments: %d\n", result.Fragments)

	if len(result.FailedRecords) > 0 {
		text += fmt.Sprintf("\nUndecodable text records (%d):\n", len(result.FailedRecords))
		for i, failed := range result.FailedRecords {
			text += fmt.Sprintf("%d. %s: %s\n", i+1, failed.Tag, failed.Reason)
		}
	}

	if result.Fragments == 0 {
		text += "\n⚠️  WARNING: No text records were decoded. " +
			"The text may be drawn as paths or bitmaps.\n"
	}

	if result.Mode == metafile.ModeStructured {
		text += formatFragments("DrawString", result.DrawStrings)
		text += formatFragments("ExtTextOutW", result.ExtTextOutWs)
		if result.SmallTextOuts != "" {
			text += fmt.Sprintf("\nSmallTextOut:\n%s\n", result.SmallTextOuts)
		}
		return text
	}

	text += "\nText:\n"
	text += result.Text
	return text
}

func formatFragments(kind string, fragments []string) string {
	if len(fragments) == 0 {
		return ""
	}
	text := fmt.Sprintf("\n%s (%d):\n", kind, len(fragments))
	for i, f := range fragments {
		text += fmt.Sprintf("%d. %s\n", i+1, f)
	}
	return text
}

func (s *Server) formatEMFExtractRecordsResult(result *metafile.EMFExtractRecordsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Records of: %s (%s)\n", result.Path, result.Container)
	fmt.Fprintf(&b, "Matching records: %d", result.TotalCount)
	if result.Truncated {
		fmt.Fprintf(&b, " (showing first %d)", len(result.Records))
	}
	b.WriteString("\n\n")

	for _, r := range result.Records {
		fmt.Fprintf(&b, "%5d  %-28s %6d bytes", r.Index, r.Tag, r.Size)
		if r.Flags != 0 {
			fmt.Fprintf(&b, "  flags=0x%04X", r.Flags)
		}
		switch {
		case r.Error != "":
			fmt.Fprintf(&b, "  error: %s", r.Error)
		case r.Text != "":
			fmt.Fprintf(&b, "  %q", r.Text)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (s *Server) formatEMFSearchDirectoryResult(result *metafile.EMFSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d metafile(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Type: %s\n", file.Container)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatEMFStatsDirectoryResult(result *metafile.EMFStatsDirectoryResult) string {
	text := "Metafile Directory Statistics\n"
	text += fmt.Sprintf("Directory: %s\n", result.Directory)
	text += fmt.Sprintf("Total metafiles: %d (EMF: %d, SPL: %d)\n", result.TotalFiles, result.EMFFiles, result.SPLFiles)
	text += fmt.Sprintf("Total size: %d bytes\n", result.TotalSize)

	if result.TotalFiles > 0 {
		text += fmt.Sprintf("Average file size: %d bytes\n", result.AverageFileSize)
		if result.LargestFileName != "" {
			text += fmt.Sprintf("Largest file: %s (%d bytes)\n", result.LargestFileName, result.LargestFileSize)
		}
		if result.SmallestFileName != "" {
			text += fmt.Sprintf("Smallest file: %s (%d bytes)\n", result.SmallestFileName, result.SmallestFileSize)
		}
	}

	return text
}

func (s *Server) formatEMFStatsFileResult(result *metafile.EMFStatsFileResult) string {
	h := result.Header

	text := "Metafile Statistics\n"
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Container: %s\n", result.Container)
	text += fmt.Sprintf("Size: %d bytes (metafile %d bytes)\n", result.Size, result.MetafileSize)
	text += fmt.Sprintf("Modified: %s\n", result.ModifiedDate)
	if h.Description != "" {
		text += fmt.Sprintf("Description: %s\n", h.Description)
	}
	text += fmt.Sprintf("Bounds: (%d,%d)-(%d,%d)\n", h.Bounds.Left, h.Bounds.Top, h.Bounds.Right, h.Bounds.Bottom)
	text += fmt.Sprintf("Frame: (%d,%d)-(%d,%d) .01mm\n", h.Frame.Left, h.Frame.Top, h.Frame.Right, h.Frame.Bottom)
	text += fmt.Sprintf("Device: %dx%d pixels, %dx%d mm\n", h.Device.CX, h.Device.CY, h.Millimeters.CX, h.Millimeters.CY)
	text += fmt.Sprintf("EMF records: %d (header declares %d)\n", result.EMFRecords, h.Records)
	text += fmt.Sprintf("Records replayed: %d (%d bytes)\n", result.Records, result.ReplayedBytes)
	text += fmt.Sprintf("EMF+: %t\n", result.HasEMFPlus)
	text += fmt.Sprintf("Text fragments: %d\n", result.TextFragments)
	if result.FailedRecords > 0 {
		text += fmt.Sprintf("Undecodable text records: %d\n", result.FailedRecords)
	}

	if len(result.RecordsByKind) > 0 {
		text += "\nRecords by kind:\n"
		for _, c := range result.RecordsByKind {
			text += fmt.Sprintf("  %-28s %d\n", c.Tag, c.Count)
		}
	}

	return text
}

func (s *Server) formatEMFServerInfoResult(result *metafile.EMFServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d metafiles found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // first 10 only
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No metafiles found in default directory\n\n"
	}

	ws := result.Whitespace
	text += "↩️  Whitespace Rules:\n"
	text += fmt.Sprintf("  Line break if any:  %s\n", listOrNone(ws.LineBreakAny))
	text += fmt.Sprintf("  Line break if all:  %s\n", listOrNone(ws.LineBreakAll))
	text += fmt.Sprintf("  Space if any:       %s\n", listOrNone(ws.SpaceAny))
	text += fmt.Sprintf("  Space if all:       %s\n\n", listOrNone(ws.SpaceAll))

	c := result.Cache
	text += fmt.Sprintf("🗃️  Parsed Metafile Cache: %d/%d entries, %d hits, %d misses (%.0f%% hit rate)\n\n",
		c.Size, c.Capacity, c.Hits, c.Misses, c.HitRate)

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	if len(result.SupportedFormats) > 0 {
		text += "\n🗂️  Supported File Types:\n"
		for _, format := range result.SupportedFormats {
			text += fmt.Sprintf("  • %s\n", format)
		}
	}

	text += "\n" + result.UsageGuidance

	return text
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server over the process's standard streams
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Info("starting EMF MCP server",
		zap.String("mode", config.ModeStdio),
		zap.String("directory", s.config.EMFDirectory))

	return s.serveStdio(ctx, os.Stdin, os.Stdout)
}

// serveStdio speaks MCP over in and out until ctx is done or in is closed
func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("failed to serve stdio: %w", err)
}

// runServerMode runs the server over HTTP with SSE transport
func (s *Server) runServerMode(ctx context.Context) error {
	s.logger.Info("starting EMF MCP server",
		zap.String("mode", config.ModeServer),
		zap.String("address", s.config.Address()),
		zap.String("directory", s.config.EMFDirectory))

	return s.newHTTPServer().Start(ctx)
}
