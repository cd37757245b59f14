// Command emf2text prints or saves the text of EMF and SPL files.
//
// Usage:
//
//	emf2text [flags] PATH...
//
// Each PATH is a .emf or .spl file or a directory searched recursively. With
// --write the combined text of every input is stored next to it as
// <name>_ExpectedTest.txt instead of being printed.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-emf-reader/internal/config"
	"github.com/a3tai/mcp-emf-reader/internal/logging"
	"github.com/a3tai/mcp-emf-reader/internal/metafile"
)

const (
	formatText = "text"
	formatJSON = "json"

	expectedSuffix = "_ExpectedTest.txt"
)

// options are the resolved command line settings
type options struct {
	write       bool
	format      string
	mode        string
	logFailed   bool
	maxFileSize int64
	logLevel    string
	paths       []string
	cfg         *config.Config
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "emf2text: %v\n", err)
		return 2
	}

	logger, err := logging.NewWithWriter(opts.logLevel, logging.FormatConsole, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "emf2text: %v\n", err)
		return 2
	}
	defer func() { _ = logging.Sync(logger) }()

	ws, err := opts.cfg.Whitespace()
	if err != nil {
		fmt.Fprintf(stderr, "emf2text: %v\n", err)
		return 2
	}

	reader := metafile.NewReader(opts.maxFileSize,
		metafile.WithLogger(logger),
		metafile.WithWhitespace(ws),
		metafile.WithFailureLogging(opts.logFailed),
	)

	files, err := collectInputs(opts.paths, opts.maxFileSize)
	if err != nil {
		logger.Error("cannot list inputs", zap.Error(err))
		return 1
	}

	var (
		results []*metafile.EMFExtractTextResult
		failed  int
	)
	for _, path := range files {
		result, err := reader.ExtractText(metafile.EMFExtractTextRequest{Path: path, Mode: opts.mode})
		if err != nil {
			logger.Error("extraction failed", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}

		if opts.write {
			out, err := writeExpected(result)
			if err != nil {
				logger.Error("write failed", zap.String("path", path), zap.Error(err))
				failed++
				continue
			}
			logger.Info("wrote text", zap.String("path", path), zap.String("output", out))
			continue
		}
		results = append(results, result)
	}

	if !opts.write {
		if err := printResults(stdout, opts.format, results); err != nil {
			logger.Error("cannot write output", zap.Error(err))
			return 1
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"

	fs := pflag.NewFlagSet("emf2text", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Bool("write", false, "Write <name>"+expectedSuffix+" next to each input instead of printing")
	fs.String("format", formatText, "Output format: text or json")
	fs.String("mode", metafile.ModeCombined, "Extraction mode: combined or structured")
	fs.Bool("logfailed", cfg.LogFailed, "Report text records that could not be decoded")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum EMF or SPL file size in bytes")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	config.AddWhitespaceFlags(fs, cfg)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: emf2text [flags] PATH...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// MCP_EMF_* variables apply here as they do to the server
	v := viper.New()
	v.SetEnvPrefix("MCP_EMF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	opts := &options{
		write:       v.GetBool("write"),
		format:      strings.ToLower(v.GetString("format")),
		mode:        v.GetString("mode"),
		logFailed:   v.GetBool("logfailed"),
		maxFileSize: v.GetInt64("maxfilesize"),
		logLevel:    v.GetString("loglevel"),
		paths:       fs.Args(),
		cfg:         cfg,
	}
	cfg.LineBreakAny = config.SplitList(v.GetString("linebreak-any"))
	cfg.LineBreakAll = config.SplitList(v.GetString("linebreak-all"))
	cfg.SpaceAny = config.SplitList(v.GetString("space-any"))
	cfg.SpaceAll = config.SplitList(v.GetString("space-all"))

	switch {
	case len(opts.paths) == 0:
		return nil, errors.New("no input files")
	case opts.format != formatText && opts.format != formatJSON:
		return nil, fmt.Errorf("invalid format %q: must be %s or %s", opts.format, formatText, formatJSON)
	case opts.maxFileSize <= 0:
		return nil, errors.New("maximum file size must be positive")
	}

	return opts, nil
}

// collectInputs expands directories into the metafiles below them
func collectInputs(paths []string, maxFileSize int64) ([]string, error) {
	search := metafile.NewSearch(maxFileSize)

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		found, err := search.FindMetafilesInDirectory(path)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			files = append(files, f.Path)
		}
	}
	return files, nil
}

// ExpectedPath returns where --write stores the text of path
func ExpectedPath(path string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + expectedSuffix
}

func writeExpected(result *metafile.EMFExtractTextResult) (string, error) {
	out := ExpectedPath(result.Path)
	if err := os.WriteFile(out, []byte(resultText(result)), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// resultText renders a result as plain text. Structured results list one
// fragment per line, grouped by record kind.
func resultText(result *metafile.EMFExtractTextResult) string {
	if result.Mode == metafile.ModeCombined {
		return result.Text
	}

	var lines []string
	lines = append(lines, result.DrawStrings...)
	lines = append(lines, result.ExtTextOutWs...)
	if result.SmallTextOuts != "" {
		lines = append(lines, result.SmallTextOuts)
	}
	return strings.Join(lines, "\n")
}

func printResults(w io.Writer, format string, results []*metafile.EMFExtractTextResult) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if results == nil {
			results = []*metafile.EMFExtractTextResult{}
		}
		return enc.Encode(results)
	}

	for i, result := range results {
		if len(results) > 1 {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "==> %s <==\n", result.Path); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, resultText(result)); err != nil {
			return err
		}
	}
	return nil
}
