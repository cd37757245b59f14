package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-emf-reader/internal/emf/whitespace"
	"github.com/a3tai/mcp-emf-reader/internal/logging"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = logging.FormatJSON
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Whitespace candidates used by the reference batch driver
	DefaultLineBreakAny = "EmfSelectObject,EmfDeleteObject"
	DefaultSpaceAny     = "EmfIntersectClipRect"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "MCP_EMF"
)

// Config holds all configuration for the EMF MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Metafile configuration
	EMFDirectory string
	MaxFileSize  int64 // Maximum EMF or SPL file size in bytes
	LogFailed    bool  // keep undecodable text records in results

	// Whitespace candidates, as record tag names
	LineBreakAny []string
	LineBreakAll []string
	SpaceAny     []string
	SpaceAll     []string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio, // Default to stdio mode for MCP compatibility
		Host:         DefaultHost,
		Port:         DefaultPort,
		EMFDirectory: currentDir,
		MaxFileSize:  DefaultMaxFileSize,
		LogFailed:    true,
		LineBreakAny: SplitList(DefaultLineBreakAny),
		SpaceAny:     SplitList(DefaultSpaceAny),
		Version:      "1.0.0",
		ServerName:   "mcp-emf-reader",
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.EMFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.EMFDirectory); err == nil {
			cfg.EMFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// flagKeys lists every key shared by flags, environment and viper
var flagKeys = []string{
	"mode", "host", "port", "dir", "loglevel", "logformat", "maxfilesize", "logfailed",
	"linebreak-any", "linebreak-all", "space-any", "space-all",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// MCP_EMF_LINEBREAK_ANY maps to linebreak-any
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.EMFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("logfailed", cfg.LogFailed)
	viper.SetDefault("linebreak-any", JoinList(cfg.LineBreakAny))
	viper.SetDefault("linebreak-all", JoinList(cfg.LineBreakAll))
	viper.SetDefault("space-any", JoinList(cfg.SpaceAny))
	viper.SetDefault("space-all", JoinList(cfg.SpaceAll))
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP (SSE) server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.EMFDirectory, "Directory containing EMF and SPL files")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (json, console)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum EMF or SPL file size in bytes")
	pflag.Bool("logfailed", cfg.LogFailed, "Report text records that could not be decoded")
	AddWhitespaceFlags(pflag.CommandLine, cfg)
}

// AddWhitespaceFlags defines the four whitespace candidate flags on fs
func AddWhitespaceFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("linebreak-any", JoinList(cfg.LineBreakAny),
		"Insert a line break when any of these records precedes a text record")
	fs.String("linebreak-all", JoinList(cfg.LineBreakAll),
		"Insert a line break when all of these records precede a text record")
	fs.String("space-any", JoinList(cfg.SpaceAny),
		"Insert a space when any of these records precedes a text record")
	fs.String("space-all", JoinList(cfg.SpaceAll),
		"Insert a space when all of these records precede a text record")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range flagKeys {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP EMF Reader - A Model Context Protocol server for recovering text from EMF and SPL files\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/spool                    "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/path/to/spool      # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --space-any=EmfIntersectClipRect,EmfSaveDC # custom whitespace rules\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_MODE           Server mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_HOST           Server host\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_PORT           Server port\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_DIR            EMF directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_LOGFORMAT      Log format\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_MAXFILESIZE    Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_LOGFAILED      Report undecodable records\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_LINEBREAK_ANY  Line break candidates (comma separated)\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_LINEBREAK_ALL  Required line break records\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_SPACE_ANY      Space candidates\n")
		fmt.Fprintf(os.Stderr, "  MCP_EMF_SPACE_ALL      Required space records\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.EMFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.LogFailed = viper.GetBool("logfailed")
	cfg.LineBreakAny = SplitList(viper.GetString("linebreak-any"))
	cfg.LineBreakAll = SplitList(viper.GetString("linebreak-all"))
	cfg.SpaceAny = SplitList(viper.GetString("space-any"))
	cfg.SpaceAll = SplitList(viper.GetString("space-all"))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters in server mode
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.EMFDirectory == "" {
		return errors.New("EMF directory cannot be empty")
	}

	// Create the directory if it doesn't exist
	if _, err := os.Stat(c.EMFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.EMFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create EMF directory %s: %w", c.EMFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access EMF directory %s: %w", c.EMFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid log format: %s (must be one of: json, console)", c.LogFormat)
	}

	if _, err := c.Whitespace(); err != nil {
		return err
	}

	return nil
}

// Whitespace resolves the configured tag names into heuristic candidate sets
func (c *Config) Whitespace() (whitespace.Config, error) {
	return ParseWhitespace(c.LineBreakAny, c.LineBreakAll, c.SpaceAny, c.SpaceAll)
}

// ParseWhitespace resolves four lists of tag names into a whitespace.Config
func ParseWhitespace(lineBreakAny, lineBreakAll, spaceAny, spaceAll []string) (whitespace.Config, error) {
	var (
		cfg whitespace.Config
		err error
	)
	if cfg.LineBreakAny, err = whitespace.ParseTagSet(lineBreakAny); err != nil {
		return cfg, fmt.Errorf("linebreak-any: %w", err)
	}
	if cfg.LineBreakAll, err = whitespace.ParseTagSet(lineBreakAll); err != nil {
		return cfg, fmt.Errorf("linebreak-all: %w", err)
	}
	if cfg.SpaceAny, err = whitespace.ParseTagSet(spaceAny); err != nil {
		return cfg, fmt.Errorf("space-any: %w", err)
	}
	if cfg.SpaceAll, err = whitespace.ParseTagSet(spaceAll); err != nil {
		return cfg, fmt.Errorf("space-all: %w", err)
	}
	return cfg, nil
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinList is the inverse of SplitList
func JoinList(items []string) string {
	return strings.Join(items, ",")
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, EMFDirectory: %s, LogLevel: %s, LogFormat: %s, "+
		"MaxFileSize: %d, LogFailed: %t, LineBreakAny: [%s], LineBreakAll: [%s], SpaceAny: [%s], SpaceAll: [%s]}",
		c.Mode, c.Host, c.Port, c.EMFDirectory, c.LogLevel, c.LogFormat, c.MaxFileSize, c.LogFailed,
		JoinList(c.LineBreakAny), JoinList(c.LineBreakAll), JoinList(c.SpaceAny), JoinList(c.SpaceAll))
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
