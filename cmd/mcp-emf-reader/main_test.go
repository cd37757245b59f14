package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/a3tai/mcp-emf-reader/internal/config"
	"github.com/a3tai/mcp-emf-reader/internal/logging"
)

const testVersion = "1.2.3"

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	originalStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = originalStdout }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
		w.Close()
	}()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	<-done
	return buf.String()
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	version = testVersion
	buildTime = "2024-03-01_10:30:00"
	gitCommit = "abc123"
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	output := captureStdout(t, printVersion)

	for _, expected := range []string{
		"MCP EMF Reader",
		"Version: " + testVersion,
		"Build Time: 2024-03-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		assert.Contains(t, output, expected)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		mode  string
		level string
		want  string
	}{
		{mode: config.ModeStdio, level: "info", want: "warn"},
		{mode: config.ModeStdio, level: "warn", want: "warn"},
		{mode: config.ModeStdio, level: "error", want: "error"},
		{mode: config.ModeStdio, level: "debug", want: "debug"},
		{mode: config.ModeServer, level: "info", want: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.level, func(t *testing.T) {
			cfg := &config.Config{Mode: tt.mode, LogLevel: tt.level}
			assert.Equal(t, tt.want, logLevel(cfg))
		})
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.EMFDirectory = t.TempDir()
	cfg.Version = testVersion
	return cfg
}

func TestNewServer(t *testing.T) {
	cfg := testConfig(t)
	server, err := newServer(cfg, logging.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, server)

	cfg.SpaceAll = []string{"EmfNotARecord"}
	_, err = newServer(cfg, logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid whitespace rules")
}

func TestRun_ServerMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = config.ModeServer
	cfg.Port = 0

	logger, logs := logging.NewObserved(zapcore.InfoLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, run(ctx, cfg, logger))
	assert.Equal(t, 1, logs.FilterMessage("server stopped successfully").Len())
}
