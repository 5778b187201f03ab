package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/notedraft/internal/config"
	"github.com/fyrsmithlabs/notedraft/internal/draftstore"
	"github.com/fyrsmithlabs/notedraft/internal/editor"
	"github.com/fyrsmithlabs/notedraft/internal/recovery"
	"github.com/fyrsmithlabs/notedraft/internal/telemetry"
)

// setupEnv points configuration at a temporary home with a file backend and
// returns the draft directory root.
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	root := filepath.Join(home, "drafts")
	t.Setenv("HOME", home)
	t.Setenv("NOTEDRAFT_STORE_BACKEND", "file")
	t.Setenv("NOTEDRAFT_STORE_PATH", root)
	t.Setenv("NOTEDRAFT_LOGGING_LEVEL", "error")
	return root
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel = "", ""
	draftsOutputJSON, draftsClearAll = false, false

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "notedraft dev\n", out)
}

func TestLoggingConfig(t *testing.T) {
	cfg, err := loggingConfig(config.LoggingConfig{Level: "debug", Format: "console"}, false, false)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.False(t, cfg.Output.Stdout, "stdout carries command output")
	assert.True(t, cfg.Output.Stderr)
	assert.Equal(t, "dev", cfg.Fields["version"])
	require.NoError(t, cfg.Validate())

	cfg, err = loggingConfig(config.LoggingConfig{Level: "trace", Format: "json", File: "/tmp/x.log"}, true, true)
	require.NoError(t, err)
	assert.False(t, cfg.Output.Stderr, "the editor owns the terminal")
	assert.Equal(t, "/tmp/x.log", cfg.Output.File)
	assert.True(t, cfg.Output.OTEL)

	_, err = loggingConfig(config.LoggingConfig{Level: "loud", Format: "json"}, false, false)
	assert.Error(t, err)
}

func TestInitLogger_InteractiveWithoutOutputs(t *testing.T) {
	tel, err := telemetry.New(context.Background(), telemetry.NewDefaultConfig())
	require.NoError(t, err)

	logger, err := initLogger(config.LoggingConfig{Level: "info", Format: "json"}, tel, true)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(zapcore.ErrorLevel))

	path := filepath.Join(t.TempDir(), "notedraft.log")
	logger, err = initLogger(config.LoggingConfig{Level: "info", Format: "json", File: path}, tel, true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(zapcore.InfoLevel))
}

func TestRecoveryPrompt(t *testing.T) {
	p, err := recoveryPrompt(recoverAlways, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, recovery.Static(true), p)

	p, err = recoveryPrompt(recoverNever, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, recovery.Static(false), p)

	p, err = recoveryPrompt(recoverAsk, bytes.NewBufferString("y"), io.Discard)
	require.NoError(t, err)
	assert.IsType(t, &recovery.Terminal{}, p)

	_, err = recoveryPrompt("sometimes", nil, nil)
	assert.ErrorContains(t, err, "invalid --recover")
}

func TestLoadManifest(t *testing.T) {
	m, err := loadManifest("")
	require.NoError(t, err)
	assert.Equal(t, "content", m.Fields[0].ID)

	path := filepath.Join(t.TempDir(), "post.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[field]]\nid = \"title\"\n"), 0600))
	m, err = loadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "title", m.Fields[0].ID)
}

func TestWriteNotes(t *testing.T) {
	notes := []editor.Note{{
		Form:        "note",
		Fields:      map[string]string{"content": "hello"},
		SubmittedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	var out bytes.Buffer
	require.NoError(t, writeNotes(nil, "", &out))
	assert.Empty(t, out.String())

	require.NoError(t, writeNotes(notes, "", &out))
	assert.Contains(t, out.String(), `"form": "note"`)
	assert.Contains(t, out.String(), `"content": "hello"`)
	assert.Contains(t, out.String(), `"submitted_at": "2026-01-02T03:04:05Z"`)

	path := filepath.Join(t.TempDir(), "note.json")
	require.NoError(t, writeNotes(notes, path, io.Discard))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out.String(), string(data))
}

func TestNewApp(t *testing.T) {
	root := setupEnv(t)

	a, err := newApp(context.Background(), false)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, config.BackendFile, a.cfg.Store.Backend)
	assert.Equal(t, root, a.cfg.Store.Path)
	assert.NotEmpty(t, a.pageID)
	require.NotNil(t, a.store)

	ctx := a.Context(context.Background())
	require.NoError(t, a.store.Set(ctx, "notes_draft", "hello"))
	got, ok, err := a.store.Get(ctx, "notes_draft")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestNewApp_InvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("NOTEDRAFT_STORE_BACKEND", "floppy")

	_, err := newApp(context.Background(), false)
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestPrintEvent(t *testing.T) {
	var out bytes.Buffer
	printEvent(&out, draftstore.Event{
		Key:       "notes_draft",
		Op:        draftstore.OpSaved,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	assert.Equal(t, "2026-01-02T03:04:05Z\tsaved\tnotes\n", out.String())
}
