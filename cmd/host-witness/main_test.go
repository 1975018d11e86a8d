package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineConfig points every lookup at a port nothing listens on.
func offlineConfig(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "log_level: error\nlookup:\n  timeout_sec: 1\n  public_ip_urls: [\"http://127.0.0.1:1/ip\"]\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCapturesPlaintext(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--config", offlineConfig(t, ""), "--log-dir", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_failed_login.log"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Public IP      : N/A")
	assert.NotContains(t, string(data), "Location")
}

func TestCaptureAndVerify(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(keyFile, []byte(hex.EncodeToString([]byte("0123456789abcdef"))), 0o600))
	cfg := offlineConfig(t, "")

	out, err := execute(t, "--config", cfg, "--log-dir", dir, "capture", "--format", "both", "--key-file", keyFile)
	require.NoError(t, err)
	paths := strings.Fields(out)
	require.Len(t, paths, 2)
	jsonl := paths[1]
	assert.True(t, strings.HasSuffix(jsonl, ".jsonl"))

	out, err = execute(t, "--config", cfg, "verify", jsonl, "--key-file", keyFile)
	require.NoError(t, err)
	assert.Contains(t, out, "line 1: ok (sealed)")
	assert.Contains(t, out, "1 records, 0 failed")

	out, err = execute(t, "--config", cfg, "verify", jsonl)
	assert.ErrorIs(t, err, errVerifyFailed)
	assert.Contains(t, out, "FAIL (sealed)")
}

func TestCaptureRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "--config", offlineConfig(t, ""), "--log-dir", t.TempDir(), "capture", "--format", "xml")
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "20000101.jsonl")
	require.NoError(t, os.WriteFile(old, []byte("{}\n"), 0o644))

	out, err := execute(t, "--config", offlineConfig(t, ""), "--log-dir", dir, "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "retention disabled")
	assert.FileExists(t, old)

	out, err = execute(t, "--config", offlineConfig(t, "retention_days: 7\n"), "--log-dir", dir, "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "removed "+old)
	assert.NoFileExists(t, old)
}

func TestInvalidConfig(t *testing.T) {
	_, err := execute(t, "--config", offlineConfig(t, "retention_days: -3\n"))
	assert.Error(t, err)
}
