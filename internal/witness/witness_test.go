package witness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"host-witness/internal/config"
	"host-witness/internal/journal"
	"host-witness/internal/snapshot"
)

type fixedCollector struct {
	snap  snapshot.HostSnapshot
	calls int
}

func (f *fixedCollector) Collect(context.Context) snapshot.HostSnapshot {
	f.calls++
	return f.snap
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.LogDir = filepath.Join(t.TempDir(), "logs")
	return cfg
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "text": FormatText, "JSON": FormatJSON, "both": FormatBoth} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Equal(t, "both", FormatBoth.String())
}

func TestService_CaptureBoth(t *testing.T) {
	cfg := testConfig(t)
	writer, err := journal.NewWriter(cfg.LogDir)
	require.NoError(t, err)
	collector := &fixedCollector{snap: snapshot.HostSnapshot{
		Hostname:     "bastion-01",
		Username:     "alice",
		LocalIPs:     map[string][]string{},
		MACAddresses: map[string]string{},
		UUIDHash:     snapshot.Fingerprint("x"),
	}}

	svc := NewService(collector, writer, cfg, testr.New(t))
	res, err := svc.Capture(context.Background(), FormatBoth)
	require.NoError(t, err)

	require.Len(t, res.Paths, 2)
	assert.True(t, strings.HasSuffix(res.Paths[0], journal.PlaintextSuffix))
	assert.True(t, strings.HasSuffix(res.Paths[1], journal.StructuredSuffix))
	assert.Equal(t, 1, collector.calls)

	text, err := os.ReadFile(res.Paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(text), "Public IP      : N/A")
	assert.NotContains(t, string(text), "Location")

	results, err := journal.Verify(res.Paths[1], nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, collector.snap, *results[0].Snapshot)
}

func TestService_CapturePrunesExpired(t *testing.T) {
	cfg := testConfig(t)
	cfg.RetentionDays = 1
	writer, err := journal.NewWriter(cfg.LogDir)
	require.NoError(t, err)
	old := filepath.Join(cfg.LogDir, "20000101_failed_login.log")
	require.NoError(t, os.WriteFile(old, []byte("old\n"), 0o644))

	svc := NewService(&fixedCollector{}, writer, cfg, testr.New(t))
	_, err = svc.Capture(context.Background(), FormatText)
	require.NoError(t, err)
	assert.NoFileExists(t, old)
}

func TestService_HookFailureDoesNotFailCapture(t *testing.T) {
	cfg := testConfig(t)
	cfg.Hooks.Enabled = true
	cfg.Hooks.Dir = filepath.Join(t.TempDir(), "missing-hooks")
	writer, err := journal.NewWriter(cfg.LogDir)
	require.NoError(t, err)

	svc := NewService(&fixedCollector{}, writer, cfg, testr.New(t))
	res, err := svc.Capture(context.Background(), FormatJSON)
	require.NoError(t, err)
	assert.Len(t, res.Paths, 1)
}

func TestNew_OfflineCapture(t *testing.T) {
	cfg := testConfig(t)
	cfg.Lookup.PublicIPURLs = []string{"http://127.0.0.1:1/ip"}
	cfg.Lookup.TimeoutSec = 1

	svc, err := New(cfg, []byte("0123456789abcdef"), testr.New(t))
	require.NoError(t, err)
	assert.DirExists(t, cfg.LogDir)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := svc.Capture(ctx, FormatJSON)
	require.NoError(t, err)
	assert.Nil(t, res.Snapshot.PublicIP)
	assert.Nil(t, res.Snapshot.Geo)
	assert.Regexp(t, `^[0-9a-f]{64}$`, res.Snapshot.UUIDHash)

	opener, err := journal.NewAESGCM([]byte("0123456789abcdef"))
	require.NoError(t, err)
	results, err := journal.Verify(res.Paths[0], opener)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Encrypted)
	assert.True(t, results[0].OK())
}

func TestService_WriteFailurePropagates(t *testing.T) {
	cfg := testConfig(t)
	writer, err := journal.NewWriter(cfg.LogDir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(cfg.LogDir))
	require.NoError(t, os.WriteFile(cfg.LogDir, nil, 0o644))

	svc := NewService(&fixedCollector{}, writer, cfg, testr.New(t))
	_, err = svc.Capture(context.Background(), FormatText)
	assert.Error(t, err)
}
