package host

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempPaths(t *testing.T) Paths {
	t.Helper()
	root := t.TempDir()
	p := Paths{
		Etc: filepath.Join(root, "etc"),
		Var: filepath.Join(root, "var"),
		Sys: filepath.Join(root, "sys"),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(p.Var, "lib/dbus"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(p.Sys, "class/dmi/id"), 0o755))
	require.NoError(t, os.MkdirAll(p.Etc, 0o755))
	return p
}

func TestMachineID(t *testing.T) {
	tests := []struct {
		name   string
		etc    string
		dbus   string
		want   string
		wantOK bool
	}{
		{name: "etc machine-id", etc: "1234567890abcdef\n", dbus: "ffff\n", want: "1234567890abcdef", wantOK: true},
		{name: "dbus fallback", etc: "  \n", dbus: "abcdef\n", want: "abcdef", wantOK: true},
		{name: "none", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tempPaths(t)
			if tt.etc != "" {
				require.NoError(t, os.WriteFile(filepath.Join(p.Etc, "machine-id"), []byte(tt.etc), 0o644))
			}
			if tt.dbus != "" {
				require.NoError(t, os.WriteFile(filepath.Join(p.Var, "lib/dbus/machine-id"), []byte(tt.dbus), 0o644))
			}

			id, ok := p.MachineID()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestSystemUUID(t *testing.T) {
	p := tempPaths(t)
	_, ok := p.SystemUUID()
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(p.Sys, "class/dmi/id/product_uuid"),
		[]byte("4C4C4544-0042-3510-8052-B4C04F564433\n"), 0o400))
	id, ok := p.SystemUUID()
	assert.True(t, ok)
	assert.Equal(t, "4C4C4544-0042-3510-8052-B4C04F564433", id)
}

func TestOSName(t *testing.T) {
	assert.Equal(t, "Linux", OSName("linux"))
	assert.Equal(t, "Darwin", OSName("darwin"))
	assert.Equal(t, "Plan9", OSName("plan9"))
	assert.Equal(t, "", OSName(""))
}

func TestCurrentPlatform(t *testing.T) {
	p := CurrentPlatform()
	assert.Equal(t, OSName(runtime.GOOS), p.OS)
	assert.NotEmpty(t, p.Architecture)
	if runtime.GOOS == "linux" {
		assert.NotEmpty(t, p.Release)
		assert.NotEmpty(t, p.Version)
	}
}

func TestIdentity(t *testing.T) {
	assert.NotEmpty(t, Hostname())

	t.Setenv("USER", "fallback-user")
	assert.NotEmpty(t, Username())
}
