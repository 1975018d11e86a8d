// Package host resolves local machine identity: hostname, OS user and a
// stable hardware identifier.
package host

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Paths holds the filesystem roots machine identifiers are read from.
// Tests point these at a temp dir.
type Paths struct {
	Etc string
	Var string
	Sys string
}

// DefaultPaths returns the host roots, honouring HOST_ETC, HOST_VAR and
// HOST_SYS when running inside a container with the host mounted.
func DefaultPaths() Paths {
	p := Paths{Etc: "/etc", Var: "/var", Sys: "/sys"}
	if v := os.Getenv("HOST_ETC"); v != "" {
		p.Etc = v
	}
	if v := os.Getenv("HOST_VAR"); v != "" {
		p.Var = v
	}
	if v := os.Getenv("HOST_SYS"); v != "" {
		p.Sys = v
	}
	return p
}

// Hostname returns the kernel hostname, or "" when it cannot be resolved.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}

// Username returns the current OS user name, falling back to the USER and
// USERNAME environment variables, then "".
func Username() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// MachineID returns the systemd machine id, trying /etc/machine-id then the
// D-Bus copy. ok is false when neither is readable.
func (p Paths) MachineID() (id string, ok bool) {
	return firstNonEmpty(
		filepath.Join(p.Etc, "machine-id"),
		filepath.Join(p.Var, "lib/dbus/machine-id"),
	)
}

// SystemUUID returns the DMI product uuid. Reading it usually requires root.
func (p Paths) SystemUUID() (id string, ok bool) {
	return firstNonEmpty(filepath.Join(p.Sys, "class/dmi/id/product_uuid"))
}

func firstNonEmpty(paths ...string) (string, bool) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, true
		}
	}
	return "", false
}
