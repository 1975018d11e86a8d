package host

import (
	"runtime"
	"strings"
)

// Platform describes the running operating system.
type Platform struct {
	OS           string
	Release      string
	Version      string
	Architecture string
}

var osNames = map[string]string{
	"linux":   "Linux",
	"darwin":  "Darwin",
	"windows": "Windows",
	"freebsd": "FreeBSD",
	"openbsd": "OpenBSD",
	"netbsd":  "NetBSD",
}

// OSName maps a GOOS value to the conventional platform name.
func OSName(goos string) string {
	if name, ok := osNames[goos]; ok {
		return name
	}
	if goos == "" {
		return ""
	}
	return strings.ToUpper(goos[:1]) + goos[1:]
}

// CurrentPlatform reports the OS descriptor. Release and version come from
// uname where available; architecture falls back to GOARCH.
func CurrentPlatform() Platform {
	p := uname()
	p.OS = OSName(runtime.GOOS)
	if p.Architecture == "" {
		p.Architecture = runtime.GOARCH
	}
	return p
}
