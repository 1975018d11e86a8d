//go:build linux || darwin || freebsd || netbsd || openbsd

package host

import "golang.org/x/sys/unix"

func uname() Platform {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return Platform{}
	}
	return Platform{
		Release:      unix.ByteSliceToString(u.Release[:]),
		Version:      unix.ByteSliceToString(u.Version[:]),
		Architecture: unix.ByteSliceToString(u.Machine[:]),
	}
}
