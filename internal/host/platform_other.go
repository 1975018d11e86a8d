//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package host

func uname() Platform {
	return Platform{}
}
