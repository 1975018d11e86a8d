//go:build !linux

package snapshot

import (
	"context"
	"errors"
	"runtime"
)

func (SystemGateway) DefaultGateway(_ context.Context) (string, error) {
	return "", errors.Join(ErrNoDefaultRoute, errors.New("route table not readable on "+runtime.GOOS))
}
