package snapshot

import (
	"context"
	"errors"
)

var ErrNoDefaultRoute = errors.New("no default route")

// GatewayResolver reports the default gateway address.
type GatewayResolver interface {
	DefaultGateway(ctx context.Context) (string, error)
}

// SystemGateway reads the IPv4 default route from the kernel where the
// platform exposes it.
type SystemGateway struct{}
