//go:build linux

package snapshot

import (
	"context"
	"net"

	"github.com/vishvananda/netlink"
)

func (SystemGateway) DefaultGateway(_ context.Context) (string, error) {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return "", err
	}
	for _, r := range routes {
		if r.Gw != nil && isDefaultDst(r.Dst) {
			return r.Gw.String(), nil
		}
	}
	return "", ErrNoDefaultRoute
}

// Older kernels and netlink versions report the default route with a nil
// destination, newer ones with 0.0.0.0/0.
func isDefaultDst(dst *net.IPNet) bool {
	if dst == nil {
		return true
	}
	ones, _ := dst.Mask.Size()
	return ones == 0
}
