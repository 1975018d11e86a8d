//go:build linux

package snapshot

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDefaultDst(t *testing.T) {
	_, any4, _ := net.ParseCIDR("0.0.0.0/0")
	_, lan, _ := net.ParseCIDR("192.168.1.0/24")

	assert.True(t, isDefaultDst(nil))
	assert.True(t, isDefaultDst(any4))
	assert.False(t, isDefaultDst(lan))
}

func TestSystemGateway(t *testing.T) {
	gw, err := SystemGateway{}.DefaultGateway(context.Background())
	if err != nil {
		t.Logf("no default route: %v", err)
		return
	}
	assert.NotNil(t, net.ParseIP(gw))
}
