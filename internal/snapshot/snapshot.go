// Package snapshot collects point-in-time host and network facts.
package snapshot

import (
	"maps"
	"slices"
	"time"
)

const (
	UTCLayout   = "2006-01-02T15:04:05.000Z"
	LocalLayout = "2006-01-02T15:04:05.000-07:00"
)

// Gateway sources recorded in HostSnapshot.GatewaySource. Neither is an
// authoritative answer: the route table may change, and the hostname lookup
// only approximates a gateway.
const (
	GatewayFromRouteTable     = "route-table"
	GatewayFromHostnameLookup = "hostname-lookup"
)

// HostSnapshot is one collection of host facts. Optional fields are nil when
// the step that fills them failed.
type HostSnapshot struct {
	TimestampUTC   string              `json:"timestamp_utc"`
	TimestampLocal string              `json:"timestamp_local"`
	Hostname       string              `json:"hostname"`
	Username       string              `json:"username"`
	OS             string              `json:"os"`
	OSRelease      string              `json:"os_release"`
	OSVersion      string              `json:"os_version"`
	Architecture   string              `json:"architecture"`
	PublicIP       *string             `json:"public_ip"`
	Geo            map[string]string   `json:"geo"`
	LocalIPs       map[string][]string `json:"local_ips"`
	MACAddresses   map[string]string   `json:"mac_addresses"`
	DefaultGateway *string             `json:"default_gateway"`
	GatewaySource  string              `json:"default_gateway_source"`
	UUIDHash       string              `json:"uuid_hash"`
}

// Timestamps formats t in both snapshot layouts.
func Timestamps(t time.Time) (utc, local string) {
	return t.UTC().Format(UTCLayout), t.Local().Format(LocalLayout)
}

// Clone returns a deep copy so callers can never alias another snapshot's maps.
func (s HostSnapshot) Clone() HostSnapshot {
	out := s
	if s.PublicIP != nil {
		ip := *s.PublicIP
		out.PublicIP = &ip
	}
	if s.DefaultGateway != nil {
		gw := *s.DefaultGateway
		out.DefaultGateway = &gw
	}
	out.Geo = maps.Clone(s.Geo)
	out.MACAddresses = maps.Clone(s.MACAddresses)
	if s.LocalIPs != nil {
		out.LocalIPs = make(map[string][]string, len(s.LocalIPs))
		for iface, addrs := range s.LocalIPs {
			out.LocalIPs[iface] = slices.Clone(addrs)
		}
	}
	return out
}

// PublicIPOr returns the public IP or def when absent.
func (s HostSnapshot) PublicIPOr(def string) string {
	if s.PublicIP == nil {
		return def
	}
	return *s.PublicIP
}

// DefaultGatewayOr returns the gateway or def when absent.
func (s HostSnapshot) DefaultGatewayOr(def string) string {
	if s.DefaultGateway == nil {
		return def
	}
	return *s.DefaultGateway
}
