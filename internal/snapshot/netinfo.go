package snapshot

import (
	"context"
	"net"
	"net/netip"
	"sort"
	"time"
)

// Interface is one network interface as seen by the collector.
type Interface struct {
	Name         string
	HardwareAddr string
	Loopback     bool
	Addrs        []string
}

// SystemInterfaces enumerates the local interfaces with their bound IPv4 and
// IPv6 addresses. An interface whose addresses cannot be read is still
// returned with its hardware address.
func SystemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	out := make([]Interface, 0, len(ifaces))
	for _, ifi := range ifaces {
		entry := Interface{
			Name:         ifi.Name,
			HardwareAddr: ifi.HardwareAddr.String(),
			Loopback:     ifi.Flags&net.FlagLoopback != 0,
		}
		if addrs, err := ifi.Addrs(); err == nil {
			for _, a := range addrs {
				if ip := addrIP(a); ip != "" {
					entry.Addrs = append(entry.Addrs, ip)
				}
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func addrIP(a net.Addr) string {
	switch v := a.(type) {
	case *net.IPNet:
		return v.IP.String()
	case *net.IPAddr:
		return v.IP.String()
	}
	return ""
}

// splitInterfaces builds the per-interface address and hardware maps. Both
// maps are non-nil so an enumeration failure serialises as {}.
func splitInterfaces(ifaces []Interface) (map[string][]string, map[string]string) {
	ips := make(map[string][]string)
	macs := make(map[string]string)
	for _, ifi := range ifaces {
		if len(ifi.Addrs) > 0 {
			ips[ifi.Name] = append([]string(nil), ifi.Addrs...)
		}
		if ifi.HardwareAddr != "" {
			macs[ifi.Name] = ifi.HardwareAddr
		}
	}
	return ips, macs
}

const hostnameLookupTimeout = 2 * time.Second

// lookupHostnameAddr resolves the hostname and returns its first IPv4
// address, or the first address of any family.
func lookupHostnameAddr(ctx context.Context, hostname string) (string, bool) {
	if hostname == "" {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, hostnameLookupTimeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupHost(ctx, hostname)
	if err != nil || len(addrs) == 0 {
		return "", false
	}
	for _, a := range addrs {
		if ip, err := netip.ParseAddr(a); err == nil && ip.Is4() {
			return a, true
		}
	}
	return addrs[0], true
}

// firstHardwareAddr returns the hardware address of the first non-loopback
// interface by name.
func firstHardwareAddr(ifaces []Interface) string {
	sorted := append([]Interface(nil), ifaces...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, ifi := range sorted {
		if !ifi.Loopback && ifi.HardwareAddr != "" {
			return ifi.HardwareAddr
		}
	}
	return ""
}
