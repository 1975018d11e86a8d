package journal

import (
	"sort"
	"strings"

	"host-witness/internal/snapshot"
)

const (
	notAvailable = "N/A"
	separator    = "------------------------------------------------------------"
)

// FormatPlaintext renders the human-readable record block, newline terminated.
// Interfaces are listed in name order.
func FormatPlaintext(s snapshot.HostSnapshot) string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(label)
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteString("[" + s.TimestampLocal + "] New Failed Login Attempt\n")
	line("Username       : ", s.Username)
	line("Hostname       : ", s.Hostname)
	line("Public IP      : ", s.PublicIPOr(notAvailable))

	if len(s.Geo) > 0 {
		line("Location       : ", geoField(s.Geo, "city")+", "+geoField(s.Geo, "region")+", "+
			geoField(s.Geo, "country")+" ("+geoField(s.Geo, "org")+")")
	}

	for _, iface := range sortedKeys(s.LocalIPs) {
		line("Local IPs      : ", iface+": "+strings.Join(s.LocalIPs[iface], ", "))
	}
	for _, iface := range sortedKeys(s.MACAddresses) {
		line("MAC Address    : ", iface+": "+s.MACAddresses[iface])
	}

	line("OS             : ", s.OS+" ("+s.OSVersion+") "+s.Architecture)
	line("Default Gateway: ", s.DefaultGatewayOr(notAvailable))
	line("UUID Hash      : ", s.UUIDHash)
	b.WriteString(separator + "\n")
	return b.String()
}

func geoField(geo map[string]string, key string) string {
	if v, ok := geo[key]; ok && v != "" {
		return v
	}
	return notAvailable
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
