package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the hex sha-256 of a hardware identifier. It correlates
// entries from one machine without revealing the identifier.
func Fingerprint(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(sum[:])
}

// hardwareIdentifier picks the most stable identifier available: machine id,
// DMI uuid, first hardware address, then hostname.
func (c *Collector) hardwareIdentifier(ifaces []Interface, hostname string) string {
	if id, ok := c.paths.MachineID(); ok {
		return id
	}
	if id, ok := c.paths.SystemUUID(); ok {
		return id
	}
	if mac := firstHardwareAddr(ifaces); mac != "" {
		return mac
	}
	return hostname
}
