package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPlaintext(t *testing.T) {
	got := FormatPlaintext(sampleSnapshot())

	want := `[2026-10-14T10:09:10.123+02:00] New Failed Login Attempt
Username       : alice
Hostname       : bastion-01
Public IP      : 203.0.113.7
Location       : Springfield, Oregon, US (AS64500 <Example & Co>)
Local IPs      : eth0: 192.168.1.20, fe80::1
Local IPs      : lo: 127.0.0.1
MAC Address    : eth0: 02:42:ac:11:00:02
OS             : Linux (#45-Ubuntu SMP PREEMPT_DYNAMIC) x86_64
Default Gateway: 192.168.1.1
UUID Hash      : ` + sampleSnapshot().UUIDHash + `
------------------------------------------------------------
`
	assert.Equal(t, want, got)
}

func TestFormatPlaintext_Offline(t *testing.T) {
	got := FormatPlaintext(offlineSnapshot())

	assert.Contains(t, got, "\nPublic IP      : N/A\n")
	assert.Contains(t, got, "\nDefault Gateway: N/A\n")
	assert.NotContains(t, got, "Location")
	assert.NotContains(t, got, "Local IPs")
	assert.NotContains(t, got, "MAC Address")

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	assert.Len(t, lines[len(lines)-1], 60)
	assert.Equal(t, strings.Repeat("-", 60), lines[len(lines)-1])
}

func TestFormatPlaintext_PartialGeo(t *testing.T) {
	snap := sampleSnapshot()
	snap.Geo = map[string]string{"country": "NL"}

	assert.Contains(t, FormatPlaintext(snap), "Location       : N/A, N/A, NL (N/A)\n")
}
