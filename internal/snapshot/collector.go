package snapshot

import (
	"context"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"host-witness/internal/host"
)

const (
	DefaultLookupTimeout = 3 * time.Second

	// maxPublicIPURLs is one primary service plus a single fallback.
	maxPublicIPURLs = 2
)

// Collector gathers HostSnapshots. The zero value is not usable; build one
// with NewCollector.
type Collector struct {
	client       *http.Client
	publicIPURLs []string
	geoURL       string
	now          func() time.Time
	interfaces   func() ([]Interface, error)
	gateway      GatewayResolver
	platform     func() host.Platform
	paths        host.Paths
	log          logr.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithHTTPClient sets the client used for public IP and geolocation lookups.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Collector) { c.client = client }
}

// WithPublicIPURLs sets the IP echo services tried in order. Only the first
// two are used.
func WithPublicIPURLs(urls ...string) Option {
	return func(c *Collector) { c.publicIPURLs = urls }
}

// WithGeoURL sets the geolocation URL template; "{ip}" is replaced with the
// discovered public IP. An empty template disables geolocation.
func WithGeoURL(tmpl string) Option {
	return func(c *Collector) { c.geoURL = tmpl }
}

// WithClock sets the time source for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithInterfaceSource replaces network interface enumeration.
func WithInterfaceSource(fn func() ([]Interface, error)) Option {
	return func(c *Collector) { c.interfaces = fn }
}

// WithGatewayResolver sets where the default gateway is read from.
func WithGatewayResolver(r GatewayResolver) Option {
	return func(c *Collector) { c.gateway = r }
}

// WithPlatform replaces OS and architecture detection.
func WithPlatform(fn func() host.Platform) Option {
	return func(c *Collector) { c.platform = fn }
}

// WithHostPaths sets the roots for the machine-id and DMI uuid reads.
func WithHostPaths(p host.Paths) Option {
	return func(c *Collector) { c.paths = p }
}

// WithLogger sets the logger for lookup failures. The default discards.
func WithLogger(log logr.Logger) Option {
	return func(c *Collector) { c.log = log }
}

// NewCollector returns a Collector with the default lookup services and
// system sources, adjusted by opts.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		client: NewHTTPClient(DefaultLookupTimeout, false),
		publicIPURLs: []string{
			"https://api.ipify.org?format=json",
			"https://ifconfig.me/ip",
		},
		geoURL:     "https://ipinfo.io/" + ipPlaceholder + "/json",
		now:        time.Now,
		interfaces: SystemInterfaces,
		gateway:    SystemGateway{},
		platform:   host.CurrentPlatform,
		paths:      host.DefaultPaths(),
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.publicIPURLs) > maxPublicIPURLs {
		c.publicIPURLs = c.publicIPURLs[:maxPublicIPURLs]
	}
	return c
}

// Collect returns a best-effort snapshot. It never fails: each step that
// cannot complete leaves its field absent.
func (c *Collector) Collect(ctx context.Context) HostSnapshot {
	snap := HostSnapshot{
		Hostname: host.Hostname(),
		Username: host.Username(),
	}
	snap.TimestampUTC, snap.TimestampLocal = Timestamps(c.now())

	p := c.platform()
	snap.OS = p.OS
	snap.OSRelease = p.Release
	snap.OSVersion = p.Version
	snap.Architecture = p.Architecture

	if ip, ok := c.lookupPublicIP(ctx); ok {
		snap.PublicIP = &ip
		if geo, ok := c.lookupGeo(ctx, ip); ok {
			snap.Geo = geo
		}
	}

	ifaces, err := c.interfaces()
	if err != nil {
		c.log.V(1).Info("interface enumeration failed", "err", err.Error())
	}
	snap.LocalIPs, snap.MACAddresses = splitInterfaces(ifaces)

	if gw, source, ok := c.resolveGateway(ctx, snap.Hostname); ok {
		snap.DefaultGateway = &gw
		snap.GatewaySource = source
	}

	snap.UUIDHash = Fingerprint(c.hardwareIdentifier(ifaces, snap.Hostname))

	c.log.V(1).Info("snapshot collected",
		"hostname", snap.Hostname,
		"publicIP", snap.PublicIPOr(""),
		"interfaces", len(snap.LocalIPs))
	return snap
}

func (c *Collector) resolveGateway(ctx context.Context, hostname string) (string, string, bool) {
	if c.gateway != nil {
		gw, err := c.gateway.DefaultGateway(ctx)
		if err == nil {
			return gw, GatewayFromRouteTable, true
		}
		c.log.V(1).Info("route table gateway unavailable", "err", err.Error())
	}
	if gw, ok := lookupHostnameAddr(ctx, hostname); ok {
		return gw, GatewayFromHostnameLookup, true
	}
	return "", "", false
}
