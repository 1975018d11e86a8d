// Package witness wires collection, persistence, retention and hooks into a
// single capture.
package witness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"host-witness/internal/config"
	"host-witness/internal/hooks"
	"host-witness/internal/journal"
	"host-witness/internal/snapshot"
	"host-witness/internal/storage"
)

// Format selects which journals a capture is written to.
type Format int

const (
	FormatText Format = 1 << iota
	FormatJSON

	FormatBoth = FormatText | FormatJSON
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "both":
		return FormatBoth, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want text, json or both)", s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatBoth:
		return "both"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Collector is the snapshot source a Service captures from.
type Collector interface {
	Collect(ctx context.Context) snapshot.HostSnapshot
}

type Service struct {
	collector Collector
	writer    *journal.Writer
	rotator   *storage.Rotator
	hooks     *hooks.Runner
	now       func() time.Time
	log       logr.Logger
}

// Result is the outcome of one capture.
type Result struct {
	Snapshot snapshot.HostSnapshot
	Paths    []string
}

// New builds a Service from cfg. key may be nil for plaintext structured
// records. Extra collector options are applied after the config-derived ones.
func New(cfg *config.Config, key []byte, log logr.Logger, opts ...snapshot.Option) (*Service, error) {
	collectorOpts := []snapshot.Option{
		snapshot.WithHTTPClient(snapshot.NewHTTPClient(cfg.LookupTimeout(), cfg.Lookup.InsecureSkipVerify)),
		snapshot.WithPublicIPURLs(cfg.Lookup.PublicIPURLs...),
		snapshot.WithGeoURL(cfg.Lookup.GeoURL),
		snapshot.WithLogger(log.WithName("collector")),
	}
	collector := snapshot.NewCollector(append(collectorOpts, opts...)...)

	writerOpts := []journal.WriterOption{journal.WithLogger(log.WithName("journal"))}
	if len(key) > 0 {
		writerOpts = append(writerOpts, journal.WithKey(key))
	}
	writer, err := journal.NewWriter(cfg.LogDir, writerOpts...)
	if err != nil {
		return nil, err
	}

	return NewService(collector, writer, cfg, log), nil
}

// NewService assembles a Service around an existing collector and writer.
func NewService(collector Collector, writer *journal.Writer, cfg *config.Config, log logr.Logger) *Service {
	s := &Service{
		collector: collector,
		writer:    writer,
		rotator:   storage.NewRotator(writer.Dir(), cfg.Retention(), log.WithName("rotator")),
		now:       time.Now,
		log:       log,
	}
	if cfg.Hooks.Enabled {
		s.hooks = hooks.NewRunner(cfg.Hooks.Dir, cfg.HookTimeout(), log.WithName("hooks"))
	}
	return s
}

// Capture collects one snapshot and appends it to the selected journals.
// Only journal write failures are returned; pruning and hook failures are
// logged.
func (s *Service) Capture(ctx context.Context, format Format) (Result, error) {
	if _, err := s.Prune(); err != nil {
		s.log.Error(err, "retention pruning failed")
	}

	res := Result{Snapshot: s.collector.Collect(ctx)}

	if format&FormatText != 0 {
		path, err := s.writer.AppendPlaintext(res.Snapshot)
		if err != nil {
			return res, err
		}
		res.Paths = append(res.Paths, path)
	}
	if format&FormatJSON != 0 {
		path, err := s.writer.AppendStructured(res.Snapshot)
		if err != nil {
			return res, err
		}
		res.Paths = append(res.Paths, path)
	}

	if s.hooks != nil && len(res.Paths) > 0 {
		if err := s.hooks.Run(ctx, res.Snapshot, res.Paths[0]); err != nil {
			s.log.Error(err, "post-capture hooks failed")
		}
	}

	s.log.V(1).Info("capture complete", "format", format.String(), "paths", res.Paths)
	return res, nil
}

// Prune applies the retention policy to the journal directory.
func (s *Service) Prune() ([]string, error) {
	return s.rotator.Prune(s.now())
}
