// Package journal appends HostSnapshots to per-day log files.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"host-witness/internal/logging"
	"host-witness/internal/snapshot"
)

const (
	dayLayout = "20060102"

	StructuredSuffix = ".jsonl"
	PlaintextSuffix  = "_failed_login.log"
)

// Writer appends snapshots to day files under one directory. Appends are
// serialised within a process; separate processes are not coordinated.
type Writer struct {
	dir    string
	sealer Sealer
	now    func() time.Time
	log    logr.Logger
	mu     sync.Mutex

	key []byte
}

// Entry is one structured log line.
type Entry struct {
	Sig  string `json:"sig"`
	Data string `json:"data"`
}

type WriterOption func(*Writer)

// WithKey enables AES-GCM encryption of structured records. A key that is not
// 16, 24 or 32 bytes leaves the writer in plaintext mode.
func WithKey(key []byte) WriterOption {
	return func(w *Writer) { w.key = key }
}

// WithSealer installs an explicit encryption strategy, overriding WithKey.
func WithSealer(s Sealer) WriterOption {
	return func(w *Writer) { w.sealer = s }
}

func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) { w.now = now }
}

func WithLogger(log logr.Logger) WriterOption {
	return func(w *Writer) { w.log = log }
}

// NewWriter creates dir if needed and resolves the encryption strategy once.
func NewWriter(dir string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dir: dir,
		now: time.Now,
		log: logr.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	if w.sealer == nil && len(w.key) > 0 {
		sealer, err := NewAESGCM(w.key)
		if err != nil {
			logging.Warn(w.log, "encryption unavailable, writing plaintext records", "err", err.Error())
		} else {
			w.sealer = sealer
		}
	}
	w.key = nil

	return w, nil
}

// Encrypting reports whether structured records are sealed.
func (w *Writer) Encrypting() bool {
	return w.sealer != nil
}

func (w *Writer) Dir() string {
	return w.dir
}

// AppendStructured appends one {"sig","data"} line to <YYYYMMDD>.jsonl and
// returns the file path. sig is always the sha-256 of the plaintext JSON.
func (w *Writer) AppendStructured(snap snapshot.HostSnapshot) (string, error) {
	record, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	entry := Entry{Sig: Sign(record), Data: string(record)}
	if w.sealer != nil {
		sealed, err := w.sealer.Seal(record)
		if err != nil {
			logging.Warn(w.log, "encryption failed, writing plaintext record", "err", err.Error())
		} else {
			entry.Data = sealed
		}
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to marshal log entry: %w", err)
	}

	return w.append(StructuredSuffix, append(line, '\n'))
}

// AppendPlaintext appends the human-readable block to
// <YYYYMMDD>_failed_login.log and returns the file path.
func (w *Writer) AppendPlaintext(snap snapshot.HostSnapshot) (string, error) {
	return w.append(PlaintextSuffix, []byte(FormatPlaintext(snap)))
}

// Sign returns the hex sha-256 integrity tag of a serialised record.
func Sign(record []byte) string {
	sum := sha256.Sum256(record)
	return hex.EncodeToString(sum[:])
}

// DayFile returns the path of the file with the given suffix for t's UTC day.
func (w *Writer) DayFile(suffix string, t time.Time) string {
	return filepath.Join(w.dir, t.UTC().Format(dayLayout)+suffix)
}

func (w *Writer) append(suffix string, data []byte) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	path := w.DayFile(suffix, w.now())
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write log: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close log file: %w", err)
	}

	w.log.V(1).Info("record appended", "path", path, "bytes", len(data))
	return path, nil
}
