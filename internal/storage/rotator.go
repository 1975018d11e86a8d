package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-logr/logr"
)

// Rotator removes journal day files older than the retention period.
type Rotator struct {
	logDir    string
	retention time.Duration
	log       logr.Logger
}

// Matches both <YYYYMMDD>.jsonl and <YYYYMMDD>_failed_login.log.
var filenamePattern = regexp.MustCompile(`^(\d{8})(?:\.jsonl|_failed_login\.log)$`)

// NewRotator returns a rotator for logDir. A zero retention disables pruning.
func NewRotator(logDir string, retention time.Duration, log logr.Logger) *Rotator {
	return &Rotator{
		logDir:    logDir,
		retention: retention,
		log:       log,
	}
}

// Prune deletes day files whose UTC day ended before now minus the retention
// period and returns the removed paths. Files that do not match the journal
// naming scheme are never touched.
func (r *Rotator) Prune(now time.Time) ([]string, error) {
	if r.retention <= 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(r.logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log dir: %w", err)
	}

	cutoff := now.UTC().Add(-r.retention)

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := filenamePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}

		fileDate, err := time.Parse("20060102", matches[1])
		if err != nil {
			continue
		}

		if fileDate.AddDate(0, 0, 1).Before(cutoff) {
			filePath := filepath.Join(r.logDir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				r.log.Error(err, "failed to remove expired log", "path", filePath)
				continue
			}
			removed = append(removed, filePath)
		}
	}

	if len(removed) > 0 {
		r.log.V(1).Info("pruned expired logs", "count", len(removed), "dir", r.logDir)
	}
	return removed, nil
}
