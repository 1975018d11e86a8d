package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"host-witness/internal/snapshot"
)

var (
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrNoKey             = errors.New("record is encrypted and no key is configured")
)

const maxLineSize = 1 << 20

// LineResult is the verdict for one structured log line.
type LineResult struct {
	Line      int
	Encrypted bool
	Snapshot  *snapshot.HostSnapshot
	Err       error
}

func (r LineResult) OK() bool {
	return r.Err == nil
}

// Verify checks every line of a structured log. opener may be nil, in which
// case encrypted lines are reported with ErrNoKey. The returned error covers
// only failures to read the file.
func Verify(path string, opener Sealer) ([]LineResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var results []LineResult
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64<<10), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		results = append(results, verifyLine(n, []byte(text), opener))
	}
	if err := scanner.Err(); err != nil {
		return results, fmt.Errorf("failed to read log file: %w", err)
	}
	return results, nil
}

func verifyLine(n int, line []byte, opener Sealer) LineResult {
	res := LineResult{Line: n}

	var entry Entry
	if err := json.Unmarshal(line, &entry); err != nil {
		res.Err = fmt.Errorf("malformed entry: %w", err)
		return res
	}

	snap, encrypted, err := Decode(entry, opener)
	res.Encrypted = encrypted
	if err != nil {
		res.Err = err
		return res
	}
	res.Snapshot = &snap
	return res
}

// Decode checks an entry's integrity tag and returns the snapshot it holds.
// Plaintext records are JSON objects; anything else is treated as sealed.
func Decode(entry Entry, opener Sealer) (snapshot.HostSnapshot, bool, error) {
	var snap snapshot.HostSnapshot

	record := []byte(entry.Data)
	encrypted := !strings.HasPrefix(strings.TrimSpace(entry.Data), "{")
	if encrypted {
		if opener == nil {
			return snap, true, ErrNoKey
		}
		plain, err := opener.Open(entry.Data)
		if err != nil {
			return snap, true, err
		}
		record = plain
	}

	if Sign(record) != entry.Sig {
		return snap, encrypted, ErrSignatureMismatch
	}
	if err := json.Unmarshal(record, &snap); err != nil {
		return snap, encrypted, fmt.Errorf("malformed snapshot: %w", err)
	}
	return snap, encrypted, nil
}
