package journal

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
)

// Key file encodings reported by ParseKey.
const (
	KeyHex    = "hex"
	KeyBase64 = "base64"
	KeyRaw    = "raw"
)

// LoadKey reads an encryption key file and reports how its content was read.
//
// A "hex:", "base64:" or "raw:" prefix selects the encoding explicitly.
// Without one the content is tried, in order, as hex (32, 48 or 64
// characters), standard base64 decoding to 16, 24 or 32 bytes, and finally
// the raw bytes. A 32 character raw key made only of hex digits is therefore
// read as a 16 byte hex key; write it as "raw:..." to keep all 32 bytes.
func LoadKey(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read key file: %w", err)
	}
	key, enc := ParseKey(data)
	return key, enc, nil
}

// ParseKey decodes key file content following the rules of LoadKey.
func ParseKey(data []byte) ([]byte, string) {
	text := bytes.TrimSpace(data)

	switch {
	case bytes.HasPrefix(text, []byte(KeyRaw+":")):
		return bytes.TrimPrefix(text, []byte(KeyRaw+":")), KeyRaw
	case bytes.HasPrefix(text, []byte(KeyHex+":")):
		body := string(bytes.TrimPrefix(text, []byte(KeyHex+":")))
		if key, err := hex.DecodeString(body); err == nil {
			return key, KeyHex
		}
		return text, KeyRaw
	case bytes.HasPrefix(text, []byte(KeyBase64+":")):
		body := string(bytes.TrimPrefix(text, []byte(KeyBase64+":")))
		if key, err := base64.StdEncoding.DecodeString(body); err == nil {
			return key, KeyBase64
		}
		return text, KeyRaw
	}

	switch len(text) {
	case 32, 48, 64:
		if key, err := hex.DecodeString(string(text)); err == nil {
			return key, KeyHex
		}
	}
	if key, err := base64.StdEncoding.DecodeString(string(text)); err == nil && validKeySize(len(key)) {
		return key, KeyBase64
	}
	if validKeySize(len(text)) {
		return text, KeyRaw
	}
	return data, KeyRaw
}

func validKeySize(n int) bool {
	return n == 16 || n == 24 || n == 32
}
