package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	guidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	guidLength   = 8
)

// GenerateGUID creates a short GUID with the provided prefix, e.g. "msg-k3v9x0ab".
func GenerateGUID(prefix string) (string, error) {
	normalized := strings.TrimSuffix(prefix, "-")

	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate guid: %w", err)
	}

	// Bytes 6 and 8 carry the version and variant bits.
	random := append(u[0:6:6], u[9:]...)
	id := make([]byte, guidLength)
	for i := 0; i < guidLength; i++ {
		id[i] = guidAlphabet[int(random[i])%len(guidAlphabet)]
	}

	return fmt.Sprintf("%s-%s", normalized, string(id)), nil
}

// ShortID returns the first n characters of a GUID's random part, for compact display.
func ShortID(guid string, n int) string {
	_, base, ok := strings.Cut(guid, "-")
	if !ok {
		base = guid
	}
	if n <= 0 {
		return ""
	}
	if n > len(base) {
		n = len(base)
	}
	return base[:n]
}
