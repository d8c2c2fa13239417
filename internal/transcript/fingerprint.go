package transcript

import (
	"strconv"
	"unicode/utf16"
)

// Fingerprint is a 32-bit rolling hash of transcript text. Two snapshots with the
// same fingerprint are treated as identical and not re-parsed.
type Fingerprint int32

func (f Fingerprint) String() string {
	return strconv.FormatInt(int64(f), 10)
}

// Compute hashes text as h = h*31 + c over its UTF-16 code units, wrapping at 32 bits.
// The browser viewer hashes the same way, so both sides agree on a snapshot's token.
func Compute(text string) Fingerprint {
	var h int32
	for _, r := range text {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			h = h*31 + int32(hi)
			h = h*31 + int32(lo)
			continue
		}
		h = h*31 + int32(r)
	}
	return Fingerprint(h)
}

// HasChanged reports whether next differs from prev.
func HasChanged(prev, next Fingerprint) bool {
	return prev != next
}

// Gate remembers the last fingerprint it admitted. The zero value admits the first snapshot.
type Gate struct {
	last Fingerprint
	seen bool
}

// Observe fingerprints text and reports whether it differs from the last admitted snapshot.
func (g *Gate) Observe(text string) (Fingerprint, bool) {
	fp := Compute(text)
	if g.seen && !HasChanged(g.last, fp) {
		return fp, false
	}
	g.last, g.seen = fp, true
	return fp, true
}

// Reset forgets the last snapshot so the next one is always admitted.
func (g *Gate) Reset() {
	g.last, g.seen = 0, false
}
