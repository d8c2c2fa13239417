package core

import (
	"strings"
	"testing"
)

func TestGenerateGUID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := GenerateGUID("msg-")
		if err != nil {
			t.Fatalf("GenerateGUID: %v", err)
		}
		if !strings.HasPrefix(id, "msg-") || len(id) != len("msg-")+guidLength {
			t.Fatalf("unexpected id %q", id)
		}
		if strings.Trim(id[4:], guidAlphabet) != "" {
			t.Fatalf("id %q has characters outside the alphabet", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestGenerateGUIDUsesEveryPosition(t *testing.T) {
	distinct := make([]map[byte]bool, guidLength)
	for i := range distinct {
		distinct[i] = map[byte]bool{}
	}
	for i := 0; i < 500; i++ {
		id, err := GenerateGUID("x")
		if err != nil {
			t.Fatalf("GenerateGUID: %v", err)
		}
		for pos := 0; pos < guidLength; pos++ {
			distinct[pos][id[2+pos]] = true
		}
	}
	for pos, seen := range distinct {
		if len(seen) < 24 {
			t.Errorf("position %d only produced %d distinct characters", pos, len(seen))
		}
	}
}

func TestShortID(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"msg-abcdefgh", 4, "abcd"},
		{"conf-xy", 5, "xy"},
		{"plain", 3, "pla"},
		{"msg-abc", 0, ""},
	}
	for _, tc := range cases {
		if got := ShortID(tc.in, tc.n); got != tc.want {
			t.Errorf("ShortID(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
