package note

import (
	"errors"
	"testing"
	"time"
)

func TestExpandPath(t *testing.T) {
	day := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		tmpl string
		want string
	}{
		{"", "Daily/2026/03/2026-03-07.md"},
		{"Journal/{YYYY}-{MM}-{DD}", "Journal/2026-03-07.md"},
		{"Journal/{YYYY}-{MM}-{DD}.md", "Journal/2026-03-07.md"},
		{"Daily Text.md", "Daily Text.md"},
		{"a/./b/{DD}", "a/b/07.md"},
	}
	for _, tc := range cases {
		got, err := ExpandPath(tc.tmpl, day)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error: %v", tc.tmpl, err)
		}
		if got != tc.want {
			t.Fatalf("ExpandPath(%q)=%q, want %q", tc.tmpl, got, tc.want)
		}
	}
}

func TestExpandPath_Rejects(t *testing.T) {
	day := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	for _, tmpl := range []string{"/etc/{DD}", "../outside/{DD}", "a/../../{DD}"} {
		if _, err := ExpandPath(tmpl, day); !errors.Is(err, ErrUnsafePath) {
			t.Fatalf("ExpandPath(%q) err=%v, want ErrUnsafePath", tmpl, err)
		}
	}
	if _, err := ExpandPath("Daily/{WEEK}", day); err == nil {
		t.Fatalf("expected error for unknown token")
	}
}

func TestHasDateToken(t *testing.T) {
	if !HasDateToken("x/{MM}") || HasDateToken("Daily Text") {
		t.Fatalf("HasDateToken misreported")
	}
}
