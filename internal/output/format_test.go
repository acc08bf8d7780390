package output

import (
	"bytes"
	"testing"

	"taskdash/internal/service"
)

func TestFormatTask(t *testing.T) {
	var buf bytes.Buffer
	FormatTask(&buf, 3, service.Task{ID: "x", Title: "Buy\nmilk", Status: service.StatusInProgress})

	want := "   3  In progress  Buy milk\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatCounters(t *testing.T) {
	var buf bytes.Buffer
	FormatCounters(&buf, service.CountStatuses(nil))

	want := "------------\nPending      0\nIn progress  0\nBlocked      0\nDone         0\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := map[string]string{
		"":         "(untitled)",
		"  ":       "(untitled)",
		"a\r\nb":   "a  b",
		"Buy milk": "Buy milk",
	}
	for in, want := range cases {
		if got := NormalizeTitle(in); got != want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusLabel_Unknown(t *testing.T) {
	if got := StatusLabel("archived"); got != "archived" {
		t.Errorf("expected verbatim label, got %q", got)
	}
}
