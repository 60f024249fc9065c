package layout

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dehyphenate", "the mito-\nchondria produce", "the mitochondria produce"},
		{"dehyphenate with spaces", "infor-  \n   mation", "information"},
		{"chained breaks", "a-\nb-\nc", "abc"},
		{"blank lines", "one\n\n\n two", "one\ntwo"},
		{"whitespace runs", "a   b\t\tc", "a b c"},
		{"quotes", "“hi” ‘there’", `"hi" 'there'`},
		{"dashes", "1990–2000 — ok", "1990-2000 - ok"},
		{"hyphen without break kept", "well-known fact", "well-known fact"},
		{"trim", "  x  ", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"the mito-\nchondria   produce “energy”\n\n\n12\n• item",
		"a-\n-\nb",
		"semi–\nconductor",
		"word-\n\n-\nword",
		"Chapter 1\n  Intro-\n duction  —  text",
		"",
		"   \n\t\n",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCleanLines(t *testing.T) {
	in := "12\n• First   point\nBody text\n\n▪\n  345  \n1234 is a year"
	got := CleanLines(in)
	want := []string{"First point", "Body text", "1234 is a year"}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if Clean(in) != strings.Join(want, "\n") {
		t.Errorf("Clean disagrees with CleanLines: %q", Clean(in))
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"Chapter 1", 1},
		{"CHAPTER 12 The Cell", 1},
		{"Chương 3 Lịch sử", 1},
		{"Chapter One", 0},
		{"IV. Results", 1},
		{"IV.Results", 0},
		{"1 Overview", 1},
		{"2.1 Methods", 2},
		{"2.1.3 Sampling", 3},
		{"2.1.3.4 Too deep", 0},
		{"1. Overview", 0},
		{"1990", 0},
		{"The cell divides.", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := HeadingLevel(tt.line); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestHeadingDetector_CustomWords(t *testing.T) {
	d := NewHeadingDetector([]string{"Kapitel", " "})
	if got := d.Level("kapitel 2 Zellen"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := d.Level("Chapter 2"); got != 0 {
		t.Errorf("expected custom words to replace defaults, got %d", got)
	}
	if got := d.Level("3.2 Still numeric"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}
