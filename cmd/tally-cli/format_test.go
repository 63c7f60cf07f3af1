package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout replaces os.Stdout with a pipe, calls f, then returns the
// captured output and restores os.Stdout. It is NOT safe for parallel use
// because os.Stdout is a package-level variable.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		io.Copy(&buf, r) //nolint:errcheck
		close(done)
	}()

	f()

	w.Close()
	<-done
	os.Stdout = orig
	r.Close()
	return buf.String()
}

func withFormat(t *testing.T, f string) {
	t.Helper()
	orig := flagFmt
	flagFmt = f
	t.Cleanup(func() { flagFmt = orig })
}

type sample struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var sampleView = view[sample]{
	headers: []string{"ID", "LABEL"},
	row:     func(s *sample) []string { return []string{s.ID, s.Label} },
}

// TestFormatJSON verifies that formatJSON emits indented JSON to stdout.
func TestFormatJSON(t *testing.T) {
	got := captureStdout(t, func() {
		if err := formatJSON(sample{ID: "abc-123", Label: "hello world"}); err != nil {
			t.Errorf("formatJSON: %v", err)
		}
	})

	var out sample
	if err := json.Unmarshal([]byte(got), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, got)
	}
	if out.ID != "abc-123" || out.Label != "hello world" {
		t.Errorf("got %+v", out)
	}
	if !strings.Contains(got, "\n  ") {
		t.Errorf("expected indented JSON but got: %s", got)
	}
}

func TestFormatTableAlignment(t *testing.T) {
	got := captureStdout(t, func() {
		formatTable([]string{"ID", "NAME"}, [][]string{{"1", "short"}, {"22", "a much longer name"}})
	})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), got)
	}
	if lines[0] != "ID  NAME" {
		t.Errorf("header = %q", lines[0])
	}
	if want := "--  " + strings.Repeat("-", len("a much longer name")); lines[1] != want {
		t.Errorf("separator = %q", lines[1])
	}
	if lines[2] != "1   short" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestOutputOneQuiet(t *testing.T) {
	withFormat(t, "quiet")
	got := captureStdout(t, func() {
		_ = outputOne(sampleView, &sample{ID: "id-1", Label: "x"})
	})
	if got != "id-1\n" {
		t.Errorf("got %q", got)
	}
}

func TestOutputListFormats(t *testing.T) {
	recs := []sample{{ID: "a", Label: "first"}, {ID: "b", Label: "second"}}

	t.Run("json", func(t *testing.T) {
		withFormat(t, "json")
		got := captureStdout(t, func() { _ = outputList(sampleView, recs, 9) })
		var out struct {
			Count int64    `json:"count"`
			Rows  []sample `json:"rows"`
		}
		if err := json.Unmarshal([]byte(got), &out); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, got)
		}
		if out.Count != 9 || len(out.Rows) != 2 {
			t.Errorf("got %+v", out)
		}
	})

	t.Run("quiet", func(t *testing.T) {
		withFormat(t, "quiet")
		got := captureStdout(t, func() { _ = outputList(sampleView, recs, 9) })
		if got != "a\nb\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("table", func(t *testing.T) {
		withFormat(t, "table")
		got := captureStdout(t, func() { _ = outputList(sampleView, recs, 9) })
		if !strings.Contains(got, "second") || !strings.HasSuffix(got, "2 of 9\n") {
			t.Errorf("got %q", got)
		}
	})
}

func TestDeref(t *testing.T) {
	s := "v"
	if deref(nil) != "" || deref(&s) != "v" {
		t.Error("deref mismatch")
	}
}
