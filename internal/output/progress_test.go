package output

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestProgressBar_CompletionLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(12, "sources scanned")
	p.SetWriter(&buf)

	for i := 0; i < 12; i++ {
		p.Increment()
	}

	want := "[" + strings.Repeat("=", 29) + ">] 12/12 sources scanned\n"
	if got := buf.String(); got != want {
		t.Errorf("completion line = %q, want %q", got, want)
	}
}

func TestProgressBar_QuietUntilComplete(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(12, "sources scanned")
	p.SetWriter(&buf)

	for i := 0; i < 5; i++ {
		p.Increment()
	}

	// Buffers are not terminals, so intermediate states stay silent.
	if buf.Len() != 0 {
		t.Errorf("expected no output before completion, got %q", buf.String())
	}
}

func TestProgressBar_SetCurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(12, "sources scanned")
	p.SetWriter(&buf)

	p.SetCurrent(5)
	if buf.Len() != 0 {
		t.Errorf("expected no output at 5/12, got %q", buf.String())
	}

	p.SetCurrent(12)
	if !strings.Contains(buf.String(), "12/12") {
		t.Errorf("expected completion output, got %q", buf.String())
	}
}

func TestProgressBar_IncrementCapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(3, "done")
	p.SetWriter(&buf)

	for i := 0; i < 5; i++ {
		p.Increment()
	}

	out := buf.String()
	if strings.Contains(out, "4/") || strings.Contains(out, "5/") {
		t.Errorf("progress exceeded total: %q", out)
	}
	if !strings.Contains(out, "3/3") {
		t.Errorf("expected capped completion output, got %q", out)
	}
}

func TestProgressBar_FinishWithoutIncrements(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(4, "collectors")
	p.SetWriter(&buf)

	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "4/4") || !strings.Contains(out, "collectors") {
		t.Errorf("Finish() should jump to completion, got %q", out)
	}
}

func TestProgressBar_FinishAfterCompleteDoesNotDuplicate(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(3, "done")
	p.SetWriter(&buf)

	p.SetCurrent(3)
	p.Finish()

	if n := strings.Count(buf.String(), "3/3"); n != 1 {
		t.Errorf("expected one completion line, got %d in %q", n, buf.String())
	}
}

func TestProgressBar_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(0, "empty")
	p.SetWriter(&buf)

	p.Increment()
	p.Finish()

	if !strings.Contains(buf.String(), "0/0") {
		t.Errorf("expected 0/0 output, got %q", buf.String())
	}
}

func TestProgressBar_ConcurrentIncrements(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(12, "sources scanned")
	p.SetWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment()
		}()
	}
	wg.Wait()

	if n := strings.Count(buf.String(), "12/12"); n != 1 {
		t.Errorf("expected exactly one completion line, got %d in %q", n, buf.String())
	}
}

func TestSpinner_NonTTYPrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("scanning sources")
	s.SetWriter(&buf)

	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	if got := buf.String(); got != "scanning sources...\n" {
		t.Errorf("non-TTY spinner output = %q, want single message line", got)
	}
}

func TestSpinner_StartTwice(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("scanning")
	s.SetWriter(&buf)

	s.Start()
	s.Start()
	s.Stop()

	if n := strings.Count(buf.String(), "scanning"); n != 1 {
		t.Errorf("second Start() should be a no-op, got %d messages", n)
	}
}

func TestSpinner_MultipleStops(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("scanning")
	s.SetWriter(&buf)

	s.Start()
	s.Stop()
	s.Stop() // should not panic
}

func TestSpinner_StopBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("scanning")
	s.SetWriter(&buf)

	s.Stop() // should not panic

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSpinner_StopWithMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("rescanning")
	s.SetWriter(&buf)

	s.Start()
	s.StopWithMessage("Rescan complete: 848 packages")

	out := buf.String()
	if !strings.Contains(out, "rescanning...") {
		t.Errorf("expected start message, got %q", out)
	}
	if !strings.HasSuffix(out, "Rescan complete: 848 packages\n") {
		t.Errorf("expected final message, got %q", out)
	}
}

func TestSpinner_UpdateMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("waiting for changes")
	s.SetWriter(&buf)

	s.Start()
	s.UpdateMessage("rescanning after pacman change")
	s.Stop()

	// Non-TTY writers see only the initial line; the updated message is
	// for the animated TTY path.
	if got := buf.String(); got != "waiting for changes...\n" {
		t.Errorf("non-TTY output = %q, want initial message only", got)
	}
}

func TestSpinner_WithTimeoutChaining(t *testing.T) {
	s := NewSpinner("scanning")
	if got := s.WithTimeout(30 * time.Second); got != s {
		t.Error("WithTimeout() should return the same spinner for chaining")
	}
}

func TestSpinner_FormatMessage(t *testing.T) {
	s := NewSpinner("scanning")
	s.startTime = time.Now()
	if got := s.formatMessage(); got != "scanning" {
		t.Errorf("formatMessage() without timing = %q, want plain message", got)
	}

	s.WithTimeout(30 * time.Second)
	s.startTime = time.Now()
	if got := s.formatMessage(); !strings.Contains(got, "remaining)") {
		t.Errorf("formatMessage() with timeout = %q, want remaining time", got)
	}

	s.timeout = 0
	if got := s.formatMessage(); !strings.Contains(got, "elapsed)") {
		t.Errorf("formatMessage() without timeout = %q, want elapsed time", got)
	}
}

func TestSpinner_FormatMessageTimeoutFloor(t *testing.T) {
	s := NewSpinner("scanning")
	s.WithTimeout(time.Second)
	s.startTime = time.Now().Add(-5 * time.Second)

	if got := s.formatMessage(); !strings.Contains(got, "(0s remaining)") {
		t.Errorf("formatMessage() past deadline = %q, want floor at 0s", got)
	}
}

func BenchmarkProgressBarIncrement(b *testing.B) {
	p := NewProgress(b.N+1, "bench")
	p.SetWriter(io.Discard)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Increment()
	}
}
