package termio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/pengelbrecht/apptree/internal/keys"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue('a', 'b')
	q.Push('c')

	if q.Len() != 3 {
		t.Fatalf("expected 3 pending codes, got %d", q.Len())
	}
	for _, want := range []keys.Code{'a', 'b', 'c'} {
		got, ok := q.Poll()
		if !ok || got != want {
			t.Errorf("expected %q, got %q (ok=%v)", rune(want), rune(got), ok)
		}
	}
	if _, ok := q.Poll(); ok {
		t.Error("expected empty queue")
	}
}

func waitDone(t *testing.T, rd *Reader) {
	t.Helper()
	select {
	case <-rd.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop")
	}
}

func TestReader_DeliversEveryByte(t *testing.T) {
	rd := NewReader(bytes.NewBufferString("jjl"), 0)
	waitDone(t, rd)

	var got []keys.Code
	for {
		c, ok := rd.Poll()
		if !ok {
			break
		}
		got = append(got, c)
	}
	if len(got) != 3 || got[0] != 'j' || got[1] != 'j' || got[2] != 'l' {
		t.Errorf("expected codes j j l, got %v", got)
	}
	if rd.Err() != nil {
		t.Errorf("expected EOF to be clean, got %v", rd.Err())
	}
}

func TestReader_DropsWhenBacklogFull(t *testing.T) {
	rd := NewReader(bytes.NewBufferString("abcdef"), 2)
	waitDone(t, rd)

	if rd.Dropped() != 4 {
		t.Errorf("expected 4 dropped codes, got %d", rd.Dropped())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("line break") }

func TestReader_RecordsReadError(t *testing.T) {
	rd := NewReader(failingReader{}, 1)
	waitDone(t, rd)

	if rd.Err() == nil || rd.Err().Error() != "line break" {
		t.Errorf("expected read error, got %v", rd.Err())
	}
}

func TestReader_CloseStopsPolling(t *testing.T) {
	pr, pw := io.Pipe()
	rd := NewReader(pr, 4)

	if _, err := pw.Write([]byte("k")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if c, ok := rd.Poll(); ok {
			if c != 'k' {
				t.Errorf("expected 'k', got %q", rune(c))
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no input arrived")
		}
		time.Sleep(time.Millisecond)
	}

	if err := rd.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	go pw.Write([]byte("j"))
	time.Sleep(10 * time.Millisecond)
	if _, ok := rd.Poll(); ok {
		t.Error("expected no input after Close")
	}
	pw.Close()
	waitDone(t, rd)
}

func TestSinkFunc(t *testing.T) {
	var got []byte
	sink := SinkFunc(func(b byte) { got = append(got, b) })

	n, err := io.WriteString(sink, "ok\r\n")
	if err != nil || n != 4 {
		t.Fatalf("expected 4 bytes written, got %d (%v)", n, err)
	}
	if string(got) != "ok\r\n" {
		t.Errorf("expected bytes to pass through unchanged, got %q", got)
	}
}

func TestRawTerminal_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tty")
	if err != nil {
		t.Fatalf("CreateTemp failed: %v", err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Error("expected regular file not to be a terminal")
	}
	if _, err := MakeRaw(f); err == nil {
		t.Error("expected MakeRaw to fail on a regular file")
	}

	var rt *RawTerminal
	if err := rt.Restore(); err != nil {
		t.Errorf("expected nil Restore to be a no-op, got %v", err)
	}
}
