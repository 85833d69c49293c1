package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/keshon/ilpo/internal/music/parsers"
	"github.com/keshon/ilpo/internal/music/sources"
)

type fakeStreamer struct {
	chunks  [][]byte
	opened  []float64
	fail    bool
	cleaned int
}

func (f *fakeStreamer) GetLinkStream(_ *parsers.TrackParse, seek float64) (io.ReadCloser, func(), error) {
	if f.fail || len(f.chunks) == 0 {
		return nil, nil, errors.New("cannot open")
	}
	f.opened = append(f.opened, seek)
	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]
	return io.NopCloser(bytes.NewReader(chunk)), func() { f.cleaned++ }, nil
}
func (f *fakeStreamer) GetPipeStream(t *parsers.TrackParse, seek float64) (io.ReadCloser, func(), error) {
	return f.GetLinkStream(t, seek)
}
func (f *fakeStreamer) SupportsPipe() bool { return false }

func trackWith(parsersList ...string) *parsers.TrackParse {
	return &parsers.TrackParse{
		URL:        "https://example/track",
		Duration:   10 * time.Second,
		SourceInfo: sources.TrackInfo{AvailableParsers: parsersList},
	}
}

func TestRecoveryStreamReopensFromPosition(t *testing.T) {
	oneSecond := make([]byte, bytesPerSecond)
	fs := &fakeStreamer{chunks: [][]byte{oneSecond, []byte("rest")}}
	rs := NewRecoveryStream(Registry{"fake": fs}, trackWith("fake"))

	if err := rs.Open(0); err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rs)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != bytesPerSecond+4 {
		t.Errorf("expected both chunks, got %d bytes", len(data))
	}
	if len(fs.opened) != 2 || fs.opened[1] != 1 {
		t.Errorf("expected reopen at 1s, got %v", fs.opened)
	}
	_ = rs.Close()
	_ = rs.Close()
	if fs.cleaned != 2 {
		t.Errorf("expected 2 cleanups, got %d", fs.cleaned)
	}
}

func TestRecoveryStreamFallsBackToNextParser(t *testing.T) {
	broken := &fakeStreamer{fail: true}
	good := &fakeStreamer{chunks: [][]byte{[]byte("pcm")}}
	track := trackWith("broken", "good")
	rs := NewRecoveryStream(Registry{"broken": broken, "good": good}, track)

	if err := rs.Open(0); err != nil {
		t.Fatalf("open: %v", err)
	}
	if rs.GetParser() != "good" || track.CurrentParser != "good" {
		t.Errorf("expected good parser, got %q", rs.GetParser())
	}
}

func TestRecoveryStreamClosedReadsEOF(t *testing.T) {
	fs := &fakeStreamer{chunks: [][]byte{[]byte("pcm")}}
	rs := NewRecoveryStream(Registry{"fake": fs}, trackWith("fake"))
	if err := rs.Open(0); err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = rs.Close()
	if _, err := rs.Read(make([]byte, 4)); err != io.EOF {
		t.Errorf("expected EOF after close, got %v", err)
	}
}

func TestAutoOpenStreamAllFail(t *testing.T) {
	reg := Registry{"a": &fakeStreamer{fail: true}}
	if _, _, err := reg.AutoOpenStream(trackWith("a", "missing")); err == nil {
		t.Fatal("expected error when every parser fails")
	}
}
