package stream

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/keshon/ilpo/internal/music/parsers"
)

type recordingSink struct {
	frames int
	failAt int
	cancel context.CancelFunc
}

func (s *recordingSink) SendOpus(ctx context.Context, frame []byte) error {
	s.frames++
	if len(frame) == 0 {
		return errors.New("empty frame")
	}
	if s.cancel != nil && s.frames == 2 {
		s.cancel()
	}
	if s.failAt > 0 && s.frames == s.failAt {
		return errors.New("socket gone")
	}
	return nil
}

func silence(frames int) []byte {
	return make([]byte, frames*parsers.FrameSize*parsers.Channels*2)
}

func TestPumpSendsEveryFullFrame(t *testing.T) {
	src := append(silence(3), 1, 2, 3) // trailing partial frame is dropped
	sink := &recordingSink{}
	ctl := NewControl(100)
	first := false
	ctl.OnFirstFrame(func() { first = true })

	if err := Pump(context.Background(), bytes.NewReader(src), sink, ctl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.frames != 3 {
		t.Errorf("expected 3 frames, got %d", sink.frames)
	}
	if !first {
		t.Error("first-frame callback did not run")
	}
	if ctl.Position() != 3*frameDuration {
		t.Errorf("expected position 60ms, got %v", ctl.Position())
	}
}

func TestPumpStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := &recordingSink{cancel: cancel}

	if err := Pump(ctx, bytes.NewReader(silence(10)), sink, nil); err != nil {
		t.Fatalf("cancel must not be an error, got %v", err)
	}
	if sink.frames != 2 {
		t.Errorf("expected pump to stop after 2 frames, got %d", sink.frames)
	}
}

func TestPumpReportsSinkFailure(t *testing.T) {
	sink := &recordingSink{failAt: 1}
	if err := Pump(context.Background(), bytes.NewReader(silence(2)), sink, nil); err == nil {
		t.Fatal("expected sink error")
	}
}

func TestDecodePCM(t *testing.T) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:], uint16(0x1234))
	v := int16(-2)
	binary.LittleEndian.PutUint16(buf[2:], uint16(v))
	out := make([]int16, 2)
	decodePCM(buf, out)
	if out[0] != 0x1234 || out[1] != -2 {
		t.Errorf("unexpected samples %v", out)
	}
}

func TestApplyGain(t *testing.T) {
	tests := []struct {
		name string
		in   []int16
		gain float64
		want []int16
	}{
		{"unity", []int16{100, -100}, 1, []int16{100, -100}},
		{"half", []int16{100, -100, 3}, 0.5, []int16{50, -50, 2}},
		{"mute", []int16{math.MaxInt16, math.MinInt16}, 0, []int16{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := append([]int16(nil), tt.in...)
			applyGain(s, tt.gain)
			for i := range s {
				if s[i] != tt.want[i] {
					t.Errorf("sample %d: expected %d, got %d", i, tt.want[i], s[i])
				}
			}
		})
	}
}
