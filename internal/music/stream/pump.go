package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"layeh.com/gopus"

	"github.com/keshon/ilpo/internal/music/parsers"
)

// OpusSink receives encoded 20 ms opus frames.
type OpusSink interface {
	SendOpus(ctx context.Context, frame []byte) error
}

// Pump reads raw PCM from src, applies the volume of ctl, encodes it to opus
// and hands every frame to sink. It returns nil when src ends or ctx is done.
func Pump(ctx context.Context, src io.Reader, sink OpusSink, ctl *Control) error {
	if ctl == nil {
		ctl = NewControl(100)
	}

	encoder, err := gopus.NewEncoder(parsers.SampleRate, parsers.Channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	pcmBuf := make([]byte, parsers.FrameSize*parsers.Channels*2)
	samples := make([]int16, parsers.FrameSize*parsers.Channels)

	for {
		if err := ctl.waitUnpaused(ctx); err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		if _, err := io.ReadFull(src, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		decodePCM(pcmBuf, samples)
		applyGain(samples, ctl.gain())

		frame, err := encoder.Encode(samples, parsers.FrameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		if err := sink.SendOpus(ctx, frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("send error: %w", err)
		}
		ctl.frameSent()
	}
}

func decodePCM(buf []byte, out []int16) {
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
}

func applyGain(samples []int16, gain float64) {
	if gain == 1 {
		return
	}
	for i, s := range samples {
		v := math.Round(float64(s) * gain)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		samples[i] = int16(v)
	}
}
