package stream

import (
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/music/parsers"
)

const maxRecoveryAttempts = 3

const bytesPerSecond = parsers.SampleRate * parsers.Channels * 2

// RecoveryStream reopens a track from the current position when the
// underlying stream ends before the track's known duration.
type RecoveryStream struct {
	registry    Registry
	track       *parsers.TrackParse
	parserIndex int
	stream      *TrackStream
	cleanup     func()
	seekSec     float64
	retries     map[string]int

	mu     sync.Mutex
	closed bool
}

func NewRecoveryStream(registry Registry, track *parsers.TrackParse) *RecoveryStream {
	return &RecoveryStream{
		registry: registry,
		track:    track,
		retries:  make(map[string]int),
	}
}

// Open attempts to open the stream with the first usable parser.
func (rs *RecoveryStream) Open(seek float64) error {
	parserList := rs.track.SourceInfo.AvailableParsers
	for i := rs.parserIndex; i < len(parserList); i++ {
		parser := parserList[i]

		if rs.retries[parser] >= maxRecoveryAttempts {
			continue
		}

		s, cleanup, err := rs.registry.OpenStream(rs.track, parser, seek)
		if err != nil {
			log.Warn().Err(err).Str("parser", parser).Msg("[RecoveryStream] open failed")
			rs.retries[parser]++
			continue
		}

		rs.mu.Lock()
		if rs.closed {
			rs.mu.Unlock()
			cleanup()
			_ = s.Close()
			return errors.New("stream closed")
		}
		rs.parserIndex = i
		rs.stream = s
		rs.cleanup = cleanup
		rs.mu.Unlock()
		rs.seekSec = seek
		rs.track.CurrentParser = parser
		log.Debug().Str("parser", parser).Float64("seek", seek).Msg("[RecoveryStream] stream opened")
		return nil
	}

	return errors.New("all parsers failed or exceeded recovery attempts")
}

func (rs *RecoveryStream) Read(p []byte) (int, error) {
	rs.mu.Lock()
	current, closed := rs.stream, rs.closed
	rs.mu.Unlock()
	if closed {
		return 0, io.EOF
	}
	if current == nil {
		return 0, errors.New("stream not opened")
	}

	n, err := current.Read(p)
	rs.seekSec += float64(n) / bytesPerSecond
	if err != nil && rs.isClosed() {
		return n, io.EOF
	}
	if err == io.EOF && n == 0 && rs.endedEarly() {
		return rs.handleRecovery(p)
	}
	return n, err
}

// endedEarly is false for streams of unknown length such as radio.
func (rs *RecoveryStream) endedEarly() bool {
	d := rs.track.Duration.Seconds()
	return d > 0 && rs.seekSec < d-2
}

func (rs *RecoveryStream) handleRecovery(p []byte) (int, error) {
	parser := rs.track.CurrentParser
	if rs.retries[parser] >= maxRecoveryAttempts {
		return 0, io.EOF
	}
	rs.retries[parser]++
	log.Info().Str("parser", parser).Int("attempt", rs.retries[parser]).Float64("seek", rs.seekSec).
		Msg("[RecoveryStream] stream ended prematurely, reopening")

	rs.release()
	if err := rs.Open(rs.seekSec); err != nil {
		log.Warn().Err(err).Msg("[RecoveryStream] recovery failed")
		return 0, io.EOF
	}
	return rs.Read(p)
}

func (rs *RecoveryStream) isClosed() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.closed
}

func (rs *RecoveryStream) release() {
	rs.mu.Lock()
	cleanup, current := rs.cleanup, rs.stream
	rs.cleanup, rs.stream = nil, nil
	rs.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
	if current != nil {
		_ = current.Close()
	}
}

// Close releases the current stream and unblocks a pending Read. It may be
// called from another goroutine and more than once.
func (rs *RecoveryStream) Close() error {
	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return nil
	}
	rs.closed = true
	rs.mu.Unlock()

	rs.release()
	return nil
}

func (rs *RecoveryStream) GetTrack() *parsers.TrackParse {
	return rs.track
}

func (rs *RecoveryStream) GetParser() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.stream != nil {
		return rs.stream.GetMode()
	}
	return ""
}
