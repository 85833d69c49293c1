package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/keshon/ilpo/pkg/retrylimit"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle state of a direct audio session.
type State int

const (
	StateConnecting State = iota
	StatePlaying
	StatePaused
	StateReconnecting
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateReconnecting:
		return "reconnecting"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

type sessionEvent int

const (
	evPlaying sessionEvent = iota
	evPause
	evResume
	evDisconnected
	evReconnected
	evEnd
)

// next is the transition table. prev is the state held before the
// session entered Reconnecting.
func next(from State, ev sessionEvent, prev State) (State, bool) {
	if ev == evEnd {
		return StateEnded, from != StateEnded
	}
	switch from {
	case StateConnecting:
		if ev == evPlaying {
			return StatePlaying, true
		}
	case StatePlaying:
		switch ev {
		case evPause:
			return StatePaused, true
		case evDisconnected:
			return StateReconnecting, true
		}
	case StatePaused:
		switch ev {
		case evResume:
			return StatePlaying, true
		case evDisconnected:
			return StateReconnecting, true
		}
	case StateReconnecting:
		if ev == evReconnected {
			if prev == StatePaused {
				return StatePaused, true
			}
			return StatePlaying, true
		}
	}
	return from, false
}

// EndReason tells why a session was torn down.
type EndReason string

const (
	EndFinished        EndReason = "finished"
	EndStopped         EndReason = "stopped"
	EndSkipped         EndReason = "skipped"
	EndReplaced        EndReason = "replaced"
	EndStartFailed     EndReason = "start_failed"
	EndError           EndReason = "error"
	EndDestroyed       EndReason = "destroyed"
	EndReconnectFailed EndReason = "reconnect_failed"
	EndShutdown        EndReason = "shutdown"
)

var (
	errAlreadyPaused = errors.New("session already paused")
	errNotPaused     = errors.New("session not paused")
	errReconnecting  = errors.New("session is reconnecting")
	errEnded         = errors.New("session ended")
)

// Session is the direct audio playback of one guild. Only teardown clears
// its link and driver.
type Session struct {
	guildID string
	track   Track

	mu         sync.Mutex
	state      State
	prev       State
	link       VoiceLink
	driver     AudioDriver
	ctx        context.Context
	cancel     context.CancelFunc
	once       sync.Once
	done       chan struct{}
	onTeardown func(*Session, EndReason)
}

func newSession(parent context.Context, guildID string, track Track, onTeardown func(*Session, EndReason)) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		guildID:    guildID,
		track:      track,
		state:      StateConnecting,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		onTeardown: onTeardown,
	}
}

func (s *Session) GuildID() string { return s.guildID }

func (s *Session) Track() Track { return s.track }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Live reports whether the session still owns a voice link.
func (s *Session) Live() bool {
	return s.State() != StateEnded
}

// Done is closed after teardown.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) attach(link VoiceLink, driver AudioDriver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link = link
	s.driver = driver
}

func (s *Session) fire(ev sessionEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fireLocked(ev)
}

func (s *Session) fireLocked(ev sessionEvent) bool {
	to, ok := next(s.state, ev, s.prev)
	if !ok {
		return false
	}
	if to == StateReconnecting {
		s.prev = s.state
	}
	s.state = to
	return true
}

func (s *Session) pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePaused:
		return errAlreadyPaused
	case StateReconnecting:
		return errReconnecting
	case StatePlaying:
	default:
		return errEnded
	}
	if err := s.driver.Pause(); err != nil {
		return err
	}
	s.fireLocked(evPause)
	return nil
}

func (s *Session) resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePlaying:
		return errNotPaused
	case StateReconnecting:
		return errReconnecting
	case StatePaused:
	default:
		return errEnded
	}
	if err := s.driver.Unpause(); err != nil {
		return err
	}
	s.fireLocked(evResume)
	return nil
}

// teardown stops the driver, disconnects the link and clears both. Safe to
// call any number of times from any goroutine.
func (s *Session) teardown(reason EndReason) {
	s.once.Do(func() {
		s.mu.Lock()
		s.fireLocked(evEnd)
		driver, link := s.driver, s.link
		s.driver, s.link = nil, nil
		s.mu.Unlock()

		s.cancel()
		if driver != nil {
			driver.Stop()
		}
		if link != nil {
			if err := link.Disconnect(); err != nil {
				log.Warn().Err(err).Str("guild", s.guildID).Msg("[Playback] Voice disconnect failed")
			}
		}

		log.Info().Str("guild", s.guildID).Str("track", s.track.Title).Str("reason", string(reason)).
			Msg("[Playback] Direct session ended")
		if s.onTeardown != nil {
			s.onTeardown(s, reason)
		}
		close(s.done)
	})
}

type reconnectPolicy struct {
	attempts int
	delay    time.Duration
}

// watch follows link and driver events until the session ends.
func (s *Session) watch(policy reconnectPolicy) {
	s.mu.Lock()
	link, driver := s.link, s.driver
	s.mu.Unlock()
	if link == nil || driver == nil {
		return
	}
	links, drivers := link.Events(), driver.Events()

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, open := <-drivers:
			if !open {
				s.teardown(EndFinished)
				return
			}
			switch ev.Status {
			case DriverIdle:
				s.teardown(EndFinished)
				return
			case DriverError:
				log.Error().Err(ev.Err).Str("guild", s.guildID).Msg("[Playback] Audio driver error")
				s.teardown(EndError)
				return
			}
		case ev, open := <-links:
			if !open {
				s.teardown(EndDestroyed)
				return
			}
			switch ev {
			case LinkDestroyed:
				s.teardown(EndDestroyed)
				return
			case LinkDisconnected:
				if !s.reconnect(link, policy) {
					s.teardown(EndReconnectFailed)
					return
				}
			}
		}
	}
}

func (s *Session) reconnect(link VoiceLink, policy reconnectPolicy) bool {
	if !s.fire(evDisconnected) {
		return s.State() != StateEnded
	}
	if policy.attempts <= 0 {
		return false
	}
	log.Warn().Str("guild", s.guildID).Int("attempts", policy.attempts).Msg("[Playback] Voice link lost, reconnecting")

	err := retrylimit.WithRetryConfig(s.ctx, func() error {
		return link.Reconnect(s.ctx)
	}, nil, retrylimit.RetryConfig{
		MaxAttempts:  policy.attempts,
		InitialDelay: policy.delay,
		MaxDelay:     policy.delay * 8,
		Multiplier:   2,
	})
	if err != nil {
		log.Error().Err(err).Str("guild", s.guildID).Msg("[Playback] Reconnect failed")
		return false
	}
	s.fire(evReconnected)
	log.Info().Str("guild", s.guildID).Str("state", s.State().String()).Msg("[Playback] Voice link restored")
	return true
}
