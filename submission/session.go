package submission

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// Distinguished values reported while no identity or lock is held.
const (
	Unauthenticated = "<unauthenticated>"
	Unlocked        = "<no lock acquired>"
)

// Session states and events.
const (
	stateUnauthenticated = "unauthenticated"
	stateAuthenticated   = "authenticated"
	stateLocked          = "locked"

	eventLogin   = "login"
	eventLogout  = "logout"
	eventLock    = "lock"
	eventRelease = "release"
)

// Session tracks the authenticated identity and the held instrument lock as
// an explicit state machine: unauthenticated -> authenticated ->
// locked(instrument). State only advances after the corresponding server
// call succeeded; a failed call leaves the session exactly where it was.
type Session struct {
	observatory Observatory
	machine     *fsm.FSM
	identity    string
	instrument  string
}

func newSession(obs Observatory) *Session {
	s := &Session{observatory: obs}
	s.machine = fsm.NewFSM(
		stateUnauthenticated,
		fsm.Events{
			{Name: eventLogin, Src: []string{stateUnauthenticated, stateAuthenticated}, Dst: stateAuthenticated},
			{Name: eventLogout, Src: []string{stateAuthenticated}, Dst: stateUnauthenticated},
			{Name: eventLock, Src: []string{stateAuthenticated}, Dst: stateLocked},
			{Name: eventRelease, Src: []string{stateLocked}, Dst: stateAuthenticated},
		},
		fsm.Callbacks{},
	)
	return s
}

// fire advances the machine. A same-state transition (re-login while
// already authenticated) is not an error.
func (s *Session) fire(ctx context.Context, event string) error {
	err := s.machine.Event(ctx, event)
	if err != nil {
		var noop fsm.NoTransitionError
		if errors.As(err, &noop) {
			return nil
		}
	}
	return err
}

// Identity returns the authenticated username, or Unauthenticated.
func (s *Session) Identity() string {
	if s.machine.Is(stateUnauthenticated) {
		return Unauthenticated
	}
	return s.identity
}

// LockStatus returns the locked instrument, or Unlocked.
func (s *Session) LockStatus() string {
	if !s.machine.Is(stateLocked) {
		return Unlocked
	}
	return s.instrument
}

// HoldsLock reports whether the session holds a lock on instrument.
func (s *Session) HoldsLock(instrument string) bool {
	return s.machine.Is(stateLocked) && s.instrument == instrument
}

// loggedIn records a successful authentication.
func (s *Session) loggedIn(ctx context.Context, username string) error {
	if err := s.fire(ctx, eventLogin); err != nil {
		return err
	}
	s.identity = username
	return nil
}

// checkLogout guards logout: an orphaned server-side lock is worse than an
// extra unlock call, so logout refuses while a lock is held.
func (s *Session) checkLogout() error {
	if s.machine.Is(stateLocked) {
		return ErrLockHeld
	}
	return nil
}

// loggedOut records a successful logout.
func (s *Session) loggedOut(ctx context.Context) error {
	if err := s.checkLogout(); err != nil {
		return err
	}
	if err := s.fire(ctx, eventLogout); err != nil {
		return err
	}
	s.identity = ""
	return nil
}

// checkLock guards lock acquisition without advancing state.
func (s *Session) checkLock(instrument string) error {
	if !ValidInstrument(s.observatory, instrument) {
		return &InvalidInstrumentError{Instrument: instrument, Observatory: s.observatory}
	}
	if s.machine.Is(stateUnauthenticated) {
		return ErrAuthenticationRequired
	}
	if s.machine.Is(stateLocked) && s.instrument != instrument {
		return ErrLockHeld
	}
	return nil
}

// locked records a successful lock acquisition.
func (s *Session) locked(ctx context.Context, instrument string) error {
	if err := s.checkLock(instrument); err != nil {
		return err
	}
	if s.HoldsLock(instrument) {
		return nil
	}
	if err := s.fire(ctx, eventLock); err != nil {
		return err
	}
	s.instrument = instrument
	return nil
}

// checkUnlock guards lock release.
func (s *Session) checkUnlock() error {
	if !s.machine.Is(stateLocked) {
		return ErrNotLocked
	}
	return nil
}

// released records a lock release, whether by explicit unlock or by the
// server dropping the lock after a successful submission.
func (s *Session) released(ctx context.Context) error {
	if err := s.checkUnlock(); err != nil {
		return err
	}
	if err := s.fire(ctx, eventRelease); err != nil {
		return err
	}
	s.instrument = ""
	return nil
}
