package uistate

import (
	"sync"
	"time"
)

// DefaultSnackbarDuration is the auto-dismiss delay used when none is given.
const DefaultSnackbarDuration = 4 * time.Second

type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one snackbar message.
type Notice struct {
	Text     string
	Severity Severity
}

// Snackbar shows at most one notice at a time. A new notice replaces the
// visible one; each notice is dismissed after the configured delay unless a
// newer one replaced it first.
type Snackbar struct {
	duration time.Duration

	mu       sync.Mutex
	open     bool
	notice   Notice
	gen      uint64
	timer    *time.Timer
	onChange func(open bool, n Notice)
}

func NewSnackbar(d time.Duration) *Snackbar {
	if d <= 0 {
		d = DefaultSnackbarDuration
	}
	return &Snackbar{duration: d}
}

// OnChange registers fn, called after every show and dismiss.
func (s *Snackbar) OnChange(fn func(open bool, n Notice)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Snackbar) Show(text string, sev Severity) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.open = true
	s.notice = Notice{Text: text, Severity: sev}
	s.timer = time.AfterFunc(s.duration, func() { s.expire(gen) })
	fn, n := s.onChange, s.notice
	s.mu.Unlock()

	if fn != nil {
		fn(true, n)
	}
}

func (s *Snackbar) Info(text string)    { s.Show(text, SeverityInfo) }
func (s *Snackbar) Success(text string) { s.Show(text, SeveritySuccess) }
func (s *Snackbar) Warning(text string) { s.Show(text, SeverityWarning) }
func (s *Snackbar) Error(text string)   { s.Show(text, SeverityError) }

// Dismiss hides the visible notice, if any.
func (s *Snackbar) Dismiss() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.close()
}

// expire closes the notice shown as generation gen. Stale timers are no-ops.
func (s *Snackbar) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.close()
}

// close must be called with s.mu held; it releases it.
func (s *Snackbar) close() {
	if !s.open {
		s.mu.Unlock()
		return
	}
	s.open = false
	fn, n := s.onChange, s.notice
	s.mu.Unlock()

	if fn != nil {
		fn(false, n)
	}
}

// Current returns the visible notice and whether there is one.
func (s *Snackbar) Current() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice, s.open
}
