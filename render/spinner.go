package render

import "time"

// SpinnerStyle selects the animation frames.
type SpinnerStyle int

const (
	SpinnerBraille SpinnerStyle = iota
	SpinnerGlobe
	SpinnerWave
)

var spinnerFrames = map[SpinnerStyle][]string{
	SpinnerBraille: {"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	SpinnerGlobe:   {"◐", "◓", "◑", "◒"},
	SpinnerWave:    {"▁▂▃", "▂▃▄", "▃▄▅", "▄▅▆", "▅▆▇", "▆▇█", "▅▆▇", "▄▅▆", "▃▄▅", "▂▃▄"},
}

// Spinner is the loading indicator shown while a page is being fetched.
// It is not safe for concurrent use.
type Spinner struct {
	frames   []string
	frame    int
	started  time.Time
	last     time.Time
	interval time.Duration
}

// NewSpinner creates a spinner. Unknown styles fall back to a plain ASCII
// bar.
func NewSpinner(style SpinnerStyle) *Spinner {
	frames, ok := spinnerFrames[style]
	if !ok {
		frames = []string{"|", "/", "-", `\`}
	}
	now := time.Now()
	return &Spinner{frames: frames, started: now, last: now, interval: 80 * time.Millisecond}
}

// Interval is how often the spinner wants a redraw.
func (s *Spinner) Interval() time.Duration {
	return s.interval
}

// Tick advances one frame once the interval has passed since the last
// one and reports whether it did.
func (s *Spinner) Tick(now time.Time) bool {
	if now.Sub(s.last) < s.interval {
		return false
	}
	s.frame = (s.frame + 1) % len(s.frames)
	s.last = now
	return true
}

// Reset restarts the animation and the elapsed clock, for a new request.
func (s *Spinner) Reset() {
	s.frame = 0
	s.started = time.Now()
	s.last = s.started
}

// Elapsed is the time since the last Reset.
func (s *Spinner) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.started)
}

func (s *Spinner) Frame() string {
	return s.frames[s.frame]
}
