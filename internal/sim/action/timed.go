package action

// Progress is the progress-display collaborator driven by timed actions.
type Progress interface {
	Show()
	Hide()
	SetProgress(fraction float64)
}

type nopProgress struct{}

func (nopProgress) Show()               {}
func (nopProgress) Hide()               {}
func (nopProgress) SetProgress(float64) {}

// Nop discards every progress call.
var Nop Progress = nopProgress{}

// Timed accumulates elapsed time for one in-flight action and reports progress each
// advance. Starting again cancels the previous run.
type Timed struct {
	progress Progress
	elapsed  float64
	active   bool
}

func NewTimed(p Progress) *Timed {
	if p == nil {
		p = Nop
	}
	return &Timed{progress: p}
}

func (t *Timed) Active() bool     { return t.active }
func (t *Timed) Elapsed() float64 { return t.elapsed }

func (t *Timed) Start() {
	t.elapsed = 0
	t.active = true
	t.progress.Show()
	t.progress.SetProgress(0)
}

// Advance adds dt and reports elapsed/duration. It returns true once elapsed reaches
// duration; the action is then finished and the display hidden.
func (t *Timed) Advance(dt, duration float64) bool {
	if !t.active {
		return false
	}
	t.elapsed += dt
	t.progress.SetProgress(Fraction(t.elapsed, duration))
	if t.elapsed < duration {
		return false
	}
	t.active = false
	t.progress.Hide()
	return true
}

// Cancel stops the action without completing it.
func (t *Timed) Cancel() {
	if !t.active {
		return
	}
	t.active = false
	t.elapsed = 0
	t.progress.Hide()
}

// Fraction is elapsed/total clamped to [0,1]; 0 when total is not positive.
func Fraction(elapsed, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return clamp01(elapsed / total)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
