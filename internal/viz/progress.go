package viz

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress draws a single-line bar on w. It is safe for use from the
// trajectory workers of a stochastic solve.
type Progress struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	width int
	total int
	done  int
	start time.Time
	now   func() time.Time
}

func NewProgress(w io.Writer, label string) *Progress {
	return &Progress{w: w, label: label, width: 30, now: time.Now}
}

func (p *Progress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.done = 0
	p.start = p.now()
	p.draw()
}

func (p *Progress) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if done <= p.done {
		return
	}
	p.done = done
	p.draw()
}

func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = p.total
	p.draw()
	fmt.Fprintln(p.w)
}

func (p *Progress) fraction() float64 {
	if p.total <= 0 {
		return 1
	}
	return float64(p.done) / float64(p.total)
}

func (p *Progress) draw() {
	elapsed := p.now().Sub(p.start).Round(time.Millisecond)
	fmt.Fprintf(p.w, "\r%s %s %3.0f%% %d/%d %s",
		MetricLabel.Render(p.label),
		ProgressBar(p.fraction(), p.width),
		100*p.fraction(), p.done, p.total,
		Subtle.Render(elapsed.String()))
}
