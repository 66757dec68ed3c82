package viz

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/qobj"
)

const historyCapacity = 600

var (
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444466")).Padding(1, 2)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type progressMsg struct{ done, total int }

type sampleMsg struct {
	t      float64
	values []float64
}

type doneMsg struct{ err error }

type tickMsg time.Time

// Finished tells a live view that the solve returned.
func Finished(err error) tea.Msg { return doneMsg{err: err} }

// LiveModel is a bubbletea view of a running solve: progress, the latest
// expectation values and a chart of the first series.
type LiveModel struct {
	title    string
	labels   []string
	total    int
	done     int
	t        float64
	latest   []float64
	history  [][]float64
	start    time.Time
	elapsed  time.Duration
	finished bool
	err      error
}

func NewLiveModel(title string, labels []string) LiveModel {
	return LiveModel{
		title:   title,
		labels:  labels,
		history: make([][]float64, len(labels)),
		start:   time.Now(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd { return tick() }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case progressMsg:
		m.done, m.total = msg.done, msg.total
	case sampleMsg:
		m.t = msg.t
		m.latest = msg.values
		for i, v := range msg.values {
			if i >= len(m.history) {
				break
			}
			h := append(m.history[i], v)
			if len(h) > historyCapacity {
				h = h[len(h)-historyCapacity:]
			}
			m.history[i] = h
		}
	case doneMsg:
		m.finished = true
		m.err = msg.err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit
	case tickMsg:
		m.elapsed = time.Since(m.start)
		return m, tick()
	}
	return m, nil
}

// Err is the error the solve finished with, if any.
func (m LiveModel) Err() error { return m.err }

func (m LiveModel) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusFailed.Render("FAILED: "+m.err.Error()) + "\n\n")
	case m.finished:
		s.WriteString(StatusRunning.Render("DONE") + "\n\n")
	default:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	}

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	s.WriteString(ProgressBar(frac, 30) + fmt.Sprintf(" %d/%d\n\n", m.done, m.total))

	s.WriteString(MetricLabel.Render("t") + MetricValue.Render(fmt.Sprintf("%.4f", m.t)) + "\n")
	s.WriteString(MetricLabel.Render("elapsed") + MetricValue.Render(m.elapsed.Round(time.Millisecond).String()) + "\n")
	for i, label := range m.labels {
		v := "-"
		if i < len(m.latest) {
			v = fmt.Sprintf("%+.5f", m.latest[i])
		}
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(v) + " " + SparklineChart(m.history[i], 20) + "\n")
	}

	if len(m.history) > 0 && len(m.history[0]) > 1 {
		chart := asciigraph.Plot(m.history[0], asciigraph.Height(6), asciigraph.Width(50), asciigraph.Caption(m.labels[0]))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("q: quit"))
	return panelStyle.Render(s.String())
}

// LiveReporter forwards solver progress and output states to a running
// program. It implements dynamo.Progress and dynamo.Observer.
type LiveReporter struct {
	send  func(tea.Msg)
	eOps  []*qobj.Qobj
	isKet bool

	mu    sync.Mutex
	total int
}

func NewLiveReporter(send func(tea.Msg), eOps []*qobj.Qobj, isKet bool) *LiveReporter {
	return &LiveReporter{send: send, eOps: eOps, isKet: isKet}
}

func (r *LiveReporter) Start(total int) {
	r.mu.Lock()
	r.total = total
	r.mu.Unlock()
	r.send(progressMsg{done: 0, total: total})
}

func (r *LiveReporter) Update(done int) {
	r.mu.Lock()
	total := r.total
	r.mu.Unlock()
	r.send(progressMsg{done: done, total: total})
}

func (r *LiveReporter) Finish() {}

func (r *LiveReporter) OnStep(x dynamo.State, t float64) {
	values := make([]float64, len(r.eOps))
	for i, op := range r.eOps {
		values[i] = real(qobj.ExpectRaw(op, x, r.isKet))
	}
	r.send(sampleMsg{t: t, values: values})
}
