package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ParallelProgress shows one line per concurrently loading target, each
// with its own request counter. Lines are rewritten in place, so it only
// renders to a terminal.
type ParallelProgress struct {
	mu sync.Mutex

	tasks     []taskEntry
	index     map[string]int
	lineCount int
	frame     int
	started   time.Time

	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	output   io.Writer
	isTTY    bool

	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	errorStyle   lipgloss.Style
	mutedStyle   lipgloss.Style
}

type taskEntry struct {
	Name     string
	Requests int
	Done     int
	Failed   int
	Status   TaskStatus
}

// TaskStatus is the state of one line.
type TaskStatus int

const (
	TaskStatusPending TaskStatus = iota
	TaskStatusRunning
	TaskStatusPassed  // every request succeeded
	TaskStatusPartial // some requests failed
	TaskStatusFailed  // every request failed
)

// NewParallelProgress creates a progress display writing to os.Stderr.
func NewParallelProgress(isTTY bool) *ParallelProgress {
	return &ParallelProgress{
		index:    make(map[string]int),
		output:   os.Stderr,
		isTTY:    isTTY,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),

		successStyle: lipgloss.NewStyle().Foreground(ColorSuccess),
		warningStyle: lipgloss.NewStyle().Foreground(ColorWarning),
		errorStyle:   lipgloss.NewStyle().Foreground(ColorError),
		mutedStyle:   lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// SetWriter sets the output writer.
func (p *ParallelProgress) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// AddTask adds a pending line expecting the given number of requests.
// Adding a name twice is a no-op.
func (p *ParallelProgress) AddTask(name string, requests int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.index[name]; ok {
		return
	}
	p.index[name] = len(p.tasks)
	p.tasks = append(p.tasks, taskEntry{Name: name, Requests: requests, Status: TaskStatusPending})
	p.renderLocked()
}

// Start marks every pending line as running and begins the animation.
func (p *ParallelProgress) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.started = time.Now()
	p.stopChan = make(chan struct{})
	p.doneChan = make(chan struct{})
	for i := range p.tasks {
		if p.tasks[i].Status == TaskStatusPending {
			p.tasks[i].Status = TaskStatusRunning
		}
	}
	p.renderLocked()
	p.mu.Unlock()

	go p.animate()
}

// RequestDone records one finished request of the named line. Unknown
// names are ignored.
func (p *ParallelProgress) RequestDone(name string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, found := p.index[name]
	if !found {
		return
	}
	t := &p.tasks[i]
	if t.Done >= t.Requests {
		return
	}
	t.Done++
	if !ok {
		t.Failed++
	}
	if t.Done == t.Requests {
		switch {
		case t.Failed == 0:
			t.Status = TaskStatusPassed
		case t.Failed == t.Requests:
			t.Status = TaskStatusFailed
		default:
			t.Status = TaskStatusPartial
		}
	}
	p.renderLocked()
}

// Counts returns finished and expected requests over all lines.
func (p *ParallelProgress) Counts() (done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.tasks {
		done += t.Done
		total += t.Requests
	}
	return done, total
}

// Status returns the state of the named line.
func (p *ParallelProgress) Status(name string) TaskStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i, ok := p.index[name]; ok {
		return p.tasks[i].Status
	}
	return TaskStatusPending
}

// Stop halts the animation and renders the final state.
func (p *ParallelProgress) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	<-p.doneChan
}

func (p *ParallelProgress) animate() {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer close(p.doneChan)

	for {
		select {
		case <-p.stopChan:
			p.mu.Lock()
			p.renderLocked()
			p.mu.Unlock()
			return
		case <-ticker.C:
			p.mu.Lock()
			p.frame = (p.frame + 1) % len(spinnerFrames)
			p.renderLocked()
			p.mu.Unlock()
		}
	}
}

// renderLocked rewrites every line in place. Must be called with p.mu held.
func (p *ParallelProgress) renderLocked() {
	if !p.isTTY || len(p.tasks) == 0 {
		return
	}

	var sb strings.Builder
	if p.lineCount > 0 {
		fmt.Fprintf(&sb, "\x1b[%dA", p.lineCount)
	}
	for _, t := range p.tasks {
		sb.WriteString("\x1b[K")
		sb.WriteString(p.renderTaskLine(t))
		sb.WriteString("\n")
	}

	fmt.Fprint(p.output, sb.String())
	p.lineCount = len(p.tasks)
}

// renderTaskLine renders one line: symbol, name and request counter.
func (p *ParallelProgress) renderTaskLine(t taskEntry) string {
	var symbol string
	var style lipgloss.Style

	switch t.Status {
	case TaskStatusPending:
		symbol = SymbolPending
		style = p.mutedStyle
	case TaskStatusRunning:
		symbol = spinnerFrames[p.frame]
		style = lipgloss.NewStyle().Foreground(GradientColors[(p.frame/2)%len(GradientColors)])
	case TaskStatusPassed:
		symbol = SymbolSuccess
		style = p.successStyle
	case TaskStatusPartial:
		symbol = SymbolWarning
		style = p.warningStyle
	case TaskStatusFailed:
		symbol = SymbolFail
		style = p.errorStyle
	}

	counter := fmt.Sprintf("%d/%d", t.Done, t.Requests)
	if t.Failed > 0 {
		counter += fmt.Sprintf(", %d failed", t.Failed)
	}
	return fmt.Sprintf("%s %s %s", style.Render(symbol), t.Name, p.mutedStyle.Render("["+counter+"]"))
}
