package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/rfit/pkg/pipeline"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// batchProgress is a batch spinner that counts resolved surfaces and shows the
// last one finished, e.g. "⠹ Resolving 2/5 · Wall → 2x6 Wood Stud".
//
// Advance is wired to [pipeline.Runner.Progress] and may be called from
// any goroutine. The line is redrawn on a ticker until Stop is called or
// the context is done.
type batchProgress struct {
	w     io.Writer
	label string
	total int

	mu    sync.Mutex
	done  int
	last  string
	width int

	ctx    context.Context
	cancel context.CancelFunc
	exited chan struct{}
	once   sync.Once
}

func newBatchProgress(ctx context.Context, w io.Writer, label string, total int) *batchProgress {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &batchProgress{
		w:      w,
		label:  label,
		total:  total,
		ctx:    ctx,
		cancel: cancel,
		exited: make(chan struct{}),
	}
}

// Start begins drawing in the background.
func (p *batchProgress) Start() {
	go func() {
		defer close(p.exited)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			p.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-p.ctx.Done():
				p.clear()
				return
			case <-ticker.C:
			}
		}
	}()
}

// Advance records one resolved surface.
func (p *batchProgress) Advance(res *pipeline.SurfaceResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if res != nil {
		p.last = res.ID + " " + iconArrow + " " + res.Template
	}
}

// Done returns how many surfaces have been reported so far.
func (p *batchProgress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Stop clears the line and waits for the drawing goroutine to exit.
// It is safe to call more than once.
func (p *batchProgress) Stop() {
	p.once.Do(p.cancel)
	<-p.exited
}

// line renders the progress text for one spinner frame without styling.
func (p *batchProgress) line(frame string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	text := fmt.Sprintf("%s %s %d/%d", frame, p.label, p.done, p.total)
	if p.last != "" {
		text += " · " + p.last
	}
	return text
}

func (p *batchProgress) draw(frame string) {
	text := p.line(frame)
	head, rest, _ := strings.Cut(text, " ")
	styled := styleIconSpinner.Render(head) + " " + StyleDim.Render(rest)

	p.mu.Lock()
	defer p.mu.Unlock()
	// Pad over a longer previous line; surface names vary in length.
	pad := p.width - lipgloss.Width(text)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(p.w, "\r%s%s", styled, strings.Repeat(" ", pad))
	p.width = lipgloss.Width(text)
}

func (p *batchProgress) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.width > 0 {
		fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", p.width))
		p.width = 0
	}
}
