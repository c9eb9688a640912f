package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows resolution progress on a single terminal line. It stops
// drawing when its context is cancelled.
type Spinner struct {
	out    io.Writer
	ctx    context.Context
	cancel context.CancelFunc

	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu          sync.Mutex
	message     string
	width       int  // widest line drawn so far
	interrupted bool // parent context was done when Stop ran
}

func newSpinner(ctx context.Context, out io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:     out,
		ctx:     sctx,
		cancel:  cancel,
		message: message,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins drawing frames in the background.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := runewidth.StringWidth(s.message) + 2
	pad := ""
	if w < s.width {
		pad = strings.Repeat(" ", s.width-w)
	} else {
		s.width = w
	}
	fmt.Fprintf(s.out, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(s.message), pad)
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := max(s.width, runewidth.StringWidth(s.message)+2)
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", w))
}

// Stop halts the animation and clears the line. Later calls are no-ops.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.interrupted = s.ctx.Err() != nil
		s.mu.Unlock()
		close(s.done)
		<-s.stopped
		s.clearLine()
		s.cancel()
	})
}

// Cancelled reports whether the spinner's parent context was cancelled
// before Stop was called.
func (s *Spinner) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return s.interrupted
	default:
		return s.ctx.Err() != nil
	}
}

// StopWithSuccess stops the spinner and leaves msg on its line.
func (s *Spinner) StopWithSuccess(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// StopWithError stops the spinner and leaves msg on its line.
func (s *Spinner) StopWithError(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, styleIconError.Render(iconError)+" "+msg)
}
