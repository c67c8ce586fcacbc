package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// progressSpinner animates a "label done/total" line on stderr until
// stopped or until its context ends.
type progressSpinner struct {
	out   io.Writer
	label string

	mu          sync.Mutex
	done, total int
	width       int

	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}
	stopOnce sync.Once
}

// startSpinner begins animating immediately.
func startSpinner(ctx context.Context, label string, total int) *progressSpinner {
	return startSpinnerTo(ctx, os.Stderr, label, total)
}

func startSpinnerTo(ctx context.Context, out io.Writer, label string, total int) *progressSpinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &progressSpinner{
		out:     out,
		label:   label,
		total:   total,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *progressSpinner) run() {
	defer close(s.stopped)
	t := time.NewTicker(spinnerInterval)
	defer t.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			s.mu.Lock()
			line := s.line()
			s.width = max(s.width, len(line))
			fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(line))
			s.mu.Unlock()
		}
	}
}

func (s *progressSpinner) line() string {
	if s.total <= 0 {
		return s.label
	}
	return fmt.Sprintf("%s %d/%d", s.label, s.done, s.total)
}

// Progress updates the counter. It has the shape of the Warm callback.
func (s *progressSpinner) Progress(done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done, s.total = done, total
}

// Stop ends the animation and clears the line. It is safe to call twice.
func (s *progressSpinner) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.stopped
		s.mu.Lock()
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width+2))
		s.mu.Unlock()
	})
}

// Succeed stops the spinner and prints a success line.
func (s *progressSpinner) Succeed(format string, args ...any) {
	s.Stop()
	printSuccess(format, args...)
}

// Fail stops the spinner and prints an error line.
func (s *progressSpinner) Fail(format string, args ...any) {
	s.Stop()
	printError(format, args...)
}
