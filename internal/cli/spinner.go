package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// formatLabels describe what producing each render format involves.
var formatLabels = map[string]string{
	formatDOT: "Writing DOT",
	formatSVG: "Laying out SVG",
	formatPDF: "Converting to PDF",
	formatPNG: "Converting to PNG",
}

// conversionSpinner animates a status line while render output is produced.
// The line names the format and file being written; stop returns the files
// that were completed.
//
// A nil *conversionSpinner is valid and does nothing, so callers that skip
// the animation need no branches.
type conversionSpinner struct {
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	status  string
	width   int
	written []string
}

// newConversionSpinner creates a spinner drawing on w. It stops on its own
// when ctx ends.
func newConversionSpinner(ctx context.Context, w io.Writer) *conversionSpinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &conversionSpinner{
		w:       w,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		status:  "Rendering...",
	}
}

func (s *conversionSpinner) start() {
	if s == nil {
		return
	}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
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

// step announces that format is about to be written to path.
func (s *conversionSpinner) step(format, path string) {
	if s == nil {
		return
	}
	label, ok := formatLabels[format]
	if !ok {
		label = "Rendering " + strings.ToUpper(format)
	}
	s.mu.Lock()
	s.status = label + " " + iconArrow + " " + path
	s.mu.Unlock()
}

// finished records that path was written.
func (s *conversionSpinner) finished(path string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.written = append(s.written, path)
	s.mu.Unlock()
}

// stop ends the animation, clears the status line and returns the files
// recorded by finished. It may be called more than once.
func (s *conversionSpinner) stop() []string {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		<-s.stopped
		s.clearLine()
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

// cancelled reports whether the spinner ended because its context did.
func (s *conversionSpinner) cancelled() bool {
	return s != nil && s.ctx.Err() != nil
}

func (s *conversionSpinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.status)
	pad := ""
	if n := len(s.status) + 2; n < s.width {
		pad = strings.Repeat(" ", s.width-n)
	} else {
		s.width = n
	}
	fmt.Fprintf(s.w, "\r%s%s", line, pad)
}

func (s *conversionSpinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
	s.width = 0
}
