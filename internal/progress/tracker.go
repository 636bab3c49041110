// Package progress reports how far a schema inspection has got, either as a
// terminal progress bar or as JSON lines for automation.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/johndauphine/sqldialect/internal/logging"
	"github.com/schollz/progressbar/v3"
)

// Tracker drives a progress bar counted in tables.
type Tracker struct {
	mu        sync.Mutex
	bar       *progressbar.ProgressBar
	out       io.Writer
	total     int
	done      int
	startTime time.Time
}

// New creates a tracker that draws on out, stderr when nil.
func New(out io.Writer) *Tracker {
	if out == nil {
		out = os.Stderr
	}
	return &Tracker{out: out, startTime: time.Now()}
}

// SetTotal sets the number of tables to inspect
func (t *Tracker) SetTotal(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
	t.bar = progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription("Inspecting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("tables"),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to done of total, resizing it if total changed.
// Its signature matches probe.ProgressFunc.
func (t *Tracker) Update(done, total int) {
	if t.bar == nil || total != t.total {
		t.SetTotal(total)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = done
	_ = t.bar.Set(done)
}

// Describe changes the label shown next to the bar
func (t *Tracker) Describe(table string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar != nil {
		t.bar.Describe(fmt.Sprintf("Inspecting %s", table))
	}
}

// Done returns the number of tables finished so far
func (t *Tracker) Done() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Finish marks the progress as complete
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar != nil {
		_ = t.bar.Finish()
	}

	elapsed := time.Since(t.startTime)
	fmt.Fprintln(t.out)
	logging.Info("Inspection complete: %d tables in %s", t.done, elapsed.Round(time.Millisecond))
}
