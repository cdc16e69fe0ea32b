package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// LoadProgress draws file loading progress on w. Its Update method matches
// the loader's progress callback and is safe to call from worker goroutines.
type LoadProgress struct {
	w    io.Writer
	desc string

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	seen int
}

// NewLoadProgress returns a progress reporter writing to w, typically stderr.
func NewLoadProgress(w io.Writer, desc string) *LoadProgress {
	return &LoadProgress{w: w, desc: desc}
}

// Update reports that current of total files are done. The bar is created
// on the first call, once total is known.
func (p *LoadProgress) Update(current, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan]"+p.desc+"[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprintln(p.w)
			}),
		)
	}
	// Workers may report out of order; only move forward.
	if current <= p.seen {
		return
	}
	p.seen = current
	if err := p.bar.Set(current); err != nil {
		slog.Debug("progress bar update failed", "error", err)
	}
}

// Done reports how many files were seen, or 0 before the first update.
func (p *LoadProgress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen
}
