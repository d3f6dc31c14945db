package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// scanProgress renders a progress bar for workspace scans. The bar writes
// to stderr so piped scan output stays machine readable.
type scanProgress struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

func newScanProgress(quiet bool) *scanProgress {
	return &scanProgress{quiet: quiet}
}

// update is the engine progress callback. The bar is created on the first
// call, once the file total is known.
func (p *scanProgress) update(done, total int) {
	if p.quiet || total == 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Scanning files"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
	}
	p.bar.Set(done)
}

// finish clears a bar that never reached its total, such as when every
// remaining file was served from cache.
func (p *scanProgress) finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
