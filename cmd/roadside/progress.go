package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"
)

// progressBar draws region progress on a terminal. It does nothing when the
// output is not a terminal or there is only one region.
type progressBar struct {
	w       io.Writer
	model   progress.Model
	enabled bool
	drawn   bool
}

func newProgressBar(f *os.File, total int) *progressBar {
	fd := f.Fd()
	return &progressBar{
		w:       f,
		model:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		enabled: total > 1 && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)),
	}
}

// Update redraws the bar after a region finishes.
func (p *progressBar) Update(done, total int, region string) {
	if !p.enabled || total == 0 {
		return
	}
	percent := float64(done) / float64(total)
	fmt.Fprintf(p.w, "\r%s %d/%d %-3s", p.model.ViewAs(percent), done, total, region)
	p.drawn = true
}

// Finish moves past the bar so later output starts on a fresh line.
func (p *progressBar) Finish() {
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}
