package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/provide-io/craftkit/pkg/progress"
)

var (
	stageStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	doneStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	pathStyle    = lipgloss.NewStyle().Underline(true)
)

// progressBar renders a fixed-width bar for a fraction in [0, 1].
func progressBar(fraction float64, width int) string {
	fraction = max(0, min(1, fraction))
	filled := int(fraction * float64(width))
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}

// renderForge prints forge stage events until ch is closed.
func renderForge(w io.Writer, ch <-chan progress.ForgeStage, wg *sync.WaitGroup) {
	defer wg.Done()
	for ev := range ch {
		bar := progressBar(ev.Fraction()/progress.ForgeTotal, 20)
		if ev.Stage == progress.StageDone {
			fmt.Fprintf(w, "%s %s\n", doneStyle.Render(bar), doneStyle.Render(ev.Message()))
			continue
		}
		fmt.Fprintf(w, "%s %s\n", stageStyle.Render(bar), messageStyle.Render(ev.Message()))
	}
}

// renderGeneric prints generic progress events until ch is closed.
func renderGeneric(w io.Writer, label string, ch <-chan progress.Generic, wg *sync.WaitGroup) {
	defer wg.Done()
	for ev := range ch {
		msg := ev.Message
		if msg == "" {
			msg = fmt.Sprintf("%d/%d", ev.Done, ev.Total)
		}
		style := stageStyle
		if ev.Finished {
			style = doneStyle
		}
		fmt.Fprintf(w, "%s %s %s\n", style.Render(label), style.Render(progressBar(ev.Fraction(), 20)), messageStyle.Render(msg))
	}
}
