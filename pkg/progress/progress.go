// Package progress defines the progress events long-running installs emit.
//
// Events are delivered over caller-owned channels. Intermediate events are
// best effort: a nil channel, or one nobody is reading, never blocks or fails
// an install. The final event of an install waits for the reader until the
// install's context ends.
package progress

import (
	"context"
	"fmt"
)

// Generic is a done/total counter with an optional message.
type Generic struct {
	Done     int
	Total    int
	Message  string
	Finished bool
}

// Started is the event sent before any work is counted.
func Started() Generic {
	return Generic{}
}

// Completed is the event sent once everything succeeded.
func Completed() Generic {
	return Generic{Done: 1, Total: 1, Finished: true}
}

// Fraction returns Done/Total in [0,1].
func (g Generic) Fraction() float64 {
	if g.Finished {
		return 1
	}
	if g.Total <= 0 {
		return 0
	}
	return float64(g.Done) / float64(g.Total)
}

// Send delivers v without blocking. Returns false when v was dropped.
func Send[T any](ch chan<- T, v T) bool {
	if ch == nil {
		return false
	}
	select {
	case ch <- v:
		return true
	default:
		return false
	}
}

// Deliver sends v, waiting for the reader until ctx is done. Returns false
// when ch is nil or ctx ended first.
func Deliver[T any](ctx context.Context, ch chan<- T, v T) bool {
	if ch == nil {
		return false
	}
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stage identifies a phase of a loader install.
type Stage int

const (
	StageStart Stage = iota
	StageDownloadingJSON
	StageDownloadingInstaller
	StageRunningInstaller
	StageDownloadingLibrary
	StageDone
)

// ForgeStage is a loader install event. Num/OutOf are only meaningful for
// StageDownloadingLibrary.
type ForgeStage struct {
	Stage Stage
	Num   int
	OutOf int
}

// ForgeTotal is the upper bound of ForgeStage.Fraction.
const ForgeTotal = 4.0

// Fraction places the event on a 0..ForgeTotal scale.
func (f ForgeStage) Fraction() float64 {
	switch f.Stage {
	case StageStart:
		return 0
	case StageDownloadingJSON:
		return 1
	case StageDownloadingInstaller:
		return 2
	case StageRunningInstaller:
		return 3
	case StageDownloadingLibrary:
		if f.OutOf <= 0 {
			return 3
		}
		return 3 + float64(f.Num)/float64(f.OutOf)
	default:
		return ForgeTotal
	}
}

// Message is the human readable label of the event.
func (f ForgeStage) Message() string {
	switch f.Stage {
	case StageStart:
		return "Installing forge..."
	case StageDownloadingJSON:
		return "Downloading JSON"
	case StageDownloadingInstaller:
		return "Downloading installer"
	case StageRunningInstaller:
		return "Running Installer (this might take a while)"
	case StageDownloadingLibrary:
		return fmt.Sprintf("Downloading Library (%d/%d)", f.Num, f.OutOf)
	default:
		return "Done!"
	}
}
