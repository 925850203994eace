package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FetchErrorMsg reports a failed fetch cycle. The coordinator publishes an
// empty page for it; the model shows the error in its status line.
type FetchErrorMsg struct {
	Err error
}

// Notifier is a coordinator.Observer that forwards fetch failures to a
// Bubble Tea program. Events before SetProgram are dropped.
type Notifier struct {
	program atomic.Pointer[tea.Program]
}

// SetProgram sets the program receiving FetchErrorMsg.
func (n *Notifier) SetProgram(p *tea.Program) {
	n.program.Store(p)
}

func (n *Notifier) CycleStarted(uint64) {}

func (n *Notifier) CycleCompleted(_ uint64, _ time.Duration, err error) {
	if err == nil {
		return
	}
	if p := n.program.Load(); p != nil {
		// Send blocks until the program reads it.
		go p.Send(FetchErrorMsg{Err: err})
	}
}

func (n *Notifier) CycleDiscarded(uint64) {}
