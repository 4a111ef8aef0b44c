package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dovermoor/cinefetch/internal/tasks"
)

// progressUpdateMsg carries one engine update into the Elm loop.
type progressUpdateMsg tasks.ProgressUpdate

// harvestCompleteMsg reports the terminal state of a harvest. path holds the
// export location when a dataset was written.
type harvestCompleteMsg struct {
	result *tasks.HarvestResult
	path   string
	err    error
}

var (
	_ tea.Msg = progressUpdateMsg{}
	_ tea.Msg = harvestCompleteMsg{}
)
