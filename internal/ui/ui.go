package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dovermoor/cinefetch/internal/formatter"
	"github.com/dovermoor/cinefetch/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfigureView ViewState = iota
	ConfirmView
	HarvestView
	ResultView
)

const (
	targetStep     = 100
	targetMin      = 100
	targetMax      = 10000
	concurrencyMax = 20
	progressBuffer = 50
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.HarvestEngine
	outputDir    string
	width        int
	height       int
	formatList   list.Model
	target       int
	concurrency  int
	includeAdult bool
	cancel       atomic.Bool
	progressChan chan tasks.ProgressUpdate
	doneChan     chan harvestCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.HarvestResult
	exportPath   string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates the initial TUI model. Out-of-range defaults fall back to
// 1000 movies and 8 workers, and an empty outputDir means the working
// directory.
func NewModel(ctx context.Context, engine tasks.HarvestEngine, defaults tasks.HarvestOpts, outputDir string) *Model {
	target := defaults.TargetCount
	if target < targetMin || target > targetMax {
		target = 1000
	}
	concurrency := defaults.Concurrency
	if concurrency < 1 || concurrency > concurrencyMax {
		concurrency = 8
	}
	if outputDir == "" {
		outputDir = "."
	}

	return &Model{
		ctx:          ctx,
		view:         ConfigureView,
		engine:       engine,
		outputDir:    outputDir,
		formatList:   newFormatList(),
		target:       target,
		concurrency:  concurrency,
		includeAdult: defaults.IncludeAdult,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init implements [tea.Model]
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements [tea.Model]
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.formatList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfigureView:
			return m.handleConfigureKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case HarvestView:
			return m.handleHarvestKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case harvestCompleteMsg:
		m.result = msg.result
		m.exportPath = msg.path
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	if m.view == ConfigureView {
		var cmd tea.Cmd
		m.formatList, cmd = m.formatList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleConfigureKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.more):
		m.target = min(m.target+targetStep, targetMax)
		return m, nil
	case key.Matches(msg, m.keys.less):
		m.target = max(m.target-targetStep, targetMin)
		return m, nil
	case key.Matches(msg, m.keys.faster):
		m.concurrency = min(m.concurrency+1, concurrencyMax)
		return m, nil
	case key.Matches(msg, m.keys.slower):
		m.concurrency = max(m.concurrency-1, 1)
		return m, nil
	case key.Matches(msg, m.keys.adult):
		m.includeAdult = !m.includeAdult
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.formatList, cmd = m.formatList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.view = HarvestView
		return m, m.startHarvest()
	case key.Matches(msg, m.keys.no):
		m.view = ConfigureView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleHarvestKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.cancel.Store(true)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = ConfigureView
		m.cancel.Store(false)
		m.progress = tasks.ProgressUpdate{}
		m.result = nil
		m.exportPath = ""
		m.err = nil
		return m, nil
	}
	return m, nil
}

// selectedFormat reads the format picker, defaulting to CSV.
func (m *Model) selectedFormat() string {
	if item, ok := m.formatList.SelectedItem().(formatItem); ok {
		return string(item)
	}
	return formatter.FormatCSV
}

// startHarvest launches the engine in a goroutine and begins pumping progress
// updates into the Elm loop. The completion message travels through its own
// buffered channel so the goroutine can send it before closing the progress
// channel.
func (m *Model) startHarvest() tea.Cmd {
	m.cancel.Store(false)
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = make(chan tasks.ProgressUpdate, progressBuffer)
	m.doneChan = make(chan harvestCompleteMsg, 1)

	opts := tasks.HarvestOpts{
		TargetCount:  m.target,
		Concurrency:  m.concurrency,
		IncludeAdult: m.includeAdult,
		Cancel:       m.cancel.Load,
	}
	format := m.selectedFormat()
	outputDir := m.outputDir
	progress, done := m.progressChan, m.doneChan

	go func() {
		result, err := m.engine.Run(m.ctx, progress, opts)

		var path string
		if err == nil && result != nil && result.Status == "completed" && result.Found > 0 {
			path = filepath.Join(outputDir, formatter.DefaultFilename(format))
			if werr := formatter.WriteDataset(path, format, result.Movies); werr != nil {
				err = werr
				path = ""
			}
		}

		done <- harvestCompleteMsg{result: result, path: path, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

// waitForProgress returns a command that blocks on the next progress update.
// A closed progress channel means the run goroutine has finished, so the
// completion message is waiting on doneChan.
func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

// View implements [tea.Model]
func (m *Model) View() string {
	switch m.view {
	case ConfigureView:
		return m.renderConfigure()
	case ConfirmView:
		return m.renderConfirm()
	case HarvestView:
		return m.renderHarvest()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderConfigure() string {
	title := styles.title.Render("Configure Harvest")
	settings := fmt.Sprintf("Movies: %d    Workers: %d    Adult column: %s",
		m.target, m.concurrency, onOff(m.includeAdult))

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.more, m.keys.faster, m.keys.adult, m.keys.enter, m.keys.quit,
	})

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, settings, m.formatList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Start this harvest?")
	details := fmt.Sprintf("\nMovies: %d\nFormat: %s\nWorkers: %d\nAdult column: %s\nOutput directory: %s\n",
		m.target, m.selectedFormat(), m.concurrency, onOff(m.includeAdult), m.outputDir)

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.yes, m.keys.no, m.keys.quit,
	})

	return fmt.Sprintf("%s%s\n%s", title, details, helpView)
}

func (m *Model) renderHarvest() string {
	title := styles.title.Render("Harvesting Movies")

	var phase string
	switch m.progress.Phase {
	case tasks.ResolveGenres:
		phase = "Resolving genre catalog..."
	case tasks.FetchPages:
		phase = fmt.Sprintf("Fetching batch %d/%d", m.progress.Step, m.progress.Total)
	case tasks.Accumulate:
		phase = fmt.Sprintf("Collected %d/%d movies", m.progress.Step, m.progress.Total)
	case tasks.Finalize:
		phase = "Finishing up..."
	default:
		phase = "Processing..."
	}

	body := fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
	if m.cancel.Load() {
		body += "\n\n" + styles.warn.Render("Cancelling after the current batch...")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.cancel})
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Harvest failed: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}
	if m.result == nil {
		body := styles.err.Render("No result available")
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	var title string
	if m.result.Status == "cancelled" {
		title = styles.warn.Render("Harvest cancelled")
	} else {
		title = styles.ok.Render("✓ Harvest complete")
	}

	details := fmt.Sprintf("\nCollected: %d\nSkipped: %d\nBatches: %d\nElapsed: %s\n",
		m.result.Found, m.result.Skipped, m.result.Batches, m.result.Elapsed.Round(time.Millisecond))
	if m.exportPath != "" {
		details += fmt.Sprintf("Saved to: %s\n", m.exportPath)
	}

	return fmt.Sprintf("%s%s\n%s", title, details, helpView)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
