// Package tui provides a terminal user interface for wavetone
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/pieces"
	"github.com/james-see/wavetone/pkg/score"
	"github.com/james-see/wavetone/pkg/synth"
)

// Oscilloscope color scheme
var (
	phosphorGreen = lipgloss.Color("#39FF14")
	amber         = lipgloss.Color("#FFB000")
	silverGray    = lipgloss.Color("#C0C0C0")
	darkGray      = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(phosphorGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(phosphorGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(amber).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(phosphorGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(phosphorGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StatePieces
	StateFilePicker
	StatePlaying
	StateResult
)

// Action is what a menu item does
type Action int

const (
	ActionScale Action = iota
	ActionMinorScale
	ActionPiece
	ActionOpenFile
	ActionWaveform
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
}

var menuItems = []MenuItem{
	{Title: "Major scale", Description: "Play the major scale from the tonic, up and down", Action: ActionScale},
	{Title: "Harmonic minor scale", Description: "Play the harmonic minor scale from the tonic", Action: ActionMinorScale},
	{Title: "Built-in piece", Description: "Play one of the bundled piano pieces", Action: ActionPiece},
	{Title: "Open file", Description: "Play a .score or MIDI file", Action: ActionOpenFile},
	{Title: "Waveform", Description: "Cycle sine, square, triangle and sawtooth", Action: ActionWaveform},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// PlayFunc plays a score with the given waveform until done or cancelled
type PlayFunc func(ctx context.Context, s *score.Score, waveform synth.Waveform) error

// LoadFunc reads a score or MIDI file
type LoadFunc func(path string) (*score.Score, error)

// Config wires the TUI to playback
type Config struct {
	Play     PlayFunc
	Load     LoadFunc
	Tonic    music.Note
	Settings music.BeatSettings
	Waveform synth.Waveform
	Volume   uint8
}

// Model represents the TUI model
type Model struct {
	config     Config
	state      State
	menuIndex  int
	pieceIndex int
	pieceNames []string
	filePicker filepicker.Model
	spinner    spinner.Model
	waveform   synth.Waveform
	playing    string
	cancel     context.CancelFunc
	err        error
	width      int
	height     int
}

// playDoneMsg signals playback completion
type playDoneMsg struct {
	title string
	err   error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(cfg Config) Model {
	if cfg.Tonic == 0 {
		cfg.Tonic = music.MustParseNote("C4")
	}
	if cfg.Volume == 0 {
		cfg.Volume = score.DefaultVolume
	}

	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".score", ".txt", ".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(phosphorGreen)

	return Model{
		config:     cfg,
		state:      StateMenu,
		filePicker: fp,
		spinner:    s,
		waveform:   cfg.Waveform,
		pieceNames: pieces.Names(),
	}
}

// State returns the current state
func (m Model) State() State {
	return m.state
}

// Waveform returns the selected waveform
func (m Model) Waveform() synth.Waveform {
	return m.waveform
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			return m.loadAndPlay(path)
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StatePieces:
			return m.updatePieces(msg)
		case StatePlaying:
			return m.updatePlaying(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case playDoneMsg:
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.state = StateResult
		m.playing = msg.title
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "w":
		m.waveform = m.waveform.Next()
	case "enter":
		switch menuItems[m.menuIndex].Action {
		case ActionExit:
			return m, tea.Quit
		case ActionWaveform:
			m.waveform = m.waveform.Next()
		case ActionScale:
			return m.playScale(music.Major)
		case ActionMinorScale:
			return m.playScale(music.MinorHarmonic)
		case ActionPiece:
			m.state = StatePieces
		case ActionOpenFile:
			m.state = StateFilePicker
			return m, m.filePicker.Init()
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updatePieces(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.pieceIndex > 0 {
			m.pieceIndex--
		}
	case "down", "j":
		if m.pieceIndex < len(m.pieceNames)-1 {
			m.pieceIndex++
		}
	case "enter":
		if len(m.pieceNames) == 0 {
			return m, nil
		}
		s, err := pieces.Get(m.pieceNames[m.pieceIndex])
		if err != nil {
			m.state = StateResult
			m.err = err
			return m, nil
		}
		return m.startPlaying(s)
	case "esc":
		m.state = StateMenu
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "s":
		if m.cancel != nil {
			m.cancel()
		}
	case "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.playing = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) playScale(scale music.Scale) (tea.Model, tea.Cmd) {
	s, err := score.ScaleScore(m.config.Tonic, scale, m.config.Settings, m.waveform, m.config.Volume)
	if err != nil {
		m.state = StateResult
		m.err = err
		return m, nil
	}
	return m.startPlaying(s)
}

func (m Model) loadAndPlay(path string) (tea.Model, tea.Cmd) {
	if m.config.Load == nil {
		m.state = StateResult
		m.err = fmt.Errorf("cannot open %s: no loader configured", filepath.Base(path))
		return m, nil
	}
	s, err := m.config.Load(path)
	if err != nil {
		m.state = StateResult
		m.err = err
		return m, nil
	}
	return m.startPlaying(s)
}

func (m Model) startPlaying(s *score.Score) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.state = StatePlaying
	m.playing = s.Title
	m.err = nil
	m.cancel = cancel
	return m, tea.Batch(m.spinner.Tick, m.playCmd(ctx, s))
}

func (m Model) playCmd(ctx context.Context, s *score.Score) tea.Cmd {
	play := m.config.Play
	waveform := m.waveform
	return func() tea.Msg {
		if play == nil {
			return playDoneMsg{title: s.Title, err: fmt.Errorf("no audio backend configured")}
		}
		err := play(ctx, s, waveform)
		if ctx.Err() != nil {
			err = nil
		}
		return playDoneMsg{title: s.Title, err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StatePieces:
		s.WriteString(m.viewPieces())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StatePlaying:
		s.WriteString(m.viewPlaying())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • w: waveform • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" WAVEFORM: %s ", strings.ToUpper(m.waveform.String()))))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(amber).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewPieces() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT PIECE "))
	s.WriteString("\n\n")
	for i, name := range m.pieceNames {
		if i == m.pieceIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", name)))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", name)))
		}
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT SCORE OR MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewPlaying() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" PLAYING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.playing))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s wave • esc: stop", m.waveform)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Playback failed: %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" DONE "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render(fmt.Sprintf("✓ Played %s", m.playing)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
 __      __ _ __   __ ___  _____  ___   _  _  ___
 \ \    / //_\\ \ / /| __||_   _|/ _ \ | \| || __|
  \ \/\/ // _ \\ V / | _|   | | | (_) || .' || _|
   \_/\_//_/ \_\\_/  |___|  |_|  \___/ |_|\_||___|
`
	return lipgloss.NewStyle().Foreground(phosphorGreen).Render(logo)
}

// Run starts the TUI application
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
