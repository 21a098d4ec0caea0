// Package tui is the terminal front end. It renders game snapshots and feeds
// keystrokes back into the game.
package tui

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/tatianab/phantom-pursuit/internal/challenge"
	"github.com/tatianab/phantom-pursuit/internal/game"
	"github.com/tatianab/phantom-pursuit/internal/models"
	"go.uber.org/zap"
)

var bootMessages = []string{
	"Initializing K.A.I. drone...",
	"Establishing neural link...",
	"Loading exploit packages...",
	"Compiling trace-route daemon...",
	"Bypassing primary firewalls...",
	"Decrypting PhantomByte comms...",
	"Secure connection established.",
}

const (
	bootStepEvery = 450 * time.Millisecond
	loadTickEvery = 35 * time.Millisecond
)

// changedMsg carries a game snapshot into the program.
type changedMsg struct {
	snap game.Snapshot
}

// loadTickMsg drives the boot animation. It is ignored once the loading
// phase it was started for has ended.
type loadTickMsg struct {
	token int
}

type redrawMsg struct{}

// Notifier forwards game changes to a running program. Pass its Notify
// method to game.WithOnChange.
type Notifier struct {
	mu sync.Mutex
	p  *tea.Program
}

func (n *Notifier) Notify(s game.Snapshot) {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p != nil {
		go p.Send(changedMsg{snap: s})
	}
}

func (n *Notifier) attach(p *tea.Program) {
	n.mu.Lock()
	n.p = p
	n.mu.Unlock()
}

type model struct {
	game *game.Game
	log  *zap.Logger
	now  func() time.Time

	snap game.Snapshot

	textInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	progress  progress.Model
	renderer  *glamour.TermRenderer

	loadToken int
	loadStart time.Time
	bootStep  int
	loadPct   float64

	showCodex      bool
	confirmRestart bool
	notice         string

	width  int
	height int
}

func newModel(g *game.Game, logger *zap.Logger) model {
	ti := textinput.New()
	ti.Placeholder = "Type the command..."
	ti.CharLimit = 256
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		logger.Warn("codex renderer unavailable", zap.Error(err))
	}

	return model{
		game:      g,
		log:       logger,
		now:       time.Now,
		snap:      g.Snapshot(),
		textInput: ti,
		viewport:  viewport.New(80, 16),
		spinner:   sp,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		renderer:  renderer,
		width:     100,
		height:    30,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = logWidth(m.width)
		m.viewport.Height = max(msg.Height-14, 5)
		m.progress.Width = min(msg.Width-8, 60)
		m.refreshLog()
		return m, nil

	case changedMsg:
		return m.apply(msg.snap)

	case loadTickMsg:
		if msg.token != m.loadToken || m.snap.Phase != game.PhaseLoading {
			return m, nil
		}
		elapsed := m.now().Sub(m.loadStart)
		m.bootStep = min(int(elapsed/bootStepEvery), len(bootMessages))
		m.loadPct = min(float64(elapsed/loadTickEvery)/100, 1)
		return m, loadTick(m.loadToken)

	case redrawMsg:
		m.snap = m.game.Snapshot()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.confirmRestart {
		switch msg.String() {
		case "y", "Y", "enter":
			m.confirmRestart = false
			m.game.Restart()
			return m.apply(m.game.Snapshot())
		case "n", "N", "esc":
			m.confirmRestart = false
		}
		return m, nil
	}

	if m.showCodex {
		switch msg.String() {
		case "esc", "tab", "q":
			m.showCodex = false
		}
		return m, nil
	}

	switch m.snap.Phase {
	case game.PhaseStart:
		switch msg.String() {
		case "1", "2", "3":
			d := []models.Difficulty{models.Easy, models.Medium, models.Hard}[msg.String()[0]-'1']
			if err := m.game.SelectDifficulty(d); err != nil {
				m.notice = err.Error()
				return m, nil
			}
			return m.apply(m.game.Snapshot())
		case "esc", "q":
			return m, tea.Quit
		}
		return m, nil

	case game.PhaseError:
		switch msg.String() {
		case "r", "enter":
			m.game.Restart()
			return m.apply(m.game.Snapshot())
		case "esc", "q":
			return m, tea.Quit
		}
		return m, nil

	case game.PhasePlaying, game.PhaseMinigame:
		switch msg.Type {
		case tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.confirmRestart = true
			return m, nil
		case tea.KeyTab:
			m.showCodex = true
			return m, nil
		}
		return m.typeKey(msg)
	}

	if msg.Type == tea.KeyEsc {
		return m, tea.Quit
	}
	return m, nil
}

// typeKey lets the text input edit its value and feeds the result to the
// active challenge.
func (m model) typeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	before := m.textInput.Value()
	m.textInput, cmd = m.textInput.Update(msg)
	value := m.textInput.Value()
	if value == before {
		return m, cmd
	}

	p, err := m.game.Input(value, m.now())
	if err != nil {
		if errors.Is(err, game.ErrWrongPhase) {
			return m, cmd
		}
		m.notice = err.Error()
	}
	if p.Advanced || p.Completed {
		m.textInput.Reset()
	}

	cmds := []tea.Cmd{cmd}
	if p.Mismatch {
		cmds = append(cmds, tea.Tick(challenge.MismatchHold, func(time.Time) tea.Msg { return redrawMsg{} }))
	}
	next, more := m.apply(m.game.Snapshot())
	return next, tea.Batch(append(cmds, more)...)
}

// apply adopts snap unless a newer one has already been shown.
func (m model) apply(snap game.Snapshot) (model, tea.Cmd) {
	if snap.Version < m.snap.Version {
		return m, nil
	}
	prev := m.snap.Phase
	m.snap = snap
	m.refreshLog()
	if snap.Phase == prev {
		return m, nil
	}

	m.notice = ""
	m.textInput.Reset()
	if snap.Phase == game.PhaseLoading {
		m.loadToken++
		m.loadStart = m.now()
		m.bootStep = 0
		m.loadPct = 0
		return m, loadTick(m.loadToken)
	}
	if snap.Phase == game.PhaseStart {
		m.showCodex = false
	}
	return m, nil
}

func (m *model) refreshLog() {
	m.viewport.SetContent(renderHistory(m.snap.History, logWidth(m.width)))
	m.viewport.GotoBottom()
}

func loadTick(token int) tea.Cmd {
	return tea.Tick(loadTickEvery, func(time.Time) tea.Msg { return loadTickMsg{token: token} })
}

func logWidth(total int) int {
	return max(int(float64(total)*0.7), 20)
}

// Run starts the terminal program and blocks until the player quits.
func Run(g *game.Game, n *Notifier, logger *zap.Logger) error {
	p := tea.NewProgram(newModel(g, logger), tea.WithAltScreen())
	n.attach(p)
	defer n.attach(nil)
	_, err := p.Run()
	return err
}
