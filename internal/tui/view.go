package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/phantom-pursuit/internal/challenge"
	"github.com/tatianab/phantom-pursuit/internal/game"
	"github.com/tatianab/phantom-pursuit/internal/models"
)

var (
	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	hudStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00D7D7")).
			Bold(true).
			Underline(true)

	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7D7"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00D7D7")).
			Padding(1, 2)

	alertStyle = panelStyle.BorderForeground(lipgloss.Color("#FF5F5F"))
)

func (m model) View() string {
	var s string

	switch {
	case m.confirmRestart:
		s = alertStyle.Render("Abort the mission and return to base?\n\n" +
			helpStyle.Render("y to abort, n to continue"))
	case m.showCodex:
		s = m.viewCodex()
	default:
		switch m.snap.Phase {
		case game.PhaseStart:
			s = m.viewStart()
		case game.PhaseLoading:
			s = m.viewLoading()
		case game.PhasePlaying, game.PhaseMinigame:
			s = m.viewMission()
		case game.PhaseError:
			s = alertStyle.Render(wrongStyle.Render("CONNECTION FAILURE") + "\n\n" +
				m.snap.Error + "\n\n" +
				helpStyle.Render("Press r to reboot, q to quit."))
		}
	}

	if m.notice != "" {
		s += "\n" + wrongStyle.Render(m.notice)
	}
	return "\n" + s + "\n"
}

func (m model) viewStart() string {
	briefing := "Agent, PhantomByte has stolen Chirp, the AI core of the K.A.I. drone program.\n" +
		"Follow the trace. Type fast. Type true."
	options := fmt.Sprintf("%s  %s  %s",
		accentStyle.Render("[1] Easy"),
		accentStyle.Render("[2] Medium"),
		accentStyle.Render("[3] Hard"))
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("PHANTOMBYTE PURSUIT"),
		"",
		briefing,
		"",
		"Select mission difficulty:",
		options,
		"",
		helpStyle.Render("q to quit"),
	))
}

func (m model) viewLoading() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SYSTEM BOOT SEQUENCE"))
	b.WriteString("\n\n")
	for i, line := range bootMessages {
		switch {
		case i < m.bootStep:
			fmt.Fprintf(&b, "%s %s\n", okStyle.Render("[ OK ]"), line)
		case i == m.bootStep:
			fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), line)
		default:
			fmt.Fprintf(&b, "%s\n", pendingStyle.Render("       "+line))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(m.loadPct))
	return b.String()
}

func (m model) viewMission() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.viewHUD())

	help := helpStyle.Render("Type the command shown. tab: codex  ctrl+r: restart  esc: quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		"",
		m.viewChallenge(),
		m.textInput.View(),
		"",
		help,
	)
}

func (m model) viewHUD() string {
	s := m.snap
	var b strings.Builder

	b.WriteString(titleStyle.Render("AGENT"))
	b.WriteString("\n" + s.Player.Rank + "\n")
	if s.RankInfo.Terminal() {
		fmt.Fprintf(&b, "XP %d (max rank)\n\n", s.Player.XP)
	} else {
		fmt.Fprintf(&b, "XP %d / %d\n\n", s.Player.XP, s.RankInfo.XPToNext)
	}

	b.WriteString(titleStyle.Render("TYPING"))
	fmt.Fprintf(&b, "\nWPM %d  ACC %d%%\n", s.Typing.WPM, s.Typing.Accuracy)
	if s.LiveWPM > 0 {
		fmt.Fprintf(&b, "Live %d wpm\n", s.LiveWPM)
	}
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("TRACE"))
	b.WriteString("\n")
	if len(s.Trace) == 0 {
		b.WriteString("(no fix yet)\n")
	}
	for i, loc := range s.Trace {
		marker := "  "
		if i == len(s.Trace)-1 {
			marker = accentStyle.Render("> ")
		}
		b.WriteString(marker + loc.String() + "\n")
	}

	fmt.Fprintf(&b, "\n%s\n%d entries", titleStyle.Render("CODEX"), len(s.Codex))

	w := max(m.width-logWidth(m.width)-4, 16)
	return hudStyle.Width(w).Height(m.viewport.Height).Render(b.String())
}

func (m model) viewChallenge() string {
	v := m.snap.Challenge
	if v == nil {
		return ""
	}

	var b strings.Builder
	switch v.Kind {
	case models.ChallengeFirewall:
		b.WriteString(titleStyle.Render("FIREWALL"))
		b.WriteString("\n")
		lines := m.snap.Scene.FirewallChallenge
		for i, line := range lines {
			switch {
			case i < v.Line:
				b.WriteString(okStyle.Render("  [x] "+line) + "\n")
			case i == v.Line:
				b.WriteString("  [>] " + highlight(v) + "\n")
			default:
				b.WriteString(pendingStyle.Render("  [ ] "+line) + "\n")
			}
		}
	case models.ChallengeDebug:
		dbg := m.snap.Scene.DebugChallenge
		b.WriteString(titleStyle.Render("DEBUG"))
		b.WriteString("\n" + dbg.Description + "\n")
		b.WriteString(wrongStyle.Render("- "+dbg.BuggyCode) + "\n")
		b.WriteString("+ " + highlight(v) + "\n")
	default:
		b.WriteString(titleStyle.Render("COMMAND"))
		b.WriteString("\n" + highlight(v) + "\n")
	}

	if v.Mismatch {
		b.WriteString(wrongStyle.Render("!! SIGNAL MISMATCH") + "\n")
	}
	return b.String()
}

// highlight colors the target by how much of it has been typed correctly.
func highlight(v challenge.View) string {
	target := []rune(v.Target)
	typed := []rune(v.Typed)

	var b strings.Builder
	for i, r := range target {
		switch {
		case i >= len(typed):
			b.WriteString(pendingStyle.Render(string(r)))
		case typed[i] == r:
			b.WriteString(okStyle.Render(string(r)))
		default:
			b.WriteString(wrongStyle.Render(string(r)))
		}
	}
	return b.String()
}

func (m model) viewCodex() string {
	entries := models.Codex(m.snap.Codex).Newest()
	var md strings.Builder
	md.WriteString("# Codex\n\n")
	if len(entries) == 0 {
		md.WriteString("_No intel gathered yet._\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&md, "## %s\n\n%s\n\n", e.Title, e.Content)
	}

	out := md.String()
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(out); err == nil {
			out = rendered
		}
	}
	return out + "\n" + helpStyle.Render("tab or esc to close")
}

func renderHistory(items []models.StoryHistoryItem, width int) string {
	var b strings.Builder
	for _, item := range items {
		switch item.Source {
		case models.SourcePlayer:
			b.WriteString(playerStyle.Width(width).Render("> " + item.Text))
		default:
			b.WriteString(narratorStyle.Width(width).Render(item.Text))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}
