// Package render formats the merged session list for the terminal. It is a
// pure function of the record list and the frame counter; the loop decides
// when to repaint.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reycn/agent-box/internal/model"
)

var (
	claudeTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("208"))

	codexTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("255"))

	geminiTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("33"))

	unknownTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("245"))

	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	waitingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("40"))
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	stoppedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))

	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tailStyle    = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("245"))
	pendingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
)

var spinnerFrames = []string{"◴", "◷", "◶", "◵"}

const emptyMessage = "No active Claude/Codex/Gemini local sessions detected."

type Renderer struct{}

func NewRenderer() Renderer {
	return Renderer{}
}

// Render formats every session as a card. The frame counter drives the
// running-status spinner.
func (r Renderer) Render(records []model.SessionRecord, frame uint64) string {
	if len(records) == 0 {
		return emptyMessage
	}
	cards := make([]string, len(records))
	for i, rec := range records {
		cards[i] = r.renderSession(rec, frame)
	}
	return strings.Join(cards, "\n\n")
}

func (r Renderer) renderSession(rec model.SessionRecord, frame uint64) string {
	var b strings.Builder

	title := "[" + agentIcon(rec.Agent) + " " + truncate(rec.Title, 32) + "]"
	b.WriteString(titleStyle(rec.Agent).Render(title))
	b.WriteString("\n")

	b.WriteString(metaStyle.Render("  dir " + truncate(rec.User, 20) + " @ " + truncate(rec.WorkingDir, 40)))
	b.WriteString("\n")

	b.WriteString("  " + statusStyle(rec.Status).Render(statusIcon(rec.Status, frame)+"  "+statusLabel(rec.Status)))
	b.WriteString("\n")

	if rec.PendingAction != "" {
		b.WriteString("  " + pendingStyle.Render("⏳ "+truncate(rec.PendingAction, 48)))
		b.WriteString("\n")
	}

	for i, line := range rec.LastLines {
		if i >= 2 {
			break
		}
		b.WriteString(tailStyle.Render("  > " + truncate(line, 56)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func titleStyle(agent model.AgentKind) lipgloss.Style {
	switch agent {
	case model.AgentClaude:
		return claudeTitleStyle
	case model.AgentCodex:
		return codexTitleStyle
	case model.AgentGemini:
		return geminiTitleStyle
	default:
		return unknownTitleStyle
	}
}

func agentIcon(agent model.AgentKind) string {
	switch agent {
	case model.AgentClaude:
		return "◆"
	case model.AgentCodex:
		return "◎"
	case model.AgentGemini:
		return "✦"
	default:
		return "?"
	}
}

func statusLabel(status model.SessionStatus) string {
	switch status {
	case model.StatusRunning:
		return "RUNNING"
	case model.StatusWaitingInput:
		return "WAITING_INPUT"
	case model.StatusSuccess:
		return "SUCCESS"
	case model.StatusFailed:
		return "FAILED"
	case model.StatusStopped:
		return "STOPPED"
	default:
		return string(status)
	}
}

func statusIcon(status model.SessionStatus, frame uint64) string {
	switch status {
	case model.StatusRunning:
		return spinnerFrames[frame%uint64(len(spinnerFrames))]
	case model.StatusWaitingInput:
		return "?"
	case model.StatusSuccess:
		return "✓"
	case model.StatusFailed:
		return "✗"
	case model.StatusStopped:
		return "■"
	default:
		return " "
	}
}

func statusStyle(status model.SessionStatus) lipgloss.Style {
	switch status {
	case model.StatusRunning:
		return runningStyle
	case model.StatusWaitingInput:
		return waitingStyle
	case model.StatusSuccess:
		return successStyle
	case model.StatusFailed:
		return failedStyle
	default:
		return stoppedStyle
	}
}

func truncate(input string, limit int) string {
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	take := limit - 3
	if take < 0 {
		take = 0
	}
	return string(runes[:take]) + "..."
}
