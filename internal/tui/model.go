// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is an interactive terminal chat over the indexed reports.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/report-qa/internal/qa"
	"github.com/pdiddy/report-qa/pkg/types"
)

// Answerer is the TUI-facing subset of the QA service.
type Answerer interface {
	Answer(ctx context.Context, q qa.Question) (qa.Answer, error)
}

// answerMsg carries the result of an asynchronous question.
type answerMsg struct {
	question string
	answer   qa.Answer
	err      error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx        context.Context
	svc        Answerer
	docIDs     []string
	maxHistory int

	input    textinput.Model
	viewport viewport.Model

	history    []types.Turn
	transcript []string
	status     string
	busy       bool
	ready      bool
}

// New creates a chat model. maxHistory bounds the turns replayed with
// each question; docIDs optionally scopes retrieval.
func New(ctx context.Context, svc Answerer, docIDs []string, maxHistory int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the reports and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		ctx:        ctx,
		svc:        svc,
		docIDs:     docIDs,
		maxHistory: maxHistory,
		input:      ti,
		viewport:   viewport.New(0, 0),
		status:     "Ready. Esc or Ctrl+C quits.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles window, key and answer messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-bh-ih-3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.input.Reset()
			m.status = "Thinking…"
			m.transcript = append(m.transcript, userStyle.Render("You: ")+q)
			m.refresh()
			return m, m.ask(q)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.transcript = append(m.transcript, errorStyle.Render("Error: ")+msg.err.Error())
			m.refresh()
			return m, nil
		}
		m.history = append(m.history,
			types.Turn{Role: types.RoleUser, Content: msg.question},
			types.Turn{Role: types.RoleAssistant, Content: msg.answer.Answer},
		)
		if len(m.history) > m.maxHistory {
			m.history = m.history[len(m.history)-m.maxHistory:]
		}
		m.status = fmt.Sprintf("%d sources", len(msg.answer.Sources))
		m.transcript = append(m.transcript, msg.answer.Answer+"\n"+renderSources(msg.answer.Sources))
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask snapshots the history so the command does not race later updates.
func (m Model) ask(question string) tea.Cmd {
	history := append([]types.Turn(nil), m.history...)
	q := qa.Question{Text: question, DocIDs: m.docIDs, History: history}
	return func() tea.Msg {
		ans, err := m.svc.Answer(m.ctx, q)
		return answerMsg{question: question, answer: ans, err: err}
	}
}

func (m *Model) refresh() {
	if len(m.transcript) == 0 {
		m.viewport.SetContent(hintStyle.Render("No questions yet."))
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

// View renders the transcript, input box and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Report Q&A")
	return header + "\n" +
		transcriptStyle.Render(m.viewport.View()) + "\n" +
		inputStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(m.status)
}

func renderSources(sources []types.Source) string {
	if len(sources) == 0 {
		return hintStyle.Render("(no sources)")
	}
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, fmt.Sprintf("  [%s p.%d]", s.Metadata.DocName, s.Metadata.Page))
	}
	return hintStyle.Render(strings.Join(lines, "\n"))
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, svc Answerer, docIDs []string, maxHistory int) error {
	p := tea.NewProgram(New(ctx, svc, docIDs, maxHistory), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}
