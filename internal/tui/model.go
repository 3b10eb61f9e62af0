package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"devopsrag/internal/apiclient"
	"devopsrag/internal/domain"
)

// Backend is the TUI-facing subset of the service client.
type Backend interface {
	Query(ctx context.Context, query string) (domain.Answer, error)
	Health(ctx context.Context) (apiclient.Health, error)
}

// Model is the Bubble Tea model for the assistant front end.
type Model struct {
	backend  Backend
	input    textinput.Model
	viewport viewport.Model
	answer   string
	sources  []domain.RetrievedDoc
	cursor   int
	status   string
	busy     bool
	ready    bool
}

type answerMsg domain.Answer

type healthMsg apiclient.Health

type errMsg struct{ err error }

// New creates a new TUI model talking to the given backend.
func New(backend Backend) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about deployments, CI/CD, or Azure operations"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{backend: backend, input: ti, viewport: vp, status: "Connecting to backend..."}
}

// Init starts the cursor blink and probes the backend.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkHealth)
}

func (m Model) checkHealth() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h, err := m.backend.Health(ctx)
	if err != nil {
		return errMsg{err}
	}
	return healthMsg(h)
}

func (m Model) ask(query string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.backend.Query(context.Background(), query)
		if err != nil {
			return errMsg{err}
		}
		return answerMsg(answer)
	}
}

// Update handles key, window, and backend events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case healthMsg:
		m.status = fmt.Sprintf("Connected. %d documents indexed. Type a question and press Enter.", msg.Documents)
		return m, nil
	case answerMsg:
		m.busy = false
		m.answer = msg.Answer
		m.sources = msg.Retrieved
		m.cursor = 0
		m.status = fmt.Sprintf("%d source(s) retrieved. Up/down to browse sources.", len(msg.Retrieved))
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case errMsg:
		m.busy = false
		m.status = "Error: " + msg.err.Error()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "Searching knowledge base..."
				return m, m.ask(q)
			}
		case "down":
			if len(m.sources) > 0 {
				m.cursor = (m.cursor + 1) % len(m.sources)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "up":
			if len(m.sources) > 0 {
				m.cursor = (m.cursor - 1 + len(m.sources)) % len(m.sources)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout: header, answer and sources, input, status.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("DevOps Knowledge Assistant")
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderContent() string {
	if m.answer == "" {
		return "No answer yet. Ask about the release process, incident handling, or Azure deployments."
	}
	var b strings.Builder
	b.WriteString(answerHeadStyle.Render("Answer"))
	b.WriteString("\n\n")
	b.WriteString(m.answer)
	b.WriteString("\n\n")
	b.WriteString(answerHeadStyle.Render("Sources"))
	b.WriteString("\n\n")
	if len(m.sources) == 0 {
		b.WriteString("No relevant documents found.")
		return b.String()
	}
	for i, src := range m.sources {
		line := fmt.Sprintf("%d. %s (relevance %.1f%%)", i+1, sourceTitle(src), src.Score*100)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.sources[m.cursor].Text)
	return b.String()
}

func sourceTitle(d domain.RetrievedDoc) string {
	if t, ok := d.Metadata["title"].(string); ok && t != "" {
		return t
	}
	return d.ID
}

var (
	resultBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	answerHeadStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
