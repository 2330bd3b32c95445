package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
)

// QAPort is the TUI-facing subset of the question answering service.
type QAPort interface {
	Ask(ctx context.Context, question string) domain.AnswerResult
}

type exchange struct {
	question string
	result   domain.AnswerResult
}

type answerMsg exchange

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  QAPort
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	summary  string
	status   string
	cursor   int
	ready    bool
	pending  bool
}

// New creates a new TUI model instance.
func New(service QAPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, summary: summary, status: "Loaded. Ask about your documents."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{question: question, result: m.service.Ask(context.Background(), question)}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around answer and question boxes
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case answerMsg:
		m.pending = false
		m.history = append(m.history, exchange(msg))
		m.cursor = len(m.history) - 1
		if msg.result.Generated {
			m.status = fmt.Sprintf("Answered %q (generated)", msg.question)
		} else {
			m.status = fmt.Sprintf("Answered %q (from documents)", msg.question)
		}
		m.viewport.SetContent(m.renderCurrent())
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.pending {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			m.pending = true
			m.status = "Thinking..."
			return m, m.ask(q)
		case "ctrl+p":
			if len(m.history) > 0 {
				m.cursor = (m.cursor - 1 + len(m.history)) % len(m.history)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "ctrl+n":
			if len(m.history) > 0 {
				m.cursor = (m.cursor + 1) % len(m.history)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Document Q&A")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderCurrent() string {
	if len(m.history) == 0 {
		return "No answers yet. Ctrl+P/Ctrl+N browse earlier answers."
	}
	ex := m.history[m.cursor]
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Q%d/%d  %s", m.cursor+1, len(m.history), ex.question)))
	b.WriteString("\n\n")
	b.WriteString(ex.result.Answer)
	if len(ex.result.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render("Sources"))
		for i, s := range ex.result.Sources {
			fmt.Fprintf(&b, "\n%d. %s  score=%.1f\n   %s", i+1, s.Source, s.Score, highlightTerms(s.Preview, ex.question))
		}
	}
	return b.String()
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\d+(?:\.\d+)?`)
)

// highlightTerms marks the words of text that also occur in the question.
func highlightTerms(text, question string) string {
	qTokens := toTokenSet(question)
	if len(qTokens) == 0 {
		return text
	}
	return unicodeWordRe.ReplaceAllStringFunc(text, func(w string) string {
		if _, ok := qTokens[strings.ToLower(w)]; ok {
			return highlightStyle.Render(w)
		}
		return w
	})
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if len([]rune(t)) > 2 {
			m[t] = struct{}{}
		}
	}
	return m
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
