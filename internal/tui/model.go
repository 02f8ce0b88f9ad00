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

	"chatconnect/internal/domain"
)

// replyMsg carries the outcome of one Reply call back into Update.
type replyMsg struct {
	reply domain.Reply
	err   error
}

// Model is the Bubble Tea model for the chat console.
type Model struct {
	service  domain.ChatService
	timeout  time.Duration
	title    string
	input    textinput.Model
	viewport viewport.Model
	history  []domain.Message
	usage    domain.Usage
	status   string
	waiting  bool
	ready    bool
}

// New creates a chat console. A zero timeout means 60 seconds per reply.
func New(service domain.ChatService, title string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Digite sua pergunta e pressione Enter"
	ti.Focus()
	ti.CharLimit = 0
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return Model{
		service:  service,
		timeout:  timeout,
		title:    title,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Pronto. Ctrl+C para sair.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input, spacer
		vh := msg.Height - reserved - th
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh)
		m.refresh()
		return m, nil
	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Erro: " + msg.err.Error()
			m.history = m.history[:len(m.history)-1]
		} else {
			m.history = append(m.history, msg.reply.Assistant)
			m.usage.PromptTokens += msg.reply.Usage.PromptTokens
			m.usage.CompletionTokens += msg.reply.Usage.CompletionTokens
			m.usage.TotalTokens += msg.reply.Usage.TotalTokens
			m.status = fmt.Sprintf("tokens: %d nesta resposta, %d no total", msg.reply.Usage.TotalTokens, m.usage.TotalTokens)
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			m.history = append(m.history, domain.Message{Role: domain.RoleUser, Content: q})
			m.waiting = true
			m.status = "Aguardando resposta..."
			m.refresh()
			return m, m.ask(append([]domain.Message(nil), m.history...))
		case "pgup", "up":
			m.viewport.LineUp(1)
			return m, nil
		case "pgdown", "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(conversation []domain.Message) tea.Cmd {
	service, timeout := m.service, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reply, err := service.Reply(ctx, conversation)
		return replyMsg{reply: reply, err: err}
	}
}

// View renders the transcript, the input box and the status line.
func (m Model) View() string {
	if !m.ready {
		return "Carregando..."
	}
	header := lipgloss.NewStyle().Bold(true).Render(m.title)
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.history, m.viewport.Width))
	m.viewport.GotoBottom()
}

func renderTranscript(history []domain.Message, width int) string {
	if len(history) == 0 {
		return "Nenhuma mensagem ainda."
	}
	wrap := lipgloss.NewStyle().Width(max(10, width-4))
	var b strings.Builder
	for i, msg := range history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == domain.RoleUser {
			b.WriteString(userStyle.Render("Você: "))
		} else {
			b.WriteString(assistantStyle.Render("Assistente: "))
		}
		b.WriteString(wrap.Render(msg.Content))
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
