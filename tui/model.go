package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/energuide/agent"
)

// Chatter is the TUI-facing subset of the agent.
type Chatter interface {
	Handle(ctx context.Context, text string) agent.Reply
	ClearHistory()
	SystemInfo(ctx context.Context) agent.SystemInfo
}

var _ Chatter = (*agent.Agent)(nil)

// Slash commands understood by the input line.
const (
	CommandClear = "/clear"
	CommandInfo  = "/info"
	CommandQuit  = "/quit"
)

const (
	roleYou    = "나"
	roleBot    = "가이드"
	roleSystem = "시스템"
)

type entry struct {
	who  string
	text string
	ok   bool
}

type replyMsg struct {
	reply agent.Reply
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	ctx      context.Context
	chatter  Chatter
	input    textinput.Model
	viewport viewport.Model
	entries  []entry
	status   string
	busy     bool
	ready    bool
}

// New creates a chat model. Requests made by the model use ctx.
func New(ctx context.Context, chatter Chatter) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "재생에너지에 대해 물어보세요 (/info, /clear, /quit)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		chatter:  chatter,
		input:    ti,
		viewport: vp,
		status:   "준비되었습니다.",
	}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and reply events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input box, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil

	case replyMsg:
		m.busy = false
		m.entries = append(m.entries, entry{who: roleBot, text: msg.reply.Text, ok: msg.reply.OK})
		m.status = fmt.Sprintf("의도: %s (신뢰도 %.2f)", msg.reply.Intent.Description(), msg.reply.Confidence)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.busy {
		m.status = "이전 메시지를 처리하는 중입니다..."
		return m, nil
	}
	m.input.Reset()

	switch strings.ToLower(text) {
	case CommandQuit:
		return m, tea.Quit
	case CommandClear:
		m.chatter.ClearHistory()
		m.entries = nil
		m.status = "대화 기록을 지웠습니다."
		m.refresh()
		return m, nil
	case CommandInfo:
		m.entries = append(m.entries, entry{who: roleSystem, text: formatInfo(m.chatter.SystemInfo(m.ctx)), ok: true})
		m.refresh()
		return m, nil
	}

	m.entries = append(m.entries, entry{who: roleYou, text: text, ok: true})
	m.busy = true
	m.status = "답변을 생성하는 중..."
	m.refresh()
	return m, m.ask(text)
}

func (m Model) ask(text string) tea.Cmd {
	ctx, chatter := m.ctx, m.chatter
	return func() tea.Msg {
		return replyMsg{reply: chatter.Handle(ctx, text)}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the header, transcript, input line and status.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("재생에너지 AI 가이드")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.entries) == 0 {
		return hintStyle.Render("질문을 입력하고 Enter를 누르세요.")
	}
	width := max(10, m.viewport.Width-2)
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := userStyle
		switch {
		case e.who == roleBot && !e.ok:
			label = errorStyle
		case e.who == roleBot:
			label = botStyle
		case e.who == roleSystem:
			label = hintStyle
		}
		b.WriteString(label.Render(e.who + ":"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(e.text))
	}
	return b.String()
}

func formatInfo(info agent.SystemInfo) string {
	count := "알 수 없음"
	if info.DocumentCount >= 0 {
		count = fmt.Sprintf("%d", info.DocumentCount)
	}
	model := info.EmbeddingModel
	if model == "" {
		model = "알 수 없음"
	}
	return fmt.Sprintf("검색 백엔드: %s\n임베딩 모델: %s\n문서 수: %s\n대화 기록: %d/%d",
		info.RetrievalBackend, model, count, info.HistoryCount, info.HistoryCapacity)
}

var (
	headerStyle        = lipgloss.NewStyle().Bold(true)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Run starts the chat client on the terminal and blocks until it exits.
func Run(ctx context.Context, chatter Chatter) error {
	_, err := tea.NewProgram(New(ctx, chatter), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
