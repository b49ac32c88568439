package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"squire/internal/agent"
	"squire/internal/approval"
)

// Model renders the interactive chat using Bubble Tea.
type Model struct {
	session   *session
	viewport  viewport.Model
	input     textinput.Model
	spin      spinner.Model
	approvals <-chan approvalEvent

	lines   []string
	waiting bool
	ready   bool
	width   int
	height  int
}

// approvalEvent carries a proposed change into the UI loop.
type approvalEvent struct {
	changeID string
	change   approval.Change
}

// responseMsg delivers a finished agent run.
type responseMsg struct {
	response string
	info     agent.RunInfo
	err      error
}

// approvalMsg wraps an approval event for Bubble Tea.
type approvalMsg approvalEvent

// NewModel constructs the chat model and wires the approval notifier.
func NewModel(opts Options) Model {
	s := newSession(opts)

	input := textinput.New()
	input.Placeholder = "Type a message, /help for commands"
	input.Prompt = stylize("You: ", opts.NoColor, colorYou)
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	events := make(chan approvalEvent, 16)
	if opts.Approvals != nil {
		opts.Approvals.SetNotifier(approval.NotifierFunc(func(changeID string, change approval.Change) {
			select {
			case events <- approvalEvent{changeID: changeID, change: change}:
			default:
			}
		}))
	}

	return Model{
		session:   s,
		input:     input,
		spin:      spin,
		approvals: events,
		lines:     []string{s.welcome()},
	}
}

// Init starts listening for approval events.
func (m Model) Init() tea.Cmd {
	return waitForApproval(m.approvals)
}

// Update consumes key presses, agent results, and approval events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		contentHeight := max(typed.Height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(typed.Width, contentHeight)
			m.ready = true
		} else {
			m.viewport.Width = typed.Width
			m.viewport.Height = contentHeight
		}
		m.input.Width = max(typed.Width-8, 20)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			return m.submit()
		}

	case responseMsg:
		m.waiting = false
		if typed.err != nil {
			m.append(stylize("Error: "+typed.err.Error(), m.session.noColor, colorErr))
		} else {
			m.append(stylize("Agent: ", m.session.noColor, colorAgent) + typed.response)
			if typed.info.Exhausted {
				m.append(stylize("(iteration limit reached)", m.session.noColor, colorFaint))
			}
		}
		return m, nil

	case approvalMsg:
		m.append(FormatApprovalRequest(typed.changeID, typed.change, m.session.noColor))
		return m, waitForApproval(m.approvals)

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(typed)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the transcript above the input line.
func (m Model) View() string {
	if !m.ready {
		return "Starting chat..."
	}
	status := m.input.View()
	if m.waiting {
		status = m.spin.View() + " " + stylize("thinking...", m.session.noColor, colorFaint)
	}
	return m.viewport.View() + "\n" + status
}

// submit handles the Enter key.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}
	m.input.SetValue("")

	if isCommand(line) {
		if line == "/clear" {
			m.lines = []string{m.session.welcome()}
			output, _ := m.session.handleCommand(context.Background(), line)
			m.append(output)
			return m, nil
		}
		output, quit := m.session.handleCommand(context.Background(), line)
		m.append(output)
		if quit {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.waiting {
		m.append(stylize("(the agent is still working, hold on)", m.session.noColor, colorFaint))
		return m, nil
	}

	m.append(stylize("You: ", m.session.noColor, colorYou) + line)
	m.waiting = true
	return m, tea.Batch(m.spin.Tick, m.runAgent(line))
}

// runAgent executes one agent run off the UI goroutine.
func (m Model) runAgent(input string) tea.Cmd {
	runner := m.session.runner
	return func() tea.Msg {
		response, info, err := runner.Run(context.Background(), input)
		return responseMsg{response: response, info: info, err: err}
	}
}

// append adds a transcript block and scrolls to the bottom.
func (m *Model) append(block string) {
	m.lines = append(m.lines, block)
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// waitForApproval blocks until the handler proposes a change.
func waitForApproval(events <-chan approvalEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return approvalMsg(event)
	}
}

// Run starts the chat TUI and blocks until it exits.
func Run(opts Options) error {
	program := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
