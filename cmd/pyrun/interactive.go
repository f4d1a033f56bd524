package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/python-runtime/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const historyLimit = 50

type replModel struct {
	input   textinput.Model
	history []replEntry
}

type replEntry struct {
	source string
	output string
	isErr  bool
}

type evalResultMsg struct {
	source string
	output string
	isErr  bool
}

func newReplModel() *replModel {
	ti := textinput.New()
	ti.Prompt = ">>> "
	ti.PromptStyle = promptStyle
	ti.Width = 80
	ti.Focus()
	return &replModel{input: ti}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit

		case "enter":
			src := strings.TrimSpace(m.input.Value())
			if src == "" {
				return m, nil
			}
			if src == "exit" || src == "quit" {
				return m, tea.Quit
			}
			m.input.SetValue("")
			return m, evalLine(src)
		}

	case evalResultMsg:
		m.history = append(m.history, replEntry{
			source: msg.source,
			output: msg.output,
			isErr:  msg.isErr,
		})
		if len(m.history) > historyLimit {
			m.history = m.history[len(m.history)-historyLimit:]
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// evalLine runs one REPL line: expression evaluation with a value echo when
// the source parses as an expression, statement execution otherwise.
func evalLine(src string) tea.Cmd {
	return func() tea.Msg {
		r, err := runtime.Eval(src)
		if err == nil {
			defer r.Close()
			out := ""
			if !r.IsNone() {
				out = r.String()
			}
			return evalResultMsg{source: src, output: out}
		}

		if execErr := runtime.Exec(src); execErr != nil {
			return evalResultMsg{source: src, output: execErr.Error(), isErr: true}
		}
		return evalResultMsg{source: src}
	}
}

func (m *replModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pyrun"))
	b.WriteString(" ")
	b.WriteString(strings.SplitN(runtime.VersionString(), " ", 2)[0])
	b.WriteString("\n\n")

	for _, e := range m.history {
		b.WriteString(promptStyle.Render(">>> "))
		b.WriteString(e.source)
		b.WriteString("\n")
		if e.output != "" {
			if e.isErr {
				b.WriteString(errorStyle.Render(e.output))
			} else {
				b.WriteString(resultStyle.Render(e.output))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • ctrl+d quit"))

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newReplModel())
	_, err := p.Run()
	return err
}
