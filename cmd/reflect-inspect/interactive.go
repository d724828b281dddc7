package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"
	"golang.org/x/term"

	"github.com/wippyai/reflect-runtime/errors"
	"github.com/wippyai/reflect-runtime/meta"
	"github.com/wippyai/reflect-runtime/scope"
	"github.com/wippyai/reflect-runtime/script"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// entry is one invocable listed in the browser: a member function called on
// the type's live instance, or a static function.
type entry struct {
	owner  *meta.Type
	member *meta.MemberFunction
	static *meta.StaticFunction
}

func (e entry) name() string {
	if e.member != nil {
		return e.owner.Name() + "." + e.member.Name()
	}
	return e.owner.Name() + "::" + e.static.Name()
}

func (e entry) params() []*meta.Type {
	if e.member != nil {
		return e.member.Params()
	}
	return e.static.Params()
}

func (e entry) result() *meta.Type {
	if e.member != nil {
		return e.member.Result()
	}
	return e.static.Result()
}

type interactiveModel struct {
	err       error
	registry  *meta.Registry
	scope     *scope.Scope
	instances map[*meta.Type]scope.Handle
	result    string
	entries   []entry
	inputs    []textinput.Model
	selected  int
	focusIdx  int
	state     modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(r *meta.Registry) *interactiveModel {
	m := &interactiveModel{
		registry:  r,
		scope:     scope.New(),
		instances: make(map[*meta.Type]scope.Handle),
		state:     stateSelectFunc,
	}
	for _, t := range r.Types() {
		if t.Kind() != meta.TypeValue {
			continue
		}
		if t.DefaultConstructor() != nil {
			for _, f := range t.Functions() {
				m.entries = append(m.entries, entry{owner: t, member: f})
			}
		}
		for _, f := range t.StaticFunctions() {
			m.entries = append(m.entries, entry{owner: t, static: f})
		}
	}
	return m
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputArgs || msg.String() == "ctrl+c" {
				m.err = m.scope.Close()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.entries)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.entries) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	params := m.entries[m.selected].params()
	m.inputs = make([]textinput.Model, len(params))
	for i, p := range params {
		ti := textinput.New()
		ti.Placeholder = p.Name()
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	e := m.entries[m.selected]
	params := e.params()

	args := make([]*meta.Value, 0, len(params))
	defer func() {
		for _, a := range args {
			a.Close()
		}
	}()
	for i, p := range params {
		v, err := script.ParseLiteral(p, m.inputs[i].Value())
		if err != nil {
			return callResultMsg{err: err}
		}
		args = append(args, v)
	}

	var (
		out *meta.Value
		err error
	)
	if e.member != nil {
		var inst *meta.Value
		if inst, err = m.instance(e.owner); err != nil {
			return callResultMsg{err: err}
		}
		out, err = e.member.Invoke(inst, args...)
	} else {
		out, err = e.static.Invoke(args...)
	}
	if err != nil {
		return callResultMsg{err: err}
	}
	if out == nil {
		return callResultMsg{result: "(no result)"}
	}
	defer out.Close()
	return callResultMsg{result: out.String()}
}

// instance returns the live instance of t, default-constructing it into the
// session scope on first use.
func (m *interactiveModel) instance(t *meta.Type) (*meta.Value, error) {
	if h, ok := m.instances[t]; ok {
		if v, ok := m.scope.GetTyped(h, t); ok {
			return v, nil
		}
	}
	ctor := t.DefaultConstructor()
	if ctor == nil {
		return nil, errors.CapabilityMissing(errors.PhaseConstruct, t.Name(), "default constructor")
	}
	v, err := ctor.Construct()
	if err != nil {
		return nil, err
	}
	h, err := m.scope.Adopt(v)
	if err != nil {
		v.Close()
		return nil, err
	}
	m.instances[t] = h
	return v, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Reflect Inspector"))
	b.WriteString(fmt.Sprintf(" %d types\n\n", m.registry.Len()))

	if len(m.entries) == 0 {
		b.WriteString("No invocable functions registered.\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, e := range m.entries {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatEntry(e)))
			} else {
				b.WriteString("  " + formatEntry(e))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		e := m.entries[m.selected]
		params := e.params()
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(e.name())))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(params[i].Name()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		e := m.entries[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(e.name())))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatEntry(e entry) string {
	var params []string
	for _, p := range e.params() {
		params = append(params, typeStyle.Render(p.Name()))
	}
	result := ""
	if r := e.result(); r != nil {
		result = " -> " + typeStyle.Render(r.Name())
	}
	return funcStyle.Render(e.name()) + "(" + strings.Join(params, ", ") + ")" + result
}

func runInteractive(r *meta.Registry) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	m := newInteractiveModel(r)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return multierr.Combine(err, m.scope.Close())
	}
	return m.err
}
