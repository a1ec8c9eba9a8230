package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

var ErrUnexpectedPromptModel = errors.New("unexpected final bubbletea model type")

const (
	fieldUsername = iota
	fieldPassword
	fieldConfirm
	fieldAccount
	fieldCount
)

var errPasswordMismatch = errors.New("passwords do not match")

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type formModel struct {
	inputs    []textinput.Model
	focus     int
	err       error
	submitted bool
	cancelled bool
}

func newFormModel(defaults domain.Credentials) formModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 128
		in.Width = 32
		inputs[i] = in
	}

	inputs[fieldUsername].Prompt = "Username:         "
	inputs[fieldUsername].SetValue(defaults.Username)
	inputs[fieldPassword].Prompt = "Password:         "
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'
	inputs[fieldConfirm].Prompt = "Confirm password: "
	inputs[fieldConfirm].EchoMode = textinput.EchoPassword
	inputs[fieldConfirm].EchoCharacter = '•'
	inputs[fieldAccount].Prompt = "Account number:   "
	inputs[fieldAccount].SetValue(defaults.Account)

	m := formModel{inputs: inputs}
	m.inputs[m.focus].Focus()
	return m
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return m.moveFocus(m.focus + 1), nil
		case tea.KeyShiftTab, tea.KeyUp:
			return m.moveFocus(m.focus - 1), nil
		case tea.KeyEnter:
			if m.focus < fieldAccount {
				return m.moveFocus(m.focus + 1), nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m formModel) moveFocus(target int) formModel {
	target = (target + fieldCount) % fieldCount
	m.inputs[m.focus].Blur()
	m.focus = target
	m.inputs[m.focus].Focus()
	return m
}

// submit validates the form. A password mismatch clears both password
// fields and asks again.
func (m formModel) submit() (tea.Model, tea.Cmd) {
	creds := m.credentials()
	switch {
	case creds.Password != m.inputs[fieldConfirm].Value():
		m.inputs[fieldPassword].Reset()
		m.inputs[fieldConfirm].Reset()
		m.err = errPasswordMismatch
		return m.moveFocus(fieldPassword), nil
	case !creds.Complete():
		m.err = errors.New("username, password and account are required")
		for i, in := range m.inputs {
			if strings.TrimSpace(in.Value()) == "" {
				return m.moveFocus(i), nil
			}
		}
		return m, nil
	}

	m.err = nil
	m.submitted = true
	return m, tea.Quit
}

func (m formModel) credentials() domain.Credentials {
	return domain.Credentials{
		Username: strings.TrimSpace(m.inputs[fieldUsername].Value()),
		Password: m.inputs[fieldPassword].Value(),
		Account:  strings.TrimSpace(m.inputs[fieldAccount].Value()),
	}
}

func (m formModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Apex Clearing login"))
	b.WriteString("\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter next/submit • tab move • esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// Prompter reads credentials from an interactive terminal form.
type Prompter struct {
	input    io.Reader
	output   io.Writer
	defaults domain.Credentials
}

var _ ports.CredentialPrompter = (*Prompter)(nil)

func NewPrompter(input io.Reader, output io.Writer) *Prompter {
	return &Prompter{input: input, output: output}
}

// WithDefaults pre-fills username and account. The password is never
// pre-filled.
func (p *Prompter) WithDefaults(creds domain.Credentials) *Prompter {
	clone := *p
	clone.defaults = domain.Credentials{Username: creds.Username, Account: creds.Account}
	return &clone
}

func (p *Prompter) Prompt(ctx context.Context) (domain.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credentials{}, err
	}

	program := tea.NewProgram(
		newFormModel(p.defaults),
		tea.WithInput(p.input),
		tea.WithOutput(p.output),
		tea.WithContext(ctx),
	)

	finalModel, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return domain.Credentials{}, ctx.Err()
		}
		return domain.Credentials{}, fmt.Errorf("run credentials prompt: %w", err)
	}

	form, ok := finalModel.(formModel)
	if !ok {
		return domain.Credentials{}, ErrUnexpectedPromptModel
	}
	if !form.submitted {
		return domain.Credentials{}, domain.ErrCredentialsMissing
	}

	return form.credentials(), nil
}
