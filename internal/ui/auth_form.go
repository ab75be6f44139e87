package ui

import (
	"dineright/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// submitAuthMsg asks the root model to begin a login or signup.
type submitAuthMsg struct {
	signup bool
	creds  model.Credentials
	name   string
}

// switchAuthMsg flips between the login and signup screens.
type switchAuthMsg struct{}

const (
	authName = iota
	authEmail
	authPassword
)

// AuthFormModel is the login form, or the signup form when signup is set.
type AuthFormModel struct {
	signup       bool
	focusedField int
	inputs       []textinput.Model
	keys         FormKeyMap
}

// NewAuthFormModel creates a login (or signup) form with email prefilled.
func NewAuthFormModel(signup bool, email string) *AuthFormModel {
	inputs := make([]textinput.Model, 3)

	inputs[authName] = textinput.New()
	inputs[authName].Placeholder = "Your name"
	inputs[authName].CharLimit = 100

	inputs[authEmail] = textinput.New()
	inputs[authEmail].Placeholder = "you@example.com"
	inputs[authEmail].CharLimit = 254
	inputs[authEmail].SetValue(email)

	inputs[authPassword] = textinput.New()
	inputs[authPassword].Placeholder = "Password"
	inputs[authPassword].CharLimit = 128
	inputs[authPassword].EchoMode = textinput.EchoPassword
	inputs[authPassword].EchoCharacter = '•'

	m := &AuthFormModel{
		signup: signup,
		inputs: inputs,
		keys:   DefaultFormKeyMap(),
	}

	first := authEmail
	if signup {
		first = authName
	} else if email != "" {
		first = authPassword
	}
	m.focus(first)
	return m
}

func (m *AuthFormModel) fields() []int {
	if m.signup {
		return []int{authName, authEmail, authPassword}
	}
	return []int{authEmail, authPassword}
}

func (m *AuthFormModel) focus(field int) {
	m.focusedField = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *AuthFormModel) step(delta int) {
	fields := m.fields()
	pos := 0
	for i, f := range fields {
		if f == m.focusedField {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	m.focus(fields[pos])
}

// ClearPassword empties the password field after a failed attempt.
func (m *AuthFormModel) ClearPassword() {
	m.inputs[authPassword].SetValue("")
	m.focus(authPassword)
}

// Email returns the typed email.
func (m *AuthFormModel) Email() string {
	return m.inputs[authEmail].Value()
}

// Update handles input.
func (m AuthFormModel) Update(msg tea.KeyMsg) (AuthFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.SwitchTo):
		return m, func() tea.Msg { return switchAuthMsg{} }
	case key.Matches(msg, m.keys.Save):
		return m, m.submit()
	case key.Matches(msg, m.keys.Submit):
		fields := m.fields()
		if m.focusedField == fields[len(fields)-1] {
			return m, m.submit()
		}
		m.step(1)
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.step(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.step(-1)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	return m, cmd
}

func (m AuthFormModel) submit() tea.Cmd {
	out := submitAuthMsg{
		signup: m.signup,
		creds: model.Credentials{
			Email:    m.inputs[authEmail].Value(),
			Password: m.inputs[authPassword].Value(),
		},
		name: m.inputs[authName].Value(),
	}
	return func() tea.Msg { return out }
}

// View renders the form. status is the session's last error, busy shows the
// spinner line instead.
func (m *AuthFormModel) View(width, height int, status, busy string) string {
	title := "Log in to DineRight"
	switchHint := "No account? ctrl+t to sign up"
	if m.signup {
		title = "Create your DineRight account"
		switchHint = "Have an account? ctrl+t to log in"
	}

	var rows []string
	rows = append(rows, LabelStyle.Render(title), "")
	if m.signup {
		rows = append(rows, renderFormField("Name", m.inputs[authName], m.focusedField == authName))
	}
	rows = append(rows,
		renderFormField("Email", m.inputs[authEmail], m.focusedField == authEmail),
		renderFormField("Password", m.inputs[authPassword], m.focusedField == authPassword),
		"",
	)

	switch {
	case busy != "":
		rows = append(rows, PendingStyle.Render(busy))
	case status != "":
		rows = append(rows, ErrorStyle.Render(status))
	}
	rows = append(rows, HelpDescStyle.Render(switchHint))

	cardWidth := min(60, max(30, width-6))
	card := PanelStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}
