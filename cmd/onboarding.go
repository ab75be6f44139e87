package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

type OnboardingSettings struct {
	Completed bool   `json:"completed"`
	BaseURL   string `json:"base_url,omitempty"`
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.json")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	data, err := os.ReadFile(onboardingPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, err
	}
	return settings, nil
}

func saveOnboardingSettings(configDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0644)
}

func shouldRunOnboarding(settings OnboardingSettings) bool {
	if settings.Completed {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

var urlValidator = validator.New()

// validateBaseURL accepts absolute http and https URLs.
func validateBaseURL(raw string) (string, error) {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if err := urlValidator.Var(u, "required,http_url"); err != nil {
		return "", fmt.Errorf("not a valid http(s) URL: %q", raw)
	}
	return u, nil
}

type onboardingStep int

const (
	stepChoose onboardingStep = iota
	stepURL
	stepDone
)

type onboardingModel struct {
	step     onboardingStep
	useLocal bool
	urlInput textinput.Model
	settings OnboardingSettings
	status   string
	error    string
	width    int
	height   int
}

var (
	obColorMuted  = lipgloss.Color("#8A7F76")
	obColorText   = lipgloss.Color("#ECE3D8")
	obColorAccent = lipgloss.Color("#D9825B")
	obColorDanger = lipgloss.Color("#E06C75")

	obTitleStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obHeaderStyle = lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obMutedStyle = lipgloss.NewStyle().
			Foreground(obColorMuted)

	obOptionStyle = lipgloss.NewStyle().
			Foreground(obColorText)

	obOptionSelected = lipgloss.NewStyle().
				Foreground(obColorAccent).
				Bold(true)

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

func newOnboardingModel() onboardingModel {
	in := textinput.New()
	in.Placeholder = "https://api.example.com"
	in.CharLimit = 300
	in.Prompt = "url> "
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Focus()

	return onboardingModel{
		step:     stepChoose,
		useLocal: true,
		urlInput: in,
		settings: OnboardingSettings{Completed: true},
	}
}

func (m onboardingModel) Init() tea.Cmd { return nil }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.finish(DefaultBaseURL, "Setup canceled. Using "+DefaultBaseURL+".")
		}
		switch m.step {
		case stepChoose:
			switch msg.String() {
			case "up", "k", "left", "h":
				m.useLocal = true
			case "down", "j", "right", "l":
				m.useLocal = false
			case "enter":
				if m.useLocal {
					return m.finish(DefaultBaseURL, "Using the local service at "+DefaultBaseURL+".")
				}
				m.step = stepURL
				return m, textinput.Blink
			case "q":
				return m.finish(DefaultBaseURL, "Setup canceled. Using "+DefaultBaseURL+".")
			}
			return m, nil
		case stepURL:
			switch msg.String() {
			case "enter":
				u, err := validateBaseURL(m.urlInput.Value())
				if err != nil {
					m.error = err.Error()
					return m, nil
				}
				return m.finish(u, "Service URL saved.")
			case "esc":
				m.step = stepChoose
				m.error = ""
				return m, nil
			}
			var cmd tea.Cmd
			m.urlInput, cmd = m.urlInput.Update(msg)
			m.error = ""
			return m, cmd
		}
	}
	return m, nil
}

func (m onboardingModel) finish(baseURL, status string) (tea.Model, tea.Cmd) {
	m.settings.BaseURL = baseURL
	m.status = status
	m.step = stepDone
	return m, tea.Quit
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	header := m.renderHeader(width)
	footer := m.renderFooter(width)
	content := m.renderContent(width, max(8, height-4))

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + obTitleStyle.Render("dineright") + " " + obMutedStyle.Render("› Setup")
	return obHeaderStyle.Width(width).Render(left)
}

func (m onboardingModel) renderFooter(width int) string {
	switch m.step {
	case stepChoose:
		return obFooterStyle.Width(width).Render("↑↓/jk to choose  enter to confirm  q cancel")
	case stepURL:
		return obFooterStyle.Width(width).Render("enter save  esc back  ctrl+c cancel")
	default:
		return obFooterStyle.Width(width).Render("Setup complete")
	}
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepChoose:
		local := "Local service (" + DefaultBaseURL + ")"
		custom := "Another DineRight service"

		var localDisplay, customDisplay string
		if m.useLocal {
			localDisplay = "  " + obOptionSelected.Render("→ "+local)
			customDisplay = "    " + obOptionStyle.Render(custom)
		} else {
			localDisplay = "    " + obOptionStyle.Render(local)
			customDisplay = "  " + obOptionSelected.Render("→ "+custom)
		}

		body = lipgloss.JoinVertical(
			lipgloss.Left,
			obTitleStyle.Render("Which DineRight service should we use?"),
			"",
			localDisplay,
			customDisplay,
			"",
			obMutedStyle.Render("Run a local service with: dineright -stub :8080"),
			obMutedStyle.Render("You can change this later in ~/.dineright/onboarding.json or with -url"),
		)
	case stepURL:
		input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.urlInput.View())
		rows := []string{
			obTitleStyle.Render("Service URL"),
			"",
			input,
		}
		if m.error != "" {
			rows = append(rows, obWarnStyle.Render(m.error))
		}
		rows = append(rows, "", obMutedStyle.Render("Press Enter to save, Esc to go back."))
		body = lipgloss.JoinVertical(lipgloss.Left, rows...)
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, obTitleStyle.Render("Setup complete"), "", obMutedStyle.Render(m.status))
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func runOnboarding(configDir string) (OnboardingSettings, error) {
	prog := tea.NewProgram(newOnboardingModel(), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if err := saveOnboardingSettings(configDir, m.settings); err != nil {
		return OnboardingSettings{}, err
	}
	return m.settings, nil
}
