package ui

import (
	"fmt"
	"strings"

	"dineright/internal/model"
	"dineright/internal/preference"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// savePrefsMsg asks the root model to compile and save selections.
type savePrefsMsg struct {
	selections preference.Selections
}

const (
	prefLocation = iota
	prefRadius
	prefPrice
	prefAtmosphere
	prefCuisines
	prefTypes
	prefAmenities
	prefFieldCount
)

const noPreference = "No preference"

// choiceField is a single-choice row; index 0 is "no preference" unless
// required is set.
type choiceField struct {
	label    string
	options  []string
	index    int
	required bool
}

func (c *choiceField) move(delta int) {
	n := len(c.options)
	if c.required {
		if c.index < 0 {
			c.index = 0
			return
		}
	}
	c.index = (c.index + delta + n) % n
}

func (c choiceField) value() string {
	if c.index < 0 || c.index >= len(c.options) || c.options[c.index] == noPreference {
		return ""
	}
	return c.options[c.index]
}

// multiField is a multi-select row with its own cursor.
type multiField struct {
	label    string
	options  []string
	cursor   int
	selected preference.MultiSelect
}

func (f *multiField) move(delta int) {
	if len(f.options) == 0 {
		return
	}
	f.cursor = (f.cursor + delta + len(f.options)) % len(f.options)
}

func (f *multiField) toggle() {
	if len(f.options) == 0 {
		return
	}
	f.selected.Toggle(f.options[f.cursor])
}

// PreferencesModel is the preferences screen shown after signup and on demand.
type PreferencesModel struct {
	focusedField int
	location     textinput.Model
	radius       choiceField
	price        choiceField
	atmosphere   choiceField
	multi        [3]multiField
	keys         FormKeyMap
	error        string
}

// NewPreferencesModel creates the screen. cuisines are the catalog's
// cuisines; the default list is used when it is empty.
func NewPreferencesModel(cuisines []string) *PreferencesModel {
	if len(cuisines) == 0 {
		cuisines = preference.DefaultCuisines
	}

	loc := textinput.New()
	loc.Placeholder = "City or neighbourhood"
	loc.CharLimit = 100
	loc.Focus()

	radii := make([]string, 0, len(preference.Radii))
	for _, r := range preference.Radii {
		radii = append(radii, fmt.Sprintf("%d km", r))
	}

	return &PreferencesModel{
		focusedField: prefLocation,
		location:     loc,
		radius:       choiceField{label: "Radius", options: radii, index: -1, required: true},
		price:        choiceField{label: "Budget", options: append([]string{noPreference}, preference.PriceLabels...)},
		atmosphere:   choiceField{label: "Atmosphere", options: append([]string{noPreference}, preference.Atmospheres...)},
		multi: [3]multiField{
			{label: "Cuisines", options: cuisines},
			{label: "Restaurant types", options: preference.RestaurantTypes},
			{label: "Amenities", options: preference.AmenityOptions},
		},
		keys: DefaultFormKeyMap(),
	}
}

// Selections returns the raw state for the compiler.
func (m *PreferencesModel) Selections() preference.Selections {
	radius := 0
	if m.radius.index >= 0 {
		radius = preference.Radii[m.radius.index]
	}
	return preference.Selections{
		Location:        m.location.Value(),
		RadiusKm:        radius,
		PriceLabel:      m.price.value(),
		Atmosphere:      m.atmosphere.value(),
		Cuisines:        m.multi[0].selected,
		RestaurantTypes: m.multi[1].selected,
		Amenities:       m.multi[2].selected,
	}
}

// SetError shows a validation message.
func (m *PreferencesModel) SetError(text string) {
	m.error = text
}

func (m *PreferencesModel) setFocus(field int) {
	m.focusedField = (field + prefFieldCount) % prefFieldCount
	if m.focusedField == prefLocation {
		m.location.Focus()
	} else {
		m.location.Blur()
	}
}

// Update handles input.
func (m PreferencesModel) Update(msg tea.KeyMsg) (PreferencesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, func() tea.Msg { return model.FormCancelledMsg{} }
	case key.Matches(msg, m.keys.Save):
		sel := m.Selections()
		return m, func() tea.Msg { return savePrefsMsg{selections: sel} }
	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.Submit):
		m.setFocus(m.focusedField + 1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.setFocus(m.focusedField - 1)
		return m, nil
	}

	delta := 0
	switch {
	case key.Matches(msg, m.keys.Left):
		delta = -1
	case key.Matches(msg, m.keys.Right):
		delta = 1
	}

	switch m.focusedField {
	case prefLocation:
		var cmd tea.Cmd
		m.location, cmd = m.location.Update(msg)
		return m, cmd
	case prefRadius:
		if delta != 0 {
			m.radius.move(delta)
		}
	case prefPrice:
		if delta != 0 {
			m.price.move(delta)
		}
	case prefAtmosphere:
		if delta != 0 {
			m.atmosphere.move(delta)
		}
	default:
		f := &m.multi[m.focusedField-prefCuisines]
		if delta != 0 {
			f.move(delta)
		} else if key.Matches(msg, m.keys.Toggle) {
			f.toggle()
		}
	}
	m.error = ""
	return m, nil
}

// View renders the screen.
func (m *PreferencesModel) View(width, height int) string {
	rows := []string{
		LabelStyle.Render("Tell us what you like"),
		HelpDescStyle.Render("Location and radius are required."),
		"",
		renderFormField("Location", m.location, m.focusedField == prefLocation),
		renderChoice(m.radius, m.focusedField == prefRadius),
		renderChoice(m.price, m.focusedField == prefPrice),
		renderChoice(m.atmosphere, m.focusedField == prefAtmosphere),
	}
	for i := range m.multi {
		rows = append(rows, renderMulti(m.multi[i], m.focusedField == prefCuisines+i))
	}
	if m.error != "" {
		rows = append(rows, ErrorStyle.Render(m.error))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return PanelStyle.Width(max(30, min(90, width-4))).MaxHeight(max(1, height)).Render(content)
}

func renderChoice(c choiceField, focused bool) string {
	value := HelpDescStyle.Render("not set")
	if c.index >= 0 {
		value = OptionSelectedStyle.Render(c.options[c.index])
	}
	if focused {
		value = HelpKeyStyle.Render("‹ ") + value + HelpKeyStyle.Render(" ›")
	}
	label := LabelStyle.Render(c.label + ":")
	if focused {
		label = "→ " + label
	} else {
		label = "  " + label
	}
	return label + " " + value
}

func renderMulti(f multiField, focused bool) string {
	parts := make([]string, 0, len(f.options))
	for i, opt := range f.options {
		box := "[ ]"
		style := OptionStyle
		if f.selected.Has(opt) {
			box = "[x]"
			style = OptionSelectedStyle
		}
		text := style.Render(box + " " + opt)
		if focused && i == f.cursor {
			text = SelectedRowStyle.Render(box + " " + opt)
		}
		parts = append(parts, text)
	}

	label := LabelStyle.Render(f.label + ":")
	if focused {
		label = "→ " + label
	} else {
		label = "  " + label
	}
	order := ""
	if f.selected.Len() > 0 {
		order = HelpDescStyle.Render("  (" + strings.Join(f.selected.Values(), ", ") + ")")
	}
	return label + order + "\n    " + strings.Join(parts, "  ")
}
