package ui

import (
	"strings"

	"dineright/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders the context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, keys KeyMap, form FormKeyMap, width int) string {
	switch screen {
	case model.ScreenLogin, model.ScreenSignup:
		return renderBindings(width, form.NextField, form.Submit, form.SwitchTo, binding("ctrl+c", "quit"))
	case model.ScreenPreferences:
		return renderBindings(width, form.NextField, form.Left, form.Toggle, form.Save, binding("esc", "skip"))
	}

	if mode == model.ModeInsert {
		if screen == model.ScreenCatalog {
			return renderBindings(width, binding("enter", "done"), binding("esc", "clear search"))
		}
		return renderBindings(width, binding("tab", "next field"), binding("1-5", "rating"), form.Save, form.Cancel)
	}

	switch screen {
	case model.ScreenCatalog:
		return renderBindings(width, keys.Down, keys.Search, keys.Select, keys.SortAsc, keys.FilterValue,
			keys.Recommendations, keys.Corner, keys.Preferences, keys.Refresh, keys.Help)
	case model.ScreenDetail:
		return renderBindings(width, keys.Back, keys.Wishlist, keys.Visited, keys.Review)
	case model.ScreenCorner:
		return renderBindings(width, keys.Down, binding("←/→", "tabs"), keys.Select, keys.Refresh, keys.Restaurants, keys.Help)
	case model.ScreenRecommendations:
		return renderBindings(width, keys.Down, keys.Select, keys.Refresh, keys.Preferences, keys.Restaurants, keys.Help)
	default:
		return renderBindings(width, keys.Down, keys.Back, keys.Quit)
	}
}

func binding(k, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc))
}

func renderBindings(width int, bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, helpKey(h.Key, h.Desc))
	}
	return renderHelpLine(parts, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"h / b / esc", "Go back"},
			{"l / enter", "Open restaurant"},
			{"← / →", "Switch tabs"},
			{"1 / 2 / 3", "Restaurants / For You / My Corner"},
			{"p", "Edit preferences"},
			{"gg / G", "Jump to top / bottom"},
			{"ctrl+d / ctrl+u", "Half page down / up"},
			{"ctrl+r", "Refresh"},
			{"L", "Log out"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Restaurant Tables"),
		helpSection([]helpItem{
			{"/", "Search name, location, cuisine"},
			{"tab / shift+tab", "Cycle active column"},
			{"s / S", "Sort active column asc/desc"},
			{"c / C", "Hide active column / show all"},
			{"n / N", "Filter by selected value / clear"},
		}),
		titleSection("Restaurant Detail"),
		helpSection([]helpItem{
			{"w", "Add to / remove from wishlist"},
			{"v", "Mark visited / not visited"},
			{"r", "Write a review"},
		}),
		titleSection("Forms"),
		helpSection([]helpItem{
			{"tab", "Next field"},
			{"shift+tab", "Previous field"},
			{"← / →", "Change choice"},
			{"space", "Toggle option"},
			{"ctrl+s", "Save"},
			{"esc", "Cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
