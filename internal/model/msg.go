package model

// Bubble Tea message types shared across screens. Component results
// (session, catalog, relation, recommend, review) live next to the component
// that resolves them.

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenSignup
	ScreenPreferences
	ScreenCatalog
	ScreenDetail
	ScreenCorner
	ScreenRecommendations
)

// Protected reports whether the screen requires an authenticated session.
func (s Screen) Protected() bool {
	switch s {
	case ScreenLogin, ScreenSignup:
		return false
	default:
		return true
	}
}

// String returns the breadcrumb label for the screen.
func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "Login"
	case ScreenSignup:
		return "Sign up"
	case ScreenPreferences:
		return "Preferences"
	case ScreenCatalog:
		return "Restaurants"
	case ScreenDetail:
		return "Detail"
	case ScreenCorner:
		return "My Corner"
	case ScreenRecommendations:
		return "For You"
	default:
		return "Unknown"
	}
}

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
