package ui

import (
	"testing"

	"dineright/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAuthFormSubmitsOnLastField(t *testing.T) {
	form := *NewAuthFormModel(false, "ada@example.com")
	require.Equal(t, authPassword, form.focusedField)

	form, _ = form.Update(typeText("secret"))
	form, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(submitAuthMsg)
	require.True(t, ok)
	assert.False(t, msg.signup)
	assert.Equal(t, model.Credentials{Email: "ada@example.com", Password: "secret"}, msg.creds)
}

func TestAuthFormEnterAdvancesBeforeLastField(t *testing.T) {
	form := *NewAuthFormModel(true, "")
	require.Equal(t, authName, form.focusedField)

	form, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, authEmail, form.focusedField)

	form.ClearPassword()
	assert.Equal(t, authPassword, form.focusedField)
}

func TestAuthFormSwitch(t *testing.T) {
	form := *NewAuthFormModel(false, "")
	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	require.NotNil(t, cmd)
	assert.IsType(t, switchAuthMsg{}, cmd())
}

func TestReviewFormRequiresRating(t *testing.T) {
	form := *NewReviewFormModel(3, "Spice Route")

	form, cmd := form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.NotEmpty(t, form.error)

	form, _ = form.Update(typeText("4"))
	assert.Equal(t, 4, form.rating)
	assert.Empty(t, form.error)

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyRight})
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 5, form.rating)

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyTab})
	form, _ = form.Update(typeText("Great dosa"))

	_, cmd = form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg := cmd().(submitReviewMsg)
	assert.Equal(t, submitReviewMsg{restaurantID: 3, rating: 5, comment: "Great dosa"}, msg)
}

func TestReviewFormCancel(t *testing.T) {
	form := *NewReviewFormModel(3, "Spice Route")
	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, model.FormCancelledMsg{}, cmd())
}

func TestPreferencesFormSelections(t *testing.T) {
	form := *NewPreferencesModel([]string{"Italian", "Indian"})

	form, _ = form.Update(typeText("Dublin"))

	// Radius starts unset and is required.
	assert.Equal(t, 0, form.Selections().RadiusKm)
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyTab})
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 5, form.Selections().RadiusKm)

	// Jump to cuisines and pick both, in reverse order.
	for form.focusedField != prefCuisines {
		form, _ = form.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyRight})
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyLeft})
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})

	sel := form.Selections()
	assert.Equal(t, "Dublin", sel.Location)
	assert.Equal(t, []string{"Indian", "Italian"}, sel.Cuisines.Values())
	assert.Equal(t, "", sel.PriceLabel)

	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.IsType(t, savePrefsMsg{}, cmd())
}
