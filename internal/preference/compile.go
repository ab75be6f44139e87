// Package preference turns raw preference selections into the normalized
// query sent to the recommendation service.
package preference

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"dineright/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

const saveTimeout = 10 * time.Second

// Radii offered on the preferences screen, in km.
var Radii = []int{5, 10}

// Atmospheres is the fixed atmosphere enumeration.
var Atmospheres = []string{
	"Casual",
	"Cozy",
	"Upscale",
	"Romantic",
	"Trendy",
	"Family-friendly",
	"Lively",
}

// PriceLabels are the budget labels offered on the preferences screen.
var PriceLabels = []string{"€0 - €10", "€10 - €20", "€20 - €40", "€40+"}

// DefaultCuisines are offered when the catalog has not been loaded.
var DefaultCuisines = []string{"Italian", "Chinese", "Indian", "Mexican", "Japanese", "French", "Irish"}

// RestaurantTypes and AmenityOptions are the fixed multi-select choices.
var (
	RestaurantTypes = []string{"Café", "Bistro", "Fine dining", "Fast casual", "Pub", "Food truck"}
	AmenityOptions  = []string{"Outdoor seating", "Parking", "Vegan options", "Wi-Fi", "Reservations", "Wheelchair access"}
)

var budgetTiers = map[string]int{
	"€0 - €10":  1,
	"€10 - €20": 2,
	"€20 - €40": 3,
	"€40+":      4,
}

// Selections is the raw state of the preferences screen.
type Selections struct {
	Location        string
	RadiusKm        int    // 0 when unset
	PriceLabel      string // empty for no preference
	Atmosphere      string // empty for no preference
	Cuisines        MultiSelect
	RestaurantTypes MultiSelect
	Amenities       MultiSelect
}

// Compile validates sel and builds the query for userID. It has no side
// effects. Location and radius are required; everything else is optional.
func Compile(userID int64, sel Selections) (model.PreferenceQuery, error) {
	location := strings.TrimSpace(sel.Location)
	if location == "" {
		return model.PreferenceQuery{}, fmt.Errorf("%w: location is required", model.ErrIncompleteSelection)
	}
	if sel.RadiusKm == 0 {
		return model.PreferenceQuery{}, fmt.Errorf("%w: radius is required", model.ErrIncompleteSelection)
	}
	if !validRadius(sel.RadiusKm) {
		return model.PreferenceQuery{}, fmt.Errorf("%w: radius must be 5 or 10 km", model.ErrIncompleteSelection)
	}

	price := 0
	if strings.TrimSpace(sel.PriceLabel) != "" {
		tier, err := PriceTier(sel.PriceLabel)
		if err != nil {
			return model.PreferenceQuery{}, err
		}
		price = tier
	}

	atmosphere := ""
	if strings.TrimSpace(sel.Atmosphere) != "" {
		a, ok := NormalizeAtmosphere(sel.Atmosphere)
		if !ok {
			return model.PreferenceQuery{}, fmt.Errorf("%w: unknown atmosphere %q", model.ErrIncompleteSelection, sel.Atmosphere)
		}
		atmosphere = a
	}

	return model.PreferenceQuery{
		UserID:          userID,
		Location:        location,
		RadiusKm:        sel.RadiusKm,
		PriceLevel:      price,
		Atmosphere:      atmosphere,
		Cuisines:        named(sel.Cuisines.Values()),
		RestaurantTypes: named(sel.RestaurantTypes.Values()),
		Amenities:       named(sel.Amenities.Values()),
	}, nil
}

// PriceTier maps a price display label to its numeric tier 1-4. Budget labels
// are looked up first, then bare digits, then a leading run of currency
// symbols (€, $).
func PriceTier(label string) (int, error) {
	original := label
	label = strings.TrimSpace(label)
	if tier, ok := budgetTiers[label]; ok {
		return tier, nil
	}
	if n, err := strconv.Atoi(label); err == nil && n >= 1 && n <= 4 {
		return n, nil
	}

	count := 0
	for len(label) > 0 {
		r, size := utf8.DecodeRuneInString(label)
		if r != '€' && r != '$' {
			break
		}
		count++
		label = label[size:]
	}
	if count >= 1 && count <= 4 && strings.TrimSpace(label) == "" {
		return count, nil
	}
	return 0, fmt.Errorf("%w: unknown price level %q", model.ErrIncompleteSelection, original)
}

// NormalizeAtmosphere returns the canonical spelling of a, matching
// case-insensitively.
func NormalizeAtmosphere(a string) (string, bool) {
	a = strings.TrimSpace(a)
	for _, known := range Atmospheres {
		if strings.EqualFold(known, a) {
			return known, true
		}
	}
	return "", false
}

func validRadius(km int) bool {
	for _, r := range Radii {
		if r == km {
			return true
		}
	}
	return false
}

func named(labels []string) []model.NamedOption {
	out := make([]model.NamedOption, 0, len(labels))
	for _, l := range labels {
		out = append(out, model.NamedOption{Name: l})
	}
	return out
}

// Saver stores a compiled query remotely.
type Saver interface {
	SavePreferences(ctx context.Context, q model.PreferenceQuery) error
}

// SavedMsg reports the outcome of SaveCmd.
type SavedMsg struct {
	Err error
}

// SaveCmd posts q in the background.
func SaveCmd(saver Saver, q model.PreferenceQuery) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return SavedMsg{Err: saver.SavePreferences(ctx, q)}
	}
}

// Notice describes a save result for the user.
func (m SavedMsg) Notice() model.Notice {
	if m.Err != nil {
		return model.ErrorNotice("Could not save preferences. Try again.")
	}
	return model.InfoNotice("Preferences saved")
}
