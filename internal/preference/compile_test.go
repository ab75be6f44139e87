package preference

import (
	"context"
	"errors"
	"testing"

	"dineright/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func full() Selections {
	return Selections{
		Location:        "Miami",
		RadiusKm:        10,
		PriceLabel:      "€10 - €20",
		Atmosphere:      "cozy",
		Cuisines:        NewMultiSelect("Indian", "Italian"),
		RestaurantTypes: NewMultiSelect("Bistro"),
		Amenities:       NewMultiSelect("Parking", "Wi-Fi"),
	}
}

func TestCompile(t *testing.T) {
	q, err := Compile(7, full())
	require.NoError(t, err)

	assert.Equal(t, model.PreferenceQuery{
		UserID:          7,
		Location:        "Miami",
		RadiusKm:        10,
		PriceLevel:      2,
		Atmosphere:      "Cozy",
		Cuisines:        []model.NamedOption{{Name: "Indian"}, {Name: "Italian"}},
		RestaurantTypes: []model.NamedOption{{Name: "Bistro"}},
		Amenities:       []model.NamedOption{{Name: "Parking"}, {Name: "Wi-Fi"}},
	}, q)
}

func TestCompileEmptyLocationFails(t *testing.T) {
	for _, loc := range []string{"", "   "} {
		sel := full()
		sel.Location = loc
		_, err := Compile(7, sel)
		assert.ErrorIs(t, err, model.ErrIncompleteSelection)
	}
}

func TestCompileRadius(t *testing.T) {
	for _, km := range []int{0, 3, 25} {
		sel := full()
		sel.RadiusKm = km
		_, err := Compile(7, sel)
		assert.ErrorIs(t, err, model.ErrIncompleteSelection, km)
	}

	sel := full()
	sel.RadiusKm = 5
	q, err := Compile(7, sel)
	require.NoError(t, err)
	assert.Equal(t, 5, q.RadiusKm)
}

func TestCompileOptionalFields(t *testing.T) {
	q, err := Compile(7, Selections{Location: "Miami", RadiusKm: 5})
	require.NoError(t, err)

	assert.Zero(t, q.PriceLevel)
	assert.Empty(t, q.Atmosphere)
	assert.NotNil(t, q.Cuisines)
	assert.Empty(t, q.Cuisines)
	assert.Empty(t, q.Amenities)
}

func TestCompileUnknownAtmosphere(t *testing.T) {
	sel := full()
	sel.Atmosphere = "Spooky"
	_, err := Compile(7, sel)
	assert.ErrorIs(t, err, model.ErrIncompleteSelection)
}

func TestCompilePreservesSelectionOrder(t *testing.T) {
	var cuisines MultiSelect
	cuisines.Toggle("Indian")
	cuisines.Toggle("Italian")
	cuisines.Toggle("Thai")
	cuisines.Toggle("Indian")
	cuisines.Toggle("Indian")

	q, err := Compile(1, Selections{Location: "Miami", RadiusKm: 5, Cuisines: cuisines})
	require.NoError(t, err)
	assert.Equal(t, []model.NamedOption{{Name: "Italian"}, {Name: "Thai"}, {Name: "Indian"}}, q.Cuisines)
}

func TestPriceTier(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"€0 - €10", 1},
		{"€10 - €20", 2},
		{"€20 - €40", 3},
		{"€40+", 4},
		{"€", 1},
		{"€€€", 3},
		{"$$", 2},
		{"$$$$", 4},
		{"3", 3},
		{" 4 ", 4},
	}
	for _, tt := range tests {
		got, err := PriceTier(tt.label)
		require.NoError(t, err, tt.label)
		assert.Equal(t, tt.want, got, tt.label)
	}

	for _, bad := range []string{"0", "5", "€€€€€", "cheap", "€x"} {
		_, err := PriceTier(bad)
		assert.ErrorIs(t, err, model.ErrIncompleteSelection, bad)
	}
}

type fakeSaver struct {
	got model.PreferenceQuery
	err error
}

func (f *fakeSaver) SavePreferences(_ context.Context, q model.PreferenceQuery) error {
	f.got = q
	return f.err
}

func TestSaveCmd(t *testing.T) {
	q, err := Compile(7, full())
	require.NoError(t, err)

	saver := &fakeSaver{}
	msg := SaveCmd(saver, q)().(SavedMsg)
	assert.NoError(t, msg.Err)
	assert.Equal(t, q, saver.got)
	assert.Equal(t, model.NoticeInfo, msg.Notice().Level)

	saver.err = errors.New("down")
	msg = SaveCmd(saver, q)().(SavedMsg)
	assert.Error(t, msg.Err)
	assert.Equal(t, model.NoticeError, msg.Notice().Level)
}
