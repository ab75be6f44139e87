package remote

import (
	"strings"

	"dineright/internal/model"
)

// Wire types shared by the client and the stub service. There is exactly one
// field name per payload; alternates are not probed.

// SuccessCode is the service's success token.
const SuccessCode = "SUCCESS"

// FailCode is what the stub answers for every failure.
const FailCode = "FAIL"

// IsSuccess reports whether code is the success token, in any case.
func IsSuccess(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), SuccessCode)
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Code        *string              `json:"code"`
	Message     string               `json:"message,omitempty"`
	ID          *int64               `json:"id,omitempty"`
	Restaurants *[]RestaurantPayload `json:"restaurants,omitempty"`
	Recommended *[]RefPayload        `json:"recommendedRestaurants,omitempty"`
	IDs         *[]int64             `json:"restaurantIds,omitempty"`
	Written     *[]WrittenPayload    `json:"reviews,omitempty"`
}

// RestaurantPayload is a restaurant on the wire.
type RestaurantPayload struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	Cuisine     string          `json:"cuisine"`
	PriceLevel  int             `json:"priceLevel"`
	Atmosphere  string          `json:"atmosphere"`
	Amenities   []string        `json:"amenities"`
	PhoneNumber string          `json:"phoneNumber"`
	Rating      float64         `json:"rating"`
	Reviews     []ReviewPayload `json:"reviews"`
}

// ReviewPayload is a review on the wire.
type ReviewPayload struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// RefPayload is a recommendation entry on the wire.
type RefPayload struct {
	PlaceID  int64  `json:"placeId"`
	Resname  string `json:"resname"`
	Location string `json:"location"`
	Cuisines string `json:"cuisines"`
}

// WrittenPayload is a review listed under its author.
type WrittenPayload struct {
	RestaurantID int64  `json:"restaurantId"`
	Resname      string `json:"resname"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

// CredentialsRequest is the /login body.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the /signup body.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RelationRequest is the body of the wishlist and visited endpoints.
type RelationRequest struct {
	UserID       int64 `json:"userId"`
	RestaurantID int64 `json:"restaurantId"`
}

// ReviewRequest is the /add body.
type ReviewRequest struct {
	UserID       int64  `json:"userId"`
	RestaurantID int64  `json:"restaurantId"`
	UserRating   int    `json:"userRating"`
	Comment      string `json:"comment"`
}

// PreferencesRequest is the /savePrefs body.
type PreferencesRequest struct {
	UserID           int64            `json:"userId"`
	PreferenceObject PreferenceObject `json:"preferenceObject"`
}

// PreferenceObject is the compiled preference query on the wire.
type PreferenceObject struct {
	Location        string         `json:"location"`
	RadiusKm        int            `json:"radiusKm"`
	PriceLevel      int            `json:"priceLevel,omitempty"`
	Atmosphere      string         `json:"atmosphere,omitempty"`
	Cuisines        []NamedPayload `json:"cuisines"`
	RestaurantTypes []NamedPayload `json:"restaurantTypes"`
	Amenities       []NamedPayload `json:"amenities"`
}

// NamedPayload is a {name} record.
type NamedPayload struct {
	Name string `json:"name"`
}

// ToRestaurant converts a wire restaurant to the model type.
func (p RestaurantPayload) ToRestaurant() model.Restaurant {
	r := model.Restaurant{
		ID:              p.ID,
		Name:            p.Name,
		Location:        p.Location,
		Cuisine:         p.Cuisine,
		PriceLevel:      p.PriceLevel,
		Atmosphere:      p.Atmosphere,
		Amenities:       append([]string(nil), p.Amenities...),
		PhoneNumber:     p.PhoneNumber,
		AggregateRating: p.Rating,
	}
	for _, rv := range p.Reviews {
		r.Reviews = append(r.Reviews, model.Review{
			AuthorLabel: rv.User,
			Rating:      rv.Rating,
			Comment:     rv.Comment,
		})
	}
	return r
}

// FromRestaurant converts a model restaurant to its wire form.
func FromRestaurant(r model.Restaurant) RestaurantPayload {
	p := RestaurantPayload{
		ID:          r.ID,
		Name:        r.Name,
		Location:    r.Location,
		Cuisine:     r.Cuisine,
		PriceLevel:  r.PriceLevel,
		Atmosphere:  r.Atmosphere,
		Amenities:   append([]string{}, r.Amenities...),
		PhoneNumber: r.PhoneNumber,
		Rating:      r.AggregateRating,
		Reviews:     make([]ReviewPayload, 0, len(r.Reviews)),
	}
	for _, rv := range r.Reviews {
		p.Reviews = append(p.Reviews, ReviewPayload{User: rv.AuthorLabel, Rating: rv.Rating, Comment: rv.Comment})
	}
	return p
}

// ToRef converts a wire recommendation entry to the model type.
func (p RefPayload) ToRef() model.RestaurantRef {
	return model.RestaurantRef{
		PlaceID:  p.PlaceID,
		Name:     p.Resname,
		Location: p.Location,
		Cuisines: p.Cuisines,
	}
}

// FromPreferenceQuery converts a compiled query to its wire form.
func FromPreferenceQuery(q model.PreferenceQuery) PreferencesRequest {
	return PreferencesRequest{
		UserID: q.UserID,
		PreferenceObject: PreferenceObject{
			Location:        q.Location,
			RadiusKm:        q.RadiusKm,
			PriceLevel:      q.PriceLevel,
			Atmosphere:      q.Atmosphere,
			Cuisines:        toNamed(q.Cuisines),
			RestaurantTypes: toNamed(q.RestaurantTypes),
			Amenities:       toNamed(q.Amenities),
		},
	}
}

// CuisineNames lists the cuisine names of a preference object in order.
func (o PreferenceObject) CuisineNames() []string {
	names := make([]string, 0, len(o.Cuisines))
	for _, c := range o.Cuisines {
		names = append(names, c.Name)
	}
	return names
}

func toNamed(opts []model.NamedOption) []NamedPayload {
	out := make([]NamedPayload, 0, len(opts))
	for _, o := range opts {
		out = append(out, NamedPayload{Name: o.Name})
	}
	return out
}
