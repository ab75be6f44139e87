package model

// Restaurant represents a catalog entry as served by the remote service.
type Restaurant struct {
	ID              int64    `validate:"required,gt=0"`
	Name            string   `validate:"required"`
	Location        string   `validate:"required"`
	Cuisine         string   `validate:"required"`
	PriceLevel      int      `validate:"min=0,max=4"` // 0 when unknown
	Atmosphere      string
	Amenities       []string
	PhoneNumber     string
	AggregateRating float64  `validate:"min=0,max=5"`
	Reviews         []Review `validate:"dive"`
}

// Review is a single user review of a restaurant.
type Review struct {
	AuthorLabel string
	Rating      int `validate:"min=1,max=5"`
	Comment     string
}

// NewReview represents data for submitting a review.
type NewReview struct {
	UserID       int64 `validate:"required,gt=0"`
	RestaurantID int64 `validate:"required,gt=0"`
	Rating       int   `validate:"min=1,max=5"`
	Comment      string
}

// WrittenReview is a review listed under its author.
type WrittenReview struct {
	RestaurantID   int64
	RestaurantName string
	Rating         int
	Comment        string
}

// RestaurantRef is a recommendation result: enough to list, resolved through
// the catalog for anything more.
type RestaurantRef struct {
	PlaceID  int64
	Name     string
	Location string
	Cuisines string
}

// Credentials are submitted on login.
type Credentials struct {
	Email    string
	Password string
}

// Signup represents data for creating an account.
type Signup struct {
	Name     string
	Email    string
	Password string
}

// NamedOption is the record shape multi-select preferences are sent in.
type NamedOption struct {
	Name string
}

// PreferenceQuery is the normalized preference object sent to the service.
type PreferenceQuery struct {
	UserID          int64
	Location        string
	RadiusKm        int
	PriceLevel      int    // 0 when no preference
	Atmosphere      string // empty when no preference
	Cuisines        []NamedOption
	RestaurantTypes []NamedOption
	Amenities       []NamedOption
}

// NoticeLevel classifies a user-visible notice.
type NoticeLevel int

const (
	NoticeNone NoticeLevel = iota
	NoticeInfo
	NoticeError
)

// Notice is the human-readable outcome of an operation.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// InfoNotice returns an informational notice.
func InfoNotice(text string) Notice {
	return Notice{Level: NoticeInfo, Text: text}
}

// ErrorNotice returns an error notice.
func ErrorNotice(text string) Notice {
	return Notice{Level: NoticeError, Text: text}
}

// Empty reports whether there is nothing to show.
func (n Notice) Empty() bool {
	return n.Level == NoticeNone || n.Text == ""
}
