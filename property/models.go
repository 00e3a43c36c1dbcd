package property

import (
	"encoding/json"
	"time"
)

// Status is the listing lifecycle state. One closed vocabulary is used for
// every listing; there is no separate for-sale/for-rent state, the deal kind
// lives in Type.
type Status string

const (
	StatusActive Status = "active"
	StatusSold   Status = "sold"
	StatusRented Status = "rented"
)

func isValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusSold, StatusRented:
		return true
	default:
		return false
	}
}

// Location is the structured address of a listing. It is persisted as a JSON
// document in a text column; historical rows may hold a bare string instead,
// which readers fold into a country-only location.
type Location struct {
	Country  string `json:"country"`
	City     string `json:"city"`
	Address  string `json:"address"`
	Landmark string `json:"landmark"`
}

// UnmarshalJSON accepts either the structured object or a JSON string, which
// is treated as a country name. Kept lenient for old clients that sent the
// location as free text.
func (l *Location) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = Location{Country: s}
		return nil
	}
	type plain Location
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Location(p)
	return nil
}

// decodeLocation reads the raw column value. Rows written before locations
// were structured hold a plain string; those become a country-only location
// rather than a decode error. Any reimplementation that reads pre-existing
// data must keep this shim.
func decodeLocation(raw string) Location {
	var loc Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return Location{Country: raw}
	}
	return loc
}

func encodeLocation(loc Location) string {
	b, err := json.Marshal(loc)
	if err != nil {
		// Location is four plain strings; marshalling cannot fail.
		panic(err)
	}
	return string(b)
}

// Property is the domain representation of a listing. Owner contact fields are
// populated only by queries that join the users table.
type Property struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Location    Location
	Price       float64
	Type        string
	Status      Status
	Bedrooms    int
	Bathrooms   int
	Area        float64
	Features    []string
	Images      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	OwnerName  *string
	OwnerEmail *string
	OwnerPhone *string
}

// CreateParams contains write parameters for a new listing.
type CreateParams struct {
	UserID      string
	Title       string
	Description string
	Location    Location
	Price       float64
	Type        string
	Status      Status
	Bedrooms    int
	Bathrooms   int
	Area        float64
	Features    []string
	Images      []string
}

// UpdateParams replaces the mutable listing fields, mirroring a full PUT body.
type UpdateParams struct {
	Title       string
	Description string
	Location    Location
	Price       float64
	Type        string
	Status      Status
	Bedrooms    int
	Bathrooms   int
	Area        float64
	Features    []string
	Images      []string
}
