package models

import "time"

// Category is the listing section a property was scraped from.
type Category string

const (
	CategoryResidentialRental Category = "jukyo"
	CategoryBusinessRental    Category = "jigyo"
	CategoryYard              Category = "yard"
	CategoryParking           Category = "parking"
	CategoryLand              Category = "tochi"
	CategoryCondo             Category = "mansion"
	CategoryHouse             Category = "house"
	CategoryOther             Category = "sonota"
)

// AllCategories is the fixed enumeration in dashboard display order.
var AllCategories = []Category{
	CategoryResidentialRental,
	CategoryBusinessRental,
	CategoryYard,
	CategoryParking,
	CategoryLand,
	CategoryCondo,
	CategoryHouse,
	CategoryOther,
}

// CategoryType is the coarse rental-vs-sale split.
type CategoryType string

const (
	CategoryTypeRental CategoryType = "rental"
	CategoryTypeSale   CategoryType = "sale"
)

// ParseCategory reports whether s names one of the fixed categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Type derives the rental/sale split from the category. The stored
// category_type column is not trusted.
func (c Category) Type() CategoryType {
	switch c {
	case CategoryResidentialRental, CategoryBusinessRental, CategoryParking, CategoryYard:
		return CategoryTypeRental
	default:
		return CategoryTypeSale
	}
}

// Property is a listing after the store boundary has normalised it.
type Property struct {
	ID           int64             `json:"id"`
	URL          string            `json:"url"`
	Title        string            `json:"title"`
	Category     Category          `json:"category"`
	CategoryType CategoryType      `json:"category_type"`
	GenreName    string            `json:"genre_name_ja"`
	Price        string            `json:"price"`
	CompanyName  string            `json:"company_name"`
	Favorites    int               `json:"favorites"`
	IsActive     bool              `json:"is_active"`
	Attributes   map[string]string `json:"property_data"`
	Images       []string          `json:"images"`

	// Zero when the store had no usable value
	FirstSeenDate time.Time `json:"first_seen_date"`
	LastSeenDate  time.Time `json:"last_seen_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Attribute returns the first non-empty attribute among keys.
func (p *Property) Attribute(keys ...string) string {
	for _, k := range keys {
		if v := p.Attributes[k]; v != "" {
			return v
		}
	}
	return ""
}

// CopyHistory is one generated sales copy for a property.
type CopyHistory struct {
	ID          string    `json:"id"`
	PropertyURL string    `json:"property_url"`
	CopyText    string    `json:"copy_text"`
	Model       string    `json:"model"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
