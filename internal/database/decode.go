package database

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"salesdash/server/config"
	"salesdash/server/internal/models"
)

// propertyRow mirrors the properties table as both backends store it.
// property_data and images arrive as JSON text, JSON text wrapped in a JSON
// string, or garbage; decodeProperty is the only place that sorts that out.
type propertyRow struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" db:"id"`
	URL            string         `gorm:"type:text;uniqueIndex;not null" db:"url"`
	Category       string         `gorm:"type:text;index;not null" db:"category"`
	CategoryType   sql.NullString `gorm:"type:text" db:"category_type"`
	CategoryNameJa sql.NullString `gorm:"type:text" db:"category_name_ja"`
	GenreNameJa    sql.NullString `gorm:"type:text" db:"genre_name_ja"`
	Title          sql.NullString `gorm:"type:text" db:"title"`
	Price          sql.NullString `gorm:"type:text" db:"price"`
	Favorites      sql.NullInt64  `gorm:"type:integer" db:"favorites"`
	CompanyName    sql.NullString `gorm:"type:text" db:"company_name"`
	Images         sql.NullString `gorm:"type:text" db:"images"`
	PropertyData   sql.NullString `gorm:"type:text" db:"property_data"`
	IsActive       bool           `gorm:"index" db:"is_active"`
	FirstSeenDate  sql.NullString `gorm:"type:text;index" db:"first_seen_date"`
	LastSeenDate   sql.NullString `gorm:"type:text;index" db:"last_seen_date"`
	CreatedAt      sql.NullTime   `gorm:"type:datetime;autoCreateTime:false" db:"created_at"`
	UpdatedAt      sql.NullTime   `gorm:"type:datetime;autoUpdateTime:false" db:"updated_at"`
}

func (propertyRow) TableName() string {
	return "properties"
}

type copyHistoryRow struct {
	ID          string    `gorm:"primaryKey;type:text" db:"id"`
	PropertyURL string    `gorm:"type:text;index;not null" db:"property_url"`
	CopyText    string    `gorm:"type:text;not null" db:"copy_text"`
	Model       string    `gorm:"type:text" db:"model"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `gorm:"type:datetime;not null" db:"created_at"`
}

func (copyHistoryRow) TableName() string {
	return "ai_copy_history"
}

const dateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// decodeProperty normalises a raw row into the strict record the analytics
// code works on. It never fails: unusable fields fall back to zero values.
func decodeProperty(row propertyRow) models.Property {
	category, ok := models.ParseCategory(strings.TrimSpace(row.Category))
	if !ok {
		category = models.CategoryOther
	}

	p := models.Property{
		ID:            row.ID,
		URL:           row.URL,
		Title:         row.Title.String,
		Category:      category,
		CategoryType:  category.Type(),
		GenreName:     row.GenreNameJa.String,
		Price:         row.Price.String,
		CompanyName:   row.CompanyName.String,
		Favorites:     int(row.Favorites.Int64),
		IsActive:      row.IsActive,
		Attributes:    decodeAttributes(row.PropertyData.String),
		Images:        decodeImages(row.Images.String),
		FirstSeenDate: parseDate(row.FirstSeenDate.String),
		LastSeenDate:  parseDate(row.LastSeenDate.String),
	}
	if p.GenreName == "" {
		p.GenreName = config.GenreName(category)
	}
	if row.CreatedAt.Valid {
		p.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		p.UpdatedAt = row.UpdatedAt.Time
	}
	return p
}

func decodeRows(rows []propertyRow) []models.Property {
	properties := make([]models.Property, 0, len(rows))
	for _, row := range rows {
		properties = append(properties, decodeProperty(row))
	}
	return properties
}

// unwrapJSON parses raw and, if the result is itself a JSON-encoded string,
// parses that once more.
func unwrapJSON(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	if s, ok := v.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return nil
		}
		return inner
	}
	return v
}

func decodeAttributes(raw string) map[string]string {
	attrs := make(map[string]string)
	obj, ok := unwrapJSON(raw).(map[string]any)
	if !ok {
		return attrs
	}

	for k, v := range obj {
		switch val := v.(type) {
		case string:
			attrs[k] = val
		case float64:
			attrs[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			attrs[k] = strconv.FormatBool(val)
		}
	}
	return attrs
}

func decodeImages(raw string) []string {
	list, ok := unwrapJSON(raw).([]any)
	if !ok {
		return []string{}
	}

	images := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			images = append(images, s)
		}
	}
	return images
}

// parseDate accepts a date-only value (midnight UTC, as the dashboard has
// always read it) or a full timestamp. Anything else yields the zero time.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// encodeProperty is the inverse used when importing listings.
func encodeProperty(p models.Property, now time.Time) propertyRow {
	attrs, _ := json.Marshal(p.Attributes)
	images := p.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, _ := json.Marshal(images)

	row := propertyRow{
		ID:           p.ID,
		URL:          p.URL,
		Category:     string(p.Category),
		Title:        nullString(p.Title),
		Price:        nullString(p.Price),
		Favorites:    sql.NullInt64{Int64: int64(p.Favorites), Valid: true},
		CompanyName:  nullString(p.CompanyName),
		Images:       nullString(string(imagesJSON)),
		PropertyData: nullString(string(attrs)),
		IsActive:     p.IsActive,
		CreatedAt:    nullTime(p.CreatedAt, now),
		UpdatedAt:    nullTime(p.UpdatedAt, now),
	}
	if info := config.GetCategoryByID(p.Category); info != nil {
		row.CategoryType = nullString(string(p.Category.Type()))
		row.CategoryNameJa = nullString(info.TypeName)
		row.GenreNameJa = nullString(info.GenreName)
	}
	if !p.FirstSeenDate.IsZero() {
		row.FirstSeenDate = nullString(p.FirstSeenDate.In(models.Tokyo).Format(dateLayout))
	}
	if !p.LastSeenDate.IsZero() {
		row.LastSeenDate = nullString(p.LastSeenDate.In(models.Tokyo).Format(dateLayout))
	}
	return row
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t, fallback time.Time) sql.NullTime {
	if t.IsZero() {
		t = fallback
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func newCopyHistoryRow(r models.CopyHistory) copyHistoryRow {
	return copyHistoryRow{
		ID:          r.ID,
		PropertyURL: r.PropertyURL,
		CopyText:    r.CopyText,
		Model:       r.Model,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func decodeHistory(rows []copyHistoryRow) []models.CopyHistory {
	history := make([]models.CopyHistory, 0, len(rows))
	for _, r := range rows {
		history = append(history, models.CopyHistory{
			ID:          r.ID,
			PropertyURL: r.PropertyURL,
			CopyText:    r.CopyText,
			Model:       r.Model,
			IsActive:    r.IsActive,
			CreatedAt:   r.CreatedAt,
		})
	}
	return history
}
