package config

import "salesdash/server/internal/models"

// CategoryInfo carries the display names of a listing category
type CategoryInfo struct {
	ID         models.Category `json:"id"`
	TypeName   string          `json:"category_name_ja"`
	GenreName  string          `json:"genre_name_ja"`
	SourcePath string          `json:"source_path"`
}

// SupportedCategories lists every category the scraper fills, in display order
var SupportedCategories = []CategoryInfo{
	{ID: models.CategoryResidentialRental, TypeName: "賃貸", GenreName: "住居", SourcePath: "/jukyo"},
	{ID: models.CategoryBusinessRental, TypeName: "賃貸", GenreName: "事業用", SourcePath: "/jigyo"},
	{ID: models.CategoryYard, TypeName: "賃貸", GenreName: "月極駐車場", SourcePath: "/yard"},
	{ID: models.CategoryParking, TypeName: "賃貸", GenreName: "時間貸駐車場", SourcePath: "/parking"},
	{ID: models.CategoryLand, TypeName: "売買", GenreName: "土地", SourcePath: "/tochi"},
	{ID: models.CategoryCondo, TypeName: "売買", GenreName: "マンション", SourcePath: "/mansion"},
	{ID: models.CategoryHouse, TypeName: "売買", GenreName: "戸建", SourcePath: "/house"},
	{ID: models.CategoryOther, TypeName: "売買", GenreName: "その他", SourcePath: "/sonota"},
}

// GetCategoryIDs returns the category identifiers in display order
func GetCategoryIDs() []models.Category {
	ids := make([]models.Category, len(SupportedCategories))
	for i, c := range SupportedCategories {
		ids[i] = c.ID
	}
	return ids
}

// GenreName returns the Japanese genre label, or the raw identifier when unknown
func GenreName(id models.Category) string {
	if c := GetCategoryByID(id); c != nil {
		return c.GenreName
	}
	return string(id)
}

// GetCategoryByID returns a category by its identifier
func GetCategoryByID(id models.Category) *CategoryInfo {
	for _, c := range SupportedCategories {
		if c.ID == id {
			return &c
		}
	}
	return nil
}
