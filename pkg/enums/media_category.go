package enums

import "fmt"

// MediaCategory tags what an uploaded asset depicts.
type MediaCategory string

const (
	MediaCategoryGallery   MediaCategory = "gallery"
	MediaCategoryFloorPlan MediaCategory = "floor_plan"
	MediaCategoryExterior  MediaCategory = "exterior"
	MediaCategoryInterior  MediaCategory = "interior"
	MediaCategoryDocument  MediaCategory = "document"
	MediaCategoryBanner    MediaCategory = "banner"
)

var validMediaCategories = []MediaCategory{
	MediaCategoryGallery,
	MediaCategoryFloorPlan,
	MediaCategoryExterior,
	MediaCategoryInterior,
	MediaCategoryDocument,
	MediaCategoryBanner,
}

// String returns the literal string for the category.
func (c MediaCategory) String() string {
	return string(c)
}

// IsValid reports whether the category is known.
func (c MediaCategory) IsValid() bool {
	for _, candidate := range validMediaCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseMediaCategory converts raw input into a MediaCategory.
func ParseMediaCategory(value string) (MediaCategory, error) {
	for _, candidate := range validMediaCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media category %q", value)
}
