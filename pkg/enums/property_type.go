package enums

import "fmt"

// PropertyType represents the canonical property categories supported by the catalog.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeBedsitter  PropertyType = "bedsitter"
	PropertyTypeBungalow   PropertyType = "bungalow"
	PropertyTypeMaisonette PropertyType = "maisonette"
	PropertyTypeTownhouse  PropertyType = "townhouse"
	PropertyTypeStudio     PropertyType = "studio"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeLand       PropertyType = "land"
)

var validPropertyTypes = []PropertyType{
	PropertyTypeApartment,
	PropertyTypeBedsitter,
	PropertyTypeBungalow,
	PropertyTypeMaisonette,
	PropertyTypeTownhouse,
	PropertyTypeStudio,
	PropertyTypeCommercial,
	PropertyTypeLand,
}

// String implements fmt.Stringer.
func (p PropertyType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PropertyType.
func (p PropertyType) IsValid() bool {
	for _, candidate := range validPropertyTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePropertyType converts raw input into a PropertyType.
func ParsePropertyType(value string) (PropertyType, error) {
	for _, candidate := range validPropertyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid property type %q", value)
}
