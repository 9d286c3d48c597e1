package listings

import (
	"github.com/nyumbalink/listings-backend/pkg/sqlbuild"
)

// compileFilter appends one predicate per supplied criteria field, in a fixed
// order so the compiled clause is deterministic for a given input. The builder
// owns the placeholder counter; nothing here numbers parameters by hand.
func compileFilter(b *sqlbuild.Builder, filter FilterCriteria) {
	if filter.Location != nil {
		b.AddPredicate("location", "=", *filter.Location)
	}
	if filter.PropertyType != nil {
		b.AddPredicate("property_type", "=", filter.PropertyType.String())
	}
	if filter.Status != nil {
		b.AddPredicate("status", "=", filter.Status.String())
	}
	if filter.PriceMin != nil {
		b.AddPredicate("price", ">=", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		b.AddPredicate("price", "<=", *filter.PriceMax)
	}
	if filter.BedroomsMin != nil {
		b.AddPredicate("bedrooms", ">=", *filter.BedroomsMin)
	}
	if filter.BathroomsMin != nil {
		b.AddPredicate("bathrooms", ">=", *filter.BathroomsMin)
	}
	if filter.ParkingMin != nil {
		b.AddPredicate("parking_spaces", ">=", *filter.ParkingMin)
	}
	if filter.IsFeatured != nil {
		b.AddPredicate("is_featured", "=", *filter.IsFeatured)
	}
}
