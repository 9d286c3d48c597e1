package media

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nyumbalink/listings-backend/pkg/enums"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
)

var imageMimeTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// mimeTypesByCategory restricts what each category accepts. The type is
// sniffed from payload bytes, never trusted from the request.
var mimeTypesByCategory = map[enums.MediaCategory][]string{
	enums.MediaCategoryGallery:   imageMimeTypes,
	enums.MediaCategoryExterior:  imageMimeTypes,
	enums.MediaCategoryInterior:  imageMimeTypes,
	enums.MediaCategoryBanner:    imageMimeTypes,
	enums.MediaCategoryFloorPlan: append([]string{"application/pdf"}, imageMimeTypes...),
	enums.MediaCategoryDocument:  {"application/pdf"},
}

func sniffContentType(category enums.MediaCategory, data []byte) (string, error) {
	detected := mimetype.Detect(data)
	allowed, ok := mimeTypesByCategory[category]
	if !ok {
		return detected.String(), nil
	}
	for _, candidate := range allowed {
		if detected.Is(candidate) {
			return detected.String(), nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("content type %s not allowed for category %s (allowed: %s)",
			detected.String(), category, strings.Join(allowed, ", ")))
}
