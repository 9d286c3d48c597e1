package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
)

// decodeFieldMap reads a PATCH body as a sparse field map. The services own
// the allow-list checks; this only guards the JSON shape.
func decodeFieldMap(r *http.Request) (map[string]any, error) {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	var fields map[string]any
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "patch contains no fields")
	}
	return fields, nil
}
