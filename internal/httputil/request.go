package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MaxJSONBodySize bounds metadata request bodies. Blob uploads are streamed and not subject to it.
const MaxJSONBodySize = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// Unknown fields are rejected so a misspelled owner_id cannot slip past as absent.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
