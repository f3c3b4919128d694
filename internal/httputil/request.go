package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxRequestBodyBytes caps request bodies. A 100-section document with
// inline HTML stays well under this.
const MaxRequestBodyBytes = 4 << 20

// ParseJSON decodes exactly one JSON value from the request body into dest.
// Unknown fields are ignored; the document validator rejects what matters.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if decoder.More() {
		return errors.New("invalid JSON: unexpected data after the request object")
	}
	return nil
}
