package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/angelmondragon/gearmarket-backend/pkg/pagination"
)

// maxCursorLength bounds the opaque cursor; an encoded cursor is well under this.
const maxCursorLength = 256

// ParseLimit reads the `limit` query parameter. Absent means the default page
// size; anything outside 1..MaxLimit is rejected rather than clamped.
func ParseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return pagination.DefaultLimit, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Invalid("limit", "must be numeric")
	}
	if value < 1 || value > pagination.MaxLimit {
		return 0, pkgerrors.Invalid("limit", fmt.Sprintf("must be between 1 and %d", pagination.MaxLimit))
	}
	return value, nil
}

// ParseCursor reads the opaque `cursor` query parameter. Decoding is left to
// the record store so both entry points reject bad cursors the same way.
func ParseCursor(r *http.Request) (string, error) {
	cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))
	if len(cursor) > maxCursorLength {
		return "", pkgerrors.Invalid("cursor", "too long")
	}
	return cursor, nil
}
