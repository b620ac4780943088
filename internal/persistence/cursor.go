// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"example.com/stableops/internal/domain"
)

// Cursor tokens mark a position in the assignee history listing. The token is
// the activity date and ID joined by a pipe, base64 encoded so clients treat
// it as opaque. Dates carry day precision only, matching the activity_date
// column the listing paginates over.
const cursorDateLayout = "2006-01-02"

// EncodeCursor serialises the cursor to an opaque token. A nil cursor yields
// the empty token.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	raw := c.Date.UTC().Format(cursorDateLayout) + "|" + c.ID
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor. Empty or blank tokens
// decode to nil without error.
func DecodeCursor(token string) (*domain.Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}

	date, id, ok := strings.Cut(string(decoded), "|")
	if !ok || id == "" {
		return nil, fmt.Errorf("malformed cursor: missing separator")
	}

	day, err := time.Parse(cursorDateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	return &domain.Cursor{Date: day, ID: id}, nil
}
