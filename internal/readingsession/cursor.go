package readingsession

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor marks the last session of a page in (date desc, id desc) order.
type Cursor struct {
	Date string `json:"date,omitempty"`
	ID   string `json:"id,omitempty"`
}

func (c Cursor) IsZero() bool {
	return c.ID == ""
}

// EncodeCursor encodes a cursor to an opaque URL-safe string.
func EncodeCursor(c Cursor) string {
	if c.IsZero() {
		return ""
	}
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

// DecodeCursor reverses EncodeCursor. An empty string is the first page.
func DecodeCursor(raw string) (Cursor, error) {
	if raw == "" {
		return Cursor{}, nil
	}
	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(decoded, &c); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.ID == "" || !validDate(c.Date) {
		return Cursor{}, ErrInvalidCursor
	}
	return c, nil
}
