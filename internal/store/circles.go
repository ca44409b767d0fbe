package store

import "strings"

// Circles are stored as a comma-joined text column. Circle identifiers are
// owner-chosen slugs and never contain commas.

func encodeCircles(circles []string) string {
	return strings.Join(circles, ",")
}

func decodeCircles(raw []byte) []string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return nil
	}

	return strings.Split(s, ",")
}
