package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FormatLocation renders "locality, region, country" skipping empty parts.
// The region is dropped when it repeats the locality.
func FormatLocation(m Media) string {
	if m.Location == nil {
		return ""
	}
	loc := m.Location

	parts := make([]string, 0, 3)
	if loc.Locality != "" {
		parts = append(parts, loc.Locality)
	}
	if loc.Region != "" && loc.Region != loc.Locality {
		parts = append(parts, loc.Region)
	}
	if loc.Country.Long != "" {
		parts = append(parts, loc.Country.Long)
	}
	return strings.Join(parts, ", ")
}

// Ordinal returns n with its English ordinal suffix
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// FormatDisplayDate renders t as "Sat, 28th Jan 1984 19:00:52"
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s, %s %s",
		t.Format("Mon"),
		Ordinal(t.Day()),
		t.Format("Jan 2006 15:04:05"),
	)
}

// FormatDayTitle renders t as "Sat, 28th Jan"
func FormatDayTitle(t time.Time) string {
	return fmt.Sprintf("%s, %s %s", t.Format("Mon"), Ordinal(t.Day()), t.Format("Jan"))
}

// ThumbnailURL maps a thumbnail key to the path served by the thumbnail
// proxy. Absolute URLs are returned unchanged.
func ThumbnailURL(key string) string {
	if key == "" {
		return ""
	}
	if u, err := url.Parse(key); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return key
	}
	return "/thumbnails/" + strings.TrimPrefix(key, "/")
}
