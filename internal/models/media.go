package models

import (
	"strings"
	"time"
)

// Media is a single photo or video record as served by the API
type Media struct {
	ID          string       `json:"id"`
	Thumbnails  Thumbnails   `json:"thumbnails"`
	Date        string       `json:"date"`
	Caption     string       `json:"caption,omitempty"`
	Location    *Location    `json:"location,omitempty"`
	Collections []Collection `json:"collections"`
}

// Thumbnails holds storage keys or absolute URLs of the rendered sizes
type Thumbnails struct {
	Key    string `json:"key,omitempty"`
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type Location struct {
	Country     Country      `json:"country"`
	Region      string       `json:"region"`
	Locality    string       `json:"locality"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Country struct {
	Short string `json:"short"`
	Long  string `json:"long"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MediaDetail is the envelope returned by the media detail endpoint
type MediaDetail struct {
	Media Media `json:"media"`
}

// Taken parses the capture date. Unparseable dates return the zero time.
func (m Media) Taken() time.Time {
	if m.Date == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, m.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TrimmedCaption returns the caption without surrounding whitespace
func (m Media) TrimmedCaption() string {
	return strings.TrimSpace(m.Caption)
}
