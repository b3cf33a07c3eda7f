package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatLocation(t *testing.T) {
	tests := []struct {
		name     string
		location *Location
		want     string
	}{
		{"no location", nil, ""},
		{
			"full location",
			&Location{Locality: "Meanwood", Region: "West Yorkshire", Country: Country{Short: "GB", Long: "United Kingdom"}},
			"Meanwood, West Yorkshire, United Kingdom",
		},
		{
			"region repeats locality",
			&Location{Locality: "Leeds", Region: "Leeds", Country: Country{Long: "United Kingdom"}},
			"Leeds, United Kingdom",
		},
		{
			"country only",
			&Location{Country: Country{Long: "Japan"}},
			"Japan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLocation(Media{Location: tt.location}))
		})
	}
}

func TestOrdinal(t *testing.T) {
	want := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th",
		13: "13th", 21: "21st", 22: "22nd", 23: "23rd", 28: "28th", 31: "31st",
		101: "101st", 111: "111th",
	}
	for n, s := range want {
		assert.Equal(t, s, Ordinal(n))
	}
}

func TestFormatDisplayDate(t *testing.T) {
	d := time.Date(1984, time.January, 28, 19, 0, 52, 0, time.UTC)

	assert.Equal(t, "Sat, 28th Jan 1984 19:00:52", FormatDisplayDate(d))
	assert.Equal(t, "Sat, 28th Jan", FormatDayTitle(d))
	assert.Equal(t, "", FormatDisplayDate(time.Time{}))
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t, "/thumbnails/lg_test-image-123.jpg", ThumbnailURL("lg_test-image-123.jpg"))
	assert.Equal(t, "/thumbnails/2022/a.jpg", ThumbnailURL("/2022/a.jpg"))
	assert.Equal(t, "https://picsum.photos/420/420", ThumbnailURL("https://picsum.photos/420/420"))
	assert.Equal(t, "", ThumbnailURL(""))
}

func TestMediaTaken(t *testing.T) {
	m := Media{Date: "2022-01-28T10:01:02Z"}
	assert.Equal(t, time.Date(2022, time.January, 28, 10, 1, 2, 0, time.UTC), m.Taken())

	assert.True(t, Media{Date: "not a date"}.Taken().IsZero())
	assert.True(t, Media{}.Taken().IsZero())
}

func TestMediaTrimmedCaption(t *testing.T) {
	assert.Equal(t, "test caption", Media{Caption: "  test caption \n"}.TrimmedCaption())
}

func TestCollectionType(t *testing.T) {
	assert.True(t, CollectionTypeHashtag.Valid())
	assert.False(t, CollectionType("people").Valid())
	assert.Equal(t, "Timeline", CollectionTypeTimelineMonth.Label())
	assert.Equal(t, "people", CollectionType("people").Label())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
	assert.False(t, Session{}.Expired(now))
}
