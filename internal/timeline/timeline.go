// Package timeline groups a month of media into per-day collections.
package timeline

import (
	"time"

	"inari-web/internal/gallery"
	"inari-web/internal/models"
)

const dayKeyLayout = "2006-01-02"

// GroupByDay sorts media chronologically and buckets it by calendar day in
// loc. Buckets come back in chronological order.
func GroupByDay(media []models.Media, loc *time.Location) []models.CollectionDetail {
	if loc == nil {
		loc = time.UTC
	}

	days := make([]models.CollectionDetail, 0)
	index := make(map[string]int)

	for _, m := range gallery.SortByDate(media) {
		taken := m.Taken().In(loc)
		key := taken.Format(dayKeyLayout)

		i, ok := index[key]
		if !ok {
			days = append(days, models.CollectionDetail{
				CollectionMeta: models.Collection{
					ID:    key,
					Title: models.FormatDayTitle(taken),
					Type:  models.CollectionTypeTimelineDay,
				},
			})
			i = len(days) - 1
			index[key] = i
		}

		days[i].Media = append(days[i].Media, m)
		days[i].CollectionMeta.MediaCount = len(days[i].Media)
	}

	return days
}
