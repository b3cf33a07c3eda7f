package apiclient

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"inari-web/internal/models"
)

var fixtureNamespace = uuid.MustParse("5f0c8a52-7b8e-4a8e-9f39-6c3f5b1d2e10")

func fixtureID(n int) string {
	return uuid.NewSHA1(fixtureNamespace, []byte(fmt.Sprintf("media-%d", n))).String()
}

func seedFixtures(m *MockClient) {
	leeds := &models.Location{
		Region:   "West Yorkshire",
		Locality: "Leeds",
		Country:  models.Country{Short: "GB", Long: "United Kingdom"},
		Coordinates: &models.Coordinates{
			Lat: 53.8700189722222,
			Lng: -1.561703,
		},
	}
	meanwood := &models.Location{
		Region:   "West Yorkshire",
		Locality: "Meanwood",
		Country:  models.Country{Short: "GB", Long: "United Kingdom"},
	}

	month1984 := models.Collection{ID: "1984-01", Title: "1984 January", Type: models.CollectionTypeTimelineMonth}
	inbox1984 := models.Collection{ID: "inbox-1984-01", Title: "inbox Jan 1984", Type: models.CollectionTypeInbox}
	month2022 := models.Collection{ID: "2022-01", Title: "2022 January", Type: models.CollectionTypeTimelineMonth}
	inbox2022 := models.Collection{ID: "inbox-2022-01", Title: "inbox Jan 2022", Type: models.CollectionTypeInbox}
	camera := models.Collection{ID: "apple-iphone-12", Title: "Apple iPhone 12", Type: models.CollectionTypeCamera}
	region := models.Collection{ID: "west-yorkshire-united-kingdom", Title: "West Yorkshire, United Kingdom", Type: models.CollectionTypePlacesRegion}
	country := models.Collection{ID: "united-kingdom", Title: "United Kingdom", Type: models.CollectionTypePlacesCountry}

	days1984 := []int{28, 28, 28, 28, 25, 25, 25, 2, 2}
	for i, day := range days1984 {
		m.Add(models.Media{
			ID:         fixtureID(i),
			Thumbnails: fixtureThumbnails(),
			Date:       time.Date(1984, time.January, day, 19, 0, 52, 0, time.UTC).Format(time.RFC3339),
			Caption:    "hello this is a good media!",
			Location:   leeds,
		}, month1984, inbox1984, region, country)
	}

	for i := 0; i < 3; i++ {
		m.Add(models.Media{
			ID:         fixtureID(100 + i),
			Thumbnails: fixtureThumbnails(),
			Date:       time.Date(2022, time.January, 28, 10, 1, 2+i, 0, time.UTC).Format(time.RFC3339),
			Caption:    "This is the caption",
			Location:   meanwood,
		}, month2022, inbox2022, camera, region, country)
	}
}

func fixtureThumbnails() models.Thumbnails {
	return models.Thumbnails{
		Small:  "placeholder/92x92.jpg",
		Medium: "placeholder/420x420.jpg",
		Large:  "placeholder/1080x600.jpg",
	}
}
