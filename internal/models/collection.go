package models

// CollectionType names the grouping a collection was built from
type CollectionType string

const (
	CollectionTypeInbox         CollectionType = "inbox"
	CollectionTypeCamera        CollectionType = "camera"
	CollectionTypeTimelineMonth CollectionType = "timeline_month"
	CollectionTypeTimelineDay   CollectionType = "timeline_day"
	CollectionTypePlacesCountry CollectionType = "places_country"
	CollectionTypePlacesRegion  CollectionType = "places_region"
	CollectionTypeHashtag       CollectionType = "hashtag"
)

// CollectionTypes lists every known type in navigation order
var CollectionTypes = []CollectionType{
	CollectionTypeTimelineMonth,
	CollectionTypeInbox,
	CollectionTypeCamera,
	CollectionTypePlacesCountry,
	CollectionTypePlacesRegion,
	CollectionTypeHashtag,
	CollectionTypeTimelineDay,
}

var collectionTypeLabels = map[CollectionType]string{
	CollectionTypeInbox:         "Inbox",
	CollectionTypeCamera:        "Cameras",
	CollectionTypeTimelineMonth: "Timeline",
	CollectionTypeTimelineDay:   "Days",
	CollectionTypePlacesCountry: "Countries",
	CollectionTypePlacesRegion:  "Places",
	CollectionTypeHashtag:       "Hashtags",
}

// Valid reports whether t is one of the known collection types
func (t CollectionType) Valid() bool {
	_, ok := collectionTypeLabels[t]
	return ok
}

// Label returns the human readable name used in navigation
func (t CollectionType) Label() string {
	if l, ok := collectionTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Collection is a named, typed grouping of media
type Collection struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	MediaCount int            `json:"media_count"`
	Type       CollectionType `json:"type"`
}

// CollectionDetail is a collection together with its ordered media
type CollectionDetail struct {
	CollectionMeta Collection `json:"collection_meta"`
	Media          []Media    `json:"media"`
}
