package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inari-web/internal/gallery"
	"inari-web/internal/models"
	"inari-web/internal/timeline"
)

type collectionsPage struct {
	Page
	Heading     string
	Type        models.CollectionType
	Collections []models.Collection
}

// Timeline lists the months
func (h *Handler) Timeline(c *gin.Context) {
	h.listCollections(c, models.CollectionTypeTimelineMonth)
}

// ListCollections lists the collections of the :type parameter
func (h *Handler) ListCollections(c *gin.Context) {
	collectionType := models.CollectionType(c.Param("type"))
	if !collectionType.Valid() {
		h.renderError(c, http.StatusNotFound, "Unknown collection type.")
		return
	}
	h.listCollections(c, collectionType)
}

func (h *Handler) listCollections(c *gin.Context, collectionType models.CollectionType) {
	collections, err := h.client.ListCollections(c.Request.Context(), collectionType)
	if err != nil {
		h.handleAPIError(c, err)
		return
	}

	label := collectionType.Label()
	c.HTML(http.StatusOK, "collections", collectionsPage{
		Page:        h.page(c, label, navType(collectionType)),
		Heading:     label,
		Type:        collectionType,
		Collections: collections,
	})
}

// navType maps a collection type onto the nav entry that shows it
func navType(t models.CollectionType) models.CollectionType {
	switch t {
	case models.CollectionTypePlacesRegion:
		return models.CollectionTypePlacesCountry
	case models.CollectionTypeTimelineDay:
		return models.CollectionTypeTimelineMonth
	}
	return t
}

type collectionPage struct {
	Page
	Collection models.Collection
	Days       []models.CollectionDetail
	Pager      gallery.Page
}

// CollectionGrid shows one page of a collection grouped by day
func (h *Handler) CollectionGrid(c *gin.Context) {
	detail, err := h.client.CollectionDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAPIError(c, err)
		return
	}

	pageNumber := queryInt(c, "page", 1)
	limit := clampLimit(queryInt(c, "limit", h.pageSize))

	sorted := gallery.SortByDate(detail.Media)
	pager := gallery.Paginate(sorted, pageNumber, limit)

	c.HTML(http.StatusOK, "collection", collectionPage{
		Page:       h.page(c, detail.CollectionMeta.Title, navType(detail.CollectionMeta.Type)),
		Collection: detail.CollectionMeta,
		Days:       pageDays(sorted, pager.Items, h.loc),
		Pager:      pager,
	})
}

// pageDays groups the items of one page by day. A day that spans pages
// keeps the media count of the whole day.
func pageDays(all, items []models.Media, loc *time.Location) []models.CollectionDetail {
	totals := make(map[string]int)
	for _, day := range timeline.GroupByDay(all, loc) {
		totals[day.CollectionMeta.ID] = day.CollectionMeta.MediaCount
	}

	days := timeline.GroupByDay(items, loc)
	for i := range days {
		days[i].CollectionMeta.MediaCount = totals[days[i].CollectionMeta.ID]
	}
	return days
}

const maxPageSize = 200

func clampLimit(limit int) int {
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
