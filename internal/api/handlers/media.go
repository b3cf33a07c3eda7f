package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"inari-web/internal/gallery"
	"inari-web/internal/hashtag"
	"inari-web/internal/models"
	"inari-web/internal/websocket"
)

// CardData feeds the media-card template
type CardData struct {
	Media    models.Media
	EditBase string
}

type viewerPage struct {
	Page
	Collection models.Collection
	Card       CardData
	Position   int
	Total      int
	PrevHref   string
	NextHref   string
	CloseHref  string
}

func collectionHref(collectionID string) string {
	return "/collection/" + url.PathEscape(collectionID)
}

func viewerHref(collectionID, mediaID string) string {
	return collectionHref(collectionID) + "/media/" + url.PathEscape(mediaID)
}

func mediaHref(mediaID string) string {
	return "/media/" + url.PathEscape(mediaID)
}

func withNotice(href, notice string) string {
	return href + "?notice=" + url.QueryEscape(notice)
}

// ViewMedia shows a single item of a collection with prev/next navigation
func (h *Handler) ViewMedia(c *gin.Context) {
	collectionID, mediaID := c.Param("id"), c.Param("mediaid")

	detail, err := h.client.CollectionDetail(c.Request.Context(), collectionID)
	if err != nil {
		h.handleAPIError(c, err)
		return
	}

	model := gallery.New(gallery.SortByDate(detail.Media), mediaID)
	current, ok := model.Current()
	if !ok {
		h.renderError(c, http.StatusNotFound, "Media is not in this collection.")
		return
	}

	perPage := h.pageSize
	if perPage <= 0 {
		perPage = gallery.DefaultPerPage
	}

	page := viewerPage{
		Page:       h.page(c, detail.CollectionMeta.Title, navType(detail.CollectionMeta.Type)),
		Collection: detail.CollectionMeta,
		Card:       CardData{Media: current, EditBase: viewerHref(collectionID, mediaID)},
		Position:   model.Position(),
		Total:      model.Len(),
		CloseHref:  fmt.Sprintf("%s?page=%d", collectionHref(collectionID), gallery.PageOf(model.Position(), perPage)),
	}
	if prev, ok := model.PrevItem(); ok {
		page.PrevHref = viewerHref(collectionID, prev.ID)
	}
	if next, ok := model.NextItem(); ok {
		page.NextHref = viewerHref(collectionID, next.ID)
	}

	c.HTML(http.StatusOK, "viewer", page)
}

// DeleteInCollection deletes the item and moves to its neighbour
func (h *Handler) DeleteInCollection(c *gin.Context) {
	collectionID, mediaID := c.Param("id"), c.Param("mediaid")
	ctx := c.Request.Context()

	detail, err := h.client.CollectionDetail(ctx, collectionID)
	if err != nil {
		h.handleAPIError(c, err)
		return
	}

	if err := h.client.DeleteMedia(ctx, mediaID); err != nil {
		h.handleAPIError(c, err)
		return
	}
	h.notify(c, websocket.MediaDeleted, mediaID)

	model := gallery.New(gallery.SortByDate(detail.Media), mediaID).Delete(mediaID)
	if current, ok := model.Current(); ok {
		c.Redirect(http.StatusSeeOther, withNotice(viewerHref(collectionID, current.ID), "deleted"))
		return
	}
	c.Redirect(http.StatusSeeOther, withNotice(collectionHref(collectionID), "deleted"))
}

// CaptionInCollection updates the caption from the viewer
func (h *Handler) CaptionInCollection(c *gin.Context) {
	h.updateCaption(c, c.Param("mediaid"), viewerHref(c.Param("id"), c.Param("mediaid")))
}

// HashtagInCollection adds a hashtag from the viewer
func (h *Handler) HashtagInCollection(c *gin.Context) {
	h.addHashtag(c, c.Param("mediaid"), viewerHref(c.Param("id"), c.Param("mediaid")))
}

type mediaPage struct {
	Page
	Card CardData
}

// MediaDetail shows a single item outside any collection
func (h *Handler) MediaDetail(c *gin.Context) {
	mediaID := c.Param("id")

	detail, err := h.client.MediaDetail(c.Request.Context(), mediaID)
	if err != nil {
		h.handleAPIError(c, err)
		return
	}

	title := detail.Media.TrimmedCaption()
	if title == "" {
		title = "Media"
	}
	c.HTML(http.StatusOK, "media", mediaPage{
		Page: h.page(c, title, ""),
		Card: CardData{Media: detail.Media, EditBase: mediaHref(mediaID)},
	})
}

// DeleteMedia deletes from the detail page and returns to the timeline
func (h *Handler) DeleteMedia(c *gin.Context) {
	mediaID := c.Param("id")
	if err := h.client.DeleteMedia(c.Request.Context(), mediaID); err != nil {
		h.handleAPIError(c, err)
		return
	}
	h.notify(c, websocket.MediaDeleted, mediaID)
	c.Redirect(http.StatusSeeOther, withNotice("/", "deleted"))
}

func (h *Handler) UpdateCaption(c *gin.Context) {
	h.updateCaption(c, c.Param("id"), mediaHref(c.Param("id")))
}

func (h *Handler) AddHashtag(c *gin.Context) {
	h.addHashtag(c, c.Param("id"), mediaHref(c.Param("id")))
}

func (h *Handler) updateCaption(c *gin.Context, mediaID, back string) {
	caption := c.PostForm("caption")
	if err := h.client.UpdateCaption(c.Request.Context(), mediaID, caption); err != nil {
		h.handleAPIError(c, err)
		return
	}
	h.notify(c, websocket.CaptionUpdated, mediaID)
	c.Redirect(http.StatusSeeOther, withNotice(back, "caption-updated"))
}

// addHashtag never calls the API with an empty tag
func (h *Handler) addHashtag(c *gin.Context, mediaID, back string) {
	tag := hashtag.Sanitize(c.PostForm("hashtag"))
	if tag == "" {
		c.Redirect(http.StatusSeeOther, withNotice(back, "empty-hashtag"))
		return
	}

	if err := h.client.AddHashtag(c.Request.Context(), mediaID, tag); err != nil {
		h.handleAPIError(c, err)
		return
	}
	h.notify(c, websocket.HashtagAdded, mediaID)
	c.Redirect(http.StatusSeeOther, withNotice(back, "hashtag-added"))
}
