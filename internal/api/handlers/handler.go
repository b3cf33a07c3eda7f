package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inari-web/internal/apiclient"
	"inari-web/internal/auth"
	"inari-web/internal/metrics"
	"inari-web/internal/models"
	"inari-web/internal/thumbnails"
	"inari-web/internal/websocket"
)

// Handler serves the pages and form actions of the web front-end
type Handler struct {
	client   apiclient.Client
	thumbs   *thumbnails.Service
	ws       *websocket.Manager
	gate     *auth.Gate
	metrics  *metrics.Collector
	logger   *zap.Logger
	loc      *time.Location
	pageSize int
}

// Options carries the collaborators of a Handler
type Options struct {
	Client     apiclient.Client
	Thumbnails *thumbnails.Service
	Websocket  *websocket.Manager
	Gate       *auth.Gate
	Metrics    *metrics.Collector
	Logger     *zap.Logger
	Location   *time.Location
	PageSize   int
}

func New(opts Options) *Handler {
	h := &Handler{
		client:   opts.Client,
		thumbs:   opts.Thumbnails,
		ws:       opts.Websocket,
		gate:     opts.Gate,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		loc:      opts.Location,
		pageSize: opts.PageSize,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	return h
}

// NavItem is one entry of the navigation bar
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

var navEntries = []struct {
	label string
	typ   models.CollectionType
	href  string
}{
	{"Timeline", models.CollectionTypeTimelineMonth, "/"},
	{"Inbox", models.CollectionTypeInbox, "/collections/inbox"},
	{"Cameras", models.CollectionTypeCamera, "/collections/camera"},
	{"Places", models.CollectionTypePlacesCountry, "/collections/places_country"},
	{"Hashtags", models.CollectionTypeHashtag, "/collections/hashtag"},
}

// Page is the data every template shares
type Page struct {
	Title       string
	Nav         []NavItem
	Subject     string
	AuthEnabled bool
	Flash       string
	LiveRefresh bool
}

func (h *Handler) page(c *gin.Context, title string, active models.CollectionType) Page {
	nav := make([]NavItem, 0, len(navEntries))
	for _, e := range navEntries {
		nav = append(nav, NavItem{Label: e.label, Href: e.href, Active: e.typ == active})
	}

	subject := auth.Subject(c)
	return Page{
		Title:       title,
		Nav:         nav,
		Subject:     subject,
		AuthEnabled: h.gate != nil && h.gate.Enabled() && subject != "",
		Flash:       flashMessage(c.Query("notice")),
		LiveRefresh: h.ws != nil && subject != "",
	}
}

var notices = map[string]string{
	"empty-hashtag":   "Hashtag is empty: use letters or digits.",
	"caption-updated": "Caption saved.",
	"hashtag-added":   "Hashtag added.",
	"deleted":         "Media deleted.",
}

func flashMessage(code string) string {
	return notices[code]
}

type errorPage struct {
	Page
	Status  int
	Message string
}

func (h *Handler) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error", errorPage{
		Page:    h.page(c, http.StatusText(status), ""),
		Status:  status,
		Message: message,
	})
}

// handleAPIError maps API failures onto pages
func (h *Handler) handleAPIError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, apiclient.ErrNotFound):
		h.renderError(c, http.StatusNotFound, "Not found.")
	case errors.Is(err, apiclient.ErrUnauthorized):
		if h.gate != nil && h.gate.Enabled() {
			h.gate.EndSession(c)
			next := "/"
			if c.Request.Method == http.MethodGet {
				next = c.Request.URL.RequestURI()
			}
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(next))
			return
		}
		h.renderError(c, http.StatusUnauthorized, "The API refused the request.")
	case errors.Is(err, apiclient.ErrUnavailable):
		h.renderError(c, http.StatusServiceUnavailable, "The photo library is unavailable, try again shortly.")
	default:
		h.logger.Error("api call failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		h.renderError(c, http.StatusBadGateway, "failed to load")
	}
}

// notify tells the subject's other tabs about an edit
func (h *Handler) notify(c *gin.Context, kind websocket.NotificationType, mediaID string) {
	if h.metrics != nil {
		h.metrics.Edits.WithLabelValues(string(kind)).Inc()
	}
	if h.ws == nil {
		return
	}
	h.ws.Notify(auth.Subject(c), kind, mediaID, c.PostForm("tab"))
}

// HealthCheck handles liveness probes
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
