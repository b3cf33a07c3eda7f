package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"inari-web/internal/api/handlers"
	"inari-web/internal/api/views"
	"inari-web/internal/apiclient"
	"inari-web/internal/auth"
	"inari-web/internal/gallery"
	"inari-web/internal/metrics"
	"inari-web/internal/models"
	"inari-web/internal/storage"
	"inari-web/internal/thumbnails"
	"inari-web/internal/websocket"
)

// spyClient records calls made through the mock
type spyClient struct {
	*apiclient.MockClient

	mu       sync.Mutex
	tokens   []string
	hashtags []string
}

func (s *spyClient) ListCollections(ctx context.Context, t models.CollectionType) ([]models.Collection, error) {
	s.mu.Lock()
	s.tokens = append(s.tokens, apiclient.TokenFrom(ctx))
	s.mu.Unlock()
	return s.MockClient.ListCollections(ctx, t)
}

func (s *spyClient) AddHashtag(ctx context.Context, mediaID, tag string) error {
	s.mu.Lock()
	s.hashtags = append(s.hashtags, tag)
	s.mu.Unlock()
	return s.MockClient.AddHashtag(ctx, mediaID, tag)
}

// failingClient fails every call with err
type failingClient struct {
	err error
}

func (f failingClient) ListCollections(context.Context, models.CollectionType) ([]models.Collection, error) {
	return nil, f.err
}
func (f failingClient) CollectionDetail(context.Context, string) (models.CollectionDetail, error) {
	return models.CollectionDetail{}, f.err
}
func (f failingClient) MediaDetail(context.Context, string) (models.MediaDetail, error) {
	return models.MediaDetail{}, f.err
}
func (f failingClient) DeleteMedia(context.Context, string) error           { return f.err }
func (f failingClient) UpdateCaption(context.Context, string, string) error { return f.err }
func (f failingClient) AddHashtag(context.Context, string, string) error    { return f.err }

func newSpyClient() *spyClient {
	return &spyClient{MockClient: apiclient.NewMockClient()}
}

func setupRouter(t *testing.T, client apiclient.Client, gate *auth.Gate) (*gin.Engine, *metrics.Collector) {
	t.Helper()
	ws := websocket.NewManager(nil)
	t.Cleanup(ws.Close)
	return setupRouterWithManager(t, client, gate, ws)
}

func setupRouterWithManager(t *testing.T, client apiclient.Client, gate *auth.Gate, ws *websocket.Manager) (*gin.Engine, *metrics.Collector) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if gate == nil {
		gate = auth.NewGate("none", auth.NewMemoryStore(), auth.CookieSettings{Name: "inari_session", TTL: time.Hour}, nil)
	}

	renderer, err := views.Load(time.UTC)
	require.NoError(t, err)

	collector := metrics.NewCollector("inari")
	h := handlers.New(handlers.Options{
		Client:     client,
		Thumbnails: thumbnails.NewService(storage.NewPlaceholderStorage(), time.Minute, nil),
		Websocket:  ws,
		Gate:       gate,
		Metrics:    collector,
		Logger:     zap.NewNop(),
		Location:   time.UTC,
		PageSize:   40,
	})

	return NewRouter(h, renderer, gate, collector, zap.NewNop()), collector
}

func serve(router *gin.Engine, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req, _ = http.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sortedIDs(t *testing.T, client apiclient.Client, collectionID string) []string {
	t.Helper()
	detail, err := client.CollectionDetail(context.Background(), collectionID)
	require.NoError(t, err)
	var ids []string
	for _, m := range gallery.SortByDate(detail.Media) {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestTimeline(t *testing.T) {
	router, _ := setupRouter(t, newSpyClient(), nil)

	w := serve(router, "GET", "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "1984 January")
	assert.Contains(t, body, `href="/collection/2022-01"`)
	for _, label := range []string{"Timeline", "Inbox", "Cameras", "Places", "Hashtags"} {
		assert.Contains(t, body, ">"+label+"</a>")
	}
}

func TestListCollections(t *testing.T) {
	router, _ := setupRouter(t, newSpyClient(), nil)

	w := serve(router, "GET", "/collections/camera", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Apple iPhone 12")

	w = serve(router, "GET", "/collections/albums", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCollectionGrid(t *testing.T) {
	router, _ := setupRouter(t, newSpyClient(), nil)

	w := serve(router, "GET", "/collection/1984-01", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	second := strings.Index(body, "Mon, 2nd Jan")
	twentyFifth := strings.Index(body, "Wed, 25th Jan")
	twentyEighth := strings.Index(body, "Sat, 28th Jan")
	require.True(t, second > 0 && twentyFifth > 0 && twentyEighth > 0)
	assert.True(t, second < twentyFifth && twentyFifth < twentyEighth, "days are in chronological order")
	assert.Contains(t, body, `src="/thumbnails/placeholder/420x420.jpg"`)
	assert.NotContains(t, body, "Page 1 of")
}

func TestCollectionGrid_Pagination(t *testing.T) {
	router, _ := setupRouter(t, newSpyClient(), nil)

	w := serve(router, "GET", "/collection/1984-01?limit=4&page=3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Page 3 of 3")
	assert.Contains(t, body, "Sat, 28th Jan")
	assert.NotContains(t, body, "Mon, 2nd Jan")
	assert.Contains(t, body, "Sat, 28th Jan <small>4</small>", "day count covers the whole day")

	w = serve(router, "GET", "/collection/1984-01?limit=4&page=1", nil)
	assert.Contains(t, w.Body.String(), "Wed, 25th Jan <small>3</small>")

	w = serve(router, "GET", "/collection/1984-01?limit=4&page=99", nil)
	assert.Contains(t, w.Body.String(), "Page 3 of 3")
}

func TestCollectionGrid_NotFound(t *testing.T) {
	router, _ := setupRouter(t, newSpyClient(), nil)

	w := serve(router, "GET", "/collection/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestViewMedia(t *testing.T) {
	client := newSpyClient()
	router, _ := setupRouter(t, client, nil)
	ids := sortedIDs(t, client, "1984-01")

	w := serve(router, "GET", "/collection/1984-01/media/"+ids[2], nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, "3 / 9")
	assert.Contains(t, body, `href="/collection/1984-01/media/`+ids[1]+`">Previous`)
	assert.Contains(t, body, `href="/collection/1984-01/media/`+ids[3]+`">Next`)
	assert.Contains(t, body, `alt="hello this is a good media!"`)
	assert.Contains(t, body, "Wed, 25th Jan 1984 19:00:52")
	assert.Contains(t, body, "Leeds, West Yorkshire, United Kingdom")
	assert.Contains(t, body, `src="/thumbnails/placeholder/1080x600.jpg"`)

	w = serve(router, "GET", "/collection/1984-01/media/"+ids[0], nil)
	assert.NotContains(t, w.Body.String(), ">Previous")

	w = serve(router, "GET", "/collection/1984-01/media/"+ids[8], nil)
	assert.NotContains(t, w.Body.String(), ">Next")

	w = serve(router, "GET", "/collection/1984-01/media/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteInCollection(t *testing.T) {
	client := newSpyClient()
	router, _ := setupRouter(t, client, nil)
	ids := sortedIDs(t, client, "1984-01")

	w := serve(router, "POST", "/collection/1984-01/media/"+ids[2]+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/collection/1984-01/media/"+ids[3]+"?notice=deleted", w.Header().Get("Location"))
	assert.Len(t, sortedIDs(t, client, "1984-01"), 8)

	w = serve(router, "POST", "/collection/1984-01/media/"+ids[8]+"/delete", url.Values{})
	assert.Equal(t, "/collection/1984-01/media/"+ids[7]+"?notice=deleted", w.Header().Get("Location"))

	w = serve(router, "GET", "/metrics", nil)
	assert.Contains(t, w.Body.String(), `inari_media_edits_total{kind="media_deleted"} 2`)
}

func TestDeleteLastItemReturnsToGrid(t *testing.T) {
	client := &spyClient{MockClient: apiclient.NewEmptyMockClient()}
	client.Add(models.Media{ID: "only", Date: "2022-01-01T00:00:00Z"},
		models.Collection{ID: "2022-01", Title: "2022 January", Type: models.CollectionTypeTimelineMonth})
	router, _ := setupRouter(t, client, nil)

	w := serve(router, "POST", "/collection/2022-01/media/only/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/collection/2022-01?notice=deleted", w.Header().Get("Location"))
}

func TestCaption(t *testing.T) {
	client := newSpyClient()
	router, _ := setupRouter(t, client, nil)
	ids := sortedIDs(t, client, "1984-01")
	viewer := "/collection/1984-01/media/" + ids[0]

	w := serve(router, "POST", viewer+"/caption", url.Values{"caption": {"  a new caption "}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, viewer+"?notice=caption-updated", w.Header().Get("Location"))

	w = serve(router, "GET", w.Header().Get("Location"), nil)
	body := w.Body.String()
	assert.Contains(t, body, `alt="a new caption"`)
	assert.Contains(t, body, "Caption saved.")
}

func TestHashtag(t *testing.T) {
	client := newSpyClient()
	router, _ := setupRouter(t, client, nil)
	ids := sortedIDs(t, client, "1984-01")
	viewer := "/collection/1984-01/media/" + ids[0]

	w := serve(router, "POST", viewer+"/hashtag", url.Values{"hashtag": {"h@e# ()l#l"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, viewer+"?notice=hashtag-added", w.Header().Get("Location"))
	assert.Equal(t, []string{"hell"}, client.hashtags)

	w = serve(router, "GET", "/collections/hashtag", nil)
	assert.Contains(t, w.Body.String(), "#hell")
}

func TestHashtag_EmptyIsRejected(t *testing.T) {
	client := newSpyClient()
	router, _ := setupRouter(t, client, nil)
	ids := sortedIDs(t, client, "1984-01")
	viewer := "/collection/1984-01/media/" + ids[0]

	w := serve(router, "POST", viewer+"/hashtag", url.Values{"hashtag": {"#@! "}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, viewer+"?notice=empty-hashtag", w.Header().Get("Location"))
	assert.Empty(t, client.hashtags)

	w = serve(router, "GET", w.Header().Get("Location"), nil)
	assert.Contains(t, w.Body.String(), "Hashtag is empty")
}

func TestMediaDetail(t *testing.T) {
	client := newSpyClient()
	router, _ := setupRouter(t, client, nil)
	ids := sortedIDs(t, client, "2022-01")

	w := serve(router, "GET", "/media/"+ids[0], nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Meanwood, West Yorkshire, United Kingdom")
	assert.Contains(t, body, `href="/collection/apple-iphone-12"`)
	assert.Contains(t, body, `action="/media/`+ids[0]+`/caption"`)

	w = serve(router, "POST", "/media/"+ids[0]+"/caption", url.Values{"caption": {"hi"}})
	assert.Equal(t, "/media/"+ids[0]+"?notice=caption-updated", w.Header().Get("Location"))

	w = serve(router, "POST", "/media/"+ids[0]+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?notice=deleted", w.Header().Get("Location"))

	w = serve(router, "GET", "/media/"+ids[0], nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		text   string
	}{
		{apiclient.ErrNotFound, http.StatusNotFound, "Not found."},
		{apiclient.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{&apiclient.StatusError{Op: "list collections", StatusCode: 500}, http.StatusBadGateway, "failed to load"},
		{apiclient.ErrUnauthorized, http.StatusUnauthorized, "refused"},
	}

	for _, tt := range tests {
		router, _ := setupRouter(t, failingClient{err: tt.err}, nil)
		w := serve(router, "GET", "/", nil)
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
		assert.Contains(t, w.Body.String(), tt.text)
	}
}

func TestThumbnails(t *testing.T) {
	router, _ := setupRouter(t, newSpyClient(), nil)

	w := serve(router, "GET", "/thumbnails/placeholder/92x92.jpg", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	w = serve(router, "GET", "/thumbnails/placeholder/92x92.jpg?w=10&format=png", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = serve(router, "GET", "/thumbnails/placeholder/92x92.jpg?fit=squash", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, "GET", "/thumbnails/placeholder/92x92.jpg?fit=cover", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, "GET", "/thumbnails/elsewhere/a.jpg", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := setupRouter(t, newSpyClient(), nil)

	w := serve(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())

	w = serve(router, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `inari_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func setupLocalGate(t *testing.T) *auth.Gate {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	gate := auth.NewGate("local", auth.NewMemoryStore(), auth.CookieSettings{Name: "inari_session", TTL: time.Hour}, nil)
	gate.Local = auth.NewLocalProvider("jay", string(hash), "test_key", time.Hour)
	return gate
}

func TestLocalLogin(t *testing.T) {
	client := newSpyClient()
	router, _ := setupRouter(t, client, setupLocalGate(t))

	w := serve(router, "GET", "/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2F", w.Header().Get("Location"))

	w = serve(router, "GET", "/login?next=%2Fcollections%2Finbox", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="login-user-name"`)

	w = serve(router, "POST", "/login", url.Values{"username": {"jay"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")

	w = serve(router, "POST", "/login", url.Values{
		"username": {"jay"},
		"password": {"password123"},
		"next":     {"/collections/inbox"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/collections/inbox", w.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "inari_session" {
			session = c
		}
	}
	require.NotNil(t, session)

	w = serve(router, "GET", "/", nil, session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Log out jay")
	require.Len(t, client.tokens, 1)
	assert.NotEmpty(t, client.tokens[0], "the session token is sent to the API")

	w = serve(router, "POST", "/logout", url.Values{}, session)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = serve(router, "GET", "/", nil, session)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestUnauthorizedAPIEndsSession(t *testing.T) {
	gate := setupLocalGate(t)
	router, _ := setupRouter(t, failingClient{err: apiclient.ErrUnauthorized}, gate)

	w := serve(router, "POST", "/login", url.Values{"username": {"jay"}, "password": {"password123"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	session := w.Result().Cookies()[0]

	w = serve(router, "GET", "/collections/inbox", nil, session)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fcollections%2Finbox", w.Header().Get("Location"))

	w = serve(router, "GET", "/", nil, session)
	assert.Equal(t, http.StatusFound, w.Code, "session was removed")
}

func TestLiveRefresh_NotifiesOtherTabs(t *testing.T) {
	client := newSpyClient()
	ws := websocket.NewManager(nil)
	t.Cleanup(ws.Close)
	router, _ := setupRouterWithManager(t, client, nil, ws)

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?tab="
	editor, _, err := gorillaws.DefaultDialer.Dial(wsURL+"tab-a", nil)
	require.NoError(t, err)
	defer editor.Close()
	other, _, err := gorillaws.DefaultDialer.Dial(wsURL+"tab-b", nil)
	require.NoError(t, err)
	defer other.Close()

	require.Eventually(t, func() bool { return ws.Connected(auth.DevSubject) == 2 }, time.Second, 10*time.Millisecond)

	ids := sortedIDs(t, client, "1984-01")
	resp, err := http.PostForm(server.URL+"/collection/1984-01/media/"+ids[0]+"/caption",
		url.Values{"caption": {"new caption"}, "tab": {"tab-a"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	other.SetReadDeadline(time.Now().Add(time.Second))
	var n websocket.Notification
	require.NoError(t, other.ReadJSON(&n))
	assert.Equal(t, websocket.CaptionUpdated, n.Type)
	assert.Equal(t, ids[0], n.MediaID)
	assert.Equal(t, "tab-a", n.Origin)

	editor.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = editor.ReadMessage()
	assert.Error(t, err, "the editing tab is not notified")
}
