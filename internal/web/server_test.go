package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"gigtrack-cli/internal/export"
	"gigtrack-cli/internal/store"
	"gigtrack-cli/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, names ...string) (http.Handler, *tracker.Controller) {
	t.Helper()
	st := store.New(&store.FileSlot{Dir: t.TempDir()}, "", nil)
	require.NoError(t, st.Load(context.Background()))
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	ctrl := tracker.New(st, tracker.Config{
		Currency: "USD",
		Now: func() time.Time {
			now = now.Add(time.Millisecond)
			return now
		},
	})
	for _, n := range names {
		_, _, err := ctrl.Submit(context.Background(), tracker.Form{Name: n, Deadline: "2024-01-12"})
		require.NoError(t, err)
	}
	srv, err := NewServer(ServerConfig{Controller: ctrl, DatastarURL: "-"})
	require.NoError(t, err)
	return srv.Handler(), ctrl
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHome_EmptyState(t *testing.T) {
	h, _ := newTestServer(t)
	rec := get(h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No projects yet.")
	assert.NotContains(t, rec.Body.String(), "<table class=\"projects\">")
}

func TestSubmit_CreatesAndRedirects(t *testing.T) {
	h, ctrl := newTestServer(t)
	rec := post(h, "/projects", url.Values{
		"name":       {"Logo <b>"},
		"deadline":   {"2024-01-11"},
		"myPayment":  {"1500"},
		"assignedTo": {""},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "notice=")

	ps := ctrl.Projects()
	require.Len(t, ps, 1)
	assert.Equal(t, "unspecified", ps[0].AssignedTo)

	body := get(h, "/").Body.String()
	assert.Contains(t, body, "Logo &lt;b&gt;")
	assert.Contains(t, body, "$1,500.00")
	assert.Contains(t, body, "1 day left")
}

func TestSubmit_MissingNameKeepsInput(t *testing.T) {
	h, ctrl := newTestServer(t)
	rec := post(h, "/projects", url.Values{"name": {"  "}, "assignedTo": {"Mona"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Mona"`)
	assert.Empty(t, ctrl.Projects())
}

func TestEditFlow(t *testing.T) {
	h, ctrl := newTestServer(t, "A", "B")
	id := ctrl.Projects()[1].ID

	rec := post(h, "/projects/1/edit", url.Values{"id": {strconv.FormatInt(id, 10)}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	body := get(h, "/").Body.String()
	assert.Contains(t, body, "Update project")
	assert.Contains(t, body, `value="B"`)

	rec = post(h, "/projects", url.Values{"name": {"B2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	ps := ctrl.Projects()
	require.Len(t, ps, 2)
	assert.Equal(t, "B2", ps[1].Name)
	assert.Equal(t, id, ps[1].ID)
	assert.NotContains(t, get(h, "/").Body.String(), "Update project")
}

func TestFlagOnFilteredView_TargetsCollectionPosition(t *testing.T) {
	h, ctrl := newTestServer(t, "Poster", "Alpha site", "Banner", "Alpha app")
	target := ctrl.Projects()[3]

	body := get(h, "/?q=alpha").Body.String()
	assert.Contains(t, body, `action="/projects/3/paid"`)
	assert.NotContains(t, body, "Banner")

	rec := post(h, "/projects/3/paid", url.Values{
		"id":    {strconv.FormatInt(target.ID, 10)},
		"value": {"on"},
		"q":     {"alpha"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?q=alpha", rec.Header().Get("Location"))

	ps := ctrl.Projects()
	assert.True(t, ps[3].Paid)
	assert.False(t, ps[1].Paid)

	rec = post(h, "/projects/3/delivered", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, ctrl.Projects()[3].Delivered)
}

func TestFlag_StaleIDConflicts(t *testing.T) {
	h, ctrl := newTestServer(t, "A", "B")
	other := ctrl.Projects()[0].ID
	rec := post(h, "/projects/1/paid", url.Values{"id": {strconv.FormatInt(other, 10)}, "value": {"on"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, ctrl.Projects()[1].Paid)
}

func TestFlag_BadInput(t *testing.T) {
	h, _ := newTestServer(t, "A")
	assert.Equal(t, http.StatusBadRequest, post(h, "/projects/0/paid", url.Values{"value": {"maybe"}}).Code)
	assert.Equal(t, http.StatusNotFound, post(h, "/projects/0/archived", url.Values{}).Code)
	assert.Equal(t, http.StatusNotFound, post(h, "/projects/7/paid", url.Values{"value": {"on"}}).Code)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	h, ctrl := newTestServer(t, "A", "B")

	rec := post(h, "/projects/0/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/projects/0/delete"))
	assert.Len(t, ctrl.Projects(), 2)

	page := get(h, "/projects/0/delete")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Delete project?")
	assert.Contains(t, page.Body.String(), `name="confirm" value="yes"`)

	rec = post(h, "/projects/0/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	ps := ctrl.Projects()
	require.Len(t, ps, 1)
	assert.Equal(t, "B", ps[0].Name)
}

func TestExport(t *testing.T) {
	h, ctrl := newTestServer(t)

	rec := get(h, "/export")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "notice=")

	_, _, err := ctrl.Submit(context.Background(), tracker.Form{Name: "Logo, v2"})
	require.NoError(t, err)

	rec = get(h, "/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="projects_2024-01-10.csv"`, rec.Header().Get("Content-Disposition"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, export.BOM))
	assert.Contains(t, body, `"Logo, v2"`)
}

func TestSearch_PatchesProjects(t *testing.T) {
	h, _ := newTestServer(t, "Poster", "Alpha app")
	q := url.Values{"datastar": {`{"q":"ALPHA"}`}}
	rec := get(h, "/search?"+q.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "#projects")
	assert.Contains(t, body, "Alpha app")
	assert.Contains(t, body, `/projects/1/paid`)
	assert.NotContains(t, body, "Poster")
}

func TestSummary(t *testing.T) {
	h, _ := newTestServer(t, "A")
	rec := get(h, "/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Contains(t, rec.Body.String(), "<table>")
}

func TestHealthAndCompression(t *testing.T) {
	h, _ := newTestServer(t, "A")
	rec := get(h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"projects":1}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	assert.Equal(t, http.StatusNotFound, get(h, "/nope").Code)
}
