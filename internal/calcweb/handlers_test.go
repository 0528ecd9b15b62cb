package calcweb

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-chi-calculator/internal/render"
	"go-chi-calculator/internal/session"
	"go-chi-calculator/internal/testutil"

	"github.com/go-chi/chi/v5"
)

const cookieName = "calc_session"

func newTestHandler(t *testing.T) (*Handler, *session.Store, http.Handler) {
	t.Helper()

	page, err := render.LoadPage()
	if err != nil {
		t.Fatalf("loading page: %v", err)
	}
	renderer, err := render.New("/")
	if err != nil {
		t.Fatalf("creating renderer: %v", err)
	}
	store := session.NewStore(page, renderer, time.Minute)
	h := NewHandler(store, cookieName)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return h, store, r
}

func TestPageIssuesCookieOnce(t *testing.T) {
	_, store, router := newTestHandler(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	cookie := testutil.FindCookie(w, cookieName)
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected text/html, got %q", ct)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w = testutil.ExecuteRequest(req, router)

	if testutil.FindCookie(w, cookieName) != nil {
		t.Fatal("did not expect a new cookie for a known session")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	_, store, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "evicted"})
	w := testutil.ExecuteRequest(req, router)

	cookie := testutil.FindCookie(w, cookieName)
	if cookie == nil || cookie.Value == "evicted" {
		t.Fatalf("expected a replacement cookie, got %+v", cookie)
	}
	if _, ok := store.Get(cookie.Value); !ok {
		t.Fatal("expected replacement session in store")
	}
}

func TestFormActionsRedirectToPage(t *testing.T) {
	_, store, router := newTestHandler(t)

	w := testutil.ExecuteRequest(testutil.NewFormRequest(http.MethodPost, "/session/open", nil), router)
	testutil.CheckResponseCode(t, http.StatusSeeOther, w.Code)
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}

	cookie := testutil.FindCookie(w, cookieName)
	s, ok := store.Get(cookie.Value)
	if !ok {
		t.Fatal("expected session in store")
	}
	if s.State() != session.SessionOpen {
		t.Fatalf("expected state %s, got %s", session.SessionOpen, s.State())
	}

	steps := []struct {
		path string
		form url.Values
	}{
		{"/session/calculate", url.Values{"x": {"3"}, "y": {"4"}, "op": {"+"}}},
		{"/session/calculate", url.Values{"x": {"x"}, "y": {"4"}, "op": {"+"}}},
		{"/session/key", url.Values{"field": {"second"}, "x": {"9"}, "y": {"0"}, "op": {"%"}}},
		{"/session/finish", nil},
		{"/session/finish", nil},
	}
	for _, step := range steps {
		w := testutil.ExecuteRequest(testutil.NewFormRequest(http.MethodPost, step.path, step.form, cookie), router)
		testutil.CheckResponseCode(t, http.StatusSeeOther, w.Code)
	}

	if s.State() != session.ResultsShown {
		t.Fatalf("expected state %s, got %s", session.ResultsShown, s.State())
	}
	if got := s.History().Len(); got != 2 {
		t.Fatalf("expected 2 records, got %d", got)
	}
	if got := s.History().ValidResults(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected valid results [7], got %v", got)
	}
}

func TestCancelClosesWithoutRendering(t *testing.T) {
	_, store, router := newTestHandler(t)

	w := testutil.ExecuteRequest(testutil.NewFormRequest(http.MethodPost, "/session/open", nil), router)
	cookie := testutil.FindCookie(w, cookieName)

	testutil.ExecuteRequest(testutil.NewFormRequest(http.MethodPost, "/session/cancel", nil, cookie), router)

	s, _ := store.Get(cookie.Value)
	if s.State() != session.Idle {
		t.Fatalf("expected state %s, got %s", session.Idle, s.State())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w = testutil.ExecuteRequest(req, router)
	if strings.Contains(w.Body.String(), render.BackHomeClass) {
		t.Fatal("expected no navigation link after cancel")
	}
}

func TestResetDropsSessionAndCookie(t *testing.T) {
	_, store, router := newTestHandler(t)

	w := testutil.ExecuteRequest(testutil.NewFormRequest(http.MethodPost, "/session/open", nil), router)
	cookie := testutil.FindCookie(w, cookieName)
	testutil.ExecuteRequest(testutil.NewFormRequest(http.MethodPost, "/session/calculate",
		url.Values{"x": {"1"}, "y": {"2"}, "op": {"+"}}, cookie), router)

	w = testutil.ExecuteRequest(testutil.NewFormRequest(http.MethodPost, "/session/reset", nil, cookie), router)
	testutil.CheckResponseCode(t, http.StatusSeeOther, w.Code)

	if _, ok := store.Get(cookie.Value); ok {
		t.Fatal("expected session to be dropped")
	}
	if c := testutil.FindCookie(w, cookieName); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected an expired cookie, got %+v", c)
	}

	// A reset without any session is harmless.
	w = testutil.ExecuteRequest(testutil.NewFormRequest(http.MethodPost, "/session/reset", nil), router)
	testutil.CheckResponseCode(t, http.StatusSeeOther, w.Code)
	if store.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", store.Len())
	}
}

func TestAPIResetClearsHistory(t *testing.T) {
	_, store, router := newTestHandler(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/api/session/open", nil), router)
	cookie := testutil.FindCookie(w, cookieName)

	req := httptest.NewRequest(http.MethodPost, "/api/session/reset", nil)
	req.AddCookie(cookie)
	w = testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	if store.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", store.Len())
	}
}

func TestAPISubmitStatuses(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/api/session/open", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	cookie := testutil.FindCookie(w, cookieName)

	tests := []struct {
		body string
		want int
	}{
		{`{"x":"3","y":"4","op":"+"}`, http.StatusCreated},
		{`{"x":"1","y":"0","op":"/"}`, http.StatusCreated},
		{`{"x":"1","y":"1","op":"^"}`, http.StatusCreated},
		{`{"x":" ","y":"1","op":"+"}`, http.StatusUnprocessableEntity},
		{`not json`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/calculations", strings.NewReader(tc.body))
		req.AddCookie(cookie)
		w := testutil.ExecuteRequest(req, router)
		testutil.CheckResponseCode(t, tc.want, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.AddCookie(cookie)
	w = testutil.ExecuteRequest(req, router)

	var history HistoryResponse
	testutil.DecodeJSONBody(t, w.Body, &history)

	if len(history.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(history.Records))
	}
	if r := history.Records[0]; r.Result == nil || *r.Result != 7 || r.Error != "" {
		t.Fatalf("unexpected first record %+v", r)
	}
	if r := history.Records[1]; r.Result != nil || r.Error != "Error: Division by zero" || r.Symbol != "÷" {
		t.Fatalf("unexpected second record %+v", r)
	}
	if r := history.Records[2]; r.Error != "Error: Invalid operator" || r.Op != "^" {
		t.Fatalf("unexpected third record %+v", r)
	}
	if len(history.ValidResults) != 1 || history.ValidResults[0] != 7 {
		t.Fatalf("expected valid results [7], got %v", history.ValidResults)
	}
}
