package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/onboarding"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/renderers/html"
	"github.com/goliatone/go-stepform/pkg/renderers/jsonview"
	"github.com/goliatone/go-stepform/pkg/submit"
	"github.com/goliatone/go-stepform/pkg/testsupport"
	"github.com/goliatone/go-stepform/pkg/timeout"
	"github.com/goliatone/go-stepform/pkg/wizard"
)

type fakeFlows struct {
	mu        sync.Mutex
	submitted []field.Values
	params    []onboarding.Params
	err       error
}

func (f *fakeFlows) Has(name string) bool {
	return name == onboarding.FlowAddress || name == onboarding.FlowMisc
}

func (f *fakeFlows) Build(_ context.Context, name string, p onboarding.Params) (onboarding.Flow, error) {
	f.mu.Lock()
	f.params = append(f.params, p)
	f.mu.Unlock()

	action := func(_ context.Context, values field.Values) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.submitted = append(f.submitted, values)
		return f.err
	}
	switch name {
	case onboarding.FlowAddress:
		return onboarding.Flow{
			Name:  name,
			Title: "Where do you live?",
			Steps: []wizard.StepDescriptor{
				{Fields: []field.Descriptor{field.Text{Props: field.Props{Name: "city", Label: "City", Required: true}}}},
				{Fields: []field.Descriptor{field.Text{Props: field.Props{Name: "zip", Label: "Zip Code", Required: true}}}},
			},
			Action:   action,
			NextPage: submit.StaticPage(p.NextPage),
		}, nil
	default:
		return onboarding.Flow{
			Name: name,
			Steps: []wizard.StepDescriptor{
				{Fields: []field.Descriptor{field.Binary{Props: field.Props{Name: "has_health", Label: "Do you have health insurance?"}}}},
			},
			Action:   action,
			NextPage: submit.StaticPage(p.NextPage),
		}, nil
	}
}

func (f *fakeFlows) calls() ([]field.Values, []onboarding.Params) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]field.Values(nil), f.submitted...), append([]onboarding.Params(nil), f.params...)
}

type harness struct {
	t      *testing.T
	flows  *fakeFlows
	clock  *testsupport.ManualClock
	srv    *Server
	server *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	registry := render.NewRegistry()
	htmlRenderer, err := html.New()
	if err != nil {
		t.Fatalf("html renderer: %v", err)
	}
	registry.MustRegister(htmlRenderer)
	registry.MustRegister(jsonview.New())

	flows := &fakeFlows{}
	clock := testsupport.NewManualClock()
	srv, err := New(flows, registry,
		WithClock(clock),
		WithDefaults(onboarding.Params{ReturnYear: "2023"}),
		WithAssets(html.AssetsFS()),
	)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{t: t, flows: flows, clock: clock, srv: srv, server: ts, client: client}
}

func (h *harness) do(method, path, accept string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, h.server.URL+path, body)
	if err != nil {
		h.t.Fatalf("request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		h.t.Fatalf("read body: %v", err)
	}
	return resp, string(data)
}

type pagePayload struct {
	ActiveIndex int               `json:"active_index"`
	Hidden      map[string]string `json:"hidden"`
	Step        struct {
		Invalid []string `json:"invalid"`
	} `json:"step"`
	Errors *struct {
		Fields map[string][]string `json:"fields"`
	} `json:"errors"`
	Session struct {
		State string `json:"state"`
	} `json:"session"`
}

func (h *harness) page(path string) pagePayload {
	h.t.Helper()
	resp, body := h.do(http.MethodGet, path, "application/json", nil)
	if resp.StatusCode != http.StatusOK {
		h.t.Fatalf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	return decodePage(h.t, body)
}

func decodePage(t *testing.T, body string) pagePayload {
	t.Helper()
	var payload pagePayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode page: %v\n%s", err, body)
	}
	return payload
}

func TestWizardRoundTrip(t *testing.T) {
	h := newHarness(t)

	first := h.page("/onboarding/address?year=2024")
	token := first.Hidden[render.CSRFFieldName]
	if token == "" || first.ActiveIndex != 0 {
		t.Fatalf("unexpected first page %+v", first)
	}

	resp, _ := h.do(http.MethodPost, "/onboarding/address/advance", "application/json", url.Values{
		render.CSRFFieldName: {token}, render.StepFieldName: {"0"}, "city": {"Austin"},
	})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/onboarding/address?year=2024" {
		t.Fatalf("expected redirect back to the flow, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if second := h.page("/onboarding/address"); second.ActiveIndex != 1 {
		t.Fatalf("expected step 1, got %d", second.ActiveIndex)
	}

	resp, body := h.do(http.MethodPost, "/onboarding/address/advance", "application/json", url.Values{
		render.CSRFFieldName: {token}, render.StepFieldName: {"1"}, "zip": {""},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if diff := cmp.Diff([]string{"zip"}, decodePage(t, body).Step.Invalid); diff != "" {
		t.Fatalf("invalid mismatch (-want +got):\n%s", diff)
	}

	resp, _ = h.do(http.MethodPost, "/onboarding/address/advance", "application/json", url.Values{
		render.CSRFFieldName: {token}, render.StepFieldName: {"1"}, "zip": {"78701"},
	})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/onboarding/status" {
		t.Fatalf("expected redirect to the next flow, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	submitted, params := h.flows.calls()
	if diff := cmp.Diff([]field.Values{{"city": "Austin", "zip": "78701"}}, submitted); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	if got := params[0].ReturnYear; got != "2024" {
		t.Fatalf("expected the year query to override the default, got %q", got)
	}
}

func TestPostWithoutTokenIsRejected(t *testing.T) {
	h := newHarness(t)
	h.page("/onboarding/address")

	resp, _ := h.do(http.MethodPost, "/onboarding/address/advance", "", url.Values{
		render.StepFieldName: {"0"}, "city": {"Austin"},
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestFailedSubmissionShowsBanner(t *testing.T) {
	h := newHarness(t)
	h.flows.err = &submit.RequestError{Status: 500, General: "Internal Server Error"}

	token := h.page("/onboarding/misc").Hidden[render.CSRFFieldName]
	resp, body := h.do(http.MethodPost, "/onboarding/misc/choice", "text/html", url.Values{
		render.CSRFFieldName: {token}, render.StepFieldName: {"0"}, render.ChoiceFieldName: {"has_health:0"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") || !strings.Contains(body, submit.GenericMessage) {
		t.Fatalf("expected the generic banner in html, got:\n%s", body)
	}
	submitted, _ := h.flows.calls()
	if diff := cmp.Diff([]field.Values{{"has_health": true}}, submitted); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
}

func TestMalformedChoice(t *testing.T) {
	h := newHarness(t)
	token := h.page("/onboarding/misc").Hidden[render.CSRFFieldName]
	for _, value := range []string{"has_health", "has_health:x", ":1"} {
		resp, _ := h.do(http.MethodPost, "/onboarding/misc/choice", "", url.Values{
			render.CSRFFieldName: {token}, render.StepFieldName: {"0"}, render.ChoiceFieldName: {value},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", value, resp.StatusCode)
		}
	}
	resp, _ := h.do(http.MethodPost, "/onboarding/misc/choice", "", url.Values{
		render.CSRFFieldName: {token}, render.StepFieldName: {"0"}, render.ChoiceFieldName: {"unknown:1"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown field, got %d", resp.StatusCode)
	}
}

func TestSessionTimeout(t *testing.T) {
	h := newHarness(t)
	token := h.page("/onboarding/address").Hidden[render.CSRFFieldName]

	h.clock.Advance(timeout.DefaultInactivity)
	if got := h.page("/onboarding/address").Session.State; got != "warning" {
		t.Fatalf("expected warning, got %q", got)
	}

	resp, body := h.do(http.MethodPost, AckPath, "", url.Values{render.CSRFFieldName: {token}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"active"`) {
		t.Fatalf("expected acknowledged status, got %d %s", resp.StatusCode, body)
	}

	h.clock.Advance(timeout.DefaultInactivity + timeout.DefaultCountdown)
	_, body = h.do(http.MethodGet, StatusPath, "", nil)
	if !strings.Contains(body, `"logged_out"`) {
		t.Fatalf("expected logged_out status, got %s", body)
	}
	resp, _ = h.do(http.MethodGet, "/onboarding/address", "", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != timeout.DefaultLogoutURL {
		t.Fatalf("expected logout redirect, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if fresh := h.page("/onboarding/address"); fresh.Session.State != "active" {
		t.Fatalf("expected a fresh session, got %q", fresh.Session.State)
	}
}

func TestSignedOutSessionsAreForgotten(t *testing.T) {
	h := newHarness(t)
	anonymous := &http.Client{}
	for i := 0; i < 20; i++ {
		resp, err := anonymous.Get(h.server.URL + "/onboarding/address")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
	}
	if got := h.srv.sessions.len(); got != 20 {
		t.Fatalf("expected 20 live sessions, got %d", got)
	}

	h.clock.Advance(timeout.DefaultInactivity + timeout.DefaultCountdown + time.Second)
	if got := h.srv.sessions.len(); got != 0 {
		t.Fatalf("expected signed out sessions to be dropped, %d remain", got)
	}
}

func TestStaleStepIsRedirected(t *testing.T) {
	h := newHarness(t)
	token := h.page("/onboarding/address").Hidden[render.CSRFFieldName]

	resp, _ := h.do(http.MethodPost, "/onboarding/address/advance", "application/json", url.Values{
		render.CSRFFieldName: {token}, render.StepFieldName: {"1"}, "zip": {"78701"},
	})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/onboarding/address" {
		t.Fatalf("expected redirect to the active step, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if submitted, _ := h.flows.calls(); len(submitted) != 0 {
		t.Fatalf("expected no submission, got %v", submitted)
	}
	if got := h.page("/onboarding/address").ActiveIndex; got != 0 {
		t.Fatalf("expected step 0 to stay active, got %d", got)
	}
}

func TestRoutesAndAssets(t *testing.T) {
	h := newHarness(t)

	if resp, body := h.do(http.MethodGet, HealthPath, "", nil); resp.StatusCode != http.StatusOK || body != "OK\n" {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, body)
	}
	if resp, _ := h.do(http.MethodGet, "/onboarding/unknown", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if resp, _ := h.do(http.MethodGet, AssetsPrefix+html.StylesheetName, "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the stylesheet, got %d", resp.StatusCode)
	}
	if resp, _ := h.do(http.MethodGet, StatusPath, "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status without a session, got %d", resp.StatusCode)
	}
}

func TestParamsIgnoreOffsiteNextPages(t *testing.T) {
	srv := &Server{routes: DefaultRoutes(), defaults: onboarding.Params{ReturnYear: "2023"}}
	cases := []struct {
		query string
		want  string
	}{
		{"", "/onboarding/spouse"},
		{"next=/welcome/", "/welcome/"},
		{"next=https://evil.example.com/", "/onboarding/spouse"},
		{"next=//evil.example.com/", "/onboarding/spouse"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/onboarding/status?"+tc.query, nil)
		p := srv.params(req, onboarding.FlowStatus)
		if p.NextPage != tc.want {
			t.Fatalf("%q: want %q, got %q", tc.query, tc.want, p.NextPage)
		}
		if p.NextPageAlt != "/onboarding/dependents" || p.ReturnYear != "2023" {
			t.Fatalf("%q: unexpected params %+v", tc.query, p)
		}
	}
}
