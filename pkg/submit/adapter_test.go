package submit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/submit"
	"github.com/goliatone/go-stepform/pkg/testsupport"
)

func filingPage(values field.Values) string {
	if values.String("filing_status") == "MARRIED_JOINT" {
		return "/onboarding/spouse"
	}
	return "/onboarding/dependents"
}

func TestAdapterNavigatesOnSuccess(t *testing.T) {
	nav := &testsupport.RecordingNavigator{}
	var received field.Values
	adapter, err := submit.NewAdapter(func(_ context.Context, values field.Values) error {
		received = values
		return nil
	}, filingPage, nav)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	values := field.Values{"filing_status": "MARRIED_JOINT"}
	if err := adapter.Submit(context.Background(), values); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(values, received); diff != "" {
		t.Fatalf("action values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/onboarding/spouse"}, nav.Targets()); diff != "" {
		t.Fatalf("navigation mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapterReturnsRequestError(t *testing.T) {
	nav := &testsupport.RecordingNavigator{}
	cases := []struct {
		name string
		err  error
		want submit.RequestError
	}{
		{
			name: "general and validation",
			err: &submit.RequestError{
				Status:     400,
				General:    "server unavailable",
				Validation: map[string][]string{"ssn": {"invalid"}},
			},
			want: submit.RequestError{
				Status:     400,
				General:    "server unavailable",
				Validation: map[string][]string{"ssn": {"invalid"}},
			},
		},
		{
			name: "plain error becomes general",
			err:  errors.New("dial tcp: connection refused"),
			want: submit.RequestError{General: "dial tcp: connection refused"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adapter, err := submit.NewAdapter(func(context.Context, field.Values) error {
				return tc.err
			}, submit.StaticPage("/next"), nav)
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}
			err = adapter.Submit(context.Background(), field.Values{})
			var reqErr *submit.RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected *RequestError, got %T", err)
			}
			if diff := cmp.Diff(tc.want, *reqErr); diff != "" {
				t.Fatalf("request error mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if nav.Count() != 0 {
		t.Fatalf("failed submissions must not navigate, got %v", nav.Targets())
	}
}

func TestAdapterSingleFlight(t *testing.T) {
	nav := &testsupport.RecordingNavigator{}
	started := make(chan struct{})
	release := make(chan struct{})
	adapter, err := submit.NewAdapter(func(context.Context, field.Values) error {
		close(started)
		<-release
		return nil
	}, submit.StaticPage("/done"), nav)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- adapter.Submit(context.Background(), field.Values{}) }()
	<-started
	if !adapter.InFlight() {
		t.Fatalf("expected in-flight flag")
	}
	if err := adapter.Submit(context.Background(), field.Values{}); !errors.Is(err, submit.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if adapter.InFlight() {
		t.Fatalf("in-flight flag must clear")
	}
	if nav.Count() != 1 {
		t.Fatalf("expected one navigation, got %d", nav.Count())
	}
}

func TestAdapterNavigationFailure(t *testing.T) {
	nav := &testsupport.RecordingNavigator{Err: errors.New("closed")}
	adapter, err := submit.NewAdapter(func(context.Context, field.Values) error { return nil }, submit.StaticPage("/x"), nav)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if err := adapter.Submit(context.Background(), nil); !errors.Is(err, nav.Err) {
		t.Fatalf("expected wrapped navigator error, got %v", err)
	}
}

func TestNewAdapterRequiresCollaborators(t *testing.T) {
	action := func(context.Context, field.Values) error { return nil }
	nav := &testsupport.RecordingNavigator{}
	if _, err := submit.NewAdapter(nil, submit.StaticPage("/"), nav); err == nil {
		t.Fatalf("expected error for nil action")
	}
	if _, err := submit.NewAdapter(action, nil, nav); err == nil {
		t.Fatalf("expected error for nil next page")
	}
	if _, err := submit.NewAdapter(action, submit.StaticPage("/"), nil); err == nil {
		t.Fatalf("expected error for nil navigator")
	}
}

func TestRequestErrorMessage(t *testing.T) {
	err := &submit.RequestError{Status: 502}
	if err.HasGeneral() || err.HasValidation() {
		t.Fatalf("empty request error reports content")
	}
	if got := err.Error(); got != "submit: request failed with status 502" {
		t.Fatalf("unexpected message %q", got)
	}
}
