package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingProvider struct {
	cities []string
	report Report
	err    error
	// deadlineSet reports whether the last call had a deadline.
	deadlineSet bool
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) Fetch(ctx context.Context, city string) (Report, error) {
	p.cities = append(p.cities, city)
	_, p.deadlineSet = ctx.Deadline()
	return p.report, p.err
}

func TestNormalizeCity(t *testing.T) {
	cases := []struct {
		text, fallback, want string
	}{
		{"Paris", "London", "Paris"},
		{"  New York \t", "London", "New York"},
		{"", "London", "London"},
		{"   ", "Berlin", "Berlin"},
		{"\n", "", DefaultCity},
	}
	for _, tc := range cases {
		if got := NormalizeCity(tc.text, tc.fallback); got != tc.want {
			t.Errorf("NormalizeCity(%q, %q) = %q, want %q", tc.text, tc.fallback, got, tc.want)
		}
	}
}

func TestServiceBlankQueryUsesDefaultCity(t *testing.T) {
	p := &recordingProvider{report: Report{CityName: "London"}}
	svc := NewService(p, "", time.Second)

	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Fetch(context.Background(), q); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for i, city := range p.cities {
		if city != DefaultCity {
			t.Fatalf("call %d: expected %q, got %q", i, DefaultCity, city)
		}
	}
	if !p.deadlineSet {
		t.Fatalf("expected provider call to carry a deadline")
	}
}

func TestServiceConfiguredDefaultCity(t *testing.T) {
	p := &recordingProvider{}
	svc := NewService(p, " Madrid ", 0)

	if svc.DefaultCity() != "Madrid" {
		t.Fatalf("expected default city Madrid, got %q", svc.DefaultCity())
	}
	if _, err := svc.Fetch(context.Background(), " "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.cities) != 1 || p.cities[0] != "Madrid" {
		t.Fatalf("expected one call for Madrid, got %v", p.cities)
	}
	if p.deadlineSet {
		t.Fatalf("expected no deadline when timeout is zero")
	}
}

func TestServicePropagatesFetchError(t *testing.T) {
	fetchErr := &FetchError{Kind: KindProtocol, City: "Atlantis", Err: errors.New("unexpected status code 404")}
	p := &recordingProvider{err: fetchErr}
	svc := NewService(p, "London", time.Second)

	_, err := svc.Fetch(context.Background(), "Atlantis")
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if KindOf(err) != KindProtocol {
		t.Fatalf("expected protocol kind, got %q", KindOf(err))
	}
}

func TestServiceWithoutProvider(t *testing.T) {
	svc := NewService(nil, "London", time.Second)
	if _, err := svc.Fetch(context.Background(), "Paris"); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestKindOfNonFetchError(t *testing.T) {
	if k := KindOf(errors.New("boom")); k != "" {
		t.Fatalf("expected empty kind, got %q", k)
	}
}
