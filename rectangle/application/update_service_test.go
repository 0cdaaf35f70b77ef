package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rectangle-service/rectangle/domain"
)

type fakeStore struct {
	mu     sync.Mutex
	value  domain.Dimensions
	setErr error
	sets   int
}

func (s *fakeStore) Get(context.Context) (domain.Dimensions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

func (s *fakeStore) Set(_ context.Context, d domain.Dimensions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.value = d
	return nil
}

func TestUpdateService_Update_PersistsValidCandidate(t *testing.T) {
	store := &fakeStore{value: domain.DefaultDimensions()}
	svc := UpdateService{Store: store}

	got, err := svc.Update(context.Background(), domain.Dimensions{Width: 50, Height: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (domain.Dimensions{Width: 50, Height: 100}) {
		t.Fatalf("expected echoed dimensions, got %+v", got)
	}
	cur, _ := svc.Current(context.Background())
	if cur != got {
		t.Fatalf("expected store to hold %+v, got %+v", got, cur)
	}
}

func TestUpdateService_Update_RejectsWithoutTouchingStore(t *testing.T) {
	store := &fakeStore{value: domain.DefaultDimensions()}
	svc := UpdateService{Store: store}

	_, err := svc.Update(context.Background(), domain.Dimensions{Width: 100, Height: 50})
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.sets != 0 {
		t.Fatalf("expected no Set call, got %d", store.sets)
	}
	if store.value != domain.DefaultDimensions() {
		t.Fatalf("expected default to survive, got %+v", store.value)
	}
}

func TestUpdateService_Update_PropagatesStoreError(t *testing.T) {
	boom := &domain.StoreError{Op: "write", Err: errors.New("disk full")}
	store := &fakeStore{value: domain.DefaultDimensions(), setErr: boom}
	svc := UpdateService{Store: store}

	_, err := svc.Update(context.Background(), domain.Dimensions{Width: 1, Height: 2})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestUpdateService_Update_WaitsBeforeValidating(t *testing.T) {
	store := &fakeStore{}
	var events []bool
	svc := UpdateService{
		Store:   store,
		Delay:   30 * time.Millisecond,
		OnDelay: func(entering bool) { events = append(events, entering) },
	}

	start := time.Now()
	_, err := svc.Update(context.Background(), domain.Dimensions{Width: 100, Height: 50})
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("expected rejection only after the delay, took %s", elapsed)
	}
	if len(events) != 2 || !events[0] || events[1] {
		t.Fatalf("expected enter/leave delay hooks, got %v", events)
	}
}

func TestUpdateService_Update_IgnoresClientCancellation(t *testing.T) {
	store := &fakeStore{}
	svc := UpdateService{Store: store, Delay: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Update(ctx, domain.Dimensions{Width: 3, Height: 4}); err != nil {
		t.Fatalf("expected update to complete after disconnect, got %v", err)
	}
	if store.value != (domain.Dimensions{Width: 3, Height: 4}) {
		t.Fatalf("expected persisted value, got %+v", store.value)
	}
}

func TestUpdateService_Check_NeverPersists(t *testing.T) {
	store := &fakeStore{}
	svc := UpdateService{Store: store}

	if err := svc.Check(context.Background(), domain.Dimensions{Width: 1, Height: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.sets != 0 {
		t.Fatalf("expected Check not to call Set")
	}
}
