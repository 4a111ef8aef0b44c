package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dovermoor/cinefetch/internal/services"
	"github.com/dovermoor/cinefetch/internal/shared"
)

type mockMovieService struct {
	name       string
	genres     services.GenreMap
	pages      map[int][]services.RawMovie // Page fixtures; missing pages yield the empty signal
	pageErrs   map[int]error
	resolveErr error
	checkErr   error
	authErr    error
	fetchDelay time.Duration

	mu           sync.Mutex
	fetchedPages []int
	resolveCalls int
	inFlight     int
	maxInFlight  int
}

func (m *mockMovieService) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockMovieService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.authErr
}

func (m *mockMovieService) ResolveGenres(ctx context.Context) (services.GenreMap, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.genres, nil
}

func (m *mockMovieService) FetchPage(ctx context.Context, page int, includeAdult bool) ([]services.RawMovie, error) {
	m.mu.Lock()
	m.fetchedPages = append(m.fetchedPages, page)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()

	if m.fetchDelay > 0 {
		time.Sleep(m.fetchDelay)
	}

	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()

	if err, ok := m.pageErrs[page]; ok {
		return nil, err
	}
	return m.pages[page], nil
}

func (m *mockMovieService) CheckHealth(ctx context.Context) error {
	return m.checkErr
}

func (m *mockMovieService) requestedPage(page int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.fetchedPages {
		if p == page {
			return true
		}
	}
	return false
}

// fullPage builds a page fixture with entriesPerPage well-formed entries.
func fullPage(page int) []services.RawMovie {
	entries := make([]services.RawMovie, entriesPerPage)
	for i := range entries {
		entries[i] = services.RawMovie{
			Title:       fmt.Sprintf("Movie %d-%d", page, i+1),
			ReleaseDate: "2010-07-16",
			VoteAverage: 7.5,
			Overview:    "An overview.",
			GenreIDs:    []int{28},
		}
	}
	return entries
}

// pagesFixture builds full page fixtures for pages 1..n.
func pagesFixture(n int) map[int][]services.RawMovie {
	pages := make(map[int][]services.RawMovie, n)
	for page := 1; page <= n; page++ {
		pages[page] = fullPage(page)
	}
	return pages
}

var testGenres = services.GenreMap{28: "Action", 18: "Drama", 878: "Science Fiction"}

func TestMovieEngine_ServiceErrors(t *testing.T) {
	t.Run("movie service not initialized", func(t *testing.T) {
		engine := NewMovieEngine(nil, nil)
		progressCh := make(chan ProgressUpdate, 10)

		_, err := engine.Run(context.Background(), progressCh, HarvestOpts{TargetCount: 10})
		close(progressCh)

		if err == nil {
			t.Fatal("Run() expected error for nil movie service")
		}
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("Run() expected ErrServiceUnavailable, got: %v", err)
		}
	})

	t.Run("genre resolution failure is fatal", func(t *testing.T) {
		svc := &mockMovieService{
			resolveErr: fmt.Errorf("%w: status 500", shared.ErrGenresUnavailable),
			pages:      pagesFixture(5),
		}
		engine := NewMovieEngine(svc, nil)

		progressCh := make(chan ProgressUpdate, 100)
		go func() {
			for range progressCh {
				// Drain progress channel
			}
		}()

		result, err := engine.Run(context.Background(), progressCh, HarvestOpts{TargetCount: 50, Concurrency: 2})
		close(progressCh)

		if err == nil {
			t.Fatal("Run() expected error for genre failure")
		}
		if !errors.Is(err, shared.ErrGenresUnavailable) {
			t.Errorf("Run() expected ErrGenresUnavailable, got: %v", err)
		}

		if result == nil {
			t.Fatal("Run() should return a result alongside the error")
		}
		if result.Status != "errored" {
			t.Errorf("Run() status = %v, want errored", result.Status)
		}
		if len(result.Movies) != 0 {
			t.Errorf("Run() should emit no records on genre failure, got %d", len(result.Movies))
		}
		if result.Skipped != 50 {
			t.Errorf("Run() skipped = %v, want 50", result.Skipped)
		}
		if !strings.Contains(result.Reason, "genre") {
			t.Errorf("Run() reason should mention genres, got: %v", result.Reason)
		}

		svc.mu.Lock()
		fetched := len(svc.fetchedPages)
		svc.mu.Unlock()
		if fetched != 0 {
			t.Errorf("Run() should fetch no pages after genre failure, fetched %d", fetched)
		}
	})

	t.Run("credential rejection aborts after the batch", func(t *testing.T) {
		svc := &mockMovieService{
			genres: testGenres,
			pages:  pagesFixture(10),
			pageErrs: map[int]error{
				2: fmt.Errorf("%w: check your TMDB API key", shared.ErrInvalidCredentials),
			},
		}
		engine := NewMovieEngine(svc, nil)

		progressCh := make(chan ProgressUpdate, 100)
		go func() {
			for range progressCh {
				// Drain progress channel
			}
		}()

		result, err := engine.Run(context.Background(), progressCh, HarvestOpts{TargetCount: 500, Concurrency: 2})
		close(progressCh)

		if err == nil {
			t.Fatal("Run() expected error for credential rejection")
		}
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("Run() expected ErrInvalidCredentials, got: %v", err)
		}
		if result.Status != "errored" {
			t.Errorf("Run() status = %v, want errored", result.Status)
		}
		if result.Batches != 1 {
			t.Errorf("Run() batches = %v, want 1", result.Batches)
		}
	})
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	svc := &mockMovieService{
		genres: testGenres,
		pages:  pagesFixture(11),
	}
	engine := NewMovieEngine(svc, nil)

	// Unbuffered channel that is never read simulates a blocked consumer.
	progressCh := make(chan ProgressUpdate)

	done := make(chan bool)
	go func() {
		result, err := engine.Run(context.Background(), progressCh, HarvestOpts{TargetCount: 25, Concurrency: 2})
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
		if result != nil && result.Found != 25 {
			t.Errorf("Run() found = %v, want 25", result.Found)
		}
		done <- true
	}()

	select {
	case <-done:
		// Operation completed even with a blocked progress channel
	case <-time.After(5 * time.Second):
		t.Fatal("Run() should not block on progress sends")
	}
}

func TestProgressUpdate_Phases(t *testing.T) {
	svc := &mockMovieService{
		genres: testGenres,
		pages:  pagesFixture(11),
	}
	engine := NewMovieEngine(svc, nil)

	progressCh := make(chan ProgressUpdate, 1000)
	var updates []ProgressUpdate
	done := make(chan bool)

	go func() {
		for update := range progressCh {
			updates = append(updates, update)
		}
		done <- true
	}()

	if _, err := engine.Run(context.Background(), progressCh, HarvestOpts{TargetCount: 25, Concurrency: 2}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	close(progressCh)
	<-done

	phases := map[Phase]bool{}
	var sawTargetHit bool
	for _, update := range updates {
		phases[update.Phase] = true
		if update.Phase == Accumulate && update.Step == update.Total {
			sawTargetHit = true
		}
	}

	for _, want := range []Phase{ResolveGenres, FetchPages, Accumulate, Finalize} {
		if !phases[want] {
			t.Errorf("expected a %s update", want)
		}
	}
	if !sawTargetHit {
		t.Error("expected an accumulation update at the target")
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{ResolveGenres, "resolve_genres"},
		{FetchPages, "fetch_pages"},
		{Accumulate, "accumulate"},
		{Finalize, "finalize"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
