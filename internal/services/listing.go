package services

import (
	"context"
	"log"
	"sync"

	"ilbmart/internal/models"
	"ilbmart/internal/session"
	"ilbmart/pkg/restclient"
)

// DefaultPageSize is the number of products per listing page.
const DefaultPageSize = 12

// PageFetcher loads one page of a listing for the given session.
type PageFetcher[T any] func(ctx context.Context, sess models.Session, page models.PageRequest) ([]T, error)

// Listing is a paginated, pincode-scoped list. It resets to page 1 and
// reloads once whenever the session pincode changes. Responses of superseded
// requests are dropped.
type Listing[T any] struct {
	name     string
	sess     *session.Session
	pageSize int
	fetch    PageFetcher[T]

	mu         sync.Mutex
	page       int
	items      []T
	hasMore    bool
	loading    bool
	loaded     bool
	errMsg     string
	generation uint64

	unsubscribe func()
}

// ListingSnapshot is a point-in-time copy of a listing.
type ListingSnapshot[T any] struct {
	Name     string
	Page     int
	PageSize int
	HasMore  bool
	Loading  bool
	State    ViewState
}

// NewListing creates a listing and subscribes it to pincode changes. Nothing
// is fetched until Load or EnsureLoaded.
func NewListing[T any](name string, sess *session.Session, pageSize int, fetch PageFetcher[T]) *Listing[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	l := &Listing[T]{
		name:     name,
		sess:     sess,
		pageSize: pageSize,
		fetch:    fetch,
		page:     1,
	}
	l.unsubscribe = sess.Subscribe(func(ctx context.Context, _ string) {
		_ = l.load(context.WithoutCancel(ctx), 1)
	})
	return l
}

// Name returns the listing's name.
func (l *Listing[T]) Name() string {
	return l.name
}

// Load fetches page 1.
func (l *Listing[T]) Load(ctx context.Context) error {
	return l.load(ctx, 1)
}

// EnsureLoaded loads page 1 unless a load already happened or is running.
func (l *Listing[T]) EnsureLoaded(ctx context.Context) error {
	l.mu.Lock()
	if l.loaded || l.loading {
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()
	return l.load(ctx, 1)
}

// Next loads the following page. It does nothing, and reports false, while
// a load is running or when the last page was short.
func (l *Listing[T]) Next(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.loading || !l.hasMore {
		l.mu.Unlock()
		return false, nil
	}
	page := l.page + 1
	l.mu.Unlock()
	return true, l.load(ctx, page)
}

// Prev loads the preceding page. It does nothing, and reports false, while
// a load is running or on page 1.
func (l *Listing[T]) Prev(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.loading || l.page <= 1 {
		l.mu.Unlock()
		return false, nil
	}
	page := l.page - 1
	l.mu.Unlock()
	return true, l.load(ctx, page)
}

func (l *Listing[T]) load(ctx context.Context, page int) error {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.page = page
	l.loading = true
	l.mu.Unlock()

	sess := l.sess.Snapshot()
	items, err := l.fetch(ctx, sess, models.PageRequest{Limit: l.pageSize, Offset: (page - 1) * l.pageSize})

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		return nil
	}
	l.loading = false
	l.loaded = true
	if err != nil {
		log.Printf("Error loading %s page %d: %v", l.name, page, err)
		l.items = nil
		l.hasMore = false
		l.errMsg = restclient.Message(err)
		return err
	}
	l.errMsg = ""
	l.items = items
	l.hasMore = len(items) == l.pageSize
	return nil
}

// Snapshot returns the current page and its view state.
func (l *Listing[T]) Snapshot() ListingSnapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := ListingSnapshot[T]{
		Name:     l.name,
		Page:     l.page,
		PageSize: l.pageSize,
		HasMore:  l.hasMore,
		Loading:  l.loading,
	}
	switch {
	case l.loading || !l.loaded:
		snap.State = Loading{Skeletons: l.pageSize}
	case l.errMsg != "":
		snap.State = Failed{Message: l.errMsg}
	case len(l.items) == 0:
		snap.State = Empty{}
	default:
		snap.State = Loaded[T]{Items: append([]T(nil), l.items...)}
	}
	return snap
}

// Close stops following pincode changes.
func (l *Listing[T]) Close() {
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
}
