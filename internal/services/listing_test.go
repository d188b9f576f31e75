package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ilbmart/internal/models"
	"ilbmart/internal/services"
	"ilbmart/pkg/restclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListing_ExactlyFullPageThenEmptyPage(t *testing.T) {
	sess := newSession(t, "", "201303")
	repo := new(MockCatalogRepository)
	want := models.Session{Pincode: "201303"}
	repo.On("Trending", mock.Anything, want, models.PageRequest{Limit: 12, Offset: 0}).Return(products(12), nil).Once()
	repo.On("Trending", mock.Anything, want, models.PageRequest{Limit: 12, Offset: 12}).Return([]models.Product{}, nil).Once()

	l := services.NewListing[models.Product]("trending", sess, services.DefaultPageSize, repo.Trending)
	defer l.Close()
	ctx := context.Background()

	snap := l.Snapshot()
	assert.Equal(t, services.Loading{Skeletons: 12}, snap.State)

	require.NoError(t, l.Load(ctx))
	snap = l.Snapshot()
	assert.True(t, snap.HasMore)
	loaded, ok := snap.State.(services.Loaded[models.Product])
	require.True(t, ok)
	assert.Len(t, loaded.Items, 12)

	moved, err := l.Next(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	snap = l.Snapshot()
	assert.Equal(t, 2, snap.Page)
	assert.False(t, snap.HasMore)
	assert.Equal(t, services.Empty{}, snap.State)

	moved, err = l.Next(ctx)
	require.NoError(t, err)
	assert.False(t, moved, "no next page after a short page")
	repo.AssertExpectations(t)
}

func TestListing_PrevOnlyAfterFirstPage(t *testing.T) {
	sess := newSession(t, "", "")
	repo := new(MockCatalogRepository)
	repo.On("PriceSaver", mock.Anything, mock.Anything, models.PageRequest{Limit: 12, Offset: 0}).Return(products(12), nil).Twice()
	repo.On("PriceSaver", mock.Anything, mock.Anything, models.PageRequest{Limit: 12, Offset: 12}).Return(products(3), nil).Once()

	l := services.NewListing[models.Product]("price-saver", sess, 12, repo.PriceSaver)
	defer l.Close()
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	moved, err := l.Prev(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	_, err = l.Next(ctx)
	require.NoError(t, err)
	moved, err = l.Prev(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 1, l.Snapshot().Page)
	repo.AssertExpectations(t)
}

func TestListing_ErrorShowsMessageAndStopsPaging(t *testing.T) {
	sess := newSession(t, "", "")
	repo := new(MockCatalogRepository)
	repo.On("Trending", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &restclient.HTTPError{Method: "GET", Path: "/public/products/trending", StatusCode: 500, Message: "Internal error"}).Once()

	l := services.NewListing[models.Product]("trending", sess, 12, repo.Trending)
	defer l.Close()

	require.Error(t, l.Load(context.Background()))
	snap := l.Snapshot()
	assert.Equal(t, services.Failed{Message: "Internal error"}, snap.State)
	assert.False(t, snap.HasMore)

	moved, err := l.Next(context.Background())
	assert.NoError(t, err)
	assert.False(t, moved)
}

func TestListing_PincodeChangeReloadsFirstPageOnce(t *testing.T) {
	sess := newSession(t, "", "201303")
	repo := new(MockCatalogRepository)
	repo.On("Trending", mock.Anything, models.Session{Pincode: "201303"}, mock.Anything).Return(products(12), nil)
	repo.On("Trending", mock.Anything, models.Session{Pincode: "110001"}, models.PageRequest{Limit: 12, Offset: 0}).Return(products(4), nil).Once()
	repo.On("PriceSaver", mock.Anything, models.Session{Pincode: "110001"}, models.PageRequest{Limit: 12, Offset: 0}).Return(products(5), nil).Once()

	catalog := services.NewCatalogService(repo, sess, 12)
	defer catalog.Close()
	trending, err := catalog.Listing(services.ListingTrending)
	require.NoError(t, err)
	priceSaver, err := catalog.Listing(services.ListingPriceSaver)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, trending.Load(ctx))
	_, err = trending.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, trending.Snapshot().Page)

	require.NoError(t, sess.SetPincode(ctx, "110001"))

	snap := trending.Snapshot()
	assert.Equal(t, 1, snap.Page)
	assert.Len(t, snap.State.(services.Loaded[models.Product]).Items, 4)
	assert.Len(t, priceSaver.Snapshot().State.(services.Loaded[models.Product]).Items, 5)

	repo.AssertNumberOfCalls(t, "PriceSaver", 1)
	repo.AssertExpectations(t)
}

func TestListing_StaleResponseIsDropped(t *testing.T) {
	sess := newSession(t, "", "201303")

	release := make(chan struct{})
	started := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	fetch := func(ctx context.Context, s models.Session, page models.PageRequest) ([]models.Product, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return products(12), nil
		}
		return products(2), nil
	}

	l := services.NewListing[models.Product]("trending", sess, 12, fetch)
	defer l.Close()

	done := make(chan error)
	go func() { done <- l.Load(context.Background()) }()
	<-started

	require.NoError(t, sess.SetPincode(context.Background(), "110001"))
	close(release)
	require.NoError(t, <-done)

	loaded := l.Snapshot().State.(services.Loaded[models.Product])
	assert.Len(t, loaded.Items, 2, "the older page-1 response must not win")
}

func TestListing_NextIgnoredWhileLoading(t *testing.T) {
	sess := newSession(t, "", "")
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls int
	var mu sync.Mutex
	fetch := func(ctx context.Context, s models.Session, page models.PageRequest) ([]models.Product, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		if page.Offset == 12 {
			started <- struct{}{}
			<-release
		}
		return products(12), nil
	}
	l := services.NewListing[models.Product]("trending", sess, 12, fetch)
	defer l.Close()
	require.NoError(t, l.Load(context.Background()))

	done := make(chan struct{})
	go func() {
		_, _ = l.Next(context.Background())
		close(done)
	}()
	<-started

	moved, err := l.Next(context.Background())
	assert.NoError(t, err)
	assert.False(t, moved)
	moved, err = l.Prev(context.Background())
	assert.NoError(t, err)
	assert.False(t, moved)
	assert.True(t, l.Snapshot().Loading)

	close(release)
	<-done
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestCatalogService_SubcategoriesSelectsFirst(t *testing.T) {
	sess := newSession(t, "", "")
	repo := new(MockCatalogRepository)
	repo.On("Subcategories", mock.Anything, mock.Anything, int64(3)).Return([]models.Subcategory{{ID: 7, Name: "Salt"}, {ID: 8, Name: "Sugar"}}, nil).Once()
	repo.On("Subcategories", mock.Anything, mock.Anything, int64(4)).Return([]models.Subcategory{}, nil).Once()
	repo.On("Product", mock.Anything, mock.Anything, "99").Return(nil, errors.New("boom")).Once()

	catalog := services.NewCatalogService(repo, sess, 12)
	defer catalog.Close()

	view, err := catalog.Subcategories(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, view.Selected)
	assert.Equal(t, int64(7), view.Selected.ID)

	view, err = catalog.Subcategories(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, view.Selected)

	_, err = catalog.Product(context.Background(), "99")
	assert.Error(t, err)

	_, err = catalog.Listing("bestsellers")
	assert.ErrorIs(t, err, services.ErrUnknownListing)

	assert.Same(t, catalog.SubcategoryListing(7), catalog.SubcategoryListing(7))
}

func TestCatalogService_OnlyActiveSubcategoryFollowsPincode(t *testing.T) {
	sess := newSession(t, "", "201303")
	repo := new(MockCatalogRepository)
	repo.On("Trending", mock.Anything, mock.Anything, mock.Anything).Return(products(2), nil)
	repo.On("PriceSaver", mock.Anything, mock.Anything, mock.Anything).Return(products(2), nil)
	repo.On("SubcategoryProducts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(products(3), nil)

	catalog := services.NewCatalogService(repo, sess, 12)
	defer catalog.Close()
	ctx := context.Background()

	first := catalog.SubcategoryListing(1)
	require.NoError(t, first.Load(ctx))
	for id := int64(2); id <= 50; id++ {
		require.NoError(t, catalog.SubcategoryListing(id).Load(ctx))
	}
	repo.AssertNumberOfCalls(t, "SubcategoryProducts", 50)

	require.NoError(t, sess.SetPincode(ctx, "110001"))

	repo.AssertNumberOfCalls(t, "SubcategoryProducts", 51)
	repo.AssertCalled(t, "SubcategoryProducts", mock.Anything, models.Session{Pincode: "110001"}, int64(50), models.PageRequest{Limit: 12, Offset: 0})
	repo.AssertNumberOfCalls(t, "Trending", 1)
	repo.AssertNumberOfCalls(t, "PriceSaver", 1)
	assert.Equal(t, 1, catalog.SubcategoryListing(50).Snapshot().Page)
	repo.AssertNumberOfCalls(t, "SubcategoryProducts", 51)
}

func TestListing_SamePincodeResubmittedReloadsFirstPage(t *testing.T) {
	sess := newSession(t, "", "201303")
	repo := new(MockCatalogRepository)
	want := models.Session{Pincode: "201303"}
	repo.On("Trending", mock.Anything, want, models.PageRequest{Limit: 12, Offset: 0}).Return(products(12), nil).Twice()
	repo.On("Trending", mock.Anything, want, models.PageRequest{Limit: 12, Offset: 12}).Return(products(12), nil).Once()

	l := services.NewListing[models.Product]("trending", sess, 12, repo.Trending)
	defer l.Close()
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	moved, err := l.Next(ctx)
	require.NoError(t, err)
	require.True(t, moved)
	assert.Equal(t, 2, l.Snapshot().Page)

	require.NoError(t, sess.SetPincode(ctx, "201303"))

	snap := l.Snapshot()
	assert.Equal(t, 1, snap.Page)
	assert.Len(t, snap.State.(services.Loaded[models.Product]).Items, 12)
	repo.AssertExpectations(t)
}
