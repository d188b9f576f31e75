package repositories

// MockBackend bundles the in-memory repositories so they share one catalog.
type MockBackend struct {
	Catalog  *MockCatalogRepository
	Cart     *MockCartRepository
	Orders   *MockOrderRepository
	Users    *MockUserRepository
	Wishlist *MockWishlistRepository
}

// NewMockBackend creates an empty in-memory backend. secret signs login
// tokens and gateway payments.
func NewMockBackend(secret string) *MockBackend {
	catalog := NewMockCatalogRepository()
	cart := NewMockCartRepository(catalog)
	return &MockBackend{
		Catalog:  catalog,
		Cart:     cart,
		Orders:   NewMockOrderRepository(cart, secret),
		Users:    NewMockUserRepository(secret),
		Wishlist: NewMockWishlistRepository(catalog),
	}
}
