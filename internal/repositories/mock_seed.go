package repositories

import (
	"log"

	"ilbmart/internal/models"

	"github.com/shopspring/decimal"
)

// Seed fills the in-memory catalog with a small grocery assortment.
func (b *MockBackend) Seed() {
	b.Catalog.AddCategory(models.Category{ID: 1, Name: "Staples", Slug: "staples"})
	b.Catalog.AddCategory(models.Category{ID: 2, Name: "Dairy & Breakfast", Slug: "dairy-breakfast"})

	b.Catalog.AddSubcategory(models.Subcategory{ID: 11, CategoryID: 1, Name: "Salt & Sugar"})
	b.Catalog.AddSubcategory(models.Subcategory{ID: 12, CategoryID: 1, Name: "Atta & Rice"})
	b.Catalog.AddSubcategory(models.Subcategory{ID: 21, CategoryID: 2, Name: "Milk"})

	products := []MockProduct{
		{
			Detail:        models.ProductDetail{SellerProductID: "28", Name: "Tata Salt Iodized Salt", Description: "Iodised salt", SalePrice: decimal.NewFromInt(25), ActPrice: decimal.NewFromInt(26), Stock: 300, CategoryID: 1, AverageRating: decimal.RequireFromString("4.5")},
			MRP:           decimal.NewFromInt(26),
			Unit:          "1kg",
			SubcategoryID: 11,
			Trending:      true,
			PriceSaver:    true,
		},
		{
			Detail:        models.ProductDetail{SellerProductID: "31", Name: "Madhur Pure Sugar", Description: "Refined sugar", SalePrice: decimal.NewFromInt(52), ActPrice: decimal.NewFromInt(60), Stock: 120, CategoryID: 1, AverageRating: decimal.RequireFromString("4.1")},
			MRP:           decimal.NewFromInt(60),
			Unit:          "1kg",
			SubcategoryID: 11,
			PriceSaver:    true,
		},
		{
			Detail:        models.ProductDetail{SellerProductID: "40", Name: "Aashirvaad Atta", Description: "Whole wheat flour", SalePrice: decimal.NewFromInt(260), ActPrice: decimal.NewFromInt(295), Stock: 40, CategoryID: 1, AverageRating: decimal.RequireFromString("4.4")},
			MRP:           decimal.NewFromInt(295),
			Unit:          "5kg",
			SubcategoryID: 12,
			Trending:      true,
		},
		{
			Detail:        models.ProductDetail{SellerProductID: "55", Name: "Amul Taaza Toned Milk", Description: "Pouch milk", SalePrice: decimal.NewFromInt(27), ActPrice: decimal.NewFromInt(27), Stock: 80, CategoryID: 2, AverageRating: decimal.RequireFromString("4.6")},
			MRP:           decimal.NewFromInt(27),
			Unit:          "500ml",
			SubcategoryID: 21,
			Trending:      true,
			Pincodes:      []string{"201301", "201303"},
		},
	}
	for _, p := range products {
		b.Catalog.AddProduct(p)
		log.Printf("Seeded product: %s (ID: %s)", p.Detail.Name, p.Detail.SellerProductID)
	}
}
