package repositories_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ilbmart/internal/models"
	"ilbmart/internal/repositories"
	"ilbmart/pkg/restclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, path, query, body string
	header                    http.Header
}

func newBackend(t *testing.T, routes map[string]string) (*restclient.Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{r.Method, r.URL.Path, r.URL.RawQuery, string(body), r.Header.Clone()})
		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Route not found"}`))
			return
		}
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return restclient.New(restclient.Config{BaseURL: srv.URL, Version: "api/v1"}), &calls
}

var sess = models.Session{Token: "tok-1", Pincode: "201303"}

func TestHTTPCatalogRepository(t *testing.T) {
	client, calls := newBackend(t, map[string]string{
		"GET /api/v1/public/products/trending":        `{"success":true,"trendingProducts":[{"seller_product_id":1,"name":"Salt"},{"seller_product_id":"2","name":"Sugar"}]}`,
		"GET /api/v1/public/products/price-saver":     `{"success":false,"message":"none"}`,
		"GET /api/v1/public/categories":               `{"categories":[{"id":3,"name":"Staples"}]}`,
		"GET /api/v1/public/categories/3/subcategories": `{"subcategories":{"unexpected":true}}`,
		"GET /api/v1/public/subcategories/7/products":   `{"products":[{"seller_product_id":9}]}`,
		"GET /api/v1/public/products/28":                `{"product":{"seller_product_id":28,"name":"Tata Salt","sale_price":"25.00","images":["a.png"]}}`,
	})
	repo := repositories.NewHTTPCatalogRepository(client)
	ctx := context.Background()

	products, err := repo.Trending(ctx, sess, models.PageRequest{Limit: 12, Offset: 24})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "2", products[1].SellerProductID.String())
	assert.Equal(t, "limit=12&offset=24", (*calls)[0].query)
	assert.Equal(t, "201303", (*calls)[0].header.Get(restclient.HeaderPincode))
	assert.Empty(t, (*calls)[0].header.Get("Authorization"), "public calls carry no token")

	products, err = repo.PriceSaver(ctx, sess, models.PageRequest{Limit: 12})
	require.NoError(t, err)
	assert.Empty(t, products)

	categories, err := repo.Categories(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "Staples", categories[0].Name)

	subs, err := repo.Subcategories(ctx, sess, 3)
	require.NoError(t, err)
	assert.Empty(t, subs, "non-array payload is an empty list")

	products, err = repo.SubcategoryProducts(ctx, sess, 7, models.PageRequest{Limit: 12})
	require.NoError(t, err)
	assert.Len(t, products, 1)

	detail, err := repo.Product(ctx, sess, "28")
	require.NoError(t, err)
	assert.Equal(t, "25", detail.CurrentPrice().String())

	_, err = repo.Product(ctx, sess, "404")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, restclient.StatusCode(err))
}

func TestHTTPCartRepository(t *testing.T) {
	client, calls := newBackend(t, map[string]string{
		"GET /api/v1/user/cart":            `{"success":true,"data":{"items":[{"cart_id":5,"qty":2,"is_available":true}],"summary":{"subtotal":50,"total":80}}}`,
		"POST /api/v1/user/cart":           `{"success":true}`,
		"PUT /api/v1/user/cart/items/5":    `{"success":true}`,
		"DELETE /api/v1/user/cart/items/5": `{"success":true}`,
		"POST /api/v1/user/cart/coupon":    `{"success":true}`,
	})
	repo := repositories.NewHTTPCartRepository(client)
	ctx := context.Background()

	cart, err := repo.Get(ctx, sess)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(5), cart.Items[0].CartID)
	assert.Equal(t, "Bearer tok-1", (*calls)[0].header.Get("Authorization"))
	assert.Equal(t, "201303", (*calls)[0].header.Get("x-user-pincode"), "cart is priced for the delivery pincode")

	other := models.Session{Token: "tok-1", Pincode: "110001"}
	_, err = repo.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "110001", (*calls)[1].header.Get("x-user-pincode"))

	require.NoError(t, repo.Add(ctx, sess, models.AddToCartRequest{SellerProductID: 28, Quantity: 1}))
	assert.JSONEq(t, `{"seller_product_id":28,"quantity":1}`, (*calls)[2].body)

	require.NoError(t, repo.UpdateQuantity(ctx, sess, 5, 3))
	assert.JSONEq(t, `{"quantity":3}`, (*calls)[3].body)

	require.NoError(t, repo.Remove(ctx, sess, 5))
	require.NoError(t, repo.ApplyCoupon(ctx, sess, "SAVE10"))
	assert.JSONEq(t, `{"coupon_code":"SAVE10"}`, (*calls)[5].body)

	err = repo.Clear(ctx, sess)
	require.Error(t, err)
	assert.True(t, restclient.IsHTTP(err))
}

func TestHTTPOrderRepository(t *testing.T) {
	client, calls := newBackend(t, map[string]string{
		"POST /api/v1/user/orders": `{"success":true,"data":{"razorpay":{"key":"rzp","amount":42000,"currency":"INR","order_id":"order_1"},"transaction_number":"TXN-1","orders":[{"order_number":"ORD-1"}]}}`,
		"POST /api/v1/user/orders/verify-payment": `{"success":true}`,
		"GET /api/v1/user/orders/current":         `{"status":true,"data":[{"id":1,"order_id":"ORD-1","order_status":"Pending","total_amount":"420.00"}]}`,
		"GET /api/v1/user/orders/history":         `{"status":true,"data":null}`,
	})
	repo := repositories.NewHTTPOrderRepository(client)
	ctx := context.Background()

	res, err := repo.Place(ctx, sess, models.PlaceOrderRequest{PaymentMethod: models.PaymentOnline, DeliveryNotes: "ring"})
	require.NoError(t, err)
	assert.Equal(t, "order_1", res.Gateway.OrderID)
	assert.Equal(t, "ORD-1", res.FirstOrderNumber())
	assert.JSONEq(t, `{"payment_method":"online","delivery_notes":"ring"}`, (*calls)[0].body)

	require.NoError(t, repo.VerifyPayment(ctx, sess, models.VerifyPaymentRequest{GatewayOrderID: "order_1", GatewayPaymentID: "pay_1", GatewaySignature: "sig"}))
	var verifyBody map[string]string
	require.NoError(t, json.Unmarshal([]byte((*calls)[1].body), &verifyBody))
	assert.Equal(t, map[string]string{"razorpay_order_id": "order_1", "razorpay_payment_id": "pay_1", "razorpay_signature": "sig"}, verifyBody)

	current, err := repo.Current(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "420", current[0].TotalAmount.String())

	history, err := repo.History(ctx, sess)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestHTTPUserRepository(t *testing.T) {
	client, _ := newBackend(t, map[string]string{
		"POST /api/v1/public/send-login-otp":  `{"message":"sent"}`,
		"POST /api/v1/public/verify-otp-login": `{"success":true,"data":{}}`,
		"GET /api/v1/user/profile":             `{"success":true,"data":{"id":7,"mobile":"9876543210","pincode":201303}}`,
	})
	repo := repositories.NewHTTPUserRepository(client)
	ctx := context.Background()

	err := repo.SendLoginOTP(ctx, "9876543210")
	require.Error(t, err, "a reply without success:true is not a sent OTP")
	assert.True(t, restclient.IsApp(err))

	_, err = repo.VerifyLoginOTP(ctx, models.VerifyOTPRequest{Mobile: "9876543210", OTP: "123456"})
	assert.ErrorIs(t, err, repositories.ErrInvalidResponse)

	profile, err := repo.Profile(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "201303", profile.Pincode.String())
}

func TestHTTPWishlistRepository(t *testing.T) {
	client, calls := newBackend(t, map[string]string{
		"GET /api/v1/user/wishlist":       `{"success":true,"data":[{"wishlist_id":66,"seller_product_id":28,"act_price":"26.00","price":"25.00"}]}`,
		"POST /api/v1/user/wishlist":      `{"success":true}`,
		"DELETE /api/v1/user/wishlist/66": `{"success":true}`,
	})
	repo := repositories.NewHTTPWishlistRepository(client)
	ctx := context.Background()

	items, err := repo.List(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 4, items[0].DiscountPercent())

	require.NoError(t, repo.Add(ctx, sess, 28))
	assert.JSONEq(t, `{"seller_product_id":28}`, (*calls)[1].body)
	require.NoError(t, repo.Remove(ctx, sess, 66))
}
