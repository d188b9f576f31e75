package repositories

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"

	"github.com/dgrijalva/jwt-go"
)

// MockOTP is the only code the in-memory backend accepts.
const MockOTP = "123456"

// MockUserRepository is an in-memory implementation of UserRepository. It
// issues HS256 tokens carrying the customer's mobile number.
type MockUserRepository struct {
	jwtSecret []byte
	tokenTTL  time.Duration
	pending   map[string]bool
	profiles  map[string]*models.UserProfile
	nextID    int64
	mu        sync.Mutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository(jwtSecret string) *MockUserRepository {
	return &MockUserRepository{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
		pending:   make(map[string]bool),
		profiles:  make(map[string]*models.UserProfile),
	}
}

// SendLoginOTP records that an OTP was sent to mobile.
func (r *MockUserRepository) SendLoginOTP(_ context.Context, mobile string) error {
	if len(mobile) != 10 {
		return &restclient.AppError{Method: "POST", Path: "/public/send-login-otp", Message: "Invalid mobile number"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[mobile] = true
	return nil
}

// VerifyLoginOTP checks the OTP and issues a token, creating the profile on
// first login.
func (r *MockUserRepository) VerifyLoginOTP(_ context.Context, req models.VerifyOTPRequest) (*models.LoginResult, error) {
	const path = "/public/verify-otp-login"
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.pending[req.Mobile] {
		return nil, &restclient.HTTPError{Method: "POST", Path: path, StatusCode: http.StatusBadRequest, Message: "OTP not requested"}
	}
	if req.OTP != MockOTP {
		return nil, &restclient.AppError{Method: "POST", Path: path, Message: "Invalid OTP"}
	}
	delete(r.pending, req.Mobile)

	profile, ok := r.profiles[req.Mobile]
	if !ok {
		r.nextID++
		profile = &models.UserProfile{ID: r.nextID, Mobile: req.Mobile, Status: 1}
		r.profiles[req.Mobile] = profile
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": profile.ID,
		"mobile":  req.Mobile,
		"exp":     time.Now().Add(r.tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString(r.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.LoginResult{Token: signed}, nil
}

// Profile resolves the token issued by VerifyLoginOTP.
func (r *MockUserRepository) Profile(_ context.Context, sess models.Session) (*models.UserProfile, error) {
	const path = "/user/profile"
	if !sess.LoggedIn() {
		return nil, unauthorized("GET", path)
	}
	token, err := jwt.Parse(sess.Token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, unauthorized("GET", path)
	}
	claims, _ := token.Claims.(jwt.MapClaims)
	mobile, _ := claims["mobile"].(string)

	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[mobile]
	if !ok {
		return nil, &restclient.HTTPError{Method: "GET", Path: path, StatusCode: http.StatusNotFound, Message: "User not found"}
	}
	out := *profile
	if sess.Pincode != "" && out.Pincode == "" {
		out.Pincode = models.FlexString(sess.Pincode)
	}
	return &out, nil
}
