package repositories

import (
	"context"

	"ilbmart/internal/models"
)

// UserRepository covers OTP login and the customer profile.
type UserRepository interface {
	SendLoginOTP(ctx context.Context, mobile string) error
	VerifyLoginOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.LoginResult, error)
	Profile(ctx context.Context, sess models.Session) (*models.UserProfile, error)
}
