package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"
)

// HTTPUserRepository talks to the OTP login and profile endpoints.
type HTTPUserRepository struct {
	client *restclient.Client
}

// NewHTTPUserRepository creates a new HTTPUserRepository.
func NewHTTPUserRepository(client *restclient.Client) *HTTPUserRepository {
	return &HTTPUserRepository{client: client}
}

type successEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// SendLoginOTP asks the backend to text an OTP. Only an explicit
// {success:true} counts as sent.
func (r *HTTPUserRepository) SendLoginOTP(ctx context.Context, mobile string) error {
	const path = "/public/send-login-otp"
	var resp successEnvelope
	if err := r.client.Post(ctx, path, restclient.Scope{}, models.OTPRequest{Mobile: mobile}, &resp); err != nil {
		return fmt.Errorf("failed to send login otp: %w", err)
	}
	if !resp.Success {
		return &restclient.AppError{Method: "POST", Path: path, Message: resp.Message}
	}
	return nil
}

// VerifyLoginOTP exchanges mobile + OTP for a bearer token.
func (r *HTTPUserRepository) VerifyLoginOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.LoginResult, error) {
	const path = "/public/verify-otp-login"
	var resp successEnvelope
	if err := r.client.Post(ctx, path, restclient.Scope{}, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to verify login otp: %w", err)
	}
	if !resp.Success {
		return nil, &restclient.AppError{Method: "POST", Path: path, Message: resp.Message}
	}
	result, err := decodeData[*models.LoginResult](path, resp.Data)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Token == "" {
		return nil, ErrInvalidResponse
	}
	return result, nil
}

// Profile returns the logged-in customer's profile.
func (r *HTTPUserRepository) Profile(ctx context.Context, sess models.Session) (*models.UserProfile, error) {
	profile, err := getData[*models.UserProfile](ctx, r.client, "/user/profile", userScope(sess))
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	return profile, nil
}
