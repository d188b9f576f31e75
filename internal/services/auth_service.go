package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"ilbmart/internal/models"
	"ilbmart/internal/repositories"
	"ilbmart/internal/session"
	"ilbmart/pkg/restclient"

	"github.com/go-playground/validator/v10"
)

// HomePath is where a successful login navigates to.
const HomePath = "/"

// LoginState is what the login page shows.
type LoginState struct {
	Mobile       string `json:"mobile"`
	OTPRequested bool   `json:"otp_requested"`
	Loading      bool   `json:"loading"`
	Error        string `json:"error,omitempty"`
	Notice       string `json:"notice,omitempty"`
	RedirectTo   string `json:"redirect_to,omitempty"`
}

// AuthConfig tunes an AuthService. Zero values get defaults.
type AuthConfig struct {
	RedirectDelay time.Duration
	Navigator     Navigator
	Scheduler     Scheduler
}

// AuthService is the OTP login flow.
type AuthService struct {
	users    repositories.UserRepository
	sess     *session.Session
	validate *validator.Validate
	cfg      AuthConfig

	mu    sync.Mutex
	state LoginState
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, sess *session.Session, cfg AuthConfig) *AuthService {
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = time.Second
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	return &AuthService{
		users:    users,
		sess:     sess,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// RequestOTP asks the backend to send an OTP to mobile. OTP entry is only
// enabled when the backend confirms with success:true.
func (s *AuthService) RequestOTP(ctx context.Context, mobile string) (LoginState, error) {
	if err := validateStruct(s.validate, models.OTPRequest{Mobile: mobile}); err != nil {
		return s.State(), err
	}
	s.begin()

	err := s.users.SendLoginOTP(ctx, mobile)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		log.Printf("Error sending login OTP: %v", err)
		s.state.Error = authErrorMessage(err, "Failed to send OTP. Please try again.")
		return s.state, nil
	}
	s.state.Mobile = mobile
	s.state.OTPRequested = true
	s.state.Notice = "OTP sent successfully!"
	return s.state, nil
}

// VerifyOTP exchanges the OTP for a token, stores it in the session and
// schedules navigation home.
func (s *AuthService) VerifyOTP(ctx context.Context, otp string) (LoginState, error) {
	s.mu.Lock()
	mobile, requested := s.state.Mobile, s.state.OTPRequested
	s.mu.Unlock()
	if !requested {
		return s.State(), ErrOTPNotRequested
	}
	req := models.VerifyOTPRequest{Mobile: mobile, OTP: otp}
	if err := validateStruct(s.validate, req); err != nil {
		return s.State(), err
	}
	s.begin()

	result, err := s.users.VerifyLoginOTP(ctx, req)
	if err == nil {
		err = s.sess.SetToken(ctx, result.Token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		log.Printf("Error verifying login OTP: %v", err)
		if errors.Is(err, repositories.ErrInvalidResponse) {
			s.state.Error = "Invalid response from server."
			return s.state, nil
		}
		s.state.Error = authErrorMessage(err, "Invalid OTP. Please try again.")
		return s.state, nil
	}
	s.state.Notice = "Login successful! Redirecting..."
	s.state.RedirectTo = HomePath
	if s.cfg.Navigator != nil {
		navigate := s.cfg.Navigator
		s.cfg.Scheduler(s.cfg.RedirectDelay, func() { navigate(HomePath) })
	}
	return s.state, nil
}

func (s *AuthService) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = true
	s.state.Error = ""
	s.state.Notice = ""
}

func authErrorMessage(err error, fallback string) string {
	if restclient.IsNetwork(err) {
		return "Network error. Please check your connection."
	}
	var httpErr *restclient.HTTPError
	var appErr *restclient.AppError
	if (errors.As(err, &httpErr) && httpErr.Message != "") || (errors.As(err, &appErr) && appErr.Message != "") {
		return restclient.Message(err)
	}
	return fallback
}

// ChangeMobile returns to mobile entry.
func (s *AuthService) ChangeMobile() LoginState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = LoginState{Mobile: s.state.Mobile}
	return s.state
}

// Logout drops the token and resets the login page.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sess.Logout(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = LoginState{}
	s.mu.Unlock()
	return nil
}

// State returns the login page state.
func (s *AuthService) State() LoginState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
