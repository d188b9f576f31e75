package models

// OTPRequest is the body of POST /public/send-login-otp.
type OTPRequest struct {
	Mobile string `json:"mobile" validate:"required,numeric,len=10"`
}

// VerifyOTPRequest is the body of POST /public/verify-otp-login.
type VerifyOTPRequest struct {
	Mobile string `json:"mobile" validate:"required,numeric,len=10"`
	OTP    string `json:"otp" validate:"required,numeric,min=4,max=6"`
}

// LoginResult is the data block of a successful OTP verification.
type LoginResult struct {
	Token string `json:"token"`
}

// UserProfile is returned by GET /user/profile.
type UserProfile struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Mobile  string     `json:"mobile"`
	Pincode FlexString `json:"pincode"`
	Address *string    `json:"address"`
	Image   *string    `json:"image"`
	Status  int        `json:"status"`
}
