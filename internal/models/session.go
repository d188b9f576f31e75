package models

import "time"

// Keys under which the session values are persisted. They match the keys the
// web storefront used in browser storage.
const (
	SessionTokenKey   = "ilb-token"
	SessionPincodeKey = "pincode"
)

// Session is the client-side session: an opaque bearer token and the delivery
// pincode used to scope catalog availability and pricing.
type Session struct {
	Token   string `json:"-"`
	Pincode string `json:"pincode"`
}

// LoggedIn reports whether a bearer token is present.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// SessionEntry is one persisted session key.
type SessionEntry struct {
	Key       string `gorm:"column:session_key;primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName pins the table name regardless of naming strategy.
func (SessionEntry) TableName() string {
	return "session_entries"
}

// PincodeRequest is the body of a pincode change.
type PincodeRequest struct {
	Pincode string `json:"pincode" validate:"required,numeric,len=6"`
}
