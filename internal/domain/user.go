package domain

import (
	"encoding/json"
	"time"
)

// Role gates privileged behavior in downstream middleware.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// UserProfile is the profile document persisted per account, keyed by the
// identity provider's uid. Field names follow the document's wire format.
type UserProfile struct {
	UID         string            `json:"uid"`
	Email       string            `json:"email"`
	FullName    string            `json:"fullName"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	LastLogin   time.Time         `json:"lastLogin"`
	Purchases   []json.RawMessage `json:"purchases"`
	Role        Role              `json:"role"`
}

// Normalize fills defaults for fields older documents may lack: purchases is
// never nil and role falls back to USER.
func (p *UserProfile) Normalize() {
	if p.Purchases == nil {
		p.Purchases = []json.RawMessage{}
	}
	if p.Role == "" {
		p.Role = RoleUser
	}
}
