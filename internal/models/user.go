package models

import (
	"time"
)

type UserRole string

const (
	RoleNDMAAdmin  UserRole = "ndma_admin"
	RoleSDMAAdmin  UserRole = "sdma_admin"
	RoleTrainer    UserRole = "trainer"
	RolePartnerOrg UserRole = "partner_org"
	RoleVolunteer  UserRole = "volunteer"
)

// User is the authenticated principal, materialized per request from the
// identity provider. It is never persisted by this service; the geography
// assignment (HomeState, HomeDistrictName) comes from identity claims and
// HomeDistrictID is resolved lazily against the district catalog.
type User struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`

	// Geography assignment, normalized lowercase
	HomeState        string `json:"home_state,omitempty"`
	HomeDistrictName string `json:"home_district,omitempty"`
	HomeDistrictID   *uint  `json:"home_district_id,omitempty"`

	MobileNumber string `json:"mobile_number,omitempty"`
	IsActive     bool   `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the role carries unconditional access.
func (u *User) IsAdmin() bool {
	return u.Role == RoleNDMAAdmin
}

// ReadOnly reports whether the role may never mutate sessions.
func (u *User) ReadOnly() bool {
	return u.Role == RoleVolunteer || u.Role == RolePartnerOrg
}
