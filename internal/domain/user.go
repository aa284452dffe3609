package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID                     int64      `db:"id" json:"id"`
	Name                   string     `db:"name" json:"name"`
	BusinessName           string     `db:"business_name" json:"businessName"`
	GSTIN                  *string    `db:"gstin" json:"gstin,omitempty"`
	Email                  string     `db:"email" json:"email"`
	PasswordHash           string     `db:"password_hash" json:"-"`
	PhoneNumber            string     `db:"phone_number" json:"phoneNumber"`
	Address                string     `db:"address" json:"address"`
	Role                   Role       `db:"role" json:"role"`
	ResetPasswordToken     *string    `db:"reset_password_token" json:"-"`
	ResetPasswordExpiresAt *time.Time `db:"reset_password_expires_at" json:"-"`
	CreatedAt              time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UpdateProfileInput struct {
	Name         *string `json:"name"`
	BusinessName *string `json:"businessName"`
	GSTIN        *string `json:"gstin"`
	PhoneNumber  *string `json:"phoneNumber"`
	Address      *string `json:"address"`
}

type Session struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Requester is the authenticated caller of an operation.
type Requester struct {
	UserID int64
	Role   Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}
