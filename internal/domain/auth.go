package domain

type RegisterInput struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	BusinessName string  `json:"businessName" validate:"max=200"`
	GSTIN        *string `json:"gstin" validate:"omitempty,len=15"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required"`
	PhoneNumber  string  `json:"phoneNumber" validate:"max=20"`
	Address      string  `json:"address" validate:"max=500"`
}

const (
	AggregateUser = "user"

	EventPasswordResetRequested = "PasswordResetRequested"
	EventPasswordChanged        = "PasswordChanged"
)

type PasswordResetRequestedEvent struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

type PasswordChangedEvent struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}
