package domain

import "context"

// Service is the identity surface exposed to the HTTP layer.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	CurrentUser(ctx context.Context, accessToken string) (*User, error)
	UpdateProfile(ctx context.Context, user *User, req UpdateProfileRequest) (*User, error)
	DeleteAccount(ctx context.Context, user *User) error
	ChangePassword(ctx context.Context, user *User, oldPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) (mailSent bool, err error)
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
	ResendVerification(ctx context.Context, email string) (mailSent bool, err error)
	CompleteVerification(ctx context.Context, token string) error
}

type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// RegisterResult reports the created user and whether the verification mail
// went out. Mail failure does not fail registration.
type RegisterResult struct {
	User     *User
	MailSent bool
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

type UpdateProfileRequest struct {
	FirstName *string
	LastName  *string
}
