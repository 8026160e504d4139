package user

import "context"

// Service is the business logic contract of the user domain.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*LoginResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
