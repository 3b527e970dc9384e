package service

import (
	"github.com/clerk/clerk-sdk-go/v2"

	"github.com/deppfellow/kennywood-api/internal/config"
	"github.com/deppfellow/kennywood-api/internal/server"
)

type AuthService struct {
	server   *server.Server
	provider string
}

// NewAuthService configures the Clerk SDK when Clerk issues the sessions.
// The JWT provider needs no global setup.
func NewAuthService(s *server.Server) *AuthService {
	if s.Config.Auth.Provider == config.AuthProviderClerk {
		clerk.SetKey(s.Config.Auth.SecretKey)
	}
	return &AuthService{
		server:   s,
		provider: s.Config.Auth.Provider,
	}
}

func (a *AuthService) Provider() string {
	return a.provider
}
