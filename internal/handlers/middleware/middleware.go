package middleware

import (
	"roomcare/config"
	authController "roomcare/internal/controllers/auth"
	"roomcare/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type Middleware struct {
	auth      authController.AuthControllerInterface
	rateLimit *services.RateLimitService
	Config    config.Config
	log       logger.Logger
}

func New(
	auth authController.AuthControllerInterface,
	rateLimit *services.RateLimitService,
	config config.Config,
) Middleware {
	return Middleware{
		auth:      auth,
		rateLimit: rateLimit,
		Config:    config,
		log:       logger.New("middleware"),
	}
}
