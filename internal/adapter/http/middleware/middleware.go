package middleware

import (
	"github.com/famhub/location-tracking-system/pkg/logger"
)

type Middleware struct {
	tokens *TokenParser
	log    logger.Logger
}

func NewMiddleware(tokens *TokenParser, log logger.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		log:    log,
	}
}
