package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	errs "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/services/jwt"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := getTokenFromHeader(c)
		if accessToken == "" {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.New("unauthorized", http.StatusUnauthorized))
			return
		}

		if s.AuthRepository.IsTokenInBlacklist(accessToken) {
			respondAndAbort(c, "access token is no longer valid", http.StatusUnauthorized, nil, errs.New("unauthorized", http.StatusUnauthorized))
			return
		}

		accessClaims, err := jwt.ValidateAndGetClaims(accessToken, s.Config.JWTSecret)
		if err != nil {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.New("unauthorized", http.StatusUnauthorized))
			return
		}

		var userID uint
		switch v := accessClaims["id"].(type) {
		case float64:
			userID = uint(v)
		default:
			respondAndAbort(c, "", http.StatusBadRequest, nil, errs.New("invalid userID format", http.StatusBadRequest))
			return
		}

		user, err := s.AuthRepository.FindUserByID(userID)
		if err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				respondAndAbort(c, "user not found", http.StatusUnauthorized, nil, errs.New(err.Error(), http.StatusUnauthorized))
			default:
				respondAndAbort(c, "unable to find entity", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			}
			return
		}
		if !user.IsActive {
			respondAndAbort(c, "inactive user", http.StatusUnauthorized, nil, errs.New(errs.InActiveUserError.Error(), http.StatusUnauthorized))
			return
		}

		c.Set("user", user)
		c.Set("userID", userID)
		c.Set("access_token", accessToken)
		c.Set("fullName", user.Fullname)
		c.Next()
	}
}

// limitRateForAIEndpoints throttles the completion and transcription routes.
// These fan out to a paid upstream, so one client gets 30 calls a minute.
func limitRateForAIEndpoints(store ratelimit.Store) gin.HandlerFunc {
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler:   errs.ErrorHandler,
		KeyFunc:        keyFunc,
		BeforeResponse: nil,
	})
}

func newAIRateLimitStore() ratelimit.Store {
	return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 30,
	})
}

func keyFunc(c *gin.Context) string {
	if userID, ok := c.Get("userID"); ok {
		if id, ok := userID.(uint); ok {
			return fmt.Sprintf("%d:%s", id, c.ClientIP())
		}
	}
	return c.ClientIP()
}
