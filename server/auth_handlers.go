package server

import (
	"net/http"

	errs "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		if !s.DB.Available() {
			status = "degraded"
		}
		response.JSON(c, "health check", http.StatusOK, gin.H{"database": status}, nil)
	}
}

func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		createdUser, err := s.AuthService.SignupUser(&user)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		response.JSON(c, "signup successful", http.StatusCreated, createdUser, nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginRequest models.LoginRequest
		if err := c.ShouldBindJSON(&loginRequest); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		loginResponse, apiErr := s.AuthService.LoginUser(&loginRequest)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "login successful", http.StatusOK, loginResponse, nil)
	}
}

func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok {
			respondAndAbort(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		accessToken, ok := c.MustGet("access_token").(string)
		if !ok {
			respondAndAbort(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}

		blacklist := &models.Blacklist{
			Email: user.Email,
			Token: accessToken,
		}
		if err := s.AuthRepository.AddToBlackList(blacklist); err != nil {
			response.JSON(c, "logout failed", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}

		response.JSON(c, "logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		user, err := s.AuthService.GetUserProfile(userID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "user profile", http.StatusOK, user, nil)
	}
}

func (s *Server) handleGetAllUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok || user.Role.Name != models.RoleAdmin {
			response.JSON(c, "admin access required", http.StatusForbidden, nil, errs.New("forbidden", http.StatusForbidden))
			return
		}
		users, err := s.AuthService.GetAllUsers()
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "all users", http.StatusOK, users, nil)
	}
}
