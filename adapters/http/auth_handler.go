package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authUC "github.com/minhvu/portfolio-hub/internal/application/usecase/auth"
)

type AuthHandler struct {
	sessions *authUC.SessionUseCase
}

func NewAuthHandler(sessions *authUC.SessionUseCase) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'username' and 'password' are required"})
		return
	}

	output, err := h.sessions.Login(c.Request.Context(), authUC.LoginInput{
		Username:   req.Username,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: output.AccessToken,
		Session:     ToSessionDTO(output.Session),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Session(c *gin.Context) {
	session, found, err := h.sessions.CurrentSession(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "session": ToSessionDTO(*session)})
}
