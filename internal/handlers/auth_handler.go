package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/models"
	"stockroom/internal/services"
)

type AuthHandler struct {
	codes  *services.LoginCodeService
	auth   *services.AuthService
	google *services.GoogleAuthService
}

func NewAuthHandler(codes *services.LoginCodeService, auth *services.AuthService, google *services.GoogleAuthService) *AuthHandler {
	return &AuthHandler{codes: codes, auth: auth, google: google}
}

// @Summary      Request a one-time login code
// @Description  Emails a short-lived numeric code to the given address
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.RequestCodeRequest  true  "Email to send the code to"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      429      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/request_code [post]
func (h *AuthHandler) RequestCode(c *gin.Context) {
	var req models.RequestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][request_code] bad request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.codes.Issue(req.Email, time.Now())
	switch {
	case errors.Is(err, services.ErrResendThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many codes requested, try again later"})
		return
	case errors.Is(err, services.ErrDeliveryFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not deliver the code"})
		return
	case err != nil:
		log.Printf("[auth][request_code] issue failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create login code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Code sent",
		"expires_at": rec.ExpiresAt,
	})
}

// @Summary      Verify a login code
// @Description  Exchanges an email + code pair for tokens; provisions a staff account on first login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.VerifyCodeRequest  true  "Email and code"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      429      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/verify_code [post]
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req models.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, tokens, err := h.codes.Verify(req.Email, req.Code, time.Now())
	switch {
	case errors.Is(err, services.ErrNoMatch), errors.Is(err, services.ErrExpiredOrUsed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired code"})
		return
	case errors.Is(err, services.ErrLocked):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, try again later"})
		return
	case err != nil:
		log.Printf("[auth][verify_code] verify failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not verify code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"tokens":  tokens,
	})
}

// @Summary      Sign in with Google
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.GoogleAuthRequest  true  "Google ID token"
// @Success      200      {object}  map[string]interface{}
// @Failure      401      {object}  map[string]string
// @Router       /auth/google [post]
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, tokens, err := h.google.SignIn(c.Request.Context(), req.IDToken)
	if errors.Is(err, services.ErrGoogleToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
		return
	}
	if err != nil {
		log.Printf("[auth][google] sign-in failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not sign in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"tokens":  tokens,
	})
}

// @Summary      Rotate a refresh token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.TokenPair
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, tokens, err := h.auth.Refresh(req.RefreshToken)
	if errors.Is(err, services.ErrInvalidRefresh) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not refresh session"})
		return
	}
	c.JSON(http.StatusOK, tokens)
}
