package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/services"
)

const defaultSessionCookie = "tailor_session"

func sessionCookieName() string {
	if cfg := config.GetConfig(); cfg != nil && cfg.SessionCookieName != "" {
		return cfg.SessionCookieName
	}
	return defaultSessionCookie
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	secure := false
	if cfg := config.GetConfig(); cfg != nil {
		secure = cfg.IsProduction()
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName(), token, maxAge, "/", "", secure, true)
}

// Login handles POST /api/login - signs an owner in, registering the
// username on first use
func Login(c *gin.Context) {
	var req services.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	result, err := services.NewAuthService(config.GetDB(), logger.L()).Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, expiresAt, err := services.GetSessionStore().Create(c.Request.Context(), result.Owner.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	setSessionCookie(c, token, int(time.Until(expiresAt).Seconds()))

	message := "Logged in successfully"
	if result.Created {
		message = "User created and logged in successfully"
	}
	respond(c, http.StatusOK, message, gin.H{
		"isLoggedIn":      true,
		"username":        result.Owner.Username,
		"saveCredentials": result.Owner.SaveCredentials,
	})
}

// CheckSession handles GET /api/check-session
func CheckSession(c *gin.Context) {
	loggedIn := false
	if token, err := c.Cookie(sessionCookieName()); err == nil && token != "" {
		_, err := services.GetSessionStore().Lookup(c.Request.Context(), token)
		if err != nil && !errors.Is(err, services.ErrSessionNotFound) {
			respondError(c, err)
			return
		}
		loggedIn = err == nil
	}
	respond(c, http.StatusOK, "", gin.H{"isLoggedIn": loggedIn})
}

// Logout handles POST /api/logout - ends the session and forgets the saved
// username unless the owner chose to keep it
func Logout(c *gin.Context) {
	token, err := c.Cookie(sessionCookieName())
	if err == nil && token != "" {
		store := services.GetSessionStore()
		ownerID, err := store.Lookup(c.Request.Context(), token)
		if err == nil {
			if err := services.NewAuthService(config.GetDB(), logger.L()).Logout(c.Request.Context(), ownerID); err != nil {
				respondError(c, err)
				return
			}
		}
		if err := store.Destroy(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}

	setSessionCookie(c, "", -1)
	respond(c, http.StatusOK, "Logged out successfully", gin.H{"isLoggedIn": false})
}

// GetSavedCredentials handles POST /api/get-saved-credentials
func GetSavedCredentials(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	saved, err := services.NewAuthService(config.GetDB(), logger.L()).SavedCredentials(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", saved)
}

// Dashboard handles GET /api/dashboard
func Dashboard(c *gin.Context) {
	if _, ok := currentOwner(c); !ok {
		return
	}
	respond(c, http.StatusOK, "Welcome to the dashboard!", nil)
}
