package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/kamau/chamacircle-go/config"
	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage"
	"github.com/kamau/chamacircle-go/utils"
)

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func issueTokens(cfg *config.Config, user *models.User) (*tokenPair, error) {
	access, err := utils.GenerateToken(cfg.JWTSecret, cfg.AccessTokenTTL, user)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateToken(cfg.JWTRefreshSecret, cfg.RefreshTokenTTL, user)
	if err != nil {
		return nil, err
	}
	return &tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ---------------- REGISTER ----------------
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=8"`
			FullName string `json:"full_name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		email := strings.ToLower(input.Email)
		if _, err := cfg.Store.GetUserByEmail(ctx, email); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		} else if !errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check email"})
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}

		now := time.Now()
		user := &models.User{
			Email:    email,
			FullName: input.FullName,
			Password: string(hashed),
			// first admin is bootstrapped by email
			IsAdmin:   cfg.AdminEmail != "" && strings.EqualFold(email, cfg.AdminEmail),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := cfg.Store.CreateUser(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}

		tokens, err := issueTokens(cfg, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"user": user, "tokens": tokens})
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		user, err := cfg.Store.GetUserByEmail(ctx, strings.ToLower(input.Email))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		tokens, err := issueTokens(cfg, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
	}
}

// ---------------- REFRESH ----------------
func RefreshToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		claims, err := utils.ParseToken(cfg.JWTRefreshSecret, input.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
			return
		}
		userID, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token subject"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// re-read the user so a demoted admin loses the flag on refresh
		user, err := cfg.Store.GetUserByID(ctx, userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
			return
		}

		tokens, err := issueTokens(cfg, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"tokens": tokens})
	}
}
