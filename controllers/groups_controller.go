package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kamau/chamacircle-go/config"
	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/services"
)

// ---------------- CREATE (admin) ----------------
func CreateGroup(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Title  string  `json:"title" binding:"required"`
			Amount float64 `json:"amount" binding:"required"`
			Plan   string  `json:"plan" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		group, err := svc.CreateGroup(ctx, input.Title, input.Amount, models.Plan(input.Plan))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, group)
	}
}

// ---------------- LIST ----------------
func ListGroups(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		groups, err := svc.ListGroups(ctx)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, groups)
	}
}

// ---------------- GET ----------------
func GetGroup(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := pathID(c, "id", "group")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		group, err := svc.GetGroup(ctx, groupID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, group)
	}
}

// ---------------- MY GROUPS ----------------
func MyGroups(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		groups, err := svc.UserGroups(ctx, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, groups)
	}
}

// ---------------- JOIN ----------------
func JoinGroup(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		groupID, ok := pathID(c, "id", "group")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		group, err := svc.JoinGroup(ctx, groupID, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, group)
	}
}

// ---------------- NEXT PAYOUT ----------------
func NextPayout(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := pathID(c, "id", "group")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		preview, err := svc.NextPayout(ctx, groupID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, preview)
	}
}
