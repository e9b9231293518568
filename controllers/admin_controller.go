package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/config"
	"github.com/kamau/chamacircle-go/services"
)

// Admin-only group management: slot assignment, cycle control and deletion.

// ---------------- ADD USER ----------------
func AddUserToGroup(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := pathID(c, "id", "group")
		if !ok {
			return
		}

		var input struct {
			UserID   string `json:"user_id" binding:"required"`
			Position *int   `json:"position"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		userID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		group, err := svc.AddUserToGroup(ctx, groupID, userID, input.Position)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, group)
	}
}

// ---------------- REMOVE USER ----------------
func RemoveUserFromGroup(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := pathID(c, "id", "group")
		if !ok {
			return
		}
		userID, ok := pathID(c, "userId", "user")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		group, err := svc.RemoveUserFromGroup(ctx, groupID, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, group)
	}
}

// ---------------- ASSIGN NEXT PAYOUT ----------------
func AssignNextPayout(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := pathID(c, "id", "group")
		if !ok {
			return
		}

		var input struct {
			UserID string `json:"user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		userID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		group, err := svc.AssignNextPayout(ctx, groupID, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, group)
	}
}

// ---------------- ADVANCE CYCLE ----------------
func AdvanceGroupCycle(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := pathID(c, "id", "group")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		group, err := svc.MarkPayoutComplete(ctx, groupID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, group)
	}
}

// ---------------- DELETE GROUP ----------------
func DeleteGroup(cfg *config.Config, svc *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := pathID(c, "id", "group")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := svc.DeleteGroup(ctx, groupID); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "group deleted", "id": groupID.Hex()})
	}
}

// ---------------- TRANSACTIONS ----------------
func ListTransactions(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		txns, err := cfg.Store.ListTransactions(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch transactions"})
			return
		}
		c.JSON(http.StatusOK, txns)
	}
}
