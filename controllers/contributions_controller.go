package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kamau/chamacircle-go/config"
	"github.com/kamau/chamacircle-go/services"
)

// ---------------- MY CONTRIBUTIONS ----------------
// Returns the caller's aggregated contribution and payout projection across
// all their groups. This is a cycle-arithmetic estimate, not a reconciliation
// against the payment ledger.
func MyContributions(cfg *config.Config, svc *services.ContributionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		summary, err := svc.UserContributions(ctx, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
