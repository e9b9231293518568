// Package controllers holds the gin HTTP handlers. Handlers bind and
// validate input, call into the services, and translate service errors to
// status codes; they hold no business logic of their own.
package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/services"
)

// currentUserID reads the authenticated caller's id set by the auth
// middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	uid := c.GetString("user_id")
	userID, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// parseID parses an object id carried in a request body or form field.
func parseID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

// pathID parses an object id path parameter.
func pathID(c *gin.Context, param, what string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return primitive.NilObjectID, false
	}
	return oid, true
}

var badRequestErrs = []error{
	services.ErrInvalidAmount,
	services.ErrInvalidPlan,
	services.ErrInvalidPosition,
	services.ErrAlreadyMember,
	services.ErrNotMember,
	services.ErrGroupFull,
	services.ErrPositionTaken,
	services.ErrPayoutOrderIncomplete,
	services.ErrNoRecipientForCycle,
	services.ErrNotGroupMember,
	services.ErrDuplicatePendingPayment,
	services.ErrPaymentProcessed,
	services.ErrInvalidPaymentStatus,
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Everything outside the taxonomy is a storage/internal failure and stays
// opaque to the client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGroupNotFound), errors.Is(err, services.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	for _, known := range badRequestErrs {
		if errors.Is(err, known) {
			c.JSON(http.StatusBadRequest, gin.H{"error": known.Error()})
			return
		}
	}
	slog.Error("internal error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
