package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kamau/chamacircle-go/config"
	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/services"
	"github.com/kamau/chamacircle-go/utils"
)

// ---------------- CREATE ----------------
func CreatePayment(cfg *config.Config, svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		// --- Bind form fields ---
		var input struct {
			GroupID           string  `form:"group_id" binding:"required"`
			Amount            float64 `form:"amount" binding:"required"`
			UserBankName      string  `form:"user_bank_name" binding:"required"`
			UserAccountName   string  `form:"user_account_name" binding:"required"`
			UserAccountNumber string  `form:"user_account_number" binding:"required"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		groupID, err := parseID(input.GroupID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
			return
		}

		// --- Optional receipt upload ---
		var receiptURL string
		if fileHeader, err := c.FormFile("receipt"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
				return
			}
			receiptURL, err = utils.UploadReceipt(file, fileHeader)
			file.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "receipt upload failed",
					"details": err.Error(),
				})
				return
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payment, err := svc.CreatePayment(ctx, userID, services.CreatePaymentInput{
			GroupID:           groupID,
			Amount:            input.Amount,
			UserBankName:      input.UserBankName,
			UserAccountName:   input.UserAccountName,
			UserAccountNumber: input.UserAccountNumber,
			ReceiptURL:        receiptURL,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, payment)
	}
}

// ---------------- MY PAYMENTS ----------------
func MyPayments(cfg *config.Config, svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		payments, err := svc.GetUserPayments(ctx, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

// ---------------- LIST (admin) ----------------
func ListPayments(cfg *config.Config, svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var (
			payments []models.Payment
			err      error
		)
		if status := c.Query("status"); status != "" {
			payments, err = svc.GetAllPaymentsByStatus(ctx, models.PaymentStatus(status))
		} else {
			payments, err = svc.GetAllPayments(ctx)
		}
		if err != nil {
			respondServiceError(c, err)
			return
		}

		if len(payments) == 0 {
			c.JSON(http.StatusOK, []models.Payment{})
			return
		}

		// --- ETag from the most recently updated payment ---
		latest := payments[0]
		for _, p := range payments {
			if p.UpdatedAt.After(latest.UpdatedAt) {
				latest = p
			}
		}
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, payments)
	}
}

// ---------------- PENDING (admin) ----------------
func PendingPayments(cfg *config.Config, svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		payments, err := svc.GetPendingPayments(ctx)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

// ---------------- GET ----------------
func GetPayment(cfg *config.Config, svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID, ok := pathID(c, "id", "payment")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payment, err := svc.GetPaymentByID(ctx, paymentID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		// members may only see their own payments
		if c.GetString("role") != "admin" && payment.UserID.Hex() != c.GetString("user_id") {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}

// ---------------- UPDATE STATUS (admin) ----------------
func UpdatePaymentStatus(cfg *config.Config, svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID, ok := pathID(c, "id", "payment")
		if !ok {
			return
		}

		var input struct {
			Status     string `json:"status" binding:"required"`
			AdminNotes string `json:"admin_notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payment, err := svc.UpdatePaymentStatus(ctx, paymentID, models.PaymentStatus(input.Status), input.AdminNotes)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		// best-effort notification, never blocks the response
		go notifyPaymentDecision(cfg, payment)

		c.JSON(http.StatusOK, payment)
	}
}

func notifyPaymentDecision(cfg *config.Config, payment *models.Payment) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := cfg.Store.GetUserByID(ctx, payment.UserID)
	if err != nil {
		return
	}
	groupTitle := "your group"
	if group, err := cfg.Store.GetGroup(ctx, payment.GroupID); err == nil {
		groupTitle = group.Title
	}
	utils.NotifyPaymentDecision(user.Email, user.FullName, groupTitle, string(payment.Status), payment.AdminNotes)
}
