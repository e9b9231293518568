package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kamau/chamacircle-go/config"
	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/utils"
)

func parseSermonDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ---------------- CREATE (admin) ----------------
func CreateSermon(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Bind form fields ---
		var input struct {
			Title       string `form:"title" binding:"required"`
			Preacher    string `form:"preacher" binding:"required"`
			Description string `form:"description"`
			Date        string `form:"date" binding:"required"`
			Duration    string `form:"duration"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		date, ok := parseSermonDate(input.Date)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
			return
		}

		// --- Required audio upload ---
		audioHeader, err := c.FormFile("audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
			return
		}
		audioFile, err := audioHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open audio file"})
			return
		}
		audioURL, err := utils.UploadSermonAudio(audioFile, audioHeader)
		audioFile.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "audio upload failed", "details": err.Error()})
			return
		}

		// --- Optional cover image ---
		var imageURL string
		if imageHeader, err := c.FormFile("image"); err == nil {
			imageFile, err := imageHeader.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open image file"})
				return
			}
			imageURL, err = utils.UploadSermonImage(imageFile, imageHeader)
			imageFile.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
				return
			}
		}

		now := time.Now()
		sermon := &models.Sermon{
			Title:       input.Title,
			Preacher:    input.Preacher,
			Description: input.Description,
			Date:        date,
			Duration:    input.Duration,
			AudioURL:    audioURL,
			ImageURL:    imageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := cfg.Store.CreateSermon(ctx, sermon); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create sermon"})
			return
		}
		c.JSON(http.StatusCreated, sermon)
	}
}

// ---------------- LIST ----------------
func ListSermons(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sermons, err := cfg.Store.ListSermons(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch sermons"})
			return
		}
		if len(sermons) == 0 {
			c.JSON(http.StatusOK, []models.Sermon{})
			return
		}

		latest := sermons[0]
		for _, s := range sermons {
			if s.UpdatedAt.After(latest.UpdatedAt) {
				latest = s
			}
		}
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, sermons)
	}
}

// ---------------- GET ----------------
func GetSermon(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sermonID, ok := pathID(c, "id", "sermon")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sermon, err := cfg.Store.GetSermon(ctx, sermonID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "sermon not found"})
			return
		}
		c.JSON(http.StatusOK, sermon)
	}
}

// ---------------- UPDATE (admin) ----------------
func UpdateSermon(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sermonID, ok := pathID(c, "id", "sermon")
		if !ok {
			return
		}

		var input struct {
			Title       string `form:"title"`
			Preacher    string `form:"preacher"`
			Description string `form:"description"`
			Date        string `form:"date"`
			Duration    string `form:"duration"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sermon, err := cfg.Store.GetSermon(ctx, sermonID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "sermon not found"})
			return
		}

		if input.Title != "" {
			sermon.Title = input.Title
		}
		if input.Preacher != "" {
			sermon.Preacher = input.Preacher
		}
		if input.Description != "" {
			sermon.Description = input.Description
		}
		if input.Duration != "" {
			sermon.Duration = input.Duration
		}
		if input.Date != "" {
			date, ok := parseSermonDate(input.Date)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
				return
			}
			sermon.Date = date
		}

		// --- Replace audio if a new file is provided ---
		if audioHeader, err := c.FormFile("audio"); err == nil {
			audioFile, err := audioHeader.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open audio file"})
				return
			}
			audioURL, err := utils.UploadSermonAudio(audioFile, audioHeader)
			audioFile.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "audio upload failed", "details": err.Error()})
				return
			}
			utils.DeleteFromCloudinary(sermon.AudioURL)
			sermon.AudioURL = audioURL
		}

		// --- Replace cover image if a new file is provided ---
		if imageHeader, err := c.FormFile("image"); err == nil {
			imageFile, err := imageHeader.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open image file"})
				return
			}
			imageURL, err := utils.UploadSermonImage(imageFile, imageHeader)
			imageFile.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
				return
			}
			if sermon.ImageURL != "" {
				utils.DeleteFromCloudinary(sermon.ImageURL)
			}
			sermon.ImageURL = imageURL
		}

		sermon.UpdatedAt = time.Now()
		if err := cfg.Store.UpdateSermon(ctx, sermon); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update sermon"})
			return
		}
		c.JSON(http.StatusOK, sermon)
	}
}

// ---------------- DELETE (admin) ----------------
func DeleteSermon(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sermonID, ok := pathID(c, "id", "sermon")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sermon, err := cfg.Store.GetSermon(ctx, sermonID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "sermon not found"})
			return
		}

		if err := cfg.Store.DeleteSermon(ctx, sermonID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete sermon"})
			return
		}

		utils.DeleteFromCloudinary(sermon.AudioURL)
		if sermon.ImageURL != "" {
			utils.DeleteFromCloudinary(sermon.ImageURL)
		}

		c.JSON(http.StatusOK, gin.H{"message": "sermon deleted", "id": sermonID.Hex()})
	}
}

// ---------------- COUNTERS ----------------
func RecordSermonPlay(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sermonID, ok := pathID(c, "id", "sermon")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sermon, err := cfg.Store.IncrementPlayCount(ctx, sermonID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "sermon not found"})
			return
		}
		c.JSON(http.StatusOK, sermon)
	}
}

func RecordSermonDownload(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sermonID, ok := pathID(c, "id", "sermon")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sermon, err := cfg.Store.IncrementDownloadCount(ctx, sermonID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "sermon not found"})
			return
		}
		c.JSON(http.StatusOK, sermon)
	}
}
