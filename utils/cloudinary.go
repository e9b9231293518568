package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

func getCloudinaryInstance() (*cloudinary.Cloudinary, error) {
	return cloudinary.NewFromParams(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
	)
}

func upload(file multipart.File, params uploader.UploadParams, timeout time.Duration) (string, error) {
	cld, err := getCloudinaryInstance()
	if err != nil {
		return "", fmt.Errorf("cloudinary config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	uploadResp, err := cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return "", fmt.Errorf("upload error: %v", err)
	}

	return uploadResp.SecureURL, nil
}

// UploadReceipt stores a payment receipt image in the "receipts" folder.
func UploadReceipt(file multipart.File, fileHeader *multipart.FileHeader) (string, error) {
	return upload(file, uploader.UploadParams{Folder: "receipts"}, 60*time.Second)
}

// UploadSermonAudio stores a sermon recording. Cloudinary treats audio as the
// "video" resource type.
func UploadSermonAudio(file multipart.File, fileHeader *multipart.FileHeader) (string, error) {
	return upload(file, uploader.UploadParams{
		Folder:       "sermons/audio",
		ResourceType: "video",
	}, 120*time.Second)
}

// UploadSermonImage stores a sermon cover image.
func UploadSermonImage(file multipart.File, fileHeader *multipart.FileHeader) (string, error) {
	return upload(file, uploader.UploadParams{Folder: "sermons/images"}, 60*time.Second)
}

// DeleteFromCloudinary removes an uploaded asset given its full URL.
func DeleteFromCloudinary(assetURL string) error {
	cld, err := getCloudinaryInstance()
	if err != nil {
		return fmt.Errorf("cloudinary config error: %v", err)
	}

	publicID, err := extractPublicID(assetURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %v", err)
	}

	return nil
}

// extractPublicID pulls the Cloudinary public ID out of a delivery URL.
func extractPublicID(assetURL string) (string, error) {
	parsedURL, err := url.Parse(assetURL)
	if err != nil {
		return "", err
	}

	// Example: https://res.cloudinary.com/demo/image/upload/v1234567890/receipts/abc123.jpg
	parts := strings.Split(parsedURL.Path, "/")

	if len(parts) < 3 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	// Remove version part (e.g. v1234567890)
	cleanPath := parts[len(parts)-2:]
	if strings.HasPrefix(cleanPath[0], "v") {
		parts = append(parts[:len(parts)-2], parts[len(parts)-1])
	}

	// Everything after /upload/ (folder + filename without extension)
	publicID := strings.TrimSuffix(path.Join(parts[3:]...), path.Ext(parts[len(parts)-1]))

	return publicID, nil
}
