package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"africana_backend/internal/database"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// UploadProductImage pousse une image produit dans le bucket et
// retourne la clé d'objet stockée en base.
func UploadProductImage(file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := bucketName()
	objectName := fmt.Sprintf("products/%s%s", uuid.NewString(), filepath.Ext(file.Filename))

	_, err = database.MinIO.PutObject(context.Background(), bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	return objectName, nil
}

// GenerateSignedURL retourne une URL présignée (lecture, 24 h) pour un
// objet du bucket.
func GenerateSignedURL(objectName string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	reqParams := make(url.Values)
	presigned, err := database.MinIO.PresignedGetObject(context.Background(),
		bucketName(), objectName, 24*time.Hour, reqParams)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}

// DeleteObject supprime un objet du bucket (image retirée d'un produit).
func DeleteObject(objectName string) error {
	if database.MinIO == nil {
		return fmt.Errorf("MinIO non initialisé")
	}
	return database.MinIO.RemoveObject(context.Background(), bucketName(), objectName,
		minio.RemoveObjectOptions{})
}

func bucketName() string {
	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "africana-images"
	}
	return bucket
}
