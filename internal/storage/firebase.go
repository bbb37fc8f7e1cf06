package storage

import (
	"context"
	"fmt"
	"os"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	fbstorage "firebase.google.com/go/v4/storage"
	"google.golang.org/api/option"
)

// FirebaseUploader stores objects in Google Cloud Storage buckets via the
// Firebase Admin SDK.
type FirebaseUploader struct {
	client *fbstorage.Client
}

// NewFirebaseUploader initializes the Firebase app from a service account
// credentials file and returns an Uploader over its storage client.
func NewFirebaseUploader(ctx context.Context, credentialsPath string) (*FirebaseUploader, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("storage credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("storage credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting storage client: %w", err)
	}
	return &FirebaseUploader{client: client}, nil
}

func (u *FirebaseUploader) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error) {
	handle, err := u.client.Bucket(bucket)
	if err != nil {
		return "", fmt.Errorf("bucket %s: %w", bucket, err)
	}

	w := handle.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("writing object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing object %s: %w", object, err)
	}

	// Uploaded content is served publicly.
	if err := handle.Object(object).ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", fmt.Errorf("setting object ACL: %w", err)
	}
	return u.PublicURL(bucket, object), nil
}

func (u *FirebaseUploader) Remove(ctx context.Context, bucket string, objects ...string) error {
	handle, err := u.client.Bucket(bucket)
	if err != nil {
		return fmt.Errorf("bucket %s: %w", bucket, err)
	}
	for _, object := range objects {
		if err := handle.Object(object).Delete(ctx); err != nil && err != gcs.ErrObjectNotExist {
			return fmt.Errorf("deleting object %s: %w", object, err)
		}
	}
	return nil
}

func (u *FirebaseUploader) PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}
