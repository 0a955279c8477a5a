package gcs

import (
	"context"
	"fmt"
	"log/slog"

	"repayment-worker/internal/pkg/consts"
	"repayment-worker/internal/pkg/log_messages"
	"repayment-worker/internal/pkg/logger"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSClient struct {
	Client     *storage.Client
	BucketName string
	FolderName string
}

type GcsInterface interface {
	Upload(ctx context.Context, objectName string, data []byte) error
	Close(ctx context.Context)
}

func NewGCSClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (GcsInterface, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSClient{
		Client:     client,
		BucketName: bucketName,
		FolderName: consts.GCSFolderName,
	}, nil
}

func (g *GCSClient) Close(ctx context.Context) {
	if g.Client == nil {
		return
	}
	if err := g.Client.Close(); err != nil {
		logger.CtxError(ctx, log_messages.ErrorClosingGCSClient, err)
	}
}

// Upload writes one JSON document under the configured folder. Objects are
// write-once; an existing object with the same name is left untouched.
func (g *GCSClient) Upload(ctx context.Context, objectName string, data []byte) error {
	fullName := fmt.Sprintf("%s/%s", g.FolderName, objectName)
	object := g.Client.Bucket(g.BucketName).Object(fullName)
	writer := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(data); err != nil {
		logger.CtxError(ctx, log_messages.ErrorUploadingToGCSBucket, err)
		return err
	}
	if err := writer.Close(); err != nil {
		logger.CtxError(ctx, log_messages.ErrorClosingGCSWriter, err)
		return err
	}
	logger.CtxInfo(ctx, log_messages.UploadedToGCSBucket, slog.String("objectName", fullName))
	return nil
}
