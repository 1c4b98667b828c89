package storage

import (
	"bytes"
	"context"
	"digest/digest/config"
	"digest/digest/services/article"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient archives extracted articles, one object per summary record.
type MinIOClient struct {
	client *minio.Client
	bucket string
}

type ArticleObject struct {
	SummaryID int              `json:"summary_id"`
	Article   *article.Article `json:"article"`
	Timestamp time.Time        `json:"timestamp"`
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*MinIOClient, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		},
	)
	if err != nil {
		return nil, err
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinIOClient{client: client, bucket: cfg.MinIOBucket}, nil
}

func ArticleKey(summaryID int) string {
	return fmt.Sprintf("articles/%d.json", summaryID)
}

func (m *MinIOClient) UploadArticle(ctx context.Context, summaryID int, a *article.Article) (string, error) {
	key := ArticleKey(summaryID)
	data, err := json.Marshal(ArticleObject{SummaryID: summaryID, Article: a, Timestamp: time.Now()})
	if err != nil {
		return "", err
	}
	_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}
	return key, nil
}

// GetArticle returns nil, nil when nothing was archived for summaryID.
func (m *MinIOClient) GetArticle(ctx context.Context, summaryID int) (*ArticleObject, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, ArticleKey(summaryID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}
	var out ArticleObject
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MinIOClient) DeleteArticle(ctx context.Context, summaryID int) error {
	return m.client.RemoveObject(ctx, m.bucket, ArticleKey(summaryID), minio.RemoveObjectOptions{})
}
