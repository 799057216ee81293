package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ImageStore stocke les images produit
type ImageStore interface {
	Upload(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (string, error)
	SignedURL(ctx context.Context, objectURL string, ttl time.Duration) (string, error)
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

const defaultMinioRegion = "us-east-1"

// MinioImageStore range les images dans un bucket MinIO
type MinioImageStore struct {
	client *minio.Client
	cfg    MinioConfig
	log    *zap.Logger
}

// NewMinioImageStore : la région est fixée pour que les URL signées se calculent sans appel réseau
func NewMinioImageStore(cfg MinioConfig, log *zap.Logger) (*MinioImageStore, error) {
	if cfg.Region == "" {
		cfg.Region = defaultMinioRegion
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("client MinIO: %w", err)
	}
	return &MinioImageStore{client: client, cfg: cfg, log: log}, nil
}

// EnsureBucket crée le bucket s'il n'existe pas encore
func (m *MinioImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("vérification bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{Region: m.cfg.Region}); err != nil {
		return fmt.Errorf("création bucket: %w", err)
	}
	m.log.Info("🪣 Bucket MinIO créé", zap.String("bucket", m.cfg.Bucket))
	return nil
}

func (m *MinioImageStore) Upload(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := ObjectKey(productID, filename)
	_, err := m.client.PutObject(ctx, m.cfg.Bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload MinIO: %w", err)
	}
	m.log.Info("📸 Image produit envoyée", zap.String("product_id", productID), zap.String("key", key))
	return ObjectURL(m.cfg.Endpoint, m.cfg.Bucket, key, m.cfg.UseSSL), nil
}

// SignedURL génère une URL de lecture temporaire pour une image du bucket
func (m *MinioImageStore) SignedURL(ctx context.Context, objectURL string, ttl time.Duration) (string, error) {
	key := ObjectKeyFromURL(m.cfg.Endpoint, m.cfg.Bucket, objectURL, m.cfg.UseSSL)
	u, err := m.client.PresignedGetObject(ctx, m.cfg.Bucket, key, ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// ObjectKey : products/<id>/<uuid><ext>, le nom d'origine n'est gardé que pour l'extension
func ObjectKey(productID, filename string) string {
	return path.Join("products", productID, uuid.NewString()+strings.ToLower(path.Ext(filename)))
}

func ObjectURL(endpoint, bucket, key string, secure bool) string {
	scheme := "http"
	if secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, key)
}

func ObjectKeyFromURL(endpoint, bucket, objectURL string, secure bool) string {
	return strings.TrimPrefix(objectURL, ObjectURL(endpoint, bucket, "", secure))
}
