package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/embracingthegirlchild/site/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio uploads to a MinIO server.
type Minio struct {
	client *minio.Client
	cfg    config.MinioConfig
	prefix string
}

func NewMinio(cfg config.MinioConfig, prefix string) (*Minio, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL || strings.HasPrefix(cfg.Endpoint, "https://"),
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Minio{client: cl, cfg: cfg, prefix: prefix}, nil
}

func (m *Minio) Name() string { return config.BackendMinio }

// EnsureBucket creates the bucket when it does not exist yet.
func (m *Minio) EnsureBucket(ctx context.Context) error {
	ok, err := m.client.BucketExists(ctx, m.cfg.Bucket)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{})
}

func (m *Minio) Save(ctx context.Context, obj Object) (string, error) {
	key := prefixed(m.prefix, obj.Key)
	if !obj.Overwrite {
		key = withSuffix(key)
	}
	_, err := m.client.PutObject(ctx, m.cfg.Bucket, key,
		bytes.NewReader(obj.Data), int64(len(obj.Data)),
		minio.PutObjectOptions{ContentType: obj.ContentType})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", key, err)
	}
	return m.publicURL(key), nil
}

func (m *Minio) publicURL(key string) string {
	if m.cfg.PublicURL != "" {
		return joinURL(m.cfg.PublicURL, key)
	}
	u := m.client.EndpointURL()
	return joinURL(u.Scheme+"://"+u.Host, m.cfg.Bucket+"/"+key)
}
