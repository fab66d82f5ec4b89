package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	appcfg "scoresheet/internal/config"
	"scoresheet/internal/logging"
	"scoresheet/internal/sheet"
)

// Client copies saved score files into a MinIO/S3 bucket.
type Client struct {
	s3     *s3.Client
	bucket string
	prefix string
	log    *zap.Logger
}

func New(ctx context.Context, m appcfg.Mirror, log *zap.Logger) (*Client, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("object mirror is not configured")
	}
	endpoint := m.Endpoint
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{URL: endpoint, HostnameImmutable: true}, nil
	})
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(m.AccessKey,
			m.SecretKey,
			"")),
		config.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}
	return &Client{
		s3:     s3.NewFromConfig(cfg),
		bucket: m.Bucket,
		prefix: m.Prefix,
		log:    logging.OrNop(log),
	}, nil
}

// ObjectKey places a path relative to the save directory under prefix,
// always with forward slashes.
func ObjectKey(prefix, rel string) string {
	rel = strings.TrimLeft(filepath.ToSlash(rel), "/")
	if prefix = strings.Trim(prefix, "/"); prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// Ref formats an s3:// reference for key in this client's bucket.
func (c *Client) Ref(key string) string {
	return fmt.Sprintf("s3://%s/%s", c.bucket, key)
}

// PutFile uploads the file at local to prefix/rel and returns its s3:// ref.
func (c *Client) PutFile(ctx context.Context, local, rel string) (string, error) {
	f, err := os.Open(local)
	if err != nil {
		return "", err
	}
	defer f.Close()

	contentType := "application/octet-stream"
	if format, err := sheet.FormatOf(local); err == nil {
		contentType = format.ContentType()
	}
	key := ObjectKey(c.prefix, rel)
	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		c.log.Error("failed to put s3 object", zap.String("key", key), zap.Error(err))
		return "", err
	}
	ref := c.Ref(key)
	c.log.Info("mirrored scores", zap.String("ref", ref))
	return ref, nil
}

// ParseRef splits an s3://bucket/key reference.
func ParseRef(ref string) (string, string, error) {
	const p = "s3://"
	if !strings.HasPrefix(ref, p) {
		return "", "", fmt.Errorf("bad s3 ref (missing s3://): %q", ref)
	}
	s := strings.TrimPrefix(ref, p)
	slash := strings.IndexByte(s, '/')
	if slash <= 0 || slash == len(s)-1 {
		return "", "", fmt.Errorf("bad s3 ref (need bucket/key): %q", ref)
	}
	return s[:slash], s[slash+1:], nil
}
