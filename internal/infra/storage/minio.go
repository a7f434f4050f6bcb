package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

// Archive keeps the uploaded originals in a MinIO bucket.
type Archive struct {
	client     *minio.Client
	bucketName string
	publicBase string
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Archive, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Archive{
		client:     cli,
		bucketName: bucket,
		publicBase: objectBase(cli.EndpointURL(), bucket),
	}, nil
}

// Put implementasi domain.DocumentArchive
func (a *Archive) Put(ctx context.Context, key string, doc domain.Document) (string, error) {
	_, err := a.client.PutObject(ctx, a.bucketName, key, bytes.NewReader(doc.Data), int64(len(doc.Data)),
		minio.PutObjectOptions{ContentType: contentType(doc)})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	// URL publik; bucket private butuh presigned URL
	return a.publicBase + "/" + key, nil
}

// Check reports whether the bucket is reachable and exists.
func (a *Archive) Check(ctx context.Context) error {
	ok, err := a.client.BucketExists(ctx, a.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q not found", a.bucketName)
	}
	return nil
}

func objectBase(u *url.URL, bucket string) string {
	return fmt.Sprintf("%s://%s/%s", u.Scheme, u.Host, bucket)
}

func contentType(doc domain.Document) string {
	if strings.TrimSpace(doc.ContentType) != "" {
		return doc.ContentType
	}
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".txt":
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}
