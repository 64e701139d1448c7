package replica

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"lifeboat/internal/config"
	"lifeboat/internal/life"
)

// S3Replica stores snapshot data files in an S3 bucket under
// <prefix>/snapshots/<snapshotID>.db. Uploads go through the multipart
// upload manager so large data files stream without buffering.
type S3Replica struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Replica creates an S3-backed replica from configuration.
// Credentials come from the default AWS chain unless a static key pair is
// configured; a custom endpoint supports S3-compatible stores.
func NewS3Replica(ctx context.Context, cfg config.ReplicaConfig) (*S3Replica, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 replica requires s3_bucket to be set")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Replica{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
	}, nil
}

func (r *S3Replica) key(snapshotID string) string {
	return path.Join(r.prefix, "snapshots", snapshotID+".db")
}

// Put streams the data file for a snapshot to the bucket. size is ignored:
// the upload manager chunks the stream itself.
func (r *S3Replica) Put(ctx context.Context, snapshotID string, src io.Reader, _ int64) error {
	_, err := r.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(snapshotID)),
		Body:   src,
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot %s: %w", snapshotID, err)
	}
	return nil
}

// Get retrieves a snapshot's data file and writes it to w.
func (r *S3Replica) Get(ctx context.Context, snapshotID string, w io.Writer) error {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(snapshotID)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return fmt.Errorf("replica snapshot %s: %w", snapshotID, life.ErrNotFound)
		}
		return fmt.Errorf("fetching snapshot %s: %w", snapshotID, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading snapshot %s: %w", snapshotID, err)
	}
	return nil
}

// List returns the snapshot IDs present in the bucket, in lexicographic
// order (S3 lists keys sorted).
func (r *S3Replica) List(ctx context.Context) ([]string, error) {
	keyPrefix := path.Join(r.prefix, "snapshots") + "/"

	var ids []string
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(keyPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing replica: %w", err)
		}
		for _, obj := range page.Contents {
			name := path.Base(aws.ToString(obj.Key))
			if ext := path.Ext(name); ext == ".db" {
				ids = append(ids, name[:len(name)-len(ext)])
			}
		}
	}
	return ids, nil
}

// Validate verifies the bucket is reachable.
func (r *S3Replica) Validate(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", r.bucket, err)
	}
	return nil
}

// Compile-time check that S3Replica implements life.Replica
var _ life.Replica = (*S3Replica)(nil)
