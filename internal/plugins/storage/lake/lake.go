// Package lake reads the research data lake: the S3 bucket transcripts are
// uploaded to. Bodies are fetched on demand, one round trip per use, and
// never cached past the request that needed them.
package lake

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/util"
)

// ObjectInfo is listing metadata only; no body is fetched.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Options carries the partner-bucket credentials. The partner account uses
// dedicated keys, separate from any ambient AWS identity on the host.
type Options struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

type Loader struct {
	client *s3.Client
	bucket string
}

func NewLoader(ctx context.Context, opts Options) (*Loader, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Loader{client: s3.NewFromConfig(cfg), bucket: opts.Bucket}, nil
}

// Fetch reads one object as normalized UTF-8 text. Callers tolerate per-key
// failure; a bad object must never abort a batch.
func (l *Loader) Fetch(ctx context.Context, key string) (string, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("fetch s3://%s/%s: %w", l.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read s3://%s/%s: %w", l.bucket, key, err)
	}
	debuglog.Debug(debuglog.Detailed, "fetched %s (%d bytes)\n", key, len(data))
	return util.NormalizeText(string(data)), nil
}

// List returns metadata for every object under prefix, following
// continuation tokens.
func (l *Loader) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", l.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			infos = append(infos, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return infos, nil
}

// Bucket exposes the bucket name for building s3:// locators.
func (l *Loader) Bucket() string { return l.bucket }
