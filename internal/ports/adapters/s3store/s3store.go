package s3store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/forPelevin/hlshorts/internal/types"
)

// Options fall back to the standard AWS config and credential chain.
type Options struct {
	Bucket       string
	Prefix       string
	Region       string
	Profile      string
	UsePathStyle bool
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads finished shorts and their timestamps to a bucket.
type Store struct {
	client putObjectAPI
	bucket string
	prefix string
}

func New(ctx context.Context, o Options) (*Store, error) {
	if o.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	var loadOpts []func(*config.LoadOptions) error
	if o.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.Region))
	}
	if o.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	c := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		so.UsePathStyle = o.UsePathStyle
	})
	return &Store{client: c, bucket: o.Bucket, prefix: o.Prefix}, nil
}

func (s *Store) Name() string { return "s3" }

// Publish uploads the video and, when present, the timestamps file under
// the same key prefix. It returns the video's s3:// URI.
func (s *Store) Publish(ctx context.Context, item types.PublishItem) (string, error) {
	base := strings.TrimSuffix(filepath.Base(item.VideoPath), filepath.Ext(item.VideoPath))
	videoKey := s.key(base, filepath.Base(item.VideoPath))
	if err := s.put(ctx, videoKey, item.VideoPath, "video/mp4"); err != nil {
		return "", err
	}
	if item.TimestampsPath != "" {
		if err := s.put(ctx, s.key(base, filepath.Base(item.TimestampsPath)), item.TimestampsPath, "application/json"); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, videoKey), nil
}

func (s *Store) key(parts ...string) string {
	return path.Join(append([]string{strings.Trim(s.prefix, "/")}, parts...)...)
}

func (s *Store) put(ctx context.Context, key, file, contentType string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("s3: open %s: %w", file, err)
	}
	defer f.Close()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", key, err)
	}
	return nil
}
