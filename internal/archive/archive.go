// Package archive uploads export artifacts (MPS dumps, infeasibility
// snapshots) to S3-compatible object storage. Grounded on the teacher's
// R2BackupService: a thin service wrapping an SDK client, one method per
// artifact kind, structured logging around the upload.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Store uploads weekly export artifacts to one S3 bucket.
type Store struct {
	uploader *manager.Uploader
	bucket   string
	log      zerolog.Logger
}

// New builds a Store from the default AWS credential chain (env vars,
// shared config, instance profile), targeting region and bucket.
func New(ctx context.Context, region, bucket string, log zerolog.Logger) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &Store{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		log:      log.With().Str("component", "archive").Logger(),
	}, nil
}

// UploadMPS uploads a matrix dump for one week, keyed by year/week/runID so
// repeated runs of the same week don't collide.
func (s *Store) UploadMPS(ctx context.Context, year, week int, runID string, data []byte) error {
	return s.upload(ctx, fmt.Sprintf("mps/%04d/%02d/%s.mps", year, week, runID), data)
}

// UploadInfeasibilityReport uploads a human-readable dump of the rows/
// columns implicated in an infeasible or numerically-failed solve.
func (s *Store) UploadInfeasibilityReport(ctx context.Context, year, week int, runID string, data []byte) error {
	return s.upload(ctx, fmt.Sprintf("infeasible/%04d/%02d/%s.txt", year, week, runID), data)
}

func (s *Store) upload(ctx context.Context, key string, data []byte) error {
	started := time.Now()
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("archive upload failed")
		return fmt.Errorf("archive: upload %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Dur("elapsed", time.Since(started)).Int("bytes", len(data)).Msg("archive upload complete")
	return nil
}
