package sinks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Sink streams downloaded bytes into a multipart S3 upload through a pipe,
// so the object is uploaded while chunks are still arriving.
type S3Sink struct {
	bucket string
	key    string
	writer *io.PipeWriter
	done   chan error
}

// ParseS3Path splits an s3://bucket/key destination.
func ParseS3Path(path string) (bucket, key string, err error) {
	trimmed, ok := strings.CutPrefix(path, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an S3 path: %s", path)
	}
	bucket, key, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 path (expecting s3://bucket/key): %s", path)
	}
	return bucket, key, nil
}

func NewS3Sink(ctx context.Context, bucket, key, profile string) (*S3Sink, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRetryMode("adaptive"),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %v", err)
	}
	uploader := manager.NewUploader(s3.NewFromConfig(cfg))

	reader, writer := io.Pipe()
	sink := &S3Sink{
		bucket: bucket,
		key:    key,
		writer: writer,
		done:   make(chan error, 1),
	}
	go func() {
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   reader,
		})
		// Unblock a writer still mid-chunk when the upload dies.
		reader.CloseWithError(err)
		sink.done <- err
	}()
	return sink, nil
}

func (s *S3Sink) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

// Close finishes the multipart upload and reports its outcome.
func (s *S3Sink) Close() error {
	s.writer.Close()
	if err := <-s.done; err != nil {
		return fmt.Errorf("error uploading to s3://%s/%s: %v", s.bucket, s.key, err)
	}
	log.Debug().Str("op", "sinks/s3").Msgf("uploaded s3://%s/%s", s.bucket, s.key)
	return nil
}

// Abort cancels the upload; the SDK cleans up the incomplete multipart parts.
func (s *S3Sink) Abort() error {
	s.writer.CloseWithError(fmt.Errorf("download aborted"))
	<-s.done
	return nil
}
