package storage

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

type S3Storage struct {
	Client *s3.Client
	Bucket string
}

func NewS3Storage(bucket string) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		logrus.Errorf("Failed to load AWS configuration: %v", err)
		return nil, err
	}

	client := s3.NewFromConfig(cfg)
	logrus.Info("Successfully configured S3 storage")
	return &S3Storage{Client: client, Bucket: bucket}, nil
}

func (s *S3Storage) Upload(ctx context.Context, file io.Reader, key string) (string, error) {
	logrus.WithFields(logrus.Fields{
		"key":    key,
		"bucket": s.Bucket,
	}).Info("Uploading object")

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"error": err,
		}).Error("Error uploading object")
		return "", err
	}
	return key, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	logrus.WithFields(logrus.Fields{
		"key":    key,
		"bucket": s.Bucket,
	}).Info("Deleting object")

	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"error": err,
		}).Error("Error deleting object")
		return err
	}
	return nil
}

func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
