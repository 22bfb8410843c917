// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

var ErrBucketNotFound = errors.New("publish bucket not found")
var ErrAccessDenied = errors.New("publish access denied")

// the part of *s3.Client the publisher uses
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Publisher struct {
	client S3PutAPI
	bucket string
	prefix string
}

// MakeS3Publisher loads the default aws config (env, shared config, instance role)
func MakeS3Publisher(ctx context.Context, bucket string, prefix string, region string) (*S3Publisher, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 publisher requires a bucket")
	}
	var optfns []func(*config.LoadOptions) error
	if region != "" {
		optfns = append(optfns, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optfns...)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}
	return MakeS3PublisherWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func MakeS3PublisherWithClient(client S3PutAPI, bucket string, prefix string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, prefix: prefix}
}

func (p *S3Publisher) GetPublisherName() string {
	return "s3"
}

func (p *S3Publisher) Publish(ctx context.Context, page *Page) (string, error) {
	if err := validatePage(page); err != nil {
		return "", err
	}
	key := ObjectKey(p.prefix, page.DocId)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(page.HTML),
		ContentType:  aws.String(HTMLContentType),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", classifyS3Error(err, page.DocId, p.bucket, key)
	}
	location := fmt.Sprintf("s3://%s/%s", p.bucket, key)
	log.Printf("[publish] %s -> %s\n", page.DocId, location)
	return location, nil
}

func classifyS3Error(err error, docId string, bucket string, key string) error {
	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		switch apiError.ErrorCode() {
		case "NoSuchBucket":
			return fmt.Errorf("publishing %s: %w: %s", docId, ErrBucketNotFound, bucket)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("publishing %s to s3://%s/%s: %w (%s)", docId, bucket, key, ErrAccessDenied, apiError.ErrorMessage())
		}
	}
	return fmt.Errorf("publishing %s to s3://%s/%s: %w", docId, bucket, key, err)
}
