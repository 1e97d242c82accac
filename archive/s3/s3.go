// Package s3 stores archived blobs in an AWS S3 bucket.
package s3

import (
	"bytes"
	"context"
	"io/ioutil"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/awserr"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/s3iface"
	"github.com/cloudleakage/cloudleakage/archive"
	"github.com/pkg/errors"
)

// Storage stores blobs in an AWS S3 bucket.
type Storage struct {
	Bucket string // Bucket to store blobs in.
	Client s3iface.ClientAPI
}

var _ archive.Storage = (*Storage)(nil)

// Has returns true if the given key exists in the bucket.
func (s *Storage) Has(ctx context.Context, key string) (bool, error) {
	req := s.Client.HeadObjectRequest(&s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if _, err := req.Send(ctx); err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			if aerr.Code() == "NotFound" {
				return false, nil
			}
		}
		return false, errors.Wrap(err, "send request")
	}
	return true, nil
}

// Get returns the blob stored under key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	req := s.Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	res, err := req.Send(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer func() { _ = res.Body.Close() }()
	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return data, nil
}

// Put stores a blob under key.
func (s *Storage) Put(ctx context.Context, key string, data []byte) error {
	req := s.Client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if _, err := req.Send(ctx); err != nil {
		return errors.Wrap(err, "send request")
	}
	return nil
}
