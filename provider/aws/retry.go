package aws

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws/awserr"
	"github.com/cenkalti/backoff"
)

// retry runs op with exponential backoff until it succeeds, fails
// permanently or the context is cancelled.
func retry(ctx context.Context, op func() error) error {
	b := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.Retry(func() error {
		return classify(op())
	}, b)
}

// classify marks client failures permanent so they are not retried.
// Throttling stays retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if aerr, ok := err.(awserr.RequestFailure); ok {
		if aerr.StatusCode() == http.StatusTooManyRequests {
			return err
		}
		if aerr.StatusCode() >= 400 && aerr.StatusCode() < 500 {
			return backoff.Permanent(err)
		}
	}
	return err
}
