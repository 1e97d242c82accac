package aws

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// cannedRequest builds a request that resolves to data, or fails with err,
// without touching the network.
func cannedRequest(data interface{}, err error) *aws.Request {
	req := &aws.Request{Data: data, HTTPRequest: &http.Request{}}
	if err != nil {
		req.Handlers.Send.PushBack(func(r *aws.Request) { r.Error = err })
	}
	return req
}
