package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/stsiface"
)

// An Identity describes the entity a set of credentials belongs to.
type Identity struct {
	AccountID string `json:"account_id"`
	ARN       string `json:"arn"`
	UserID    string `json:"user_id"`
}

// STSService resolves caller identities.
type STSService struct {
	Client stsiface.ClientAPI
}

// NewSTS returns an STS service using the given configuration.
func NewSTS(cfg aws.Config) *STSService {
	return &STSService{Client: sts.New(cfg)}
}

// VerifyCredentials checks that the configured credentials work by resolving
// the caller identity. An error means the credentials are unusable.
func (s *STSService) VerifyCredentials(ctx context.Context) (*Identity, error) {
	var ident *Identity
	err := retry(ctx, func() error {
		req := s.Client.GetCallerIdentityRequest(&sts.GetCallerIdentityInput{})
		resp, err := req.Send(ctx)
		if err != nil {
			return err
		}
		ident = &Identity{
			AccountID: aws.StringValue(resp.Account),
			ARN:       aws.StringValue(resp.Arn),
			UserID:    aws.StringValue(resp.UserId),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ident, nil
}
