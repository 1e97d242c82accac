// Package aws connects to customer AWS accounts and retrieves the inventory
// and cost data shown alongside analyzed infrastructure.
//
// Every service client is built from an explicit configuration derived from
// one account's stored access; ambient host credentials are only used as the
// principal when assuming a customer role.
package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/defaults"
	"github.com/aws/aws-sdk-go-v2/aws/endpoints"
	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/aws/aws-sdk-go-v2/aws/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pkg/errors"
)

// Access carries the decrypted access details for one customer account.
// Either the key pair or RoleARN is set, never both.
type Access struct {
	AccessKeyID     string
	SecretAccessKey string

	// RoleARN selects role assumption instead of static keys when set.
	RoleARN string

	// Region the account's resources are inspected in.
	Region string
}

// NewConfig builds an AWS configuration for the given access.
//
// Static keys are used directly. A role ARN is assumed with the host's own
// credentials as the assuming principal.
func NewConfig(access Access, region string) (aws.Config, error) {
	if access.RoleARN != "" {
		cfg, err := external.LoadDefaultAWSConfig()
		if err != nil {
			return aws.Config{}, errors.Wrap(err, "load host config")
		}
		cfg.Region = region
		cfg.Credentials = stscreds.NewAssumeRoleProvider(sts.New(cfg), access.RoleARN)
		return cfg, nil
	}
	cfg := defaults.Config()
	cfg.Credentials = aws.NewStaticCredentialsProvider(access.AccessKeyID, access.SecretAccessKey, "")
	cfg.Region = region
	return cfg, nil
}

// Services bundles the per account service clients.
type Services struct {
	STS     *STSService
	EC2     *EC2Service
	Cost    *CostService
	Metrics *MetricsService
}

// NewServices builds all service clients from one configuration.
func NewServices(cfg aws.Config) *Services {
	return &Services{
		STS:     NewSTS(cfg),
		EC2:     NewEC2(cfg),
		Cost:    NewCost(cfg),
		Metrics: NewMetrics(cfg),
	}
}

// A Connector builds service clients for customer accounts.
type Connector struct {
	// DefaultRegion applies when the account does not name a region.
	DefaultRegion string
}

// Connect builds the services for one account.
func (c *Connector) Connect(access Access) (*Services, error) {
	region := access.Region
	if region == "" {
		region = c.DefaultRegion
	}
	if region == "" {
		region = defaultRegion()
	}
	cfg, err := NewConfig(access, region)
	if err != nil {
		return nil, err
	}
	return NewServices(cfg), nil
}

// defaultRegion resolves a region from the host environment, checking
// AWS_DEFAULT_REGION and the shared credentials file. Without either it
// settles on us-east-1.
func defaultRegion() string {
	var loaded external.Configs
	loaded, err := loaded.AppendFromLoaders(external.DefaultConfigLoaders)
	if err != nil {
		return endpoints.UsEast1RegionID
	}
	cfg, err := loaded.ResolveAWSConfig([]external.AWSConfigResolver{external.ResolveRegion})
	if err != nil || cfg.Region == "" {
		return endpoints.UsEast1RegionID
	}
	return cfg.Region
}
