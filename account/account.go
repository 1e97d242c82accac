// Package account manages connected customer accounts and their stored
// credentials.
package account

import (
	"time"

	"github.com/cloudleakage/cloudleakage/provider/aws"
	"github.com/segmentio/ksuid"
)

// An AccessType selects how a customer account is accessed.
type AccessType string

// Supported access types:
const (
	// AccessKey authenticates with a stored access key pair.
	AccessKey AccessType = "accesskey"

	// IAMRole authenticates by assuming a role in the customer account.
	IAMRole AccessType = "iam"
)

// AccessTypes returns the names of all supported access types.
func AccessTypes() []string {
	return []string{string(AccessKey), string(IAMRole)}
}

// An Account is one connected customer AWS account.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// AWSAccountID is the 12 digit account number, resolved from the
	// account's own credentials when the account is connected.
	AWSAccountID string `json:"aws_account_id"`

	AccessType AccessType `json:"access_type"`

	// EncryptedCredentials holds the sealed access key pair for AccessKey
	// accounts. The plaintext never leaves memory.
	EncryptedCredentials []byte `json:"encrypted_credentials,omitempty"`

	// RoleARN is the role assumed for IAMRole accounts.
	RoleARN string `json:"role_arn,omitempty"`

	// Region the account's resources are inspected in.
	Region string `json:"region,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}

// Credentials is a decrypted access key pair.
type Credentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// NewID returns a new account id. Ids sort chronologically.
func NewID() string {
	return ksuid.New().String()
}

// Access decrypts the account's stored access for connecting to AWS.
func (a *Account) Access(c *Cipher) (aws.Access, error) {
	access := aws.Access{
		RoleARN: a.RoleARN,
		Region:  a.Region,
	}
	if a.AccessType == AccessKey {
		creds, err := c.DecryptCredentials(a.EncryptedCredentials)
		if err != nil {
			return aws.Access{}, err
		}
		access.AccessKeyID = creds.AccessKeyID
		access.SecretAccessKey = creds.SecretAccessKey
	}
	return access, nil
}
