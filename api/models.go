package api

import "time"

// A CreateAccountRequest carries the details for connecting a new customer
// account.
type CreateAccountRequest struct {
	Name         string `json:"name"`
	AWSAccountID string `json:"aws_account_id,omitempty"`
	AccessType   string `json:"access_type"`

	// Access key pair, for accesskey accounts. Only ever transported in,
	// never back out.
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`

	// Role to assume, for iam accounts.
	RoleARN string `json:"role_arn,omitempty"`

	Region string `json:"region,omitempty"`
}

// A SyncResult summarizes one completed account sync.
type SyncResult struct {
	AccountID string    `json:"account_id"`
	SyncedAt  time.Time `json:"synced_at"`
	Instances int       `json:"instances"`
	Costs     int       `json:"costs"`
}

// A Recommendation flags one instance as a downsize candidate.
type Recommendation struct {
	InstanceID string  `json:"instance_id"`
	Name       string  `json:"name,omitempty"`
	Type       string  `json:"instance_type"`
	AverageCPU float64 `json:"average_cpu"`
	Reason     string  `json:"reason"`
}

// A Utilization reports an instance's recent average CPU utilization.
type Utilization struct {
	InstanceID string  `json:"instance_id"`
	Days       int     `json:"days"`
	AverageCPU float64 `json:"average_cpu"`
}
