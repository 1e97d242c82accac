package api

import (
	"context"

	"github.com/cloudleakage/cloudleakage/account"
	"github.com/cloudleakage/cloudleakage/graph/export"
	"github.com/cloudleakage/cloudleakage/provider/aws"
)

// API is the common interface for the cloudleakage api.
type API interface {
	// AnalyzeState analyzes a raw Terraform state document.
	AnalyzeState(ctx context.Context, src []byte) (*export.Payload, error)

	// CreateAccount connects a new customer account. The credentials are
	// verified against AWS before the account is stored.
	CreateAccount(ctx context.Context, req *CreateAccountRequest) (*account.Account, error)

	// Accounts lists connected accounts.
	Accounts(ctx context.Context) ([]*account.Account, error)

	// DeleteAccount disconnects an account and discards its synced data.
	DeleteAccount(ctx context.Context, id string) error

	// SyncAccount refreshes the stored inventory and cost snapshot for an
	// account.
	SyncAccount(ctx context.Context, id string) (*SyncResult, error)

	// Instances returns the instances from the account's last sync.
	Instances(ctx context.Context, accountID string) ([]aws.Instance, error)

	// StoppedReport buckets the account's stopped instances by how long
	// they have been stopped.
	StoppedReport(ctx context.Context, accountID string) ([]aws.DurationBucket, error)

	// Recommendations flags running instances whose recent CPU utilization
	// suggests a smaller instance type.
	Recommendations(ctx context.Context, accountID string) ([]Recommendation, error)

	// Utilization reports an instance's average CPU utilization.
	Utilization(ctx context.Context, accountID, instanceID string, days int) (*Utilization, error)

	// Costs returns the cost history from the account's last sync.
	Costs(ctx context.Context, accountID string) ([]aws.CostRecord, error)

	// Policy returns the IAM policy document to attach to a customer role.
	Policy(ctx context.Context) (string, error)
}
