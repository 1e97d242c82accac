package aws

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// PolicyVersion is the IAM policy language version in generated policies.
const PolicyVersion = "2012-10-17"

type policyDoc struct {
	Version    string       `json:"Version"`
	Statements []policyStmt `json:"Statement"`
}

type policyStmt struct {
	Sid      string      `json:"Sid,omitempty"`
	Effect   string      `json:"Effect"`
	Action   interface{} `json:"Action,omitempty"`   // string or []string
	Resource interface{} `json:"Resource,omitempty"` // string or []string
}

// readOnlyActions are the API calls account inspection needs. The policy
// grants nothing that can mutate the account.
var readOnlyActions = []string{
	"ce:GetCostAndUsage",
	"ce:GetDimensionValues",
	"ce:GetReservationCoverage",
	"ce:GetReservationPurchaseRecommendation",
	"ce:GetReservationUtilization",
	"ce:GetSavingsPlansUtilization",
	"ce:ListCostCategoryDefinitions",
	"cloudwatch:GetMetricStatistics",
	"ec2:DescribeInstances",
	"organizations:DescribeOrganization",
	"organizations:ListAccounts",
	"organizations:ListCreateAccountStatus",
	"budgets:ViewBudget",
}

// Policy returns the IAM policy document to attach to the customer role or
// user the account is connected with.
func Policy() (string, error) {
	doc := policyDoc{
		Version: PolicyVersion,
		Statements: []policyStmt{
			{
				Sid:      "CloudleakageReadOnly",
				Effect:   "Allow",
				Action:   stringOrSlice(readOnlyActions),
				Resource: "*",
			},
		},
	}
	j, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal policy")
	}
	return string(j), nil
}

// stringOrSlice returns the first string only if the length is 1. Otherwise
// returns the original string slice.
func stringOrSlice(ss []string) interface{} {
	switch len(ss) {
	case 0:
		return nil
	case 1:
		return ss[0]
	default:
		return ss
	}
}
