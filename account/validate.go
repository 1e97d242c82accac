package account

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/cloudleakage/cloudleakage/suggest"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	validator "gopkg.in/go-playground/validator.v9"
)

var check = validator.New()

func mustRegister(err error) {
	if err != nil {
		panic(fmt.Sprintf("Register custom validator: %v", err))
	}
}

func init() {
	mustRegister(check.RegisterValidation("iamrole", func(fl validator.FieldLevel) bool {
		parsed, err := arn.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		return parsed.Service == "iam" && strings.HasPrefix(parsed.Resource, "role/")
	}))
	mustRegister(check.RegisterValidation("awsaccount", func(fl validator.FieldLevel) bool {
		str := fl.Field().String()
		if len(str) != 12 {
			return false
		}
		for _, r := range str {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}))
}

// Validate checks that an account is complete enough to store. All problems
// are reported, not just the first.
func (a *Account) Validate() error {
	var err error
	if a.Name == "" {
		err = multierr.Append(err, errors.New("name is required"))
	}
	if a.AWSAccountID != "" {
		if verr := check.Var(a.AWSAccountID, "awsaccount"); verr != nil {
			err = multierr.Append(err, errors.New("aws account id must be 12 digits"))
		}
	}
	switch a.AccessType {
	case AccessKey:
		if len(a.EncryptedCredentials) == 0 {
			err = multierr.Append(err, errors.New("credentials are required for access key accounts"))
		}
		if a.RoleARN != "" {
			err = multierr.Append(err, errors.New("role arn must not be set for access key accounts"))
		}
	case IAMRole:
		if a.RoleARN == "" {
			err = multierr.Append(err, errors.New("role arn is required for iam accounts"))
		} else if verr := check.Var(a.RoleARN, "iamrole"); verr != nil {
			err = multierr.Append(err, errors.New("role arn must name an IAM role"))
		}
	default:
		msg := fmt.Sprintf("unsupported access type %q", a.AccessType)
		if s := suggest.String(string(a.AccessType), AccessTypes()); s != "" {
			msg = fmt.Sprintf("%s, did you mean %q?", msg, s)
		}
		err = multierr.Append(err, errors.New(msg))
	}
	return err
}
