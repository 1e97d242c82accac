package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudleakage/cloudleakage/account"
	"github.com/cloudleakage/cloudleakage/api"
	"github.com/cloudleakage/cloudleakage/graph/export"
	"github.com/cloudleakage/cloudleakage/provider/aws"
)

// HTTPClient is the client to use for communication.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// A Client calls a remote http api server. It provides the same interface
// the server implements locally.
type Client struct {
	Endpoint   string
	HTTPClient HTTPClient
}

var _ api.API = (*Client)(nil)

func (c *Client) httpClient() HTTPClient {
	cli := c.HTTPClient
	if cli == nil {
		cli = http.DefaultClient
	}
	return cli
}

// AnalyzeState uploads a raw state document for analysis.
func (c *Client) AnalyzeState(ctx context.Context, src []byte) (*export.Payload, error) {
	var payload export.Payload
	if err := c.do(ctx, http.MethodPost, "/terraform/api/analyze", bytes.NewReader(src), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CreateAccount connects a new customer account.
func (c *Client) CreateAccount(ctx context.Context, req *api.CreateAccountRequest) (*account.Account, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, fmt.Errorf("encode request: %v", err)
	}
	var acc account.Account
	if err := c.do(ctx, http.MethodPost, "/integration/api/accounts", &buf, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Accounts lists connected accounts.
func (c *Client) Accounts(ctx context.Context) ([]*account.Account, error) {
	var accounts []*account.Account
	if err := c.do(ctx, http.MethodGet, "/integration/api/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// DeleteAccount disconnects an account.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/integration/api/accounts/"+url.PathEscape(id), nil, nil)
}

// SyncAccount refreshes the account's stored snapshot.
func (c *Client) SyncAccount(ctx context.Context, id string) (*api.SyncResult, error) {
	var res api.SyncResult
	path := "/integration/api/accounts/" + url.PathEscape(id) + "/sync"
	if err := c.do(ctx, http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Instances returns the instances from the account's last sync.
func (c *Client) Instances(ctx context.Context, accountID string) ([]aws.Instance, error) {
	var instances []aws.Instance
	if err := c.do(ctx, http.MethodGet, ec2Path(accountID, "instances"), nil, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

// StoppedReport buckets the account's stopped instances by stop duration.
func (c *Client) StoppedReport(ctx context.Context, accountID string) ([]aws.DurationBucket, error) {
	var buckets []aws.DurationBucket
	if err := c.do(ctx, http.MethodGet, ec2Path(accountID, "stopped-duration"), nil, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// Recommendations returns the account's downsize candidates.
func (c *Client) Recommendations(ctx context.Context, accountID string) ([]api.Recommendation, error) {
	var recs []api.Recommendation
	if err := c.do(ctx, http.MethodGet, ec2Path(accountID, "recommendations"), nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Utilization reports an instance's average CPU utilization.
func (c *Client) Utilization(ctx context.Context, accountID, instanceID string, days int) (*api.Utilization, error) {
	path := ec2Path(accountID, "instances") + "/" + url.PathEscape(instanceID) + "/utilization"
	if days > 0 {
		path += fmt.Sprintf("?days=%d", days)
	}
	var u api.Utilization
	if err := c.do(ctx, http.MethodGet, path, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Costs returns the cost history from the account's last sync.
func (c *Client) Costs(ctx context.Context, accountID string) ([]aws.CostRecord, error) {
	var costs []aws.CostRecord
	if err := c.do(ctx, http.MethodGet, ec2Path(accountID, "costs"), nil, &costs); err != nil {
		return nil, err
	}
	return costs, nil
}

// Policy returns the IAM policy document to attach to a customer role.
func (c *Client) Policy(ctx context.Context) (string, error) {
	var doc string
	if err := c.do(ctx, http.MethodPost, "/integration/api/policy/generate", nil, &doc); err != nil {
		return "", err
	}
	return doc, nil
}

func ec2Path(accountID, op string) string {
	return "/ec2/api/accounts/" + url.PathEscape(accountID) + "/" + op
}

// do sends a request and decodes the enveloped response into out. Errors
// reported by the server are surfaced with the server's message.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequest(method, strings.TrimSuffix(c.Endpoint, "/")+path, body)
	if err != nil {
		return fmt.Errorf("build request: %v", err)
	}
	req = req.WithContext(ctx)
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("send request: %v", err)
	}
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %v", err)
	}
	_ = resp.Body.Close()

	var env received
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%s", resp.Status)
	}
	if !env.Success {
		if env.Error == "" {
			return fmt.Errorf("%s", resp.Status)
		}
		return fmt.Errorf("%s", env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response: %v", err)
		}
	}
	return nil
}
