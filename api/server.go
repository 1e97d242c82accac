// Package api implements the application services behind the HTTP
// transport and the command line client.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudleakage/cloudleakage/account"
	"github.com/cloudleakage/cloudleakage/analysis"
	"github.com/cloudleakage/cloudleakage/archive"
	"github.com/cloudleakage/cloudleakage/graph/export"
	"github.com/cloudleakage/cloudleakage/provider/aws"
	"github.com/cloudleakage/cloudleakage/storage"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// A Provider connects to customer accounts.
type Provider interface {
	Connect(access aws.Access) (*aws.Services, error)
}

const (
	// costWindowDays is how far back cost history is synced.
	costWindowDays = 30

	// utilizationDays is the default CPU utilization window.
	utilizationDays = 7

	// lowCPUThreshold is the average CPU percentage below which a running
	// instance is flagged as a downsize candidate.
	lowCPUThreshold = 20.0
)

// Server provides the serverside api implementation.
type Server struct {
	Logger       *zap.Logger
	Analyzer     *analysis.Analyzer
	AccountStore *account.Store
	Cipher       *account.Cipher
	Provider     Provider
	Archive      archive.Storage
	Storage      *storage.KV
}

var _ API = (*Server)(nil)

// AnalyzeState analyzes a raw Terraform state document and archives both
// the input and the produced payload.
func (s *Server) AnalyzeState(ctx context.Context, src []byte) (*export.Payload, error) {
	logger := s.Logger
	logger.Info("AnalyzeState", zap.Int("bytes", len(src)))

	payload, err := s.Analyzer.Analyze(src)
	if err != nil {
		logger.Debug("Analysis rejected", zap.Error(err))
		return nil, analysisError(err)
	}

	digest := archive.Digest(src)
	has, err := s.Archive.Has(ctx, stateKey(digest))
	if err != nil {
		logger.Error("Could not check archive", zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not archive state document"}
	}
	if !has {
		if err := s.Archive.Put(ctx, stateKey(digest), src); err != nil {
			logger.Error("Could not archive state document", zap.Error(err))
			return nil, &Error{Code: Unavailable, Message: "could not archive state document"}
		}
	}

	id := ksuid.New().String()
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}
	if err := s.Archive.Put(ctx, payloadKey(id), out); err != nil {
		logger.Error("Could not archive payload", zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not archive analysis result"}
	}

	rec := storage.AnalysisRecord{
		ID:        id,
		Digest:    digest,
		CreatedAt: time.Now().UTC(),
		Resources: resourceCount(payload),
		Edges:     len(payload.Edges),
		Warnings:  len(payload.Warnings),
		HasCycles: payload.HasCycles,
	}
	if err := s.Storage.PutAnalysis(ctx, rec); err != nil {
		logger.Error("Could not record analysis", zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not record analysis"}
	}

	logger.Info("Analysis complete",
		zap.String("id", id),
		zap.Int("nodes", len(payload.Nodes)),
		zap.Int("edges", len(payload.Edges)),
		zap.Int("warnings", len(payload.Warnings)),
	)
	return payload, nil
}

func stateKey(digest string) string { return "state/" + digest }

func payloadKey(id string) string { return "payload/" + id }

func resourceCount(p *export.Payload) int {
	n := 0
	for _, node := range p.Nodes {
		if node.Kind != export.ModuleKind {
			n++
		}
	}
	return n
}

// CreateAccount connects a new customer account. The access details are
// verified against AWS and the account number is resolved from the caller
// identity before anything is stored.
func (s *Server) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*account.Account, error) {
	logger := s.Logger
	logger.Info("CreateAccount", zap.String("name", req.Name), zap.String("access_type", req.AccessType))

	acc := &account.Account{
		ID:           account.NewID(),
		Name:         req.Name,
		AWSAccountID: req.AWSAccountID,
		AccessType:   account.AccessType(req.AccessType),
		RoleARN:      req.RoleARN,
		Region:       req.Region,
		CreatedAt:    time.Now().UTC(),
	}
	if req.AccessKeyID != "" || req.SecretAccessKey != "" {
		sealed, err := s.Cipher.EncryptCredentials(account.Credentials{
			AccessKeyID:     req.AccessKeyID,
			SecretAccessKey: req.SecretAccessKey,
		})
		if err != nil {
			logger.Error("Could not encrypt credentials", zap.Error(err))
			return nil, &Error{Code: Unavailable, Message: "could not encrypt credentials"}
		}
		acc.EncryptedCredentials = sealed
	}

	if err := acc.Validate(); err != nil {
		logger.Debug("Account not valid", zap.Error(err))
		return nil, &Error{Code: ValidationError, Message: err.Error()}
	}

	svcs, err := s.connect(acc)
	if err != nil {
		return nil, err
	}
	identity, err := svcs.STS.VerifyCredentials(ctx)
	if err != nil {
		logger.Debug("Credentials rejected", zap.Error(err))
		return nil, errorf(ValidationError, "access was rejected by AWS: %v", err)
	}
	if acc.AWSAccountID == "" {
		acc.AWSAccountID = identity.AccountID
	} else if acc.AWSAccountID != identity.AccountID {
		return nil, errorf(ValidationError,
			"access belongs to account %s, not %s", identity.AccountID, acc.AWSAccountID)
	}

	if err := s.AccountStore.Create(ctx, acc); err != nil {
		logger.Error("Could not store account", zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not store account"}
	}

	logger.Info("Account connected",
		zap.String("id", acc.ID),
		zap.String("aws_account_id", acc.AWSAccountID),
	)
	return acc, nil
}

// Accounts lists connected accounts.
func (s *Server) Accounts(ctx context.Context) ([]*account.Account, error) {
	list, err := s.AccountStore.List(ctx)
	if err != nil {
		s.Logger.Error("Could not list accounts", zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not list accounts"}
	}
	return list, nil
}

// DeleteAccount disconnects an account and discards its synced data.
func (s *Server) DeleteAccount(ctx context.Context, id string) error {
	logger := s.Logger
	logger.Info("DeleteAccount", zap.String("id", id))

	if err := s.AccountStore.Delete(ctx, id); err != nil {
		if errors.Cause(err) == storage.ErrNotFound {
			return errorf(NotFound, "account %s does not exist", id)
		}
		logger.Error("Could not delete account", zap.Error(err))
		return &Error{Code: Unavailable, Message: "could not delete account"}
	}
	if err := s.Storage.DeleteSnapshot(ctx, id); err != nil {
		logger.Error("Could not delete sync data", zap.Error(err))
		return &Error{Code: Unavailable, Message: "could not delete sync data"}
	}
	return nil
}

// SyncAccount refreshes the stored inventory and cost snapshot for an
// account.
func (s *Server) SyncAccount(ctx context.Context, id string) (*SyncResult, error) {
	logger := s.Logger
	logger.Info("SyncAccount", zap.String("id", id))

	acc, err := s.account(ctx, id)
	if err != nil {
		return nil, err
	}
	svcs, err := s.connect(acc)
	if err != nil {
		return nil, err
	}

	var instances []aws.Instance
	var costs []aws.CostRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		instances, err = svcs.EC2.Instances(gctx)
		return errors.Wrap(err, "describe instances")
	})
	g.Go(func() error {
		var err error
		costs, err = svcs.Cost.DailyByService(gctx, costWindowDays)
		return errors.Wrap(err, "cost history")
	})
	if err := g.Wait(); err != nil {
		logger.Error("Sync failed", zap.String("id", id), zap.Error(err))
		return nil, errorf(Unavailable, "sync failed: %v", err)
	}

	now := time.Now().UTC()
	snap := storage.SyncSnapshot{
		AccountID: id,
		SyncedAt:  now,
		Instances: instances,
		Costs:     costs,
	}
	if err := s.Storage.PutSnapshot(ctx, snap); err != nil {
		logger.Error("Could not store snapshot", zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not store sync data"}
	}
	if err := s.AccountStore.Touch(ctx, id, now); err != nil {
		logger.Error("Could not record sync time", zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not record sync time"}
	}

	logger.Info("Sync complete",
		zap.String("id", id),
		zap.Int("instances", len(instances)),
		zap.Int("costs", len(costs)),
	)
	return &SyncResult{
		AccountID: id,
		SyncedAt:  now,
		Instances: len(instances),
		Costs:     len(costs),
	}, nil
}

// Instances returns the instances from the account's last sync.
func (s *Server) Instances(ctx context.Context, accountID string) ([]aws.Instance, error) {
	snap, err := s.snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return snap.Instances, nil
}

// StoppedReport buckets the account's stopped instances by how long they
// have been stopped.
func (s *Server) StoppedReport(ctx context.Context, accountID string) ([]aws.DurationBucket, error) {
	snap, err := s.snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return aws.StoppedDurations(snap.Instances, time.Now().UTC()), nil
}

// Recommendations flags running instances whose recent average CPU
// utilization is below the downsize threshold.
func (s *Server) Recommendations(ctx context.Context, accountID string) ([]Recommendation, error) {
	logger := s.Logger
	logger.Info("Recommendations", zap.String("id", accountID))

	acc, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	svcs, err := s.connect(acc)
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0)
	for _, inst := range snap.Instances {
		if !inst.Running() {
			continue
		}
		avg, err := svcs.Metrics.CPUAverage(ctx, inst.ID, utilizationDays)
		if err != nil {
			logger.Error("Could not read utilization", zap.String("instance", inst.ID), zap.Error(err))
			return nil, errorf(Unavailable, "could not read utilization for %s", inst.ID)
		}
		if avg >= lowCPUThreshold {
			continue
		}
		recs = append(recs, Recommendation{
			InstanceID: inst.ID,
			Name:       inst.Name,
			Type:       inst.Type,
			AverageCPU: avg,
			Reason: fmt.Sprintf("average CPU utilization %.1f%% over the last %d days",
				avg, utilizationDays),
		})
	}
	return recs, nil
}

// Utilization reports an instance's average CPU utilization over the given
// number of days. A non-positive days value uses the default window.
func (s *Server) Utilization(ctx context.Context, accountID, instanceID string, days int) (*Utilization, error) {
	if days <= 0 {
		days = utilizationDays
	}

	acc, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	svcs, err := s.connect(acc)
	if err != nil {
		return nil, err
	}
	avg, err := svcs.Metrics.CPUAverage(ctx, instanceID, days)
	if err != nil {
		s.Logger.Error("Could not read utilization", zap.String("instance", instanceID), zap.Error(err))
		return nil, errorf(Unavailable, "could not read utilization for %s", instanceID)
	}
	return &Utilization{InstanceID: instanceID, Days: days, AverageCPU: avg}, nil
}

// Costs returns the cost history from the account's last sync.
func (s *Server) Costs(ctx context.Context, accountID string) ([]aws.CostRecord, error) {
	snap, err := s.snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return snap.Costs, nil
}

// Policy returns the IAM policy document to attach to a customer role.
func (s *Server) Policy(ctx context.Context) (string, error) {
	doc, err := aws.Policy()
	if err != nil {
		s.Logger.Error("Could not build policy", zap.Error(err))
		return "", &Error{Code: Unavailable, Message: "could not build policy"}
	}
	return doc, nil
}

// account loads an account, translating a missing account into a not found
// error.
func (s *Server) account(ctx context.Context, id string) (*account.Account, error) {
	acc, err := s.AccountStore.Get(ctx, id)
	if err != nil {
		if errors.Cause(err) == storage.ErrNotFound {
			return nil, errorf(NotFound, "account %s does not exist", id)
		}
		s.Logger.Error("Could not load account", zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not load account"}
	}
	return acc, nil
}

// snapshot loads an account's sync snapshot, translating a missing snapshot
// into a not found error.
func (s *Server) snapshot(ctx context.Context, accountID string) (*storage.SyncSnapshot, error) {
	snap, err := s.Storage.Snapshot(ctx, accountID)
	if err != nil {
		if errors.Cause(err) == storage.ErrNotFound {
			return nil, errorf(NotFound, "account %s has not been synced", accountID)
		}
		s.Logger.Error("Could not load snapshot", zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not load sync data"}
	}
	return snap, nil
}

// connect builds the AWS service clients for an account.
func (s *Server) connect(acc *account.Account) (*aws.Services, error) {
	access, err := acc.Access(s.Cipher)
	if err != nil {
		s.Logger.Error("Could not decrypt credentials", zap.String("id", acc.ID), zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not decrypt stored credentials"}
	}
	svcs, err := s.Provider.Connect(access)
	if err != nil {
		s.Logger.Error("Could not connect to account", zap.String("id", acc.ID), zap.Error(err))
		return nil, &Error{Code: Unavailable, Message: "could not connect to AWS"}
	}
	return svcs, nil
}
