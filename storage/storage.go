package storage

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/cloudleakage/cloudleakage/provider/aws"
	"github.com/pkg/errors"
)

// The KVBackend is used for persisting key-value data.
type KVBackend interface {
	// Put creates or updates a key.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the given key. Returns ErrNotFound if the given key does
	// not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete deletes a key. Returns ErrNotFound if the given key does not
	// exist.
	Delete(ctx context.Context, key string) error

	// Scan returns a key-value map of all keys matching the given prefix.
	Scan(ctx context.Context, prefix string) (map[string][]byte, error)
}

// An AnalysisRecord indexes one analysis run. The raw input document and the
// produced payload are kept in the archive, keyed by Digest and ID.
type AnalysisRecord struct {
	ID        string    `json:"id"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
	Resources int       `json:"resources"`
	Edges     int       `json:"edges"`
	Warnings  int       `json:"warnings"`
	HasCycles bool      `json:"has_cycles"`
}

// A SyncSnapshot is the stored result of the most recent sync of one
// account.
type SyncSnapshot struct {
	AccountID string           `json:"account_id"`
	SyncedAt  time.Time        `json:"synced_at"`
	Instances []aws.Instance   `json:"instances"`
	Costs     []aws.CostRecord `json:"costs"`
}

// KV persists application records in a key-value backend.
type KV struct {
	Backend KVBackend // Backend to use for persisting data.
}

// PutAnalysis records an analysis run in the index.
func (kv *KV) PutAnalysis(ctx context.Context, rec AnalysisRecord) error {
	j, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal analysis record")
	}
	if err := kv.Backend.Put(ctx, "analysis/"+rec.ID, j); err != nil {
		return errors.Wrap(err, "store")
	}
	return nil
}

// Analyses lists all recorded analysis runs, oldest first. Record ids sort
// chronologically.
func (kv *KV) Analyses(ctx context.Context) ([]AnalysisRecord, error) {
	values, err := kv.Backend.Scan(ctx, "analysis")
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	ret := make([]AnalysisRecord, 0, len(values))
	for _, v := range values {
		var rec AnalysisRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil, errors.Wrap(err, "unmarshal stored analysis record")
		}
		ret = append(ret, rec)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

// PutSnapshot stores the sync snapshot for an account, replacing any
// previous snapshot.
func (kv *KV) PutSnapshot(ctx context.Context, snap SyncSnapshot) error {
	j, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	if err := kv.Backend.Put(ctx, "snapshot/"+snap.AccountID, j); err != nil {
		return errors.Wrap(err, "store")
	}
	return nil
}

// Snapshot returns the stored snapshot for an account. Returns ErrNotFound
// if the account has never been synced.
func (kv *KV) Snapshot(ctx context.Context, accountID string) (*SyncSnapshot, error) {
	v, err := kv.Backend.Get(ctx, "snapshot/"+accountID)
	if err != nil {
		return nil, err
	}
	var snap SyncSnapshot
	if err := json.Unmarshal(v, &snap); err != nil {
		return nil, errors.Wrap(err, "unmarshal stored snapshot")
	}
	return &snap, nil
}

// DeleteSnapshot removes the stored snapshot for an account. Deleting a
// snapshot that does not exist is not an error.
func (kv *KV) DeleteSnapshot(ctx context.Context, accountID string) error {
	err := kv.Backend.Delete(ctx, "snapshot/"+accountID)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "delete")
	}
	return nil
}
