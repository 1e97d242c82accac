package account

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/cloudleakage/cloudleakage/storage"
	"github.com/pkg/errors"
)

// Store persists accounts in a key-value backend.
type Store struct {
	Backend storage.KVBackend
}

func storeKey(id string) string {
	return "account/" + id
}

// Create persists a new account. The caller is responsible for validating
// the account first.
func (s *Store) Create(ctx context.Context, acc *Account) error {
	j, err := json.Marshal(acc)
	if err != nil {
		return errors.Wrap(err, "marshal account")
	}
	if err := s.Backend.Put(ctx, storeKey(acc.ID), j); err != nil {
		return errors.Wrap(err, "store")
	}
	return nil
}

// Get returns an account by id. Returns storage.ErrNotFound if the account
// does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Account, error) {
	v, err := s.Backend.Get(ctx, storeKey(id))
	if err != nil {
		return nil, err
	}
	var acc Account
	if err := json.Unmarshal(v, &acc); err != nil {
		return nil, errors.Wrap(err, "unmarshal stored account")
	}
	return &acc, nil
}

// List returns all accounts, oldest first.
func (s *Store) List(ctx context.Context) ([]*Account, error) {
	values, err := s.Backend.Scan(ctx, "account")
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	ret := make([]*Account, 0, len(values))
	for _, v := range values {
		var acc Account
		if err := json.Unmarshal(v, &acc); err != nil {
			return nil, errors.Wrap(err, "unmarshal stored account")
		}
		ret = append(ret, &acc)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

// Delete removes an account. Returns storage.ErrNotFound if the account
// does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.Backend.Delete(ctx, storeKey(id)); err != nil {
		return err
	}
	return nil
}

// Touch records the time the account was last synced.
func (s *Store) Touch(ctx context.Context, id string, at time.Time) error {
	acc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	acc.LastSyncAt = &at
	j, err := json.Marshal(acc)
	if err != nil {
		return errors.Wrap(err, "marshal account")
	}
	if err := s.Backend.Put(ctx, storeKey(id), j); err != nil {
		return errors.Wrap(err, "store")
	}
	return nil
}
