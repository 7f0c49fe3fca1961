// Package store threads the ledger's active state branch and block header through a
// context.Context so keepers can be written against cosmossdk.io/core services.
package store

import (
	"context"

	"cosmossdk.io/core/header"
	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
)

type contextKey int

const (
	kvStoreContextKey contextKey = iota
	headerContextKey
)

// WithKVStore returns a context whose store services read from and write to kv.
func WithKVStore(ctx context.Context, kv storetypes.KVStore) context.Context {
	return context.WithValue(ctx, kvStoreContextKey, kv)
}

// WithHeaderInfo returns a context carrying the header of the block being executed.
func WithHeaderInfo(ctx context.Context, info header.Info) context.Context {
	return context.WithValue(ctx, headerContextKey, info)
}

// HeaderInfo returns the header carried by ctx, or the zero header.
func HeaderInfo(ctx context.Context) header.Info {
	info, _ := ctx.Value(headerContextKey).(header.Info)
	return info
}

var (
	_ corestore.KVStoreService = (*kvStoreService)(nil)
	_ header.Service           = headerService{}
)

type kvStoreService struct {
	prefix []byte
}

// NewKVStoreService returns a store service isolating a module's keys under name.
func NewKVStoreService(name string) corestore.KVStoreService {
	return &kvStoreService{prefix: []byte(name + "/")}
}

// OpenKVStore implements corestore.KVStoreService. It panics when ctx carries no branch,
// which only happens when a keeper is called outside of ledger execution.
func (s *kvStoreService) OpenKVStore(ctx context.Context) corestore.KVStore {
	kv, ok := ctx.Value(kvStoreContextKey).(storetypes.KVStore)
	if !ok {
		panic("store: context carries no kv store")
	}
	return newKVStore(prefix.NewStore(kv, s.prefix))
}

type headerService struct{}

// NewHeaderService returns a header service reading the header set by WithHeaderInfo.
func NewHeaderService() header.Service {
	return headerService{}
}

func (headerService) GetHeaderInfo(ctx context.Context) header.Info {
	return HeaderInfo(ctx)
}

// kvStore adapts a cosmossdk.io/store KVStore to the cosmossdk.io/core interface.
type kvStore struct {
	parent storetypes.KVStore
}

func newKVStore(parent storetypes.KVStore) corestore.KVStore {
	return kvStore{parent: parent}
}

func (s kvStore) Get(key []byte) ([]byte, error) {
	return s.parent.Get(key), nil
}

func (s kvStore) Has(key []byte) (bool, error) {
	return s.parent.Has(key), nil
}

func (s kvStore) Set(key, value []byte) error {
	s.parent.Set(key, value)
	return nil
}

func (s kvStore) Delete(key []byte) error {
	s.parent.Delete(key)
	return nil
}

func (s kvStore) Iterator(start, end []byte) (corestore.Iterator, error) {
	return s.parent.Iterator(start, end), nil
}

func (s kvStore) ReverseIterator(start, end []byte) (corestore.Iterator, error) {
	return s.parent.ReverseIterator(start, end), nil
}
