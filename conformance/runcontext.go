// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package conformance

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Key names a value shared between checks.
type Key string

// Well-known keys.
const (
	KeyContractAddress Key = "contract.address"
	KeyDeployTx        Key = "tx.deploy"
	KeySetTx           Key = "tx.set"
	KeySetGas          Key = "gas.set"
)

// BlockHashKey is the key of the hash of block n.
func BlockHashKey(n uint64) Key {
	return Key(fmt.Sprintf("block.%d.hash", n))
}

// RunContext carries values produced by earlier checks to later ones. Every key
// is written at most once. It is owned by a single suite run and is not safe for
// concurrent use.
type RunContext struct {
	RunID  string
	values map[Key]any
}

// NewRunContext starts an empty context with a fresh run id.
func NewRunContext() *RunContext {
	return &RunContext{RunID: uuid.NewString(), values: make(map[Key]any)}
}

// Set stores v under key. Writing a key twice is an error.
func (rc *RunContext) Set(key Key, v any) error {
	if _, ok := rc.values[key]; ok {
		return fmt.Errorf("run context key %q already written", key)
	}
	rc.values[key] = v
	return nil
}

// Get returns the value stored under key.
func (rc *RunContext) Get(key Key) (any, error) {
	v, ok := rc.values[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotProduced)
	}
	return v, nil
}

// Has reports whether key has been written.
func (rc *RunContext) Has(key Key) bool {
	_, ok := rc.values[key]
	return ok
}

// Keys lists the written keys in sorted order.
func (rc *RunContext) Keys() []Key {
	keys := make([]Key, 0, len(rc.values))
	for k := range rc.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Lookup returns the value under key as a T.
func Lookup[T any](rc *RunContext, key Key) (T, error) {
	var zero T
	v, err := rc.Get(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s holds %T, want %T", key, v, zero)
	}
	return t, nil
}

// GetString is Lookup for string values, the common case for hashes and addresses.
func (rc *RunContext) GetString(key Key) (string, error) {
	return Lookup[string](rc, key)
}
