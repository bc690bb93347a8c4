// Copyright (c) 2019 Cisco and/or its affiliates.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at:
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datastore

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

var (
	// ErrAborted is returned by Commit of an aborted transaction.
	ErrAborted = errors.New("transaction was aborted")

	// ErrCommitted is returned by Commit of an already committed transaction.
	ErrCommitted = errors.New("transaction was already committed")
)

// AlreadyExistsError is returned when a record to create is already stored.
type AlreadyExistsError struct {
	Key string
}

// Error returns the error description.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("record %s already exists", e.Key)
}

// NotFoundError is returned when a record to update is not stored.
type NotFoundError struct {
	Key string
}

// Error returns the error description.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %s does not exist", e.Key)
}

// PrepareError wraps rejection of a transaction by a subscriber.
type PrepareError struct {
	KeyPrefix string
	Err       error
}

// Error returns the error description.
func (e *PrepareError) Error() string {
	return fmt.Sprintf("transaction rejected by %s subscriber: %v", e.KeyPrefix, e.Err)
}

// txn implements Txn.
type txn struct {
	ds        *DataStore
	ops       []*Operation
	aborted   bool
	committed bool
}

// Create adds a create operation.
func (t *txn) Create(key string, record proto.Message) Txn {
	t.ops = append(t.ops, &Operation{Type: CreateOp, Key: key, Value: record})
	return t
}

// Update adds an update operation.
func (t *txn) Update(key string, record proto.Message, mode UpdateMode) Txn {
	t.ops = append(t.ops, &Operation{Type: UpdateOp, Key: key, Value: record, Mode: mode})
	return t
}

// Delete adds a delete operation.
func (t *txn) Delete(key string) Txn {
	t.ops = append(t.ops, &Operation{Type: DeleteOp, Key: key})
	return t
}

// Abort discards the transaction.
func (t *txn) Abort() {
	t.aborted = true
	t.ops = nil
}

// Commit validates all operations with subscribers, lets responders complete
// created records and writes everything in one KV transaction.
func (t *txn) Commit(ctx context.Context) ([]*Result, error) {
	if t.aborted {
		return nil, ErrAborted
	}
	if t.committed {
		return nil, ErrCommitted
	}
	t.committed = true
	if len(t.ops) == 0 {
		return nil, nil
	}

	// 1. load previous values
	for _, op := range t.ops {
		if op.Type != DeleteOp && op.Value == nil {
			return nil, errors.Errorf("nil record for %s of %s", op.Type, op.Key)
		}
		prev, found, err := t.ds.get(op.Key)
		if err != nil {
			return nil, err
		}
		if found {
			op.PrevValue = prev
		}
		if op.Type == CreateOp && found {
			return nil, &AlreadyExistsError{Key: op.Key}
		}
		if op.Type == UpdateOp && !found {
			return nil, &NotFoundError{Key: op.Key}
		}
	}

	// 2. prepare: the whole batch is validated before anything is written
	for _, sub := range t.ds.getSubscribers() {
		var matching []*Operation
		for _, op := range t.ops {
			if strings.HasPrefix(op.Key, sub.keyPrefix) {
				matching = append(matching, op)
			}
		}
		if len(matching) == 0 {
			continue
		}
		if err := sub.prepare(ctx, matching); err != nil {
			return nil, &PrepareError{KeyPrefix: sub.keyPrefix, Err: err}
		}
	}

	// 3. responders complete the created records
	results := make([]*Result, len(t.ops))
	for i, op := range t.ops {
		results[i] = &Result{Key: op.Key, Value: op.Value}
		if op.Type != CreateOp {
			continue
		}
		responder := t.ds.getResponder(op.Key)
		if responder == nil {
			continue
		}
		completed, err := responder.OnCreate(ctx, op.Key, proto.Clone(op.Value))
		if err != nil {
			return nil, errors.Wrapf(err, "responder failed to create %s", op.Key)
		}
		results[i].Value = completed
	}

	// 4. commit, another transaction may have written the keys since step 1
	t.ds.Lock()
	defer t.ds.Unlock()
	if err := t.checkPreconditions(); err != nil {
		return nil, err
	}

	kvTxn := t.ds.Broker.NewTxn()
	for i, op := range t.ops {
		switch op.Type {
		case CreateOp:
			if results[i].Value != nil {
				kvTxn.Put(op.Key, results[i].Value)
			}
		case UpdateOp:
			value := op.Value
			if op.Mode == Merge {
				// re-read to merge with the latest stored value
				prev, found, err := t.ds.get(op.Key)
				if err != nil {
					return nil, err
				}
				if !found {
					return nil, &NotFoundError{Key: op.Key}
				}
				value = mergeRecords(prev, op.Value)
			}
			results[i].Value = value
			kvTxn.Put(op.Key, value)
		case DeleteOp:
			results[i].Value = nil
			kvTxn.Delete(op.Key)
		}
	}
	if err := kvTxn.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	t.ds.Log.Debugf("Committed transaction with %d operations", len(t.ops))
	return results, nil
}

// checkPreconditions verifies that created records do not exist yet and
// updated records still exist.
func (t *txn) checkPreconditions() error {
	for _, op := range t.ops {
		if op.Type == DeleteOp {
			continue
		}
		_, found, err := t.ds.get(op.Key)
		if err != nil {
			return err
		}
		if op.Type == CreateOp && found {
			return &AlreadyExistsError{Key: op.Key}
		}
		if op.Type == UpdateOp && !found {
			return &NotFoundError{Key: op.Key}
		}
	}
	return nil
}
