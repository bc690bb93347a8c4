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

	"github.com/gogo/protobuf/proto"
)

// API is the transactional data store used for all NFVO records.
type API interface {
	// Create stores a new record. If a responder is registered for the key,
	// the record is first passed to the responder and the completed record
	// it returns is stored and returned instead. A nil record without an error
	// is returned when the responder produced no result.
	Create(ctx context.Context, key string, record proto.Message) (proto.Message, error)

	// Update merges the record into the stored one (Merge) or overwrites it (Replace).
	// Updating a missing record fails with NotFoundError.
	Update(ctx context.Context, key string, record proto.Message, mode UpdateMode) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, key string) error

	// Read returns all records matching the key. A key ending with "*"
	// matches every record under the preceding prefix.
	Read(ctx context.Context, key string) (Iterator, error)

	// NewTxn starts a new transaction grouping multiple operations.
	NewTxn() Txn

	// RegisterResponder makes the responder the authoritative publisher
	// answering creates of records under the given key prefix.
	RegisterResponder(keyPrefix string, responder Responder)

	// Subscribe registers admission control for transactions touching records
	// under the given key prefix. The callback receives all the matching
	// operations of a transaction before anything is written, and rejects
	// the whole transaction by returning an error.
	Subscribe(keyPrefix string, prepare PrepareCallback)
}

// Txn groups create/update/delete operations. The operations are validated
// by subscribers (prepare) and only then written all at once (commit).
type Txn interface {
	// Create adds a create operation into the transaction.
	Create(key string, record proto.Message) Txn

	// Update adds an update operation into the transaction.
	Update(key string, record proto.Message, mode UpdateMode) Txn

	// Delete adds a delete operation into the transaction.
	Delete(key string) Txn

	// Commit runs the prepare phase followed by the commit phase.
	// Returns the resulting records in the order of operations.
	Commit(ctx context.Context) ([]*Result, error)

	// Abort discards the transaction.
	Abort()
}

// Responder completes newly created records.
type Responder interface {
	// OnCreate returns the completed record, or nil if no result is available.
	OnCreate(ctx context.Context, key string, record proto.Message) (proto.Message, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, key string, record proto.Message) (proto.Message, error)

// OnCreate calls f.
func (f ResponderFunc) OnCreate(ctx context.Context, key string, record proto.Message) (proto.Message, error) {
	return f(ctx, key, record)
}

// PrepareCallback validates operations of a transaction.
type PrepareCallback func(ctx context.Context, ops []*Operation) error

// Iterator iterates over records returned by Read.
type Iterator interface {
	// Next returns the next record, ok is false when there are no more records.
	Next() (key string, record proto.Message, ok bool)
}

// UpdateMode selects how Update treats the stored record.
type UpdateMode int

const (
	// Merge overwrites only the fields set in the new record. Repeated fields
	// are replaced as a whole when set.
	Merge UpdateMode = iota

	// Replace overwrites the stored record.
	Replace
)

// String returns human-readable name of the mode.
func (m UpdateMode) String() string {
	if m == Merge {
		return "merge"
	}
	return "replace"
}

// OperationType is the type of a transaction operation.
type OperationType int

const (
	// CreateOp creates a new record.
	CreateOp OperationType = iota

	// UpdateOp updates an existing record.
	UpdateOp

	// DeleteOp removes a record.
	DeleteOp
)

// String returns human-readable name of the operation type.
func (t OperationType) String() string {
	switch t {
	case CreateOp:
		return "create"
	case UpdateOp:
		return "update"
	case DeleteOp:
		return "delete"
	}
	return "unknown"
}

// Operation is a single operation of a transaction as seen by subscribers.
type Operation struct {
	Type      OperationType
	Key       string
	Mode      UpdateMode
	Value     proto.Message // nil for delete
	PrevValue proto.Message // nil if the record does not exist yet
}

// NewValue returns the record as it will be stored once the operation
// is committed (nil for delete).
func (op *Operation) NewValue() proto.Message {
	switch {
	case op.Type == DeleteOp:
		return nil
	case op.Type == UpdateOp && op.Mode == Merge && op.PrevValue != nil:
		return mergeRecords(op.PrevValue, op.Value)
	}
	return op.Value
}

// Result is the outcome of one committed operation.
type Result struct {
	Key   string
	Value proto.Message // nil for delete or when a responder produced no result
}
