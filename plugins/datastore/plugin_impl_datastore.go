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
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"

	"github.com/ligato/cn-infra/db/keyval"
	"github.com/ligato/cn-infra/infra"

	controller_api "github.com/contiv/nfvo/plugins/controller/api"
	"github.com/contiv/nfvo/plugins/dbresources"
)

// wildcard suffix of keys passed to Read
const wildcard = "*"

// DataStore implements API over a key-value store of cn-infra.
//
// Records are serialized by the broker of the KV store. The resource
// metadata (see plugins/dbresources) determine the proto message type
// of the records read back under the individual key prefixes.
//
// Neither the admission callbacks nor the responders are invoked with
// any lock held, they are therefore free to lock their own state.
type DataStore struct {
	Deps

	sync.Mutex // guards broker access in read-modify-write of Merge updates

	regLock     sync.RWMutex
	responders  map[string]Responder
	subscribers []*subscription
}

// Deps lists dependencies of the DataStore.
type Deps struct {
	infra.PluginDeps

	// KVStore is used to create the broker if none is injected.
	KVStore keyval.KvProtoPlugin

	// Broker, if set, is used instead of KVStore.
	Broker keyval.ProtoBroker

	// Resources describe record types stored under the individual key prefixes.
	Resources []*controller_api.DBResource
}

type subscription struct {
	keyPrefix string
	prepare   PrepareCallback
}

// Init creates the broker.
func (ds *DataStore) Init() error {
	ds.responders = make(map[string]Responder)
	if ds.Resources == nil {
		ds.Resources = dbresources.GetDBResources()
	}
	if ds.Broker == nil {
		if ds.KVStore == nil {
			return errors.New("datastore: neither broker nor KV store is configured")
		}
		ds.Broker = ds.KVStore.NewBroker("")
	}
	return nil
}

// Close does nothing.
func (ds *DataStore) Close() error {
	return nil
}

// Create stores a new record.
func (ds *DataStore) Create(ctx context.Context, key string, record proto.Message) (proto.Message, error) {
	results, err := ds.NewTxn().Create(key, record).Commit(ctx)
	if err != nil {
		return nil, err
	}
	return results[0].Value, nil
}

// Update merges or replaces a stored record.
func (ds *DataStore) Update(ctx context.Context, key string, record proto.Message, mode UpdateMode) error {
	_, err := ds.NewTxn().Update(key, record, mode).Commit(ctx)
	return err
}

// Delete removes a record.
func (ds *DataStore) Delete(ctx context.Context, key string) error {
	_, err := ds.NewTxn().Delete(key).Commit(ctx)
	return err
}

// Read returns records matching the key.
func (ds *DataStore) Read(ctx context.Context, key string) (Iterator, error) {
	it := &sliceIterator{}
	if !strings.HasSuffix(key, wildcard) {
		value, found, err := ds.get(key)
		if err != nil {
			return nil, err
		}
		if found {
			it.keys = append(it.keys, key)
			it.values = append(it.values, value)
		}
		return it, nil
	}

	prefix := strings.TrimSuffix(key, wildcard)
	kvIt, err := ds.Broker.ListValues(prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list records under %s", prefix)
	}
	defer kvIt.Close()
	for {
		kv, stop := kvIt.GetNext()
		if stop {
			break
		}
		value, err := ds.newRecord(kv.GetKey())
		if err != nil {
			ds.Log.Warnf("Skipping record %s: %v", kv.GetKey(), err)
			continue
		}
		if err := kv.GetValue(value); err != nil {
			ds.Log.Warnf("Failed to de-serialize record %s: %v", kv.GetKey(), err)
			continue
		}
		it.keys = append(it.keys, kv.GetKey())
		it.values = append(it.values, value)
	}
	sort.Sort(it)
	return it, nil
}

// NewTxn starts a new transaction.
func (ds *DataStore) NewTxn() Txn {
	return &txn{ds: ds}
}

// RegisterResponder registers publisher of records under the key prefix.
func (ds *DataStore) RegisterResponder(keyPrefix string, responder Responder) {
	ds.regLock.Lock()
	defer ds.regLock.Unlock()
	ds.responders[keyPrefix] = responder
}

// Subscribe registers admission control for the key prefix.
func (ds *DataStore) Subscribe(keyPrefix string, prepare PrepareCallback) {
	ds.regLock.Lock()
	defer ds.regLock.Unlock()
	ds.subscribers = append(ds.subscribers, &subscription{keyPrefix: keyPrefix, prepare: prepare})
}

// getResponder returns the responder with the longest prefix matching the key.
func (ds *DataStore) getResponder(key string) Responder {
	ds.regLock.RLock()
	defer ds.regLock.RUnlock()

	var (
		best    Responder
		bestLen = -1
	)
	for prefix, responder := range ds.responders {
		if strings.HasPrefix(key, prefix) && len(prefix) > bestLen {
			best = responder
			bestLen = len(prefix)
		}
	}
	return best
}

// getSubscribers returns a copy of all subscriptions.
func (ds *DataStore) getSubscribers() []*subscription {
	ds.regLock.RLock()
	defer ds.regLock.RUnlock()
	return append([]*subscription(nil), ds.subscribers...)
}

// get reads a single record.
func (ds *DataStore) get(key string) (value proto.Message, found bool, err error) {
	value, err = ds.newRecord(key)
	if err != nil {
		return nil, false, err
	}
	found, _, err = ds.Broker.GetValue(key, value)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to read record %s", key)
	}
	if !found {
		return nil, false, nil
	}
	return value, true, nil
}

// newRecord returns an empty record of the type stored under the key.
func (ds *DataStore) newRecord(key string) (proto.Message, error) {
	resource := dbresources.GetResourceByKey(ds.Resources, key)
	if resource == nil {
		return nil, errors.Errorf("key %s does not belong to any known resource", key)
	}
	valueType := proto.MessageType(resource.ProtoMessageName)
	if valueType == nil {
		return nil, errors.Errorf("unknown proto message %s", resource.ProtoMessageName)
	}
	return reflect.New(valueType.Elem()).Interface().(proto.Message), nil
}

// sliceIterator iterates over pre-loaded records.
type sliceIterator struct {
	keys   []string
	values []proto.Message
	idx    int
}

// Next returns the next record.
func (it *sliceIterator) Next() (key string, record proto.Message, ok bool) {
	if it.idx >= len(it.keys) {
		return "", nil, false
	}
	key, record = it.keys[it.idx], it.values[it.idx]
	it.idx++
	return key, record, true
}

func (it *sliceIterator) Len() int           { return len(it.keys) }
func (it *sliceIterator) Less(i, j int) bool { return it.keys[i] < it.keys[j] }
func (it *sliceIterator) Swap(i, j int) {
	it.keys[i], it.keys[j] = it.keys[j], it.keys[i]
	it.values[i], it.values[j] = it.values[j], it.values[i]
}
