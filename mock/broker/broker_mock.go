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

package broker

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gogo/protobuf/proto"
	"github.com/ligato/cn-infra/datasync"
	"github.com/ligato/cn-infra/db/keyval"
)

// MockBroker is an in-memory keyval.ProtoBroker.
type MockBroker struct {
	sync.Mutex
	Data     map[string]proto.Message
	revision int64
	revs     map[string]int64

	// CommitErr, if set, is returned by every transaction commit.
	CommitErr error
}

// NewMockBroker creates an empty broker.
func NewMockBroker() *MockBroker {
	return &MockBroker{
		Data: make(map[string]proto.Message),
		revs: make(map[string]int64),
	}
}

// Keys returns all stored keys in ascending order.
func (mb *MockBroker) Keys() []string {
	mb.Lock()
	defer mb.Unlock()
	return mb.keys("")
}

// Get returns a copy of the stored value (nil if not stored).
func (mb *MockBroker) Get(key string) proto.Message {
	mb.Lock()
	defer mb.Unlock()
	value, found := mb.Data[key]
	if !found {
		return nil
	}
	return proto.Clone(value)
}

func (mb *MockBroker) Put(key string, data proto.Message, opts ...datasync.PutOption) error {
	mb.Lock()
	defer mb.Unlock()
	mb.put(key, data)
	return nil
}

func (mb *MockBroker) Delete(key string, opts ...datasync.DelOption) (found bool, err error) {
	mb.Lock()
	defer mb.Unlock()
	_, found = mb.Data[key]
	delete(mb.Data, key)
	delete(mb.revs, key)
	return found, nil
}

func (mb *MockBroker) GetValue(key string, val proto.Message) (found bool, rev int64, err error) {
	mb.Lock()
	defer mb.Unlock()
	data, found := mb.Data[key]
	if !found {
		return false, 0, nil
	}
	if val != nil {
		if err := copyValue(data, val); err != nil {
			return false, 0, err
		}
	}
	return true, mb.revs[key], nil
}

func (mb *MockBroker) NewTxn() keyval.ProtoTxn {
	return &mockTxn{broker: mb}
}

func (mb *MockBroker) ListKeys(prefix string) (keyval.ProtoKeyIterator, error) {
	mb.Lock()
	defer mb.Unlock()
	return &mockKeyIt{broker: mb, match: mb.keys(prefix)}, nil
}

func (mb *MockBroker) ListValues(key string) (keyval.ProtoKeyValIterator, error) {
	mb.Lock()
	defer mb.Unlock()
	it := &mockIt{}
	for _, k := range mb.keys(key) {
		it.kvs = append(it.kvs, &mockKv{key: k, val: proto.Clone(mb.Data[k]), rev: mb.revs[k]})
	}
	return it, nil
}

func (mb *MockBroker) put(key string, data proto.Message) {
	if mb.Data == nil {
		mb.Data = make(map[string]proto.Message)
		mb.revs = make(map[string]int64)
	}
	mb.revision++
	mb.Data[key] = proto.Clone(data)
	mb.revs[key] = mb.revision
}

func (mb *MockBroker) keys(prefix string) []string {
	var res []string
	for k := range mb.Data {
		if strings.HasPrefix(k, prefix) {
			res = append(res, k)
		}
	}
	sort.Strings(res)
	return res
}

type mockTxn struct {
	broker *MockBroker
	puts   []*mockKv
}

func (mt *mockTxn) Put(key string, data proto.Message) keyval.ProtoTxn {
	mt.puts = append(mt.puts, &mockKv{key: key, val: data})
	return mt
}

func (mt *mockTxn) Delete(key string) keyval.ProtoTxn {
	mt.puts = append(mt.puts, &mockKv{key: key})
	return mt
}

func (mt *mockTxn) Commit(ctx context.Context) error {
	mt.broker.Lock()
	defer mt.broker.Unlock()
	if mt.broker.CommitErr != nil {
		return mt.broker.CommitErr
	}
	for _, kv := range mt.puts {
		if kv.val == nil {
			delete(mt.broker.Data, kv.key)
			delete(mt.broker.revs, kv.key)
			continue
		}
		mt.broker.put(kv.key, kv.val)
	}
	return nil
}

type mockKeyIt struct {
	broker *MockBroker
	match  []string
	index  int
}

func (mi *mockKeyIt) GetNext() (key string, rev int64, stop bool) {
	if mi.index >= len(mi.match) {
		return "", 0, true
	}
	key = mi.match[mi.index]
	mi.index++
	return key, 0, false
}

func (mi *mockKeyIt) Close() error {
	return nil
}

type mockIt struct {
	kvs   []*mockKv
	index int
}

func (mi *mockIt) GetNext() (kv keyval.ProtoKeyVal, stop bool) {
	if mi.index >= len(mi.kvs) {
		return nil, true
	}
	kv = mi.kvs[mi.index]
	mi.index++
	return kv, false
}

func (mi *mockIt) Close() error {
	return nil
}

type mockKv struct {
	key string
	val proto.Message
	rev int64
}

func (mk *mockKv) GetValue(val proto.Message) error {
	return copyValue(mk.val, val)
}

func (mk *mockKv) GetPrevValue(val proto.Message) (exists bool, err error) {
	return false, nil
}

func (mk *mockKv) GetKey() string {
	return mk.key
}

func (mk *mockKv) GetRevision() int64 {
	return mk.rev
}

func copyValue(from, to proto.Message) error {
	tmp, err := proto.Marshal(from)
	if err != nil {
		return err
	}
	return proto.Unmarshal(tmp, to)
}
