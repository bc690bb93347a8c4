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
	"errors"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/onsi/gomega"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/mock/broker"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

func newTestDataStore(t *testing.T) (*DataStore, *broker.MockBroker) {
	gomega.RegisterTestingT(t)
	mb := broker.NewMockBroker()
	ds := NewPlugin(UseDeps(func(deps *Deps) {
		deps.Broker = mb
	}))
	ds.Log = logging.ForPlugin("datastore-test")
	gomega.Expect(ds.Init()).To(gomega.Succeed())
	return ds, mb
}

func TestCreateWithResponder(t *testing.T) {
	ds, mb := newTestDataStore(t)
	ctx := context.Background()

	ds.RegisterResponder(model.VlrKeyPrefix(), ResponderFunc(
		func(ctx context.Context, key string, record proto.Message) (proto.Message, error) {
			vlr := record.(*model.Vlr)
			vlr.AssignedSubnet = "10.10.1.0/24"
			return vlr, nil
		}))

	key := model.VlrKey("vlr-1")
	created, err := ds.Create(ctx, key, &model.Vlr{Id: "vlr-1", Name: "mgmt"})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(created.(*model.Vlr).AssignedSubnet).To(gomega.Equal("10.10.1.0/24"))
	gomega.Expect(mb.Keys()).To(gomega.ConsistOf(key))

	it, err := ds.Read(ctx, key)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	readKey, record, ok := it.Next()
	gomega.Expect(ok).To(gomega.BeTrue())
	gomega.Expect(readKey).To(gomega.Equal(key))
	gomega.Expect(record.(*model.Vlr).AssignedSubnet).To(gomega.Equal("10.10.1.0/24"))

	// second create of the same key
	_, err = ds.Create(ctx, key, &model.Vlr{Id: "vlr-1"})
	gomega.Expect(err).To(gomega.BeAssignableToTypeOf(&AlreadyExistsError{}))
}

func TestResponderWithoutRecord(t *testing.T) {
	ds, mb := newTestDataStore(t)

	ds.RegisterResponder(model.VnfrKeyPrefix(), ResponderFunc(
		func(ctx context.Context, key string, record proto.Message) (proto.Message, error) {
			return nil, nil
		}))
	created, err := ds.Create(context.Background(), model.VnfrKey("vnfr-1"), &model.Vnfr{Id: "vnfr-1"})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(created).To(gomega.BeNil())
	gomega.Expect(mb.Keys()).To(gomega.BeEmpty())
}

func TestResponderFailure(t *testing.T) {
	ds, mb := newTestDataStore(t)

	ds.RegisterResponder(model.VlrKeyPrefix(), ResponderFunc(
		func(ctx context.Context, key string, record proto.Message) (proto.Message, error) {
			return nil, errors.New("no free subnet")
		}))
	_, err := ds.NewTxn().
		Create(model.NsrKey("nsr-1"), &model.Nsr{Id: "nsr-1"}).
		Create(model.VlrKey("vlr-1"), &model.Vlr{Id: "vlr-1"}).
		Commit(context.Background())
	gomega.Expect(err).To(gomega.HaveOccurred())
	gomega.Expect(mb.Keys()).To(gomega.BeEmpty())
}

func TestMergeAndReplace(t *testing.T) {
	ds, mb := newTestDataStore(t)
	ctx := context.Background()

	key := model.VnfrKey("vnfr-1")
	_, err := ds.Create(ctx, key, &model.Vnfr{
		Id:                "vnfr-1",
		Name:              "ns.ping.1",
		OperationalStatus: model.RecordStatus_INIT,
		ConnectionPoints: []*model.VnfrConnectionPoint{
			{Name: "ping/cp0", VlrRef: "vlr-1"},
		},
	})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())

	// merge keeps unset fields and replaces set repeated fields
	err = ds.Update(ctx, key, &model.Vnfr{
		OperationalStatus: model.RecordStatus_RUNNING,
		ConnectionPoints: []*model.VnfrConnectionPoint{
			{Name: "ping/cp0", VlrRef: "vlr-1", IpAddress: "10.10.1.2"},
		},
	}, Merge)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	vnfr := mb.Get(key).(*model.Vnfr)
	gomega.Expect(vnfr.Name).To(gomega.Equal("ns.ping.1"))
	gomega.Expect(vnfr.OperationalStatus).To(gomega.Equal(model.RecordStatus_RUNNING))
	gomega.Expect(vnfr.ConnectionPoints).To(gomega.HaveLen(1))
	gomega.Expect(vnfr.ConnectionPoints[0].IpAddress).To(gomega.Equal("10.10.1.2"))

	// replace drops everything not present in the new value
	err = ds.Update(ctx, key, &model.Vnfr{Id: "vnfr-1", OperationalStatus: model.RecordStatus_TERMINATING}, Replace)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	vnfr = mb.Get(key).(*model.Vnfr)
	gomega.Expect(vnfr.Name).To(gomega.BeEmpty())
	gomega.Expect(vnfr.ConnectionPoints).To(gomega.BeEmpty())

	// removed records are not re-created by updates
	gomega.Expect(ds.Delete(ctx, key)).To(gomega.Succeed())
	err = ds.Update(ctx, key, &model.Vnfr{OperationalStatus: model.RecordStatus_RUNNING}, Merge)
	gomega.Expect(err).To(gomega.BeAssignableToTypeOf(&NotFoundError{}))
	gomega.Expect(mb.Keys()).To(gomega.BeEmpty())
}

func TestSubscriberRejection(t *testing.T) {
	ds, mb := newTestDataStore(t)
	ctx := context.Background()

	var prepared []*Operation
	ds.Subscribe(model.ConfigPrefix, func(ctx context.Context, ops []*Operation) error {
		prepared = append(prepared, ops...)
		for _, op := range ops {
			if op.Type == DeleteOp {
				return errors.New("in use")
			}
		}
		return nil
	})

	nsdKey := model.NsdKey("ping-pong")
	_, err := ds.Create(ctx, nsdKey, &model.Nsd{Id: "ping-pong", Name: "ping-pong"})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(prepared).To(gomega.HaveLen(1))
	gomega.Expect(prepared[0].Type).To(gomega.Equal(CreateOp))
	gomega.Expect(prepared[0].PrevValue).To(gomega.BeNil())

	// operations outside of the subscribed prefix are not prepared
	_, err = ds.Create(ctx, model.NsrKey("nsr-1"), &model.Nsr{Id: "nsr-1"})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(prepared).To(gomega.HaveLen(1))

	// the whole batch fails together
	_, err = ds.NewTxn().
		Create(model.VnfdKey("ping"), &model.Vnfd{Id: "ping"}).
		Delete(nsdKey).
		Commit(ctx)
	gomega.Expect(err).To(gomega.BeAssignableToTypeOf(&PrepareError{}))
	gomega.Expect(mb.Keys()).To(gomega.ConsistOf(nsdKey, model.NsrKey("nsr-1")))
	gomega.Expect(prepared[len(prepared)-1].PrevValue).ToNot(gomega.BeNil())
}

func TestWildcardRead(t *testing.T) {
	ds, _ := newTestDataStore(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		_, err := ds.Create(ctx, model.VlrKey(id), &model.Vlr{Id: id})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	}
	_, err := ds.Create(ctx, model.NsrKey("a"), &model.Nsr{Id: "a"})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())

	it, err := ds.Read(ctx, model.VlrKeyPrefix()+"*")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	var ids []string
	for {
		_, record, ok := it.Next()
		if !ok {
			break
		}
		ids = append(ids, record.(*model.Vlr).Id)
	}
	gomega.Expect(ids).To(gomega.Equal([]string{"a", "b", "c"}))

	it, err = ds.Read(ctx, model.VlrKey("missing"))
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	_, _, ok := it.Next()
	gomega.Expect(ok).To(gomega.BeFalse())
}

func TestAbortAndDelete(t *testing.T) {
	ds, mb := newTestDataStore(t)
	ctx := context.Background()

	txn := ds.NewTxn().Create(model.NsrKey("nsr-1"), &model.Nsr{Id: "nsr-1"})
	txn.Abort()
	_, err := txn.Commit(ctx)
	gomega.Expect(err).To(gomega.Equal(ErrAborted))
	gomega.Expect(mb.Keys()).To(gomega.BeEmpty())

	txn = ds.NewTxn().Create(model.NsrKey("nsr-1"), &model.Nsr{Id: "nsr-1"})
	_, err = txn.Commit(ctx)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	_, err = txn.Commit(ctx)
	gomega.Expect(err).To(gomega.Equal(ErrCommitted))

	gomega.Expect(ds.Delete(ctx, model.NsrKey("nsr-1"))).To(gomega.Succeed())
	gomega.Expect(mb.Keys()).To(gomega.BeEmpty())
}

func TestCommitFailure(t *testing.T) {
	ds, mb := newTestDataStore(t)
	mb.CommitErr = errors.New("etcd unavailable")
	_, err := ds.Create(context.Background(), model.NsrKey("nsr-1"), &model.Nsr{Id: "nsr-1"})
	gomega.Expect(err).To(gomega.HaveOccurred())
}

func TestConcurrentWrites(t *testing.T) {
	ds, mb := newTestDataStore(t)
	ctx := context.Background()
	key := model.VlrKey("vlr-1")

	// the same record is created by another writer while the responder runs
	ds.RegisterResponder(model.VlrKeyPrefix(), ResponderFunc(
		func(ctx context.Context, key string, record proto.Message) (proto.Message, error) {
			gomega.Expect(mb.Put(key, &model.Vlr{Id: "vlr-1", Name: "winner"})).To(gomega.Succeed())
			return record, nil
		}))
	_, err := ds.Create(ctx, key, &model.Vlr{Id: "vlr-1", Name: "loser"})
	gomega.Expect(err).To(gomega.BeAssignableToTypeOf(&AlreadyExistsError{}))
	gomega.Expect(mb.Get(key).(*model.Vlr).Name).To(gomega.Equal("winner"))

	// the updated record is deleted by another writer during prepare
	nsrKey := model.NsrKey("nsr-1")
	_, err = ds.Create(ctx, nsrKey, &model.Nsr{Id: "nsr-1"})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	ds.Subscribe(model.NsrKeyPrefix(), func(ctx context.Context, ops []*Operation) error {
		_, err := mb.Delete(nsrKey)
		return err
	})
	err = ds.Update(ctx, nsrKey, &model.Nsr{Id: "nsr-1", Name: "ns"}, Replace)
	gomega.Expect(err).To(gomega.BeAssignableToTypeOf(&NotFoundError{}))
	gomega.Expect(mb.Get(nsrKey)).To(gomega.BeNil())
}

func TestOperationNewValue(t *testing.T) {
	gomega.RegisterTestingT(t)

	prev := &model.NsrConfig{Id: "nsr-1", Name: "ns", NsdRef: "ping-pong"}
	patch := &model.NsrConfig{ScalingGroups: []*model.ScalingGroupConfig{{ScalingGroupNameRef: "pong-sg"}}}

	merged := (&Operation{Type: UpdateOp, Mode: Merge, Value: patch, PrevValue: prev}).NewValue().(*model.NsrConfig)
	gomega.Expect(merged.NsdRef).To(gomega.Equal("ping-pong"))
	gomega.Expect(merged.ScalingGroups).To(gomega.HaveLen(1))

	replaced := (&Operation{Type: UpdateOp, Mode: Replace, Value: patch, PrevValue: prev}).NewValue()
	gomega.Expect(replaced).To(gomega.Equal(patch))
	gomega.Expect((&Operation{Type: DeleteOp, PrevValue: prev}).NewValue()).To(gomega.BeNil())
}
