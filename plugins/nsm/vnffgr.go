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

package nsm

import (
	"context"
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/juju/retry"
	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

var (
	// errVnfrNotRunning is returned by a poll of a hop VNFR that is still starting.
	errVnfrNotRunning = errors.New("VNFR is not running yet")

	errAlreadyRendered = errors.New("VNFFGR is already rendered")
)

// vnffgRecord is the runtime counterpart of one VNFFGD of the NSR.
type vnffgRecord struct {
	nsr    *networkServiceRecord
	vnffgd *model.Vnffgd

	id          string
	name        string
	sdnAccount  string
	state       recordState
	rsps        []*model.RenderedServicePath
	classifiers []*model.VnffgrClassifier
	stored      bool
}

// resolvedHop is an RSP hop bound to the VNFR owning the connection point.
type resolvedHop struct {
	vnfr   *virtualNetworkFunctionRecord
	cpName string
}

func newVnffgRecord(nsr *networkServiceRecord, vnffgd *model.Vnffgd) *vnffgRecord {
	return &vnffgRecord{
		nsr:        nsr,
		vnffgd:     vnffgd,
		id:         uuid.New().String(),
		name:       nsr.Name() + "." + vnffgd.Name,
		sdnAccount: nsr.SdnAccount(),
		state:      stateInit,
	}
}

// restore rebinds the VNFFGR to a record found in the data store.
func (f *vnffgRecord) restore(record *model.Vnffgr) {
	f.id = record.Id
	f.stored = true
	f.state = recordStateFromStatus(record.OperationalStatus)
	f.rsps = record.Rsps
	f.classifiers = record.Classifiers
}

// record returns the VNFFGR as published in the data store.
func (f *vnffgRecord) record() *model.Vnffgr {
	vnffgr := &model.Vnffgr{
		Id:                f.id,
		Name:              f.name,
		NsrIdRef:          f.nsr.ID(),
		NsdRef:            f.nsr.nsd.ID(),
		VnffgdRef:         f.vnffgd.Id,
		SdnAccount:        f.sdnAccount,
		OperationalStatus: f.state.recordStatus(),
	}
	for _, rsp := range f.rsps {
		vnffgr.Rsps = append(vnffgr.Rsps, proto.Clone(rsp).(*model.RenderedServicePath))
	}
	for _, classifier := range f.classifiers {
		vnffgr.Classifiers = append(vnffgr.Classifiers, proto.Clone(classifier).(*model.VnffgrClassifier))
	}
	return vnffgr
}

func (f *vnffgRecord) publish(ctx context.Context) {
	ds := f.nsr.m.DataStore
	var err error
	if f.stored {
		err = ds.Update(ctx, model.VnffgrKey(f.id), f.record(), datastore.Replace)
	} else {
		_, err = ds.Create(ctx, model.VnffgrKey(f.id), f.record())
		f.stored = err == nil
	}
	if err != nil {
		f.nsr.log.Warnf("Failed to publish VNFFGR %s: %v", f.name, err)
	}
}

// instantiate waits until every hop VNFR is running and then asks the VNFFG
// manager to render the graph. Must be called without the record lock,
// which is taken only for the non-blocking steps.
func (f *vnffgRecord) instantiate(ctx context.Context) error {
	m := f.nsr.m
	var paths [][]*resolvedHop
	err := m.withLock(func() (err error) {
		if err = ctx.Err(); err != nil {
			return err
		}
		if f.state == stateActive {
			return errAlreadyRendered
		}
		f.state = stateInstantiationPending
		f.publish(ctx)
		paths, err = f.resolvePaths()
		if err != nil {
			return f.fail(err)
		}
		return nil
	})
	if err == errAlreadyRendered {
		f.nsr.log.Debugf("VNFFGR %s is already rendered", f.name)
		return nil
	}
	if err != nil {
		return err
	}

	for _, vnfr := range hopVnfrs(paths) {
		if err := f.waitForVnfr(ctx, vnfr); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return f.failLocked(err)
		}
	}

	return m.withLock(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		request, classifiers := f.buildRequest(paths)
		result, err := m.VnffgMgr.CreateVnffgr(ctx, f.sdnAccount, request, classifiers, f.nsr.sffMap())
		if err != nil {
			return f.fail(err)
		}
		f.rsps = result.Rsps
		f.classifiers = result.Classifiers
		f.state = stateActive
		f.publish(ctx)
		f.nsr.log.Infof("VNFFGR %s (%s) is rendered with %d paths", f.name, f.id, len(f.rsps))
		return nil
	})
}

func (f *vnffgRecord) failLocked(err error) error {
	return f.nsr.m.withLock(func() error {
		return f.fail(err)
	})
}

func (f *vnffgRecord) fail(err error) error {
	if f.state != stateTerminatePending && f.state != stateTerminated {
		f.state = stateFailed
		f.publish(context.Background())
	}
	f.nsr.log.Errorf("Instantiation of VNFFGR %s (%s) failed: %v", f.name, f.id, err)
	switch err.(type) {
	case *VnffgTimeoutError, *NsrInstantiationFailed:
		return err
	}
	return &NsrInstantiationFailed{Nsr: f.nsr.ID(), Record: f.id, Err: err}
}

// resolvePaths binds every hop of every RSP to a VNFR of the NSR.
func (f *vnffgRecord) resolvePaths() ([][]*resolvedHop, error) {
	var paths [][]*resolvedHop
	for _, rsp := range f.vnffgd.Rsps {
		refs := append([]*model.VnfdCpRef(nil), rsp.VnfdConnectionPointRefs...)
		sort.SliceStable(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })

		var hops []*resolvedHop
		for _, ref := range refs {
			vnfr := f.nsr.findVnfr(ref.MemberVnfIndexRef, ref.VnfdIdRef)
			if vnfr == nil {
				return nil, errors.Errorf("no VNFR for member %d (VNFD %s) of service path %s",
					ref.MemberVnfIndexRef, ref.VnfdIdRef, rsp.Name)
			}
			hops = append(hops, &resolvedHop{vnfr: vnfr, cpName: ref.VnfdConnectionPointRef})
		}
		paths = append(paths, hops)
	}
	return paths, nil
}

// hopVnfrs returns the distinct VNFRs of all hops in the order of appearance.
func hopVnfrs(paths [][]*resolvedHop) []*virtualNetworkFunctionRecord {
	var vnfrs []*virtualNetworkFunctionRecord
	seen := make(map[string]struct{})
	for _, hops := range paths {
		for _, hop := range hops {
			if _, dup := seen[hop.vnfr.id]; dup {
				continue
			}
			seen[hop.vnfr.id] = struct{}{}
			vnfrs = append(vnfrs, hop.vnfr)
		}
	}
	return vnfrs
}

// waitForVnfr polls the state of the hop VNFR until it is running. The record
// lock is held only while the state is read.
func (f *vnffgRecord) waitForVnfr(ctx context.Context, vnfr *virtualNetworkFunctionRecord) error {
	m := f.nsr.m
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			m.Lock()
			defer m.Unlock()
			switch vnfr.state {
			case stateActive:
				return nil
			case stateFailed, stateTerminatePending, stateTerminated:
				return &NsrInstantiationFailed{Nsr: f.nsr.ID(), Record: vnfr.id,
					Err: errors.Errorf("hop VNFR %s is %v", vnfr.name, vnfr.state)}
			}
			return errVnfrNotRunning
		},
		IsFatalError: func(err error) bool {
			return err != errVnfrNotRunning
		},
		NotifyFunc: func(lastErr error, attempt int) {
			if attempt == 1 {
				f.nsr.log.Debugf("VNFFGR %s is waiting for VNFR %s", f.name, vnfr.name)
			}
		},
		Delay:       m.config.VnffgPollInterval,
		MaxDuration: m.config.VnffgReadyTimeout,
		Clock:       m.Clock,
		Stop:        ctx.Done(),
	})
	switch {
	case err == nil:
		return nil
	case retry.IsDurationExceeded(err):
		return &VnffgTimeoutError{Vnffgr: f.id, Vnfr: vnfr.id, Timeout: m.config.VnffgReadyTimeout}
	case retry.IsRetryStopped(err):
		return ctx.Err()
	}
	return err
}

// buildRequest converts resolved paths and classifier descriptors into
// the VNFFG manager request.
func (f *vnffgRecord) buildRequest(paths [][]*resolvedHop) (*model.Vnffgr, []*model.VnffgrClassifier) {
	request := f.record()
	request.Rsps = nil
	request.Classifiers = nil

	rspIDs := make(map[string]string)
	for i, rsp := range f.vnffgd.Rsps {
		path := &model.RenderedServicePath{
			Id:   uuid.New().String(),
			Name: f.nsr.Name() + "." + rsp.Name,
		}
		for idx, hop := range paths[i] {
			path.Hops = append(path.Hops, &model.RspHop{
				HopNumber: uint32(idx + 1),
				VnfrIdRef: hop.vnfr.id,
				VnfrName:  hop.vnfr.name,
				CpName:    hop.cpName,
				IpAddress: hop.vnfr.cpAddress(hop.cpName),
			})
		}
		rspIDs[rsp.Id] = path.Id
		request.Rsps = append(request.Rsps, path)
	}

	var classifiers []*model.VnffgrClassifier
	for _, desc := range f.vnffgd.Classifiers {
		vnfr := f.nsr.findVnfr(desc.MemberVnfIndexRef, desc.VnfdIdRef)
		if vnfr == nil {
			f.nsr.log.Warnf("Classifier %s of VNFFGR %s: no VNFR for member %d, skipping",
				desc.Name, f.name, desc.MemberVnfIndexRef)
			continue
		}
		rspID, found := rspIDs[desc.RspIdRef]
		if !found {
			f.nsr.log.Warnf("Classifier %s of VNFFGR %s refers to unknown RSP %s, skipping",
				desc.Name, f.name, desc.RspIdRef)
			continue
		}
		classifier := &model.VnffgrClassifier{
			Id:        uuid.New().String(),
			Name:      desc.Name,
			RspIdRef:  rspID,
			VnfrIdRef: vnfr.id,
			CpName:    desc.VnfdConnectionPointRef,
			IpAddress: vnfr.cpAddress(desc.VnfdConnectionPointRef),
		}
		for _, match := range desc.MatchAttributes {
			classifier.MatchAttributes = append(classifier.MatchAttributes,
				proto.Clone(match).(*model.MatchAttributes))
		}
		classifiers = append(classifiers, classifier)
	}
	return request, classifiers
}

// terminate removes the graph from the VNFFG manager and the data store.
func (f *vnffgRecord) terminate(ctx context.Context) error {
	if f.state == stateTerminated {
		return nil
	}
	f.state = stateTerminatePending
	if err := f.nsr.m.VnffgMgr.TerminateVnffgr(ctx, f.sdnAccount, f.id); err != nil {
		f.nsr.log.Warnf("Failed to terminate VNFFGR %s: %v", f.name, err)
	}
	if f.stored {
		if err := f.nsr.m.DataStore.Delete(ctx, model.VnffgrKey(f.id)); err != nil {
			return errors.Wrapf(err, "failed to delete VNFFGR %s", f.name)
		}
		f.stored = false
	}
	f.state = stateTerminated
	return nil
}
