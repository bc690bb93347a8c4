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

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// multisiteVld is the name of the VLD shared by all the NSRs.
const multisiteVld = "multisite"

// virtualLinkRecord is the runtime counterpart of one VLD of the NSR.
type virtualLinkRecord struct {
	nsr *networkServiceRecord
	vld *model.Vld

	id         string
	name       string
	subnet     string
	state      recordState
	createTime int64
}

// vlrName derives the VLR name from the NSR and VLD names.
func vlrName(nsrName, vldName string) string {
	if vldName == multisiteVld {
		return multisiteVld
	}
	return nsrName + "." + vldName
}

func newVirtualLinkRecord(nsr *networkServiceRecord, vld *model.Vld) *virtualLinkRecord {
	return &virtualLinkRecord{
		nsr:        nsr,
		vld:        vld,
		id:         uuid.New().String(),
		name:       vlrName(nsr.Name(), vld.Name),
		state:      stateInit,
		createTime: nsr.m.Clock.Now().Unix(),
	}
}

// restore rebinds the VLR to a record found in the data store.
func (v *virtualLinkRecord) restore(record *model.Vlr) {
	v.id = record.Id
	v.subnet = record.AssignedSubnet
	v.state = recordStateFromStatus(record.OperationalStatus)
	if record.CreateTime != 0 {
		v.createTime = record.CreateTime
	}
}

// record returns the VLR as published in the data store.
func (v *virtualLinkRecord) record() *model.Vlr {
	return &model.Vlr{
		Id:                v.id,
		Name:              v.name,
		NsrIdRef:          v.nsr.ID(),
		VldRef:            v.vld.Id,
		CloudAccount:      v.nsr.CloudAccount(),
		AssignedSubnet:    v.subnet,
		OperationalStatus: v.state.recordStatus(),
		CreateTime:        v.createTime,
	}
}

// instantiate creates the VLR in the data store. The record is completed
// by the responder of the VLR prefix which assigns the subnet.
func (v *virtualLinkRecord) instantiate(ctx context.Context) error {
	if v.state == stateActive && v.subnet != "" {
		v.nsr.log.Debugf("VLR %s (%s) is already active with subnet %s", v.name, v.id, v.subnet)
		return nil
	}
	v.state = stateInstantiationPending

	ds := v.nsr.m.DataStore
	if v.nsr.restarting {
		// stale record of an unfinished instantiation
		if err := ds.Delete(ctx, model.VlrKey(v.id)); err != nil {
			return v.fail(errors.Wrap(err, "failed to remove stale record"))
		}
	}
	result, err := ds.Create(ctx, model.VlrKey(v.id), v.record())
	if err != nil {
		return v.fail(err)
	}
	vlr, _ := result.(*model.Vlr)
	if vlr == nil {
		return v.fail(errors.New("no result for the VLR create"))
	}
	if vlr.OperationalStatus == model.RecordStatus_FAILED {
		return v.fail(errors.New("virtual link could not be created"))
	}
	v.subnet = vlr.AssignedSubnet
	v.state = stateActive
	v.nsr.log.Infof("VLR %s (%s) is active, subnet: %s", v.name, v.id, v.subnet)

	if err := v.nsr.plugin.InstantiateVl(ctx, v.nsr.record(), v.record()); err != nil {
		return v.fail(err)
	}
	return nil
}

func (v *virtualLinkRecord) fail(err error) error {
	v.state = stateFailed
	v.nsr.log.Errorf("Instantiation of VLR %s (%s) failed: %v", v.name, v.id, err)
	return &NsrInstantiationFailed{Nsr: v.nsr.ID(), Record: v.id, Err: err}
}

// terminate releases the virtual link. VLRs which never started
// the instantiation are left alone.
func (v *virtualLinkRecord) terminate(ctx context.Context) error {
	switch v.state {
	case stateInstantiationPending, stateActive, stateFailed:
	default:
		return nil
	}
	v.state = stateTerminatePending
	if err := v.nsr.plugin.TerminateVl(ctx, v.nsr.record(), v.record()); err != nil {
		v.nsr.log.Warnf("Plugin failed to terminate VLR %s: %v", v.name, err)
	}
	if err := v.nsr.m.DataStore.Delete(ctx, model.VlrKey(v.id)); err != nil {
		return errors.Wrapf(err, "failed to delete VLR %s", v.name)
	}
	v.state = stateTerminated
	return nil
}
