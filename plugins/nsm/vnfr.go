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
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

// virtualNetworkFunctionRecord is one running instance of a constituent VNF.
type virtualNetworkFunctionRecord struct {
	nsr  *networkServiceRecord
	vnfd *model.Vnfd

	id          string
	name        string
	memberIndex uint32
	groupName   string // empty for VNFRs outside of scaling groups
	instanceID  uint32

	state        recordState
	prevState    recordState
	configStatus model.VnfrConfigStatus
	cps          []*model.VnfrConnectionPoint
	createTime   int64

	// restored from the data store
	stored bool
}

// vnfrName derives the VNFR name: <nsr>[.<group>.<instance>].<vnfd>.<member-index>
func vnfrName(nsrName, groupName string, instanceID uint32, vnfdName string, memberIndex uint32) string {
	if groupName == "" {
		return fmt.Sprintf("%s.%s.%d", nsrName, vnfdName, memberIndex)
	}
	return fmt.Sprintf("%s.%s.%d.%s.%d", nsrName, groupName, instanceID, vnfdName, memberIndex)
}

func newVirtualNetworkFunctionRecord(nsr *networkServiceRecord, vnfd *model.Vnfd, memberIndex uint32,
	groupName string, instanceID uint32) *virtualNetworkFunctionRecord {
	return &virtualNetworkFunctionRecord{
		nsr:          nsr,
		vnfd:         vnfd,
		id:           uuid.New().String(),
		name:         vnfrName(nsr.Name(), groupName, instanceID, vnfd.Name, memberIndex),
		memberIndex:  memberIndex,
		groupName:    groupName,
		instanceID:   instanceID,
		state:        stateInit,
		prevState:    stateInit,
		configStatus: model.VnfrConfigStatus_INIT,
		createTime:   nsr.m.Clock.Now().Unix(),
	}
}

// restore rebinds the VNFR to a record found in the data store.
func (v *virtualNetworkFunctionRecord) restore(record *model.Vnfr) {
	v.id = record.Id
	v.stored = true
	v.state = recordStateFromStatus(record.OperationalStatus)
	v.configStatus = record.ConfigStatus
	v.cps = nil
	for _, cp := range record.ConnectionPoints {
		v.cps = append(v.cps, proto.Clone(cp).(*model.VnfrConnectionPoint))
	}
	if record.CreateTime != 0 {
		v.createTime = record.CreateTime
	}
}

// inScalingGroup returns true if the VNFR is owned by a scaling group instance.
func (v *virtualNetworkFunctionRecord) inScalingGroup() bool {
	return v.groupName != ""
}

// record returns the VNFR as published in the data store.
func (v *virtualNetworkFunctionRecord) record() *model.Vnfr {
	vnfr := &model.Vnfr{
		Id:                   v.id,
		Name:                 v.name,
		NsrIdRef:             v.nsr.ID(),
		VnfdRef:              v.vnfd.Id,
		VnfdName:             v.vnfd.Name,
		MemberVnfIndexRef:    v.memberIndex,
		CloudAccount:         v.nsr.CloudAccount(),
		ScalingGroupNameRef:  v.groupName,
		ScalingInstanceId:    v.instanceID,
		OperationalStatus:    v.state.recordStatus(),
		ConfigStatus:         v.configStatus,
		ServiceFunctionChain: v.vnfd.ServiceFunctionChain,
		CreateTime:           v.createTime,
	}
	for _, cp := range v.cps {
		vnfr.ConnectionPoints = append(vnfr.ConnectionPoints, proto.Clone(cp).(*model.VnfrConnectionPoint))
	}
	vnfr.PlacementGroups = []string{v.nsr.CloudAccount()}
	return vnfr
}

// bindConnectionPoints resolves every connection point of the VNFD to the VLR
// whose VLD references it. Unresolved connection points are skipped.
func (v *virtualNetworkFunctionRecord) bindConnectionPoints(vlrs []*virtualLinkRecord) {
	ips := make(map[string]string)
	for _, cp := range v.cps {
		ips[cp.Name] = cp.IpAddress
	}
	v.cps = nil
	for _, cp := range v.vnfd.ConnectionPoints {
		vlr := v.findVlr(vlrs, cp.Name)
		if vlr == nil {
			v.nsr.log.Warnf("Connection point %s of VNFR %s is not connected to any VL, skipping",
				cp.Name, v.name)
			continue
		}
		v.cps = append(v.cps, &model.VnfrConnectionPoint{
			Name:      cp.Name,
			VlrRef:    vlr.id,
			IpAddress: ips[cp.Name],
		})
	}
}

func (v *virtualNetworkFunctionRecord) findVlr(vlrs []*virtualLinkRecord, cpName string) *virtualLinkRecord {
	for _, vlr := range vlrs {
		for _, ref := range vlr.vld.VnfdConnectionPointRefs {
			if ref.VnfdIdRef == v.vnfd.Id && ref.VnfdConnectionPointRef == cpName &&
				ref.MemberVnfIndexRef == v.memberIndex {
				return vlr
			}
		}
	}
	return nil
}

// cpAddress returns the IP address assigned to the connection point.
func (v *virtualNetworkFunctionRecord) cpAddress(cpName string) string {
	for _, cp := range v.cps {
		if cp.Name == cpName {
			return cp.IpAddress
		}
	}
	return ""
}

// instantiate publishes the VNFR and asks the plugin to start the VNF.
func (v *virtualNetworkFunctionRecord) instantiate(ctx context.Context) error {
	v.bindConnectionPoints(v.nsr.vlrs)

	switch v.state {
	case stateActive:
		// restored record, the plugin is asked again to pick up the VNF
		if err := v.nsr.plugin.InstantiateVnf(ctx, v.nsr.record(), v.record()); err != nil {
			return v.fail(err)
		}
		if v.configStatus == model.VnfrConfigStatus_CONFIGURING {
			// configuration interrupted by the restart is applied again
			v.resetConfigStatus(ctx)
			v.nsr.configureVnfr(ctx, v)
		}
		return nil
	case stateFailed:
		return &NsrInstantiationFailed{Nsr: v.nsr.ID(), Record: v.id, Err: errors.New("VNF failed before restart")}
	}
	v.setState(stateInstantiationPending)

	ds := v.nsr.m.DataStore
	var err error
	if v.stored {
		err = ds.Update(ctx, model.VnfrKey(v.id), v.record(), datastore.Replace)
	} else {
		_, err = ds.Create(ctx, model.VnfrKey(v.id), v.record())
	}
	if err != nil {
		return v.fail(errors.Wrap(err, "failed to publish VNFR"))
	}
	v.stored = true

	if err := v.nsr.plugin.InstantiateVnf(ctx, v.nsr.record(), v.record()); err != nil {
		return v.fail(err)
	}
	v.nsr.log.Infof("VNFR %s (%s) instantiation requested", v.name, v.id)
	return nil
}

func (v *virtualNetworkFunctionRecord) fail(err error) error {
	v.setState(stateFailed)
	v.nsr.log.Errorf("Instantiation of VNFR %s (%s) failed: %v", v.name, v.id, err)
	return &NsrInstantiationFailed{Nsr: v.nsr.ID(), Record: v.id, Err: err}
}

func (v *virtualNetworkFunctionRecord) setState(state recordState) {
	if v.state == state {
		return
	}
	v.prevState = v.state
	v.state = state
}

// updateState applies the state reported by the backend. Returns true
// if the VNFR changed.
func (v *virtualNetworkFunctionRecord) updateState(msg *model.Vnfr) (changed bool) {
	switch v.state {
	case stateTerminatePending, stateTerminated, stateFailed:
		return false
	}
	for _, reported := range msg.ConnectionPoints {
		for _, cp := range v.cps {
			if cp.Name == reported.Name && reported.IpAddress != "" && cp.IpAddress != reported.IpAddress {
				cp.IpAddress = reported.IpAddress
				changed = true
			}
		}
	}
	switch msg.OperationalStatus {
	case model.RecordStatus_RUNNING:
		if v.state != stateActive {
			v.setState(stateActive)
			v.nsr.log.Infof("VNFR %s (%s) is running", v.name, v.id)
			changed = true
		}
	case model.RecordStatus_FAILED:
		v.setState(stateFailed)
		v.nsr.log.Warnf("VNFR %s (%s) failed", v.name, v.id)
		changed = true
	}
	return changed
}

var configStatusRank = map[model.VnfrConfigStatus]int{
	model.VnfrConfigStatus_INIT:              0,
	model.VnfrConfigStatus_CONFIGURING:       1,
	model.VnfrConfigStatus_CONFIG_NOT_NEEDED: 2,
	model.VnfrConfigStatus_CONFIGURED:        2,
	model.VnfrConfigStatus_FAILED:            2,
}

// setConfigStatus moves the config status forward and republishes the VNFR.
// Returns false if the transition is not allowed.
func (v *virtualNetworkFunctionRecord) setConfigStatus(ctx context.Context, status model.VnfrConfigStatus) bool {
	if status == v.configStatus || configStatusRank[status] <= configStatusRank[v.configStatus] {
		return false
	}
	v.nsr.log.Debugf("VNFR %s config status: %v -> %v", v.name, v.configStatus, status)
	v.configStatus = status
	v.publishConfigStatus(ctx)
	return true
}

// resetConfigStatus returns the config status back to INIT.
func (v *virtualNetworkFunctionRecord) resetConfigStatus(ctx context.Context) {
	if v.configStatus == model.VnfrConfigStatus_INIT {
		return
	}
	v.configStatus = model.VnfrConfigStatus_INIT
	// zero value would be skipped by merge
	if err := v.nsr.m.DataStore.Update(ctx, model.VnfrKey(v.id), v.record(), datastore.Replace); err != nil {
		v.nsr.log.Warnf("Failed to publish config status of VNFR %s: %v", v.name, err)
	}
}

func (v *virtualNetworkFunctionRecord) publishConfigStatus(ctx context.Context) {
	if !v.stored {
		return
	}
	err := v.nsr.m.DataStore.Update(ctx, model.VnfrKey(v.id),
		&model.Vnfr{ConfigStatus: v.configStatus}, datastore.Merge)
	if err != nil {
		v.nsr.log.Warnf("Failed to publish config status of VNFR %s: %v", v.name, err)
	}
}

// terminate stops the VNF and removes the record.
func (v *virtualNetworkFunctionRecord) terminate(ctx context.Context) error {
	if v.state == stateTerminated {
		return nil
	}
	if !v.stored {
		v.setState(stateTerminated)
		return nil
	}
	v.setState(stateTerminatePending)

	ds := v.nsr.m.DataStore
	err := ds.Update(ctx, model.VnfrKey(v.id),
		&model.Vnfr{OperationalStatus: model.RecordStatus_TERMINATING}, datastore.Merge)
	if err != nil {
		if _, notFound := err.(*datastore.NotFoundError); !notFound {
			v.nsr.log.Warnf("Failed to publish termination of VNFR %s: %v", v.name, err)
		}
	}
	if err := v.nsr.plugin.TerminateVnf(ctx, v.nsr.record(), v.record()); err != nil {
		v.nsr.log.Warnf("Plugin failed to terminate VNFR %s: %v", v.name, err)
	}
	if err := ds.Delete(ctx, model.VnfrKey(v.id)); err != nil {
		return errors.Wrapf(err, "failed to delete VNFR %s", v.name)
	}
	v.stored = false
	v.setState(stateTerminated)
	v.nsr.log.Infof("VNFR %s (%s) terminated", v.name, v.id)
	return nil
}
