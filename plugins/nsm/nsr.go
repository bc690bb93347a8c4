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

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/nsm/parampool"
	"github.com/contiv/nfvo/plugins/nsmplugin"
)

// networkServiceRecord is one running instance of a network service.
//
// All the fields are protected by the record lock of the NsManager.
type networkServiceRecord struct {
	m   *NsManager
	log logging.Logger

	cfg          *model.NsrConfig
	nsd          *networkServiceDescriptor
	desc         *model.Nsd // copy of the NSD with input parameters applied
	account      *cloudAccount
	plugin       nsmplugin.API
	configStatus model.NsrConfigStatus
	createTime   int64

	vlrs          []*virtualLinkRecord
	vnfrs         map[string]*virtualNetworkFunctionRecord
	vnffgrs       map[string]*vnffgRecord
	scalingGroups map[string]*scalingGroup
	pools         map[string]*parampool.Pool
	status        *networkServiceStatus

	// ctx is cancelled by terminate
	ctx    context.Context
	cancel context.CancelFunc

	instantiated   bool // the instantiation task has finished
	reachedRunning bool
	published      bool

	// restart mode
	restarting bool
	restored   *restoredRecords
}

// restoredRecords are records of the NSR found in the data store on startup.
type restoredRecords struct {
	nsr     *model.Nsr
	vlrs    map[string]*model.Vlr    // by name
	vnfrs   map[string]*model.Vnfr   // by name
	vnffgrs map[string]*model.Vnffgr // by name
}

func newNetworkServiceRecord(m *NsManager, cfg *model.NsrConfig, nsd *networkServiceDescriptor,
	account *cloudAccount) *networkServiceRecord {
	n := &networkServiceRecord{
		m:             m,
		log:           m.Log,
		cfg:           cfg,
		nsd:           nsd,
		account:       account,
		plugin:        account.plugin,
		configStatus:  model.NsrConfigStatus_CONFIGURING,
		createTime:    m.Clock.Now().Unix(),
		vnfrs:         make(map[string]*virtualNetworkFunctionRecord),
		vnffgrs:       make(map[string]*vnffgRecord),
		scalingGroups: make(map[string]*scalingGroup),
		pools:         make(map[string]*parampool.Pool),
		status:        newNetworkServiceStatus(m.Clock, m.config.MaxEventsRecorded),
	}
	n.ctx, n.cancel = context.WithCancel(m.ctx)
	return n
}

// ID returns the NSR ID (= ID of the NS instance configuration).
func (n *networkServiceRecord) ID() string {
	return n.cfg.Id
}

// Name returns the NSR name.
func (n *networkServiceRecord) Name() string {
	return n.cfg.Name
}

// CloudAccount returns the name of the cloud account the NSR is deployed to.
func (n *networkServiceRecord) CloudAccount() string {
	return n.account.account.Name
}

// SdnAccount returns the name of the SDN account used for forwarding graphs.
func (n *networkServiceRecord) SdnAccount() string {
	if sdn := n.account.account.SdnAccount; sdn != "" {
		return sdn
	}
	return n.m.config.DefaultSdnAccount
}

// State returns the operational state.
func (n *networkServiceRecord) State() model.NsrState {
	return n.status.State()
}

// record returns the NSR as published in the data store.
func (n *networkServiceRecord) record() *model.Nsr {
	nsr := &model.Nsr{
		Id:                n.ID(),
		Name:              n.Name(),
		NsdRef:            n.nsd.ID(),
		NsdName:           n.nsd.Name(),
		CloudAccount:      n.CloudAccount(),
		SdnAccount:        n.SdnAccount(),
		OperationalStatus: n.status.State(),
		ConfigStatus:      n.configStatus,
		CreateTime:        n.createTime,
		OperationalEvents: n.status.Events(),
	}
	for _, vlr := range n.vlrs {
		nsr.VlrRefs = append(nsr.VlrRefs, vlr.id)
	}
	for _, vnfr := range n.sortedVnfrs() {
		nsr.ConstituentVnfrRefs = append(nsr.ConstituentVnfrRefs, vnfr.id)
	}
	for _, vnffgr := range n.sortedVnffgrs() {
		nsr.VnffgrRefs = append(nsr.VnffgrRefs, vnffgr.id)
	}
	for _, group := range n.sortedGroups() {
		nsr.ScalingGroupRecords = append(nsr.ScalingGroupRecords, group.record())
	}
	return nsr
}

// publish writes the NSR into the data store. Failures are only logged.
func (n *networkServiceRecord) publish(ctx context.Context) {
	ds := n.m.DataStore
	key := model.NsrKey(n.ID())
	var err error
	if n.published {
		err = ds.Update(ctx, key, n.record(), datastore.Replace)
	} else {
		_, err = ds.Create(ctx, key, n.record())
		if _, exists := err.(*datastore.AlreadyExistsError); exists {
			err = ds.Update(ctx, key, n.record(), datastore.Replace)
		}
	}
	if err != nil {
		n.log.Warnf("Failed to publish NSR %s: %v", n.Name(), err)
		return
	}
	n.published = true
}

// unpublish removes the NSR from the data store.
func (n *networkServiceRecord) unpublish(ctx context.Context) error {
	if err := n.m.DataStore.Delete(ctx, model.NsrKey(n.ID())); err != nil {
		return err
	}
	n.published = false
	return nil
}

// transition moves the NSR into the given state, records the event and
// publishes the NSR. Nothing is done if the state does not change.
func (n *networkServiceRecord) transition(ctx context.Context, state model.NsrState, event, description string) bool {
	prev := n.status.State()
	if !n.status.setState(state) {
		return false
	}
	n.log.Infof("NSR %s: %v -> %v", n.Name(), prev, state)
	n.status.recordEvent(event, description)
	if state == model.NsrState_RUNNING {
		n.reachedRunning = true
	}
	n.publish(ctx)
	return true
}

// UpdateState reconciles the state of the NSR with the state of its children.
//
// A failed VLR, VNFR or VNFFGR fails the NSR. A failed scaling instance fails
// the NSR only before it reached RUNNING, later the instance is marked as
// failed and the NSR keeps running. Once the instantiation has finished
// and all the children are running, the NSR is RUNNING, or SCALING_OUT /
// SCALING_IN while a scaling group is changing.
func (n *networkServiceRecord) UpdateState(ctx context.Context) {
	current := n.status.State()
	if current == model.NsrState_FAILED || isTerminationState(current) {
		return
	}

	changed := false
	for _, group := range n.sortedGroups() {
		for _, inst := range group.sortedInstances() {
			if n.updateInstanceState(ctx, group, inst) {
				changed = true
			}
		}
	}

	candidate, reason := current, ""
	if failed := n.failedChild(); failed != "" {
		candidate, reason = model.NsrState_FAILED, "child record "+failed+" failed"
	} else if n.instantiated && n.childrenRunning() {
		candidate = model.NsrState_RUNNING
		if n.reachedRunning {
			for _, group := range n.sortedGroups() {
				if state := group.State(); state == model.NsrState_SCALING_OUT {
					candidate = state
					break
				} else if state == model.NsrState_SCALING_IN {
					candidate = state
				}
			}
		}
	}

	if candidate != current && n.status.setState(candidate) {
		n.log.Infof("NSR %s: %v -> %v", n.Name(), current, candidate)
		if reason == "" {
			reason = "NSR is " + candidate.String()
		}
		n.status.recordEvent(stateEvent(candidate), reason)
		if candidate == model.NsrState_RUNNING {
			n.reachedRunning = true
		}
		if candidate == model.NsrState_FAILED {
			n.m.countFailure()
		}
		changed = true
	}
	if n.updateConfigStatus() {
		changed = true
	}
	if changed {
		n.publish(ctx)
	}
}

// stateEvent returns the operational event recorded on entering the state.
func stateEvent(state model.NsrState) string {
	switch state {
	case model.NsrState_RUNNING:
		return "ns-running"
	case model.NsrState_SCALING_OUT:
		return "scaling-out"
	case model.NsrState_SCALING_IN:
		return "scaling-in"
	case model.NsrState_FAILED:
		return "ns-failed"
	}
	return "state-changed"
}

// failedChild returns ID of a failed child record which fails the whole NSR.
func (n *networkServiceRecord) failedChild() string {
	for _, vlr := range n.vlrs {
		if vlr.state == stateFailed {
			return vlr.id
		}
	}
	for _, vnfr := range n.sortedVnfrs() {
		if vnfr.state == stateFailed && !vnfr.inScalingGroup() {
			return vnfr.id
		}
	}
	for _, vnffgr := range n.sortedVnffgrs() {
		if vnffgr.state == stateFailed {
			return vnffgr.id
		}
	}
	if !n.reachedRunning {
		for _, group := range n.sortedGroups() {
			for _, inst := range group.sortedInstances() {
				if inst.opStatus == model.ScalingInstanceStatus_FAILED {
					if vnfr := inst.failedVnfr(); vnfr != nil {
						return vnfr.id
					}
					return group.Name()
				}
			}
		}
	}
	return ""
}

// childrenRunning returns true if all the children needed for the NSR to
// run are active.
func (n *networkServiceRecord) childrenRunning() bool {
	for _, vlr := range n.vlrs {
		if vlr.state != stateActive {
			return false
		}
	}
	for _, vnfr := range n.vnfrs {
		if !vnfr.inScalingGroup() && vnfr.state != stateActive {
			return false
		}
	}
	for _, vnffgr := range n.vnffgrs {
		if vnffgr.state != stateActive {
			return false
		}
	}
	if !n.reachedRunning {
		for _, group := range n.scalingGroups {
			for _, inst := range group.instances {
				if inst.opStatus != model.ScalingInstanceStatus_RUNNING {
					return false
				}
			}
		}
	}
	return true
}

// updateConfigStatus aggregates config statuses of the VNFRs.
func (n *networkServiceRecord) updateConfigStatus() bool {
	status := model.NsrConfigStatus_CONFIG_NOT_NEEDED
	for _, vnfr := range n.sortedVnfrs() {
		switch vnfr.configStatus {
		case model.VnfrConfigStatus_FAILED:
			status = model.NsrConfigStatus_FAILED
		case model.VnfrConfigStatus_INIT, model.VnfrConfigStatus_CONFIGURING:
			if status != model.NsrConfigStatus_FAILED {
				status = model.NsrConfigStatus_CONFIGURING
			}
		case model.VnfrConfigStatus_CONFIGURED:
			if status == model.NsrConfigStatus_CONFIG_NOT_NEEDED {
				status = model.NsrConfigStatus_CONFIGURED
			}
		}
	}
	if status == n.configStatus {
		return false
	}
	n.log.Debugf("NSR %s config status: %v -> %v", n.Name(), n.configStatus, status)
	n.configStatus = status
	return true
}

// onVnfrChange applies the VNFR state reported through the data store.
func (n *networkServiceRecord) onVnfrChange(ctx context.Context, vnfr *virtualNetworkFunctionRecord, msg *model.Vnfr) {
	if !vnfr.updateState(msg) {
		return
	}
	if vnfr.state == stateActive {
		n.configureVnfr(ctx, vnfr)
	}
	n.UpdateState(ctx)
}

// configureVnfr applies the initial configuration of a running VNF.
func (n *networkServiceRecord) configureVnfr(ctx context.Context, vnfr *virtualNetworkFunctionRecord) {
	if len(vnfr.vnfd.ConfigPrimitives) == 0 {
		vnfr.setConfigStatus(ctx, model.VnfrConfigStatus_CONFIG_NOT_NEEDED)
		return
	}
	if !vnfr.setConfigStatus(ctx, model.VnfrConfigStatus_CONFIGURING) {
		return
	}
	err := n.m.ConfigAgent.ConfigureVnf(ctx, n.record(), vnfr.record(), vnfr.vnfd)
	if err != nil {
		n.log.Warnf("Configuration of VNFR %s failed: %v", vnfr.name, err)
		vnfr.setConfigStatus(ctx, model.VnfrConfigStatus_FAILED)
		return
	}
	vnfr.setConfigStatus(ctx, model.VnfrConfigStatus_CONFIGURED)
}

// addVnfr adds the VNFR into the NSR and the manager index.
func (n *networkServiceRecord) addVnfr(vnfr *virtualNetworkFunctionRecord) {
	n.vnfrs[vnfr.id] = vnfr
	n.m.vnfrs[vnfr.id] = vnfr
}

// removeVnfr removes the VNFR from the NSR and the manager index.
func (n *networkServiceRecord) removeVnfr(vnfr *virtualNetworkFunctionRecord) {
	delete(n.vnfrs, vnfr.id)
	delete(n.m.vnfrs, vnfr.id)
}

// findVnfr returns the VNFR (ordered by name) of the given constituent VNF.
func (n *networkServiceRecord) findVnfr(memberIndex uint32, vnfdID string) *virtualNetworkFunctionRecord {
	for _, vnfr := range n.sortedVnfrs() {
		if vnfr.memberIndex == memberIndex && vnfr.vnfd.Id == vnfdID {
			return vnfr
		}
	}
	return nil
}

// sffMap returns forwarders and classifiers among the VNFRs of the NSR.
func (n *networkServiceRecord) sffMap() map[string]*model.Sff {
	sffs := make(map[string]*model.Sff)
	for _, vnfr := range n.sortedVnfrs() {
		role := vnfr.vnfd.ServiceFunctionChain
		if role != model.SfcRole_SFF && role != model.SfcRole_CLASSIFIER {
			continue
		}
		record := vnfr.record()
		sffs[vnfr.id] = &model.Sff{
			VnfrIdRef:        vnfr.id,
			Name:             vnfr.name,
			Role:             role,
			ConnectionPoints: record.ConnectionPoints,
		}
	}
	return sffs
}

func (n *networkServiceRecord) sortedVnfrs() []*virtualNetworkFunctionRecord {
	var vnfrs []*virtualNetworkFunctionRecord
	for _, vnfr := range n.vnfrs {
		vnfrs = append(vnfrs, vnfr)
	}
	sort.Slice(vnfrs, func(i, j int) bool { return vnfrs[i].name < vnfrs[j].name })
	return vnfrs
}

// instantiationOrder returns the VNFRs in the order they are instantiated:
// constituent VNFs first, then the scaling group instances.
func (n *networkServiceRecord) instantiationOrder() []*virtualNetworkFunctionRecord {
	var vnfrs []*virtualNetworkFunctionRecord
	for _, vnfr := range n.sortedVnfrs() {
		if !vnfr.inScalingGroup() {
			vnfrs = append(vnfrs, vnfr)
		}
	}
	owned := make(map[string]struct{})
	for _, group := range n.sortedGroups() {
		for _, inst := range group.sortedInstances() {
			for _, vnfr := range inst.vnfrs {
				owned[vnfr.id] = struct{}{}
				vnfrs = append(vnfrs, vnfr)
			}
		}
	}
	// scaling VNFRs no longer owned by an instance
	for _, vnfr := range n.sortedVnfrs() {
		if _, isOwned := owned[vnfr.id]; vnfr.inScalingGroup() && !isOwned {
			vnfrs = append(vnfrs, vnfr)
		}
	}
	return vnfrs
}

func (n *networkServiceRecord) sortedVnffgrs() []*vnffgRecord {
	var vnffgrs []*vnffgRecord
	for _, vnffgr := range n.vnffgrs {
		vnffgrs = append(vnffgrs, vnffgr)
	}
	sort.Slice(vnffgrs, func(i, j int) bool { return vnffgrs[i].name < vnffgrs[j].name })
	return vnffgrs
}

func (n *networkServiceRecord) sortedGroups() []*scalingGroup {
	var groups []*scalingGroup
	for _, group := range n.scalingGroups {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name() < groups[j].Name() })
	return groups
}

// destroyPools removes the files of the parameter pools.
func (n *networkServiceRecord) destroyPools() {
	for _, pool := range n.pools {
		if err := pool.Destroy(); err != nil {
			n.log.Warn(err)
		}
	}
}

// poolName returns the name of the per-NSR pool file.
func poolName(nsrID, pool string) string {
	return nsrID + "." + pool
}
