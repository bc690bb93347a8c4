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

	goerrors "github.com/go-errors/errors"
	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/nsm/parampool"
)

// errInstantiationStopped is returned by a phase of the instantiation task
// when the NSR was terminated or has failed in the meantime.
var errInstantiationStopped = errors.New("instantiation stopped")

// Instantiate creates all the child records of the NSR and starts
// the detached instantiation task.
func (n *networkServiceRecord) Instantiate(ctx context.Context) error {
	desc := n.nsd.Descriptor()
	if err := applyInputParameters(n.log, desc, n.cfg.InputParameters); err != nil {
		return newNsrError(n.ID(), "%v", err)
	}
	n.desc = desc

	// resolve all the VNFDs first
	vnfds := make(map[uint32]*model.Vnfd)
	for _, cv := range desc.ConstituentVnfds {
		vnfd, found := n.m.vnfds[cv.VnfdIdRef]
		if !found {
			return newNsdError(desc.Id, "VNFD %s of member %d is not in the catalog",
				cv.VnfdIdRef, cv.MemberVnfIndex)
		}
		vnfds[cv.MemberVnfIndex] = vnfd
	}

	if err := n.plugin.CreateNsr(n.cfg, desc); err != nil {
		return &PluginError{Account: n.CloudAccount(), Err: err}
	}

	for _, vld := range desc.Vlds {
		vlr := newVirtualLinkRecord(n, vld)
		if restored := n.restoredVlr(vlr.name); restored != nil {
			vlr.restore(restored)
		}
		n.vlrs = append(n.vlrs, vlr)
	}
	for _, cv := range desc.ConstituentVnfds {
		if !cv.StartByDefault {
			continue
		}
		vnfr := newVirtualNetworkFunctionRecord(n, vnfds[cv.MemberVnfIndex], cv.MemberVnfIndex, "", 0)
		if restored := n.restoredVnfr(vnfr.name); restored != nil {
			vnfr.restore(restored)
		}
		n.addVnfr(vnfr)
	}
	for _, vnffgd := range desc.Vnffgds {
		vnffgr := newVnffgRecord(n, vnffgd)
		if restored := n.restoredVnffgr(vnffgr.name); restored != nil {
			vnffgr.restore(restored)
		}
		n.vnffgrs[vnffgr.id] = vnffgr
	}
	for _, sgd := range desc.ScalingGroupDescriptors {
		n.scalingGroups[sgd.Name] = newScalingGroup(sgd)
	}
	for _, pool := range desc.ParameterPools {
		n.pools[pool.Name] = parampool.New(n.log, poolName(n.ID(), pool.Name),
			pool.StartValue, pool.EndValue, n.m.config.ArtifactRoot)
	}
	if n.restored != nil {
		n.restoreScalingInstances()
	}

	if n.restarting {
		n.status.recordEvent("restart", "Restarting instantiation of the network service")
		if n.restored.nsr != nil && n.restored.nsr.OperationalStatus == model.NsrState_FAILED {
			n.status.setState(model.NsrState_FAILED)
			n.publish(ctx)
			n.log.Warnf("NSR %s has failed before restart, not instantiating", n.Name())
			return nil
		}
	} else {
		n.status.recordEvent("instantiate-rcvd", "Instantiate request received")
	}
	n.publish(ctx)

	n.m.wg.Add(1)
	go n.instantiateTask(n.ctx)
	return nil
}

// instantiateTask drives the instantiation of the children in the order:
// VLs, VNFs, VNFFGs, default scaling group instances and deploy.
// Errors and panics fail the NSR.
func (n *networkServiceRecord) instantiateTask(ctx context.Context) {
	defer n.m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			err := goerrors.Wrap(r, 2)
			n.log.Errorf("Instantiation of NSR %s panicked: %v\n%s", n.Name(), err, err.ErrorStack())
			n.m.withLock(func() error {
				n.instantiationFailed(err)
				return nil
			})
		}
	}()

	err := n.instantiatePhases(ctx)
	if err == nil || err == errInstantiationStopped || ctx.Err() != nil {
		if ctx.Err() != nil {
			n.log.Debugf("Instantiation of NSR %s was cancelled", n.Name())
		}
		return
	}
	n.m.withLock(func() error {
		n.instantiationFailed(err)
		return nil
	})
}

// phase runs f with the record lock held, unless the NSR was terminated
// or has failed in the meantime.
func (n *networkServiceRecord) phase(ctx context.Context, f func() error) error {
	return n.m.withLock(func() error {
		if ctx.Err() != nil || n.status.State() == model.NsrState_FAILED {
			return errInstantiationStopped
		}
		return f()
	})
}

func (n *networkServiceRecord) instantiatePhases(ctx context.Context) error {
	err := n.phase(ctx, func() error {
		n.transition(ctx, model.NsrState_VL_INIT_PHASE, "vl-init-phase", "Instantiating virtual links")
		if err := n.plugin.InstantiateNs(ctx, n.record()); err != nil {
			return &PluginError{Account: n.CloudAccount(), Err: err}
		}
		for _, vlr := range n.vlrs {
			if err := vlr.instantiate(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = n.phase(ctx, func() error {
		n.transition(ctx, model.NsrState_VNF_INIT_PHASE, "vnf-init-phase", "Instantiating VNFs")
		for _, vnfr := range n.sortedVnfrs() {
			if vnfr.inScalingGroup() {
				continue
			}
			if err := vnfr.instantiate(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(n.vnffgrs) > 0 {
		var vnffgrs []*vnffgRecord
		err = n.phase(ctx, func() error {
			n.transition(ctx, model.NsrState_VNFFG_INIT_PHASE, "vnffg-init-phase",
				"Instantiating forwarding graphs")
			vnffgrs = n.sortedVnffgrs()
			return nil
		})
		if err != nil {
			return err
		}
		for _, vnffgr := range vnffgrs {
			if err := vnffgr.instantiate(ctx); err != nil {
				return err
			}
		}
	}

	err = n.phase(ctx, func() error {
		for _, group := range n.sortedGroups() {
			for _, inst := range group.sortedInstances() {
				n.reinstantiateInstance(ctx, inst)
			}
			for uint32(group.instanceCount()) < group.desc.MinInstanceCount {
				if n.status.State() == model.NsrState_FAILED {
					return errInstantiationStopped
				}
				if err := n.createScaleGroupInstance(ctx, group, group.nextInstanceID(), true); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return n.phase(ctx, func() error {
		if err := n.plugin.Deploy(ctx, n.record()); err != nil {
			return &PluginError{Account: n.CloudAccount(), Err: err}
		}
		n.instantiated = true
		n.restarting = false
		n.status.recordEvent("ns-deployed", "All the records were instantiated")
		n.publish(ctx)
		n.UpdateState(ctx)
		return nil
	})
}

// instantiationFailed marks the NSR as failed.
func (n *networkServiceRecord) instantiationFailed(err error) {
	if isTerminationState(n.status.State()) {
		return
	}
	n.log.Errorf("Instantiation of NSR %s failed: %v", n.Name(), err)
	if n.status.setState(model.NsrState_FAILED) {
		n.m.countFailure()
	}
	n.status.recordEvent("instantiation-failed", err.Error())
	n.publish(context.Background())
}

func (n *networkServiceRecord) restoredVlr(name string) *model.Vlr {
	if n.restored == nil {
		return nil
	}
	return n.restored.vlrs[name]
}

func (n *networkServiceRecord) restoredVnfr(name string) *model.Vnfr {
	if n.restored == nil {
		return nil
	}
	return n.restored.vnfrs[name]
}

func (n *networkServiceRecord) restoredVnffgr(name string) *model.Vnffgr {
	if n.restored == nil {
		return nil
	}
	return n.restored.vnffgrs[name]
}

// restoreScalingInstances rebuilds scaling instances published before restart.
func (n *networkServiceRecord) restoreScalingInstances() {
	if n.restored.nsr == nil {
		return
	}
	byID := make(map[string]*model.Vnfr)
	for _, vnfr := range n.restored.vnfrs {
		byID[vnfr.Id] = vnfr
	}
	for _, groupRecord := range n.restored.nsr.ScalingGroupRecords {
		group, found := n.scalingGroups[groupRecord.ScalingGroupNameRef]
		if !found {
			continue
		}
		for _, instRecord := range groupRecord.Instances {
			if instRecord.OpStatus == model.ScalingInstanceStatus_TERMINATED {
				continue
			}
			inst := &scalingGroupInstance{
				group:        group,
				id:           instRecord.InstanceId,
				isDefault:    instRecord.IsDefault,
				opStatus:     instRecord.OpStatus,
				configStatus: instRecord.ConfigStatus,
				poolValues:   instRecord.PoolValues,
				createTime:   instRecord.CreateTime,
			}
			for _, vnfrID := range instRecord.VnfrRefs {
				record, found := byID[vnfrID]
				if !found {
					n.log.Warnf("VNFR %s of scaling instance %s/%d was not found", vnfrID,
						group.Name(), inst.id)
					continue
				}
				vnfd, found := n.m.vnfds[record.VnfdRef]
				if !found {
					n.log.Warnf("VNFD %s of VNFR %s is not in the catalog", record.VnfdRef, record.Name)
					continue
				}
				vnfr := newVirtualNetworkFunctionRecord(n, vnfd, record.MemberVnfIndexRef, group.Name(), inst.id)
				vnfr.name = record.Name
				vnfr.restore(record)
				inst.vnfrs = append(inst.vnfrs, vnfr)
				n.addVnfr(vnfr)
			}
			group.instances[inst.id] = inst
		}
	}
	if state := n.restored.nsr.OperationalStatus; state == model.NsrState_RUNNING ||
		state == model.NsrState_SCALING_OUT || state == model.NsrState_SCALING_IN {
		n.reachedRunning = true
	}
}

// reinstantiateInstance asks the plugin again for the VNFs of a restored
// scaling instance.
func (n *networkServiceRecord) reinstantiateInstance(ctx context.Context, inst *scalingGroupInstance) {
	for _, vnfr := range inst.vnfrs {
		if vnfr.state == stateFailed {
			continue
		}
		if err := vnfr.instantiate(ctx); err != nil {
			n.log.Warnf("Failed to re-instantiate VNFR %s: %v", vnfr.name, err)
		}
	}
}
