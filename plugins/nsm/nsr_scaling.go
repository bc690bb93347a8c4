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
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// scalingChange is one instance added to or removed from a scaling group.
type scalingChange struct {
	group      string
	instanceID uint32
	scaleOut   bool
}

// String returns human-readable description of the change.
func (c scalingChange) String() string {
	if c.scaleOut {
		return fmt.Sprintf("scale-out %s/%d", c.group, c.instanceID)
	}
	return fmt.Sprintf("scale-in %s/%d", c.group, c.instanceID)
}

// scalingChanges compares the explicitly requested instances of the configuration
// with the current non-default instances of the scaling groups.
func (n *networkServiceRecord) scalingChanges(cfg *model.NsrConfig) ([]scalingChange, error) {
	var changes []scalingChange
	requested := make(map[string]map[uint32]struct{})
	for _, groupCfg := range cfg.ScalingGroups {
		group, found := n.scalingGroups[groupCfg.ScalingGroupNameRef]
		if !found {
			return nil, newScalingError(n.ID(), groupCfg.ScalingGroupNameRef, "no such scaling group")
		}
		ids := make(map[uint32]struct{})
		for _, instCfg := range groupCfg.Instances {
			ids[instCfg.Id] = struct{}{}
			if _, exists := group.instances[instCfg.Id]; !exists {
				changes = append(changes, scalingChange{group: group.Name(), instanceID: instCfg.Id, scaleOut: true})
			}
		}
		requested[group.Name()] = ids
	}
	for _, group := range n.sortedGroups() {
		for _, inst := range group.sortedInstances() {
			if inst.isDefault {
				continue
			}
			if _, keep := requested[group.Name()][inst.id]; !keep {
				changes = append(changes, scalingChange{group: group.Name(), instanceID: inst.id})
			}
		}
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].scaleOut && !changes[j].scaleOut })
	return changes, nil
}

// checkScalingChange verifies that the change can be applied right now.
func (n *networkServiceRecord) checkScalingChange(change scalingChange) error {
	if state := n.status.State(); state != model.NsrState_RUNNING {
		return newScalingError(n.ID(), change.group, "NSR is not running (%v)", state)
	}
	group := n.scalingGroups[change.group]
	if change.scaleOut {
		return group.checkScaleOut(n.ID())
	}
	return group.checkScaleIn(n.ID())
}

// applyScalingChange creates or deletes the scaling group instance.
func (n *networkServiceRecord) applyScalingChange(ctx context.Context, change scalingChange) error {
	group, found := n.scalingGroups[change.group]
	if !found {
		return newScalingError(n.ID(), change.group, "no such scaling group")
	}
	if change.scaleOut {
		return n.createScaleGroupInstance(ctx, group, change.instanceID, false)
	}
	return n.deleteScaleGroupInstance(ctx, group, change.instanceID)
}

// createScaleGroupInstance adds a new instance into the scaling group. Only default
// instances can be created while the NSR is not running yet.
func (n *networkServiceRecord) createScaleGroupInstance(ctx context.Context, group *scalingGroup,
	id uint32, isDefault bool) error {
	if !isDefault && n.status.State() != model.NsrState_RUNNING {
		return newScalingError(n.ID(), group.Name(), "NSR is not running (%v)", n.status.State())
	}
	if _, exists := group.instances[id]; exists {
		return newScalingError(n.ID(), group.Name(), "instance %d already exists", id)
	}
	if err := group.checkScaleOut(n.ID()); err != nil {
		return err
	}

	inst := &scalingGroupInstance{
		group:        group,
		id:           id,
		isDefault:    isDefault,
		opStatus:     model.ScalingInstanceStatus_INIT,
		configStatus: model.ScalingConfigStatus_CONFIGURING,
		createTime:   n.m.Clock.Now().Unix(),
	}
	for _, member := range group.desc.VnfdMembers {
		cv := findConstituentVnfd(n.desc, member.MemberVnfIndexRef)
		if cv == nil {
			return newScalingError(n.ID(), group.Name(), "member %d is not a constituent VNF",
				member.MemberVnfIndexRef)
		}
		vnfd, found := n.m.vnfds[cv.VnfdIdRef]
		if !found {
			return newNsdError(n.nsd.ID(), "VNFD %s is not in the catalog", cv.VnfdIdRef)
		}
		count := member.Count
		if count == 0 {
			count = 1
		}
		for replica := uint32(0); replica < count; replica++ {
			vnfr := newVirtualNetworkFunctionRecord(n, vnfd, cv.MemberVnfIndex, group.Name(), id)
			if count > 1 {
				vnfr.name += "." + strconv.Itoa(int(replica))
			}
			inst.vnfrs = append(inst.vnfrs, vnfr)
		}
	}
	if err := n.allocatePoolValues(group, inst); err != nil {
		return err
	}

	group.instances[id] = inst
	for _, vnfr := range inst.vnfrs {
		n.addVnfr(vnfr)
	}
	inst.opStatus = model.ScalingInstanceStatus_VNF_INIT_PHASE
	n.status.recordEvent("scale-out", fmt.Sprintf("Creating instance %d of scaling group %s", id, group.Name()))
	n.m.countScaling(true)
	n.UpdateState(ctx)
	n.publish(ctx)

	if err := n.runScalingHook(ctx, group, inst, model.ScalingTrigger_PRE_SCALE_OUT); err != nil {
		n.log.Warnf("Pre-scale-out config of %s/%d failed: %v", group.Name(), id, err)
		inst.configStatus = model.ScalingConfigStatus_FAILED
	}
	for _, vnfr := range inst.vnfrs {
		if err := vnfr.instantiate(ctx); err != nil {
			n.log.Warnf("VNFR %s of scaling instance %s/%d failed: %v", vnfr.name, group.Name(), id, err)
		}
	}
	n.UpdateState(ctx)
	return nil
}

// updateInstanceState completes the scale-out once all the VNFRs of the instance
// run, or marks the instance as failed. Returns true if the instance changed.
func (n *networkServiceRecord) updateInstanceState(ctx context.Context, group *scalingGroup,
	inst *scalingGroupInstance) bool {
	switch inst.opStatus {
	case model.ScalingInstanceStatus_VNF_INIT_PHASE, model.ScalingInstanceStatus_RUNNING:
	default:
		return false
	}
	if vnfr := inst.failedVnfr(); vnfr != nil {
		inst.opStatus = model.ScalingInstanceStatus_FAILED
		if inst.configStatus == model.ScalingConfigStatus_CONFIGURING {
			inst.configStatus = model.ScalingConfigStatus_FAILED
		}
		n.status.recordEvent("scaling-instance-failed",
			fmt.Sprintf("Instance %d of scaling group %s failed (VNFR %s)", inst.id, group.Name(), vnfr.name))
		return true
	}
	if inst.opStatus == model.ScalingInstanceStatus_RUNNING || !inst.vnfrsActive() {
		return false
	}

	if err := n.runScalingHook(ctx, group, inst, model.ScalingTrigger_POST_SCALE_OUT); err != nil {
		n.log.Warnf("Post-scale-out config of %s/%d failed: %v", group.Name(), inst.id, err)
		inst.configStatus = model.ScalingConfigStatus_FAILED
	} else if inst.configStatus == model.ScalingConfigStatus_CONFIGURING {
		inst.configStatus = model.ScalingConfigStatus_CONFIGURED
	}
	inst.opStatus = model.ScalingInstanceStatus_RUNNING
	n.status.recordEvent("scale-out-done",
		fmt.Sprintf("Instance %d of scaling group %s is running", inst.id, group.Name()))
	return true
}

// deleteScaleGroupInstance removes the instance with all its VNFRs.
func (n *networkServiceRecord) deleteScaleGroupInstance(ctx context.Context, group *scalingGroup, id uint32) error {
	if state := n.status.State(); state != model.NsrState_RUNNING {
		return newScalingError(n.ID(), group.Name(), "NSR is not running (%v)", state)
	}
	inst, exists := group.instances[id]
	if !exists {
		return newScalingError(n.ID(), group.Name(), "instance %d does not exist", id)
	}
	if err := group.checkScaleIn(n.ID()); err != nil {
		return err
	}

	inst.opStatus = model.ScalingInstanceStatus_TERMINATE
	n.status.recordEvent("scale-in", fmt.Sprintf("Removing instance %d of scaling group %s", id, group.Name()))
	n.m.countScaling(false)
	n.UpdateState(ctx)
	n.publish(ctx)

	if err := n.runScalingHook(ctx, group, inst, model.ScalingTrigger_PRE_SCALE_IN); err != nil {
		n.log.Warnf("Pre-scale-in config of %s/%d failed: %v", group.Name(), id, err)
	}
	inst.opStatus = model.ScalingInstanceStatus_VNF_TERMINATE_PHASE
	var firstErr error
	for i := len(inst.vnfrs) - 1; i >= 0; i-- {
		vnfr := inst.vnfrs[i]
		if err := vnfr.terminate(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		n.removeVnfr(vnfr)
	}
	if err := n.runScalingHook(ctx, group, inst, model.ScalingTrigger_POST_SCALE_IN); err != nil {
		n.log.Warnf("Post-scale-in config of %s/%d failed: %v", group.Name(), id, err)
	}
	n.releasePoolValues(inst)
	inst.opStatus = model.ScalingInstanceStatus_TERMINATED
	delete(group.instances, id)
	n.status.recordEvent("scale-in-done", fmt.Sprintf("Instance %d of scaling group %s removed", id, group.Name()))
	n.UpdateState(ctx)
	n.publish(ctx)
	return firstErr
}

// runScalingHook passes the config primitive bound to the trigger to the config agent.
func (n *networkServiceRecord) runScalingHook(ctx context.Context, group *scalingGroup,
	inst *scalingGroupInstance, trigger model.ScalingTrigger) error {
	primitive := n.configPrimitive(group.configPrimitive(trigger))
	if primitive == nil {
		return nil
	}
	request := &ScalingConfigRequest{
		NsrID:      n.ID(),
		NsrName:    n.Name(),
		Group:      group.Name(),
		InstanceID: inst.id,
		Trigger:    trigger,
		Primitive:  primitive,
		Parameters: make(map[string]string),
	}
	for _, param := range primitive.Parameters {
		value := param.DefaultValue
		if param.ParameterPool != "" {
			for _, poolValue := range inst.poolValues {
				if poolValue.Pool == param.ParameterPool {
					value = strconv.FormatUint(uint64(poolValue.Value), 10)
				}
			}
		}
		request.Parameters[param.Name] = value
	}
	for _, vnfr := range inst.vnfrs {
		request.Vnfrs = append(request.Vnfrs, vnfr.record())
	}
	return n.m.ConfigAgent.ApplyScalingConfig(ctx, request)
}

// configPrimitive returns the NS config primitive with the given name.
func (n *networkServiceRecord) configPrimitive(name string) *model.ConfigPrimitive {
	if name == "" {
		return nil
	}
	for _, primitive := range n.desc.ConfigPrimitives {
		if primitive.Name == name {
			return primitive
		}
	}
	n.log.Warnf("Config primitive %s is not defined by NSD %s", name, n.nsd.ID())
	return nil
}

// groupPools returns the pools referenced by the config primitives of the group.
func (n *networkServiceRecord) groupPools(group *scalingGroup) []string {
	var pools []string
	seen := make(map[string]struct{})
	for _, action := range group.desc.ScalingConfigActions {
		for _, primitive := range n.desc.ConfigPrimitives {
			if primitive.Name != action.NsConfigPrimitiveNameRef {
				continue
			}
			for _, param := range primitive.Parameters {
				if param.ParameterPool == "" {
					continue
				}
				if _, dup := seen[param.ParameterPool]; !dup {
					seen[param.ParameterPool] = struct{}{}
					pools = append(pools, param.ParameterPool)
				}
			}
		}
	}
	return pools
}

// allocatePoolValues takes one value from every pool used by the group.
func (n *networkServiceRecord) allocatePoolValues(group *scalingGroup, inst *scalingGroupInstance) error {
	for _, name := range n.groupPools(group) {
		pool, found := n.pools[name]
		if !found {
			n.releasePoolValues(inst)
			return &ParameterValueError{Pool: name, Msg: "pool is not declared by the NSD"}
		}
		value, err := pool.GetNextUnusedValue()
		if err == nil {
			err = pool.AddUsedValue(value)
		}
		if err != nil {
			n.releasePoolValues(inst)
			return errors.Wrapf(err, "scaling group %s", group.Name())
		}
		inst.poolValues = append(inst.poolValues, &model.PoolValue{Pool: name, Value: value})
	}
	return nil
}

// releasePoolValues returns the values of the instance in the reverse order.
func (n *networkServiceRecord) releasePoolValues(inst *scalingGroupInstance) {
	for i := len(inst.poolValues) - 1; i >= 0; i-- {
		value := inst.poolValues[i]
		if pool, found := n.pools[value.Pool]; found {
			if err := pool.RemoveUsedValue(value.Value); err != nil {
				n.log.Warn(err)
			}
		}
	}
	inst.poolValues = nil
}
