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
	"sort"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// scalingGroup is the runtime counterpart of a scaling group descriptor.
type scalingGroup struct {
	desc      *model.ScalingGroupDescriptor
	instances map[uint32]*scalingGroupInstance
}

// scalingGroupInstance is one set of VNFRs added to the NSR by a scale-out.
type scalingGroupInstance struct {
	group        *scalingGroup
	id           uint32
	isDefault    bool
	opStatus     model.ScalingInstanceStatus
	configStatus model.ScalingConfigStatus
	vnfrs        []*virtualNetworkFunctionRecord
	poolValues   []*model.PoolValue
	createTime   int64
}

func newScalingGroup(desc *model.ScalingGroupDescriptor) *scalingGroup {
	return &scalingGroup{
		desc:      desc,
		instances: make(map[uint32]*scalingGroupInstance),
	}
}

// Name returns the group name.
func (g *scalingGroup) Name() string {
	return g.desc.Name
}

// State derives the group state from the instances.
func (g *scalingGroup) State() model.NsrState {
	state := model.NsrState_RUNNING
	for _, inst := range g.instances {
		switch inst.opStatus {
		case model.ScalingInstanceStatus_INIT, model.ScalingInstanceStatus_VNF_INIT_PHASE:
			return model.NsrState_SCALING_OUT
		case model.ScalingInstanceStatus_TERMINATE, model.ScalingInstanceStatus_VNF_TERMINATE_PHASE:
			state = model.NsrState_SCALING_IN
		}
	}
	return state
}

// instanceCount returns the number of instances of the group.
func (g *scalingGroup) instanceCount() int {
	return len(g.instances)
}

// checkScaleOut verifies that one more instance fits into the group.
func (g *scalingGroup) checkScaleOut(nsr string) error {
	if max := g.desc.MaxInstanceCount; max > 0 && uint32(g.instanceCount()) >= max {
		return newScalingError(nsr, g.Name(), "maximum instance count (%d) reached", max)
	}
	return nil
}

// checkScaleIn verifies that an instance can be removed from the group.
func (g *scalingGroup) checkScaleIn(nsr string) error {
	if uint32(g.instanceCount()) <= g.desc.MinInstanceCount {
		return newScalingError(nsr, g.Name(), "minimum instance count (%d) reached",
			g.desc.MinInstanceCount)
	}
	return nil
}

// nextInstanceID returns the lowest unused instance ID.
func (g *scalingGroup) nextInstanceID() uint32 {
	id := uint32(1)
	for {
		if _, used := g.instances[id]; !used {
			return id
		}
		id++
	}
}

// configPrimitive returns the name of the NS config primitive bound to the trigger.
func (g *scalingGroup) configPrimitive(trigger model.ScalingTrigger) string {
	for _, action := range g.desc.ScalingConfigActions {
		if action.Trigger == trigger {
			return action.NsConfigPrimitiveNameRef
		}
	}
	return ""
}

// sortedInstances returns instances ordered by ID.
func (g *scalingGroup) sortedInstances() []*scalingGroupInstance {
	var instances []*scalingGroupInstance
	for _, inst := range g.instances {
		instances = append(instances, inst)
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].id < instances[j].id })
	return instances
}

// record returns the published state of the group.
func (g *scalingGroup) record() *model.ScalingGroupRecord {
	record := &model.ScalingGroupRecord{ScalingGroupNameRef: g.Name()}
	for _, inst := range g.sortedInstances() {
		record.Instances = append(record.Instances, inst.record())
	}
	return record
}

func (i *scalingGroupInstance) record() *model.ScalingInstanceRecord {
	record := &model.ScalingInstanceRecord{
		InstanceId:   i.id,
		IsDefault:    i.isDefault,
		OpStatus:     i.opStatus,
		ConfigStatus: i.configStatus,
		CreateTime:   i.createTime,
	}
	for _, vnfr := range i.vnfrs {
		record.VnfrRefs = append(record.VnfrRefs, vnfr.id)
	}
	for _, value := range i.poolValues {
		valueCopy := *value
		record.PoolValues = append(record.PoolValues, &valueCopy)
	}
	return record
}

// vnfrsActive returns true if all owned VNFRs are running.
func (i *scalingGroupInstance) vnfrsActive() bool {
	for _, vnfr := range i.vnfrs {
		if vnfr.state != stateActive {
			return false
		}
	}
	return true
}

// failedVnfr returns the first failed VNFR of the instance.
func (i *scalingGroupInstance) failedVnfr() *virtualNetworkFunctionRecord {
	for _, vnfr := range i.vnfrs {
		if vnfr.state == stateFailed {
			return vnfr
		}
	}
	return nil
}
