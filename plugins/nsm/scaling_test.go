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
	"testing"

	"github.com/onsi/gomega"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

func testScalingGroup(min, max uint32, instances ...uint32) *scalingGroup {
	group := newScalingGroup(testNsd(true).ScalingGroupDescriptors[0])
	group.desc.MinInstanceCount = min
	group.desc.MaxInstanceCount = max
	for _, id := range instances {
		group.instances[id] = &scalingGroupInstance{group: group, id: id,
			opStatus: model.ScalingInstanceStatus_RUNNING}
	}
	return group
}

func TestScalingGroupState(t *testing.T) {
	gomega.RegisterTestingT(t)
	group := testScalingGroup(0, 0)
	gomega.Expect(group.State()).To(gomega.Equal(model.NsrState_RUNNING))

	group = testScalingGroup(0, 0, 1, 2)
	gomega.Expect(group.State()).To(gomega.Equal(model.NsrState_RUNNING))

	group.instances[2].opStatus = model.ScalingInstanceStatus_VNF_TERMINATE_PHASE
	gomega.Expect(group.State()).To(gomega.Equal(model.NsrState_SCALING_IN))

	// scale-out takes precedence
	group.instances[1].opStatus = model.ScalingInstanceStatus_VNF_INIT_PHASE
	gomega.Expect(group.State()).To(gomega.Equal(model.NsrState_SCALING_OUT))

	// a failed instance does not block the group
	group.instances[1].opStatus = model.ScalingInstanceStatus_FAILED
	group.instances[2].opStatus = model.ScalingInstanceStatus_RUNNING
	gomega.Expect(group.State()).To(gomega.Equal(model.NsrState_RUNNING))
}

func TestScalingGroupLimits(t *testing.T) {
	gomega.RegisterTestingT(t)
	group := testScalingGroup(1, 2, 1)
	gomega.Expect(group.checkScaleOut("nsr")).To(gomega.Succeed())
	err := group.checkScaleIn("nsr")
	gomega.Expect(err).To(gomega.MatchError("NSR nsr: scaling group sg: minimum instance count (1) reached"))

	group = testScalingGroup(1, 2, 1, 2)
	gomega.Expect(group.checkScaleIn("nsr")).To(gomega.Succeed())
	err = group.checkScaleOut("nsr")
	gomega.Expect(err).To(gomega.BeAssignableToTypeOf(&ScalingOperationError{}))
	gomega.Expect(err.Error()).To(gomega.ContainSubstring("maximum instance count (2)"))

	// zero max means unlimited
	group = testScalingGroup(0, 0, 1, 2, 3, 4)
	gomega.Expect(group.checkScaleOut("nsr")).To(gomega.Succeed())
}

func TestNextInstanceID(t *testing.T) {
	gomega.RegisterTestingT(t)
	gomega.Expect(testScalingGroup(0, 0).nextInstanceID()).To(gomega.BeEquivalentTo(1))
	gomega.Expect(testScalingGroup(0, 0, 1, 2).nextInstanceID()).To(gomega.BeEquivalentTo(3))
	gomega.Expect(testScalingGroup(0, 0, 1, 3).nextInstanceID()).To(gomega.BeEquivalentTo(2))
}

func TestScalingGroupRecord(t *testing.T) {
	gomega.RegisterTestingT(t)
	group := testScalingGroup(0, 0, 3, 1)
	group.instances[1].isDefault = true
	group.instances[3].poolValues = []*model.PoolValue{{Pool: "vlans", Value: 100}}

	gomega.Expect(group.configPrimitive(model.ScalingTrigger_PRE_SCALE_OUT)).To(gomega.Equal("assign-vlan"))
	gomega.Expect(group.configPrimitive(model.ScalingTrigger_POST_SCALE_OUT)).To(gomega.BeEmpty())

	record := group.record()
	gomega.Expect(record.ScalingGroupNameRef).To(gomega.Equal("sg"))
	gomega.Expect(record.Instances).To(gomega.HaveLen(2))
	gomega.Expect(record.Instances[0].InstanceId).To(gomega.BeEquivalentTo(1))
	gomega.Expect(record.Instances[0].IsDefault).To(gomega.BeTrue())
	gomega.Expect(record.Instances[1].PoolValues).To(gomega.HaveLen(1))
	gomega.Expect(record.Instances[1].PoolValues[0].Value).To(gomega.BeEquivalentTo(100))
}
