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
	"errors"
	"testing"

	"github.com/onsi/gomega"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

func TestInstantiateRunningOnlyWhenAllVnfrsActive(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	nsd := testNsd(true)
	env.setupCatalog(nsd)
	gomega.Expect(env.put(testNsrConfig(nsd.Id))).To(gomega.Succeed())
	env.waitDeployed(testNsrName)

	// 2 VLRs with assigned subnets
	vlrKeys := env.storedKeys(model.VlrKeyPrefix())
	gomega.Expect(vlrKeys).To(gomega.HaveLen(2))
	for _, key := range vlrKeys {
		vlr := env.stored(key).(*model.Vlr)
		gomega.Expect(vlr.AssignedSubnet).ToNot(gomega.BeEmpty())
		gomega.Expect(vlr.NsrIdRef).To(gomega.Equal(testNsrID))
		gomega.Expect([]string{"ns.mgmt", "ns.data"}).To(gomega.ContainElement(vlr.Name))
	}

	// 2 start-by-default VNFRs and 1 VNFR of the default scaling instance
	gomega.Expect(env.vnfrNames(testNsrID)).To(gomega.ConsistOf(
		"ns.ping.1", "ns.pong.2", "ns.sg.1.scaled.3"))
	gomega.Expect(env.storedKeys(model.VnfrKeyPrefix())).To(gomega.HaveLen(3))

	// VL -> VNF -> scaling instance -> deploy
	gomega.Expect(env.backend.Calls()).To(gomega.Equal([]string{
		"CreateNsr ns",
		"InstantiateNs ns",
		"InstantiateVl ns.mgmt",
		"InstantiateVl ns.data",
		"InstantiateVnf ns.ping.1",
		"InstantiateVnf ns.pong.2",
		"InstantiateVnf ns.sg.1.scaled.3",
		"Deploy ns",
	}))

	// connection points are bound to the VLRs
	for _, vnfr := range env.m.GetVnfrs(testNsrID) {
		if vnfr.Name == "ns.ping.1" {
			gomega.Expect(vnfr.ConnectionPoints).To(gomega.HaveLen(2))
			for _, cp := range vnfr.ConnectionPoints {
				gomega.Expect(cp.VlrRef).ToNot(gomega.BeEmpty())
			}
		}
	}

	gomega.Expect(env.state(testNsrID)).ToNot(gomega.Equal(model.NsrState_RUNNING))
	env.report(testNsrID, "ns.ping.1", model.RecordStatus_RUNNING)
	env.report(testNsrID, "ns.pong.2", model.RecordStatus_RUNNING)
	gomega.Expect(env.state(testNsrID)).ToNot(gomega.Equal(model.NsrState_RUNNING))
	env.report(testNsrID, "ns.sg.1.scaled.3", model.RecordStatus_RUNNING)
	gomega.Expect(env.state(testNsrID)).To(gomega.Equal(model.NsrState_RUNNING))

	// the published NSR follows
	stored := env.stored(model.NsrKey(testNsrID)).(*model.Nsr)
	gomega.Expect(stored.OperationalStatus).To(gomega.Equal(model.NsrState_RUNNING))
	gomega.Expect(stored.ConfigStatus).To(gomega.Equal(model.NsrConfigStatus_CONFIG_NOT_NEEDED))
	gomega.Expect(stored.ScalingGroupRecords).To(gomega.HaveLen(1))
	inst := stored.ScalingGroupRecords[0].Instances[0]
	gomega.Expect(inst.IsDefault).To(gomega.BeTrue())
	gomega.Expect(inst.OpStatus).To(gomega.Equal(model.ScalingInstanceStatus_RUNNING))
	gomega.Expect(inst.ConfigStatus).To(gomega.Equal(model.ScalingConfigStatus_CONFIGURED))
	gomega.Expect(inst.PoolValues).To(gomega.Equal([]*model.PoolValue{{Pool: "vlans", Value: 100}}))

	// pre-scale-out primitive got the pool value
	requests := env.agent.scalingRequests()
	gomega.Expect(requests).To(gomega.HaveLen(1))
	gomega.Expect(requests[0].Trigger).To(gomega.Equal(model.ScalingTrigger_PRE_SCALE_OUT))
	gomega.Expect(requests[0].Parameters).To(gomega.Equal(map[string]string{"vlan": "100", "mtu": "1500"}))

	gomega.Expect(env.events(testNsrID)).To(gomega.ContainElement("ns-running"))
}

func TestUpdateStateIdempotent(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	env.runNsr(testNsd(true))

	ctx := context.Background()
	env.withNsr(testNsrID, func(n *networkServiceRecord) {
		events := n.status.Events()
		n.UpdateState(ctx)
		n.UpdateState(ctx)
		gomega.Expect(n.State()).To(gomega.Equal(model.NsrState_RUNNING))
		gomega.Expect(n.status.Events()).To(gomega.Equal(events))
	})

	// repeated report of the same state changes nothing either
	events := env.events(testNsrID)
	env.report(testNsrID, "ns.ping.1", model.RecordStatus_RUNNING)
	gomega.Expect(env.events(testNsrID)).To(gomega.Equal(events))
}

func TestFailedVnfrFailsNsr(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	nsd := testNsd(false)
	env.setupCatalog(nsd)
	gomega.Expect(env.put(testNsrConfig(nsd.Id))).To(gomega.Succeed())
	env.waitDeployed(testNsrName)

	env.report(testNsrID, "ns.ping.1", model.RecordStatus_RUNNING)
	env.report(testNsrID, "ns.pong.2", model.RecordStatus_FAILED)
	gomega.Expect(env.state(testNsrID)).To(gomega.Equal(model.NsrState_FAILED))
	gomega.Expect(env.events(testNsrID)).To(gomega.ContainElement("ns-failed"))

	// FAILED is sticky
	env.withNsr(testNsrID, func(n *networkServiceRecord) {
		n.UpdateState(context.Background())
		gomega.Expect(n.State()).To(gomega.Equal(model.NsrState_FAILED))
	})
}

func TestBackendFailureFailsNsr(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	env.backend.InjectError("InstantiateVnf", errors.New("no capacity"))
	nsd := testNsd(false)
	env.setupCatalog(nsd)
	gomega.Expect(env.put(testNsrConfig(nsd.Id))).To(gomega.Succeed())

	gomega.Eventually(func() model.NsrState { return env.state(testNsrID) }, waitTimeout).
		Should(gomega.Equal(model.NsrState_FAILED))
	gomega.Expect(env.events(testNsrID)).To(gomega.ContainElement("instantiation-failed"))
	gomega.Expect(env.backend.Calls()).ToNot(gomega.ContainElement("Deploy ns"))
}

func TestScaleOutFailureKeepsNsrRunning(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	nsd := testNsd(true)
	env.runNsr(nsd)

	env.backend.InjectError("InstantiateVnf", errors.New("no capacity"))
	gomega.Expect(env.put(testNsrConfig(nsd.Id, 2))).To(gomega.Succeed())

	gomega.Expect(env.state(testNsrID)).To(gomega.Equal(model.NsrState_RUNNING))
	nsr, _ := env.m.GetNsr(testNsrID)
	instances := nsr.ScalingGroupRecords[0].Instances
	gomega.Expect(instances).To(gomega.HaveLen(2))
	gomega.Expect(instances[1].InstanceId).To(gomega.BeEquivalentTo(2))
	gomega.Expect(instances[1].OpStatus).To(gomega.Equal(model.ScalingInstanceStatus_FAILED))
	gomega.Expect(instances[1].ConfigStatus).To(gomega.Equal(model.ScalingConfigStatus_FAILED))
	gomega.Expect(instances[1].PoolValues).To(gomega.Equal([]*model.PoolValue{{Pool: "vlans", Value: 101}}))
	gomega.Expect(env.events(testNsrID)).To(gomega.ContainElement("scaling-instance-failed"))
}

func TestScaleOutAndScaleIn(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	nsd := testNsd(true)
	env.runNsr(nsd)

	// scale-out
	gomega.Expect(env.put(testNsrConfig(nsd.Id, 2))).To(gomega.Succeed())
	gomega.Expect(env.state(testNsrID)).To(gomega.Equal(model.NsrState_SCALING_OUT))
	gomega.Expect(env.vnfrNames(testNsrID)).To(gomega.ContainElement("ns.sg.2.scaled.3"))
	env.report(testNsrID, "ns.sg.2.scaled.3", model.RecordStatus_RUNNING)
	gomega.Expect(env.state(testNsrID)).To(gomega.Equal(model.NsrState_RUNNING))
	gomega.Expect(env.events(testNsrID)).To(gomega.ContainElement("scale-out-done"))

	// maximum reached
	err := env.put(testNsrConfig(nsd.Id, 2, 3))
	gomega.Expect(err).To(gomega.HaveOccurred())
	gomega.Expect(err.Error()).To(gomega.ContainSubstring("maximum instance count"))

	// scale-in
	gomega.Expect(env.put(testNsrConfig(nsd.Id))).To(gomega.Succeed())
	gomega.Expect(env.state(testNsrID)).To(gomega.Equal(model.NsrState_RUNNING))
	gomega.Expect(env.vnfrNames(testNsrID)).ToNot(gomega.ContainElement("ns.sg.2.scaled.3"))
	gomega.Expect(env.storedKeys(model.VnfrKeyPrefix())).To(gomega.HaveLen(3))
	gomega.Expect(env.events(testNsrID)).To(gomega.ContainElement("scale-in-done"))
	gomega.Expect(env.backend.Calls()).To(gomega.ContainElement("TerminateVnf ns.sg.2.scaled.3"))

	requests := env.agent.scalingRequests()
	last := requests[len(requests)-1]
	gomega.Expect(last.Trigger).To(gomega.Equal(model.ScalingTrigger_POST_SCALE_IN))
	gomega.Expect(last.Parameters).To(gomega.HaveKeyWithValue("vlan", "101"))

	// the released value is allocated again
	gomega.Expect(env.put(testNsrConfig(nsd.Id, 5))).To(gomega.Succeed())
	nsr, _ := env.m.GetNsr(testNsrID)
	inst := nsr.ScalingGroupRecords[0].Instances[1]
	gomega.Expect(inst.InstanceId).To(gomega.BeEquivalentTo(5))
	gomega.Expect(inst.PoolValues).To(gomega.Equal([]*model.PoolValue{{Pool: "vlans", Value: 101}}))
}

func TestTerminateInReverseOrder(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	nsd := testNsd(true)
	env.runNsr(nsd)

	callsBefore := len(env.backend.Calls())
	gomega.Expect(env.apply(nil, model.NsrConfigKey(testNsrID))).To(gomega.Succeed())

	gomega.Expect(env.backend.Calls()[callsBefore:]).To(gomega.Equal([]string{
		"TerminateVnf ns.sg.1.scaled.3",
		"TerminateVnf ns.pong.2",
		"TerminateVnf ns.ping.1",
		"TerminateVl ns.data",
		"TerminateVl ns.mgmt",
		"TerminateNs ns",
	}))
	_, found := env.m.GetNsr(testNsrID)
	gomega.Expect(found).To(gomega.BeFalse())
	gomega.Expect(env.storedKeys(model.OpdataPrefix)).To(gomega.BeEmpty())

	// the NSD is no longer referenced
	gomega.Expect(env.apply(nil, model.NsdKey(nsd.Id))).To(gomega.Succeed())
	gomega.Expect(env.m.GetNsds()).To(gomega.BeEmpty())
}

func TestTerminateDuringInstantiation(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	nsd := testNsd(false)
	nsd.Vnffgds = []*model.Vnffgd{testVnffgd()}
	env.setupCatalog(nsd)
	gomega.Expect(env.put(testNsrConfig(nsd.Id))).To(gomega.Succeed())

	// the task waits for the hops of the forwarding graph
	gomega.Eventually(func() model.NsrState { return env.state(testNsrID) }, waitTimeout).
		Should(gomega.Equal(model.NsrState_VNFFG_INIT_PHASE))
	gomega.Expect(env.apply(nil, model.NsrConfigKey(testNsrID))).To(gomega.Succeed())

	gomega.Expect(env.vnffg.Requests()).To(gomega.BeEmpty())
	gomega.Consistently(env.backend.Calls, "100ms").ShouldNot(gomega.ContainElement("Deploy ns"))
	gomega.Expect(env.storedKeys(model.OpdataPrefix)).To(gomega.BeEmpty())
}
