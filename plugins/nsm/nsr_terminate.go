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

	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// Terminate stops the instantiation task and tears the NSR down in the
// reverse order: VNFFGs, VNFs, VLs and finally the NS itself.
// Termination continues past failures, the first error is returned.
func (n *networkServiceRecord) Terminate(ctx context.Context) error {
	n.cancel()
	if n.status.State() == model.NsrState_TERMINATED {
		return nil
	}

	var firstErr error
	keep := func(err error) {
		if err != nil {
			n.log.Warnf("Termination of NSR %s: %v", n.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	n.transition(ctx, model.NsrState_TERMINATE_RCVD, "terminate-rcvd", "Terminate request received")
	n.transition(ctx, model.NsrState_TERMINATE, "terminate", "Terminating the network service")

	n.transition(ctx, model.NsrState_VNFFG_TERMINATE_PHASE, "vnffg-terminate-phase",
		"Terminating forwarding graphs")
	for _, vnffgr := range n.sortedVnffgrs() {
		keep(vnffgr.terminate(ctx))
	}

	n.transition(ctx, model.NsrState_VNF_TERMINATE_PHASE, "vnf-terminate-phase", "Terminating VNFs")
	for _, group := range n.sortedGroups() {
		for _, inst := range group.sortedInstances() {
			inst.opStatus = model.ScalingInstanceStatus_VNF_TERMINATE_PHASE
		}
	}
	vnfrs := n.instantiationOrder()
	for i := len(vnfrs) - 1; i >= 0; i-- {
		keep(vnfrs[i].terminate(ctx))
		n.removeVnfr(vnfrs[i])
	}
	for _, group := range n.sortedGroups() {
		for _, inst := range group.sortedInstances() {
			n.releasePoolValues(inst)
			inst.opStatus = model.ScalingInstanceStatus_TERMINATED
		}
	}

	n.transition(ctx, model.NsrState_VL_TERMINATE_PHASE, "vl-terminate-phase", "Terminating virtual links")
	for i := len(n.vlrs) - 1; i >= 0; i-- {
		keep(n.vlrs[i].terminate(ctx))
	}

	if err := n.plugin.TerminateNs(ctx, n.record()); err != nil {
		keep(&PluginError{Account: n.CloudAccount(), Err: err})
	}

	n.status.setState(model.NsrState_TERMINATED)
	n.status.recordEvent("terminated", "Network service terminated")
	n.log.Infof("NSR %s terminated", n.Name())
	if err := n.unpublish(ctx); err != nil {
		keep(errors.Wrapf(err, "failed to delete NSR %s", n.Name()))
	}
	return firstErr
}
