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

package local

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// backend serves one cloud account of the local type.
type backend struct {
	plugin  *Plugin
	account string
	log     logging.Logger
}

// CreateNsr checks that the descriptor can be realized locally.
func (b *backend) CreateNsr(cfg *model.NsrConfig, nsd *model.Nsd) error {
	if nsd == nil {
		return errors.Errorf("NSR %s: missing descriptor", cfg.Name)
	}
	b.log.Infof("Creating NSR %s (NSD %s) in account %s", cfg.Name, nsd.Name, b.account)
	return nil
}

// Deploy is a no-op, local VNFs are started individually.
func (b *backend) Deploy(ctx context.Context, nsr *model.Nsr) error {
	b.log.Infof("NSR %s deployed", nsr.Name)
	return nil
}

// InstantiateNs logs the start of instantiation.
func (b *backend) InstantiateNs(ctx context.Context, nsr *model.Nsr) error {
	b.log.Debugf("Instantiating NSR %s", nsr.Name)
	return nil
}

// InstantiateVl verifies that the responder assigned a subnet to the VLR.
func (b *backend) InstantiateVl(ctx context.Context, nsr *model.Nsr, vlr *model.Vlr) error {
	if vlr.AssignedSubnet == "" {
		return errors.Errorf("VLR %s has no subnet assigned", vlr.Name)
	}
	b.log.Debugf("VLR %s of NSR %s uses subnet %s", vlr.Name, nsr.Name, vlr.AssignedSubnet)
	return nil
}

// InstantiateVnf starts the VNF boot.
func (b *backend) InstantiateVnf(ctx context.Context, nsr *model.Nsr, vnfr *model.Vnfr) error {
	b.log.Infof("Starting VNF %s of NSR %s", vnfr.Name, nsr.Name)
	return b.plugin.startVnf(vnfr)
}

// TerminateNs releases whatever is left allocated for the NSR.
func (b *backend) TerminateNs(ctx context.Context, nsr *model.Nsr) error {
	vnfs, vls := b.plugin.releaseNs(nsr.Id)
	if vnfs > 0 || vls > 0 {
		b.log.Warnf("NSR %s terminated with %d VNFs and %d virtual links still allocated",
			nsr.Name, vnfs, vls)
	}
	b.log.Infof("NSR %s terminated", nsr.Name)
	return nil
}

// TerminateVnf stops the VNF and releases its addresses.
func (b *backend) TerminateVnf(ctx context.Context, nsr *model.Nsr, vnfr *model.Vnfr) error {
	if !b.plugin.stopVnf(vnfr.Id) {
		b.log.Debugf("VNF %s was not started", vnfr.Name)
	}
	return nil
}

// TerminateVl releases the subnet of the virtual link.
func (b *backend) TerminateVl(ctx context.Context, nsr *model.Nsr, vlr *model.Vlr) error {
	b.plugin.releaseVl(vlr.Id)
	return nil
}
