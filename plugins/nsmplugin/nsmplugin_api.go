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

package nsmplugin

import (
	"context"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// API is implemented by NSM backends, i.e. the VIM side of network service
// instantiation. One instance serves one cloud account.
//
// The records passed to the backend are snapshots, the backend must not
// keep references to them. Operational state of VNFs is reported back
// asynchronously by updating the VNFR in the data store.
type API interface {
	// CreateNsr is called once the NSR is constructed, before any of its
	// child records exist.
	CreateNsr(cfg *model.NsrConfig, nsd *model.Nsd) error

	// Deploy is called when all the constituent records have been instantiated.
	Deploy(ctx context.Context, nsr *model.Nsr) error

	// InstantiateNs is called when the instantiation of the NSR starts.
	InstantiateNs(ctx context.Context, nsr *model.Nsr) error

	// InstantiateVl prepares the virtual link. The VLR itself is completed
	// by the responder of the VLR key prefix.
	InstantiateVl(ctx context.Context, nsr *model.Nsr, vlr *model.Vlr) error

	// InstantiateVnf starts the VNF of the already published VNFR.
	InstantiateVnf(ctx context.Context, nsr *model.Nsr, vnfr *model.Vnfr) error

	// TerminateNs releases everything the backend holds for the NSR.
	TerminateNs(ctx context.Context, nsr *model.Nsr) error

	// TerminateVnf stops the VNF.
	TerminateVnf(ctx context.Context, nsr *model.Nsr, vnfr *model.Vnfr) error

	// TerminateVl releases the virtual link.
	TerminateVl(ctx context.Context, nsr *model.Nsr, vlr *model.Vlr) error
}

// Factory creates a backend instance for the cloud account.
type Factory func(account *model.CloudAccount) (API, error)
