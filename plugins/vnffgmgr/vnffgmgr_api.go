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

package vnffgmgr

import (
	"context"

	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

var (
	// ErrUnknownSdnAccount is returned for operations with an SDN account
	// which was not added.
	ErrUnknownSdnAccount = errors.New("SDN account is not configured")

	// ErrUnknownSdnAccountType is returned by AddSdnAccount when there is no
	// renderer for the account type.
	ErrUnknownSdnAccountType = errors.New("no chain renderer for the SDN account type")

	// ErrChainNotFound is returned by FetchVnffgr for unknown forwarding graphs.
	ErrChainNotFound = errors.New("forwarding graph not found")
)

// API is the SDN side of network service instantiation: forwarding graphs
// steering traffic through chains of VNFs.
type API interface {
	// AddSdnAccount creates (or re-creates) the renderer of the SDN account.
	AddSdnAccount(account *model.SdnAccount) error

	// RemoveSdnAccount removes the renderer of the SDN account. Fails if
	// there are chains rendered under the account.
	RemoveSdnAccount(name string) error

	// CreateVnffgr renders the forwarding graph. The request carries RSPs with
	// hops resolved to VNFR connection points, sffs maps VNFR IDs to service
	// function forwarders (and classifiers) available to the graph.
	// Returns the completed record with path IDs assigned.
	CreateVnffgr(ctx context.Context, sdnAccount string, request *model.Vnffgr,
		classifiers []*model.VnffgrClassifier, sffs map[string]*model.Sff) (*model.Vnffgr, error)

	// FetchVnffgr returns the current state of the forwarding graph.
	FetchVnffgr(ctx context.Context, sdnAccount string, id string) (*model.Vnffgr, error)

	// TerminateVnffgr removes the forwarding graph. Terminating an unknown
	// graph is not an error.
	TerminateVnffgr(ctx context.Context, sdnAccount string, id string) error
}
