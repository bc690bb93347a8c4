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
	"github.com/gogo/protobuf/proto"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// networkServiceDescriptor is an NSD in the catalog. Every NSR instantiated
// from the descriptor holds one reference; a referenced descriptor cannot
// be changed or deleted.
type networkServiceDescriptor struct {
	nsd      *model.Nsd
	refCount int
}

func newNetworkServiceDescriptor(nsd *model.Nsd) *networkServiceDescriptor {
	return &networkServiceDescriptor{nsd: proto.Clone(nsd).(*model.Nsd)}
}

// ID returns the descriptor ID.
func (d *networkServiceDescriptor) ID() string {
	return d.nsd.Id
}

// Name returns the descriptor name.
func (d *networkServiceDescriptor) Name() string {
	return d.nsd.Name
}

// Descriptor returns a copy of the descriptor.
func (d *networkServiceDescriptor) Descriptor() *model.Nsd {
	return proto.Clone(d.nsd).(*model.Nsd)
}

// Ref takes a reference.
func (d *networkServiceDescriptor) Ref() {
	d.refCount++
}

// Unref releases a reference.
func (d *networkServiceDescriptor) Unref() error {
	if d.refCount == 0 {
		return newNsdError(d.ID(), "unref of an unreferenced descriptor")
	}
	d.refCount--
	return nil
}

// InUse returns true if there are NSRs referencing the descriptor.
func (d *networkServiceDescriptor) InUse() bool {
	return d.refCount > 0
}

// update replaces the descriptor content.
func (d *networkServiceDescriptor) update(nsd *model.Nsd) error {
	if d.InUse() {
		return newNsdError(d.ID(), "cannot update descriptor in use (ref count exists)")
	}
	d.nsd = proto.Clone(nsd).(*model.Nsd)
	return nil
}

// constituentVnfd returns the constituent VNF with the given member index.
func (d *networkServiceDescriptor) constituentVnfd(memberIndex uint32) *model.ConstituentVnfd {
	return findConstituentVnfd(d.nsd, memberIndex)
}

func findConstituentVnfd(nsd *model.Nsd, memberIndex uint32) *model.ConstituentVnfd {
	for _, cv := range nsd.ConstituentVnfds {
		if cv.MemberVnfIndex == memberIndex {
			return cv
		}
	}
	return nil
}

// referencedVnfds returns IDs of all VNFDs referenced by the NSD.
func referencedVnfds(nsd *model.Nsd) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, cv := range nsd.ConstituentVnfds {
		if _, dup := seen[cv.VnfdIdRef]; !dup {
			seen[cv.VnfdIdRef] = struct{}{}
			ids = append(ids, cv.VnfdIdRef)
		}
	}
	return ids
}
