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
	"fmt"
)

// pathIDPool allocates service path identifiers from the range [minID, maxID].
// The pool is not thread-safe.
type pathIDPool struct {
	minID, maxID uint32

	reservedIDs  map[uint32]bool
	allocatedIDs map[uint32]string // id to label map
	labels       map[string]uint32 // label to id map
}

func newPathIDPool(minID, maxID uint32, reserved ...uint32) (*pathIDPool, error) {
	if minID == 0 || maxID < minID {
		return nil, fmt.Errorf("invalid range of path IDs: <%d, %d>", minID, maxID)
	}
	pool := &pathIDPool{
		minID:        minID,
		maxID:        maxID,
		reservedIDs:  make(map[uint32]bool),
		allocatedIDs: make(map[uint32]string),
		labels:       make(map[string]uint32),
	}
	for _, id := range reserved {
		pool.reservedIDs[id] = true
	}
	return pool, nil
}

// getOrAllocateID returns ID allocated for the label. If the ID was not
// allocated yet, allocates the lowest available ID.
func (p *pathIDPool) getOrAllocateID(label string) (uint32, error) {
	if id, allocated := p.labels[label]; allocated {
		return id, nil
	}
	for id := p.minID; id <= p.maxID && id >= p.minID; id++ {
		if p.reservedIDs[id] {
			continue
		}
		if _, used := p.allocatedIDs[id]; !used {
			p.allocatedIDs[id] = label
			p.labels[label] = id
			return id, nil
		}
	}
	return 0, fmt.Errorf("no more path IDs left in the range <%d, %d>", p.minID, p.maxID)
}

// reserveID marks the ID as allocated for the label (used to restore allocations).
func (p *pathIDPool) reserveID(label string, id uint32) error {
	if id < p.minID || id > p.maxID || p.reservedIDs[id] {
		return fmt.Errorf("path ID %d is not available for allocation", id)
	}
	if owner, used := p.allocatedIDs[id]; used && owner != label {
		return fmt.Errorf("path ID %d is already allocated for %s", id, owner)
	}
	if prevID, allocated := p.labels[label]; allocated && prevID != id {
		delete(p.allocatedIDs, prevID)
	}
	p.allocatedIDs[id] = label
	p.labels[label] = id
	return nil
}

// releaseID releases the ID allocated for the label.
// NOOP if the allocation does not exist.
func (p *pathIDPool) releaseID(label string) {
	id, allocated := p.labels[label]
	if !allocated {
		return
	}
	delete(p.labels, label)
	delete(p.allocatedIDs, id)
}
