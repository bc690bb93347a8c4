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
	"github.com/juju/clock"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// defaultMaxEvents is the default capacity of the operational event ring.
const defaultMaxEvents = 10

// networkServiceStatus holds the operational state of an NSR together with
// a bounded log of the most recent operational events.
type networkServiceStatus struct {
	clock     clock.Clock
	state     model.NsrState
	maxEvents int
	events    []*model.OperationalEvent
	lastID    uint32
}

func newNetworkServiceStatus(clk clock.Clock, maxEvents int) *networkServiceStatus {
	if maxEvents <= 0 {
		maxEvents = defaultMaxEvents
	}
	return &networkServiceStatus{
		clock:     clk,
		state:     model.NsrState_INIT,
		maxEvents: maxEvents,
	}
}

// State returns the current operational state.
func (s *networkServiceStatus) State() model.NsrState {
	return s.state
}

// setState changes the state. FAILED is sticky and nothing leaves TERMINATED.
func (s *networkServiceStatus) setState(state model.NsrState) bool {
	if s.state == state || s.state == model.NsrState_TERMINATED {
		return false
	}
	if s.state == model.NsrState_FAILED && !isTerminationState(state) {
		return false
	}
	s.state = state
	return true
}

// recordEvent appends an event, dropping the oldest one when the ring is full.
func (s *networkServiceStatus) recordEvent(event, description string) {
	s.lastID++
	s.events = append(s.events, &model.OperationalEvent{
		Id:          s.lastID,
		Timestamp:   s.clock.Now().Unix(),
		Event:       event,
		Description: description,
	})
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
}

// Events returns a copy of the recorded events, oldest first.
func (s *networkServiceStatus) Events() []*model.OperationalEvent {
	events := make([]*model.OperationalEvent, 0, len(s.events))
	for _, ev := range s.events {
		evCopy := *ev
		events = append(events, &evCopy)
	}
	return events
}

// restore re-loads state and events from a previously published record.
func (s *networkServiceStatus) restore(nsr *model.Nsr) {
	s.state = nsr.OperationalStatus
	s.events = nil
	for _, ev := range nsr.OperationalEvents {
		evCopy := *ev
		s.events = append(s.events, &evCopy)
		if ev.Id > s.lastID {
			s.lastID = ev.Id
		}
	}
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
}

// isTerminationState returns true for the states of the termination sequence.
func isTerminationState(state model.NsrState) bool {
	switch state {
	case model.NsrState_TERMINATE_RCVD, model.NsrState_TERMINATE,
		model.NsrState_VNFFG_TERMINATE_PHASE, model.NsrState_VNF_TERMINATE_PHASE,
		model.NsrState_VL_TERMINATE_PHASE, model.NsrState_TERMINATED:
		return true
	}
	return false
}
