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
	"github.com/contiv/nfvo/plugins/nsm/model"
)

// recordState is the lifecycle state shared by VLRs, VNFRs and VNFFGRs.
type recordState int

const (
	stateInit recordState = iota
	stateInstantiationPending
	stateActive
	stateTerminatePending
	stateTerminated
	stateFailed
)

var recordStateNames = map[recordState]string{
	stateInit:                 "INIT",
	stateInstantiationPending: "INSTANTIATION_PENDING",
	stateActive:               "ACTIVE",
	stateTerminatePending:     "TERMINATE_PENDING",
	stateTerminated:           "TERMINATED",
	stateFailed:               "FAILED",
}

// String returns the state name.
func (s recordState) String() string {
	if name, ok := recordStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// recordStatus maps the state to the published operational status.
func (s recordState) recordStatus() model.RecordStatus {
	switch s {
	case stateActive:
		return model.RecordStatus_RUNNING
	case stateTerminatePending, stateTerminated:
		return model.RecordStatus_TERMINATING
	case stateFailed:
		return model.RecordStatus_FAILED
	}
	return model.RecordStatus_INIT
}

// recordStateFromStatus is used to restore records found in the data store.
func recordStateFromStatus(status model.RecordStatus) recordState {
	switch status {
	case model.RecordStatus_RUNNING:
		return stateActive
	case model.RecordStatus_FAILED:
		return stateFailed
	case model.RecordStatus_TERMINATING:
		return stateTerminatePending
	}
	return stateInstantiationPending
}
