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

package model

import (
	"github.com/gogo/protobuf/proto"
)

// NsrState is the operational state of a network service record.
type NsrState int32

const (
	NsrState_INIT                  NsrState = 0
	NsrState_VL_INIT_PHASE         NsrState = 1
	NsrState_VNF_INIT_PHASE        NsrState = 2
	NsrState_VNFFG_INIT_PHASE      NsrState = 3
	NsrState_RUNNING               NsrState = 4
	NsrState_SCALING_OUT           NsrState = 5
	NsrState_SCALING_IN            NsrState = 6
	NsrState_TERMINATE_RCVD        NsrState = 7
	NsrState_TERMINATE             NsrState = 8
	NsrState_VNFFG_TERMINATE_PHASE NsrState = 9
	NsrState_VNF_TERMINATE_PHASE   NsrState = 10
	NsrState_VL_TERMINATE_PHASE    NsrState = 11
	NsrState_TERMINATED            NsrState = 12
	NsrState_FAILED                NsrState = 13
)

var NsrState_name = map[int32]string{
	0:  "INIT",
	1:  "VL_INIT_PHASE",
	2:  "VNF_INIT_PHASE",
	3:  "VNFFG_INIT_PHASE",
	4:  "RUNNING",
	5:  "SCALING_OUT",
	6:  "SCALING_IN",
	7:  "TERMINATE_RCVD",
	8:  "TERMINATE",
	9:  "VNFFG_TERMINATE_PHASE",
	10: "VNF_TERMINATE_PHASE",
	11: "VL_TERMINATE_PHASE",
	12: "TERMINATED",
	13: "FAILED",
}

var NsrState_value = map[string]int32{
	"INIT":                  0,
	"VL_INIT_PHASE":         1,
	"VNF_INIT_PHASE":        2,
	"VNFFG_INIT_PHASE":      3,
	"RUNNING":               4,
	"SCALING_OUT":           5,
	"SCALING_IN":            6,
	"TERMINATE_RCVD":        7,
	"TERMINATE":             8,
	"VNFFG_TERMINATE_PHASE": 9,
	"VNF_TERMINATE_PHASE":   10,
	"VL_TERMINATE_PHASE":    11,
	"TERMINATED":            12,
	"FAILED":                13,
}

func (x NsrState) String() string {
	return proto.EnumName(NsrState_name, int32(x))
}

// NsrConfigStatus aggregates configuration status of all VNFRs of an NSR.
type NsrConfigStatus int32

const (
	NsrConfigStatus_CONFIGURING       NsrConfigStatus = 0
	NsrConfigStatus_CONFIGURED        NsrConfigStatus = 1
	NsrConfigStatus_FAILED            NsrConfigStatus = 2
	NsrConfigStatus_CONFIG_NOT_NEEDED NsrConfigStatus = 3
)

var NsrConfigStatus_name = map[int32]string{
	0: "CONFIGURING",
	1: "CONFIGURED",
	2: "FAILED",
	3: "CONFIG_NOT_NEEDED",
}

var NsrConfigStatus_value = map[string]int32{
	"CONFIGURING":       0,
	"CONFIGURED":        1,
	"FAILED":            2,
	"CONFIG_NOT_NEEDED": 3,
}

func (x NsrConfigStatus) String() string {
	return proto.EnumName(NsrConfigStatus_name, int32(x))
}

// RecordStatus is the operational status of a VLR, VNFR or VNFFGR as reported
// by the component that realizes the record.
type RecordStatus int32

const (
	RecordStatus_INIT        RecordStatus = 0
	RecordStatus_RUNNING     RecordStatus = 1
	RecordStatus_FAILED      RecordStatus = 2
	RecordStatus_TERMINATING RecordStatus = 3
)

var RecordStatus_name = map[int32]string{
	0: "INIT",
	1: "RUNNING",
	2: "FAILED",
	3: "TERMINATING",
}

var RecordStatus_value = map[string]int32{
	"INIT":        0,
	"RUNNING":     1,
	"FAILED":      2,
	"TERMINATING": 3,
}

func (x RecordStatus) String() string {
	return proto.EnumName(RecordStatus_name, int32(x))
}

// VnfrConfigStatus is the configuration status of a single VNFR.
type VnfrConfigStatus int32

const (
	VnfrConfigStatus_INIT              VnfrConfigStatus = 0
	VnfrConfigStatus_CONFIGURING       VnfrConfigStatus = 1
	VnfrConfigStatus_CONFIG_NOT_NEEDED VnfrConfigStatus = 2
	VnfrConfigStatus_CONFIGURED        VnfrConfigStatus = 3
	VnfrConfigStatus_FAILED            VnfrConfigStatus = 4
)

var VnfrConfigStatus_name = map[int32]string{
	0: "INIT",
	1: "CONFIGURING",
	2: "CONFIG_NOT_NEEDED",
	3: "CONFIGURED",
	4: "FAILED",
}

var VnfrConfigStatus_value = map[string]int32{
	"INIT":              0,
	"CONFIGURING":       1,
	"CONFIG_NOT_NEEDED": 2,
	"CONFIGURED":        3,
	"FAILED":            4,
}

func (x VnfrConfigStatus) String() string {
	return proto.EnumName(VnfrConfigStatus_name, int32(x))
}

// ScalingInstanceStatus is the operational status of one scaling group instance.
type ScalingInstanceStatus int32

const (
	ScalingInstanceStatus_INIT                ScalingInstanceStatus = 0
	ScalingInstanceStatus_VNF_INIT_PHASE      ScalingInstanceStatus = 1
	ScalingInstanceStatus_RUNNING             ScalingInstanceStatus = 2
	ScalingInstanceStatus_TERMINATE           ScalingInstanceStatus = 3
	ScalingInstanceStatus_VNF_TERMINATE_PHASE ScalingInstanceStatus = 4
	ScalingInstanceStatus_TERMINATED          ScalingInstanceStatus = 5
	ScalingInstanceStatus_FAILED              ScalingInstanceStatus = 6
)

var ScalingInstanceStatus_name = map[int32]string{
	0: "INIT",
	1: "VNF_INIT_PHASE",
	2: "RUNNING",
	3: "TERMINATE",
	4: "VNF_TERMINATE_PHASE",
	5: "TERMINATED",
	6: "FAILED",
}

var ScalingInstanceStatus_value = map[string]int32{
	"INIT":                0,
	"VNF_INIT_PHASE":      1,
	"RUNNING":             2,
	"TERMINATE":           3,
	"VNF_TERMINATE_PHASE": 4,
	"TERMINATED":          5,
	"FAILED":              6,
}

func (x ScalingInstanceStatus) String() string {
	return proto.EnumName(ScalingInstanceStatus_name, int32(x))
}

// ScalingConfigStatus is the configuration status of one scaling group instance.
type ScalingConfigStatus int32

const (
	ScalingConfigStatus_CONFIGURING ScalingConfigStatus = 0
	ScalingConfigStatus_CONFIGURED  ScalingConfigStatus = 1
	ScalingConfigStatus_FAILED      ScalingConfigStatus = 2
)

var ScalingConfigStatus_name = map[int32]string{
	0: "CONFIGURING",
	1: "CONFIGURED",
	2: "FAILED",
}

var ScalingConfigStatus_value = map[string]int32{
	"CONFIGURING": 0,
	"CONFIGURED":  1,
	"FAILED":      2,
}

func (x ScalingConfigStatus) String() string {
	return proto.EnumName(ScalingConfigStatus_name, int32(x))
}

// ScalingTrigger identifies the point of a scaling operation at which
// a config primitive is executed.
type ScalingTrigger int32

const (
	ScalingTrigger_PRE_SCALE_OUT  ScalingTrigger = 0
	ScalingTrigger_POST_SCALE_OUT ScalingTrigger = 1
	ScalingTrigger_PRE_SCALE_IN   ScalingTrigger = 2
	ScalingTrigger_POST_SCALE_IN  ScalingTrigger = 3
)

var ScalingTrigger_name = map[int32]string{
	0: "PRE_SCALE_OUT",
	1: "POST_SCALE_OUT",
	2: "PRE_SCALE_IN",
	3: "POST_SCALE_IN",
}

var ScalingTrigger_value = map[string]int32{
	"PRE_SCALE_OUT":  0,
	"POST_SCALE_OUT": 1,
	"PRE_SCALE_IN":   2,
	"POST_SCALE_IN":  3,
}

func (x ScalingTrigger) String() string {
	return proto.EnumName(ScalingTrigger_name, int32(x))
}

// SfcRole is the role of a VNF in service function chaining.
type SfcRole int32

const (
	SfcRole_UNAWARE    SfcRole = 0
	SfcRole_CLASSIFIER SfcRole = 1
	SfcRole_SF         SfcRole = 2
	SfcRole_SFF        SfcRole = 3
)

var SfcRole_name = map[int32]string{
	0: "UNAWARE",
	1: "CLASSIFIER",
	2: "SF",
	3: "SFF",
}

var SfcRole_value = map[string]int32{
	"UNAWARE":    0,
	"CLASSIFIER": 1,
	"SF":         2,
	"SFF":        3,
}

func (x SfcRole) String() string {
	return proto.EnumName(SfcRole_name, int32(x))
}

func init() {
	proto.RegisterEnum("nfvo.NsrState", NsrState_name, NsrState_value)
	proto.RegisterEnum("nfvo.NsrConfigStatus", NsrConfigStatus_name, NsrConfigStatus_value)
	proto.RegisterEnum("nfvo.RecordStatus", RecordStatus_name, RecordStatus_value)
	proto.RegisterEnum("nfvo.VnfrConfigStatus", VnfrConfigStatus_name, VnfrConfigStatus_value)
	proto.RegisterEnum("nfvo.ScalingInstanceStatus", ScalingInstanceStatus_name, ScalingInstanceStatus_value)
	proto.RegisterEnum("nfvo.ScalingConfigStatus", ScalingConfigStatus_name, ScalingConfigStatus_value)
	proto.RegisterEnum("nfvo.ScalingTrigger", ScalingTrigger_name, ScalingTrigger_value)
	proto.RegisterEnum("nfvo.SfcRole", SfcRole_name, SfcRole_value)
}
