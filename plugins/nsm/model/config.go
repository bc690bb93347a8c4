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

// NsrConfig is the operator intent to run one instance of an NSD.
type NsrConfig struct {
	Id              string                `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name            string                `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Description     string                `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	NsdRef          string                `protobuf:"bytes,4,opt,name=nsd_ref,json=nsdRef,proto3" json:"nsd_ref,omitempty"`
	CloudAccount    string                `protobuf:"bytes,5,opt,name=cloud_account,json=cloudAccount,proto3" json:"cloud_account,omitempty"`
	InputParameters []*InputParameter     `protobuf:"bytes,6,rep,name=input_parameters,json=inputParameters,proto3" json:"input_parameters,omitempty"`
	ScalingGroups   []*ScalingGroupConfig `protobuf:"bytes,7,rep,name=scaling_groups,json=scalingGroups,proto3" json:"scaling_groups,omitempty"`
}

func (m *NsrConfig) Reset()         { *m = NsrConfig{} }
func (m *NsrConfig) String() string { return proto.CompactTextString(m) }
func (*NsrConfig) ProtoMessage()    {}

// GetName returns the NS instance name.
func (m *NsrConfig) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

// InputParameter overrides a descriptor field addressed by Xpath.
type InputParameter struct {
	Xpath string `protobuf:"bytes,1,opt,name=xpath,proto3" json:"xpath,omitempty"`
	Value string `protobuf:"bytes,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *InputParameter) Reset()         { *m = InputParameter{} }
func (m *InputParameter) String() string { return proto.CompactTextString(m) }
func (*InputParameter) ProtoMessage()    {}

// ScalingGroupConfig lists explicitly requested (non-default) instances of a scaling group.
type ScalingGroupConfig struct {
	ScalingGroupNameRef string                   `protobuf:"bytes,1,opt,name=scaling_group_name_ref,json=scalingGroupNameRef,proto3" json:"scaling_group_name_ref,omitempty"`
	Instances           []*ScalingInstanceConfig `protobuf:"bytes,2,rep,name=instances,proto3" json:"instances,omitempty"`
}

func (m *ScalingGroupConfig) Reset()         { *m = ScalingGroupConfig{} }
func (m *ScalingGroupConfig) String() string { return proto.CompactTextString(m) }
func (*ScalingGroupConfig) ProtoMessage()    {}

// ScalingInstanceConfig identifies one requested scaling group instance.
type ScalingInstanceConfig struct {
	Id uint32 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
}

func (m *ScalingInstanceConfig) Reset()         { *m = ScalingInstanceConfig{} }
func (m *ScalingInstanceConfig) String() string { return proto.CompactTextString(m) }
func (*ScalingInstanceConfig) ProtoMessage()    {}

// CloudAccount selects the NSM plugin (by AccountType) used to realize NSRs.
type CloudAccount struct {
	Name        string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	AccountType string `protobuf:"bytes,2,opt,name=account_type,json=accountType,proto3" json:"account_type,omitempty"`
	SdnAccount  string `protobuf:"bytes,3,opt,name=sdn_account,json=sdnAccount,proto3" json:"sdn_account,omitempty"`
}

func (m *CloudAccount) Reset()         { *m = CloudAccount{} }
func (m *CloudAccount) String() string { return proto.CompactTextString(m) }
func (*CloudAccount) ProtoMessage()    {}

// GetName returns the account name.
func (m *CloudAccount) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

// SdnAccount selects the forwarding graph renderer (by AccountType).
type SdnAccount struct {
	Name        string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	AccountType string `protobuf:"bytes,2,opt,name=account_type,json=accountType,proto3" json:"account_type,omitempty"`
}

func (m *SdnAccount) Reset()         { *m = SdnAccount{} }
func (m *SdnAccount) String() string { return proto.CompactTextString(m) }
func (*SdnAccount) ProtoMessage()    {}

// GetName returns the account name.
func (m *SdnAccount) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

func init() {
	proto.RegisterType((*NsrConfig)(nil), "nfvo.NsrConfig")
	proto.RegisterType((*InputParameter)(nil), "nfvo.InputParameter")
	proto.RegisterType((*ScalingGroupConfig)(nil), "nfvo.ScalingGroupConfig")
	proto.RegisterType((*ScalingInstanceConfig)(nil), "nfvo.ScalingInstanceConfig")
	proto.RegisterType((*CloudAccount)(nil), "nfvo.CloudAccount")
	proto.RegisterType((*SdnAccount)(nil), "nfvo.SdnAccount")
}
