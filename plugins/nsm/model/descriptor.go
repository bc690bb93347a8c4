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

// Nsd is a network service descriptor, the template of a network service.
type Nsd struct {
	Id                      string                    `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name                    string                    `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Description             string                    `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	Vendor                  string                    `protobuf:"bytes,4,opt,name=vendor,proto3" json:"vendor,omitempty"`
	Version                 string                    `protobuf:"bytes,5,opt,name=version,proto3" json:"version,omitempty"`
	ConstituentVnfds        []*ConstituentVnfd        `protobuf:"bytes,6,rep,name=constituent_vnfds,json=constituentVnfds,proto3" json:"constituent_vnfds,omitempty"`
	Vlds                    []*Vld                    `protobuf:"bytes,7,rep,name=vlds,proto3" json:"vlds,omitempty"`
	Vnffgds                 []*Vnffgd                 `protobuf:"bytes,8,rep,name=vnffgds,proto3" json:"vnffgds,omitempty"`
	ScalingGroupDescriptors []*ScalingGroupDescriptor `protobuf:"bytes,9,rep,name=scaling_group_descriptors,json=scalingGroupDescriptors,proto3" json:"scaling_group_descriptors,omitempty"`
	ParameterPools          []*ParameterPool          `protobuf:"bytes,10,rep,name=parameter_pools,json=parameterPools,proto3" json:"parameter_pools,omitempty"`
	InputParameterXpaths    []*InputParameterXpath    `protobuf:"bytes,11,rep,name=input_parameter_xpaths,json=inputParameterXpaths,proto3" json:"input_parameter_xpaths,omitempty"`
	ConfigPrimitives        []*ConfigPrimitive        `protobuf:"bytes,12,rep,name=config_primitives,json=configPrimitives,proto3" json:"config_primitives,omitempty"`
}

func (m *Nsd) Reset()         { *m = Nsd{} }
func (m *Nsd) String() string { return proto.CompactTextString(m) }
func (*Nsd) ProtoMessage()    {}

// GetName returns the descriptor name.
func (m *Nsd) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

// ConstituentVnfd references a VNFD that is a member of the network service.
type ConstituentVnfd struct {
	MemberVnfIndex uint32 `protobuf:"varint,1,opt,name=member_vnf_index,json=memberVnfIndex,proto3" json:"member_vnf_index,omitempty"`
	VnfdIdRef      string `protobuf:"bytes,2,opt,name=vnfd_id_ref,json=vnfdIdRef,proto3" json:"vnfd_id_ref,omitempty"`
	StartByDefault bool   `protobuf:"varint,3,opt,name=start_by_default,json=startByDefault,proto3" json:"start_by_default,omitempty"`
}

func (m *ConstituentVnfd) Reset()         { *m = ConstituentVnfd{} }
func (m *ConstituentVnfd) String() string { return proto.CompactTextString(m) }
func (*ConstituentVnfd) ProtoMessage()    {}

// Vld is a virtual link descriptor.
type Vld struct {
	Id                      string       `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name                    string       `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Description             string       `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	Type                    string       `protobuf:"bytes,4,opt,name=type,proto3" json:"type,omitempty"`
	VnfdConnectionPointRefs []*VnfdCpRef `protobuf:"bytes,5,rep,name=vnfd_connection_point_refs,json=vnfdConnectionPointRefs,proto3" json:"vnfd_connection_point_refs,omitempty"`
}

func (m *Vld) Reset()         { *m = Vld{} }
func (m *Vld) String() string { return proto.CompactTextString(m) }
func (*Vld) ProtoMessage()    {}

// VnfdCpRef references a connection point of a constituent VNF.
type VnfdCpRef struct {
	Order                  uint32 `protobuf:"varint,1,opt,name=order,proto3" json:"order,omitempty"`
	MemberVnfIndexRef      uint32 `protobuf:"varint,2,opt,name=member_vnf_index_ref,json=memberVnfIndexRef,proto3" json:"member_vnf_index_ref,omitempty"`
	VnfdIdRef              string `protobuf:"bytes,3,opt,name=vnfd_id_ref,json=vnfdIdRef,proto3" json:"vnfd_id_ref,omitempty"`
	VnfdConnectionPointRef string `protobuf:"bytes,4,opt,name=vnfd_connection_point_ref,json=vnfdConnectionPointRef,proto3" json:"vnfd_connection_point_ref,omitempty"`
}

func (m *VnfdCpRef) Reset()         { *m = VnfdCpRef{} }
func (m *VnfdCpRef) String() string { return proto.CompactTextString(m) }
func (*VnfdCpRef) ProtoMessage()    {}

// Vnffgd is a VNF forwarding graph descriptor.
type Vnffgd struct {
	Id          string                  `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name        string                  `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Description string                  `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	Rsps        []*Rsp                  `protobuf:"bytes,4,rep,name=rsps,proto3" json:"rsps,omitempty"`
	Classifiers []*ClassifierDescriptor `protobuf:"bytes,5,rep,name=classifiers,proto3" json:"classifiers,omitempty"`
}

func (m *Vnffgd) Reset()         { *m = Vnffgd{} }
func (m *Vnffgd) String() string { return proto.CompactTextString(m) }
func (*Vnffgd) ProtoMessage()    {}

// Rsp describes a rendered service path as an ordered list of connection points.
type Rsp struct {
	Id                      string       `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name                    string       `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	VnfdConnectionPointRefs []*VnfdCpRef `protobuf:"bytes,3,rep,name=vnfd_connection_point_refs,json=vnfdConnectionPointRefs,proto3" json:"vnfd_connection_point_refs,omitempty"`
}

func (m *Rsp) Reset()         { *m = Rsp{} }
func (m *Rsp) String() string { return proto.CompactTextString(m) }
func (*Rsp) ProtoMessage()    {}

// ClassifierDescriptor steers matching traffic entering at a connection point into an RSP.
type ClassifierDescriptor struct {
	Id                     string             `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name                   string             `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	RspIdRef               string             `protobuf:"bytes,3,opt,name=rsp_id_ref,json=rspIdRef,proto3" json:"rsp_id_ref,omitempty"`
	MemberVnfIndexRef      uint32             `protobuf:"varint,4,opt,name=member_vnf_index_ref,json=memberVnfIndexRef,proto3" json:"member_vnf_index_ref,omitempty"`
	VnfdIdRef              string             `protobuf:"bytes,5,opt,name=vnfd_id_ref,json=vnfdIdRef,proto3" json:"vnfd_id_ref,omitempty"`
	VnfdConnectionPointRef string             `protobuf:"bytes,6,opt,name=vnfd_connection_point_ref,json=vnfdConnectionPointRef,proto3" json:"vnfd_connection_point_ref,omitempty"`
	MatchAttributes        []*MatchAttributes `protobuf:"bytes,7,rep,name=match_attributes,json=matchAttributes,proto3" json:"match_attributes,omitempty"`
}

func (m *ClassifierDescriptor) Reset()         { *m = ClassifierDescriptor{} }
func (m *ClassifierDescriptor) String() string { return proto.CompactTextString(m) }
func (*ClassifierDescriptor) ProtoMessage()    {}

// MatchAttributes is a single classification rule.
type MatchAttributes struct {
	Id                   string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	IpProto              uint32 `protobuf:"varint,2,opt,name=ip_proto,json=ipProto,proto3" json:"ip_proto,omitempty"`
	SourceIpAddress      string `protobuf:"bytes,3,opt,name=source_ip_address,json=sourceIpAddress,proto3" json:"source_ip_address,omitempty"`
	DestinationIpAddress string `protobuf:"bytes,4,opt,name=destination_ip_address,json=destinationIpAddress,proto3" json:"destination_ip_address,omitempty"`
	SourcePort           uint32 `protobuf:"varint,5,opt,name=source_port,json=sourcePort,proto3" json:"source_port,omitempty"`
	DestinationPort      uint32 `protobuf:"varint,6,opt,name=destination_port,json=destinationPort,proto3" json:"destination_port,omitempty"`
}

func (m *MatchAttributes) Reset()         { *m = MatchAttributes{} }
func (m *MatchAttributes) String() string { return proto.CompactTextString(m) }
func (*MatchAttributes) ProtoMessage()    {}

// ScalingGroupDescriptor describes one elastic group of constituent VNFs.
type ScalingGroupDescriptor struct {
	Name                 string                 `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	MinInstanceCount     uint32                 `protobuf:"varint,2,opt,name=min_instance_count,json=minInstanceCount,proto3" json:"min_instance_count,omitempty"`
	MaxInstanceCount     uint32                 `protobuf:"varint,3,opt,name=max_instance_count,json=maxInstanceCount,proto3" json:"max_instance_count,omitempty"`
	VnfdMembers          []*ScalingMember       `protobuf:"bytes,4,rep,name=vnfd_members,json=vnfdMembers,proto3" json:"vnfd_members,omitempty"`
	ScalingConfigActions []*ScalingConfigAction `protobuf:"bytes,5,rep,name=scaling_config_actions,json=scalingConfigActions,proto3" json:"scaling_config_actions,omitempty"`
}

func (m *ScalingGroupDescriptor) Reset()         { *m = ScalingGroupDescriptor{} }
func (m *ScalingGroupDescriptor) String() string { return proto.CompactTextString(m) }
func (*ScalingGroupDescriptor) ProtoMessage()    {}

// ScalingMember is a constituent VNF replicated Count times in every scaling group instance.
type ScalingMember struct {
	MemberVnfIndexRef uint32 `protobuf:"varint,1,opt,name=member_vnf_index_ref,json=memberVnfIndexRef,proto3" json:"member_vnf_index_ref,omitempty"`
	Count             uint32 `protobuf:"varint,2,opt,name=count,proto3" json:"count,omitempty"`
}

func (m *ScalingMember) Reset()         { *m = ScalingMember{} }
func (m *ScalingMember) String() string { return proto.CompactTextString(m) }
func (*ScalingMember) ProtoMessage()    {}

// ScalingConfigAction binds a scaling trigger to an NS config primitive.
type ScalingConfigAction struct {
	Trigger                  ScalingTrigger `protobuf:"varint,1,opt,name=trigger,proto3,enum=nfvo.ScalingTrigger" json:"trigger,omitempty"`
	NsConfigPrimitiveNameRef string         `protobuf:"bytes,2,opt,name=ns_config_primitive_name_ref,json=nsConfigPrimitiveNameRef,proto3" json:"ns_config_primitive_name_ref,omitempty"`
}

func (m *ScalingConfigAction) Reset()         { *m = ScalingConfigAction{} }
func (m *ScalingConfigAction) String() string { return proto.CompactTextString(m) }
func (*ScalingConfigAction) ProtoMessage()    {}

// ParameterPool declares a range [StartValue, EndValue) of integer values
// allocated to config primitive parameters.
type ParameterPool struct {
	Name       string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	StartValue uint32 `protobuf:"varint,2,opt,name=start_value,json=startValue,proto3" json:"start_value,omitempty"`
	EndValue   uint32 `protobuf:"varint,3,opt,name=end_value,json=endValue,proto3" json:"end_value,omitempty"`
}

func (m *ParameterPool) Reset()         { *m = ParameterPool{} }
func (m *ParameterPool) String() string { return proto.CompactTextString(m) }
func (*ParameterPool) ProtoMessage()    {}

// InputParameterXpath declares a descriptor field which can be overridden
// by NS instance configuration.
type InputParameterXpath struct {
	Xpath        string `protobuf:"bytes,1,opt,name=xpath,proto3" json:"xpath,omitempty"`
	Label        string `protobuf:"bytes,2,opt,name=label,proto3" json:"label,omitempty"`
	DefaultValue string `protobuf:"bytes,3,opt,name=default_value,json=defaultValue,proto3" json:"default_value,omitempty"`
}

func (m *InputParameterXpath) Reset()         { *m = InputParameterXpath{} }
func (m *InputParameterXpath) String() string { return proto.CompactTextString(m) }
func (*InputParameterXpath) ProtoMessage()    {}

// ConfigPrimitive is a named configuration action.
type ConfigPrimitive struct {
	Name              string                `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	UserDefinedScript string                `protobuf:"bytes,2,opt,name=user_defined_script,json=userDefinedScript,proto3" json:"user_defined_script,omitempty"`
	Parameters        []*PrimitiveParameter `protobuf:"bytes,3,rep,name=parameters,proto3" json:"parameters,omitempty"`
}

func (m *ConfigPrimitive) Reset()         { *m = ConfigPrimitive{} }
func (m *ConfigPrimitive) String() string { return proto.CompactTextString(m) }
func (*ConfigPrimitive) ProtoMessage()    {}

// PrimitiveParameter is a parameter of a config primitive. Parameters bound
// to a parameter pool get a fresh value from the pool for every scaling instance.
type PrimitiveParameter struct {
	Name          string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	DataType      string `protobuf:"bytes,2,opt,name=data_type,json=dataType,proto3" json:"data_type,omitempty"`
	Mandatory     bool   `protobuf:"varint,3,opt,name=mandatory,proto3" json:"mandatory,omitempty"`
	DefaultValue  string `protobuf:"bytes,4,opt,name=default_value,json=defaultValue,proto3" json:"default_value,omitempty"`
	ParameterPool string `protobuf:"bytes,5,opt,name=parameter_pool,json=parameterPool,proto3" json:"parameter_pool,omitempty"`
}

func (m *PrimitiveParameter) Reset()         { *m = PrimitiveParameter{} }
func (m *PrimitiveParameter) String() string { return proto.CompactTextString(m) }
func (*PrimitiveParameter) ProtoMessage()    {}

// Vnfd is a virtual network function descriptor.
type Vnfd struct {
	Id                   string                 `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name                 string                 `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Description          string                 `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	Vendor               string                 `protobuf:"bytes,4,opt,name=vendor,proto3" json:"vendor,omitempty"`
	Version              string                 `protobuf:"bytes,5,opt,name=version,proto3" json:"version,omitempty"`
	ServiceFunctionChain SfcRole                `protobuf:"varint,6,opt,name=service_function_chain,json=serviceFunctionChain,proto3,enum=nfvo.SfcRole" json:"service_function_chain,omitempty"`
	ConnectionPoints     []*VnfdConnectionPoint `protobuf:"bytes,7,rep,name=connection_points,json=connectionPoints,proto3" json:"connection_points,omitempty"`
	ConfigPrimitives     []*ConfigPrimitive     `protobuf:"bytes,8,rep,name=config_primitives,json=configPrimitives,proto3" json:"config_primitives,omitempty"`
}

func (m *Vnfd) Reset()         { *m = Vnfd{} }
func (m *Vnfd) String() string { return proto.CompactTextString(m) }
func (*Vnfd) ProtoMessage()    {}

// GetName returns the descriptor name.
func (m *Vnfd) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

// VnfdConnectionPoint is an external connection point of a VNF.
type VnfdConnectionPoint struct {
	Name string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Type string `protobuf:"bytes,2,opt,name=type,proto3" json:"type,omitempty"`
}

func (m *VnfdConnectionPoint) Reset()         { *m = VnfdConnectionPoint{} }
func (m *VnfdConnectionPoint) String() string { return proto.CompactTextString(m) }
func (*VnfdConnectionPoint) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Nsd)(nil), "nfvo.Nsd")
	proto.RegisterType((*ConstituentVnfd)(nil), "nfvo.ConstituentVnfd")
	proto.RegisterType((*Vld)(nil), "nfvo.Vld")
	proto.RegisterType((*VnfdCpRef)(nil), "nfvo.VnfdCpRef")
	proto.RegisterType((*Vnffgd)(nil), "nfvo.Vnffgd")
	proto.RegisterType((*Rsp)(nil), "nfvo.Rsp")
	proto.RegisterType((*ClassifierDescriptor)(nil), "nfvo.ClassifierDescriptor")
	proto.RegisterType((*MatchAttributes)(nil), "nfvo.MatchAttributes")
	proto.RegisterType((*ScalingGroupDescriptor)(nil), "nfvo.ScalingGroupDescriptor")
	proto.RegisterType((*ScalingMember)(nil), "nfvo.ScalingMember")
	proto.RegisterType((*ScalingConfigAction)(nil), "nfvo.ScalingConfigAction")
	proto.RegisterType((*ParameterPool)(nil), "nfvo.ParameterPool")
	proto.RegisterType((*InputParameterXpath)(nil), "nfvo.InputParameterXpath")
	proto.RegisterType((*ConfigPrimitive)(nil), "nfvo.ConfigPrimitive")
	proto.RegisterType((*PrimitiveParameter)(nil), "nfvo.PrimitiveParameter")
	proto.RegisterType((*Vnfd)(nil), "nfvo.Vnfd")
	proto.RegisterType((*VnfdConnectionPoint)(nil), "nfvo.VnfdConnectionPoint")
}
