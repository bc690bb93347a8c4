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

// Nsr is the published operational data of a network service record.
type Nsr struct {
	Id                  string                `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name                string                `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	NsdRef              string                `protobuf:"bytes,3,opt,name=nsd_ref,json=nsdRef,proto3" json:"nsd_ref,omitempty"`
	NsdName             string                `protobuf:"bytes,4,opt,name=nsd_name,json=nsdName,proto3" json:"nsd_name,omitempty"`
	CloudAccount        string                `protobuf:"bytes,5,opt,name=cloud_account,json=cloudAccount,proto3" json:"cloud_account,omitempty"`
	SdnAccount          string                `protobuf:"bytes,6,opt,name=sdn_account,json=sdnAccount,proto3" json:"sdn_account,omitempty"`
	OperationalStatus   NsrState              `protobuf:"varint,7,opt,name=operational_status,json=operationalStatus,proto3,enum=nfvo.NsrState" json:"operational_status,omitempty"`
	ConfigStatus        NsrConfigStatus       `protobuf:"varint,8,opt,name=config_status,json=configStatus,proto3,enum=nfvo.NsrConfigStatus" json:"config_status,omitempty"`
	CreateTime          int64                 `protobuf:"varint,9,opt,name=create_time,json=createTime,proto3" json:"create_time,omitempty"`
	VlrRefs             []string              `protobuf:"bytes,10,rep,name=vlr_refs,json=vlrRefs,proto3" json:"vlr_refs,omitempty"`
	ConstituentVnfrRefs []string              `protobuf:"bytes,11,rep,name=constituent_vnfr_refs,json=constituentVnfrRefs,proto3" json:"constituent_vnfr_refs,omitempty"`
	VnffgrRefs          []string              `protobuf:"bytes,12,rep,name=vnffgr_refs,json=vnffgrRefs,proto3" json:"vnffgr_refs,omitempty"`
	ScalingGroupRecords []*ScalingGroupRecord `protobuf:"bytes,13,rep,name=scaling_group_records,json=scalingGroupRecords,proto3" json:"scaling_group_records,omitempty"`
	OperationalEvents   []*OperationalEvent   `protobuf:"bytes,14,rep,name=operational_events,json=operationalEvents,proto3" json:"operational_events,omitempty"`
}

func (m *Nsr) Reset()         { *m = Nsr{} }
func (m *Nsr) String() string { return proto.CompactTextString(m) }
func (*Nsr) ProtoMessage()    {}

// GetName returns the NSR name.
func (m *Nsr) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

// ScalingGroupRecord is the published state of one scaling group.
type ScalingGroupRecord struct {
	ScalingGroupNameRef string                   `protobuf:"bytes,1,opt,name=scaling_group_name_ref,json=scalingGroupNameRef,proto3" json:"scaling_group_name_ref,omitempty"`
	Instances           []*ScalingInstanceRecord `protobuf:"bytes,2,rep,name=instances,proto3" json:"instances,omitempty"`
}

func (m *ScalingGroupRecord) Reset()         { *m = ScalingGroupRecord{} }
func (m *ScalingGroupRecord) String() string { return proto.CompactTextString(m) }
func (*ScalingGroupRecord) ProtoMessage()    {}

// ScalingInstanceRecord is the published state of one scaling group instance.
type ScalingInstanceRecord struct {
	InstanceId   uint32                `protobuf:"varint,1,opt,name=instance_id,json=instanceId,proto3" json:"instance_id,omitempty"`
	IsDefault    bool                  `protobuf:"varint,2,opt,name=is_default,json=isDefault,proto3" json:"is_default,omitempty"`
	OpStatus     ScalingInstanceStatus `protobuf:"varint,3,opt,name=op_status,json=opStatus,proto3,enum=nfvo.ScalingInstanceStatus" json:"op_status,omitempty"`
	ConfigStatus ScalingConfigStatus   `protobuf:"varint,4,opt,name=config_status,json=configStatus,proto3,enum=nfvo.ScalingConfigStatus" json:"config_status,omitempty"`
	VnfrRefs     []string              `protobuf:"bytes,5,rep,name=vnfr_refs,json=vnfrRefs,proto3" json:"vnfr_refs,omitempty"`
	CreateTime   int64                 `protobuf:"varint,6,opt,name=create_time,json=createTime,proto3" json:"create_time,omitempty"`
	PoolValues   []*PoolValue          `protobuf:"bytes,7,rep,name=pool_values,json=poolValues,proto3" json:"pool_values,omitempty"`
}

func (m *ScalingInstanceRecord) Reset()         { *m = ScalingInstanceRecord{} }
func (m *ScalingInstanceRecord) String() string { return proto.CompactTextString(m) }
func (*ScalingInstanceRecord) ProtoMessage()    {}

// PoolValue is a value allocated from a parameter pool.
type PoolValue struct {
	Pool  string `protobuf:"bytes,1,opt,name=pool,proto3" json:"pool,omitempty"`
	Value uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *PoolValue) Reset()         { *m = PoolValue{} }
func (m *PoolValue) String() string { return proto.CompactTextString(m) }
func (*PoolValue) ProtoMessage()    {}

// OperationalEvent is one entry of the NSR event log.
type OperationalEvent struct {
	Id          uint32 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	Timestamp   int64  `protobuf:"varint,2,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Event       string `protobuf:"bytes,3,opt,name=event,proto3" json:"event,omitempty"`
	Description string `protobuf:"bytes,4,opt,name=description,proto3" json:"description,omitempty"`
}

func (m *OperationalEvent) Reset()         { *m = OperationalEvent{} }
func (m *OperationalEvent) String() string { return proto.CompactTextString(m) }
func (*OperationalEvent) ProtoMessage()    {}

// Vlr is a virtual link record.
type Vlr struct {
	Id                string       `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name              string       `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	NsrIdRef          string       `protobuf:"bytes,3,opt,name=nsr_id_ref,json=nsrIdRef,proto3" json:"nsr_id_ref,omitempty"`
	VldRef            string       `protobuf:"bytes,4,opt,name=vld_ref,json=vldRef,proto3" json:"vld_ref,omitempty"`
	CloudAccount      string       `protobuf:"bytes,5,opt,name=cloud_account,json=cloudAccount,proto3" json:"cloud_account,omitempty"`
	AssignedSubnet    string       `protobuf:"bytes,6,opt,name=assigned_subnet,json=assignedSubnet,proto3" json:"assigned_subnet,omitempty"`
	OperationalStatus RecordStatus `protobuf:"varint,7,opt,name=operational_status,json=operationalStatus,proto3,enum=nfvo.RecordStatus" json:"operational_status,omitempty"`
	CreateTime        int64        `protobuf:"varint,8,opt,name=create_time,json=createTime,proto3" json:"create_time,omitempty"`
}

func (m *Vlr) Reset()         { *m = Vlr{} }
func (m *Vlr) String() string { return proto.CompactTextString(m) }
func (*Vlr) ProtoMessage()    {}

// GetName returns the VLR name.
func (m *Vlr) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

// Vnfr is a virtual network function record.
type Vnfr struct {
	Id                   string                 `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name                 string                 `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	NsrIdRef             string                 `protobuf:"bytes,3,opt,name=nsr_id_ref,json=nsrIdRef,proto3" json:"nsr_id_ref,omitempty"`
	VnfdRef              string                 `protobuf:"bytes,4,opt,name=vnfd_ref,json=vnfdRef,proto3" json:"vnfd_ref,omitempty"`
	VnfdName             string                 `protobuf:"bytes,5,opt,name=vnfd_name,json=vnfdName,proto3" json:"vnfd_name,omitempty"`
	MemberVnfIndexRef    uint32                 `protobuf:"varint,6,opt,name=member_vnf_index_ref,json=memberVnfIndexRef,proto3" json:"member_vnf_index_ref,omitempty"`
	CloudAccount         string                 `protobuf:"bytes,7,opt,name=cloud_account,json=cloudAccount,proto3" json:"cloud_account,omitempty"`
	ScalingGroupNameRef  string                 `protobuf:"bytes,8,opt,name=scaling_group_name_ref,json=scalingGroupNameRef,proto3" json:"scaling_group_name_ref,omitempty"`
	ScalingInstanceId    uint32                 `protobuf:"varint,9,opt,name=scaling_instance_id,json=scalingInstanceId,proto3" json:"scaling_instance_id,omitempty"`
	OperationalStatus    RecordStatus           `protobuf:"varint,10,opt,name=operational_status,json=operationalStatus,proto3,enum=nfvo.RecordStatus" json:"operational_status,omitempty"`
	ConfigStatus         VnfrConfigStatus       `protobuf:"varint,11,opt,name=config_status,json=configStatus,proto3,enum=nfvo.VnfrConfigStatus" json:"config_status,omitempty"`
	ConnectionPoints     []*VnfrConnectionPoint `protobuf:"bytes,12,rep,name=connection_points,json=connectionPoints,proto3" json:"connection_points,omitempty"`
	PlacementGroups      []string               `protobuf:"bytes,13,rep,name=placement_groups,json=placementGroups,proto3" json:"placement_groups,omitempty"`
	ServiceFunctionChain SfcRole                `protobuf:"varint,14,opt,name=service_function_chain,json=serviceFunctionChain,proto3,enum=nfvo.SfcRole" json:"service_function_chain,omitempty"`
	CreateTime           int64                  `protobuf:"varint,15,opt,name=create_time,json=createTime,proto3" json:"create_time,omitempty"`
}

func (m *Vnfr) Reset()         { *m = Vnfr{} }
func (m *Vnfr) String() string { return proto.CompactTextString(m) }
func (*Vnfr) ProtoMessage()    {}

// GetName returns the VNFR name.
func (m *Vnfr) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

// VnfrConnectionPoint binds a VNF connection point to a virtual link.
type VnfrConnectionPoint struct {
	Name      string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	VlrRef    string `protobuf:"bytes,2,opt,name=vlr_ref,json=vlrRef,proto3" json:"vlr_ref,omitempty"`
	IpAddress string `protobuf:"bytes,3,opt,name=ip_address,json=ipAddress,proto3" json:"ip_address,omitempty"`
}

func (m *VnfrConnectionPoint) Reset()         { *m = VnfrConnectionPoint{} }
func (m *VnfrConnectionPoint) String() string { return proto.CompactTextString(m) }
func (*VnfrConnectionPoint) ProtoMessage()    {}

// Vnffgr is a VNF forwarding graph record.
type Vnffgr struct {
	Id                string                 `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name              string                 `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	NsrIdRef          string                 `protobuf:"bytes,3,opt,name=nsr_id_ref,json=nsrIdRef,proto3" json:"nsr_id_ref,omitempty"`
	NsdRef            string                 `protobuf:"bytes,4,opt,name=nsd_ref,json=nsdRef,proto3" json:"nsd_ref,omitempty"`
	VnffgdRef         string                 `protobuf:"bytes,5,opt,name=vnffgd_ref,json=vnffgdRef,proto3" json:"vnffgd_ref,omitempty"`
	SdnAccount        string                 `protobuf:"bytes,6,opt,name=sdn_account,json=sdnAccount,proto3" json:"sdn_account,omitempty"`
	OperationalStatus RecordStatus           `protobuf:"varint,7,opt,name=operational_status,json=operationalStatus,proto3,enum=nfvo.RecordStatus" json:"operational_status,omitempty"`
	Rsps              []*RenderedServicePath `protobuf:"bytes,8,rep,name=rsps,proto3" json:"rsps,omitempty"`
	Classifiers       []*VnffgrClassifier    `protobuf:"bytes,9,rep,name=classifiers,proto3" json:"classifiers,omitempty"`
}

func (m *Vnffgr) Reset()         { *m = Vnffgr{} }
func (m *Vnffgr) String() string { return proto.CompactTextString(m) }
func (*Vnffgr) ProtoMessage()    {}

// GetName returns the VNFFGR name.
func (m *Vnffgr) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

// RenderedServicePath is an instantiated RSP.
type RenderedServicePath struct {
	Id     string    `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name   string    `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	PathId uint32    `protobuf:"varint,3,opt,name=path_id,json=pathId,proto3" json:"path_id,omitempty"`
	Hops   []*RspHop `protobuf:"bytes,4,rep,name=hops,proto3" json:"hops,omitempty"`
}

func (m *RenderedServicePath) Reset()         { *m = RenderedServicePath{} }
func (m *RenderedServicePath) String() string { return proto.CompactTextString(m) }
func (*RenderedServicePath) ProtoMessage()    {}

// RspHop is one VNFR connection point on a rendered service path.
type RspHop struct {
	HopNumber uint32 `protobuf:"varint,1,opt,name=hop_number,json=hopNumber,proto3" json:"hop_number,omitempty"`
	VnfrIdRef string `protobuf:"bytes,2,opt,name=vnfr_id_ref,json=vnfrIdRef,proto3" json:"vnfr_id_ref,omitempty"`
	VnfrName  string `protobuf:"bytes,3,opt,name=vnfr_name,json=vnfrName,proto3" json:"vnfr_name,omitempty"`
	CpName    string `protobuf:"bytes,4,opt,name=cp_name,json=cpName,proto3" json:"cp_name,omitempty"`
	IpAddress string `protobuf:"bytes,5,opt,name=ip_address,json=ipAddress,proto3" json:"ip_address,omitempty"`
}

func (m *RspHop) Reset()         { *m = RspHop{} }
func (m *RspHop) String() string { return proto.CompactTextString(m) }
func (*RspHop) ProtoMessage()    {}

// VnffgrClassifier is an instantiated classifier.
type VnffgrClassifier struct {
	Id              string             `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name            string             `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	RspIdRef        string             `protobuf:"bytes,3,opt,name=rsp_id_ref,json=rspIdRef,proto3" json:"rsp_id_ref,omitempty"`
	VnfrIdRef       string             `protobuf:"bytes,4,opt,name=vnfr_id_ref,json=vnfrIdRef,proto3" json:"vnfr_id_ref,omitempty"`
	CpName          string             `protobuf:"bytes,5,opt,name=cp_name,json=cpName,proto3" json:"cp_name,omitempty"`
	IpAddress       string             `protobuf:"bytes,6,opt,name=ip_address,json=ipAddress,proto3" json:"ip_address,omitempty"`
	MatchAttributes []*MatchAttributes `protobuf:"bytes,7,rep,name=match_attributes,json=matchAttributes,proto3" json:"match_attributes,omitempty"`
}

func (m *VnffgrClassifier) Reset()         { *m = VnffgrClassifier{} }
func (m *VnffgrClassifier) String() string { return proto.CompactTextString(m) }
func (*VnffgrClassifier) ProtoMessage()    {}

// Sff is a service function forwarder (or classifier) available to the chain renderer.
type Sff struct {
	VnfrIdRef        string                 `protobuf:"bytes,1,opt,name=vnfr_id_ref,json=vnfrIdRef,proto3" json:"vnfr_id_ref,omitempty"`
	Name             string                 `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Role             SfcRole                `protobuf:"varint,3,opt,name=role,proto3,enum=nfvo.SfcRole" json:"role,omitempty"`
	ConnectionPoints []*VnfrConnectionPoint `protobuf:"bytes,4,rep,name=connection_points,json=connectionPoints,proto3" json:"connection_points,omitempty"`
}

func (m *Sff) Reset()         { *m = Sff{} }
func (m *Sff) String() string { return proto.CompactTextString(m) }
func (*Sff) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Nsr)(nil), "nfvo.Nsr")
	proto.RegisterType((*ScalingGroupRecord)(nil), "nfvo.ScalingGroupRecord")
	proto.RegisterType((*ScalingInstanceRecord)(nil), "nfvo.ScalingInstanceRecord")
	proto.RegisterType((*PoolValue)(nil), "nfvo.PoolValue")
	proto.RegisterType((*OperationalEvent)(nil), "nfvo.OperationalEvent")
	proto.RegisterType((*Vlr)(nil), "nfvo.Vlr")
	proto.RegisterType((*Vnfr)(nil), "nfvo.Vnfr")
	proto.RegisterType((*VnfrConnectionPoint)(nil), "nfvo.VnfrConnectionPoint")
	proto.RegisterType((*Vnffgr)(nil), "nfvo.Vnffgr")
	proto.RegisterType((*RenderedServicePath)(nil), "nfvo.RenderedServicePath")
	proto.RegisterType((*RspHop)(nil), "nfvo.RspHop")
	proto.RegisterType((*VnffgrClassifier)(nil), "nfvo.VnffgrClassifier")
	proto.RegisterType((*Sff)(nil), "nfvo.Sff")
}
