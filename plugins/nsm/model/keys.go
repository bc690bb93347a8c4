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

import "strings"

const (
	// Prefix is the common key prefix of all NFVO data.
	Prefix = "nfvo/"

	// ConfigPrefix is the key prefix of operator-owned configuration.
	ConfigPrefix = Prefix + "config/"

	// OpdataPrefix is the key prefix of operational records published by the core.
	OpdataPrefix = Prefix + "opdata/"
)

// Keywords identifying the individual resources.
const (
	NsdKeyword          = "nsd"
	VnfdKeyword         = "vnfd"
	NsrConfigKeyword    = "ns-instance"
	CloudAccountKeyword = "cloud-account"
	SdnAccountKeyword   = "sdn-account"
	NsrKeyword          = "nsr"
	VlrKeyword          = "vlr"
	VnfrKeyword         = "vnfr"
	VnffgrKeyword       = "vnffgr"
)

// NsdKeyPrefix returns the prefix under which all NSDs are stored.
func NsdKeyPrefix() string {
	return ConfigPrefix + NsdKeyword + "/"
}

// NsdKey returns the key under which the given NSD is stored.
func NsdKey(id string) string {
	return NsdKeyPrefix() + id
}

// VnfdKeyPrefix returns the prefix under which all VNFDs are stored.
func VnfdKeyPrefix() string {
	return ConfigPrefix + VnfdKeyword + "/"
}

// VnfdKey returns the key under which the given VNFD is stored.
func VnfdKey(id string) string {
	return VnfdKeyPrefix() + id
}

// NsrConfigKeyPrefix returns the prefix under which all NS instance configs are stored.
func NsrConfigKeyPrefix() string {
	return ConfigPrefix + NsrConfigKeyword + "/"
}

// NsrConfigKey returns the key of the given NS instance config.
func NsrConfigKey(id string) string {
	return NsrConfigKeyPrefix() + id
}

// CloudAccountKeyPrefix returns the prefix of cloud accounts.
func CloudAccountKeyPrefix() string {
	return ConfigPrefix + CloudAccountKeyword + "/"
}

// CloudAccountKey returns the key of the given cloud account.
func CloudAccountKey(name string) string {
	return CloudAccountKeyPrefix() + name
}

// SdnAccountKeyPrefix returns the prefix of SDN accounts.
func SdnAccountKeyPrefix() string {
	return ConfigPrefix + SdnAccountKeyword + "/"
}

// SdnAccountKey returns the key of the given SDN account.
func SdnAccountKey(name string) string {
	return SdnAccountKeyPrefix() + name
}

// NsrKeyPrefix returns the prefix of published NSRs.
func NsrKeyPrefix() string {
	return OpdataPrefix + NsrKeyword + "/"
}

// NsrKey returns the key of the given NSR.
func NsrKey(id string) string {
	return NsrKeyPrefix() + id
}

// VlrKeyPrefix returns the prefix of published VLRs.
func VlrKeyPrefix() string {
	return OpdataPrefix + VlrKeyword + "/"
}

// VlrKey returns the key of the given VLR.
func VlrKey(id string) string {
	return VlrKeyPrefix() + id
}

// VnfrKeyPrefix returns the prefix of published VNFRs.
func VnfrKeyPrefix() string {
	return OpdataPrefix + VnfrKeyword + "/"
}

// VnfrKey returns the key of the given VNFR.
func VnfrKey(id string) string {
	return VnfrKeyPrefix() + id
}

// VnffgrKeyPrefix returns the prefix of published VNFFGRs.
func VnffgrKeyPrefix() string {
	return OpdataPrefix + VnffgrKeyword + "/"
}

// VnffgrKey returns the key of the given VNFFGR.
func VnffgrKey(id string) string {
	return VnffgrKeyPrefix() + id
}

// ParseKey splits a key into the resource keyword and the resource ID.
// Returns empty strings for keys outside of the NFVO key space.
func ParseKey(key string) (keyword string, id string) {
	var rest string
	switch {
	case strings.HasPrefix(key, ConfigPrefix):
		rest = strings.TrimPrefix(key, ConfigPrefix)
	case strings.HasPrefix(key, OpdataPrefix):
		rest = strings.TrimPrefix(key, OpdataPrefix)
	default:
		return "", ""
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", ""
	}
	return parts[0], parts[1]
}
