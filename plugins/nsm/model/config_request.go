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
	"encoding/json"
	"fmt"

	"github.com/gogo/protobuf/jsonpb"
	"github.com/gogo/protobuf/proto"
)

// ConfigRequest is one configuration transaction submitted over REST.
// All the items are applied together or not at all.
type ConfigRequest struct {
	Put    []*ConfigItem `json:"put,omitempty"`
	Delete []*ConfigRef  `json:"delete,omitempty"`
}

// ConfigItem is a configuration record of the given kind (resource keyword).
// Spec is the record in the protobuf JSON format.
type ConfigItem struct {
	Kind string          `json:"kind"`
	Spec json.RawMessage `json:"spec"`
}

// ConfigRef identifies a configuration record.
type ConfigRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// ConfigResponse is returned for a committed configuration transaction.
type ConfigResponse struct {
	Keys []string `json:"keys"`
}

// NewConfigItem wraps the record into a config item.
func NewConfigItem(kind string, record proto.Message) (*ConfigItem, error) {
	marshaller := &jsonpb.Marshaler{OrigName: true}
	spec, err := marshaller.MarshalToString(record)
	if err != nil {
		return nil, err
	}
	return &ConfigItem{Kind: kind, Spec: json.RawMessage(spec)}, nil
}

// Record decodes the item and returns it together with its key.
func (item *ConfigItem) Record() (key string, record proto.Message, err error) {
	switch item.Kind {
	case NsdKeyword:
		record = &Nsd{}
	case VnfdKeyword:
		record = &Vnfd{}
	case NsrConfigKeyword:
		record = &NsrConfig{}
	case CloudAccountKeyword:
		record = &CloudAccount{}
	case SdnAccountKeyword:
		record = &SdnAccount{}
	default:
		return "", nil, fmt.Errorf("unsupported configuration kind %q", item.Kind)
	}
	if err = jsonpb.UnmarshalString(string(item.Spec), record); err != nil {
		return "", nil, fmt.Errorf("invalid %s: %v", item.Kind, err)
	}
	id := ConfigID(record)
	if id == "" {
		return "", nil, fmt.Errorf("%s without ID", item.Kind)
	}
	return ConfigKey(item.Kind, id), record, nil
}

// Key returns the key of the referenced record.
func (ref *ConfigRef) Key() (string, error) {
	switch ref.Kind {
	case NsdKeyword, VnfdKeyword, NsrConfigKeyword, CloudAccountKeyword, SdnAccountKeyword:
	default:
		return "", fmt.Errorf("unsupported configuration kind %q", ref.Kind)
	}
	if ref.ID == "" {
		return "", fmt.Errorf("%s without ID", ref.Kind)
	}
	return ConfigKey(ref.Kind, ref.ID), nil
}

// ConfigKey returns the key of a configuration record of the given kind.
func ConfigKey(kind, id string) string {
	return ConfigPrefix + kind + "/" + id
}

// ConfigID returns the identifier used in the key of the configuration record.
func ConfigID(record proto.Message) string {
	switch r := record.(type) {
	case *Nsd:
		return r.Id
	case *Vnfd:
		return r.Id
	case *NsrConfig:
		return r.Id
	case *CloudAccount:
		return r.Name
	case *SdnAccount:
		return r.Name
	}
	return ""
}
