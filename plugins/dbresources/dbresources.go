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

package dbresources

import (
	"strings"

	"github.com/gogo/protobuf/proto"

	controller_api "github.com/contiv/nfvo/plugins/controller/api"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

// GetDBResources returns metadata for all DB resources used by NFVO.
func GetDBResources() []*controller_api.DBResource {
	return []*controller_api.DBResource{
		{
			Keyword:          model.CloudAccountKeyword,
			ProtoMessageName: proto.MessageName((*model.CloudAccount)(nil)),
			KeyPrefix:        model.CloudAccountKeyPrefix(),
		},
		{
			Keyword:          model.SdnAccountKeyword,
			ProtoMessageName: proto.MessageName((*model.SdnAccount)(nil)),
			KeyPrefix:        model.SdnAccountKeyPrefix(),
		},
		{
			Keyword:          model.VnfdKeyword,
			ProtoMessageName: proto.MessageName((*model.Vnfd)(nil)),
			KeyPrefix:        model.VnfdKeyPrefix(),
		},
		{
			Keyword:          model.NsdKeyword,
			ProtoMessageName: proto.MessageName((*model.Nsd)(nil)),
			KeyPrefix:        model.NsdKeyPrefix(),
		},
		{
			Keyword:          model.NsrConfigKeyword,
			ProtoMessageName: proto.MessageName((*model.NsrConfig)(nil)),
			KeyPrefix:        model.NsrConfigKeyPrefix(),
		},
		{
			Keyword:          model.NsrKeyword,
			ProtoMessageName: proto.MessageName((*model.Nsr)(nil)),
			KeyPrefix:        model.NsrKeyPrefix(),
		},
		{
			Keyword:          model.VlrKeyword,
			ProtoMessageName: proto.MessageName((*model.Vlr)(nil)),
			KeyPrefix:        model.VlrKeyPrefix(),
		},
		{
			Keyword:          model.VnfrKeyword,
			ProtoMessageName: proto.MessageName((*model.Vnfr)(nil)),
			KeyPrefix:        model.VnfrKeyPrefix(),
		},
		{
			Keyword:          model.VnffgrKeyword,
			ProtoMessageName: proto.MessageName((*model.Vnffgr)(nil)),
			KeyPrefix:        model.VnffgrKeyPrefix(),
		},
	}
}

// GetResourceByKey returns metadata of the resource the key belongs to,
// or nil if the key is outside of all known resources.
func GetResourceByKey(resources []*controller_api.DBResource, key string) *controller_api.DBResource {
	for _, resource := range resources {
		if strings.HasPrefix(key, resource.KeyPrefix) {
			return resource
		}
	}
	return nil
}
