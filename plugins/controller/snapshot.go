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

package controller

import (
	"reflect"

	"github.com/gogo/protobuf/proto"

	"github.com/ligato/cn-infra/db/keyval"
	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/controller/api"
)

// revisionedValue is a value together with its DB revision.
type revisionedValue struct {
	revision int64
	value    proto.Message
}

// loadSnapshot reads all the resources from the broker. Values which cannot
// be decoded are skipped.
func loadSnapshot(broker keyval.ProtoBroker, resources []*api.DBResource, log logging.Logger) (
	api.ResourceData, map[string]revisionedValue, error) {

	snapshot := make(api.ResourceData)
	revisions := make(map[string]revisionedValue)
	for _, resource := range resources {
		kvs := make(api.KeyValuePairs)
		snapshot[resource.Keyword] = kvs
		if newResourceValue(resource) == nil {
			log.Warnf("Unknown record type of resource %s", resource.Keyword)
			continue
		}

		iterator, err := broker.ListValues(resource.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		for {
			kv, stop := iterator.GetNext()
			if stop {
				break
			}
			value := newResourceValue(resource)
			if err := kv.GetValue(value); err != nil {
				log.Warnf("Failed to de-serialize value for key %s: %v", kv.GetKey(), err)
				continue
			}
			kvs[kv.GetKey()] = value
			revisions[kv.GetKey()] = revisionedValue{revision: kv.GetRevision(), value: value}
		}
		iterator.Close()
	}
	return snapshot, revisions, nil
}

// newResourceValue returns an empty record of the resource type.
func newResourceValue(resource *api.DBResource) proto.Message {
	valueType := proto.MessageType(resource.ProtoMessageName)
	if valueType == nil {
		return nil
	}
	return reflect.New(valueType.Elem()).Interface().(proto.Message)
}
