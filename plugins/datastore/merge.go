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

package datastore

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
)

// mergeRecords returns a copy of stored with the fields set in update applied.
// Unlike proto.Merge, non-empty repeated fields of update replace the stored
// lists instead of being appended to them.
func mergeRecords(stored, update proto.Message) proto.Message {
	merged := proto.Clone(stored)
	if reflect.TypeOf(stored) != reflect.TypeOf(update) {
		return proto.Clone(update)
	}
	dst := reflect.ValueOf(merged).Elem()
	src := reflect.ValueOf(update).Elem()
	for i := 0; i < src.NumField(); i++ {
		field := src.Field(i)
		if field.Kind() == reflect.Slice && field.Len() > 0 && dst.Field(i).CanSet() {
			dst.Field(i).Set(reflect.Zero(field.Type()))
		}
	}
	proto.Merge(merged, update)
	return merged
}
