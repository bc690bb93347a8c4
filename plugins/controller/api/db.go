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

package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogo/protobuf/proto"
)

// KeyValuePairs is a set of key-value pairs.
type KeyValuePairs map[string]proto.Message

// ResourceData contains NFVO database content organized as key-value pairs
// sorted by the resource keyword.
type ResourceData map[string]KeyValuePairs // resource keyword -> {(key, value)}

// DBResource describes one type of record stored in the database.
type DBResource struct {
	// Keyword is a short name of the resource used in logs and events.
	Keyword string

	// ProtoMessageName is the registered name of the record type.
	ProtoMessageName string

	// KeyPrefix is the prefix under which all records of the type are stored.
	KeyPrefix string
}

/******************************** DB Resync ***********************************/

// DBResync is a full snapshot of all NFVO database resources.
type DBResync struct {
	Resources ResourceData

	// Local is true when the snapshot was loaded from the local mirror
	// because the remote database was not reachable.
	Local bool
}

type withName interface {
	// GetName is implemented by records with Name.
	GetName() string
}

// GetName returns name of the DBResync event.
func (ev *DBResync) GetName() string {
	return "Database Resync"
}

// String describes the snapshot.
func (ev *DBResync) String() string {
	str := ev.GetName()
	if ev.Local {
		str += " (from local DB)"
	}

	var keywords []string
	for keyword := range ev.Resources {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	for _, keyword := range keywords {
		data := ev.Resources[keyword]
		if len(data) == 0 {
			continue
		}
		var strPerResource []string
		for key, value := range data {
			valueStr := key
			if valWithName, hasName := value.(withName); hasName && valWithName.GetName() != "" {
				valueStr = valWithName.GetName()
			}
			strPerResource = append(strPerResource, valueStr)
		}
		sort.Strings(strPerResource)
		str += fmt.Sprintf("\n* %dx %s: %s",
			len(data), keyword, strings.Join(strPerResource, ", "))
	}
	return str
}

// Method is Resync.
func (ev *DBResync) Method() EventMethodType {
	return Resync
}

// IsBlocking returns false.
func (ev *DBResync) IsBlocking() bool {
	return false
}

// Done is NOOP.
func (ev *DBResync) Done(error) {
	return
}

/****************************** Resource Change *******************************/

// ResourceChange is a change of a single record in the database.
// NewValue is nil for removed records, PrevValue for newly created ones.
type ResourceChange struct {
	Resource  string
	Key       string
	PrevValue proto.Message
	NewValue  proto.Message
}

// GetName returns name of the ResourceChange event.
func (ev *ResourceChange) GetName() string {
	return "Resource Change"
}

// String describes the change.
func (ev *ResourceChange) String() string {
	return fmt.Sprintf("%s\n"+
		"* resource: %s\n"+
		"* key: %s\n"+
		"* prev-value: %s\n"+
		"* new-value: %s", ev.GetName(), ev.Resource, ev.Key,
		valueToString(ev.PrevValue), valueToString(ev.NewValue))
}

// Method is Update.
func (ev *ResourceChange) Method() EventMethodType {
	return Update
}

// TransactionType is BestEffort.
func (ev *ResourceChange) TransactionType() UpdateTransactionType {
	return BestEffort
}

// Direction is Forward.
func (ev *ResourceChange) Direction() UpdateDirectionType {
	return Forward
}

// IsBlocking returns false.
func (ev *ResourceChange) IsBlocking() bool {
	return false
}

// Done is NOOP.
func (ev *ResourceChange) Done(error) {
	return
}

func valueToString(value proto.Message) string {
	if value == nil {
		return "<nil>"
	}
	return value.String()
}
