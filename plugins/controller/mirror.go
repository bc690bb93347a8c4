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
	"github.com/gogo/protobuf/proto"

	"github.com/ligato/cn-infra/db/keyval"
	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/controller/api"
)

// localMirror keeps a copy of the watched resources in the local DB, so that
// the agent can resync from it while the remote DB is not reachable.
type localMirror struct {
	broker keyval.ProtoBroker
	log    logging.Logger
}

// replace makes the mirror equal to the snapshot of the remote DB.
func (m *localMirror) replace(snapshot api.ResourceData) error {
	inRemote := make(map[string]struct{})
	for _, kvs := range snapshot {
		for key := range kvs {
			inRemote[key] = struct{}{}
		}
	}

	keys, err := m.broker.ListKeys("")
	if err != nil {
		return err
	}
	var obsolete []string
	for {
		key, _, stop := keys.GetNext()
		if stop {
			break
		}
		if _, found := inRemote[key]; !found {
			obsolete = append(obsolete, key)
		}
	}
	keys.Close()

	for _, key := range obsolete {
		if _, err = m.broker.Delete(key); err != nil {
			return err
		}
	}
	for _, kvs := range snapshot {
		for key, value := range kvs {
			if err = m.broker.Put(key, value); err != nil {
				return err
			}
		}
	}
	m.log.Debugf("Local DB mirror replaced: %d keys removed, %d keys written", len(obsolete), len(inRemote))
	return nil
}

// apply mirrors a single change, nil value removes the key.
func (m *localMirror) apply(key string, value proto.Message) {
	var err error
	if value == nil {
		_, err = m.broker.Delete(key)
	} else {
		err = m.broker.Put(key, value)
	}
	if err != nil {
		m.log.Warnf("Failed to mirror key %s into local DB: %v", key, err)
	}
}
