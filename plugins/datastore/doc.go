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

// Package datastore implements the transactional store of NFVO records
// on top of a cn-infra key-value store (etcd by default).
//
// Besides plain create/update/delete/read, the store supports transactions
// with two phases: in the prepare phase, every subscriber registered for
// a key prefix touched by the transaction gets to validate all the matching
// operations at once and may reject the whole transaction. Only then the
// operations are written in a single KV transaction. Components that realize
// records (e.g. a VIM backend assigning subnets to virtual links) register
// as responders for a key prefix and complete the records being created.
//
// Changes are not notified by this package. Consumers watch the KV store
// through the controller DB watcher.
package datastore
