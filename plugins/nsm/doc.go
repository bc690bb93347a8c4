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

// Package nsm implements the network service manager, the orchestration
// core of NFVO.
//
// An NS instance configuration referencing an NSD and a cloud account
// produces a network service record (NSR). The NSR creates virtual link
// records, VNF records and forwarding graph records for the descriptor and
// drives them through instantiation in a fixed order (VLs, VNFs, forwarding
// graphs, default scaling group instances), with the NSM plugin of the cloud
// account doing the actual work on the VIM side. The state of the NSR is then
// reconciled from the states of its children as they are reported through
// the data store. Scaling groups are scaled out/in by editing the list of
// instances in the NS instance configuration, one instance per transaction.
//
// Configuration transactions are validated by the manager (admission
// control) before they are committed, changes are applied as they arrive
// through the controller event loop. On startup, NSRs whose records already
// exist in the data store are rebuilt in the restart mode: the existing
// records are re-used and only the missing parts are instantiated.
//
// All the records are protected by a single lock of the manager. The lock
// is released only while forwarding graphs wait for their hop VNFs.
package nsm
