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

// Package nsmplugin defines the contract between the network service manager
// and the VIM backends, together with the registry of backends keyed by
// the cloud account type.
//
// Backends register a Factory, typically from the Init of their cn-infra
// plugin. The network service manager creates one backend instance per
// configured cloud account with New.
package nsmplugin
