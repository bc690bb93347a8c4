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

// Package vnffgmgr implements the VNF forwarding graph manager.
//
// Every SDN account is served by a chain renderer selected by the account
// type. The manager assigns service path identifiers to the rendered service
// paths of every graph, converts the graph into the renderer representation
// (resolving the forwarders of the individual hops) and keeps track of all
// the graphs rendered so far. Only the "noop" renderer, which just logs the
// chains, is built in; other renderers can be added with RegisterRenderer.
//
// The list of rendered graphs is available over REST at /vnffgmgr/chains.
package vnffgmgr
