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

package main

import (
	"github.com/ligato/cn-infra/agent"
	"github.com/ligato/cn-infra/db/keyval/bolt"
	"github.com/ligato/cn-infra/db/keyval/etcd"
	"github.com/ligato/cn-infra/health/probe"
	"github.com/ligato/cn-infra/logging/logrus"
	"github.com/ligato/cn-infra/rpc/prometheus"
	"github.com/ligato/cn-infra/rpc/rest"

	"github.com/contiv/nfvo/plugins/controller"
	controller_api "github.com/contiv/nfvo/plugins/controller/api"
	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm"
	"github.com/contiv/nfvo/plugins/nsmplugin/local"
	"github.com/contiv/nfvo/plugins/statscollector"
	"github.com/contiv/nfvo/plugins/vnffgmgr"
)

// NfvoAgent groups the plugins of the orchestration core.
type NfvoAgent struct {
	HTTP        *rest.Plugin
	HealthProbe *probe.Plugin
	Prometheus  *prometheus.Plugin

	DataStore *datastore.DataStore
	Local     *local.Plugin
	VnffgMgr  *vnffgmgr.Plugin
	Nsm       *nsm.NsManager
	Stats     *statscollector.Plugin

	Controller *controller.Controller
}

func (a *NfvoAgent) String() string {
	return "NFVO-agent"
}

// Init is called at startup phase. Method added in order to implement Plugin interface.
func (a *NfvoAgent) Init() error {
	return nil
}

// Close is called at cleanup phase. Method added in order to implement Plugin interface.
func (a *NfvoAgent) Close() error {
	return nil
}

func main() {
	nsm.DefaultPlugin.Stats = &statscollector.DefaultPlugin
	statscollector.DefaultPlugin.Nsrs = &nsm.DefaultPlugin

	nfvoController := controller.NewPlugin(controller.UseDeps(func(deps *controller.Deps) {
		deps.LocalDB = &bolt.DefaultPlugin
		deps.RemoteDB = &etcd.DefaultPlugin
		deps.EventHandlers = []controller_api.EventHandler{
			&nsm.DefaultPlugin,
		}
	}))

	nfvoAgent := &NfvoAgent{
		HTTP:        &rest.DefaultPlugin,
		HealthProbe: &probe.DefaultPlugin,
		Prometheus:  &prometheus.DefaultPlugin,
		DataStore:   &datastore.DefaultPlugin,
		Local:       &local.DefaultPlugin,
		VnffgMgr:    &vnffgmgr.DefaultPlugin,
		Nsm:         &nsm.DefaultPlugin,
		Stats:       &statscollector.DefaultPlugin,
		Controller:  nfvoController,
	}

	a := agent.NewAgent(agent.AllPlugins(nfvoAgent))
	if err := a.Run(); err != nil {
		logrus.DefaultLogger().Fatal(err)
	}
}
