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

package nsm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/pkg/errors"

	"github.com/ligato/cn-infra/infra"
	"github.com/ligato/cn-infra/rpc/rest"

	controller "github.com/contiv/nfvo/plugins/controller/api"
	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/statscollector"
	"github.com/contiv/nfvo/plugins/vnffgmgr"
)

const (
	defaultArtifactRoot      = "/var/nfvo"
	defaultVnffgPollInterval = 2 * time.Second
	defaultVnffgReadyTimeout = 5 * time.Minute
)

// NsManager is the network service manager: it keeps the catalog of
// descriptors, the configured accounts and all the NSRs, and drives the
// NSRs through their lifecycle as the configuration changes.
type NsManager struct {
	Deps

	config *Config

	// record lock, serializes every access to the registries and records
	sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cloudAccounts map[string]*cloudAccount
	sdnAccounts   map[string]*model.SdnAccount
	vnfds         map[string]*model.Vnfd
	nsds          map[string]*networkServiceDescriptor
	nsrs          map[string]*networkServiceRecord
	vnfrs         map[string]*virtualNetworkFunctionRecord // flat index of all VNFRs
}

// Deps lists dependencies of the NS manager.
type Deps struct {
	infra.PluginDeps

	DataStore    datastore.API
	VnffgMgr     vnffgmgr.API
	ConfigAgent  ConfigAgent        // optional, requests are only logged by default
	Stats        statscollector.API // optional
	HTTPHandlers rest.HTTPHandlers  // optional
	Clock        clock.Clock        // optional, wall clock by default
}

// Config holds the NS manager configuration.
type Config struct {
	// ArtifactRoot is the directory under which parameter pools are persisted.
	ArtifactRoot string `json:"artifact-root"`

	MaxEventsRecorded int `json:"max-events-recorded"`

	// VnffgPollInterval is the period of polling for the hop VNFRs of forwarding graphs.
	VnffgPollInterval time.Duration `json:"vnffg-poll-interval"`

	// VnffgReadyTimeout bounds the wait for the hop VNFRs.
	VnffgReadyTimeout time.Duration `json:"vnffg-ready-timeout"`

	// DefaultSdnAccount is used for cloud accounts without SDN account.
	DefaultSdnAccount string `json:"default-sdn-account"`
}

// Init loads the configuration and subscribes for admission control
// of configuration transactions.
func (m *NsManager) Init() error {
	m.config = &Config{
		ArtifactRoot:      defaultArtifactRoot,
		MaxEventsRecorded: defaultMaxEvents,
		VnffgPollInterval: defaultVnffgPollInterval,
		VnffgReadyTimeout: defaultVnffgReadyTimeout,
	}
	if m.Cfg != nil {
		if _, err := m.Cfg.LoadValue(m.config); err != nil {
			return errors.Wrap(err, "failed to load NS manager configuration")
		}
	}
	m.Log.Infof("NS manager configuration: %+v", *m.config)

	if m.Clock == nil {
		m.Clock = clock.WallClock
	}
	if m.ConfigAgent == nil {
		m.ConfigAgent = &loggingConfigAgent{log: m.Log.NewLogger("-configAgent")}
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.cloudAccounts = make(map[string]*cloudAccount)
	m.sdnAccounts = make(map[string]*model.SdnAccount)
	m.vnfds = make(map[string]*model.Vnfd)
	m.nsds = make(map[string]*networkServiceDescriptor)
	m.nsrs = make(map[string]*networkServiceRecord)
	m.vnfrs = make(map[string]*virtualNetworkFunctionRecord)

	m.DataStore.Subscribe(model.ConfigPrefix, m.prepare)
	m.registerHandlers()
	return nil
}

// Close stops all the instantiation tasks.
func (m *NsManager) Close() error {
	m.cancel()
	m.wg.Wait()
	return nil
}

// HandlesEvent selects resync events, changes of the configuration and VNFRs,
// and the shutdown.
func (m *NsManager) HandlesEvent(event controller.Event) bool {
	if event.Method() != controller.Update {
		return true
	}
	switch ev := event.(type) {
	case *controller.ResourceChange:
		switch ev.Resource {
		case model.CloudAccountKeyword, model.SdnAccountKeyword, model.VnfdKeyword,
			model.NsdKeyword, model.NsrConfigKeyword, model.VnfrKeyword:
			return true
		}
	case *controller.Shutdown:
		return true
	}
	return false
}

// Resync rebuilds the registries from the database snapshot.
func (m *NsManager) Resync(event controller.Event, resources controller.ResourceData, resyncCount int) error {
	m.Log.Debugf("NS manager resync #%d (%s)", resyncCount, event.GetName())
	return m.withLock(func() error {
		return m.resync(m.ctx, resources)
	})
}

// Update applies a single change.
func (m *NsManager) Update(event controller.Event) (changeDescription string, err error) {
	switch ev := event.(type) {
	case *controller.Shutdown:
		m.cancel()
		return "instantiation tasks cancelled", nil
	case *controller.ResourceChange:
		err = m.withLock(func() error {
			return m.applyChange(m.ctx, ev)
		})
		if ev.Resource != model.VnfrKeyword {
			changeDescription = describeChange(ev)
		}
		return changeDescription, err
	}
	return "", nil
}

// Revert is not needed, all handled events are best-effort.
func (m *NsManager) Revert(event controller.Event) error {
	return nil
}

func describeChange(change *controller.ResourceChange) string {
	_, id := model.ParseKey(change.Key)
	switch {
	case change.NewValue == nil:
		return fmt.Sprintf("removed %s %s", change.Resource, id)
	case change.PrevValue == nil:
		return fmt.Sprintf("added %s %s", change.Resource, id)
	}
	return fmt.Sprintf("updated %s %s", change.Resource, id)
}
