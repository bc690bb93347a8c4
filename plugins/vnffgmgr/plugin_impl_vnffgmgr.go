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

package vnffgmgr

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"

	"github.com/ligato/cn-infra/infra"
	"github.com/ligato/cn-infra/logging"
	"github.com/ligato/cn-infra/rpc/rest"

	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/vnffgmgr/renderer"
	"github.com/contiv/nfvo/plugins/vnffgmgr/renderer/noop"
)

const (
	defaultFirstPathID = 1
	defaultLastPathID  = 1<<24 - 1 // service path identifier is a 24-bit number
)

// Plugin implements API. Chains are rendered by the renderer selected
// by the type of the SDN account.
type Plugin struct {
	Deps

	config *Config

	sync.Mutex
	factories map[string]renderer.Factory // account type -> renderer factory
	accounts  map[string]*sdnAccount      // account name -> account
	chains    map[string]*model.Vnffgr    // VNFFGR ID -> rendered graph
	pathIDs   *pathIDPool
}

// Deps lists dependencies of the VNFFG manager.
type Deps struct {
	infra.PluginDeps

	HTTPHandlers rest.HTTPHandlers
	DataStore    datastore.API
}

// Config holds the VNFFG manager configuration.
type Config struct {
	FirstPathID uint32 `json:"first-path-id"`
	LastPathID  uint32 `json:"last-path-id"`
}

type sdnAccount struct {
	account  *model.SdnAccount
	renderer renderer.ChainRendererAPI
}

// Init loads configuration and registers the built-in renderers.
func (p *Plugin) Init() error {
	p.config = &Config{
		FirstPathID: defaultFirstPathID,
		LastPathID:  defaultLastPathID,
	}
	if p.Cfg != nil {
		if _, err := p.Cfg.LoadValue(p.config); err != nil {
			return errors.Wrap(err, "failed to load VNFFG manager configuration")
		}
	}
	p.Log.Infof("VNFFG manager configuration: %+v", *p.config)

	var err error
	if p.pathIDs, err = newPathIDPool(p.config.FirstPathID, p.config.LastPathID); err != nil {
		return err
	}
	p.factories = make(map[string]renderer.Factory)
	p.accounts = make(map[string]*sdnAccount)
	p.chains = make(map[string]*model.Vnffgr)

	p.RegisterRenderer(noop.AccountType, noop.NewRenderer)
	p.registerHandlers()
	return nil
}

// AfterInit restores rendered graphs from the published VNFFGRs.
// The renderers receive them with the resync of their SDN account.
func (p *Plugin) AfterInit() error {
	if p.DataStore == nil {
		return nil
	}
	it, err := p.DataStore.Read(context.Background(), model.VnffgrKeyPrefix()+"*")
	if err != nil {
		return errors.Wrap(err, "failed to read forwarding graph records")
	}

	p.Lock()
	defer p.Unlock()
	for {
		_, record, ok := it.Next()
		if !ok {
			break
		}
		vnffgr := record.(*model.Vnffgr)
		if vnffgr.OperationalStatus != model.RecordStatus_RUNNING {
			continue
		}
		restored := true
		for _, rsp := range vnffgr.Rsps {
			if err := p.pathIDs.reserveID(pathLabel(vnffgr.Id, rsp.Id), rsp.PathId); err != nil {
				p.Log.Warnf("Failed to restore path ID of %s/%s: %v", vnffgr.Name, rsp.Name, err)
				restored = false
			}
		}
		if restored {
			p.chains[vnffgr.Id] = vnffgr
		}
	}
	p.Log.Infof("Restored %d forwarding graphs", len(p.chains))
	return nil
}

// Close does nothing.
func (p *Plugin) Close() error {
	return nil
}

// RegisterRenderer makes the renderer available for SDN accounts of the given type.
func (p *Plugin) RegisterRenderer(accountType string, factory renderer.Factory) {
	p.Lock()
	defer p.Unlock()
	p.factories[accountType] = factory
}

// AddSdnAccount creates the renderer of the account and resyncs it with
// the graphs rendered under the account. Re-adding an unchanged account
// is a no-op.
func (p *Plugin) AddSdnAccount(account *model.SdnAccount) error {
	p.Lock()
	defer p.Unlock()

	if known, exists := p.accounts[account.Name]; exists && proto.Equal(known.account, account) {
		return nil
	}
	factory, registered := p.factories[account.AccountType]
	if !registered {
		return errors.Wrapf(ErrUnknownSdnAccountType, "account %s of type %q", account.Name, account.AccountType)
	}
	rndr, err := factory(account, p.accountLogger(account.Name))
	if err != nil {
		return errors.Wrapf(err, "failed to create renderer for SDN account %s", account.Name)
	}
	p.accounts[account.Name] = &sdnAccount{account: proto.Clone(account).(*model.SdnAccount), renderer: rndr}

	var chains []*renderer.Chain
	for _, id := range p.sortedChainIDs() {
		vnffgr := p.chains[id]
		if vnffgr.SdnAccount == account.Name {
			chains = append(chains, vnffgrToChain(vnffgr, nil))
		}
	}
	p.Log.Infof("Added SDN account %s (type %s)", account.Name, account.AccountType)
	return rndr.Resync(chains)
}

// accountLogger returns the child logger of the account. The account may be
// added again (resync, type change) but named loggers can be registered
// only once.
func (p *Plugin) accountLogger(name string) logging.Logger {
	if parent, isParent := p.Log.(*logging.ParentLogger); isParent && logging.DefaultRegistry != nil {
		if logger, found := logging.DefaultRegistry.Lookup(parent.Prefix + ".-" + name); found {
			return logger
		}
	}
	return p.Log.NewLogger("-" + name)
}

// RemoveSdnAccount removes the renderer of the account.
func (p *Plugin) RemoveSdnAccount(name string) error {
	p.Lock()
	defer p.Unlock()

	for _, vnffgr := range p.chains {
		if vnffgr.SdnAccount == name {
			return errors.Errorf("SDN account %s is used by forwarding graph %s", name, vnffgr.Name)
		}
	}
	delete(p.accounts, name)
	p.Log.Infof("Removed SDN account %s", name)
	return nil
}

// CreateVnffgr allocates path IDs and renders the forwarding graph.
func (p *Plugin) CreateVnffgr(ctx context.Context, sdnAccountName string, request *model.Vnffgr,
	classifiers []*model.VnffgrClassifier, sffs map[string]*model.Sff) (*model.Vnffgr, error) {
	p.Lock()
	defer p.Unlock()

	account, configured := p.accounts[sdnAccountName]
	if !configured {
		return nil, errors.Wrapf(ErrUnknownSdnAccount, "account %q", sdnAccountName)
	}
	if _, exists := p.chains[request.Id]; exists {
		return nil, errors.Errorf("forwarding graph %s is already rendered", request.Id)
	}
	if err := validateRequest(request, classifiers); err != nil {
		return nil, err
	}

	vnffgr := proto.Clone(request).(*model.Vnffgr)
	vnffgr.SdnAccount = sdnAccountName
	vnffgr.Classifiers = nil
	for _, classifier := range classifiers {
		vnffgr.Classifiers = append(vnffgr.Classifiers, proto.Clone(classifier).(*model.VnffgrClassifier))
	}
	for _, rsp := range vnffgr.Rsps {
		pathID, err := p.pathIDs.getOrAllocateID(pathLabel(vnffgr.Id, rsp.Id))
		if err != nil {
			p.releasePathIDs(vnffgr)
			return nil, err
		}
		rsp.PathId = pathID
	}

	if err := account.renderer.AddChain(vnffgrToChain(vnffgr, sffs)); err != nil {
		p.releasePathIDs(vnffgr)
		return nil, errors.Wrapf(err, "failed to render forwarding graph %s", vnffgr.Name)
	}
	vnffgr.OperationalStatus = model.RecordStatus_RUNNING
	p.chains[vnffgr.Id] = vnffgr
	p.Log.Infof("Created forwarding graph %s with %d paths", vnffgr.Name, len(vnffgr.Rsps))
	return proto.Clone(vnffgr).(*model.Vnffgr), nil
}

// FetchVnffgr returns the rendered forwarding graph.
func (p *Plugin) FetchVnffgr(ctx context.Context, sdnAccountName string, id string) (*model.Vnffgr, error) {
	p.Lock()
	defer p.Unlock()

	vnffgr, exists := p.chains[id]
	if !exists || vnffgr.SdnAccount != sdnAccountName {
		return nil, errors.Wrapf(ErrChainNotFound, "forwarding graph %s", id)
	}
	return proto.Clone(vnffgr).(*model.Vnffgr), nil
}

// TerminateVnffgr removes the forwarding graph and releases its path IDs.
func (p *Plugin) TerminateVnffgr(ctx context.Context, sdnAccountName string, id string) error {
	p.Lock()
	defer p.Unlock()

	vnffgr, exists := p.chains[id]
	if !exists {
		return nil
	}
	if account, configured := p.accounts[vnffgr.SdnAccount]; configured {
		if err := account.renderer.DeleteChain(vnffgrToChain(vnffgr, nil)); err != nil {
			return errors.Wrapf(err, "failed to remove forwarding graph %s", vnffgr.Name)
		}
	} else {
		p.Log.Warnf("SDN account %s of forwarding graph %s is not configured", vnffgr.SdnAccount, vnffgr.Name)
	}
	p.releasePathIDs(vnffgr)
	delete(p.chains, id)
	p.Log.Infof("Terminated forwarding graph %s", vnffgr.Name)
	return nil
}

// getChains returns all rendered graphs ordered by ID.
func (p *Plugin) getChains() []*model.Vnffgr {
	p.Lock()
	defer p.Unlock()
	chains := []*model.Vnffgr{}
	for _, id := range p.sortedChainIDs() {
		chains = append(chains, proto.Clone(p.chains[id]).(*model.Vnffgr))
	}
	return chains
}

func (p *Plugin) sortedChainIDs() []string {
	var ids []string
	for id := range p.chains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Plugin) releasePathIDs(vnffgr *model.Vnffgr) {
	for _, rsp := range vnffgr.Rsps {
		p.pathIDs.releaseID(pathLabel(vnffgr.Id, rsp.Id))
	}
}

// validateRequest checks that every path has hops and every classifier
// refers to a path of the graph.
func validateRequest(request *model.Vnffgr, classifiers []*model.VnffgrClassifier) error {
	if len(request.Rsps) == 0 {
		return errors.Errorf("forwarding graph %s has no service paths", request.Name)
	}
	rsps := make(map[string]bool)
	for _, rsp := range request.Rsps {
		if len(rsp.Hops) == 0 {
			return errors.Errorf("service path %s of %s has no hops", rsp.Name, request.Name)
		}
		for _, hop := range rsp.Hops {
			if hop.VnfrIdRef == "" {
				return errors.Errorf("hop %d of service path %s is not resolved to a VNFR",
					hop.HopNumber, rsp.Name)
			}
		}
		rsps[rsp.Id] = true
	}
	for _, classifier := range classifiers {
		if !rsps[classifier.RspIdRef] {
			return errors.Errorf("classifier %s refers to unknown service path %s",
				classifier.Name, classifier.RspIdRef)
		}
	}
	return nil
}

// vnffgrToChain converts the record into the renderer representation.
// Hops are assigned to forwarders from sffs: a hop whose VNF is itself
// a forwarder uses it, other hops use the first SFF ordered by name.
func vnffgrToChain(vnffgr *model.Vnffgr, sffs map[string]*model.Sff) *renderer.Chain {
	chain := &renderer.Chain{
		ID:         vnffgr.Id,
		Name:       vnffgr.Name,
		SdnAccount: vnffgr.SdnAccount,
	}

	var defaultSff string
	var sffIDs []string
	for vnfrID := range sffs {
		sffIDs = append(sffIDs, vnfrID)
	}
	sort.Slice(sffIDs, func(i, j int) bool {
		return sffs[sffIDs[i]].Name < sffs[sffIDs[j]].Name
	})
	for _, vnfrID := range sffIDs {
		sff := sffs[vnfrID]
		forwarder := &renderer.Forwarder{Name: sff.Name, Role: sff.Role}
		for _, cp := range sff.ConnectionPoints {
			if cp.IpAddress != "" {
				forwarder.Addresses = append(forwarder.Addresses, cp.IpAddress)
			}
		}
		chain.Forwarders = append(chain.Forwarders, forwarder)
		if defaultSff == "" && sff.Role == model.SfcRole_SFF {
			defaultSff = sff.Name
		}
	}

	rspNames := make(map[string]string)
	for _, rsp := range vnffgr.Rsps {
		path := &renderer.ServicePath{Name: rsp.Name, PathID: rsp.PathId}
		for _, hop := range rsp.Hops {
			forwarder := defaultSff
			if sff, isSff := sffs[hop.VnfrIdRef]; isSff && sff.Role == model.SfcRole_SFF {
				forwarder = sff.Name
			}
			path.Hops = append(path.Hops, &renderer.Hop{
				Index:     hop.HopNumber,
				VnfrName:  hop.VnfrName,
				CpName:    hop.CpName,
				IPAddress: hop.IpAddress,
				Forwarder: forwarder,
			})
		}
		chain.Paths = append(chain.Paths, path)
		rspNames[rsp.Id] = rsp.Name
	}

	for _, classifier := range vnffgr.Classifiers {
		chain.Classifiers = append(chain.Classifiers, &renderer.Classifier{
			Name:      classifier.Name,
			PathName:  rspNames[classifier.RspIdRef],
			VnfrName:  classifier.VnfrIdRef,
			CpName:    classifier.CpName,
			IPAddress: classifier.IpAddress,
			Match:     classifier.MatchAttributes,
		})
	}
	return chain
}

// pathLabel identifies the allocation of a path ID.
func pathLabel(vnffgrID, rspID string) string {
	return fmt.Sprintf("%s/%s", vnffgrID, rspID)
}
