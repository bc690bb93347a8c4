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
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"

	controller "github.com/contiv/nfvo/plugins/controller/api"
	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/nsmplugin"
)

// cloudAccount is a configured cloud account with the cached instance
// of its NSM plugin.
type cloudAccount struct {
	account *model.CloudAccount
	plugin  nsmplugin.API
}

// withLock runs f with the record lock held.
func (m *NsManager) withLock(f func() error) error {
	m.Lock()
	defer m.Unlock()
	return f()
}

func (m *NsManager) countFailure() {
	if m.Stats != nil {
		m.Stats.InstantiationFailed()
	}
}

func (m *NsManager) countScaling(scaleOut bool) {
	if m.Stats != nil {
		m.Stats.ScalingOperation(scaleOut)
	}
}

/*********************************** Accounts ***********************************/

// putCloudAccount creates the NSM plugin for the account. The plugin
// is re-created only when the account type changes.
func (m *NsManager) putCloudAccount(account *model.CloudAccount) error {
	if existing, exists := m.cloudAccounts[account.Name]; exists {
		if existing.account.AccountType == account.AccountType {
			existing.account = proto.Clone(account).(*model.CloudAccount)
			return nil
		}
		if m.accountInUse(account.Name) {
			return &PluginError{Account: account.Name, Err: errors.New("cannot change type of an account in use")}
		}
	}
	plugin, err := nsmplugin.New(account)
	if err != nil {
		return &PluginError{Account: account.Name, Err: err}
	}
	m.cloudAccounts[account.Name] = &cloudAccount{
		account: proto.Clone(account).(*model.CloudAccount),
		plugin:  plugin,
	}
	m.Log.Infof("Cloud account %s (%s) configured", account.Name, account.AccountType)
	return nil
}

func (m *NsManager) deleteCloudAccount(name string) error {
	if _, exists := m.cloudAccounts[name]; !exists {
		return nil
	}
	if m.accountInUse(name) {
		return &PluginError{Account: name, Err: errors.New("account is used by a network service")}
	}
	delete(m.cloudAccounts, name)
	m.Log.Infof("Cloud account %s removed", name)
	return nil
}

func (m *NsManager) accountInUse(name string) bool {
	for _, nsr := range m.nsrs {
		if nsr.CloudAccount() == name {
			return true
		}
	}
	return false
}

func (m *NsManager) putSdnAccount(account *model.SdnAccount) error {
	if err := m.VnffgMgr.AddSdnAccount(account); err != nil {
		return errors.Wrapf(err, "SDN account %s", account.Name)
	}
	m.sdnAccounts[account.Name] = proto.Clone(account).(*model.SdnAccount)
	return nil
}

func (m *NsManager) deleteSdnAccount(name string) error {
	if _, exists := m.sdnAccounts[name]; !exists {
		return nil
	}
	if err := m.VnffgMgr.RemoveSdnAccount(name); err != nil {
		return errors.Wrapf(err, "SDN account %s", name)
	}
	delete(m.sdnAccounts, name)
	return nil
}

/********************************* Descriptors **********************************/

func (m *NsManager) putVnfd(vnfd *model.Vnfd) error {
	if existing, exists := m.vnfds[vnfd.Id]; exists && !proto.Equal(existing, vnfd) {
		if nsd := m.vnfdInUse(vnfd.Id); nsd != "" {
			return newNsdError(nsd, "cannot update VNFD %s used by a network service", vnfd.Id)
		}
	}
	m.vnfds[vnfd.Id] = proto.Clone(vnfd).(*model.Vnfd)
	return nil
}

func (m *NsManager) deleteVnfd(id string) error {
	if nsd := m.vnfdInUse(id); nsd != "" {
		return newNsdError(nsd, "cannot delete VNFD %s used by a network service", id)
	}
	delete(m.vnfds, id)
	return nil
}

// vnfdInUse returns ID of an NSD in use which references the VNFD.
func (m *NsManager) vnfdInUse(id string) string {
	for _, nsd := range m.sortedNsds() {
		if !nsd.InUse() {
			continue
		}
		for _, ref := range referencedVnfds(nsd.nsd) {
			if ref == id {
				return nsd.ID()
			}
		}
	}
	return ""
}

func (m *NsManager) putNsd(nsd *model.Nsd) error {
	if existing, exists := m.nsds[nsd.Id]; exists {
		if proto.Equal(existing.nsd, nsd) {
			return nil
		}
		return existing.update(nsd)
	}
	m.nsds[nsd.Id] = newNetworkServiceDescriptor(nsd)
	m.Log.Infof("NSD %s (%s) added to the catalog", nsd.Id, nsd.Name)
	return nil
}

func (m *NsManager) deleteNsd(id string) error {
	nsd, exists := m.nsds[id]
	if !exists {
		return nil
	}
	if nsd.InUse() {
		return newNsdError(id, "ref count exists")
	}
	delete(m.nsds, id)
	m.Log.Infof("NSD %s removed from the catalog", id)
	return nil
}

func (m *NsManager) sortedNsds() []*networkServiceDescriptor {
	var nsds []*networkServiceDescriptor
	for _, nsd := range m.nsds {
		nsds = append(nsds, nsd)
	}
	sort.Slice(nsds, func(i, j int) bool { return nsds[i].ID() < nsds[j].ID() })
	return nsds
}

/************************************* NSRs *************************************/

// createNsr builds the NSR and starts its instantiation. restored carries
// records found in the data store on startup (restart mode).
func (m *NsManager) createNsr(ctx context.Context, cfg *model.NsrConfig, restored *restoredRecords) error {
	if _, exists := m.nsrs[cfg.Id]; exists {
		return newNsrError(cfg.Id, "already exists")
	}
	nsd, found := m.nsds[cfg.NsdRef]
	if !found {
		return newNsrError(cfg.Id, "NSD %s is not in the catalog", cfg.NsdRef)
	}
	account, found := m.cloudAccounts[cfg.CloudAccount]
	if !found {
		return &PluginError{Account: cfg.CloudAccount, Err: errors.New("cloud account is not configured")}
	}

	nsr := newNetworkServiceRecord(m, proto.Clone(cfg).(*model.NsrConfig), nsd, account)
	if restored != nil {
		nsr.restarting = true
		nsr.restored = restored
		if restored.nsr != nil {
			nsr.status.restore(restored.nsr)
			if isTerminationState(nsr.status.State()) {
				nsr.status.state = model.NsrState_INIT
			}
			if restored.nsr.CreateTime != 0 {
				nsr.createTime = restored.nsr.CreateTime
			}
			nsr.published = true
		}
		nsr.log.Infof("Restoring NSR %s (%s)", nsr.Name(), nsr.ID())
	}

	nsd.Ref()
	m.nsrs[cfg.Id] = nsr
	if err := nsr.Instantiate(ctx); err != nil {
		nsr.cancel()
		for _, vnfr := range nsr.sortedVnfrs() {
			nsr.removeVnfr(vnfr)
		}
		delete(m.nsrs, cfg.Id)
		nsd.Unref()
		m.countFailure()
		return err
	}
	m.Log.Infof("NSR %s (%s) created from NSD %s", nsr.Name(), nsr.ID(), nsd.ID())
	return nil
}

// updateNsr applies changes of scaling group instances requested by the
// updated NS instance configuration.
func (m *NsManager) updateNsr(ctx context.Context, cfg *model.NsrConfig) error {
	nsr, exists := m.nsrs[cfg.Id]
	if !exists {
		return m.createNsr(ctx, cfg, nil)
	}
	changes, err := nsr.scalingChanges(cfg)
	if err != nil {
		return err
	}
	nsr.cfg = proto.Clone(cfg).(*model.NsrConfig)
	var firstErr error
	for _, change := range changes {
		nsr.log.Infof("NSR %s: %s", nsr.Name(), change)
		if err := nsr.applyScalingChange(ctx, change); err != nil {
			nsr.log.Warnf("NSR %s: %s failed: %v", nsr.Name(), change, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// terminateNsr tears the NSR down and releases everything it holds.
func (m *NsManager) terminateNsr(ctx context.Context, id string) error {
	nsr, exists := m.nsrs[id]
	if !exists {
		return nil
	}
	err := nsr.Terminate(ctx)
	for _, vnfr := range nsr.sortedVnfrs() {
		nsr.removeVnfr(vnfr)
	}
	if unrefErr := nsr.nsd.Unref(); unrefErr != nil {
		m.Log.Warn(unrefErr)
	}
	nsr.destroyPools()
	delete(m.nsrs, id)
	m.Log.Infof("NSR %s (%s) removed", nsr.Name(), id)
	return err
}

// handleVnfrChange passes the VNFR state reported by the backend to the owning NSR.
func (m *NsManager) handleVnfrChange(ctx context.Context, id string, msg *model.Vnfr) {
	vnfr, known := m.vnfrs[id]
	if !known || msg == nil {
		return
	}
	vnfr.nsr.onVnfrChange(ctx, vnfr, msg)
}

// applyChange applies one change of the configuration or a VNFR.
func (m *NsManager) applyChange(ctx context.Context, change *controller.ResourceChange) error {
	_, id := model.ParseKey(change.Key)
	deleted := change.NewValue == nil

	switch change.Resource {
	case model.CloudAccountKeyword:
		if deleted {
			return m.deleteCloudAccount(id)
		}
		return m.putCloudAccount(change.NewValue.(*model.CloudAccount))
	case model.SdnAccountKeyword:
		if deleted {
			return m.deleteSdnAccount(id)
		}
		return m.putSdnAccount(change.NewValue.(*model.SdnAccount))
	case model.VnfdKeyword:
		if deleted {
			return m.deleteVnfd(id)
		}
		return m.putVnfd(change.NewValue.(*model.Vnfd))
	case model.NsdKeyword:
		if deleted {
			return m.deleteNsd(id)
		}
		return m.putNsd(change.NewValue.(*model.Nsd))
	case model.NsrConfigKeyword:
		if deleted {
			return m.terminateNsr(ctx, id)
		}
		return m.updateNsr(ctx, change.NewValue.(*model.NsrConfig))
	case model.VnfrKeyword:
		if !deleted {
			m.handleVnfrChange(ctx, id, change.NewValue.(*model.Vnfr))
		}
	}
	return nil
}

/************************************ Resync ************************************/

// resync reconciles the registries with the full snapshot of the database.
// Failures of individual items are only logged.
// On startup, NSRs with operational records already present are rebuilt
// in restart mode. Opdata of unknown NSRs is removed.
func (m *NsManager) resync(ctx context.Context, resources controller.ResourceData) error {
	var errs []error
	keep := func(err error) {
		if err != nil {
			m.Log.Warnf("Resync: %v", err)
			errs = append(errs, err)
		}
	}

	// accounts and descriptors
	for _, key := range sortedKeys(resources[model.CloudAccountKeyword]) {
		keep(m.putCloudAccount(resources[model.CloudAccountKeyword][key].(*model.CloudAccount)))
	}
	for _, key := range sortedKeys(resources[model.SdnAccountKeyword]) {
		keep(m.putSdnAccount(resources[model.SdnAccountKeyword][key].(*model.SdnAccount)))
	}
	for _, key := range sortedKeys(resources[model.VnfdKeyword]) {
		keep(m.putVnfd(resources[model.VnfdKeyword][key].(*model.Vnfd)))
	}
	for _, key := range sortedKeys(resources[model.NsdKeyword]) {
		keep(m.putNsd(resources[model.NsdKeyword][key].(*model.Nsd)))
	}

	// NSRs
	configs := make(map[string]*model.NsrConfig)
	for _, key := range sortedKeys(resources[model.NsrConfigKeyword]) {
		cfg := resources[model.NsrConfigKeyword][key].(*model.NsrConfig)
		configs[cfg.Id] = cfg
	}
	for _, id := range m.sortedNsrIDs() {
		if _, configured := configs[id]; !configured {
			keep(m.terminateNsr(ctx, id))
		}
	}
	for _, key := range sortedKeys(resources[model.NsrConfigKeyword]) {
		cfg := resources[model.NsrConfigKeyword][key].(*model.NsrConfig)
		if _, exists := m.nsrs[cfg.Id]; exists {
			keep(m.updateNsr(ctx, cfg))
			continue
		}
		keep(m.createNsr(ctx, cfg, restoredFromResources(cfg.Id, resources)))
	}
	m.removeStaleOpdata(ctx, resources, configs)

	// removed accounts and descriptors
	for _, nsd := range m.sortedNsds() {
		if _, exists := resources[model.NsdKeyword][model.NsdKey(nsd.ID())]; !exists {
			keep(m.deleteNsd(nsd.ID()))
		}
	}
	for id := range m.vnfds {
		if _, exists := resources[model.VnfdKeyword][model.VnfdKey(id)]; !exists {
			keep(m.deleteVnfd(id))
		}
	}
	for name := range m.sdnAccounts {
		if _, exists := resources[model.SdnAccountKeyword][model.SdnAccountKey(name)]; !exists {
			keep(m.deleteSdnAccount(name))
		}
	}
	for name := range m.cloudAccounts {
		if _, exists := resources[model.CloudAccountKeyword][model.CloudAccountKey(name)]; !exists {
			keep(m.deleteCloudAccount(name))
		}
	}

	// the rejected items stay rejected until the configuration changes,
	// another resync would not help
	if len(errs) > 0 {
		m.Log.Warnf("Resync finished with %d error(s), the first one: %v", len(errs), errs[0])
	}
	return nil
}

// restoredFromResources collects opdata of the NSR, nil if there is none.
func restoredFromResources(nsrID string, resources controller.ResourceData) *restoredRecords {
	restored := &restoredRecords{
		vlrs:    make(map[string]*model.Vlr),
		vnfrs:   make(map[string]*model.Vnfr),
		vnffgrs: make(map[string]*model.Vnffgr),
	}
	found := false
	if nsr, exists := resources[model.NsrKeyword][model.NsrKey(nsrID)]; exists {
		restored.nsr = nsr.(*model.Nsr)
		found = true
	}
	for _, value := range resources[model.VlrKeyword] {
		if vlr := value.(*model.Vlr); vlr.NsrIdRef == nsrID {
			restored.vlrs[vlr.Name] = vlr
			found = true
		}
	}
	for _, value := range resources[model.VnfrKeyword] {
		if vnfr := value.(*model.Vnfr); vnfr.NsrIdRef == nsrID {
			restored.vnfrs[vnfr.Name] = vnfr
			found = true
		}
	}
	for _, value := range resources[model.VnffgrKeyword] {
		if vnffgr := value.(*model.Vnffgr); vnffgr.NsrIdRef == nsrID {
			restored.vnffgrs[vnffgr.Name] = vnffgr
			found = true
		}
	}
	if !found {
		return nil
	}
	return restored
}

// removeStaleOpdata deletes operational records of NSRs which are no longer configured.
func (m *NsManager) removeStaleOpdata(ctx context.Context, resources controller.ResourceData,
	configs map[string]*model.NsrConfig) {
	stale := func(nsrID string) bool {
		if _, configured := configs[nsrID]; configured {
			return false
		}
		_, exists := m.nsrs[nsrID]
		return !exists
	}
	var keys []string
	for key, value := range resources[model.NsrKeyword] {
		if stale(value.(*model.Nsr).Id) {
			keys = append(keys, key)
		}
	}
	for key, value := range resources[model.VlrKeyword] {
		if stale(value.(*model.Vlr).NsrIdRef) {
			keys = append(keys, key)
		}
	}
	for key, value := range resources[model.VnfrKeyword] {
		if stale(value.(*model.Vnfr).NsrIdRef) {
			keys = append(keys, key)
		}
	}
	for key, value := range resources[model.VnffgrKeyword] {
		if stale(value.(*model.Vnffgr).NsrIdRef) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		m.Log.Infof("Removing stale record %s", key)
		if err := m.DataStore.Delete(ctx, key); err != nil {
			m.Log.Warnf("Failed to remove stale record %s: %v", key, err)
		}
	}
}

func (m *NsManager) sortedNsrIDs() []string {
	var ids []string
	for id := range m.nsrs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(kvs controller.KeyValuePairs) []string {
	var keys []string
	for key := range kvs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

/*********************************** Queries ************************************/

// GetNsrs returns the current state of all NSRs, ordered by name.
func (m *NsManager) GetNsrs() []*model.Nsr {
	m.Lock()
	defer m.Unlock()
	var nsrs []*model.Nsr
	for _, id := range m.sortedNsrIDs() {
		nsrs = append(nsrs, m.nsrs[id].record())
	}
	sort.SliceStable(nsrs, func(i, j int) bool { return nsrs[i].Name < nsrs[j].Name })
	return nsrs
}

// GetNsr returns the current state of the NSR.
func (m *NsManager) GetNsr(id string) (nsr *model.Nsr, found bool) {
	m.Lock()
	defer m.Unlock()
	if n, exists := m.nsrs[id]; exists {
		return n.record(), true
	}
	return nil, false
}

// GetVnfrs returns the current state of all VNFRs of the NSR.
func (m *NsManager) GetVnfrs(nsrID string) []*model.Vnfr {
	m.Lock()
	defer m.Unlock()
	n, exists := m.nsrs[nsrID]
	if !exists {
		return nil
	}
	var vnfrs []*model.Vnfr
	for _, vnfr := range n.sortedVnfrs() {
		vnfrs = append(vnfrs, vnfr.record())
	}
	return vnfrs
}

// GetNsds returns the catalog of NSDs.
func (m *NsManager) GetNsds() []*model.Nsd {
	m.Lock()
	defer m.Unlock()
	var nsds []*model.Nsd
	for _, nsd := range m.sortedNsds() {
		nsds = append(nsds, nsd.Descriptor())
	}
	return nsds
}
