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

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/nsmplugin"
)

// txnView is the configuration as it will look like once the transaction
// is committed.
type txnView struct {
	m   *NsManager
	ops []*datastore.Operation

	nsds          map[string]*model.Nsd // nil value = deleted
	vnfds         map[string]*model.Vnfd
	cloudAccounts map[string]*model.CloudAccount
	sdnAccounts   map[string]*model.SdnAccount
	nsrConfigs    map[string]*model.NsrConfig
}

func newTxnView(m *NsManager, ops []*datastore.Operation) *txnView {
	view := &txnView{
		m:             m,
		ops:           ops,
		nsds:          make(map[string]*model.Nsd),
		vnfds:         make(map[string]*model.Vnfd),
		cloudAccounts: make(map[string]*model.CloudAccount),
		sdnAccounts:   make(map[string]*model.SdnAccount),
		nsrConfigs:    make(map[string]*model.NsrConfig),
	}
	for _, op := range ops {
		keyword, id := model.ParseKey(op.Key)
		value := op.NewValue()
		switch keyword {
		case model.NsdKeyword:
			nsd, _ := value.(*model.Nsd)
			view.nsds[id] = nsd
		case model.VnfdKeyword:
			vnfd, _ := value.(*model.Vnfd)
			view.vnfds[id] = vnfd
		case model.CloudAccountKeyword:
			account, _ := value.(*model.CloudAccount)
			view.cloudAccounts[id] = account
		case model.SdnAccountKeyword:
			account, _ := value.(*model.SdnAccount)
			view.sdnAccounts[id] = account
		case model.NsrConfigKeyword:
			cfg, _ := value.(*model.NsrConfig)
			view.nsrConfigs[id] = cfg
		}
	}
	return view
}

func (v *txnView) nsdExists(id string) bool {
	if nsd, changed := v.nsds[id]; changed {
		return nsd != nil
	}
	_, exists := v.m.nsds[id]
	return exists
}

func (v *txnView) vnfdExists(id string) bool {
	if vnfd, changed := v.vnfds[id]; changed {
		return vnfd != nil
	}
	_, exists := v.m.vnfds[id]
	return exists
}

func (v *txnView) cloudAccountExists(name string) bool {
	if account, changed := v.cloudAccounts[name]; changed {
		return account != nil
	}
	_, exists := v.m.cloudAccounts[name]
	return exists
}

// nsrRemains returns true if the NSR is not being removed by the transaction.
func (v *txnView) nsrRemains(id string) bool {
	if cfg, changed := v.nsrConfigs[id]; changed {
		return cfg != nil
	}
	return true
}

// nsdInUse returns true if an NSR which survives the transaction uses the NSD.
func (v *txnView) nsdInUse(id string) bool {
	for nsrID, nsr := range v.m.nsrs {
		if nsr.nsd.ID() == id && v.nsrRemains(nsrID) {
			return true
		}
	}
	return false
}

// prepare validates a configuration transaction before it is committed.
// The whole transaction is rejected with the first error found.
func (m *NsManager) prepare(ctx context.Context, ops []*datastore.Operation) error {
	m.Lock()
	defer m.Unlock()

	view := newTxnView(m, ops)
	scalingChanges := 0
	for _, op := range ops {
		keyword, id := model.ParseKey(op.Key)
		var err error
		switch keyword {
		case model.NsdKeyword:
			err = view.checkNsd(op, id)
		case model.VnfdKeyword:
			err = view.checkVnfd(op, id)
		case model.CloudAccountKeyword:
			err = view.checkCloudAccount(op, id)
		case model.SdnAccountKeyword:
			err = view.checkSdnAccount(op, id)
		case model.NsrConfigKeyword:
			var changes int
			changes, err = view.checkNsrConfig(op, id)
			scalingChanges += changes
			if err == nil && scalingChanges > 1 {
				err = newScalingError(id, "",
					"only one scaling group instance can be created or removed per transaction")
			}
		}
		if err != nil {
			m.Log.Warnf("Rejected %s of %s: %v", op.Type, op.Key, err)
			return err
		}
	}
	return nil
}

func (v *txnView) checkNsd(op *datastore.Operation, id string) error {
	if op.Type == datastore.DeleteOp {
		if v.nsdInUse(id) {
			return newNsdError(id, "ref count exists")
		}
		return nil
	}
	nsd, ok := op.NewValue().(*model.Nsd)
	if !ok {
		return newNsdError(id, "unexpected record type %T", op.Value)
	}
	if nsd.Id != id {
		return newNsdError(id, "descriptor ID %q does not match the key", nsd.Id)
	}
	if op.PrevValue != nil && !proto.Equal(op.PrevValue, nsd) && v.nsdInUse(id) {
		return newNsdError(id, "cannot update descriptor in use (ref count exists)")
	}
	members := make(map[uint32]struct{})
	for _, cv := range nsd.ConstituentVnfds {
		if _, dup := members[cv.MemberVnfIndex]; dup {
			return newNsdError(id, "duplicate member VNF index %d", cv.MemberVnfIndex)
		}
		members[cv.MemberVnfIndex] = struct{}{}
		if !v.vnfdExists(cv.VnfdIdRef) {
			return newNsdError(id, "VNFD %s of member %d is not in the catalog", cv.VnfdIdRef, cv.MemberVnfIndex)
		}
	}
	for _, sgd := range nsd.ScalingGroupDescriptors {
		if sgd.MaxInstanceCount > 0 && sgd.MinInstanceCount > sgd.MaxInstanceCount {
			return newNsdError(id, "scaling group %s: min instance count is above max", sgd.Name)
		}
		for _, member := range sgd.VnfdMembers {
			if _, exists := members[member.MemberVnfIndexRef]; !exists {
				return newNsdError(id, "scaling group %s: member %d is not a constituent VNF",
					sgd.Name, member.MemberVnfIndexRef)
			}
		}
	}
	for _, pool := range nsd.ParameterPools {
		if pool.EndValue <= pool.StartValue {
			return newNsdError(id, "parameter pool %s has an empty range", pool.Name)
		}
	}
	return nil
}

func (v *txnView) checkVnfd(op *datastore.Operation, id string) error {
	if op.Type != datastore.DeleteOp {
		vnfd, ok := op.NewValue().(*model.Vnfd)
		if !ok || vnfd.Id != id {
			return newNsdError(id, "invalid VNFD")
		}
		if op.PrevValue == nil || proto.Equal(op.PrevValue, vnfd) {
			return nil
		}
	}
	for _, nsd := range v.m.sortedNsds() {
		if !v.nsdInUse(nsd.ID()) {
			continue
		}
		for _, ref := range referencedVnfds(nsd.nsd) {
			if ref == id {
				return newNsdError(nsd.ID(), "VNFD %s is used by a network service", id)
			}
		}
	}
	if op.Type == datastore.DeleteOp {
		// NSDs surviving the transaction must not reference the VNFD
		for nsdID := range v.m.nsds {
			if !v.nsdExists(nsdID) {
				continue
			}
			desc := v.m.nsds[nsdID].nsd
			if updated := v.nsds[nsdID]; updated != nil {
				desc = updated
			}
			for _, ref := range referencedVnfds(desc) {
				if ref == id {
					return newNsdError(nsdID, "references VNFD %s", id)
				}
			}
		}
	}
	return nil
}

func (v *txnView) checkCloudAccount(op *datastore.Operation, name string) error {
	inUse := false
	for nsrID, nsr := range v.m.nsrs {
		if nsr.CloudAccount() == name && v.nsrRemains(nsrID) {
			inUse = true
		}
	}
	if op.Type == datastore.DeleteOp {
		if inUse {
			return &PluginError{Account: name, Err: errors.New("account is used by a network service")}
		}
		return nil
	}
	account, ok := op.NewValue().(*model.CloudAccount)
	if !ok || account.Name != name {
		return &PluginError{Account: name, Err: errors.New("invalid cloud account")}
	}
	registered := false
	for _, accountType := range nsmplugin.AccountTypes() {
		if accountType == account.AccountType {
			registered = true
		}
	}
	if !registered {
		return &PluginError{Account: name, Err: errors.Wrapf(nsmplugin.ErrUnknownAccountType, "%q", account.AccountType)}
	}
	if prev, _ := op.PrevValue.(*model.CloudAccount); prev != nil && inUse &&
		(prev.AccountType != account.AccountType || prev.SdnAccount != account.SdnAccount) {
		return &PluginError{Account: name, Err: errors.New("cannot change an account used by a network service")}
	}
	return nil
}

func (v *txnView) checkSdnAccount(op *datastore.Operation, name string) error {
	if op.Type != datastore.DeleteOp {
		account, ok := op.NewValue().(*model.SdnAccount)
		if !ok || account.Name != name {
			return errors.Errorf("invalid SDN account %s", name)
		}
		return nil
	}
	for nsrID, nsr := range v.m.nsrs {
		if nsr.SdnAccount() == name && len(nsr.vnffgrs) > 0 && v.nsrRemains(nsrID) {
			return errors.Errorf("SDN account %s is used by NSR %s", name, nsr.Name())
		}
	}
	return nil
}

// checkNsrConfig validates the NS instance configuration. Returns the number
// of scaling group instances created or removed by the update.
func (v *txnView) checkNsrConfig(op *datastore.Operation, id string) (int, error) {
	if op.Type == datastore.DeleteOp {
		return 0, nil
	}
	cfg, ok := op.NewValue().(*model.NsrConfig)
	if !ok || cfg.Id != id {
		return 0, newNsrError(id, "invalid NS instance configuration")
	}
	if cfg.Name == "" {
		return 0, newNsrError(id, "missing name")
	}
	if op.PrevValue == nil {
		if !v.nsdExists(cfg.NsdRef) {
			return 0, newNsrError(id, "NSD %s is not in the catalog", cfg.NsdRef)
		}
		if !v.cloudAccountExists(cfg.CloudAccount) {
			return 0, &PluginError{Account: cfg.CloudAccount, Err: errors.New("cloud account is not configured")}
		}
		if len(cfg.ScalingGroups) > 0 {
			return 0, newScalingError(id, "", "scaling group instances can be requested only for a running NSR")
		}
		return 0, nil
	}

	// only the scaling groups can change on update
	prev := proto.Clone(op.PrevValue).(*model.NsrConfig)
	next := proto.Clone(cfg).(*model.NsrConfig)
	prev.ScalingGroups, next.ScalingGroups = nil, nil
	if !proto.Equal(prev, next) {
		return 0, newNsrError(id, "only scaling group instances can be changed on a running NSR")
	}
	nsr, exists := v.m.nsrs[id]
	if !exists {
		return 0, newNsrError(id, "NSR is not instantiated")
	}
	changes, err := nsr.scalingChanges(cfg)
	if err != nil {
		return 0, err
	}
	for _, change := range changes {
		if err := nsr.checkScalingChange(change); err != nil {
			return 0, err
		}
	}
	return len(changes), nil
}
