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

package local

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/juju/clock"
	"github.com/pkg/errors"

	"github.com/ligato/cn-infra/infra"
	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/nsmplugin"
)

const (
	defaultAccountType     = "local"
	defaultNetworkCIDR     = "10.100.0.0/16"
	defaultSubnetPrefixLen = 24
	defaultBootDelay       = time.Second
)

// Plugin is an NSM backend simulating a VIM inside the agent process.
//
// Virtual links get a subnet carved out of the configured network, assigned
// by the responder of VLR creates. VNFs "boot" for the configured delay after
// which the backend reports the VNFR as running with an address for every
// connection point attached to a virtual link.
type Plugin struct {
	Deps

	config *Config

	sync.Mutex
	ipam *ipam
	vls  map[string]string       // VLR ID -> NSR ID
	vnfs map[string]*vnfInstance // VNFR ID -> instance

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Deps lists dependencies of the local backend.
type Deps struct {
	infra.PluginDeps

	DataStore datastore.API
	Clock     clock.Clock
}

// Config holds the local backend configuration.
type Config struct {
	// AccountType under which the backend is registered.
	AccountType string `json:"account-type"`

	// NetworkCIDR is split into subnets of virtual links.
	NetworkCIDR     string `json:"network-cidr"`
	SubnetPrefixLen uint8  `json:"subnet-prefix-len"`

	// BootDelay is the time a VNF needs to become running.
	BootDelay time.Duration `json:"boot-delay"`

	// FailVnfd lists IDs (or names) of VNFDs whose VNFs always fail to boot.
	FailVnfd []string `json:"fail-vnfd"`
}

// vnfInstance is a VNF started by the backend.
type vnfInstance struct {
	nsrID  string
	cancel context.CancelFunc // nil once booted
}

// Init loads configuration and registers the backend.
func (p *Plugin) Init() error {
	p.config = &Config{
		AccountType:     defaultAccountType,
		NetworkCIDR:     defaultNetworkCIDR,
		SubnetPrefixLen: defaultSubnetPrefixLen,
		BootDelay:       defaultBootDelay,
	}
	if p.Cfg != nil {
		found, err := p.Cfg.LoadValue(p.config)
		if err != nil {
			return errors.Wrap(err, "failed to load local NSM plugin configuration")
		}
		if found {
			p.Log.Debugf("%v config found: %+v", p.PluginName, p.config)
		}
	}
	if p.Clock == nil {
		p.Clock = clock.WallClock
	}

	var err error
	if p.ipam, err = newIPAM(p.config.NetworkCIDR, p.config.SubnetPrefixLen); err != nil {
		return err
	}
	p.vls = make(map[string]string)
	p.vnfs = make(map[string]*vnfInstance)
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.DataStore.RegisterResponder(model.VlrKeyPrefix(), p)
	nsmplugin.Register(p.config.AccountType, p.newBackend)
	return nil
}

// AfterInit restores allocated subnets and addresses from the published records.
func (p *Plugin) AfterInit() error {
	p.Lock()
	defer p.Unlock()

	it, err := p.DataStore.Read(p.ctx, model.VlrKeyPrefix()+"*")
	if err != nil {
		return errors.Wrap(err, "failed to read virtual link records")
	}
	for {
		_, record, ok := it.Next()
		if !ok {
			break
		}
		vlr := record.(*model.Vlr)
		if vlr.AssignedSubnet == "" {
			continue
		}
		if err := p.ipam.reserveSubnet(vlr.Id, vlr.AssignedSubnet); err != nil {
			p.Log.Warnf("Failed to restore subnet of VLR %s: %v", vlr.Name, err)
			continue
		}
		p.vls[vlr.Id] = vlr.NsrIdRef
	}

	it, err = p.DataStore.Read(p.ctx, model.VnfrKeyPrefix()+"*")
	if err != nil {
		return errors.Wrap(err, "failed to read VNF records")
	}
	for {
		_, record, ok := it.Next()
		if !ok {
			break
		}
		vnfr := record.(*model.Vnfr)
		for _, cp := range vnfr.ConnectionPoints {
			ip := net.ParseIP(cp.IpAddress)
			if ip == nil {
				continue
			}
			if err := p.ipam.reserveIP(cp.VlrRef, cpOwner(vnfr.Id, cp.Name), ip); err != nil {
				p.Log.Warnf("Failed to restore address of %s/%s: %v", vnfr.Name, cp.Name, err)
			}
		}
		if vnfr.OperationalStatus == model.RecordStatus_RUNNING {
			p.vnfs[vnfr.Id] = &vnfInstance{nsrID: vnfr.NsrIdRef}
		}
	}
	p.Log.Infof("Restored %d virtual links and %d running VNFs", len(p.vls), len(p.vnfs))
	return nil
}

// Close stops all booting VNFs and unregisters the backend.
func (p *Plugin) Close() error {
	nsmplugin.Unregister(p.config.AccountType)
	p.cancel()
	p.wg.Wait()
	return nil
}

// OnCreate assigns a subnet to the newly created VLR.
func (p *Plugin) OnCreate(ctx context.Context, key string, record proto.Message) (proto.Message, error) {
	vlr, isVlr := record.(*model.Vlr)
	if !isVlr {
		return nil, errors.Errorf("unexpected record type %T under %s", record, key)
	}

	p.Lock()
	defer p.Unlock()

	subnet, err := p.ipam.allocateSubnet(vlr.Id)
	if err != nil {
		p.Log.Errorf("Failed to assign subnet to VLR %s: %v", vlr.Name, err)
		vlr.OperationalStatus = model.RecordStatus_FAILED
		return vlr, nil
	}
	p.vls[vlr.Id] = vlr.NsrIdRef
	vlr.AssignedSubnet = subnet.String()
	vlr.OperationalStatus = model.RecordStatus_RUNNING
	p.Log.Infof("Assigned subnet %s to VLR %s", vlr.AssignedSubnet, vlr.Name)
	return vlr, nil
}

// newBackend is the factory registered for the account type.
func (p *Plugin) newBackend(account *model.CloudAccount) (nsmplugin.API, error) {
	return &backend{
		plugin:  p,
		account: account.Name,
		log:     p.accountLogger(account.Name),
	}, nil
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

// startVnf allocates addresses for connection points and starts the VNF boot.
func (p *Plugin) startVnf(vnfr *model.Vnfr) error {
	p.Lock()
	defer p.Unlock()

	if _, started := p.vnfs[vnfr.Id]; started {
		return nil
	}

	var cps []*model.VnfrConnectionPoint
	for _, cp := range vnfr.ConnectionPoints {
		cp = proto.Clone(cp).(*model.VnfrConnectionPoint)
		if cp.VlrRef != "" {
			ip, err := p.ipam.allocateIP(cp.VlrRef, cpOwner(vnfr.Id, cp.Name))
			if err != nil {
				p.ipam.releaseIPs(cpOwner(vnfr.Id, ""))
				return errors.Wrapf(err, "failed to assign address to %s/%s", vnfr.Name, cp.Name)
			}
			cp.IpAddress = ip.String()
		}
		cps = append(cps, cp)
	}

	ctx, cancel := context.WithCancel(p.ctx)
	vnf := &vnfInstance{nsrID: vnfr.NsrIdRef, cancel: cancel}
	p.vnfs[vnfr.Id] = vnf

	p.wg.Add(1)
	go p.bootVnf(ctx, vnf, vnfr.Id, vnfr.Name, p.mustFail(vnfr), cps)
	return nil
}

// bootVnf reports the VNFR as running (or failed) once the boot delay elapses.
func (p *Plugin) bootVnf(ctx context.Context, vnf *vnfInstance, vnfrID, vnfrName string, fail bool,
	cps []*model.VnfrConnectionPoint) {
	defer p.wg.Done()

	select {
	case <-ctx.Done():
		p.Log.Debugf("Boot of VNF %s was cancelled", vnfrName)
		return
	case <-p.Clock.After(p.config.BootDelay):
	}

	update := &model.Vnfr{OperationalStatus: model.RecordStatus_RUNNING, ConnectionPoints: cps}
	if fail {
		update = &model.Vnfr{OperationalStatus: model.RecordStatus_FAILED}
	}
	err := p.DataStore.Update(ctx, model.VnfrKey(vnfrID), update, datastore.Merge)
	if _, notFound := errors.Cause(err).(*datastore.NotFoundError); notFound {
		p.Log.Debugf("VNFR %s was removed during boot", vnfrName)
	} else if err != nil {
		p.Log.Errorf("Failed to report status of VNF %s: %v", vnfrName, err)
	} else {
		p.Log.Infof("VNF %s is %s", vnfrName, update.OperationalStatus)
	}

	p.Lock()
	vnf.cancel = nil
	p.Unlock()
}

// stopVnf cancels a VNF boot and releases addresses of the VNF.
// Returns false if the VNF was not started by this backend.
func (p *Plugin) stopVnf(vnfrID string) bool {
	p.Lock()
	defer p.Unlock()
	return p.stopVnfLocked(vnfrID)
}

func (p *Plugin) stopVnfLocked(vnfrID string) bool {
	vnf, started := p.vnfs[vnfrID]
	if started {
		if vnf.cancel != nil {
			vnf.cancel()
		}
		delete(p.vnfs, vnfrID)
	}
	p.ipam.releaseIPs(cpOwner(vnfrID, ""))
	return started
}

// releaseVl returns the subnet of the virtual link.
func (p *Plugin) releaseVl(vlrID string) {
	p.Lock()
	defer p.Unlock()
	p.ipam.releaseSubnet(vlrID)
	delete(p.vls, vlrID)
}

// releaseNs releases everything left allocated for the NSR.
func (p *Plugin) releaseNs(nsrID string) (vnfs, vls int) {
	p.Lock()
	defer p.Unlock()
	for vnfrID, vnf := range p.vnfs {
		if vnf.nsrID == nsrID {
			p.stopVnfLocked(vnfrID)
			vnfs++
		}
	}
	for vlrID, owner := range p.vls {
		if owner == nsrID {
			p.ipam.releaseSubnet(vlrID)
			delete(p.vls, vlrID)
			vls++
		}
	}
	return vnfs, vls
}

// mustFail returns true if the VNF is configured to fail.
func (p *Plugin) mustFail(vnfr *model.Vnfr) bool {
	for _, vnfd := range p.config.FailVnfd {
		if vnfd == vnfr.VnfdRef || (vnfr.VnfdName != "" && vnfd == vnfr.VnfdName) {
			return true
		}
	}
	return false
}

// cpOwner returns the address owner identifier of the VNF connection point.
// With an empty CP name it returns the prefix shared by all CPs of the VNF.
func cpOwner(vnfrID, cpName string) string {
	return strings.Join([]string{vnfrID, cpName}, "/")
}
