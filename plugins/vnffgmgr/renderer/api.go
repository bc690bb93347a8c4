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

package renderer

import (
	"fmt"
	"strings"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// ChainRendererAPI defines the API of a forwarding graph renderer. One renderer
// instance serves one SDN account.
type ChainRendererAPI interface {
	// AddChain is called for a newly created forwarding graph.
	AddChain(chain *Chain) error

	// DeleteChain is called for every terminated forwarding graph.
	DeleteChain(chain *Chain) error

	// Resync provides a complete snapshot of all chains of the SDN account.
	// The renderer should resolve any discrepancies between the snapshot
	// and the currently rendered configuration.
	Resync(chains []*Chain) error
}

// Factory creates a renderer for the SDN account.
type Factory func(account *model.SdnAccount, log logging.Logger) (ChainRendererAPI, error)

// Chain is a forwarding graph with all references resolved, i.e. every hop
// and classifier carries the name and address of the connection point
// it refers to.
type Chain struct {
	// ID of the VNFFGR the chain was built from.
	ID   string
	Name string

	// SdnAccount under which the chain is rendered.
	SdnAccount string

	Paths       []*ServicePath
	Classifiers []*Classifier
	Forwarders  []*Forwarder
}

// String converts Chain into a human-readable string.
func (c Chain) String() string {
	var paths, classifiers, forwarders []string
	for _, p := range c.Paths {
		paths = append(paths, p.String())
	}
	for _, cl := range c.Classifiers {
		classifiers = append(classifiers, cl.String())
	}
	for _, f := range c.Forwarders {
		forwarders = append(forwarders, f.String())
	}
	return fmt.Sprintf("Chain %s (%s) SdnAccount: %s, Paths: {%s}, Classifiers: {%s}, Forwarders: {%s}",
		c.Name, c.ID, c.SdnAccount, strings.Join(paths, ", "),
		strings.Join(classifiers, ", "), strings.Join(forwarders, ", "))
}

// ServicePath is one rendered service path of the chain.
type ServicePath struct {
	Name string

	// PathID is unique across all chains (service path identifier).
	PathID uint32

	Hops []*Hop
}

// String converts ServicePath into a human-readable string.
func (p ServicePath) String() string {
	var hops []string
	for _, h := range p.Hops {
		hops = append(hops, h.String())
	}
	return fmt.Sprintf("<Path %s ID:%d Hops:[%s]>", p.Name, p.PathID, strings.Join(hops, " -> "))
}

// Hop is a connection point of a VNF the traffic passes through.
type Hop struct {
	Index     uint32
	VnfrName  string
	CpName    string
	IPAddress string

	// Forwarder steering the traffic into the hop, may be empty.
	Forwarder string
}

// String converts Hop into a human-readable string.
func (h Hop) String() string {
	s := fmt.Sprintf("%d:%s/%s", h.Index, h.VnfrName, h.CpName)
	if h.IPAddress != "" {
		s += "@" + h.IPAddress
	}
	if h.Forwarder != "" {
		s += " via " + h.Forwarder
	}
	return s
}

// Classifier steers matching traffic into a service path.
type Classifier struct {
	Name      string
	PathName  string
	VnfrName  string
	CpName    string
	IPAddress string
	Match     []*model.MatchAttributes
}

// String converts Classifier into a human-readable string.
func (c Classifier) String() string {
	return fmt.Sprintf("<Classifier %s Path:%s At:%s/%s Rules:%d>",
		c.Name, c.PathName, c.VnfrName, c.CpName, len(c.Match))
}

// Forwarder is a VNF acting as a service function forwarder or classifier.
type Forwarder struct {
	Name      string
	Role      model.SfcRole
	Addresses []string
}

// String converts Forwarder into a human-readable string.
func (f Forwarder) String() string {
	return fmt.Sprintf("<%s %s %v>", f.Role, f.Name, f.Addresses)
}
