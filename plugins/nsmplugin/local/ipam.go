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
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
)

const (
	// sequence ID reserved for the gateway of every virtual link subnet
	// (cannot be assigned to any connection point)
	gatewaySeqID = 1
)

// ipam carves one subnet per virtual link out of the backend network and
// assigns addresses of the subnet to the VNF connection points attached
// to the link.
//
// ipam is not thread-safe, the backend serializes access.
type ipam struct {
	network   *net.IPNet
	subnetLen int

	lastSubnetAssigned int
	usedSubnets        map[int]string       // subnet seq ID -> VLR ID
	vlSubnets          map[string]*vlSubnet // VLR ID -> subnet
}

// vlSubnet is the subnet of one virtual link.
type vlSubnet struct {
	seqID    int
	network  *net.IPNet
	lastHost int
	hosts    map[string]net.IP // owner (VNFR ID + CP name) -> IP
	usedIPs  map[string]string // IP -> owner
}

// newIPAM parses the backend network and validates the subnet prefix length.
func newIPAM(network string, subnetPrefixLen uint8) (*ipam, error) {
	_, ipNet, err := net.ParseCIDR(network)
	if err != nil {
		return nil, fmt.Errorf("invalid network CIDR %q: %v", network, err)
	}
	networkPrefixLen, totalBits := ipNet.Mask.Size()
	if int(subnetPrefixLen) <= networkPrefixLen || int(subnetPrefixLen) > totalBits-2 {
		return nil, fmt.Errorf("prefix length of virtual link subnets (%d) must be higher "+
			"than the network prefix length (%d) and leave room for hosts",
			subnetPrefixLen, networkPrefixLen)
	}
	return &ipam{
		network:     ipNet,
		subnetLen:   int(subnetPrefixLen),
		usedSubnets: make(map[int]string),
		vlSubnets:   make(map[string]*vlSubnet),
	}, nil
}

// maxSubnets returns the number of subnets the network can be split into.
func (i *ipam) maxSubnets() int {
	prefixLen, _ := i.network.Mask.Size()
	newBits := uint(i.subnetLen - prefixLen)
	if newBits >= 31 {
		newBits = 30
	}
	return 1 << newBits
}

// allocateSubnet returns the subnet of the virtual link, allocating a new one
// if the link has none yet.
func (i *ipam) allocateSubnet(vlrID string) (*net.IPNet, error) {
	if subnet, allocated := i.vlSubnets[vlrID]; allocated {
		return subnet.network, nil
	}

	// start from the last assigned and take the first available subnet
	max := i.maxSubnets()
	for j := 1; j <= max; j++ {
		seqID := (i.lastSubnetAssigned + j) % max
		if _, used := i.usedSubnets[seqID]; used {
			continue
		}
		subnet, err := i.assignSubnet(vlrID, seqID)
		if err != nil {
			return nil, err
		}
		i.lastSubnetAssigned = seqID
		return subnet, nil
	}
	return nil, fmt.Errorf("no subnet is free for allocation in the network %v", i.network)
}

// reserveSubnet marks the subnet as used by the virtual link (used when
// restoring state from records).
func (i *ipam) reserveSubnet(vlrID string, subnet string) error {
	_, ipNet, err := net.ParseCIDR(subnet)
	if err != nil {
		return err
	}
	max := i.maxSubnets()
	for seqID := 0; seqID < max; seqID++ {
		candidate, err := cidr.Subnet(i.network, i.subnetLen-i.prefixLen(), seqID)
		if err != nil {
			return err
		}
		if candidate.String() != ipNet.String() {
			continue
		}
		if owner, used := i.usedSubnets[seqID]; used && owner != vlrID {
			return fmt.Errorf("subnet %s is already used by %s", subnet, owner)
		}
		if _, allocated := i.vlSubnets[vlrID]; allocated {
			return nil
		}
		_, err = i.assignSubnet(vlrID, seqID)
		return err
	}
	return fmt.Errorf("subnet %s is not from the network %v", subnet, i.network)
}

// releaseSubnet returns the subnet of the virtual link back to the pool,
// together with all its addresses.
func (i *ipam) releaseSubnet(vlrID string) {
	subnet, allocated := i.vlSubnets[vlrID]
	if !allocated {
		return
	}
	delete(i.usedSubnets, subnet.seqID)
	delete(i.vlSubnets, vlrID)
}

// allocateIP assigns an address from the subnet of the virtual link
// to the given owner. Repeated calls for the same owner return the same IP.
func (i *ipam) allocateIP(vlrID, owner string) (net.IP, error) {
	subnet, allocated := i.vlSubnets[vlrID]
	if !allocated {
		return nil, fmt.Errorf("virtual link %s has no subnet", vlrID)
	}
	if ip, assigned := subnet.hosts[owner]; assigned {
		return ip, nil
	}

	prefixBits, totalBits := subnet.network.Mask.Size()
	hostBits := uint(totalBits - prefixBits)
	if hostBits >= 31 {
		hostBits = 30
	}
	// the last address is broadcast
	maxSeqID := (1 << hostBits) - 2
	last := subnet.lastHost + 1
	for _, bounds := range [][2]int{{last, maxSeqID}, {1, last - 1}} {
		for j := bounds[0]; j <= bounds[1]; j++ {
			if ip, success := subnet.tryToAllocateIP(j, owner); success {
				subnet.lastHost = j
				return ip, nil
			}
		}
	}
	return nil, fmt.Errorf("no IP address is free for allocation in the subnet %v", subnet.network)
}

// reserveIP marks the address as used by the owner (used when restoring
// state from records).
func (i *ipam) reserveIP(vlrID, owner string, ip net.IP) error {
	subnet, allocated := i.vlSubnets[vlrID]
	if !allocated {
		return fmt.Errorf("virtual link %s has no subnet", vlrID)
	}
	if !subnet.network.Contains(ip) {
		return fmt.Errorf("IP %v is not from the subnet %v", ip, subnet.network)
	}
	if prevOwner, used := subnet.usedIPs[ip.String()]; used && prevOwner != owner {
		return fmt.Errorf("IP %v is already used by %s", ip, prevOwner)
	}
	subnet.hosts[owner] = ip
	subnet.usedIPs[ip.String()] = owner
	return nil
}

// releaseIPs releases all addresses of owners with the given prefix.
func (i *ipam) releaseIPs(ownerPrefix string) {
	for _, subnet := range i.vlSubnets {
		for owner, ip := range subnet.hosts {
			if len(owner) >= len(ownerPrefix) && owner[:len(ownerPrefix)] == ownerPrefix {
				delete(subnet.hosts, owner)
				delete(subnet.usedIPs, ip.String())
			}
		}
	}
}

func (i *ipam) prefixLen() int {
	prefixLen, _ := i.network.Mask.Size()
	return prefixLen
}

func (i *ipam) assignSubnet(vlrID string, seqID int) (*net.IPNet, error) {
	network, err := cidr.Subnet(i.network, i.subnetLen-i.prefixLen(), seqID)
	if err != nil {
		return nil, err
	}
	i.usedSubnets[seqID] = vlrID
	i.vlSubnets[vlrID] = &vlSubnet{
		seqID:   seqID,
		network: network,
		hosts:   make(map[string]net.IP),
		usedIPs: make(map[string]string),
	}
	return network, nil
}

// tryToAllocateIP checks whether the IP at the given index is available.
func (s *vlSubnet) tryToAllocateIP(index int, owner string) (assignedIP net.IP, success bool) {
	if index == gatewaySeqID {
		return nil, false // gateway IP address can't be assigned to a CP
	}
	ip, err := cidr.Host(s.network, index)
	if err != nil {
		return nil, false
	}
	if _, found := s.usedIPs[ip.String()]; found {
		return nil, false // ignore already assigned IP addresses
	}
	s.hosts[owner] = ip
	s.usedIPs[ip.String()] = owner
	return ip, true
}

// gateway returns the gateway address of the subnet.
func (s *vlSubnet) gateway() net.IP {
	ip, _ := cidr.Host(s.network, gatewaySeqID)
	return ip
}
