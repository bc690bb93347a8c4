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

package cmdimpl

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/contiv/nfvo/plugins/nfvoctl/remote"
	"github.com/contiv/nfvo/plugins/nsm"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

// PrintNsrs prints all NSRs in a table format.
func PrintNsrs(w io.Writer, client *remote.HTTPClient, host string) error {
	var nsrs []*model.Nsr
	if err := getJSON(client, host, nsm.NsrsURL, &nsrs); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tNSD\tCLOUD-ACCOUNT\tSTATE\tVNFRS\tCREATED\n")
	for _, nsr := range nsrs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			nsr.Id,
			nsr.Name,
			nsr.NsdName,
			nsr.CloudAccount,
			nsr.OperationalStatus,
			len(nsr.ConstituentVnfrRefs),
			formatTime(nsr.CreateTime))
	}
	return tw.Flush()
}

// PrintNsr prints one NSR with its VNFRs and scaling groups.
func PrintNsr(w io.Writer, client *remote.HTTPClient, host string, id string) error {
	var detail nsm.NsrDetail
	if err := getJSON(client, host, nsrURL(id), &detail); err != nil {
		return err
	}
	nsr := detail.Nsr

	fmt.Fprintf(w, "NSR %s (%s), NSD %s: %s\n\n", nsr.Name, nsr.Id, nsr.NsdName, nsr.OperationalStatus)
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "VNFR\tVNFD\tMEMBER\tSCALING-GROUP\tSTATE\tCONFIG\tADDRESSES\n")
	for _, vnfr := range detail.Vnfrs {
		group := "-"
		if vnfr.ScalingGroupNameRef != "" {
			group = fmt.Sprintf("%s/%d", vnfr.ScalingGroupNameRef, vnfr.ScalingInstanceId)
		}
		var addrs []string
		for _, cp := range vnfr.ConnectionPoints {
			if cp.IpAddress != "" {
				addrs = append(addrs, cp.Name+"="+cp.IpAddress)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			vnfr.Name,
			vnfr.VnfdName,
			vnfr.MemberVnfIndexRef,
			group,
			vnfr.OperationalStatus,
			vnfr.ConfigStatus,
			strings.Join(addrs, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, group := range nsr.ScalingGroupRecords {
		fmt.Fprintf(w, "\nScaling group %s:\n", group.ScalingGroupNameRef)
		tw = tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintf(tw, "INSTANCE\tDEFAULT\tSTATE\tCONFIG\tPOOL-VALUES\n")
		for _, inst := range group.Instances {
			var values []string
			for _, value := range inst.PoolValues {
				values = append(values, fmt.Sprintf("%s=%d", value.Pool, value.Value))
			}
			fmt.Fprintf(tw, "%d\t%t\t%s\t%s\t%s\n",
				inst.InstanceId, inst.IsDefault, inst.OpStatus, inst.ConfigStatus, strings.Join(values, ","))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// PrintEvents prints the operational events of the NSR, oldest first.
func PrintEvents(w io.Writer, client *remote.HTTPClient, host string, id string) error {
	var detail nsm.NsrDetail
	if err := getJSON(client, host, nsrURL(id), &detail); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tTIME\tEVENT\tDESCRIPTION\n")
	for _, ev := range detail.Nsr.OperationalEvents {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ev.Id, formatTime(ev.Timestamp), ev.Event, ev.Description)
	}
	return tw.Flush()
}

// PrintNsds prints the NSD catalog.
func PrintNsds(w io.Writer, client *remote.HTTPClient, host string) error {
	var nsds []*model.Nsd
	if err := getJSON(client, host, nsm.NsdsURL, &nsds); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tVERSION\tVNFS\tVLDS\tSCALING-GROUPS\n")
	for _, nsd := range nsds {
		var groups []string
		for _, group := range nsd.ScalingGroupDescriptors {
			groups = append(groups, fmt.Sprintf("%s(%d..%d)", group.Name, group.MinInstanceCount, group.MaxInstanceCount))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			nsd.Id, nsd.Name, nsd.Version, len(nsd.ConstituentVnfds), len(nsd.Vlds), strings.Join(groups, ","))
	}
	return tw.Flush()
}

func nsrURL(id string) string {
	return strings.Replace(nsm.NsrURL, "{id}", id, 1)
}

func formatTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format(timeLayout)
}
