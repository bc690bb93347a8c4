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
	"sort"
	"strings"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// ConfigAgent applies configuration to the VNFs of a network service.
type ConfigAgent interface {
	// ConfigureVnf applies the initial configuration of a VNF that has just
	// started running.
	ConfigureVnf(ctx context.Context, nsr *model.Nsr, vnfr *model.Vnfr, vnfd *model.Vnfd) error

	// ApplyScalingConfig executes the config primitive bound to a scaling trigger.
	ApplyScalingConfig(ctx context.Context, request *ScalingConfigRequest) error
}

// ScalingConfigRequest describes one execution of a scaling config primitive.
type ScalingConfigRequest struct {
	NsrID      string
	NsrName    string
	Group      string
	InstanceID uint32
	Trigger    model.ScalingTrigger
	Primitive  *model.ConfigPrimitive
	Parameters map[string]string
	Vnfrs      []*model.Vnfr
}

// String returns human-readable description of the request.
func (r *ScalingConfigRequest) String() string {
	var params []string
	for name, value := range r.Parameters {
		params = append(params, name+"="+value)
	}
	sort.Strings(params)
	var vnfrs []string
	for _, vnfr := range r.Vnfrs {
		vnfrs = append(vnfrs, vnfr.Name)
	}
	return fmt.Sprintf("%s %s/%d: primitive %s(%s) vnfrs=[%s]", r.Trigger, r.Group, r.InstanceID,
		r.Primitive.Name, strings.Join(params, ", "), strings.Join(vnfrs, ", "))
}

// loggingConfigAgent is the default config agent, it only logs the requests.
type loggingConfigAgent struct {
	log logging.Logger
}

// ConfigureVnf logs the VNF and reports success.
func (a *loggingConfigAgent) ConfigureVnf(ctx context.Context, nsr *model.Nsr, vnfr *model.Vnfr, vnfd *model.Vnfd) error {
	a.log.Infof("Configuring VNFR %s of NSR %s (%d config primitives)",
		vnfr.Name, nsr.Name, len(vnfd.ConfigPrimitives))
	return nil
}

// ApplyScalingConfig logs the request and reports success.
func (a *loggingConfigAgent) ApplyScalingConfig(ctx context.Context, request *ScalingConfigRequest) error {
	a.log.Infof("NSR %s scaling config: %s", request.NsrName, request)
	return nil
}
