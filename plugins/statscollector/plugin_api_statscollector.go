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

package statscollector

import (
	"github.com/contiv/nfvo/plugins/nsm/model"
)

// API defines the methods provided by the statistics collector.
type API interface {
	// RegisterGaugeFunc registers a custom gauge in the NFVO registry.
	// The value is computed by <valueFunc> on every scrape.
	RegisterGaugeFunc(name string, help string, valueFunc func() float64) error

	// InstantiationFailed counts one NSR whose instantiation failed.
	InstantiationFailed()

	// ScalingOperation counts one started scale-out (<scaleOut> true)
	// or scale-in operation.
	ScalingOperation(scaleOut bool)
}

// NsrSource provides the records the per-state gauges are computed from.
type NsrSource interface {
	// GetNsrs returns all network service records.
	GetNsrs() []*model.Nsr

	// GetVnfrs returns all VNFRs of the given NSR.
	GetVnfrs(nsrID string) []*model.Vnfr
}
