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
	"github.com/ligato/cn-infra/infra"
	prometheusplugin "github.com/ligato/cn-infra/rpc/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

const (
	// path where the statistics are exposed
	prometheusStatsPath = "/metrics/nfvo"

	namespace = "nfvo"

	stateLabel   = "state"
	scalingLabel = "direction"

	nsrsMetric                = "nsrs"
	vnfrsMetric               = "vnfrs"
	scalingOperationsMetric   = "scaling_operations_total"
	instantiationFailedMetric = "instantiation_failures_total"
)

// Plugin publishes statistics of the orchestrated network services to prometheus.
type Plugin struct {
	Deps

	nsrsDesc  *prometheus.Desc
	vnfrsDesc *prometheus.Desc

	scalingOps   *prometheus.CounterVec
	instFailures prometheus.Counter
}

// Deps groups the dependencies of the Plugin.
type Deps struct {
	infra.PluginDeps

	// Prometheus plugin used to stream statistics
	Prometheus prometheusplugin.API

	// Nsrs is polled on every scrape
	Nsrs NsrSource
}

// Init initializes the plugin resources
func (p *Plugin) Init() error {
	p.nsrsDesc = prometheus.NewDesc(prometheus.BuildFQName(namespace, "", nsrsMetric),
		"Number of network service records in the given state", []string{stateLabel}, nil)
	p.vnfrsDesc = prometheus.NewDesc(prometheus.BuildFQName(namespace, "", vnfrsMetric),
		"Number of VNF records in the given operational status", []string{stateLabel}, nil)
	p.scalingOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      scalingOperationsMetric,
		Help:      "Number of started scaling operations",
	}, []string{scalingLabel})
	p.instFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      instantiationFailedMetric,
		Help:      "Number of network services whose instantiation failed",
	})

	if p.Prometheus == nil {
		p.Log.Warn("Prometheus plugin not available, statistics are not exported")
		return nil
	}

	// create new registry for statistics
	err := p.Prometheus.NewRegistry(prometheusStatsPath,
		promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError, ErrorLog: p.Log})
	if err != nil {
		return err
	}

	for name, metric := range map[string]prometheus.Collector{
		nsrsMetric:                p,
		scalingOperationsMetric:   p.scalingOps,
		instantiationFailedMetric: p.instFailures,
	} {
		if err = p.Prometheus.Register(prometheusStatsPath, metric); err != nil {
			p.Log.Errorf("failed to register %v metric %v", name, err)
			return err
		}
	}
	return nil
}

// Close is NOOP.
func (p *Plugin) Close() error {
	return nil
}

// RegisterGaugeFunc registers a custom gauge in the NFVO registry.
func (p *Plugin) RegisterGaugeFunc(name string, help string, valueFunc func() float64) error {
	if p.Prometheus == nil {
		return nil
	}
	return p.Prometheus.RegisterGaugeFunc(prometheusStatsPath, namespace, "", name, help, nil, valueFunc)
}

// InstantiationFailed counts one failed NSR instantiation.
func (p *Plugin) InstantiationFailed() {
	p.instFailures.Inc()
}

// ScalingOperation counts one started scaling operation.
func (p *Plugin) ScalingOperation(scaleOut bool) {
	direction := "in"
	if scaleOut {
		direction = "out"
	}
	p.scalingOps.WithLabelValues(direction).Inc()
}

// Describe implements prometheus.Collector for the per-state gauges.
func (p *Plugin) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.nsrsDesc
	ch <- p.vnfrsDesc
}

// Collect implements prometheus.Collector. The records are counted per state
// at the time of the scrape; states without any record are reported as zero.
func (p *Plugin) Collect(ch chan<- prometheus.Metric) {
	nsrStates := make(map[string]int)
	for _, name := range model.NsrState_name {
		nsrStates[name] = 0
	}
	vnfrStates := make(map[string]int)
	for _, name := range model.RecordStatus_name {
		vnfrStates[name] = 0
	}

	if p.Nsrs != nil {
		for _, nsr := range p.Nsrs.GetNsrs() {
			nsrStates[nsr.OperationalStatus.String()]++
			for _, vnfr := range p.Nsrs.GetVnfrs(nsr.Id) {
				vnfrStates[vnfr.OperationalStatus.String()]++
			}
		}
	}

	for state, count := range nsrStates {
		ch <- prometheus.MustNewConstMetric(p.nsrsDesc, prometheus.GaugeValue, float64(count), state)
	}
	for state, count := range vnfrStates {
		ch <- prometheus.MustNewConstMetric(p.vnfrsDesc, prometheus.GaugeValue, float64(count), state)
	}
}
