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
	"fmt"
	"time"

	"github.com/contiv/nfvo/plugins/nsm/parampool"
)

// NetworkServiceDescriptorError is returned for missing, duplicate or
// in-use descriptors.
type NetworkServiceDescriptorError struct {
	Nsd string
	Msg string
}

func newNsdError(nsd string, format string, args ...interface{}) error {
	return &NetworkServiceDescriptorError{Nsd: nsd, Msg: fmt.Sprintf(format, args...)}
}

// Error returns the error description.
func (e *NetworkServiceDescriptorError) Error() string {
	return fmt.Sprintf("NSD %s: %s", e.Nsd, e.Msg)
}

// NetworkServiceRecordError is returned when an NSR cannot be created
// or operated on.
type NetworkServiceRecordError struct {
	Nsr string
	Msg string
}

func newNsrError(nsr string, format string, args ...interface{}) error {
	return &NetworkServiceRecordError{Nsr: nsr, Msg: fmt.Sprintf(format, args...)}
}

// Error returns the error description.
func (e *NetworkServiceRecordError) Error() string {
	return fmt.Sprintf("NSR %s: %s", e.Nsr, e.Msg)
}

// NsrInstantiationFailed is returned when a child record of the NSR
// could not be instantiated.
type NsrInstantiationFailed struct {
	Nsr    string
	Record string // id of the failed child record
	Err    error
}

// Error returns the error description.
func (e *NsrInstantiationFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("NSR %s: instantiation of %s failed: %v", e.Nsr, e.Record, e.Err)
	}
	return fmt.Sprintf("NSR %s: instantiation of %s failed", e.Nsr, e.Record)
}

// Cause returns the underlying error (for errors.Cause).
func (e *NsrInstantiationFailed) Cause() error {
	return e.Err
}

// ScalingOperationError is returned for rejected scale-out/scale-in requests.
type ScalingOperationError struct {
	Nsr   string
	Group string
	Msg   string
}

func newScalingError(nsr, group string, format string, args ...interface{}) error {
	return &ScalingOperationError{Nsr: nsr, Group: group, Msg: fmt.Sprintf(format, args...)}
}

// Error returns the error description.
func (e *ScalingOperationError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("NSR %s: scaling: %s", e.Nsr, e.Msg)
	}
	return fmt.Sprintf("NSR %s: scaling group %s: %s", e.Nsr, e.Group, e.Msg)
}

// PluginError is returned when the NSM plugin of a cloud account is not available.
type PluginError struct {
	Account string
	Err     error
}

// Error returns the error description.
func (e *PluginError) Error() string {
	return fmt.Sprintf("cloud account %s: %v", e.Account, e.Err)
}

// Cause returns the underlying error.
func (e *PluginError) Cause() error {
	return e.Err
}

// VnffgTimeoutError is returned when a hop VNFR of a forwarding graph did not
// reach the running state in time.
type VnffgTimeoutError struct {
	Vnffgr  string
	Vnfr    string
	Timeout time.Duration
}

// Error returns the error description.
func (e *VnffgTimeoutError) Error() string {
	return fmt.Sprintf("VNFFGR %s: VNFR %s is not running after %v", e.Vnffgr, e.Vnfr, e.Timeout)
}

// ParameterValueError is returned by parameter pools.
type ParameterValueError = parampool.ParameterValueError
