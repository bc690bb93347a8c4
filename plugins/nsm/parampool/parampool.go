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

package parampool

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/ligato/cn-infra/logging"
	"github.com/pkg/errors"
)

// poolDirName is the subdirectory of the artifact root holding pool files.
const poolDirName = "parameter_pools"

// ParameterValueError is returned when a pool is exhausted or a value
// is allocated out of order.
type ParameterValueError struct {
	Pool string
	Msg  string
}

// Error returns the error description.
func (e *ParameterValueError) Error() string {
	return fmt.Sprintf("parameter pool %s: %s", e.Pool, e.Msg)
}

// Pool hands out unique integer values from the range [start, end).
// Values are allocated strictly in order: only the head of the available
// sequence can be marked as used. The used set is persisted into
// <artifact-root>/parameter_pools/<name> on every change.
type Pool struct {
	log  logging.Logger
	name string
	path string

	start, end uint32
	available  []uint32
	used       map[uint32]struct{}
}

// New creates a pool over [start, end) and replays the used values persisted
// under artifactRoot. A missing or corrupt pool file yields an empty used set.
func New(log logging.Logger, name string, start, end uint32, artifactRoot string) *Pool {
	p := &Pool{
		log:   log,
		name:  name,
		start: start,
		end:   end,
		used:  make(map[uint32]struct{}),
	}
	if artifactRoot != "" {
		p.path = filepath.Join(artifactRoot, poolDirName, name)
	}

	for _, value := range p.load() {
		if value < start || value >= end {
			p.log.Warnf("Ignoring persisted value %d of pool %s: out of range [%d,%d)",
				value, name, start, end)
			continue
		}
		p.used[value] = struct{}{}
	}
	for value := start; value < end; value++ {
		if _, used := p.used[value]; !used {
			p.available = append(p.available, value)
		}
	}
	return p
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// GetNextUnusedValue returns the head of the available sequence without consuming it.
func (p *Pool) GetNextUnusedValue() (uint32, error) {
	if len(p.available) == 0 {
		return 0, &ParameterValueError{Pool: p.name, Msg: "all values are used"}
	}
	return p.available[0], nil
}

// AddUsedValue marks the value as used. The value must be the current head
// of the available sequence.
func (p *Pool) AddUsedValue(value uint32) error {
	if len(p.available) == 0 || p.available[0] != value {
		return &ParameterValueError{Pool: p.name,
			Msg: fmt.Sprintf("value %d is not the next unused value", value)}
	}
	p.available = p.available[1:]
	p.used[value] = struct{}{}

	if err := p.persist(); err != nil {
		delete(p.used, value)
		p.available = append([]uint32{value}, p.available...)
		return err
	}
	return nil
}

// RemoveUsedValue returns the value to the head of the available sequence.
func (p *Pool) RemoveUsedValue(value uint32) error {
	if _, used := p.used[value]; !used {
		return &ParameterValueError{Pool: p.name,
			Msg: fmt.Sprintf("value %d is not in use", value)}
	}
	delete(p.used, value)
	p.available = append([]uint32{value}, p.available...)

	if err := p.persist(); err != nil {
		p.available = p.available[1:]
		p.used[value] = struct{}{}
		return err
	}
	return nil
}

// UsedValues returns the used values in ascending order.
func (p *Pool) UsedValues() []uint32 {
	values := make([]uint32, 0, len(p.used))
	for value := range p.used {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

// AvailableValues returns a copy of the available sequence in allocation order.
func (p *Pool) AvailableValues() []uint32 {
	return append([]uint32(nil), p.available...)
}

// Destroy removes the backing file of the pool.
func (p *Pool) Destroy() error {
	if p.path == "" {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove file of parameter pool %s", p.name)
	}
	return nil
}

// load reads the persisted used values.
func (p *Pool) load() []uint32 {
	if p.path == "" {
		return nil
	}
	data, err := ioutil.ReadFile(p.path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.log.Warnf("Failed to read file of parameter pool %s: %v", p.name, err)
		}
		return nil
	}
	var values []uint32
	if err := yaml.Unmarshal(data, &values); err != nil {
		p.log.Warnf("Corrupt file of parameter pool %s, starting with no used values: %v",
			p.name, err)
		return nil
	}
	p.log.Debugf("Loaded %d used values of parameter pool %s", len(values), p.name)
	return values
}

// persist rewrites the pool file with the full used set.
func (p *Pool) persist() error {
	if p.path == "" {
		return nil
	}
	data, err := yaml.Marshal(p.UsedValues())
	if err != nil {
		return errors.Wrapf(err, "failed to serialize parameter pool %s", p.name)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for parameter pool %s", p.name)
	}
	if err := ioutil.WriteFile(p.path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write file of parameter pool %s", p.name)
	}
	return nil
}
