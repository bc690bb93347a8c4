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
	"strconv"
	"strings"

	"github.com/ligato/cn-infra/logging"
	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// xpathSegment is one step of an input parameter path, e.g. vld[id='mgmt'].
type xpathSegment struct {
	name  string
	key   string
	value string
}

// nsdLeafSetters set the top-level NSD fields.
var nsdLeafSetters = map[string]func(nsd *model.Nsd, value string){
	"name":        func(nsd *model.Nsd, value string) { nsd.Name = value },
	"description": func(nsd *model.Nsd, value string) { nsd.Description = value },
	"vendor":      func(nsd *model.Nsd, value string) { nsd.Vendor = value },
	"version":     func(nsd *model.Nsd, value string) { nsd.Version = value },
}

// nsdListSetters set fields of NSD list entries selected by a key predicate.
var nsdListSetters = map[string]func(nsd *model.Nsd, sel xpathSegment, leaf, value string) error{
	"vld":                      setVldField,
	"constituent-vnfd":         setConstituentVnfdField,
	"scaling-group-descriptor": setScalingGroupField,
	"parameter-pool":           setParameterPoolField,
	"config-primitive":         setConfigPrimitiveField,
}

// applyInputParameters overrides fields of the (copied) descriptor with the
// input parameters of the NS instance. Only the paths declared by the NSD
// can be overridden, others are skipped.
func applyInputParameters(log logging.Logger, nsd *model.Nsd, params []*model.InputParameter) error {
	declared := make(map[string]struct{})
	for _, xpath := range nsd.InputParameterXpaths {
		declared[normalizeXpath(xpath.Xpath)] = struct{}{}
	}
	for _, param := range params {
		if _, ok := declared[normalizeXpath(param.Xpath)]; !ok {
			log.Warnf("Input parameter %s is not declared by NSD %s, skipping", param.Xpath, nsd.Id)
			continue
		}
		if err := setNsdField(nsd, param.Xpath, param.Value); err != nil {
			return err
		}
		log.Debugf("Applied input parameter %s=%s", param.Xpath, param.Value)
	}
	return nil
}

// setNsdField sets the NSD field addressed by the xpath.
func setNsdField(nsd *model.Nsd, xpath, value string) error {
	segments, err := parseXpath(xpath)
	if err != nil {
		return err
	}
	segments, err = trimNsdRoot(nsd, segments)
	if err != nil {
		return errors.Wrapf(err, "input parameter %s", xpath)
	}

	switch len(segments) {
	case 1:
		setter, ok := nsdLeafSetters[segments[0].name]
		if !ok || segments[0].key != "" {
			return errors.Errorf("input parameter %s: unsupported NSD field %s", xpath, segments[0].name)
		}
		setter(nsd, value)
		return nil
	case 2:
		setter, ok := nsdListSetters[segments[0].name]
		if !ok || segments[0].key == "" || segments[1].key != "" {
			return errors.Errorf("input parameter %s: unsupported NSD path", xpath)
		}
		return errors.Wrapf(setter(nsd, segments[0], segments[1].name, value), "input parameter %s", xpath)
	}
	return errors.Errorf("input parameter %s: unsupported NSD path", xpath)
}

// trimNsdRoot removes the leading catalog and NSD selection steps.
func trimNsdRoot(nsd *model.Nsd, segments []xpathSegment) ([]xpathSegment, error) {
	if len(segments) > 0 && segments[0].name == "nsd-catalog" {
		segments = segments[1:]
	}
	if len(segments) == 0 || segments[0].name != "nsd" {
		return nil, errors.New("path does not start at the NSD")
	}
	if sel := segments[0]; sel.key != "" {
		if sel.key != "id" || sel.value != nsd.Id {
			return nil, errors.Errorf("path selects a different NSD (%s=%s)", sel.key, sel.value)
		}
	}
	return segments[1:], nil
}

func setVldField(nsd *model.Nsd, sel xpathSegment, leaf, value string) error {
	for _, vld := range nsd.Vlds {
		if (sel.key == "id" && vld.Id == sel.value) || (sel.key == "name" && vld.Name == sel.value) {
			switch leaf {
			case "name":
				vld.Name = value
			case "description":
				vld.Description = value
			case "type":
				vld.Type = value
			default:
				return errors.Errorf("unsupported VLD field %s", leaf)
			}
			return nil
		}
	}
	return errors.Errorf("no VLD with %s=%s", sel.key, sel.value)
}

func setConstituentVnfdField(nsd *model.Nsd, sel xpathSegment, leaf, value string) error {
	if sel.key != "member-vnf-index" {
		return errors.Errorf("constituent VNFs are selected by member-vnf-index, not %s", sel.key)
	}
	index, err := strconv.ParseUint(sel.value, 10, 32)
	if err != nil {
		return errors.Wrap(err, "invalid member-vnf-index")
	}
	cv := findConstituentVnfd(nsd, uint32(index))
	if cv == nil {
		return errors.Errorf("no constituent VNF with member-vnf-index=%d", index)
	}
	switch leaf {
	case "start-by-default":
		start, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrap(err, "invalid start-by-default")
		}
		cv.StartByDefault = start
	case "vnfd-id-ref":
		cv.VnfdIdRef = value
	default:
		return errors.Errorf("unsupported constituent VNF field %s", leaf)
	}
	return nil
}

func setScalingGroupField(nsd *model.Nsd, sel xpathSegment, leaf, value string) error {
	if sel.key != "name" {
		return errors.Errorf("scaling groups are selected by name, not %s", sel.key)
	}
	for _, group := range nsd.ScalingGroupDescriptors {
		if group.Name != sel.value {
			continue
		}
		count, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", leaf)
		}
		switch leaf {
		case "min-instance-count":
			group.MinInstanceCount = uint32(count)
		case "max-instance-count":
			group.MaxInstanceCount = uint32(count)
		default:
			return errors.Errorf("unsupported scaling group field %s", leaf)
		}
		return nil
	}
	return errors.Errorf("no scaling group %s", sel.value)
}

func setParameterPoolField(nsd *model.Nsd, sel xpathSegment, leaf, value string) error {
	if sel.key != "name" {
		return errors.Errorf("parameter pools are selected by name, not %s", sel.key)
	}
	for _, pool := range nsd.ParameterPools {
		if pool.Name != sel.value {
			continue
		}
		bound, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", leaf)
		}
		switch leaf {
		case "start-value":
			pool.StartValue = uint32(bound)
		case "end-value":
			pool.EndValue = uint32(bound)
		default:
			return errors.Errorf("unsupported parameter pool field %s", leaf)
		}
		return nil
	}
	return errors.Errorf("no parameter pool %s", sel.value)
}

func setConfigPrimitiveField(nsd *model.Nsd, sel xpathSegment, leaf, value string) error {
	if sel.key != "name" {
		return errors.Errorf("config primitives are selected by name, not %s", sel.key)
	}
	for _, primitive := range nsd.ConfigPrimitives {
		if primitive.Name != sel.value {
			continue
		}
		if leaf != "user-defined-script" {
			return errors.Errorf("unsupported config primitive field %s", leaf)
		}
		primitive.UserDefinedScript = value
		return nil
	}
	return errors.Errorf("no config primitive %s", sel.value)
}

// parseXpath splits the path into steps. Namespace prefixes are dropped,
// at most one [key='value'] predicate per step is supported.
func parseXpath(xpath string) ([]xpathSegment, error) {
	var (
		segments []xpathSegment
		current  strings.Builder
		inPred   bool
	)
	flush := func() error {
		step := current.String()
		current.Reset()
		if step == "" {
			return nil
		}
		seg, err := parseXpathStep(step)
		if err != nil {
			return errors.Wrapf(err, "invalid path %s", xpath)
		}
		segments = append(segments, seg)
		return nil
	}
	for _, c := range xpath {
		switch {
		case c == '[':
			inPred = true
		case c == ']':
			inPred = false
		case c == '/' && !inPred:
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current.WriteRune(c)
	}
	if inPred {
		return nil, errors.Errorf("invalid path %s: unterminated predicate", xpath)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errors.Errorf("empty path")
	}
	return segments, nil
}

func parseXpathStep(step string) (xpathSegment, error) {
	var seg xpathSegment
	name := step
	if open := strings.IndexByte(step, '['); open >= 0 {
		if !strings.HasSuffix(step, "]") {
			return seg, errors.Errorf("step %s: trailing characters after predicate", step)
		}
		name = step[:open]
		pred := step[open+1 : len(step)-1]
		eq := strings.IndexByte(pred, '=')
		if eq < 0 {
			return seg, errors.Errorf("step %s: predicate without value", step)
		}
		seg.key = stripPrefix(strings.TrimSpace(pred[:eq]))
		value := strings.TrimSpace(pred[eq+1:])
		if len(value) < 2 || (value[0] != '\'' && value[0] != '"') || value[len(value)-1] != value[0] {
			return seg, errors.Errorf("step %s: predicate value must be quoted", step)
		}
		seg.value = value[1 : len(value)-1]
	}
	seg.name = stripPrefix(name)
	if seg.name == "" {
		return seg, errors.Errorf("step %s: missing name", step)
	}
	return seg, nil
}

// stripPrefix removes the namespace prefix (nsd:vld -> vld).
func stripPrefix(name string) string {
	if colon := strings.IndexByte(name, ':'); colon >= 0 {
		return name[colon+1:]
	}
	return name
}

// normalizeXpath removes namespace prefixes so that paths declared with and
// without them compare equal.
func normalizeXpath(xpath string) string {
	segments, err := parseXpath(xpath)
	if err != nil {
		return xpath
	}
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString("/")
		sb.WriteString(seg.name)
		if seg.key != "" {
			sb.WriteString("[" + seg.key + "='" + seg.value + "']")
		}
	}
	return sb.String()
}
