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
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"regexp"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nfvoctl/remote"
	"github.com/contiv/nfvo/plugins/nsm"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

var documentSeparator = regexp.MustCompile(`(?m)^---[ \t]*$`)

// ParseConfigDocuments reads YAML documents separated by "---", each with
// the kind of the record and its spec, e.g.:
//
//	kind: nsd
//	spec:
//	  id: ping-pong
//	  name: ping-pong
//
// Every spec is validated against the record of its kind.
func ParseConfigDocuments(data []byte) ([]*model.ConfigItem, error) {
	var items []*model.ConfigItem
	for i, doc := range documentSeparator.Split(string(data), -1) {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		jsonDoc, err := yaml.YAMLToJSON([]byte(doc))
		if err != nil {
			return nil, errors.Wrapf(err, "document %d", i+1)
		}
		item := &model.ConfigItem{}
		if err := json.Unmarshal(jsonDoc, item); err != nil {
			return nil, errors.Wrapf(err, "document %d", i+1)
		}
		if _, _, err := item.Record(); err != nil {
			return nil, errors.Wrapf(err, "document %d", i+1)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, errors.New("no configuration found")
	}
	return items, nil
}

// ApplyFile submits all records of the file in one transaction.
func ApplyFile(w io.Writer, client *remote.HTTPClient, host string, file string) error {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}
	items, err := ParseConfigDocuments(data)
	if err != nil {
		return errors.Wrap(err, file)
	}
	return submit(w, client, host, &model.ConfigRequest{Put: items})
}

// DeleteRecords removes the given records of one kind in one transaction.
func DeleteRecords(w io.Writer, client *remote.HTTPClient, host string, kind string, ids []string) error {
	request := &model.ConfigRequest{}
	for _, id := range ids {
		request.Delete = append(request.Delete, &model.ConfigRef{Kind: kind, ID: id})
	}
	return submit(w, client, host, request)
}

func submit(w io.Writer, client *remote.HTTPClient, host string, request *model.ConfigRequest) error {
	var response model.ConfigResponse
	if err := postJSON(client, host, nsm.ConfigURL, request, &response); err != nil {
		return err
	}
	for _, key := range response.Keys {
		fmt.Fprintln(w, key)
	}
	return nil
}
