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
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nfvoctl/remote"
)

const timeLayout = "Mon Jan 2 15:04:05 2006"

// errorResponse is the body of a failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// getJSON makes an http request for the given command and decodes the response into out.
func getJSON(client *remote.HTTPClient, host string, cmd string, out interface{}) error {
	res, err := client.Get(host, cmd)
	if err != nil {
		return errors.Wrapf(err, "GET %s", cmd)
	}
	defer res.Body.Close()
	b, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return responseError(cmd, res.Status, b)
	}
	return json.Unmarshal(b, out)
}

// postJSON makes an http json post request and decodes the response into out.
func postJSON(client *remote.HTTPClient, host string, cmd string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	res, err := client.Post(host, cmd, body)
	if err != nil {
		return errors.Wrapf(err, "POST %s", cmd)
	}
	defer res.Body.Close()
	b, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return responseError(cmd, res.Status, b)
	}
	return json.Unmarshal(b, out)
}

func responseError(cmd, status string, body []byte) error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return fmt.Errorf("%s: %s", status, resp.Error)
	}
	return fmt.Errorf("%s: HTTP %s: %s", cmd, status, string(bytes.TrimSpace(body)))
}
