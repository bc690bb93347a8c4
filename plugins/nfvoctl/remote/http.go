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

package remote

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ligato/cn-infra/config"
)

const defaultPort = "9191"

// HTTPClient wraps http.Client with configured authorization and url base
type HTTPClient struct {
	// Config for this client
	Config *HTTPClientConfig

	http *http.Client
}

// HTTPClientConfig is configuration for http client
type HTTPClientConfig struct {
	// Port the NFVO agent listens on
	Port string `json:"port"`
	// Basic authorization for client
	BasicAuth string `json:"basic-auth"`
	// If https or http should be used
	UseHTTPS bool `json:"use-https"`
	// Timeout of one request
	Timeout time.Duration `json:"timeout"`
}

// CreateHTTPClient uses environment variable HTTP_CLIENT_CONFIG or HTTP config file to establish connection
func CreateHTTPClient(configFile string) (*HTTPClient, error) {
	if configFile == "" {
		configFile = os.Getenv("HTTP_CLIENT_CONFIG")
	}

	cfg := &HTTPClientConfig{Port: defaultPort, Timeout: 10 * time.Second}
	if configFile != "" {
		if err := config.ParseConfigFromYamlFile(configFile, cfg); err != nil {
			return nil, err
		}
	}

	return &HTTPClient{
		Config: cfg,
		http:   &http.Client{Transport: &http.Transport{}, Timeout: cfg.Timeout},
	}, nil
}

// createURL builds the url of the command from the host and the config
func (client *HTTPClient) createURL(host string, cmd string) string {
	scheme := "http://"
	if client.Config.UseHTTPS {
		scheme = "https://"
	}
	if !strings.Contains(host, ":") {
		host = host + ":" + client.Config.Port
	}
	return scheme + host + "/" + strings.TrimPrefix(cmd, "/")
}

// Get sends http get request for cmd to the host using the configured authentication
func (client *HTTPClient) Get(host string, cmd string) (*http.Response, error) {
	return client.do("GET", host, cmd, nil)
}

// Post sends http json post request for cmd to the host using the configured authentication
func (client *HTTPClient) Post(host string, cmd string, body []byte) (*http.Response, error) {
	return client.do("POST", host, cmd, body)
}

func (client *HTTPClient) do(method, host, cmd string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(method, client.createURL(host, cmd), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if len(client.Config.BasicAuth) > 0 {
		fields := strings.Split(client.Config.BasicAuth, ":")
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid format of basic auth entry '%v' expected 'user:pass'", client.Config.BasicAuth)
		}
		req.SetBasicAuth(fields[0], fields[1])
	}

	return client.http.Do(req)
}
