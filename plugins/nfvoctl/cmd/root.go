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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contiv/nfvo/plugins/nfvoctl/cmdimpl"
	"github.com/contiv/nfvo/plugins/nfvoctl/remote"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

var (
	host           string
	httpConfigFile string
	applyFile      string
)

var cmdApply = &cobra.Command{
	Use:   "apply -f file",
	Short: "Create or replace the configuration records of the YAML file in one transaction",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.CreateHTTPClient(httpConfigFile)
		if err != nil {
			return err
		}
		return cmdimpl.ApplyFile(os.Stdout, client, host, applyFile)
	},
}

var cmdDelete = &cobra.Command{
	Use: "delete kind id [id...]",
	Short: fmt.Sprintf("Delete configuration records, kind is one of %s, %s, %s, %s, %s",
		model.NsrConfigKeyword, model.NsdKeyword, model.VnfdKeyword,
		model.CloudAccountKeyword, model.SdnAccountKeyword),
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.CreateHTTPClient(httpConfigFile)
		if err != nil {
			return err
		}
		return cmdimpl.DeleteRecords(os.Stdout, client, host, args[0], args[1:])
	},
}

var cmdGet = &cobra.Command{
	Use:   "get",
	Short: "Display network services and descriptors",
}

var cmdGetNsr = &cobra.Command{
	Use:   "nsr [id]",
	Short: "Display all network service records or one record with its VNFRs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.CreateHTTPClient(httpConfigFile)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return cmdimpl.PrintNsrs(os.Stdout, client, host)
		}
		return cmdimpl.PrintNsr(os.Stdout, client, host, args[0])
	},
}

var cmdGetNsd = &cobra.Command{
	Use:   "nsd",
	Short: "Display the NSD catalog",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.CreateHTTPClient(httpConfigFile)
		if err != nil {
			return err
		}
		return cmdimpl.PrintNsds(os.Stdout, client, host)
	},
}

var cmdEvents = &cobra.Command{
	Use:   "events nsr-id",
	Short: "Display operational events of the network service record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.CreateHTTPClient(httpConfigFile)
		if err != nil {
			return err
		}
		return cmdimpl.PrintEvents(os.Stdout, client, host, args[0])
	},
}

// Execute will execute the command nfvoctl
func Execute() {
	var rootCmd = &cobra.Command{Use: "nfvoctl", SilenceUsage: true, SilenceErrors: true}
	rootCmd.PersistentFlags().StringVarP(&host, "server", "s", "localhost", "host (and port) of the NFVO agent")
	rootCmd.PersistentFlags().StringVar(&httpConfigFile, "http-config", "", "YAML config of the HTTP client")

	cmdApply.Flags().StringVarP(&applyFile, "file", "f", "", "YAML file with the configuration records")
	cmdApply.MarkFlagRequired("file")

	cmdGet.AddCommand(cmdGetNsr)
	cmdGet.AddCommand(cmdGetNsd)
	rootCmd.AddCommand(cmdApply)
	rootCmd.AddCommand(cmdDelete)
	rootCmd.AddCommand(cmdGet)
	rootCmd.AddCommand(cmdEvents)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
