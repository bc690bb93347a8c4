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
	"testing"

	"github.com/onsi/gomega"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

func TestVlrFailureFailsNsr(t *testing.T) {
	for name, outcome := range map[string]vlrOutcome{"failed": vlrFailed, "no result": vlrNoResult} {
		env := newTestEnv(t)
		env.vlrOutcomes["vld-data"] = outcome
		nsd := testNsd(false)
		env.setupCatalog(nsd)
		gomega.Expect(env.put(testNsrConfig(nsd.Id))).To(gomega.Succeed())

		gomega.Eventually(func() model.NsrState { return env.state(testNsrID) }, waitTimeout).
			Should(gomega.Equal(model.NsrState_FAILED), name)

		nsr, _ := env.m.GetNsr(testNsrID)
		var description string
		for _, event := range nsr.OperationalEvents {
			if event.Event == "instantiation-failed" {
				description = event.Description
			}
		}
		gomega.Expect(description).To(gomega.ContainSubstring("NSR "+testNsrID+": instantiation of"), name)

		// VNFs are not started once a virtual link failed
		gomega.Expect(env.backend.Calls()).To(gomega.ContainElement("InstantiateVl ns.mgmt"), name)
		gomega.Expect(env.backend.Calls()).ToNot(gomega.ContainElement("InstantiateVl ns.data"), name)
		gomega.Expect(env.backend.Calls()).ToNot(gomega.ContainElement("InstantiateVnf ns.ping.1"), name)
		env.close()
	}
}
