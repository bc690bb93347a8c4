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

package model

import (
	"testing"

	"github.com/onsi/gomega"
)

func TestParseKey(t *testing.T) {
	gomega.RegisterTestingT(t)

	keyword, id := ParseKey(NsdKey("ping-pong"))
	gomega.Expect(keyword).To(gomega.Equal(NsdKeyword))
	gomega.Expect(id).To(gomega.Equal("ping-pong"))

	keyword, id = ParseKey(VnfrKey("a/b"))
	gomega.Expect(keyword).To(gomega.Equal(VnfrKeyword))
	gomega.Expect(id).To(gomega.Equal("a/b"))

	keyword, id = ParseKey(NsrConfigKeyPrefix())
	gomega.Expect(keyword).To(gomega.BeEmpty())
	gomega.Expect(id).To(gomega.BeEmpty())

	keyword, _ = ParseKey("vpp/config/v2/interface/x")
	gomega.Expect(keyword).To(gomega.BeEmpty())
}
