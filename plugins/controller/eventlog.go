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

package controller

import (
	"strings"
	"time"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/controller/api"
)

// logEventStart logs the event about to be processed. Multi-line descriptions
// are logged in full at the debug level only.
func (c *Controller) logEventStart(record *EventRecord, handlers []api.EventHandler) {
	var names []string
	for _, handler := range handlers {
		names = append(names, handler.String())
	}
	log := c.Log.WithFields(logging.Fields{
		"seq-num":  record.SeqNum,
		"method":   record.Method.String(),
		"handlers": strings.Join(names, ","),
	})
	lines := strings.SplitN(record.Description, "\n", 2)
	log.Infof("Processing event: %s", lines[0])
	if len(lines) > 1 {
		log.Debugf("Event details:\n%s", lines[1])
	}
}

// logEventEnd logs the outcome of the event processing.
func (c *Controller) logEventEnd(record *EventRecord) {
	var handledBy, revertedBy []string
	for _, handling := range record.Handlers {
		if handling.Revert {
			revertedBy = append(revertedBy, handling.Handler)
		} else {
			handledBy = append(handledBy, handling.Handler)
		}
	}
	fields := logging.Fields{
		"seq-num": record.SeqNum,
		"took":    record.ProcessingEnd.Sub(record.ProcessingStart).Round(time.Millisecond).String(),
	}
	if len(handledBy) > 0 {
		fields["handled-by"] = strings.Join(handledBy, ",")
	}
	if len(revertedBy) > 0 {
		fields["reverted-by"] = strings.Join(revertedBy, ",")
	}
	log := c.Log.WithFields(fields)

	for _, handling := range record.Handlers {
		switch {
		case handling.Error != nil && handling.Revert:
			log.Errorf("%s failed to revert: %v", handling.Handler, handling.Error)
		case handling.Error != nil:
			log.Warnf("%s failed: %v", handling.Handler, handling.Error)
		case handling.Change != "":
			log.Debugf("%s: %s", handling.Handler, handling.Change)
		}
	}
	log.Infof("Finalized event: %s", record.Name)
}
