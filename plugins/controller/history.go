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
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/controller/api"
)

// event-history query arguments, by precedence:
//   - seq-num
//   - since, until (Unix timestamps)
//   - from, to (sequence numbers)
//   - first (max. number of oldest records)
//   - last (max. number of latest records)
const (
	seqNumArg = "seq-num"
	sinceArg  = "since"
	untilArg  = "until"
	fromArg   = "from"
	toArg     = "to"
	firstArg  = "first"
	lastArg   = "last"
)

// errNoSuchEvent is returned for seq-num which is not in the history.
var errNoSuchEvent = errors.New("event with such sequence number is not recorded")

// EventRecord is a record of a processed event, available via REST.
type EventRecord struct {
	SeqNum          uint64
	ProcessingStart time.Time
	ProcessingEnd   time.Time
	Name            string
	Description     string
	Method          api.EventMethodType
	Handlers        []*EventHandlingRecord
}

// EventHandlingRecord is a record of an event being handled by a given handler.
type EventHandlingRecord struct {
	Handler  string
	Revert   bool
	Change   string // change description for update events
	Error    error  `json:"-"`
	ErrorStr string // marshallable form of Error
}

func (r *EventRecord) addHandling(handler api.EventHandler, revert bool, change string, err error) {
	handling := &EventHandlingRecord{
		Handler: handler.String(),
		Revert:  revert,
		Change:  change,
		Error:   err,
	}
	if err != nil {
		handling.ErrorStr = err.Error()
	}
	r.Handlers = append(r.Handlers, handling)
}

// eventHistory keeps the most recent processed events.
type eventHistory struct {
	sync.Mutex
	limit   int // unlimited if <= 0
	records []*EventRecord
}

func newEventHistory(limit int) *eventHistory {
	return &eventHistory{limit: limit}
}

func (h *eventHistory) add(record *EventRecord) {
	h.Lock()
	defer h.Unlock()

	h.records = append(h.records, record)
	if h.limit > 0 && len(h.records) > h.limit {
		h.records = append([]*EventRecord{}, h.records[len(h.records)-h.limit:]...)
	}
}

func (h *eventHistory) len() int {
	h.Lock()
	defer h.Unlock()
	return len(h.records)
}

// query selects records based on the event-history arguments.
func (h *eventHistory) query(args url.Values) ([]*EventRecord, error) {
	nums := make(map[string]int)
	for _, arg := range []string{seqNumArg, fromArg, toArg, firstArg, lastArg} {
		if param := args.Get(arg); param != "" {
			value, err := strconv.Atoi(param)
			if err != nil || value < 0 {
				return nil, errors.Errorf("invalid value of %s: %q", arg, param)
			}
			nums[arg] = value
		}
	}
	times := make(map[string]time.Time)
	for _, arg := range []string{sinceArg, untilArg} {
		if param := args.Get(arg); param != "" {
			sec, err := strconv.ParseInt(param, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid value of %s", arg)
			}
			times[arg] = time.Unix(sec, 0)
		}
	}

	h.Lock()
	defer h.Unlock()

	if seqNum, ok := nums[seqNumArg]; ok {
		for _, record := range h.records {
			if record.SeqNum == uint64(seqNum) {
				return []*EventRecord{record}, nil
			}
		}
		return nil, errNoSuchEvent
	}

	if len(times) > 0 {
		since, until := times[sinceArg], times[untilArg]
		return h.filter(func(record *EventRecord) bool {
			return (since.IsZero() || !record.ProcessingEnd.Before(since)) &&
				(until.IsZero() || !record.ProcessingStart.After(until))
		}), nil
	}

	from, hasFrom := nums[fromArg]
	to, hasTo := nums[toArg]
	if hasFrom || hasTo {
		return h.filter(func(record *EventRecord) bool {
			return (!hasFrom || record.SeqNum >= uint64(from)) &&
				(!hasTo || record.SeqNum <= uint64(to))
		}), nil
	}

	count := len(h.records)
	if first, ok := nums[firstArg]; ok {
		if first > count {
			first = count
		}
		return append([]*EventRecord{}, h.records[:first]...), nil
	}
	if last, ok := nums[lastArg]; ok {
		if last > count {
			last = count
		}
		return append([]*EventRecord{}, h.records[count-last:]...), nil
	}
	return append([]*EventRecord{}, h.records...), nil
}

// filter assumes the history is locked.
func (h *eventHistory) filter(match func(record *EventRecord) bool) []*EventRecord {
	var selected []*EventRecord
	for _, record := range h.records {
		if match(record) {
			selected = append(selected, record)
		}
	}
	return selected
}
