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
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/onsi/gomega"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/mock/broker"
	"github.com/contiv/nfvo/plugins/controller/api"
	"github.com/contiv/nfvo/plugins/dbresources"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

type handlerCall struct {
	handler string
	method  string
	event   string
}

// callLog is shared between mock handlers to verify the order of calls.
type callLog struct {
	sync.Mutex
	calls []handlerCall
}

func (l *callLog) add(call handlerCall) {
	l.Lock()
	defer l.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) get() []handlerCall {
	l.Lock()
	defer l.Unlock()
	return append([]handlerCall{}, l.calls...)
}

type mockHandler struct {
	name      string
	log       *callLog
	updateErr error
	resources api.ResourceData
}

func (h *mockHandler) String() string {
	return h.name
}

func (h *mockHandler) HandlesEvent(event api.Event) bool {
	if change, isChange := event.(*api.ResourceChange); isChange {
		// handlers only see config changes
		return change.Resource != model.VnfrKeyword
	}
	return true
}

func (h *mockHandler) Resync(event api.Event, resources api.ResourceData, resyncCount int) error {
	h.resources = resources
	h.log.add(handlerCall{handler: h.name, method: "resync", event: event.GetName()})
	return nil
}

func (h *mockHandler) Update(event api.Event) (string, error) {
	h.log.add(handlerCall{handler: h.name, method: "update", event: event.GetName()})
	return "updated by " + h.name, h.updateErr
}

func (h *mockHandler) Revert(event api.Event) error {
	h.log.add(handlerCall{handler: h.name, method: "revert", event: event.GetName()})
	return nil
}

// revertEvent is an update event requiring revert on failure.
type revertEvent struct {
	done chan error
}

func (ev *revertEvent) GetName() string                            { return "Revert Event" }
func (ev *revertEvent) String() string                             { return ev.GetName() }
func (ev *revertEvent) Method() api.EventMethodType                { return api.Update }
func (ev *revertEvent) IsBlocking() bool                           { return true }
func (ev *revertEvent) Done(err error)                             { ev.done <- err }
func (ev *revertEvent) TransactionType() api.UpdateTransactionType { return api.RevertOnFailure }
func (ev *revertEvent) Direction() api.UpdateDirectionType         { return api.Forward }

func newTestController(t *testing.T, handlers ...api.EventHandler) *Controller {
	gomega.RegisterTestingT(t)
	c := NewPlugin(UseDeps(func(deps *Deps) {
		deps.StatusCheck = nil
		deps.HTTPHandlers = nil
		deps.EventHandlers = handlers
	}))
	c.Log = logging.ForPlugin("controller-test")
	gomega.Expect(c.Init()).To(gomega.Succeed())
	return c
}

func TestStartupResyncDeadline(t *testing.T) {
	gomega.RegisterTestingT(t)
	clk := testclock.NewClock(time.Unix(0, 0))
	c := NewPlugin(UseDeps(func(deps *Deps) {
		deps.StatusCheck = nil
		deps.HTTPHandlers = nil
		deps.Clock = clk
	}))
	c.Log = logging.ForPlugin("controller-test")
	gomega.Expect(c.Init()).To(gomega.Succeed())

	// the late resync is still processed after the missed deadline
	gomega.Expect(clk.WaitAdvance(defaultStartupResyncDeadline, time.Second, 1)).To(gomega.Succeed())
	gomega.Expect(c.PushEvent(&api.DBResync{Resources: api.ResourceData{}})).To(gomega.Succeed())
	gomega.Eventually(c.history.len).Should(gomega.Equal(1))

	// the shutdown timeout is measured by the test clock
	done := make(chan error)
	go func() { done <- c.Close() }()
	gomega.Eventually(done).Should(gomega.Receive(gomega.BeNil()))
}

func TestEventsDelayedUntilStartupResync(t *testing.T) {
	log := &callLog{}
	h1 := &mockHandler{name: "h1", log: log}
	h2 := &mockHandler{name: "h2", log: log}
	c := newTestController(t, h1, h2)
	defer c.Close()

	nsdKey := model.NsdKey("ping-pong")
	gomega.Expect(c.PushEvent(&api.ResourceChange{
		Resource: model.NsdKeyword,
		Key:      nsdKey,
		NewValue: &model.Nsd{Id: "ping-pong"},
	})).To(gomega.Succeed())

	// no resync yet
	time.Sleep(50 * time.Millisecond)
	gomega.Expect(log.get()).To(gomega.BeEmpty())

	gomega.Expect(c.PushEvent(&api.DBResync{
		Resources: api.ResourceData{model.NsdKeyword: api.KeyValuePairs{}},
	})).To(gomega.Succeed())

	gomega.Eventually(log.get).Should(gomega.HaveLen(4))
	gomega.Expect(log.get()).To(gomega.Equal([]handlerCall{
		{handler: "h1", method: "resync", event: "Database Resync"},
		{handler: "h2", method: "resync", event: "Database Resync"},
		{handler: "h1", method: "update", event: "Resource Change"},
		{handler: "h2", method: "update", event: "Resource Change"},
	}))

	// controller keeps its view of the database up-to-date
	gomega.Eventually(c.history.len).Should(gomega.Equal(2))
	gomega.Expect(h2.resources[model.NsdKeyword]).To(gomega.HaveKey(nsdKey))
}

func TestHandlerFiltering(t *testing.T) {
	log := &callLog{}
	c := newTestController(t, &mockHandler{name: "h1", log: log})
	defer c.Close()

	gomega.Expect(c.PushEvent(&api.DBResync{Resources: api.ResourceData{}})).To(gomega.Succeed())
	gomega.Expect(c.PushEvent(&api.ResourceChange{
		Resource: model.VnfrKeyword,
		Key:      model.VnfrKey("vnfr-1"),
		NewValue: &model.Vnfr{Id: "vnfr-1"},
	})).To(gomega.Succeed())

	gomega.Eventually(c.history.len).Should(gomega.Equal(2))
	gomega.Expect(log.get()).To(gomega.HaveLen(1))
}

func TestRevertOnFailure(t *testing.T) {
	log := &callLog{}
	h1 := &mockHandler{name: "h1", log: log}
	h2 := &mockHandler{name: "h2", log: log, updateErr: errors.New("failed")}
	h3 := &mockHandler{name: "h3", log: log}
	c := newTestController(t, h1, h2, h3)
	defer c.Close()

	gomega.Expect(c.PushEvent(&api.DBResync{Resources: api.ResourceData{}})).To(gomega.Succeed())
	ev := &revertEvent{done: make(chan error, 1)}
	gomega.Expect(c.PushEvent(ev)).To(gomega.Succeed())

	var err error
	gomega.Eventually(ev.done).Should(gomega.Receive(&err))
	// reverted successfully -> no error
	gomega.Expect(err).ToNot(gomega.HaveOccurred())

	calls := log.get()
	gomega.Expect(calls[3:]).To(gomega.Equal([]handlerCall{
		{handler: "h1", method: "update", event: "Revert Event"},
		{handler: "h2", method: "update", event: "Revert Event"},
		{handler: "h1", method: "revert", event: "Revert Event"},
	}))
}

func TestEventHistoryQuery(t *testing.T) {
	gomega.RegisterTestingT(t)
	h := newEventHistory(3)
	start := time.Unix(1000, 0)
	for i := 0; i < 5; i++ {
		h.add(&EventRecord{
			SeqNum:          uint64(i),
			ProcessingStart: start.Add(time.Duration(i) * time.Minute),
			ProcessingEnd:   start.Add(time.Duration(i)*time.Minute + time.Second),
		})
	}
	// limited to the last 3 records
	gomega.Expect(h.records).To(gomega.HaveLen(3))
	gomega.Expect(h.records[0].SeqNum).To(gomega.BeEquivalentTo(2))

	history, err := h.query(url.Values{seqNumArg: {"3"}})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(history).To(gomega.HaveLen(1))
	gomega.Expect(history[0].SeqNum).To(gomega.BeEquivalentTo(3))

	_, err = h.query(url.Values{seqNumArg: {"0"}})
	gomega.Expect(err).To(gomega.Equal(errNoSuchEvent))

	_, err = h.query(url.Values{firstArg: {"x"}})
	gomega.Expect(err).To(gomega.HaveOccurred())

	history, err = h.query(url.Values{fromArg: {"3"}})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(history).To(gomega.HaveLen(2))

	history, err = h.query(url.Values{sinceArg: {"1180"}})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(history).To(gomega.HaveLen(2))

	history, err = h.query(url.Values{sinceArg: {"1000"}, untilArg: {"1150"}})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(history).To(gomega.HaveLen(1))

	history, err = h.query(url.Values{firstArg: {"1"}})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(history[0].SeqNum).To(gomega.BeEquivalentTo(2))

	history, err = h.query(url.Values{lastArg: {"10"}})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(history).To(gomega.HaveLen(3))
}

func TestLocalMirror(t *testing.T) {
	gomega.RegisterTestingT(t)
	db := broker.NewMockBroker()
	mirror := &localMirror{broker: db, log: logging.ForPlugin("mirror-test")}

	gomega.Expect(db.Put(model.NsdKey("stale"), &model.Nsd{Id: "stale"})).To(gomega.Succeed())
	gomega.Expect(mirror.replace(api.ResourceData{
		model.NsdKeyword: api.KeyValuePairs{model.NsdKey("nsd-1"): &model.Nsd{Id: "nsd-1"}},
		model.NsrKeyword: api.KeyValuePairs{model.NsrKey("nsr-1"): &model.Nsr{Id: "nsr-1"}},
	})).To(gomega.Succeed())
	gomega.Expect(db.Keys()).To(gomega.ConsistOf(model.NsdKey("nsd-1"), model.NsrKey("nsr-1")))

	mirror.apply(model.NsrKey("nsr-1"), nil)
	mirror.apply(model.VnfrKey("vnfr-1"), &model.Vnfr{Id: "vnfr-1"})
	gomega.Expect(db.Keys()).To(gomega.ConsistOf(model.NsdKey("nsd-1"), model.VnfrKey("vnfr-1")))
}

func TestLoadSnapshot(t *testing.T) {
	gomega.RegisterTestingT(t)
	db := broker.NewMockBroker()
	gomega.Expect(db.Put(model.NsdKey("nsd-1"), &model.Nsd{Id: "nsd-1", Name: "ping-pong"})).To(gomega.Succeed())
	gomega.Expect(db.Put(model.VnfrKey("vnfr-1"), &model.Vnfr{Id: "vnfr-1"})).To(gomega.Succeed())
	gomega.Expect(db.Put("/unrelated/key", &model.Nsd{Id: "other"})).To(gomega.Succeed())

	snapshot, revisions, err := loadSnapshot(db, dbresources.GetDBResources(), logging.ForPlugin("snapshot-test"))
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(snapshot).To(gomega.HaveLen(len(dbresources.GetDBResources())))
	gomega.Expect(snapshot[model.NsdKeyword]).To(gomega.HaveLen(1))
	gomega.Expect(snapshot[model.NsdKeyword][model.NsdKey("nsd-1")].(*model.Nsd).Name).To(gomega.Equal("ping-pong"))
	gomega.Expect(snapshot[model.VnfrKeyword]).To(gomega.HaveKey(model.VnfrKey("vnfr-1")))
	gomega.Expect(snapshot[model.NsrKeyword]).To(gomega.BeEmpty())
	gomega.Expect(revisions).To(gomega.HaveLen(2))
	gomega.Expect(revisions[model.VnfrKey("vnfr-1")].revision).To(gomega.BeNumerically(">",
		revisions[model.NsdKey("nsd-1")].revision))
}
