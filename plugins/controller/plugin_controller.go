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
	"context"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/pkg/errors"

	"github.com/ligato/cn-infra/db/keyval"
	"github.com/ligato/cn-infra/health/statuscheck"
	"github.com/ligato/cn-infra/infra"
	"github.com/ligato/cn-infra/rpc/rest"
	"github.com/ligato/cn-infra/servicelabel"

	"github.com/contiv/nfvo/plugins/controller/api"
	"github.com/contiv/nfvo/plugins/dbresources"
)

const (
	// how many events can be buffered at most
	eventQueueSize = 1000

	// wait for the remote DB before the startup resync falls back to the local mirror
	defaultDelayLocalResync = 5 * time.Second

	// the agent is reported as broken if the startup resync does not come in time
	defaultStartupResyncDeadline = 30 * time.Second

	defaultRemoteDBProbingInterval = 3 * time.Second

	defaultPeriodicHealingInterval = time.Minute
	defaultDelayAfterErrorHealing  = 5 * time.Second

	defaultEventHistoryLimit = 1000

	// how long Close waits for the handlers to process the Shutdown event
	shutdownTimeout = 10 * time.Second
)

// Controller runs the single event loop of the NFVO agent. Changes of the
// watched database resources, healing resyncs and the shutdown notification
// are processed one at a time by the EventHandlers from Deps.
//
// Update events visit the handlers in the configured order (Forward) or in
// the opposite order (Reverse). When a RevertOnFailure update fails, the
// handlers which already applied it are asked to revert, last one first.
// A handler returns api.FatalError to stop the loop and api.AbortEventError
// to stop the processing of the event. Any failure which was not reverted
// schedules a healing resync.
//
// Events received before the startup DBResync are held back and replayed
// right after it.
type Controller struct {
	Deps

	config *Config

	watcher *dbWatcher
	dbView  api.ResourceData // last known content of the watched resources

	queue      chan api.Event
	held       []api.Event // waiting for the startup resync
	resyncs    int
	healingDue bool
	seq        uint64

	history *eventHistory

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Deps lists dependencies of the Controller.
type Deps struct {
	infra.PluginDeps

	StatusCheck  statuscheck.PluginStatusWriter
	ServiceLabel servicelabel.ReaderAPI
	HTTPHandlers rest.HTTPHandlers
	Clock        clock.Clock // wall clock by default

	// EventHandlers in the order of their dependencies.
	EventHandlers []api.EventHandler

	LocalDB  keyval.KvProtoPlugin
	RemoteDB keyval.KvProtoPlugin

	// Resources to watch, all NFVO resources by default.
	Resources []*api.DBResource
}

// Config holds the Controller configuration.
type Config struct {
	// startup resync
	DelayLocalResync      time.Duration `json:"delay-local-resync"`
	StartupResyncDeadline time.Duration `json:"startup-resync-deadline"`

	// healing
	EnablePeriodicHealing   bool          `json:"enable-periodic-healing"`
	PeriodicHealingInterval time.Duration `json:"periodic-healing-interval"`
	DelayAfterErrorHealing  time.Duration `json:"delay-after-error-healing"`

	// remote DB status
	RemoteDBProbingInterval time.Duration `json:"remotedb-probing-interval"`

	// history
	EventHistoryLimit int `json:"event-history-limit"`
}

var (
	// ErrClosedController is returned when Controller is used when it is already closed.
	ErrClosedController = errors.New("controller was closed")
	// ErrEventQueueFull is returned when queue for events is full.
	ErrEventQueueFull = errors.New("queue with events is full")
)

func defaultConfig() *Config {
	return &Config{
		DelayLocalResync:        defaultDelayLocalResync,
		StartupResyncDeadline:   defaultStartupResyncDeadline,
		RemoteDBProbingInterval: defaultRemoteDBProbingInterval,
		PeriodicHealingInterval: defaultPeriodicHealingInterval,
		DelayAfterErrorHealing:  defaultDelayAfterErrorHealing,
		EventHistoryLimit:       defaultEventHistoryLimit,
	}
}

// Init loads the configuration and starts the event loop.
func (c *Controller) Init() error {
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.queue = make(chan api.Event, eventQueueSize)
	c.dbView = make(api.ResourceData)
	if c.Resources == nil {
		c.Resources = dbresources.GetDBResources()
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}

	c.config = defaultConfig()
	if err := c.loadConfig(c.config); err != nil {
		c.Log.Error(err)
	}
	c.Log.Infof("Controller configuration: %+v", *c.config)
	c.history = newEventHistory(c.config.EventHistoryLimit)

	if c.StatusCheck != nil {
		c.StatusCheck.Register(c.PluginName, nil)
	}

	c.wg.Add(1)
	go c.eventLoop()

	c.registerHandlers()
	return nil
}

// AfterInit starts watching the database.
func (c *Controller) AfterInit() error {
	var label string
	if c.ServiceLabel != nil {
		label = c.ServiceLabel.GetAgentLabel()
	}
	c.Log.Infof("Starting DB watcher for agent %q", label)

	c.watcher = newDBWatcher(&dbWatcherArgs{
		log:                     c.Log.NewLogger("dbwatcher"),
		clock:                   c.Clock,
		eventLoop:               c,
		localDB:                 c.LocalDB,
		remoteDB:                c.RemoteDB,
		resources:               c.Resources,
		delayLocalResync:        c.config.DelayLocalResync,
		remoteDBProbingInterval: c.config.RemoteDBProbingInterval,
	})
	return nil
}

// PushEvent adds the given event into the queue for processing.
func (c *Controller) PushEvent(event api.Event) error {
	select {
	case <-c.ctx.Done():
		return ErrClosedController
	default:
	}
	select {
	case c.queue <- event:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// eventLoop processes the queued events until the controller is closed
// or a handler returns FatalError.
func (c *Controller) eventLoop() {
	defer c.wg.Done()

	deadline := c.Clock.After(c.config.StartupResyncDeadline)
	for {
		select {
		case <-c.ctx.Done():
			return

		case <-deadline:
			deadline = nil
			if c.resyncs == 0 {
				c.reportError(errors.Errorf("startup resync has not executed within %v",
					c.config.StartupResyncDeadline))
			}

		case event := <-c.queue:
			if err := c.receive(event); err != nil {
				c.reportError(err)
				return
			}
		}
	}
}

// receive processes the event together with the events held back until
// the startup resync. Only FatalError is returned.
func (c *Controller) receive(event api.Event) error {
	if c.resyncs == 0 {
		switch event.(type) {
		case *api.DBResync:
			if c.config.EnablePeriodicHealing {
				c.wg.Add(1)
				go c.periodicHealing()
			}
		case *api.Shutdown:
			return fatalOnly(c.process(event))
		default:
			c.held = append(c.held, event)
			return nil
		}
	}

	events := append([]api.Event{event}, c.held...)
	c.held = nil
	for _, ev := range events {
		if err := fatalOnly(c.process(ev)); err != nil {
			return err
		}
	}
	return nil
}

// process runs the event through the interested handlers and records
// the outcome in the history.
func (c *Controller) process(event api.Event) error {
	record := &EventRecord{
		SeqNum:          c.seq,
		ProcessingStart: c.Clock.Now(),
		Name:            event.GetName(),
		Description:     event.String(),
		Method:          event.Method(),
	}
	c.seq++

	var healing *api.HealingResync
	switch ev := event.(type) {
	case *api.DBResync:
		c.dbView = ev.Resources
	case *api.HealingResync:
		healing = ev
		if ev.Type == api.AfterError {
			c.healingDue = false
		}
	case *api.ResourceChange:
		c.applyChange(ev)
	}

	var err error
	if event.Method() == api.Resync {
		c.resyncs++
		handlers := c.handlersFor(event, api.Forward)
		c.logEventStart(record, handlers)
		err = c.resync(record, event, handlers)
	} else {
		update, isUpdate := event.(api.UpdateEvent)
		if !isUpdate {
			err = errors.Errorf("invalid update event: %s", event.GetName())
			c.Log.Error(err)
			event.Done(err)
			return err
		}
		handlers := c.handlersFor(event, update.Direction())
		c.logEventStart(record, handlers)
		err = c.update(record, event, update.TransactionType(), handlers)
	}

	record.ProcessingEnd = c.Clock.Now()
	c.logEventEnd(record)
	c.history.add(record)
	event.Done(err)

	if err == nil {
		return nil
	}
	if _, fatal := err.(*api.FatalError); fatal {
		return err
	}
	if healing != nil && healing.Type == api.AfterError {
		return api.NewFatalError(errors.Errorf(
			"healing has not been successful (prev error: %v, healing error: %v)", healing.Error, err))
	}
	if !c.healingDue {
		c.healingDue = true
		c.wg.Add(1)
		go c.scheduleHealing(err)
	}
	return err
}

// handlersFor returns the handlers interested in the event, in the order
// they should be visited.
func (c *Controller) handlersFor(event api.Event, direction api.UpdateDirectionType) []api.EventHandler {
	var handlers []api.EventHandler
	count := len(c.EventHandlers)
	for i := 0; i < count; i++ {
		handler := c.EventHandlers[i]
		if direction == api.Reverse {
			handler = c.EventHandlers[count-1-i]
		}
		if handler.HandlesEvent(event) {
			handlers = append(handlers, handler)
		}
	}
	return handlers
}

// resync passes the snapshot to every handler. A failure stops the event
// only if it is fatal or an abort.
func (c *Controller) resync(record *EventRecord, event api.Event, handlers []api.EventHandler) error {
	var lastErr error
	for _, handler := range handlers {
		err := handler.Resync(event, c.dbView, c.resyncs)
		record.addHandling(handler, false, "", err)
		if err == nil {
			continue
		}
		lastErr = err
		if stopsEvent(err) {
			break
		}
	}
	return lastErr
}

// update applies the change in the handlers. With RevertOnFailure the first
// failure reverts the handlers which already applied the change; only
// failures of the revert itself are then returned.
func (c *Controller) update(record *EventRecord, event api.Event, txnType api.UpdateTransactionType,
	handlers []api.EventHandler) error {

	var lastErr error
	for idx, handler := range handlers {
		change, err := handler.Update(event)
		record.addHandling(handler, false, change, err)
		if err == nil {
			continue
		}
		if _, fatal := err.(*api.FatalError); fatal {
			return err
		}
		if txnType == api.RevertOnFailure {
			return c.revert(record, event, handlers[:idx])
		}
		lastErr = err
		if stopsEvent(err) {
			break
		}
	}
	return lastErr
}

func (c *Controller) revert(record *EventRecord, event api.Event, applied []api.EventHandler) error {
	var lastErr error
	for i := len(applied) - 1; i >= 0; i-- {
		err := applied[i].Revert(event)
		record.addHandling(applied[i], true, "", err)
		if err == nil {
			continue
		}
		lastErr = err
		if _, fatal := err.(*api.FatalError); fatal {
			break
		}
	}
	return lastErr
}

// applyChange keeps the controller's view of the database up-to-date.
func (c *Controller) applyChange(change *api.ResourceChange) {
	kvs, known := c.dbView[change.Resource]
	if !known {
		kvs = make(api.KeyValuePairs)
		c.dbView[change.Resource] = kvs
	}
	if change.NewValue == nil {
		delete(kvs, change.Key)
		return
	}
	kvs[change.Key] = change.NewValue
}

// periodicHealing pushes healing resyncs in the configured interval.
func (c *Controller) periodicHealing() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.Clock.After(c.config.PeriodicHealingInterval):
			if err := c.PushEvent(&api.HealingResync{Type: api.Periodic}); err != nil {
				c.Log.Warnf("Failed to trigger periodic healing resync: %v", err)
			}
		}
	}
}

// scheduleHealing pushes a healing resync after a failed event.
func (c *Controller) scheduleHealing(afterErr error) {
	defer c.wg.Done()

	select {
	case <-c.ctx.Done():
		return
	case <-c.Clock.After(c.config.DelayAfterErrorHealing):
		err := c.PushEvent(&api.HealingResync{Type: api.AfterError, Error: afterErr})
		if err != nil {
			c.reportError(errors.Wrap(err, "failed to trigger healing resync"))
		}
	}
}

// Close lets the handlers stop their tasks and then stops the event loop
// and database watching.
func (c *Controller) Close() error {
	shutdown := api.NewShutdownEvent()
	if err := c.PushEvent(shutdown); err == nil {
		result := make(chan error, 1)
		go func() { result <- shutdown.Wait() }()
		select {
		case err = <-result:
			if err != nil {
				c.Log.Warnf("Shutdown of event handlers failed: %v", err)
			}
		case <-c.Clock.After(shutdownTimeout):
			c.Log.Warn("Timeout waiting for event handlers to shut down")
		}
	}
	if c.watcher != nil {
		c.watcher.close()
	}
	c.cancel()
	c.wg.Wait()
	return nil
}

func (c *Controller) loadConfig(config *Config) error {
	found, err := c.Cfg.LoadValue(config)
	if err != nil {
		return errors.Wrap(err, "failed to load controller configuration")
	}
	if !found {
		c.Log.Debugf("%v config not found", c.PluginName)
	}
	return nil
}

// reportError reports the agent as broken to the status check.
func (c *Controller) reportError(err error) {
	c.Log.Error(err)
	if c.StatusCheck != nil {
		c.StatusCheck.ReportStateChange(c.PluginName, statuscheck.Error, err)
	}
}

func stopsEvent(err error) bool {
	switch err.(type) {
	case *api.FatalError, *api.AbortEventError:
		return true
	}
	return false
}

func fatalOnly(err error) error {
	if _, fatal := err.(*api.FatalError); fatal {
		return err
	}
	return nil
}
