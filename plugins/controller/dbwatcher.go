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

	"github.com/gogo/protobuf/proto"
	"github.com/juju/clock"
	"github.com/pkg/errors"

	"github.com/ligato/cn-infra/datasync"
	"github.com/ligato/cn-infra/db/keyval"
	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/controller/api"
	"github.com/contiv/nfvo/plugins/dbresources"
)

// key read to probe the remote DB connection
const healthCheckProbeKey = "/probe-etcd-connection"

var (
	// ErrClosedWatcher is returned when dbWatcher is used when it is already closed.
	ErrClosedWatcher = errors.New("dbWatcher was closed")
	// ErrResyncReqQueueFull is returned when queue for resync request is full.
	ErrResyncReqQueueFull = errors.New("queue with resync requests is full")
)

// dbWatcher feeds the event loop with the content of the remote DB:
// DBResync with a full snapshot after every (re)connect and ResourceChange
// for every watched change in between. The snapshot is mirrored into the
// local DB, which serves the startup resync when the remote DB does not
// connect in time.
//
// Everything below the channels is owned by the run go routine.
type dbWatcher struct {
	*dbWatcherArgs
	local *localMirror // nil without local DB

	firstConnect chan struct{}
	resyncReqs   chan bool // true for the fallback resync from the local DB
	changes      chan datasync.ProtoWatchResp

	remote      keyval.ProtoBroker
	remoteWatch keyval.ProtoWatcher
	stopWatch   chan string
	connected   bool
	resyncCount int
	revisions   map[string]revisionedValue // last processed value of every key

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// dbWatcherArgs collects input arguments for dbWatcher.
type dbWatcherArgs struct {
	log       logging.Logger
	clock     clock.Clock
	eventLoop api.EventLoop

	localDB  keyval.KvProtoPlugin
	remoteDB keyval.KvProtoPlugin

	resources []*api.DBResource

	delayLocalResync        time.Duration
	remoteDBProbingInterval time.Duration
}

func newDBWatcher(args *dbWatcherArgs) *dbWatcher {
	w := &dbWatcher{
		dbWatcherArgs: args,
		firstConnect:  make(chan struct{}, 1),
		resyncReqs:    make(chan bool, 10),
		changes:       make(chan datasync.ProtoWatchResp, 100),
		revisions:     make(map[string]revisionedValue),
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	if args.localDB != nil {
		w.local = &localMirror{broker: args.localDB.NewBroker(""), log: args.log}
	}

	w.wg.Add(1)
	go w.run()

	// called only once, reconnects are detected by probing
	args.remoteDB.OnConnect(func() error {
		select {
		case w.firstConnect <- struct{}{}:
		default:
		}
		return nil
	})
	return w
}

func (w *dbWatcher) run() {
	defer w.wg.Done()

	localResync := w.clock.After(w.delayLocalResync)
	var probe <-chan time.Time
	for {
		select {
		case <-w.ctx.Done():
			w.stopWatching()
			return

		case <-w.firstConnect:
			w.remote = w.remoteDB.NewBroker("")
			w.remoteWatch = w.remoteDB.NewWatcher("")
			w.probe()
			probe = w.clock.After(w.remoteDBProbingInterval)

		case <-probe:
			w.probe()
			probe = w.clock.After(w.remoteDBProbingInterval)

		case <-localResync:
			localResync = nil
			w.resync(true)

		case local := <-w.resyncReqs:
			w.resync(local)

		case change := <-w.changes:
			w.processChange(change)
		}
	}
}

// requestResync asks for a resync against the local or the remote DB.
func (w *dbWatcher) requestResync(local bool) error {
	select {
	case <-w.ctx.Done():
		return ErrClosedWatcher
	case w.resyncReqs <- local:
		return nil
	default:
		return ErrResyncReqQueueFull
	}
}

// probe checks the remote DB connection. Regained connection restarts
// the watch and resyncs.
func (w *dbWatcher) probe() {
	if _, _, err := w.remote.GetValue(healthCheckProbeKey, nil); err != nil {
		if w.connected {
			w.connected = false
			w.log.Warn("Lost connection to remote DB")
		}
		return
	}
	if w.connected {
		return
	}
	w.connected = true
	w.log.Info("Connection to remote DB was (re-)established")
	w.startWatching()
	w.resync(false)
}

func (w *dbWatcher) startWatching() {
	w.stopWatching()
	w.stopWatch = make(chan string)
	var prefixes []string
	for _, resource := range w.resources {
		prefixes = append(prefixes, resource.KeyPrefix)
	}
	if err := w.remoteWatch.Watch(w.onRemoteChange, w.stopWatch, prefixes...); err != nil {
		w.log.Errorf("Failed to start watching remote DB: %v", err)
	}
}

func (w *dbWatcher) stopWatching() {
	if w.stopWatch != nil {
		close(w.stopWatch)
		w.stopWatch = nil
	}
}

// onRemoteChange is called by the remote DB watcher.
func (w *dbWatcher) onRemoteChange(change datasync.ProtoWatchResp) {
	select {
	case w.changes <- change:
	default:
		w.log.Error("Failed to enqueue remote DB data change, requesting resync")
		w.retryResync()
	}
}

func (w *dbWatcher) retryResync() {
	if err := w.requestResync(false); err != nil {
		w.log.Errorf("Failed to request resync against remote DB: %v", err)
	}
}

// resync loads the snapshot of the local or the remote DB and pushes it
// into the event loop. The local DB is used only until the first resync.
func (w *dbWatcher) resync(local bool) {
	switch {
	case local && (w.resyncCount > 0 || w.connected):
		w.log.Debug("Skipping fallback resync against local DB")
		return
	case local && w.local == nil:
		w.log.Warn("Local DB is not available, waiting for remote DB")
		return
	case !local && !w.connected:
		w.log.Info("Unable to resync against remote DB, connection is not available")
		return
	}

	if local {
		snapshot, _, err := loadSnapshot(w.local.broker, w.resources, w.log)
		if err == nil {
			err = w.eventLoop.PushEvent(&api.DBResync{Resources: snapshot, Local: true})
		}
		if err != nil {
			w.log.Errorf("Resync from local DB has failed: %v", err)
			return
		}
		w.resyncCount++
		return
	}

	snapshot, revisions, err := loadSnapshot(w.remote, w.resources, w.log)
	if err == nil && w.local != nil {
		err = w.local.replace(snapshot)
	}
	if err == nil {
		err = w.eventLoop.PushEvent(&api.DBResync{Resources: snapshot})
	}
	if err != nil {
		w.log.Errorf("Resync from remote DB has failed: %v, requesting another resync", err)
		w.retryResync()
		return
	}
	w.revisions = revisions
	w.resyncCount++
}

// processChange turns a watched change into ResourceChange. Revisions
// already covered by the last resync are skipped.
func (w *dbWatcher) processChange(change datasync.ProtoWatchResp) {
	key := change.GetKey()
	resource := dbresources.GetResourceByKey(w.resources, key)
	if resource == nil {
		w.log.Debugf("Ignoring change of unknown key=%s", key)
		return
	}
	prev, hasPrev := w.revisions[key]
	if hasPrev && prev.revision >= change.GetRevision() {
		w.log.Debugf("Ignoring already processed revision for key=%s", key)
		return
	}

	var newValue proto.Message
	if change.GetChangeType() != datasync.Delete {
		if newValue = newResourceValue(resource); newValue == nil {
			w.log.Warnf("Unknown record type of resource %s", resource.Keyword)
			return
		}
		if err := change.GetValue(newValue); err != nil {
			w.log.Warnf("Failed to de-serialize new value for key %s: %v", key, err)
			return
		}
	}

	// the previous value known to the watcher takes precedence
	prevValue := prev.value
	if !hasPrev {
		if value := newResourceValue(resource); value != nil {
			if withPrev, err := change.GetPrevValue(value); err == nil && withPrev {
				prevValue = value
			}
		}
	}

	if newValue == nil {
		delete(w.revisions, key)
	} else {
		w.revisions[key] = revisionedValue{revision: change.GetRevision(), value: newValue}
	}
	if w.local != nil {
		w.local.apply(key, newValue)
	}

	err := w.eventLoop.PushEvent(&api.ResourceChange{
		Resource:  resource.Keyword,
		Key:       key,
		PrevValue: prevValue,
		NewValue:  newValue,
	})
	if err != nil {
		w.log.Errorf("Failed to push data change event: %v, requesting resync", err)
		w.retryResync()
	}
}

func (w *dbWatcher) close() {
	w.cancel()
	w.wg.Wait()
}
