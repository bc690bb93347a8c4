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

package api

// EventLoop is implemented by the Controller, which processes events one
// at a time.
type EventLoop interface {
	// PushEvent adds the event into the queue for processing.
	// Blocking events must not be pushed from within the event loop.
	PushEvent(event Event) error
}

// Event is something that NFVO plugins react to: a change in the database,
// a resync request or a notification from one of the plugins.
type Event interface {
	// GetName returns a short name of the event.
	GetName() string

	// String returns a description of the event for logs and the event history.
	String() string

	// Method tells if the event should be handled by Resync or by Update.
	Method() EventMethodType

	// IsBlocking returns true if the producer waits for Done to be called.
	IsBlocking() bool

	// Done is called by the controller once the event has been processed.
	Done(error)
}

// UpdateEvent is implemented by events with the Update method.
type UpdateEvent interface {
	// TransactionType tells if changes of handlers should be reverted
	// when one of them fails.
	TransactionType() UpdateTransactionType

	// Direction is the order in which the handlers are approached.
	Direction() UpdateDirectionType
}

// EventHandler is implemented by plugins that react to events.
type EventHandler interface {
	// String identifies the handler in logs and in the event history.
	String() string

	// HandlesEvent selects the events the handler is interested in.
	HandlesEvent(event Event) bool

	// Resync re-builds the internal state of the handler from the full
	// snapshot of the database resources.
	Resync(event Event, resources ResourceData, resyncCount int) error

	// Update applies a single change. The returned description is recorded
	// in the event history.
	Update(event Event) (changeDescription string, err error)

	// Revert undoes the changes made by Update for RevertOnFailure events.
	Revert(event Event) error
}

// EventMethodType is either Resync or Update.
type EventMethodType int

const (
	// Resync events carry the complete state.
	Resync EventMethodType = iota

	// Update events carry a single change.
	Update
)

// String returns the name of the method.
func (m EventMethodType) String() string {
	if m == Resync {
		return "Resync"
	}
	return "Update"
}

// UpdateDirectionType is either Forward or Reverse.
type UpdateDirectionType int

const (
	// Forward iterates the handlers in the configured order.
	Forward UpdateDirectionType = iota

	// Reverse iterates the handlers in the reverse order.
	Reverse
)

// UpdateTransactionType is either BestEffort or RevertOnFailure.
type UpdateTransactionType int

const (
	// BestEffort continues with the remaining handlers after a failure.
	BestEffort UpdateTransactionType = iota

	// RevertOnFailure stops at the first failure and reverts the handlers
	// that already processed the event.
	RevertOnFailure
)
