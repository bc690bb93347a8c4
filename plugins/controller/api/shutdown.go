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

// Shutdown is pushed by the controller when the agent is being closed.
// Handlers use it to stop their background tasks while the event loop
// is still running.
type Shutdown struct {
	result chan error
}

// NewShutdownEvent creates a new Shutdown event.
func NewShutdownEvent() *Shutdown {
	return &Shutdown{
		result: make(chan error, 1),
	}
}

// GetName returns name of the Shutdown event.
func (ev *Shutdown) GetName() string {
	return "Shutdown"
}

// String describes Shutdown event.
func (ev *Shutdown) String() string {
	return ev.GetName()
}

// Method is Update.
func (ev *Shutdown) Method() EventMethodType {
	return Update
}

// TransactionType is BestEffort.
func (ev *Shutdown) TransactionType() UpdateTransactionType {
	return BestEffort
}

// Direction is Reverse, dependent handlers stop first.
func (ev *Shutdown) Direction() UpdateDirectionType {
	return Reverse
}

// IsBlocking returns true.
func (ev *Shutdown) IsBlocking() bool {
	return true
}

// Done propagates the result to the producer.
func (ev *Shutdown) Done(err error) {
	ev.result <- err
}

// Wait waits for the result of the shutdown event.
func (ev *Shutdown) Wait() error {
	return <-ev.result
}
