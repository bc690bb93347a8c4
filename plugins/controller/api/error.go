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

// FatalError tells Controller to abort the event loop and report the agent
// as broken to the status check.
type FatalError struct {
	origErr error
}

// NewFatalError wraps the error as fatal.
func NewFatalError(origErr error) error {
	return &FatalError{origErr: origErr}
}

// Error delegates the call to the underlying error.
func (e *FatalError) Error() string {
	return e.origErr.Error()
}

// GetOriginalError returns the underlying error.
func (e *FatalError) GetOriginalError() error {
	return e.origErr
}

// AbortEventError tells Controller to stop processing the event (and to revert
// for RevertOnFailure updates). A healing resync follows.
type AbortEventError struct {
	origErr error
}

// NewAbortEventError wraps the error as an abort request.
func NewAbortEventError(origErr error) error {
	return &AbortEventError{origErr: origErr}
}

// Error delegates the call to the underlying error.
func (e *AbortEventError) Error() string {
	return e.origErr.Error()
}

// GetOriginalError returns the underlying error.
func (e *AbortEventError) GetOriginalError() error {
	return e.origErr
}
