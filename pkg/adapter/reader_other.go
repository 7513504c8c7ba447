//go:build !linux

/*
 * Copyright 2026 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package adapter

import "context"

// ProcReader is only implemented on Linux.
type ProcReader struct {
	iface string
}

func NewProcReader(iface string) (*ProcReader, error) {
	return nil, ErrUnsupportedPlatform
}

func (r *ProcReader) Interface() string {
	return r.iface
}

func (r *ProcReader) Read(_ context.Context) (*Reading, error) {
	return nil, ErrUnsupportedPlatform
}
