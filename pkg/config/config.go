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

// Package config loads JSON configuration files for wifimon services.
package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/carverauto/wifimon/pkg/logger"
)

var (
	errInvalidConfigPtr = errors.New("config must be a non-nil pointer")
	errLoadConfigFailed = errors.New("failed to load configuration")
)

// Validator is implemented by config types that can check their own contents.
type Validator interface {
	Validate() error
}

// Loader holds the configuration loading dependencies.
type Loader struct {
	fileLoader *FileConfigLoader
	logger     logger.Logger
}

// NewLoader initializes a Loader. A nil logger falls back to a test logger
// so config loading never needs logging wired first.
func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Loader{
		fileLoader: &FileConfigLoader{},
		logger:     log,
	}
}

// LoadAndValidate reads the file at path into cfg and runs its Validate
// method if it has one.
func (l *Loader) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errInvalidConfigPtr
	}

	if err := l.fileLoader.Load(ctx, path, cfg); err != nil {
		return fmt.Errorf("%w: %w", errLoadConfigFailed, err)
	}

	if validator, ok := cfg.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}

	l.logger.Debug().Str("path", path).Msg("Configuration loaded")

	return nil
}
