/*
 * Copyright 2025 Transmission Dynamics Authors
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

package transfer

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Transmission-Dynamics/i2c-transfer/pkg/i2c"
)

const (
	defaultWorkerExpiry        = 10 * time.Second
	defaultCompletionQueueHint = 64
	defaultCompletionBatch     = 16
	defaultMaxReadLength       = 1 << 20
)

// Config is used to tune the transfer runtime.
type Config struct {
	// WorkerPoolSize bounds the number of transfers executing at once.
	// Zero means unbounded, so I2CTransfer never waits for a free worker.
	// With a positive size a call blocks while every worker is busy.
	WorkerPoolSize int

	// WorkerExpiry is how long an idle worker goroutine is kept around.
	WorkerExpiry time.Duration

	// CompletionQueueHint is the initial capacity of the completion queue.
	CompletionQueueHint int64

	// CompletionBatch is the most completions the loop takes per wake-up.
	CompletionBatch int64

	// MaxReadLength is the largest read buffer the executor will allocate.
	// Larger requests fail with "Memory allocation failed".
	MaxReadLength uint32

	// Opener opens bus nodes. Nil selects the kernel i2c-dev opener.
	Opener i2c.Opener

	// Observers are told about every completed call, on the completion loop.
	Observers []Observer

	// Registerer, when set, receives the runtime's prometheus collectors.
	Registerer prometheus.Registerer
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		WorkerPoolSize:      0,
		WorkerExpiry:        defaultWorkerExpiry,
		CompletionQueueHint: defaultCompletionQueueHint,
		CompletionBatch:     defaultCompletionBatch,
		MaxReadLength:       defaultMaxReadLength,
	}
}

// VerifyConfig is used to verify the sanity of configuration.
func VerifyConfig(config *Config) error {
	if config.WorkerPoolSize < 0 {
		return fmt.Errorf("WorkerPoolSize must not be negative, got %d", config.WorkerPoolSize)
	}
	if config.WorkerExpiry <= 0 {
		return fmt.Errorf("WorkerExpiry must be positive, got %s", config.WorkerExpiry)
	}
	if config.CompletionQueueHint < 0 {
		return fmt.Errorf("CompletionQueueHint must not be negative, got %d", config.CompletionQueueHint)
	}
	if config.CompletionBatch <= 0 {
		return fmt.Errorf("CompletionBatch must be positive, got %d", config.CompletionBatch)
	}
	if config.MaxReadLength == 0 {
		return fmt.Errorf("MaxReadLength must be positive")
	}
	for i, o := range config.Observers {
		if o == nil {
			return fmt.Errorf("Observers[%d] is nil", i)
		}
	}
	return nil
}
