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
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorText(t *testing.T) {
	err := failure(KindDeviceOpen, msgOpenBus, fmt.Errorf("open /dev/i2c-9: %w", syscall.ENOENT))
	assert.Equal(t, "Failed to open the I2C bus", err.Error())
	assert.ErrorIs(t, err, syscall.ENOENT)
	assert.ErrorIs(t, err, ErrOpenBus)
	assert.NotErrorIs(t, err, ErrTransfer)
	assert.Equal(t, "DeviceOpenFailure", err.Kind.String())
}

func TestErrorKindWildcard(t *testing.T) {
	err := invalidArgument(msgReadLength)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, invalidArgument(msgBus))
	assert.Equal(t, KindInvalidArgument, KindOf(fmt.Errorf("call: %w", err)))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
	assert.Equal(t, "Unknown", Kind(0).String())
}
