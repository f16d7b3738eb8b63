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
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DebugTestSuite struct {
	suite.Suite
	out bytes.Buffer
}

func (s *DebugTestSuite) SetupTest() {
	s.out.Reset()
	SetLogOutput(&s.out)
}

func (s *DebugTestSuite) TearDownTest() {
	SetLogOutput(nil)
	SetLogLevel(LogLevelWarn)
}

func (s *DebugTestSuite) TestLogColor() {
	SetLogLevel(LogLevelTrace)

	internalLogger.tracef("this is tracef %s", "hello world")
	internalLogger.debugf("this is debugf %s", "hello world")
	internalLogger.infof("this is infof %s", "hello world")
	internalLogger.warnf("this is warnf %s", "hello world")
	internalLogger.errorf("this is errorf %s", "hello world")
	poolLogger.Printf("this is Printf %s", "hello world")

	lines := strings.Split(strings.TrimSpace(s.out.String()), "\n")
	s.Require().Len(lines, 6)
	for i, name := range []string{"Trace", "Debug", "Info", "Warn", "Error"} {
		s.Contains(lines[i], colors[i]+name)
		s.Contains(lines[i], "debug_test.go:")
		s.True(strings.HasSuffix(lines[i], "hello world"+reset))
	}
	s.Contains(lines[5], "worker pool this is Printf")
}

func (s *DebugTestSuite) TestLevelFilter() {
	SetLogLevel(LogLevelError)
	internalLogger.warnf("dropped")
	internalLogger.errorf("kept")
	s.NotContains(s.out.String(), "dropped")
	s.Contains(s.out.String(), "kept")

	SetLogLevel(LogLevelNoPrint)
	internalLogger.errorf("silent")
	s.NotContains(s.out.String(), "silent")

	// out of range levels are ignored
	SetLogLevel(42)
	internalLogger.errorf("still silent")
	s.NotContains(s.out.String(), "still silent")
}

func (s *DebugTestSuite) TestConcurrentConfiguration() {
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				internalLogger.errorf("line %d", k)
			}
		}()
	}
	for k := 0; k < 100; k++ {
		SetLogLevel(k % (LogLevelNoPrint + 1))
		if k%2 == 0 {
			SetLogOutput(io.Discard)
		} else {
			SetLogOutput(&s.out)
		}
	}
	wg.Wait()
}

func TestDebugTestSuite(t *testing.T) {
	suite.Run(t, new(DebugTestSuite))
}
