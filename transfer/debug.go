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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type logger struct {
	name      string
	callDepth int
}

var (
	internalLogger = &logger{"", 4}
	poolLogger     = &logger{"worker pool", 4}
	level          atomic.Int32

	// outMu guards out and serializes log lines
	outMu sync.Mutex
	out   io.Writer = os.Stderr

	magenta = string([]byte{27, 91, 57, 53, 109}) // Trace
	green   = string([]byte{27, 91, 57, 50, 109}) // Debug
	blue    = string([]byte{27, 91, 57, 52, 109}) // Info
	yellow  = string([]byte{27, 91, 57, 51, 109}) // Warn
	red     = string([]byte{27, 91, 57, 49, 109}) // Error
	reset   = string([]byte{27, 91, 48, 109})

	colors = []string{
		magenta,
		green,
		blue,
		yellow,
		red,
	}

	levelName = []string{
		"Trace",
		"Debug",
		"Info",
		"Warn",
		"Error",
	}
)

const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
	levelNoPrint
)

// Exported log levels for SetLogLevel.
const (
	LogLevelTrace   = levelTrace
	LogLevelDebug   = levelDebug
	LogLevelInfo    = levelInfo
	LogLevelWarn    = levelWarn
	LogLevelError   = levelError
	LogLevelNoPrint = levelNoPrint
)

func init() {
	level.Store(levelWarn)
	if s := os.Getenv("I2C_TRANSFER_LOG_LEVEL"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= levelTrace && n <= levelNoPrint {
			level.Store(int32(n))
		}
	}
}

// SetLogLevel changes the internal logger's level; the default is Warn.
// The process env `I2C_TRANSFER_LOG_LEVEL` also sets it.
func SetLogLevel(l int) {
	if l >= levelTrace && l <= levelNoPrint {
		level.Store(int32(l))
	}
}

// SetLogOutput redirects internal logs, os.Stderr by default.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	outMu.Lock()
	out = w
	outMu.Unlock()
}

func (l *logger) errorf(format string, a ...interface{}) { l.output(levelError, format, a...) }
func (l *logger) warnf(format string, a ...interface{})  { l.output(levelWarn, format, a...) }
func (l *logger) infof(format string, a ...interface{})  { l.output(levelInfo, format, a...) }
func (l *logger) debugf(format string, a ...interface{}) { l.output(levelDebug, format, a...) }
func (l *logger) tracef(format string, a ...interface{}) { l.output(levelTrace, format, a...) }

// Printf lets ants report through the same sink.
func (l *logger) Printf(format string, a ...interface{}) { l.output(levelWarn, format, a...) }

func (l *logger) output(lv int, format string, a ...interface{}) {
	if int(level.Load()) > lv {
		return
	}
	line := fmt.Sprintf(l.prefix(lv)+format+reset+"\n", a...)
	outMu.Lock()
	_, err := io.WriteString(out, line)
	outMu.Unlock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger %s failed: %v\n", levelName[lv], err)
	}
}

func (l *logger) prefix(level int) string {
	var buffer [64]byte
	buf := bytes.NewBuffer(buffer[:0])
	_, _ = buf.WriteString(colors[level])
	_, _ = buf.WriteString(levelName[level])
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(time.Now().Format("2006-01-02 15:04:05.999999"))
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.location())
	_ = buf.WriteByte(' ')
	if l.name != "" {
		_, _ = buf.WriteString(l.name)
		_ = buf.WriteByte(' ')
	}
	return buf.String()
}

func (l *logger) location() string {
	_, file, line, ok := runtime.Caller(l.callDepth)
	if !ok {
		file = "???"
		line = 0
	}
	file = filepath.Base(file)
	return file + ":" + strconv.Itoa(line)
}
