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

package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Transmission-Dynamics/i2c-transfer/pkg/i2c"
	"github.com/Transmission-Dynamics/i2c-transfer/transfer"
)

const envPrefix = "i2c_transfer"

type appConfig struct {
	Bus         string
	Addr        int32
	TenBit      bool
	Write       []byte
	Read        uint32
	Repeat      int
	Interval    time.Duration
	AdminAddr   string
	Workers     int
	OpenRetries int
	LogLevel    int
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("i2ctransfer", pflag.ContinueOnError)
	fs.String("config", "", "optional config file (yaml, json or toml)")
	fs.String("bus", "/dev/i2c-1", "bus device node")
	fs.String("addr", "0x54", "target address, decimal or 0x-prefixed")
	fs.Bool("ten-bit", false, "address the target with 10-bit addressing")
	fs.String("write", "04", "hex bytes written before the read")
	fs.Uint32("read", 3, "number of bytes to read")
	fs.Int("repeat", 1, "number of transfers, 0 repeats until interrupted")
	fs.Duration("interval", time.Second, "pause between repeated transfers")
	fs.String("admin-addr", "", "serve /metrics, /live and /ready on this address")
	fs.Int("workers", 0, "worker pool size, 0 is unbounded")
	fs.Int("open-retries", i2c.DefaultOpenRetries, "retries of an interrupted open")
	fs.Int("log-level", transfer.LogLevelWarn, "0 trace, 1 debug, 2 info, 3 warn, 4 error, 5 silent")
	return fs
}

// loadConfig parses args into fs and resolves every setting from flags,
// I2C_TRANSFER_* environment variables and the optional config file, in
// that order of precedence.
func loadConfig(fs *pflag.FlagSet, args []string) (appConfig, error) {
	if err := fs.Parse(args); err != nil {
		return appConfig{}, err
	}
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return appConfig{}, fmt.Errorf("bind flags: %w", err)
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return appConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	addr, err := parseAddr(v.GetString("addr"))
	if err != nil {
		return appConfig{}, err
	}
	write, err := parseHex(v.GetString("write"))
	if err != nil {
		return appConfig{}, err
	}
	cfg := appConfig{
		Bus:         v.GetString("bus"),
		Addr:        addr,
		TenBit:      v.GetBool("ten-bit"),
		Write:       write,
		Read:        v.GetUint32("read"),
		Repeat:      v.GetInt("repeat"),
		Interval:    v.GetDuration("interval"),
		AdminAddr:   v.GetString("admin-addr"),
		Workers:     v.GetInt("workers"),
		OpenRetries: v.GetInt("open-retries"),
		LogLevel:    v.GetInt("log-level"),
	}
	if cfg.Bus == "" {
		return appConfig{}, fmt.Errorf("bus must not be empty")
	}
	if cfg.TenBit && cfg.Addr > 0x3FF {
		return appConfig{}, fmt.Errorf("10-bit address %#x out of range", cfg.Addr)
	}
	if cfg.Repeat < 0 {
		return appConfig{}, fmt.Errorf("repeat must not be negative, got %d", cfg.Repeat)
	}
	if cfg.Workers < 0 {
		return appConfig{}, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	return cfg, nil
}

// addrArg is the address argument for a transfer call.
func (c appConfig) addrArg() interface{} {
	if c.TenBit {
		return i2c.TenBit(uint16(c.Addr))
	}
	return c.Addr
}

func parseAddr(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return int32(n), nil
}

// parseHex accepts "0a0b", "0x0a0b" and "0a 0b" forms.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ",", "", ":", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid write bytes %q: %w", s, err)
	}
	return b, nil
}
