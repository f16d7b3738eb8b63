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

// Command i2ctransfer writes bytes to an I2C target and reads its reply in
// one combined transaction, printing what was read.
//
//	i2ctransfer --bus /dev/i2c-1 --addr 0x54 --write 04 --read 3
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Transmission-Dynamics/i2c-transfer/adapter"
	"github.com/Transmission-Dynamics/i2c-transfer/pkg/i2c"
	"github.com/Transmission-Dynamics/i2c-transfer/transfer"
)

const (
	readinessTimeout = time.Second
	shutdownTimeout  = 5 * time.Second
)

func main() {
	cfg, err := loadConfig(newFlagSet(), os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, cfg, os.Stdout, os.Stderr))
}

func run(ctx context.Context, cfg appConfig, stdout, stderr io.Writer) int {
	transfer.SetLogLevel(cfg.LogLevel)

	dev, err := i2c.NewDevfs(adapter.DeviceConfig(nil, nil, cfg.OpenRetries))
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	reg := adapter.NewMetricsRegistry()
	tracker := adapter.NewBusTracker()

	config := transfer.DefaultConfig()
	config.WorkerPoolSize = cfg.Workers
	config.Opener = dev
	config.Observers = []transfer.Observer{tracker}
	config.Registerer = reg
	rt, err := transfer.New(config)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer rt.Close()

	if cfg.AdminAddr != "" {
		health := adapter.NewHealthHandler(adapter.NewHealthAdapter(rt, tracker), []string{cfg.Bus}, readinessTimeout)
		srv := &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           adapter.NewAdminMux(reg, health),
			ReadHeaderTimeout: readinessTimeout,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintln(stderr, "Error: admin server:", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	return poll(ctx, rt, cfg, stdout, stderr)
}

// poll runs cfg.Repeat transfers, or runs until ctx is done when Repeat is
// zero. It returns the process exit status.
func poll(ctx context.Context, rt *transfer.Runtime, cfg appConfig, stdout, stderr io.Writer) int {
	status := 0
	for i := 0; cfg.Repeat == 0 || i < cfg.Repeat; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return status
			case <-time.After(cfg.Interval):
			}
		}
		p, err := rt.I2CTransfer(cfg.Bus, cfg.addrArg(), cfg.Write, cfg.Read)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return 1
		}
		data, err := p.Await(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return status
		case err != nil:
			fmt.Fprintln(stderr, "Error:", err)
			status = 1
		default:
			fmt.Fprintf(stdout, "Data read from I2C device: [% x]\n", data)
		}
	}
	return status
}
