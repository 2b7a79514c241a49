//go:build linux

// Command frayfs mounts a demonstration filesystem serving a single
// read-only file, driven entirely by the fray protocol packages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof" // anonymous import to get the pprof handler registered

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/mitchellh/go-homedir"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frayfs/fray/internal/cmdutil"
	"github.com/frayfs/fray/internal/fray/fuse"
	"github.com/frayfs/fray/internal/fray/record"
	"github.com/frayfs/fray/internal/fray/session"
)

func main() {
	var (
		ll         cmdutil.LogLevel
		httpAddr   string
		recordPath string
		reqTimeout time.Duration
	)

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.Var(&ll, "log.level", "Level to display logs at")
	fs.StringVar(&httpAddr, "http.addr", "127.0.0.1:8081", "address to expose metrics and pprof on")
	fs.StringVar(&recordPath, "record", "", "optional file to record message activity to")
	fs.DurationVar(&reqTimeout, "request.timeout", 15*time.Second, "maximum time a single request may run for")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing flags: %s\n", err.Error())
		os.Exit(1)
	}

	if len(fs.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [mountpoint]\n", os.Args[0])
		os.Exit(1)
	}

	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	l = level.NewFilter(l, ll.FilterOption())
	l = log.With(l, "ts", log.DefaultTimestamp, "caller", log.DefaultCaller, "program", "frayfs")

	if err := runMain(l, httpAddr, recordPath, reqTimeout, fs.Arg(0)); err != nil {
		level.Error(l).Log("msg", "error during run", "err", err)
		os.Exit(1)
	}
}

func runMain(l log.Logger, httpAddr, recordPath string, reqTimeout time.Duration, mountPath string) error {
	var group run.Group

	// Information server worker
	{
		lis, err := net.Listen("tcp", httpAddr)
		if err != nil {
			return fmt.Errorf("failed to create listener for HTTP server: %w", err)
		}

		r := mux.NewRouter()
		r.Handle("/metrics", promhttp.Handler())
		r.PathPrefix("/debug/pprof").Handler(http.DefaultServeMux)
		srv := http.Server{Handler: r}

		group.Add(func() error {
			level.Debug(l).Log("msg", "listening for http traffic", "addr", lis.Addr())
			err := srv.Serve(lis)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}, func(_ error) {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
			}
		})
	}

	// FUSE session worker
	{
		if err := os.MkdirAll(mountPath, 0770); err != nil {
			return fmt.Errorf("creating mount path: %w", err)
		}
		ch, err := fuse.Mount(l, mountPath, fuse.FSName("frayfs"), fuse.DefaultPermissions())
		if err != nil {
			return fmt.Errorf("failed to create mount: %w", err)
		}

		var recorder record.Recorder
		if recordPath != "" {
			expanded, err := homedir.Expand(recordPath)
			if err != nil {
				return fmt.Errorf("expanding record path: %w", err)
			}
			recorder, err = record.NewFile(expanded)
			if err != nil {
				return fmt.Errorf("opening record file: %w", err)
			}
		}

		middleware := []session.Middleware{
			session.NewMetricsMiddleware(prometheus.DefaultRegisterer),
		}
		if os.Getenv("FRAYFS_LOG_REQUESTS") != "" {
			middleware = append(middleware, session.NewLoggingMiddleware(l))
		}

		sess, err := session.New(l, session.Options{
			ConcurrencyLimit: session.DefaultOptions.ConcurrencyLimit,
			RequestTimeout:   reqTimeout,
			Channel:          ch,
			Handler:          newHelloFS(l),
			Middleware:       middleware,
			Recorder:         recorder,
		})
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		group.Add(func() error {
			level.Debug(l).Log("msg", "serving FUSE traffic", "dir", mountPath)
			return sess.Serve(ctx)
		}, func(_ error) {
			cancel()
		})
	}

	// signal worker
	{
		ctx, cancel := context.WithCancel(context.Background())

		group.Add(func() error {
			ch := make(chan os.Signal, 2)
			signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(ch)

			select {
			case <-ch:
				level.Info(l).Log("msg", "received shutdown signal")
			case <-ctx.Done():
			}
			return nil
		}, func(_ error) {
			cancel()
		})
	}

	level.Info(l).Log("msg", "frayfs running in foreground, waiting for interrupt or error")
	return group.Run()
}
