package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-formbuilder/internal/httpapi"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

func main() {
	dbPath := flag.String("db", "forms.db", "SQLite database path")
	addr := flag.String("addr", ":8080", "listen address")
	basePath := flag.String("base-path", "/", "path prefix for every route")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	strict := flag.Bool("strict", false, "reject submission keys that match no field")
	themeName := flag.String("theme", "", "default preview theme")
	variant := flag.String("variant", "", "default preview theme variant")
	flag.Parse()

	if err := run(*dbPath, *addr, *basePath, *logLevel, *strict, *themeName, *variant); err != nil {
		fmt.Fprintln(os.Stderr, "formbuilder-server:", err)
		os.Exit(1)
	}
}

func run(dbPath, addr, basePath, logLevel string, strict bool, themeName, variant string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger, _ := logging.New(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.OpenSQLite(ctx, dbPath, store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer st.Close()

	renderer, err := preview.New(preview.WithDefaultTheme(themeName, variant), preview.WithLogger(logger))
	if err != nil {
		return err
	}
	handler, err := httpapi.New(st,
		httpapi.WithBasePath(basePath),
		httpapi.WithStrict(strict),
		httpapi.WithPreview(renderer),
		httpapi.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr, "db", dbPath)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("server: shutting down")
	return srv.Shutdown(shutdownCtx)
}
