package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/goliatone/go-formbuilder/internal/cli"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/internal/prompt"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/session"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

func main() {
	dbPath := flag.String("db", "forms.db", "SQLite database path")
	formID := flag.String("form", "", "form id to open (creates a new form if empty)")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	historyLimit := flag.Int("history-limit", 50, "undo history entries to keep")
	keepHistory := flag.Bool("keep-history-on-save", false, "keep undo history across saves")
	flag.Parse()

	if err := run(*dbPath, *formID, *logLevel, *historyLimit, *keepHistory); err != nil {
		fmt.Fprintln(os.Stderr, "formbuilder:", err)
		os.Exit(1)
	}
}

func run(dbPath, formID, logLevel string, historyLimit int, keepHistory bool) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger, _ := logging.New(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.OpenSQLite(ctx, dbPath, store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer st.Close()

	engine := builder.New(
		builder.WithLogger(logger),
		builder.WithHistoryLimit(historyLimit),
		builder.WithCollapseHistoryOnSave(!keepHistory),
	)
	sess, err := session.Open(ctx, st, engine, formID, session.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Editing form %s (%s)\n", sess.FormID(), dbPath)

	app := cli.New(sess, prompt.NewSurvey(os.Stdout), cli.WithLogger(logger))
	return app.Run(ctx)
}
