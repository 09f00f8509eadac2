package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"pgchart/internal/archive"
	"pgchart/internal/config"
	"pgchart/internal/store"
	"pgchart/internal/view"
)

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if cfg.Database.SQLitePath == "" {
		return nil, errors.New("database.sqlite_path is required")
	}
	return store.NewSQLiteStore(cfg.Database.SQLitePath, loc)
}

func runExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "archive file to write")
	from := fs.String("start", "", "first day, YYYY-MM-DD")
	to := fs.String("end", "", "last day, YYYY-MM-DD (defaults to start)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" || *from == "" {
		return errors.New("export requires -out and -start")
	}
	if *to == "" {
		*to = *from
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	first, err := view.ParseDay(*from, loc)
	if err != nil {
		return err
	}
	last, err := view.ParseDay(*to, loc)
	if err != nil {
		return err
	}
	start, _ := first.Bounds()
	_, end := last.Bounds()

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ticks, err := st.FetchTicks(context.Background(), start, end)
	if err != nil {
		return fmt.Errorf("query ticks: %w", err)
	}
	if err := archive.WriteFile(*out, ticks); err != nil {
		return err
	}
	log.Info().Str("file", *out).Int("ticks", len(ticks)).Str("start", first.String()).Str("end", last.String()).Msg("export done")
	return nil
}

func runImport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	in := fs.String("in", "", "archive file to read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("import requires -in")
	}

	ticks, err := archive.ReadFile(*in)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	n, err := st.SaveTicks(context.Background(), ticks)
	if err != nil {
		return fmt.Errorf("save ticks: %w", err)
	}
	log.Info().Str("file", *in).Int("read", len(ticks)).Int("inserted", n).Msg("import done")
	return nil
}
