package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"oohsheets/pkg/api"
	"oohsheets/pkg/config"
	"oohsheets/pkg/records"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	configPath := flag.String("config", "oohsheets.toml", "Path to an optional TOML config file")
	initConfig := flag.String("init-config", "", "Write the effective configuration to this TOML file and exit")
	list := flag.Bool("list", false, "Print every record as JSON")
	get := flag.Int("get", -1, "Print the record with this id as JSON")
	deleteGroup := flag.String("delete-group", "", "Delete every record matching Coluna=Valor")
	dryRun := flag.Bool("dry-run", false, "With -delete-group, only print the records that would be deleted")

	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to load .env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Logging.Apply(*verbose)

	if *initConfig != "" {
		if err := cfg.WriteFile(*initConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		log.Infof("Wrote %s", *initConfig)
		return
	}

	ctx := context.Background()
	store, err := api.NewStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}
	svc, err := api.NewService(store, cfg)
	if err != nil {
		log.Fatalf("Failed to create record service: %v", err)
	}

	switch {
	case *list:
		err = runList(ctx, svc, os.Stdout)
	case *get >= 0:
		err = runGet(ctx, svc, *get, os.Stdout)
	case *deleteGroup != "":
		err = runDeleteGroup(ctx, svc, *deleteGroup, *dryRun, os.Stdout)
	default:
		log.Error("You must specify one of -list, -get or -delete-group")
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Failed: %v", err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runList(ctx context.Context, svc *records.Service, w io.Writer) error {
	recs, err := svc.List(ctx)
	if err != nil {
		return err
	}
	return printJSON(w, recs)
}

func runGet(ctx context.Context, svc *records.Service, id int, w io.Writer) error {
	rec, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(w, rec)
}

// parseGroup splits "Coluna=Valor". The value may be empty or contain "=".
func parseGroup(s string) (column, value string, err error) {
	column, value, ok := strings.Cut(s, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		return "", "", fmt.Errorf("expected Coluna=Valor, got %q", s)
	}
	return column, value, nil
}

func runDeleteGroup(ctx context.Context, svc *records.Service, group string, dryRun bool, w io.Writer) error {
	column, value, err := parseGroup(group)
	if err != nil {
		return err
	}
	if dryRun {
		recs, err := svc.List(ctx)
		if err != nil {
			return err
		}
		matches := []records.Record{}
		for _, rec := range recs {
			if v, ok := rec.Fields[column]; ok && v == value {
				matches = append(matches, rec)
			}
		}
		log.Infof("Dry run: %d record(s) would be deleted with policy %s", len(matches), svc.Options().DeletePolicy)
		return printJSON(w, matches)
	}

	n, err := svc.DeleteWhere(ctx, column, value)
	if err != nil {
		return fmt.Errorf("deleted %d record(s) before failing: %w", n, err)
	}
	log.Infof("Deleted %d record(s) where %s=%q", n, column, value)
	return nil
}
