package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/importer"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/repository"
	"github.com/noah-isme/exam-planner-api/internal/service"
	"github.com/noah-isme/exam-planner-api/pkg/config"
	"github.com/noah-isme/exam-planner-api/pkg/database"
	"github.com/noah-isme/exam-planner-api/pkg/logger"
)

type options struct {
	file    string
	campus  string
	subject string
	course  string
	zone    string
	useDB   bool
	dryRun  bool
	timeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "Schedule to import (.html, .htm or .csv)")
	flag.StringVar(&opts.campus, "campus", "", "Campus code or name (defaults to EXAMS_DEFAULT_CAMPUS)")
	flag.StringVar(&opts.subject, "subject", "", "Only rows for this subject")
	flag.StringVar(&opts.course, "course", "", "Only rows for this course")
	flag.StringVar(&opts.zone, "zone", "", "IANA time zone for schedule times (defaults to EXAMS_TIME_ZONE)")
	flag.BoolVar(&opts.useDB, "db", false, "Reconcile against the configured database")
	flag.BoolVar(&opts.dryRun, "dry-run", true, "With -db, report changes without writing")
	flag.DurationVar(&opts.timeout, "timeout", time.Minute, "Overall timeout for database work")
	flag.Parse()

	if opts.file == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(opts, os.Stdout); err != nil {
		color.Red("import failed: %v", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.zone == "" {
		opts.zone = cfg.Exams.TimeZone
	}
	campus := service.NormalizeCampus(opts.campus, cfg.Exams.DefaultCampus)

	parser, err := importer.NewParser(opts.zone)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.file, err)
	}

	filter := importer.RowFilter{Subject: opts.subject, Course: opts.course}
	rows, malformed, err := parseFile(opts.file, raw, filter, parser)
	if err != nil {
		return err
	}

	printRows(out, rows, parser.Location())
	if !opts.useDB {
		printParseCounts(out, rows, malformed)
		return nil
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	reconciler := service.NewReconciler(repository.NewExamRepository(db), db, logr)
	summary, err := reconciler.Reconcile(ctx, rows, campus, opts.dryRun)
	if err != nil {
		return err
	}
	summary.Malformed = malformed
	logr.Info("offline import completed",
		zap.String("file", filepath.Base(opts.file)),
		zap.String("campus", campus),
		zap.Bool("dry_run", opts.dryRun),
	)
	printSummary(out, summary)
	return nil
}

func parseFile(name string, raw []byte, filter importer.RowFilter, parser *importer.Parser) ([]models.ParsedExamRow, int, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		result, err := importer.ReadCSV(bytes.NewReader(raw), filter, parser)
		if err != nil {
			return nil, 0, err
		}
		return result.Rows, result.Malformed, nil
	case ".html", ".htm":
		body, err := importer.DecodeHTML(raw, "")
		if err != nil {
			return nil, 0, err
		}
		rows, err := importer.ParseHTML(body, filter, parser)
		if errors.Is(err, importer.ErrTableNotFound) {
			return nil, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return rows, 0, nil
	default:
		return nil, 0, fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
}

func printRows(out io.Writer, rows []models.ParsedExamRow, loc *time.Location) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Subject", "Course", "Section", "Start", "Minutes", "Building", "Room"})
	for _, row := range rows {
		start := "unparsed"
		if row.StartTime != nil {
			start = row.StartTime.In(loc).Format("2006-01-02 15:04 MST")
		}
		minutes := ""
		if row.DurationMin != nil {
			minutes = strconv.Itoa(*row.DurationMin)
		}
		table.Append([]string{row.Subject, row.Course, row.Section, start, minutes, valueOr(row.Building), valueOr(row.Room)})
	}
	table.Render()
}

func printParseCounts(out io.Writer, rows []models.ParsedExamRow, malformed int) {
	unparsed := 0
	for _, row := range rows {
		if row.StartTime == nil {
			unparsed++
		}
	}
	color.New(color.FgCyan).Fprintf(out, "\n%d rows parsed, %d without a start time, %d malformed\n", len(rows), unparsed, malformed)
}

func printSummary(out io.Writer, summary *models.ImportSummary) {
	mode := "committed"
	if summary.DryRun {
		mode = "dry run"
	}
	color.New(color.FgYellow).Fprintf(out, "\nImport summary (%s, campus %s)\n", mode, summary.Campus)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Inserted", "Updated", "Skipped", "Malformed"})
	table.Append([]string{
		strconv.Itoa(summary.Inserted),
		strconv.Itoa(summary.Updated),
		strconv.Itoa(summary.Skipped),
		strconv.Itoa(summary.Malformed),
	})
	table.Render()

	if summary.Inserted+summary.Updated == 0 {
		color.New(color.FgGreen).Fprintln(out, "Schedule already up to date.")
	}
}

func valueOr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
