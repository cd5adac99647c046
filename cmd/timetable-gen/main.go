package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

func main() {
	var (
		inputPath  string
		outputPath string
		format     string
		pdfTitle   string
		logLevel   string
	)

	flag.StringVar(&inputPath, "input", "", "Path to a YAML or JSON generation input file")
	flag.StringVar(&outputPath, "out", "", "Optional file to write the rendered timetable to")
	flag.StringVar(&format, "format", "", "Output format for -out: csv or pdf (defaults to the file extension)")
	flag.StringVar(&pdfTitle, "title", "Weekly Timetable", "Title printed on PDF pages")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level")
	flag.Parse()

	if inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logr, err := logger.Build(config.LogConfig{Level: logLevel, Format: "console"}, false)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(context.Background(), logr, inputPath, outputPath, format, pdfTitle, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logr *zap.Logger, inputPath, outputPath, format, pdfTitle string, stdout, stderr io.Writer) error {
	req, err := loadInput(inputPath)
	if err != nil {
		return err
	}

	svc := service.NewTimetableGeneratorService(nil, nil, logr, nil, map[string]service.Renderer{
		"csv": export.NewCSVExporter(),
		"pdf": export.NewPDFExporter(pdfTitle),
	}, service.TimetableGeneratorConfig{})

	result, err := svc.Generate(ctx, req)
	if err != nil {
		return describe(err)
	}

	printTimetables(stdout, result)
	printUnplaced(stderr, result.Unplaced)

	if outputPath == "" {
		return nil
	}
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(outputPath), ".")
	}
	file, err := svc.RenderFile(result, format)
	if err != nil {
		return describe(err)
	}
	if err := os.WriteFile(outputPath, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	logr.Info("timetable written", zap.String("path", outputPath), zap.String("content_type", file.ContentType))
	return nil
}

func loadInput(path string) (dto.GenerateTimetableRequest, error) {
	var req dto.GenerateTimetableRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse %s: %w", path, err)
	}
	return req, nil
}

// describe strips wrapped causes except for validation failures, where the
// cause names the offending field.
func describe(err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code != appErrors.ErrValidation.Code {
		return errors.New(appErr.Message)
	}
	return err
}

func printTimetables(w io.Writer, result *dto.GenerateTimetableResponse) {
	for i, class := range result.Classes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Class %s\n", class.ClassID)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		header := []string{"Day"}
		for p := 1; p <= result.PeriodsPerDay; p++ {
			header = append(header, fmt.Sprintf("P%d", p))
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, row := range class.Rows {
			fmt.Fprintln(tw, row.Day+"\t"+strings.Join(row.Periods, "\t"))
		}
		tw.Flush()
	}
}

func printUnplaced(w io.Writer, unplaced []dto.UnplacedSubjectView) {
	if len(unplaced) == 0 {
		return
	}
	fmt.Fprintf(w, "%d subject(s) could not be placed:\n", len(unplaced))
	for _, u := range unplaced {
		fmt.Fprintf(w, "  %s / %s (teacher %s): %s\n", u.ClassID, u.Subject, u.Teacher, u.Reason)
	}
}
