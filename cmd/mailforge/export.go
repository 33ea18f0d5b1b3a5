// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"mailforge/internal/export"
	"mailforge/internal/locale"
	"mailforge/internal/models"
	"mailforge/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export <record.json>",
	Short: "Render a template record to HTML or PDF",
	Long: `Render a template record, as downloaded from the editor, to a standalone
file next to it. With --watch the file is rendered again whenever the
record changes.

  mailforge export welcome.json
  mailforge export welcome.json -f pdf --rasterizer http://localhost:3000/screenshot
  mailforge export welcome.json -o out/welcome.html --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportOpts struct {
	format     string
	out        string
	locale     string
	rasterizer string
	watch      bool
}

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

func init() {
	rootCmd.AddCommand(exportCmd)
	f := exportCmd.Flags()
	f.StringVarP(&exportOpts.format, "format", "f", "html", "output format (html, pdf)")
	f.StringVarP(&exportOpts.out, "out", "o", "", "output file (default: record name with the format extension)")
	f.StringVarP(&exportOpts.locale, "locale", "l", "nl", "locale for placeholder texts")
	f.StringVar(&exportOpts.rasterizer, "rasterizer", os.Getenv("RASTERIZER_URL"), "screenshot service URL for PDF export")
	f.BoolVarP(&exportOpts.watch, "watch", "w", false, "re-render whenever the record changes")
}

func runExport(cmd *cobra.Command, args []string) error {
	setupLogger(true, slog.LevelInfo)

	format := strings.ToLower(exportOpts.format)
	if format != "html" && format != "pdf" {
		return fmt.Errorf("unknown format %q (want html or pdf)", exportOpts.format)
	}
	in := args[0]
	out := exportOpts.out
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + "." + format
	}

	catalog, err := locale.Load(exportOpts.locale)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	var raster export.Rasterizer
	if exportOpts.rasterizer != "" {
		raster = export.NewHTTPRasterizer(exportOpts.rasterizer)
	}
	job := &exportJob{
		exporter: export.New(raster, nil),
		renderer: render.New(catalog.Get(exportOpts.locale), nil),
		format:   format,
		in:       in,
		out:      out,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := job.run(ctx); err != nil {
		return err
	}
	if !exportOpts.watch {
		return nil
	}
	return job.watch(ctx)
}

// exportJob renders one record file to one output file.
type exportJob struct {
	exporter *export.Exporter
	renderer *render.Renderer
	format   string
	in, out  string
}

func (j *exportJob) run(ctx context.Context) error {
	data, err := os.ReadFile(j.in)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	tpl, err := models.UnmarshalRecord(data)
	if err != nil {
		return fmt.Errorf("parse record %s: %w", j.in, err)
	}

	var body []byte
	switch j.format {
	case "pdf":
		body, err = j.exporter.PDF(ctx, j.renderer, tpl)
	default:
		body, err = j.exporter.HTML(ctx, j.renderer, tpl)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", j.in, err)
	}

	if dir := filepath.Dir(j.out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(j.out, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", j.out, err)
	}
	slog.Info("template exported", "name", tpl.Name, "format", j.format, "out", j.out, "size", models.HumanSize(int64(len(body))))
	return nil
}

// watch re-runs the job whenever the record changes. The directory is
// watched rather than the file, since editors often save by replacing it.
func (j *exportJob) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	target, err := filepath.Abs(j.in)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	slog.Info("watching for changes", "record", j.in)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isRecordChange(ev, target) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if err := j.run(ctx); err != nil {
				// Keep watching; the next save may fix the record.
				slog.Error("re-export failed", "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// isRecordChange reports whether ev writes or recreates the file at target.
func isRecordChange(ev fsnotify.Event, target string) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
