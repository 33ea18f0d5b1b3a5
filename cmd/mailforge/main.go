// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the mailforge email template editor.
// The serve command runs the editor API; export and palette are offline
// helpers that work on template record files.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailforge",
	Short: "Drag-and-drop email template editor",
	Long: `mailforge serves the email template editor API and renders templates to
standalone HTML and PDF.

  mailforge serve                      Start the editor API
  mailforge export welcome.json        Render a template record to HTML
  mailforge palette --locale en        List the component palette`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the default logger: JSON in production, text in
// development.
func setupLogger(dev bool, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if dev {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
