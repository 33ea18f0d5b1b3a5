// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mailforge/internal/locale"
	"mailforge/internal/registry"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "List the component kinds of the palette",
	Long: `List every component kind with its localized name, palette category and
editable style properties.

  mailforge palette
  mailforge palette --locale en --category layout
  mailforge palette -f yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writePalette(cmd.OutOrStdout(), paletteOpts.locale, paletteOpts.category, paletteOpts.format)
	},
}

var paletteOpts struct {
	locale   string
	category string
	format   string
}

func init() {
	rootCmd.AddCommand(paletteCmd)
	f := paletteCmd.Flags()
	f.StringVarP(&paletteOpts.locale, "locale", "l", "nl", "locale for names and descriptions")
	f.StringVarP(&paletteOpts.category, "category", "c", "", "only list one category")
	f.StringVarP(&paletteOpts.format, "format", "f", "table", "output format (table, json, yaml)")
}

type paletteEntry struct {
	Kind        string   `json:"kind" yaml:"kind"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Container   bool     `json:"container" yaml:"container"`
	Content     string   `json:"defaultContent,omitempty" yaml:"defaultContent,omitempty"`
	Styles      []string `json:"styles" yaml:"styles"`
}

func writePalette(w io.Writer, code, category, format string) error {
	catalog, err := locale.Load(code)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	if !catalog.Has(code) {
		return fmt.Errorf("unknown locale %q (have %s)", code, strings.Join(catalog.Locales(), ", "))
	}
	if category != "" && !slices.Contains(registry.Categories(), registry.Category(category)) {
		return fmt.Errorf("unknown category %q", category)
	}
	labels := catalog.Get(code)

	var entries []paletteEntry
	for _, s := range registry.ByCategory(registry.Category(category)) {
		kl := labels.Kind(s.Kind)
		entries = append(entries, paletteEntry{
			Kind:        string(s.Kind),
			Name:        kl.Name,
			Description: kl.Description,
			Category:    labels.Category(string(s.Category)),
			Container:   s.Kind.IsContainer(),
			Content:     s.DefaultContent,
			Styles:      s.StyleProperties,
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tNAME\tCATEGORY\tCONTAINER\tSTYLES")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", e.Kind, e.Name, e.Category, e.Container, strings.Join(e.Styles, ","))
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
}
