// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// templates_cmd.go - List the table templates.

package cli

import (
	"github.com/spf13/cobra"

	"github.com/jeranaias/voxtable/internal/render"
)

func newTemplatesCommand(g *globalOptions) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the table templates",
		Long: `Lists the templates "template <number>" creates tables from.

The catalogue comes from templates.file when it is set, otherwise the
built-in templates of the session language are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("lang") {
				cfg.Language = lang
				cfg.Migrate()
			}

			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			templates := catalog.All()

			out := cmd.OutOrStdout()
			if g.jsonOut {
				data := make([]TemplateData, len(templates))
				for i, t := range templates {
					data[i] = TemplateData{ID: t.ID, Name: t.Name, Headers: t.Headers}
				}
				return NewJSONResponse("templates", data).Print(out)
			}

			labels, err := render.LabelsFor(cfg.Language)
			if err != nil {
				return err
			}
			render.New(out, labels).Templates(templates)
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language of the built-in templates: en or ru")
	return cmd
}
