package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"teakeys/internal/config"
	"teakeys/internal/crawler"
	"teakeys/internal/extractor"
	"teakeys/internal/formatter"
	"teakeys/internal/models"
	"teakeys/internal/normalizer"
	"teakeys/internal/pipeline"
	"teakeys/internal/remapper"
	"teakeys/internal/store"
	"teakeys/pkg/utils"
)

// ErrInvalidRuleFlag is returned for a --rule value that is not pattern=replacement.
var ErrInvalidRuleFlag = errors.New("rule must be pattern=replacement")

func initCmd(opts *rootOptions) *cobra.Command {
	var writeConfig string

	c := &cobra.Command{
		Use:   "init",
		Short: "Create the output directories (and optionally a starter config)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}

			layout := store.NewLayout(cfg.Output)
			if err := layout.Bootstrap(); err != nil {
				return err
			}

			for _, d := range layout.Dirs() {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}

			if writeConfig != "" {
				if _, err := os.Stat(writeConfig); err == nil {
					return fmt.Errorf("config %s already exists", writeConfig)
				}

				if err := cfg.SaveConfig(writeConfig); err != nil {
					return err
				}

				log.Info("wrote config", "path", writeConfig)
			}

			return nil
		},
	}

	c.Flags().StringVar(&writeConfig, "write-config", "", "write the effective config to this path")

	return c
}

func scrapeCmd(opts *rootOptions) *cobra.Command {
	var preview bool

	c := &cobra.Command{
		Use:   "scrape <url-or-file>",
		Short: "Extract the key table of a page and save it as generated keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}

			src := sourceFromArg(args[0])

			doc, err := crawler.NewClientFromConfig(cfg, log).FetchDocument(cmd.Context(), src)
			if err != nil {
				return err
			}

			m, err := extractor.New(extractOptions(cfg)).Extract(doc)
			if err != nil {
				return err
			}

			s, err := openStore(cfg)
			if err != nil {
				return err
			}

			path, err := s.SaveGenerated(m)
			if err != nil {
				return err
			}

			log.Info("saved generated keys", "title", m.Title(), "keys", m.Len(), "path", path)

			if preview {
				fmt.Fprint(cmd.OutOrStdout(), formatter.RenderMapping(m, formatter.Options{}))
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}

	c.Flags().BoolVar(&preview, "preview", false, "print the extracted table")

	return c
}

func cleanCmd(opts *rootOptions) *cobra.Command {
	var (
		preview    bool
		noDefaults bool
		rules      []string
	)

	c := &cobra.Command{
		Use:   "clean <generated-keys.json>",
		Short: "Normalize a generated key file and save the processed keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}

			raw, err := store.LoadMapping(args[0])
			if err != nil {
				return err
			}

			extra, err := parseRules(rules)
			if err != nil {
				return err
			}

			cleaned, err := normalizer.Normalize(raw, normalizer.Options{
				UseDefaults: cfg.Normalize.UseDefaults && !noDefaults,
				ExtraRules:  append(cfg.Normalize.Rules.Clone(), extra...),
			})
			if err != nil {
				return err
			}

			s, err := openStore(cfg)
			if err != nil {
				return err
			}

			path, err := s.SaveProcessed(cleaned)
			if err != nil {
				return err
			}

			log.Info("saved processed keys", "title", cleaned.Title(), "keys", cleaned.Len(), "path", path)

			if preview {
				fmt.Fprint(cmd.OutOrStdout(), formatter.RenderComparison(raw, cleaned, formatter.Options{}))
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}

	c.Flags().BoolVar(&preview, "preview", false, "print raw and cleaned descriptions side by side")
	c.Flags().BoolVar(&noDefaults, "no-defaults", false, "skip the built-in replacement rules")
	c.Flags().StringArrayVar(&rules, "rule", nil, "extra replacement rule as pattern=replacement (repeatable, applied after config rules)")

	return c
}

func remapCmd(opts *rootOptions) *cobra.Command {
	var out string

	c := &cobra.Command{
		Use:   "remap <keys.json> <dataset.csv>",
		Short: "Rename dataset columns using a key file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}

			m, err := store.LoadMapping(args[0])
			if err != nil {
				return err
			}

			layout := store.NewLayout(cfg.Output)

			dst := out
			if dst == "" {
				if err := layout.Bootstrap(); err != nil {
					return err
				}

				dst = layout.RenamedPath(args[1])
			}

			stats, err := remapper.RemapFile(args[1], dst, m)
			if err != nil {
				return err
			}

			log.Info("remapped dataset", "path", dst, "renamed", stats.Renamed, "columns", stats.Columns)
			fmt.Fprintln(cmd.OutOrStdout(), dst)

			return nil
		},
	}

	c.Flags().StringVarP(&out, "out", "o", "", "output path (default: renamed data directory)")

	return c
}

func showCmd(opts *rootOptions) *cobra.Command {
	var compare string

	var width int

	c := &cobra.Command{
		Use:   "show <keys.json>",
		Short: "Print a key file as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := opts.load(cmd); err != nil {
				return err
			}

			m, err := store.LoadMapping(args[0])
			if err != nil {
				return err
			}

			fopts := formatter.Options{MaxWidth: width}

			if compare == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", m.Title())
				fmt.Fprint(cmd.OutOrStdout(), formatter.RenderMapping(m, fopts))

				return nil
			}

			other, err := store.LoadMapping(compare)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", m.Title())
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderComparison(m, other, fopts))

			return nil
		},
	}

	c.Flags().StringVar(&compare, "compare", "", "second key file shown next to the first")
	c.Flags().IntVar(&width, "width", 0, "truncate cells to this display width")

	return c
}

func runCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every enabled source from the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}

			if err := cfg.ValidateSources(); err != nil {
				return err
			}

			runner := pipeline.NewRunner(cfg, crawler.NewClientFromConfig(cfg, log), log)

			results, err := runner.RunAll(cmd.Context(), cfg.GetEnabledSources())
			for _, res := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d keys\n", res.Source, res.Title, res.Keys)
			}

			return err
		},
	}
}

// openStore bootstraps the output directories and returns the mapping store.
func openStore(cfg *config.Config) (*store.JSONStore, error) {
	layout := store.NewLayout(cfg.Output)
	if err := layout.Bootstrap(); err != nil {
		return nil, err
	}

	return store.NewJSONStore(layout, store.WithBackup(cfg.Output.CreateBackup)), nil
}

// parseRules turns "pattern=replacement" flags into rules. The split is at
// the first '=', so a replacement may contain '='.
func parseRules(raw []string) (models.RuleSet, error) {
	var rs models.RuleSet

	for _, r := range raw {
		pattern, replacement, ok := strings.Cut(r, "=")
		if !ok || pattern == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRuleFlag, r)
		}

		rs = append(rs, models.Rule{Pattern: pattern, Replacement: replacement})
	}

	return rs, nil
}

func sourceFromArg(arg string) config.SourceConfig {
	if utils.NewHTTPHelper().IsValidURL(arg) {
		return config.SourceConfig{URL: arg, Enabled: true}
	}

	return config.SourceConfig{File: arg, Enabled: true}
}

func extractOptions(cfg *config.Config) extractor.Options {
	return extractor.Options{
		HeaderRows: cfg.Extract.HeaderRows,
		KeyCell:    cfg.Extract.KeyCell,
		ValueCell:  cfg.Extract.ValueCell,
	}
}
