// Command irpfgen generates Flatpak sources for the IRPF apps on
// Flathub. It fetches the latest.xml index for an edition, downloads
// every ZIP archive it lists, and prints a sources fragment with the
// sha256 and size of each archive on stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"irpfgen/pkg/assets"
	"irpfgen/pkg/config"
	"irpfgen/pkg/download"
	"irpfgen/pkg/fetch"
	"irpfgen/pkg/httpclient"
	"irpfgen/pkg/index"
	"irpfgen/pkg/logging"
	"irpfgen/pkg/manifest"
	"irpfgen/pkg/version"

	"github.com/spf13/cobra"
)

func main() {
	var verbose int

	cmd := newRootCmd(&verbose)

	if err := cmd.Execute(); err != nil {
		slog.Error("error", "err", err)
		if verbose == 0 {
			slog.Info("hint: rerun with -v for more details")
		}
		os.Exit(1)
	}
}

func newRootCmd(verbose *int) *cobra.Command {
	var (
		configPath      string
		edition         int
		jobs            int
		directSources   bool
		noDirectSources bool
		dataChecker     bool
		noDataChecker   bool
	)

	cmd := &cobra.Command{
		Use:   "irpfgen",
		Short: "Generate Flatpak sources for IRPF apps on Flathub",
		Long: `Generate Flatpak sources for IRPF apps on Flathub.

The IRPF information database is shipped as ZIP files listed in a
per-edition latest.xml index on the Receita Federal download host.
This tool downloads all of them, hashes them, and prints a sources
list fragment to stdout, ready to paste into a Flatpak manifest.

Example:
  irpfgen -e 2023 > generated-sources.yaml`,
		Version:       version.Version(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			logger := logging.Setup(*verbose)
			ctx := logging.WithLogger(c.Context(), logger)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags beat the config file, the config file beats the
			// built-in defaults.
			flags := c.Flags()
			if !flags.Changed("edition") {
				edition = cfg.Edition
			}
			if !flags.Changed("jobs") {
				jobs = cfg.Jobs
			}
			direct := cfg.DirectSources
			if flags.Changed("direct-sources") {
				direct = directSources
			}
			if flags.Changed("no-direct-sources") && noDirectSources {
				direct = false
			}
			checker := cfg.DataChecker
			if flags.Changed("data-checker") {
				checker = dataChecker
			}
			if flags.Changed("no-data-checker") && noDataChecker {
				checker = false
			}

			if !assets.ValidEdition(edition) {
				return fmt.Errorf("invalid IRPF edition %d: editions prior to %d are not supported", edition, assets.MinEdition)
			}

			return run(ctx, runOptions{
				locator:       assets.Locator{Template: cfg.URLTemplate, Edition: edition},
				userAgent:     cfg.UserAgent,
				jobs:          jobs,
				directSources: direct,
				dataChecker:   checker,
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&directSources, "direct-sources", "d", false, "generate direct sources, instead of extra-data ones")
	flags.BoolVar(&noDirectSources, "no-direct-sources", false, "generate extra-data sources (negates --direct-sources)")
	flags.IntVarP(&edition, "edition", "e", config.DefaultEdition, "the IRPF edition of the ZIP files")
	flags.BoolVar(&dataChecker, "data-checker", false, "generate x-checker-data entries (negates --no-data-checker)")
	flags.BoolVarP(&noDataChecker, "no-data-checker", "n", false, "skip generation of x-checker-data entries")
	flags.IntVarP(&jobs, "jobs", "j", 0, "parallel downloads (0 = all CPUs)")
	flags.StringVar(&configPath, "config", "", "path to a TOML config file")
	flags.CountVarP(verbose, "verbose", "v", "enable debug output (very noisy)")

	cmd.MarkFlagsMutuallyExclusive("direct-sources", "no-direct-sources")
	cmd.MarkFlagsMutuallyExclusive("data-checker", "no-data-checker")

	return cmd
}

type runOptions struct {
	locator       assets.Locator
	userAgent     string
	jobs          int
	directSources bool
	dataChecker   bool
}

func run(ctx context.Context, opts runOptions) error {
	logger := logging.GetLogger(ctx)

	client := httpclient.New()
	header := http.Header{"User-Agent": []string{opts.userAgent}}

	indexURL := opts.locator.IndexURL()
	logger.Info("fetching remote xml index", "url", indexURL)

	body, err := fetch.Fetch(ctx, client, indexURL, header)
	if err != nil {
		return fmt.Errorf("failed to fetch remote xml index: %w", err)
	}

	descs, err := index.Parse(ctx, body.Bytes())
	if err != nil {
		return err
	}
	if len(descs) == 0 {
		return errors.New("found 0 (zero) zip files in the index, did its structure change?")
	}

	for i := range descs {
		descs[i].URL = opts.locator.ArchiveURL(descs[i].Name)
	}

	logger.Info("found zip files in the index", "count", len(descs))
	logger.Info("downloading and hashing archives")

	ok, err := download.Run(ctx, client, descs, download.Options{
		Jobs:      opts.jobs,
		UserAgent: opts.userAgent,
		Progress:  os.Stderr,
	})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("failed to download one or more zip files")
	}

	logger.Info("writing sources list to stdout")

	if err := manifest.Signature(os.Stdout, filepath.Base(os.Args[0]), os.Args[1:]); err != nil {
		return err
	}
	if err := manifest.Render(os.Stdout, descs, manifest.Options{
		DirectSources: opts.directSources,
		DataChecker:   opts.dataChecker,
		Locator:       opts.locator,
	}); err != nil {
		return err
	}

	logger.Info("done")
	return nil
}
