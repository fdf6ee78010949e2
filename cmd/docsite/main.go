// cmd/docsite/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"docsite/internal/config"
	derrors "docsite/internal/errors"
	"docsite/internal/logfields"
	"docsite/internal/metrics"
	"docsite/internal/render"
	"docsite/internal/scaffold"
	"docsite/internal/server"
	"docsite/internal/site"

	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	v := config.NewViper()
	if err := newRootCmd(v).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "docsite: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs, resolved once per process.
type app struct {
	opts   config.Options
	site   config.Site
	logger *zap.Logger
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "docsite",
		Short:         "Build and serve a documentation site from a tree of Markdown files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String(config.KeySource, config.DefaultSource, "source directory of the documentation")
	flags.String(config.KeyOutput, config.DefaultOutput, "output directory of the generated site")
	flags.String(config.KeyConfig, config.DefaultSiteFile, "project metadata file")
	flags.String(config.KeyTemplates, "", "directory with layout.html, header.html and footer.html overriding the built-in theme")
	flags.Bool(config.KeySanitize, false, "sanitize rendered HTML")
	flags.Bool(config.KeyClean, false, "empty the output directory before building")
	flags.Bool(config.KeyStrict, false, "fail the build when any source file is skipped")
	flags.Int(config.KeyPort, config.DefaultPort, "port for the development server (env PORT)")
	flags.BoolP(config.KeyVerbose, "v", false, "enable debug logging")
	_ = v.BindPFlags(flags)

	root.AddCommand(
		newBuildCmd(v),
		newServeCmd(v),
		newInitCmd(),
		newNewCmd(v),
	)
	return root
}

func setup(v *viper.Viper) (*app, error) {
	opts, err := config.LoadOptions(v)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return nil, err
	}
	site, err := config.LoadSite(opts.SiteFile)
	if err != nil {
		return nil, err
	}
	return &app{opts: opts, site: site, logger: logger}, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func (a *app) assembler(recorder metrics.Recorder) (*site.Assembler, error) {
	return site.New(a.site, site.Options{
		SourceRoot:     a.opts.Source,
		OutputDir:      a.opts.Output,
		TemplateDir:    a.opts.TemplateDir,
		Sanitize:       a.opts.Sanitize,
		HighlightStyle: render.DefaultHighlightStyle,
	}, a.logger, recorder)
}

func newBuildCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Write the whole site to the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(v)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			asm, err := a.assembler(nil)
			if err != nil {
				return err
			}
			report, err := asm.Build(a.opts.Output, site.BuildOptions{CleanDestination: a.opts.Clean})
			if err != nil {
				kind, _ := derrors.KindOf(err)
				a.logger.Error("Build failed", logfields.Kind(string(kind)), logfields.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d pages in %s", report.Pages, a.opts.Output)
			if n := len(report.Skipped); n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d skipped)", n)
			}
			fmt.Fprintln(cmd.OutOrStdout())

			if skipErr := report.Err(); skipErr != nil {
				for _, err := range multierr.Errors(skipErr) {
					fmt.Fprintln(cmd.ErrOrStderr(), "skipped:", err)
				}
				if a.opts.Strict {
					return fmt.Errorf("%d source files skipped: %w", len(report.Skipped), skipErr)
				}
			}
			return nil
		},
	}
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Build the site, then serve it live and rebuild on changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(v)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			reg := prom.NewRegistry()
			recorder := metrics.NewPrometheusRecorder(reg)
			asm, err := a.assembler(recorder)
			if err != nil {
				return err
			}
			srv := server.New(asm, server.Options{
				OutputDir:      a.opts.Output,
				Clean:          a.opts.Clean,
				MetricsHandler: metrics.HTTPHandler(reg),
			}, a.logger, recorder)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Serving site on http://localhost:%d\nPress Ctrl+C to stop\n", a.opts.Port)
			return srv.Run(ctx, fmt.Sprintf(":%d", a.opts.Port))
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter site.yaml and docs tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			created, err := scaffold.CreateNewSite(dir)
			if err != nil {
				return err
			}
			for _, path := range created {
				fmt.Fprintln(cmd.OutOrStdout(), "Created:", path)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Site scaffolded. Run \"docsite serve\" inside", dir)
			return nil
		},
	}
}

func newNewCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "new <title>",
		Short: "Create a new document in the source directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(v)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			path, err := scaffold.CreateNewContent(a.opts.Source, args[0], a.site)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created:", path)
			return nil
		},
	}
}
