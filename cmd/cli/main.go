package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gofaas/adapters/auth"
	"gofaas/adapters/excel"
	"gofaas/adapters/httpclient"
	"gofaas/adapters/specfile"
	"gofaas/app"
	"gofaas/domain/dataset"
	"gofaas/domain/modelspec"
	"gofaas/internal"
	"gofaas/internal/config"
	"gofaas/internal/errors"
	"gofaas/ports"
)

// errRejected signals a report that was printed but did not pass
var errRejected = stderrors.New("submission rejected")

type env struct {
	cfg    *config.Config
	logger *internal.Logger
	tokens ports.TokenProvider
}

func main() {
	var logLevel string
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "gofaas",
		Short:         "Submit forecasting jobs to the FaaS API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			e.cfg = cfg
			e.logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), cfg.Log.Format)
			e.tokens = auth.FromConfig(cfg.Auth)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (error, warn, info, debug, trace)")

	rootCmd.AddCommand(
		newValidateCmd(e),
		newRunCmd(e),
		newProjectsCmd(e),
		newSpecCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if e.logger != nil {
		_ = e.logger.Sync()
	}
	if err != nil {
		if !stderrors.Is(err, errRejected) {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", errors.GetCode(err), err)
		}
		os.Exit(1)
	}
}

// submitFlags are shared by validate and run
type submitFlags struct {
	data           []string
	dateVariable   string
	dateFormat     string
	specPath       string
	project        string
	sheet          string
	proxyURL       string
	proxyPort      string
	skipValidation bool
}

func (f *submitFlags) register(cmd *cobra.Command, withSkip bool) {
	cmd.Flags().StringArrayVar(&f.data, "data", nil, "Dataset as name=path (.csv or .xlsx); repeat for several, order is kept")
	cmd.Flags().StringVar(&f.dateVariable, "date-variable", "", "Name of the date column shared by every dataset")
	cmd.Flags().StringVar(&f.dateFormat, "date-format", "%Y-%m-%d", "Format of the date column")
	cmd.Flags().StringVar(&f.specPath, "spec", "", "Model spec file (.yaml or .json); defaults are used when omitted")
	cmd.Flags().StringVar(&f.project, "project", "", "Project name (at most 50 characters)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Sheet to read from .xlsx files")
	cmd.Flags().StringVar(&f.proxyURL, "proxy-url", "", "Proxy URL for the FaaS requests")
	cmd.Flags().StringVar(&f.proxyPort, "proxy-port", "", "Proxy port, appended to --proxy-url")
	if withSkip {
		cmd.Flags().BoolVar(&f.skipValidation, "skip-validation", false, "Send straight to modelling without validating first")
	}
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("date-variable")
	_ = cmd.MarkFlagRequired("project")
}

type submission struct {
	datasets []dataset.Dataset
	spec     modelspec.ModelSpec
	opts     app.Options
}

func (f *submitFlags) load(ctx context.Context, e *env) (*submission, error) {
	sources := make([]excel.Source, 0, len(f.data))
	for _, arg := range f.data {
		src, err := excel.ParseSource(arg)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	readerOpts := []excel.ReaderOption{excel.WithLogger(e.logger)}
	if f.sheet != "" {
		readerOpts = append(readerOpts, excel.WithSheet(f.sheet))
	}
	datasets, err := excel.LoadAll(ctx, sources, readerOpts...)
	if err != nil {
		return nil, err
	}
	for _, ds := range datasets {
		e.logger.Debug("[CLI] loaded %s", ds.Summary())
	}

	var spec modelspec.ModelSpec
	if f.specPath != "" {
		spec, err = specfile.Load(f.specPath)
		if err != nil {
			return nil, err
		}
	}

	return &submission{
		datasets: datasets,
		spec:     spec,
		opts: app.Options{
			SkipValidation: f.skipValidation,
			ProxyURL:       f.proxyURL,
			ProxyPort:      f.proxyPort,
		},
	}, nil
}

func newSubmissionService(e *env) *app.SubmissionService {
	return app.NewSubmissionService(e.cfg.API, e.tokens, httpclient.NewFactory(e.logger), e.logger)
}

func newValidateCmd(e *env) *cobra.Command {
	f := &submitFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate datasets and model spec without running the model",
		Long: `Validate datasets and model spec against the FaaS validation endpoint.

Example: gofaas validate --data sales=sales.csv --data price=price.xlsx --date-variable date --project demo --spec spec.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := f.load(cmd.Context(), e)
			if err != nil {
				return err
			}

			report, err := newSubmissionService(e).Validate(cmd.Context(), sub.datasets, f.dateVariable, f.dateFormat, sub.spec, f.project, sub.opts)
			if err != nil {
				return err
			}
			if err := report.Render(cmd.OutOrStdout()); err != nil {
				return err
			}
			if !report.Valid() {
				return errRejected
			}
			return nil
		},
	}
	f.register(cmd, false)

	return cmd
}

func newRunCmd(e *env) *cobra.Command {
	f := &submitFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Validate and send the job for modelling",
		Long: `Validate the submission and, when it passes, send it for modelling.
Results show up in the Projects module; use "gofaas projects" to follow them.

Example: gofaas run --data sales=sales.csv --date-variable date --project demo --skip-validation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := f.load(cmd.Context(), e)
			if err != nil {
				return err
			}

			report, err := newSubmissionService(e).RunModel(cmd.Context(), sub.datasets, f.dateVariable, f.dateFormat, sub.spec, f.project, sub.opts)
			if err != nil {
				return err
			}
			if err := report.Render(cmd.OutOrStdout()); err != nil {
				return err
			}
			if !report.Accepted() {
				return errRejected
			}
			return nil
		},
	}
	f.register(cmd, true)

	return cmd
}

func newProjectsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects and download their results",
	}
	cmd.AddCommand(newProjectsListCmd(e), newProjectsDownloadCmd(e))
	return cmd
}

func newProjectService(e *env, proxy string) (*app.ProjectService, error) {
	client, err := httpclient.NewFactory(e.logger)(proxy)
	if err != nil {
		return nil, err
	}
	return app.NewProjectService(e.cfg.API, e.tokens, client, e.logger), nil
}

func newProjectsListCmd(e *env) *cobra.Command {
	var proxy string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newProjectService(e, proxy)
			if err != nil {
				return err
			}
			projects, err := svc.ListProjects(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCREATED")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Status, p.CreatedAt)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&proxy, "proxy", "", "Proxy as host:port or URL")

	return cmd
}

func newProjectsDownloadCmd(e *env) *cobra.Command {
	var dir, filename, proxy string

	cmd := &cobra.Command{
		Use:   "download [project-id]",
		Short: "Download the results of a finished project",
		Long: `Download every output of a project as forecast-<filename>.zip.

Example: gofaas projects download 65f0c1 --dir ./results --filename demo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newProjectService(e, proxy)
			if err != nil {
				return err
			}
			name := filename
			if name == "" {
				name = args[0]
			}

			res, err := svc.Download(cmd.Context(), args[0], dir, name)
			if err != nil {
				return err
			}
			if !res.Downloaded {
				fmt.Fprintf(cmd.OutOrStdout(), "Your request is still being processed, with the following status: %s\n", res.Status)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "File downloaded to %s\n", res.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the archive to")
	cmd.Flags().StringVar(&filename, "filename", "", "Archive name, defaults to the project id")
	cmd.Flags().StringVar(&proxy, "proxy", "", "Proxy as host:port or URL")

	return cmd
}

func newSpecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Model spec helpers",
	}

	var format string
	template := &cobra.Command{
		Use:   "template",
		Short: "Print the default model spec as a starting point for --spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTemplate(cmd, format)
		},
	}
	template.Flags().StringVar(&format, "format", "yaml", "Output format (yaml or json)")
	cmd.AddCommand(template)

	return cmd
}

func printTemplate(cmd *cobra.Command, format string) error {
	tmpl := modelspec.Template().Wire()

	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(tmpl); err != nil {
			return errors.Wrap(err, "failed to encode template")
		}
		return enc.Close()
	case "json":
		return printJSON(cmd, tmpl)
	}
	return errors.InvalidInputf("unknown format %q, expected yaml or json", format)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode template")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return err
}
