package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/convert"
	"github.com/joseph-ayodele/docconv/internal/export"
	"github.com/joseph-ayodele/docconv/internal/extract"
)

// run executes one CLI invocation and returns the process exit code:
// 1 for usage errors, 0 otherwise, including failed conversions.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := common.LoadConfig()
	if err != nil {
		_ = writeJSON(stdout, failure(err))
		return 1
	}
	runID := uuid.NewString()
	logger := newLogger(cfg.Log, runID, stderr)
	ctx = common.WithLogger(common.WithRequestID(ctx, runID), logger)

	if len(args) == 0 {
		_ = writeJSON(stdout, failure(common.InvalidInput("Usage: docconv <operation> [args]", nil)))
		return 1
	}

	a, err := newApp(ctx, cfg, logger, stdout)
	if err != nil {
		logger.Error("startup failed", "error", err)
		_ = writeJSON(stdout, failure(err))
		return 1
	}
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stderr)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		_ = writeJSON(stdout, failure(err))
		return 1
	}
	if a.helpErr != nil {
		_ = writeJSON(stdout, failure(a.helpErr))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	var showVersion bool
	root := &cobra.Command{
		Use:           "docconv <operation> <file_path> [json_args]",
		Short:         "Convert documents to markdown with OCR and embedded-text fallback",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return a.print(a.versionReport())
			}
			op := ""
			if len(args) > 0 {
				op = args[0]
			}
			return a.print(errorReport{Error: "Unknown operation: " + op, Code: codes.Unimplemented.String()})
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	// Help is a usage error printed as JSON; nothing goes to stdout as text.
	root.SetHelpFunc(func(c *cobra.Command, _ []string) {
		a.helpErr = common.InvalidInput("Usage: "+c.UseLine(), nil)
	})
	root.SetHelpCommand(&cobra.Command{
		Use:    "help",
		Hidden: true,
		Args:   cobra.ArbitraryArgs,
		RunE: func(*cobra.Command, []string) error {
			return common.InvalidInput("Usage: "+root.UseLine(), nil)
		},
	})
	root.Flags().BoolVar(&showVersion, "version", false, "print version and capability report")

	root.AddCommand(
		a.conversionCmd(convert.ModeConvert, "render a document to markdown, tables and images"),
		a.conversionCmd(convert.ModeOCR, "OCR every page, falling back to embedded text"),
		a.conversionCmd(convert.ModeEmbedded, "read the embedded text layer only"),
		a.extractCmd(),
		a.exportCmd(),
	)
	return root
}

// usageArgs rejects argument counts outside [min,max] with a usage message.
func usageArgs(min, max int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			return common.InvalidInput(usage, nil)
		}
		return nil
	}
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// resolve maps the input to a local file. Only malformed inputs are usage errors;
// unreachable ones become failed results through onFail.
func (a *app) resolve(ctx context.Context, input string, onFail func(error) error) (string, func(), error) {
	local, cleanup, err := a.resolver.Resolve(ctx, input)
	if err == nil {
		return local, cleanup, nil
	}
	if errors.Is(err, common.ErrInvalidInput) {
		return "", cleanup, err
	}
	a.logger.Error("failed to resolve input", "path", input, "error", err)
	return "", cleanup, onFail(err)
}

var errHandled = errors.New("handled")

func (a *app) conversionCmd(mode convert.Mode, short string) *cobra.Command {
	usage := fmt.Sprintf("Usage: docconv %s <file_path> [options_json]", mode)
	return &cobra.Command{
		Use:   string(mode) + " <file_path> [options_json]",
		Short: short,
		Args:  usageArgs(1, 2, usage),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := convert.ParseOptions(argAt(args, 1))
			if err != nil {
				return err
			}
			ctx, cancel := a.opContext(cmd.Context())
			defer cancel()

			local, cleanup, err := a.resolve(ctx, args[0], func(err error) error {
				res := convert.Failed(err.Error(), 0)
				res.Code = convert.FailureCode(err).String()
				if perr := a.print(res); perr != nil {
					return perr
				}
				return errHandled
			})
			defer cleanup()
			if errors.Is(err, errHandled) {
				return nil
			}
			if err != nil {
				return err
			}
			return a.print(a.conv.Convert(ctx, mode, local, opts))
		},
	}
}

func (a *app) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file_path> [topics_json]",
		Short: "extract labelled fields for the given topics",
		Args:  usageArgs(1, 2, "Usage: docconv extract <file_path> [topics_json]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			topics, err := extract.ParseTopics(argAt(args, 1))
			if err != nil {
				return err
			}
			ctx, cancel := a.opContext(cmd.Context())
			defer cancel()

			local, cleanup, err := a.resolve(ctx, args[0], func(err error) error {
				if perr := a.print(extract.Result{Fields: map[string]string{}, Error: err.Error()}); perr != nil {
					return perr
				}
				return errHandled
			})
			defer cleanup()
			if errors.Is(err, errHandled) {
				return nil
			}
			if err != nil {
				return err
			}
			res, _ := a.extract.Extract(ctx, local, topics)
			return a.print(res)
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file_path> <out.xlsx> [topics_json]",
		Short: "write pages, fields and a summary to an XLSX workbook",
		Args:  usageArgs(2, 3, "Usage: docconv export <file_path> <out.xlsx> [topics_json]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			topics, err := extract.ParseTopics(argAt(args, 2))
			if err != nil {
				return err
			}
			ctx, cancel := a.opContext(cmd.Context())
			defer cancel()

			out := args[1]
			local, cleanup, err := a.resolve(ctx, args[0], func(err error) error {
				if perr := a.print(export.Result{Path: out, Error: err.Error()}); perr != nil {
					return perr
				}
				return errHandled
			})
			defer cleanup()
			if errors.Is(err, errHandled) {
				return nil
			}
			if err != nil {
				return err
			}
			return a.print(a.export.Export(ctx, local, out, topics))
		},
	}
}
