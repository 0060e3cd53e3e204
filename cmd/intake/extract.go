package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/intake/core/form"
)

// cliSession is the busy-guard key for one-shot extractions.
const cliSession = "cli"

type extractOptions struct {
	format   string
	save     bool
	attempts int
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract [file|-|url]",
		Short: "Extract a form from text and print it as JSON",
		Long: `Extract reads patient information from a file, from standard input when
the argument is "-" or missing, or from a web page with --format url, and
prints the filled form as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", string(form.FormatText), "source format: text, markdown, html or url")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the extracted form to the configured store")
	cmd.Flags().IntVar(&opts.attempts, "attempts", 0, "maximum extraction attempts (default from config)")
	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions, args []string) error {
	format, err := form.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.attempts < 0 {
		return fmt.Errorf("--attempts must be positive, got %d", opts.attempts)
	}

	source, err := readSource(cmd.InOrStdin(), format, args)
	if err != nil {
		return err
	}

	cfg, logger, err := root.load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger, appOptions{
		fetchURLs:   format == form.FormatURL,
		maxAttempts: opts.attempts,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	outcome, err := a.service.Autofill(ctx, cliSession, source, format)
	if err != nil {
		return err
	}
	if !outcome.OK {
		return errors.New(outcome.Message)
	}

	if opts.save {
		message, err := a.service.Save(ctx, *outcome.Form)
		if err != nil {
			return errors.New(message)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), message)
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), outcome.Message)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(outcome.Form)
}

// readSource returns the argument itself for URLs, and otherwise the contents
// of the named file or of in.
func readSource(in io.Reader, format form.SourceFormat, args []string) (string, error) {
	if format == form.FormatURL {
		if len(args) == 0 || args[0] == "-" {
			return "", errors.New("--format url needs the page address as argument")
		}
		return args[0], nil
	}

	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}
