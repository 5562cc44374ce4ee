package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/delight-lang/delight/pkgs/errors"
	"github.com/delight-lang/delight/pkgs/lexer"
	"github.com/delight-lang/delight/pkgs/translator"
)

const (
	headerGenerated = "// Code generated by delight from %s; DO NOT EDIT.\n"
	headerHashLine  = "// source blake2b-256: "
)

func (a *app) translateCommand() *cobra.Command {
	var (
		output   string
		toStdout bool
	)

	cmd := &cobra.Command{
		Use:   "translate <file>...",
		Short: "Translate Delight files into D",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output needs exactly one input file, got %d", len(args))
			}
			for _, file := range args {
				code, err := a.translateFile(file)
				if err != nil {
					return err
				}
				switch {
				case toStdout:
					_, err = fmt.Fprint(a.stdout, code)
				case output != "":
					err = writeOutput(output, code)
				default:
					err = writeOutput(outputPath(file, a.cfg.Extension), code)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (single input only)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write the translation to stdout")
	return cmd
}

// translateFile returns the D program for file including its header, or
// prints a diagnostic and returns a translation error.
func (a *app) translateFile(file string) (string, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return "", errors.NewInputError(file, err)
	}

	result, err := translator.TranslateSource(source, a.translateOptions(file)...)
	if err != nil {
		fmt.Fprintln(a.stderr, renderDiagnostic(file, source, err))
		var scanErr *lexer.ScanError
		if stderrors.As(err, &scanErr) {
			return "", errors.NewScanError(file, err)
		}
		return "", errors.NewTranslateError(file, err)
	}

	if !a.cfg.Header {
		return result.Output, nil
	}
	return header(file, source) + result.Output, nil
}

// header returns the generated-code banner recording the source digest.
func header(file string, source []byte) string {
	return fmt.Sprintf(headerGenerated, filepath.Base(file)) +
		headerHashLine + translator.Hash(source) + "\n\n"
}

// outputPath replaces the source extension with ext.
func outputPath(file, ext string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + ext
}

func writeOutput(path, code string) error {
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return errors.NewOutputError(path, err)
	}
	return nil
}
