package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/delight-lang/delight/pkgs/errors"
	"github.com/delight-lang/delight/pkgs/translator"
)

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Verify generated D files are up to date with their sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, file := range args {
				if err := a.checkFile(file); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "ok\t%s\n", file)
			}
			return nil
		},
	}
}

// checkFile compares the digest recorded in the generated header with the
// current source.
func (a *app) checkFile(file string) error {
	source, err := os.ReadFile(file)
	if err != nil {
		return errors.NewInputError(file, err)
	}

	output := outputPath(file, a.cfg.Extension)
	generated, err := os.ReadFile(output)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewStaleError(file, output, "generated file is missing")
		}
		return errors.NewInputError(output, err)
	}

	recorded, ok := recordedHash(generated)
	if !ok {
		return errors.NewStaleError(file, output, "generated file has no delight header")
	}
	if recorded != translator.Hash(source) {
		return errors.NewStaleError(file, output, "source changed since the last translation")
	}
	return nil
}

// recordedHash extracts the source digest from a generated header. Only the
// leading comment lines are searched.
func recordedHash(generated []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(generated))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "//") {
			return "", false
		}
		if hash, ok := strings.CutPrefix(line, headerHashLine); ok {
			return strings.TrimSpace(hash), true
		}
	}
	return "", false
}
