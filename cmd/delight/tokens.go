package main

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/delight-lang/delight/pkgs/classifier"
	"github.com/delight-lang/delight/pkgs/errors"
	"github.com/delight-lang/delight/pkgs/lexer"
)

// tokenRecord is the cbor form of one classified token.
type tokenRecord struct {
	Text     string `cbor:"1,keyasint"`
	Line     int    `cbor:"2,keyasint"`
	Level    int    `cbor:"3,keyasint"`
	Category string `cbor:"4,keyasint"`
	Raw      bool   `cbor:"5,keyasint,omitempty"`
}

func (a *app) tokensCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the classified token stream of a Delight file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			source, err := os.ReadFile(file)
			if err != nil {
				return errors.NewInputError(file, err)
			}

			opts := []lexer.Option{lexer.WithFilename(file), lexer.WithLogger(a.logger)}
			if a.cfg.Indentation != "" {
				opts = append(opts, lexer.WithIndentation(a.cfg.Indentation))
			}
			stream, err := lexer.Scan(source, opts...)
			if err != nil {
				fmt.Fprintln(a.stderr, renderDiagnostic(file, source, err))
				return errors.NewScanError(file, err)
			}

			records := classify(stream.Tokens())
			switch format {
			case "text":
				for _, r := range records {
					text := r.Text
					if r.Raw {
						text = "raw " + fmt.Sprintf("%q", r.Text)
					}
					fmt.Fprintf(a.stdout, "%d\t%d\t%s\t%s\n", r.Line, r.Level, r.Category, text)
				}
				return nil
			case "cbor":
				em, err := cbor.CanonicalEncOptions().EncMode()
				if err != nil {
					return err
				}
				data, err := em.Marshal(records)
				if err != nil {
					return err
				}
				_, err = a.stdout.Write(data)
				return err
			default:
				return fmt.Errorf("unknown format %q (want text or cbor)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or cbor")
	return cmd
}

func classify(tokens []lexer.Token) []tokenRecord {
	records := make([]tokenRecord, 0, len(tokens))
	for _, tok := range tokens {
		category := "raw"
		if !tok.Raw {
			category = classifier.Classify(tok.Text).String()
		}
		records = append(records, tokenRecord{
			Text:     tok.Text,
			Line:     tok.Line,
			Level:    tok.Level,
			Category: category,
			Raw:      tok.Raw,
		})
	}
	return records
}
