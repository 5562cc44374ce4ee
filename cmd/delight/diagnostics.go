package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/delight-lang/delight/pkgs/generator"
	"github.com/delight-lang/delight/pkgs/lexer"
)

// renderDiagnostic formats a translation failure as
//
//	error: <message>
//	  --> <file>:<line>
//	   |
//	 4 | <source line>
//	   = <reason or suggestion>
func renderDiagnostic(file string, source []byte, err error) string {
	redBold := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	line, detail := 0, ""
	var perr *generator.ParseError
	var scanErr *lexer.ScanError
	switch {
	case stderrors.As(err, &perr):
		line, detail = perr.Line, perr.Detail()
	case stderrors.As(err, &scanErr):
		line = scanErr.Line
	}

	lines := []string{redBold("error: ") + err.Error()}
	if line <= 0 {
		lines = append(lines, fmt.Sprintf("  %s %s", blue("-->"), file))
		return strings.Join(lines, "\n")
	}

	number := fmt.Sprintf("%d", line)
	margin := strings.Repeat(" ", len(number))
	lines = append(lines,
		fmt.Sprintf("%s%s %s:%d", margin, blue("-->"), file, line),
		blue(margin+" |"),
	)
	if text, ok := sourceLine(source, line); ok {
		lines = append(lines, blue(number+" |")+" "+text)
	}
	if detail != "" {
		lines = append(lines, blue(margin+" =")+" "+yellow(detail))
	}
	return strings.Join(lines, "\n")
}

// sourceLine returns the 1-based line n of source without its newline.
func sourceLine(source []byte, n int) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(string(source), "\r\n", "\n"), "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], " \t"), true
}
