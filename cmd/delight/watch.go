package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/delight-lang/delight/pkgs/errors"
)

func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]...",
		Short: "Retranslate Delight files whenever they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return a.watch(cmd.Context(), args)
		},
	}
}

// watch blocks until ctx is done. Translation failures are reported and
// watching continues.
func (a *app) watch(ctx context.Context, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrWatch, "cannot start file watcher", err)
	}
	defer watcher.Close()

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			return errors.Wrap(errors.ErrWatch, fmt.Sprintf("cannot watch '%s'", path), err).
				WithContext("path", path)
		}
		a.logger.Debug("watching", "path", path)
	}
	fmt.Fprintf(a.stdout, "watching %d path(s)\n", len(paths))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != SourceExtension {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			a.retranslate(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", "error", err)
		}
	}
}

func (a *app) retranslate(file string) {
	code, err := a.translateFile(file)
	if err != nil {
		// diagnostics were already printed for translation failures
		if !errors.IsType(err, errors.ErrTranslate) && !errors.IsType(err, errors.ErrScan) {
			fmt.Fprintf(a.stderr, "Error: %s\n", errors.Describe(err))
		}
		return
	}
	output := outputPath(file, a.cfg.Extension)
	if err := writeOutput(output, code); err != nil {
		fmt.Fprintf(a.stderr, "Error: %s\n", errors.Describe(err))
		return
	}
	fmt.Fprintf(a.stdout, "translated %s -> %s\n", file, output)
}
