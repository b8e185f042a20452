package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phanxgames/quill"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.js>...",
		Short: "Evaluate tool sources and list the tools they define",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	timeout, err := cfg.ToolTimeout()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var errs []error
	for _, p := range args {
		src, err := os.ReadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		info, err := quill.Check(filepath.Base(p), string(src), timeout)
		if err != nil {
			fmt.Fprintf(out, "%s: FAIL %v\n", p, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", p, info)
	}
	return errors.Join(errs...)
}
