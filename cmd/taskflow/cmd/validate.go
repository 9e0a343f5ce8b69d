package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/viant/taskflow/service/dao/definition"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition.yaml>...",
	Short: "Load and validate process definitions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	loader := definition.New()
	failed := 0
	for _, URL := range args {
		loaded, err := loader.Load(cmd.Context(), URL)
		if err != nil {
			failed++
			logrus.WithField("url", URL).Debugf("validation failed: %v", err)
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", URL, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK   %s (%s, %d activities)\n", URL, loaded.Key, len(loaded.Activities))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d definitions are invalid", failed, len(args))
	}
	return nil
}
