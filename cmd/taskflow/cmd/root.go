package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	debug    bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Task approval workflows",
	Long: `taskflow validates approval process definitions and runs them on the
reference engine.

Example:
taskflow validate definitions/purchase-order.yaml
taskflow demo --definition definitions/purchase-order.yaml --business-key PO-1 --user alice --var approver=bob
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.InfoLevel)
		}
		if jsonLogs {
			logrus.SetFormatter(&logrus.JSONFormatter{})
		} else {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(demoCmd)
}
