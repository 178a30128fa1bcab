package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "ripple"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// NewRootCmd creates the ripple root command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "ripple - local-first chat data layer",
		Long:          "ripple is a local chat store with seeding, inspection, and repair tools.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().Bool("debug", false, "verbose logging")

	cmd.AddCommand(
		NewInitCmd(),
		NewSeedCmd(),
		NewLsCmd(),
		NewHistoryCmd(),
		NewSendCmd(),
		NewReadCmd(),
		NewSearchCmd(),
		NewPinCmd(),
		NewMuteCmd(),
		NewAssistantCmd(),
		NewRepairCmd(),
		NewDestroyCmd(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(Version).Execute()
}
