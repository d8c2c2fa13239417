package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "wolfwatch"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Wolfwatch - follow werewolf games as they are played",
		Long:          "Wolfwatch reconstructs werewolf game timelines from transcripts and the game server's event stream.",
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
	cmd.PersistentFlags().String("env-file", ".env", "dotenv file to load before the environment")
	cmd.PersistentFlags().String("log-dir", "", "transcript directory (overrides WOLFWATCH_LOG_DIR)")
	cmd.PersistentFlags().String("api", "", "game server URL (overrides WOLFWATCH_API_URL)")

	cmd.AddCommand(
		NewLogsCmd(),
		NewParseCmd(),
		NewReflectionsCmd(),
		NewFingerprintCmd(),
		NewWatchCmd(),
		NewFeedCmd(),
		NewArchiveCmd(),
		NewMCPCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}
