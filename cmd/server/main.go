// Command server runs the interview coach: a browser-facing mock interview
// service backed by hosted chat, transcription and speech models.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile string
	addr    string
)

var rootCmd = &cobra.Command{
	Use:   "interview-coach",
	Short: "Voice-driven mock interview coach",
	Long: `Interview coach runs timed mock interviews for a chosen role and level,
asks questions aloud, transcribes spoken answers and produces a feedback
report with a readiness score.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: ./.env if present)")
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides HTTP_ADDRESS")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
