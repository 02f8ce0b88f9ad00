package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "chatconnect",
	Short: "Support assistant answering from a local FAQ with a remote completion fallback",
	Long: `chatconnect answers support questions about the Connect+ app. Questions are
matched against a local FAQ list and an optional knowledge document; when local
knowledge is not enough the conversation is sent to a chat-completion provider.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./config.yaml or ~/.config/chatconnect/config.yaml)")
	rootCmd.AddCommand(serveCmd, chatCmd, askCmd)
}
