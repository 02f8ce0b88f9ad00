package main

import (
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"chatconnect/internal/tui"
)

var chatLogFile string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatLogFile, "log-file", "", "write logs to this file (logs are discarded otherwise)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if chatLogFile != "" {
		f, err := os.OpenFile(chatLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}

	a, err := buildApp(cfg, logOut)
	if err != nil {
		return err
	}

	title := cfg.Assistant.Product + " · assistente virtual"
	timeout := time.Duration(cfg.Completion.TimeoutSecs)*time.Second + 5*time.Second
	m := tui.New(a.service, title, timeout)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
