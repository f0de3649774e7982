package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xonecas/typedesc/internal/config"
)

var authKey string

var authCmd = &cobra.Command{
	Use:   "auth <provider>",
	Short: "Store the API key of a provider",
	Long: `Auth stores an API key in ~/.config/typedesc/credentials.json. The key is
taken from --key or read from standard input. OPENAI_API_KEY still takes
precedence for OpenAI providers.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuth,
}

func init() {
	authCmd.Flags().StringVar(&authKey, "key", "", "API key (read from stdin when empty)")
}

func runAuth(cmd *cobra.Command, args []string) error {
	name := args[0]
	key := strings.TrimSpace(authKey)
	if key == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no API key given")
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return errors.New("no API key given")
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	creds.SetAPIKey(name, key)
	if err := config.SaveCredentials(creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved API key for %s.\n", name)
	return nil
}
