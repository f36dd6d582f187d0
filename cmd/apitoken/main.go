// Command apitoken issues a signed bearer token for one API client.
package main

import (
	"fmt"
	"os"
	"time"

	"stock_backtest/internal/platform/config"
	jwtmw "stock_backtest/internal/platform/jwt"

	"github.com/spf13/cobra"
)

var flagTTL time.Duration

var rootCmd = &cobra.Command{
	Use:          "apitoken CLIENT_ID",
	Short:        "Issue an API token signed with JWT_SECRET",
	Example:      "  apitoken mobile-app --ttl 720h",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := issue(args[0], flagTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.Flags().DurationVar(&flagTTL, "ttl", 30*24*time.Hour, "token lifetime")
}

func issue(clientID string, ttl time.Duration) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("client id must not be empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("--ttl must be positive")
	}
	secret, err := jwtmw.SecretFromEnv()
	if err != nil {
		return "", err
	}
	return jwtmw.NewGenerator(secret, ttl).GenerateToken(clientID)
}

func main() {
	config.LoadDotEnv()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
