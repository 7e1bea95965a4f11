package cmd

import (
	"encoding/base64"
	"fmt"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	var dotenv bool

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Generate COOKIE_HASH_KEY and COOKIE_BLOCK_KEY values for the view session cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := securecookie.GenerateRandomKey(64)
			block := securecookie.GenerateRandomKey(32)
			if hash == nil || block == nil {
				return fmt.Errorf("random source unavailable")
			}
			prefix := "export "
			if dotenv {
				prefix = ""
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%sCOOKIE_HASH_KEY=%s\n", prefix, base64.StdEncoding.EncodeToString(hash))
			fmt.Fprintf(out, "%sCOOKIE_BLOCK_KEY=%s\n", prefix, base64.StdEncoding.EncodeToString(block))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dotenv, "dotenv", false, "print KEY=value lines for a .env file")
	return cmd
}
