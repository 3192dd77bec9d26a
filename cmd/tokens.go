package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-nutrition/app/repository"
	"github.com/vibast-solutions/ms-go-nutrition/config"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Maintain stored refresh tokens",
}

var tokensPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete refresh tokens whose expiry has passed",
	Long: `Delete refresh tokens whose expiry has passed. Expired tokens are already
rejected and removed when presented; this sweeps the ones nobody presents again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err = configureLogging(cfg); err != nil {
			return err
		}

		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		count, err := repository.NewRefreshTokenRepository(db).DeleteExpired(ctx, time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("purged %d expired refresh token(s)\n", count)
		return nil
	},
}

func init() {
	tokensCmd.AddCommand(tokensPurgeCmd)
	rootCmd.AddCommand(tokensCmd)
}
