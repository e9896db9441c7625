// Command admin manages role grants and inspects usage from the shell.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"ai-jobassist-be/internal/bootstrap"
	"ai-jobassist-be/internal/config"
	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/pkg/serverutils"
	"ai-jobassist-be/pkg/database"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	container *bootstrap.Container

	grantRole    string
	grantExpires time.Duration
	grantNotes   string
	tokenTTL     time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "JobAssist administration",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if cmd.Name() == tokenCmd.Name() {
			return nil
		}
		if cfg.Database.Connection == "" {
			return errors.New("DB_CONNECTION_STRING is not set")
		}
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		container, err = bootstrap.NewContainer(db, cfg, logger.NewZapLogger(cfg.App.LogFilePath, true))
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			container.Close()
		}
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant-role <user-id>",
	Short: "Grant admin or super_user to a user, replacing any active grant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userId, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		req := &dto.GrantRoleRequest{UserId: userId, Role: grantRole, Notes: grantNotes}
		if grantExpires > 0 {
			expires := time.Now().UTC().Add(grantExpires)
			req.ExpiresAt = &expires
		}
		if err := serverutils.ValidateRequest(*req); err != nil {
			return err
		}

		res, err := container.RoleService.GrantRole(cmd.Context(), uuid.Nil, req)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke-role <user-id>",
	Short: "Deactivate every active grant of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userId, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		res, err := container.RoleService.RevokeRole(cmd.Context(), uuid.Nil, userId)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage <user-id>",
	Short: "Show a user's tier and usage in the current period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userId, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		res, err := container.UsageService.GetUsageStatus(cmd.Context(), userId)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a bearer token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			return errors.New("refusing to issue tokens in production")
		}
		userId, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		token, err := serverutils.SignToken(cfg.Auth.JWTSecret, userId, jwt.MapClaims{
			"exp": time.Now().Add(tokenTTL).Unix(),
		})
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	grantCmd.Flags().StringVar(&grantRole, "role", "admin", "role to grant (admin or super_user)")
	grantCmd.Flags().DurationVar(&grantExpires, "expires-in", 0, "grant lifetime, 0 for no expiry")
	grantCmd.Flags().StringVar(&grantNotes, "notes", "", "free-form note stored with the grant")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(grantCmd, revokeCmd, usageCmd, tokenCmd)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
