package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"innovator-portal/api"
	"innovator-portal/pkg/database"
	"innovator-portal/pkg/models"
	"innovator-portal/pkg/utils"
)

var serveSeedOwner string

// serveMockCmd runs the in-memory backend for local development
var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Run an in-memory idea backend for local development",
	Long: `Starts the four idea endpoints on PORT backed by memory.
Tokens are validated with JWT_SECRET; mint one with "ideas mock-token".
Nothing is persisted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateMockServer(); err != nil {
			return err
		}

		db := database.NewMemoryDatabase()
		if serveSeedOwner != "" {
			if err := db.Seed(serveSeedOwner, sampleIdeas()...); err != nil {
				return fmt.Errorf("failed to seed ideas: %w", err)
			}
		}

		srv := &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           api.NewRouter(cfg, db, logger.Named("mock")),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, cancel := signalContext()
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("mock backend listening",
				zap.String("addr", srv.Addr),
				zap.String("environment", cfg.Environment))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down mock backend")
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

var tokenFlags struct {
	user  string
	email string
	role  string
	ttl   time.Duration
}

// mockTokenCmd prints a bearer token the mock backend accepts
var mockTokenCmd = &cobra.Command{
	Use:   "mock-token",
	Short: "Mint a bearer token for the mock backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateMockServer(); err != nil {
			return err
		}
		tok, exp, err := utils.NewJWTService(cfg.JWTSecret).GenerateAccessToken(models.Principal{
			UserID: tokenFlags.user,
			Email:  tokenFlags.email,
			Role:   tokenFlags.role,
		}, tokenFlags.ttl)
		if err != nil {
			return err
		}
		logger.Debug("minted mock token",
			zap.String("user", tokenFlags.user),
			zap.Time("expires", time.Unix(exp, 0)))
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	serveMockCmd.Flags().StringVar(&serveSeedOwner, "seed-owner", "", "Seed sample ideas for this user id")

	mockTokenCmd.Flags().StringVar(&tokenFlags.user, "user", "innovator-1", "User id (token subject)")
	mockTokenCmd.Flags().StringVar(&tokenFlags.email, "email", "founder@example.com", "Email claim")
	mockTokenCmd.Flags().StringVar(&tokenFlags.role, "role", api.RoleInnovator, "Role claim")
	mockTokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 12*time.Hour, "Token lifetime")
}

func sampleIdeas() []models.Idea {
	now := time.Now().UTC()
	day := 24 * time.Hour
	return []models.Idea{
		{Title: "Solar-powered cold storage", Description: "Off-grid cooling for smallholder farmers",
			Category: "AgriTech", Tags: []string{"solar", "farming"}, Status: models.StatusActive,
			Visibility: models.VisibilityPublic, Views: 120, Interests: 9, CreatedAt: now.Add(-9 * day)},
		{Title: "Clinic queue SMS", Description: "Text patients when their turn is near",
			Category: "HealthTech", Tags: []string{"sms", "clinics"}, Status: models.StatusPending,
			Visibility: models.VisibilityPublic, Views: 48, Interests: 4, CreatedAt: now.Add(-5 * day)},
		{Title: "Micro-loan scoring", Description: "Mobile money history as credit signal",
			Category: "FinTech", Tags: []string{"credit"}, Status: models.StatusDraft,
			Visibility: models.VisibilityPrivate, CreatedAt: now.Add(-2 * day)},
		{Title: "Plastic-to-brick press", Description: "Community recycling kiosks",
			Category: "CleanTech", Tags: []string{"recycling"}, Status: models.StatusRejected,
			Visibility: models.VisibilityPublic, Views: 15, Interests: 1, CreatedAt: now.Add(-20 * day)},
	}
}
