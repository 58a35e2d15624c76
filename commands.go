package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"restaurant/api/config"
	"restaurant/api/controllers"
	"restaurant/api/database"
	"restaurant/api/jwtService"
	"restaurant/api/payment"
	"restaurant/api/routes"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "restaurant",
		Short:        "Restaurant ordering API",
		RunE:         runServe,
		SilenceUsage: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create tables or indexes for the configured database",
			RunE:  runMigrate,
		},
		newTokenCmd(),
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Printf("db close: %v", err)
		}
	}()
	log.Printf("connected to %s database", cfg.DB.Driver)

	if cfg.LegacyOpenPromotion {
		log.Println("warning: PATCH /users/admin/:id is served without authentication")
	}

	ctl := controllers.New(
		store,
		jwtService.New(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		payment.NewStripeGateway(cfg.Payment.SecretKey, cfg.Payment.Currency, nil),
	)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes.New(ctl, routes.Options{LegacyOpenPromotion: cfg.LegacyOpenPromotion}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("restaurant api listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server Shutdown: %v", err)
	}
	log.Println("server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := database.Open(cmd.Context(), cfg.DB)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer store.Close(context.Background())

	if err := store.Migrate(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", cfg.DB.Driver)
	return nil
}

func newTokenCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token for an email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			token, err := jwtService.New(cfg.Auth.Secret, cfg.Auth.TokenTTL).
				GenerateJWT(map[string]interface{}{"email": email})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim to sign")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
