package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/noah-isme/edubuild-api/internal/repository"
	"github.com/noah-isme/edubuild-api/internal/service"
)

func newCreateAdminCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or report the existing one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth := service.NewAuthService(repository.NewUserRepository(a.db), validator.New(), a.log, service.AuthConfig{
				TokenSecret: a.cfg.JWT.Secret,
				TokenExpiry: a.cfg.JWT.Expiration,
				Issuer:      a.cfg.JWT.Issuer,
				AdminSecret: a.cfg.Auth.AdminSecret,
			})
			user, created, err := auth.EnsureAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account %s already exists with role %s\n", user.Email, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
