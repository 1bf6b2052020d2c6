package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/edubuild-api/internal/repository"
	"github.com/noah-isme/edubuild-api/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample data",
	}

	var ownerEmail string
	projects := &cobra.Command{
		Use:   "projects",
		Short: "Insert the sample project catalogue into an empty database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var ownerID *string
			if ownerEmail != "" {
				owner, err := repository.NewUserRepository(a.db).FindByEmail(ctx, ownerEmail)
				if err != nil {
					return fmt.Errorf("find owner %s: %w", ownerEmail, err)
				}
				ownerID = &owner.ID
			}

			n, err := seed.Projects(ctx, repository.NewProjectRepository(a.db), ownerID, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d projects\n", n)
			return nil
		},
	}
	projects.Flags().StringVar(&ownerEmail, "owner", "", "email of the account recorded as creator")

	cmd.AddCommand(projects)
	return cmd
}
