package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
	"github.com/shashiranjanraj/feria/config"
	"github.com/shashiranjanraj/feria/pkg/auth"
	"github.com/shashiranjanraj/feria/pkg/mongodb"
)

func withMongo(fn func(ctx context.Context) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := mongodb.Connect(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer mongodb.Close(context.Background()) //nolint:errcheck
	return fn(ctx)
}

// feria db:indexes — create the collection indexes.
var dbIndexesCmd = &cobra.Command{
	Use:   "db:indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(func(ctx context.Context) error {
			if err := mongodb.EnsureIndexes(ctx); err != nil {
				return err
			}
			fmt.Println("Indexes ensured.")
			return nil
		})
	},
}

// feria db:seed — create the role vocabulary and the admin account.
var dbSeedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Seed roles and the admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(seed)
	},
}

func seed(ctx context.Context) error {
	roles := repositories.NewRoleRepository()
	users := repositories.NewUserRepository()

	if err := roles.EnsureDefaults(ctx); err != nil {
		return err
	}
	fmt.Println("Roles ensured:", models.RoleNames)

	email := config.Get("ADMIN_EMAIL", "admin@feria.app")
	if _, err := users.FindByEmail(ctx, email); err == nil {
		fmt.Println("Admin account already present.")
		return nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	admin, err := roles.FindByName(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	hashed, err := auth.HashPassword(config.Get("ADMIN_PASSWORD", "change-me"))
	if err != nil {
		return err
	}

	user := models.NewUser("Admin", email, hashed, "", "")
	user.Roles = append(user.Roles, admin.ID)
	if err := users.Insert(ctx, user); err != nil {
		return err
	}
	fmt.Println("Admin account created:", email)
	return nil
}
