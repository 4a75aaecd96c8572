package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/user"
	"github.com/spf13/cobra"
)

// passwordEnv lets scripts pass the password without it showing up in the
// process list.
const passwordEnv = "BLOGCTL_PASSWORD"

func newUsersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage dashboard accounts",
	}
	cmd.AddCommand(newUsersCreateCommand(ctx))
	cmd.AddCommand(newUsersListCommand(ctx))
	return cmd
}

func newUsersCreateCommand(ctx *commandContext) *cobra.Command {
	var dto user.CreateUserDTO

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an author account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(dto.Password) == "" {
				dto.Password = os.Getenv(passwordEnv)
			}
			if dto.Password == "" {
				return fmt.Errorf("password required: pass --password or set %s", passwordEnv)
			}
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			u, err := user.NewService(db).Create(cmd.Context(), &dto)
			if errors.Is(err, user.ErrUsernameTaken) {
				return fmt.Errorf("user %q already exists", dto.Username)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&dto.Username, "username", "", "Login name")
	cmd.Flags().StringVar(&dto.Password, "password", "", "Password (min 8 characters)")
	cmd.Flags().StringVar(&dto.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&dto.Email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUsersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and their last login",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			var users []models.UserModel
			if err := db.WithContext(cmd.Context()).Order("username ASC").Find(&users).Error; err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				last := "never"
				if u.LastLoginTime != nil {
					last = u.LastLoginTime.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{u.Username, u.Name, u.Email, last})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Username", "Name", "Email", "Last login"}, rows, nil))
			return nil
		},
	}
}
