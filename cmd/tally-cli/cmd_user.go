package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/client"
)

var userView = view[client.User]{
	headers: []string{"ID", "USERNAME", "EMAIL", "ROLES", "VERIFIED"},
	row: func(u *client.User) []string {
		return []string{u.ID, u.Username, u.Email, strings.Join(u.Roles, ","), fmt.Sprint(u.VerifiedEmail)}
	},
}

func users() *client.ResourceService[client.User, client.CreateUserRequest, client.UpdateUserRequest] {
	return apiClient.Users
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(userCreateCmd())
	cmd.AddCommand(getCmd("user", users, userView))
	cmd.AddCommand(userUpdateCmd())
	cmd.AddCommand(deleteCmd("user", users))
	cmd.AddCommand(userListCmd())
	cmd.AddCommand(searchCmd("user", "username", users))
	return cmd
}

// userFlags holds the optional profile attributes shared by create and update.
type userFlags struct {
	roles    []string
	locale   string
	timezone string
	verified bool
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.roles, "roles", nil, "Role ids (comma separated)")
	cmd.Flags().StringVar(&f.locale, "locale", "", "Locale, e.g. en-US")
	cmd.Flags().StringVar(&f.timezone, "timezone", "", "IANA timezone")
	cmd.Flags().BoolVar(&f.verified, "verified", false, "Mark the email as verified")
}

// apply returns pointers for the flags the caller actually set.
func (f *userFlags) apply(cmd *cobra.Command) (roles []string, locale, timezone *string, verified *bool) {
	if cmd.Flags().Changed("roles") {
		roles = f.roles
		if roles == nil {
			roles = []string{}
		}
	}
	if cmd.Flags().Changed("locale") {
		locale = &f.locale
	}
	if cmd.Flags().Changed("timezone") {
		timezone = &f.timezone
	}
	if cmd.Flags().Changed("verified") {
		verified = &f.verified
	}
	return roles, locale, timezone, verified
}

func userCreateCmd() *cobra.Command {
	var email string
	var f userFlags
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &client.CreateUserRequest{Username: args[0], Email: email}
			req.Roles, req.Locale, req.Timezone, req.VerifiedEmail = f.apply(cmd)
			u, err := users().Create(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			return outputOne(userView, u)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("email")
	f.register(cmd)
	return cmd
}

func userUpdateCmd() *cobra.Command {
	var username, email string
	var f userFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &client.UpdateUserRequest{}
			if cmd.Flags().Changed("username") {
				req.Username = &username
			}
			if cmd.Flags().Changed("email") {
				req.Email = &email
			}
			req.Roles, req.Locale, req.Timezone, req.VerifiedEmail = f.apply(cmd)
			if req.Username == nil && req.Email == nil && req.Roles == nil &&
				req.Locale == nil && req.Timezone == nil && req.VerifiedEmail == nil {
				return errors.New("nothing to update")
			}
			u, err := users().Update(cmd.Context(), args[0], req)
			if err != nil {
				return fmt.Errorf("update user: %w", err)
			}
			return outputOne(userView, u)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&email, "email", "", "New email address")
	f.register(cmd)
	return cmd
}

func userListCmd() *cobra.Command {
	var p pageFlags
	var username, email string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := p.listOptions(map[string]string{"username": username, "email": email})
			if err != nil {
				return err
			}
			page, err := users().List(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			return outputList(userView, page.Rows, page.Count)
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&username, "username", "", "Filter by username substring")
	cmd.Flags().StringVar(&email, "email", "", "Filter by email substring")
	return cmd
}
