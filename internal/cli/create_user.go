// Package cli implements the admin commands exposed by the binary next
// to the default serve mode.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/Nawfay/bookclub/internal/auth"
	"github.com/Nawfay/bookclub/internal/config"
	"github.com/Nawfay/bookclub/internal/database"
	"github.com/Nawfay/bookclub/internal/database/invites"
	"github.com/Nawfay/bookclub/internal/entities"
)

// CreateUserCommand creates a member account directly in the database,
// bypassing the invite flow. Used to bootstrap the first super admin.
type CreateUserCommand struct {
	DatabasePath string
	Username     string
	Email        string
	Password     string
	Role         string
}

// NewCreateUserCommand creates a new CreateUserCommand.
func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Username, "username", "", "Username for the new member (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address for the new member")
	fs.StringVar(&cmd.Password, "password", "", "Password for the new member (required, min 12 characters)")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleSuper), "Role: super, admin or user")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a member account directly, bypassing the invite flow.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username alice -password 'a long passphrase'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-user -username bob -role user -password 'another passphrase'\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("username is required")
	}
	if cmd.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Run executes the create-user command.
func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(db.DB, invites.NewRepository(db.DB), cfg.Auth)

	user, err := service.CreateUser(cmd.Username, cmd.Email, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created %s account %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}
