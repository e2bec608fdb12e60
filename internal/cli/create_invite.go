package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Nawfay/bookclub/internal/auth"
	"github.com/Nawfay/bookclub/internal/config"
	"github.com/Nawfay/bookclub/internal/database"
	"github.com/Nawfay/bookclub/internal/database/invites"
	"github.com/Nawfay/bookclub/internal/entities"
)

// CreateInviteCommand mints a single-use invite code from the command line.
type CreateInviteCommand struct {
	DatabasePath string
	Role         string
}

// NewCreateInviteCommand creates a new CreateInviteCommand.
func NewCreateInviteCommand() *CreateInviteCommand {
	return &CreateInviteCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CreateInviteCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-invite", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleUser), "Role the invite grants: admin or user")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-invite [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Mint a single-use invite code for signup.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the create-invite command.
func (cmd *CreateInviteCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(db.DB, invites.NewRepository(db.DB), cfg.Auth)

	invite, err := service.CreateInvite(context.Background(), 0, entities.UserRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	fmt.Printf("Invite code (%s): %s\n", invite.Role, invite.Code)
	return nil
}
