package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sablecliff/accountd/internal/formatter"
	"github.com/sablecliff/accountd/internal/models"
	"github.com/sablecliff/accountd/internal/shared"
)

// UserGet looks up a single user by one of the three keys.
func (r *Runner) UserGet(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, users, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	var user *models.User
	switch {
	case cmd.String("email") != "":
		user, err = users.GetByEmail(ctx, cmd.String("email"))
	case cmd.Int("id") != 0:
		user, err = users.GetByID(ctx, int64(cmd.Int("id")))
	case cmd.String("customer-id") != "":
		user, err = users.GetByExternalCustomerID(ctx, cmd.String("customer-id"))
	default:
		return fmt.Errorf("%w: one of --email, --id, or --customer-id", shared.ErrMissingArgument)
	}
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	return r.writeJSON(user.View(), cmd.Bool("pretty"))
}

// UserCreate inserts a user, returning the existing record when the email is taken.
func (r *Runner) UserCreate(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, users, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := users.Create(ctx, cmd.String("email"), models.NullString(cmd.String("alias")))
	if err != nil {
		return err
	}

	return r.writeJSON(user.View(), cmd.Bool("pretty"))
}

// UserExport writes all users in the requested format.
func (r *Runner) UserExport(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, users, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	all, err := users.List(ctx)
	if err != nil {
		return err
	}

	var content []byte
	switch format := cmd.String("format"); format {
	case "csv":
		if content, err = formatter.ExportToCSV(all); err != nil {
			return err
		}
	case "markdown", "md":
		content = formatter.ExportToMarkdown(all)
	case "text":
		content = formatter.ExportToText(all)
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}

	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteToFile(output, content); err != nil {
			return err
		}
		r.logger.Info("export written", "path", output, "users", len(all))
		return nil
	}

	if _, err := r.output.Write(content); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
