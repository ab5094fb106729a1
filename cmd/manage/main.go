// Command manage runs administrative tasks against the site database:
//
//	manage migrate
//	manage creategroup -title "Cats" -slug cats [-description "..."]
//	manage listgroups
//	manage deletegroup -slug cats
//	manage deleteuser -username leo
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/logging"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/validators"
)

var errUsage = errors.New("usage: manage <migrate|creategroup|listgroups|deletegroup|deleteuser> [flags]")

type command struct {
	repos     repositories.Repositories
	migrate   func() error
	validator forms.Validator
	out       io.Writer
}

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, errUsage)
		os.Exit(2)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.CloseDB()

	cmd := &command{
		repos:     repositories.NewPostgres(db.Postgres),
		migrate:   db.Migrate,
		validator: validators.NewValidator(),
		out:       os.Stdout,
	}
	if err := cmd.run(context.Background(), os.Args[1:]); err != nil {
		db.CloseDB()
		logging.Fatal().Err(err).Str("command", os.Args[1]).Msg("Command failed")
	}
}

func (cmd *command) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	name, args := args[0], args[1:]

	switch name {
	case "migrate":
		return cmd.migrate()
	case "creategroup":
		return cmd.createGroup(ctx, args)
	case "listgroups":
		return cmd.listGroups(ctx)
	case "deletegroup":
		return cmd.deleteGroup(ctx, args)
	case "deleteuser":
		return cmd.deleteUser(ctx, args)
	}
	return fmt.Errorf("unknown command %q: %w", name, errUsage)
}

func (cmd *command) createGroup(ctx context.Context, args []string) error {
	form := &forms.GroupForm{}
	fs := flag.NewFlagSet("creategroup", flag.ContinueOnError)
	fs.SetOutput(cmd.out)
	fs.StringVar(&form.Title, "title", "", "group title (required)")
	fs.StringVar(&form.Slug, "slug", "", "unique slug used in the group URL (required)")
	fs.StringVar(&form.Description, "description", "", "group description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if errs := form.Clean(cmd.validator); errs.Any() {
		var msgs []string
		for field, fieldErrs := range errs {
			msgs = append(msgs, field+": "+strings.Join(fieldErrs, " "))
		}
		return fmt.Errorf("invalid group: %s", strings.Join(msgs, "; "))
	}

	group := &models.Group{Title: form.Title, Slug: form.Slug, Description: form.Description}
	if err := cmd.repos.Groups.CreateGroup(ctx, group); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("group with slug %q already exists", form.Slug)
		}
		return err
	}
	fmt.Fprintf(cmd.out, "created group %d %s\n", group.ID, group.Slug)
	return nil
}

func (cmd *command) listGroups(ctx context.Context) error {
	groups, err := cmd.repos.Groups.GetGroups(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tTITLE")
	for _, g := range groups {
		fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
	}
	return w.Flush()
}

func (cmd *command) deleteGroup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("deletegroup", flag.ContinueOnError)
	fs.SetOutput(cmd.out)
	slug := fs.String("slug", "", "slug of the group to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}

	group, err := cmd.repos.Groups.GetGroupBySlug(ctx, *slug)
	if err != nil {
		return fmt.Errorf("group %q: %w", *slug, err)
	}
	if err := cmd.repos.Groups.DeleteGroup(ctx, group.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "deleted group %s, its posts are kept without a group\n", group.Slug)
	return nil
}

func (cmd *command) deleteUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("deleteuser", flag.ContinueOnError)
	fs.SetOutput(cmd.out)
	username := fs.String("username", "", "username of the user to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := cmd.repos.Users.GetUserByUsername(ctx, *username)
	if err != nil {
		return fmt.Errorf("user %q: %w", *username, err)
	}
	if err := cmd.repos.Users.DeleteUser(ctx, user.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "deleted user %s with their posts, comments and follows\n", user.Username)
	return nil
}
