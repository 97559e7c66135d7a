package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/ops"
	"github.com/pagemark/pagemark/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "pagemark",
		Usage:   "Visual feedback server for websites",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(db, cfg),
			clientsCmd(db),
			projectsCmd(db),
			assigneesCmd(db),
			commentsCmd(db),
			decisionsCmd(db),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the feedback HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (overrides config)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			if bind := c.String("bind"); bind != "" {
				cfg.ListenBind = bind
			}
			if port := c.Int("port"); port != 0 {
				cfg.ListenPort = port
			}

			srv := web.NewServer(db, cfg, Version)
			return web.Run(srv)
		},
	}
}

// clientsCmd creates the clients command group.
func clientsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "clients",
		Usage: "Manage tenants",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a new tenant and print its credentials",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Tenant name"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.CreateClient(db, ops.CreateClientInput{Name: c.String("name")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List registered tenants",
				Action: func(c *cli.Context) error {
					output, err := ops.ListClients(db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// projectsCmd creates the projects command group.
func projectsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "Manage a tenant's projects",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a site under a tenant",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Project name"},
					&cli.StringFlag{Name: "url", Required: true, Usage: "Site URL; its origin matches widget submissions"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.CreateProject(db, ops.CreateProjectInput{
						Token: c.String("token"),
						Name:  c.String("name"),
						URL:   c.String("url"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List a tenant's projects",
				Flags: []cli.Flag{tokenFlag()},
				Action: func(c *cli.Context) error {
					output, err := ops.ListProjects(db, ops.ListProjectsInput{Token: c.String("token")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// assigneesCmd creates the assignees command group.
func assigneesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "assignees",
		Usage: "Manage a tenant's assignee roster",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add an assignee name",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Assignee name"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.CreateAssignee(db, ops.CreateAssigneeInput{
						Token: c.String("token"),
						Name:  c.String("name"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List assignee names",
				Flags: []cli.Flag{tokenFlag()},
				Action: func(c *cli.Context) error {
					output, err := ops.ListAssignees(db, ops.ListAssigneesInput{Token: c.String("token")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// commentsCmd creates the comments command.
func commentsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "comments",
		Usage: "List feedback comments in triage order",
		Flags: []cli.Flag{
			tokenFlag(),
			&cli.StringFlag{Name: "status", Usage: "Filter by status (open|resolved)"},
			&cli.StringFlag{Name: "priority", Usage: "Filter by priority (high|med|low)"},
			&cli.StringFlag{Name: "assignee", Usage: "Filter by assignee name"},
			&cli.Int64Flag{Name: "project", Usage: "Filter by project id"},
			&cli.BoolFlag{Name: "images", Usage: "Include image payloads"},
			&cli.IntFlag{Name: "limit", Usage: "Page size"},
			&cli.IntFlag{Name: "offset", Usage: "Page offset"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Token:         c.String("token"),
				Status:        c.String("status"),
				Priority:      c.String("priority"),
				Assignee:      c.String("assignee"),
				ExcludeImages: !c.Bool("images"),
				Limit:         c.Int("limit"),
				Offset:        c.Int("offset"),
			}
			if project := c.Int64("project"); project != 0 {
				input.ProjectID = &project
			}

			output, err := ops.List(db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// decisionsCmd creates the decisions command group.
func decisionsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "decisions",
		Usage: "Work with the decision log",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List decisions, newest first",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.Int64Flag{Name: "project", Usage: "Filter by project id"},
				},
				Action: func(c *cli.Context) error {
					input := ops.ListDecisionsInput{Token: c.String("token")}
					if project := c.Int64("project"); project != 0 {
						input.ProjectID = &project
					}

					output, err := ops.ListDecisions(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "promote",
				Usage:     "Promote a note (or free text) into the decision log",
				ArgsUsage: "[text]",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{Name: "source", Usage: "Where the decision came from"},
					&cli.StringFlag{Name: "comment", Usage: "Source comment id"},
					&cli.StringFlag{Name: "note-index", Usage: "Source note index within the comment"},
					&cli.Int64Flag{Name: "project", Usage: "Project to scope the decision to"},
				},
				Action: func(c *cli.Context) error {
					input := ops.PromoteDecisionInput{
						Token: c.String("token"),
						Text:  c.Args().First(),
					}
					if source := c.String("source"); source != "" {
						input.Source = &source
					}
					if raw := c.String("comment"); raw != "" {
						id, err := strconv.ParseInt(raw, 10, 64)
						if err != nil {
							return outputError(errors.NewInvalidRequest("comment must be an integer id"))
						}
						input.CommentID = &id
					}
					if raw := c.String("note-index"); raw != "" {
						idx, err := strconv.Atoi(raw)
						if err != nil {
							return outputError(errors.NewInvalidRequest("note-index must be an integer"))
						}
						input.NoteIndex = &idx
					}
					if project := c.Int64("project"); project != 0 {
						input.ProjectID = &project
					}

					output, err := ops.PromoteDecision(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// Helper functions

// tokenFlag is the shared tenant access token flag.
func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "token",
		Aliases: []string{"t"},
		EnvVars: []string{"PAGEMARK_TOKEN"},
		Usage:   "Tenant access token",
	}
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if appErr, ok := err.(*errors.AppError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
