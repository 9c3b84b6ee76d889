// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/tickets"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

func ticketFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title"},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "type", Usage: "Type name or id"},
		&cli.StringFlag{Name: "state", Usage: "State name or id"},
		&cli.StringFlag{Name: "priority", Usage: "Priority name or id"},
		&cli.StringFlag{Name: "assignee", Usage: "User id, email or display name"},
	}
}

func ticketsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tickets",
		Usage: "Work with tickets",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tickets",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "state", Usage: "Only tickets in this state"},
					&cli.BoolFlag{Name: "mine", Usage: "Only tickets assigned to you"},
				},
				Action: withApp(listTickets),
			},
			{
				Name:   "stats",
				Usage:  "Show ticket statistics",
				Action: withApp(ticketStats),
			},
			{
				Name:   "create",
				Usage:  "Create a ticket",
				Flags:  ticketFlags(),
				Action: withApp(createTicket),
			},
			{
				Name:      "update",
				Usage:     "Change a ticket; unset flags keep their value",
				ArgsUsage: "<id>",
				Flags:     ticketFlags(),
				Action:    withApp(updateTicket),
			},
			{
				Name:      "delete",
				Usage:     "Delete a ticket",
				ArgsUsage: "<id>",
				Action:    withApp(deleteTicket),
			},
		},
	}
}

func listTickets(ctx context.Context, cmd *cli.Command, app *App) error {
	user, err := app.RequireUser()
	if err != nil {
		return err
	}
	vm, err := tickets.Load(ctx, app.API)
	if err != nil {
		return err
	}

	list := vm.Tickets()
	if state := cmd.String("state"); state != "" {
		list = vm.FilterByState(state)
	}
	if cmd.Bool("mine") {
		list = lo.Filter(list, func(t models.Ticket, _ int) bool {
			return t.AssigneeID == user.ID
		})
	}

	if len(list) == 0 {
		app.printf("No tickets\n")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "Type", "State", "Priority", "Assignee")
	for _, r := range vm.Rows(list) {
		t.Row(r.Ticket.ID.String(), r.Ticket.Title, r.Type, r.State, r.Priority, r.Assignee)
	}
	app.printf("%s\n", t.Render())
	app.printf("%d ticket(s)\n", len(list))
	return nil
}

func ticketStats(ctx context.Context, _ *cli.Command, app *App) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}
	vm, err := tickets.Load(ctx, app.API)
	if err != nil {
		return err
	}

	s := vm.Statistics()
	app.printf("%s %d\n", labelStyle.Render("Total:      "), s.Total)
	app.printf("%s %d\n", labelStyle.Render("Todo:       "), s.Todo)
	app.printf("%s %d\n", labelStyle.Render("In progress:"), s.InProgress)
	app.printf("%s %d\n", labelStyle.Render("Closed:     "), s.Closed)
	app.printf("%s %d%%\n", labelStyle.Render("Completion: "), s.CompletionRate)
	app.printf("%s high %d, medium %d, low %d\n", labelStyle.Render("Priorities: "),
		s.Priorities.High, s.Priorities.Medium, s.Priorities.Low)
	return nil
}

func createTicket(ctx context.Context, cmd *cli.Command, app *App) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}
	cat, err := app.API.Catalog(ctx)
	if err != nil {
		return err
	}

	in, err := applyTicketFlags(cmd, cat, models.TicketInput{})
	if err != nil {
		return err
	}
	created, err := tickets.NewService(app.API, app.Notifier()).Create(ctx, in)
	if err != nil {
		return err
	}
	if created != nil {
		app.printf("Ticket #%s\n", created.ID)
	}
	return nil
}

func updateTicket(ctx context.Context, cmd *cli.Command, app *App) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}
	id, err := ticketID(cmd)
	if err != nil {
		return err
	}

	vm, err := tickets.Load(ctx, app.API)
	if err != nil {
		return err
	}
	current, ok := lo.Find(vm.Tickets(), func(t models.Ticket) bool { return t.ID == id })
	if !ok {
		return fmt.Errorf("ticket %s not found", id)
	}

	in, err := applyTicketFlags(cmd, vm.Catalog(), models.TicketInput{
		Title:       current.Title,
		Description: current.Description,
		TypeID:      current.TypeID,
		StateID:     current.StateID,
		PriorityID:  current.PriorityID,
		AssigneeID:  current.AssigneeID,
	})
	if err != nil {
		return err
	}
	_, err = tickets.NewService(app.API, app.Notifier()).Update(ctx, id, in)
	return err
}

func deleteTicket(ctx context.Context, cmd *cli.Command, app *App) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}
	id, err := ticketID(cmd)
	if err != nil {
		return err
	}
	return tickets.NewService(app.API, app.Notifier()).Delete(ctx, id)
}

func ticketID(cmd *cli.Command) (models.ID, error) {
	id := models.IDFrom(cmd.Args().First())
	if id.IsZero() {
		return "", errors.New("missing ticket id")
	}
	return id, nil
}

// applyTicketFlags overrides the fields of in whose flags are set. Table
// references accept a name or an id.
func applyTicketFlags(cmd *cli.Command, cat *models.Catalog, in models.TicketInput) (models.TicketInput, error) {
	if cmd.IsSet("title") {
		in.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		in.Description = cmd.String("description")
	}

	refs := []struct {
		flag    string
		entries []models.Named
		dst     *models.ID
	}{
		{"type", cat.Types, &in.TypeID},
		{"state", cat.States, &in.StateID},
		{"priority", cat.Priorities, &in.PriorityID},
	}
	for _, ref := range refs {
		if !cmd.IsSet(ref.flag) {
			continue
		}
		id, err := resolveNamed(ref.flag, ref.entries, cmd.String(ref.flag))
		if err != nil {
			return in, err
		}
		*ref.dst = id
	}

	if cmd.IsSet("assignee") {
		id, err := resolveUser(cat.Users, cmd.String("assignee"))
		if err != nil {
			return in, err
		}
		in.AssigneeID = id
	}
	return in, nil
}

func resolveNamed(kind string, entries []models.Named, value string) (models.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	e, ok := lo.Find(entries, func(n models.Named) bool {
		return n.ID.String() == value || strings.EqualFold(n.Name, value)
	})
	if !ok {
		return "", fmt.Errorf("unknown %s %q", kind, value)
	}
	return e.ID, nil
}

func resolveUser(users []models.User, value string) (models.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	u, ok := lo.Find(users, func(u models.User) bool {
		return u.ID.String() == value || strings.EqualFold(u.Email, value) || strings.EqualFold(u.DisplayName, value)
	})
	if !ok {
		return "", fmt.Errorf("unknown assignee %q", value)
	}
	return u.ID, nil
}
