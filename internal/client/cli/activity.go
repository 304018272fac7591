package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/worklog/internal/client/models"
	"github.com/dmitrijs2005/worklog/internal/client/services"
	"github.com/dmitrijs2005/worklog/internal/filex"
	"github.com/dmitrijs2005/worklog/internal/netx"
)

const (
	defaultListLimit = 10
	displayLayout    = "02/01/2006 15:04"
)

// Types prints the activity categories with their selection numbers.
func (a *App) Types(ctx context.Context) error {
	for i, t := range models.ActivityTypes {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, t)
	}
	return nil
}

// Select chooses the activity type by number or by exact name.
func (a *App) Select(ctx context.Context, args []string) error {
	m, err := a.manager()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: select <number|name>")
	}

	t, err := models.ParseActivityType(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := m.Select(t); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Selected: %s\n", t)
	return nil
}

// Deselect clears the selected activity type.
func (a *App) Deselect(ctx context.Context) error {
	m, err := a.manager()
	if err != nil {
		return err
	}
	if err := m.Deselect(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Selection cleared")
	return nil
}

// Start opens a session of the selected type. Everything after the command
// is taken as the description.
func (a *App) Start(ctx context.Context, args []string) error {
	m, err := a.manager()
	if err != nil {
		return err
	}

	s, err := m.Start(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Started %s at %s (#%d)\n", s.ActivityType, s.StartedAt.In(a.loc).Format(displayLayout), s.ID)
	return nil
}

// Stop closes the session in progress and prints the worked time.
func (a *App) Stop(ctx context.Context) error {
	m, err := a.manager()
	if err != nil {
		return err
	}

	s, err := m.Stop(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Stopped %s: %s\n", s.ActivityType, formatHours(*s.DurationHours))
	return nil
}

// Status prints the current state and, for a running session, the time
// elapsed so far.
func (a *App) Status(ctx context.Context) error {
	m, err := a.manager()
	if err != nil {
		return err
	}

	snap := m.State()
	switch snap.State {
	case services.StateInProgress:
		elapsed := a.clock().Sub(snap.StartedAt)
		fmt.Fprintf(a.out, "In progress: %s since %s (%s)\n",
			snap.ActivityType, snap.StartedAt.In(a.loc).Format(displayLayout), elapsed.Truncate(time.Second))
		if snap.Description != "" {
			fmt.Fprintf(a.out, "  %s\n", snap.Description)
		}
	case services.StateSelected:
		fmt.Fprintf(a.out, "Selected: %s\n", snap.ActivityType)
	default:
		fmt.Fprintln(a.out, "No activity selected")
	}
	return nil
}

// Sync reloads the state from the backend, adopting an open session found
// there or clearing a stale one, then prints the result.
func (a *App) Sync(ctx context.Context) error {
	m, err := a.manager()
	if err != nil {
		return err
	}
	if _, err := m.Reconcile(ctx); err != nil {
		return err
	}
	return a.Status(ctx)
}

// List prints the most recent sessions, newest first.
func (a *App) List(ctx context.Context, args []string) error {
	m, err := a.manager()
	if err != nil {
		return err
	}

	limit := defaultListLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		limit = n
	}

	items, err := m.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No sessions yet")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tActivity\tStart\tEnd\tHours\tDescription")
	for _, s := range items {
		end, hours := "-", "-"
		if s.EndedAt != nil {
			end = s.EndedAt.In(a.loc).Format(displayLayout)
		}
		if s.DurationHours != nil {
			hours = formatHours(*s.DurationHours)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.ActivityType, s.StartedAt.In(a.loc).Format(displayLayout), end, hours, s.Description)
	}
	return w.Flush()
}

// Export asks the server for a monthly CSV report and saves it in the
// current directory. Only available with the remote backend.
func (a *App) Export(ctx context.Context, args []string) error {
	m, err := a.manager()
	if err != nil {
		return err
	}
	if a.remote == nil {
		return fmt.Errorf("export is only available with the remote backend")
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: export <year> <month>")
	}

	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}
	month, err := strconv.Atoi(args[1])
	if err != nil || month < 1 || month > 12 {
		return fmt.Errorf("invalid month %q", args[1])
	}

	user := m.User().Username
	report, err := a.remote.ExportReport(ctx, user, year, month)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := netx.DownloadFromPresignedURL(ctx, report.URL, &buf); err != nil {
		return err
	}

	name := filepath.Join(a.exportDir, fmt.Sprintf("relatorio_%s_%04d-%02d.csv", user, year, month))
	if err := filex.WriteFileAtomic(name, buf.Bytes(), 0o644); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved %d sessions to %s\n", report.Rows, name)
	return nil
}

// formatHours renders decimal hours as "1.50 h (1h30m)".
func formatHours(h float64) string {
	d := time.Duration(h * float64(time.Hour)).Round(time.Minute)
	if d == 0 {
		return fmt.Sprintf("%.2f h (0m)", h)
	}
	return fmt.Sprintf("%.2f h (%s)", h, strings.TrimSuffix(d.String(), "0s"))
}
