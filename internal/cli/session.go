package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/aretw0/firebreak/pkg/domain"
)

// ListRuns prints one line per stored run, oldest first.
func ListRuns(ctx context.Context, app *App, w io.Writer) error {
	store, err := app.Inspection()
	if err != nil {
		return err
	}
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing runs: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No stored runs found.")
		return nil
	}

	cps := make([]*domain.Checkpoint, 0, len(ids))
	for _, id := range ids {
		cp, err := store.Load(ctx, id)
		if errors.Is(err, domain.ErrRunNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("error loading run '%s': %w", id, err)
		}
		cps = append(cps, cp)
	}
	sort.SliceStable(cps, func(i, j int) bool {
		return cps[i].UpdatedAt.Before(cps[j].UpdatedAt)
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTATUS\tNEXT\tSTEPS\tUPDATED")
	for _, cp := range cps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", cp.RunID, cp.Status, cp.Next, cp.Steps, cp.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

// InspectRun prints the stored checkpoint of runID as indented JSON.
func InspectRun(ctx context.Context, app *App, w io.Writer, runID string) error {
	store, err := app.Inspection()
	if err != nil {
		return err
	}
	cp, err := store.Load(ctx, runID)
	if err != nil {
		return fmt.Errorf("error loading run '%s': %w", runID, err)
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling checkpoint: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveRuns deletes every named run. It keeps going past failures and
// reports them together.
func RemoveRuns(ctx context.Context, app *App, w io.Writer, runIDs []string) error {
	var errs []error
	for _, id := range runIDs {
		exists, err := app.Manager.Exists(ctx, id)
		if err == nil && !exists {
			err = domain.ErrRunNotFound
		}
		if err == nil {
			err = app.Manager.Delete(ctx, id)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
			continue
		}
		fmt.Fprintf(w, "Removed run '%s'\n", id)
	}
	return errors.Join(errs...)
}
