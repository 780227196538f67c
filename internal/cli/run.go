package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/firebreak"
	"github.com/aretw0/firebreak/internal/bushfire"
	"github.com/aretw0/firebreak/internal/presentation/tui"
	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/runner"
	"github.com/aretw0/firebreak/pkg/session"
	"github.com/aretw0/firebreak/pkg/stages"
)

// Program is the command name used in resume hints.
const Program = "firebreak"

// RunOptions contains all the configuration for the run and resume commands.
type RunOptions struct {
	Flags

	RunID string

	// Fresh discards a stored run with the same ID before starting.
	Fresh bool

	// Metrics exposes Prometheus metrics on the configured address while
	// the run is in progress.
	Metrics bool

	// Styled enables the banner, colours and markdown rendering.
	Styled bool

	In  io.Reader
	Out io.Writer
}

func (o RunOptions) output() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// Run asks for the user's motivation and starts a new run.
func Run(opts RunOptions) error {
	sm := runner.NewSignalManager(context.Background())
	defer sm.Stop()
	ctx := sm.Context()

	app, err := OpenApp(opts.Flags)
	if err != nil {
		return err
	}
	defer app.Close()

	out := opts.output()
	if opts.Styled {
		tui.PrintBanner(out, firebreak.Version)
	}
	fmt.Fprintln(out, bushfire.QuitHint)

	console := runner.NewConsole(opts.In, out)
	defer console.Close()
	motivation, err := askMotivation(ctx, console)
	if err != nil && !errors.Is(err, domain.ErrSuspended) && ctx.Err() == nil {
		return err
	}
	if err != nil || stages.IsQuit(motivation) {
		fmt.Fprintln(out, "Goodbye! ...")
		return nil
	}

	runID := opts.RunID
	if runID == "" {
		runID = session.NewRunID(time.Now())
	}
	if opts.Fresh {
		if err := app.Manager.Delete(ctx, runID); err != nil && !errors.Is(err, domain.ErrRunNotFound) {
			return fmt.Errorf("failed to reset run %s: %w", runID, err)
		}
	}

	r, err := app.newRunner(ctx, console, out, opts.Styled)
	if err != nil {
		return err
	}
	stop := app.serveMetrics(opts.Metrics, out)
	defer stop()

	app.Logger.Info("Run Created", "run_id", runID)
	_, err = r.Start(ctx, runID, firebreak.Initial(motivation))
	return err
}

// Resume continues a stored run.
func Resume(opts RunOptions) error {
	sm := runner.NewSignalManager(context.Background())
	defer sm.Stop()
	ctx := sm.Context()

	app, err := OpenApp(opts.Flags)
	if err != nil {
		return err
	}
	defer app.Close()

	cp, err := app.Manager.Load(ctx, opts.RunID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", opts.RunID, err)
	}

	out := opts.output()
	if opts.Styled {
		tui.PrintBanner(out, firebreak.Version)
	}
	fmt.Fprintln(out, bushfire.QuitHint)
	if cp.Next != domain.End {
		printSystemMessage(out, "Resuming at '%s' stage...", cp.Next)
	}

	console := runner.NewConsole(opts.In, out)
	defer console.Close()
	r, err := app.newRunner(ctx, console, out, opts.Styled)
	if err != nil {
		return err
	}
	stop := app.serveMetrics(opts.Metrics, out)
	defer stop()

	app.Logger.Info("Run Resumed", "run_id", opts.RunID, "stage", cp.Next)
	_, err = r.Resume(ctx, opts.RunID)
	return err
}

func askMotivation(ctx context.Context, console *runner.Console) (string, error) {
	for {
		motivation, err := console.Ask(ctx, bushfire.MotivationPrompt)
		if err != nil || motivation != "" {
			return motivation, err
		}
		if err := console.Say(ctx, "Please enter an answer."); err != nil {
			return "", err
		}
	}
}

func (a *App) newRunner(ctx context.Context, console *runner.Console, out io.Writer, styled bool) (*runner.Runner, error) {
	render := tui.Plain
	if styled {
		render = tui.NewRenderer(tui.Width(os.Stdout, 80))
	}
	planner, err := a.Planner(ctx, console, tui.NewNotifier(out, styled, render))
	if err != nil {
		return nil, err
	}
	return runner.NewRunner(planner,
		runner.WithLocker(a.Manager),
		runner.WithOutput(out),
		runner.WithLogger(a.Logger),
		runner.WithProgram(Program),
	), nil
}

// serveMetrics exposes the collectors in the background until stop is called.
func (a *App) serveMetrics(enabled bool, out io.Writer) (stop func()) {
	if !enabled || a.Config.MetricsAddr == "" {
		return func() {}
	}
	srv := &http.Server{
		Addr:              a.Config.MetricsAddr,
		Handler:           a.Metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Warn("metrics server stopped", "addr", srv.Addr, "err", err)
		}
	}()
	printSystemMessage(out, "Metrics on %s/metrics", srv.Addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// Report prints err for the user and returns the process exit code.
// Failures the run can recover from name the resume command.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var re *runner.ResumableError
	if errors.As(err, &re) {
		fmt.Fprintf(w, "Error: %v\nResume with: %s resume %s\n", re.Err, Program, re.RunID)
		return 1
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
