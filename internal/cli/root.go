package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"obras/internal/cli/formatter"
	"obras/internal/export"
	"obras/internal/services"
	"obras/internal/storage"
)

// ApprovalLister reads the approval journal.
type ApprovalLister interface {
	ListApprovals(ctx context.Context, projectID string, limit int) ([]storage.Approval, error)
}

// App holds what the obrasctl commands read from. OpenJournal is called
// only by the commands that need the journal.
type App struct {
	Service     *services.DashboardService
	OpenJournal func() (ApprovalLister, func() error, error)
}

// NewRootCmd creates the top-level "obrasctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "obrasctl",
		Short:         "Consulta de obras y cobranzas desde la terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newKPIsCmd(app),
		newListCmd(app),
		newShowCmd(app),
		newReceivablesCmd(app),
		newReportCmd(app),
		newExportCmd(app),
		newApproveCmd(app),
		newApprovalsCmd(app),
	)
	return root
}

func newKPIsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "kpis",
		Short: "Show the dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatKPIs(app.Service.KPIs()))
			return nil
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	var status, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, optionally filtered by status and search term",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Service.Projects(cmd.Context(), status, search)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "todas", "activa, pendiente, completada or todas")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match name, responsible or client")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show project details and timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Service.Project(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProject(p))
			return nil
		},
	}
}

func newReceivablesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "receivables",
		Aliases: []string{"cobranzas"},
		Short:   "List pending collections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReceivables(app.Service.Receivables()))
			return nil
		},
	}
}

func newReportCmd(app *App) *cobra.Command {
	var out string
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "report ID",
		Short: "Render the project report as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			err := app.Service.WaitForRenderer(ctx)
			cancel()
			if err != nil {
				return err
			}

			rep, err := app.Service.Report(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = rep.FileName
			}
			if err := writeOutput(cmd, out, func(w io.Writer) error {
				_, err := w.Write(rep.Data)
				return err
			}); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d páginas, %s)\n",
					out, rep.Pages, humanize.Bytes(uint64(len(rep.Data))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file, - for stdout (default: report file name)")
	cmd.Flags().DurationVar(&wait, "wait", 5*time.Second, "How long to wait for the PDF renderer")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var status, search, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered projects as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd, out, func(w io.Writer) error {
				return app.Service.ExportCSV(cmd.Context(), w, status, search)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "todas", "activa, pendiente, completada or todas")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match name, responsible or client")
	cmd.Flags().StringVarP(&out, "output", "o", export.FileName, "Output file, - for stdout")
	return cmd
}

func newApproveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "approve ID",
		Short: "Approve the reported progress of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := app.Service.Approve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render(msg))
			return nil
		},
	}
}

func newApprovalsCmd(app *App) *cobra.Command {
	var project string
	var limit int

	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "List journaled progress approvals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.OpenJournal == nil {
				return errors.New("approval journal is not configured")
			}
			journal, closeJournal, err := app.OpenJournal()
			if err != nil {
				return err
			}
			defer closeJournal()

			approvals, err := journal.ListApprovals(cmd.Context(), project, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatApprovals(approvals, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Only approvals of this project id")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows")
	return cmd
}

// writeOutput sends write's output to stdout for "-" and to the named file
// otherwise. A failed write leaves an existing file untouched.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if path == "-" {
		_, err := buf.WriteTo(cmd.OutOrStdout())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Execute runs the root command with ctx available to every subcommand.
func Execute(ctx context.Context, app *App, args []string) error {
	root := NewRootCmd(app)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
