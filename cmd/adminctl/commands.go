package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/robby/adminctl/internal/auth"
	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// credentialProviders returns the sign-in sources in priority order:
// configuration, environment, then an interactive prompt.
func credentialProviders(e *env) []auth.CredentialsProvider {
	return []auth.CredentialsProvider{
		&auth.StaticProvider{Credentials: auth.Credentials{Email: e.cfg.Email, Password: e.cfg.Password}},
		&auth.EnvProvider{},
		&auth.PromptProvider{In: os.Stdin, Out: os.Stderr},
	}
}

// renderTable formats headers and rows as a bordered plain table.
func renderTable(headers []string, rows [][]string) string {
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func newListCmd() *cobra.Command {
	var (
		sortFlag   string
		descFlag   bool
		filterFlag string
		limitFlag  int
	)

	cmd := &cobra.Command{
		Use:       "list <resource>",
		Short:     "Print the rows of a resource",
		Long:      "Print every row of department, role or member as a table. Signs in with ADMIN_EMAIL/ADMIN_PASSWORD or prompts when no session is active.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: domain.ResourceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, ok := domain.LookupResource(args[0])
			if !ok {
				return fmt.Errorf("unknown resource %q, expected one of %v", args[0], domain.ResourceNames())
			}

			e, err := setup(os.Stderr)
			if err != nil {
				return err
			}
			defer e.closer.Close()

			ctx := cmd.Context()
			svc := auth.NewService(e.client, e.log)
			if err := svc.Ensure(ctx, credentialProviders(e)...); err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}

			rows, err := e.client.ListResource(ctx, resource.Name)
			if err != nil {
				return err
			}

			var sort table.Sort
			if sortFlag != "" {
				sort = sort.Click(sortFlag)
				if descFlag {
					sort = sort.Click(sortFlag)
				}
			}
			rows = sort.Apply(table.Filter(rows, resource.Columns, filterFlag), resource.Columns)
			total := len(rows)
			if limitFlag > 0 && len(rows) > limitFlag {
				rows = rows[:limitFlag]
			}

			headers := make([]string, len(resource.Columns))
			for i, c := range resource.Columns {
				headers[i] = c.Label
			}
			cells := make([][]string, len(rows))
			for i, row := range rows {
				cells[i] = make([]string, len(resource.Columns))
				for j, c := range resource.Columns {
					cells[i][j] = row.Text(c.Key)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, cells))
			fmt.Fprintf(cmd.OutOrStdout(), "%s of %s\n",
				english.Plural(len(rows), "row", ""), humanize.Comma(int64(total)))
			return nil
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "", "Column key to sort by.")
	cmd.Flags().BoolVar(&descFlag, "desc", false, "Sort descending. Requires --sort.")
	cmd.Flags().StringVar(&filterFlag, "filter", "", "Fuzzy filter applied to every column.")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Print at most this many rows.")
	return cmd
}

func newNavCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Print the navigation flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(os.Stderr)
			if err != nil {
				return err
			}
			defer e.closer.Close()

			ctx := cmd.Context()
			svc := auth.NewService(e.client, e.log)
			if err := svc.Ensure(ctx, credentialProviders(e)...); err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}

			items, err := e.client.NavSettings(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, len(items))
			for i, item := range items {
				rows[i] = []string{item.Name, strconv.FormatBool(item.Enabled)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Enabled"}, rows))
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check whether the configured credentials sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(os.Stderr)
			if err != nil {
				return err
			}
			defer e.closer.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			svc := auth.NewService(e.client, e.log)
			err = svc.Check(ctx)
			switch {
			case err == nil:
				fmt.Fprintf(out, "session active at %s\n", e.cfg.APIURL)
				return nil
			case !errors.Is(err, auth.ErrNotAuthenticated):
				return err
			}

			creds := auth.Credentials{Email: e.cfg.Email, Password: e.cfg.Password}
			err = svc.Ensure(ctx, &auth.StaticProvider{Credentials: creds}, &auth.EnvProvider{})
			if errors.Is(err, auth.ErrNotAuthenticated) {
				fmt.Fprintf(out, "not signed in at %s\n", e.cfg.APIURL)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "signed in as %s at %s\n", creds.Email, e.cfg.APIURL)
			return nil
		},
	}
}
