package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/net/publicsuffix"

	"github.com/iskrendev/insurance-portal/internal/adapters/restapi"
	"github.com/iskrendev/insurance-portal/internal/app/directory"
	"github.com/iskrendev/insurance-portal/internal/app/form"
	"github.com/iskrendev/insurance-portal/internal/app/sections"
	"github.com/iskrendev/insurance-portal/internal/app/stats"
	"github.com/iskrendev/insurance-portal/internal/domain"
	platformclock "github.com/iskrendev/insurance-portal/internal/platform/clock"
)

// apiClient builds a REST client whose cookie jar carries the --session value.
func apiClient(g *globals) (*restapi.Client, error) {
	base, err := url.Parse(g.cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	if g.session != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: g.cfg.Auth.SessionCookie, Value: g.session, Path: "/"}})
	}
	hc := &http.Client{
		Jar:     jar,
		Timeout: g.cfg.API.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return restapi.New(g.cfg.API.BaseURL, restapi.WithHTTPClient(hc), restapi.WithLogger(g.log))
}

func listCmd(g *globals) *cobra.Command {
	var desc bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all insurances grouped by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := apiClient(g)
			if err != nil {
				return err
			}
			grouped, err := c.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range domain.Types() {
				d := directory.NewDirectory(directory.Summaries(grouped.ByType(t)))
				if desc {
					d.ToggleSort()
				}
				fmt.Fprintf(w, "%s (%d)\n", sections.GroupLabel(t), d.Len())
				writeRows(w, directory.Rows(d))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&desc, "desc", false, "sort names descending")
	return cmd
}

func searchCmd(g *globals) *cobra.Command {
	var (
		filter string
		desc   bool
	)
	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Search insurances by customer name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := directory.ParseFilter(filter)
			if err != nil {
				return err
			}
			c, err := apiClient(g)
			if err != nil {
				return err
			}
			query := args[0]
			for _, a := range args[1:] {
				query += " " + a
			}
			res, err := directory.NewSearcher(c, g.log).Search(cmd.Context(), query, t)
			if err != nil {
				return err
			}
			d := directory.NewDirectory(res.Items)
			if desc {
				d.ToggleSort()
			}
			if d.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Es wurden keine Versicherungen gefunden.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			writeRows(w, directory.Rows(d))
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&filter, "type", "t", directory.FilterAll, "LIFE, PROPERTY, VEHICLE or ALL")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort names descending")
	return cmd
}

func writeRows(w io.Writer, rows []directory.Row) {
	for _, r := range rows {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Name, r.TypeLabel, r.ID)
	}
}

func showCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <type> <id>",
		Short: "Show one insurance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseType(args[0])
			if err != nil {
				return err
			}
			c, err := apiClient(g)
			if err != nil {
				return err
			}
			rec, err := c.Get(cmd.Context(), t, domain.RecordID(args[1]))
			if err != nil {
				return err
			}
			return writeRecord(cmd.OutOrStdout(), rec)
		},
	}
}

func writeRecord(out io.Writer, rec domain.Record) error {
	f := form.Edit(rec, platformclock.NewSystemClock(), nil)
	d := f.Draft()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, fd := range f.Visible() {
		v := d.Value(fd.Name)
		if fd.Name == sections.TypeFieldName {
			v = sections.Label(d.Type)
		}
		fmt.Fprintf(w, "%s\t%s\n", fd.Label, v)
	}
	return w.Flush()
}

func summaryCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print insurance statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := apiClient(g)
			if err != nil {
				return err
			}
			return writeSummary(cmd.Context(), cmd.OutOrStdout(), stats.NewService(c, g.log))
		},
	}
}

func writeSummary(ctx context.Context, out io.Writer, svc *stats.Service) error {
	v := svc.Load(ctx)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Gesamtbetrag\t%s\n", v.FormattedTotal)
	for _, l := range v.MonthlyByType {
		fmt.Fprintf(w, "%s\t%d\t%s\n", sections.GroupLabel(l.Type), l.Count, l.FormattedMonthly)
	}
	return w.Flush()
}
