package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"news-gateway/internal/config"
	"news-gateway/internal/newsapi"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	gatewayURL  string
	timeout     time.Duration
	chatTimeout time.Duration
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "newsctl",
		Short:         "Query the news highlights gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.gatewayURL, "gateway", os.Getenv("NEWS_GATEWAY_URL"), "gateway base URL (ignored when PUBLIC_API_URL is set)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", newsapi.DefaultTimeout, "timeout for non-chat calls")
	root.PersistentFlags().DurationVar(&opts.chatTimeout, "chat-timeout", newsapi.DefaultChatTimeout, "timeout for chat calls")

	root.AddCommand(
		highlightsCmd(opts),
		breakingCmd(opts),
		categoriesCmd(opts),
		askCmd(opts),
		extractCmd(opts),
		historyCmd(opts),
		articlesCmd(opts),
		dashboardCmd(opts),
		waitCmd(opts),
	)

	return root
}

func (o *options) client() (*newsapi.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	endpoint := newsapi.ResolveEndpoint(cfg.PublicAPIURL, cfg.Environment, o.gatewayURL)
	return newsapi.NewClient(endpoint, o.timeout, o.chatTimeout), nil
}

// render prints v as indented JSON. A degraded answer is printed too, with a
// note on stderr, and does not fail the command.
func render(cmd *cobra.Command, v any, err error) error {
	if err != nil && !newsapi.IsDegraded(err) {
		return err
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "backend is unavailable or starting up, no data yet")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func highlightsCmd(opts *options) *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "highlights",
		Short: "List highlights, optionally filtered by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			out, err := c.Highlights(cmd.Context(), category, limit)
			return render(cmd, out, err)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of highlights")
	return cmd
}

func breakingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "breaking",
		Short: "List breaking highlights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			out, err := c.Breaking(cmd.Context())
			return render(cmd, out, err)
		},
	}
}

func categoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show highlight counts per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			out, err := c.Categories(cmd.Context())
			return render(cmd, out, err)
		},
	}
}

func askCmd(opts *options) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the news chatbot a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			out, err := c.Ask(cmd.Context(), strings.Join(args, " "), category)
			return render(cmd, out, err)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "restrict the answer to a category")
	return cmd
}

func extractCmd(opts *options) *cobra.Command {
	var (
		categories   []string
		forceRefresh bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Trigger a news extraction run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			out, err := c.Extract(cmd.Context(), categories, forceRefresh)
			return render(cmd, out, err)
		},
	}
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "categories to extract (default sports,lifestyle,music,finance)")
	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "re-extract even if recent data exists")
	return cmd
}

func historyCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent chat questions and answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			out, err := c.ChatHistory(cmd.Context(), limit)
			return render(cmd, out, err)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries")
	return cmd
}

func articlesCmd(opts *options) *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List extracted source articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			out, err := c.Articles(cmd.Context(), category, limit)
			return render(cmd, out, err)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of articles")
	return cmd
}

type dashboardView struct {
	Highlights      any    `json:"highlights"`
	Breaking        any    `json:"breaking"`
	HighlightsError string `json:"highlights_error,omitempty"`
	BreakingError   string `json:"breaking_error,omitempty"`
}

func dashboardCmd(opts *options) *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Fetch highlights and breaking news together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}

			d := c.Dashboard(cmd.Context(), category, limit)
			view := dashboardView{Highlights: d.Highlights, Breaking: d.Breaking}
			if d.HighlightsErr != nil && !newsapi.IsDegraded(d.HighlightsErr) {
				view.HighlightsError = d.HighlightsErr.Error()
			}
			if d.BreakingErr != nil && !newsapi.IsDegraded(d.BreakingErr) {
				view.BreakingError = d.BreakingErr.Error()
			}
			if len(d.Highlights) == 0 {
				view.Highlights = []any{}
			}
			if len(d.Breaking) == 0 {
				view.Breaking = []any{}
			}
			return render(cmd, view, nil)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of highlights")
	return cmd
}

func waitCmd(opts *options) *cobra.Command {
	var (
		interval    time.Duration
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Poll until a cold-starting backend is ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}

			zl, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = zl.Sync() }()

			if err := newsapi.NewWaiter(c, maxAttempts, zl).Wait(cmd.Context(), interval); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "backend ready")
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "time between health checks")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 12, "give up after this many checks (0 waits forever)")
	return cmd
}
