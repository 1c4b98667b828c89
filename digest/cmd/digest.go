// Command-line interface for summarizing a single URL without the server
package main

import (
	"context"
	"digest/digest/config"
	"digest/digest/services/article"
	"digest/digest/services/nlp"
	"digest/digest/services/summarizer"
	"digest/digest/utils/color"
	"digest/digest/utils/logging"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:           "digest",
		Short:         "Summarize web articles from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if err := cfg.ValidateSummarizer(); err != nil {
				return err
			}
			return logging.InitLogger(cfg.LogDir)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	summarizeCmd = &cobra.Command{
		Use:   "summarize <url>",
		Short: "Fetch an article and print its summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummarize,
	}

	ensureDataCmd = &cobra.Command{
		Use:   "ensure-data",
		Short: "Download the sentence tokenizer data if it is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := nlp.NewResource(cfg.TokenizerDataDir, cfg.TokenizerDataURL).Ensure(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.ColorInfo("tokenizer data ready: ")+path)
			return nil
		},
	}

	sentences  int
	asJSON     bool
	fetchMode  string
	runTimeout time.Duration
)

func init() {
	summarizeCmd.Flags().IntVarP(&sentences, "sentences", "n", 0, "number of sentences (default SUMMARY_SENTENCES)")
	summarizeCmd.Flags().BoolVar(&asJSON, "json", false, "print the article and summary as JSON")
	summarizeCmd.Flags().StringVar(&fetchMode, "fetch-mode", "", `"http" or "browser" (default FETCH_MODE)`)
	summarizeCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "overall time limit")

	rootCmd.AddCommand(summarizeCmd, ensureDataCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	if sentences <= 0 {
		sentences = cfg.SummarySentences
	}
	if fetchMode == "" {
		fetchMode = cfg.FetchMode
	}

	punktPath, err := nlp.NewResource(cfg.TokenizerDataDir, cfg.TokenizerDataURL).Ensure(ctx)
	if err != nil {
		return err
	}
	splitter, err := nlp.LoadTokenizer(punktPath)
	if err != nil {
		return err
	}
	fetcher, closeFetcher, err := article.NewFetcher(fetchMode, cfg.FetchTimeout, cfg.UserAgent)
	if err != nil {
		return err
	}
	defer closeFetcher()

	svc := summarizer.NewService(fetcher, nlp.NewSummarizer(splitter), nil, sentences)
	a, summary, err := svc.Summarize(ctx, args[0])
	if err != nil {
		return err
	}
	logging.AppLogger.Info("summarized", zap.String("url", a.URL), zap.Int("chars", len(a.Text)))

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*article.Article
			Summary string `json:"summary"`
		}{a, summary})
	}
	if a.Title != "" {
		fmt.Fprintln(out, color.ColorTitle(a.Title))
	}
	fmt.Fprintln(out, color.ColorFaint(a.URL))
	fmt.Fprintln(out)
	fmt.Fprintln(out, summary)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("error:"), err)
		os.Exit(1)
	}
}
