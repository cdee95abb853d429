package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/verse-recommender/internal/app"
	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

const messageNoMatches = "No matching verses found."

// rootOptions holds the flags of the root command.
type rootOptions struct {
	theme    string
	audience string
	length   string
	tone     string
	location string

	enrich bool
	output string

	configDir string
	profile   string
	source    string
	factBase  string
	engine    string
	logLevel  string
}

// selection returns the facet flags trimmed and lowercased.
func (o *rootOptions) selection() domain.FacetSelection {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	return domain.FacetSelection{
		Theme:    norm(o.theme),
		Audience: norm(o.audience),
		Length:   norm(o.length),
		Tone:     norm(o.tone),
		Location: norm(o.location),
	}
}

func newRootCmd(load environmentLoader) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend Qur'an verses by theme, audience, length, tone and location",
		Long: `recommend lists the verses whose facets match every flag you set.
Leave a flag out for no preference.

With --enrich each verse is resolved through the verse lookup service and
written as Surah, Verse, Text and Audio lines.`,
		Example: `  recommend --theme patience --audience believers
  recommend --tone hopeful --enrich --output verses.txt`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecommend(cmd, opts, load)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.theme, "theme", "", "theme ("+strings.Join(domain.Vocabulary(domain.FacetTheme), ", ")+")")
	flags.StringVar(&opts.audience, "audience", "", "audience ("+strings.Join(domain.Vocabulary(domain.FacetAudience), ", ")+")")
	flags.StringVar(&opts.length, "length", "", "length ("+strings.Join(domain.Vocabulary(domain.FacetLength), ", ")+")")
	flags.StringVar(&opts.tone, "tone", "", "tone ("+strings.Join(domain.Vocabulary(domain.FacetTone), ", ")+")")
	flags.StringVar(&opts.location, "location", "", "location ("+strings.Join(domain.Vocabulary(domain.FacetLocation), ", ")+")")
	flags.BoolVar(&opts.enrich, "enrich", false, "resolve text and audio for every match")
	flags.StringVarP(&opts.output, "output", "o", "", "write enriched verses to this file (default stdout)")

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&opts.configDir, "config-dir", "configs", "directory holding base.yaml and profile files")
	persistent.StringVar(&opts.profile, "profile", os.Getenv("APP_ENVIRONMENT"), "configuration profile (default $APP_ENVIRONMENT or local)")
	persistent.StringVar(&opts.source, "source", "", "fact base source: embedded, yaml, mangle or sqlite (overrides config)")
	persistent.StringVar(&opts.factBase, "fact-base", "", "fact base path (overrides config)")
	persistent.StringVar(&opts.engine, "engine", "", "match engine: index or datalog (overrides config)")
	persistent.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	cmd.AddCommand(newFacetsCmd(), newVersionCmd())

	return cmd
}

func runRecommend(cmd *cobra.Command, opts *rootOptions, load environmentLoader) error {
	ctx := cmd.Context()
	sel := opts.selection()

	// Reject bad input before loading the fact base.
	if _, err := domain.ParseFacetQuery(sel); err != nil {
		return reportInvalid(cmd.ErrOrStderr(), err)
	}

	env, err := load(ctx, opts)
	if err != nil {
		return err
	}
	defer env.close()

	service := app.NewRecommendationService(app.RecommendationServiceConfig{
		Matcher:   env.matcher,
		Enricher:  env.enricher,
		Engine:    env.engine,
		Dedupe:    env.dedupe,
		MaxVerses: env.maxVerses,
		Logger:    env.logger,
	})

	if !opts.enrich {
		rec, err := service.Recommend(ctx, sel)
		if err != nil {
			return err
		}

		return writePairs(cmd.OutOrStdout(), rec.Matches)
	}

	rec, err := service.RecommendEnriched(ctx, sel, 0)
	if err != nil {
		return err
	}

	if rec.TotalFound == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), messageNoMatches)
		return err
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()

		out = f
		fmt.Fprintf(cmd.OutOrStdout(), "Recommended verses are written to %s\n", opts.output)
	}

	if err := writeVerses(out, rec.Verses); err != nil {
		return err
	}

	if rec.Failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d lookups failed\n", rec.Failed, len(rec.Verses))
	}

	return nil
}

// errInvalidFacets is returned after the violations have been printed.
var errInvalidFacets = errors.New("invalid facet values")

func reportInvalid(w io.Writer, err error) error {
	var qerr *domain.QueryValidationError
	if !errors.As(err, &qerr) {
		return err
	}

	for _, msg := range qerr.Messages() {
		fmt.Fprintln(w, msg)
	}

	return errInvalidFacets
}

func writePairs(w io.Writer, refs domain.MatchResult) error {
	if len(refs) == 0 {
		_, err := fmt.Fprintln(w, messageNoMatches)
		return err
	}

	for _, ref := range refs {
		if _, err := fmt.Fprintln(w, ref.String()); err != nil {
			return err
		}
	}

	return nil
}

func writeVerses(w io.Writer, verses []domain.EnrichedVerse) error {
	for _, v := range verses {
		var err error
		if v.LookupFailed {
			_, err = fmt.Fprintf(w, "Failed to fetch verse for Surah %d, Verse %d\n", v.Ref.Surah, v.Ref.Verse)
		} else {
			_, err = fmt.Fprintf(w, "Surah: %s\nVerse: %d\nText: %s\nAudio: %s\n", v.SurahName, v.VerseNumber, v.Text, v.Audio)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func newFacetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the allowed values of every facet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, f := range domain.Facets() {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f, strings.Join(domain.Vocabulary(f), ", ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recommend %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	}
}
