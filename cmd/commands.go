package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"resume-folio/internal/api"
	"resume-folio/internal/db"
	"resume-folio/internal/helper"
	"resume-folio/internal/index"
	"resume-folio/internal/models"
	"resume-folio/internal/report"
)

// --- parse ---

func newParseCmd() *cobra.Command {
	var (
		file, name, userID, reportFormat string
		dryRun                           bool
	)
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a resume and save it as a portfolio",
		Long: `Parse a PDF, DOC or DOCX resume into a structured profile.

Examples:
  folio parse --file ./jane.pdf --dry-run
  folio parse --file ./jane.docx --user 42 --name "Jane's site"
  folio parse --file ./jane.pdf --dry-run --report html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			if !dryRun && userID == "" {
				return errors.New("--user is required unless --dry-run is set")
			}
			docType, ok := models.DocTypeFromFilename(file)
			if !ok {
				return fmt.Errorf("%s: only .pdf, .doc and .docx files are supported", file)
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}

			ctx := cmd.Context()
			p, closeCache := newPipeline(ctx)
			defer closeCache()
			result, err := p.Parse(ctx, models.NewRawDocument(data, docType.MimeType(), file))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch reportFormat {
			case "":
				helper.PrettyPrint(out, result)
			case "md":
				fmt.Fprint(out, report.Summary(result))
			case "html":
				html, err := report.RenderHTML(report.Summary(result))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, html)
			default:
				return fmt.Errorf("unknown report format %q", reportFormat)
			}

			if dryRun {
				return nil
			}
			if name == "" {
				name = helper.FileStem(file)
			}
			return savePortfolio(ctx, userID, name, result.Profile)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the resume")
	cmd.Flags().StringVar(&name, "name", "", "portfolio name, defaults to the file name")
	cmd.Flags().StringVar(&userID, "user", "", "owner of the new portfolio")
	cmd.Flags().StringVar(&reportFormat, "report", "", "print the review summary instead of JSON: md or html")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse only, do not save")
	return cmd
}

func savePortfolio(ctx context.Context, userID, name string, profile models.ParsedProfile) error {
	bdb, err := openDB()
	if err != nil {
		return err
	}
	defer bdb.Close()

	p := &db.Portfolio{UserID: userID, Name: name, ResumeData: profile}
	if err := db.NewStore(bdb).CreatePortfolio(ctx, p); err != nil {
		return err
	}
	log.Info().Str("portfolio_id", p.ID).Str("name", name).Msg("saved portfolio")

	idx, err := openIndex()
	if errors.Is(err, errIndexDisabled) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := idx.Add(ctx, p.ID, userID, name, profile); err != nil {
		return err
	}
	saveIndex(idx)
	return nil
}

// --- search ---

func newSearchCmd() *cobra.Command {
	var (
		query, userID string
		limit         int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find saved profiles similar to a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			idx, err := openIndex()
			if err != nil {
				return err
			}
			hits, err := idx.Search(cmd.Context(), userID, query, limit)
			if err != nil {
				return err
			}
			helper.PrettyPrint(cmd.OutOrStdout(), hits)
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "free-text query")
	cmd.Flags().StringVar(&userID, "user", "", "only search this user's portfolios")
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of results")
	return cmd
}

// --- init-db ---

func newInitDBCmd() *cobra.Command {
	var drop bool
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the portfolios table",
		RunE: func(cmd *cobra.Command, args []string) error {
			bdb, err := openDB()
			if err != nil {
				return err
			}
			defer bdb.Close()

			ctx := cmd.Context()
			if drop {
				if err := db.DropPortfolios(ctx, bdb); err != nil {
					return fmt.Errorf("dropping portfolios: %w", err)
				}
			}
			if err := db.InitDB(ctx, bdb); err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			log.Info().Msg("database ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "drop the portfolios table first")
	return cmd
}

// --- serve ---

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the upload and portfolio HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, closeCache := newPipeline(ctx)
			defer closeCache()
			deps := api.Deps{
				Parser:         p,
				Logger:         log.Logger,
				MaxUploadBytes: cfg.Parser.MaxUploadBytes,
			}

			if cfg.Database.SupabaseURL != "" {
				bdb, err := openDB()
				if err != nil {
					return err
				}
				defer bdb.Close()
				store := db.NewStore(bdb)
				if err := store.Ping(ctx); err != nil {
					return fmt.Errorf("database unreachable: %w", err)
				}
				deps.Store = store
			} else {
				log.Warn().Msg("no database configured, uploads are parsed but not saved")
			}

			var idx *index.ProfileIndex
			if cfg.Index.Enabled {
				var err error
				if idx, err = openIndex(); err != nil {
					return err
				}
				deps.Index = idx
				defer saveIndex(idx)
			}

			srv := &http.Server{
				Addr:         cfg.Server.Address,
				Handler:      api.NewHandler(deps),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				log.Info().Msg("shutting down")
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
