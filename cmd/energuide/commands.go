package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/ingestion"
	"github.com/poiesic/energuide/server"
	"github.com/poiesic/energuide/tui"
	"github.com/urfave/cli/v2"
)

func ingestCommand(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("at least one FAQ file is required")
	}
	ctx := c.Context

	g, err := openGuide(c)
	if err != nil {
		return err
	}
	defer g.Close()

	if c.Bool("rebuild") {
		if err := g.Repository().Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		fmt.Fprintln(c.App.ErrWriter, "Index cleared")
	}

	opts := []ingestion.Option{ingestion.WithReplaceExisting(c.Bool("replace"))}
	if c.IsSet("batch-size") {
		opts = append(opts, ingestion.WithBatchSize(c.Int("batch-size")))
	}
	pipeline, err := g.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	var total ingestion.IngestReport
	for _, file := range files {
		report, err := pipeline.IngestFile(ctx, file)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", file, err)
		}
		fmt.Fprintf(c.App.Writer, "%s: %d entries, %d chunks, %d added, %d updated, %d skipped\n",
			file, report.Entries, report.Chunks, report.Added, report.Updated, report.Skipped)
		total.Entries += report.Entries
		total.Chunks += report.Chunks
		total.Added += report.Added
		total.Updated += report.Updated
		total.Skipped += report.Skipped
	}

	if len(files) > 1 {
		fmt.Fprintf(c.App.Writer, "total: %d entries, %d chunks, %d added, %d updated, %d skipped\n",
			total.Entries, total.Chunks, total.Added, total.Updated, total.Skipped)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	cfg := appConfig(c)
	if c.IsSet("batch-size") {
		cfg.Reindex.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("max-retries") {
		cfg.Reindex.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-delay") {
		cfg.Reindex.RetryDelay = c.Duration("retry-delay")
	}
	if c.IsSet("workers") {
		cfg.Reindex.Workers = c.Int("workers")
	}
	if cfg.Reindex.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.Reindex.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	g, err := openGuide(c)
	if err != nil {
		return err
	}
	defer g.Close()

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := g.NewReindexer(c.App.ErrWriter).Run(c.Context); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("a query is required")
	}

	g, err := openGuide(c)
	if err != nil {
		return err
	}
	defer g.Close()

	engine, err := g.NewEngine()
	if err != nil {
		return err
	}
	docs, err := engine.Search(c.Context, query, c.Int("k"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(c.App.Writer, "No documents found")
		return nil
	}

	for i, d := range docs {
		fmt.Fprintf(c.App.Writer, "%d. [%.3f] %s\n", i+1, d.Similarity, d.Document.Meta(core.MetaTitle))
		if url := d.Document.Meta(core.MetaURL); url != "" {
			fmt.Fprintf(c.App.Writer, "   %s\n", url)
		}
		fmt.Fprintf(c.App.Writer, "   %s\n\n", preview(d.Document.Content, 200))
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("a question is required")
	}

	g, err := openGuide(c)
	if err != nil {
		return err
	}
	defer g.Close()

	engine, err := g.NewEngine()
	if err != nil {
		return err
	}
	a, err := g.NewAgent(engine)
	if err != nil {
		return err
	}

	reply := a.Handle(c.Context, question)
	fmt.Fprintln(c.App.Writer, reply.Text)
	if !reply.OK {
		return cli.Exit("", 1)
	}
	return nil
}

func chatCommand(c *cli.Context) error {
	g, err := openGuide(c)
	if err != nil {
		return err
	}
	defer g.Close()

	engine, err := g.NewEngine()
	if err != nil {
		return err
	}
	a, err := g.NewAgent(engine)
	if err != nil {
		return err
	}
	return tui.Run(c.Context, a)
}

func serveCommand(c *cli.Context) error {
	cfg := appConfig(c)
	addr := cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	g, err := openGuide(c)
	if err != nil {
		return err
	}
	defer g.Close()

	engine, err := g.NewEngine()
	if err != nil {
		return err
	}
	sessions, err := g.NewSessionStore(engine)
	if err != nil {
		return err
	}
	srv, err := server.New(sessions,
		server.WithSearcher(engine),
		server.WithCORSOrigins(cfg.Server.CORSOrigins...),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

func infoCommand(c *cli.Context) error {
	cfg := appConfig(c)
	g, err := openGuide(c)
	if err != nil {
		return err
	}
	defer g.Close()

	count, err := g.CountDocuments(c.Context)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Database:         %s\n", cfg.Database.Path)
	fmt.Fprintf(w, "Documents:        %d\n", count)
	fmt.Fprintf(w, "Embedding:        %s (%s)\n", cfg.AI.EmbeddingModel, cfg.AI.EmbeddingHost)
	fmt.Fprintf(w, "Generation:       %s (%s)\n", cfg.AI.GenerationModel, cfg.AI.GenerationHost)
	fmt.Fprintf(w, "Retrieval:        top %d, min similarity %.2f\n", cfg.Retrieval.TopK, cfg.Retrieval.MinSimilarity)
	fmt.Fprintf(w, "History window:   %d turns\n", cfg.Conversation.Window)
	fmt.Fprintf(w, "Session TTL:      %s\n", cfg.Server.SessionTTL.Round(time.Second))
	return nil
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
