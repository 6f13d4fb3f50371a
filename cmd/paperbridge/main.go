// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	paperbridge "github.com/poiesic/paperbridge"
	"github.com/poiesic/paperbridge/ai"
	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "paperbridge",
		Usage: "Document extraction and embedding pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Register a PDF document and extract its page text",
				ArgsUsage: "<file.pdf>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:      "process",
				Usage:     "Run the extraction and embedding pipeline for a document",
				ArgsUsage: "<document-id>",
				Action:    processCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "extractor-model",
						Usage: "Extraction model name",
						Value: "qwen2.5:3b",
					},
					&cli.DurationFlag{
						Name:  "wait-timeout",
						Usage: "How long to wait for a step job owned by another worker",
						Value: pipeline.DefaultWaitTimeout,
					},
					&cli.DurationFlag{
						Name:  "poll-interval",
						Usage: "How often to poll job status",
						Value: pipeline.DefaultPollInterval,
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the status of a job",
				ArgsUsage: "<job-id>",
				Action:    statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search document chunks",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: 5,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one PDF path argument")
	}
	path := c.Args().First()

	db, err := paperbridge.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	doc, err := db.IngestPDF(context.Background(), path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("Document %d: %s (%d pages)\n", uint64(doc.Id), doc.Filename, doc.TotalPages)
	return nil
}

func processCommand(c *cli.Context) error {
	ctx := context.Background()

	documentID, err := parseID(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid document id: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorModel(c.String("extractor-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := paperbridge.NewDatabase(c.String("db"), paperbridge.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runner, err := db.NewPipelineRunner([]pipeline.GuardOption{
		pipeline.WithWaitTimeout(c.Duration("wait-timeout")),
		pipeline.WithPollInterval(c.Duration("poll-interval")),
	})
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer runner.Release()

	job, err := runner.ProcessDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Pipeline job %d for document %d\n", uint64(job.Id), uint64(documentID))

	for !job.Status.Terminal() {
		time.Sleep(pipeline.DefaultPollInterval)
		job, err = db.JobRepository().GetJob(ctx, job.Id)
		if err != nil {
			return fmt.Errorf("failed to poll job: %w", err)
		}
		if job == nil {
			return fmt.Errorf("pipeline job disappeared")
		}
	}

	printJob(job)
	if job.Status == core.StatusFailed {
		return fmt.Errorf("pipeline failed: %s", job.ErrorMessage)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	jobID, err := parseID(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid job id: %w", err)
	}

	db, err := paperbridge.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	job, err := db.JobRepository().GetJob(context.Background(), jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %d not found", uint64(jobID))
	}

	printJob(job)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := paperbridge.NewDatabase(c.String("db"), paperbridge.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Search(context.Background(), query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching chunks.")
		return nil
	}
	for _, result := range results {
		fmt.Printf("%d. doc=%d chunk=%s score=%.3f (vector=%.3f lexical=%.3f)\n",
			result.Rank,
			uint64(result.Chunk.DocumentId),
			result.Chunk.ChunkId,
			result.CombinedScore,
			result.VectorScore,
			result.LexicalScore)
		fmt.Printf("   %s\n", truncate(result.Chunk.Content, 160))
	}
	return nil
}

func parseID(arg string) (core.ID, error) {
	if arg == "" {
		return 0, fmt.Errorf("argument is required")
	}
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("id must be greater than zero")
	}
	return core.ID(id), nil
}

func printJob(job *core.Job) {
	fmt.Printf("Job %d: task=%s status=%s\n", uint64(job.Id), job.Task, job.Status)
	if job.ErrorMessage != "" {
		fmt.Printf("  error: %s\n", job.ErrorMessage)
	}
	if job.Pipeline != nil {
		printStep("extract", &job.Pipeline.Extract)
		printStep("embed", &job.Pipeline.Embed)
	}
}

func printStep(name string, step *core.StepRecord) {
	line := fmt.Sprintf("  %s: %s", name, step.Status)
	if step.JobId != 0 {
		line += fmt.Sprintf(" (job %d)", uint64(step.JobId))
	}
	if step.ErrorMessage != "" {
		line += " - " + step.ErrorMessage
	}
	fmt.Println(line)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
