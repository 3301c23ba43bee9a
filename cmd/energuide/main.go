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
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "energuide",
		Usage: "Renewable energy policy guide with retrieval-augmented answers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file (default: ./energuide.yaml, then ~/.config/energuide/config.yaml)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides log.level",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Also write JSON logs to this file; overrides log.file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the BadgerDB index directory; overrides database.path",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file",
				Value: ".env",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Index crawled FAQ JSON files",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "Empty the index before ingesting",
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Re-embed passages that are already indexed",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of passages per embedding request; overrides ingestion.batch_size",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every indexed passage with the configured embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch; overrides reindex.batch_size",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per batch; overrides reindex.max_retries",
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff; overrides reindex.retry_delay",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of batches embedded concurrently; overrides reindex.workers",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Show the nearest passages to a query with their similarity",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "k",
						Aliases: []string{"n"},
						Usage:   "Number of passages to show",
						Value:   3,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question and exit",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
			},
			{
				Name:   "chat",
				Usage:  "Start an interactive chat in the terminal",
				Action: chatCommand,
			},
			{
				Name:   "serve",
				Usage:  "Serve the chat HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address; overrides server.addr",
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "How long to wait for in-flight requests on shutdown",
						Value: 10 * time.Second,
					},
				},
			},
			{
				Name:   "info",
				Usage:  "Show index and model information",
				Action: infoCommand,
			},
		},
	}
}
