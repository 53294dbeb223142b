// Command pathfind is a demo CLI over the engine package: index a
// tree, run ranked queries against it, or watch it for live changes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/pathfind/internal/config"
	"github.com/standardbeagle/pathfind/internal/engine"
	"github.com/standardbeagle/pathfind/internal/indexing"
)

func loadConfig(c *cli.Context) config.EngineConfig {
	path := c.String("config")
	if path == "" {
		return config.DefaultEngineConfig()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pathfind: %v, using defaults\n", err)
		return config.DefaultEngineConfig()
	}
	return cfg
}

func main() {
	app := &cli.App{
		Name:  "pathfind",
		Usage: "local filesystem path autocomplete engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "pathfind.toml config path",
			},
		},
		Commands: []*cli.Command{
			indexCommand(),
			searchCommand(),
			watchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pathfind:", err)
		os.Exit(1)
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "walk a directory tree and index every path beneath it",
		ArgsUsage: "<root>",
		Action: func(c *cli.Context) error {
			root := c.Args().First()
			if root == "" {
				return cli.Exit("index requires a root directory argument", 1)
			}
			eng := engine.New(loadConfig(c), indexing.DefaultWalker{})
			if err := eng.StartIndexing(context.Background(), root); err != nil {
				return err
			}
			stats := eng.Stats()
			fmt.Printf("indexed %d paths\n", stats.IndexSize)
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "index <root> in-process, then run a ranked query against it",
		ArgsUsage: "<root> <query>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return cli.Exit("search requires <root> <query>", 1)
			}
			root, query := c.Args().Get(0), c.Args().Get(1)
			eng := engine.New(loadConfig(c), indexing.DefaultWalker{})
			if err := eng.StartIndexing(context.Background(), root); err != nil {
				return err
			}
			results, err := eng.Search(query)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%.4f  %s\n", r.Score, r.Path)
			}
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "index a directory then keep it up to date as files change",
		ArgsUsage: "<root>",
		Action: func(c *cli.Context) error {
			root := c.Args().First()
			if root == "" {
				return cli.Exit("watch requires a root directory argument", 1)
			}
			cfg := loadConfig(c)
			eng := engine.New(cfg, indexing.DefaultWalker{})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Printf("indexing %s and watching for changes (ctrl-c to stop)\n", root)
			if err := eng.Watch(ctx, root); err != nil {
				return err
			}
			fmt.Printf("indexed %d paths\n", eng.Stats().IndexSize)
			return nil
		},
	}
}
