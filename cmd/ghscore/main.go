package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/liugu2023/nekro-github-analyzer/internal/cache"
	"github.com/liugu2023/nekro-github-analyzer/internal/config"
	"github.com/liugu2023/nekro-github-analyzer/internal/evaluation"
	"github.com/liugu2023/nekro-github-analyzer/internal/githubapi"
	"github.com/liugu2023/nekro-github-analyzer/internal/history"
	"github.com/liugu2023/nekro-github-analyzer/internal/monitoring"
	"github.com/liugu2023/nekro-github-analyzer/internal/render"
	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "ghscore",
		Usage:   "Evaluate the health of a GitHub repository",
		Version: version,
		Description: `ghscore fetches repository metadata, documentation, release, issue,
pull-request and community signals from the GitHub API and condenses them
into a 0-100 health score across three dimensions: code quality, activity
and community health.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				Usage:   "GitHub API token",
				EnvVars: []string{"GITHUB_TOKEN"},
			},
		},
		Commands: []*cli.Command{
			evaluateCommand(),
			historyCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:      "evaluate",
		Aliases:   []string{"eval"},
		Usage:     "Evaluate a repository by URL or owner/repo reference",
		ArgsUsage: "<repository>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, markdown, report, brief, json",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Record the result in the local evaluation history",
			},
		},
		Action: runEvaluate,
	}
}

func runEvaluate(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("expected exactly one repository reference", 2)
	}

	owner, repo, err := githubapi.ParseRepoURL(c.Args().First())
	if err != nil {
		return err
	}

	cfg := config.LoadOrDefault()
	if token := c.String("token"); token != "" {
		cfg.GitHub.Token = token
	}

	logger := monitoring.NewLogger()
	client := githubapi.New(githubapi.Options{
		Token:             cfg.GitHub.Token,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Burst:             cfg.GitHub.Burst,
		Logger:            logger,
	})
	resultCache := cache.New[*types.Evaluation](cfg.Cache.MaxSize, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	evaluator := evaluation.NewEvaluator(client, resultCache, logger, nil)

	card, err := evaluator.Card(c.Context, owner, repo)
	if err != nil {
		return err
	}

	if c.Bool("save") {
		store, err := history.Open(cfg.History.Dir)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(c.Context, card.Result); err != nil {
			return err
		}
	}

	switch format := c.String("format"); format {
	case "text":
		printColorSummary(card.Result)
	case "markdown":
		fmt.Println(card.Markdown)
	case "report":
		fmt.Println(card.PlainText)
	case "brief":
		fmt.Println(render.BriefReport(card.Result))
	case "json":
		out, err := json.MarshalIndent(card, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		return cli.Exit(fmt.Sprintf("unknown format: %s", format), 2)
	}
	return nil
}

// printColorSummary writes the terminal-friendly colored summary.
func printColorSummary(ev *types.Evaluation) {
	bold := color.New(color.Bold)

	bold.Printf("%s\n", ev.RepoFullName)
	fmt.Printf("%s\n\n", ev.RepoURL)

	scoreColor := color.New(color.FgRed)
	switch {
	case ev.TotalScore >= 75:
		scoreColor = color.New(color.FgGreen)
	case ev.TotalScore >= 55:
		scoreColor = color.New(color.FgYellow)
	}
	scoreColor.Printf("Score: %.1f/100  %s\n\n", ev.TotalScore, ev.Rating)

	printDimension("Code quality", ev.CodeQuality)
	printDimension("Activity", ev.Activity)
	printDimension("Community health", ev.CommunityHealth)

	fmt.Println()
	fmt.Println(ev.Summary)

	if len(ev.Strengths) > 0 {
		fmt.Println()
		for _, s := range ev.Strengths {
			color.Green("  + %s", s)
		}
	}
	if len(ev.Weaknesses) > 0 {
		fmt.Println()
		for _, w := range ev.Weaknesses {
			color.Yellow("  - %s", w)
		}
	}

	fmt.Println()
	bold.Println("Recommendation:")
	fmt.Println(ev.Recommendation)
}

func printDimension(name string, d types.DimensionScore) {
	fmt.Printf("  %-18s %5.1f/%.0f  (%.1f%%)\n", name, d.Score, d.MaxScore, d.Percentage)
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show recent evaluations of a repository",
		ArgsUsage: "<repository>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Value: 10,
				Usage: "Maximum number of records to show",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return cli.Exit("expected exactly one repository reference", 2)
			}
			owner, repo, err := githubapi.ParseRepoURL(c.Args().First())
			if err != nil {
				return err
			}

			cfg := config.LoadOrDefault()
			store, err := history.Open(cfg.History.Dir)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(c.Context, owner+"/"+repo, c.Int("limit"))
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no recorded evaluations")
				return nil
			}

			for _, r := range records {
				fmt.Printf("%s  %6.1f  %s\n", r.EvaluatedAt.Format("2006-01-02 15:04"), r.TotalScore, r.Rating)
			}
			return nil
		},
	}
}
