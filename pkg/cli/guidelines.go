package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hiraku-lab/mentor/pkg/cli/config"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdGuidelines() *cli.Command {
	return &cli.Command{
		Name:    "guidelines",
		Aliases: []string{"g"},
		Usage:   "Inspect and edit the behavioral guideline document",
		Commands: []*cli.Command{
			cmdGuidelinesShow(),
			cmdGuidelinesHistory(),
			cmdGuidelinesEdit(),
		},
	}
}

func guidelinesFlags(repoCfg *config.Repository, userID *string) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User whose guidelines to operate on",
			Required:    true,
			Sources:     cli.EnvVars("MENTOR_USER_ID"),
			Destination: userID,
		},
	}
	return append(flags, repoCfg.Flags()...)
}

func cmdGuidelinesShow() *cli.Command {
	var userID string
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "show",
		Usage: "Print the latest guideline document",
		Flags: guidelinesFlags(&repoCfg, &userID),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				_ = repo.Close()
			}()

			doc, err := repo.Guideline().Latest(ctx, types.UserID(userID))
			if err != nil {
				if errors.Is(err, types.ErrGuidelineNotFound) {
					fmt.Println("no guidelines yet")
					return nil
				}
				return goerr.Wrap(err, "failed to load guidelines")
			}

			fmt.Printf("version %d (%s)\n\n", doc.Version, doc.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Println(doc.Content)
			return nil
		},
	}
}

func cmdGuidelinesHistory() *cli.Command {
	var userID string
	var limit int
	var repoCfg config.Repository

	flags := guidelinesFlags(&repoCfg, &userID)
	flags = append(flags, &cli.IntFlag{
		Name:        "limit",
		Usage:       "Show only the most recent N versions (0 shows all)",
		Destination: &limit,
	})

	return &cli.Command{
		Name:  "history",
		Usage: "List guideline versions with their change summaries",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				_ = repo.Close()
			}()

			docs, err := repo.Guideline().History(ctx, types.UserID(userID))
			if err != nil {
				return goerr.Wrap(err, "failed to load guideline history")
			}
			if limit > 0 && len(docs) > limit {
				docs = docs[len(docs)-limit:]
			}

			for _, doc := range docs {
				diff := doc.DiffFromPrevious
				if diff == "" {
					diff = "(initial version)"
				}
				fmt.Printf("v%d  %s  %s\n", doc.Version, doc.CreatedAt.Format("2006-01-02 15:04:05"), diff)
			}
			return nil
		},
	}
}

func cmdGuidelinesEdit() *cli.Command {
	var userID string
	var file string
	var note string
	var repoCfg config.Repository

	flags := guidelinesFlags(&repoCfg, &userID)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "file",
			Usage:       "Path to the new guideline content",
			Required:    true,
			Destination: &file,
		},
		&cli.StringFlag{
			Name:        "note",
			Usage:       "Summary of what changed",
			Value:       "manual edit",
			Destination: &note,
		},
	)

	return &cli.Command{
		Name:  "edit",
		Usage: "Commit a manually edited guideline document as a new version",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// #nosec G304 - path is expected to be provided by CLI argument
			content, err := os.ReadFile(file)
			if err != nil {
				return goerr.Wrap(err, "failed to read guideline file", goerr.V("path", file))
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				_ = repo.Close()
			}()

			baseVersion := 0
			current, err := repo.Guideline().Latest(ctx, types.UserID(userID))
			if err == nil {
				baseVersion = current.Version
			} else if !errors.Is(err, types.ErrGuidelineNotFound) {
				return goerr.Wrap(err, "failed to load current guidelines")
			}

			doc, err := repo.Guideline().Commit(ctx, types.UserID(userID), string(content), note, baseVersion)
			if err != nil {
				return goerr.Wrap(err, "failed to commit guidelines")
			}

			logging.Default().Info("Guidelines updated", "user_id", userID, "version", doc.Version)
			fmt.Printf("committed version %d\n", doc.Version)
			return nil
		},
	}
}
