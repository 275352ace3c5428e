package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hiraku-lab/mentor/pkg/agent/tool"
	"github.com/hiraku-lab/mentor/pkg/cli/config"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/repository/memory"
	"github.com/hiraku-lab/mentor/pkg/service/docstore"
	"github.com/hiraku-lab/mentor/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdChat() *cli.Command {
	var userID string
	var geminiCfg config.Gemini
	var agentCfg config.Agent
	var profileCfg config.Profile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User ID for the local session",
			Value:       "local",
			Sources:     cli.EnvVars("MENTOR_USER_ID"),
			Destination: &userID,
		},
	}
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, agentCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Chat with the assistant in the terminal (in-memory state)",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			cfg := agentCfg.Configure()

			profile, err := profileCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load profile")
			}
			if profile != nil {
				cfg.DefaultGuidelines = profile.GuidelineSeed(cfg.DefaultGuidelines)
			}

			repo := memory.New()
			defer func() {
				_ = repo.Close()
			}()

			ucs := usecase.New(repo, llmClient,
				usecase.WithConfig(cfg),
				usecase.WithDocstore(docstore.NewMemory()),
			)

			progress := color.New(color.FgHiBlack)
			assistant := color.New(color.FgCyan, color.Bold)
			prompt := color.New(color.FgGreen, color.Bold)

			ctx = tool.WithUpdate(ctx, func(ctx context.Context, message string) {
				progress.Println("  " + message)
			})

			convID := types.NewConversationID()
			fmt.Println("mentor chat. Type 'exit' or 'quit' to leave.")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				prompt.Print("you> ")
				if !scanner.Scan() {
					break
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "exit" || text == "quit" {
					break
				}

				result, err := ucs.Chat.HandleMessage(ctx, &usecase.ChatRequest{
					UserID:         types.UserID(userID),
					ConversationID: convID,
					Text:           text,
				})
				if err != nil {
					return goerr.Wrap(err, "chat run failed")
				}

				assistant.Print("mentor> ")
				fmt.Println(result.Answer)
			}

			if err := scanner.Err(); err != nil {
				return goerr.Wrap(err, "failed to read input")
			}
			return nil
		},
	}
}
