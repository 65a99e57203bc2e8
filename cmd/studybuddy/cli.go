package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"studybuddy/internal/app"
	"studybuddy/internal/gateway"
	"studybuddy/internal/llm"
	"studybuddy/internal/logger"
)

var errEmptyInput = errors.New("note text is empty")

type cli struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	provider string
	verbose  bool

	// buildGateway freezes configuration; flags are applied before it runs.
	buildGateway func(c *cli) (*gateway.Gateway, error)
}

func defaultCLI() *cli {
	return &cli{in: os.Stdin, out: os.Stdout, err: os.Stderr, buildGateway: configuredGateway}
}

func configuredGateway(c *cli) (*gateway.Gateway, error) {
	if c.provider != "" {
		if err := os.Setenv("AI_PROVIDER", c.provider); err != nil {
			return nil, err
		}
	}
	cfg, log, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !c.verbose {
		log = logger.Discard()
	}
	return app.BuildGateway(cfg.AI, log)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "studybuddy",
		Short:        "StudyBuddy - summarize study notes and generate quizzes from the terminal.",
		SilenceUsage: true,
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.err)
	root.PersistentFlags().StringVarP(&c.provider, "provider", "p", "", "AI provider (openai, huggingface, gemini, ollama, local); overrides AI_PROVIDER")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log gateway activity to stdout")

	root.AddCommand(
		&cobra.Command{
			Use:   "summarize [file]",
			Short: "Summarize a note into bullet points",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.summarize(cmd.Context(), args)
			},
		},
		&cobra.Command{
			Use:   "quiz [file]",
			Short: "Generate quiz questions from a note",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.quiz(cmd.Context(), args)
			},
		},
		&cobra.Command{
			Use:   "ping",
			Short: "Check that the configured AI provider answers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.ping(cmd.Context())
			},
		},
	)
	return root
}

// readNote reads the named file, or stdin when no file or "-" is given.
func (c *cli) readNote(args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(c.in)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", err
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", errEmptyInput
	}
	return text, nil
}

func (c *cli) summarize(ctx context.Context, args []string) error {
	text, err := c.readNote(args)
	if err != nil {
		return c.fail(err)
	}
	gw, err := c.buildGateway(c)
	if err != nil {
		return c.fail(err)
	}

	start := time.Now()
	summary, err := gw.Summarize(ctx, text)
	if err != nil {
		return c.fail(errors.New(llm.Describe(err)))
	}
	color.New(color.FgCyan, color.Bold).Fprintf(c.out, "Summary (%s, %s)\n", gw.Provider(), elapsed(start))
	fmt.Fprintln(c.out, summary)
	return nil
}

func (c *cli) quiz(ctx context.Context, args []string) error {
	text, err := c.readNote(args)
	if err != nil {
		return c.fail(err)
	}
	gw, err := c.buildGateway(c)
	if err != nil {
		return c.fail(err)
	}

	start := time.Now()
	q := gw.GenerateQuiz(ctx, text)
	color.New(color.FgCyan, color.Bold).Fprintf(c.out, "Quiz (%s, %s)\n", gw.Provider(), elapsed(start))
	for i, item := range q {
		color.New(color.FgYellow).Fprintf(c.out, "%d. %s\n", i+1, item.Question)
		fmt.Fprintf(c.out, "   %s %s\n", color.GreenString("Answer:"), item.Answer)
	}
	return nil
}

func (c *cli) ping(ctx context.Context) error {
	gw, err := c.buildGateway(c)
	if err != nil {
		return c.fail(err)
	}
	start := time.Now()
	res := gw.TestConnection(ctx)
	if !res.Success {
		return c.fail(fmt.Errorf("AI service test failed: %s", res.Error))
	}
	fmt.Fprintf(c.out, "%s %s answered in %s\n", color.GreenString("✓"), res.Provider, elapsed(start))
	fmt.Fprintln(c.out, res.Result)
	return nil
}

func (c *cli) fail(err error) error {
	fmt.Fprintf(c.err, "%s %v\n", color.RedString("Error:"), err)
	return err
}

func elapsed(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
