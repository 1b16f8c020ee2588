package main

import (
	"fmt"
	"strings"

	"github.com/snappy-loop/promptchain/internal/agents"
	"github.com/spf13/cobra"
)

var agentFlags struct {
	maxIterations int
	verbose       bool
}

var agentCmd = &cobra.Command{
	Use:   "agent [input]",
	Short: "Ask the dish-of-the-day agent, which can call the text and image tools",
	RunE:  runAgent,
}

func init() {
	f := agentCmd.Flags()
	f.IntVar(&agentFlags.maxIterations, "max-iterations", 0, "Agent loop bound (default: AGENT_MAX_ITERATIONS)")
	f.BoolVarP(&agentFlags.verbose, "verbose", "v", false, "Log every agent action at info level")
}

func runAgent(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	if input == "" {
		input = "Come up with a dish of the day and show me an image of it."
	}
	maxIterations := cfg.AgentMaxIterations
	if agentFlags.maxIterations > 0 {
		maxIterations = agentFlags.maxIterations
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	opts := []agents.Option{agents.WithMaxIterations(maxIterations), agents.WithTemperature(0)}
	if agentFlags.verbose {
		opts = append(opts, agents.WithVerbose())
	}
	agent, err := agents.New(client.Text, agents.DefaultTools(client), opts...)
	if err != nil {
		return err
	}

	answer, err := agent.Run(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
