package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/recipes"
	"github.com/snappy-loop/promptchain/internal/storage"
	"github.com/spf13/cobra"
)

var runFlags struct {
	set []string
	out string
}

var runCmd = &cobra.Command{
	Use:   "run <recipe>",
	Short: "Run a recipe and save any generated image",
	Example: `  promptchain run company-name --set product="flying cows"
  promptchain run garnish --set dish="beef wellington" --out output/served-dish.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runRecipe,
}

func init() {
	f := runCmd.Flags()
	f.StringArrayVarP(&runFlags.set, "set", "s", nil, "Recipe input as key=value (repeatable)")
	f.StringVarP(&runFlags.out, "out", "o", "", "Image output path (default: recipe output name or <timestamp>.jpg under OUTPUT_DIR)")
}

func runRecipe(cmd *cobra.Command, args []string) error {
	inputs, err := parseSet(runFlags.set)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	rc, err := recipes.Default(client, cfg.AgentMaxIterations).Get(args[0])
	if err != nil {
		return err
	}
	out, err := rc.Run(ctx, inputs)
	if err != nil {
		return err
	}

	if out.Skipped != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "skipped:", out.Skipped)
	}
	if out.Text != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out.Text)
	}
	if out.Image == nil {
		return nil
	}

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}
	name := outputName(runFlags.out, rc.OutputName, cfg.OutputDir, time.Now())
	saved, err := storage.SaveStep(sink, func() string { return name }).Invoke(ctx, out.Image.Data)
	if err != nil {
		return err
	}
	log.Info().Str("recipe", rc.Name).Str("name", saved).Msg("Image saved")
	fmt.Fprintln(cmd.OutOrStdout(), storage.Locate(ctx, sink, saved))
	return nil
}
