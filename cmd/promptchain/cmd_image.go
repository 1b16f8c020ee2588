package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/pipeline"
	"github.com/snappy-loop/promptchain/internal/storage"
	"github.com/spf13/cobra"
)

var imageFlags struct {
	negative string
	model    string
	out      string
}

var imageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate one image from a prompt and save it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImage,
}

func init() {
	f := imageCmd.Flags()
	f.StringVar(&imageFlags.negative, "negative", "", "Negative prompt (default: IMAGE_NEGATIVE_PROMPT)")
	f.StringVar(&imageFlags.model, "model", "", "Image model (default: IMAGE_MODEL)")
	f.StringVarP(&imageFlags.out, "out", "o", "", "Output path (default: <timestamp>.jpg under OUTPUT_DIR)")
}

func runImage(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	var opts []llm.ImageOption
	if imageFlags.negative != "" {
		opts = append(opts, llm.WithNegativePrompt(imageFlags.negative))
	}
	if imageFlags.model != "" {
		opts = append(opts, llm.WithModel(imageFlags.model))
	}

	name := outputName(imageFlags.out, "", cfg.OutputDir, time.Now())
	chain := pipeline.Then(
		pipeline.Then[string, *llm.Image, []byte](client.ImageStep(opts...), llm.ImageData()),
		storage.SaveStep(sink, func() string { return name }),
	)
	saved, err := chain.Invoke(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), storage.Locate(ctx, sink, saved))
	return nil
}
