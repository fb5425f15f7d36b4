package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/pkg/item"
	"github.com/matzehuels/flowgrid/pkg/samples"
)

// samplesCommand creates the samples command for generating placeholder images.
func (c *CLI) samplesCommand() *cobra.Command {
	var (
		opts       = samples.DefaultOptions()
		background string
		foreground string
		seed       uint64
	)

	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Generate numbered placeholder images",
		Long: `Generate numbered placeholder images for trying out layouts.

Each image is a solid frame with its number drawn in the middle. Frames are
landscape or portrait at random (see --portrait), sized from --aspect and
--long-edge. An items file listing every image with its dimensions is
written next to them, ready for 'flowgrid layout'.

Colors accept names (darkgray), hex (#a9a9a9, #aaa) or "R,G,B".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.Background, err = samples.ParseColor(background); err != nil {
				return err
			}
			if opts.Foreground, err = samples.ParseColor(foreground); err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}
			return c.runSamples(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Dir, "output", "o", opts.Dir, "output directory")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", opts.Count, "number of images")
	cmd.Flags().Float64VarP(&opts.PortraitFraction, "portrait", "p", opts.PortraitFraction, "fraction of portrait images (0-1)")
	cmd.Flags().StringVarP(&opts.Aspect, "aspect", "a", opts.Aspect, "landscape aspect ratio as H:V")
	cmd.Flags().IntVarP(&opts.LongEdge, "long-edge", "l", opts.LongEdge, "long edge in pixels")
	cmd.Flags().StringVarP(&background, "background", "b", samples.DefaultBackground, "background color")
	cmd.Flags().StringVarP(&foreground, "foreground", "f", samples.DefaultForeground, "label color")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "random seed for orientations (default: random)")

	return cmd
}

// runSamples generates the images and reports progress on a spinner.
func (c *CLI) runSamples(ctx context.Context, opts samples.Options) error {
	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Generating %d images...", opts.Count))
	spinner.Start()

	items, err := samples.Generate(ctx, opts, func(done, total int, it item.Item) {
		spinner.Update("Generated %d/%d images", done, total)
		c.Logger.Debug("generated sample", "src", it.Src, "width", it.Width, "height", it.Height)
	})
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Generated %d images", len(items)))

	portrait := 0
	for _, it := range items {
		if it.AspectRatio < 1 {
			portrait++
		}
	}

	itemsPath := filepath.Join(opts.Dir, samples.ItemsFile)
	printSuccess("Generated %d images", len(items))
	printFile(itemsPath)
	printDetail("%d landscape, %d portrait", len(items)-portrait, portrait)
	printNewline()
	printNextStep("Lay out", "flowgrid layout "+itemsPath)
	return nil
}
