package main

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/persist"
	"github.com/hupe1980/vecml/vq"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify CSV rows with a stored model",
		Long: "Classify every row of a CSV file and print one label per line, ? for rejected rows. " +
			"With --labeled the last column is the true label and the accuracy is printed at the end.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return classify(cmd)
		},
	}
	attachFlags(cmd, append([]string{"input", "model", "labeled", "k", "reject", "max-evals"}, commonFlags...))
	return cmd
}

func classify(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	store, registry, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	blob, err := resolveModel(ctx, registry, modelFlag)
	if err != nil {
		return err
	}
	model, err := persist.LoadClassifier(ctx, store, blob)
	logger.LogLoad(ctx, blob, err)
	if err != nil {
		return err
	}

	if q, ok := model.(*vq.Quantizer); ok {
		if err := tuneQuantizer(ctx, cmd, q, cfg); err != nil {
			return err
		}
	}

	samples, labels, err := readCSVFile(inputFlag, labeledFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var correct, total int
	for i := range samples.Len() {
		result := model.Classify(samples.Row(i))
		logger.LogClassify(ctx, samples.Features(), result)
		fmt.Fprintln(out, formatFloat(result))
		if labels != nil && learning.IsLabel(labels[i]) {
			total++
			if result == labels[i] {
				correct++
			}
		}
	}
	if labeledFlag && total > 0 {
		fmt.Fprintf(out, "accuracy: %.4f (%d/%d)\n", float64(correct)/float64(total), correct, total)
	}
	return nil
}

// tuneQuantizer applies the k-NN settings given on the command line to a
// loaded quantizer. Stored settings win over configured defaults.
func tuneQuantizer(ctx context.Context, cmd *cobra.Command, q *vq.Quantizer, cfg *Config) error {
	if cmd.Flags().Changed("k") {
		q.SetK(cfg.KNN.K)
	}
	if cmd.Flags().Changed("reject") {
		reject := cfg.KNN.Reject
		if reject <= 0 {
			reject = math.Inf(1)
		}
		q.SetRejectThreshold(reject)
	}
	if cmd.Flags().Changed("max-evals") {
		if cfg.KNN.MaxEvaluations <= 0 {
			q.DisableTree()
			return nil
		}
		return q.UseTree(ctx, cfg.KNN.MaxEvaluations)
	}
	return nil
}
