package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vecml"
	"github.com/hupe1980/vecml/boost"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
	"github.com/hupe1980/vecml/som"
	"github.com/hupe1980/vecml/stump"
	"github.com/hupe1980/vecml/vq"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model from a labeled CSV file and store it",
		Long: "Train a model from a CSV file whose last column is the class label. " +
			"The model is saved under --model; with a DynamoDB table it is published as a new version.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return train(cmd)
		},
	}
	attachFlags(cmd, append([]string{
		"input", "model", "algorithm", "centroids", "codec", "compression",
		"boost", "rounds", "min-error", "k", "reject", "max-evals",
	}, commonFlags...))
	return cmd
}

func train(cmd *cobra.Command) error {
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
	opts, err := persistOptions(cfg)
	if err != nil {
		return err
	}
	factory, err := modelFactory(cfg, logger, algorithmFlag)
	if err != nil {
		return err
	}

	samples, labels, err := readCSVFile(inputFlag, true)
	if err != nil {
		return err
	}
	if strings.EqualFold(algorithmFlag, "knn") && centroidsFlag > 0 {
		if samples, labels, err = reduce(ctx, samples, labels, centroidsFlag); err != nil {
			return err
		}
	}

	store, registry, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	trainer := vecml.NewTrainer(factory, vecml.WithLogger(logger), vecml.WithName(modelFlag))
	for i := range samples.Len() {
		if err := trainer.Add(samples.Row(i), labels[i], 1); err != nil {
			return err
		}
	}
	if err := trainer.Start(ctx); err != nil {
		return err
	}
	if err := trainer.Wait(); err != nil {
		return err
	}

	if q, ok := trainer.Model().(*vq.Quantizer); ok && cfg.KNN.MaxEvaluations > 0 {
		if err := q.UseTree(ctx, cfg.KNN.MaxEvaluations); err != nil {
			return err
		}
	}

	blob := modelFlag
	if registry != nil {
		blob = fmt.Sprintf("%s-%s", modelFlag, time.Now().UTC().Format("20060102T150405.000Z"))
	}
	if err := trainer.Save(ctx, store, blob, opts...); err != nil {
		return err
	}
	if registry != nil {
		version, err := registry.Publish(ctx, modelFlag, blob)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %s version %d\n", modelFlag, version)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "trained %s on %d samples, saved as %s\n", algorithmFlag, samples.Len(), blob)
	return nil
}

// modelFactory returns the constructor for the named algorithm configured
// from cfg.
func modelFactory(cfg *Config, logger *vecml.Logger, algorithm string) (vecml.ModelFactory, error) {
	switch strings.ToLower(algorithm) {
	case "knn":
		reject := cfg.KNN.Reject
		if reject <= 0 {
			reject = math.Inf(1)
		}
		return func() learning.Model {
			return vq.New(nil, vq.WithK(cfg.KNN.K), vq.WithRejectThreshold(reject))
		}, nil
	case "boost":
		alg, err := boost.ParseAlgorithm(cfg.Boost.Algorithm)
		if err != nil {
			return nil, err
		}
		return func() learning.Model {
			return boost.New(
				boost.WithFactory(boost.StumpFactory()),
				boost.WithAlgorithm(alg),
				boost.WithMaxClassifiers(cfg.Boost.MaxClassifiers),
				boost.WithMinError(cfg.Boost.MinError),
				boost.WithLogger(logger.WithAlgorithm(alg.String()).Logger),
			)
		}, nil
	case "stump":
		return func() learning.Model { return stump.New() }, nil
	case "som":
		topology, err := parseTopology(cfg.SOM.Topology)
		if err != nil {
			return nil, err
		}
		return func() learning.Model {
			return som.New(
				som.WithSize(cfg.SOM.Width, cfg.SOM.Height),
				som.WithTopology(topology),
				som.WithLearningLength(cfg.SOM.LearningLength),
			)
		}, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", algorithm)
	}
}

func parseTopology(name string) (som.Topology, error) {
	for _, t := range []som.Topology{som.Square, som.Hexagonal} {
		if strings.EqualFold(t.String(), name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown topology %q", name)
}

// reduce replaces samples by n labeled k-means centroids.
func reduce(ctx context.Context, samples *sampleset.SampleSet, labels []float64, n int) (*sampleset.SampleSet, []float64, error) {
	centroids, assignments, err := vq.TrainCodeBook(ctx, samples, n, 100, 1)
	if err != nil {
		return nil, nil, err
	}
	return centroids, vq.AssignLabels(n, assignments, labels), nil
}
