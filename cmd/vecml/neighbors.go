package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vecml/kdtree"
	"github.com/hupe1980/vecml/persist"
)

func neighborsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors",
		Short: "Find the nearest samples of CSV queries in a k-d tree",
		Long: "Print the k nearest reference samples of every query row as index:distance pairs. " +
			"With --build the tree is first built from an unlabeled CSV file and stored under --model.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return neighbors(cmd)
		},
	}
	attachFlags(cmd, append([]string{"input", "model", "build", "k", "max-evals", "codec", "compression"}, commonFlags...))
	return cmd
}

func neighbors(cmd *cobra.Command) error {
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
	store, _, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	var tree *kdtree.Tree
	if buildFlag != "" {
		opts, err := persistOptions(cfg)
		if err != nil {
			return err
		}
		reference, _, err := readCSVFile(buildFlag, false)
		if err != nil {
			return err
		}
		if tree, err = kdtree.Build(ctx, reference, nil); err != nil {
			return err
		}
		err = persist.Save(ctx, store, modelFlag, tree, opts...)
		logger.LogSave(ctx, modelFlag, err)
		if err != nil {
			return err
		}
	} else {
		tree, err = persist.LoadTree(ctx, store, modelFlag)
		logger.LogLoad(ctx, modelFlag, err)
		if err != nil {
			return err
		}
	}

	queries, _, err := readCSVFile(inputFlag, false)
	if err != nil {
		return err
	}
	if queries.Len() > 0 && queries.Features() != tree.Features() {
		return fmt.Errorf("queries have %d features, tree has %d", queries.Features(), tree.Features())
	}

	out := cmd.OutOrStdout()
	for i := range queries.Len() {
		matches := tree.FindClosestMatchesBounded(queries.Row(i), cfg.KNN.K, cfg.KNN.MaxEvaluations)
		parts := make([]string, len(matches))
		for j, m := range matches {
			parts[j] = fmt.Sprintf("%d:%s", m.Index, formatFloat(m.Distance))
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
	}
	return nil
}
