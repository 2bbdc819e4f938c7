// Package vecml provides classic pattern-recognition learners built around
// nearest-neighbor search: a k-d tree, vector quantization and k-NN
// classification, boosted decision stumps, Self-Organizing Maps and kernel
// machines.
//
// The learners live in their own packages (kdtree, vq, boost, stump, som,
// kernel, collector). This package adds the Trainer, which buffers samples
// online and trains models on them in the background.
//
// # Quick Start
//
//	trainer := vecml.NewTrainer(func() learning.Model {
//	    return boost.New(boost.WithFactory(boost.StumpFactory()))
//	})
//	for _, s := range stream {
//	    _ = trainer.Add(s.Features, s.Label, 1)
//	}
//	if err := trainer.Start(ctx); err != nil {
//	    return err
//	}
//	if err := trainer.Wait(); err != nil {
//	    return err
//	}
//	label := trainer.Classify(query)
//
// # Persistence
//
// Trained models are saved through package persist into a blobstore.Store:
//
//	store := blobstore.NewLocalStore("./models")
//	_ = trainer.Save(ctx, store, "iris/boost.vml")
//
// # Cancellation
//
// Every long-running loop polls its context and an optional
// learning.Controller. An interrupted run returns an error matching
// ErrLearningInterrupted and leaves the previous model in place.
package vecml
