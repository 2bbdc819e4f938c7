// Command vecml trains, stores and applies classifiers from CSV files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var flags *pflag.FlagSet

var (
	cfgPathFlag   string
	inputFlag     string
	modelFlag     string
	algorithmFlag string
	labeledFlag   bool
	buildFlag     string
	centroidsFlag int
)

func init() {
	resetFlags()
}

// resetFlags recreates the shared flag set. Tests call it between runs.
func resetFlags() {
	flags = &pflag.FlagSet{}

	flags.StringVarP(&cfgPathFlag, "config", "c", "", "config file (default ./vecml.yaml)")
	flags.StringVarP(&inputFlag, "input", "i", "-", "CSV input file, - for stdin")
	flags.StringVarP(&modelFlag, "model", "m", "model", "model name in the store")
	flags.StringVarP(&algorithmFlag, "algorithm", "a", "boost", "algorithm: knn, boost, stump or som")
	flags.BoolVar(&labeledFlag, "labeled", false, "the last CSV column holds the true label")
	flags.StringVar(&buildFlag, "build", "", "CSV file to build and store a k-d tree from")
	flags.IntVar(&centroidsFlag, "centroids", 0, "knn: reduce the samples to this many k-means centroids")

	flags.String("store", "local", "model store: memory, local, s3 or minio")
	flags.String("store-path", "./models", "directory of the local store")
	flags.String("bucket", "", "bucket of the s3 or minio store")
	flags.String("prefix", "", "key prefix inside the bucket")
	flags.String("endpoint", "", "minio endpoint")
	flags.String("ddb-table", "", "DynamoDB table for versioned model names (s3 only)")
	flags.String("codec", "go-json", "payload codec: json or go-json")
	flags.String("compression", "zstd", "payload compression: none, lz4 or zstd")
	flags.String("boost", "realboost", "boosting variant: adaboost, realboost, floatboost or sammeboost")
	flags.Int("rounds", 100, "maximum number of weak classifiers")
	flags.Float64("min-error", 0, "stop boosting once the training error drops to this value")
	flags.Int("k", 1, "number of voting neighbors")
	flags.Float64("reject", 0, "reject queries farther than this from every model, 0 disables")
	flags.Int("max-evals", 0, "bound the k-d tree search to this many nodes, 0 is exact")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
}

var commonFlags = []string{
	"config", "store", "store-path", "bucket", "prefix", "endpoint", "ddb-table", "log-level", "log-format",
}

func attachFlags(cmd *cobra.Command, names []string) {
	cmdFlags := cmd.Flags()
	for _, name := range names {
		if flag := flags.Lookup(name); flag != nil {
			cmdFlags.AddFlag(flag)
		} else {
			panic(fmt.Errorf("could not find flag %q to attach to command %q", name, cmd.Name()))
		}
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vecml",
		Short:         "Train and apply classifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(trainCmd(), classifyCmd(), neighborsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vecml:", err)
		os.Exit(1)
	}
}
