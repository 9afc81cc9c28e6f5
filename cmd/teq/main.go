// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Command teq tests the closeness, or the equivalence, of two weighted
// Boolean circuits.
//
//	teq --circuit a.cnf,b.nnf --weightfunction w.txt
//	teq --mode exact --circuit a.cnf --weightfunction w1.txt --weightfunction w2.txt
//
// The exit status is 0 when the circuits are accepted, 1 when they are
// rejected and 2 on error.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dalzilio/teq"
	"github.com/dalzilio/teq/bdd"
	"github.com/dalzilio/teq/oracle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	exitAccept = 0
	exitReject = 1
	exitError  = 2
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command with arguments args and returns its exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// stays Accept when no test is run, for instance with --help
	verdict := teq.Accept
	cmd := newRootCmd(stdout, stderr, &verdict)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		if isInputError(err) {
			fmt.Fprintln(stderr, "Run 'teq --help' for usage.")
		}
		return exitError
	}
	if verdict == teq.Accept {
		return exitAccept
	}
	return exitReject
}

func newRootCmd(stdout, stderr io.Writer, verdict *teq.Verdict) *cobra.Command {
	flags := defaultConfig()
	var configPath string
	var tolerant int
	cmd := &cobra.Command{
		Use:   "teq",
		Short: "Test the closeness or equivalence of two weighted Boolean circuits",
		Long: `teq compares the distributions defined by two weighted Boolean circuits.

Circuits are DIMACS CNF formulas (.cnf) or d-DNNF circuits in c2d format
(.nnf). Weight functions give the probability of the positive literal of each
variable. With a single circuit, it is compared with itself under two weight
functions; with a single weight function, it is used for both circuits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := defaultConfig()
			if configPath != "" {
				if err := loadConfig(configPath, &cfg); err != nil {
					return err
				}
			}
			override(cmd, &cfg, flags)
			if cmd.Flags().Changed("tolerant") {
				cfg.Mode = teq.Exact.String()
				if tolerant == 1 {
					cfg.Mode = teq.Tolerant.String()
				}
			}
			v, err := run(cmd.Context(), cfg, stdout, stderr)
			*verdict = v
			return err
		},
	}
	f := cmd.Flags()
	f.Float64Var(&flags.Params.Epsilon, "epsilon", flags.Params.Epsilon, "closeness parameter")
	f.Float64Var(&flags.Params.Eta, "eta", flags.Params.Eta, "farness parameter")
	f.Float64Var(&flags.Params.Delta, "delta", flags.Params.Delta, "error parameter")
	f.Int64Var(&flags.Seed, "seed", flags.Seed, "random seed")
	f.StringVar(&flags.Mode, "mode", flags.Mode, "test to perform: tolerant or exact")
	f.IntVar(&tolerant, "tolerant", 1, "1 = tolerant, 0 = exact (same as --mode)")
	f.StringSliceVar(&flags.Circuits, "circuit", nil, "input circuit file(s), .cnf or .nnf")
	f.StringSliceVar(&flags.WeightFunctions, "weightfunction", nil, "input weight function file(s)")
	f.IntVar(&flags.Parallelism, "parallelism", 0, "number of goroutines evaluating samples (0 for GOMAXPROCS)")
	f.IntVar(&flags.MaxNodes, "maxnodes", 0, "maximal number of nodes in a BDD (0 for no limit)")
	f.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.MarkFlagsMutuallyExclusive("mode", "tolerant")
	return cmd
}

// override copies into cfg the values of the flags set on the command line.
func override(cmd *cobra.Command, cfg *config, flags config) {
	changed := cmd.Flags().Changed
	if changed("epsilon") {
		cfg.Params.Epsilon = flags.Params.Epsilon
	}
	if changed("eta") {
		cfg.Params.Eta = flags.Params.Eta
	}
	if changed("delta") {
		cfg.Params.Delta = flags.Params.Delta
	}
	if changed("seed") {
		cfg.Seed = flags.Seed
	}
	if changed("mode") {
		cfg.Mode = flags.Mode
	}
	if changed("circuit") {
		cfg.Circuits = flags.Circuits
	}
	if changed("weightfunction") {
		cfg.WeightFunctions = flags.WeightFunctions
	}
	if changed("parallelism") {
		cfg.Parallelism = flags.Parallelism
	}
	if changed("maxnodes") {
		cfg.MaxNodes = flags.MaxNodes
	}
	if changed("log-level") {
		cfg.LogLevel = flags.LogLevel
	}
}

// run performs the test and prints its diagnostics on stdout.
func run(ctx context.Context, cfg config, stdout, stderr io.Writer) (teq.Verdict, error) {
	log, err := cfg.logger(stderr)
	if err != nil {
		return teq.Reject, err
	}
	mode, err := teq.ParseMode(cfg.Mode)
	if err != nil {
		return teq.Reject, err
	}
	if err := cfg.check(); err != nil {
		return teq.Reject, err
	}
	w1, w2, err := teq.LoadWeights(cfg.WeightFunctions...)
	if err != nil {
		return teq.Reject, err
	}

	reg := prometheus.NewRegistry()
	o := oracle.New(
		oracle.Registerer(reg),
		oracle.Logger(log),
		oracle.BDDOptions(bdd.Maxnodesize(cfg.MaxNodes)),
	)
	tester := teq.New(o, teq.Seed(cfg.Seed), teq.Logger(log), teq.Parallelism(cfg.Parallelism))
	rep, err := tester.Check(ctx, teq.Request{
		Mode:     mode,
		Params:   cfg.Params,
		Circuits: cfg.sources(),
		Weights:  [2]teq.Weights{w1, w2},
	})
	logMetrics(log, reg)
	if err != nil {
		return teq.Reject, err
	}
	printReport(stdout, rep)
	return rep.Verdict, nil
}

func printReport(w io.Writer, rep *teq.Report) {
	if rep.Reason != "" {
		fmt.Fprintln(w, rep.Reason)
		fmt.Fprintln(w, rep.Verdict)
		return
	}
	wct1, _ := rep.WCT1.Float64()
	wct2, _ := rep.WCT2.Float64()
	switch rep.Mode {
	case teq.Tolerant:
		threshold, _ := rep.Threshold.Float64()
		estimate, _ := rep.Estimate.Float64()
		fmt.Fprintln(w, "Number of samples required to test tolerant closeness =", rep.Samples)
		fmt.Fprintln(w, "Weighted Count of circuit 1 and 2", wct1, wct2)
		fmt.Fprintln(w, "Threshold:", threshold)
		fmt.Fprintln(w, "Estimate:", estimate)
	case teq.Exact:
		diff, _ := rep.Difference.Float64()
		fmt.Fprintln(w, "Weighted Count of circuit 1 and 2", wct1, wct2)
		fmt.Fprintln(w, "Difference of perturbed counts:", diff)
	}
	fmt.Fprintln(w, rep.Verdict)
}

// logMetrics logs the counters of the oracle at debug level.
func logMetrics(log zerolog.Logger, reg *prometheus.Registry) {
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}
	families, err := reg.Gather()
	if err != nil {
		log.Warn().Err(err).Msg("cannot gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			e := log.Debug().Str("metric", mf.GetName()).Float64("value", m.GetCounter().GetValue())
			for _, lp := range m.GetLabel() {
				e = e.Str(lp.GetName(), lp.GetValue())
			}
			e.Msg("oracle metric")
		}
	}
}

// isInputError reports whether err comes from bad input rather than from the
// oracle.
func isInputError(err error) bool {
	return errors.Is(err, teq.ErrInvalidParameter) || errors.Is(err, teq.ErrInputFormat)
}
