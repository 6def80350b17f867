// Command statecore-demo loads a declarative transition list and runs N
// independent state-machine instances concurrently, each driving its own
// MessageQueue and StateTransitionTable.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	statecore "github.com/nlowry/go-statecore"
	"github.com/nlowry/go-statecore/clock"
	"github.com/nlowry/go-statecore/config"
	"github.com/nlowry/go-statecore/identity"
	"github.com/nlowry/go-statecore/internal/diag"
	"github.com/nlowry/go-statecore/internal/logging"
	"github.com/nlowry/go-statecore/mqueue"
)

type cmdArgs struct {
	ConfigPath string
	Instances  int
	Verbose    bool
}

var args cmdArgs

var rootCmd = &cobra.Command{
	Use:   "statecore-demo",
	Short: "Run a fleet of independent state-machine instances from a declarative config",
	RunE: func(_ *cobra.Command, _ []string) error {
		return run(args)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&args.ConfigPath, "config", "c", "", "Path to the YAML transition config (required)")
	rootCmd.Flags().IntVarP(&args.Instances, "instances", "n", 1, "Number of independent instances to run")
	rootCmd.Flags().BoolVarP(&args.Verbose, "verbose", "v", false, "Enable debug-level logging")
	rootCmd.MarkFlagRequired("config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(args cmdArgs) error {
	level := logging.LevelInfo
	if args.Verbose {
		level = logging.LevelDebug
	}
	log := logging.NewLogger(&logging.Config{
		Level: level,
		JSON:  !term.IsTerminal(int(os.Stdout.Fd())),
	})
	logging.SetDefault(log)
	defer log.Sync()

	doc, err := config.Load(args.ConfigPath)
	if err != nil {
		return statecore.Wrap("Load", err)
	}
	log.Info("config loaded", "transitions", len(doc.Transitions), "instances", args.Instances)

	registry := prometheus.NewRegistry()
	instances := make([]*statecore.Instance, args.Instances)
	for i := range instances {
		inst := statecore.NewInstance(doc.Queue.CapacityRecords(), doc.Table.Elements, clock.Monotonic{}, log)
		if err := registry.Register(inst.Collector()); err != nil {
			return statecore.Wrap("Register", err)
		}
		instances[i] = inst
	}

	var eg errgroup.Group
	for _, inst := range instances {
		inst := inst
		eg.Go(func() error {
			return runInstance(inst, doc)
		})
	}
	if err := eg.Wait(); err != nil {
		return statecore.Wrap("Run", err)
	}

	for _, inst := range instances {
		snap, err := diag.TableSnapshot(inst.Table).Encode()
		if err != nil {
			return statecore.Wrap("Encode", err)
		}
		inst.Log.Info("final table state", "snapshot", snap)
	}
	return nil
}

// runInstance builds inst's table from doc's transitions, then drives one
// dummy message through the queue per transition, dispatching it against
// the table. This is a demonstration harness; the actual caller that would
// react to a resolved transition function is outside this repository's
// scope.
func runInstance(inst *statecore.Instance, doc *config.Document) error {
	localRegistry := identity.NewRegistry()
	if err := config.BuildTable(inst.Table, localRegistry, doc.Transitions); err != nil {
		return statecore.Wrap("BuildTable", err)
	}
	if err := inst.Table.SetNextStates(); err != nil {
		return statecore.Wrap("SetNextStates", err)
	}

	for _, tr := range doc.Transitions {
		state := localRegistry.Intern(identity.KindState, tr.State)
		iface := localRegistry.Intern(identity.KindInterface, tr.Interface)
		msg := localRegistry.Intern(identity.KindMessage, tr.Message)

		if _, err := inst.Queue.Prepare(msg, 0); err != nil {
			return statecore.Wrap("Prepare", err)
		}
		if err := inst.Queue.Send(mqueue.Interface{Name: tr.Interface, Remote: iface}); err != nil {
			return statecore.Wrap("Send", err)
		}

		fn, next, err := inst.Dispatch(state, iface, msg)
		if err != nil {
			inst.Log.Warn("dispatch unresolved", "state", tr.State, "interface", tr.Interface, "message", tr.Message)
			continue
		}
		inst.Log.Debug("dispatched",
			"state", tr.State, "interface", tr.Interface, "message", tr.Message,
			"function", fn.Name(), "next_state", next.Name())
	}

	for !inst.Queue.IsEmpty() {
		inst.Queue.AdvanceRead()
	}
	return nil
}
