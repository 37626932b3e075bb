// Package cli implements the hsmctl command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/enetx/g"
	"github.com/enetx/hsm"
	"github.com/enetx/hsm/internal/logger"
	"github.com/enetx/hsm/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type options struct {
	file      string
	logLevel  string
	logFormat string
}

// NewRootCommand returns the hsmctl command tree.
func NewRootCommand() *cobra.Command {
	opts := new(options)

	root := &cobra.Command{
		Use:           "hsmctl",
		Short:         "Validate, draw and replay hierarchical state machine definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "machine.yaml", "definition file (.yaml, .yml or .json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "json", "log format (json, text)")

	root.AddCommand(newValidateCommand(opts), newDotCommand(opts), newRunCommand(opts))

	return root
}

// Execute runs hsmctl with the process arguments.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load a definition and enter its initial state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := opts.load(cmd, &tracer{out: io.Discard})
			if err != nil {
				return err
			}

			inst, err := m.NewInstance(nil)
			if err != nil {
				return fmt.Errorf("%s: %w", opts.file, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d states, initial %s\n", m.Name(), len(m.States()), inst.Current())

			return nil
		},
	}
}

func newDotCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dot",
		Short: "Print the definition in Graphviz DOT format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := opts.load(cmd, &tracer{out: io.Discard})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), m.ToDOT())

			return nil
		},
	}
}

func newRunCommand(opts *options) *cobra.Command {
	var (
		sets   map[string]string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "run [event[=input]...]",
		Short: "Replay events against a new instance",
		Long: "Replay events against a new instance and print every move.\n" +
			"@back reverts to the previous state and records the current one,\n" +
			"@revert reverts without recording.",
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]bool, len(sets))
			for name, raw := range sets {
				v, err := strconv.ParseBool(raw)
				if err != nil {
					return fmt.Errorf("--set %s: %w", name, err)
				}

				values[name] = v
			}

			out := cmd.OutOrStdout()
			collector := metrics.NewCollector("hsm")
			reg := prometheus.NewRegistry()

			if err := collector.Register(reg); err != nil {
				return err
			}

			m, err := opts.load(cmd, &tracer{out: out, values: values}, hsm.WithObserver(collector))
			if err != nil {
				return err
			}

			inst, err := m.NewInstance(nil)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "start: %s\n", inst.Current())

			for _, arg := range args {
				from := inst.Current()

				if err := step(inst, arg); err != nil {
					fmt.Fprintf(out, "%s: %s rejected: %v\n", arg, from, err)
					if strict {
						return err
					}

					continue
				}

				fmt.Fprintf(out, "%s: %s -> %s\n", arg, from, inst.Current())
			}

			return summarize(out, reg)
		},
	}

	cmd.Flags().StringToStringVar(&sets, "set", nil, "guard values, e.g. --set is_manager=true")
	cmd.Flags().BoolVar(&strict, "strict", false, "stop at the first rejected event")

	return cmd
}

func step(inst *hsm.Instance, arg string) error {
	switch arg {
	case "@back":
		return inst.Revert()
	case "@revert":
		return inst.RevertConsuming()
	}

	if event, input, ok := strings.Cut(arg, "="); ok {
		return inst.Trigger(hsm.Event(event), input)
	}

	return inst.Trigger(hsm.Event(arg))
}

func (o *options) load(cmd *cobra.Command, r hsm.Resolver, extra ...hsm.MachineOption) (*hsm.Machine, error) {
	data, err := os.ReadFile(o.file)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}

	var def *hsm.Definition

	switch strings.ToLower(filepath.Ext(o.file)) {
	case ".json":
		def, err = hsm.ParseJSON(data)
	default:
		def, err = hsm.ParseYAML(data)
	}

	if err != nil {
		return nil, err
	}

	log := logger.New(o.logLevel, o.logFormat, cmd.ErrOrStderr())
	log.Debug("definition loaded", "file", o.file, "machine", def.Name)

	m, err := def.Build(r, append([]hsm.MachineOption{hsm.WithLogger(log)}, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.file, err)
	}

	return m, nil
}

// tracer resolves every guard to a --set value and every hook to a line of output.
type tracer struct {
	out    io.Writer
	values map[string]bool
}

func (t *tracer) Guard(name g.String) (hsm.GuardFunc, bool) {
	return func(*hsm.Context) bool { return t.values[string(name)] }, true
}

func (t *tracer) Hook(name g.String) (hsm.Callback, bool) {
	return func(ctx *hsm.Context) error {
		fmt.Fprintf(t.out, "  %s @ %s\n", name, ctx.State)
		return nil
	}, true
}

func summarize(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			counter := metric.GetCounter()
			if counter == nil {
				continue
			}

			labels := make([]string, 0, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}

			fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), counter.GetValue())
		}
	}

	return nil
}
