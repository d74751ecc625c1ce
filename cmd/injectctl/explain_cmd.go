package main

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/junioryono/inject"
)

type explainOpts struct {
	name  string
	dump  bool
	graph string
}

func makeExplainCmd(c *cli) *cobra.Command {
	opts := &explainOpts{}
	cmd := &cobra.Command{
		Use:   "explain TYPE",
		Short: "resolve an instance and show the candidates considered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.explain(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "instance name; \"*\" matches any")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "dump the resolved value in full")
	cmd.Flags().StringVar(&opts.graph, "graph", "", "print the productions of the resolution: text or dot")
	return cmd
}

func (c *cli) explain(ctx context.Context, ref string, opts *explainOpts) error {
	if ctx == nil {
		ctx = context.Background()
	}

	inst, err := c.manifest.Instance(opts.name, ref)
	if err != nil {
		return err
	}
	dep := inject.DependencyOn(inst)

	candidates, rejected := c.container.Candidates(dep)
	fmt.Fprintf(c.out, "%s\n", inst)
	fmt.Fprintf(c.out, "candidates:\n")
	if len(candidates) == 0 {
		fmt.Fprintf(c.out, "  (none)\n")
	}
	for i, b := range candidates {
		fmt.Fprintf(c.out, "  %d. %s\n", i+1, b)
	}
	if len(rejected) > 0 {
		fmt.Fprintf(c.out, "rejected:\n")
		for _, r := range rejected {
			fmt.Fprintf(c.out, "  - %s (%s mismatch)\n", r.Binding, r.Reason)
		}
	}

	switch opts.graph {
	case "", "text", "dot":
	default:
		return fmt.Errorf("unknown graph format %q", opts.graph)
	}

	v, err := c.container.Resolve(ctx, dep)
	if opts.graph != "" {
		if gerr := c.writeGraph(opts.graph); gerr != nil {
			return gerr
		}
	}
	if err != nil {
		fmt.Fprintf(c.out, "error:\n%v\n", err)
		return err
	}

	if opts.dump {
		fmt.Fprintf(c.out, "value:\n%s", spew.Sdump(v))
	} else {
		fmt.Fprintf(c.out, "value: %v\n", v)
	}
	return nil
}

func (c *cli) writeGraph(format string) error {
	fmt.Fprintf(c.out, "productions:\n")
	if format == "dot" {
		return c.tracer.graph.WriteDOT(c.out)
	}
	return c.tracer.graph.WriteText(c.out)
}
