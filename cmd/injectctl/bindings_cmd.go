package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func makeBindingsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bindings",
		Short: "list the bindings of the manifest",
		Args:  cobra.NoArgs,
		RunE:  c.bindings,
	}
}

func (c *cli) bindings(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RESOURCE\tSCOPE\tKIND\tORIGIN")
	for _, b := range c.container.Bindings() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.Resource, b.Scope, b.Source.Kind, b.Source.Origin)
	}
	return w.Flush()
}
