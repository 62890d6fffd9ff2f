package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vet-consult-intake/internal/domain/species"
)

func speciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "species",
		Short: "Lista las especies con formulario y la cantidad de campos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := species.NewRegistry()
			if err != nil {
				return err
			}

			names := make(map[string]string)
			for _, d := range species.Fallback() {
				names[d.ID] = d.Name
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOMBRE\tCAMPOS\tREQUERIDOS")
			for _, id := range reg.IDs() {
				f, err := reg.Form(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", id, names[id], len(f.Fields()), len(f.RequiredFields()))
			}
			return tw.Flush()
		},
	}
}
