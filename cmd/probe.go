package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nicklasfrahm/shex/pkg/ops"
)

var probeForce bool

var probeCmd = &cobra.Command{
	Use:   "probe [hosts...]",
	Short: "Check which hosts are reachable",
	Long: `Check which hosts are reachable by running whoami on
them. Without arguments the host given with --host is
probed. Exits with status 1 if any host is unreachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts := args
		if len(hosts) == 0 && host != "" {
			hosts = []string{host}
		}

		statuses, err := ops.Probe(cmd.Context(), hosts, probeForce, opsOptions(cmd)...)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "HOST\tREACHABLE\tLOGIN")

		unreachable := false
		for _, status := range statuses {
			fmt.Fprintf(w, "%s\t%t\t%s\n", status.Host, status.Reachable, status.Login)
			unreachable = unreachable || !status.Reachable
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if unreachable {
			return NewExitCodeError(1)
		}

		return nil
	},
}

func init() {
	probeCmd.Flags().BoolVarP(&probeForce, "force", "f", false, "contact hosts even if they were probed before")

	rootCmd.AddCommand(probeCmd)
}
