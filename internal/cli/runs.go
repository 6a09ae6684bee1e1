package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GabrielNunesIT/loadplan/internal/store"
)

var errHistoryDisabled = errors.New("run history is disabled")

func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the history of generation runs",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(func(st store.Store) error {
				runs, err := st.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCREATED\tFORMAT\tSOURCE\tOPERATIONS\tBYTES\tTITLE")
				for _, r := range runs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
						r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Format, r.Source, r.Operations, r.Bytes, r.Title)
				}
				return w.Flush()
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show, 0 for all")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one run as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(func(st store.Store) error {
				run, err := st.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(run)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a run from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(func(st store.Store) error {
				if err := st.DeleteRun(cmd.Context(), args[0]); err != nil {
					return err
				}
				c.log.Infof("Deleted run %s", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}

func (c *CLI) withStore(fn func(store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := c.openStore(cfg)
	if err != nil {
		return err
	}
	if st == nil {
		return errHistoryDisabled
	}
	defer func() {
		if err := st.Close(); err != nil {
			c.log.Errorf("Failed to close run history: %v", err)
		}
	}()
	return fn(st)
}
