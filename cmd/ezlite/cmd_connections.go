package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhath/ezlite/internal/config"
	"github.com/nhath/ezlite/internal/db"
	"github.com/nhath/ezlite/internal/registry"
)

func connectionRegistry() (*registry.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return registry.New(cfg.Path()), nil
}

// newAddCmd stores a connection without opening it
func newAddCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add <database.db | sqlite://path>",
		Short: "Store a database connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := config.ParseDSN(name, args[0])
			if err != nil {
				return err
			}
			path, err := filepath.Abs(conn.Path)
			if err != nil {
				return err
			}

			reg, err := connectionRegistry()
			if err != nil {
				return err
			}
			d, err := reg.Add(db.Descriptor{
				Name:     conn.Name,
				Driver:   db.SQLite,
				Path:     path,
				User:     conn.User,
				Password: conn.Password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", d.Name, d.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "connection name (default: file name)")
	return cmd
}

// newListCmd prints the stored connections
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored database connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := connectionRegistry()
			if err != nil {
				return err
			}
			descs, err := reg.List()
			if err != nil {
				return err
			}
			if len(descs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no connections")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPATH")
			for _, d := range descs {
				fmt.Fprintf(w, "%s\t%s\n", d.Name, d.Path)
			}
			return w.Flush()
		},
	}
}
