package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *command) initValidateCmd() {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the storage settings and collection schemas of a config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			for _, name := range cfg.Names() {
				schema := cfg.Collections[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fields, indexed: [%s]\n", name, len(schema), strings.Join(schema.IndexedFields(), ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config ok")
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.config.BindPFlags(cmd.Flags())
		},
	}

	c.setStorageFlags(cmd)
	c.root.AddCommand(cmd)
}
