package cli

import (
	"github.com/spf13/cobra"

	"github.com/rpattn/dataview/internal/db"
)

func NewMigrate(c *CommandContext) *cobra.Command {
	m := &Migrate{c: c}
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply pending database migrations",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         m.Run,
	}
}

type Migrate struct {
	c *CommandContext
}

func (m *Migrate) Run(cmd *cobra.Command, _ []string) error {
	cfg, err := m.c.loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.NewConnection(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()
	return db.RunMigrations(conn.Pool)
}
