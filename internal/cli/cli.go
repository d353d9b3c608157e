// Package cli is the dataview command line. It builds the field type and
// filter registries from configuration and only connects to the database for
// migrate and import.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/liggitt/tabwriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rpattn/dataview/internal/app"
	"github.com/rpattn/dataview/internal/config"
)

// CommandContext carries what every command shares.
type CommandContext struct {
	ConfigPath string
	StdOut     io.Writer
	StdErr     io.Writer

	// Build overrides app.Build, used by tests.
	Build func(cfg config.Config, r app.Resolvers) (*app.Runtime, error)
}

func (c *CommandContext) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	config.ConfigureLogging(cfg.Log)
	return cfg, nil
}

// runtime loads configuration and builds the registries without any
// resolvers.
func (c *CommandContext) runtime() (*app.Runtime, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	build := c.Build
	if build == nil {
		build = app.Build
	}
	return build(cfg, app.Resolvers{})
}

func (c *CommandContext) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.StdOut, 10, 1, 3, ' ', 0)
}

// New returns the root command.
func New() *cobra.Command {
	return NewWithContext(&CommandContext{StdOut: os.Stdout, StdErr: os.Stderr})
}

func NewWithContext(c *CommandContext) *cobra.Command {
	root := &cobra.Command{
		Use:           "dataview",
		Short:         "Inspect field types and compile data filters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.StdOut)
	root.SetErr(c.StdErr)
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", ".", "directory containing config.yaml")

	root.AddCommand(
		NewFieldTypes(c),
		NewFormat(c),
		NewFilters(c),
		NewDescribe(c),
		NewCompile(c),
		NewImport(c),
		NewMigrate(c),
	)
	return root
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}

// parseSettings turns key=value pairs into stored configuration values.
func parseSettings(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, errors.Errorf("invalid setting %q, expected key=value", pair)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
