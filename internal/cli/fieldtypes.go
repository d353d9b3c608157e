package cli

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewFieldTypes(c *CommandContext) *cobra.Command {
	ft := &FieldTypes{c: c}
	return &cobra.Command{
		Use:          "fieldtypes",
		Aliases:      []string{"fieldtype", "ft"},
		Short:        "List registered field types",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         ft.Run,
	}
}

type FieldTypes struct {
	c *CommandContext
}

func (f *FieldTypes) Run(_ *cobra.Command, _ []string) error {
	rt, err := f.c.runtime()
	if err != nil {
		return err
	}

	out := f.c.table()
	printf(out, "KEY\tNAME\tCONFIGURATION\tLIST\tFILTERABLE\n")
	for _, d := range rt.FieldTypes.Descriptors() {
		printf(out, "%s\t%s\t%s\t%s\t%s\n",
			d.Key, d.Name, joinOrDash(d.KeyNames()),
			strconv.FormatBool(d.Capabilities.ListSelection),
			strconv.FormatBool(d.Capabilities.FilterOperators))
	}
	return out.Flush()
}

func NewFormat(c *CommandContext) *cobra.Command {
	f := &Format{c: c}
	cmd := &cobra.Command{
		Use:   "format [flags] FIELDTYPE VALUE",
		Short: "Format a persisted value the way it is displayed",
		Example: `
dataview format time 14:30:00
dataview format dayofweek 1,6
dataview format keyvaluelist "Home:555-1234|Work:555-9876" --condensed`,
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE:         f.Run,
	}
	cmd.Flags().StringArrayVar(&f.Settings, "set", nil, "configuration value as key=value, repeatable")
	cmd.Flags().BoolVar(&f.Condensed, "condensed", false, "use the condensed grid rendering")
	return cmd
}

type Format struct {
	Settings  []string
	Condensed bool
	c         *CommandContext
}

func (f *Format) Run(cmd *cobra.Command, args []string) error {
	stored, err := parseSettings(f.Settings)
	if err != nil {
		return err
	}
	rt, err := f.c.runtime()
	if err != nil {
		return err
	}
	ft, ok := rt.FieldTypes.Lookup(args[0])
	if !ok {
		return errors.Errorf("unknown field type %s", args[0])
	}

	cfg := ft.Descriptor().Configure(stored)
	printf(f.c.StdOut, "%s\n", ft.FormatValue(cmd.Context(), args[1], cfg, f.Condensed))
	return nil
}
