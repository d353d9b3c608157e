package cli

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rpattn/dataview/internal/datafilter"
	"github.com/rpattn/dataview/internal/predicate"
	"github.com/rpattn/dataview/internal/repository"
)

func NewFilters(c *CommandContext) *cobra.Command {
	f := &Filters{c: c}
	cmd := &cobra.Command{
		Use:          "filters",
		Aliases:      []string{"filter"},
		Short:        "List registered filters",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         f.Run,
	}
	cmd.Flags().StringVarP(&f.EntityType, "entity-type", "t", "", "only filters usable on this entity type")
	return cmd
}

type Filters struct {
	EntityType string
	c          *CommandContext
}

func (f *Filters) Run(_ *cobra.Command, _ []string) error {
	rt, err := f.c.runtime()
	if err != nil {
		return err
	}

	components := rt.Filters.Components()
	if f.EntityType != "" {
		components = rt.Filters.ForEntityType(f.EntityType)
	}

	out := f.c.table()
	printf(out, "KEY\tENTITY TYPE\tSECTION\tTITLE\n")
	for _, c := range components {
		entityType := c.AppliesToEntityType()
		titleFor := f.EntityType
		if titleFor == "" {
			titleFor = entityType
		}
		if entityType == "" {
			entityType = "*"
		}
		printf(out, "%s\t%s\t%s\t%s\n", c.Key(), entityType, c.Section(), c.Title(titleFor))
	}
	return out.Flush()
}

// selectionCommand is shared by describe and compile.
type selectionCommand struct {
	EntityType string
	c          *CommandContext
}

func (s *selectionCommand) lookup(name string) (datafilter.Component, error) {
	rt, err := s.c.runtime()
	if err != nil {
		return nil, err
	}
	c, ok := rt.Filters.Lookup(name)
	if !ok {
		return nil, errors.Errorf("unknown filter %s", name)
	}
	if applies := c.AppliesToEntityType(); applies != "" && s.EntityType != "" && !strings.EqualFold(applies, s.EntityType) {
		return nil, errors.Errorf("filter %s applies to %s, not %s", name, applies, s.EntityType)
	}
	return c, nil
}

func (s *selectionCommand) entityType(c datafilter.Component) string {
	if s.EntityType != "" {
		return s.EntityType
	}
	return c.AppliesToEntityType()
}

func NewDescribe(c *CommandContext) *cobra.Command {
	d := &Describe{selectionCommand{c: c}}
	cmd := &cobra.Command{
		Use:   "describe [flags] FILTER SELECTION",
		Short: "Describe a filter selection in words",
		Example: `
dataview describe person.lastname "StartsWith|Sm"`,
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE:         d.Run,
	}
	cmd.Flags().StringVarP(&d.EntityType, "entity-type", "t", "", "entity type the selection is made for")
	return cmd
}

type Describe struct {
	selectionCommand
}

func (d *Describe) Run(_ *cobra.Command, args []string) error {
	c, err := d.lookup(args[0])
	if err != nil {
		return err
	}
	printf(d.c.StdOut, "%s\n", c.FormatSelection(d.entityType(c), args[1]))
	return nil
}

func NewCompile(c *CommandContext) *cobra.Command {
	cp := &Compile{selectionCommand: selectionCommand{c: c}}
	cmd := &cobra.Command{
		Use:   "compile [flags] FILTER SELECTION",
		Short: "Compile a filter selection to SQL and an expression",
		Example: `
dataview compile attribute.ServiceTime "Between|8:00 AM,12:00 PM" -t Group`,
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE:         cp.Run,
	}
	cmd.Flags().StringVarP(&cp.EntityType, "entity-type", "t", "", "entity type the selection is made for")
	cmd.Flags().IntVar(&cp.Offset, "offset", 0, "number of placeholders already used by the enclosing query")
	return cmd
}

type Compile struct {
	selectionCommand
	Offset int
}

func (cp *Compile) Run(_ *cobra.Command, args []string) error {
	if cp.Offset < 0 {
		return errors.Errorf("offset must not be negative, got %d", cp.Offset)
	}
	c, err := cp.lookup(args[0])
	if err != nil {
		return err
	}

	entityType := cp.entityType(c)
	expr := c.GetExpression(entityType, datafilter.EntityService{}, repository.EntityParameter(), args[1])
	sql, params := predicate.NewSQLEncoder(nil).EncodeFrom(expr, cp.Offset)

	out := cp.c.table()
	printf(out, "DESCRIPTION\t%s\n", c.FormatSelection(entityType, args[1]))
	printf(out, "SQL\t%s\n", sql)
	for i, p := range params {
		printf(out, "$%d\t%s\n", cp.Offset+i+1, fmt.Sprint(p))
	}
	printf(out, "EXPR\t%s\n", predicate.ExprSource(expr))
	return out.Flush()
}
