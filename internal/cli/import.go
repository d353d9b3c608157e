package cli

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rpattn/dataview/internal/app"
	"github.com/rpattn/dataview/internal/db"
	"github.com/rpattn/dataview/internal/entityloader"
	"github.com/rpattn/dataview/internal/ingestion"
	"github.com/rpattn/dataview/internal/repository"
)

func NewImport(c *CommandContext) *cobra.Command {
	i := &Import{c: c}
	cmd := &cobra.Command{
		Use:   "import [flags] FILE",
		Short: "Import records from a CSV or Excel file",
		Example: `
dataview import groups.xlsx -t Group --dry-run
dataview import people.csv -t Person --header-row 3`,
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE:         i.Run,
	}
	cmd.Flags().StringVarP(&i.EntityType, "entity-type", "t", "", "entity type of the imported records")
	cmd.Flags().IntVar(&i.HeaderRow, "header-row", 0, "1-based row holding the column headers, 0 picks the first non empty row")
	cmd.Flags().BoolVar(&i.DryRun, "dry-run", false, "validate rows without a database")
	_ = cmd.MarkFlagRequired("entity-type")
	return cmd
}

type Import struct {
	EntityType string
	HeaderRow  int
	DryRun     bool
	c          *CommandContext
}

func (i *Import) Run(cmd *cobra.Command, args []string) error {
	if i.HeaderRow < 0 {
		return errors.Errorf("header row must not be negative, got %d", i.HeaderRow)
	}
	cfg, err := i.c.loadConfig()
	if err != nil {
		return err
	}

	var entities repository.EntityRepository
	resolvers := app.Resolvers{}
	if !i.DryRun {
		conn, err := db.NewConnection(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()
		entities = repository.NewEntityRepository(conn.Pool)
		resolvers.BinaryFiles = entityloader.NewBinaryFileLoader(repository.NewBinaryFileRepository(conn.Pool), cfg.Cache.Size, cfg.Cache.TTL)
		resolvers.DefinedValues = entityloader.NewDefinedValueLoader(repository.NewDefinedValueRepository(conn.Pool), cfg.Cache.Size, cfg.Cache.TTL)
	}

	build := i.c.Build
	if build == nil {
		build = app.Build
	}
	rt, err := build(cfg, resolvers)
	if err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "open import file")
	}
	defer file.Close()

	req := ingestion.Request{
		EntityType: i.EntityType,
		FileName:   filepath.Base(args[0]),
		DryRun:     i.DryRun,
		Data:       file,
	}
	if i.HeaderRow > 0 {
		index := i.HeaderRow - 1
		req.HeaderRowIndex = &index
	}

	summary, err := ingestion.NewService(entities, rt.Attributes, rt.FieldTypes, logrus.StandardLogger()).Ingest(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := i.c.table()
	printf(out, "ROWS\t%d\n", summary.TotalRows)
	printf(out, "VALID\t%d\n", summary.ValidRows)
	printf(out, "INVALID\t%d\n", summary.InvalidRows)
	printf(out, "IGNORED COLUMNS\t%s\n", joinOrDash(summary.IgnoredColumns))
	for _, rowErr := range summary.Errors {
		printf(out, "ROW %d\t%s\n", rowErr.Row, rowErr.Message)
	}
	return out.Flush()
}
