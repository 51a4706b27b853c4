package tsgen

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/mysqlts/internal/logger"
	"github.com/koustreak/mysqlts/internal/schema"
)

// Generator renders TypeScript interfaces for tables read from a catalog.
// Its options are fixed at construction; a Generator is safe for
// concurrent use as long as its Reader is.
type Generator struct {
	reader  schema.Reader
	opts    Options
	prefix  string
	workers int
	log     *logger.Logger
}

// NewGenerator creates a generator reading from r with the given policy.
func NewGenerator(r schema.Reader, opts Options) *Generator {
	return &Generator{
		reader:  r,
		opts:    opts,
		workers: runtime.GOMAXPROCS(0),
		log:     logger.Nop(),
	}
}

// WithPrefix sets the string prepended verbatim to every interface name.
func (g *Generator) WithPrefix(prefix string) *Generator {
	g.prefix = prefix
	return g
}

// WithWorkers bounds how many tables are fetched at once.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// WithLogger sets the logger used for progress messages.
func (g *Generator) WithLogger(l *logger.Logger) *Generator {
	if l != nil {
		g.log = l
	}
	return g
}

// Options returns the mapping policy of g.
func (g *Generator) Options() Options {
	return g.opts
}

// InspectTable fetches and maps one table.
func (g *Generator) InspectTable(ctx context.Context, name string) (*schema.Table, error) {
	enumCols, err := g.reader.EnumColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	cols, err := g.reader.Columns(ctx, name)
	if err != nil {
		return nil, err
	}

	t := Normalize(name, cols, ResolveEnums(enumCols), g.opts)
	g.log.Debugf("mapped table %s: %d columns, %d enums", name, len(cols), len(enumCols))
	return t, nil
}

// Tables fetches and maps every table of the database. Fetches run
// concurrently; the result keeps the order ListTables returned. The first
// failure cancels the remaining fetches and is returned.
func (g *Generator) Tables(ctx context.Context) ([]*schema.Table, error) {
	names, err := g.reader.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]*schema.Table, len(names))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			t, err := g.InspectTable(ctx, name)
			if err != nil {
				return fmt.Errorf("table %s: %w", name, err)
			}
			tables[i] = t
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Table returns the interfaces of a single table.
func (g *Generator) Table(ctx context.Context, name string) (string, error) {
	t, err := g.InspectTable(ctx, name)
	if err != nil {
		return "", err
	}
	return RenderTable(g.prefix, t, g.opts).String() + "\n", nil
}

// Schema returns the interfaces of every table, separated by blank lines.
func (g *Generator) Schema(ctx context.Context) (string, error) {
	tables, err := g.Tables(ctx)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		g.log.Warn("database has no tables")
		return "", nil
	}

	blocks := make([]string, len(tables))
	for i, t := range tables {
		blocks[i] = RenderTable(g.prefix, t, g.opts).String()
	}
	g.log.Infof("generated interfaces for %d tables", len(tables))
	return strings.Join(blocks, "\n\n") + "\n", nil
}
