// Package rowgen implements the row engine of §4.G and the level-parallel
// dispatch of §5: for each table, in dependency order, allocate primary
// keys, assign foreign keys, fill remaining columns, and enforce NOT NULL,
// CHECK, and UNIQUE before the table is considered committed and made
// available as a parent pool to later levels.
package rowgen

import (
	"log"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/nozzle/throttler"
	"golang.org/x/sync/errgroup"

	"github.com/dbfiller/dbfiller/internal/expr"
	"github.com/dbfiller/dbfiller/internal/keys"
	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/synth"
	"github.com/dbfiller/dbfiller/internal/value"
)

// Row is one generated record, keyed by column name.
type Row map[string]value.Value

// Dataset holds every generated row, grouped by table name, in allocation
// order.
type Dataset struct {
	Tables map[string][]Row
}

// Options configures one generation run.
type Options struct {
	NumRows            int
	NumRowsPerTable    map[string]int
	RunRepair          bool
	CheckMaxIterations int
	RowWorkers         int // per-row fan-out limit within one table
	LevelConcurrency   int // tables-in-level concurrency
}

func (o Options) rowCount(table string) int {
	if n, ok := o.NumRowsPerTable[table]; ok {
		return n
	}
	return o.NumRows
}

func (o Options) checkMaxIterations() int {
	if o.CheckMaxIterations > 0 {
		return o.CheckMaxIterations
	}
	return 500
}

func (o Options) rowWorkers() int {
	if o.RowWorkers > 0 {
		return o.RowWorkers
	}
	return 8
}

func (o Options) levelConcurrency() int {
	if o.LevelConcurrency > 0 {
		return o.LevelConcurrency
	}
	return 4
}

// Engine owns the mutable state of one generation run: the committed
// dataset so far, the shared key manager, and the master RNG from which
// every table's worker stream is spawned.
type Engine struct {
	schema *schema.Schema
	synth  *synth.Synthesizer
	mgr    *keys.Manager
	master *rng.Source
	cache  *expr.Cache
	opts   Options

	mu   sync.Mutex
	data map[string][]Row
}

// New builds an Engine for one generation run. cache may be nil, in which
// case expr.DefaultCache is used.
func New(sch *schema.Schema, s *synth.Synthesizer, mgr *keys.Manager, master *rng.Source, cache *expr.Cache, opts Options) *Engine {
	if cache == nil {
		cache = expr.DefaultCache
	}
	return &Engine{
		schema: sch,
		synth:  s,
		mgr:    mgr,
		master: master,
		cache:  cache,
		opts:   opts,
		data:   make(map[string][]Row),
	}
}

// spawn derives one worker RNG from the master stream. It takes e.mu itself,
// since Source.Spawn is not concurrency-safe, so concurrent table workers
// may call it; a caller already holding e.mu must not.
func (e *Engine) spawn() *rng.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master.Spawn()
}

// Run executes §4.E's level order end to end: every table in a level is
// dispatched concurrently (bounded by Options.LevelConcurrency); levels
// themselves form a join barrier, since a later level's foreign keys may
// reference any table finished so far. When Options.RunRepair is set, the
// §4.H cascading repair pass runs once the full dataset is built.
func (e *Engine) Run() (*Dataset, error) {
	levels, err := e.schema.ResolveOrder()
	if err != nil {
		return nil, err
	}
	for _, level := range levels {
		if err := e.runLevel(level); err != nil {
			return nil, err
		}
	}
	ds := &Dataset{Tables: e.data}
	if e.opts.RunRepair {
		Repair(e.schema, ds, e.cache, e.mgr)
	}
	return ds, nil
}

// runLevel dispatches every table of one level with bounded concurrency
// (nozzle/throttler, as in the teacher corpus's own bulk-operation helpers)
// while still joining on every table before returning, since a later level's
// FK assignment requires the entire prior level committed (§5).
func (e *Engine) runLevel(level schema.Level) error {
	th := throttler.New(e.opts.levelConcurrency(), len(level))
	var wg sync.WaitGroup
	for _, name := range level {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			th.Done(e.generateTable(name))
		}()
		th.Throttle()
	}
	wg.Wait()
	if errs := th.Errs(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// generateTable runs the per-row pipeline of §4.G for one table: PK
// allocation (sequential), then foreign-key assignment, column fill, and
// NOT NULL/CHECK enforcement (fanned out across Options.RowWorkers goroutines
// since those stages only touch row-local state and per-row RNGs), then a
// single-threaded UNIQUE enforcement pass that is the only stage allowed to
// touch the shared unique_index.
func (e *Engine) generateTable(name string) error {
	t := e.schema.Tables[name]
	n := e.opts.rowCount(name)
	tableRNG := e.spawn()

	parentPool := func(refTable, refColumn string) []value.Value {
		e.mu.Lock()
		rows := e.data[refTable]
		e.mu.Unlock()
		vals := make([]value.Value, 0, len(rows))
		for _, r := range rows {
			vals = append(vals, r[refColumn])
		}
		return vals
	}
	pkRows, warn := keys.AllocatePK(t, n, e.mgr, e.synth, tableRNG, keys.ParentPool(parentPool))
	if warn != nil {
		log.Printf("warning: %v", warn)
	}
	rows := make([]Row, len(pkRows))
	for i, r := range pkRows {
		rows[i] = Row(r)
	}

	// A self-referencing FK (employee.manager_id -> employee.id) can't wait
	// for e.data[name], which is only populated once every row of this very
	// table is done. selfPool snapshots just the primary-key columns, fixed
	// at this point and never touched again, so it's safe to read from every
	// row's goroutine below without racing the live rows being filled in.
	selfPool := selfReferenceParents(t, rows)
	parentRows := func(refTable string) []Row {
		if refTable == name {
			return selfPool
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.data[refTable]
	}

	autoBlocks := e.allocateAutoIncrementBlocks(t, len(rows))

	rowRNGs := make([]*rng.Source, len(rows))
	for i := range rows {
		rowRNGs[i] = tableRNG.Spawn()
	}

	g := new(errgroup.Group)
	g.SetLimit(e.opts.rowWorkers())
	for i := range rows {
		i := i
		g.Go(func() error {
			e.assignForeignKeys(t, rows[i], parentRows, rowRNGs[i])
			e.fillRemainingColumns(t, rows[i], autoBlocks, i, rowRNGs[i])
			e.enforceNotNull(t, rows[i], rowRNGs[i])
			e.enforceCheck(t, rows[i], rowRNGs[i])
			return nil
		})
	}
	_ = g.Wait()

	e.enforceUniqueSequential(t, rows, tableRNG)

	e.mu.Lock()
	e.data[name] = rows
	e.mu.Unlock()
	log.Printf("generated %s rows for table %s", humanize.Comma(int64(len(rows))), name)
	return nil
}

// allocateAutoIncrementBlocks pre-allocates contiguous counter ranges for
// every non-PK auto-increment column before the parallel fill stage starts,
// so that stage never touches the shared pk_counter map itself.
func (e *Engine) allocateAutoIncrementBlocks(t *schema.Table, n int) map[string][]int64 {
	blocks := map[string][]int64{}
	for _, col := range t.Columns {
		if !col.IsAutoIncrement || contains(t.PrimaryKey, col.Name) {
			continue
		}
		start := e.mgr.NextBlock(t.Name, col.Name, n)
		vals := make([]int64, n)
		for i := range vals {
			vals[i] = start + int64(i)
		}
		blocks[col.Name] = vals
	}
	return blocks
}

// selfReferenceParents snapshots each row's already-allocated primary-key
// columns into independent maps: a read-only candidate pool a self-
// referencing FK can match against before the table's own rows are
// committed. Primary keys are fixed before the per-row fan-out starts and
// never mutated afterward, so the snapshot is safe to read concurrently
// with the live rows still being filled in.
func selfReferenceParents(t *schema.Table, rows []Row) []Row {
	pool := make([]Row, len(rows))
	for i, row := range rows {
		snap := make(Row, len(t.PrimaryKey))
		for _, col := range t.PrimaryKey {
			if v, ok := row[col]; ok {
				snap[col] = v
			}
		}
		pool[i] = snap
	}
	return pool
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// constraintsMentioning returns the raw CHECK sources of t that reference
// column, used to scope the hint lookup of both synth.Generate and
// synth.GenerateConditioned.
func (e *Engine) constraintsMentioning(t *schema.Table, column string) []string {
	var out []string
	for _, src := range t.CheckConstraints {
		node, err := e.cache.Get(src)
		if err != nil {
			continue
		}
		if mentionsColumn(node, column) {
			out = append(out, src)
		}
	}
	return out
}

func mentionsColumn(n expr.Node, column string) bool {
	switch v := n.(type) {
	case *expr.Ident:
		return v.Name == column
	case *expr.BinOp:
		return mentionsColumn(v.L, column) || mentionsColumn(v.R, column)
	case *expr.UnaryNot:
		return mentionsColumn(v.E, column)
	case *expr.Between:
		return mentionsColumn(v.V, column) || mentionsColumn(v.Lo, column) || mentionsColumn(v.Hi, column)
	case *expr.InList:
		if mentionsColumn(v.V, column) {
			return true
		}
		for _, it := range v.Items {
			if mentionsColumn(it, column) {
				return true
			}
		}
		return false
	case *expr.Like:
		return mentionsColumn(v.V, column)
	case *expr.IsNull:
		return mentionsColumn(v.V, column)
	case *expr.Func:
		for _, a := range v.Args {
			if mentionsColumn(a, column) {
				return true
			}
		}
		return false
	case *expr.Extract:
		return mentionsColumn(v.Source, column)
	case *expr.DateFn:
		return mentionsColumn(v.Arg, column)
	default:
		return false
	}
}
