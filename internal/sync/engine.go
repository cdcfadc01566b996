// Package sync crawls the Oracle data dictionary into schema caches.
// A run walks items, packages with their methods, globals and
// arguments, then standalone methods, records the remote clock as the
// next incremental watermark and hands the result to the store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jwinkels/ais/internal/oracle"
	"github.com/jwinkels/ais/internal/schema"
	"github.com/jwinkels/ais/internal/store"
)

var (
	// ErrSyncInProgress is returned when a second sync is requested
	// while one is still running. The engine owns a single database
	// session, so exactly one crawl may be in flight.
	ErrSyncInProgress = errors.New("a sync is already running")

	// ErrVersionUnsupported is returned when the remote APEX release is
	// older than the dictionary views this engine depends on.
	ErrVersionUnsupported = errors.New("unsupported apex version")
)

// MinApexMajor is the oldest APEX major release the engine syncs from.
const MinApexMajor = 5

// Progress is one progress report: how far the crawl has come and what
// it is working on.
type Progress struct {
	Fraction float64
	Message  string
}

// ProgressFunc receives progress reports during a run. It is called
// from the syncing goroutine and must not block for long.
type ProgressFunc func(Progress)

// Problem records one non-fatal query failure. The crawl keeps going
// with sibling objects and reports everything it skipped.
type Problem struct {
	Object string
	Err    error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %v", p.Object, p.Err)
}

// Options controls one sync run.
type Options struct {
	// PublicPackages are synonym names treated as PUBLIC packages.
	PublicPackages []string

	// Full discards the stored watermark and re-crawls every owned
	// package.
	Full bool

	// RefreshLibrary additionally crawls the shared APEX namespace
	// into the library cache. One-shot: callers clear their flag once
	// Result.LibraryRefreshed reports success.
	RefreshLibrary bool

	// PersistPartial stores whatever was crawled even when the run is
	// canceled midway. Off by default; a canceled run normally leaves
	// the previous documents untouched.
	PersistPartial bool

	// OnProgress, when set, receives progress reports.
	OnProgress ProgressFunc
}

// Result is the outcome of a run.
type Result struct {
	Cache            *schema.Cache
	Library          *schema.Cache
	Problems         []Problem
	Canceled         bool
	LibraryRefreshed bool
}

// Engine orchestrates one crawl at a time against a single metadata
// session.
type Engine struct {
	source  oracle.Source
	store   *store.Store
	log     *zap.Logger
	running atomic.Bool
}

// NewEngine wires a metadata source and a store. The engine takes no
// ownership of the source's connection lifecycle.
func NewEngine(source oracle.Source, st *store.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{source: source, store: st, log: log}
}

// Run executes the crawl. The previous cache document is loaded first
// so unchanged owned packages, filtered out by the watermark, keep
// their mirrored data. Cancellation is cooperative and observed
// between package iterations; the partial cache stays valid but is
// only persisted when Options.PersistPartial is set.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer e.running.Store(false)

	version, err := e.source.RemoteVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote version check: %w", err)
	}
	if version.Major < MinApexMajor {
		return nil, fmt.Errorf("%w: %d.%d (need at least %d)",
			ErrVersionUnsupported, version.Major, version.Minor, MinApexMajor)
	}

	run := &runState{
		engine:  e,
		opts:    opts,
		cache:   e.store.Load(),
		version: version,
	}
	run.cache.SetApexVersion(version.Major, version.Minor)

	watermark := run.cache.LastUpdate
	if opts.Full {
		watermark = ""
	}

	run.report(0, "Page items...")
	run.loadItems(ctx)

	run.report(0.1, "User packages...")
	run.loadPackages(ctx, watermark)

	if !run.canceled {
		run.report(0.7, "Stored procedures...")
		run.loadStandaloneMethods(ctx)
	}

	if !run.canceled {
		if clock, err := e.source.RemoteClock(ctx); err != nil {
			run.problem("remote clock", err)
		} else {
			run.cache.SetLastUpdate(clock)
		}
	}

	result := &Result{
		Cache:    run.cache,
		Problems: run.problems,
		Canceled: run.canceled,
	}

	if !run.canceled || opts.PersistPartial {
		if err := e.store.Save(run.cache); err != nil {
			return result, fmt.Errorf("persist cache: %w", err)
		}
	}
	if run.canceled {
		return result, ctx.Err()
	}

	if opts.RefreshLibrary {
		run.report(0.8, "APEX library packages...")
		library := run.loadLibrary(ctx)
		result.Library = library
		result.Canceled = run.canceled
		if !run.canceled {
			if err := e.store.SaveLibrary(library); err != nil {
				return result, fmt.Errorf("persist library cache: %w", err)
			}
			result.LibraryRefreshed = true
		} else if opts.PersistPartial {
			if err := e.store.SaveLibrary(library); err != nil {
				return result, fmt.Errorf("persist library cache: %w", err)
			}
		}
		result.Problems = run.problems
		if run.canceled {
			return result, ctx.Err()
		}
	}

	run.report(1, "Done")
	return result, nil
}

// runState carries the mutable bits of one crawl.
type runState struct {
	engine   *Engine
	opts     Options
	cache    *schema.Cache
	version  oracle.Version
	problems []Problem
	canceled bool
}

func (r *runState) loadItems(ctx context.Context) {
	items, err := r.engine.source.Items(ctx)
	if err != nil {
		r.problem("page items", err)
		return
	}
	for _, item := range items {
		r.cache.AddItem(item)
	}
}

func (r *runState) loadPackages(ctx context.Context, watermark string) {
	rows, err := r.engine.source.Packages(ctx, watermark, r.opts.PublicPackages)
	if err != nil {
		r.problem("packages", err)
		return
	}
	for i, row := range rows {
		if ctx.Err() != nil {
			r.canceled = true
			return
		}
		r.report(0.1+0.6*float64(i)/float64(len(rows)), row.Name)

		r.cache.AddPackage(row.Name, row.Owner, row.Visibility)
		r.loadPackageMethods(ctx, r.cache, row.Name, row.Owner, row.Visibility)
		r.loadPackageVariables(ctx, row.Name, row.Owner)
	}
}

func (r *runState) loadPackageMethods(ctx context.Context, cache *schema.Cache, packageName, owner string, visibility schema.Visibility) {
	var (
		methods []oracle.MethodRow
		err     error
	)
	if oracle.IsLibraryPackage(packageName) {
		methods, err = r.engine.source.LibraryMethods(ctx, packageName)
	} else {
		methods, err = r.engine.source.PackageMethods(ctx, packageName, owner)
	}
	if err != nil {
		r.problem("methods of "+packageName, err)
		return
	}
	for _, m := range methods {
		cache.AddMethodToPackage(m.Name, m.ID, packageName, owner, visibility)
		r.loadArguments(ctx, cache, packageName, m.Name, m.ID, owner, visibility)
	}
}

func (r *runState) loadPackageVariables(ctx context.Context, packageName, owner string) {
	variables, err := r.engine.source.PackageVariables(ctx, packageName, owner)
	if err != nil {
		r.problem("globals of "+packageName, err)
		return
	}
	for _, v := range variables {
		r.cache.AddGlobalVariableToPackage(v.Name, v.Value, packageName, owner)
	}
}

func (r *runState) loadStandaloneMethods(ctx context.Context) {
	methods, err := r.engine.source.StandaloneMethods(ctx)
	if err != nil {
		r.problem("standalone methods", err)
		return
	}
	for _, m := range methods {
		r.cache.AddMethod(m.Name, m.ID, m.Owner)
		r.loadArguments(ctx, r.cache, "", m.Name, m.ID, m.Owner, "")
	}
}

func (r *runState) loadArguments(ctx context.Context, cache *schema.Cache, packageName, methodName string, id int, owner string, visibility schema.Visibility) {
	arguments, err := r.engine.source.MethodArguments(ctx, packageName, methodName, id, owner)
	if err != nil {
		object := methodName
		if packageName != "" {
			object = packageName + "." + methodName
		}
		r.problem("arguments of "+object, err)
		return
	}
	for _, a := range arguments {
		cache.AddArgumentToMethod(a.Name, a.Type, methodName, id, packageName, owner, visibility)
	}
}

// loadLibrary crawls the shared APEX namespace into a fresh cache. All
// entries are PUBLIC; the library is vendor code, so the watermark does
// not apply and the whole namespace is fetched every time.
func (r *runState) loadLibrary(ctx context.Context) *schema.Cache {
	library := schema.New()
	library.SetApexVersion(r.version.Major, r.version.Minor)

	packages, err := r.engine.source.LibraryPackages(ctx)
	if err != nil {
		r.problem("library packages", err)
		return library
	}
	for i, name := range packages {
		if ctx.Err() != nil {
			r.canceled = true
			return library
		}
		r.report(0.8+0.2*float64(i)/float64(len(packages)), name)

		library.AddPackage(name, "", schema.VisibilityPublic)
		r.loadPackageMethods(ctx, library, name, "", schema.VisibilityPublic)
	}
	return library
}

func (r *runState) problem(object string, err error) {
	r.engine.log.Warn("metadata query failed",
		zap.String("object", object), zap.Error(err))
	r.problems = append(r.problems, Problem{Object: object, Err: err})
}

func (r *runState) report(fraction float64, message string) {
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(Progress{Fraction: fraction, Message: message})
	}
}
