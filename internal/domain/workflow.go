package domain

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	m "github.com/mouse-blink/scenario/internal/model"
)

// SourceFS abstracts the filesystem operations the workflow relies on when
// scanning user projects, so the logic can be tested without touching disk.
type SourceFS interface {
	// Discover walks the provided roots (supporting the /... recursive
	// suffix) and returns every scenario file found, deduplicated.
	Discover(roots []m.Path) ([]m.Source, error)

	ReadFile(path m.Path) ([]byte, error)

	WriteFile(path m.Path, content []byte) error
}

// SuiteVM executes one transformed suite, registering its scopes and cases
// against the runner the VM was built with.
type SuiteVM interface {
	RunSuite(name string, code []byte) error
}

// VMFactory builds a fresh VM bound to the given runner. One VM serves
// exactly one scenario file; no state is shared across files.
type VMFactory func(runner Runner) SuiteVM

// EstimateRow is one file's recognized call-site count, for the list view.
type EstimateRow struct {
	Origin    m.Path
	CallSites int
}

// RunOptions configures suite execution.
type RunOptions struct {
	// OnFileStart, OnCase and OnFile feed progress to the UI as the run
	// advances. Any of them may be nil.
	OnFileStart func(origin m.Path)
	OnCase      func(origin m.Path, report m.CaseReport)
	OnFile      func(result m.FileResult)
}

// Workflow defines the scenario tool's operations.
type Workflow interface {
	Discover(roots ...m.Path) ([]m.Source, error)
	Estimate(sources []m.Source) ([]EstimateRow, error)
	TransformFile(source m.Source) (m.TransformResult, error)
	// TransformAll transforms independent files concurrently; results are
	// returned in source order.
	TransformAll(sources []m.Source, threads int) ([]m.TransformResult, error)
	Run(sources []m.Source, opts RunOptions) ([]m.FileResult, error)
}

type workflow struct {
	fs          SourceFS
	vmFactory   VMFactory
	transformer *Transformer
	log         *zap.Logger
}

// NewWorkflow creates a Workflow with the provided adapters. A nil logger
// disables logging.
func NewWorkflow(fs SourceFS, vmFactory VMFactory, log *zap.Logger) Workflow {
	if log == nil {
		log = zap.NewNop()
	}

	return &workflow{
		fs:          fs,
		vmFactory:   vmFactory,
		transformer: NewTransformer(),
		log:         log,
	}
}

func (w *workflow) Discover(roots ...m.Path) ([]m.Source, error) {
	return w.fs.Discover(roots)
}

func (w *workflow) Estimate(sources []m.Source) ([]EstimateRow, error) {
	rows := make([]EstimateRow, 0, len(sources))

	for _, source := range sources {
		src, err := w.fs.ReadFile(source.Origin)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source.Origin, err)
		}

		sites, err := w.transformer.Sites(source.Origin, src, source.Lang)
		if err != nil {
			return nil, err
		}

		rows = append(rows, EstimateRow{Origin: source.Origin, CallSites: len(sites)})
	}

	return rows, nil
}

func (w *workflow) TransformFile(source m.Source) (m.TransformResult, error) {
	src, err := w.fs.ReadFile(source.Origin)
	if err != nil {
		return m.TransformResult{}, fmt.Errorf("read %s: %w", source.Origin, err)
	}

	result, err := w.transformer.TransformFile(source.Origin, src, source.Lang)
	if err != nil {
		return m.TransformResult{}, err
	}

	w.log.Debug("transformed",
		zap.String("origin", string(source.Origin)),
		zap.Bool("changed", result.Changed))

	return result, nil
}

func (w *workflow) TransformAll(sources []m.Source, threads int) ([]m.TransformResult, error) {
	if threads <= 0 {
		threads = 1
	}

	results := make([]m.TransformResult, len(sources))

	var group errgroup.Group
	group.SetLimit(threads)

	for i, source := range sources {
		group.Go(func() error {
			result, err := w.TransformFile(source)
			if err != nil {
				return err
			}

			results[i] = result

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Run transforms and executes each suite in a fresh VM. Transform
// diagnostics and VM errors fail only their own file.
func (w *workflow) Run(sources []m.Source, opts RunOptions) ([]m.FileResult, error) {
	results := make([]m.FileResult, 0, len(sources))

	for _, source := range sources {
		if opts.OnFileStart != nil {
			opts.OnFileStart(source.Origin)
		}

		result := w.runFile(source, opts)

		if opts.OnFile != nil {
			opts.OnFile(result)
		}

		results = append(results, result)
	}

	return results, nil
}

func (w *workflow) runFile(source m.Source, opts RunOptions) m.FileResult {
	result := m.FileResult{Origin: source.Origin}

	transformed, err := w.TransformFile(source)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	plan := NewPlan()
	vm := w.vmFactory(plan)

	if err := vm.RunSuite(string(source.Origin), transformed.Code); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Cases = plan.Execute(func(report m.CaseReport) {
		if opts.OnCase != nil {
			opts.OnCase(source.Origin, report)
		}
	})

	w.log.Debug("suite finished",
		zap.String("origin", string(source.Origin)),
		zap.Int("cases", len(result.Cases)))

	return result
}
