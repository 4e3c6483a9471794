package domain

import (
	"fmt"
	"time"

	m "github.com/mouse-blink/scenario/internal/model"
)

// Runner is the host test runner contract the executor registers against.
// Group opens a grouping scope and synchronously runs register to collect its
// children; Case schedules one executable test.
type Runner interface {
	Group(desc string, mode m.ExecMode, register func())
	Case(desc string, mode m.ExecMode, run func() error)
}

// Plan is the in-repo host runner: registration builds a suite tree, and
// Execute later runs it sequentially in registration order. One case fully
// settles before the next is attempted, and a failing case never cancels its
// siblings.
type Plan struct {
	root    *planGroup
	current *planGroup
	hasOnly bool
}

type planGroup struct {
	desc     string
	mode     m.ExecMode
	children []planNode
}

type planCase struct {
	desc string
	mode m.ExecMode
	run  func() error
}

type planNode struct {
	group *planGroup
	test  *planCase
}

// NewPlan creates an empty Plan.
func NewPlan() *Plan {
	root := &planGroup{}

	return &Plan{root: root, current: root}
}

// Group implements Runner.
func (p *Plan) Group(desc string, mode m.ExecMode, register func()) {
	group := &planGroup{desc: desc, mode: mode}
	p.current.children = append(p.current.children, planNode{group: group})

	if mode == m.ModeOnly {
		p.hasOnly = true
	}

	parent := p.current
	p.current = group
	register()
	p.current = parent
}

// Case implements Runner.
func (p *Plan) Case(desc string, mode m.ExecMode, run func() error) {
	if mode == m.ModeOnly {
		p.hasOnly = true
	}

	p.current.children = append(p.current.children, planNode{
		test: &planCase{desc: desc, mode: mode, run: run},
	})
}

// CaseHook observes each completed case as it settles.
type CaseHook func(report m.CaseReport)

// Execute runs all registered cases and returns their reports. When any
// only-marked scope or case exists, every case without an only mark on its
// path is reported skipped; a skip mark anywhere on the path wins over only.
func (p *Plan) Execute(onCase CaseHook) []m.CaseReport {
	var reports []m.CaseReport

	var walk func(group *planGroup, names []string, skipped, only bool)
	walk = func(group *planGroup, names []string, skipped, only bool) {
		for _, node := range group.children {
			if node.group != nil {
				child := node.group
				walk(child,
					append(names[:len(names):len(names)], child.desc),
					skipped || child.mode == m.ModeSkip,
					only || child.mode == m.ModeOnly)

				continue
			}

			test := node.test
			report := p.executeCase(test, append(names[:len(names):len(names)], test.desc),
				skipped, only)

			reports = append(reports, report)

			if onCase != nil {
				onCase(report)
			}
		}
	}

	walk(p.root, nil, false, false)

	return reports
}

func (p *Plan) executeCase(test *planCase, names []string, skipped, only bool) m.CaseReport {
	report := m.CaseReport{Names: names}

	switch {
	case skipped || test.mode == m.ModeSkip:
		report.Status = m.StatusSkipped
		return report
	case p.hasOnly && !only && test.mode != m.ModeOnly:
		report.Status = m.StatusSkipped
		return report
	}

	start := time.Now()
	err := runProtected(test.run)
	report.Duration = time.Since(start)

	if err != nil {
		report.Status = m.StatusFailed
		report.Error = err.Error()
	} else {
		report.Status = m.StatusPassed
	}

	return report
}

// runProtected converts a panicking case body into a failure so later cases
// still attempt to run.
func runProtected(run func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return run()
}
