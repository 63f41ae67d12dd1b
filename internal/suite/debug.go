package suite

import (
	"go.uber.org/zap"

	"vrt/internal/domain"
	"vrt/internal/run"
)

// maxDebugPasses bounds the debug loop. A test that flaps between passing
// and failing would otherwise keep the loop alive forever.
const maxDebugPasses = 16

// Debug surfaces the first failing test case. It reruns that case
// interactively; if the case still fails the session stays open for
// inspection and the verdict is failed. If it passes now, the rest of the
// suite is rerun and the search starts over, until the suite passes or the
// pass bound is hit.
func (o *Orchestrator) Debug() (domain.SuiteResult, error) {
	verdict := domain.SuiteIncomplete
	for pass := 0; pass < maxDebugPasses; pass++ {
		if id := o.firstFailing(); id != domain.NoTest {
			if _, err := o.compiler.Recompile(false); err != nil {
				return verdict, err
			}
			res, err := o.runner.Run(id, run.Options{})
			if err != nil {
				return verdict, err
			}
			if res != domain.ResultPassed {
				return domain.SuiteFailed, nil
			}
			o.log.Info("test case passes now, rechecking the rest of the suite",
				zap.String("test", o.cat.Get(id).Name()))
		}

		var err error
		verdict, err = o.Run()
		if err != nil {
			return verdict, err
		}
		if verdict == domain.SuitePassed {
			return verdict, nil
		}
	}
	o.log.Warn("debug did not converge", zap.Int("passes", maxDebugPasses))
	return verdict, nil
}

// firstFailing returns the first case in catalog order with a fresh
// non-pass result, or NoTest.
func (o *Orchestrator) firstFailing() domain.TestID {
	for id, tc := range o.cat.All() {
		if tc.ResultValid && tc.Result != domain.ResultUnknown && tc.Result != domain.ResultPassed {
			return id
		}
	}
	return domain.NoTest
}
