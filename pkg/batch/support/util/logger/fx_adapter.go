package logger

import (
	"strings"

	"go.uber.org/fx/fxevent"
)

// FxLoggerAdapter routes Fx lifecycle events to the leveled logger.
type FxLoggerAdapter struct{}

// NewFxLoggerAdapter creates a new instance of FxLoggerAdapter.
func NewFxLoggerAdapter() fxevent.Logger {
	return &FxLoggerAdapter{}
}

// LogEvent implements fxevent.Logger. Wiring detail goes to DEBUG, failures to ERROR.
func (l *FxLoggerAdapter) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		hookResult("start", e.FunctionName, e.Err)
	case *fxevent.OnStopExecuted:
		hookResult("stop", e.FunctionName, e.Err)
	case *fxevent.Supplied:
		result("supply "+e.TypeName, e.Err)
	case *fxevent.Provided:
		result("provide "+strings.Join(e.OutputTypeNames, ", "), e.Err)
	case *fxevent.Decorated:
		result("decorate "+strings.Join(e.OutputTypeNames, ", "), e.Err)
	case *fxevent.Invoked:
		result("invoke "+shortFunctionName(e.FunctionName), e.Err)
	case *fxevent.RollingBack:
		Errorf("Startup failed, rolling back: %v", e.StartErr)
	case *fxevent.RolledBack:
		result("rollback", e.Err)
	case *fxevent.Started:
		if e.Err != nil {
			Errorf("Startup failed: %v", e.Err)
			return
		}
		Infof("IRP workflow core started.")
	case *fxevent.Stopped:
		result("stop", e.Err)
	}
}

func hookResult(phase, function string, err error) {
	result("On"+strings.ToUpper(phase[:1])+phase[1:]+" hook "+shortFunctionName(function), err)
}

func result(what string, err error) {
	if err != nil {
		Errorf("fx: %s failed: %v", what, err)
		return
	}
	Debugf("fx: %s", what)
}

// shortFunctionName turns "github.com/x/y/pkg.NewThing.func1" into "pkg.NewThing".
func shortFunctionName(name string) string {
	if idx := strings.LastIndex(name, ".func"); idx != -1 {
		name = name[:idx]
	}
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	return name
}
