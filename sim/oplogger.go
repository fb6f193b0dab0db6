package sim

import (
	"log"
)

// A LogHook is a hook that is responsible for recording information from
// the simulation.
type LogHook interface {
	Hook
}

// LogHookBase provides the common logic for all LogHooks.
type LogHookBase struct {
	*log.Logger
}

// OpLogger is a hook that prints every triggered operation invocation.
type OpLogger struct {
	LogHookBase
}

// NewOpLogger returns an OpLogger that writes into the logger.
func NewOpLogger(logger *log.Logger) *OpLogger {
	h := new(OpLogger)
	h.Logger = logger
	return h
}

// Func writes the invocation information into the logger.
func (h *OpLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeOp {
		return
	}

	inv, ok := ctx.Item.(Invocation)
	if !ok {
		return
	}

	h.Logger.Printf("%d, %s %s", inv.Timestep, inv.Category, inv.Op.Name())
}
