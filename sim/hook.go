package sim

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// HookPosRunStart is a hook position that triggers when a Run call starts
// advancing timesteps. The Item is a RunSpan.
var HookPosRunStart = &HookPos{Name: "RunStart"}

// HookPosRunEnd is a hook position that triggers when a Run call finishes,
// whether it completed or aborted. The Item is a RunSpan.
var HookPosRunEnd = &HookPos{Name: "RunEnd"}

// HookPosBeforeOp is a hook position that triggers before a triggered
// operation acts. The Item is an Invocation.
var HookPosBeforeOp = &HookPos{Name: "BeforeOp"}

// HookPosAfterOp is a hook position that triggers after a triggered
// operation acted. The Item is an Invocation.
var HookPosAfterOp = &HookPos{Name: "AfterOp"}

// HookPosStepEnd is a hook position that triggers after each fully
// completed step. The Item is the new timestep as a uint64.
var HookPosStepEnd = &HookPos{Name: "StepEnd"}

// A RunSpan describes the timestep range of one Run call.
type RunSpan struct {
	Start uint64
	End   uint64
}

// An Invocation describes one triggered operation call.
type Invocation struct {
	Category Category
	Op       Operation
	Timestep uint64
}

// HookCtx is the context that holds all the information about the site
// where a hook is invoked.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
}

// Hookable defines an object that accepts Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)
}

// Hook is a short piece of program that can be invoked by a hookable
// object.
type Hook interface {
	// Func determines what to do if the hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility functions for types that implement
// the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook triggers the registered Hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
