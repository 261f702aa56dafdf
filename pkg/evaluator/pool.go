package evaluator

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// vmState is one pooled runtime together with its per-runtime caches.
// A state is owned exclusively by one goroutine between acquire and release;
// none of its fields need locking.
type vmState struct {
	vm *goja.Runtime

	// entrypoints caches the function value each compiled program evaluates
	// to on this runtime. Programs are compiled once per process but must be
	// materialized per runtime.
	entrypoints map[*goja.Program]goja.Callable
}

// vmPool reuses runtimes across invocations. Building a runtime and
// installing the helper namespace is far more expensive than a transform
// run, so pooling dominates evaluation throughput.
var vmPool = sync.Pool{
	New: func() interface{} {
		return newVMState()
	},
}

func newVMState() *vmState {
	vm := goja.New()
	installNamespace(vm)
	return &vmState{
		vm:          vm,
		entrypoints: make(map[*goja.Program]goja.Callable),
	}
}

func acquireVM() *vmState {
	return vmPool.Get().(*vmState)
}

func releaseVM(st *vmState) {
	// Cap the entrypoint cache so long-lived processes compiling many
	// distinct transforms do not pin them all through pooled runtimes.
	if len(st.entrypoints) > 64 {
		st.entrypoints = make(map[*goja.Program]goja.Callable)
	}
	vmPool.Put(st)
}

// entrypoint materializes the program's function value on this runtime,
// caching it for subsequent runs.
func (st *vmState) entrypoint(program *goja.Program) (goja.Callable, error) {
	if entry, ok := st.entrypoints[program]; ok {
		return entry, nil
	}
	v, err := st.vm.RunProgram(program)
	if err != nil {
		return nil, err
	}
	entry, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("generated code did not evaluate to a function")
	}
	st.entrypoints[program] = entry
	return entry, nil
}
