package mir

import "github.com/solventlang/tsc/internal/types"

// EliminateDeadFunctions implements the C7 optimizer: it computes the
// reachable set over FuncTempIndex seeded by every exported function
// (defined or imported) and every function transitively reachable
// through Deps, drops everything outside that set, and assigns the final
// contiguous FuncIndex values — surviving imports first, then surviving
// defined functions, each group in original registration order.
func EliminateDeadFunctions(mod *Module) *Module {
	byTemp := make(map[types.FuncTempIndex]*Function, len(mod.Functions))
	for _, fn := range mod.Functions {
		byTemp[fn.TempIndex] = fn
	}

	reachable := make(map[types.FuncTempIndex]struct{})

	var seed []types.FuncTempIndex
	for _, fn := range mod.Functions {
		if fn.Exported {
			seed = append(seed, fn.TempIndex)
		}
	}

	for len(seed) > 0 {
		idx := seed[len(seed)-1]
		seed = seed[:len(seed)-1]

		if _, seen := reachable[idx]; seen {
			continue
		}

		reachable[idx] = struct{}{}

		fn, ok := byTemp[idx]
		if !ok {
			continue
		}

		for dep := range fn.Deps {
			if _, seen := reachable[dep]; !seen {
				seed = append(seed, dep)
			}
		}
	}

	var imports, defined []*Function
	for _, fn := range mod.Functions {
		if _, ok := reachable[fn.TempIndex]; !ok {
			continue
		}

		if fn.Import != nil {
			imports = append(imports, fn)
		} else {
			defined = append(defined, fn)
		}
	}

	surviving := append(imports, defined...)

	// The final FuncIndex of every surviving function is simply its
	// position in `surviving` — imports first, then defined functions,
	// both in original registration order — so no separate index field
	// is stamped here; the target assembler (C8) derives FuncIndex
	// directly from this slice's order.
	out := &Module{Strings: mod.Strings, Functions: surviving}
	for _, fn := range out.Functions {
		remapped := make(map[types.FuncTempIndex]struct{}, len(fn.Deps))
		for dep := range fn.Deps {
			if _, ok := reachable[dep]; ok {
				remapped[dep] = struct{}{}
			}
		}

		fn.Deps = remapped
	}

	return out
}
