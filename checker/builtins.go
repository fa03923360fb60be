package checker

import "github.com/lumenlang/lumen/types"

// builtinScope returns the predefined-bindings scope of §6.3: integer and
// float arithmetic, comparisons, string concatenation, and list primitives.
// print carries the IO effect.
func builtinScope() map[string]*types.Scheme {
	intBin := types.Mono(types.Fun(types.Prim(types.Int), types.Fun(types.Prim(types.Int), types.Prim(types.Int))))
	intCmp := types.Mono(types.Fun(types.Prim(types.Int), types.Fun(types.Prim(types.Int), types.Prim(types.Bool))))
	floatBin := types.Mono(types.Fun(types.Prim(types.Float), types.Fun(types.Prim(types.Float), types.Prim(types.Float))))
	strCat := types.Mono(types.Fun(types.Prim(types.String), types.Fun(types.Prim(types.String), types.Prim(types.String))))

	// Polymorphic equality over primitives: ∀a. a -> a -> Bool.
	eqVar := types.NewVar(0)
	eqScheme := &types.Scheme{Vars: []int{0}, Type: types.Fun(eqVar, types.Fun(eqVar, types.Prim(types.Bool)))}
	neqScheme := &types.Scheme{Vars: []int{0}, Type: types.Fun(eqVar, types.Fun(eqVar, types.Prim(types.Bool)))}

	listVar := types.NewVar(0)
	list := types.List(listVar)
	consScheme := &types.Scheme{Vars: []int{0}, Type: types.Fun(listVar, types.Fun(list, list))}
	headScheme := &types.Scheme{Vars: []int{0}, Type: types.Fun(list, listVar)}
	tailScheme := &types.Scheme{Vars: []int{0}, Type: types.Fun(list, list)}
	lengthScheme := &types.Scheme{Vars: []int{0}, Type: types.Fun(list, types.Prim(types.Int))}
	emptyScheme := &types.Scheme{Vars: []int{0}, Type: types.Fun(list, types.Prim(types.Bool))}

	printVar := types.NewVar(0)
	printScheme := &types.Scheme{
		Vars: []int{0},
		Type: types.FunWithRow(printVar, printVar, types.SingleRow("IO")),
	}

	return map[string]*types.Scheme{
		"+": intBin, "-": intBin, "*": intBin, "/": intBin, "%": intBin,
		"+.": floatBin, "-.": floatBin, "*.": floatBin, "/.": floatBin,
		"<": intCmp, ">": intCmp, "<=": intCmp, ">=": intCmp,
		"=": eqScheme, "!=": neqScheme,
		"++": strCat,
		"cons": consScheme, "head": headScheme, "tail": tailScheme,
		"length": lengthScheme, "empty?": emptyScheme,
		"print": printScheme,
	}
}

// builtinEffects names the effect each builtin performs, for the effect
// checker of §4.4.5; builtins absent from this map are Empty.
func builtinEffects() map[string]string {
	return map[string]string{"print": "IO"}
}
