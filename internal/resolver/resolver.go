// Package resolver implements the two ordered passes over the AST that
// produce typed descriptors and resolve names: declaration collection,
// then per-function body checking with lexical scoping and type
// inference. Neither pass mutates the AST; inferred expression types are
// recorded in a side table keyed by the expression node, preserving the
// "AST is never mutated after construction" invariant.
package resolver

import (
	"strings"

	"github.com/solventlang/tsc/internal/ast"
	"github.com/solventlang/tsc/internal/diagnostic"
	"github.com/solventlang/tsc/internal/position"
	"github.com/solventlang/tsc/internal/types"
)

// Result is everything later phases (the mid-IR generator) need: typed
// descriptors for every function and class, the interned string table,
// and the inferred type of every expression in the program.
type Result struct {
	Functions  []*types.FunctionDescriptor
	FuncByName map[string]*types.FunctionDescriptor
	Classes    []*types.ClassDescriptor
	ClassByName map[string]*types.ClassDescriptor
	Strings    *types.StringTable

	// ExprTypes records the committed/maybe type of every expression
	// node reached during body checking.
	ExprTypes map[ast.Expression]types.InferredType
	// Locals and Params record the resolved descriptor for every variable
	// declaration and parameter, keyed by the declaring node.
	Locals map[*ast.VariableDecl]*types.VariableDescriptor
	Params map[*ast.Param]*types.VariableDescriptor
	// Nodes links each FunctionDescriptor back to its declaring AST node,
	// so a later phase can walk the body without re-discovering it.
	Nodes map[*types.FunctionDescriptor]*ast.FunctionDecl
}

// Resolve runs both passes over prog and returns the typed result, or
// diagnostics if any phase failed.
func Resolve(prog *ast.Program) (*Result, *diagnostic.Bag) {
	r := &resolver{
		nextClass: types.StringClassID + 1,
		res: &Result{
			FuncByName:  make(map[string]*types.FunctionDescriptor),
			ClassByName: make(map[string]*types.ClassDescriptor),
			Strings:     &types.StringTable{},
			ExprTypes:   make(map[ast.Expression]types.InferredType),
			Locals:      make(map[*ast.VariableDecl]*types.VariableDescriptor),
			Params:      make(map[*ast.Param]*types.VariableDescriptor),
			Nodes:       make(map[*types.FunctionDescriptor]*ast.FunctionDecl),
		},
		funcNodes: make(map[*ast.FunctionDecl]*types.FunctionDescriptor),
	}

	r.collectDeclarations(prog)

	if r.diags.HasErrors() {
		return nil, &r.diags
	}

	r.checkBodies(prog)

	if r.diags.HasErrors() {
		return nil, &r.diags
	}

	return r.res, nil
}

type scope struct {
	parent *scope
	names  map[string]*types.VariableDescriptor
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]*types.VariableDescriptor)}
}

func (s *scope) declare(name string, v *types.VariableDescriptor) bool {
	if _, dup := s.names[name]; dup {
		return false
	}

	s.names[name] = v

	return true
}

func (s *scope) lookup(name string) (*types.VariableDescriptor, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.names[name]; ok {
			return v, true
		}
	}

	return nil, false
}

type resolver struct {
	res       *Result
	diags     diagnostic.Bag
	nextClass types.ClassID
	nextFunc  types.FuncTempIndex

	globals   *scope // top-level symbol table, pass 1's fallback for root expressions
	funcNodes map[*ast.FunctionDecl]*types.FunctionDescriptor
}

// ---- Pass 1: declaration collection ----

func (r *resolver) collectDeclarations(prog *ast.Program) {
	r.globals = newScope(nil)

	// Class names and IDs are registered before any signature or field
	// type is resolved, so a type reference may name a class declared
	// later in the same file without the placeholder colliding with an
	// unrelated class's ID (both would otherwise race for ClassID 0).
	for _, stmt := range prog.Statements {
		if cls, ok := stmt.(*ast.ClassDecl); ok {
			r.registerClassName(cls)
		}
	}

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDecl:
			r.collectFunction(s, nil)
		case *ast.ClassDecl:
			r.collectClassMembers(s)
		case *ast.VariableDecl:
			r.collectGlobalVariable(s)
		}
	}
}

func (r *resolver) collectFunction(decl *ast.FunctionDecl, owner *types.ClassDescriptor) {
	if _, dup := r.res.FuncByName[decl.Name]; dup {
		r.diags.Add(diagnostic.Name(decl.Span().Start, "function %q is already declared", decl.Name))
		return
	}

	fd := &types.FunctionDescriptor{
		Name:       decl.Name,
		TempIndex:  r.nextFunc,
		Deps:       make(map[types.FuncTempIndex]struct{}),
		OwnerClass: owner,
	}
	r.nextFunc++

	if hasExportDecorator(decl.Decorators) {
		fd.Modifiers |= types.ModExport
	}

	for _, p := range decl.Params {
		typ, ok := r.resolveTypeRef(p.Type)
		if !ok {
			r.diags.Add(diagnostic.Type(p.Type.Span().Start, "unknown type %q", p.Type.Name))
		}

		fd.Params = append(fd.Params, types.VariableDescriptor{Name: p.Name, Type: types.Inferred(typ), LocalIdx: -1})
	}

	if decl.Result != nil {
		typ, ok := r.resolveTypeRef(decl.Result)
		if !ok {
			r.diags.Add(diagnostic.Type(decl.Result.Span().Start, "unknown type %q", decl.Result.Name))
		}

		fd.Result = typ
	} else {
		fd.Result = types.Prim(types.Void)
	}

	if decl.Body == nil {
		fd.Import = &types.ImportOrigin{Module: "env", Name: decl.Name}
	}

	fd.Signature = signatureOf(fd)

	r.res.Functions = append(r.res.Functions, fd)
	r.res.FuncByName[decl.Name] = fd
	r.res.Nodes[fd] = decl
	r.funcNodes[decl] = fd
}

func (r *resolver) registerClassName(decl *ast.ClassDecl) {
	if _, dup := r.res.ClassByName[decl.Name]; dup {
		r.diags.Add(diagnostic.Name(decl.Span().Start, "class %q is already declared", decl.Name))
		return
	}

	cd := &types.ClassDescriptor{ID: r.nextClass, Name: decl.Name}
	r.nextClass++

	for _, tp := range decl.TypeParams {
		cd.TypeParams = append(cd.TypeParams, tp.Name)
	}

	r.res.Classes = append(r.res.Classes, cd)
	r.res.ClassByName[decl.Name] = cd
}

func (r *resolver) collectClassMembers(decl *ast.ClassDecl) {
	cd := r.res.ClassByName[decl.Name]
	if cd == nil {
		return
	}

	for _, m := range decl.Members {
		if m.Method != nil {
			r.collectFunction(m.Method, cd)

			if fn, ok := r.res.FuncByName[m.Method.Name]; ok {
				cd.Members = append(cd.Members, types.ClassMember{Kind: types.MemberMethod, Name: m.Method.Name, Method: fn})
			}

			continue
		}

		typ := types.Unknown()

		if m.Field.Type != nil {
			if t, ok := r.resolveTypeRef(m.Field.Type); ok {
				typ = types.Inferred(t)
			} else {
				r.diags.Add(diagnostic.Type(m.Field.Type.Span().Start, "unknown type %q", m.Field.Type.Name))
			}
		}

		cd.Members = append(cd.Members, types.ClassMember{
			Kind:  types.MemberField,
			Name:  m.Field.Name,
			Field: types.VariableDescriptor{Name: m.Field.Name, Type: typ, LocalIdx: -1, Mutable: m.Field.Mutable},
		})
	}
}

func (r *resolver) collectGlobalVariable(decl *ast.VariableDecl) {
	if !r.globals.declare(decl.Name, nil) {
		r.diags.Add(diagnostic.Name(decl.Span().Start, "%q is already declared in this scope", decl.Name))
		return
	}

	vd := &types.VariableDescriptor{Name: decl.Name, Type: types.Unknown(), LocalIdx: -1, Mutable: decl.Mutable}

	if decl.Type != nil {
		if t, ok := r.resolveTypeRef(decl.Type); ok {
			vd.Type = types.Inferred(t)
		}
	}

	r.globals.names[decl.Name] = vd
	r.res.Locals[decl] = vd
}

// resolveTypeRef resolves a type annotation to its Descriptor. Class
// names are looked up against classes already registered by
// registerClassName, which runs for every class before any signature or
// field type in the file, so forward references within one file resolve
// correctly.
func (r *resolver) resolveTypeRef(t *ast.TypeRef) (types.Descriptor, bool) {
	if p, ok := types.LookupPrimitive(t.Name); ok {
		return types.Prim(p), true
	}

	if cd, ok := r.res.ClassByName[t.Name]; ok {
		return types.ClassType(cd.ID, cd.Name), true
	}

	return types.Descriptor{}, false
}

// hasExportDecorator reports whether decs contains an `@export` marker,
// the surface syntax for FunctionDescriptor's EXPORT modifier.
func hasExportDecorator(decs []ast.Decorator) bool {
	for _, d := range decs {
		if d.Name == "export" {
			return true
		}
	}

	return false
}

func signatureOf(fd *types.FunctionDescriptor) string {
	var b strings.Builder

	b.WriteString(fd.Name)
	b.WriteByte('(')

	for i, p := range fd.Params {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteString(p.Type.Type.Name)
	}

	b.WriteString("):")
	b.WriteString(fd.Result.Name)

	return b.String()
}

// ---- Pass 2: body checking ----

func (r *resolver) checkBodies(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		fn, ok := stmt.(*ast.FunctionDecl)
		if !ok || fn.Body == nil {
			continue
		}

		r.checkFunctionBody(fn)
	}

	for _, stmt := range prog.Statements {
		cls, ok := stmt.(*ast.ClassDecl)
		if !ok {
			continue
		}

		for _, m := range cls.Members {
			if m.Method != nil && m.Method.Body != nil {
				r.checkFunctionBody(m.Method)
			}
		}
	}
}

func (r *resolver) checkFunctionBody(fn *ast.FunctionDecl) {
	fd := r.funcNodes[fn]
	if fd == nil {
		return
	}

	cd := fd.OwnerClass
	sc := newScope(r.globals)
	localIdx := 0

	if cd != nil {
		thisVar := &types.VariableDescriptor{
			Name:     "this",
			Type:     types.Inferred(types.ClassType(cd.ID, cd.Name)),
			LocalIdx: localIdx,
		}
		localIdx++
		sc.declare("this", thisVar)
	}

	for i := range fn.Params {
		p := &fn.Params[i]
		vd := &fd.Params[i]
		vd.LocalIdx = localIdx
		localIdx++

		if !sc.declare(p.Name, vd) {
			r.diags.Add(diagnostic.Name(fn.Span().Start, "parameter %q declared more than once", p.Name))
		}

		r.res.Params[p] = vd
	}

	fb := &funcBody{r: r, fd: fd, localIdx: &localIdx, currentFunc: fn, class: cd}
	fb.checkBlock(fn.Body, sc)
}

// funcBody threads per-function state (the running local index counter
// and the declared/inferred result type) through body checking.
type funcBody struct {
	r           *resolver
	fd          *types.FunctionDescriptor
	localIdx    *int
	currentFunc *ast.FunctionDecl
	class       *types.ClassDescriptor
	sawReturn   bool
}

func (fb *funcBody) checkBlock(b *ast.Block, parent *scope) {
	sc := newScope(parent)
	for _, stmt := range b.Statements {
		fb.checkStatement(stmt, sc)
	}
}

func (fb *funcBody) checkStatement(stmt ast.Statement, sc *scope) {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		fb.checkLocalDecl(s, sc)
	case *ast.Assignment:
		fb.checkAssignment(s, sc)
	case *ast.ExpressionStatement:
		if s.Expr != nil {
			fb.inferExpr(s.Expr, sc)
		}
	case *ast.If:
		fb.inferExpr(s.Cond, sc)
		fb.checkBlock(s.Then, sc)

		switch e := s.Else.(type) {
		case *ast.Block:
			fb.checkBlock(e, sc)
		case *ast.If:
			fb.checkStatement(e, sc)
		}
	case *ast.While:
		fb.inferExpr(s.Cond, sc)
		fb.checkBlock(s.Body, sc)
	case *ast.For:
		inner := newScope(sc)

		if s.Init != nil {
			fb.checkStatement(s.Init, inner)
		}

		if s.Cond != nil {
			fb.inferExpr(s.Cond, inner)
		}

		if s.Post != nil {
			fb.checkStatement(s.Post, inner)
		}

		fb.checkBlock(s.Body, inner)
	case *ast.Return:
		fb.checkReturn(s, sc)
	case *ast.Block:
		fb.checkBlock(s, sc)
	}
}

func (fb *funcBody) checkLocalDecl(decl *ast.VariableDecl, sc *scope) {
	var declared types.InferredType

	if decl.Type != nil {
		if t, ok := fb.r.resolveTypeRef(decl.Type); ok {
			declared = types.Inferred(t)
		} else {
			fb.r.diags.Add(diagnostic.Type(decl.Type.Span().Start, "unknown type %q", decl.Type.Name))
		}
	} else {
		declared = types.Unknown()
	}

	if decl.Init != nil {
		initType := fb.inferExpr(decl.Init, sc)

		switch declared.State {
		case types.StateUnknown:
			declared = declared.Commit(initType.Type)
		case types.StateMaybe:
			if compatible(declared.Type, initType.Type) {
				declared = types.Inferred(declared.Type)
			} else {
				declared = types.Inferred(initType.Type)
			}
		case types.StateInferred:
			if !compatible(declared.Type, initType.Type) && !canWiden(initType.Type, declared.Type) {
				fb.r.diags.Add(diagnostic.Type(decl.Init.Span().Start,
					"cannot assign %s to variable %q of type %s", initType.Type, decl.Name, declared.Type))
			}
		}
	}

	if declared.State == types.StateUnknown {
		fb.r.diags.Add(diagnostic.Infer(decl.Span().Start, "could not infer type of %q", decl.Name))
	}

	vd := &types.VariableDescriptor{Name: decl.Name, Type: declared, LocalIdx: *fb.localIdx, Mutable: decl.Mutable}
	*fb.localIdx++

	if !sc.declare(decl.Name, vd) {
		fb.r.diags.Add(diagnostic.Name(decl.Span().Start, "%q is already declared in this scope", decl.Name))
	}

	fb.r.res.Locals[decl] = vd
}

func (fb *funcBody) checkAssignment(a *ast.Assignment, sc *scope) {
	valueType := fb.inferExpr(a.Value, sc)

	ident, ok := a.Target.(*ast.Identifier)
	if !ok {
		fb.inferExpr(a.Target, sc)
		return
	}

	vd, found := sc.lookup(ident.Name)
	if !found {
		fb.r.diags.Add(diagnostic.Name(ident.Span().Start, "undefined identifier %q", ident.Name))
		return
	}

	switch vd.Type.State {
	case types.StateUnknown:
		vd.Type = vd.Type.Commit(valueType.Type)
	case types.StateMaybe:
		if compatible(vd.Type.Type, valueType.Type) {
			vd.Type = types.Inferred(vd.Type.Type)
		} else {
			vd.Type = types.Inferred(valueType.Type)
		}
	case types.StateInferred:
		if !compatible(vd.Type.Type, valueType.Type) && !canWiden(valueType.Type, vd.Type.Type) {
			fb.r.diags.Add(diagnostic.Type(a.Value.Span().Start,
				"cannot assign %s to %q of type %s", valueType.Type, ident.Name, vd.Type.Type))
		}
	}

	fb.r.res.ExprTypes[ident] = vd.Type
}

func (fb *funcBody) checkReturn(ret *ast.Return, sc *scope) {
	var actual types.InferredType

	if ret.Value != nil {
		actual = fb.inferExpr(ret.Value, sc)
	} else {
		actual = types.Inferred(types.Prim(types.Void))
	}

	if !fb.sawReturn && fb.currentFunc.Result == nil {
		fb.fd.Result = actual.Type
	} else if fb.sawReturn && fb.currentFunc.Result == nil {
		if !compatible(fb.fd.Result, actual.Type) {
			fb.r.diags.Add(diagnostic.Type(ret.Span().Start,
				"return type %s does not agree with earlier return type %s", actual.Type, fb.fd.Result))
		}
	} else if fb.currentFunc.Result != nil {
		if !compatible(fb.fd.Result, actual.Type) && !canWiden(actual.Type, fb.fd.Result) {
			fb.r.diags.Add(diagnostic.Type(ret.Span().Start,
				"cannot return %s from function declared to return %s", actual.Type, fb.fd.Result))
		}
	}

	fb.sawReturn = true
}

// ---- expression inference ----

func (fb *funcBody) inferExpr(e ast.Expression, sc *scope) types.InferredType {
	var result types.InferredType

	switch ex := e.(type) {
	case *ast.Literal:
		result = fb.inferLiteral(ex)
	case *ast.Identifier:
		result = fb.inferIdentifier(ex, sc)
	case *ast.BinaryOp:
		result = fb.inferBinary(ex, sc)
	case *ast.UnaryOp:
		operand := fb.inferExpr(ex.Operand, sc)
		if ex.Op == "!" {
			result = types.Inferred(types.Prim(types.Bool))
		} else {
			result = operand
		}
	case *ast.Call:
		result = fb.inferCall(ex, sc)
	case *ast.FieldAccess:
		fb.inferExpr(ex.Target, sc)
		result = types.Unknown()
	case *ast.Index:
		fb.inferExpr(ex.Target, sc)
		fb.inferExpr(ex.Index, sc)
		result = types.Unknown()
	case *ast.Cast:
		fb.inferExpr(ex.Value, sc)
		t, _ := fb.r.resolveTypeRef(ex.Type)
		result = types.Inferred(t)
	default:
		result = types.Unknown()
	}

	fb.r.res.ExprTypes[e] = result

	return result
}

func (fb *funcBody) inferLiteral(lit *ast.Literal) types.InferredType {
	switch lit.Kind {
	case ast.LiteralInt:
		if suffix, ok := numericSuffix(lit.Raw); ok {
			if p, ok := types.LookupPrimitive(suffix); ok {
				return types.Inferred(types.Prim(p))
			}
		}

		return types.Maybe(types.Prim(types.I32))
	case ast.LiteralFloat:
		if suffix, ok := numericSuffix(lit.Raw); ok {
			if p, ok := types.LookupPrimitive(suffix); ok {
				return types.Inferred(types.Prim(p))
			}
		}

		return types.Maybe(types.Prim(types.F64))
	case ast.LiteralBool:
		return types.Inferred(types.Prim(types.Bool))
	case ast.LiteralString:
		fb.r.res.Strings.Intern(lit.Raw)
		return types.Inferred(types.StringType())
	default:
		return types.Unknown()
	}
}

// numericSuffix splits a trailing type suffix (i32, u64, f32, ...) off a
// numeric lexeme: a run of letters followed by optional digits, directly
// after a digit of the literal's body.
func numericSuffix(raw string) (string, bool) {
	i := len(raw)
	for i > 0 && isDigit(raw[i-1]) {
		i--
	}

	for i > 0 && isSuffixLetter(raw[i-1]) {
		i--
	}

	if i == len(raw) || i == 0 {
		return "", false
	}

	// Require the boundary to actually be digit -> letter, not inside a
	// hex literal's digit run (e.g. "0xFF" must not be split as "0xF" + "F").
	if !isDigit(raw[i-1]) {
		return "", false
	}

	return raw[i:], true
}

func isSuffixLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool        { return b >= '0' && b <= '9' }

func (fb *funcBody) inferIdentifier(id *ast.Identifier, sc *scope) types.InferredType {
	if vd, ok := sc.lookup(id.Name); ok {
		return vd.Type
	}

	if fn, ok := fb.r.res.FuncByName[id.Name]; ok {
		return types.Inferred(fn.Result)
	}

	fb.r.diags.Add(diagnostic.Name(id.Span().Start, "undefined identifier %q", id.Name))

	return types.Unknown()
}

func (fb *funcBody) inferBinary(b *ast.BinaryOp, sc *scope) types.InferredType {
	left := fb.inferExpr(b.Left, sc)
	right := fb.inferExpr(b.Right, sc)

	switch b.Op {
	case "==", "!=", "<", "<=", ">", ">=":
		fb.unify(left, right, b.Span().Start)
		return types.Inferred(types.Prim(types.Bool))
	case "&&", "||":
		return types.Inferred(types.Prim(types.Bool))
	default:
		return fb.unify(left, right, b.Span().Start)
	}
}

// unify implements the arithmetic-operand rule: if both sides are
// Inferred they must match (allowing a fixed set of numeric
// compatibilities), else the more-committed side widens the other.
func (fb *funcBody) unify(l, r types.InferredType, pos position.Position) types.InferredType {
	if l.State == types.StateInferred && r.State == types.StateInferred {
		if compatible(l.Type, r.Type) {
			return l
		}

		fb.r.diags.Add(diagnostic.Type(pos, "incompatible operand types %s and %s", l.Type, r.Type))

		return types.Unknown()
	}

	if l.State == types.StateInferred {
		return l
	}

	if r.State == types.StateInferred {
		return r
	}

	if l.State == types.StateMaybe {
		return l
	}

	return r
}

func (fb *funcBody) inferCall(c *ast.Call, sc *scope) types.InferredType {
	for _, arg := range c.Args {
		fb.inferExpr(arg, sc)
	}

	if id, ok := c.Callee.(*ast.Identifier); ok {
		if fn, ok := fb.r.res.FuncByName[id.Name]; ok {
			fb.fd.Deps[fn.TempIndex] = struct{}{}
			return types.Inferred(fn.Result)
		}
	}

	return types.Unknown()
}

// compatible reports whether two committed types may appear together in
// an arithmetic expression without an explicit cast: identical types, or
// two integers/two floats of possibly different widths (the fixed
// promotion table the spec allows).
func compatible(a, b types.Descriptor) bool {
	if a.Equal(b) {
		return true
	}

	if a.IsClass || b.IsClass {
		return false
	}

	if a.Primitive.IsInteger() && b.Primitive.IsInteger() {
		return true
	}

	if a.Primitive.IsFloat() && b.Primitive.IsFloat() {
		return true
	}

	return false
}

// canWiden reports whether an integer of `from`'s width may implicitly
// widen to `to` (same signedness, not-smaller width), the rule applied
// at assignment and return sites.
func canWiden(from, to types.Descriptor) bool {
	if from.IsClass || to.IsClass {
		return false
	}

	if !from.Primitive.IsInteger() || !to.Primitive.IsInteger() {
		return compatible(from, to)
	}

	if from.Primitive.IsSigned() != to.Primitive.IsSigned() {
		return false
	}

	return from.Primitive.BitWidth() <= to.Primitive.BitWidth()
}
