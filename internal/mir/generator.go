package mir

import (
	"github.com/solventlang/tsc/internal/ast"
	"github.com/solventlang/tsc/internal/diagnostic"
	"github.com/solventlang/tsc/internal/resolver"
	"github.com/solventlang/tsc/internal/types"
)

// Generate lowers a resolved program to its mid-IR module (C6). It walks
// each function body a second time, reusing the VariableDescriptors the
// resolver already produced rather than re-inferring anything — codegen
// consults res.ExprTypes/Locals and each descriptor's Params purely for
// their committed types, and assigns local indices itself.
func Generate(prog *ast.Program, res *resolver.Result) (*Module, *diagnostic.Bag) {
	g := &generator{res: res}
	mod := &Module{Strings: res.Strings}

	for _, fd := range res.Functions {
		fn := g.lowerFunction(fd)
		if fn != nil {
			mod.Functions = append(mod.Functions, fn)
		}
	}

	if g.diags.HasErrors() {
		return nil, &g.diags
	}

	return mod, nil
}

type generator struct {
	res   *resolver.Result
	diags diagnostic.Bag
}

type genScope struct {
	parent *genScope
	names  map[string]*types.VariableDescriptor
}

func newGenScope(parent *genScope) *genScope {
	return &genScope{parent: parent, names: make(map[string]*types.VariableDescriptor)}
}

func (s *genScope) declare(name string, v *types.VariableDescriptor) {
	s.names[name] = v
}

func (s *genScope) lookup(name string) (*types.VariableDescriptor, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.names[name]; ok {
			return v, true
		}
	}

	return nil, false
}

func (g *generator) lowerFunction(fd *types.FunctionDescriptor) *Function {
	fn := &Function{
		TempIndex:  fd.TempIndex,
		Name:       fd.Name,
		Exported:   fd.IsExported(),
		Import:     fd.Import,
		ResultType: fd.Result,
		Deps:       fd.Deps,
	}

	for _, p := range fd.Params {
		fn.ParamTypes = append(fn.ParamTypes, p.Type.Type)
	}

	fn.LocalTypes = append(fn.LocalTypes, fn.ParamTypes...)

	if fd.Import != nil {
		return fn
	}

	decl := g.res.Nodes[fd]
	if decl == nil || decl.Body == nil {
		return fn
	}

	sc := newGenScope(nil)

	if fd.OwnerClass != nil {
		thisDesc := &types.VariableDescriptor{
			Name: "this",
			Type: types.Inferred(types.ClassType(fd.OwnerClass.ID, fd.OwnerClass.Name)),
		}
		sc.declare("this", thisDesc)
		fn.LocalTypes = append([]types.Descriptor{thisDesc.Type.Type}, fn.LocalTypes...)
	}

	for i := range decl.Params {
		sc.declare(decl.Params[i].Name, &fd.Params[i])
	}

	fb := &funcLowering{g: g, fn: fn, builder: NewBuilder()}
	fb.lowerBlock(decl.Body, sc)

	// Every function body ends with a bare Return, so the mid-IR states
	// the fall-through return explicitly; the target assembler drops this
	// trailing Return, since falling off the end of a target function
	// body already returns.
	fb.builder.Emit(Return)

	fn.Code = fb.builder.Code()

	return fn
}

// funcLowering threads per-function codegen state: the instruction
// builder and the function being built, whose len(fn.LocalTypes) is the
// index the next declared local receives (params and `this` already
// occupy the indices below it).
type funcLowering struct {
	g       *generator
	fn      *Function
	builder *Builder
}

func (fb *funcLowering) lowerBlock(b *ast.Block, parent *genScope) {
	sc := newGenScope(parent)
	for _, stmt := range b.Statements {
		fb.lowerStatement(stmt, sc)
	}
}

func (fb *funcLowering) lowerStatement(stmt ast.Statement, sc *genScope) {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		fb.lowerLocalDecl(s, sc)
	case *ast.Assignment:
		fb.lowerAssignment(s, sc)
	case *ast.ExpressionStatement:
		if s.Expr != nil {
			resultType := fb.exprType(s.Expr)
			fb.lowerExpr(s.Expr, sc)

			if resultType.IsValue() {
				fb.builder.Emit(Drop)
			}
		}
	case *ast.If:
		fb.lowerIf(s, sc)
	case *ast.While:
		fb.lowerWhile(s, sc)
	case *ast.For:
		fb.lowerFor(s, sc)
	case *ast.Return:
		fb.lowerReturn(s, sc)
	case *ast.Break:
		if fb.builder.InLoop() {
			fb.builder.Break(false)
		}
	case *ast.Continue:
		if fb.builder.InLoop() {
			fb.builder.Continue(false)
		}
	case *ast.Block:
		fb.lowerBlock(s, sc)
	}
}

func (fb *funcLowering) lowerLocalDecl(decl *ast.VariableDecl, sc *genScope) {
	vd, ok := fb.g.res.Locals[decl]
	if !ok {
		return
	}

	idx := uint32(len(fb.fn.LocalTypes))
	vd.LocalIdx = int(idx)
	fb.fn.LocalTypes = append(fb.fn.LocalTypes, vd.Type.Type)
	sc.declare(decl.Name, vd)

	if decl.Init != nil {
		fb.lowerExpr(decl.Init, sc)
		fb.builder.Emit(LocalSet, idx)
	}
}

func (fb *funcLowering) lowerAssignment(a *ast.Assignment, sc *genScope) {
	ident, ok := a.Target.(*ast.Identifier)
	if !ok {
		// Field/index assignment targets are part of the class code
		// generator path, deferred per the upstream implementation's own
		// stub for class codegen.
		fb.g.diags.Add(diagnostic.Internal(a.Span().Start, "assignment to a non-identifier target is not yet implemented"))
		return
	}

	vd, found := sc.lookup(ident.Name)
	if !found {
		fb.g.diags.Add(diagnostic.Internal(a.Span().Start, "unresolved assignment target %q reached codegen", ident.Name))
		return
	}

	fb.lowerExpr(a.Value, sc)
	fb.builder.Emit(LocalSet, uint32(vd.LocalIdx))
}

func (fb *funcLowering) lowerIf(s *ast.If, sc *genScope) {
	fb.lowerExpr(s.Cond, sc)
	fb.builder.PushIf(BlockVoid)
	fb.lowerBlock(s.Then, sc)

	switch e := s.Else.(type) {
	case *ast.Block:
		fb.builder.EmitElse()
		fb.lowerBlock(e, sc)
	case *ast.If:
		fb.builder.EmitElse()
		fb.lowerIfAsStatement(e, sc)
	}

	fb.builder.PopLabel()
}

// lowerIfAsStatement lowers an else-if arm, which is itself an `If`
// statement rather than a `Block`; it emits directly into the current
// else arm instead of opening a further nested block.
func (fb *funcLowering) lowerIfAsStatement(s *ast.If, sc *genScope) {
	fb.lowerExpr(s.Cond, sc)
	fb.builder.PushIf(BlockVoid)
	fb.lowerBlock(s.Then, sc)

	switch e := s.Else.(type) {
	case *ast.Block:
		fb.builder.EmitElse()
		fb.lowerBlock(e, sc)
	case *ast.If:
		fb.builder.EmitElse()
		fb.lowerIfAsStatement(e, sc)
	}

	fb.builder.PopLabel()
}

func (fb *funcLowering) lowerWhile(s *ast.While, sc *genScope) {
	fb.builder.PushLoop(BlockVoid)

	fb.lowerExpr(s.Cond, sc)
	fb.negateI32()
	fb.builder.Break(true)

	fb.lowerBlock(s.Body, sc)
	fb.builder.Continue(false)

	fb.builder.PopLoop()
}

func (fb *funcLowering) lowerFor(s *ast.For, sc *genScope) {
	inner := newGenScope(sc)

	if s.Init != nil {
		fb.lowerStatement(s.Init, inner)
	}

	fb.builder.PushLoop(BlockVoid)

	if s.Cond != nil {
		fb.lowerExpr(s.Cond, inner)
		fb.negateI32()
		fb.builder.Break(true)
	}

	fb.lowerBlock(s.Body, inner)

	if s.Post != nil {
		fb.lowerStatement(s.Post, inner)
	}

	fb.builder.Continue(false)
	fb.builder.PopLoop()
}

// negateI32 emits an i32.eqz, turning a truthy condition into the
// "should we break" test consumed by a conditional branch.
func (fb *funcLowering) negateI32() {
	fb.builder.Emit(I32Eqz)
}

func (fb *funcLowering) lowerReturn(ret *ast.Return, sc *genScope) {
	if ret.Value != nil {
		fb.lowerExpr(ret.Value, sc)
	}

	fb.builder.Emit(Return)
}

func (fb *funcLowering) exprType(e ast.Expression) types.Descriptor {
	return fb.g.res.ExprTypes[e].Type
}

func (fb *funcLowering) lowerExpr(e ast.Expression, sc *genScope) {
	switch ex := e.(type) {
	case *ast.Literal:
		fb.lowerLiteral(ex)
	case *ast.Identifier:
		fb.lowerIdentifier(ex, sc)
	case *ast.BinaryOp:
		fb.lowerBinary(ex, sc)
	case *ast.UnaryOp:
		fb.lowerUnary(ex, sc)
	case *ast.Call:
		fb.lowerCall(ex, sc)
	case *ast.Cast:
		fb.lowerCast(ex, sc)
	case *ast.FieldAccess, *ast.Index:
		// Heap-object layout (class instances, arrays) is the class code
		// generator path left as a stub upstream; deferred here too.
		fb.g.diags.Add(diagnostic.Internal(e.Span().Start, "field/index codegen is not yet implemented"))
	default:
		fb.g.diags.Add(diagnostic.Internal(e.Span().Start, "codegen: unhandled expression node"))
	}
}

func (fb *funcLowering) lowerLiteral(lit *ast.Literal) {
	resultType := fb.g.res.ExprTypes[lit].Type

	switch lit.Kind {
	case ast.LiteralBool:
		if lit.Bool {
			fb.builder.EmitConstI32(1)
		} else {
			fb.builder.EmitConstI32(0)
		}
	case ast.LiteralInt:
		if resultType.Primitive.IsInteger() && resultType.Primitive.BitWidth() > 32 {
			fb.builder.EmitConstI64(parseIntLiteral(lit.Raw))
		} else {
			fb.builder.EmitConstI32(int32(parseIntLiteral(lit.Raw)))
		}
	case ast.LiteralFloat:
		if resultType.Primitive == types.F32 {
			fb.builder.EmitConstF32(float32(parseFloatLiteral(lit.Raw)))
		} else {
			fb.builder.EmitConstF64(parseFloatLiteral(lit.Raw))
		}
	case ast.LiteralString:
		idx := fb.g.res.Strings.Intern(lit.Raw)
		fb.builder.EmitConstI32(int32(idx))
	default:
		fb.g.diags.Add(diagnostic.Internal(lit.Span().Start, "codegen: unhandled literal kind"))
	}
}

func (fb *funcLowering) lowerIdentifier(id *ast.Identifier, sc *genScope) {
	vd, ok := sc.lookup(id.Name)
	if ok {
		fb.builder.Emit(LocalGet, uint32(vd.LocalIdx))
		return
	}

	fb.g.diags.Add(diagnostic.Internal(id.Span().Start, "unresolved identifier %q reached codegen", id.Name))
}

func (fb *funcLowering) lowerUnary(u *ast.UnaryOp, sc *genScope) {
	operandType := fb.g.res.ExprTypes[u.Operand].Type

	switch u.Op {
	case "-":
		fb.emitZero(operandType)
		fb.lowerExpr(u.Operand, sc)
		fb.builder.Emit(subOpFor(operandType))
	case "!":
		fb.lowerExpr(u.Operand, sc)
		fb.builder.Emit(I32Eqz)
	case "+":
		fb.lowerExpr(u.Operand, sc)
	default:
		fb.g.diags.Add(diagnostic.Internal(u.Span().Start, "codegen: unhandled unary operator %q", u.Op))
	}
}

func (fb *funcLowering) emitZero(t types.Descriptor) {
	switch {
	case t.Primitive.IsFloat() && t.Primitive.BitWidth() == 32:
		fb.builder.EmitConstF32(0)
	case t.Primitive.IsFloat():
		fb.builder.EmitConstF64(0)
	case t.Primitive.BitWidth() > 32:
		fb.builder.EmitConstI64(0)
	default:
		fb.builder.EmitConstI32(0)
	}
}

func (fb *funcLowering) lowerBinary(b *ast.BinaryOp, sc *genScope) {
	if b.Op == "&&" || b.Op == "||" {
		fb.lowerShortCircuit(b, sc)
		return
	}

	operandType := fb.g.res.ExprTypes[b.Left].Type
	if !operandType.IsValue() {
		operandType = fb.g.res.ExprTypes[b.Right].Type
	}

	fb.lowerExpr(b.Left, sc)
	fb.lowerExpr(b.Right, sc)
	fb.builder.Emit(binOpFor(b.Op, operandType))
}

// lowerShortCircuit lowers && and || to nested `if` blocks that leave an
// i32 boolean on the stack without evaluating the right operand unless
// needed.
func (fb *funcLowering) lowerShortCircuit(b *ast.BinaryOp, sc *genScope) {
	fb.lowerExpr(b.Left, sc)

	if b.Op == "||" {
		fb.builder.Emit(I32Eqz)
	}

	fb.builder.PushIf(BlockI32)
	fb.lowerExpr(b.Right, sc)
	fb.builder.EmitElse()
	fb.builder.EmitConstI32(boolToI32(b.Op == "||"))
	fb.builder.PopLabel()
}

func boolToI32(v bool) int32 {
	if v {
		return 1
	}

	return 0
}

func (fb *funcLowering) lowerCall(c *ast.Call, sc *genScope) {
	id, ok := c.Callee.(*ast.Identifier)
	if !ok {
		fb.g.diags.Add(diagnostic.Internal(c.Span().Start, "codegen: only direct function calls are implemented"))
		return
	}

	fn, ok := fb.g.res.FuncByName[id.Name]
	if !ok {
		fb.g.diags.Add(diagnostic.Internal(c.Span().Start, "codegen: unresolved callee %q", id.Name))
		return
	}

	for _, arg := range c.Args {
		fb.lowerExpr(arg, sc)
	}

	fb.builder.Emit(Call, uint32(fn.TempIndex))
}

func (fb *funcLowering) lowerCast(c *ast.Cast, sc *genScope) {
	from := fb.g.res.ExprTypes[c.Value].Type
	to := fb.g.res.ExprTypes[c].Type

	fb.lowerExpr(c.Value, sc)

	if op, ok := convertOpFor(from, to); ok {
		fb.builder.Emit(op)
	}

	if to.Primitive.IsInteger() && to.Primitive.BitWidth() < 32 && from.Primitive.BitWidth() >= to.Primitive.BitWidth() {
		mask := int32(1)<<uint(to.Primitive.BitWidth()) - 1
		fb.builder.EmitConstI32(mask)
		fb.builder.Emit(I32And)
	}
}
