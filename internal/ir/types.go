package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NoVersion marks a name that has not been through SSA renaming
const NoVersion = -1

// Var names a virtual register or source variable. Before SSA conversion
// Version is NoVersion; the SSA converter assigns versions to variables.
// Temporaries minted by lowering are single-assignment and keep NoVersion.
type Var struct {
	Base    string
	Version int
	Temp    bool
}

// Name returns an unversioned source variable
func Name(base string) Var {
	return Var{Base: base, Version: NoVersion}
}

// Temp returns a compiler temporary
func Temp(base string) Var {
	return Var{Base: base, Version: NoVersion, Temp: true}
}

// Versioned returns the SSA version of a source variable
func Versioned(base string, version int) Var {
	return Var{Base: base, Version: version}
}

// IsVersioned reports whether the SSA converter has renamed v
func (v Var) IsVersioned() bool {
	return v.Version != NoVersion
}

// Unversioned strips the SSA version
func (v Var) Unversioned() Var {
	v.Version = NoVersion
	return v
}

// TempPrefix starts every temporary name minted by lowering
const TempPrefix = "t"

// String renders versions as a suffix. The suffix is separated by an
// underscore when gluing it on could read as another name: a base that
// already ends in a digit, or the temporary prefix itself.
func (v Var) String() string {
	if v.Version == NoVersion {
		return v.Base
	}
	n := len(v.Base)
	if v.Base == TempPrefix || n > 0 && v.Base[n-1] >= '0' && v.Base[n-1] <= '9' {
		return v.Base + "_" + strconv.Itoa(v.Version)
	}
	return v.Base + strconv.Itoa(v.Version)
}

// BinOp is the opcode of a BinaryOp instruction
type BinOp string

const (
	OpAdd BinOp = "Add"
	OpSub BinOp = "Sub"
	OpMul BinOp = "Mul"
	OpDiv BinOp = "Div"
	OpMod BinOp = "Mod"
	OpLt  BinOp = "Lt"
	OpLe  BinOp = "Le"
	OpGt  BinOp = "Gt"
	OpGe  BinOp = "Ge"
	OpEq  BinOp = "Eq"
	OpNeq BinOp = "Neq"
	OpAnd BinOp = "And"
	OpOr  BinOp = "Or"
)

// UnOp is the opcode of a UnaryOp instruction. Arithmetic and logical
// negation are separate opcodes.
type UnOp string

const (
	OpNeg UnOp = "Neg"
	OpNot UnOp = "Not"
)

// Instructions in three-address form

type Instruction interface {
	// Def returns the name written by the instruction, or nil
	Def() *Var
	// Uses returns the names read by the instruction, in operand order
	Uses() []*Var
	// IsTerminator reports whether the instruction ends a basic block
	IsTerminator() bool
	String() string
}

// LoadConst materializes an integer literal
type LoadConst struct {
	Dest  Var
	Value int64
}

// BinaryOp combines two operands
type BinaryOp struct {
	Dest  Var
	Op    BinOp
	Left  Var
	Right Var
}

// UnaryOp applies a prefix operator
type UnaryOp struct {
	Dest    Var
	Op      UnOp
	Operand Var
}

// Assign copies Src into Dest
type Assign struct {
	Dest Var
	Src  Var
}

// VarDecl declares a variable, optionally initializing it
type VarDecl struct {
	Name Var
	Src  *Var
}

// Label marks a jump target and starts a basic block
type Label struct {
	Name string
}

// Jump transfers control unconditionally
type Jump struct {
	Target string
}

// Branch transfers control to True when Cond is non-zero, to False otherwise
type Branch struct {
	Cond  Var
	True  string
	False string
}

// Return leaves the function, optionally with a value
type Return struct {
	Value *Var
}

// Phi selects a value by the predecessor control arrived from. It only
// exists in SSA form and sits at the head of a block.
type Phi struct {
	Dest     Var
	Incoming []PhiIncoming
}

// PhiIncoming is the value a phi takes along the edge from Pred. Undef
// slots have no reaching definition along that edge.
type PhiIncoming struct {
	Pred  string
	Value Var
	Undef bool
}

func (i *LoadConst) Def() *Var { return &i.Dest }
func (i *BinaryOp) Def() *Var  { return &i.Dest }
func (i *UnaryOp) Def() *Var   { return &i.Dest }
func (i *Assign) Def() *Var    { return &i.Dest }
func (i *Phi) Def() *Var       { return &i.Dest }
func (*Label) Def() *Var       { return nil }
func (*Jump) Def() *Var        { return nil }
func (*Branch) Def() *Var      { return nil }
func (*Return) Def() *Var      { return nil }

// Def of a declaration without initializer is nil: it introduces the
// name but gives it no value.
func (i *VarDecl) Def() *Var {
	if i.Src == nil {
		return nil
	}
	return &i.Name
}

func (*LoadConst) Uses() []*Var  { return nil }
func (i *BinaryOp) Uses() []*Var { return []*Var{&i.Left, &i.Right} }
func (i *UnaryOp) Uses() []*Var  { return []*Var{&i.Operand} }
func (i *Assign) Uses() []*Var   { return []*Var{&i.Src} }
func (*Label) Uses() []*Var      { return nil }
func (*Jump) Uses() []*Var       { return nil }
func (i *Branch) Uses() []*Var   { return []*Var{&i.Cond} }

func (i *VarDecl) Uses() []*Var {
	if i.Src == nil {
		return nil
	}
	return []*Var{i.Src}
}

func (i *Return) Uses() []*Var {
	if i.Value == nil {
		return nil
	}
	return []*Var{i.Value}
}

// Uses of a phi are its defined incoming values. Liveness attributes them
// to the predecessor edges rather than to the phi's block.
func (i *Phi) Uses() []*Var {
	uses := make([]*Var, 0, len(i.Incoming))
	for k := range i.Incoming {
		if !i.Incoming[k].Undef {
			uses = append(uses, &i.Incoming[k].Value)
		}
	}
	return uses
}

func (*LoadConst) IsTerminator() bool { return false }
func (*BinaryOp) IsTerminator() bool  { return false }
func (*UnaryOp) IsTerminator() bool   { return false }
func (*Assign) IsTerminator() bool    { return false }
func (*VarDecl) IsTerminator() bool   { return false }
func (*Label) IsTerminator() bool     { return false }
func (*Phi) IsTerminator() bool       { return false }
func (*Jump) IsTerminator() bool      { return true }
func (*Branch) IsTerminator() bool    { return true }
func (*Return) IsTerminator() bool    { return true }

// Targets returns the labels a terminator may transfer control to
func Targets(inst Instruction) []string {
	switch i := inst.(type) {
	case *Jump:
		return []string{i.Target}
	case *Branch:
		return []string{i.True, i.False}
	default:
		return nil
	}
}

// Function is the flat IR of one function body
type Function struct {
	Name         string
	Params       []Var
	Instructions []Instruction
}

// Clone returns a deep copy of fn. SSA conversion rewrites instructions in
// place, so a driver that wants to keep the flat listing runs its pipeline
// on a clone.
func (fn *Function) Clone() *Function {
	out := &Function{
		Name:         fn.Name,
		Params:       append([]Var(nil), fn.Params...),
		Instructions: make([]Instruction, len(fn.Instructions)),
	}
	for i, inst := range fn.Instructions {
		out.Instructions[i] = CloneInstruction(inst)
	}
	return out
}

// CloneInstruction returns a copy of inst that shares no operands with it
func CloneInstruction(inst Instruction) Instruction {
	switch i := inst.(type) {
	case *LoadConst:
		c := *i
		return &c
	case *BinaryOp:
		c := *i
		return &c
	case *UnaryOp:
		c := *i
		return &c
	case *Assign:
		c := *i
		return &c
	case *VarDecl:
		c := *i
		if i.Src != nil {
			src := *i.Src
			c.Src = &src
		}
		return &c
	case *Label:
		c := *i
		return &c
	case *Jump:
		c := *i
		return &c
	case *Branch:
		c := *i
		return &c
	case *Return:
		c := *i
		if i.Value != nil {
			value := *i.Value
			c.Value = &value
		}
		return &c
	case *Phi:
		c := *i
		c.Incoming = append([]PhiIncoming(nil), i.Incoming...)
		return &c
	}
	return inst
}

// BasicBlock represents a sequence of instructions with a single entry and
// a single terminator. A nil Terminator means control falls through to the
// lexically next block, if any.
type BasicBlock struct {
	Label        string
	Index        int // creation order within the function
	Phis         []*Phi
	Instructions []Instruction
	Terminator   Instruction
	Preds        []string
	Succs        []string
	LiveIn       VarSet
	LiveOut      VarSet
}

// ControlFlowGraph owns the basic blocks of one function
type ControlFlowGraph struct {
	Name   string
	Params []Var
	Entry  string
	Blocks []*BasicBlock // creation order

	index map[string]*BasicBlock
}

// NewControlFlowGraph creates an empty graph for the named function
func NewControlFlowGraph(name string, params []Var) *ControlFlowGraph {
	return &ControlFlowGraph{
		Name:   name,
		Params: append([]Var(nil), params...),
		index:  make(map[string]*BasicBlock),
	}
}

// AddBlock appends a new empty block; the first block added is the entry
func (g *ControlFlowGraph) AddBlock(label string) *BasicBlock {
	block := &BasicBlock{Label: label, Index: len(g.Blocks)}
	g.Blocks = append(g.Blocks, block)
	g.index[label] = block
	if g.Entry == "" {
		g.Entry = label
	}
	return block
}

// Block looks up a block by label
func (g *ControlFlowGraph) Block(label string) *BasicBlock {
	return g.index[label]
}

// EntryBlock returns the designated entry block
func (g *ControlFlowGraph) EntryBlock() *BasicBlock {
	return g.index[g.Entry]
}

// AddEdge records the control transfer from -> to in both adjacency lists.
// Repeated edges are recorded once.
func (g *ControlFlowGraph) AddEdge(from, to string) {
	src, dst := g.index[from], g.index[to]
	for _, s := range src.Succs {
		if s == to {
			return
		}
	}
	src.Succs = append(src.Succs, to)
	dst.Preds = append(dst.Preds, from)
}

// Exits returns the blocks without successors, which together form the
// virtual exit of the function
func (g *ControlFlowGraph) Exits() []*BasicBlock {
	var exits []*BasicBlock
	for _, b := range g.Blocks {
		if len(b.Succs) == 0 {
			exits = append(exits, b)
		}
	}
	return exits
}

// ReversePostorder returns the blocks reachable from the entry in reverse
// postorder. Successors are explored in recorded order, so the result is
// deterministic.
func (g *ControlFlowGraph) ReversePostorder() []*BasicBlock {
	entry := g.EntryBlock()
	if entry == nil {
		return nil
	}

	type frame struct {
		block *BasicBlock
		next  int
	}

	seen := map[string]bool{entry.Label: true}
	stack := []frame{{block: entry}}
	var post []*BasicBlock

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.block.Succs) {
			succ := g.index[top.block.Succs[top.next]]
			top.next++
			if !seen[succ.Label] {
				seen[succ.Label] = true
				stack = append(stack, frame{block: succ})
			}
			continue
		}
		post = append(post, top.block)
		stack = stack[:len(stack)-1]
	}

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// Reachable returns the set of labels reachable from the entry block
func (g *ControlFlowGraph) Reachable() map[string]bool {
	reachable := make(map[string]bool)
	for _, b := range g.ReversePostorder() {
		reachable[b.Label] = true
	}
	return reachable
}

// VarSet is a set of (possibly versioned) names
type VarSet map[Var]struct{}

// NewVarSet builds a set from the given names
func NewVarSet(vars ...Var) VarSet {
	s := make(VarSet, len(vars))
	for _, v := range vars {
		s[v] = struct{}{}
	}
	return s
}

func (s VarSet) Add(v Var) {
	s[v] = struct{}{}
}

func (s VarSet) Has(v Var) bool {
	_, ok := s[v]
	return ok
}

// AddAll adds every member of other and reports whether s grew
func (s VarSet) AddAll(other VarSet) bool {
	grew := false
	for v := range other {
		if _, ok := s[v]; !ok {
			s[v] = struct{}{}
			grew = true
		}
	}
	return grew
}

func (s VarSet) Equal(other VarSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if _, ok := other[v]; !ok {
			return false
		}
	}
	return true
}

func (s VarSet) Clone() VarSet {
	c := make(VarSet, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

// Sorted returns the members ordered by base name, then version
func (s VarSet) Sorted() []Var {
	vars := make([]Var, 0, len(s))
	for v := range s {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool {
		if vars[i].Base != vars[j].Base {
			return vars[i].Base < vars[j].Base
		}
		return vars[i].Version < vars[j].Version
	})
	return vars
}

func (s VarSet) String() string {
	vars := s.Sorted()
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.String()
	}
	return fmt.Sprintf("{%s}", strings.Join(names, ", "))
}
