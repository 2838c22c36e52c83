package ast

// Node represents any node in the Abstract Syntax Tree.
type Node interface {
	node()
}

// Statement represents a standalone unit of execution.
// The set of implementations is closed: Declaration, Print, If, Repeat.
type Statement interface {
	Node
	stmtNode()
}

// Alternate is the else-arm of an If: either a chained *If (elif) or a
// terminal *Block (else).
type Alternate interface {
	Node
	altNode()
}

// Expression is the verbatim, space-joined text of a run of non-keyword
// tokens. It is never parsed further; the target runtime gives it meaning.
type Expression string

// Program is the root node.
type Program struct {
	Body []Statement
}

func (p *Program) node() {}

// Declaration: let NAME (= EXPR)?
// Value is nil when the variable is declared without an initializer.
type Declaration struct {
	Name  string
	Value *Expression
}

func (d *Declaration) node()     {}
func (d *Declaration) stmtNode() {}

// Print: write EXPR
type Print struct {
	Expression Expression
}

func (p *Print) node()     {}
func (p *Print) stmtNode() {}

// If: if EXPR block (elif ... | else block)? end
type If struct {
	Test       Expression
	Consequent []Statement
	Alternate  Alternate
}

func (i *If) node()     {}
func (i *If) stmtNode() {}
func (i *If) altNode()  {}

// Repeat: repeat EXPR block end
type Repeat struct {
	Count Expression
	Body  []Statement
}

func (r *Repeat) node()     {}
func (r *Repeat) stmtNode() {}

// Block is an anonymous statement sequence, used as the else-arm of an If.
type Block struct {
	Body []Statement
}

func (b *Block) node()    {}
func (b *Block) altNode() {}

// Expr returns a pointer to e, for optional declaration values.
func Expr(e string) *Expression {
	x := Expression(e)
	return &x
}
