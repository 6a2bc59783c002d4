package ram

// Walk calls fn for every node in the tree rooted at n, visiting a
// parent before its children.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// WalkProgram walks the main statement and every subroutine of a
// program in deterministic order.
func WalkProgram(p *Program, fn func(Node)) {
	Walk(p.Main, fn)
	for _, name := range p.SubroutineNames() {
		Walk(p.Subroutines[name], fn)
	}
}
