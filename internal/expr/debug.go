package expr

import "github.com/k0kubun/pp/v3"

// DumpNode pretty-prints a parsed AST node for --debug output, the way
// sqldef's own tooling dumps parsed statement trees.
func DumpNode(n Node) string {
	return pp.Sprint(n)
}
