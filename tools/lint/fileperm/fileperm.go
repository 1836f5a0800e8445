// Package fileperm provides a linter to check for hardcoded file permissions
package fileperm

import (
	"go/ast"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/analysis"
)

// Analyzer is a custom analysis pass that checks for hardcoded file permissions
var Analyzer = &analysis.Analyzer{
	Name: "fileperm",
	Doc:  "checks for hardcoded file permission literals instead of using the fileutil constants",
	Run:  run,
}

// permArgIndex maps a called function or method name to the position of its
// permission argument.
var permArgIndex = map[string]int{
	"WriteFile": 2,
	"OpenFile":  2,
	"MkdirAll":  1,
	"Mkdir":     1,
	"Chmod":     1,
}

// Permission constants to suggest
var permConstants = map[int64]string{
	0o600: "fileutil.ReadWriteUserPermission",
	0o644: "fileutil.ReadWriteUserReadOthers",
	0o755: "fileutil.ReadWriteExecuteUserReadExecuteOthers",
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			idx, ok := permArgIndex[calleeName(call)]
			if !ok || len(call.Args) <= idx {
				return true
			}
			lit, ok := call.Args[idx].(*ast.BasicLit)
			if !ok || lit.Kind != token.INT {
				return true
			}
			value, err := strconv.ParseInt(lit.Value, 0, 64)
			if err != nil {
				return true
			}
			if constant, known := permConstants[value]; known {
				pass.Reportf(lit.Pos(), "use a file permission constant like '%s' instead of hardcoded '%s'", constant, lit.Value)
			}
			return true
		})
	}
	// Return a dummy non-nil value to satisfy the linter
	return (*struct{})(nil), nil
}

func calleeName(call *ast.CallExpr) string {
	switch fun := call.Fun.(type) {
	case *ast.SelectorExpr:
		return fun.Sel.Name
	case *ast.Ident:
		return fun.Name
	default:
		return ""
	}
}
