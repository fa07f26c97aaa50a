package parser

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
)

// GoParser implements domain.CodeAnalyzer using go/ast.
type GoParser struct{}

func New() *GoParser {
	return &GoParser{}
}

func (p *GoParser) AnalyzeFile(filePath string) (*domain.AnalyzedFile, error) {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, filePath, nil, goparser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}

	result := &domain.AnalyzedFile{
		Path:    filePath,
		Package: file.Name.Name,
		Lines:   fset.File(file.Pos()).LineCount(),
	}
	if file.Doc != nil {
		result.PackageDoc = strings.TrimSpace(file.Doc.Text())
	}

	for _, imp := range file.Imports {
		result.Imports = append(result.Imports, strings.Trim(imp.Path.Value, `"`))
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			f := domain.Function{
				Name:      d.Name.Name,
				LineStart: fset.Position(d.Pos()).Line,
				LineEnd:   fset.Position(d.End()).Line,
				Exported:  d.Name.IsExported(),
			}
			if d.Recv != nil && len(d.Recv.List) > 0 {
				f.Receiver = receiverType(d.Recv.List[0].Type)
			}
			result.Functions = append(result.Functions, f)
			result.Identifiers = append(result.Identifiers, identifier(fset, d.Name, kindOf(f)))
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					result.Identifiers = append(result.Identifiers, identifier(fset, s.Name, typeKind(s)))
				case *ast.ValueSpec:
					kind := "var"
					if d.Tok == token.CONST {
						kind = "const"
					}
					for _, n := range s.Names {
						if n.Name == "_" {
							continue
						}
						result.Identifiers = append(result.Identifiers, identifier(fset, n, kind))
					}
				}
			}
		}
	}

	return result, nil
}

func identifier(fset *token.FileSet, n *ast.Ident, kind string) domain.Identifier {
	return domain.Identifier{
		Name:     n.Name,
		Kind:     kind,
		Line:     fset.Position(n.Pos()).Line,
		Exported: n.IsExported(),
	}
}

func kindOf(f domain.Function) string {
	if f.Receiver != "" {
		return "method"
	}
	return "func"
}

func typeKind(s *ast.TypeSpec) string {
	switch s.Type.(type) {
	case *ast.StructType:
		return "struct"
	case *ast.InterfaceType:
		return "interface"
	default:
		return "type"
	}
}

func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return "*" + receiverType(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	default:
		return ""
	}
}
