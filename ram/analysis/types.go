package analysis

import "github.com/wbrown/janus-ram/ram/ast"

// Domain type names used in relation schemas.
const (
	TypeNumber = "number"
	TypeSymbol = "symbol"
)

// TypeEnvironment maps each argument position of each relation to its
// domain type, as needed when emitting relation schemas.
type TypeEnvironment struct {
	types map[string][]string
	names map[string][]string
}

// NewTypeEnvironment derives the type environment from the relation
// declarations of a program.
func NewTypeEnvironment(prog *ast.Program) *TypeEnvironment {
	env := &TypeEnvironment{
		types: make(map[string][]string),
		names: make(map[string][]string),
	}
	for _, rel := range prog.Relations {
		types := make([]string, rel.Arity())
		names := make([]string, rel.Arity())
		for i, attr := range rel.Attributes {
			types[i] = attr.Type
			names[i] = attr.Name
		}
		env.types[rel.Name] = types
		env.names[rel.Name] = names
	}
	return env
}

// TypeOf returns the domain type of column i of the named relation.
func (e *TypeEnvironment) TypeOf(relation string, i int) string {
	types := e.types[relation]
	if i < 0 || i >= len(types) || types[i] == "" {
		return TypeNumber
	}
	return types[i]
}

// AttributeTypes returns the column types of the named relation.
func (e *TypeEnvironment) AttributeTypes(relation string) []string {
	return e.types[relation]
}

// AttributeNames returns the column names of the named relation.
func (e *TypeEnvironment) AttributeNames(relation string) []string {
	return e.names[relation]
}
