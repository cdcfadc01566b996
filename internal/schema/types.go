// Package schema holds the in-memory mirror of the remote Oracle schema:
// APEX page items, packages with their procedures and globals, and
// standalone stored procedures. A Cache is populated by the sync engine,
// written to disk once per run, and reloaded read-only for every
// completion request.
package schema

// Visibility classifies how the syncing user can reach a package.
type Visibility string

const (
	// VisibilityOwned marks objects in the user's own schema.
	VisibilityOwned Visibility = "OWNED"
	// VisibilityGranted marks objects reachable through an object grant.
	VisibilityGranted Visibility = "GRANTED"
	// VisibilityPublic marks objects reachable through a public synonym.
	// Public entries are stored with an empty owner so they never collide
	// with same-named owned packages.
	VisibilityPublic Visibility = "PUBLIC"
)

// ReturnKey is the argument key used for a routine's return value, which
// has no argument name at the source.
const ReturnKey = "RETURN"

// PackageKey identifies a package or a standalone method. Owner is empty
// for objects owned by the syncing user or reached via a public synonym.
type PackageKey struct {
	Name  string
	Owner string
}

// MethodKey identifies a method inside one package. ID is the Oracle
// subprogram id, which disambiguates overloads sharing a name.
type MethodKey struct {
	Name string
	ID   int
}

// Argument is one formal parameter of a method, or its return value when
// Return is set. Types are stored lowercase as delivered by the source.
type Argument struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Return bool   `yaml:"return,omitempty"`
}

// Method is a callable routine. Owner is only set for standalone methods;
// package-scoped methods inherit their package's owner. Arguments keep
// source order because snippet placeholders are numbered by position.
type Method struct {
	Name      string     `yaml:"name"`
	ID        int        `yaml:"id"`
	Owner     string     `yaml:"owner,omitempty"`
	Arguments []Argument `yaml:"arguments,omitempty"`
}

// Argument returns the argument stored under key, or nil.
func (m *Method) Argument(key string) *Argument {
	for i := range m.Arguments {
		if m.Arguments[i].Name == key {
			return &m.Arguments[i]
		}
	}
	return nil
}

// setArgument stores or overwrites the argument under key.
func (m *Method) setArgument(key, typ string, ret bool) {
	if a := m.Argument(key); a != nil {
		a.Type = typ
		a.Return = ret
		return
	}
	m.Arguments = append(m.Arguments, Argument{Name: key, Type: typ, Return: ret})
}

// GlobalVariable is a package-level constant or variable with its literal
// source value, shown as documentation in completion items.
type GlobalVariable struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Package is a named group of methods and globals.
type Package struct {
	Name       string           `yaml:"name"`
	Owner      string           `yaml:"owner,omitempty"`
	Visibility Visibility       `yaml:"visibility,omitempty"`
	Methods    []*Method        `yaml:"methods"`
	Variables  []GlobalVariable `yaml:"variables,omitempty"`

	methods map[MethodKey]*Method
}

// Method returns the (name, id) method of the package, or nil.
func (p *Package) Method(name string, id int) *Method {
	p.ensureIndex()
	return p.methods[MethodKey{Name: name, ID: id}]
}

// Variable returns the named package global, or nil.
func (p *Package) Variable(name string) *GlobalVariable {
	for i := range p.Variables {
		if p.Variables[i].Name == name {
			return &p.Variables[i]
		}
	}
	return nil
}

func (p *Package) ensureIndex() {
	if p.methods != nil {
		return
	}
	p.methods = make(map[MethodKey]*Method, len(p.Methods))
	for _, m := range p.Methods {
		p.methods[MethodKey{Name: m.Name, ID: m.ID}] = m
	}
}
