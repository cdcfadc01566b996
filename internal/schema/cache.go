package schema

// Cache is the root of one schema mirror. Two instances exist on disk:
// the per-project cache (owned, granted and configured public packages
// plus standalone methods and page items) and the APEX library cache.
//
// All mutators are best-effort: missing identifiers and failed lookups
// produce no mutation and never an error, so one broken cross-reference
// cannot abort a long sync run.
type Cache struct {
	LastUpdate string `yaml:"lastUpdate,omitempty"`
	ApexMajor  int    `yaml:"apexMajor,omitempty"`
	ApexMinor  int    `yaml:"apexMinor,omitempty"`

	Items    []string   `yaml:"items"`
	Packages []*Package `yaml:"packages"`
	Methods  []*Method  `yaml:"methods"`

	items      map[string]struct{}
	packages   map[PackageKey]*Package
	standalone map[PackageKey]*Method
}

// New returns an empty cache ready for mutation.
func New() *Cache {
	c := &Cache{}
	c.Reindex()
	return c
}

// Reindex rebuilds the keyed lookup maps from the exported slices. It
// must be called after deserializing a cache from disk.
func (c *Cache) Reindex() {
	c.items = make(map[string]struct{}, len(c.Items))
	for _, it := range c.Items {
		c.items[it] = struct{}{}
	}
	c.packages = make(map[PackageKey]*Package, len(c.Packages))
	for _, p := range c.Packages {
		c.packages[PackageKey{Name: p.Name, Owner: p.Owner}] = p
		p.methods = nil
		p.ensureIndex()
	}
	c.standalone = make(map[PackageKey]*Method, len(c.Methods))
	for _, m := range c.Methods {
		c.standalone[PackageKey{Name: m.Name, Owner: m.Owner}] = m
	}
}

// AddItem records a page item name once, preserving first-seen order.
func (c *Cache) AddItem(name string) {
	if name == "" {
		return
	}
	if _, ok := c.items[name]; ok {
		return
	}
	c.items[name] = struct{}{}
	c.Items = append(c.Items, name)
}

// AddPackage records a package once per (name, owner). A PUBLIC package
// is stored without an owner, so callers resolving through a public
// synonym never need to know the real owning schema.
func (c *Cache) AddPackage(name, owner string, visibility Visibility) {
	if name == "" {
		return
	}
	if visibility == VisibilityPublic {
		owner = ""
	}
	key := PackageKey{Name: name, Owner: owner}
	if _, ok := c.packages[key]; ok {
		return
	}
	p := &Package{Name: name, Owner: owner, Visibility: visibility}
	p.ensureIndex()
	c.packages[key] = p
	c.Packages = append(c.Packages, p)
}

// AddMethod records a standalone method once per (name, owner).
func (c *Cache) AddMethod(name string, id int, owner string) {
	if name == "" {
		return
	}
	key := PackageKey{Name: name, Owner: owner}
	if _, ok := c.standalone[key]; ok {
		return
	}
	m := &Method{Name: name, ID: id, Owner: owner}
	c.standalone[key] = m
	c.Methods = append(c.Methods, m)
}

// AddMethodToPackage appends a (name, id) overload to an existing
// package. Unknown packages and duplicate overloads are skipped.
func (c *Cache) AddMethodToPackage(name string, id int, packageName, owner string, visibility Visibility) {
	if name == "" || packageName == "" {
		return
	}
	if visibility == VisibilityPublic {
		owner = ""
	}
	p := c.packages[PackageKey{Name: packageName, Owner: owner}]
	if p == nil {
		return
	}
	key := MethodKey{Name: name, ID: id}
	p.ensureIndex()
	if _, ok := p.methods[key]; ok {
		return
	}
	m := &Method{Name: name, ID: id}
	p.methods[key] = m
	p.Methods = append(p.Methods, m)
}

// AddGlobalVariableToPackage appends a named global to an existing
// package if no global with that name is present yet.
func (c *Cache) AddGlobalVariableToPackage(name, value, packageName, owner string) {
	if name == "" || packageName == "" {
		return
	}
	p := c.packages[PackageKey{Name: packageName, Owner: owner}]
	if p == nil {
		return
	}
	if p.Variable(name) != nil {
		return
	}
	p.Variables = append(p.Variables, GlobalVariable{Name: name, Value: value})
}

// AddArgumentToMethod stores one argument row on a method. An empty
// argument name marks the routine's return value, stored under the
// ReturnKey sentinel; a method holds at most one such entry.
//
// Packaged methods are overwritten on repeat (they are revisited once
// per overload pass), standalone methods only ever gain arguments they
// do not have yet. The asymmetry is inherited behavior; see DESIGN.md.
func (c *Cache) AddArgumentToMethod(argName, typ, methodName string, methodID int, packageName, owner string, visibility Visibility) {
	if typ == "" || methodName == "" {
		return
	}
	key := argName
	isReturn := false
	if key == "" {
		key = ReturnKey
		isReturn = true
	}

	if packageName != "" {
		pkgOwner := owner
		if visibility == VisibilityPublic {
			pkgOwner = ""
		}
		if p := c.packages[PackageKey{Name: packageName, Owner: pkgOwner}]; p != nil {
			if m := p.Method(methodName, methodID); m != nil {
				m.setArgument(key, typ, isReturn)
			}
			return
		}
	}

	m := c.standalone[PackageKey{Name: methodName, Owner: owner}]
	if m == nil || m.Argument(key) != nil {
		return
	}
	m.Arguments = append(m.Arguments, Argument{Name: key, Type: typ, Return: isReturn})
}

// Package returns the (name, owner) package, or nil.
func (c *Cache) Package(name, owner string) *Package {
	return c.packages[PackageKey{Name: name, Owner: owner}]
}

// StandaloneMethod returns the (name, owner) standalone method, or nil.
func (c *Cache) StandaloneMethod(name, owner string) *Method {
	return c.standalone[PackageKey{Name: name, Owner: owner}]
}

// HasItem reports whether a page item name is cached.
func (c *Cache) HasItem(name string) bool {
	_, ok := c.items[name]
	return ok
}

// SetLastUpdate records the remote-clock watermark of the last
// successful sync. Subsequent incremental syncs skip owned packages
// unchanged since this point.
func (c *Cache) SetLastUpdate(ts string) {
	c.LastUpdate = ts
}

// SetApexVersion stamps the remote APEX release the cache was built
// against.
func (c *Cache) SetApexVersion(major, minor int) {
	c.ApexMajor = major
	c.ApexMinor = minor
}
