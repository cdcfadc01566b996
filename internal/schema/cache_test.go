package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem(t *testing.T) {
	c := New()

	c.AddItem("P1_EMPLOYEE_ID")
	c.AddItem("P1_EMPLOYEE_ID")
	c.AddItem("P2_NAME")
	c.AddItem("")

	assert.Equal(t, []string{"P1_EMPLOYEE_ID", "P2_NAME"}, c.Items)
	assert.True(t, c.HasItem("P1_EMPLOYEE_ID"))
	assert.False(t, c.HasItem("P9_MISSING"))
}

func TestAddPackage(t *testing.T) {
	t.Run("idempotent per name and owner", func(t *testing.T) {
		c := New()

		c.AddPackage("emp_pkg", "hr", VisibilityGranted)
		c.AddPackage("emp_pkg", "hr", VisibilityGranted)

		require.Len(t, c.Packages, 1)
		assert.NotNil(t, c.Package("emp_pkg", "hr"))
	})

	t.Run("same name under different owners", func(t *testing.T) {
		c := New()

		c.AddPackage("emp_pkg", "", VisibilityOwned)
		c.AddPackage("emp_pkg", "hr", VisibilityGranted)

		assert.Len(t, c.Packages, 2)
	})

	t.Run("public clears the owner", func(t *testing.T) {
		c := New()

		c.AddPackage("apex_util", "sys", VisibilityPublic)

		require.Len(t, c.Packages, 1)
		p := c.Package("apex_util", "")
		require.NotNil(t, p)
		assert.Empty(t, p.Owner)
		assert.Equal(t, VisibilityPublic, p.Visibility)

		// An owned package with the same name must not collide.
		c.AddPackage("apex_util", "", VisibilityOwned)
		assert.Len(t, c.Packages, 1)
	})

	t.Run("missing name is a no-op", func(t *testing.T) {
		c := New()
		c.AddPackage("", "hr", VisibilityOwned)
		assert.Empty(t, c.Packages)
	})
}

func TestAddMethodToPackage(t *testing.T) {
	t.Run("no duplicate overloads", func(t *testing.T) {
		c := New()
		c.AddPackage("emp_pkg", "", VisibilityOwned)

		c.AddMethodToPackage("get_salary", 1, "emp_pkg", "", VisibilityOwned)
		c.AddMethodToPackage("get_salary", 1, "emp_pkg", "", VisibilityOwned)
		c.AddMethodToPackage("get_salary", 2, "emp_pkg", "", VisibilityOwned)

		p := c.Package("emp_pkg", "")
		require.Len(t, p.Methods, 2)
		assert.NotNil(t, p.Method("get_salary", 1))
		assert.NotNil(t, p.Method("get_salary", 2))
	})

	t.Run("unknown package is skipped", func(t *testing.T) {
		c := New()
		c.AddMethodToPackage("get_salary", 1, "no_such_pkg", "", VisibilityOwned)
		assert.Empty(t, c.Packages)
	})

	t.Run("public visibility resolves the ownerless entry", func(t *testing.T) {
		c := New()
		c.AddPackage("apex_util", "sys", VisibilityPublic)

		c.AddMethodToPackage("url_encode", 3, "apex_util", "sys", VisibilityPublic)

		p := c.Package("apex_util", "")
		require.NotNil(t, p)
		assert.NotNil(t, p.Method("url_encode", 3))
	})
}

func TestAddMethod(t *testing.T) {
	c := New()

	c.AddMethod("refresh_totals", 0, "")
	c.AddMethod("refresh_totals", 0, "")
	c.AddMethod("refresh_totals", 0, "hr")

	assert.Len(t, c.Methods, 2)
	assert.NotNil(t, c.StandaloneMethod("refresh_totals", ""))
	assert.NotNil(t, c.StandaloneMethod("refresh_totals", "hr"))
}

func TestAddGlobalVariableToPackage(t *testing.T) {
	c := New()
	c.AddPackage("emp_pkg", "", VisibilityOwned)

	c.AddGlobalVariableToPackage("c_max_rows", "500", "emp_pkg", "")
	c.AddGlobalVariableToPackage("c_max_rows", "1000", "emp_pkg", "")
	c.AddGlobalVariableToPackage("c_app_name", "'HR'", "emp_pkg", "")
	c.AddGlobalVariableToPackage("c_orphan", "1", "no_such_pkg", "")

	p := c.Package("emp_pkg", "")
	require.Len(t, p.Variables, 2)
	assert.Equal(t, "500", p.Variable("c_max_rows").Value)
	assert.Equal(t, "'HR'", p.Variable("c_app_name").Value)
}

func TestAddArgumentToMethod(t *testing.T) {
	t.Run("empty name becomes the RETURN entry", func(t *testing.T) {
		c := New()
		c.AddPackage("emp_pkg", "", VisibilityOwned)
		c.AddMethodToPackage("get_salary", 1, "emp_pkg", "", VisibilityOwned)

		c.AddArgumentToMethod("", "number", "get_salary", 1, "emp_pkg", "", VisibilityOwned)
		c.AddArgumentToMethod("", "number", "get_salary", 1, "emp_pkg", "", VisibilityOwned)

		m := c.Package("emp_pkg", "").Method("get_salary", 1)
		require.Len(t, m.Arguments, 1)
		assert.Equal(t, ReturnKey, m.Arguments[0].Name)
		assert.True(t, m.Arguments[0].Return)
	})

	t.Run("packaged arguments are overwritten on repeat", func(t *testing.T) {
		c := New()
		c.AddPackage("emp_pkg", "", VisibilityOwned)
		c.AddMethodToPackage("get_salary", 1, "emp_pkg", "", VisibilityOwned)

		c.AddArgumentToMethod("emp_id", "varchar2", "get_salary", 1, "emp_pkg", "", VisibilityOwned)
		c.AddArgumentToMethod("emp_id", "number", "get_salary", 1, "emp_pkg", "", VisibilityOwned)

		m := c.Package("emp_pkg", "").Method("get_salary", 1)
		require.Len(t, m.Arguments, 1)
		assert.Equal(t, "number", m.Arguments[0].Type)
	})

	t.Run("standalone arguments are only added once", func(t *testing.T) {
		c := New()
		c.AddMethod("refresh_totals", 0, "")

		c.AddArgumentToMethod("dept_id", "number", "refresh_totals", 0, "", "", "")
		c.AddArgumentToMethod("dept_id", "varchar2", "refresh_totals", 0, "", "", "")

		m := c.StandaloneMethod("refresh_totals", "")
		require.Len(t, m.Arguments, 1)
		assert.Equal(t, "number", m.Arguments[0].Type)
	})

	t.Run("unknown package falls back to the standalone method", func(t *testing.T) {
		c := New()
		c.AddMethod("refresh_totals", 0, "")

		c.AddArgumentToMethod("dept_id", "number", "refresh_totals", 0, "gone_pkg", "", "")

		m := c.StandaloneMethod("refresh_totals", "")
		require.Len(t, m.Arguments, 1)
	})

	t.Run("missing type or method is a no-op", func(t *testing.T) {
		c := New()
		c.AddPackage("emp_pkg", "", VisibilityOwned)
		c.AddMethodToPackage("get_salary", 1, "emp_pkg", "", VisibilityOwned)

		c.AddArgumentToMethod("emp_id", "", "get_salary", 1, "emp_pkg", "", VisibilityOwned)
		c.AddArgumentToMethod("emp_id", "number", "", 1, "emp_pkg", "", VisibilityOwned)
		c.AddArgumentToMethod("emp_id", "number", "no_such_method", 9, "emp_pkg", "", VisibilityOwned)

		m := c.Package("emp_pkg", "").Method("get_salary", 1)
		assert.Empty(t, m.Arguments)
	})

	t.Run("argument order is preserved", func(t *testing.T) {
		c := New()
		c.AddPackage("emp_pkg", "", VisibilityOwned)
		c.AddMethodToPackage("raise_salary", 2, "emp_pkg", "", VisibilityOwned)

		c.AddArgumentToMethod("emp_id", "number", "raise_salary", 2, "emp_pkg", "", VisibilityOwned)
		c.AddArgumentToMethod("amount", "number", "raise_salary", 2, "emp_pkg", "", VisibilityOwned)
		c.AddArgumentToMethod("reason", "varchar2", "raise_salary", 2, "emp_pkg", "", VisibilityOwned)

		m := c.Package("emp_pkg", "").Method("raise_salary", 2)
		require.Len(t, m.Arguments, 3)
		assert.Equal(t, "emp_id", m.Arguments[0].Name)
		assert.Equal(t, "amount", m.Arguments[1].Name)
		assert.Equal(t, "reason", m.Arguments[2].Name)
	})
}

func TestReindex(t *testing.T) {
	c := New()
	c.AddPackage("emp_pkg", "", VisibilityOwned)
	c.AddMethodToPackage("get_salary", 1, "emp_pkg", "", VisibilityOwned)
	c.AddMethod("refresh_totals", 0, "hr")
	c.AddItem("P1_ID")

	// Simulate a cache deserialized without its lookup maps.
	restored := &Cache{
		LastUpdate: c.LastUpdate,
		Items:      c.Items,
		Packages:   c.Packages,
		Methods:    c.Methods,
	}
	restored.Reindex()

	require.NotNil(t, restored.Package("emp_pkg", ""))
	assert.NotNil(t, restored.Package("emp_pkg", "").Method("get_salary", 1))
	assert.NotNil(t, restored.StandaloneMethod("refresh_totals", "hr"))
	assert.True(t, restored.HasItem("P1_ID"))
}
