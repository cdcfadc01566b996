package oracle

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwinkels/ais/internal/schema"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDB(db), mock
}

func TestItems(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("apex_application_page_items")).
		WillReturnRows(sqlmock.NewRows([]string{"item_name"}).
			AddRow("P1_EMPLOYEE_ID").
			AddRow("G_APP_USER"))

	items, err := d.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"P1_EMPLOYEE_ID", "G_APP_USER"}, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackagesIncremental(t *testing.T) {
	d, mock := newMockDB(t)

	// Without configured public synonyms the statement unions only the
	// owned and granted branches.
	mock.ExpectQuery(`user_objects[\s\S]*user_tab_privs`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"package_name", "owner", "visibility"}).
			AddRow("emp_pkg", nil, "OWNED").
			AddRow("pay_pkg", "hr", "GRANTED"))

	packages, err := d.Packages(context.Background(), "2026-08-30 12:00:00", nil)
	require.NoError(t, err)

	require.Len(t, packages, 2)
	assert.Equal(t, PackageRow{Name: "emp_pkg", Owner: "", Visibility: "OWNED"}, packages[0])
	assert.Equal(t, PackageRow{Name: "pay_pkg", Owner: "hr", Visibility: "GRANTED"}, packages[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackagesPublicSynonymBinds(t *testing.T) {
	d, mock := newMockDB(t)

	// Two configured names produce two generated binds in the IN list.
	mock.ExpectQuery(regexp.QuoteMeta(":pub0, :pub1")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"package_name", "owner", "visibility"}).
			AddRow("owa_util", nil, "PUBLIC"))

	packages, err := d.Packages(context.Background(), "", []string{"owa_util", "htp"})
	require.NoError(t, err)

	require.Len(t, packages, 1)
	assert.Equal(t, schema.VisibilityPublic, packages[0].Visibility)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageMethods(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("all_procedures")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"procedure_name", "subprogram_id"}).
			AddRow("get_salary", 1).
			AddRow("get_salary", 2))

	methods, err := d.PackageMethods(context.Background(), "emp_pkg", "hr")
	require.NoError(t, err)

	require.Len(t, methods, 2)
	assert.Equal(t, MethodRow{Name: "get_salary", ID: 1}, methods[0])
	assert.Equal(t, MethodRow{Name: "get_salary", ID: 2}, methods[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMethodArgumentsVariantSelection(t *testing.T) {
	argRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"argument_name", "data_type"}).
			AddRow("emp_id", "number").
			AddRow(nil, "number")
	}

	t.Run("standalone methods skip the package filter", func(t *testing.T) {
		d, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("package_name is null")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(argRows())

		args, err := d.MethodArguments(context.Background(), "", "refresh_totals", 0, "")
		require.NoError(t, err)
		require.Len(t, args, 2)
		assert.Equal(t, "emp_id", args[0].Name)
		// A NULL argument name marks the function result row.
		assert.Equal(t, "", args[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("library packages resolve through their synonym", func(t *testing.T) {
		d, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("library_package")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(argRows())

		args, err := d.MethodArguments(context.Background(), "apex_util", "url_encode", 3, "")
		require.NoError(t, err)
		assert.Len(t, args, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("schema packages filter on package and owner", func(t *testing.T) {
		d, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("lower(arg.package_name) = :package_name")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(argRows())

		args, err := d.MethodArguments(context.Background(), "emp_pkg", "get_salary", 1, "hr")
		require.NoError(t, err)
		assert.Len(t, args, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPackageVariables(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("all_source")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"variable_name", "variable_value"}).
			AddRow("c_max_rows", "500").
			AddRow("c_unparsed", nil))

	variables, err := d.PackageVariables(context.Background(), "emp_pkg", "")
	require.NoError(t, err)

	require.Len(t, variables, 2)
	assert.Equal(t, VariableRow{Name: "c_max_rows", Value: "500"}, variables[0])
	assert.Equal(t, VariableRow{Name: "c_unparsed", Value: ""}, variables[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStandaloneMethods(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("user_procedures")).
		WillReturnRows(sqlmock.NewRows([]string{"procedure_name", "subprogram_id", "owner"}).
			AddRow("refresh_totals", 0, nil).
			AddRow("audit_row", 0, "sec"))

	methods, err := d.StandaloneMethods(context.Background())
	require.NoError(t, err)

	require.Len(t, methods, 2)
	assert.Equal(t, "", methods[0].Owner)
	assert.Equal(t, "sec", methods[1].Owner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteVersion(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("apex_release")).
		WillReturnRows(sqlmock.NewRows([]string{"version_no"}).AddRow("23.1.5"))

	version, err := d.RemoteVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 23, Minor: 1}, version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteClock(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("systimestamp")).
		WillReturnRows(sqlmock.NewRows([]string{"clock"}).AddRow("2026-08-31 09:15:00"))

	clock, err := d.RemoteClock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31 09:15:00", clock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "23.1.5", want: Version{Major: 23, Minor: 1}},
		{in: "5.0", want: Version{Major: 5, Minor: 0}},
		{in: "23", wantErr: true},
		{in: "x.y.z", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseVersion(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
