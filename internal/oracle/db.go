package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/sijms/go-ora/v2" // registers the "oracle" driver
)

// DB implements Source on top of a database/sql handle.
//
// A DB is owned by exactly one sync run at a time: the engine holds the
// session for its whole crawl and closes it afterwards. Nothing here
// guards against concurrent use; the single-writer contract lives in
// the sync engine.
type DB struct {
	db *sql.DB
}

// Connect opens an Oracle session and verifies it with a ping. The
// connect string is the usual host:port/service form.
func Connect(ctx context.Context, connect, username, password string) (*DB, error) {
	dsn := fmt.Sprintf("oracle://%s:%s@%s",
		url.PathEscape(username), url.PathEscape(password), connect)
	db, err := sql.Open("oracle", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConnection, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrNoConnection, err)
	}
	return &DB{db: db}, nil
}

// NewDB wraps an existing handle. Used by tests.
func NewDB(db *sql.DB) *DB {
	return &DB{db: db}
}

// Close releases the session.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Items(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, queryItems)
	if err != nil {
		return nil, fmt.Errorf("page items query: %w", err)
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("page items scan: %w", err)
		}
		items = append(items, name)
	}
	return items, rows.Err()
}

func (d *DB) Packages(ctx context.Context, since string, publicNames []string) ([]PackageRow, error) {
	query := queryOwnedPackages + "\n union " + queryGrantedPackages
	args := []interface{}{sql.Named("since", nullable(since))}

	// The public synonym branch only exists when names are configured;
	// its IN list is generated with one bind per name.
	if len(publicNames) > 0 {
		placeholders := make([]string, len(publicNames))
		for i, name := range publicNames {
			bind := fmt.Sprintf("pub%d", i)
			placeholders[i] = ":" + bind
			args = append(args, sql.Named(bind, strings.ToUpper(name)))
		}
		query += "\n union " + fmt.Sprintf(queryPublicPackagesPrefix, strings.Join(placeholders, ", "))
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("packages query: %w", err)
	}
	defer rows.Close()

	var packages []PackageRow
	for rows.Next() {
		var row PackageRow
		var owner sql.NullString
		if err := rows.Scan(&row.Name, &owner, &row.Visibility); err != nil {
			return nil, fmt.Errorf("packages scan: %w", err)
		}
		row.Owner = owner.String
		packages = append(packages, row)
	}
	return packages, rows.Err()
}

func (d *DB) LibraryPackages(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, queryLibraryPackages)
	if err != nil {
		return nil, fmt.Errorf("library packages query: %w", err)
	}
	defer rows.Close()

	var packages []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("library packages scan: %w", err)
		}
		packages = append(packages, name)
	}
	return packages, rows.Err()
}

func (d *DB) PackageMethods(ctx context.Context, packageName, owner string) ([]MethodRow, error) {
	return d.queryMethods(ctx, queryPackageMethods,
		sql.Named("name", packageName), sql.Named("owner", nullable(owner)))
}

func (d *DB) LibraryMethods(ctx context.Context, packageName string) ([]MethodRow, error) {
	return d.queryMethods(ctx, queryLibraryMethods, sql.Named("name", packageName))
}

func (d *DB) queryMethods(ctx context.Context, query string, args ...interface{}) ([]MethodRow, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("methods query: %w", err)
	}
	defer rows.Close()

	var methods []MethodRow
	for rows.Next() {
		var row MethodRow
		if err := rows.Scan(&row.Name, &row.ID); err != nil {
			return nil, fmt.Errorf("methods scan: %w", err)
		}
		methods = append(methods, row)
	}
	return methods, rows.Err()
}

func (d *DB) StandaloneMethods(ctx context.Context) ([]StandaloneMethodRow, error) {
	rows, err := d.db.QueryContext(ctx, queryStandaloneMethods)
	if err != nil {
		return nil, fmt.Errorf("standalone methods query: %w", err)
	}
	defer rows.Close()

	var methods []StandaloneMethodRow
	for rows.Next() {
		var row StandaloneMethodRow
		var owner sql.NullString
		if err := rows.Scan(&row.Name, &row.ID, &owner); err != nil {
			return nil, fmt.Errorf("standalone methods scan: %w", err)
		}
		row.Owner = owner.String
		methods = append(methods, row)
	}
	return methods, rows.Err()
}

func (d *DB) PackageVariables(ctx context.Context, packageName, owner string) ([]VariableRow, error) {
	rows, err := d.db.QueryContext(ctx, queryPackageVariables,
		sql.Named("name", packageName), sql.Named("owner", nullable(owner)))
	if err != nil {
		return nil, fmt.Errorf("package variables query: %w", err)
	}
	defer rows.Close()

	var variables []VariableRow
	for rows.Next() {
		var row VariableRow
		var value sql.NullString
		if err := rows.Scan(&row.Name, &value); err != nil {
			return nil, fmt.Errorf("package variables scan: %w", err)
		}
		row.Value = value.String
		variables = append(variables, row)
	}
	return variables, rows.Err()
}

func (d *DB) MethodArguments(ctx context.Context, packageName, methodName string, id int, owner string) ([]ArgumentRow, error) {
	var (
		query string
		args  []interface{}
	)
	switch {
	case packageName == "":
		query = queryStandaloneArguments
		args = []interface{}{sql.Named("method_name", methodName), sql.Named("id", id)}
	case IsLibraryPackage(packageName):
		query = queryLibraryArguments
		args = []interface{}{
			sql.Named("package_name", packageName),
			sql.Named("method_name", methodName),
			sql.Named("id", id),
		}
	default:
		query = queryPackageArguments
		args = []interface{}{
			sql.Named("package_name", packageName),
			sql.Named("method_name", methodName),
			sql.Named("id", id),
			sql.Named("owner", nullable(owner)),
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("arguments query for %s.%s: %w", packageName, methodName, err)
	}
	defer rows.Close()

	var arguments []ArgumentRow
	for rows.Next() {
		var row ArgumentRow
		var name sql.NullString
		if err := rows.Scan(&name, &row.Type); err != nil {
			return nil, fmt.Errorf("arguments scan: %w", err)
		}
		row.Name = name.String
		arguments = append(arguments, row)
	}
	return arguments, rows.Err()
}

func (d *DB) RemoteVersion(ctx context.Context) (Version, error) {
	var versionNo string
	if err := d.db.QueryRowContext(ctx, queryVersion).Scan(&versionNo); err != nil {
		return Version{}, fmt.Errorf("apex release query: %w", err)
	}
	return parseVersion(versionNo)
}

func (d *DB) RemoteClock(ctx context.Context) (string, error) {
	var clock string
	if err := d.db.QueryRowContext(ctx, queryClock).Scan(&clock); err != nil {
		return "", fmt.Errorf("clock query: %w", err)
	}
	return clock, nil
}

// parseVersion splits an APEX version_no such as "23.1.5" into its
// major and minor components.
func parseVersion(versionNo string) (Version, error) {
	parts := strings.Split(versionNo, ".")
	if len(parts) < 2 {
		return Version{}, fmt.Errorf("unexpected apex version %q", versionNo)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("unexpected apex version %q", versionNo)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("unexpected apex version %q", versionNo)
	}
	return Version{Major: major, Minor: minor}, nil
}

// nullable maps an empty string to SQL NULL so optional binds can be
// tested with ":x is null" in the dictionary queries.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
