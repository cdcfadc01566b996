// Package oracle reads completion metadata from the Oracle data
// dictionary and the APEX views. It is a thin, read-only query layer;
// all interpretation of the rows happens in the sync engine.
package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/jwinkels/ais/internal/schema"
)

// ErrNoConnection is returned when a database session cannot be
// established. A sync run never starts without a session.
var ErrNoConnection = errors.New("no database connection")

// PackageRow is one package reachable by the syncing user.
type PackageRow struct {
	Name       string
	Owner      string
	Visibility schema.Visibility
}

// MethodRow is one procedure or function of a package. ID is the
// subprogram id disambiguating overloads.
type MethodRow struct {
	Name string
	ID   int
}

// StandaloneMethodRow is a stored procedure or function outside any
// package. Owner is empty for objects in the user's own schema.
type StandaloneMethodRow struct {
	Name  string
	ID    int
	Owner string
}

// VariableRow is one package-level constant with its literal value.
type VariableRow struct {
	Name  string
	Value string
}

// ArgumentRow is one formal parameter of a routine. Name is empty for
// the function return row.
type ArgumentRow struct {
	Name string
	Type string
}

// Version is the remote APEX release.
type Version struct {
	Major int
	Minor int
}

// Source is the read-only metadata contract the sync engine crawls.
// Every call may fail with a query error; the engine surfaces those as
// messages and keeps going with sibling objects.
type Source interface {
	// Items lists APEX page and application item names, uppercased.
	Items(ctx context.Context) ([]string, error)

	// Packages lists packages visible to the user. Owned packages
	// unchanged since the non-empty watermark are filtered out;
	// granted and public rows are always returned in full.
	Packages(ctx context.Context, since string, publicNames []string) ([]PackageRow, error)

	// PackageMethods lists the routines of one user-schema package.
	PackageMethods(ctx context.Context, packageName, owner string) ([]MethodRow, error)

	// LibraryPackages lists the public synonyms of the shared APEX
	// namespace, crawled by the library refresh.
	LibraryPackages(ctx context.Context) ([]string, error)

	// LibraryMethods lists the routines of an APEX library package,
	// resolved through its public synonym.
	LibraryMethods(ctx context.Context, packageName string) ([]MethodRow, error)

	// StandaloneMethods lists procedures and functions outside packages.
	StandaloneMethods(ctx context.Context) ([]StandaloneMethodRow, error)

	// PackageVariables lists package-level constants and their values.
	PackageVariables(ctx context.Context, packageName, owner string) ([]VariableRow, error)

	// MethodArguments lists the formal parameters of one routine. The
	// packageName is empty for standalone routines.
	MethodArguments(ctx context.Context, packageName, methodName string, id int, owner string) ([]ArgumentRow, error)

	// RemoteVersion reports the APEX release of the remote instance.
	RemoteVersion(ctx context.Context) (Version, error)

	// RemoteClock reports the database clock, used as the sync
	// watermark so local and remote clock skew cannot hide changes.
	RemoteClock(ctx context.Context) (string, error)
}

// LibraryPrefix is the naming convention of the shared APEX packages,
// which are crawled through public synonyms instead of the user schema.
const LibraryPrefix = "APEX_"

// IsLibraryPackage reports whether a package name belongs to the shared
// APEX namespace.
func IsLibraryPackage(name string) bool {
	return strings.HasPrefix(strings.ToUpper(name), LibraryPrefix)
}
