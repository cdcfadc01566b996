package resolve

import (
	"fmt"
	"strings"

	"github.com/jwinkels/ais/internal/schema"
)

// stringType is the argument type that gets a quoted snippet
// placeholder, so accepting the completion leaves the cursor inside
// string literal quotes.
const stringType = "varchar2"

// callSnippet renders the insertable call text and the documentation
// signature for a method. Placeholders are numbered 1..n over the
// non-return arguments in source order; the return row only
// contributes the trailing "return <type>" of the documentation.
//
// A function with arguments renders as
//
//	name( \n\targ1 => $1,\n\targ2 => $2\n);
//
// and a routine without arguments inserts the bare name.
func callSnippet(name string, arguments []schema.Argument) (insert, doc string, isSnippet bool) {
	parameters := "( "
	details := ""
	returnType := ""

	n := 0
	for _, a := range arguments {
		if a.Return {
			returnType = a.Type
			continue
		}
		n++
		if strings.EqualFold(a.Type, stringType) {
			parameters += fmt.Sprintf("\n\t%s =>'$%d',", a.Name, n)
		} else {
			parameters += fmt.Sprintf("\n\t%s => $%d,", a.Name, n)
		}
		details += fmt.Sprintf("\n\t%s %s,", a.Name, a.Type)
	}

	details = strings.TrimSuffix(details, ",")
	if n > 0 {
		parameters = strings.TrimSuffix(parameters, ",") + "\n);"
	} else {
		parameters = ""
	}

	doc = "(" + details + "\n)"
	if returnType != "" {
		doc += " return " + returnType
	}
	return name + parameters, doc, n > 0
}
