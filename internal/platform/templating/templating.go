// Package templating fills `{NAME}` placeholders in HTML fragments. The
// template is never modified; every call returns a new string.
package templating

import (
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{"
	endTag   = "}"
)

// Render replaces every `{NAME}` in tmpl with vars[NAME]. Placeholders with
// no entry in vars are left untouched.
func Render(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	values := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		values[k] = v
	}
	return fasttemplate.ExecuteStringStd(tmpl, startTag, endTag, values)
}
