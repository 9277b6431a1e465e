package generate

import (
	"strconv"

	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/jptrs93/protoprober/internal/printer"
)

// dependency is an imported file declaring a type the output names.
type dependency struct {
	file  *ir.File
	alias string
}

// dependencies lists the imported files declaring a discovered message or an
// enum one of their fields uses, in first-use order. Lookup failures are left
// for the helper section to report.
func (r *run) dependencies() []dependency {
	order, err := r.discover()
	if err != nil {
		return nil
	}

	var deps []dependency
	seen := map[string]bool{r.file.Path: true}
	taken := map[string]bool{identifier(ir.BaseName(r.file.Path)): true}
	use := func(fullName string) {
		origin, ok := r.index.Origin[fullName]
		if !ok || seen[origin.Path] {
			return
		}
		seen[origin.Path] = true
		alias := identifier(ir.BaseName(origin.Path))
		for i := 2; taken[alias]; i++ {
			alias = identifier(ir.BaseName(origin.Path)) + strconv.Itoa(i)
		}
		taken[alias] = true
		deps = append(deps, dependency{file: origin, alias: alias})
	}
	for _, msg := range order {
		use(msg.FullName)
		for _, f := range msg.Fields {
			if f.Kind == ir.KindEnum && !f.IsMap {
				use(f.EnumFullName)
			}
		}
	}
	return deps
}

func (r *run) importDependencies(p *printer.Printer, v *printer.Vars) {
	for _, dep := range r.dependencies() {
		r.aliases[dep.file.Path] = dep.alias
		r.hooks.ImportDependency(p, v.With(
			"dep_alias", dep.alias,
			"dep_proto_filename", dep.file.Path,
			"dep_proto_filename_without_ext", ir.StripProto(dep.file.Path),
			"dep_proto_basename", ir.BaseName(dep.file.Path),
			"dep_package", dep.file.Package,
			"dep_go_import_path", dep.file.GoPackagePath(),
		))
	}
}

// refVars binds prefix_dep, the alias of the file declaring fullName (empty
// for the rendered file), and prefix_ref, the name helpers for the type are
// keyed by: its package-relative path inside the rendered package, else its
// full name.
func (r *run) refVars(fullName, pkg, typeName string) (dep, ref string) {
	if origin, ok := r.index.Origin[fullName]; ok && origin.Path != r.file.Path {
		dep = r.aliases[origin.Path]
	}
	ref = typeName
	if pkg != r.file.Package {
		ref = fullName
	}
	return dep, ref
}

// identifier maps s onto [A-Za-z0-9_], prefixing an underscore when it would
// start with a digit.
func identifier(s string) string {
	b := []byte(s)
	for i, c := range b {
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_') {
			b[i] = '_'
		}
	}
	out := string(b)
	if out == "" || out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}
