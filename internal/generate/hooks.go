package generate

import "github.com/jptrs93/protoprober/internal/printer"

// Hooks is the rendering contract a target language implements. Every hook
// renders from the bindings in v alone and must tolerate any key being
// present, including keys left over from an earlier sibling statement.
//
// Bindings available to all hooks: proto_filename, proto_filename_without_ext,
// proto_basename, package, go_import_path.
//
// ImportDependency runs once per imported file whose types the output names,
// between Imports and Flags, with dep_alias, dep_proto_filename,
// dep_proto_filename_without_ext, dep_proto_basename, dep_package and
// dep_go_import_path.
//
// Helper scope adds message_name, message_type (package-relative dotted path),
// message_full_name, message_dep, message_ref. Field statements add
// field_name, field_number, field_kind, field_oneof, field_optional and either
// data (scalar literal), field_message_name/field_message_type/
// field_message_full_name/field_message_dep/field_message_ref (message
// reference) or enum_name, enum_type, enum_full_name, enum_dep, enum_value,
// enum_value_type, enum_value_full_name (enum reference).
//
// A *_dep binding is the dep_alias of the file declaring the type, empty when
// the rendered file declares it. A *_ref binding is a dotted name unique
// across packages, suitable for naming helpers.
//
// Service scope adds service_name, service_full_name, method_count; method
// scope adds method_name, method_shape, request_name, request_type,
// request_full_name, request_dep, request_ref, response_name, response_type,
// response_full_name, send_count.
type Hooks interface {
	Name() string
	// Suffix is appended to the stripped proto filename to form the output
	// filename.
	Suffix() string
	IndentUnit() string
	CommentPrefix() string
	Sentinels(varied bool) Sentinels
	Supports(shape Shape) bool

	Package(p *printer.Printer, v *printer.Vars)
	Imports(p *printer.Printer, v *printer.Vars)
	ImportDependency(p *printer.Printer, v *printer.Vars)
	Flags(p *printer.Printer, v *printer.Vars)
	Trailer(p *printer.Printer, v *printer.Vars)

	StartPrint(p *printer.Printer, v *printer.Vars)
	EndPrint(p *printer.Printer, v *printer.Vars)
	EndFunction(p *printer.Printer, v *printer.Vars)
	Return(p *printer.Printer, v *printer.Vars)

	DeclarePopulateFunction(p *printer.Printer, v *printer.Vars)
	StartPopulateFunction(p *printer.Printer, v *printer.Vars)
	EndPopulateFunction(p *printer.Printer, v *printer.Vars)
	EmptyMessage(p *printer.Printer, v *printer.Vars)
	PopulateScalar(p *printer.Printer, v *printer.Vars, repeated bool)
	PopulateEnum(p *printer.Printer, v *printer.Vars, repeated bool)
	PopulateMessage(p *printer.Printer, v *printer.Vars, repeated bool)

	StartMethodProbe(p *printer.Printer, v *printer.Vars)
	StartServiceProbe(p *printer.Printer, v *printer.Vars)
	CreateStub(p *printer.Printer, v *printer.Vars)
	CallMethodProbe(p *printer.Printer, v *printer.Vars)
	CallServiceProbe(p *printer.Printer, v *printer.Vars)
	StartMain(p *printer.Printer, v *printer.Vars)
	ParseFlags(p *printer.Printer, v *printer.Vars)
	CreateChannel(p *printer.Printer, v *printer.Vars)

	UnaryUnary(p *printer.Printer, v *printer.Vars)
	ClientStreaming(p *printer.Printer, v *printer.Vars)
	ServerStreaming(p *printer.Printer, v *printer.Vars)
	BidiStreaming(p *printer.Printer, v *printer.Vars)
}
