// Package cpp renders probers against the grpc++ synchronous API, with gflags
// for command line handling.
package cpp

import (
	"strings"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/jptrs93/protoprober/internal/printer"
)

type Hooks struct{}

var _ generate.Hooks = Hooks{}

func (Hooks) Name() string                 { return "cpp" }
func (Hooks) Suffix() string               { return ".grpc.client.pb.cc" }
func (Hooks) IndentUnit() string           { return "  " }
func (Hooks) CommentPrefix() string        { return "// " }
func (Hooks) Supports(generate.Shape) bool { return true }

func (Hooks) Sentinels(varied bool) generate.Sentinels {
	return generate.NewSentinels(generate.LiteralStyle{True: "true"}, varied)
}

// qualified turns a fully-qualified proto name into an absolute C++ name.
func qualified(fullName string) string {
	return "::" + strings.ReplaceAll(fullName, ".", "::")
}

func populateName(ref string) string {
	return "Populate" + ir.FlatName(ref)
}

func (Hooks) Package(p *printer.Printer, v *printer.Vars) {}

var headers = []string{
	"cstdint",
	"fstream",
	"iostream",
	"memory",
	"sstream",
	"string",
	"thread",
	"gflags/gflags.h",
	"grpcpp/grpcpp.h",
}

func (Hooks) Imports(p *printer.Printer, v *printer.Vars) {
	for _, h := range headers {
		p.Print(v.With("header", h), "#include <$header$>\n")
	}
	p.NewLine()
	p.Print(v, "#include \"$proto_filename_without_ext$.grpc.pb.h\"\n")
	p.NewLine()
}

// ImportDependency adds nothing: the generated header includes the headers of
// the imported files.
func (Hooks) ImportDependency(p *printer.Printer, v *printer.Vars) {}

func (Hooks) Flags(p *printer.Printer, v *printer.Vars) {
	p.P("// gflags lives in namespace google on some distributions and gflags on others.\n" +
		"namespace google {}\n" +
		"namespace gflags {}\n" +
		"using namespace google;\n" +
		"using namespace gflags;\n\n")
	p.P("DEFINE_bool(use_tls, false, \"Connection uses TLS if true, else plain TCP.\");\n" +
		"DEFINE_string(custom_ca_file, \"\", \"File holding the root certificates to trust when using TLS.\");\n" +
		"DEFINE_string(server_host, \"127.0.0.1\", \"Server host to connect to.\");\n" +
		"DEFINE_int32(server_port, 8080, \"Server port.\");\n" +
		"DEFINE_string(server_host_override, \"\",\n" +
		"              \"The server name used to verify the hostname returned by the TLS handshake.\");\n\n")
	p.P("static std::shared_ptr<grpc::ChannelCredentials> ProberCredentials() {\n")
	p.Indent()
	p.P("if (!FLAGS_use_tls) {\n")
	p.Indent()
	p.P("return grpc::InsecureChannelCredentials();\n")
	p.Outdent()
	p.P("}\n")
	p.P("grpc::SslCredentialsOptions options;\n")
	p.P("if (!FLAGS_custom_ca_file.empty()) {\n")
	p.Indent()
	p.P("std::ifstream in(FLAGS_custom_ca_file);\n")
	p.P("std::stringstream roots;\n")
	p.P("roots << in.rdbuf();\n")
	p.P("options.pem_root_certs = roots.str();\n")
	p.Outdent()
	p.P("}\n")
	p.P("return grpc::SslCredentials(options);\n")
	p.Outdent()
	p.P("}\n\n")
}

func (Hooks) Trailer(p *printer.Printer, v *printer.Vars) {}

func (Hooks) StartPrint(p *printer.Printer, v *printer.Vars) { p.P("std::cout << \"") }
func (Hooks) EndPrint(p *printer.Printer, v *printer.Vars)   { p.P("\" << std::endl;\n") }

func (Hooks) EndFunction(p *printer.Printer, v *printer.Vars) {
	p.Outdent()
	p.P("}\n")
}

func (Hooks) Return(p *printer.Printer, v *printer.Vars) { p.P("return;\n") }

func helperVars(v *printer.Vars) *printer.Vars {
	return v.With(
		"populate", populateName(v.Get("message_ref")),
		"cpp_type", qualified(v.Get("message_full_name")),
	)
}

func (Hooks) DeclarePopulateFunction(p *printer.Printer, v *printer.Vars) {
	p.Print(helperVars(v), "void $populate$($cpp_type$* message);\n")
}

func (Hooks) StartPopulateFunction(p *printer.Printer, v *printer.Vars) {
	p.Print(helperVars(v), "void $populate$($cpp_type$* message) {\n")
	p.Indent()
}

func (h Hooks) EndPopulateFunction(p *printer.Printer, v *printer.Vars) { h.EndFunction(p, v) }

func (Hooks) EmptyMessage(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "// $message_name$ has no fields.\n")
	p.P("(void)message;\n")
}

// keywords are the C++ reserved words protoc suffixes with an underscore
// when a field is named after one.
var keywords = map[string]bool{}

func init() {
	for _, k := range strings.Fields(`
		alignas alignof and and_eq asm auto bitand bitor bool break case
		catch char char8_t char16_t char32_t class compl concept const consteval
		constexpr constinit const_cast continue co_await co_return co_yield
		decltype default delete do double dynamic_cast else enum explicit export
		extern false float for friend goto if inline int long mutable namespace
		new noexcept not not_eq nullptr operator or or_eq private protected
		public register reinterpret_cast requires return short signed sizeof
		static static_assert static_cast struct switch template this
		thread_local throw true try typedef typeid typename union unsigned using
		virtual void volatile wchar_t while xor xor_eq`) {
		keywords[k] = true
	}
}

// accessor is the lowercased field name protoc uses for generated accessors.
func accessor(v *printer.Vars) *printer.Vars {
	name := strings.ToLower(v.Get("field_name"))
	if keywords[name] {
		name += "_"
	}
	return v.With("accessor", name)
}

func (Hooks) PopulateScalar(p *printer.Printer, v *printer.Vars, repeated bool) {
	setOrAdd(p, accessor(v), "$data$", repeated)
}

func (Hooks) PopulateEnum(p *printer.Printer, v *printer.Vars, repeated bool) {
	vv := accessor(v).With("value", qualified(v.Get("enum_value_full_name")))
	setOrAdd(p, vv, "$value$", repeated)
}

func setOrAdd(p *printer.Printer, v *printer.Vars, value string, repeated bool) {
	if repeated {
		p.Print(v, "message->add_$accessor$("+value+");\n")
		p.Print(v, "message->add_$accessor$("+value+");\n")
		return
	}
	p.Print(v, "message->set_$accessor$("+value+");\n")
}

func (Hooks) PopulateMessage(p *printer.Printer, v *printer.Vars, repeated bool) {
	vv := accessor(v).With("populate", populateName(v.Get("field_message_ref")))
	if repeated {
		p.Print(vv, "$populate$(message->add_$accessor$());\n")
		p.Print(vv, "$populate$(message->add_$accessor$());\n")
		return
	}
	p.Print(vv, "$populate$(message->mutable_$accessor$());\n")
}

func serviceVars(v *printer.Vars) *printer.Vars {
	return v.With("cpp_service", qualified(v.Get("service_full_name")))
}

func (Hooks) StartMethodProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(serviceVars(v), "void Probe$service_name$_$method_name$(const std::unique_ptr<$cpp_service$::Stub>& stub) {\n")
	p.Indent()
}

func (Hooks) StartServiceProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "void Probe$service_name$(std::shared_ptr<grpc::Channel> channel) {\n")
	p.Indent()
}

func (Hooks) CreateStub(p *printer.Printer, v *printer.Vars) {
	p.Print(serviceVars(v), "std::unique_ptr<$cpp_service$::Stub> stub = $cpp_service$::NewStub(channel);\n")
}

func (Hooks) CallMethodProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "Probe$service_name$_$method_name$(stub);\n")
}

func (Hooks) CallServiceProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "Probe$service_name$(channel);\n")
}

func (Hooks) StartMain(p *printer.Printer, v *printer.Vars) {
	p.P("int main(int argc, char** argv) {\n")
	p.Indent()
}

func (Hooks) ParseFlags(p *printer.Printer, v *printer.Vars) {
	p.P("ParseCommandLineFlags(&argc, &argv, true);\n")
}

func (Hooks) CreateChannel(p *printer.Printer, v *printer.Vars) {
	p.P("grpc::ChannelArguments args;\n")
	p.P("if (!FLAGS_server_host_override.empty()) {\n")
	p.Indent()
	p.P("args.SetSslTargetNameOverride(FLAGS_server_host_override);\n")
	p.Outdent()
	p.P("}\n")
	p.P("std::shared_ptr<grpc::Channel> channel = grpc::CreateCustomChannel(\n")
	p.P("    FLAGS_server_host + \":\" + std::to_string(FLAGS_server_port), ProberCredentials(), args);\n")
}

func callVars(v *printer.Vars) *printer.Vars {
	return v.With(
		"request", qualified(v.Get("request_full_name")),
		"response", qualified(v.Get("response_full_name")),
		"populate", populateName(v.Get("request_ref")),
	)
}

// checkStatus prints the outcome held in status, with detail appended to the
// success line when set.
func checkStatus(p *printer.Printer, v *printer.Vars, detail string) {
	p.P("if (status.ok()) {\n")
	p.Indent()
	p.Print(v, "std::cout << \"\\t\\tSuccess\""+detail+" << std::endl;\n")
	p.Outdent()
	p.P("} else {\n")
	p.Indent()
	p.P("std::cout << \"\\t\\tFailed: \" << status.error_code() << \": \" << status.error_message() << std::endl;\n")
	p.Outdent()
	p.P("}\n")
}

func (Hooks) UnaryUnary(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.Print(cv, "$request$ request;\n")
	p.Print(cv, "$response$ response;\n")
	p.P("grpc::ClientContext context;\n")
	p.Print(cv, "$populate$(&request);\n")
	p.NewLine()
	p.Print(cv, "grpc::Status status = stub->$method_name$(&context, request, &response);\n")
	checkStatus(p, cv, "")
}

// writeRequests emits the loop that sends send_count populated requests
// through target.
func writeRequests(p *printer.Printer, v *printer.Vars, target string) {
	p.Print(v, "for (int i = 0; i < $send_count$; i++) {\n")
	p.Indent()
	p.Print(v, "$request$ request;\n")
	p.Print(v, "$populate$(&request);\n")
	p.P("if (!" + target + "->Write(request)) {\n")
	p.Indent()
	p.P("break;\n")
	p.Outdent()
	p.P("}\n")
	p.Outdent()
	p.P("}\n")
	p.P(target + "->WritesDone();\n")
}

func (Hooks) ClientStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.Print(cv, "$response$ response;\n")
	p.P("grpc::ClientContext context;\n")
	p.Print(cv, "std::unique_ptr<grpc::ClientWriter<$request$>> writer(stub->$method_name$(&context, &response));\n")
	writeRequests(p, cv, "writer")
	p.NewLine()
	p.P("grpc::Status status = writer->Finish();\n")
	checkStatus(p, cv, "")
}

func readResponses(p *printer.Printer, v *printer.Vars, source string) {
	p.Print(v, "$response$ response;\n")
	p.P("int received = 0;\n")
	p.P("while (" + source + "->Read(&response)) {\n")
	p.Indent()
	p.P("received++;\n")
	p.Outdent()
	p.P("}\n")
}

func (Hooks) ServerStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.Print(cv, "$request$ request;\n")
	p.P("grpc::ClientContext context;\n")
	p.Print(cv, "$populate$(&request);\n")
	p.NewLine()
	p.Print(cv, "std::unique_ptr<grpc::ClientReader<$response$>> reader(stub->$method_name$(&context, request));\n")
	readResponses(p, cv, "reader")
	p.P("grpc::Status status = reader->Finish();\n")
	checkStatus(p, cv, ` << ": received " << received << " responses"`)
}

func (Hooks) BidiStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.P("grpc::ClientContext context;\n")
	p.Print(cv, "std::shared_ptr<grpc::ClientReaderWriter<$request$, $response$>> stream(\n")
	p.Print(cv, "    stub->$method_name$(&context));\n")
	p.NewLine()
	p.P("std::thread writer([stream]() {\n")
	p.Indent()
	writeRequests(p, cv, "stream")
	p.Outdent()
	p.P("});\n")
	p.NewLine()
	readResponses(p, cv, "stream")
	p.P("writer.join();\n")
	p.P("grpc::Status status = stream->Finish();\n")
	checkStatus(p, cv, ` << ": received " << received << " responses"`)
}
