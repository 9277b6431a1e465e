package gogen

import (
	"strconv"
	"strings"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/jptrs93/protoprober/internal/printer"
)

// Hooks renders a standalone main package that imports the protoc-gen-go and
// protoc-gen-go-grpc output as pb. Packages of imported files are aliased as
// the dependency alias plus pb.
type Hooks struct{}

var _ generate.Hooks = Hooks{}

func (Hooks) Name() string { return "go" }

func (Hooks) Suffix() string { return ".grpc.client.pb.go" }

func (Hooks) IndentUnit() string { return "\t" }

func (Hooks) CommentPrefix() string { return "// " }

func (Hooks) Supports(generate.Shape) bool { return true }

func (Hooks) Sentinels(varied bool) generate.Sentinels {
	return generate.NewSentinels(generate.LiteralStyle{
		True:  "true",
		Bytes: func(s string) string { return "[]byte(" + strconv.Quote(s) + ")" },
	}, varied)
}

// optionalWrappers maps a scalar kind to the proto helper that returns a
// pointer to its argument.
var optionalWrappers = map[string]string{
	"bool":     "proto.Bool",
	"int32":    "proto.Int32",
	"sint32":   "proto.Int32",
	"sfixed32": "proto.Int32",
	"int64":    "proto.Int64",
	"sint64":   "proto.Int64",
	"sfixed64": "proto.Int64",
	"uint32":   "proto.Uint32",
	"fixed32":  "proto.Uint32",
	"uint64":   "proto.Uint64",
	"fixed64":  "proto.Uint64",
	"float":    "proto.Float32",
	"double":   "proto.Float64",
	"string":   "proto.String",
}

func populateName(ref string) string {
	return "Populate" + ir.GoTypeName(ref)
}

// qualifier names the Go package declaring a type with the given dependency
// alias.
func qualifier(dep string) string {
	if dep == "" {
		return "pb"
	}
	return dep + "pb"
}

func (Hooks) Package(p *printer.Printer, v *printer.Vars) {
	p.P("package main\n\n")
}

// Imports leaves the import block open for ImportDependency; Flags closes it.
func (Hooks) Imports(p *printer.Printer, v *printer.Vars) {
	importPath := v.Get("go_import_path")
	if importPath == "" {
		importPath = v.Get("proto_filename_without_ext")
	}
	p.P("import (\n")
	p.Indent()
	for _, pkg := range []string{"context", "flag", "fmt", "io", "log", "net", "strconv"} {
		p.Print(v.With("import", pkg), "\"$import$\"\n")
	}
	p.NewLine()
	p.P("\"google.golang.org/grpc\"\n")
	p.P("\"google.golang.org/grpc/credentials\"\n")
	p.P("\"google.golang.org/grpc/credentials/insecure\"\n")
	p.P("\"google.golang.org/protobuf/proto\"\n")
	p.NewLine()
	p.Print(v.With("import", importPath), "pb \"$import$\"\n")
}

func (Hooks) ImportDependency(p *printer.Printer, v *printer.Vars) {
	p.Print(v.With("qualifier", qualifier(v.Get("dep_alias"))), "$qualifier$ \"$dep_go_import_path$\"\n")
}

func (Hooks) Flags(p *printer.Printer, v *printer.Vars) {
	p.Outdent()
	p.P(")\n\n")
	p.P("var (\n")
	p.Indent()
	p.P("_ = context.Background\n")
	p.P("_ = io.EOF\n")
	p.P("_ = proto.Bool\n")
	p.Outdent()
	p.P(")\n\n")
	p.P("var (\n")
	p.Indent()
	p.P("useTLS             = flag.Bool(\"use_tls\", false, \"Connection uses TLS if true, else plain TCP.\")\n")
	p.P("customCAFile       = flag.String(\"custom_ca_file\", \"\", \"File holding the root certificates to trust when using TLS.\")\n")
	p.P("serverHost         = flag.String(\"server_host\", \"127.0.0.1\", \"Server host to connect to.\")\n")
	p.P("serverPort         = flag.Int(\"server_port\", 8080, \"Server port.\")\n")
	p.P("serverHostOverride = flag.String(\"server_host_override\", \"\", \"The server name used to verify the hostname returned by the TLS handshake.\")\n")
	p.Outdent()
	p.P(")\n\n")
}

func (Hooks) Trailer(p *printer.Printer, v *printer.Vars) {}

func (Hooks) StartPrint(p *printer.Printer, v *printer.Vars) { p.P("fmt.Println(\"") }

func (Hooks) EndPrint(p *printer.Printer, v *printer.Vars) { p.P("\")\n") }

func (Hooks) EndFunction(p *printer.Printer, v *printer.Vars) {
	p.Outdent()
	p.P("}\n")
}

func (Hooks) Return(p *printer.Printer, v *printer.Vars) { p.P("return\n") }

func helperVars(v *printer.Vars) *printer.Vars {
	return v.With(
		"populate", populateName(v.Get("message_ref")),
		"go_type", qualifier(v.Get("message_dep"))+"."+ir.GoTypeName(v.Get("message_type")),
	)
}

func (Hooks) DeclarePopulateFunction(p *printer.Printer, v *printer.Vars) {}

func (Hooks) StartPopulateFunction(p *printer.Printer, v *printer.Vars) {
	hv := helperVars(v)
	p.Print(hv, "func $populate$() *$go_type$ {\n")
	p.Indent()
	p.Print(hv, "message := &$go_type${}\n")
}

func (Hooks) EndPopulateFunction(p *printer.Printer, v *printer.Vars) {
	p.P("return message\n")
	p.Outdent()
	p.P("}\n")
}

func (Hooks) EmptyMessage(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "// $message_name$ has no fields.\n")
}

// assign emits the statement storing value in the current field. Oneof
// members go through their wrapper type; repeated fields get value twice.
func assign(p *printer.Printer, v *printer.Vars, value string, repeated bool) {
	fv := v.With(
		"go_field", ir.GoCamelCase(v.Get("field_name")),
		"value", value,
	)
	switch {
	case repeated:
		p.Print(fv, "message.$go_field$ = append(message.$go_field$, $value$, $value$)\n")
	case v.Get("field_oneof") != "":
		fv.Set("go_oneof", ir.GoCamelCase(v.Get("field_oneof"))).
			Set("go_wrapper", qualifier(v.Get("message_dep"))+"."+ir.GoTypeName(v.Get("message_type"))+"_"+fv.Get("go_field"))
		p.Print(fv, "message.$go_oneof$ = &$go_wrapper${$go_field$: $value$}\n")
	default:
		p.Print(fv, "message.$go_field$ = $value$\n")
	}
}

func optional(v *printer.Vars, repeated bool) bool {
	return !repeated && v.Get("field_optional") == "true" && v.Get("field_oneof") == ""
}

func (Hooks) PopulateScalar(p *printer.Printer, v *printer.Vars, repeated bool) {
	value := v.Get("data")
	if wrapper, ok := optionalWrappers[v.Get("field_kind")]; ok && optional(v, repeated) {
		value = wrapper + "(" + value + ")"
	}
	assign(p, v, value, repeated)
}

// enumValueIdent follows protoc-gen-go: values of a nested enum are prefixed
// with the enclosing message, values of a top-level enum with the enum.
func enumValueIdent(v *printer.Vars) string {
	prefix := v.Get("enum_type")
	if i := strings.LastIndexByte(prefix, '.'); i >= 0 {
		prefix = prefix[:i]
	}
	return qualifier(v.Get("enum_dep")) + "." + ir.GoTypeName(prefix) + "_" + v.Get("enum_value")
}

func (Hooks) PopulateEnum(p *printer.Printer, v *printer.Vars, repeated bool) {
	value := enumValueIdent(v)
	if optional(v, repeated) {
		value += ".Enum()"
	}
	assign(p, v, value, repeated)
}

func (Hooks) PopulateMessage(p *printer.Printer, v *printer.Vars, repeated bool) {
	assign(p, v, populateName(v.Get("field_message_ref"))+"()", repeated)
}

func serviceVars(v *printer.Vars) *printer.Vars {
	return v.With("go_service", ir.GoCamelCase(v.Get("service_name")))
}

func (Hooks) StartMethodProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(serviceVars(v), "func Probe$service_name$_$method_name$(stub pb.$go_service$Client) {\n")
	p.Indent()
}

func (Hooks) StartServiceProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "func Probe$service_name$(conn *grpc.ClientConn) {\n")
	p.Indent()
}

func (Hooks) CreateStub(p *printer.Printer, v *printer.Vars) {
	p.Print(serviceVars(v), "stub := pb.New$go_service$Client(conn)\n")
	if v.Get("method_count") == "0" {
		p.P("_ = stub\n")
	}
}

func (Hooks) CallMethodProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "Probe$service_name$_$method_name$(stub)\n")
}

func (Hooks) CallServiceProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "Probe$service_name$(conn)\n")
}

func (Hooks) StartMain(p *printer.Printer, v *printer.Vars) {
	p.P("func main() {\n")
	p.Indent()
}

func (Hooks) ParseFlags(p *printer.Printer, v *printer.Vars) {
	p.P("flag.Parse()\n")
}

func (Hooks) CreateChannel(p *printer.Printer, v *printer.Vars) {
	p.P("creds := insecure.NewCredentials()\n")
	p.P("if *useTLS {\n")
	p.Indent()
	p.P("creds = credentials.NewClientTLSFromCert(nil, *serverHostOverride)\n")
	p.P("if *customCAFile != \"\" {\n")
	p.Indent()
	p.P("var err error\n")
	p.P("creds, err = credentials.NewClientTLSFromFile(*customCAFile, *serverHostOverride)\n")
	p.P("if err != nil {\n")
	p.Indent()
	p.P("log.Fatalf(\"Failed to load CA file: %v\", err)\n")
	p.Outdent()
	p.P("}\n")
	p.Outdent()
	p.P("}\n")
	p.Outdent()
	p.P("}\n")
	p.P("conn, err := grpc.NewClient(net.JoinHostPort(*serverHost, strconv.Itoa(*serverPort)), grpc.WithTransportCredentials(creds))\n")
	p.P("if err != nil {\n")
	p.Indent()
	p.P("log.Fatalf(\"Failed to create channel: %v\", err)\n")
	p.Outdent()
	p.P("}\n")
	p.P("defer conn.Close()\n")
}

func callVars(v *printer.Vars) *printer.Vars {
	return v.With(
		"go_method", ir.GoCamelCase(v.Get("method_name")),
		"populate", populateName(v.Get("request_ref")),
	)
}

// failOn emits the check that reports err and leaves the probe.
func failOn(p *printer.Printer, cond string) {
	p.P("if " + cond + " {\n")
	p.Indent()
	p.P("fmt.Printf(\"\\t\\tFailed: %v\\n\", err)\n")
	p.P("return\n")
	p.Outdent()
	p.P("}\n")
}

func (Hooks) UnaryUnary(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.P("ctx := context.Background()\n")
	p.Print(cv, "request := $populate$()\n")
	p.NewLine()
	p.Print(cv, "_, err := stub.$go_method$(ctx, request)\n")
	failOn(p, "err != nil")
	p.P("fmt.Println(\"\\t\\tSuccess\")\n")
}

// sendRequests emits the loop writing send_count populated requests.
func sendRequests(p *printer.Printer, v *printer.Vars, onError string) {
	p.Print(v, "for i := 0; i < $send_count$; i++ {\n")
	p.Indent()
	p.Print(v, "if err := stream.Send($populate$()); err != nil {\n")
	p.Indent()
	p.P(onError)
	p.Outdent()
	p.P("}\n")
	p.Outdent()
	p.P("}\n")
}

func (Hooks) ClientStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.P("ctx := context.Background()\n")
	p.Print(cv, "stream, err := stub.$go_method$(ctx)\n")
	failOn(p, "err != nil")
	sendRequests(p, cv, "break\n")
	p.P("if _, err = stream.CloseAndRecv(); err != nil {\n")
	p.Indent()
	p.P("fmt.Printf(\"\\t\\tFailed: %v\\n\", err)\n")
	p.P("return\n")
	p.Outdent()
	p.P("}\n")
	p.P("fmt.Println(\"\\t\\tSuccess\")\n")
}

// receiveResponses emits the loop draining stream until EOF. Other errors go
// to onError.
func receiveResponses(p *printer.Printer, onError string) {
	p.P("received := 0\n")
	p.P("for {\n")
	p.Indent()
	p.P("_, err := stream.Recv()\n")
	p.P("if err == io.EOF {\n")
	p.Indent()
	p.P("break\n")
	p.Outdent()
	p.P("}\n")
	p.P("if err != nil {\n")
	p.Indent()
	p.P(onError)
	p.Outdent()
	p.P("}\n")
	p.P("received++\n")
	p.Outdent()
	p.P("}\n")
}

func (Hooks) ServerStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.P("ctx := context.Background()\n")
	p.Print(cv, "stream, err := stub.$go_method$(ctx, $populate$())\n")
	failOn(p, "err != nil")
	receiveResponses(p, "fmt.Printf(\"\\t\\tFailed: %v\\n\", err)\nreturn\n")
	p.P("fmt.Printf(\"\\t\\tSuccess: received %d responses\\n\", received)\n")
}

func (Hooks) BidiStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.P("ctx := context.Background()\n")
	p.Print(cv, "stream, err := stub.$go_method$(ctx)\n")
	failOn(p, "err != nil")
	p.NewLine()
	p.P("producer := make(chan error, 1)\n")
	p.P("go func() {\n")
	p.Indent()
	sendRequests(p, cv, "producer <- err\nreturn\n")
	p.P("producer <- stream.CloseSend()\n")
	p.Outdent()
	p.P("}()\n")
	p.NewLine()
	p.P("var recvErr error\n")
	receiveResponses(p, "recvErr = err\nbreak\n")
	p.P("sendErr := <-producer\n")
	p.NewLine()
	p.P("if recvErr != nil {\n")
	p.Indent()
	p.P("fmt.Printf(\"\\t\\tFailed: %v\\n\", recvErr)\n")
	p.P("return\n")
	p.Outdent()
	p.P("}\n")
	p.P("if sendErr != nil && sendErr != io.EOF {\n")
	p.Indent()
	p.P("fmt.Printf(\"\\t\\tFailed: %v\\n\", sendErr)\n")
	p.P("return\n")
	p.Outdent()
	p.P("}\n")
	p.P("fmt.Printf(\"\\t\\tSuccess: received %d responses\\n\", received)\n")
}
