// Package python renders probers for grpcio, importing the grpc_tools.protoc
// output modules of the source file and of the imported files whose types it
// names.
package python

import (
	"path"
	"strings"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/jptrs93/protoprober/internal/printer"
)

type Hooks struct{}

var _ generate.Hooks = Hooks{}

func (Hooks) Name() string { return "python" }

func (Hooks) Suffix() string { return ".grpc.client.pb.py" }

func (Hooks) IndentUnit() string { return "    " }

func (Hooks) CommentPrefix() string { return "# " }

func (Hooks) Supports(generate.Shape) bool { return true }

func (Hooks) Sentinels(varied bool) generate.Sentinels {
	return generate.NewSentinels(generate.LiteralStyle{
		True:  "True",
		Bytes: func(s string) string { return "b\"" + s + "\"" },
	}, varied)
}

// modules binds pb2 and pb2_grpc to the generated module names.
func modules(v *printer.Vars) *printer.Vars {
	base := v.Get("proto_basename")
	return v.With("pb2", base+"_pb2", "pb2_grpc", base+"_pb2_grpc")
}

// module is the name a type's generated module is bound to: the source
// file's own pb2 module, or the dependency alias plus _pb2.
func module(v *printer.Vars, dep string) string {
	if dep == "" {
		return v.Get("proto_basename") + "_pb2"
	}
	return dep + "_pb2"
}

func populateName(ref string) string {
	return "Populate" + ir.FlatName(ref)
}

// keywords are the reserved words of Python 3. protobuf exposes fields named
// after them only through getattr and setattr.
var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// fieldVars binds field, the expression reading the current field of message.
func fieldVars(v *printer.Vars) *printer.Vars {
	name := v.Get("field_name")
	if keywords[name] {
		return v.With("field", "getattr(message, '"+name+"')")
	}
	return v.With("field", "message."+name)
}

func (Hooks) Package(p *printer.Printer, v *printer.Vars) {}

func (Hooks) Imports(p *printer.Printer, v *printer.Vars) {
	p.P("import argparse\n")
	p.P("import queue\n")
	p.P("import threading\n\n")
	p.P("import grpc\n\n")
	mv := modules(v)
	dir := path.Dir(v.Get("proto_filename_without_ext"))
	if dir == "." {
		p.Print(mv, "import $pb2$\n")
		p.Print(mv, "import $pb2_grpc$\n")
		return
	}
	mv.Set("module_dir", strings.ReplaceAll(dir, "/", "."))
	p.Print(mv, "from $module_dir$ import $pb2$\n")
	p.Print(mv, "from $module_dir$ import $pb2_grpc$\n")
}

func (Hooks) ImportDependency(p *printer.Printer, v *printer.Vars) {
	dv := v.With(
		"dep_module", v.Get("dep_proto_basename")+"_pb2",
		"dep_as", "",
	)
	if alias := v.Get("dep_alias") + "_pb2"; alias != dv.Get("dep_module") {
		dv.Set("dep_as", " as "+alias)
	}
	dir := path.Dir(v.Get("dep_proto_filename_without_ext"))
	if dir == "." {
		p.Print(dv, "import $dep_module$$dep_as$\n")
		return
	}
	dv.Set("dep_dir", strings.ReplaceAll(dir, "/", "."))
	p.Print(dv, "from $dep_dir$ import $dep_module$$dep_as$\n")
}

func (Hooks) Flags(p *printer.Printer, v *printer.Vars) {
	p.NewLine()
	p.Print(v, "parser = argparse.ArgumentParser(description='gRPC prober for $proto_filename$')\n")
	p.P("parser.add_argument('--use_tls', action='store_true',\n" +
		"                    help='Connection uses TLS if set, else plain TCP.')\n")
	p.P("parser.add_argument('--custom_ca_file', default='',\n" +
		"                    help='File holding the root certificates to trust when using TLS.')\n")
	p.P("parser.add_argument('--server_host', default='127.0.0.1',\n" +
		"                    help='Server host to connect to.')\n")
	p.P("parser.add_argument('--server_port', type=int, default=8080,\n" +
		"                    help='Server port.')\n")
	p.P("parser.add_argument('--server_host_override', default='',\n" +
		"                    help='The server name used to verify the hostname returned by the TLS handshake.')\n\n\n")
}

func (Hooks) Trailer(p *printer.Printer, v *printer.Vars) {
	p.P("if __name__ == '__main__':\n")
	p.Indent()
	p.P("main()\n")
	p.Outdent()
}

func (Hooks) StartPrint(p *printer.Printer, v *printer.Vars) { p.P("print(\"") }

func (Hooks) EndPrint(p *printer.Printer, v *printer.Vars) { p.P("\")\n") }

func (Hooks) EndFunction(p *printer.Printer, v *printer.Vars) {
	p.Outdent()
	p.NewLine()
}

func (Hooks) Return(p *printer.Printer, v *printer.Vars) { p.P("return\n") }

func (Hooks) DeclarePopulateFunction(p *printer.Printer, v *printer.Vars) {}

func (Hooks) StartPopulateFunction(p *printer.Printer, v *printer.Vars) {
	p.Print(v.With("populate", populateName(v.Get("message_ref"))), "def $populate$(message):\n")
	p.Indent()
}

func (h Hooks) EndPopulateFunction(p *printer.Printer, v *printer.Vars) {
	p.P("return message\n")
	h.EndFunction(p, v)
}

func (Hooks) EmptyMessage(p *printer.Printer, v *printer.Vars) {
	p.P("message.SetInParent()\n")
}

func assign(p *printer.Printer, v *printer.Vars, value string, repeated bool) {
	fv := fieldVars(v).Set("value", value)
	switch {
	case repeated:
		p.Print(fv, "$field$.append($value$)\n")
		p.Print(fv, "$field$.append($value$)\n")
	case keywords[v.Get("field_name")]:
		p.Print(fv, "setattr(message, '$field_name$', $value$)\n")
	default:
		p.Print(fv, "$field$ = $value$\n")
	}
}

func (Hooks) PopulateScalar(p *printer.Printer, v *printer.Vars, repeated bool) {
	assign(p, v, v.Get("data"), repeated)
}

func (Hooks) PopulateEnum(p *printer.Printer, v *printer.Vars, repeated bool) {
	assign(p, v, module(v, v.Get("enum_dep"))+"."+v.Get("enum_value_type"), repeated)
}

func (Hooks) PopulateMessage(p *printer.Printer, v *printer.Vars, repeated bool) {
	fv := fieldVars(v).Set("populate", populateName(v.Get("field_message_ref")))
	if repeated {
		p.Print(fv, "$populate$($field$.add())\n")
		p.Print(fv, "$populate$($field$.add())\n")
		return
	}
	p.Print(fv, "$populate$($field$)\n")
}

func (Hooks) StartMethodProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "def Probe$service_name$_$method_name$(stub):\n")
	p.Indent()
}

func (Hooks) StartServiceProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "def Probe$service_name$(channel):\n")
	p.Indent()
}

func (Hooks) CreateStub(p *printer.Printer, v *printer.Vars) {
	p.Print(modules(v), "stub = $pb2_grpc$.$service_name$Stub(channel)\n")
}

func (Hooks) CallMethodProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "Probe$service_name$_$method_name$(stub)\n")
}

func (Hooks) CallServiceProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "Probe$service_name$(channel)\n")
}

func (Hooks) StartMain(p *printer.Printer, v *printer.Vars) {
	p.P("def main():\n")
	p.Indent()
}

func (Hooks) ParseFlags(p *printer.Printer, v *printer.Vars) {
	p.P("args = parser.parse_args()\n")
}

func (Hooks) CreateChannel(p *printer.Printer, v *printer.Vars) {
	p.P("target = '%s:%d' % (args.server_host, args.server_port)\n")
	p.P("if args.use_tls:\n")
	p.Indent()
	p.P("root_certificates = None\n")
	p.P("if args.custom_ca_file:\n")
	p.Indent()
	p.P("with open(args.custom_ca_file, 'rb') as f:\n")
	p.Indent()
	p.P("root_certificates = f.read()\n")
	p.Outdent()
	p.Outdent()
	p.P("options = []\n")
	p.P("if args.server_host_override:\n")
	p.Indent()
	p.P("options.append(('grpc.ssl_target_name_override', args.server_host_override))\n")
	p.Outdent()
	p.P("credentials = grpc.ssl_channel_credentials(root_certificates=root_certificates)\n")
	p.P("channel = grpc.secure_channel(target, credentials, options=options)\n")
	p.Outdent()
	p.P("else:\n")
	p.Indent()
	p.P("channel = grpc.insecure_channel(target)\n")
	p.Outdent()
}

func callVars(v *printer.Vars) *printer.Vars {
	return modules(v).
		Set("populate", populateName(v.Get("request_ref"))).
		Set("request_module", module(v, v.Get("request_dep")))
}

func newRequest(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "request = $request_module$.$request_type$()\n")
	p.Print(v, "$populate$(request)\n")
}

func printFailure(p *printer.Printer, errVar string) {
	p.P("print(\"\\t\\tFailed: %s: %s\" % (" + errVar + ".code(), " + errVar + ".details()))\n")
}

func (Hooks) UnaryUnary(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	newRequest(p, cv)
	p.NewLine()
	p.P("try:\n")
	p.Indent()
	p.Print(cv, "stub.$method_name$(request)\n")
	p.P("print(\"\\t\\tSuccess\")\n")
	p.Outdent()
	p.P("except grpc.RpcError as e:\n")
	p.Indent()
	printFailure(p, "e")
	p.Outdent()
}

// requestLoop emits a loop building send_count populated requests and
// handing each to emit.
func requestLoop(p *printer.Printer, v *printer.Vars, emit string) {
	p.Print(v, "for _ in range($send_count$):\n")
	p.Indent()
	newRequest(p, v)
	p.P(emit)
	p.Outdent()
}

func (Hooks) ClientStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.P("def requests():\n")
	p.Indent()
	requestLoop(p, cv, "yield request\n")
	p.Outdent()
	p.NewLine()
	p.P("try:\n")
	p.Indent()
	p.Print(cv, "stub.$method_name$(requests())\n")
	p.P("print(\"\\t\\tSuccess\")\n")
	p.Outdent()
	p.P("except grpc.RpcError as e:\n")
	p.Indent()
	printFailure(p, "e")
	p.Outdent()
}

func (Hooks) ServerStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	newRequest(p, cv)
	p.NewLine()
	p.P("received = 0\n")
	p.P("try:\n")
	p.Indent()
	p.Print(cv, "for _ in stub.$method_name$(request):\n")
	p.Indent()
	p.P("received += 1\n")
	p.Outdent()
	p.P("print(\"\\t\\tSuccess: received %d responses\" % received)\n")
	p.Outdent()
	p.P("except grpc.RpcError as e:\n")
	p.Indent()
	printFailure(p, "e")
	p.Outdent()
}

func (Hooks) BidiStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.P("requests = queue.Queue()\n\n")
	p.P("def produce():\n")
	p.Indent()
	requestLoop(p, cv, "requests.put(request)\n")
	p.P("requests.put(None)\n")
	p.Outdent()
	p.NewLine()
	p.P("producer = threading.Thread(target=produce)\n")
	p.P("producer.start()\n")
	p.NewLine()
	p.P("received = 0\n")
	p.P("error = None\n")
	p.P("try:\n")
	p.Indent()
	p.Print(cv, "for _ in stub.$method_name$(iter(requests.get, None)):\n")
	p.Indent()
	p.P("received += 1\n")
	p.Outdent()
	p.Outdent()
	p.P("except grpc.RpcError as e:\n")
	p.Indent()
	p.P("error = e\n")
	p.Outdent()
	p.P("producer.join()\n")
	p.NewLine()
	p.P("if error is None:\n")
	p.Indent()
	p.P("print(\"\\t\\tSuccess: received %d responses\" % received)\n")
	p.Outdent()
	p.P("else:\n")
	p.Indent()
	printFailure(p, "error")
	p.Outdent()
}
