package jsg

import (
	"strconv"

	"github.com/iancoleman/strcase"
	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/jptrs93/protoprober/internal/printer"
)

// Hooks renders a Node.js prober on @grpc/grpc-js that loads the proto source
// at runtime through @grpc/proto-loader. Messages are plain objects keyed by
// lowerCamel field names and enums are passed by value name.
type Hooks struct{}

var _ generate.Hooks = Hooks{}

func (Hooks) Name() string { return "node" }

func (Hooks) Suffix() string { return ".grpc.client.pb.js" }

func (Hooks) IndentUnit() string { return "  " }

func (Hooks) CommentPrefix() string { return "// " }

func (Hooks) Supports(generate.Shape) bool { return true }

func (Hooks) Sentinels(varied bool) generate.Sentinels {
	return generate.NewSentinels(generate.LiteralStyle{
		True:  "true",
		Bytes: func(s string) string { return "Buffer.from(" + strconv.Quote(s) + ")" },
	}, varied)
}

func populateName(ref string) string {
	return "populate" + ir.FlatName(ref)
}

func (Hooks) Package(p *printer.Printer, v *printer.Vars) {
	p.P("'use strict';\n\n")
}

func (Hooks) Imports(p *printer.Printer, v *printer.Vars) {
	p.P("const fs = require('fs');\n")
	p.P("const { once } = require('events');\n")
	p.P("const { parseArgs } = require('util');\n\n")
	p.P("const grpc = require('@grpc/grpc-js');\n")
	p.P("const protoLoader = require('@grpc/proto-loader');\n\n")
}

// ImportDependency adds nothing: proto-loader resolves imports itself.
func (Hooks) ImportDependency(p *printer.Printer, v *printer.Vars) {}

func (Hooks) Flags(p *printer.Printer, v *printer.Vars) {
	p.P("const flags = {\n")
	p.Indent()
	p.P("use_tls: { type: 'boolean', default: false },\n")
	p.P("custom_ca_file: { type: 'string', default: '' },\n")
	p.P("server_host: { type: 'string', default: '127.0.0.1' },\n")
	p.P("server_port: { type: 'string', default: '8080' },\n")
	p.P("server_host_override: { type: 'string', default: '' },\n")
	p.P("proto_path: { type: 'string', default: '.' },\n")
	p.Outdent()
	p.P("};\n\n")
}

func (Hooks) Trailer(p *printer.Printer, v *printer.Vars) {
	p.P("main().catch((err) => {\n")
	p.Indent()
	p.P("console.error(err);\n")
	p.P("process.exitCode = 1;\n")
	p.Outdent()
	p.P("});\n")
}

func (Hooks) StartPrint(p *printer.Printer, v *printer.Vars) { p.P("console.log('") }

func (Hooks) EndPrint(p *printer.Printer, v *printer.Vars) { p.P("');\n") }

func (Hooks) EndFunction(p *printer.Printer, v *printer.Vars) {
	p.Outdent()
	p.P("}\n")
}

func (Hooks) Return(p *printer.Printer, v *printer.Vars) { p.P("return;\n") }

func (Hooks) DeclarePopulateFunction(p *printer.Printer, v *printer.Vars) {}

func (Hooks) StartPopulateFunction(p *printer.Printer, v *printer.Vars) {
	p.Print(v.With("populate", populateName(v.Get("message_ref"))), "function $populate$() {\n")
	p.Indent()
	p.P("const message = {};\n")
}

func (Hooks) EndPopulateFunction(p *printer.Printer, v *printer.Vars) {
	p.P("return message;\n")
	p.Outdent()
	p.P("}\n")
}

func (Hooks) EmptyMessage(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "// $message_name$ has no fields.\n")
}

// assign stores value under the lowerCamel field name proto-loader expects.
func assign(p *printer.Printer, v *printer.Vars, value string, repeated bool) {
	fv := v.With("js_field", strcase.ToLowerCamel(v.Get("field_name")), "value", value)
	if repeated {
		p.Print(fv, "message.$js_field$ = [$value$, $value$];\n")
		return
	}
	p.Print(fv, "message.$js_field$ = $value$;\n")
}

func (Hooks) PopulateScalar(p *printer.Printer, v *printer.Vars, repeated bool) {
	assign(p, v, v.Get("data"), repeated)
}

func (Hooks) PopulateEnum(p *printer.Printer, v *printer.Vars, repeated bool) {
	assign(p, v, "'"+v.Get("enum_value")+"'", repeated)
}

func (Hooks) PopulateMessage(p *printer.Printer, v *printer.Vars, repeated bool) {
	assign(p, v, populateName(v.Get("field_message_ref"))+"()", repeated)
}

func probeName(v *printer.Vars) *printer.Vars {
	return v.With("probe", "probe"+v.Get("service_name")+"_"+v.Get("method_name"))
}

func (Hooks) StartMethodProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(probeName(v), "async function $probe$(stub) {\n")
	p.Indent()
}

func (Hooks) StartServiceProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "async function probe$service_name$(channel) {\n")
	p.Indent()
}

func (Hooks) CreateStub(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "const stub = new channel.proto.$service_full_name$(channel.target, channel.credentials, channel.options);\n")
}

func (Hooks) CallMethodProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(probeName(v), "await $probe$(stub);\n")
}

func (Hooks) CallServiceProbe(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "await probe$service_name$(channel);\n")
}

func (Hooks) StartMain(p *printer.Printer, v *printer.Vars) {
	p.P("async function main() {\n")
	p.Indent()
}

func (Hooks) ParseFlags(p *printer.Printer, v *printer.Vars) {
	p.P("const { values: args } = parseArgs({ options: flags });\n")
}

func (Hooks) CreateChannel(p *printer.Printer, v *printer.Vars) {
	p.Print(v, "const packageDefinition = protoLoader.loadSync('$proto_filename$', {\n")
	p.Indent()
	p.P("includeDirs: [args.proto_path],\n")
	p.P("keepCase: false,\n")
	p.P("longs: String,\n")
	p.P("enums: String,\n")
	p.P("defaults: true,\n")
	p.P("oneofs: true,\n")
	p.Outdent()
	p.P("});\n")
	p.P("let credentials = grpc.credentials.createInsecure();\n")
	p.P("const options = {};\n")
	p.P("if (args.use_tls) {\n")
	p.Indent()
	p.P("const rootCerts = args.custom_ca_file ? fs.readFileSync(args.custom_ca_file) : null;\n")
	p.P("credentials = grpc.credentials.createSsl(rootCerts);\n")
	p.P("if (args.server_host_override) {\n")
	p.Indent()
	p.P("options['grpc.ssl_target_name_override'] = args.server_host_override;\n")
	p.Outdent()
	p.P("}\n")
	p.Outdent()
	p.P("}\n")
	p.P("const channel = {\n")
	p.Indent()
	p.P("proto: grpc.loadPackageDefinition(packageDefinition),\n")
	p.P("target: args.server_host + ':' + args.server_port,\n")
	p.P("credentials,\n")
	p.P("options,\n")
	p.Outdent()
	p.P("};\n")
}

func callVars(v *printer.Vars) *printer.Vars {
	return v.With("populate", populateName(v.Get("request_ref")))
}

// settle emits a try/catch around body that reports success or the gRPC
// status of the failure.
func settle(p *printer.Printer, success string, body func()) {
	p.P("try {\n")
	p.Indent()
	body()
	p.P("console.log(" + success + ");\n")
	p.Outdent()
	p.P("} catch (err) {\n")
	p.Indent()
	p.P("console.log('\\t\\tFailed: ' + err.code + ': ' + err.details);\n")
	p.Outdent()
	p.P("}\n")
}

func (Hooks) UnaryUnary(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.Print(cv, "const request = $populate$();\n")
	settle(p, "'\\t\\tSuccess'", func() {
		p.P("await new Promise((resolve, reject) => {\n")
		p.Indent()
		p.Print(cv, "stub.$method_name$(request, (err, response) => (err ? reject(err) : resolve(response)));\n")
		p.Outdent()
		p.P("});\n")
	})
}

func (Hooks) ClientStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	settle(p, "'\\t\\tSuccess'", func() {
		p.P("await new Promise((resolve, reject) => {\n")
		p.Indent()
		p.Print(cv, "const call = stub.$method_name$((err, response) => (err ? reject(err) : resolve(response)));\n")
		p.Print(cv, "for (let i = 0; i < $send_count$; i++) {\n")
		p.Indent()
		p.Print(cv, "call.write($populate$());\n")
		p.Outdent()
		p.P("}\n")
		p.P("call.end();\n")
		p.Outdent()
		p.P("});\n")
	})
}

func (Hooks) ServerStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.Print(cv, "const call = stub.$method_name$($populate$());\n")
	p.P("let received = 0;\n")
	settle(p, "'\\t\\tSuccess: received ' + received + ' responses'", func() {
		p.P("for await (const response of call) {\n")
		p.Indent()
		p.P("received++;\n")
		p.Outdent()
		p.P("}\n")
	})
}

func (Hooks) BidiStreaming(p *printer.Printer, v *printer.Vars) {
	cv := callVars(v)
	p.Print(cv, "const call = stub.$method_name$();\n")
	p.P("const producer = (async () => {\n")
	p.Indent()
	p.Print(cv, "for (let i = 0; i < $send_count$; i++) {\n")
	p.Indent()
	p.Print(cv, "if (!call.write($populate$())) {\n")
	p.Indent()
	p.P("await once(call, 'drain');\n")
	p.Outdent()
	p.P("}\n")
	p.Outdent()
	p.P("}\n")
	p.P("call.end();\n")
	p.Outdent()
	p.P("})();\n")
	p.NewLine()
	p.P("let received = 0;\n")
	p.P("let failure = null;\n")
	p.P("try {\n")
	p.Indent()
	p.P("for await (const response of call) {\n")
	p.Indent()
	p.P("received++;\n")
	p.Outdent()
	p.P("}\n")
	p.Outdent()
	p.P("} catch (err) {\n")
	p.Indent()
	p.P("failure = err;\n")
	p.Outdent()
	p.P("}\n")
	p.P("await producer.catch((err) => {\n")
	p.Indent()
	p.P("failure = failure || err;\n")
	p.Outdent()
	p.P("});\n")
	p.NewLine()
	p.P("if (failure === null) {\n")
	p.Indent()
	p.P("console.log('\\t\\tSuccess: received ' + received + ' responses');\n")
	p.Outdent()
	p.P("} else {\n")
	p.Indent()
	p.P("console.log('\\t\\tFailed: ' + failure.code + ': ' + failure.details);\n")
	p.Outdent()
	p.P("}\n")
}
