package parser

import (
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

const optionsProtoPath = "protoprober/options.proto"

const optionsProtoSource = `
syntax = "proto3";

package protoprober;

import "google/protobuf/descriptor.proto";

extend google.protobuf.FileOptions {
  string go_import_path = 50100;
}

extend google.protobuf.MethodOptions {
  bool skip = 50110;
}
`

const (
	goImportPathField protowire.Number = 50100
	skipField         protowire.Number = 50110
)

// optionValue finds the extension numbered num on opts. Depending on who
// built the descriptor the option is either a populated extension field or
// still sitting in the unknown bytes.
func optionValue(opts proto.Message, num protowire.Number, kind protoreflect.Kind) (protoreflect.Value, bool) {
	var found protoreflect.Value
	var ok bool
	m := opts.ProtoReflect()
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if fd.IsExtension() && fd.Number() == num {
			found, ok = v, true
			return false
		}
		return true
	})
	if ok {
		return found, true
	}

	b := m.GetUnknown()
	for len(b) > 0 {
		n, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return protoreflect.Value{}, false
		}
		b = b[tagLen:]
		if n == num {
			switch {
			case typ == protowire.BytesType && kind == protoreflect.StringKind:
				s, l := protowire.ConsumeBytes(b)
				if l < 0 {
					return protoreflect.Value{}, false
				}
				found, ok = protoreflect.ValueOfString(string(s)), true
			case typ == protowire.VarintType && kind == protoreflect.BoolKind:
				x, l := protowire.ConsumeVarint(b)
				if l < 0 {
					return protoreflect.Value{}, false
				}
				found, ok = protoreflect.ValueOfBool(protowire.DecodeBool(x)), true
			}
		}
		valLen := protowire.ConsumeFieldValue(n, typ, b)
		if valLen < 0 {
			return protoreflect.Value{}, false
		}
		b = b[valLen:]
	}
	return found, ok
}

// goImportPath returns the import path of the protoc-gen-go package for file:
// the protoprober.go_import_path option when set, else the path part of
// go_package.
func goImportPath(file protoreflect.FileDescriptor) string {
	opts, ok := file.Options().(*descriptorpb.FileOptions)
	if !ok || opts == nil {
		return ""
	}
	if v, ok := optionValue(opts, goImportPathField, protoreflect.StringKind); ok && v.String() != "" {
		return v.String()
	}
	goPkg := opts.GetGoPackage()
	if i := strings.IndexByte(goPkg, ';'); i >= 0 {
		goPkg = goPkg[:i]
	}
	return strings.TrimSuffix(goPkg, "/")
}

func skipMethod(method protoreflect.MethodDescriptor) bool {
	opts, ok := method.Options().(*descriptorpb.MethodOptions)
	if !ok || opts == nil {
		return false
	}
	v, ok := optionValue(opts, skipField, protoreflect.BoolKind)
	return ok && v.Bool()
}
