package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jptrs93/protoprober/internal/ir"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"
)

type Parser struct {
	ImportPaths []string
}

func (p *Parser) Parse(ctx context.Context, filePaths []string) ([]ir.File, error) {
	resolver := &protocompile.SourceResolver{
		ImportPaths: p.ImportPaths,
		Accessor: func(path string) (io.ReadCloser, error) {
			if path == optionsProtoPath || strings.HasSuffix(path, string(os.PathSeparator)+optionsProtoPath) {
				return io.NopCloser(strings.NewReader(optionsProtoSource)), nil
			}
			return os.Open(path)
		},
	}
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(resolver),
	}
	files, err := compiler.Compile(ctx, filePaths...)
	if err != nil {
		return nil, err
	}

	var result []ir.File
	for _, file := range files {
		irFile, err := FromDescriptor(file)
		if err != nil {
			return nil, err
		}
		result = append(result, irFile)
	}
	return result, nil
}

// FromDescriptor converts a linked file descriptor, including the types of
// every file it transitively imports.
func FromDescriptor(file protoreflect.FileDescriptor) (ir.File, error) {
	out, err := typesToIR(file)
	if err != nil {
		return ir.File{}, err
	}
	services := file.Services()
	for i := 0; i < services.Len(); i++ {
		out.Services = append(out.Services, serviceToIR(services.Get(i)))
	}

	seen := map[string]bool{file.Path(): true}
	var walk func(imports protoreflect.FileImports) error
	walk = func(imports protoreflect.FileImports) error {
		for i := 0; i < imports.Len(); i++ {
			dep := imports.Get(i).FileDescriptor
			if seen[dep.Path()] {
				continue
			}
			seen[dep.Path()] = true
			depIR, err := typesToIR(dep)
			if err != nil {
				return err
			}
			out.Imported = append(out.Imported, depIR)
			if err := walk(dep.Imports()); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(file.Imports()); err != nil {
		return ir.File{}, err
	}
	return out, nil
}

func typesToIR(file protoreflect.FileDescriptor) (ir.File, error) {
	pkg := string(file.Package())
	out := ir.File{
		Path:         file.Path(),
		Package:      pkg,
		GoImportPath: goImportPath(file),
		Enums:        collectEnums(file.Enums(), pkg),
	}
	msgs, enums, err := collectMessages(file.Messages(), pkg)
	if err != nil {
		return ir.File{}, err
	}
	out.Messages = msgs
	out.Enums = append(out.Enums, enums...)
	return out, nil
}

func serviceToIR(svc protoreflect.ServiceDescriptor) ir.Service {
	out := ir.Service{
		Name:     string(svc.Name()),
		FullName: string(svc.FullName()),
	}
	methods := svc.Methods()
	for i := 0; i < methods.Len(); i++ {
		m := methods.Get(i)
		if skipMethod(m) {
			continue
		}
		out.Methods = append(out.Methods, ir.Method{
			Name:            string(m.Name()),
			Input:           string(m.Input().FullName()),
			Output:          string(m.Output().FullName()),
			ClientStreaming: m.IsStreamingClient(),
			ServerStreaming: m.IsStreamingServer(),
		})
	}
	return out
}

func collectEnums(enums protoreflect.EnumDescriptors, pkg string) []ir.Enum {
	var result []ir.Enum
	for i := 0; i < enums.Len(); i++ {
		enum := enums.Get(i)
		irEnum := ir.Enum{
			Name:     string(enum.Name()),
			FullName: string(enum.FullName()),
			TypeName: ir.RelativeName(pkg, string(enum.FullName())),
			Package:  pkg,
		}
		values := enum.Values()
		for j := 0; j < values.Len(); j++ {
			v := values.Get(j)
			irEnum.Values = append(irEnum.Values, ir.EnumValue{Name: string(v.Name()), Number: int32(v.Number())})
		}
		result = append(result, irEnum)
	}
	return result
}

// collectMessages flattens messages and their nested types in declaration
// order. Map entries are left out.
func collectMessages(messages protoreflect.MessageDescriptors, pkg string) ([]ir.Message, []ir.Enum, error) {
	var msgs []ir.Message
	var enums []ir.Enum
	for i := 0; i < messages.Len(); i++ {
		msg := messages.Get(i)
		if msg.IsMapEntry() {
			continue
		}
		fields, err := collectFields(msg.Fields())
		if err != nil {
			return nil, nil, err
		}
		msgs = append(msgs, ir.Message{
			Name:     string(msg.Name()),
			FullName: string(msg.FullName()),
			TypeName: ir.RelativeName(pkg, string(msg.FullName())),
			Package:  pkg,
			Fields:   fields,
		})
		enums = append(enums, collectEnums(msg.Enums(), pkg)...)

		nestedMsgs, nestedEnums, err := collectMessages(msg.Messages(), pkg)
		if err != nil {
			return nil, nil, err
		}
		msgs = append(msgs, nestedMsgs...)
		enums = append(enums, nestedEnums...)
	}
	return msgs, enums, nil
}

func collectFields(fields protoreflect.FieldDescriptors) ([]ir.Field, error) {
	var result []ir.Field
	for i := 0; i < fields.Len(); i++ {
		field := fields.Get(i)
		kind, err := kindFromField(field)
		if err != nil {
			return nil, err
		}
		var oneof string
		if o := field.ContainingOneof(); o != nil && !o.IsSynthetic() {
			oneof = string(o.Name())
		}
		var msgName, enumName string
		switch {
		case field.IsMap():
		case kind == ir.KindMessage:
			msgName = string(field.Message().FullName())
		case kind == ir.KindEnum:
			enumName = string(field.Enum().FullName())
		}
		isOptional := field.HasPresence() && oneof == "" && !field.IsList() && !field.IsMap() && kind != ir.KindMessage
		result = append(result, ir.Field{
			Name:            string(field.Name()),
			Number:          int(field.Number()),
			Kind:            kind,
			IsRepeated:      field.IsList(),
			IsOptional:      isOptional,
			IsMap:           field.IsMap(),
			Oneof:           oneof,
			MessageFullName: msgName,
			EnumFullName:    enumName,
		})
	}
	return result, nil
}

func kindFromField(field protoreflect.FieldDescriptor) (ir.Kind, error) {
	switch field.Kind() {
	case protoreflect.BoolKind:
		return ir.KindBool, nil
	case protoreflect.Int32Kind:
		return ir.KindInt32, nil
	case protoreflect.Int64Kind:
		return ir.KindInt64, nil
	case protoreflect.Uint32Kind:
		return ir.KindUint32, nil
	case protoreflect.Uint64Kind:
		return ir.KindUint64, nil
	case protoreflect.Sint32Kind:
		return ir.KindSint32, nil
	case protoreflect.Sint64Kind:
		return ir.KindSint64, nil
	case protoreflect.Fixed32Kind:
		return ir.KindFixed32, nil
	case protoreflect.Fixed64Kind:
		return ir.KindFixed64, nil
	case protoreflect.Sfixed32Kind:
		return ir.KindSfixed32, nil
	case protoreflect.Sfixed64Kind:
		return ir.KindSfixed64, nil
	case protoreflect.FloatKind:
		return ir.KindFloat, nil
	case protoreflect.DoubleKind:
		return ir.KindDouble, nil
	case protoreflect.StringKind:
		return ir.KindString, nil
	case protoreflect.BytesKind:
		return ir.KindBytes, nil
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return ir.KindMessage, nil
	case protoreflect.EnumKind:
		return ir.KindEnum, nil
	default:
		return 0, fmt.Errorf("unsupported field kind %s: %s", field.Kind(), field.FullName())
	}
}
