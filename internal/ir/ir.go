package ir

import "fmt"

type File struct {
	Path         string    `yaml:"path"`
	Package      string    `yaml:"package,omitempty"`
	GoImportPath string    `yaml:"go_import_path,omitempty"`
	Services     []Service `yaml:"services,omitempty"`
	Enums        []Enum    `yaml:"enums,omitempty"`
	Messages     []Message `yaml:"messages,omitempty"`
	// Imported holds the messages and enums of every transitive dependency.
	Imported []File `yaml:"imported,omitempty"`
}

type Service struct {
	Name     string   `yaml:"name"`
	FullName string   `yaml:"full_name"`
	Methods  []Method `yaml:"methods,omitempty"`
}

type Method struct {
	Name            string `yaml:"name"`
	Input           string `yaml:"input"`
	Output          string `yaml:"output"`
	ClientStreaming bool   `yaml:"client_streaming,omitempty"`
	ServerStreaming bool   `yaml:"server_streaming,omitempty"`
}

type Enum struct {
	Name     string      `yaml:"name"`
	FullName string      `yaml:"full_name"`
	TypeName string      `yaml:"type_name"`
	Package  string      `yaml:"package,omitempty"`
	Values   []EnumValue `yaml:"values,omitempty"`
}

type EnumValue struct {
	Name   string `yaml:"name"`
	Number int32  `yaml:"number"`
}

// ZeroValue returns the member numbered zero. Declaration order is irrelevant.
func (e Enum) ZeroValue() (EnumValue, bool) {
	for _, v := range e.Values {
		if v.Number == 0 {
			return v, true
		}
	}
	return EnumValue{}, false
}

type Message struct {
	Name     string `yaml:"name"`
	FullName string `yaml:"full_name"`
	// TypeName is the dotted path relative to the package, e.g. Outer.Inner.
	TypeName   string  `yaml:"type_name"`
	Package    string  `yaml:"package,omitempty"`
	IsMapEntry bool    `yaml:"map_entry,omitempty"`
	Fields     []Field `yaml:"fields,omitempty"`
}

type Field struct {
	Name            string `yaml:"name"`
	Number          int    `yaml:"number"`
	Kind            Kind   `yaml:"kind"`
	IsRepeated      bool   `yaml:"repeated,omitempty"`
	IsOptional      bool   `yaml:"optional,omitempty"`
	IsMap           bool   `yaml:"map,omitempty"`
	Oneof           string `yaml:"oneof,omitempty"`
	MessageFullName string `yaml:"message,omitempty"`
	EnumFullName    string `yaml:"enum,omitempty"`
}

type Kind int

const (
	KindBool Kind = iota
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindFloat
	KindDouble
	KindString
	KindBytes
	KindMessage
	KindEnum
)

var kindNames = [...]string{
	KindBool:     "bool",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindSint32:   "sint32",
	KindSint64:   "sint64",
	KindFixed32:  "fixed32",
	KindFixed64:  "fixed64",
	KindSfixed32: "sfixed32",
	KindSfixed64: "sfixed64",
	KindFloat:    "float",
	KindDouble:   "double",
	KindString:   "string",
	KindBytes:    "bytes",
	KindMessage:  "message",
	KindEnum:     "enum",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// IsScalar reports whether k is one of the closed set of scalar type tags.
func (k Kind) IsScalar() bool {
	return k != KindMessage && k != KindEnum
}

// Is64Bit reports whether k is a 64-bit integer kind.
func (k Kind) Is64Bit() bool {
	switch k {
	case KindInt64, KindUint64, KindSint64, KindFixed64, KindSfixed64:
		return true
	}
	return false
}

// Index resolves fully-qualified message and enum names across a file and its
// imports.
type Index struct {
	Messages map[string]Message
	Enums    map[string]Enum
	// Origin maps each message and enum full name to the file declaring it.
	Origin map[string]*File
}

func NewIndex(file File) Index {
	idx := Index{
		Messages: make(map[string]Message),
		Enums:    make(map[string]Enum),
		Origin:   make(map[string]*File),
	}
	idx.add(&file)
	for i := range file.Imported {
		idx.add(&file.Imported[i])
	}
	return idx
}

func (idx Index) add(file *File) {
	for _, msg := range file.Messages {
		idx.Messages[msg.FullName] = msg
		idx.Origin[msg.FullName] = file
	}
	for _, enum := range file.Enums {
		idx.Enums[enum.FullName] = enum
		idx.Origin[enum.FullName] = file
	}
}

// GoPackagePath is the import path of the protoc-gen-go output for f. Files
// without go_package fall back to their stripped proto path.
func (f File) GoPackagePath() string {
	if f.GoImportPath != "" {
		return f.GoImportPath
	}
	return StripProto(f.Path)
}
