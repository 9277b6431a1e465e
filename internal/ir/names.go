package ir

import (
	"path"
	"strings"
)

// GoCamelCase converts a proto identifier to the Go identifier protoc-gen-go
// derives from it.
func GoCamelCase(protoName string) string {
	var b strings.Builder
	b.Grow(len(protoName))
	for i := 0; i < len(protoName); i++ {
		c := protoName[i]
		switch {
		case c == '.' && i+1 < len(protoName) && isLower(protoName[i+1]):
		case c == '.':
			b.WriteByte('_')
		case c == '_' && (i == 0 || protoName[i-1] == '.'):
			b.WriteByte('X')
		case c == '_' && i+1 < len(protoName) && isLower(protoName[i+1]):
		case isDigit(c):
			b.WriteByte(c)
		default:
			if isLower(c) {
				c -= 'a' - 'A'
			}
			b.WriteByte(c)
			for ; i+1 < len(protoName) && isLower(protoName[i+1]); i++ {
				b.WriteByte(protoName[i+1])
			}
		}
	}
	return b.String()
}

// GoTypeName converts a package-relative dotted type path (Outer.Inner) to the
// generated Go type name (Outer_Inner).
func GoTypeName(typeName string) string {
	parts := strings.Split(typeName, ".")
	for i := range parts {
		parts[i] = GoCamelCase(parts[i])
	}
	return strings.Join(parts, "_")
}

// FlatName joins a dotted type path with underscores.
func FlatName(typeName string) string {
	return strings.ReplaceAll(typeName, ".", "_")
}

// StripProto returns the proto file path without its .proto or .protodevel
// extension.
func StripProto(filename string) string {
	if s, ok := strings.CutSuffix(filename, ".protodevel"); ok {
		return s
	}
	return strings.TrimSuffix(filename, ".proto")
}

// BaseName returns the last path element of the stripped proto filename.
func BaseName(filename string) string {
	return path.Base(StripProto(filename))
}

// RelativeName strips the package prefix from a fully-qualified name.
func RelativeName(pkg, fullName string) string {
	if pkg == "" {
		return fullName
	}
	return strings.TrimPrefix(fullName, pkg+".")
}

func isLower(c byte) bool {
	return 'a' <= c && c <= 'z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
