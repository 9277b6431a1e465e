package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/stretchr/testify/require"
)

const commonProto = `
syntax = "proto3";

package common;

message Money {
  string currency = 1;
  int64 units = 2;
}
`

const shopProto = `
syntax = "proto3";

package shop.v1;

option go_package = "example.com/shop/v1;shopv1";

import "common/money.proto";
import "protoprober/options.proto";

enum Status {
  STATUS_UNSPECIFIED = 0;
  STATUS_OPEN = 1;
}

message Order {
  message Line {
    string sku = 1;
    repeated uint32 quantities = 2;
  }
  enum Priority {
    PRIORITY_LOW = 0;
  }

  string id = 1;
  repeated Line lines = 2;
  common.Money total = 3;
  map<string, string> labels = 4;
  optional bool gift = 5;
  Status status = 6;
  oneof contact {
    string email = 7;
    string phone = 8;
  }
  Priority priority = 9;
}

message Ack {}

service Orders {
  rpc Place(Order) returns (Ack);
  rpc Upload(stream Order) returns (Ack);
  rpc Watch(Ack) returns (stream Order);
  rpc Sync(stream Order) returns (stream Order);
  rpc Purge(Ack) returns (Ack) {
    option (protoprober.skip) = true;
  }
}
`

func writeProto(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	writeProto(t, dir, "common/money.proto", commonProto)
	writeProto(t, dir, "shop/v1/shop.proto", shopProto)

	p := &Parser{ImportPaths: []string{dir}}
	files, err := p.Parse(context.Background(), []string{"shop/v1/shop.proto"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	file := files[0]

	want := ir.File{
		Path:         "shop/v1/shop.proto",
		Package:      "shop.v1",
		GoImportPath: "example.com/shop/v1",
		Services: []ir.Service{{
			Name:     "Orders",
			FullName: "shop.v1.Orders",
			Methods: []ir.Method{
				{Name: "Place", Input: "shop.v1.Order", Output: "shop.v1.Ack"},
				{Name: "Upload", Input: "shop.v1.Order", Output: "shop.v1.Ack", ClientStreaming: true},
				{Name: "Watch", Input: "shop.v1.Ack", Output: "shop.v1.Order", ServerStreaming: true},
				{Name: "Sync", Input: "shop.v1.Order", Output: "shop.v1.Order", ClientStreaming: true, ServerStreaming: true},
			},
		}},
		Enums: []ir.Enum{
			{Name: "Status", FullName: "shop.v1.Status", TypeName: "Status", Package: "shop.v1", Values: []ir.EnumValue{
				{Name: "STATUS_UNSPECIFIED", Number: 0},
				{Name: "STATUS_OPEN", Number: 1},
			}},
			{Name: "Priority", FullName: "shop.v1.Order.Priority", TypeName: "Order.Priority", Package: "shop.v1", Values: []ir.EnumValue{
				{Name: "PRIORITY_LOW", Number: 0},
			}},
		},
		Messages: []ir.Message{
			{Name: "Order", FullName: "shop.v1.Order", TypeName: "Order", Package: "shop.v1", Fields: []ir.Field{
				{Name: "id", Number: 1, Kind: ir.KindString},
				{Name: "lines", Number: 2, Kind: ir.KindMessage, IsRepeated: true, MessageFullName: "shop.v1.Order.Line"},
				{Name: "total", Number: 3, Kind: ir.KindMessage, MessageFullName: "common.Money"},
				{Name: "labels", Number: 4, Kind: ir.KindMessage, IsMap: true},
				{Name: "gift", Number: 5, Kind: ir.KindBool, IsOptional: true},
				{Name: "status", Number: 6, Kind: ir.KindEnum, EnumFullName: "shop.v1.Status"},
				{Name: "email", Number: 7, Kind: ir.KindString, Oneof: "contact"},
				{Name: "phone", Number: 8, Kind: ir.KindString, Oneof: "contact"},
				{Name: "priority", Number: 9, Kind: ir.KindEnum, EnumFullName: "shop.v1.Order.Priority"},
			}},
			{Name: "Line", FullName: "shop.v1.Order.Line", TypeName: "Order.Line", Package: "shop.v1", Fields: []ir.Field{
				{Name: "sku", Number: 1, Kind: ir.KindString},
				{Name: "quantities", Number: 2, Kind: ir.KindUint32, IsRepeated: true},
			}},
			{Name: "Ack", FullName: "shop.v1.Ack", TypeName: "Ack", Package: "shop.v1"},
		},
	}

	got := file
	got.Imported = nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	idx := ir.NewIndex(file)
	money, ok := idx.Messages["common.Money"]
	require.True(t, ok, "imported message not indexed")
	require.Equal(t, "Money", money.TypeName)
	require.Equal(t, "common", money.Package)
	require.Equal(t, "common/money.proto", idx.Origin["common.Money"].Path)
	require.Equal(t, "shop/v1/shop.proto", idx.Origin["shop.v1.Order.Priority"].Path)
}

func TestParseImportedGoPackage(t *testing.T) {
	dir := t.TempDir()
	writeProto(t, dir, "ping/ping.proto", `
syntax = "proto3";
package ping;
import "google/protobuf/timestamp.proto";
message Req {
  google.protobuf.Timestamp at = 1;
}
`)

	p := &Parser{ImportPaths: []string{dir}}
	files, err := p.Parse(context.Background(), []string{"ping/ping.proto"})
	require.NoError(t, err)
	require.Len(t, files, 1)

	file := files[0]
	require.Empty(t, file.GoImportPath)
	require.Equal(t, "ping/ping", file.GoPackagePath())
	require.Len(t, file.Imported, 1)
	require.Equal(t, "google/protobuf/timestamp.proto", file.Imported[0].Path)
	require.Equal(t, "google.golang.org/protobuf/types/known/timestamppb", file.Imported[0].GoImportPath)
}

func TestParseGoPackageWithoutAlias(t *testing.T) {
	dir := t.TempDir()
	writeProto(t, dir, "greet.proto", `
syntax = "proto3";
package greet;
option go_package = "example.com/greet/";
import "protoprober/options.proto";
option (protoprober.go_import_path) = "example.com/override/greetpb";
message Ping {}
`)
	writeProto(t, dir, "plain.proto", `
syntax = "proto3";
package plain;
option go_package = "example.com/plain/";
message Ping {}
`)

	p := &Parser{ImportPaths: []string{dir}}
	files, err := p.Parse(context.Background(), []string{"greet.proto", "plain.proto"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "example.com/override/greetpb", files[0].GoImportPath)
	require.Equal(t, "example.com/plain", files[1].GoImportPath)
}

func TestParseProto2(t *testing.T) {
	dir := t.TempDir()
	writeProto(t, dir, "legacy.proto", `
syntax = "proto2";
package legacy;
message Item {
  optional int32 count = 1;
  required string name = 2;
  repeated double weights = 3;
}
`)

	p := &Parser{ImportPaths: []string{dir}}
	files, err := p.Parse(context.Background(), []string{"legacy.proto"})
	require.NoError(t, err)

	want := []ir.Field{
		{Name: "count", Number: 1, Kind: ir.KindInt32, IsOptional: true},
		{Name: "name", Number: 2, Kind: ir.KindString, IsOptional: true},
		{Name: "weights", Number: 3, Kind: ir.KindDouble, IsRepeated: true},
	}
	if diff := cmp.Diff(want, files[0].Messages[0].Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMissingFile(t *testing.T) {
	p := &Parser{ImportPaths: []string{t.TempDir()}}
	_, err := p.Parse(context.Background(), []string{"missing.proto"})
	require.Error(t, err)
}
