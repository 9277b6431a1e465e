package ir

import "testing"

func TestGoCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "id", want: "Id"},
		{in: "item_id", want: "ItemId"},
		{in: "clientFlipId", want: "ClientFlipId"},
		{in: "_hidden", want: "XHidden"},
		{in: "field_1", want: "Field_1"},
		{in: "SayHello", want: "SayHello"},
		{in: "HTTP_code", want: "HTTPCode"},
	}

	for _, tc := range tests {
		got := GoCamelCase(tc.in)
		if got != tc.want {
			t.Fatalf("GoCamelCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGoTypeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "HelloRequest", want: "HelloRequest"},
		{in: "Outer.Inner", want: "Outer_Inner"},
		{in: "outer.inner_thing", want: "Outer_InnerThing"},
	}

	for _, tc := range tests {
		got := GoTypeName(tc.in)
		if got != tc.want {
			t.Fatalf("GoTypeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripProto(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		wantBase string
	}{
		{in: "helloworld.proto", want: "helloworld", wantBase: "helloworld"},
		{in: "protos/route_guide.proto", want: "protos/route_guide", wantBase: "route_guide"},
		{in: "legacy.protodevel", want: "legacy", wantBase: "legacy"},
		{in: "noext", want: "noext", wantBase: "noext"},
	}

	for _, tc := range tests {
		if got := StripProto(tc.in); got != tc.want {
			t.Fatalf("StripProto(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if got := BaseName(tc.in); got != tc.wantBase {
			t.Fatalf("BaseName(%q) = %q, want %q", tc.in, got, tc.wantBase)
		}
	}
}

func TestEnumZeroValue(t *testing.T) {
	e := Enum{Values: []EnumValue{{Name: "B", Number: 2}, {Name: "ZERO", Number: 0}, {Name: "A", Number: 1}}}
	v, ok := e.ZeroValue()
	if !ok || v.Name != "ZERO" {
		t.Fatalf("ZeroValue() = %v, %v, want ZERO", v, ok)
	}

	if _, ok := (Enum{Values: []EnumValue{{Name: "ONE", Number: 1}}}).ZeroValue(); ok {
		t.Fatalf("ZeroValue() found a member on an enum without zero")
	}
}
