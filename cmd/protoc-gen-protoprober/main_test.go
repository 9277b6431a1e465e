package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/bufbuild/protocompile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

const pingProto = `syntax = "proto3";

package ping;

message Ping {
  optional string text = 1;
}

service Pinger {
  rpc Ping(Ping) returns (Ping);
  rpc Flood(stream Ping) returns (Ping);
}
`

func request(t *testing.T, parameter string) *pluginpb.CodeGeneratorRequest {
	t.Helper()
	compiler := protocompile.Compiler{
		Resolver: &protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{"ping/ping.proto": pingProto}),
		},
	}
	files, err := compiler.Compile(context.Background(), "ping/ping.proto")
	require.NoError(t, err)
	return &pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{"ping/ping.proto"},
		Parameter:      proto.String(parameter),
		ProtoFile:      []*descriptorpb.FileDescriptorProto{protodesc.ToFileDescriptorProto(files[0])},
	}
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRespondWithoutGoPackage(t *testing.T) {
	resp := respond(request(t, "lang=cpp+python,unary_only"), discard())
	require.Empty(t, resp.GetError())
	assert.Equal(t, uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL), resp.GetSupportedFeatures())

	var names []string
	for _, f := range resp.GetFile() {
		names = append(names, f.GetName())
	}
	assert.Equal(t, []string{"ping/ping.grpc.client.pb.cc", "ping/ping.grpc.client.pb.py"}, names)
	assert.Contains(t, resp.GetFile()[1].GetContent(), "Probing client streaming methods is not yet supported!!")
}

func TestRespondAllBackends(t *testing.T) {
	resp := respond(request(t, ""), discard())
	require.Empty(t, resp.GetError())
	require.Len(t, resp.GetFile(), 4)
	assert.True(t, strings.HasSuffix(resp.GetFile()[3].GetName(), ".grpc.client.pb.js"))
}

func TestRespondErrors(t *testing.T) {
	tests := map[string]string{
		"lang=cobol":         `unknown backend "cobol"`,
		"seed=abc":           `parameter "seed=abc"`,
		"verbose":            `parameter "verbose"`,
		"unary_only=perhaps": `parameter "unary_only=perhaps"`,
	}
	for parameter, want := range tests {
		t.Run(parameter, func(t *testing.T) {
			resp := respond(request(t, parameter), discard())
			assert.Contains(t, resp.GetError(), want)
			assert.Empty(t, resp.GetFile())
		})
	}
}

func TestRunRoundTrip(t *testing.T) {
	data, err := proto.Marshal(request(t, "lang=go,varied_sentinels,seed=9"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(bytes.NewReader(data), &out, discard()))

	resp := &pluginpb.CodeGeneratorResponse{}
	require.NoError(t, proto.Unmarshal(out.Bytes(), resp))
	require.Len(t, resp.GetFile(), 1)
	assert.Equal(t, "ping/ping.grpc.client.pb.go", resp.GetFile()[0].GetName())
	assert.Contains(t, resp.GetFile()[0].GetContent(), `pb "ping/ping"`)
}
