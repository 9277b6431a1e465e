// Command protoc-gen-protoprober is a protoc plugin writing prober clients.
//
//	protoc --protoprober_out=lang=go+python,unary_only:out svc.proto
//
// Unlike protoc-gen-go it does not require go_package on every input.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/generate/backends"
	"github.com/jptrs93/protoprober/internal/log"
	"github.com/jptrs93/protoprober/internal/parser"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

func main() {
	logger, _, err := log.SetupLogger(os.Getenv("PROTOPROBER_LOG_LEVEL"), "", os.Stderr)
	if err == nil {
		err = run(os.Stdin, os.Stdout, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(os.Args[0]), err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, logger *slog.Logger) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(data, req); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	data, err = proto.Marshal(respond(req, logger))
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

type params struct {
	ids  []backends.ID
	opts generate.Options
}

// parseParams reads the comma separated plugin parameter. Bare names such as
// "unary_only" switch a boolean on.
func parseParams(parameter string) (params, error) {
	flags := flag.NewFlagSet("protoc-gen-protoprober", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	lang := flags.String("lang", "all", "target languages joined by '+'")
	unaryOnly := flags.Bool("unary_only", false, "emit the unsupported stub for streaming methods")
	varied := flags.Bool("varied_sentinels", false, "vary sentinel literals between fields")
	seed := flags.Uint64("seed", 1, "seed for varied sentinel selection")

	for _, param := range strings.Split(parameter, ",") {
		if param == "" {
			continue
		}
		name, value, ok := strings.Cut(param, "=")
		if !ok {
			value = "true"
		}
		if err := flags.Set(name, value); err != nil {
			return params{}, fmt.Errorf("parameter %q: %w", param, err)
		}
	}

	ids, err := backends.Parse(strings.Split(*lang, "+"))
	if err != nil {
		return params{}, err
	}
	return params{
		ids: ids,
		opts: generate.Options{
			Seed:            *seed,
			VariedSentinels: *varied,
			UnaryOnly:       *unaryOnly,
		},
	}, nil
}

// respond reports generation failures in the response, as protoc expects.
func respond(req *pluginpb.CodeGeneratorRequest, logger *slog.Logger) *pluginpb.CodeGeneratorResponse {
	resp := &pluginpb.CodeGeneratorResponse{
		SupportedFeatures: proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)),
	}
	if err := generateAll(req, resp, logger); err != nil {
		resp.Error = proto.String(err.Error())
		resp.File = nil
	}
	return resp
}

func generateAll(req *pluginpb.CodeGeneratorRequest, resp *pluginpb.CodeGeneratorResponse, logger *slog.Logger) error {
	p, err := parseParams(req.GetParameter())
	if err != nil {
		return err
	}
	p.opts.Logger = logger

	files, err := protodesc.NewFiles(&descriptorpb.FileDescriptorSet{File: req.GetProtoFile()})
	if err != nil {
		return err
	}
	for _, path := range req.GetFileToGenerate() {
		desc, err := files.FindFileByPath(path)
		if err != nil {
			return err
		}
		file, err := parser.FromDescriptor(desc)
		if err != nil {
			return err
		}
		for _, id := range p.ids {
			hooks, err := backends.New(id)
			if err != nil {
				return err
			}
			err = generate.Run(file, hooks, p.opts, func(name string, content []byte) error {
				resp.File = append(resp.File, &pluginpb.CodeGeneratorResponse_File{
					Name:    proto.String(name),
					Content: proto.String(string(content)),
				})
				logger.Debug("emitted prober", "path", name, "bytes", len(content))
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
