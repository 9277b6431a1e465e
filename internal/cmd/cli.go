// Package cmd holds the kong command structs of the protoprober tool.
package cmd

type CLI struct {
	Config string `help:"Config file (JSON, YAML or TOML) supplying flag defaults." placeholder:"PATH" env:"PROTOPROBER_CONFIG"`
	Log    Log    `embed:"" prefix:"log."`

	Generate Generate      `cmd:"" default:"withargs" help:"Write a prober client for each proto file and target language."`
	Describe Describe      `cmd:"" help:"Print the parsed model of proto files as YAML."`
	Backends ListBackends  `cmd:"" help:"List the target languages and their output suffixes."`
	Cfg      ConfigCommand `cmd:"" name:"config" help:"Manage configuration files."`
}

type Log struct {
	Level string `help:"Log level: debug, info, warn or error." default:"info" enum:"debug,info,warn,error" env:"PROTOPROBER_LOG_LEVEL"`
	File  string `help:"Also write logs to this file." env:"PROTOPROBER_LOG_FILE"`
}

// Input is shared by the commands that compile proto files.
type Input struct {
	Protos      []string `arg:"" name:"proto" help:"Proto files to process, relative to an import path."`
	ImportPaths []string `name:"proto-path" short:"I" help:"Directory searched for proto files and imports. Repeatable." default:"."`
}
