package main

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"

	"github.com/taslite/taslite/codec"
	"github.com/taslite/taslite/shred"
	"github.com/taslite/taslite/tasl"
)

// resolvePath maps the CLI's "-" convention (transient in-memory
// database, spec.md §6 "path: ... or null for a transient in-memory
// database") onto database.Create/Open's empty-string convention, and
// falls back to the config file's default path when the positional
// argument itself was left empty.
func resolvePath(p string, cfg Config) string {
	if p == "-" {
		return ""
	}
	if p == "" {
		return cfg.Path
	}
	return p
}

func readSchemaFile(path string) (*tasl.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return tasl.DecodeSchema(data)
}

// readValueFile decodes one value's wire bytes (the same per-value
// encoding shred.EncodeValue/DecodeValue use inside a whole instance
// stream) from a standalone file, so set/push can take a value without
// a textual tasl-literal parser.
func readValueFile(path string, t *tasl.Type) (*tasl.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := codec.NewDecoder(codec.NewSliceSource([][]byte{data}))
	return shred.DecodeValue(dec, t)
}

func printValue(v *tasl.Value) {
	if globalOpts.Debug {
		pp.Println(v)
		return
	}
	fmt.Println(v.String())
}
