package main

import (
	"log/slog"
	"os"

	"github.com/taslite/taslite/codec"
	"github.com/taslite/taslite/database"
)

type importCmd struct {
	Positional struct {
		Path       string `positional-arg-name:"path"`
		SchemaFile string `positional-arg-name:"schema-file"`
		WireFile   string `positional-arg-name:"wire-file"`
	} `positional-args:"yes" required:"yes"`
	ChunkSize int `long:"chunk-size" description:"Reader pull size in bytes"`
}

func (c *importCmd) Execute(args []string) error {
	cfg, err := loadConfig(globalOpts.ConfigFile)
	if err != nil {
		return err
	}
	schema, err := readSchemaFile(c.Positional.SchemaFile)
	if err != nil {
		return err
	}
	f, err := os.Open(c.Positional.WireFile)
	if err != nil {
		return err
	}
	defer f.Close()

	chunkSize := c.ChunkSize
	if chunkSize == 0 {
		chunkSize = cfg.ChunkSize
	}
	src := codec.NewReaderSource(f, chunkSize)
	path := resolvePath(c.Positional.Path, cfg)
	db, err := database.Import(path, schema, src)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("imported database", "path", c.Positional.Path, "classes", schema.Len())
	return nil
}

type exportCmd struct {
	Positional struct {
		Path    string `positional-arg-name:"path"`
		OutFile string `positional-arg-name:"out-file"`
	} `positional-args:"yes" required:"yes"`
	ChunkSize int `long:"chunk-size" description:"Encoder chunk size in bytes"`
}

func (c *exportCmd) Execute(args []string) error {
	cfg, err := loadConfig(globalOpts.ConfigFile)
	if err != nil {
		return err
	}
	db, err := database.Open(resolvePath(c.Positional.Path, cfg), true)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Create(c.Positional.OutFile)
	if err != nil {
		return err
	}
	defer f.Close()

	chunkSize := c.ChunkSize
	if chunkSize == 0 {
		chunkSize = cfg.ChunkSize
	}
	sink := codec.FuncSink(func(chunk []byte) error {
		_, err := f.Write(chunk)
		return err
	})
	if err := db.Export(sink, chunkSize); err != nil {
		return err
	}
	slog.Info("exported database", "path", c.Positional.Path, "out", c.Positional.OutFile)
	return nil
}
