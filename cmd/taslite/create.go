package main

import (
	"log/slog"

	"github.com/taslite/taslite/database"
)

type createCmd struct {
	Positional struct {
		Path       string `positional-arg-name:"path" description:"Database file path, or '-' for in-memory"`
		SchemaFile string `positional-arg-name:"schema-file" description:"Path to a tasl.EncodeSchema blob"`
	} `positional-args:"yes" required:"yes"`
}

func (c *createCmd) Execute(args []string) error {
	cfg, err := loadConfig(globalOpts.ConfigFile)
	if err != nil {
		return err
	}
	schema, err := readSchemaFile(c.Positional.SchemaFile)
	if err != nil {
		return err
	}
	path := resolvePath(c.Positional.Path, cfg)
	db, err := database.Create(path, schema)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("created database", "path", c.Positional.Path, "classes", schema.Len())
	return nil
}
