package main

import (
	"log/slog"

	"github.com/taslite/taslite/database"
	"github.com/taslite/taslite/tasl"
)

type setCmd struct {
	Positional struct {
		Path      string `positional-arg-name:"path"`
		Class     string `positional-arg-name:"class"`
		ID        uint64 `positional-arg-name:"id"`
		ValueFile string `positional-arg-name:"value-file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *setCmd) Execute(args []string) error {
	cfg, err := loadConfig(globalOpts.ConfigFile)
	if err != nil {
		return err
	}
	db, err := database.Open(resolvePath(c.Positional.Path, cfg), false)
	if err != nil {
		return err
	}
	defer db.Close()

	cls, ok := db.Schema().Class(c.Positional.Class)
	if !ok {
		return tasl.NewLookupErr("unknown class %q", c.Positional.Class)
	}
	v, err := readValueFile(c.Positional.ValueFile, cls.Type)
	if err != nil {
		return err
	}
	if err := db.Set(c.Positional.Class, c.Positional.ID, v); err != nil {
		return err
	}
	slog.Info("set", "class", c.Positional.Class, "id", c.Positional.ID)
	return nil
}
