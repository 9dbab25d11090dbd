package main

import (
	"fmt"

	"github.com/taslite/taslite/database"
	"github.com/taslite/taslite/tasl"
)

type pushCmd struct {
	Positional struct {
		Path      string `positional-arg-name:"path"`
		Class     string `positional-arg-name:"class"`
		ValueFile string `positional-arg-name:"value-file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *pushCmd) Execute(args []string) error {
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
	id, err := db.Push(c.Positional.Class, v)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
