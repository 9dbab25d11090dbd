package main

import "github.com/taslite/taslite/database"

type getCmd struct {
	Positional struct {
		Path  string `positional-arg-name:"path"`
		Class string `positional-arg-name:"class"`
		ID    uint64 `positional-arg-name:"id"`
	} `positional-args:"yes" required:"yes"`
}

func (c *getCmd) Execute(args []string) error {
	cfg, err := loadConfig(globalOpts.ConfigFile)
	if err != nil {
		return err
	}
	db, err := database.Open(resolvePath(c.Positional.Path, cfg), true)
	if err != nil {
		return err
	}
	defer db.Close()

	v, err := db.Get(c.Positional.Class, c.Positional.ID)
	if err != nil {
		return err
	}
	printValue(v)
	return nil
}
