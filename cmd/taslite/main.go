// Command taslite is the CLI wrapper around the database core: create,
// import, export, migrate, get, set, push — one verb per subcommand,
// mirroring cmd/sqlite3def's flag-parsing shape (github.com/jessevdk/go-flags)
// but fanned out across several commands instead of one.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/taslite/taslite/util"
)

var version = "dev"

// globalOpts holds flags meaningful to every subcommand. go-flags applies
// top-level option fields before dispatching to whichever command ran,
// so every Execute method below can read these directly.
var globalOpts struct {
	ConfigFile string `long:"config" description:"Path to taslite.yml" value-name:"file"`
	Debug      bool   `long:"debug" description:"Pretty-print decoded values (k0kubun/pp)"`
	Version    bool   `long:"version" description:"Show this version"`
}

func main() {
	util.InitSlog()

	parser := flags.NewParser(&globalOpts, flags.Default)
	parser.Usage = "[options] <command>"

	mustAddCommand(parser, "create", "Create a database from a schema blob", &createCmd{})
	mustAddCommand(parser, "import", "Import a whole instance from a wire stream", &importCmd{})
	mustAddCommand(parser, "export", "Export a whole instance to a wire stream", &exportCmd{})
	mustAddCommand(parser, "migrate", "Run a mapping against a source database", &migrateCmd{})
	mustAddCommand(parser, "get", "Print one element", &getCmd{})
	mustAddCommand(parser, "set", "Upsert one element", &setCmd{})
	mustAddCommand(parser, "push", "Insert one element with an auto-assigned id", &pushCmd{})

	if _, err := parser.Parse(); err != nil {
		if globalOpts.Version {
			fmt.Println(version)
			return
		}
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func mustAddCommand(parser *flags.Parser, name, short string, data any) {
	if _, err := parser.AddCommand(name, short, short, data); err != nil {
		panic(fmt.Sprintf("taslite: registering command %q: %v", name, err))
	}
}
