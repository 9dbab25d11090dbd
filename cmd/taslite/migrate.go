package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/term"

	"github.com/taslite/taslite/database"
	"github.com/taslite/taslite/migrate"
	"github.com/taslite/taslite/tasl"
)

type migrateCmd struct {
	Positional struct {
		SourcePath  string `positional-arg-name:"source-path"`
		TargetPath  string `positional-arg-name:"target-path"`
		MappingFile string `positional-arg-name:"mapping-file" description:"Path to a tasl.EncodeMapping blob"`
	} `positional-args:"yes" required:"yes"`
	RuleOrder string `long:"rule-order" description:"YAML file overriding migration rule order" value-name:"file"`
	Force     bool   `long:"force" description:"Overwrite an existing target path without prompting"`
}

// ruleOrderFile is the shape of --rule-order's YAML: an explicit list of
// target class keys, letting an operator force a deterministic per-class
// migration order distinct from the mapping's declaration order.
type ruleOrderFile struct {
	Order []string `yaml:"order"`
}

func (c *migrateCmd) Execute(args []string) error {
	cfg, err := loadConfig(globalOpts.ConfigFile)
	if err != nil {
		return err
	}

	mappingBytes, err := os.ReadFile(c.Positional.MappingFile)
	if err != nil {
		return err
	}
	m, err := tasl.DecodeMapping(mappingBytes)
	if err != nil {
		return err
	}

	if c.RuleOrder != "" {
		order, err := loadRuleOrder(c.RuleOrder)
		if err != nil {
			return err
		}
		reordered, err := reorderRules(m.Rules, order)
		if err != nil {
			return err
		}
		m.Rules = reordered
	}

	targetPath := resolvePath(c.Positional.TargetPath, cfg)
	if targetPath != "" {
		if _, err := os.Stat(targetPath); err == nil {
			if !c.Force && !confirmOverwrite(targetPath) {
				return fmt.Errorf("migrate: aborted, target path already exists: %s", targetPath)
			}
			if err := os.Remove(targetPath); err != nil {
				return err
			}
		}
	}

	source, err := database.Open(resolvePath(c.Positional.SourcePath, cfg), true)
	if err != nil {
		return err
	}
	defer source.Close()

	target, err := migrate.Migrate(m, targetPath, source)
	if err != nil {
		return err
	}
	defer target.Close()
	slog.Info("migrated database", "source", c.Positional.SourcePath, "target", c.Positional.TargetPath, "rules", len(m.Rules))
	return nil
}

func loadRuleOrder(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f ruleOrderFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Order, nil
}

func reorderRules(rules []tasl.ClassRule, order []string) ([]tasl.ClassRule, error) {
	if len(order) != len(rules) {
		return nil, fmt.Errorf("migrate: --rule-order lists %d classes, mapping has %d rules", len(order), len(rules))
	}
	byTarget := make(map[string]tasl.ClassRule, len(rules))
	for _, r := range rules {
		byTarget[r.TargetClass] = r
	}
	out := make([]tasl.ClassRule, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	for _, key := range order {
		r, ok := byTarget[key]
		if !ok {
			return nil, fmt.Errorf("migrate: --rule-order names unknown target class %q", key)
		}
		if seen[key] {
			return nil, fmt.Errorf("migrate: --rule-order lists %q more than once", key)
		}
		seen[key] = true
		out = append(out, r)
	}
	return out, nil
}

// confirmOverwrite prompts on an interactive terminal before migrate
// clobbers an existing target path, mirroring the teacher's
// dry-run-then-confirm culture. A non-interactive invocation (piped
// stdin, CI) never blocks on a prompt it can't answer — it just refuses.
func confirmOverwrite(path string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	fmt.Printf("-- target path %q already exists; overwrite? [y/N] ", path)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	resp := strings.ToLower(strings.TrimSpace(line))
	return resp == "y" || resp == "yes"
}
