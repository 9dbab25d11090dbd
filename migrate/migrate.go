// Package migrate implements the Migration Driver (spec.md §4.7): it
// runs a mapping's class rules over a source database handle's elements,
// in id order, and writes the results into a freshly created target
// handle under the mapping's target schema.
package migrate

import (
	"github.com/taslite/taslite/database"
	"github.com/taslite/taslite/mapping"
	"github.com/taslite/taslite/tasl"
)

// Migrate requires mapping.Source to be structurally equal to source's
// own schema, creates a target database at targetPath (or in-memory if
// empty) under mapping.Target, and evaluates every class rule over
// source's elements in ascending id order, preserving ids into the
// target (spec.md §4.7).
func Migrate(m *tasl.Mapping, targetPath string, source *database.DB) (*database.DB, error) {
	if !m.Source.Equal(source.Schema()) {
		return nil, tasl.NewSchemaMismatchErr("mapping source schema does not match handle schema")
	}

	target, err := database.Create(targetPath, m.Target)
	if err != nil {
		return nil, err
	}

	ev := mapping.NewEvaluator(m.Source, source)
	for _, rule := range m.Rules {
		if err := runRule(ev, rule, m, source, target); err != nil {
			target.Close()
			return nil, err
		}
	}
	return target, nil
}

func runRule(ev *mapping.Evaluator, rule tasl.ClassRule, m *tasl.Mapping, source, target *database.DB) error {
	sourceClass, ok := m.Source.Class(rule.SourceClass)
	if !ok {
		return tasl.NewTypeErr("mapping rule references unknown source class %q", rule.SourceClass)
	}
	targetClass, ok := m.Target.Class(rule.TargetClass)
	if !ok {
		return tasl.NewTypeErr("mapping rule references unknown target class %q", rule.TargetClass)
	}

	entries, err := source.Entries(rule.SourceClass)
	if err != nil {
		return err
	}
	// The source handle has a single connection, which an open Entries
	// cursor holds; the class is read in full before evaluation so that
	// dereferences can query the same handle.
	var elements []database.Entry
	for e, err := range entries {
		if err != nil {
			return err
		}
		elements = append(elements, e)
	}
	for _, e := range elements {
		env := mapping.Env{rule.ID: {Type: sourceClass.Type, Value: e.Value}}
		result, err := ev.Eval(rule.Value, targetClass.Type, env)
		if err != nil {
			return err
		}
		if err := target.Set(rule.TargetClass, e.ID, result); err != nil {
			return err
		}
	}
	return nil
}
