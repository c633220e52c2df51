package main

import (
	"flag"
	"fmt"
	"os"
)

type fragmentsCmd struct {
	Root string
}

// Run lists every ".xml" fragment available under -root, name only (no
// extension), one per line.
func (c *fragmentsCmd) Run(args []string) error {
	set := flag.NewFlagSet("fragments", flag.ContinueOnError)
	set.StringVar(&c.Root, "root", ".", "fragment library root")
	if err := set.Parse(args); err != nil {
		return err
	}

	names := listFragments(c.Root)
	if len(names) == 0 {
		return fmt.Errorf("fragments: no .xml fragment found under %s", c.Root)
	}
	for _, n := range names {
		fmt.Fprintln(os.Stdout, n)
	}
	return nil
}
