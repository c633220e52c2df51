package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/midbel/webpp/fragment"
)

type checkCmd struct {
	Root     string
	FailFast bool
}

// Run parses every named fragment (or every fragment under -root when no
// name is given) and reports whether it is well-formed XML, without
// rendering it against any render context.
func (c *checkCmd) Run(args []string) error {
	set := flag.NewFlagSet("check", flag.ContinueOnError)
	set.StringVar(&c.Root, "root", ".", "fragment library root")
	set.BoolVar(&c.FailFast, "fail-fast", false, "stop at the first invalid fragment")
	if err := set.Parse(args); err != nil {
		return err
	}

	names := set.Args()
	if len(names) == 0 {
		names = listFragments(c.Root)
	}
	if len(names) == 0 {
		return fmt.Errorf("check: no fragment to check under %s", c.Root)
	}

	store := fragment.NewStore(c.Root)
	var failed bool
	for _, name := range names {
		if _, err := store.Load(name); err != nil {
			failed = true
			if errors.Is(err, fs.ErrNotExist) {
				err = suggestFragment(c.Root, name, err)
			}
			if c.FailFast {
				return err
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: ok\n", name)
	}
	if failed {
		return errFail
	}
	return nil
}
