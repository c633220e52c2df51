package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/midbel/webpp/builtin"
	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/fragment"
	"github.com/midbel/webpp/output"
	"github.com/midbel/webpp/registry"
	"github.com/midbel/webpp/render"
)

// stringList accumulates a flag given multiple times on the command line.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type renderCmd struct {
	Root       string
	Values     string
	Mode       string
	Doctype    bool
	NoXMLDecl  bool
	NoComments bool
	Out        string
	Verbose    bool
	Inserts    stringList
}

func (c *renderCmd) Run(args []string) error {
	set := flag.NewFlagSet("render", flag.ContinueOnError)
	set.StringVar(&c.Root, "root", ".", "fragment library root")
	set.StringVar(&c.Values, "values", "", "render-values text file (driver contract, see docs)")
	set.StringVar(&c.Mode, "mode", "xml", "output mode: xml or xhtml5")
	set.BoolVar(&c.Doctype, "doctype", false, "xhtml5: emit <!DOCTYPE html>")
	set.BoolVar(&c.NoXMLDecl, "no-xml-decl", false, "xhtml5: strip the xml declaration")
	set.BoolVar(&c.NoComments, "no-comments", false, "xhtml5: strip every comment")
	set.StringVar(&c.Out, "o", "", "output file (default: stdout)")
	set.BoolVar(&c.Verbose, "verbose", false, "trace every node the walker visits to stderr")
	set.Var(&c.Inserts, "insert", "id:view[:prefix], repeatable")
	if err := set.Parse(args); err != nil {
		return err
	}

	name := set.Arg(0)
	if name == "" {
		return fmt.Errorf("render: a fragment name is required")
	}

	store := fragment.NewStore(c.Root)
	frag, err := store.Load(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return suggestFragment(c.Root, name, err)
		}
		return err
	}

	ctx := context.NewRenderContext()
	if c.Values != "" {
		f, err := os.Open(c.Values)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := loadValues(f, ctx); err != nil {
			return fmt.Errorf("render-values %s: %w", c.Values, err)
		}
	}

	insertions, err := parseInsertions(c.Inserts)
	if err != nil {
		return err
	}

	reg := registry.New()
	builtin.Register(reg)

	rnd := render.New(reg, store)
	if c.Verbose {
		rnd.Tracer = render.Stderr()
	}

	doc, err := rnd.Render(frag, ctx, insertions)
	if err != nil {
		return err
	}

	shaper, err := c.shaper()
	if err != nil {
		return err
	}

	w := os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		return shaper.Write(f, doc)
	}
	return shaper.Write(w, doc)
}

func (c *renderCmd) shaper() (output.Shaper, error) {
	switch c.Mode {
	case "", "xml":
		return output.XML(), nil
	case "xhtml5":
		var flags output.Flags
		if c.Doctype {
			flags |= output.FlagDoctype
		}
		if c.NoXMLDecl {
			flags |= output.FlagRemoveXMLDeclaration
		}
		if c.NoComments {
			flags |= output.FlagRemoveComments
		}
		return output.XHTML5(flags), nil
	default:
		return nil, fmt.Errorf("render: unknown output mode %q", c.Mode)
	}
}

// parseInsertions turns a list of "id:view[:prefix]" flags into the view
// insertion table render.Renderer.Render expects.
func parseInsertions(raw []string) (map[string]render.ViewInsertion, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]render.ViewInsertion, len(raw))
	for _, spec := range raw {
		parts := strings.SplitN(spec, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("render: bad -insert %q, want id:view[:prefix]", spec)
		}
		ins := render.ViewInsertion{ViewName: parts[1]}
		if len(parts) == 3 {
			ins.ValuePrefix = parts[2]
		}
		out[parts[0]] = ins
	}
	return out, nil
}
