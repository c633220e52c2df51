package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/value"
)

// loadValues reads the render-values text format: one "path value" pair per
// line. An array element is addressed with "prefix[index].subpath value".
// "true"/"false" are stored as booleans, every other value as a string.
func loadValues(r io.Reader, ctx *context.RenderContext) error {
	scan := bufio.NewScanner(r)
	for n := 1; scan.Scan(); n++ {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		path, raw, ok := strings.Cut(line, " ")
		if !ok {
			return fmt.Errorf("line %d: expected \"path value\", got %q", n, line)
		}
		if err := setRenderValue(ctx, path, parseScalar(strings.TrimSpace(raw))); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scan.Err()
}

func parseScalar(raw string) value.Value {
	switch raw {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	default:
		return value.String(raw)
	}
}

// setRenderValue resolves path against ctx, growing any array named by a
// "name[index]" segment as needed, and stores v in the resolved slot.
func setRenderValue(ctx *context.RenderContext, path string, v value.Value) error {
	cur := ctx.Root()
	for _, seg := range strings.Split(path, ".") {
		name, idx, hasIndex, err := splitIndex(seg)
		if err != nil {
			return fmt.Errorf("path %q: %w", path, err)
		}
		if !hasIndex {
			cur = cur.Find(name)
			continue
		}
		list, err := ensureList(cur.Find(name), idx+1)
		if err != nil {
			return fmt.Errorf("path %q: %w", path, err)
		}
		cur = list.At(idx)
	}
	cur.CreateValue(v)
	return nil
}

func splitIndex(seg string) (name string, idx int, hasIndex bool, err error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, 0, false, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, false, fmt.Errorf("malformed array index in %q", seg)
	}
	n, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil {
		return "", 0, false, fmt.Errorf("bad array index: %w", err)
	}
	return seg[:open], n, true, nil
}

func ensureList(node *context.TreeElement, size int) (*context.List, error) {
	if node.Empty() {
		list := context.NewList(size)
		node.CreateArray(list)
		return list, nil
	}
	arr, err := node.GetArray()
	if err != nil {
		return nil, err
	}
	list, ok := arr.(*context.List)
	if !ok {
		return nil, fmt.Errorf("array was not populated by the render-values driver")
	}
	for list.Size() < size {
		list.Append()
	}
	return list, nil
}
