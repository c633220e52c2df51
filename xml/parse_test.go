package xml_test

import (
	"strings"
	"testing"

	"github.com/midbel/webpp/xml"
)

func TestParseValidDocument(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="UTF-8"?>
<rootnode xmlns="webpp://xml" xmlns:f="webpp://format">
  <b><f:text>hello</f:text></b>
</rootnode>`

	if _, err := xml.NewParser(strings.NewReader(doc)).Parse(); err != nil {
		t.Errorf("fail to parse sample document: %s", err)
	}
}

const prolog = `<?xml version="1.0" encoding="UTF-8"?>`

func TestParseInvalidDocument(t *testing.T) {
	data := []struct {
		Xml        string
		Cause      string
		OmitProlog bool
	}{
		{
			Xml:   ``,
			Cause: "document without root element",
		},
		{
			Xml:        `<root></root>`,
			Cause:      "document without prolog",
			OmitProlog: true,
		},
		{
			Xml:   `<root empty-attr></root>`,
			Cause: "attribute without value",
		},
		{
			Xml:   `<root id="id-1" id="id-2"></root>`,
			Cause: "duplicate attribute",
		},
	}
	for _, d := range data {
		if !d.OmitProlog {
			d.Xml = prolog + d.Xml
		}
		str := strings.NewReader(d.Xml)
		_, err := xml.NewParser(str).Parse()
		if err == nil {
			t.Errorf("%s: invalid document parsed properly!", d.Cause)
		}
	}
}

func TestParseElementLine(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="UTF-8"?>
<root>
  <child/>
</root>`

	got, err := xml.NewParser(strings.NewReader(doc)).Parse()
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	root, ok := got.Root().(*xml.Element)
	if !ok {
		t.Fatalf("root is not an element")
	}
	if root.Line != 2 {
		t.Errorf("root line mismatched: want 2, got %d", root.Line)
	}
	child, ok := root.Find("child").(*xml.Element)
	if !ok {
		t.Fatalf("child not found")
	}
	if child.Line != 3 {
		t.Errorf("child line mismatched: want 3, got %d", child.Line)
	}
}
