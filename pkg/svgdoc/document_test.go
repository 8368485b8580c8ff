package svgdoc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hoppxi/framekit/pkg/marker"
)

const illustratorSVG = `<?xml version="1.0" encoding="UTF-8"?>
<!-- Generator: Adobe Illustrator 27.0.0, SVG Export Plug-In -->
<svg id="Layer_1" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 200 100">
  <defs>
    <style>
      .cls-1{fill:#231815;font-size:8px;}
    </style>
  </defs>
  <g id="Labels" data-name="Sample Labels">
    <text class="cls-1" transform="translate(10 10)"><tspan x="0" y="0">Gelao_Guizhou</tspan></text>
    <text class="cls-1" transform="translate(10 20)">Bai_Yunnan</text>
    <g id="nested"><text class="cls-1">Bai_Yunnan</text></g>
  </g>
  <g id="Hidden" style="display:none">
    <text class="cls-1">Bai_Yunnan</text>
  </g>
  <text fill="#0000ff" x="5" y="90">Han &amp; Tibet</text>
</svg>
`

func parse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestParse_Frames(t *testing.T) {
	doc := parse(t, illustratorSVG)
	frames := doc.TextFrames()

	tests := []struct {
		content string
		visible bool
		layer   string
	}{
		{"Gelao_Guizhou", true, "Sample Labels"},
		{"Bai_Yunnan", true, "Sample Labels"},
		{"Bai_Yunnan", true, "Sample Labels"},
		{"Bai_Yunnan", false, "Hidden"},
		{"Han & Tibet", true, ""},
	}

	if len(frames) != len(tests) {
		t.Fatalf("len(TextFrames()) = %d, want %d", len(frames), len(tests))
	}
	for i, tt := range tests {
		f := frames[i]
		if f.Index() != i {
			t.Errorf("frame %d Index() = %d", i, f.Index())
		}
		if got := f.Content(); got != tt.content {
			t.Errorf("frame %d Content() = %q, want %q", i, got, tt.content)
		}
		if got := f.Visible(); got != tt.visible {
			t.Errorf("frame %d Visible() = %v, want %v", i, got, tt.visible)
		}
		if got := f.Layer(); got != tt.layer {
			t.Errorf("frame %d Layer() = %q, want %q", i, got, tt.layer)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	doc := parse(t, illustratorSVG)
	if got := string(doc.Bytes()); got != illustratorSVG {
		t.Errorf("round trip changed the document:\n%s", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"not svg", `<html><body/></html>`, ErrNotSVG},
		{"empty", ``, ErrNotSVG},
		{"mismatched", `<svg><g></svg>`, ErrMalformed},
		{"unclosed", `<svg><g>`, ErrMalformed},
		{"undeclared entity", `<svg><text>&nope;</text></svg>`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse_DoctypeEntities(t *testing.T) {
	src := `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd" [
	<!ENTITY ns_extend "http://ns.adobe.com/Extensibility/1.0/">
	<!ENTITY label 'Tibet'>
]>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:x="&ns_extend;"><text>Han_&label;</text></svg>`

	doc := parse(t, src)
	frames := doc.TextFrames()
	if len(frames) != 1 || frames[0].Content() != "Han_Tibet" {
		t.Fatalf("frames = %d, want one frame with Han_Tibet", len(frames))
	}
	if out := string(doc.Bytes()); !strings.Contains(out, `xmlns:x="http://ns.adobe.com/Extensibility/1.0/"`) {
		t.Errorf("entity in attribute not expanded:\n%s", out)
	}
}

func TestParse_Latin1(t *testing.T) {
	src := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><svg><text>Caf\xe9</text></svg>"
	doc := parse(t, src)
	if got := doc.TextFrames()[0].Content(); got != "Café" {
		t.Errorf("Content() = %q, want Café", got)
	}
	if out := string(doc.Bytes()); !strings.Contains(out, `encoding="UTF-8"`) {
		t.Errorf("declaration not rewritten to UTF-8:\n%s", out)
	}
}

func TestLayers(t *testing.T) {
	doc := parse(t, illustratorSVG)
	layers := doc.Layers()
	if len(layers) != 2 {
		t.Fatalf("len(Layers()) = %d, want 2", len(layers))
	}
	if layers[0].Name != "Sample Labels" || !layers[0].Visible || layers[0].Frames != 3 {
		t.Errorf("layers[0] = %+v", layers[0])
	}
	if layers[1].Name != "Hidden" || layers[1].Visible || layers[1].Frames != 1 {
		t.Errorf("layers[1] = %+v", layers[1])
	}
}

func TestVisible_IgnoresOwnAttributes(t *testing.T) {
	doc := parse(t, `<svg><g><text display="none">a</text></g><g visibility="hidden"><g><text>b</text></g></g></svg>`)
	frames := doc.TextFrames()
	if !frames[0].Visible() {
		t.Error("frame with its own display=none should count as visible")
	}
	if frames[1].Visible() {
		t.Error("frame in a hidden ancestor group should be invisible")
	}
}

func TestMark(t *testing.T) {
	doc := parse(t, illustratorSVG)
	f := doc.TextFrames()[0]

	if err := f.Mark(marker.Red); err != nil {
		t.Fatal(err)
	}

	out := string(doc.Bytes())
	want := `<text class="cls-1" transform="translate(10 10)" style="fill:#ff0000"><tspan x="0" y="0" style="fill:#ff0000">Gelao_Guizhou</tspan></text>`
	if !strings.Contains(out, want) {
		t.Errorf("marked frame not found in output:\n%s", out)
	}

	c, ok := f.Fill()
	if !ok || c != marker.Red {
		t.Errorf("Fill() = %v, %v, want red", c, ok)
	}
	if f.Content() != "Gelao_Guizhou" {
		t.Errorf("Mark changed content to %q", f.Content())
	}
}

func TestMark_ReplacesExistingStyleFill(t *testing.T) {
	doc := parse(t, `<svg><text style="font-size:8px; fill: #000">a</text></svg>`)
	f := doc.TextFrames()[0]
	if err := f.Mark(marker.Color{G: 255}); err != nil {
		t.Fatal(err)
	}
	if got := string(doc.Bytes()); got != `<svg><text style="font-size:8px;fill:#00ff00">a</text></svg>` {
		t.Errorf("output = %s", got)
	}
}

func TestFill(t *testing.T) {
	doc := parse(t, illustratorSVG)
	frames := doc.TextFrames()
	if _, ok := frames[1].Fill(); ok {
		t.Error("class-styled frame reported an own fill")
	}
	c, ok := frames[4].Fill()
	if !ok || c != (marker.Color{B: 255}) {
		t.Errorf("Fill() = %v, %v, want blue", c, ok)
	}
}

func TestSetContent(t *testing.T) {
	doc := parse(t, `<svg><text>one</text><text><tspan>Line 1</tspan><tspan>Line 2</tspan></text><text/></svg>`)
	frames := doc.TextFrames()

	for i, s := range []string{"single", "merged", "filled"} {
		if err := frames[i].SetContent(s); err != nil {
			t.Fatal(err)
		}
		if got := frames[i].Content(); got != s {
			t.Errorf("frame %d Content() = %q, want %q", i, got, s)
		}
	}

	want := `<svg><text>single</text><text><tspan>merged</tspan><tspan></tspan></text><text>filled</text></svg>`
	if got := string(doc.Bytes()); got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestContent_Lines(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"two lines", `<svg><text><tspan x="0" y="0">Autonomous Region</tspan><tspan x="0" y="9.6">of Tibet</tspan></text></svg>`, "Autonomous Region\rof Tibet"},
		{"kerning spans", `<svg><text><tspan x="0" y="0">Auto</tspan><tspan x="20.5" y="0">nomous</tspan></text></svg>`, "Autonomous"},
		{"dy", `<svg><text><tspan>Bai</tspan><tspan x="0" dy="1.2em">Yunnan</tspan></text></svg>`, "Bai\rYunnan"},
		{"inkscape", `<svg xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"><text><tspan sodipodi:role="line">a</tspan><tspan sodipodi:role="line">b</tspan></text></svg>`, "a\rb"},
		{"indented markup", "<svg><text x=\"0\" y=\"0\">\n  <tspan x=\"10\" y=\"20\">Tibet</tspan>\n</text></svg>", "Tibet"},
		{"bare text", `<svg><text> Han </text></svg>`, " Han "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parse(t, tt.src).TextFrames()[0].Content(); got != tt.want {
				t.Errorf("Content() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplace_KeepsLines(t *testing.T) {
	doc := parse(t, `<svg><text><tspan x="0" y="0">Autonomous Region</tspan><tspan x="0" y="9.6">of Tibet</tspan></text><text>Autonomous Regionof Tibet</text></svg>`)
	frames := doc.TextFrames()

	res, err := marker.Replace(frames, "Tibet", "Xizang", marker.Continue)
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched != 2 {
		t.Errorf("Matched = %d, want 2", res.Matched)
	}

	want := `<svg><text><tspan x="0" y="0">Autonomous Region</tspan><tspan x="0" y="9.6">of Xizang</tspan></text><text>Autonomous Regionof Xizang</text></svg>`
	if got := string(doc.Bytes()); got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
	if frames[0].Content() == frames[1].Content() {
		t.Error("two-line frame compares equal to a one-line frame")
	}
}

func TestReplace_DoesNotMatchAcrossLines(t *testing.T) {
	doc := parse(t, `<svg><text><tspan x="0" y="0">Autonomous Region</tspan><tspan x="0" y="9.6">of Tibet</tspan></text></svg>`)

	res, err := marker.Replace(doc.TextFrames(), "Regionof", "x", marker.Continue)
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched != 0 {
		t.Errorf("Matched = %d, want 0", res.Matched)
	}
}

func TestSetContent_IndentedMarkup(t *testing.T) {
	src := "<svg><text x=\"0\" y=\"0\">\n  <tspan x=\"10\" y=\"20\">Tibet</tspan>\n</text></svg>"
	doc := parse(t, src)

	if err := doc.TextFrames()[0].SetContent("Xizang"); err != nil {
		t.Fatal(err)
	}
	want := "<svg><text x=\"0\" y=\"0\">\n  <tspan x=\"10\" y=\"20\">Xizang</tspan>\n</text></svg>"
	if got := string(doc.Bytes()); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestSetContent_LineCount(t *testing.T) {
	const src = `<svg><text><tspan x="0" y="0">a</tspan><tspan x="0" y="10"/><tspan x="0" y="20">c</tspan></text></svg>`
	tests := []struct {
		name    string
		content string
		want    string
		out     string
	}{
		{"fill empty line", "a\rb\rc", "a\rb\rc", `<svg><text><tspan x="0" y="0">a</tspan><tspan x="0" y="10">b</tspan><tspan x="0" y="20">c</tspan></text></svg>`},
		{"newline separator", "a\nb\nc", "a\rb\rc", `<svg><text><tspan x="0" y="0">a</tspan><tspan x="0" y="10">b</tspan><tspan x="0" y="20">c</tspan></text></svg>`},
		{"fewer lines", "x", "x\r\r", `<svg><text><tspan x="0" y="0">x</tspan><tspan x="0" y="10"/><tspan x="0" y="20"></tspan></text></svg>`},
		{"more lines", "a\r\rc\rd", "a\r\rc d", `<svg><text><tspan x="0" y="0">a</tspan><tspan x="0" y="10"/><tspan x="0" y="20">c d</tspan></text></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, src)
			f := doc.TextFrames()[0]
			if err := f.SetContent(tt.content); err != nil {
				t.Fatal(err)
			}
			if got := f.Content(); got != tt.want {
				t.Errorf("Content() = %q, want %q", got, tt.want)
			}
			if got := string(doc.Bytes()); got != tt.out {
				t.Errorf("output = %s, want %s", got, tt.out)
			}
		})
	}
}

func TestLocked(t *testing.T) {
	doc := parse(t, `<svg xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"><g sodipodi:insensitive="true"><text>a</text></g></svg>`)
	f := doc.TextFrames()[0]
	if !f.Locked() {
		t.Fatal("Locked() = false, want true")
	}
	if err := f.Mark(marker.Red); !errors.Is(err, ErrLocked) {
		t.Errorf("Mark() error = %v, want ErrLocked", err)
	}
	if err := f.SetContent("b"); !errors.Is(err, ErrLocked) {
		t.Errorf("SetContent() error = %v, want ErrLocked", err)
	}
}

func TestDuplicatePassOverDocument(t *testing.T) {
	doc := parse(t, illustratorSVG)
	frames := doc.TextFrames()

	res, err := marker.MarkDuplicates(frames, marker.DefaultOptions(), (*TextFrame).Mark)
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched != 2 {
		t.Errorf("Matched = %d, want 2", res.Matched)
	}
	for i, f := range frames {
		_, marked := f.Fill()
		wantMarked := i == 1 || i == 2
		if i == 4 {
			continue
		}
		if marked != wantMarked {
			t.Errorf("frame %d marked = %v, want %v", i, marked, wantMarked)
		}
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "art.svg")
	if err := os.WriteFile(path, []byte(illustratorSVG), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.TextFrames()[4].SetContent("Han & Xizang"); err != nil {
		t.Fatal(err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), ">Han &amp; Xizang</text>") {
		t.Errorf("saved file missing edit:\n%s", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
