package scripthost

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/hoppxi/framekit/pkg/svgdoc"
)

const artwork = `<svg xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd">
<g id="Labels"><text>Han_Tibet</text><text fill="#00ff00">Bai_Yunnan</text></g>
<g id="Off" display="none"><text>Bai_Yunnan</text></g>
<g id="Frozen" sodipodi:insensitive="true"><text>Yi_Yunnan</text></g>
</svg>`

func load(t *testing.T) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Parse(strings.NewReader(artwork))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestRun_ObjectModel(t *testing.T) {
	doc := load(t)
	var logged []string

	src := `
var tfs = app.activeDocument.textFrames;
var out = [];
for (var i = 0; i < tfs.length; i++) {
    out.push(tfs[i].contents + "|" + tfs[i].layer.name + "|" + tfs[i].layer.visible + "|" + tfs[i].layer.locked);
}
$.writeln(tfs[1].textRange.characterAttributes.fillColor.green);
alert(out.join(";"));
`
	res, err := Run(context.Background(), doc, src, "model.jsx", Options{
		Logf: func(format string, args ...any) {
			logged = append(logged, args[0].(string))
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "Han_Tibet|Labels|true|false;Bai_Yunnan|Labels|true|false;Bai_Yunnan|Off|false|false;Yi_Yunnan|Frozen|true|true"
	if len(res.Alerts) != 1 || res.Alerts[0] != want {
		t.Errorf("Alerts = %q, want %q", res.Alerts, want)
	}
	if len(logged) != 1 || logged[0] != "255" {
		t.Errorf("writeln output = %q, want [255]", logged)
	}
}

func TestRun_ContentsAndFill(t *testing.T) {
	doc := load(t)
	var alerted []string

	src := `
var tfs = app.activeDocument.textFrames;
tfs[0].contents = tfs[0].contents.replace(new RegExp("Tibet", "g"), "Xizang");
tfs[1].textRange.characterAttributes.fillColor = new RGBColor();
tfs[1].textRange.characterAttributes.fillColor.red = 255;
tfs[1].textRange.characterAttributes.fillColor.green = 0;
tfs[1].textRange.characterAttributes.fillColor.blue = 0;
alert("done");
`
	res, err := Run(context.Background(), doc, src, "edit.jsx", Options{
		Alert: func(msg string) { alerted = append(alerted, msg) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Edited != 1 || res.Marked != 1 {
		t.Errorf("Edited = %d, Marked = %d, want 1 and 1", res.Edited, res.Marked)
	}
	if len(alerted) != 1 || alerted[0] != "done" {
		t.Errorf("Alert callback got %q", alerted)
	}

	frames := doc.TextFrames()
	if got := frames[0].Content(); got != "Han_Xizang" {
		t.Errorf("contents = %q, want Han_Xizang", got)
	}
	if c, ok := frames[1].Fill(); !ok || c != marker.Red {
		t.Errorf("Fill() = %v, %v, want red", c, ok)
	}
}

func TestRun_LockedLayerThrows(t *testing.T) {
	doc := load(t)
	src := `app.activeDocument.textFrames[3].contents = "x";`

	_, err := Run(context.Background(), doc, src, "locked.jsx", Options{})
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Errorf("error = %v, want locked layer error", err)
	}

	src = `
try {
    app.activeDocument.textFrames[3].textRange.characterAttributes.fillColor = new RGBColor();
    alert("assigned");
} catch (e) {
    alert("caught");
}`
	res, err := Run(context.Background(), doc, src, "locked-fill.jsx", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Alerts) != 1 || res.Alerts[0] != "caught" {
		t.Errorf("Alerts = %q, want [caught]", res.Alerts)
	}
}

func TestRun_SyntaxError(t *testing.T) {
	_, err := Run(context.Background(), load(t), "var = ;", "bad.jsx", Options{})
	if err == nil {
		t.Fatal("Run() succeeded for invalid script")
	}
}

func TestRun_Timeout(t *testing.T) {
	doc := load(t)
	_, err := Run(context.Background(), doc, "while (true) {}", "loop.jsx", Options{Timeout: 50 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestChannel(t *testing.T) {
	doc := load(t)
	src := `
var c = new RGBColor();
c.red = 300; c.green = -4; c.blue = 12.7;
app.activeDocument.textFrames[0].textRange.characterAttributes.fillColor = c;`
	if _, err := Run(context.Background(), doc, src, "clamp.jsx", Options{}); err != nil {
		t.Fatal(err)
	}
	c, _ := doc.TextFrames()[0].Fill()
	if want := (marker.Color{R: 255, G: 0, B: 12}); c != want {
		t.Errorf("Fill() = %v, want %v", c, want)
	}
}
