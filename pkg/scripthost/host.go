// Package scripthost runs Illustrator-style ExtendScript against an SVG
// document. It provides the slice of the Illustrator object model the
// framekit scripts use:
//
//	app.activeDocument.textFrames[i].contents
//	app.activeDocument.textFrames[i].layer.visible / .name / .locked
//	app.activeDocument.textFrames[i].textRange.characterAttributes.fillColor
//	new RGBColor()
//	alert(message), $.writeln(message)
//
// Fill assignments are applied once the script has finished, so a color
// object may still be adjusted after it was assigned.
package scripthost

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dop251/goja"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/hoppxi/framekit/pkg/svgdoc"
)

const DefaultTimeout = 60 * time.Second

type Options struct {
	// Timeout bounds the script run. Zero means DefaultTimeout.
	Timeout time.Duration
	// Alert receives each alert() message as it is raised.
	Alert func(msg string)
	// Logf receives $.writeln output. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

type Result struct {
	Alerts []string
	// Marked counts frames whose fill was assigned.
	Marked int
	// Edited counts assignments to contents.
	Edited int
}

type runResult struct {
	err error
}

// Run executes src against doc. name is used in error messages only.
func Run(ctx context.Context, doc *svgdoc.Document, src, name string, opts Options) (Result, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	vm := goja.New()
	h := &host{vm: vm, frames: doc.TextFrames(), opts: opts}
	if err := h.install(); err != nil {
		return Result{}, fmt.Errorf("failed to prepare script %s: %w", name, err)
	}

	resultCh := make(chan runResult, 1)
	go func() {
		_, err := vm.RunString(src)
		resultCh <- runResult{err: err}
	}()

	var res runResult
	select {
	case <-ctx.Done():
		vm.Interrupt("timeout")
		<-resultCh
		return h.result(), fmt.Errorf("script %s timed out: %w", name, ctx.Err())
	case res = <-resultCh:
	}

	if res.err != nil {
		return h.result(), fmt.Errorf("failed to run script %s: %w", name, res.err)
	}

	if err := h.commit(); err != nil {
		return h.result(), fmt.Errorf("script %s: %w", name, err)
	}
	return h.result(), nil
}

type host struct {
	vm      *goja.Runtime
	frames  []*svgdoc.TextFrame
	pending []*goja.Object
	opts    Options

	alerts []string
	marked int
	edited int
}

func (h *host) result() Result {
	return Result{Alerts: h.alerts, Marked: h.marked, Edited: h.edited}
}

func (h *host) throw(err error) {
	panic(h.vm.NewGoError(err))
}

func (h *host) install() error {
	vm := h.vm
	h.pending = make([]*goja.Object, len(h.frames))

	if err := vm.Set("RGBColor", func(call goja.ConstructorCall) *goja.Object {
		initColor(call.This, marker.Color{})
		return nil
	}); err != nil {
		return err
	}

	if err := vm.Set("alert", func(call goja.FunctionCall) goja.Value {
		msg := call.Argument(0).String()
		h.alerts = append(h.alerts, msg)
		if h.opts.Alert != nil {
			h.opts.Alert(msg)
		}
		return goja.Undefined()
	}); err != nil {
		return err
	}

	console := vm.NewObject()
	if err := console.Set("writeln", func(call goja.FunctionCall) goja.Value {
		h.opts.Logf("jsx: %s", call.Argument(0).String())
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if err := vm.Set("$", console); err != nil {
		return err
	}

	items := make([]any, len(h.frames))
	for i := range h.frames {
		obj, err := h.frameObject(i)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		items[i] = obj
	}

	doc := vm.NewObject()
	if err := doc.Set("textFrames", vm.NewArray(items...)); err != nil {
		return err
	}
	app := vm.NewObject()
	if err := app.Set("activeDocument", doc); err != nil {
		return err
	}
	return vm.Set("app", app)
}

func (h *host) frameObject(i int) (*goja.Object, error) {
	vm := h.vm
	f := h.frames[i]

	obj := vm.NewObject()
	if err := obj.Set("typename", "TextFrame"); err != nil {
		return nil, err
	}
	if err := obj.Set("name", f.ID()); err != nil {
		return nil, err
	}

	contentsGet := vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(f.Content())
	})
	contentsSet := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if err := f.SetContent(call.Argument(0).String()); err != nil {
			h.throw(err)
		}
		h.edited++
		return goja.Undefined()
	})
	if err := obj.DefineAccessorProperty("contents", contentsGet, contentsSet, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		return nil, err
	}

	layer := vm.NewObject()
	for k, v := range map[string]any{"name": f.Layer(), "visible": f.Visible(), "locked": f.Locked()} {
		if err := layer.Set(k, v); err != nil {
			return nil, err
		}
	}
	if err := obj.Set("layer", layer); err != nil {
		return nil, err
	}

	fillGet := vm.ToValue(func(goja.FunctionCall) goja.Value {
		if h.pending[i] != nil {
			return h.pending[i]
		}
		c, _ := f.Fill()
		o := vm.NewObject()
		initColor(o, c)
		return o
	})
	fillSet := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if f.Locked() {
			h.throw(svgdoc.ErrLocked)
		}
		arg := call.Argument(0)
		if goja.IsUndefined(arg) || goja.IsNull(arg) {
			h.throw(errors.New("fillColor must be a color"))
		}
		h.pending[i] = arg.ToObject(vm)
		return goja.Undefined()
	})

	attrs := vm.NewObject()
	if err := attrs.DefineAccessorProperty("fillColor", fillGet, fillSet, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		return nil, err
	}
	textRange := vm.NewObject()
	if err := textRange.Set("characterAttributes", attrs); err != nil {
		return nil, err
	}
	if err := obj.Set("textRange", textRange); err != nil {
		return nil, err
	}

	return obj, nil
}

// commit applies the fill colors assigned during the run.
func (h *host) commit() error {
	var errs []error
	for i, obj := range h.pending {
		if obj == nil {
			continue
		}
		if err := h.frames[i].Mark(colorOf(obj)); err != nil {
			errs = append(errs, &marker.ElementError{Index: i, Content: h.frames[i].Content(), Err: err})
			continue
		}
		h.marked++
	}
	return errors.Join(errs...)
}

func initColor(o *goja.Object, c marker.Color) {
	_ = o.Set("typename", "RGBColor")
	_ = o.Set("red", int(c.R))
	_ = o.Set("green", int(c.G))
	_ = o.Set("blue", int(c.B))
}

func colorOf(o *goja.Object) marker.Color {
	return marker.Color{R: channel(o.Get("red")), G: channel(o.Get("green")), B: channel(o.Get("blue"))}
}

func channel(v goja.Value) uint8 {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	n := v.ToInteger()
	switch {
	case n < 0:
		return 0
	case n > 255:
		return 255
	}
	return uint8(n)
}
