// Package quill is a runtime tool host for a vector drawing surface built on
// [Ebitengine].
//
// Tools are small JavaScript programs loaded at runtime. Exactly one tool is
// active at a time; pointer and keyboard input is normalized and routed to
// it, and a tool may paint into a low-resolution raster [Overlay] whose
// pixels are traced back into vector paths.
//
// # Quick start
//
//	app := quill.NewApp(quill.AppConfig{Width: 1024, Height: 768})
//	if _, err := app.Loader.LoadDir("tools"); err != nil {
//		log.Println(err)
//	}
//	quill.Run(app, quill.RunConfig{Title: "quill", Width: 1024, Height: 768})
//
// # Input pipeline
//
// The platform adapter produces [RawPointerEvent] and [RawKeyEvent] values.
// The [Router] drops pointer events that start on draggable elements or
// inside registered UI regions, maps device coordinates to project
// coordinates through the [scene.View], rewrites cancels as ups, updates the
// [SessionTracker], and then calls the [ToolHost]. Down and up events emit
// the project-changed signal afterwards; moves never do.
//
// # Tools
//
// A tool source is the body of a function receiving four bindings:
//
//	paper     scene library: Point, Color, Path, CompoundPath, Group, Layer, Overlay, palette
//	project   the current scene.Project
//	view      the current scene.View
//	toolHost  register, activate, deactivate, getActiveTool, getActiveToolName, tools
//
// It returns an object with a name and any of the handlers onActivate,
// onDeactivate, onPointerDown, onPointerMove, onPointerUp, onKeyDown,
// onKeyUp and onColorChange:
//
//	var path;
//	return {
//		name: "pen",
//		onPointerDown: function (e) { path = new paper.Path(e.point); path.setStrokeColor(paper.palette.primary()); },
//		onPointerMove: function (e) { if (path) path.add(e.point); },
//		onPointerUp:   function (e) { path = null; },
//	};
//
// Errors raised by tools never stop the host. They are reported once on
// [ToolHost.Errors] as an [*Error] and the event is dropped.
//
// # Testing
//
// [App.SetTestRunner] replays a JSON script of synthetic input, tool
// activations and screenshots one step per frame. [App.Screenshot] queues a
// labelled PNG capture written to [App.ScreenshotDir] after the next Draw.
//
// [Ebitengine]: https://ebitengine.org
package quill
