// Package scene is the retained vector scene graph that quill tools draw into.
//
// A [Project] owns an ordered list of layers. Every element of the tree is an
// [Item]; a single flat struct covers layers, groups, paths and compound
// paths. Only paths carry geometry and only leaf paths are painted.
//
//	project := scene.NewProject()
//	path := scene.NewPath(scene.Point{X: 10, Y: 10}, scene.Point{X: 90, Y: 40})
//	path.StrokeColor = &scene.Color{R: 0, G: 0, B: 0, A: 1}
//	project.ActiveLayer().AddChild(path)
//
// A [View] maps between view space (canvas pixels) and project space and
// renders the project onto an [ebiten.Image] through ebiten's vector package.
//
// The package is single-threaded, like the rest of quill: all mutation
// happens on the game loop goroutine.
package scene
