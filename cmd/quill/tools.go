package main

import (
	"embed"
	"errors"
	"io/fs"
	"path"
	"sort"

	"github.com/phanxgames/quill"
)

//go:embed tools/*.js
var builtinTools embed.FS

// loadBuiltinTools loads the tools bundled with the binary in name order.
func loadBuiltinTools(l *quill.Loader) error {
	entries, err := fs.ReadDir(builtinTools, "tools")
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var errs []error
	for _, e := range entries {
		name := path.Join("tools", e.Name())
		src, err := fs.ReadFile(builtinTools, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := l.Load(name, string(src)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
