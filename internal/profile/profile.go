// Package profile holds named display and export presets.
package profile

import (
	"sort"

	"github.com/AnyUserName/photoedit/internal/display"
)

// Profile defines how an edit is previewed and exported.
type Profile struct {
	Name     string
	Viewport display.Viewport // preview area
	Format   string           // default export format
	Quality  int              // encoding quality 1-100
	// Letterbox pads previews out to the full viewport with the
	// background color instead of emitting just the scaled image.
	Letterbox bool
}

// DefaultName is used when no profile is requested.
const DefaultName = "canvas"

// Built-in profiles.
var profiles = map[string]Profile{
	"canvas": {
		Name:      "canvas",
		Viewport:  display.DefaultViewport,
		Format:    "jpeg",
		Quality:   95,
		Letterbox: true,
	},
	"hd": {
		Name:      "hd",
		Viewport:  display.Viewport{W: 1280, H: 720},
		Format:    "jpeg",
		Quality:   95,
		Letterbox: true,
	},
	"thumb": {
		Name:      "thumb",
		Viewport:  display.Viewport{W: 160, H: 120},
		Format:    "jpeg",
		Quality:   80,
		Letterbox: false,
	},
}

// Get returns a profile by name. Falls back to canvas if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	p.Name = name // preserve requested name
	return p
}

// Known reports whether name is a built-in profile.
func Known(name string) bool {
	_, ok := profiles[name]
	return ok
}

// Names lists the built-in profiles.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
