package main

import (
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/rs/zerolog/log"

	"trackrate/internal/utils"
)

// pages maps a render name to its view file under views/.
var pages = []string{
	"home.html",
	"search.html",
	"track.html",
	"user/profile.html",
	"auth/sign-in.html",
	"error.html",
}

// loadTemplates pairs every view with the shared layouts and components so
// views can share block names without colliding.
func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		log.Fatal().Err(err).Msg("globbing layouts")
	}
	components, err := filepath.Glob(filepath.Join(templatesDir, "components", "*.html"))
	if err != nil {
		log.Fatal().Err(err).Msg("globbing components")
	}

	funcs := utils.TemplateFuncs()
	for _, name := range pages {
		files := make([]string, 0, len(layouts)+len(components)+1)
		files = append(files, layouts...)
		files = append(files, components...)
		files = append(files, filepath.Join(templatesDir, "views", name))
		r.AddFromFilesFuncs(name, funcs, files...)
	}
	return r
}
