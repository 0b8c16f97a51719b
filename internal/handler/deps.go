package handler

import (
	"bookfinder/internal/app/directory"
	"bookfinder/internal/app/hub"
	"bookfinder/internal/app/search"
	"bookfinder/internal/app/state"
	"bookfinder/internal/configs"
)

// AppDeps are the services shared by every handler.
type AppDeps struct {
	Config    *configs.AppConfig
	Store     *state.Store
	Directory directory.Service
	Searcher  *search.Searcher
	Hub       *hub.Manager
}
