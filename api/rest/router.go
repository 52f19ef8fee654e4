package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/trevor-gituru/wireguard-relay-api/common"
	"github.com/trevor-gituru/wireguard-relay-api/log"
)

type Router struct {
	App    common.AppIface
	Logger common.LoggerIface

	Root    *mux.Router // ''
	Devices *mux.Router // '/devices'
}

func NewRouter(root *mux.Router, app common.AppIface, logger common.LoggerIface) *Router {
	devices := root.PathPrefix("/devices").Subrouter()

	router := &Router{
		App:    app,
		Logger: logger,

		Root:    root,
		Devices: devices,
	}

	router.initDevices()
	router.initHealth()
	root.Use(router.loggerMiddleware)
	return router
}

func (router *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	router.Root.ServeHTTP(w, req)
}

func (router *Router) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.Logger.Debug(r.Method, log.String("url", r.URL.String()))
		next.ServeHTTP(w, r)
	})
}
