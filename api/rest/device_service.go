package rest

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trevor-gituru/wireguard-relay-api/model"
)

func (router *Router) initDevices() {
	router.Devices.Handle("/register", router.buildRegisterDeviceHandler()).Methods("POST")
	router.Devices.Handle("/remove", router.buildRemoveDeviceHandler()).Methods("POST")
	router.Devices.Handle("/list", router.buildListDevicesHandler()).Methods("GET")
	router.Devices.Handle("/status", router.buildStatusHandler()).Methods("GET")
	router.Devices.Handle("/restart", router.buildRestartHandler()).Methods("POST")
}

func (router *Router) initHealth() {
	router.Root.Handle("/health", router.buildHealthHandler()).Methods("GET")
}

type registerDeviceRequest struct {
	Serial    string `json:"serial"`
	PublicKey string `json:"public_key"`
}

type removeDeviceRequest struct {
	Serial string `json:"serial"`
}

type removeDeviceResponse struct {
	Detail string `json:"detail"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type healthResponse struct {
	Status         string `json:"status"`
	RelayPublicKey string `json:"relay_public_key"`
}

func (router *Router) buildRegisterDeviceHandler() http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) error {
		var req registerDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return errors.Wrap(model.ErrInvalidInput, err.Error())
		}
		registration, err := router.App.RegisterDevice(r.Context(), req.Serial, req.PublicKey)
		if err != nil {
			return err
		}
		return jsoner(w, http.StatusOK, registration)
	}
	return HandlerFunc(fn)
}

func (router *Router) buildRemoveDeviceHandler() http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) error {
		var req removeDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return errors.Wrap(model.ErrInvalidInput, err.Error())
		}
		if err := router.App.RemoveDevice(r.Context(), req.Serial); err != nil {
			return err
		}
		return jsoner(w, http.StatusOK, removeDeviceResponse{
			Detail: "Device " + req.Serial + " removed successfully",
		})
	}
	return HandlerFunc(fn)
}

func (router *Router) buildListDevicesHandler() http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) error {
		devices, err := router.App.ListDevices()
		if err != nil {
			return err
		}
		return jsoner(w, http.StatusOK, devices)
	}
	return HandlerFunc(fn)
}

func (router *Router) buildStatusHandler() http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) error {
		status, err := router.App.InterfaceStatus(r.Context())
		if err != nil {
			return err
		}
		return jsoner(w, http.StatusOK, statusResponse{Status: status})
	}
	return HandlerFunc(fn)
}

func (router *Router) buildRestartHandler() http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) error {
		if err := router.App.RestartInterface(r.Context()); err != nil {
			return err
		}
		return jsoner(w, http.StatusOK, statusResponse{Status: "restarted"})
	}
	return HandlerFunc(fn)
}

func (router *Router) buildHealthHandler() http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) error {
		return jsoner(w, http.StatusOK, healthResponse{
			Status:         "ok",
			RelayPublicKey: router.App.RelayPublicKey(),
		})
	}
	return HandlerFunc(fn)
}
