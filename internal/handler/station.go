package handler // handler package contains station lifecycle handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Musah95/wapi-2/internal/auth"
	"github.com/Musah95/wapi-2/internal/config"
	"github.com/Musah95/wapi-2/internal/model"
	"github.com/Musah95/wapi-2/internal/repository"
	"github.com/Musah95/wapi-2/internal/utils"
)

// StationHandler bundles repositories for the station lifecycle endpoints.
type StationHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Stations *repository.StationRepo
}

// NewStationHandler constructs a StationHandler and panics if a dependency is nil.
func NewStationHandler(cfg config.Config, users *repository.UserRepo, stations *repository.StationRepo) *StationHandler {
	if users == nil || stations == nil {
		panic("nil repository passed to NewStationHandler")
	}
	return &StationHandler{Cfg: cfg, Users: users, Stations: stations}
}

// requireUser loads the authenticated user's record.  The bool result is
// false when the context carries no usable identity (missing subject or a
// user row that no longer exists).
func (h *StationHandler) requireUser(ctx context.Context, c echo.Context) (model.User, bool) {
	uid, err := getUserID(c)
	if err != nil {
		return model.User{}, false
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return model.User{}, false
	}
	return u, true
}

// Create handles POST /stations/ and registers a new weather station for the
// authenticated user.  The station receives a freshly generated API access
// key and a 4-digit code unique within its name.
func (h *StationHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, ok := h.requireUser(ctx, c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	var body struct {
		Location    string `json:"location"`
		StationName string `json:"station_name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	location := strings.TrimSpace(body.Location)
	if location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location is required"})
	}
	name := strings.TrimSpace(body.StationName)

	key, err := utils.NewAPIKey()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not generate API key"})
	}
	code, err := utils.UniqueStationCode(u.ID, func(candidate string) (bool, error) {
		return h.Stations.CodeExists(ctx, name, candidate)
	})
	if err != nil {
		if errors.Is(err, utils.ErrCodeSpaceExhausted) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not generate unique station code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	st := &model.Station{
		APIAccessKey: key,
		StationName:  name,
		UniqueCode:   code,
		Location:     location,
		Owner:        u.Username,
	}
	if err := h.Stations.Create(ctx, st); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "station with that name/code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create station"})
	}
	return c.JSON(http.StatusCreated, toStationData(st))
}

// Update handles PUT /stations/:id/location.  The patch is partial: only
// fields present in the body change; location-only and visibility-only
// updates are both valid.
func (h *StationHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, ok := h.requireUser(ctx, c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Location *string `json:"location"`
		IsPublic *bool   `json:"is_public"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	st, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !auth.ForUser(&u).CanManageStation(st) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not authorized to update this station"})
	}

	if err := h.Stations.Update(ctx, id, body.Location, body.IsPublic); err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	updated, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toStationData(updated))
}

// Delete handles DELETE /stations/:id.  The station and every historical
// reading it owns disappear together; the repository runs both deletes in
// one transaction.
func (h *StationHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, ok := h.requireUser(ctx, c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	st, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !auth.ForUser(&u).CanManageStation(st) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not authorized to delete this station"})
	}

	if err := h.Stations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Details handles GET /stations/:id/details.  Anonymous callers are
// permitted; the visibility rule decides what they may see.  Existence is
// checked before the policy so an absent station is a 404, never a policy
// crash, and the payload only carries the API key for callers who could
// also manage the station.
func (h *StationHandler) Details(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	st, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	p := resolvePrincipal(ctx, c, h.Users)
	if !p.CanViewStation(st) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not authorized to access this station's details"})
	}
	if p.CanManageStation(st) {
		return c.JSON(http.StatusOK, toStationData(st))
	}
	return c.JSON(http.StatusOK, toPublicStationData(st))
}

// ListAll handles GET /stations/all.  Admins see every station; everyone
// else is implicitly filtered to their own.  The scoping is a filter, not a
// per-row authorization check, so the response is always 200 for an
// authenticated caller.
func (h *StationHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, ok := h.requireUser(ctx, c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	owner, all, ok := auth.ForUser(&u).ListScope()
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var (
		stations []*model.Station
		err      error
	)
	if all {
		stations, err = h.Stations.ListAll(ctx)
	} else {
		stations, err = h.Stations.ListByOwner(ctx, owner)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	out := make([]stationData, 0, len(stations))
	for _, st := range stations {
		out = append(out, toStationData(st))
	}
	return c.JSON(http.StatusOK, out)
}

// ListPublic handles GET /stations/public and returns every station whose
// visibility flag is set.  No authentication applies and API keys are never
// included.
func (h *StationHandler) ListPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stations, err := h.Stations.ListPublic(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]publicStationData, 0, len(stations))
	for _, st := range stations {
		out = append(out, toPublicStationData(st))
	}
	return c.JSON(http.StatusOK, out)
}
