package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// lookupTimeout bounds one synchronous pipeline run, retries included.
const lookupTimeout = 30 * time.Second

// Deps are the collaborators the handlers read and mutate.
type Deps struct {
	Service     *weather.Service
	Slot        *weather.Slot
	Favorites   *store.Favorites
	Preferences *store.PreferenceStore
	Logger      *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	h := &handlers{Deps: d}

	v1 := app.Group("/api/v1")

	v1.Get("/weather", h.weatherByCity)
	v1.Get("/weather/coords", h.weatherByCoords)
	v1.Get("/weather/here", h.weatherHere)
	v1.Get("/weather/location/:id", h.weatherByID)

	v1.Put("/search", h.submitSearch)
	v1.Get("/search", h.searchState)

	v1.Get("/favorites", h.listFavorites)
	v1.Post("/favorites", h.addFavorite)
	v1.Get("/favorites/weather", h.favoritesWeather)
	v1.Get("/favorites/:id", h.containsFavorite)
	v1.Delete("/favorites/:id", h.removeFavorite)
	v1.Get("/last-viewed", h.lastViewed)

	v1.Get("/preferences", h.getPreferences)
	v1.Patch("/preferences", h.patchPreferences)
	v1.Post("/preferences/units/toggle", h.toggleUnits)
	v1.Post("/preferences/theme/toggle", h.toggleTheme)
}

type handlers struct {
	Deps
}

// cityQuery holds query parameters for a city lookup.
type cityQuery struct {
	City string `validate:"required"`
	Lang string `validate:"omitempty,bcp47_language_tag"`
}

func (h *handlers) weatherByCity(c *fiber.Ctx) error {
	q := cityQuery{
		City: strings.TrimSpace(c.Query("city")),
		Lang: c.Query("lang"),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return h.lookup(c, weather.Query{City: q.City, Lang: h.lang(q.Lang)})
}

func (h *handlers) weatherByCoords(c *fiber.Ctx) error {
	coords, err := parseCoordinates(c.Query("lat"), c.Query("lon"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	lang, err := h.queryLang(c)
	if err != nil {
		return err
	}
	return h.lookup(c, weather.Query{Coords: &coords, Lang: lang})
}

func (h *handlers) weatherByID(c *fiber.Ctx) error {
	lang, err := h.queryLang(c)
	if err != nil {
		return err
	}
	return h.lookup(c, weather.Query{LocationID: c.Params("id"), Lang: lang})
}

func (h *handlers) weatherHere(c *fiber.Ctx) error {
	lang, err := h.queryLang(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	res, err := h.Service.Here(ctx, lang)
	if err != nil {
		return toHTTPError(err)
	}
	h.recordViewed(res)
	return h.render(c, res)
}

func (h *handlers) lookup(c *fiber.Ctx, q weather.Query) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	res, err := h.Service.Lookup(ctx, q)
	if err != nil {
		return toHTTPError(err)
	}
	h.recordViewed(res)
	return h.render(c, res)
}

// recordViewed stores a successful lookup as the last viewed city. A storage
// failure is logged and does not fail the request.
func (h *handlers) recordViewed(res weather.Result) {
	if res.Status != weather.StatusSuccess {
		return
	}
	if _, err := h.Favorites.RecordLastViewed(res.LocationID, res.DisplayName); err != nil {
		h.Logger.Warn("failed to record last viewed city",
			zap.String("locationId", res.LocationID), zap.Error(err))
	}
}

func (h *handlers) render(c *fiber.Ctx, res weather.Result) error {
	view := weather.NewView(res, h.Preferences.Units())
	if res.Status == weather.StatusNotFound {
		return c.Status(fiber.StatusNotFound).JSON(view)
	}
	return c.JSON(view)
}

// searchRequest is the body of PUT /search: a city, a position or an id.
type searchRequest struct {
	City       string   `json:"city"`
	Lat        *float64 `json:"lat" validate:"required_with=Lon"`
	Lon        *float64 `json:"lon" validate:"required_with=Lat"`
	LocationID string   `json:"locationId"`
	Lang       string   `json:"lang" validate:"omitempty,bcp47_language_tag"`
}

func (r searchRequest) toQuery() weather.Query {
	q := weather.Query{
		City:       strings.TrimSpace(r.City),
		LocationID: strings.TrimSpace(r.LocationID),
		Lang:       r.Lang,
	}
	if r.Lat != nil && r.Lon != nil {
		q.Coords = &weather.Coordinates{Lat: *r.Lat, Lon: *r.Lon}
	}
	return q
}

func (h *handlers) submitSearch(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	q := req.toQuery()
	q.Lang = h.lang(q.Lang)
	if err := q.Validate(); err != nil {
		return toHTTPError(err)
	}

	gen := h.Slot.Submit(q)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"generation": gen,
		"status":     weather.StatusPending,
	})
}

func (h *handlers) searchState(c *fiber.Ctx) error {
	st := h.Slot.State()
	return c.JSON(fiber.Map{
		"generation": st.Generation,
		"query":      st.Query,
		"error":      st.Error,
		"view":       weather.NewView(st.Result, h.Preferences.Units()),
	})
}

func (h *handlers) listFavorites(c *fiber.Ctx) error {
	return c.JSON(h.Favorites.List())
}

// favoriteRequest is the body of POST /favorites.
type favoriteRequest struct {
	LocationID   string `json:"locationId" validate:"required"`
	FallbackName string `json:"fallbackName" validate:"required"`
}

func (h *handlers) addFavorite(c *fiber.Ctx) error {
	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	added, err := h.Favorites.Add(req.LocationID, req.FallbackName)
	if err != nil {
		return toHTTPError(err)
	}
	status := fiber.StatusOK
	if added {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"added":     added,
		"favorites": h.Favorites.List(),
	})
}

func (h *handlers) containsFavorite(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"locationId": c.Params("id"),
		"favorite":   h.Favorites.Contains(c.Params("id")),
	})
}

func (h *handlers) removeFavorite(c *fiber.Ctx) error {
	if _, err := h.Favorites.Remove(c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// favoriteTile is one favorites-weather entry rendered in the user's units.
type favoriteTile struct {
	Favorite    weather.FavoriteCity `json:"favorite"`
	DisplayName string               `json:"displayName"`
	Temperature *string              `json:"temperature"`
	Weather     *weather.CurrentView `json:"weather"`
}

func (h *handlers) favoritesWeather(c *fiber.Ctx) error {
	lang, err := h.queryLang(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	units := h.Preferences.Units()
	tiles := h.Service.FavoritesWeather(ctx, h.Favorites.List(), lang)

	out := make([]favoriteTile, 0, len(tiles))
	for _, t := range tiles {
		tile := favoriteTile{Favorite: t.Favorite, DisplayName: t.DisplayName}
		if t.Weather != nil {
			view := weather.NewView(weather.Result{Status: weather.StatusSuccess, Weather: t.Weather}, units)
			tile.Weather = view.Current
			tile.Temperature = &view.Current.Temperature
		}
		out = append(out, tile)
	}
	return c.JSON(out)
}

func (h *handlers) lastViewed(c *fiber.Ctx) error {
	last, ok := h.Favorites.LastViewed()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no city viewed yet")
	}
	return c.JSON(last)
}

func (h *handlers) getPreferences(c *fiber.Ctx) error {
	return c.JSON(h.Preferences.Get())
}

// preferencesPatch is the body of PATCH /preferences. Absent fields are kept.
type preferencesPatch struct {
	Units    *string `json:"units"`
	Theme    *string `json:"theme"`
	Language *string `json:"language"`
}

func (h *handlers) patchPreferences(c *fiber.Ctx) error {
	var req preferencesPatch
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	next := h.Preferences.Get()
	if req.Units != nil {
		next.Units = weather.Units(*req.Units)
	}
	if req.Theme != nil {
		next.Theme = store.Theme(*req.Theme)
	}
	if req.Language != nil {
		next.Language = strings.TrimSpace(*req.Language)
	}
	if err := next.Validate(); err != nil {
		return toHTTPError(err)
	}

	if err := h.Preferences.SetUnits(next.Units); err != nil {
		return toHTTPError(err)
	}
	if err := h.Preferences.SetTheme(next.Theme); err != nil {
		return toHTTPError(err)
	}
	changed, err := h.Preferences.SetLanguage(next.Language)
	if err != nil {
		return toHTTPError(err)
	}
	if changed {
		if gen, ok := h.Slot.Relocalize(next.Language); ok {
			h.Logger.Info("language changed, refreshing search",
				zap.String("language", next.Language), zap.Uint64("generation", gen))
		}
	}

	return c.JSON(h.Preferences.Get())
}

func (h *handlers) toggleUnits(c *fiber.Ctx) error {
	if _, err := h.Preferences.ToggleUnits(); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(h.Preferences.Get())
}

func (h *handlers) toggleTheme(c *fiber.Ctx) error {
	if _, err := h.Preferences.ToggleTheme(); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(h.Preferences.Get())
}

// lang falls back to the stored language preference.
func (h *handlers) lang(requested string) string {
	if requested != "" {
		return requested
	}
	return h.Preferences.Language()
}

func (h *handlers) queryLang(c *fiber.Ctx) (string, error) {
	lang := c.Query("lang")
	if err := validate.Var(lang, "omitempty,bcp47_language_tag"); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "lang must be a language tag")
	}
	return h.lang(lang), nil
}

func parseCoordinates(lat, lon string) (weather.Coordinates, error) {
	if lat == "" || lon == "" {
		return weather.Coordinates{}, errors.New("lat and lon query parameters are required")
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return weather.Coordinates{}, errors.New("lat must be a number")
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return weather.Coordinates{}, errors.New("lon must be a number")
	}
	return weather.Coordinates{Lat: la, Lon: lo}, nil
}

// toHTTPError maps the error taxonomy onto status codes.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, weather.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrPermission):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, weather.ErrProvider):
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "weather lookup timed out")
	default:
		return err
	}
}
