// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/carnet-app/carnet/geocode"
	"github.com/carnet-app/carnet/spatial"
	"github.com/gin-gonic/gin"
)

// Geocoder is the place resolution surface the server exposes.
type Geocoder interface {
	CityGeocoder

	SearchPlaces(query string, opts geocode.SearchOptions) ([]*geocode.Place, error)
	GeocodeCountry(countryName string) (*geocode.Country, error)
}

// Server exposes the journal and the place resolution engine over HTTP.
type Server struct {
	repo     TravelRepository
	geocoder Geocoder
	version  string
}

// NewServer creates a journal HTTP server.
func NewServer(repo TravelRepository, geocoder Geocoder, version string) *Server {
	return &Server{
		repo:     repo,
		geocoder: geocoder,
		version:  version,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/health", s.health)
	r.GET("/api/search", s.searchPlaces)
	r.GET("/api/geocode/city", s.geocodeCity)
	r.GET("/api/geocode/country", s.geocodeCountry)
	r.GET("/api/travels", s.listTravels)
	r.POST("/api/travels", s.createTravel)
	r.GET("/api/travels/:id", s.getTravel)
	r.DELETE("/api/travels/:id", s.deleteTravel)
	r.PUT("/api/cities/:id", s.updateCity)
	r.GET("/api/stats", s.stats)

	return r
}

// Run starts the HTTP server on the given address.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

func (s *Server) searchPlaces(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})

		return
	}

	opts := geocode.SearchOptions{
		Kinds:       ctx.Query("kinds"),
		CountryHint: ctx.Query("country"),
	}

	if limitParam := ctx.Query("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})

			return
		}

		opts.Limit = limit
	}

	places, err := s.geocoder.SearchPlaces(query, opts)
	if err != nil {
		status := http.StatusBadGateway
		if geocode.IsConfigurationError(err) {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{"error": err.Error()})

		return
	}

	if places == nil {
		places = []*geocode.Place{}
	}

	ctx.JSON(http.StatusOK, places)
}

func (s *Server) geocodeCity(ctx *gin.Context) {
	city := ctx.Query("city")
	if city == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "city query parameter is required"})

		return
	}

	summary := s.geocoder.GeocodeCity(city, ctx.Query("country"))
	if summary == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no result for city"})

		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func (s *Server) geocodeCountry(ctx *gin.Context) {
	name := ctx.Query("country")
	if name == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "country query parameter is required"})

		return
	}

	country, err := s.geocoder.GeocodeCountry(name)
	if err != nil {
		status := http.StatusBadGateway
		if geocode.IsConfigurationError(err) {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{"error": err.Error()})

		return
	}

	if country == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no result for country"})

		return
	}

	ctx.JSON(http.StatusOK, country)
}

func (s *Server) listTravels(ctx *gin.Context) {
	travels, err := s.repo.ListTravels()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if travels == nil {
		travels = []*Travel{}
	}

	ctx.JSON(http.StatusOK, travels)
}

// CityRequest is one city of a travel creation request.
type CityRequest struct {
	Name          string   `json:"name"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ArrivalDate   string   `json:"arrival_date"`
	DepartureDate string   `json:"departure_date"`
	Notes         string   `json:"notes"`
}

// CreateTravelRequest is the payload for POST /api/travels.
type CreateTravelRequest struct {
	Country   string        `json:"country"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Notes     string        `json:"notes"`
	Cities    []CityRequest `json:"cities"`
}

func (s *Server) createTravel(ctx *gin.Context) {
	var req CreateTravelRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	travel := &Travel{
		Country:   req.Country,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
	}

	for _, cr := range req.Cities {
		city := &City{
			Name:          cr.Name,
			ArrivalDate:   cr.ArrivalDate,
			DepartureDate: cr.DepartureDate,
			Notes:         cr.Notes,
		}

		if cr.Latitude != nil && cr.Longitude != nil {
			city.Point = &spatial.Point{Lat: *cr.Latitude, Lng: *cr.Longitude}
		} else if summary := s.geocoder.GeocodeCity(cr.Name, req.Country); summary != nil {
			// Resolve missing coordinates at creation time, unresolved
			// cities stay without a point and backfill retries later
			city.Point = &summary.Point
			city.CountryCode = summary.CountryCode
		}

		travel.Cities = append(travel.Cities, city)
	}

	if err := s.repo.SaveTravel(travel); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusCreated, travel)
}

func (s *Server) getTravel(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})

		return
	}

	travel, err := s.repo.GetTravel(id)
	if errors.Is(err, ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "travel not found"})

		return
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, travel)
}

func (s *Server) deleteTravel(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})

		return
	}

	err = s.repo.DeleteTravel(id)
	if errors.Is(err, ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "travel not found"})

		return
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateCityRequest is the payload for PUT /api/cities/:id. Pointer fields
// distinguish "not provided" from explicit values.
type UpdateCityRequest struct {
	Name          *string  `json:"name"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ArrivalDate   *string  `json:"arrival_date"`
	DepartureDate *string  `json:"departure_date"`
	Notes         *string  `json:"notes"`
}

func (s *Server) updateCity(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})

		return
	}

	var req UpdateCityRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	city, err := s.repo.GetCity(id)
	if errors.Is(err, ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "city not found"})

		return
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if req.Name != nil {
		city.Name = *req.Name
	}

	if req.Latitude != nil && req.Longitude != nil {
		city.Point = &spatial.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	}

	if req.ArrivalDate != nil {
		city.ArrivalDate = *req.ArrivalDate
	}

	if req.DepartureDate != nil {
		city.DepartureDate = *req.DepartureDate
	}

	if req.Notes != nil {
		city.Notes = *req.Notes
	}

	if err := s.repo.UpdateCity(city); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, city)
}

func (s *Server) stats(ctx *gin.Context) {
	stats, err := s.repo.Stats()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, stats)
}
