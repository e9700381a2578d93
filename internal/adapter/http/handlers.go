package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/coatcheck/coatcheck-service/internal/comments"
	"github.com/coatcheck/coatcheck-service/internal/domain"
)

type handlers struct {
	comments *comments.Service
	weather  domain.WeatherProvider
	logger   *slog.Logger
}

type saveCommentRequest struct {
	UserName           string   `json:"userName"`
	CommentDescription string   `json:"commentDescription"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
}

// handleSaveComment handles POST /comment/save.
func (h *handlers) handleSaveComment(w http.ResponseWriter, r *http.Request) {
	var req saveCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Absent coordinates become NaN so the service rejects them in its own
	// validation order, after username and description.
	lat, lon := math.NaN(), math.NaN()
	if req.Latitude != nil {
		lat = *req.Latitude
	}
	if req.Longitude != nil {
		lon = *req.Longitude
	}

	id, err := h.comments.Save(r.Context(), req.UserName, req.CommentDescription, lat, lon)
	if err != nil {
		h.writeCommentError(w, err, "Failed to add comment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Comment added successfully!",
		"commentId": id,
	})
}

// handleNearbyComments handles GET /comment/get/nearby?lat&lon.
func (h *handlers) handleNearbyComments(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseCoordinates(w, r)
	if !ok {
		return
	}

	results, err := h.comments.Nearby(r.Context(), lat, lon)
	if err != nil {
		h.writeCommentError(w, err, "Failed to get nearby comments")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

type rateCommentRequest struct {
	CommentID string `json:"commentId"`
	VoteType  string `json:"voteType"`
}

// handleRateComment handles POST /comment/rate. The response echoes the
// updated counter under its table attribute name, mirroring an UPDATED_NEW
// return shape.
func (h *handlers) handleRateComment(w http.ResponseWriter, r *http.Request) {
	var req rateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count, err := h.comments.Rate(r.Context(), req.CommentID, req.VoteType)
	if err != nil {
		h.writeCommentError(w, err, "Failed to update vote")
		return
	}

	counter := "ThumbsUp"
	if domain.VoteKind(req.VoteType) == domain.VoteDown {
		counter = "ThumbsDown"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Vote updated successfully!",
		"result":  map[string]int64{counter: count},
	})
}

// coatAdviceResponse is the flattened shape the frontend expects: the top
// weather condition, wind, and temperature blocks merged into one object.
type coatAdviceResponse struct {
	Location       string  `json:"location"`
	ShouldWearCoat bool    `json:"shouldWearCoat"`
	ID             int     `json:"id"`
	Main           string  `json:"main"`
	Description    string  `json:"description"`
	Icon           string  `json:"icon"`
	Wind           wind    `json:"wind"`
	Temp           float64 `json:"temp"`
	FeelsLike      float64 `json:"feels_like"`
	TempMin        float64 `json:"temp_min"`
	TempMax        float64 `json:"temp_max"`
	Pressure       int     `json:"pressure"`
	Humidity       int     `json:"humidity"`
}

type wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
	Gust  float64 `json:"gust,omitempty"`
}

// handleCheckCoat handles GET /check-coat?lat&lon.
func (h *handlers) handleCheckCoat(w http.ResponseWriter, r *http.Request) {
	if h.weather == nil {
		writeError(w, http.StatusServiceUnavailable, "weather advice is not configured")
		return
	}

	lat, lon, ok := parseCoordinates(w, r)
	if !ok {
		return
	}

	cond, err := h.weather.Current(r.Context(), lat, lon)
	if err != nil {
		h.logger.Error("weather lookup failed", "lat", lat, "lon", lon, "error", err)
		writeError(w, http.StatusBadGateway, "Failed to fetch weather data")
		return
	}

	writeJSON(w, http.StatusOK, coatAdviceResponse{
		Location:       cond.Location,
		ShouldWearCoat: domain.ShouldWearCoat(cond),
		ID:             cond.ConditionID,
		Main:           cond.Main,
		Description:    cond.Description,
		Icon:           cond.Icon,
		Wind:           wind{Speed: cond.WindSpeed, Deg: cond.WindDeg, Gust: cond.WindGust},
		Temp:           cond.Temp,
		FeelsLike:      cond.FeelsLike,
		TempMin:        cond.TempMin,
		TempMax:        cond.TempMax,
		Pressure:       cond.Pressure,
		Humidity:       cond.Humidity,
	})
}

type feedbackRequest struct {
	ThumbsUp bool `json:"thumbsup"`
}

// handleSendFeedback handles POST /send-feedback. Feedback is logged only.
func (h *handlers) handleSendFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.Info("feedback received", "thumbsup", req.ThumbsUp)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Thank you for your feedback"})
}

// parseCoordinates reads lat/lon query parameters, writing a 400 and
// returning ok=false when either is missing or non-numeric.
func parseCoordinates(w http.ResponseWriter, r *http.Request) (lat, lon float64, ok bool) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if latStr == "" || lonStr == "" {
		writeError(w, http.StatusBadRequest, "lat and lon query parameters are required")
		return 0, 0, false
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		writeError(w, http.StatusBadRequest, "lat and lon must be numeric")
		return 0, 0, false
	}
	return lat, lon, true
}

// writeCommentError maps service errors onto HTTP statuses. Store internals
// never reach the client; 5xx responses carry only the generic message.
func (h *handlers) writeCommentError(w http.ResponseWriter, err error, serverMsg string) {
	var iie *domain.InvalidInputError
	switch {
	case errors.As(err, &iie):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid input: %s", iie.Field))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "comment not found")
	default:
		h.logger.Error("comment operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, serverMsg)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
