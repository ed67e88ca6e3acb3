package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"cemap-quiz-service/internal/auth"
	"cemap-quiz-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

type api struct {
	deps Deps
}

// --- question bank ---

func (a *api) questions(w http.ResponseWriter, r *http.Request) {
	mode := domain.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = domain.ModePractice
	}
	topic := r.URL.Query().Get("topic")
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	questions, truncated, err := a.deps.Quiz.SampleQuestions(r.Context(), mode, count, topic)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
		"truncated": truncated,
	})
}

func (a *api) topics(w http.ResponseWriter, r *http.Request) {
	topics, err := a.deps.Quiz.Topics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, topics)
}

func (a *api) allTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := a.deps.Quiz.AllTopics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, topics)
}

// --- leaderboard ---

func (a *api) highScores(w http.ResponseWriter, r *http.Request) {
	mode := domain.Mode(r.URL.Query().Get("mode"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	records, err := a.deps.Leaderboard.TopN(r.Context(), mode, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *api) allTimeHighScore(w http.ResponseWriter, r *http.Request) {
	mode := domain.Mode(r.URL.Query().Get("mode"))
	best, err := a.deps.Leaderboard.AllTimeBest(r.Context(), mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, best) // null when the mode has no records
}

// --- payments / entitlements ---

func (a *api) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentIntentID == "" {
		writeError(w, domain.ValidationError{Field: "paymentIntentId", Message: "payment reference is required"})
		return
	}
	scope, err := a.deps.Gate.GrantFromPayment(r.Context(), req.PaymentIntentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"verified":     true,
		"purchaseType": scope,
	})
}

func (a *api) checkAccess(w http.ResponseWriter, r *http.Request) {
	mode := domain.Mode(r.URL.Query().Get("mode"))
	if !mode.Valid() {
		writeError(w, domain.ValidationError{Field: "mode", Message: "unknown quiz mode"})
		return
	}
	unlocked, err := a.deps.Gate.CheckAccess(r.Context(), mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unlocked": unlocked})
}

// --- auth ---

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	user, err := a.deps.Auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	token, user, err := a.deps.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (a *api) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	user, found, err := a.deps.Auth.CurrentUser(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// --- quiz sessions ---

func (a *api) startSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode  domain.Mode `json:"mode"`
		Count int         `json:"count"`
		Topic string      `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	if req.Mode.Paid() {
		unlocked, err := a.deps.Gate.CheckAccess(r.Context(), req.Mode)
		if err != nil {
			writeError(w, err)
			return
		}
		if !unlocked {
			writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": "mode locked, purchase required"})
			return
		}
	}

	view, err := a.deps.Quiz.Start(r.Context(), req.Mode, req.Count, req.Topic)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view.StripAnswers())
}

func (a *api) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID string `json:"questionId"`
		Option     string `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	feedback, err := a.deps.Quiz.SubmitAnswer(chi.URLParam(r, "sessionID"), req.QuestionID, req.Option)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

func (a *api) advance(w http.ResponseWriter, r *http.Request) {
	progress, err := a.deps.Quiz.Advance(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (a *api) complete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	// body optional: anonymous completion is allowed
	_ = json.NewDecoder(r.Body).Decode(&req)

	result, err := a.deps.Quiz.Complete(r.Context(), chi.URLParam(r, "sessionID"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *api) certificate(w http.ResponseWriter, r *http.Request) {
	cert, err := a.deps.Quiz.Certificate(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (a *api) discardSession(w http.ResponseWriter, r *http.Request) {
	a.deps.Quiz.Discard(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// --- ratings ---

func (a *api) appendRating(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating        int `json:"rating"`
		QuestionIndex int `json:"questionIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, domain.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"})
		return
	}
	rating := domain.SatisfactionRating{
		Rating:        req.Rating,
		QuestionIndex: req.QuestionIndex,
		Timestamp:     time.Now(),
	}
	if err := a.deps.Ratings.Append(r.Context(), rating); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}

func (a *api) listRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := a.deps.Ratings.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if ratings == nil {
		ratings = []domain.SatisfactionRating{}
	}
	writeJSON(w, http.StatusOK, ratings)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var validation domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, validation)
	case errors.Is(err, domain.ErrEmptyPool):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no questions available for the requested mode or topic"})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, domain.ErrQuestionNotInSession),
		errors.Is(err, domain.ErrIncompleteSession),
		errors.Is(err, domain.ErrSessionCompleted):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrVerificationFailed):
		writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{"verified": false, "error": "payment could not be confirmed"})
	case errors.Is(err, domain.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
