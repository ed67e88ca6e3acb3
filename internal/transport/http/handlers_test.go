package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cemap-quiz-service/internal/access"
	"cemap-quiz-service/internal/auth"
	"cemap-quiz-service/internal/domain"
	"cemap-quiz-service/internal/infra/memory"
	"cemap-quiz-service/internal/leaderboard"
	"cemap-quiz-service/internal/payment"
	"cemap-quiz-service/internal/quiz"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	bank := memory.NewQuestionBank(testBank())
	scores := memory.NewScoreStore()
	svc := quiz.NewServiceWithRand(
		memory.NewSessionStore(), bank, scores,
		rand.New(rand.NewSource(7)),
		func() time.Time { return time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC) },
	)

	verifier := &payment.StaticVerifier{Grants: map[string]payment.Verification{
		"pi_exam":   {Verified: true, AccessToken: "tok-exam", PurchaseType: "exam"},
		"pi_bundle": {Verified: true, AccessToken: "tok-bundle", PurchaseType: "bundle"},
	}}

	router := NewRouter(Deps{
		Quiz: svc,
		Leaderboard: leaderboard.NewAggregatorWithClock(scores, func() time.Time {
			return time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
		}),
		Gate:    access.NewGate(memory.NewTokenStore(), verifier),
		Auth:    auth.NewService(memory.NewUserStore(), "test-secret"),
		Ratings: memory.NewRatingStore(),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func testBank() []domain.Question {
	questions := make([]domain.Question, 0, 14)
	for i := 0; i < 10; i++ {
		questions = append(questions, domain.Question{
			ID:            fmt.Sprintf("q%d", i),
			Topic:         "Regulation",
			Text:          fmt.Sprintf("Question %d", i),
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: domain.OptionA,
		})
	}
	for g := 0; g < 2; g++ {
		for i := 0; i < 2; i++ {
			questions = append(questions, domain.Question{
				ID:              fmt.Sprintf("s%d-%d", g, i),
				Topic:           "Affordability",
				Text:            "Scenario question",
				Options:         []string{"a", "b", "c", "d"},
				CorrectOption:   domain.OptionB,
				ScenarioText:    "Scenario preamble",
				ScenarioGroupID: fmt.Sprintf("grp%d", g),
			})
		}
	}
	return questions
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestQuestionsAndTopics(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/questions?count=3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var qres struct {
		Questions []domain.Question `json:"questions"`
		Truncated bool              `json:"truncated"`
	}
	decode(t, resp, &qres)
	if len(qres.Questions) != 3 || qres.Truncated {
		t.Fatalf("expected 3 untruncated questions, got %d truncated=%v", len(qres.Questions), qres.Truncated)
	}

	resp, err = http.Get(server.URL + "/api/topics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var topics []string
	decode(t, resp, &topics)
	if len(topics) != 1 || topics[0] != "Regulation" {
		t.Fatalf("expected standalone topics only, got %v", topics)
	}

	resp, err = http.Get(server.URL + "/api/all-topics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var all []string
	decode(t, resp, &all)
	if len(all) != 2 {
		t.Fatalf("expected both topics, got %v", all)
	}
}

func TestPracticeSessionFlow(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/sessions", map[string]interface{}{
		"mode": "practice", "count": 3, "topic": "Regulation",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var view quiz.View
	decode(t, resp, &view)
	if view.ID == "" || len(view.Questions) != 3 {
		t.Fatalf("unexpected session view %+v", view)
	}
	for _, q := range view.Questions {
		if q.CorrectOption != "" {
			t.Fatalf("session view leaked correct option for %s", q.ID)
		}
	}

	base := server.URL + "/api/sessions/" + view.ID
	for _, q := range view.Questions {
		resp := postJSON(t, base+"/answers", map[string]string{
			"questionId": q.ID, "option": "A",
		})
		var feedback quiz.Feedback
		decode(t, resp, &feedback)
		if !feedback.Revealed || !feedback.Correct {
			t.Fatalf("practice feedback should reveal correctness, got %+v", feedback)
		}
		resp = postJSON(t, base+"/advance", nil)
		var progress quiz.Progress
		decode(t, resp, &progress)
		if progress.Total != 3 {
			t.Fatalf("unexpected progress %+v", progress)
		}
	}

	resp = postJSON(t, base+"/complete", map[string]string{"name": "Alice"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result quiz.Result
	decode(t, resp, &result)
	if result.Score != 3 || result.Record != nil {
		t.Fatalf("unexpected result %+v", result)
	}

	resp, err := http.Get(base + "/certificate")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var cert quiz.Certificate
	decode(t, resp, &cert)
	if cert.Name != "Alice" || cert.Score != 3 {
		t.Fatalf("unexpected certificate %+v", cert)
	}

	req, _ := http.NewRequest(http.MethodDelete, base, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", delResp.StatusCode)
	}

	resp = postJSON(t, base+"/advance", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after discard, got %d", resp.StatusCode)
	}
}

func TestPaidModeRequiresEntitlement(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/sessions", map[string]string{"mode": "exam"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402 for locked exam, got %d", resp.StatusCode)
	}

	// Failed verification also answers 402 and grants nothing.
	resp = postJSON(t, server.URL+"/api/verify-payment", map[string]string{"paymentIntentId": "pi_bogus"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402 for bogus payment, got %d", resp.StatusCode)
	}

	resp = postJSON(t, server.URL+"/api/verify-payment", map[string]string{"paymentIntentId": "pi_exam"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for verified payment, got %d", resp.StatusCode)
	}
	var verdict struct {
		Verified     bool   `json:"verified"`
		PurchaseType string `json:"purchaseType"`
	}
	decode(t, resp, &verdict)
	if !verdict.Verified || verdict.PurchaseType != "exam" {
		t.Fatalf("unexpected verdict %+v", verdict)
	}

	accessResp, err := http.Get(server.URL + "/api/access?mode=exam")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var accessBody map[string]bool
	decode(t, accessResp, &accessBody)
	if !accessBody["unlocked"] {
		t.Fatalf("exam should be unlocked after purchase")
	}

	resp = postJSON(t, server.URL+"/api/sessions", map[string]string{"mode": "exam"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 after unlock, got %d", resp.StatusCode)
	}

	// Scenario stays locked: exam token is scope-bound.
	resp = postJSON(t, server.URL+"/api/sessions", map[string]string{"mode": "scenario"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402 for scenario, got %d", resp.StatusCode)
	}
}

func TestLeaderboardEndpoints(t *testing.T) {
	server := newTestServer(t)

	// Unlock and finish a scenario run so a record exists.
	resp := postJSON(t, server.URL+"/api/verify-payment", map[string]string{"paymentIntentId": "pi_bundle"})
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/api/sessions", map[string]interface{}{"mode": "scenario", "count": 2})
	var view quiz.View
	decode(t, resp, &view)

	base := server.URL + "/api/sessions/" + view.ID
	for _, q := range view.Questions {
		r := postJSON(t, base+"/answers", map[string]string{"questionId": q.ID, "option": "B"})
		r.Body.Close()
		r = postJSON(t, base+"/advance", nil)
		r.Body.Close()
	}
	resp = postJSON(t, base+"/complete", map[string]string{"name": "Carol"})
	var result quiz.Result
	decode(t, resp, &result)
	if result.Record == nil {
		t.Fatalf("scenario completion should produce a record")
	}

	scoresResp, err := http.Get(server.URL + "/api/high-scores?mode=scenario")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var records []domain.HighScoreRecord
	decode(t, scoresResp, &records)
	// The single record is also the all-time best, so the weekly list dedups it.
	if len(records) != 0 {
		t.Fatalf("expected weekly list without the all-time best, got %+v", records)
	}

	bestResp, err := http.Get(server.URL + "/api/all-time-high-score?mode=scenario")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var best *domain.HighScoreRecord
	decode(t, bestResp, &best)
	if best == nil || best.Name != "Carol" {
		t.Fatalf("expected Carol as all-time best, got %+v", best)
	}
}

func TestAuthFlow(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/register", map[string]string{
		"name": "Alice", "email": "a@b.com", "password": "password1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/api/register", map[string]string{
		"name": "Alice", "email": "a@b.com", "password": "password1",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}

	resp = postJSON(t, server.URL+"/api/login", map[string]string{
		"email": "a@b.com", "password": "password1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var login struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	decode(t, resp, &login)
	if login.Token == "" {
		t.Fatalf("expected a token")
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	meResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	var me domain.User
	decode(t, meResp, &me)
	if me.Email != "a@b.com" {
		t.Fatalf("unexpected me response %+v", me)
	}

	plainResp, err := http.Get(server.URL + "/api/me")
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	plainResp.Body.Close()
	if plainResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", plainResp.StatusCode)
	}

	resp = postJSON(t, server.URL+"/api/login", map[string]string{
		"email": "a@b.com", "password": "wrongpass",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", resp.StatusCode)
	}
}

func TestRatingsEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/ratings", map[string]int{"rating": 9})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range rating, got %d", resp.StatusCode)
	}

	resp = postJSON(t, server.URL+"/api/ratings", map[string]int{"rating": 4, "questionIndex": 10})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	listResp, err := http.Get(server.URL + "/api/ratings")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var ratings []domain.SatisfactionRating
	decode(t, listResp, &ratings)
	if len(ratings) != 1 || ratings[0].Rating != 4 || ratings[0].QuestionIndex != 10 {
		t.Fatalf("unexpected ratings %+v", ratings)
	}
}

func TestSubmitToUnknownSession(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/sessions/nope/answers", map[string]string{
		"questionId": "q0", "option": "A",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCompleteIncompleteSessionConflicts(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/sessions", map[string]interface{}{"mode": "practice", "count": 2})
	var view quiz.View
	decode(t, resp, &view)

	resp = postJSON(t, server.URL+"/api/sessions/"+view.ID+"/complete", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for incomplete session, got %d", resp.StatusCode)
	}
}
