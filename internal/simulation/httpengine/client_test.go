package httpengine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestSimulatePostsRostersAndMapsResponse(t *testing.T) {
	var captured simulateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/simulate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer engine-token" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = io.WriteString(w, `{
			"events": [
				{"sequence": 1, "offsetMs": 0, "quarter": 1, "kind": "kickoff"},
				{"sequence": 2, "offsetMs": 95000, "quarter": 1, "kind": "touchdown", "teamId": "bos", "points": 7, "homeScore": 7}
			],
			"homeScore": 7,
			"awayScore": 3,
			"boxScore": {"home": {"touchdowns": 1}, "away": {"fieldGoals": 1}},
			"mvp": "Home Passer",
			"seeds": {"game": 42}
		}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL + "/", Token: "engine-token"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := client.Simulate(context.Background(), simulation.Request{
		GameID:   "g1",
		GameType: games.TypeDivisional,
		Home:     teams.Team{ID: "bos"},
		Away:     teams.Team{ID: "den"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.GameID != "g1" || captured.GameType != games.TypeDivisional || captured.Home.Team.ID != "bos" {
		t.Fatalf("unexpected request payload %+v", captured)
	}
	if res.HomeScore != 7 || res.AwayScore != 3 || res.MVP != "Home Passer" || res.Seeds["game"] != 42 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Events) != 2 || res.Events[1].Offset != 95*time.Second {
		t.Fatalf("unexpected events %+v", res.Events)
	}
	if res.BoxScore.Home.Touchdowns != 1 || res.BoxScore.Away.FieldGoals != 1 {
		t.Fatalf("unexpected box score %+v", res.BoxScore)
	}
}

func TestSimulateReturnsStatusError(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader("boom")),
			Header:     make(http.Header),
		}, nil
	})
	client, _ := NewClient(Config{BaseURL: "http://engine.local", HTTPClient: &http.Client{Transport: rt}})

	_, err := client.Simulate(context.Background(), simulation.Request{GameID: "g1"})
	statusErr, ok := simulation.AsStatusError(err)
	if !ok {
		t.Fatalf("expected status error, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway || statusErr.Message != "boom" || !statusErr.Retryable() {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestSimulateDecodeError(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("{not json")),
			Header:     make(http.Header),
		}, nil
	})
	client, _ := NewClient(Config{BaseURL: "http://engine.local", HTTPClient: &http.Client{Transport: rt}})

	if _, err := client.Simulate(context.Background(), simulation.Request{GameID: "g1"}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected missing base url error")
	}
}

func TestResolveHTTPClientDefaultsTimeout(t *testing.T) {
	client, ok := resolveHTTPClient(nil, 0).(*http.Client)
	if !ok || client.Timeout != defaultHTTPTimeout {
		t.Fatalf("expected default timeout client, got %+v", client)
	}
	custom := &http.Client{}
	if resolveHTTPClient(custom, time.Second) != custom {
		t.Fatalf("expected provided client to be used")
	}
}
