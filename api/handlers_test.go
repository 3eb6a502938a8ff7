package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion/scoring-engine/engine"
	"github.com/pavilion/scoring-engine/engine/store"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

type testServer struct {
	t      *testing.T
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	eng := engine.New(store.NewMemory(), nil)
	h := NewHandler(eng, nil, nil)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return &testServer{t: t, server: srv}
}

// do issues a JSON request and decodes the response body into out (which
// may be nil). Returns the status code.
func (ts *testServer) do(method, path string, body, out any) int {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.server.URL+path, &buf)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.server.Client().Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func squadDTO(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return out
}

// startScoringInnings drives the API to a live innings: match created,
// innings opened, openers and opening bowler named.
func (ts *testServer) startScoringInnings() (matchID, inningsID string) {
	ts.t.Helper()

	var match MatchDTO
	status := ts.do(http.MethodPost, "/api/matches", StartMatchRequest{
		Format: "T20",
		Home:   TeamDTO{ID: "tigers", Name: "Tigers", Players: squadDTO("t", 11)},
		Away:   TeamDTO{ID: "lions", Name: "Lions", Players: squadDTO("l", 11)},
	}, &match)
	require.Equal(ts.t, http.StatusCreated, status)

	var innings InningsSummaryDTO
	status = ts.do(http.MethodPost, "/api/matches/"+match.ID+"/innings",
		StartInningsRequest{BattingTeam: "tigers", BowlingTeam: "lions"}, &innings)
	require.Equal(ts.t, http.StatusCreated, status)
	require.Equal(ts.t, "awaiting_openers", innings.Status)

	status = ts.do(http.MethodPost, "/api/innings/"+innings.InningsID+"/batsmen",
		SetBatsmenRequest{Striker: "t1", NonStriker: "t2"}, nil)
	require.Equal(ts.t, http.StatusOK, status)

	status = ts.do(http.MethodPost, "/api/innings/"+innings.InningsID+"/bowler",
		SetBowlerRequest{Bowler: "l1"}, nil)
	require.Equal(ts.t, http.StatusOK, status)

	return match.ID, innings.InningsID
}

// =============================================================================
// FLOWS
// =============================================================================

func TestAPI_ListFormats(t *testing.T) {
	ts := newTestServer(t)

	var formats []FormatDTO
	status := ts.do(http.MethodGet, "/api/formats", nil, &formats)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, formats, 2)
	assert.Equal(t, "T20", formats[0].Name)
	assert.Equal(t, 4, formats[0].MaxOversPerBowler)
}

func TestAPI_ScoringFlow(t *testing.T) {
	// GIVEN: A live T20 innings
	// WHEN: A boundary, a wide, a wicket and a replacement flow through
	// THEN: Every response carries the correct derived summary

	ts := newTestServer(t)
	_, inningsID := ts.startScoringInnings()
	balls := "/api/innings/" + inningsID + "/balls"

	var out BallOutcomeDTO
	status := ts.do(http.MethodPost, balls, RecordBallRequest{Runs: 4}, &out)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 1, out.Seq)
	assert.Equal(t, 4, out.Summary.Runs)
	assert.Equal(t, "0.1", out.Summary.Overs)
	assert.Equal(t, 24.0, out.Summary.RunRate)

	status = ts.do(http.MethodPost, balls, RecordBallRequest{Extra: "wide"}, &out)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 5, out.Summary.Runs)
	assert.Equal(t, 1, out.Summary.LegalBalls, "a wide is not a legal ball")

	status = ts.do(http.MethodPost, balls, RecordBallRequest{Wicket: "bowled"}, &out)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, out.WicketFell)
	assert.Equal(t, "l1", out.CreditedBowler)
	assert.Equal(t, "awaiting_batsman", out.Summary.Status)

	// The next ball is refused until the replacement is in.
	var errResp ErrorResponse
	status = ts.do(http.MethodPost, balls, RecordBallRequest{Runs: 1}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "batsman_required", errResp.Code)

	var summary InningsSummaryDTO
	status = ts.do(http.MethodPost, "/api/innings/"+inningsID+"/batsmen",
		SetBatsmenRequest{Batsman: "t3"}, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "live", summary.Status)

	require.Len(t, summary.Batting, 3)
	assert.Equal(t, "bowled", summary.Batting[0].HowOut)
	assert.Equal(t, "l1", summary.Batting[0].OutBowler)
	assert.Equal(t, "not out", summary.Batting[2].HowOut)

	status = ts.do(http.MethodGet, "/api/innings/"+inningsID, nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, summary.Runs)
	assert.Equal(t, 1, summary.Wickets)
}

func TestAPI_OverBoundaryAndBowlerRules(t *testing.T) {
	ts := newTestServer(t)
	_, inningsID := ts.startScoringInnings()
	balls := "/api/innings/" + inningsID + "/balls"
	bowler := "/api/innings/" + inningsID + "/bowler"

	var out BallOutcomeDTO
	for i := 0; i < 6; i++ {
		status := ts.do(http.MethodPost, balls, RecordBallRequest{}, &out)
		require.Equal(t, http.StatusCreated, status)
	}
	assert.True(t, out.OverComplete)
	assert.Equal(t, "over_boundary", out.Summary.Status)

	var errResp ErrorResponse
	status := ts.do(http.MethodPost, balls, RecordBallRequest{Runs: 1}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "over_change_required", errResp.Code)

	status = ts.do(http.MethodPost, bowler, SetBowlerRequest{Bowler: "l1"}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "same_bowler_consecutive_overs", errResp.Code)

	status = ts.do(http.MethodPost, bowler, SetBowlerRequest{Bowler: "l2"}, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_UndoLastBall(t *testing.T) {
	ts := newTestServer(t)
	_, inningsID := ts.startScoringInnings()

	var out BallOutcomeDTO
	ts.do(http.MethodPost, "/api/innings/"+inningsID+"/balls", RecordBallRequest{Runs: 6}, &out)
	require.Equal(t, 6, out.Summary.Runs)

	var summary InningsSummaryDTO
	status := ts.do(http.MethodDelete, "/api/innings/"+inningsID+"/balls/last", nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, summary.Runs)
	assert.Equal(t, 0, summary.LegalBalls)

	var errResp ErrorResponse
	status = ts.do(http.MethodDelete, "/api/innings/"+inningsID+"/balls/last", nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "nothing_to_undo", errResp.Code)
}

func TestAPI_SwapBatsmen(t *testing.T) {
	ts := newTestServer(t)
	_, inningsID := ts.startScoringInnings()

	var summary InningsSummaryDTO
	status := ts.do(http.MethodPost, "/api/innings/"+inningsID+"/swap", nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "t2", summary.Striker)
	assert.Equal(t, "t1", summary.NonStriker)
	assert.Equal(t, 0, summary.LegalBalls, "swap is not a ball")
}

func TestAPI_CustomFormatAndChase(t *testing.T) {
	// A short custom format scores a full two-innings match through the
	// API, proving target propagation and the required-rate field.

	ts := newTestServer(t)

	var match MatchDTO
	status := ts.do(http.MethodPost, "/api/matches", StartMatchRequest{
		CustomFormat: &FormatDTO{Name: "mini", Overs: 1, PlayersPerTeam: 2, MaxOversPerBowler: 1},
		Home:         TeamDTO{ID: "tigers", Players: []string{"t1", "t2"}},
		Away:         TeamDTO{ID: "lions", Players: []string{"l1", "l2"}},
	}, &match)
	require.Equal(t, http.StatusCreated, status)

	var first InningsSummaryDTO
	ts.do(http.MethodPost, "/api/matches/"+match.ID+"/innings",
		StartInningsRequest{BattingTeam: "tigers", BowlingTeam: "lions"}, &first)
	ts.do(http.MethodPost, "/api/innings/"+first.InningsID+"/batsmen",
		SetBatsmenRequest{Striker: "t1", NonStriker: "t2"}, nil)
	ts.do(http.MethodPost, "/api/innings/"+first.InningsID+"/bowler",
		SetBowlerRequest{Bowler: "l1"}, nil)

	var out BallOutcomeDTO
	for _, runs := range []int{6, 0, 4, 0, 1, 0} {
		status = ts.do(http.MethodPost, "/api/innings/"+first.InningsID+"/balls",
			RecordBallRequest{Runs: runs}, &out)
		require.Equal(t, http.StatusCreated, status)
	}
	require.True(t, out.InningsClosed)
	assert.Equal(t, "overs_exhausted", out.ClosedReason)
	assert.Equal(t, 11, out.Summary.Runs)

	// Scoring against the closed innings is refused.
	var errResp ErrorResponse
	status = ts.do(http.MethodPost, "/api/innings/"+first.InningsID+"/balls",
		RecordBallRequest{Runs: 1}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "innings_closed", errResp.Code)

	var second InningsSummaryDTO
	status = ts.do(http.MethodPost, "/api/matches/"+match.ID+"/innings",
		StartInningsRequest{BattingTeam: "lions", BowlingTeam: "tigers"}, &second)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 12, second.Target, "the chase is first-innings runs + 1")

	ts.do(http.MethodPost, "/api/innings/"+second.InningsID+"/batsmen",
		SetBatsmenRequest{Striker: "l1", NonStriker: "l2"}, nil)
	ts.do(http.MethodPost, "/api/innings/"+second.InningsID+"/bowler",
		SetBowlerRequest{Bowler: "t1"}, nil)

	ts.do(http.MethodPost, "/api/innings/"+second.InningsID+"/balls",
		RecordBallRequest{Runs: 6}, &out)
	require.NotNil(t, out.Summary.RequiredRunRate)
	assert.Equal(t, 7.2, *out.Summary.RequiredRunRate, "6 needed off 5 balls")

	ts.do(http.MethodPost, "/api/innings/"+second.InningsID+"/balls",
		RecordBallRequest{Runs: 6}, &out)
	assert.True(t, out.InningsClosed)
	assert.Equal(t, "target_reached", out.ClosedReason)

	// The match view carries both innings.
	ts.do(http.MethodGet, "/api/matches/"+match.ID, nil, &match)
	require.Len(t, match.Innings, 2)
	assert.Equal(t, "closed", match.Innings[0].Status)
	assert.Equal(t, "closed", match.Innings[1].Status)
}

func TestAPI_ErrorStatuses(t *testing.T) {
	ts := newTestServer(t)

	var errResp ErrorResponse

	t.Run("unknown innings is 404", func(t *testing.T) {
		status := ts.do(http.MethodGet, "/api/innings/nope", nil, &errResp)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("unknown match is 404", func(t *testing.T) {
		status := ts.do(http.MethodGet, "/api/matches/nope", nil, &errResp)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("unknown preset is 400", func(t *testing.T) {
		status := ts.do(http.MethodPost, "/api/matches", StartMatchRequest{
			Format: "Test Match",
			Home:   TeamDTO{ID: "a", Players: squadDTO("a", 11)},
			Away:   TeamDTO{ID: "b", Players: squadDTO("b", 11)},
		}, &errResp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "unknown_format", errResp.Code)
	})

	t.Run("short roster is 400", func(t *testing.T) {
		status := ts.do(http.MethodPost, "/api/matches", StartMatchRequest{
			Format: "T20",
			Home:   TeamDTO{ID: "a", Players: squadDTO("a", 3)},
			Away:   TeamDTO{ID: "b", Players: squadDTO("b", 11)},
		}, &errResp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid_roster", errResp.Code)
	})

	t.Run("malformed ball is 400", func(t *testing.T) {
		_, inningsID := ts.startScoringInnings()
		status := ts.do(http.MethodPost, "/api/innings/"+inningsID+"/balls",
			RecordBallRequest{Runs: 2, Extra: "wide"}, &errResp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid_ball", errResp.Code)
	})
}

func TestAPI_SyncFailuresEmptyWithoutRecorder(t *testing.T) {
	ts := newTestServer(t)

	var failures []SyncFailureDTO
	status := ts.do(http.MethodGet, "/api/sync/failures", nil, &failures)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, failures)
}
