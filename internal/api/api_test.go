package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cashx/engine/internal/autoplay"
	"github.com/cashx/engine/internal/missions"
	"github.com/cashx/engine/internal/rng"
	"github.com/cashx/engine/internal/store"
	"github.com/cashx/engine/internal/wallet"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	profile, err := db.CreateProfile("test")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	w, err := wallet.Open(db, profile.ID)
	if err != nil {
		t.Fatalf("open wallet: %v", err)
	}
	tracker, err := missions.NewTracker(db, profile.ID, w)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	srv := NewServer(db, profile.ID, w, tracker, rng.NewSeededSource("api_test_server", "api_test_client", 1, 0))
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestWalletEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/wallet")
	if err != nil {
		t.Fatalf("GET wallet: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body WalletResponse
	decodeBody(t, resp, &body)
	if body.Balance != store.InitialBalance {
		t.Errorf("balance = %d, want %d", body.Balance, store.InitialBalance)
	}
}

func TestPlinkoDropSettlesRound(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/plinko/drop", StakeRequest{Stake: 100, Risk: "low"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body OutcomeResponse
	decodeBody(t, resp, &body)
	if body.Outcome.GameID != "plinko" {
		t.Errorf("game = %q, want plinko", body.Outcome.GameID)
	}
	if body.Outcome.Stake != 100 {
		t.Errorf("stake = %d, want 100", body.Outcome.Stake)
	}
	if body.Balance != store.InitialBalance-100+body.Outcome.Payout {
		t.Errorf("balance = %d does not reconcile with payout %d", body.Balance, body.Outcome.Payout)
	}
}

func TestPlinkoRejectsBadRisk(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/plinko/drop", StakeRequest{Stake: 100, Risk: "extreme"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Error-Type"); got != ErrTypeValidation {
		t.Errorf("error type = %q, want %q", got, ErrTypeValidation)
	}
	resp.Body.Close()
}

func TestStakeExceedingBalanceRejected(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/sugarrush/spin", StakeRequest{Stake: store.InitialBalance + 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Error-Type"); got != ErrTypeInvalidWager {
		t.Errorf("error type = %q, want %q", got, ErrTypeInvalidWager)
	}
	resp.Body.Close()

	// Rejection must not touch the balance.
	var body WalletResponse
	walletResp, err := http.Get(ts.URL + "/api/v1/wallet")
	if err != nil {
		t.Fatalf("GET wallet: %v", err)
	}
	decodeBody(t, walletResp, &body)
	if body.Balance != store.InitialBalance {
		t.Errorf("balance = %d after rejected stake, want %d", body.Balance, store.InitialBalance)
	}
}

func TestCrashLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	// Cash-out with no open round is a conflict.
	resp := postJSON(t, ts.URL+"/api/v1/crash/cashout", struct{}{})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("idle cashout status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/crash/start", StakeRequest{Stake: 50})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}
	var state RoundStateResponse
	decodeBody(t, resp, &state)
	if state.State != "awaiting_resolution" {
		t.Errorf("state = %q, want awaiting_resolution", state.State)
	}
	if state.Balance != store.InitialBalance-50 {
		t.Errorf("balance = %d, want %d", state.Balance, store.InitialBalance-50)
	}

	// A second start while the round is open is a conflict.
	resp = postJSON(t, ts.URL+"/api/v1/crash/start", StakeRequest{Stake: 50})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double start status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/crash/cashout", struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cashout status = %d, want 200", resp.StatusCode)
	}
	var body OutcomeResponse
	decodeBody(t, resp, &body)
	if body.Outcome.GameID != "crash" {
		t.Errorf("game = %q, want crash", body.Outcome.GameID)
	}
}

func TestRouletteBetsAndSpin(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/roulette/bets", RouletteBetRequest{BetID: "red", Stake: 100})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("place bet status = %d, want 200", resp.StatusCode)
	}
	var bets RouletteBetsResponse
	decodeBody(t, resp, &bets)
	if bets.Total != 100 {
		t.Errorf("staged total = %d, want 100", bets.Total)
	}
	if bets.Balance != store.InitialBalance-100 {
		t.Errorf("balance = %d, want %d", bets.Balance, store.InitialBalance-100)
	}

	resp = postJSON(t, ts.URL+"/api/v1/roulette/spin", struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("spin status = %d, want 200", resp.StatusCode)
	}
	var body OutcomeResponse
	decodeBody(t, resp, &body)
	if body.Outcome.Stake != 100 {
		t.Errorf("stake = %d, want 100", body.Outcome.Stake)
	}

	// Spin with an empty table is a wager error.
	resp = postJSON(t, ts.URL+"/api/v1/roulette/spin", struct{}{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty spin status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRouletteClearRefunds(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/roulette/bets", RouletteBetRequest{BetID: "num_17", Stake: 40})
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/roulette/bets", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	clearResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE bets: %v", err)
	}
	if clearResp.StatusCode != http.StatusOK {
		t.Fatalf("clear status = %d, want 200", clearResp.StatusCode)
	}
	var bets RouletteBetsResponse
	decodeBody(t, clearResp, &bets)
	if bets.Total != 0 {
		t.Errorf("staged total = %d after clear, want 0", bets.Total)
	}
	if bets.Balance != store.InitialBalance {
		t.Errorf("balance = %d after refund, want %d", bets.Balance, store.InitialBalance)
	}
}

func TestBlackjackDealAndStand(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/blackjack/deal", StakeRequest{Stake: 100})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deal status = %d, want 200", resp.StatusCode)
	}
	var deal BlackjackDealResponse
	decodeBody(t, resp, &deal)
	if len(deal.PlayerHand) != 2 {
		t.Fatalf("player hand = %v, want 2 cards", deal.PlayerHand)
	}
	if deal.DealerUp == "" {
		t.Error("dealer up card missing")
	}

	if deal.Settled {
		// Natural on the opening deal; the round is already over.
		if deal.Outcome == nil {
			t.Fatal("settled deal has no outcome")
		}
		return
	}

	resp = postJSON(t, ts.URL+"/api/v1/blackjack/stand", struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stand status = %d, want 200", resp.StatusCode)
	}
	var body OutcomeResponse
	decodeBody(t, resp, &body)
	if body.Outcome.GameID != "blackjack" {
		t.Errorf("game = %q, want blackjack", body.Outcome.GameID)
	}
}

func TestBlackjackHitWhileIdleConflicts(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/blackjack/hit", struct{}{})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Error-Type"); got != ErrTypeIllegalTransition {
		t.Errorf("error type = %q, want %q", got, ErrTypeIllegalTransition)
	}
	resp.Body.Close()
}

func TestHistoryRecordsSettledRounds(t *testing.T) {
	_, ts := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp := postJSON(t, ts.URL+"/api/v1/sugarrush/spin", StakeRequest{Stake: 10})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("spin %d status = %d", i, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/v1/history?game=sugarrush")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	var body HistoryResponse
	decodeBody(t, resp, &body)
	if body.Rounds.TotalCount != 3 {
		t.Errorf("total rounds = %d, want 3", body.Rounds.TotalCount)
	}
	for _, round := range body.Rounds.Rounds {
		if round.Game != "sugarrush" {
			t.Errorf("round game = %q, want sugarrush", round.Game)
		}
	}
}

func TestHistoryRejectsBadPage(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/history?page=zero")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMissionProgressAndClaim(t *testing.T) {
	_, ts := newTestServer(t)

	// plinko_5 completes after five drops regardless of result.
	for i := 0; i < 5; i++ {
		resp := postJSON(t, ts.URL+"/api/v1/plinko/drop", StakeRequest{Stake: 10, Risk: "mid"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("drop %d status = %d", i, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/v1/missions")
	if err != nil {
		t.Fatalf("GET missions: %v", err)
	}
	var list MissionsResponse
	decodeBody(t, resp, &list)

	var completed bool
	for _, m := range list.Missions {
		if m.ID == "plinko_5" {
			completed = m.Completed
		}
	}
	if !completed {
		t.Fatal("plinko_5 not completed after five drops")
	}

	claimResp := postJSON(t, ts.URL+"/api/v1/missions/plinko_5/claim", struct{}{})
	if claimResp.StatusCode != http.StatusOK {
		t.Fatalf("claim status = %d, want 200", claimResp.StatusCode)
	}
	var claim ClaimResponse
	decodeBody(t, claimResp, &claim)
	if claim.Reward != 300 {
		t.Errorf("reward = %d, want 300", claim.Reward)
	}

	// A second claim must not pay again.
	again := postJSON(t, ts.URL+"/api/v1/missions/plinko_5/claim", struct{}{})
	if again.StatusCode != http.StatusConflict {
		t.Errorf("second claim status = %d, want 409", again.StatusCode)
	}
	again.Body.Close()
}

func TestClaimIncompleteMissionConflicts(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/missions/crash_10/claim", struct{}{})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Error-Type"); got != ErrTypeMissionNotClaimable {
		t.Errorf("error type = %q, want %q", got, ErrTypeMissionNotClaimable)
	}
	resp.Body.Close()
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready", "/health/live"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestVersionEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatalf("GET version: %v", err)
	}
	var info VersionInfo
	decodeBody(t, resp, &info)
	if info.Product != Product {
		t.Errorf("product = %q, want %q", info.Product, Product)
	}
	if info.EngineVersion == "" {
		t.Error("engine version missing")
	}
}

func TestMalformedJSONRejected(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/crash/start", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/wallet", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
	resp.Body.Close()
}

func TestEngineVersionHeader(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/wallet")
	if err != nil {
		t.Fatalf("GET wallet: %v", err)
	}
	if got := resp.Header.Get("X-Engine-Version"); got != EngineVersion {
		t.Errorf("X-Engine-Version = %q, want %q", got, EngineVersion)
	}
	resp.Body.Close()
}

func TestBalanceConservationAcrossGames(t *testing.T) {
	_, ts := newTestServer(t)

	var wagered, returned int64
	for i := 0; i < 20; i++ {
		resp := postJSON(t, ts.URL+"/api/v1/sugarrush/spin", StakeRequest{Stake: 5})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("spin %d status = %d", i, resp.StatusCode)
		}
		var body OutcomeResponse
		decodeBody(t, resp, &body)
		wagered += body.Outcome.Stake
		returned += body.Outcome.Payout
	}

	resp, err := http.Get(ts.URL + "/api/v1/wallet")
	if err != nil {
		t.Fatalf("GET wallet: %v", err)
	}
	var body WalletResponse
	decodeBody(t, resp, &body)
	want := store.InitialBalance - wagered + returned
	if body.Balance != want {
		t.Errorf("balance = %d, want %d (wagered %d, returned %d)", body.Balance, want, wagered, returned)
	}
}

func TestRouletteRejectsUnknownBetID(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/roulette/bets", RouletteBetRequest{BetID: "teal", Stake: 10})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRecentHistory(t *testing.T) {
	_, ts := newTestServer(t)

	for i := 0; i < 4; i++ {
		resp := postJSON(t, ts.URL+"/api/v1/sugarrush/spin", StakeRequest{Stake: 2})
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/v1/history/recent?limit=3")
	if err != nil {
		t.Fatalf("GET recent: %v", err)
	}
	var body struct {
		Rounds []store.Round `json:"rounds"`
	}
	decodeBody(t, resp, &body)
	if len(body.Rounds) != 3 {
		t.Errorf("recent rounds = %d, want 3", len(body.Rounds))
	}
}

func TestHistoryPagination(t *testing.T) {
	_, ts := newTestServer(t)

	for i := 0; i < 5; i++ {
		resp := postJSON(t, ts.URL+"/api/v1/plinko/drop", StakeRequest{Stake: 1, Risk: "low"})
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + fmt.Sprintf("/api/v1/history?page=%d&per_page=%d", 2, 2))
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	var body HistoryResponse
	decodeBody(t, resp, &body)
	if body.Rounds.TotalCount != 5 {
		t.Errorf("total = %d, want 5", body.Rounds.TotalCount)
	}
	if body.Rounds.TotalPages != 3 {
		t.Errorf("pages = %d, want 3", body.Rounds.TotalPages)
	}
	if len(body.Rounds.Rounds) != 2 {
		t.Errorf("page size = %d, want 2", len(body.Rounds.Rounds))
	}
}

func TestCrashConcurrentCashOutSettlesOnce(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/crash/start", StakeRequest{Stake: 100})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		settled   []OutcomeResponse
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/api/v1/crash/cashout", "application/json", nil)
			if err != nil {
				t.Errorf("POST cashout: %v", err)
				return
			}
			defer resp.Body.Close()

			mu.Lock()
			defer mu.Unlock()
			switch resp.StatusCode {
			case http.StatusOK:
				var body OutcomeResponse
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Errorf("decode cashout: %v", err)
					return
				}
				settled = append(settled, body)
			case http.StatusConflict:
				conflicts++
			default:
				t.Errorf("cashout status = %d, want 200 or 409", resp.StatusCode)
			}
		}()
	}
	wg.Wait()

	if len(settled) != 1 {
		t.Fatalf("%d cash outs settled, want exactly 1", len(settled))
	}
	if conflicts != attempts-1 {
		t.Errorf("conflicts = %d, want %d", conflicts, attempts-1)
	}

	walletResp, err := http.Get(ts.URL + "/api/v1/wallet")
	if err != nil {
		t.Fatalf("GET wallet: %v", err)
	}
	var w WalletResponse
	decodeBody(t, walletResp, &w)
	if want := store.InitialBalance - 100 + settled[0].Outcome.Payout; w.Balance != want {
		t.Errorf("balance = %d, want %d after a single settlement", w.Balance, want)
	}
}

func TestAutoplayLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	script := `
		var nextbet = 10;
		game = "sugarrush";
		var rounds = 0;
		function dobet() {
			rounds++;
			if (rounds >= 3) {
				stop();
			}
		}
	`
	resp := postJSON(t, ts.URL+"/api/v1/autoplay/start", AutoplayStartRequest{Script: script})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	var state AutoplayStateResponse
	deadline := time.Now().Add(2 * time.Second)
	for {
		stateResp, err := http.Get(ts.URL + "/api/v1/autoplay/state")
		if err != nil {
			t.Fatalf("GET state: %v", err)
		}
		decodeBody(t, stateResp, &state)
		if state.State != autoplay.StateRunning {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("runner still %s after deadline", state.State)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if state.State != autoplay.StateStopped {
		t.Fatalf("final state = %s (error %q), want stopped", state.State, state.Error)
	}
	if state.Stats == nil || state.Stats.Rounds != 3 {
		t.Fatalf("stats = %+v, want 3 rounds", state.Stats)
	}
	if state.CurrentGame != "sugarrush" {
		t.Errorf("current game = %q, want sugarrush", state.CurrentGame)
	}

	// A finished run is not stoppable again.
	stopResp := postJSON(t, ts.URL+"/api/v1/autoplay/stop", struct{}{})
	if stopResp.StatusCode != http.StatusConflict {
		t.Errorf("stop after finish status = %d, want 409", stopResp.StatusCode)
	}
	stopResp.Body.Close()

	// The rounds the strategy played landed in history like manual play.
	histResp, err := http.Get(ts.URL + "/api/v1/history?game=sugarrush")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	var hist HistoryResponse
	decodeBody(t, histResp, &hist)
	if hist.Rounds.TotalCount != 3 {
		t.Errorf("history rounds = %d, want 3", hist.Rounds.TotalCount)
	}
}

func TestAutoplayStartWhileRunningConflicts(t *testing.T) {
	_, ts := newTestServer(t)

	script := `
		var nextbet = 1;
		game = "plinko";
		function dobet() {
			sleep(200);
		}
	`
	resp := postJSON(t, ts.URL+"/api/v1/autoplay/start", AutoplayStartRequest{Script: script})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	again := postJSON(t, ts.URL+"/api/v1/autoplay/start", AutoplayStartRequest{Script: script})
	if again.StatusCode != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", again.StatusCode)
	}
	again.Body.Close()

	stopResp := postJSON(t, ts.URL+"/api/v1/autoplay/stop", struct{}{})
	if stopResp.StatusCode != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", stopResp.StatusCode)
	}
	var state AutoplayStateResponse
	decodeBody(t, stopResp, &state)
	if state.State != autoplay.StateStopped {
		t.Errorf("state after stop = %s, want stopped", state.State)
	}
}

func TestAutoplayRejectsInvalidScript(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/autoplay/start", AutoplayStartRequest{Script: "var x = 1;"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("scriptless start status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	empty := postJSON(t, ts.URL+"/api/v1/autoplay/start", AutoplayStartRequest{})
	if empty.StatusCode != http.StatusBadRequest {
		t.Errorf("empty script status = %d, want 400", empty.StatusCode)
	}
	empty.Body.Close()
}

func TestAutoplayStateBeforeFirstRun(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/autoplay/state")
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	var state AutoplayStateResponse
	decodeBody(t, resp, &state)
	if state.State != autoplay.StateIdle {
		t.Errorf("state = %s, want idle", state.State)
	}
	if state.Balance != store.InitialBalance {
		t.Errorf("balance = %d, want %d", state.Balance, store.InitialBalance)
	}
}
