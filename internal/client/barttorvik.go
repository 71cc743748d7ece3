package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam_v5/resolution/internal/metrics"
)

// Column positions in the Barttorvik team results feed. The feed is an
// array of arrays with no keys; these track the published column order.
// Trailing columns past the record vary by season, so tempo and WAB are
// read with fallbacks.
const (
	colRank       = 0
	colTeam       = 1
	colConf       = 2
	colRecord     = 3
	colAdjOE      = 4
	colAdjDE      = 6
	colBarthag    = 8
	colEFG        = 10
	colEFGD       = 11
	colTOR        = 12
	colTORD       = 13
	colORB        = 15
	colDRB        = 16
	colFTR        = 17
	colFTRD       = 18
	colTwoPct     = 19
	colTwoPctD    = 20
	colThreePct   = 21
	colThreePctD  = 22
	colThreeRate  = 23
	colThreeRateD = 24
	colTempo      = 25
	colWAB        = 26

	// minFieldCount is the smallest row we accept; shorter rows are
	// missing core efficiency metrics.
	minFieldCount = 25
)

// Plausibility bounds for parsed ratings. D1 efficiency runs roughly
// 70-140, tempo roughly 55-85 possessions.
const (
	effMin       = 70.0
	effMax       = 140.0
	tempoMin     = 55.0
	tempoMax     = 85.0
	tempoDefault = 70.0
)

// TorvikTeam is one parsed row of the Barttorvik team results feed
type TorvikTeam struct {
	Rank        int
	Team        string
	Conf        string
	Wins        int
	Losses      int
	GamesPlayed int
	AdjOE       float64
	AdjDE       float64
	Tempo       float64
	Barthag     float64
	WAB         float64
	EFG         float64
	EFGD        float64
	TOR         float64
	TORD        float64
	ORB         float64
	DRB         float64
	FTR         float64
	FTRD        float64
	TwoPct      float64
	TwoPctD     float64
	ThreePct    float64
	ThreePctD   float64
	ThreeRate   float64
	ThreeRateD  float64
	Raw         []byte
}

// NetRating is offensive minus defensive efficiency
func (t *TorvikTeam) NetRating() float64 {
	return t.AdjOE - t.AdjDE
}

// TorvikClient fetches team ratings from the Barttorvik JSON feed
type TorvikClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewTorvikClient creates a Barttorvik feed client
func NewTorvikClient(baseURL string, timeout time.Duration, maxRetries int) *TorvikClient {
	return &TorvikClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// CurrentSeason returns the Barttorvik season label for today. Seasons are
// named for the year they end in: from May onward the upcoming season is
// the next calendar year.
func CurrentSeason() int {
	now := time.Now()
	if now.Month() >= time.May {
		return now.Year() + 1
	}
	return now.Year()
}

// FetchTeamRatings downloads and parses the team results feed for a season.
// Rows whose efficiency numbers fail plausibility checks are skipped.
func (c *TorvikClient) FetchTeamRatings(ctx context.Context, season int) ([]TorvikTeam, error) {
	url := fmt.Sprintf("%s/%d_team_results.json", c.baseURL, season)

	log.Info().Str("url", url).Int("season", season).Msg("Fetching Barttorvik team ratings")

	start := time.Now()
	body, err := c.get(ctx, url)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordFeedCall("team_results", status, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	var rows [][]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode team results: %w", err)
	}

	if len(rows) > 0 {
		first := rows[0]
		log.Debug().
			Int("field_count", len(first)).
			Str("sample_team", stringAt(first, colTeam)).
			Msg("Barttorvik format check")
		if len(first) < minFieldCount {
			return nil, fmt.Errorf(
				"barttorvik format changed: expected >=%d fields, got %d",
				minFieldCount, len(first),
			)
		}
		if len(first) < 40 || len(first) > 50 {
			log.Warn().
				Int("field_count", len(first)).
				Msg("Barttorvik field count outside the usual range, format may have changed")
		}
	}

	teams := make([]TorvikTeam, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if len(row) < minFieldCount {
			skipped++
			continue
		}

		team, err := parseTorvikRow(row)
		if err != nil {
			log.Warn().Err(err).Str("team", stringAt(row, colTeam)).Msg("Skipping unparseable ratings row")
			skipped++
			continue
		}
		if !team.valid() {
			log.Warn().
				Str("team", team.Team).
				Float64("adj_o", team.AdjOE).
				Float64("adj_d", team.AdjDE).
				Msg("Skipping team with implausible ratings")
			skipped++
			continue
		}

		teams = append(teams, team)
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Skipped teams with incomplete or invalid data")
	}

	log.Info().Int("team_count", len(teams)).Int("season", season).Msg("Fetched Barttorvik ratings")
	return teams, nil
}

func parseTorvikRow(row []interface{}) (TorvikTeam, error) {
	wins, losses := parseRecord(stringAt(row, colRecord))

	team := TorvikTeam{
		Rank:        intAt(row, colRank),
		Team:        stringAt(row, colTeam),
		Conf:        stringAt(row, colConf),
		Wins:        wins,
		Losses:      losses,
		GamesPlayed: wins + losses,
		AdjOE:       floatAt(row, colAdjOE, 0),
		AdjDE:       floatAt(row, colAdjDE, 0),
		Tempo:       floatAt(row, colTempo, tempoDefault),
		Barthag:     floatAt(row, colBarthag, 0),
		WAB:         floatAt(row, colWAB, 0),
		EFG:         floatAt(row, colEFG, 0),
		EFGD:        floatAt(row, colEFGD, 0),
		TOR:         floatAt(row, colTOR, 0),
		TORD:        floatAt(row, colTORD, 0),
		ORB:         floatAt(row, colORB, 0),
		DRB:         floatAt(row, colDRB, 0),
		FTR:         floatAt(row, colFTR, 0),
		FTRD:        floatAt(row, colFTRD, 0),
		TwoPct:      floatAt(row, colTwoPct, 0),
		TwoPctD:     floatAt(row, colTwoPctD, 0),
		ThreePct:    floatAt(row, colThreePct, 0),
		ThreePctD:   floatAt(row, colThreePctD, 0),
		ThreeRate:   floatAt(row, colThreeRate, 0),
		ThreeRateD:  floatAt(row, colThreeRateD, 0),
	}

	raw, err := json.Marshal(row)
	if err != nil {
		return TorvikTeam{}, fmt.Errorf("failed to marshal raw row: %w", err)
	}
	team.Raw = raw

	return team, nil
}

// valid reports whether core metrics are inside plausible D1 bounds. Tempo
// is repaired to the default rather than rejected; a bad tempo does not make
// the efficiency line useless.
func (t *TorvikTeam) valid() bool {
	if t.Team == "" {
		return false
	}
	if t.AdjOE < effMin || t.AdjOE > effMax {
		return false
	}
	if t.AdjDE < effMin || t.AdjDE > effMax {
		return false
	}
	if t.Tempo != tempoDefault && (t.Tempo < tempoMin || t.Tempo > tempoMax) {
		log.Debug().Str("team", t.Team).Float64("tempo", t.Tempo).Msg("Implausible tempo, using default")
		t.Tempo = tempoDefault
	}
	if t.Barthag < 0 || t.Barthag > 1 {
		log.Debug().Str("team", t.Team).Float64("barthag", t.Barthag).Msg("Barthag outside [0,1]")
	}
	return true
}

// get performs a GET with exponential backoff on transient failures. Retries
// cover network errors, 429 and 5xx responses; Retry-After is honored when
// the server sends one.
func (c *TorvikClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NCAAM-v5.0/1.0")

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))

		retryAfter := ""
		if err != nil {
			lastErr = fmt.Errorf("feed request failed: %w", err)
		} else {
			body, readErr := io.ReadAll(resp.Body)
			retryAfter = resp.Header.Get("Retry-After")
			resp.Body.Close()

			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("failed to read response body: %w", readErr)
			case resp.StatusCode == http.StatusOK:
				log.Debug().Str("url", url).Int("size", len(body)).Msg("Feed request successful")
				return body, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("feed returned retryable status %d", resp.StatusCode)
			default:
				return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
			}
		}

		if attempt == c.maxRetries {
			break
		}

		delay := c.retryDelay * time.Duration(1<<uint(attempt-1))
		if retryAfter != "" {
			if secs, parseErr := strconv.Atoi(retryAfter); parseErr == nil {
				delay = time.Duration(secs) * time.Second
			}
		}
		jitter := time.Duration(rand.Intn(250)) * time.Millisecond

		log.Warn().
			Str("url", url).
			Int("attempt", attempt).
			Dur("backoff", delay+jitter).
			Err(lastErr).
			Msg("Feed request failed, retrying after backoff")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay + jitter):
		}
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", c.maxRetries, lastErr)
}

func toInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		i, _ := strconv.Atoi(val)
		return i
	}
	return 0
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	}
	return 0
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	}
	return ""
}

func intAt(row []interface{}, idx int) int {
	if idx < 0 || idx >= len(row) {
		return 0
	}
	return toInt(row[idx])
}

func floatAt(row []interface{}, idx int, fallback float64) float64 {
	if idx < 0 || idx >= len(row) {
		return fallback
	}
	return toFloat(row[idx])
}

func stringAt(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return toString(row[idx])
}

// parseRecord splits a "W-L" record string
func parseRecord(record string) (wins, losses int) {
	parts := strings.Split(record, "-")
	if len(parts) == 2 {
		wins, _ = strconv.Atoi(parts[0])
		losses, _ = strconv.Atoi(parts[1])
	}
	return
}
