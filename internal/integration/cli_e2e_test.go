//go:build e2e

package integration

import (
	"bufio"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/sortviz/internal/config"
	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/stream"
	"github.com/thruflo/sortviz/internal/testutil"
)

func TestCLIVersionAndHelp(t *testing.T) {
	h := NewCLIHarness(t, nil)

	result := h.RequireSuccess("--version")
	assert.Equal(t, "sortviz version dev\n", result.Stdout)

	result = h.RequireSuccess("--help")
	for _, cmd := range []string{"algorithms", "run", "serve", "tui", "hash-password"} {
		assert.Contains(t, result.Stdout, cmd)
	}
}

func TestCLIAlgorithms(t *testing.T) {
	h := NewCLIHarness(t, func(c *config.Config) { c.Algorithm = "bogosort" })

	result := h.RequireSuccess("algorithms")
	lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[5], "bogosort")
	assert.Contains(t, lines[5], "(default)")
}

type summary struct {
	Run    run.Info `json:"run"`
	Sorted bool     `json:"sorted"`
	Length int      `json:"length"`
	Values []int    `json:"values"`
}

func TestCLIRunSummary(t *testing.T) {
	h := NewCLIHarness(t, nil)

	for _, alg := range []string{"quicksort", "bubble", "insertion", "selection", "merge"} {
		t.Run(alg, func(t *testing.T) {
			result := h.RequireSuccess("run", alg, "--length", "30", "--seed", "11")

			var s summary
			require.NoError(t, json.Unmarshal([]byte(result.Stdout), &s), result.Stdout)
			testutil.AssertRunStatus(t, s.Run, run.StatusCompleted)
			assert.True(t, s.Sorted)
			assert.Equal(t, 30, s.Length)
			testutil.AssertSorted(t, s.Values)
		})
	}
}

func TestCLIRunSeedIsReproducible(t *testing.T) {
	h := NewCLIHarness(t, nil)

	first := h.RequireSuccess("run", "quicksort", "--seed", "5")
	second := h.RequireSuccess("run", "quicksort", "--seed", "5")

	var a, b summary
	require.NoError(t, json.Unmarshal([]byte(first.Stdout), &a))
	require.NoError(t, json.Unmarshal([]byte(second.Stdout), &b))
	assert.Equal(t, a.Run.Steps, b.Run.Steps)
}

func TestCLIRunBogosortExhausted(t *testing.T) {
	h := NewCLIHarness(t, nil)

	result := h.RequireSuccess("run", "bogosort", "--length", "20", "--max-shuffles", "3")
	var s summary
	require.NoError(t, json.Unmarshal([]byte(result.Stdout), &s))
	testutil.AssertRunStatus(t, s.Run, run.StatusExhausted)
	assert.Equal(t, 3, s.Run.Shuffles)
}

func TestCLIRunJSONLines(t *testing.T) {
	h := NewCLIHarness(t, nil)

	result := h.RequireSuccess("run", "mergesort", "--json", "--length", "12")

	var kinds []stream.MessageType
	var last *stream.Message
	scanner := bufio.NewScanner(strings.NewReader(result.Stdout))
	for scanner.Scan() {
		m, err := stream.UnmarshalMessage(scanner.Bytes())
		require.NoError(t, err, scanner.Text())
		kinds = append(kinds, m.Type)
		last = m
	}
	require.NotEmpty(t, kinds)
	assert.Contains(t, kinds, stream.MessageTypeSnapshot)
	assert.Contains(t, kinds, stream.MessageTypeTone)

	require.Equal(t, stream.MessageTypeStatus, last.Type)
	status, err := last.StatusData()
	require.NoError(t, err)
	testutil.AssertRunStatus(t, *status, run.StatusCompleted)
}

func TestCLIRunFailures(t *testing.T) {
	h := NewCLIHarness(t, nil)

	result := h.RequireFailure("run", "shellsort")
	assert.Contains(t, result.Stderr, "shellsort")

	result = h.RequireFailure("run", "quicksort", "--length", "0")
	assert.Contains(t, result.Stderr, "array.length")

	result = h.RequireFailure("run", "quicksort", "--config", "missing.yaml")
	assert.Equal(t, 1, result.ExitCode)
}

func TestCLITUIRequiresTerminal(t *testing.T) {
	h := NewCLIHarness(t, nil)

	result := h.RequireFailure("tui")
	assert.Contains(t, result.Stderr, "not a terminal")
}

func TestCLIServe(t *testing.T) {
	h := NewCLIHarness(t, nil)
	port := freePort(t)

	p := h.Start("serve", "--host", "127.0.0.1", "--port", portString(port))
	line := p.WaitForLine(t, "serving on", 10*time.Second)
	base := strings.TrimSpace(line[strings.Index(line, "http://"):])

	client := &http.Client{Timeout: 5 * time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/api/state")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	resp, err := client.Post(base+"/api/start", "application/json", strings.NewReader(`{"algorithm":"insertionsort"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Less(t, resp.StatusCode, 300)

	completed := false
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(10*time.Second)))
	for !completed {
		_, b, err := ws.ReadMessage()
		require.NoError(t, err)
		m, err := stream.UnmarshalMessage(b)
		require.NoError(t, err)
		if m.Type != stream.MessageTypeStatus {
			continue
		}
		status, err := m.StatusData()
		require.NoError(t, err)
		completed = status.Status == run.StatusCompleted
	}

	resp, err = client.Get(base + "/api/state")
	require.NoError(t, err)
	var state struct {
		Run    run.Info `json:"run"`
		Values []int    `json:"values"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	testutil.AssertRunStatus(t, state.Run, run.StatusCompleted)
	testutil.AssertSorted(t, state.Values)

	assert.NoError(t, p.Interrupt(t, 10*time.Second))
	assert.Contains(t, p.Stdout(), "Shutting down...")
}
