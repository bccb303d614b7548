// Ping the upstream stats API and a running predictor to measure latency.
//
// Measures a cold request (DNS + TCP + TLS + HTTP), warm keep-alive round
// trips, and optionally websocket ping/pong against the predictor's /ws.
//
// Usage:
//
//	go run ./ping_services                        # default: 20 requests
//	go run ./ping_services -n 50                  # 50 requests per endpoint
//	go run ./ping_services -local localhost:8080  # also ping a local predictor
//	go run ./ping_services -local localhost:8080 -ws
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"math"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/mplid-predictor/internal/config"
)

const httpTimeout = 10 * time.Second

type target struct {
	label string
	url   string
}

func main() {
	n := flag.Int("n", 20, "requests per endpoint")
	local := flag.String("local", "", "host:port of a running predictor")
	ws := flag.Bool("ws", false, "also measure websocket ping/pong against -local")
	flag.Parse()

	cfg := config.Load()
	base := strings.TrimRight(cfg.MPLBase, "/")

	targets := []target{
		{"Upstream standings", base + "/standings/?format=json"},
		{"Upstream teams", base + "/teams/?format=json"},
	}
	if *local != "" {
		targets = append(targets,
			target{"Predictor health", "http://" + *local + "/health"},
			target{"Predictor predict", "http://" + *local + "/api/predict?home=onic&away=rrq"},
		)
	}

	for _, t := range targets {
		pingHTTP(t, *n)
	}
	if *ws && *local != "" {
		pingWS(*local, *n)
	}
	fmt.Println()
}

func banner(title string) {
	fmt.Printf("\n%s\n  %s\n%s\n", strings.Repeat("=", 60), title, strings.Repeat("=", 60))
}

func pingHTTP(t target, n int) {
	banner(t.label + " — " + t.url)

	fmt.Println("\n  Cold request:")
	if ph, code, err := coldRequest(t.url); err != nil {
		fmt.Printf("    FAILED — %v\n", err)
	} else {
		fmt.Printf("    dns %.1f ms  connect %.1f ms  tls %.1f ms  total %.1f ms  (HTTP %d)\n",
			ms(ph.dns), ms(ph.connect), ms(ph.tls), ms(ph.total), code)
	}

	fmt.Printf("\n  Warm round trips (%d, keep-alive):\n", n)
	client := &http.Client{Timeout: httpTimeout}
	if _, _, err := roundTrip(client, t.url); err != nil {
		fmt.Printf("  [!] warm-up failed: %v\n", err)
		return
	}
	samples := make([]time.Duration, 0, n)
	for i := 1; i <= n; i++ {
		d, code, err := roundTrip(client, t.url)
		if err != nil {
			fmt.Printf("  [%3d/%d]  FAILED — %v\n", i, n, err)
			continue
		}
		samples = append(samples, d)
		fmt.Printf("  [%3d/%d]  %7.1f ms  (HTTP %d)\n", i, n, ms(d), code)
	}
	printStats(t.label, samples)
}

type phases struct {
	dns, connect, tls, total time.Duration
}

func coldRequest(u string) (phases, int, error) {
	var ph phases
	var dnsStart, connStart, tlsStart time.Time
	trace := &httptrace.ClientTrace{
		DNSStart:          func(httptrace.DNSStartInfo) { dnsStart = time.Now() },
		DNSDone:           func(httptrace.DNSDoneInfo) { ph.dns = time.Since(dnsStart) },
		ConnectStart:      func(string, string) { connStart = time.Now() },
		ConnectDone:       func(string, string, error) { ph.connect = time.Since(connStart) },
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		TLSHandshakeDone:  func(tls.ConnectionState, error) { ph.tls = time.Since(tlsStart) },
	}
	ctx, cancel := context.WithTimeout(httptrace.WithClientTrace(context.Background(), trace), httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ph, 0, err
	}
	start := time.Now()
	resp, err := (&http.Client{Transport: &http.Transport{DisableKeepAlives: true}}).Do(req)
	if err != nil {
		return ph, 0, err
	}
	resp.Body.Close()
	ph.total = time.Since(start)
	return ph, resp.StatusCode, nil
}

func roundTrip(c *http.Client, u string) (time.Duration, int, error) {
	start := time.Now()
	resp, err := c.Get(u)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	return time.Since(start), resp.StatusCode, nil
}

func pingWS(addr string, n int) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws", RawQuery: "topic=sync"}
	banner("Predictor websocket — " + u.String())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		fmt.Printf("  [!] dial failed: %v\n", err)
		return
	}
	defer conn.Close()

	pong := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})
	// Control frames are only processed while reading.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	samples := make([]time.Duration, 0, n)
	for i := 1; i <= n; i++ {
		start := time.Now()
		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
			fmt.Printf("  [!] ping failed: %v\n", err)
			break
		}
		select {
		case <-pong:
			d := time.Since(start)
			samples = append(samples, d)
			fmt.Printf("  [%3d/%d]  %7.1f ms  (ping/pong)\n", i, n, ms(d))
		case <-time.After(5 * time.Second):
			fmt.Println("  [!] pong timeout")
			printStats("Predictor websocket", samples)
			return
		}
	}
	printStats("Predictor websocket", samples)
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

func printStats(label string, samples []time.Duration) {
	if len(samples) < 2 {
		fmt.Printf("\n  Not enough %s samples for statistics.\n", label)
		return
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum float64
	for _, d := range samples {
		sum += ms(d)
	}
	mean := sum / float64(len(samples))
	var ss float64
	for _, d := range samples {
		ss += (ms(d) - mean) * (ms(d) - mean)
	}
	pct := func(p float64) float64 {
		return ms(sorted[min(len(sorted)-1, int(float64(len(sorted))*p))])
	}

	fmt.Printf("\n  --- %s (%d samples) ---\n", label, len(samples))
	fmt.Printf("  min %.1f  median %.1f  mean %.1f  stdev %.1f  p95 %.1f  p99 %.1f  max %.1f  (ms)\n",
		ms(sorted[0]), pct(0.5), mean, math.Sqrt(ss/float64(len(samples)-1)), pct(0.95), pct(0.99), ms(sorted[len(sorted)-1]))
}
