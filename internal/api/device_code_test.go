package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/nerrad567/pairing-core/internal/infrastructure/cache"
	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
	"github.com/nerrad567/pairing-core/internal/pairing"
)

func TestDeviceCode_Success(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, "/v1/device/code?state=abc123", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	want := map[string]any{
		"state":      "abc123",
		"token":      testToken,
		"expiration": float64(86400),
		"code":       "ACE347",
	}
	if len(body) != len(want) {
		t.Errorf("response keys = %v, want exactly %v", body, want)
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %v, want %v", k, body[k], v)
		}
	}

	if len(e.issuer.calls) != 1 || e.issuer.calls[0] != (issueCall{"abc123", ""}) {
		t.Errorf("issuer calls = %+v", e.issuer.calls)
	}
}

func TestDeviceCode_PackagingStoredNotEchoed(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, "/v1/device/code?state=abc123&packaging=ovos-core", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "packaging") {
		t.Errorf("response echoes packaging: %s", rec.Body.String())
	}
	if e.issuer.calls[0].packaging != "ovos-core" {
		t.Errorf("issuer packaging = %q, want ovos-core", e.issuer.calls[0].packaging)
	}
}

func TestDeviceCode_FormBody(t *testing.T) {
	e := newTestEnv(t)

	form := url.Values{"state": {"from-form"}, "packaging": {"box"}}.Encode()
	rec := e.do(http.MethodPost, "/v1/device/code", form,
		http.Header{"Content-Type": {"application/x-www-form-urlencoded"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if e.issuer.calls[0] != (issueCall{"from-form", "box"}) {
		t.Errorf("issuer call = %+v", e.issuer.calls[0])
	}
}

func TestDeviceCode_Errors(t *testing.T) {
	oversized := "state=from-form&pad=" + strings.Repeat("x", 2*maxRequestBodySize)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		issuerErr  error
		wantStatus int
		wantCode   string
		wantIssued bool
	}{
		{"missing state", http.MethodGet, "/v1/device/code", "", nil, http.StatusBadRequest, ErrCodeBadRequest, false},
		{"empty state", http.MethodGet, "/v1/device/code?state=&packaging=x", "", nil, http.StatusBadRequest, ErrCodeBadRequest, false},
		{"state too long", http.MethodGet, "/v1/device/code?state=" + strings.Repeat("s", maxStateLength+1), "", nil, http.StatusBadRequest, ErrCodeBadRequest, false},
		{"packaging too long", http.MethodGet, "/v1/device/code?state=a&packaging=" + strings.Repeat("p", maxPackagingLength+1), "", nil, http.StatusBadRequest, ErrCodeBadRequest, false},
		{"malformed form body", http.MethodPost, "/v1/device/code", "state=%zz", nil, http.StatusBadRequest, ErrCodeBadRequest, false},
		{"oversized form body", http.MethodPost, "/v1/device/code", oversized, nil, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, false},
		{"oversized form body with query state", http.MethodPost, "/v1/device/code?state=q", oversized, nil, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, false},
		{"code space exhausted", http.MethodGet, "/v1/device/code?state=a", "", fmt.Errorf("%w: 100 attempts", pairing.ErrCodeSpaceExhausted), http.StatusServiceUnavailable, ErrCodeUnavailable, true},
		{"cache down", http.MethodGet, "/v1/device/code?state=a", "", fmt.Errorf("%w: dial tcp: refused", pairing.ErrCacheUnavailable), http.StatusInternalServerError, ErrCodeInternal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.issuer.err = tt.issuerErr

			var header http.Header
			if tt.body != "" {
				header = http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}
			}
			rec := e.do(tt.method, tt.target, tt.body, header)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeError(t, rec)
			if body.Code != tt.wantCode || body.Status != tt.wantStatus {
				t.Errorf("error body = %+v", body)
			}
			if strings.Contains(rec.Body.String(), "refused") {
				t.Error("internal error detail leaked to client")
			}
			if issued := len(e.issuer.calls) > 0; issued != tt.wantIssued {
				t.Errorf("issuer called = %v, want %v", issued, tt.wantIssued)
			}
		})
	}
}

func TestDeviceCode_RateLimited(t *testing.T) {
	e := newTestEnv(t, func(d *Deps) {
		d.Security.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}
	})

	for i := 0; i < 2; i++ {
		if rec := e.do(http.MethodGet, "/v1/device/code?state=a", "", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}

	rec := e.do(http.MethodGet, "/v1/device/code?state=a", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if got := decodeError(t, rec).Code; got != ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", got, ErrCodeRateLimited)
	}

	// Another client has its own bucket.
	req := httptestRequest(http.MethodGet, "/v1/device/code?state=a")
	req.RemoteAddr = "198.51.100.7:4000"
	if rec := e.serve(req); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}

	// Login is limited separately.
	if rec := e.do(http.MethodPost, "/api/v1/auth/login", "{}", nil); rec.Code == http.StatusTooManyRequests {
		t.Error("login shares the device code bucket")
	}
}

// redisEnv wires a real Issuer over miniredis into the API.
func redisEnv(t *testing.T) (*testEnv, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := cache.Connect(context.Background(), config.CacheConfig{Address: mr.Addr(), PoolSize: 8})
	if err != nil {
		t.Fatalf("cache.Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // Test cleanup

	issuer := pairing.NewIssuer(client, nil)
	e := newTestEnv(t, func(d *Deps) {
		d.Issuer = issuer
		d.Cache = client
	})
	return e, mr
}

func TestDeviceCode_RedisEndToEnd(t *testing.T) {
	e, mr := redisEnv(t)

	rec := e.do(http.MethodGet, "/v1/device/code?state=abc123&packaging=ovos-core", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp deviceCodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}

	raw, err := mr.Get(pairing.Key(resp.Code))
	if err != nil {
		t.Fatalf("no cache entry for %s: %v", resp.Code, err)
	}
	var stored pairing.Session
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("decoding stored session: %v", err)
	}
	want := pairing.Session{
		State:         "abc123",
		Token:         resp.Token,
		Expiration:    86400,
		Code:          resp.Code,
		PackagingType: "ovos-core",
	}
	if stored != want {
		t.Errorf("stored = %+v, want %+v", stored, want)
	}
	if ttl := mr.TTL(pairing.Key(resp.Code)); ttl != pairing.CodeTTL {
		t.Errorf("ttl = %v, want %v", ttl, pairing.CodeTTL)
	}

	rec = e.do(http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}

	mr.SetError("ERR simulated failure")
	rec = e.do(http.MethodGet, "/v1/device/code?state=abc123", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status with failing cache = %d, want 500", rec.Code)
	}
}

func TestDeviceCode_ConcurrentRequestsGetDistinctCodes(t *testing.T) {
	e, mr := redisEnv(t)

	const n = 25
	codes := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			rec := e.do(http.MethodGet, fmt.Sprintf("/v1/device/code?state=s%d", i), "", nil)
			if rec.Code != http.StatusOK {
				t.Errorf("request %d status = %d", i, rec.Code)
				return
			}
			var resp deviceCodeResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Errorf("request %d decoding: %v", i, err)
				return
			}
			codes[i] = resp.Code
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("code %s issued twice", c)
		}
		seen[c] = true
	}
	if got := len(mr.Keys()); got != n {
		t.Errorf("cache entries = %d, want %d", got, n)
	}
}
