package services

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"viewer-service/internal/storage"
	"viewer-service/internal/utils"
)

// FallbackRates are the bundled ETB-based rates used when no upstream source
// is reachable. One unit of the foreign currency costs this many ETB.
var FallbackRates = map[string]float64{
	"USD": 56.5,
	"EUR": 60.2,
	"GBP": 69.4,
	"AED": 15.4,
	"SAR": 15.1,
	"CAD": 41.2,
	"CNY": 8.2,
}

// SupportedCurrencies lists the display currencies offered by the viewer, in
// menu order. ETB is the base currency of every listing.
var SupportedCurrencies = []string{"ETB", "USD", "EUR", "GBP", "AED", "SAR", "CAD", "CNY"}

// RateTable is an exchange-rate response with its provenance. Source is
// "live", "cached" or "fallback".
type RateTable struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Source    string             `json:"source"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// RatesService serves ETB-based exchange rates for price display. Rates are
// fetched from an optional upstream URL, cached in Redis when available and
// always mirrored in memory; fetch failures fall back to the bundled table so
// price display never breaks.
type RatesService struct {
	url   string
	ttl   time.Duration
	http  *http.Client
	redis *storage.RedisClient

	mu        sync.Mutex
	cached    map[string]float64
	fetchedAt time.Time
}

// NewRatesService creates a new RatesService. redisClient may be nil.
func NewRatesService(url string, ttl time.Duration, redisClient *storage.RedisClient) *RatesService {
	return &RatesService{
		url:   url,
		ttl:   ttl,
		http:  &http.Client{Timeout: 10 * time.Second},
		redis: redisClient,
	}
}

// Rates returns the current rate table, consulting the in-memory cache, then
// Redis, then the upstream source, then the bundled fallback.
func (s *RatesService) Rates(ctx context.Context) RateTable {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.ttl {
		table := RateTable{Base: "ETB", Rates: s.cached, Source: "cached", FetchedAt: s.fetchedAt}
		s.mu.Unlock()
		return table
	}
	s.mu.Unlock()

	if s.redis != nil {
		if rates, err := s.redis.GetRates(); err != nil {
			log.Printf("Rates: redis read failed: %v", err)
		} else if rates != nil {
			s.remember(rates)
			return RateTable{Base: "ETB", Rates: withBase(rates), Source: "cached", FetchedAt: time.Now()}
		}
	}

	if s.url != "" {
		rates, err := s.fetch(ctx)
		if err != nil {
			log.Printf("Rates: upstream fetch failed, using fallback: %v", err)
		} else {
			s.remember(rates)
			if s.redis != nil {
				if err := s.redis.SetRates(rates, s.ttl); err != nil {
					log.Printf("Rates: redis write failed: %v", err)
				}
			}
			return RateTable{Base: "ETB", Rates: withBase(rates), Source: "live", FetchedAt: time.Now()}
		}
	}

	return RateTable{Base: "ETB", Rates: withBase(FallbackRates), Source: "fallback", FetchedAt: time.Now()}
}

// Convert converts an ETB amount into target using the given table. Unknown
// or non-positive rates leave the amount in ETB.
func Convert(amount float64, target string, rates map[string]float64) (float64, string) {
	target = strings.ToUpper(target)
	if target == "" || target == "ETB" {
		return utils.Round2(amount), "ETB"
	}
	rate, ok := rates[target]
	if !ok || rate <= 0 {
		return utils.Round2(amount), "ETB"
	}
	return utils.Round2(amount / rate), target
}

func (s *RatesService) fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build rates request")
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "rates request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("rates upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rates response")
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "malformed rates response")
	}

	rates := make(map[string]float64, len(payload.Rates))
	for code, rate := range payload.Rates {
		if rate > 0 {
			rates[strings.ToUpper(code)] = rate
		}
	}
	if len(rates) == 0 {
		return nil, errors.New("rates response contained no usable rates")
	}
	return rates, nil
}

func (s *RatesService) remember(rates map[string]float64) {
	s.mu.Lock()
	s.cached = rates
	s.fetchedAt = time.Now()
	s.mu.Unlock()
}

// withBase copies the table and pins the ETB identity rate.
func withBase(rates map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		out[code] = rate
	}
	out["ETB"] = 1
	return out
}
