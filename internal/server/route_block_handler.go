package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"time"

	"netinfo/internal/api/dto"
	"netinfo/internal/database"
	"netinfo/internal/support"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	lookupLimit        = 50

	statsCacheKey = "netinfo:stats"
	statsCacheTTL = 60 * time.Second
)

var (
	searchTermCleaner = regexp.MustCompile(`[^\w\s\-\.]`)
	statsGroup        singleflight.Group
)

// sanitizeSearchTerm strips characters with meaning to the query layer and
// caps the term length.
func sanitizeSearchTerm(term string) string {
	term = searchTermCleaner.ReplaceAllString(term, "")
	if len(term) > 200 {
		term = term[:200]
	}
	return term
}

func clampLimit(raw string) int {
	limit := defaultSearchLimit
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return limit
}

func lookupIP(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("ip")
	if _, err := netip.ParseAddr(ip); err != nil {
		writeError(w, "Invalid IP address format", http.StatusBadRequest)
		return
	}

	blocks, err := database.LookupIP(r.Context(), ip, lookupLimit)
	if err != nil {
		log.Error("IP lookup failed", "ip", ip, "error", err)
		writeError(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewSearchResponse(blocks))
}

func searchNetname(w http.ResponseWriter, r *http.Request) {
	netname := sanitizeSearchTerm(r.URL.Query().Get("netname"))
	if len(netname) < 2 {
		writeError(w, "netname must be at least 2 characters", http.StatusBadRequest)
		return
	}

	exact := strings.EqualFold(r.URL.Query().Get("exact_match"), "true")
	limit := clampLimit(r.URL.Query().Get("limit"))

	blocks, err := database.SearchNetname(r.Context(), netname, exact, limit)
	if err != nil {
		log.Error("Netname search failed", "netname", netname, "error", err)
		writeError(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewSearchResponse(blocks))
}

func searchDescription(w http.ResponseWriter, r *http.Request) {
	searchText := sanitizeSearchTerm(r.URL.Query().Get("search_text"))
	if len(searchText) < 2 {
		writeError(w, "search_text must be at least 2 characters", http.StatusBadRequest)
		return
	}

	limit := clampLimit(r.URL.Query().Get("limit"))

	blocks, err := database.SearchDescription(r.Context(), searchText, limit)
	if err != nil {
		log.Error("Description search failed", "text", searchText, "error", err)
		writeError(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewSearchResponse(blocks))
}

func searchCountry(w http.ResponseWriter, r *http.Request) {
	countryCode := strings.ToUpper(sanitizeSearchTerm(r.URL.Query().Get("country_code")))
	if len(countryCode) < 2 {
		writeError(w, "country_code must be at least 2 characters", http.StatusBadRequest)
		return
	}

	netnameFilter := sanitizeSearchTerm(r.URL.Query().Get("netname_filter"))
	limit := clampLimit(r.URL.Query().Get("limit"))

	blocks, err := database.SearchCountry(r.Context(), countryCode, netnameFilter, limit)
	if err != nil {
		log.Error("Country search failed", "country", countryCode, "error", err)
		writeError(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewSearchResponse(blocks))
}

// getStats serves the table statistics, cached in Redis so repeated polling
// never hammers COUNT(*) on a table with tens of millions of rows.
// singleflight collapses concurrent recomputations after a cache miss.
func getStats(w http.ResponseWriter, r *http.Request) {
	if cached, ok := cachedStats(r.Context()); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err, _ := statsGroup.Do("stats", func() (any, error) {
		total, bySource, err := database.BlockStats(context.Background())
		if err != nil {
			return nil, err
		}
		stats := dto.StatsResponse{TotalBlocks: total, BySource: bySource}
		storeStats(stats)
		return stats, nil
	})
	if err != nil {
		log.Error("Stats query failed", "error", err)
		writeError(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func cachedStats(ctx context.Context) (dto.StatsResponse, bool) {
	var stats dto.StatsResponse

	client, err := support.GetRedisClient()
	if err != nil {
		return stats, false
	}

	raw, err := client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return stats, false
	}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return stats, false
	}
	return stats, true
}

func storeStats(stats dto.StatsResponse) {
	client, err := support.GetRedisClient()
	if err != nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := client.Set(context.Background(), statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
		log.Warn("Failed to cache stats", "error", err)
	}
}
