package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderDashboardHTML(t *testing.T) {
	block := uint64(77)
	refreshed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	page := RenderDashboardHTML(CollectResult{
		Status:      "issue",
		Traffic:     TrafficInfo{TotalRequests: 12, SuccessRate: "100", LastRequest: map[string]interface{}{"method": "GET", "path": "/api/v1/wines/get-wines?x=<b>"}},
		Marketplace: MarketplaceInfo{Listings: 3, RefreshedAt: &refreshed},
		Dependencies: map[string]DepStatus{
			"chain": {Status: "connected", Block: &block},
			"redis": {Status: "error"},
		},
	})

	assert.Contains(t, page, "Winery · API Status")
	assert.Contains(t, page, "System Issues Detected")
	assert.Contains(t, page, "2024-03-01T12:00:00Z")
	assert.Contains(t, page, `<span id="block">77</span>`)
	assert.Contains(t, page, `id="pill-redis" class="pill err"`)
	assert.Contains(t, page, `id="pill-chain" class="pill ok"`)
	assert.Contains(t, page, "&lt;b&gt;")
	assert.Contains(t, page, "/health/json")
}
