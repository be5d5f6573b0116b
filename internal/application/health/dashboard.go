package health

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"
)

// RenderDashboardHTML returns the status page served at GET /. The page polls /health/json.
func RenderDashboardHTML(health CollectResult) string {
	b, _ := json.Marshal(health)
	jsonStr := string(b)
	// Escape for embedding in a JS template literal: \ ` $
	jsonStr = strings.ReplaceAll(jsonStr, "\\", "\\\\")
	jsonStr = strings.ReplaceAll(jsonStr, "`", "\\`")
	jsonStr = strings.ReplaceAll(jsonStr, "$", "\\$")

	lastMethod, lastPath := "-", "-"
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		if v, ok := m["method"].(string); ok {
			lastMethod = v
		}
		if v, ok := m["path"].(string); ok {
			lastPath = v
		}
	}
	refreshed := "never"
	if health.Marketplace.RefreshedAt != nil {
		refreshed = health.Marketplace.RefreshedAt.Format(time.RFC3339)
	}
	block := "-"
	if b := health.Dependencies["chain"].Block; b != nil {
		block = fmt.Sprint(*b)
	}

	headline := "All Systems Operational"
	if health.Status != "ok" {
		headline = "System Issues Detected"
	}

	var deps strings.Builder
	for _, name := range []string{"database", "redis", "chain", "storage"} {
		d := health.Dependencies[name]
		class := "err"
		if d.Status == "connected" || d.Status == "reachable" {
			class = "ok"
		}
		fmt.Fprintf(&deps, `<div class="row"><span>%s</span><span id="pill-%s" class="pill %s">%s</span></div>`,
			strings.ToUpper(name[:1])+name[1:], name, class, html.EscapeString(d.Status))
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Winery · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --wine: #6b1d3a; --dark: #2b1720; --muted: #7c6f75; --bg: #faf7f5; }
    body { background: var(--bg); color: var(--dark); font-family: system-ui, sans-serif; margin: 0; padding: 40px 20px; }
    .container { max-width: 1000px; margin: 0 auto; }
    h1 { font-size: 44px; font-weight: 900; letter-spacing: -2px; margin: 0 0 8px; color: var(--wine); }
    h1.issue { color: #b91c1c; }
    .subtext { color: var(--muted); font-weight: 700; margin-bottom: 28px; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); background: white; border-radius: 24px; box-shadow: 0 20px 60px -20px rgba(107,29,58,0.2); overflow: hidden; }
    .col { padding: 32px; border-right: 1px solid #f1e9ec; }
    .col:last-child { border-right: none; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 900; letter-spacing: 2px; color: var(--muted); margin-bottom: 18px; }
    .big { font-size: 38px; font-weight: 900; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 7px 0; border-bottom: 1px solid #f6f0f2; font-size: 14px; font-weight: 700; }
    .pill { padding: 3px 10px; border-radius: 8px; font-size: 11px; font-weight: 900; }
    .ok { background: rgba(22,163,74,0.1); color: #15803d; }
    .err { background: rgba(239,68,68,0.1); color: #dc2626; }
    .footer { margin-top: 18px; font-family: monospace; color: var(--muted); display: flex; justify-content: space-between; }
    a { color: var(--wine); font-weight: 800; }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } .col { border-right: none; } }
  </style>
</head>
<body>
  <div class="container">
    <h1 id="headline" class="` + health.Status + `">` + headline + `</h1>
    <p class="subtext">Marketplace API, contract node and storage at a glance.</p>
    <div class="grid">
      <div class="col">
        <div class="label">Traffic</div>
        <div class="big" id="total-req">` + fmt.Sprint(health.Traffic.TotalRequests) + `</div>
        <div class="row"><span>Failed</span><span id="failed-count">` + fmt.Sprint(health.Traffic.FailedCount) + `</span></div>
        <div class="row"><span>Success Rate</span><span id="success-rate">` + health.Traffic.SuccessRate + `%</span></div>
        <div class="row"><span>Avg Latency</span><span id="avg-time">` + fmt.Sprint(health.Traffic.AvgResponseTime) + `ms</span></div>
      </div>
      <div class="col">
        <div class="label">Marketplace</div>
        <div class="big" id="listings">` + fmt.Sprint(health.Marketplace.Listings) + `</div>
        <div class="row"><span>Last Refresh</span><span id="refreshed">` + refreshed + `</span></div>
        <div class="row"><span>Block</span><span id="block">` + block + `</span></div>
        <div class="row"><span>Goroutines</span><span id="goroutines">` + fmt.Sprint(health.Runtime.Goroutines) + `</span></div>
      </div>
      <div class="col">
        <div class="label">Connectivity</div>
        ` + deps.String() + `
      </div>
    </div>
    <div class="footer">
      <span>LAST <b id="req-method">` + html.EscapeString(lastMethod) + `</b> <span id="req-path">` + html.EscapeString(lastPath) + `</span></span>
      <span><a href="/health/errors">error log</a> · <a href="/metrics">metrics</a></span>
    </div>
  </div>
  <script>
    const render = (d) => {
      const hl = document.getElementById('headline');
      hl.innerText = d.status === 'ok' ? 'All Systems Operational' : 'System Issues Detected';
      hl.className = d.status;
      document.getElementById('total-req').innerText = d.traffic.totalRequests;
      document.getElementById('failed-count').innerText = d.traffic.failedCount;
      document.getElementById('success-rate').innerText = d.traffic.successRate + '%';
      document.getElementById('avg-time').innerText = d.traffic.avgResponseTime + 'ms';
      document.getElementById('listings').innerText = d.marketplace.listings;
      document.getElementById('refreshed').innerText = d.marketplace.refreshedAt || 'never';
      document.getElementById('block').innerText = (d.dependencies.chain && d.dependencies.chain.block) || '-';
      document.getElementById('goroutines').innerText = d.runtime.goroutines;
      for (const [name, dep] of Object.entries(d.dependencies)) {
        const pill = document.getElementById('pill-' + name);
        if (!pill) continue;
        pill.innerText = dep.status;
        pill.className = 'pill ' + (dep.status === 'connected' || dep.status === 'reachable' ? 'ok' : 'err');
      }
      if (d.traffic.lastRequest) {
        document.getElementById('req-method').innerText = d.traffic.lastRequest.method;
        document.getElementById('req-path').innerText = d.traffic.lastRequest.path;
      }
    };
    render(JSON.parse(` + "`" + jsonStr + "`" + `));
    setInterval(async () => { try { render(await (await fetch('/health/json')).json()); } catch (e) {} }, 15000);
  </script>
</body>
</html>`
}
