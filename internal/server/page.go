package server

// indexHTML is the whole dashboard: one page, no build step. The chart is
// a plain canvas fed by /ws, with /api/series as the initial fallback.
const indexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>Real-Time Price Plot from IEX</title>
  <style>
    body { font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Arial; background:#0c0c0f; color:#eaeaea; margin:0; }
    header { padding:12px 16px; border-bottom:1px solid #1c1f25; background:#0d0d12; display:flex; justify-content:space-between; align-items:center; gap:12px; flex-wrap:wrap; }
    .pill { padding:6px 10px; border-radius:999px; background:#2a2f3a; font-size:12px; }
    main { max-width: 1100px; margin: 16px auto; padding: 0 16px; }
    .row { display:flex; gap:10px; align-items:center; margin: 10px 0; flex-wrap:wrap; }
    input[type=text] { background:#0d0d12; color:#eaeaea; border:1px solid #2a2f3a; border-radius:10px; padding:10px 12px; font-size:14px; text-transform:uppercase; }
    button { background:#2563eb; border:none; color:white; padding:10px 14px; border-radius:10px; font-weight:600; cursor:pointer; }
    button:disabled { opacity:.6; cursor:not-allowed; }
    a.btn { background:#2a2f3a; color:#eaeaea; padding:10px 14px; border-radius:10px; font-weight:600; text-decoration:none; font-size:14px; }
    .muted { color:#8a8f98; }
    h3 { margin: 14px 0 8px; font-weight:600; }
    .chartwrap { position:relative; border:1px solid #1c1f25; border-radius:10px; background:#0d0d12; padding:8px; }
    canvas { display:block; width:100%; height:auto; }
    #tip { position:absolute; display:none; pointer-events:none; background:#11131a; border:1px solid #2a2f3a; border-radius:8px; padding:6px 9px; font-size:12px; white-space:nowrap; }
  </style>
</head>
<body>
<header>
  <div><b>pricestream</b> <span class="muted">IEX real-time</span></div>
  <div class="row">
    <div class="pill">symbol: <span id="sym">none</span></div>
    <div class="pill">last: <span id="last">$0.00</span></div>
    <div class="pill" id="status">connecting…</div>
  </div>
</header>
<main>
  <div class="row">
    <input type="text" id="ticker" placeholder="Ticker" list="recent" autocomplete="off"/>
    <datalist id="recent"></datalist>
    <button id="update">Update</button>
    <a class="btn" id="save" href="/api/chart.png">Save PNG</a>
    <span class="muted">polls once per second; unknown tickers plot nothing</span>
  </div>
  <h3 id="charttitle">IEX Real-Time Price: </h3>
  <div class="chartwrap">
    <canvas id="chart" width="1000" height="500"></canvas>
    <div id="tip"></div>
  </div>
</main>
<script>
const chart = document.getElementById('chart');
const tip = document.getElementById('tip');
const statusEl = document.getElementById('status');
const symEl = document.getElementById('sym');
const lastEl = document.getElementById('last');
const titleEl = document.getElementById('charttitle');
const tickerEl = document.getElementById('ticker');

const M = {l: 80, r: 24, t: 16, b: 96};

let points = [];
let capacity = 3600;
let ws = null;

function esc(s) {
  return ('' + s).replaceAll('&','&amp;').replaceAll('<','&lt;').replaceAll('>','&gt;');
}

function setStatus(s) { statusEl.textContent = s; }

function applySnapshot(snap) {
  points = snap.points || [];
  capacity = snap.capacity || capacity;
  titleEl.textContent = snap.title;
  symEl.textContent = snap.symbol || 'none';
  lastEl.textContent = points.length ? '$' + points[points.length-1].price.toFixed(2) : '$0.00';
  draw(null);
}

function addPoint(p) {
  points.push(p);
  while (points.length > capacity) points.shift();
  lastEl.textContent = '$' + p.price.toFixed(2);
  draw(null);
}

function connect() {
  const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  ws = new WebSocket(proto + location.host + '/ws');
  ws.onopen = () => setStatus('live');
  ws.onmessage = (ev) => {
    const u = JSON.parse(ev.data);
    if (u.type === 'snapshot') applySnapshot(u.snapshot);
    else if (u.type === 'point') addPoint(u.point);
  };
  ws.onclose = () => { setStatus('reconnecting…'); setTimeout(connect, 2000); };
  ws.onerror = () => ws.close();
}

function xScale() {
  const W = chart.width - M.l - M.r;
  const t0 = points[0].time;
  const t1 = points[points.length - 1].time;
  const span = Math.max(1, t1 - t0);
  return { W: W, t0: t0, span: span, at: t => M.l + (t - t0) / span * W };
}

function draw(hoverIdx) {
  const ctx = chart.getContext('2d');
  ctx.clearRect(0, 0, chart.width, chart.height);
  ctx.font = '12px ui-monospace, Menlo, Consolas, monospace';
  const W = chart.width - M.l - M.r;
  const H = chart.height - M.t - M.b;

  ctx.strokeStyle = '#1c1f25';
  ctx.strokeRect(M.l, M.t, W, H);

  if (!points.length) return;

  const xs = xScale();
  let lo = Infinity, hi = -Infinity;
  for (const p of points) { if (p.price < lo) lo = p.price; if (p.price > hi) hi = p.price; }
  if (lo === hi) { lo -= 1; hi += 1; }
  const pad = (hi - lo) * 0.05;
  lo -= pad; hi += pad;
  const yAt = v => M.t + (hi - v) / (hi - lo) * H;

  // horizontal grid and price labels
  ctx.fillStyle = '#8a8f98';
  ctx.textAlign = 'right';
  ctx.textBaseline = 'middle';
  for (let i = 0; i <= 4; i++) {
    const v = hi - (hi - lo) * i / 4;
    const gy = yAt(v);
    ctx.strokeStyle = '#1c1f25';
    ctx.beginPath(); ctx.moveTo(M.l, gy); ctx.lineTo(M.l + W, gy); ctx.stroke();
    ctx.fillText(v.toFixed(2), M.l - 8, gy);
  }

  // time labels, angled for readability
  const nticks = Math.min(6, points.length);
  for (let i = 0; i < nticks; i++) {
    const idx = nticks === 1 ? 0 : Math.round(i * (points.length - 1) / (nticks - 1));
    const p = points[idx];
    const px = xs.at(p.time);
    ctx.strokeStyle = '#2a2f3a';
    ctx.beginPath(); ctx.moveTo(px, M.t + H); ctx.lineTo(px, M.t + H + 5); ctx.stroke();
    ctx.save();
    ctx.translate(px, M.t + H + 10);
    ctx.rotate(-Math.PI / 4);
    ctx.fillText(p.display_time, 0, 0);
    ctx.restore();
  }

  // price line
  ctx.strokeStyle = '#93c5fd';
  ctx.lineWidth = 1.5;
  ctx.beginPath();
  points.forEach(function (p, i) {
    const px = xs.at(p.time), py = yAt(p.price);
    if (i === 0) ctx.moveTo(px, py); else ctx.lineTo(px, py);
  });
  ctx.stroke();
  ctx.lineWidth = 1;

  if (points.length === 1) {
    ctx.fillStyle = '#93c5fd';
    ctx.fillRect(xs.at(points[0].time) - 2, yAt(points[0].price) - 2, 4, 4);
  }

  if (hoverIdx !== null && points[hoverIdx]) {
    const p = points[hoverIdx];
    ctx.fillStyle = '#2563eb';
    ctx.beginPath();
    ctx.arc(xs.at(p.time), yAt(p.price), 4, 0, Math.PI * 2);
    ctx.fill();
  }

  // axis titles
  ctx.fillStyle = '#8a8f98';
  ctx.textAlign = 'center';
  ctx.fillText('Time', M.l + W / 2, chart.height - 8);
  ctx.save();
  ctx.translate(14, M.t + H / 2);
  ctx.rotate(-Math.PI / 2);
  ctx.fillText('IEX Real-Time Price', 0, 0);
  ctx.restore();
}

function nearestIndex(cx) {
  const xs = xScale();
  let best = 0, bestDist = Infinity;
  for (let i = 0; i < points.length; i++) {
    const d = Math.abs(xs.at(points[i].time) - cx);
    if (d < bestDist) { bestDist = d; best = i; }
  }
  return best;
}

chart.addEventListener('mousemove', function (ev) {
  if (!points.length) return;
  const rect = chart.getBoundingClientRect();
  const cx = (ev.clientX - rect.left) * (chart.width / rect.width);
  const idx = nearestIndex(cx);
  const p = points[idx];

  draw(idx);

  const wrapRect = chart.parentElement.getBoundingClientRect();
  tip.style.display = 'block';
  tip.style.left = (ev.clientX - wrapRect.left + 14) + 'px';
  tip.style.top = (ev.clientY - wrapRect.top - 10) + 'px';
  tip.innerHTML = 'Time: ' + esc(p.display_time) + '<br>IEX Real-Time Price: $' + p.price.toFixed(2);
});

chart.addEventListener('mouseleave', function () {
  tip.style.display = 'none';
  draw(null);
});

async function updateTicker() {
  const btn = document.getElementById('update');
  btn.disabled = true;
  try {
    await fetch('/api/symbol', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({symbol: tickerEl.value})
    });
    loadRecent();
  } catch (e) {
    setStatus('update failed');
  } finally {
    btn.disabled = false;
  }
}

async function loadRecent() {
  try {
    const data = await fetch('/api/recent', {cache: 'no-store'}).then(r => r.json());
    const dl = document.getElementById('recent');
    dl.innerHTML = '';
    for (const s of (data.symbols || [])) {
      const opt = document.createElement('option');
      opt.value = s.symbol;
      dl.appendChild(opt);
    }
  } catch (e) { /* suggestions are optional */ }
}

document.getElementById('update').addEventListener('click', updateTicker);
tickerEl.addEventListener('keydown', function (ev) {
  if (ev.key === 'Enter') updateTicker();
});

// Seed the chart even if the socket is slow to come up.
fetch('/api/series', {cache: 'no-store'}).then(r => r.json()).then(applySnapshot).catch(() => {});
loadRecent();
connect();
</script>
</body>
</html>`
