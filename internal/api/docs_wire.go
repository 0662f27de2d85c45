package api

const wireDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Viewer Wire Format — Deck Agent</title>
  <style>
    *, *::before, *::after { box-sizing: border-box; }

    body {
      margin: 0;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", sans-serif;
      font-size: 14px;
      line-height: 1.65;
      background: #0d1117;
      color: #c9d1d9;
      display: flex;
      flex-direction: column;
      min-height: 100vh;
    }

    a { color: #58a6ff; text-decoration: none; }
    a:hover { text-decoration: underline; }

    /* ── top nav ── */
    nav {
      background: #161b22;
      border-bottom: 1px solid #30363d;
      padding: 0 24px;
      height: 48px;
      display: flex;
      align-items: center;
      gap: 24px;
      flex-shrink: 0;
    }
    nav .brand {
      font-weight: 600;
      font-size: 15px;
      color: #e6edf3;
    }
    nav .sep { color: #484f58; }
    nav .current { color: #e6edf3; font-weight: 500; }
    nav .back { font-size: 13px; }

    /* ── layout ── */
    .layout {
      display: flex;
      flex: 1;
      max-width: 1100px;
      width: 100%;
      margin: 0 auto;
      padding: 0 16px;
    }

    /* ── sidebar ── */
    aside {
      width: 220px;
      flex-shrink: 0;
      padding: 32px 16px 32px 0;
      position: sticky;
      top: 0;
      height: calc(100vh - 48px);
      overflow-y: auto;
    }
    aside h4 {
      margin: 0 0 8px;
      font-size: 11px;
      font-weight: 600;
      text-transform: uppercase;
      letter-spacing: .08em;
      color: #8b949e;
    }
    aside ul {
      list-style: none;
      margin: 0 0 24px;
      padding: 0;
    }
    aside ul li a {
      display: block;
      padding: 4px 8px;
      border-radius: 4px;
      font-size: 13px;
      color: #8b949e;
    }
    aside ul li a:hover {
      background: #21262d;
      color: #c9d1d9;
      text-decoration: none;
    }

    /* ── main content ── */
    main {
      flex: 1;
      padding: 32px 0 64px 32px;
      border-left: 1px solid #21262d;
      min-width: 0;
    }

    h1 {
      margin: 0 0 8px;
      font-size: 28px;
      font-weight: 600;
      color: #e6edf3;
    }
    .subtitle {
      color: #8b949e;
      margin: 0 0 36px;
      font-size: 15px;
    }

    h2 {
      margin: 40px 0 12px;
      font-size: 18px;
      font-weight: 600;
      color: #e6edf3;
      padding-bottom: 8px;
      border-bottom: 1px solid #21262d;
    }
    h3 {
      margin: 28px 0 10px;
      font-size: 15px;
      font-weight: 600;
      color: #e6edf3;
    }

    p { margin: 0 0 12px; }

    /* ── method + path badge ── */
    .endpoint {
      display: inline-flex;
      align-items: center;
      gap: 10px;
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 6px;
      padding: 10px 16px;
      margin-bottom: 20px;
      font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace;
      font-size: 14px;
    }
    .method {
      background: #1f6feb;
      color: #fff;
      font-weight: 700;
      font-size: 11px;
      padding: 2px 7px;
      border-radius: 4px;
      letter-spacing: .04em;
    }
    .path { color: #e6edf3; }

    /* ── tables ── */
    table {
      width: 100%;
      border-collapse: collapse;
      margin-bottom: 20px;
      font-size: 13px;
    }
    th {
      text-align: left;
      padding: 8px 12px;
      background: #161b22;
      color: #8b949e;
      font-weight: 600;
      border-bottom: 1px solid #30363d;
    }
    td {
      padding: 8px 12px;
      border-bottom: 1px solid #21262d;
      vertical-align: top;
    }
    tr:last-child td { border-bottom: none; }
    code {
      font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace;
      font-size: 12px;
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 3px;
      padding: 1px 5px;
      color: #e6edf3;
    }

    /* ── code blocks ── */
    pre {
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 6px;
      padding: 16px;
      overflow-x: auto;
      margin: 0 0 20px;
    }
    pre code {
      background: none;
      border: none;
      padding: 0;
      font-size: 13px;
      line-height: 1.6;
      color: #c9d1d9;
    }

    /* ── callout ── */
    .callout {
      background: #161b22;
      border-left: 3px solid #1f6feb;
      border-radius: 0 6px 6px 0;
      padding: 12px 16px;
      margin-bottom: 20px;
      font-size: 13px;
    }
    .callout.warning { border-color: #d29922; }
    .callout strong { color: #e6edf3; }

    /* ── SSE format visualization ── */
    .sse-block {
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 6px;
      padding: 16px;
      margin-bottom: 20px;
      font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace;
      font-size: 13px;
      line-height: 1.8;
    }
    .sse-key { color: #79c0ff; }
    .sse-value { color: #a5d6ff; }
    .sse-comment { color: #484f58; }
  </style>
</head>
<body>

<nav>
  <span class="brand">Deck Agent</span>
  <span class="sep">/</span>
  <span class="current">Viewer Wire Format</span>
  <a class="back" href="/docs">← REST API Docs</a>
</nav>

<div class="layout">

  <aside>
    <h4>On this page</h4>
    <ul>
      <li><a href="#overview">Overview</a></li>
      <li><a href="#websocket">WebSocket</a></li>
      <li><a href="#client-events">Client Events</a></li>
      <li><a href="#view">View Frames</a></li>
      <li><a href="#sse">SSE Stream</a></li>
      <li><a href="#examples">Examples</a></li>
      <li><a href="#notes">Notes</a></li>
    </ul>
  </aside>

  <main>
    <h1>Viewer Wire Format</h1>
    <p class="subtitle">How deck pages report input and receive the rendered view.</p>

    <h2 id="overview">Overview</h2>
    <p>
      The controller owns the navigation state. Each open deck page connects over a
      WebSocket, reports raw DOM events and redraws from the <code>view</code> frames it
      receives. Every page, and every SSE subscriber, sees the same view.
    </p>

    <h2 id="websocket">WebSocket</h2>
    <div class="endpoint"><span class="method">GET</span><span class="path">/ws</span></div>
    <p>
      Text frames carry one JSON object each. On connect the server sends the current
      view immediately; the page then sends <code>ready</code>.
    </p>

    <h2 id="client-events">Client Events</h2>
    <table>
      <tr><th>type</th><th>fields</th><th>effect</th></tr>
      <tr><td><code>ready</code></td><td></td><td>starts the presentation once; later copies are ignored</td></tr>
      <tr><td><code>keydown</code></td><td><code>key</code></td><td>ArrowRight, Space: next. ArrowLeft: previous. Home, End: first, last</td></tr>
      <tr><td><code>touchstart</code></td><td><code>x</code>, <code>y</code>, <code>t</code></td><td>begins a gesture</td></tr>
      <tr><td><code>touchend</code></td><td><code>x</code>, <code>y</code>, <code>t</code></td><td>horizontal travel over 50px navigates</td></tr>
      <tr><td><code>click</code></td><td><code>target</code>, <code>index</code></td><td><code>prev</code>, <code>next</code>, <code>indicator</code>, <code>marker</code>, <code>phase</code></td></tr>
      <tr><td><code>phaseleave</code></td><td></td><td>returns to the first phase</td></tr>
      <tr><td><code>resize</code></td><td><code>width</code>, <code>height</code></td><td>resizes every drawn chart</td></tr>
      <tr><td><code>load</code></td><td><code>load_ms</code></td><td>logged once</td></tr>
    </table>
    <div class="callout">
      <strong>Default actions:</strong> the page calls <code>preventDefault</code> only for the
      keys listed in <code>consumed_keys</code> of its embedded config.
    </div>

    <h2 id="view">View Frames</h2>
    <pre><code>{"type":"view","view":{
  "current":3,"total":12,
  "current_label":"3","total_label":"12",
  "progress":25,"progress_width":"25%",
  "slides":[{"ordinal":1,"active":false}, ...],
  "indicators":[...],
  "prev_disabled":false,"next_disabled":false,
  "phase":2,
  "charts":{"market":{"slot":"market","url":"/charts/market.png","revision":1}}
}}</code></pre>

    <h2 id="sse">SSE Stream</h2>
    <div class="endpoint"><span class="method">GET</span><span class="path">/events</span></div>
    <div class="sse-block">
      <span class="sse-key">event:</span> <span class="sse-value">view</span><br>
      <span class="sse-key">data:</span> <span class="sse-value">{"type":"view","view":{...}}</span>
    </div>
    <p>
      New subscribers receive the latest view first. When the browser mirror runs, the
      mirrored tab's console output is streamed as <code>event: console</code> with
      <code>{"level":"error","text":"..."}</code>.
    </p>

    <h2 id="examples">Examples</h2>
    <h3>Browser — EventSource</h3>
    <pre><code>const es = new EventSource("/events");
es.addEventListener("view", (e) =&gt; {
  const { view } = JSON.parse(e.data);
  console.log(view.current, "/", view.total);
});</code></pre>
    <h3>curl</h3>
    <pre><code>curl -N http://127.0.0.1:8080/events</code></pre>

    <h2 id="notes">Notes</h2>
    <ul>
      <li>
        <strong>Back-pressure:</strong> each subscriber has a small buffer. Slow clients
        drop frames and catch up with the next full view.
      </li>
      <li>
        <strong>Reconnection:</strong> the deck page reconnects with backoff and queues
        events while offline.
      </li>
      <li>
        <strong>Authentication:</strong> none. Bind to <code>127.0.0.1</code> (the default)
        to prevent external access.
      </li>
    </ul>

  </main>
</div>

</body>
</html>`
