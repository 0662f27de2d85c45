package cdpcontrol

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// transientHints are substrings in error causes that indicate a transient
// failure worth retrying (e.g. broken connection, closed session).
var transientHints = []string{
	"context canceled",
	"target closed",
	"session closed",
	"websocket",
	"connection reset",
	"broken pipe",
	"eof",
	"connection refused",
	"connection closed",
	"not connected",
}

type tabSession struct {
	info      TabInfo
	mu        sync.Mutex
	sessionID string // CDP session ID from Target.attachToTarget
}

type subscription struct {
	method string
	fn     func(sessionID string, params json.RawMessage)
	unreg  func()
}

// Client drives the single browser tab that mirrors the deck. The tab is
// found by URL, or opened when missing.
type Client struct {
	cdpURL      string
	deckURL     string
	evalTimeout time.Duration

	mu      sync.Mutex
	cdp     *rawCDP
	tab     *tabSession
	domains []string
	subs    map[int64]*subscription
	subSeq  int64

	// activeSession is read from the CDP read loop, which must never block
	// on tab locks.
	activeSession atomic.Value

	evalMu sync.Mutex
}

type evalEnvelope struct {
	OK           bool            `json:"ok"`
	Data         json.RawMessage `json:"data,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// NewClient returns a client for the browser at cdpURL. deckURL is the page
// the mirrored tab shows.
func NewClient(cdpURL, deckURL string, evalTimeout time.Duration) *Client {
	c := &Client{
		cdpURL:      cdpURL,
		deckURL:     deckURL,
		evalTimeout: evalTimeout,
		subs:        make(map[int64]*subscription),
	}
	c.activeSession.Store("")
	return c
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.cdpURL == "" {
		return newError(CodeCDPUnavailable, "missing CDP URL", nil)
	}

	slog.Info("cdpcontrol connect start", "cdp_url", c.cdpURL)
	c.cleanupLocked()

	c.cdp = newRawCDP(c.cdpURL)
	if err := c.cdp.connect(ctx); err != nil {
		c.cdp = nil
		return newError(CodeCDPUnavailable, "connect to CDP failed", err)
	}
	for _, sub := range c.subs {
		sub.unreg = c.cdp.registerEventHandler(sub.method, c.filtered(sub.fn))
	}

	if err := c.syncTabLocked(ctx); err != nil {
		slog.Error("cdpcontrol deck tab sync failed", "error", err)
		c.cleanupLocked()
		return newError(CodeCDPUnavailable, "connect to CDP failed", err)
	}

	slog.Info("cdpcontrol connect ok", "cdp_url", c.cdpURL, "target_id", c.tab.info.TargetID)
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupLocked()
	return nil
}

func (c *Client) cleanupLocked() {
	// Detach without closing the tab.
	if c.cdp != nil {
		if session := c.tab; session != nil {
			session.mu.Lock()
			if session.sessionID != "" {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				if err := c.cdp.detachFromTarget(ctx, session.sessionID); err != nil {
					slog.Debug("cdpcontrol detach cleanup failed", "session_id", session.sessionID, "error", err)
				}
				cancel()
				session.sessionID = ""
			}
			session.mu.Unlock()
		}
		c.cdp.close()
		c.cdp = nil
	}
	c.tab = nil
	c.activeSession.Store("")
}

// Tab returns the mirrored tab, connecting first if needed.
func (c *Client) Tab(ctx context.Context) (TabInfo, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return TabInfo{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tab == nil {
		return TabInfo{}, newError(CodeNotFound, "deck tab not found", nil)
	}
	return c.tab.info, nil
}

// Eval runs a script built with wrapJSEval on the deck tab and decodes its
// envelope data into out. Transient failures are retried once after
// reconnecting.
func (c *Client) Eval(ctx context.Context, js string, out any) error {
	c.evalMu.Lock()
	defer c.evalMu.Unlock()

	err := c.evalOnce(ctx, js, out)
	if err == nil || !c.shouldRetry(err) {
		return err
	}

	slog.Warn("cdpcontrol eval retry after transient failure", "error", err)
	if recErr := c.reconnect(ctx); recErr != nil {
		slog.Error("cdpcontrol reconnect failed during retry", "error", recErr)
		return recErr
	}
	return c.evalOnce(ctx, js, out)
}

func (c *Client) evalOnce(ctx context.Context, js string, out any) error {
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	cdp, session := c.cdp, c.tab
	c.mu.Unlock()
	if cdp == nil || session == nil {
		return newError(CodeCDPUnavailable, "CDP client not connected", nil)
	}
	return c.evalOnSession(ctx, cdp, session, js, out)
}

func (c *Client) evalOnSession(ctx context.Context, cdp *rawCDP, session *tabSession, js string, out any) error {
	sessionID, err := c.ensureSession(ctx, cdp, session)
	if err != nil {
		return err
	}

	evalCtx, evalCancel := context.WithTimeout(ctx, c.evalTimeout)
	defer evalCancel()

	raw, err := cdp.evaluate(evalCtx, sessionID, js)
	if err != nil {
		slog.Warn("cdpcontrol eval failed", "target_id", session.info.TargetID, "error", err)
		// Reset session so a fresh attach happens on retry.
		session.mu.Lock()
		session.sessionID = ""
		session.mu.Unlock()
		c.activeSession.Store("")

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(evalCtx.Err(), context.DeadlineExceeded) {
			return newError(CodeEvalTimeout, "evaluation timed out", err)
		}
		return newError(CodeEvalFailure, "evaluation failed", err)
	}
	return decodeEnvelope(raw, out)
}

func decodeEnvelope(raw string, out any) error {
	var env evalEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return newError(CodeEvalFailure, "invalid evaluation envelope", err)
	}
	if !env.OK {
		code := env.ErrorCode
		if code == "" {
			code = CodeEvalFailure
		}
		return newError(code, env.ErrorMessage, nil)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return newError(CodeEvalFailure, "invalid evaluation data", err)
	}
	return nil
}

// ensureSession returns a CDP session ID for the tab, attaching and
// enabling the requested domains if needed.
func (c *Client) ensureSession(ctx context.Context, cdp *rawCDP, session *tabSession) (string, error) {
	c.mu.Lock()
	domains := append([]string(nil), c.domains...)
	c.mu.Unlock()

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.sessionID != "" {
		return session.sessionID, nil
	}

	sid, err := cdp.attachToTarget(ctx, session.info.TargetID)
	if err != nil {
		return "", newError(CodeCDPUnavailable, "attach to target failed", err)
	}
	c.activeSession.Store(sid)

	for _, d := range domains {
		if err := cdp.enableDomain(ctx, sid, d); err != nil {
			c.activeSession.Store("")
			return "", newError(CodeCDPUnavailable, "enable "+d+" domain failed", err)
		}
	}

	session.sessionID = sid
	slog.Debug("cdpcontrol session attached", "target_id", session.info.TargetID, "session_id", sid, "domains", domains)
	return sid, nil
}

// EnableRuntimeDomain turns on console and exception events for the tab.
func (c *Client) EnableRuntimeDomain(ctx context.Context) error {
	return c.enableDomain(ctx, "Runtime")
}

// EnablePageDomain turns on page lifecycle events for the tab.
func (c *Client) EnablePageDomain(ctx context.Context) error {
	return c.enableDomain(ctx, "Page")
}

// enableDomain records d so that every future session enables it, and
// enables it on the current session.
func (c *Client) enableDomain(ctx context.Context, d string) error {
	c.mu.Lock()
	known := false
	for _, have := range c.domains {
		if have == d {
			known = true
			break
		}
	}
	if !known {
		c.domains = append(c.domains, d)
	}
	c.mu.Unlock()

	if err := c.ensureConnected(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	cdp, session := c.cdp, c.tab
	c.mu.Unlock()
	if cdp == nil || session == nil {
		return newError(CodeCDPUnavailable, "CDP client not connected", nil)
	}

	session.mu.Lock()
	sid := session.sessionID
	session.mu.Unlock()
	if sid == "" {
		// A fresh attach enables every recorded domain.
		_, err := c.ensureSession(ctx, cdp, session)
		return err
	}
	if err := cdp.enableDomain(ctx, sid, d); err != nil {
		return newError(CodeCDPUnavailable, "enable "+d+" domain failed", err)
	}
	return nil
}

// RegisterCDPEventHandler subscribes fn to a CDP event method on the deck
// tab. The subscription survives reconnects.
func (c *Client) RegisterCDPEventHandler(method string, fn func(sessionID string, params json.RawMessage)) (func(), error) {
	if method == "" || fn == nil {
		return nil, newError(CodeValidation, "event method and handler are required", nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subSeq++
	id := c.subSeq
	sub := &subscription{method: method, fn: fn}
	if c.cdp != nil {
		sub.unreg = c.cdp.registerEventHandler(method, c.filtered(fn))
	}
	c.subs[id] = sub

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if s, ok := c.subs[id]; ok {
			if s.unreg != nil {
				s.unreg()
			}
			delete(c.subs, id)
		}
	}, nil
}

// filtered drops events from sessions other than the deck tab's.
func (c *Client) filtered(fn func(string, json.RawMessage)) func(string, json.RawMessage) {
	return func(sessionID string, params json.RawMessage) {
		active, _ := c.activeSession.Load().(string)
		if active == "" || sessionID != active {
			return
		}
		fn(sessionID, params)
	}
}

func (c *Client) reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

// syncTabLocked finds the deck tab, opening one when none matches.
func (c *Client) syncTabLocked(ctx context.Context) error {
	if c.cdp == nil {
		return newError(CodeCDPUnavailable, "CDP client not connected", nil)
	}

	targets, err := c.cdp.listTargets(ctx)
	if err != nil {
		return newError(CodeCDPUnavailable, "failed to list targets", err)
	}

	for _, t := range targets {
		if t.Type != "page" || !matchesDeck(t.URL, c.deckURL) {
			continue
		}
		c.tab = &tabSession{info: TabInfo{TargetID: string(t.TargetID), URL: t.URL, Title: t.Title}}
		slog.Debug("cdpcontrol deck tab found", "target_id", t.TargetID, "url", t.URL)
		return nil
	}

	if c.deckURL == "" {
		return newError(CodeNotFound, "deck tab not found", nil)
	}
	id, err := c.cdp.createTarget(ctx, c.deckURL)
	if err != nil {
		return newError(CodeCDPUnavailable, "open deck tab failed", err)
	}
	c.tab = &tabSession{info: TabInfo{TargetID: id, URL: c.deckURL}}
	slog.Info("cdpcontrol deck tab opened", "target_id", id, "url", c.deckURL)
	return nil
}

func (c *Client) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	connected := c.cdp != nil && c.cdp.connected() && c.tab != nil
	c.mu.Unlock()
	if connected {
		return nil
	}
	return c.reconnect(ctx)
}

func (c *Client) shouldRetry(err error) bool {
	var coded *CodedError
	if !errors.As(err, &coded) {
		return false
	}

	switch coded.Code {
	case CodeCDPUnavailable:
		return true
	case CodeEvalFailure:
		if coded.Cause == nil {
			return false
		}
		cause := strings.ToLower(coded.Cause.Error())
		for _, hint := range transientHints {
			if strings.Contains(cause, hint) {
				return true
			}
		}
	}
	return false
}

// matchesDeck reports whether a tab URL shows the mirrored deck: same host
// and path as deckURL, with the same mode parameter.
func matchesDeck(tabURL, deckURL string) bool {
	if deckURL == "" {
		return false
	}
	tu, err := url.Parse(tabURL)
	if err != nil {
		return false
	}
	du, err := url.Parse(deckURL)
	if err != nil {
		return false
	}
	if tu.Host != du.Host || strings.TrimSuffix(tu.Path, "/") != strings.TrimSuffix(du.Path, "/") {
		return false
	}
	return tu.Query().Get("mode") == du.Query().Get("mode")
}

func jsJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func buildIIFE(async bool, body string) string {
	prefix := "(function(){\n"
	if async {
		prefix = "(async function(){\n"
	}
	return prefix + `try {
` + body + `
} catch (err) {
return JSON.stringify({ok:false,error_code:"` + CodeEvalFailure + `",error_message:String(err && err.message || err)});
}
})()`
}

func wrapJSEval(body string) string { return buildIIFE(false, body) }
