package cdpcontrol

import (
	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
)

// Envelope codes produced by the chart scripts. They never leave this
// package; ChartJSEngine maps them onto charts errors.
const (
	codeEngineUnavailable = "ENGINE_UNAVAILABLE"
	codeNoSurface         = "NO_SURFACE"
)

// jsMirrorState holds per-page state the mirror scripts share. A reload
// discards it together with every chart instance.
const jsMirrorState = `
var M = window.__deckMirror || (window.__deckMirror = {charts:{}, defaults:false});`

// requiredSelectors are the single elements the deck page must contain.
var requiredSelectors = []string{"#currentSlide", "#totalSlides", "#progressBar", "#prevBtn", "#nextBtn"}

func jsBind() string {
	return wrapJSEval(jsMirrorState + `
var required = ` + jsJSON(requiredSelectors) + `;
var missing = [];
for (var i = 0; i < required.length; i++) {
  if (!document.querySelector(required[i])) missing.push(required[i]);
}
var slides = document.querySelectorAll(".slide[data-slide]").length;
if (!slides) missing.push(".slide[data-slide]");
var indicators = document.querySelectorAll(".indicator").length;
if (!indicators) missing.push(".indicator");
var canvases = [];
document.querySelectorAll("canvas[id$='Chart']").forEach(function (c) { canvases.push(c.id); });
canvases.sort();
return JSON.stringify({ok:true,data:{
  slides: slides,
  indicators: indicators,
  phases: document.querySelectorAll(".phase").length,
  markers: document.querySelectorAll(".marker").length,
  canvases: canvases,
  missing: missing,
  chart_js: typeof Chart !== "undefined"
}});`)
}

// jsApplyView updates the bound DOM to show v. Elements that are absent are
// skipped and reported back.
func jsApplyView(v deck.View) string {
	return wrapJSEval(`
var v = ` + jsJSON(v) + `;
var missing = [];
function byId(id) {
  var el = document.getElementById(id);
  if (!el) missing.push("#" + id);
  return el;
}
function toggleAll(sel, active) {
  document.querySelectorAll(sel).forEach(function (node, i) { node.classList.toggle("active", active(node, i)); });
}
toggleAll(".slide[data-slide]", function (node) { return parseInt(node.getAttribute("data-slide"), 10) === v.current; });
if (!document.querySelector('.slide[data-slide="' + v.current + '"]')) missing.push('.slide[data-slide="' + v.current + '"]');
var cur = byId("currentSlide"); if (cur) cur.textContent = v.current_label;
var total = byId("totalSlides"); if (total) total.textContent = v.total_label;
var bar = byId("progressBar"); if (bar) bar.style.width = v.progress_width;
toggleAll(".indicator", function (_, i) { return i + 1 === v.current; });
var prev = byId("prevBtn");
if (prev) { prev.disabled = v.prev_disabled; prev.style.opacity = v.prev_disabled ? "0.3" : "1"; }
var next = byId("nextBtn");
if (next) { next.disabled = v.next_disabled; next.style.opacity = v.next_disabled ? "0.3" : "1"; }
if (v.phase) {
  toggleAll(".phase", function (_, i) { return i + 1 === v.phase; });
  toggleAll(".marker", function (_, i) { return i + 1 === v.phase; });
}
return JSON.stringify({ok:true,data:{missing:missing}});`)
}

// jsFormatHelper mirrors charts.Format.Apply.
const jsFormatHelper = `
function _fmt(f, label, v) {
  var prefix = f.prefix || "";
  if (v < 0 && f.negative_prefix) prefix = f.negative_prefix;
  if (f.abs && v < 0) v = -v;
  var s = prefix + v + (f.suffix || "");
  if (f.with_label && label) return label + ": " + s;
  return s;
}`

func jsProbeChart(slot charts.SlotID) string {
	return wrapJSEval(`
if (typeof Chart === "undefined") {
  return JSON.stringify({ok:false,error_code:"` + codeEngineUnavailable + `",error_message:"Chart is not defined"});
}
if (!document.getElementById(` + jsJSON(slot.ElementID()) + `)) {
  return JSON.stringify({ok:false,error_code:"` + codeNoSurface + `",error_message:"no element #` + slot.ElementID() + `"});
}
return JSON.stringify({ok:true});`)
}

// jsConstructChart applies global defaults once, then builds the chart
// unless the page already has one for slot.
func jsConstructChart(slot charts.SlotID, cfg charts.Config, style charts.Defaults) string {
	return wrapJSEval(jsMirrorState + jsFormatHelper + `
var slot = ` + jsJSON(string(slot)) + `;
if (typeof Chart === "undefined") {
  return JSON.stringify({ok:false,error_code:"` + codeEngineUnavailable + `",error_message:"Chart is not defined"});
}
var el = document.getElementById(` + jsJSON(slot.ElementID()) + `);
if (!el) {
  return JSON.stringify({ok:false,error_code:"` + codeNoSurface + `",error_message:"no element #` + slot.ElementID() + `"});
}
if (M.charts[slot]) return JSON.stringify({ok:true,data:{created:false}});
if (!M.defaults) {
  var d = ` + jsJSON(style) + `;
  Chart.defaults.font.family = d.font_family;
  Chart.defaults.font.size = d.font_size;
  Chart.defaults.color = d.color;
  Chart.defaults.plugins.legend.display = d.legend_display;
  Chart.defaults.plugins.tooltip.backgroundColor = d.tooltip_background;
  Chart.defaults.plugins.tooltip.titleColor = d.tooltip_title_color;
  Chart.defaults.plugins.tooltip.bodyColor = d.tooltip_body_color;
  Chart.defaults.plugins.tooltip.cornerRadius = d.tooltip_radius;
  M.defaults = true;
}
var cfg = ` + jsJSON(cfg) + `;
cfg.options = cfg.options || {};
var ticks = ` + jsJSON(cfg.Ticks) + `;
var tooltip = ` + jsJSON(cfg.Tooltip) + `;
if (ticks) {
  cfg.options.scales = cfg.options.scales || {};
  var y = cfg.options.scales.y = cfg.options.scales.y || {};
  y.ticks = y.ticks || {};
  y.ticks.callback = function (value) { return _fmt(ticks, "", value); };
}
if (tooltip) {
  cfg.options.plugins = cfg.options.plugins || {};
  var tt = cfg.options.plugins.tooltip = cfg.options.plugins.tooltip || {};
  tt.callbacks = tt.callbacks || {};
  tt.callbacks.label = function (ctx) {
    var v = (ctx.parsed !== null && typeof ctx.parsed === "object") ? ctx.parsed.y : ctx.parsed;
    return _fmt(tooltip, ctx.label, v);
  };
}
M.charts[slot] = new Chart(el, cfg);
return JSON.stringify({ok:true,data:{created:true}});`)
}

func jsResizeChart(slot charts.SlotID) string {
	return wrapJSEval(jsMirrorState + `
var chart = M.charts[` + jsJSON(string(slot)) + `];
if (!chart) return JSON.stringify({ok:false,error_code:"` + CodeNotFound + `",error_message:"chart not constructed"});
if (typeof chart.resize === "function") chart.resize();
return JSON.stringify({ok:true});`)
}
