// Package domjs holds the page-side scripts shared by the browser backends.
// Every query script is a function expression taking a CSS selector and
// returning a JSON string, so both chromedp and rod decode it the same way.
package domjs

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Binding is the name of the page function the mutation observer calls.
const Binding = "__deckpdfMutated"

// Observer installs a MutationObserver that calls [Binding] on every change.
//
//go:embed observer.js
var Observer string

// Text returns {found, text} for the first match of a selector.
const Text = `(sel) => {
  const el = document.querySelector(sel);
  return JSON.stringify(el ? {found: true, text: el.textContent || ''} : {found: false});
}`

// Visible returns {found, visible}; hidden means display:none,
// visibility:hidden or zero opacity, inline or computed.
const Visible = `(sel) => {
  const el = document.querySelector(sel);
  if (!el) return JSON.stringify({found: false});
  const s = window.getComputedStyle(el);
  const hidden = el.style.display === 'none' || el.style.opacity === '0' ||
    s.display === 'none' || s.visibility === 'hidden' || s.opacity === '0';
  return JSON.stringify({found: true, visible: !hidden});
}`

// Click calls click() on the first match of a selector.
const Click = `(sel) => {
  const el = document.querySelector(sel);
  if (!el) return JSON.stringify({found: false});
  el.click();
  return JSON.stringify({found: true});
}`

// SyntheticClick dispatches mousedown, mouseup and click on the first match
// of a selector, for controls that ignore a bare click().
const SyntheticClick = `(sel) => {
  const el = document.querySelector(sel);
  if (!el) return JSON.stringify({found: false});
  for (const type of ['mousedown', 'mouseup', 'click']) {
    el.dispatchEvent(new MouseEvent(type, {bubbles: true, cancelable: true, view: window}));
  }
  return JSON.stringify({found: true});
}`

// Reply is the decoded result of a query script.
type Reply struct {
	Found   bool   `json:"found"`
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
}

// Call renders fn applied to selector as a standalone expression.
func Call(fn, selector string) string {
	arg, _ := json.Marshal(selector)
	return fmt.Sprintf("(%s)(%s)", fn, arg)
}

// Decode parses the JSON string a query script returned.
func Decode(raw string) (Reply, error) {
	var r Reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Reply{}, fmt.Errorf("decoding script reply %q: %w", raw, err)
	}
	return r, nil
}
