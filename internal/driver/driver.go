// Package driver is a high-level facade over a headless browser. It wraps
// go-rod, exposing simplified navigation, DOM query and input operations,
// and translates the underlying errors into its own vocabulary.
package driver

import (
	"context"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Driver owns one live browser with a single page attached. It is not
// safe for concurrent use; a Driver belongs to one session.
type Driver struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	jar      *CookieJar
	opts     Options
	log      *zap.Logger

	mu     sync.Mutex
	closed bool
}

func newDriver(ctx context.Context, typ Type, browser *rod.Browser, l *launcher.Launcher, opts Options, log *zap.Logger) (*Driver, error) {
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, LaunchError(err)
	}
	if ctx != nil {
		page = page.Context(ctx)
	}

	dlog := log.With(zap.String("component", "driver"), zap.String("browser", string(typ)))
	return &Driver{
		browser:  browser,
		launcher: l,
		page:     page,
		jar:      NewCookieJar(opts.CookieFile, dlog),
		opts:     opts,
		log:      dlog,
	}, nil
}

func (d *Driver) alive() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.page == nil {
		return SessionClosedError()
	}
	return nil
}

// Title returns the title of the current page.
func (d *Driver) Title() (string, error) {
	if err := d.alive(); err != nil {
		return "", err
	}
	info, err := d.page.Info()
	if err != nil {
		return "", TranslateWrap(err, "get page info")
	}
	return info.Title, nil
}

// URL returns the current page URL.
func (d *Driver) URL() (string, error) {
	if err := d.alive(); err != nil {
		return "", err
	}
	info, err := d.page.Info()
	if err != nil {
		return "", TranslateWrap(err, "get page info")
	}
	return info.URL, nil
}

// Navigate resolves target against the current page URL and loads it.
// Saved cookies matching the new host are restored afterwards.
func (d *Driver) Navigate(ctx context.Context, target string) error {
	if err := d.alive(); err != nil {
		return err
	}

	current, _ := d.URL()
	resolved, err := ResolveURL(current, target)
	if err != nil {
		return NewError(CodeNavigation, err)
	}

	d.log.Info("navigate", zap.String("url", resolved))
	page := d.page.Context(ctx)
	if err := page.Navigate(resolved); err != nil {
		return TranslateWrap(err, "navigation failed")
	}
	if err := page.WaitLoad(); err != nil {
		return TranslateWrap(err, "wait for page load")
	}
	_ = page.WaitIdle(navigationIdleWait)

	d.restoreCookies(resolved)
	d.logPage()
	return nil
}

// Elements searches the DOM for all elements matching the query. At least
// one criterion must be set; candidates are collected per criterion and
// intersected.
func (d *Driver) Elements(ctx context.Context, q Query) ([]*rod.Element, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := d.alive(); err != nil {
		return nil, err
	}

	page := d.page.Context(ctx)
	seen := make(map[proto.RuntimeRemoteObjectID]bool)
	var candidates []*rod.Element

	for _, sel := range q.selectors() {
		els, err := page.Elements(sel)
		if err != nil {
			return nil, TranslateWrap(err, "element search failed")
		}
		for _, el := range els {
			if el.Object != nil && seen[el.Object.ObjectID] {
				continue
			}
			if el.Object != nil {
				seen[el.Object.ObjectID] = true
			}
			candidates = append(candidates, el)
		}
	}

	filters := q.filters()
	var matches []*rod.Element
	for _, el := range candidates {
		if matchesAll(rodProbe{el}, filters) {
			matches = append(matches, el)
		}
	}
	return matches, nil
}

// Element searches the DOM for a single element. Exactly one criterion
// must be set.
func (d *Driver) Element(ctx context.Context, q Query) (*rod.Element, error) {
	if err := q.ValidateSingle(); err != nil {
		return nil, err
	}
	if err := d.alive(); err != nil {
		return nil, err
	}

	el, err := d.page.Context(ctx).Timeout(d.opts.Timeout).Element(q.Selector())
	if err != nil {
		return nil, TranslateWrap(err, "element "+q.String())
	}
	return el, nil
}

// Click clicks the single element matching the query.
func (d *Driver) Click(ctx context.Context, q Query) error {
	d.log.Info("click element", zap.String("query", q.String()))

	el, err := d.Element(ctx, q)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return TranslateWrap(err, "click failed")
	}

	_ = d.page.WaitIdle(interactionIdleWait)
	d.logPage()
	return nil
}

// Submit submits the form owning the element matching the query. Elements
// without an enclosing form fall back to a plain click.
func (d *Driver) Submit(ctx context.Context, q Query) error {
	d.log.Info("submit element", zap.String("query", q.String()))

	el, err := d.Element(ctx, q)
	if err != nil {
		return err
	}

	obj, err := el.Eval(`() => {
		const form = this.form || this.closest("form");
		if (!form) return false;
		if (form.requestSubmit) form.requestSubmit(); else form.submit();
		return true;
	}`)
	if err != nil {
		return TranslateWrap(err, "submit failed")
	}
	if !obj.Value.Bool() {
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return TranslateWrap(err, "submit click failed")
		}
	}

	_ = d.page.WaitIdle(interactionIdleWait)
	d.logPage()
	return nil
}

// Type sends text input to the single element matching the query,
// clearing any existing content first.
func (d *Driver) Type(ctx context.Context, q Query, text string) error {
	el, err := d.Element(ctx, q)
	if err != nil {
		return err
	}

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return TranslateWrap(err, "input failed")
	}
	return nil
}

// Source returns the current page HTML.
func (d *Driver) Source(ctx context.Context) (string, error) {
	if err := d.alive(); err != nil {
		return "", err
	}
	html, err := d.page.Context(ctx).HTML()
	if err != nil {
		return "", TranslateWrap(err, "get page source")
	}
	return html, nil
}

// Close persists cookies and shuts the browser down, killing the
// launched process. Safe to call more than once.
func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	if d.log != nil {
		d.log.Info("driver shutdown initiated")
	}
	d.saveCookies()

	if d.page != nil {
		_ = d.page.Close()
	}
	if d.browser != nil {
		_ = d.browser.Close()
	}
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher.Cleanup()
	}
	return nil
}

// restoreCookies pushes saved cookies into the browser, skipping those
// whose domain does not cover the current host.
func (d *Driver) restoreCookies(pageURL string) {
	cookies, err := d.jar.Load()
	if err != nil {
		d.log.Warn("cookie restore skipped", zap.Error(err))
		return
	}
	if len(cookies) == 0 {
		return
	}

	host := hostOf(pageURL)
	var params []*proto.NetworkCookieParam
	for _, c := range cookies {
		if !c.matchesHost(host) {
			d.log.Debug("skipping cookie for foreign domain",
				zap.String("cookie", c.Name), zap.String("domain", c.Domain))
			continue
		}
		p := c.toParam()
		if p.Domain == "" {
			p.URL = pageURL
		}
		params = append(params, p)
	}
	if len(params) == 0 {
		return
	}
	if err := d.page.SetCookies(params); err != nil {
		d.log.Debug("cookie restore failed", zap.Error(err))
	}
}

func (d *Driver) saveCookies() {
	if d.jar == nil || d.browser == nil {
		return
	}
	netCookies, err := d.browser.GetCookies()
	if err != nil {
		if d.log != nil {
			d.log.Warn("cookie save skipped", zap.Error(err))
		}
		return
	}
	cookies := make([]Cookie, 0, len(netCookies))
	for _, nc := range netCookies {
		cookies = append(cookies, fromNetworkCookie(nc))
	}
	if err := d.jar.Save(cookies); err != nil {
		d.log.Warn("cookie save failed", zap.Error(err))
	}
}

func (d *Driver) logPage() {
	info, err := d.page.Info()
	if err != nil {
		return
	}
	d.log.Info("page loaded", zap.String("title", info.Title), zap.String("url", info.URL))
}

// rodProbe adapts a rod element to the filter predicates.
type rodProbe struct {
	el *rod.Element
}

func (p rodProbe) attr(name string) (string, bool) {
	v, err := p.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (p rodProbe) tagName() string {
	obj, err := p.el.Eval(`() => this.tagName`)
	if err != nil {
		return ""
	}
	return strings.ToLower(obj.Value.Str())
}
