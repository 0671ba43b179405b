package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCookieGuide writes step-by-step instructions for copying the Pixiv
// Cookie header out of a browser
func ShowCookieGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "PIXIV COOKIE GUIDE")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tag search only returns full popular results to logged-in sessions.")
	fmt.Fprintln(w, "Copy the Cookie header of a logged-in browser tab:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Log in at https://www.pixiv.net")
	fmt.Fprintln(w, "  2. Open Developer Tools (F12, or Cmd+Option+I on Mac)")
	fmt.Fprintln(w, "  3. Network tab, then reload the page")
	fmt.Fprintln(w, "  4. Click any request to www.pixiv.net")
	fmt.Fprintln(w, "  5. Under Request Headers copy the whole value of 'Cookie:'")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "The value must contain %s=...; everything else is optional.\n", SessionCookieName)
	fmt.Fprintln(w, "The cookie grants full access to the account. Do not share it.")
	fmt.Fprintln(w, rule)
}

// ShowQuickCookieGuide writes a one-line reminder
func ShowQuickCookieGuide(w io.Writer) {
	fmt.Fprintf(w, "F12, Network, reload, any www.pixiv.net request, Request Headers, Cookie (needs %s)\n", SessionCookieName)
}
