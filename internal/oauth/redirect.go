package oauth

import (
	"net/url"
	"strconv"
)

// buildRedirect appends params to base, either as query parameters or, for
// the implicit flow, as the URI fragment.
func buildRedirect(base string, params url.Values, inFragment bool) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", ErrInvalidRedirectURI
	}
	if inFragment {
		u.Fragment = ""
		u.RawFragment = ""
		return u.String() + "#" + params.Encode(), nil
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// errorRedirect encodes an authorize failure into the redirect back to the
// client, echoing state when supplied.
func errorRedirect(base, code, description, state string) (string, error) {
	params := url.Values{"error": {code}}
	if description != "" {
		params.Set("error_description", description)
	}
	if state != "" {
		params.Set("state", state)
	}
	return buildRedirect(base, params, false)
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
