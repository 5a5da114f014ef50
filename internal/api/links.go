package api

import (
	"fmt"
	"net/url"
	"strconv"
)

// replaceQueryParam sets or replaces one query parameter of the URL and
// returns the rewritten URL with canonical (sorted-key) encoding.
func replaceQueryParam(raw, key, value string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}

	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// pageLinks computes the next/previous page links for the request URL by
// rewriting its page_no parameter. A link is nil when there is no page in
// that direction.
func pageLinks(requestURL string, pageNo, count, pageSize int) (next, prev *string) {
	maxPageNo := count / pageSize
	if count%pageSize != 0 {
		maxPageNo++
	}

	if maxPageNo > pageNo {
		if link, err := replaceQueryParam(requestURL, "page_no", strconv.Itoa(pageNo+1)); err == nil {
			next = &link
		}
	}
	if pageNo > 1 {
		if link, err := replaceQueryParam(requestURL, "page_no", strconv.Itoa(pageNo-1)); err == nil {
			prev = &link
		}
	}
	return next, prev
}
