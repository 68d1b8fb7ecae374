package paginate

import (
	"net/url"
	"strconv"
)

type Links struct {
	Self  string `json:"self"`
	First string `json:"first"`
	Last  string `json:"last"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
}

// BuildLinks renders pagination links from the request URL. Page numbers
// are clamped to [1, pages] so the edges repeat the boundary page.
func BuildLinks(u url.URL, page Page, pages int64) Links {
	last := uint64(1)
	if pages > 1 {
		last = uint64(pages)
	}
	clamp := func(n uint64) uint64 {
		if n < 1 {
			return 1
		}
		if n > last {
			return last
		}
		return n
	}
	at := func(n uint64) string {
		q := u.Query()
		q.Set("page[number]", strconv.FormatUint(n, 10))
		q.Set("page[size]", strconv.FormatUint(page.Size, 10))
		v := u
		v.RawQuery = q.Encode()
		return v.String()
	}

	prev := page.Number
	if prev > 1 {
		prev--
	}
	return Links{
		Self:  at(page.Number),
		First: at(1),
		Last:  at(last),
		Prev:  at(clamp(prev)),
		Next:  at(clamp(page.Number + 1)),
	}
}
