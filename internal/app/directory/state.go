package directory

import "net/url"

// State is the toggle state of a directory, carried in the page URL.
type State struct {
	Expanded  bool
	Ascending bool
}

// StateFrom reads the state stored under prefix. Missing keys mean collapsed and
// ascending.
func StateFrom(q url.Values, prefix string) State {
	return State{
		Expanded:  q.Get(prefix+"open") == "1",
		Ascending: q.Get(prefix+"order") != "desc",
	}
}

// Encode returns a copy of q with s stored under prefix. Default values are omitted.
func (s State) Encode(q url.Values, prefix string) url.Values {
	out := make(url.Values, len(q)+2)
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	out.Del(prefix + "open")
	out.Del(prefix + "order")
	if s.Expanded {
		out.Set(prefix+"open", "1")
	}
	if !s.Ascending {
		out.Set(prefix+"order", "desc")
	}
	return out
}

// ToggleExpandedQuery is the query string that flips the expand state.
func (s State) ToggleExpandedQuery(q url.Values, prefix string) string {
	s.Expanded = !s.Expanded
	return s.Encode(q, prefix).Encode()
}

// ToggleSortQuery is the query string that flips the sort order.
func (s State) ToggleSortQuery(q url.Values, prefix string) string {
	s.Ascending = !s.Ascending
	return s.Encode(q, prefix).Encode()
}
