package server

// whoisBuilder accumulates a 311/319/318 reply sequence into a single
// onWhois event, since irccd's wire event model has no per-reply-line
// granularity (spec.md §3.2).
type whoisBuilder struct {
	nick     string
	user     string
	host     string
	realname string
	channels []string
}
