package domain

// Reserved query keys. Phone and text feed the destination URL; the
// continue flag bypasses the bot branch on the next hit.
const (
	ParamPhone  = "phone"
	ParamText   = "text"
	ContinueKey = "_continue"
)

// RedirectRequest carries everything the resolver needs about one inbound
// request. It is built per request and never persisted.
type RedirectRequest struct {
	Slug      string
	UserAgent string
	Query     map[string]string
	ClientIP  string
}

// Continuation reports whether the request carries the bot-bypass flag.
// Only the exact value "1" counts; anything else means "not continuing".
func (r *RedirectRequest) Continuation() bool {
	return r.Query[ContinueKey] == "1"
}

type Action int

const (
	ActionRedirect Action = iota
	ActionPreview
)

// RedirectResult is the resolver's terminal outcome for a request that did
// not fail: either a redirect location or a rendered preview document.
type RedirectResult struct {
	Action   Action
	Location string
	Platform Platform
	HTML     []byte
	BotName  string
}
