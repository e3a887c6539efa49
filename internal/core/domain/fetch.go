package domain

// FetchStatus classifies the outcome of a detail fetch against the
// upstream API. Not-found and client errors are permanent; server and
// network failures are worth re-attempting on a later pipeline run.
type FetchStatus string

const (
	// FetchOK means the full record was retrieved.
	FetchOK FetchStatus = "success"

	// FetchNotFound means the upstream answered but knows no such tender.
	// Terminal; never retried.
	FetchNotFound FetchStatus = "not_found"

	// FetchClientError covers non-404 4xx responses. Terminal.
	FetchClientError FetchStatus = "client_error"

	// FetchServerError means the retry budget was exhausted on 5xx
	// responses.
	FetchServerError FetchStatus = "server_error"

	// FetchNetworkError means the retry budget was exhausted on
	// timeouts or connection failures.
	FetchNetworkError FetchStatus = "network_error"

	// FetchExhausted means the attempt budget ran out without a
	// classified terminal outcome.
	FetchExhausted FetchStatus = "exhausted"
)

// Pending reports whether the failure is worth re-attempting on a later
// full pipeline run. The orchestrator counts these separately from hard
// errors.
func (s FetchStatus) Pending() bool {
	switch s {
	case FetchServerError, FetchNetworkError, FetchExhausted:
		return true
	}
	return false
}
