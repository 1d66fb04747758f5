package entity

// TransactionOutcome classifies the result of a mutating store operation
type TransactionOutcome int

const (
	Success TransactionOutcome = iota
	BadRequest
	NotFound
	ServerError
)

func (o TransactionOutcome) String() string {
	switch o {
	case Success:
		return "success"
	case BadRequest:
		return "bad_request"
	case NotFound:
		return "not_found"
	case ServerError:
		return "server_error"
	default:
		return "unknown"
	}
}
