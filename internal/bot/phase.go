package bot

type MatchPhase int

const (
	NotQueued MatchPhase = iota
	Queueing
	QueueFound
	Loading
	EarlyDraft
	InMatch
	PostMatch
)

func (p MatchPhase) String() string {
	switch p {
	case NotQueued:
		return "not_queued"
	case Queueing:
		return "queueing"
	case QueueFound:
		return "queue_found"
	case Loading:
		return "loading"
	case EarlyDraft:
		return "early_draft"
	case InMatch:
		return "in_match"
	case PostMatch:
		return "post_match"
	}

	return "unknown"
}
