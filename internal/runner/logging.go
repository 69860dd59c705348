package runner

import "context"

// FailureLogger receives each failed request error.
type FailureLogger interface {
	LogFailure(err error)
}

// WithLogging wraps a Requester so transport failures are reported to the
// given logger without altering the outcome.
func WithLogging(next Requester, logger FailureLogger) Requester {
	if logger == nil {
		return next
	}
	return &loggingRequester{next: next, logger: logger}
}

type loggingRequester struct {
	next   Requester
	logger FailureLogger
}

func (l *loggingRequester) Do(ctx context.Context) error {
	err := l.next.Do(ctx)
	if err != nil {
		l.logger.LogFailure(err)
	}
	return err
}
