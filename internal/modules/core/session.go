package core

import "context"

type ContextKey string

const SessionContextKey ContextKey = "session"

// ContextSession is the ephemeral participant identity bound to one
// connection. SessionID doubles as the key into every item's approver map.
type ContextSession struct {
	SessionID string
}

func WithSession(ctx context.Context, session ContextSession) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}

func Session(ctx context.Context) ContextSession {
	session, ok := ctx.Value(SessionContextKey).(ContextSession)
	if !ok {
		return ContextSession{}
	}

	return session
}
