package models

import "context"

// contextKey - приватный тип для ключей контекста, чтобы избежать коллизий.
type contextKey string

// SessionContextKey используется как ключ для хранения *Session в контексте запроса.
const SessionContextKey contextKey = "session"

// ContextWithSession кладет сессию в контекст.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, s)
}

// GetSessionFromContext извлекает сессию из контекста.
// Возвращает nil и false, если ключ не найден или значение другого типа.
func GetSessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(SessionContextKey).(*Session)
	return s, ok && s != nil
}
