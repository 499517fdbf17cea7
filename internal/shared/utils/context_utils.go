package utils

import (
	"context"

	"deptsite/internal/shared/contextkeys"
)

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextkeys.UserIDKey, userID)
}

// WithUserEmail returns a context carrying the authenticated user's email.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, contextkeys.UserEmailKey, email)
}

// WithUserRole returns a context carrying the authenticated user's role.
func WithUserRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, contextkeys.UserRoleKey, role)
}

// WithCollection returns a context carrying the target collection name.
func WithCollection(ctx context.Context, collection string) context.Context {
	return context.WithValue(ctx, contextkeys.CollectionKey, collection)
}

// GetUserID extracts the user ID from context.
func GetUserID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(contextkeys.UserIDKey).(string)
	return val, ok && val != ""
}

// GetUserEmail extracts the user email from context.
func GetUserEmail(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(contextkeys.UserEmailKey).(string)
	return val, ok && val != ""
}

// GetUserRole extracts the user role from context.
func GetUserRole(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(contextkeys.UserRoleKey).(string)
	return val, ok && val != ""
}

// GetCollection extracts the target collection name from context.
func GetCollection(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(contextkeys.CollectionKey).(string)
	return val, ok && val != ""
}
