package web

import (
	"context"
	"errors"

	"github.com/dukex/docflow/pkg/directory"
	"github.com/gofiber/fiber/v3"
)

const (
	userLocalKey    = "docflow.user"
	sessionLocalKey = "docflow.session"
)

// Authenticate resolves the SESSION cookie to a directory user and stores it
// in the request locals. Requests without a valid session get a 401 problem.
func Authenticate(dir directory.Directory) fiber.Handler {
	return func(c fiber.Ctx) error {
		sessionID := c.Cookies(directory.SessionCookie)
		if sessionID == "" {
			return unauthorized(c, "session cookie is missing")
		}

		user, err := dir.CurrentUser(directory.WithSession(c.Context(), sessionID))
		if err != nil {
			if errors.Is(err, directory.ErrUnauthenticated) {
				return unauthorized(c, "session is not valid")
			}

			return handleServiceError(c, err)
		}

		c.Locals(sessionLocalKey, sessionID)
		c.Locals(userLocalKey, user)

		return c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate, or nil.
func CurrentUser(c fiber.Ctx) *directory.User {
	user, _ := c.Locals(userLocalKey).(*directory.User)

	return user
}

// requestContext carries the caller's session so directory calls made while
// serving the request authenticate as the caller.
func requestContext(c fiber.Ctx) context.Context {
	var ctx context.Context = c.Context()

	if sessionID, ok := c.Locals(sessionLocalKey).(string); ok {
		ctx = directory.WithSession(ctx, sessionID)
	}

	return ctx
}
