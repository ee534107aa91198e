package console

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	admin "github.com/goliatone/go-school-admin"
)

// PendingRetrySeconds is how soon the placeholder page refreshes.
const PendingRetrySeconds = 1

const localsAdmin = "admin"

// ProtectedRoute gates the dashboard on the current AuthState.
func (a *Controller) ProtectedRoute() fiber.Handler {
	return func(c *fiber.Ctx) error {
		state := a.Sessions.State()

		decision := a.Guard.Evaluate(state)
		switch decision.Outcome {
		case admin.OutcomePending:
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(PendingRetrySeconds))
			return c.Status(fiber.StatusServiceUnavailable).Render(a.Views.Pending, map[string]any{
				"retry": PendingRetrySeconds,
			}, a.Views.AuthLayout)
		case admin.OutcomeRedirect:
			return c.Redirect(decision.RedirectTo, fiber.StatusFound)
		}

		c.SetUserContext(admin.WithStateContext(c.UserContext(), state))
		c.Locals(localsAdmin, *state.Admin)
		return c.Next()
	}
}

// handleAPIError logs out on 401 or 403 and reports whether the caller
// should redirect to the login view.
func (a *Controller) handleAPIError(c *fiber.Ctx, err error) bool {
	return a.Sessions.HandleAPIError(c.UserContext(), err)
}

func (a *Controller) toLogin(c *fiber.Ctx) error {
	return c.Redirect(a.Routes.Login, fiber.StatusSeeOther)
}

func currentAdmin(c *fiber.Ctx) admin.AdminIdentity {
	if id, ok := admin.AdminFromContext(c.UserContext()); ok {
		return id
	}
	id, _ := c.Locals(localsAdmin).(admin.AdminIdentity)
	return id
}
