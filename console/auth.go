package console

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	admin "github.com/goliatone/go-school-admin"
)

// LoginShow renders the login form with the academic sessions to pick from.
func (a *Controller) LoginShow(c *fiber.Ctx) error {
	return a.renderLogin(c, fiber.StatusOK, admin.LoginMessage{}, "")
}

// LoginPost exchanges the submitted credentials.
func (a *Controller) LoginPost(c *fiber.Ctx) error {
	payload := admin.LoginMessage{}
	if err := c.BodyParser(&payload); err != nil {
		a.Logger.Warn("login form bind error: %v", err)
		return a.renderLogin(c, fiber.StatusBadRequest, payload, "Invalid login form")
	}

	if a.Debug {
		masked := payload
		masked.Password = "***"
		fmt.Println(print.MaybePrettyJSON(masked))
	}

	if err := a.Login.Execute(c.UserContext(), payload); err != nil {
		return a.renderLogin(c, fiber.StatusUnprocessableEntity, payload, admin.LoginFailureMessage(err))
	}

	return c.Redirect(a.Routes.Dashboard, fiber.StatusSeeOther)
}

// LogOut clears the session and goes back to the login view.
func (a *Controller) LogOut(c *fiber.Ctx) error {
	if err := a.Sessions.Logout(c.UserContext()); err != nil {
		a.Logger.Error("logout error: %v", err)
	}
	return a.toLogin(c)
}

func (a *Controller) renderLogin(c *fiber.Ctx, status int, record admin.LoginMessage, message string) error {
	sessions, err := a.API.ListSessions(c.UserContext())
	if err != nil {
		a.Logger.Error("failed to load sessions: %v", err)
		if message == "" {
			message = "Failed to load sessions"
		}
	}

	record.Password = ""
	return c.Status(status).Render(a.Views.Login, map[string]any{
		"error":    message,
		"record":   record,
		"sessions": sessions,
		"action":   a.Routes.Login,
	}, a.Views.AuthLayout)
}
