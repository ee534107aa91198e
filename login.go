package admin

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// LoginMessage carries the credentials submitted from the login view.
type LoginMessage struct {
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	SessionID int64  `json:"sessionId" form:"sessionId"`
}

func (m LoginMessage) Type() string { return "admin.login" }

// Validate will validate the payload
func (m LoginMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required.Error("Email is required"), is.Email.Error("Invalid email format")),
		validation.Field(&m.Password, validation.Required.Error("Password is required")),
		validation.Field(&m.SessionID, validation.Required.Error("Please select a session")),
	)
}

// LoginResult is what a successful credential exchange returns.
type LoginResult struct {
	Admin AdminIdentity `json:"admin"`
	Token string        `json:"token"`
}

// LoginHandler exchanges credentials and records the session.
type LoginHandler struct {
	Exchanger    CredentialExchanger
	Sessions     *SessionManager
	Logger       Logger
	ActivitySink ActivitySink
}

// NewLoginHandler returns a handler wired to exchanger and sessions.
func NewLoginHandler(exchanger CredentialExchanger, sessions *SessionManager) *LoginHandler {
	return &LoginHandler{
		Exchanger: exchanger,
		Sessions:  sessions,
		Logger:    defLogger{},
	}
}

// Execute validates msg, exchanges it with the API and logs the admin in.
// Failures come back as *LoginFailure carrying the message to display.
func (h *LoginHandler) Execute(ctx context.Context, msg LoginMessage) error {
	select {
	case <-ctx.Done():
		return &LoginFailure{Message: "Login canceled", Err: ctx.Err()}
	default:
		return h.execute(ctx, msg)
	}
}

func (h *LoginHandler) execute(ctx context.Context, msg LoginMessage) error {
	if err := msg.Validate(); err != nil {
		return &LoginFailure{Message: firstValidationMessage(err), Err: err}
	}

	result, err := h.Exchanger.Exchange(ctx, msg)
	if err != nil {
		h.logger().Error("login exchange error: %v", err)
		h.record(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Metadata: map[string]any{
				ActivityKeyEmail:     msg.Email,
				ActivityKeySessionID: msg.SessionID,
				ActivityKeyError:     err.Error(),
			},
		})
		return &LoginFailure{Message: LoginFailureMessage(err), Err: err}
	}

	if err := h.Sessions.Login(ctx, result.Admin, result.Token); err != nil {
		return &LoginFailure{Message: "Login failed", Err: err}
	}

	return nil
}

func (h *LoginHandler) logger() Logger {
	if h.Logger == nil {
		return defLogger{}
	}
	return h.Logger
}

func (h *LoginHandler) record(ctx context.Context, event ActivityEvent) {
	emitActivity(ctx, h.ActivitySink, h.logger(), time.Now(), event)
}

// firstValidationMessage returns one message in field order: email,
// password, session.
func firstValidationMessage(err error) string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	for _, field := range []string{"email", "password", "sessionId"} {
		if fieldErr, ok := verrs[field]; ok && fieldErr != nil {
			return fieldErr.Error()
		}
	}
	return err.Error()
}
