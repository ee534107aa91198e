package admin

// DefaultLoginPath is where unauthenticated requests are sent.
const DefaultLoginPath = "/login"

// Outcome is what a protected view should do for a given AuthState.
type Outcome int

const (
	// OutcomePending shows a placeholder while startup verification runs.
	OutcomePending Outcome = iota
	// OutcomeRender renders the protected content.
	OutcomeRender
	// OutcomeRedirect sends the admin to the login view.
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a route guard.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
}

// RouteGuard projects AuthState into a Decision. It holds no state of its own.
type RouteGuard struct {
	LoginPath string
}

// NewRouteGuard returns a guard redirecting to loginPath, or to
// DefaultLoginPath when loginPath is empty.
func NewRouteGuard(loginPath string) RouteGuard {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return RouteGuard{LoginPath: loginPath}
}

// Evaluate decides between Pending, Render and Redirect.
func (g RouteGuard) Evaluate(state AuthState) Decision {
	if state.Loading {
		return Decision{Outcome: OutcomePending}
	}

	if !state.IsAuthenticated || state.Admin == nil {
		loginPath := g.LoginPath
		if loginPath == "" {
			loginPath = DefaultLoginPath
		}
		return Decision{Outcome: OutcomeRedirect, RedirectTo: loginPath}
	}

	return Decision{Outcome: OutcomeRender}
}

// Evaluate uses a guard bound to DefaultLoginPath.
func Evaluate(state AuthState) Decision {
	return RouteGuard{LoginPath: DefaultLoginPath}.Evaluate(state)
}
