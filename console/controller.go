// Package console serves the school administration web console.
package console

import (
	"context"
	"errors"

	admin "github.com/goliatone/go-school-admin"
	"github.com/goliatone/go-school-admin/client"
)

// API is the part of the REST client the console calls.
type API interface {
	ListSessions(ctx context.Context) ([]admin.LoginSession, error)
	ListStudents(ctx context.Context) ([]admin.Student, error)
	ListClasses(ctx context.Context) ([]admin.Class, error)
	ListTeachers(ctx context.Context) ([]admin.Teacher, error)
	AddClass(ctx context.Context, in client.NewClass) (string, error)
	AddStudent(ctx context.Context, in client.NewStudent, photo *client.Photo) (string, error)
	AddTeacher(ctx context.Context, in client.TeacherInput, photo *client.Photo) (string, error)
	UpdateTeacher(ctx context.Context, id int64, in client.TeacherInput, photo *client.Photo) (string, error)
	AssetURL(path string) string
}

var _ API = (*client.Client)(nil)

// Routes holds the console paths.
type Routes struct {
	Root         string
	Login        string
	Logout       string
	Dashboard    string
	ViewStudents string
	AddStudent   string
	Classes      string
	Teachers     string
}

// Views holds template names.
type Views struct {
	Login        string
	Pending      string
	Home         string
	ViewStudents string
	AddStudent   string
	Classes      string
	Teachers     string
	Layout       string
	AuthLayout   string
}

// Controller renders the console pages.
type Controller struct {
	Sessions *admin.SessionManager
	API      API
	Login    *admin.LoginHandler
	Guard    admin.RouteGuard
	Logger   admin.Logger
	Activity admin.ActivitySink
	Routes   *Routes
	Views    *Views
	Debug    bool
}

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller) *Controller

// WithLogger sets the controller logger.
func WithLogger(logger admin.Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithLoginPath moves the login view, the guard follows.
func WithLoginPath(path string) ControllerOption {
	return func(c *Controller) *Controller {
		if path != "" {
			c.Routes.Login = path
			c.Guard = admin.NewRouteGuard(path)
		}
		return c
	}
}

// WithLoginHandler replaces the default login handler.
func WithLoginHandler(h *admin.LoginHandler) ControllerOption {
	return func(c *Controller) *Controller {
		if h != nil {
			c.Login = h
		}
		return c
	}
}

// WithActivitySink records login attempts made through the console.
func WithActivitySink(sink admin.ActivitySink) ControllerOption {
	return func(c *Controller) *Controller {
		c.Activity = sink
		return c
	}
}

// WithDebug prints submitted payloads.
func WithDebug(debug bool) ControllerOption {
	return func(c *Controller) *Controller {
		c.Debug = debug
		return c
	}
}

// NewController wires a controller. exchanger is used to build the login
// handler unless WithLoginHandler is given.
func NewController(sessions *admin.SessionManager, api API, exchanger admin.CredentialExchanger, opts ...ControllerOption) (*Controller, error) {
	if sessions == nil {
		return nil, errors.New("console requires a session manager")
	}
	if api == nil {
		return nil, errors.New("console requires an api client")
	}

	c := &Controller{
		Sessions: sessions,
		API:      api,
		Guard:    admin.NewRouteGuard(admin.DefaultLoginPath),
		Logger:   nopLogger{},
		Routes: &Routes{
			Root:         "/",
			Login:        admin.DefaultLoginPath,
			Logout:       "/logout",
			Dashboard:    "/dashboard",
			ViewStudents: "/dashboard/back-office/view-students",
			AddStudent:   "/dashboard/back-office/add-student",
			Classes:      "/dashboard/manage/classes",
			Teachers:     "/dashboard/manage/teachers",
		},
		Views: &Views{
			Login:        "login",
			Pending:      "pending",
			Home:         "dashboard/home",
			ViewStudents: "dashboard/students",
			AddStudent:   "dashboard/add_student",
			Classes:      "dashboard/classes",
			Teachers:     "dashboard/teachers",
			Layout:       "layouts/main",
			AuthLayout:   "layouts/auth",
		},
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	if c.Login == nil {
		if exchanger == nil {
			return nil, errors.New("console requires a credential exchanger")
		}
		c.Login = admin.NewLoginHandler(exchanger, sessions)
		c.Login.Logger = c.Logger
	}
	if c.Login.ActivitySink == nil {
		c.Login.ActivitySink = c.Activity
	}

	return c, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
