package console

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/django/v3"
)

//go:embed views
var viewsFS embed.FS

// NewEngine loads the embedded templates.
func NewEngine() (*django.Engine, error) {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("scope embedded views: %w", err)
	}
	return django.NewFileSystem(http.FS(sub), ".html"), nil
}

// NewApp builds the fiber app with every console route registered.
func NewApp(ctrl *Controller) (*fiber.App, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		Views:                 engine,
		ViewsLayout:           ctrl.Views.Layout,
		DisableStartupMessage: true,
		ErrorHandler:          ctrl.errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())

	ctrl.RegisterRoutes(app)
	return app, nil
}

// RegisterRoutes mounts the console on r.
func (a *Controller) RegisterRoutes(r fiber.Router) {
	r.Get(a.Routes.Root, func(c *fiber.Ctx) error {
		return c.Redirect(a.Routes.Login, fiber.StatusFound)
	}).Name("root")

	r.Get(a.Routes.Login, a.LoginShow).Name("sign-in.get")
	r.Post(a.Routes.Login, a.LoginPost).Name("sign-in.post")
	r.Get(a.Routes.Logout, a.LogOut).Name("sign-out.get")
	r.Post(a.Routes.Logout, a.LogOut).Name("sign-out.post")

	p := r.Group(a.Routes.Dashboard, a.ProtectedRoute())
	p.Get("/", a.Home).Name("dashboard")
	p.Get(a.sub(a.Routes.ViewStudents), a.StudentsShow).Name("students.get")
	p.Get(a.sub(a.Routes.AddStudent), a.AddStudentShow).Name("add-student.get")
	p.Post(a.sub(a.Routes.AddStudent), a.AddStudentPost).Name("add-student.post")
	p.Get(a.sub(a.Routes.Classes), a.ClassesShow).Name("classes.get")
	p.Post(a.sub(a.Routes.Classes), a.ClassesPost).Name("classes.post")
	p.Get(a.sub(a.Routes.Teachers), a.TeachersShow).Name("teachers.get")
	p.Post(a.sub(a.Routes.Teachers), a.TeachersPost).Name("teachers.post")
	p.Post(a.sub(a.Routes.Teachers)+"/:id", a.TeacherUpdate).Name("teachers.update")
}

// sub strips the dashboard prefix so the route mounts inside the group.
func (a *Controller) sub(path string) string {
	return path[len(a.Routes.Dashboard):]
}

func (a *Controller) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		a.Logger.Error("console request %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).SendString(http.StatusText(code))
}
