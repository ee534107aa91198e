package console

import (
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	admin "github.com/goliatone/go-school-admin"
	"github.com/goliatone/go-school-admin/client"
	"github.com/goliatone/go-school-admin/roster"
)

type studentRow struct {
	AdmissionNo string
	Name        string
	Age         int
	Class       string
	Section     string
	PhotoURL    string
}

type teacherRow struct {
	ID       int64
	Name     string
	MobileNo string
	Email    string
	PhotoURL string
}

// render adds the values every dashboard page shares.
func (a *Controller) render(c *fiber.Ctx, view string, data map[string]any) error {
	data = admin.MergeTemplateData(c.UserContext(), data)
	data["routes"] = a.Routes
	data["path"] = c.Path()
	return c.Render(view, data)
}

// Home shows the metrics and the session the admin signed into.
func (a *Controller) Home(c *fiber.Ctx) error {
	data := map[string]any{
		"metrics": admin.DashboardMetrics(),
	}

	sessionName := admin.UnknownSessionName
	sessions, err := a.API.ListSessions(c.UserContext())
	if err != nil {
		data["error"] = client.ErrorMessage(err, "Failed to fetch session name")
	} else {
		sessionName = admin.SessionName(sessions, currentAdmin(c).CurrentSessionID)
	}
	data["sessionName"] = sessionName

	return a.render(c, a.Views.Home, data)
}

// StudentsShow lists students narrowed by the roster filter in the query.
func (a *Controller) StudentsShow(c *fiber.Ctx) error {
	ctx := c.UserContext()

	filter := roster.Filter{}
	if err := c.QueryParser(&filter); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if c.Query("clear") != "" {
		filter.Clear()
	}

	data := map[string]any{}

	students, err := a.API.ListStudents(ctx)
	if err != nil {
		if a.handleAPIError(c, err) {
			return a.toLogin(c)
		}
		data["error"] = client.ErrorMessage(err, "Failed to fetch students")
	}

	classes, err := a.API.ListClasses(ctx)
	if err != nil {
		if a.handleAPIError(c, err) {
			return a.toLogin(c)
		}
		if _, set := data["error"]; !set {
			data["error"] = client.ErrorMessage(err, "Failed to fetch classes")
		}
	}

	data["sections"] = filter.Reconcile(classes)
	data["classNames"] = roster.ClassNames(classes)
	data["filter"] = filter
	data["filtered"] = !filter.IsZero()
	data["students"] = a.studentRows(filter.Apply(students))
	data["total"] = len(students)

	return a.render(c, a.Views.ViewStudents, data)
}

// AddStudentShow renders the new student form.
func (a *Controller) AddStudentShow(c *fiber.Ctx) error {
	return a.renderAddStudent(c, fiber.StatusOK, client.NewStudent{}, "", "")
}

// AddStudentPost uploads the student with an optional photo.
func (a *Controller) AddStudentPost(c *fiber.Ctx) error {
	payload := client.NewStudent{}
	if err := c.BodyParser(&payload); err != nil {
		return a.renderAddStudent(c, fiber.StatusBadRequest, payload, "Invalid student form", "")
	}

	photo, err := formPhoto(c)
	if err != nil {
		return a.renderAddStudent(c, fiber.StatusBadRequest, payload, err.Error(), "")
	}

	msg, err := a.API.AddStudent(c.UserContext(), payload, photo)
	if err != nil {
		if a.handleAPIError(c, err) {
			return a.toLogin(c)
		}
		return a.renderAddStudent(c, fiber.StatusUnprocessableEntity, payload, client.ErrorMessage(err, "Failed to add student"), "")
	}

	return a.renderAddStudent(c, fiber.StatusOK, client.NewStudent{}, "", msg)
}

func (a *Controller) renderAddStudent(c *fiber.Ctx, status int, record client.NewStudent, errMsg, success string) error {
	classes, err := a.API.ListClasses(c.UserContext())
	if err != nil {
		if a.handleAPIError(c, err) {
			return a.toLogin(c)
		}
		if errMsg == "" {
			errMsg = client.ErrorMessage(err, "Failed to fetch classes")
		}
	}

	if record.Class == "" && len(classes) > 0 {
		record.Class = classes[0].Name
	}
	filter := roster.Filter{Class: record.Class, Section: record.Section}
	sections := filter.Reconcile(classes)
	if filter.Section == "" && len(sections) > 0 {
		filter.Section = sections[0]
	}
	record.Section = filter.Section

	c.Status(status)
	return a.render(c, a.Views.AddStudent, map[string]any{
		"record":     record,
		"classNames": roster.ClassNames(classes),
		"sections":   sections,
		"error":      errMsg,
		"success":    success,
	})
}

// ClassesShow lists classes.
func (a *Controller) ClassesShow(c *fiber.Ctx) error {
	return a.renderClasses(c, fiber.StatusOK, client.NewClass{}, "", c.Query("success"))
}

// ClassesPost adds a class section.
func (a *Controller) ClassesPost(c *fiber.Ctx) error {
	payload := client.NewClass{}
	if err := c.BodyParser(&payload); err != nil {
		return a.renderClasses(c, fiber.StatusBadRequest, payload, "Invalid class form", "")
	}

	msg, err := a.API.AddClass(c.UserContext(), payload)
	if err != nil {
		if a.handleAPIError(c, err) {
			return a.toLogin(c)
		}
		return a.renderClasses(c, fiber.StatusUnprocessableEntity, payload, client.ErrorMessage(err, "Failed to add class"), "")
	}

	return a.renderClasses(c, fiber.StatusOK, client.NewClass{}, "", msg)
}

func (a *Controller) renderClasses(c *fiber.Ctx, status int, record client.NewClass, errMsg, success string) error {
	classes, err := a.API.ListClasses(c.UserContext())
	if err != nil {
		if a.handleAPIError(c, err) {
			return a.toLogin(c)
		}
		if errMsg == "" {
			errMsg = client.ErrorMessage(err, "Failed to fetch classes")
		}
	}

	c.Status(status)
	return a.render(c, a.Views.Classes, map[string]any{
		"classes": classes,
		"record":  record,
		"error":   errMsg,
		"success": success,
	})
}

// TeachersShow lists teachers. With ?edit=<id> the edit form is prefilled.
func (a *Controller) TeachersShow(c *fiber.Ctx) error {
	return a.renderTeachers(c, fiber.StatusOK, nil, "", "")
}

// TeachersPost adds a teacher.
func (a *Controller) TeachersPost(c *fiber.Ctx) error {
	payload := client.TeacherInput{}
	if err := c.BodyParser(&payload); err != nil {
		return a.renderTeachers(c, fiber.StatusBadRequest, &payload, "Invalid teacher form", "")
	}

	photo, err := formPhoto(c)
	if err != nil {
		return a.renderTeachers(c, fiber.StatusBadRequest, &payload, err.Error(), "")
	}

	msg, err := a.API.AddTeacher(c.UserContext(), payload, photo)
	if err != nil {
		if a.handleAPIError(c, err) {
			return a.toLogin(c)
		}
		return a.renderTeachers(c, fiber.StatusUnprocessableEntity, &payload, client.ErrorMessage(err, "Failed to add teacher"), "")
	}

	return a.renderTeachers(c, fiber.StatusOK, nil, "", msg)
}

// TeacherUpdate patches a teacher. Browsers cannot send PATCH from a form.
func (a *Controller) TeacherUpdate(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid teacher id")
	}

	payload := client.TeacherInput{}
	if err := c.BodyParser(&payload); err != nil {
		return a.renderTeachers(c, fiber.StatusBadRequest, &payload, "Invalid teacher form", "")
	}

	photo, err := formPhoto(c)
	if err != nil {
		return a.renderTeachers(c, fiber.StatusBadRequest, &payload, err.Error(), "")
	}

	msg, err := a.API.UpdateTeacher(c.UserContext(), id, payload, photo)
	if err != nil {
		if a.handleAPIError(c, err) {
			return a.toLogin(c)
		}
		return a.renderTeachers(c, fiber.StatusUnprocessableEntity, &payload, client.ErrorMessage(err, "Failed to update teacher"), "")
	}

	return a.renderTeachers(c, fiber.StatusOK, nil, "", msg)
}

func (a *Controller) renderTeachers(c *fiber.Ctx, status int, record *client.TeacherInput, errMsg, success string) error {
	teachers, err := a.API.ListTeachers(c.UserContext())
	if err != nil {
		if a.handleAPIError(c, err) {
			return a.toLogin(c)
		}
		if errMsg == "" {
			errMsg = client.ErrorMessage(err, "Failed to fetch teachers")
		}
	}

	data := map[string]any{
		"teachers": a.teacherRows(teachers),
		"error":    errMsg,
		"success":  success,
	}

	if editID := int64(c.QueryInt("edit")); editID > 0 {
		for _, t := range teachers {
			if t.ID == editID {
				data["editing"] = teacherRow{
					ID:       t.ID,
					Name:     t.Name,
					MobileNo: t.MobileNo,
					Email:    t.Email,
					PhotoURL: a.API.AssetURL(t.Photo),
				}
			}
		}
	}
	if id := c.Params("id"); id != "" && record != nil {
		n, _ := strconv.ParseInt(id, 10, 64)
		data["editing"] = teacherRow{ID: n, Name: record.Name, MobileNo: record.MobileNo, Email: record.Email}
		record = nil
	}
	if record == nil {
		record = &client.TeacherInput{}
	}
	data["record"] = *record

	c.Status(status)
	return a.render(c, a.Views.Teachers, data)
}

func (a *Controller) studentRows(students []admin.Student) []studentRow {
	rows := make([]studentRow, 0, len(students))
	for _, s := range students {
		rows = append(rows, studentRow{
			AdmissionNo: s.AdmissionNo,
			Name:        s.Name,
			Age:         s.Age,
			Class:       s.Class,
			Section:     s.Section,
			PhotoURL:    a.API.AssetURL(s.Photo),
		})
	}
	return rows
}

func (a *Controller) teacherRows(teachers []admin.Teacher) []teacherRow {
	rows := make([]teacherRow, 0, len(teachers))
	for _, t := range teachers {
		rows = append(rows, teacherRow{
			ID:       t.ID,
			Name:     t.Name,
			MobileNo: t.MobileNo,
			Email:    t.Email,
			PhotoURL: a.API.AssetURL(t.Photo),
		})
	}
	return rows
}

// formPhoto reads the optional "photo" upload. Files are read one byte past
// the limit so the client can reject oversized photos.
func formPhoto(c *fiber.Ctx) (*client.Photo, error) {
	header, err := c.FormFile("photo")
	if err != nil || header.Size == 0 {
		return nil, nil
	}

	f, err := header.Open()
	if err != nil {
		return nil, errReadPhoto
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, client.MaxPhotoBytes+1))
	if err != nil {
		return nil, errReadPhoto
	}

	return &client.Photo{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

var errReadPhoto = errors.New("Unable to read photo")
