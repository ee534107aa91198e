package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	admin "github.com/goliatone/go-school-admin"
)

type messageResponse struct {
	Message string `json:"message"`
}

// ListSessions fetches the academic sessions offered at login. It does not
// need a token.
func (c *Client) ListSessions(ctx context.Context) ([]admin.LoginSession, error) {
	var sessions []admin.LoginSession
	err := c.do(ctx, request{method: http.MethodGet, path: "/sessions"}, &sessions)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// ProbeSession asks the API whether token is still accepted. Any 2xx
// answer counts as accepted.
func (c *Client) ProbeSession(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   "/sessions",
		token:  token,
	}, nil)
}

// Exchange posts credentials to /login.
func (c *Client) Exchange(ctx context.Context, msg admin.LoginMessage) (admin.LoginResult, error) {
	body, err := c.jsonBody(msg)
	if err != nil {
		return admin.LoginResult{}, err
	}

	var result admin.LoginResult
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/login",
		body:        body,
		contentType: "application/json",
	}, &result)
	if err != nil {
		return admin.LoginResult{}, err
	}

	if result.Token == "" || result.Admin.IsZero() {
		return admin.LoginResult{}, errLoginResponse
	}
	return result, nil
}

// ListStudents returns every student.
func (c *Client) ListStudents(ctx context.Context) ([]admin.Student, error) {
	var students []admin.Student
	if err := c.do(ctx, request{method: http.MethodGet, path: "/students", auth: true}, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// ListClasses returns every class with its sections.
func (c *Client) ListClasses(ctx context.Context) ([]admin.Class, error) {
	var classes []admin.Class
	if err := c.do(ctx, request{method: http.MethodGet, path: "/classes", auth: true}, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// ListTeachers returns every teacher.
func (c *Client) ListTeachers(ctx context.Context) ([]admin.Teacher, error) {
	var teachers []admin.Teacher
	if err := c.do(ctx, request{method: http.MethodGet, path: "/teachers", auth: true}, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// AddClass creates a class section and returns the API message.
func (c *Client) AddClass(ctx context.Context, in NewClass) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	body, err := c.jsonBody(in)
	if err != nil {
		return "", err
	}

	var res messageResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/addclasses",
		body:        body,
		contentType: "application/json",
		auth:        true,
	}, &res)
	return res.Message, err
}

// AddStudent uploads a student with an optional photo.
func (c *Client) AddStudent(ctx context.Context, in NewStudent, photo *Photo) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	if err := photo.Validate(); err != nil {
		return "", err
	}

	age := ""
	if in.Age > 0 {
		age = strconv.Itoa(in.Age)
	}

	return c.sendForm(ctx, http.MethodPost, "/addstudents", []formField{
		{"admissionNo", in.AdmissionNo},
		{"name", in.Name},
		{"age", age},
		{"class", in.Class},
		{"section", in.Section},
	}, photo)
}

// AddTeacher uploads a teacher with an optional photo.
func (c *Client) AddTeacher(ctx context.Context, in TeacherInput, photo *Photo) (string, error) {
	if err := c.validateTeacher(in, photo); err != nil {
		return "", err
	}
	return c.sendForm(ctx, http.MethodPost, "/addteachers", c.teacherFields(in), photo)
}

// UpdateTeacher patches teacher id. A nil photo keeps the current one.
func (c *Client) UpdateTeacher(ctx context.Context, id int64, in TeacherInput, photo *Photo) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("invalid teacher id %d", id)
	}
	if err := c.validateTeacher(in, photo); err != nil {
		return "", err
	}
	return c.sendForm(ctx, http.MethodPatch, "/teachers/"+strconv.FormatInt(id, 10), c.teacherFields(in), photo)
}

func (c *Client) validateTeacher(in TeacherInput, photo *Photo) error {
	if err := in.validate(c.phoneRegion); err != nil {
		return err
	}
	return photo.Validate()
}

func (c *Client) teacherFields(in TeacherInput) []formField {
	return []formField{
		{"name", in.Name},
		{"mobileNo", NormalizeMobile(in.MobileNo, c.phoneRegion)},
		{"email", in.Email},
	}
}

type formField struct {
	name  string
	value string
}

func (c *Client) sendForm(ctx context.Context, method, path string, fields []formField, photo *Photo) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	if photo != nil {
		filename := photo.Filename
		if filename == "" {
			filename = "photo"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filename))
		h.Set("Content-Type", photo.MediaType())
		part, err := w.CreatePart(h)
		if err != nil {
			return "", fmt.Errorf("create photo part: %w", err)
		}
		if _, err := part.Write(photo.Data); err != nil {
			return "", fmt.Errorf("write photo: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	var res messageResponse
	err := c.do(ctx, request{
		method:      method,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
		auth:        true,
	}, &res)
	return res.Message, err
}
