package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/goliatone/go-school-admin/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestAddClass(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/addclasses", r.URL.Path)
		var body client.NewClass
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, client.NewClass{Name: "6", Section: "B"}, body)
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Class added successfully"})
	}, client.WithTokenSource(staticTokens{token: "tok"}))

	msg, err := c.AddClass(context.Background(), client.NewClass{Name: "6", Section: "B"})
	require.NoError(t, err)
	assert.Equal(t, "Class added successfully", msg)
}

func TestAddClassValidation(t *testing.T) {
	c, err := client.New("")
	require.NoError(t, err)

	_, err = c.AddClass(context.Background(), client.NewClass{Section: "A"})
	assert.Equal(t, "Class name is required", client.ValidationMessage(err))

	_, err = c.AddClass(context.Background(), client.NewClass{Name: "6"})
	assert.Equal(t, "Section is required", client.ValidationMessage(err))
}

func TestAddStudentMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/addstudents", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(2<<20))
		assert.Equal(t, "A9", r.FormValue("admissionNo"))
		assert.Equal(t, "12", r.FormValue("age"))
		assert.Equal(t, "B", r.FormValue("section"))

		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, pngHeader, data)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		writeJSON(w, http.StatusCreated, map[string]string{"message": "Student added successfully"})
	}, client.WithTokenSource(staticTokens{token: "tok"}))

	msg, err := c.AddStudent(context.Background(),
		client.NewStudent{AdmissionNo: "A9", Name: "Ben", Age: 12, Class: "6", Section: "B"},
		&client.Photo{Filename: "ben.png", Data: pngHeader},
	)
	require.NoError(t, err)
	assert.Equal(t, "Student added successfully", msg)
}

func TestAddStudentValidation(t *testing.T) {
	c, err := client.New("")
	require.NoError(t, err)

	_, err = c.AddStudent(context.Background(), client.NewStudent{Name: "Ben"}, nil)
	assert.Equal(t, "Admission number, name, class, and section are required", client.ValidationMessage(err))
}

func TestPhotoValidation(t *testing.T) {
	var nilPhoto *client.Photo
	assert.NoError(t, nilPhoto.Validate())

	gif := &client.Photo{Data: []byte("GIF89a....")}
	assert.Equal(t, "Please upload a PNG or JPEG image", client.ValidationMessage(gif.Validate()))

	big := &client.Photo{ContentType: "image/jpeg", Data: make([]byte, client.MaxPhotoBytes+1)}
	assert.Equal(t, "Photo must be less than 1MB", client.ValidationMessage(big.Validate()))

	ok := &client.Photo{ContentType: "image/jpeg; charset=binary", Data: []byte{0xff, 0xd8}}
	assert.NoError(t, ok.Validate())
}

func TestTeacherValidation(t *testing.T) {
	cases := []struct {
		name  string
		input client.TeacherInput
		want  string
	}{
		{"missing name", client.TeacherInput{Email: "t@s.co"}, "Name is required"},
		{"missing email", client.TeacherInput{Name: "Tom"}, "Email is required"},
		{"bad email", client.TeacherInput{Name: "Tom", Email: "nope"}, "Invalid email format"},
		{"bad mobile", client.TeacherInput{Name: "Tom", Email: "t@s.co", MobileNo: "12"}, "Invalid mobile number"},
		{"valid", client.TeacherInput{Name: "Tom", Email: "t@s.co", MobileNo: "+1 650 253 0000"}, ""},
		{"no mobile", client.TeacherInput{Name: "Tom", Email: "t@s.co"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.Validate()
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.want, client.ValidationMessage(err))
		})
	}
}

func TestUpdateTeacher(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/admin/teachers/3", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "+16502530000", r.FormValue("mobileNo"))
		_, _, err := r.FormFile("photo")
		assert.ErrorIs(t, err, http.ErrMissingFile)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Teacher updated successfully"})
	}, client.WithTokenSource(staticTokens{token: "tok"}))

	msg, err := c.UpdateTeacher(context.Background(), 3,
		client.TeacherInput{Name: "Tom", Email: "t@s.co", MobileNo: "(650) 253-0000"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Teacher updated successfully", msg)
}

func TestAddTeacherRejectsBadPhoto(t *testing.T) {
	c, err := client.New("", client.WithTokenSource(staticTokens{token: "tok"}))
	require.NoError(t, err)

	_, err = c.AddTeacher(context.Background(),
		client.TeacherInput{Name: "Tom", Email: "t@s.co"},
		&client.Photo{ContentType: "application/pdf", Data: []byte("%PDF")})
	assert.Equal(t, "Please upload a PNG or JPEG image", client.ErrorMessage(err, "Failed to add teacher"))
}
