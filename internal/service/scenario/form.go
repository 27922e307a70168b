package scenario

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Field is one multipart part. Filename is empty for plain values.
type Field struct {
	Name     string
	Filename string
	Data     []byte
}

// Form is an ordered multipart form in which every name occurs at most once. Set replaces
// an existing field in place instead of appending a duplicate.
type Form struct {
	fields []Field
}

func NewForm() *Form {
	return &Form{}
}

func (f *Form) Set(name, filename string, data []byte) {
	for i := range f.fields {
		if f.fields[i].Name == name {
			f.fields[i] = Field{Name: name, Filename: filename, Data: data}
			return
		}
	}
	f.fields = append(f.fields, Field{Name: name, Filename: filename, Data: data})
}

func (f *Form) SetValue(name, value string) {
	f.Set(name, "", []byte(value))
}

func (f *Form) Get(name string) (Field, bool) {
	for _, field := range f.fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func (f *Form) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

func (f *Form) Fields() []Field {
	return append([]Field{}, f.fields...)
}

// Encode renders the form as a multipart body and returns it with its content type.
func (f *Form) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		var (
			part io.Writer
			err  error
		)
		if field.Filename != "" {
			part, err = w.CreateFormFile(field.Name, field.Filename)
		} else {
			part, err = w.CreateFormField(field.Name)
		}
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", field.Name, err)
		}
		if _, err = part.Write(field.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", field.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
