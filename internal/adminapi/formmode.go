package adminapi

import (
	"io"
	"reflect"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"

	"github.com/nukesul/boody/internal/catalog"
)

// Multipart writes forward the operator's form verbatim. The payload
// structs below model the editable fields; formFields flattens one
// into the field map the upstream multipart endpoint expects.

// formFields converts a bound payload into multipart form fields.
// Nil pointer fields are skipped, so an edit only sends the fields the
// operator actually touched.
func formFields(payload interface{}) (map[string]string, error) {
	raw := map[string]interface{}{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "form",
		Result:  &raw,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(payload); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				continue
			}
			v = rv.Elem().Interface()
		}
		fields[k] = cast.ToString(v)
	}
	return fields, nil
}

// readUpload pulls an optional file out of the multipart request.
// Returns nil when the operator did not attach one.
func readUpload(c echo.Context, field string) (*catalog.Upload, error) {
	hdr, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	f, err := hdr.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &catalog.Upload{Field: field, Name: hdr.Filename, Content: content}, nil
}
