package aufguss_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	aufguss "aufgussplan/internal/aufguss/service"
	"aufgussplan/internal/upload"
)

var errBodyTooLarge = errors.New("request body too large")

// RequestContext is everything a handler reads from a request, parsed once.
// Form bodies, multipart bodies and JSON objects all end up in Fields.
type RequestContext struct {
	Method string
	Query  url.Values
	Fields aufguss.Fields
	Files  map[string]*multipart.FileHeader
	Header http.Header
}

func NewRequestContext(w http.ResponseWriter, r *http.Request) (*RequestContext, error) {
	rc := &RequestContext{
		Method: r.Method,
		Query:  r.URL.Query(),
		Fields: aufguss.Fields{},
		Files:  map[string]*multipart.FileHeader{},
		Header: r.Header,
	}
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodDelete || r.Method == http.MethodOptions {
		return rc, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxSize+(1<<20))

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, bodyError(err)
		}
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				rc.Fields[key] = values[0]
			}
		}
		for key, files := range r.MultipartForm.File {
			if len(files) > 0 && files[0].Filename != "" {
				rc.Files[key] = files[0]
			}
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		for key := range r.PostForm {
			rc.Fields[key] = r.PostForm.Get(key)
		}
	default:
		if err := decodeJSONFields(r.Body, rc.Fields); err != nil {
			return nil, bodyError(err)
		}
	}
	return rc, nil
}

// decodeJSONFields flattens the scalar members of a JSON object. An empty
// body is an empty object.
func decodeJSONFields(body io.Reader, fields aufguss.Fields) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			fields[key] = ""
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		case bool:
			if v {
				fields[key] = "1"
			} else {
				fields[key] = "0"
			}
		}
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "too large") {
		return errBodyTooLarge
	}
	return fmt.Errorf("parse body: %w", err)
}

// ID reads the id from the query string or, failing that, the body.
func (rc *RequestContext) ID(key string) string {
	if v := strings.TrimSpace(rc.Query.Get(key)); v != "" {
		return v
	}
	return rc.Fields.Get(key)
}
