package yapi

import (
	"github.com/shaowenchen/yapi-mcp-server/pkg/jsonx"
)

const (
	defaultStatus      = "undone"
	defaultReqBodyType = "none"
	defaultResBodyType = "json"
	bodyTypeJSON       = "json"
	bodyTypeForm       = "form"
	locationQuery      = "query"
	locationPath       = "path"
)

// Decoded is the result of decoding an embedded JSON string: either the
// parsed value or, when the string is not valid JSON, the raw string.
type Decoded struct {
	value  interface{}
	raw    string
	parsed bool
}

// Decode parses s as JSON and falls back to the raw string on failure
func Decode(s string) Decoded {
	var v interface{}
	if err := jsonx.Unmarshal([]byte(s), &v); err != nil {
		return Decoded{raw: s}
	}
	return Decoded{value: v, raw: s, parsed: true}
}

// IsParsed reports whether the source string was valid JSON
func (d Decoded) IsParsed() bool {
	return d.parsed
}

// Value returns the parsed value, or nil for a raw result
func (d Decoded) Value() interface{} {
	return d.value
}

// Raw returns the source string
func (d Decoded) Raw() string {
	return d.raw
}

// MarshalJSON emits the parsed value, or the raw string as a JSON string
func (d Decoded) MarshalJSON() ([]byte, error) {
	if d.parsed {
		return jsonx.Marshal(d.value)
	}
	return jsonx.Marshal(d.raw)
}

func decodePtr(s string) *Decoded {
	d := Decode(s)
	return &d
}

// Format normalizes an interface record into a FormattedInterface. A nil
// record formats like an empty one.
func Format(rec *InterfaceRecord) FormattedInterface {
	if rec == nil {
		rec = &InterfaceRecord{}
	}

	status := string(rec.Status)
	if status == "" {
		status = defaultStatus
	}

	return FormattedInterface{
		ID:          int64(rec.ID),
		Title:       string(rec.Title),
		Method:      string(rec.Method),
		Path:        string(rec.Path),
		Description: string(rec.Desc),
		Status:      status,
		Request: RequestSection{
			Params:  extractParams(rec),
			Headers: extractHeaders(rec),
			Body:    extractRequestBody(rec),
		},
		Response:  extractResponse(rec),
		Markdown:  string(rec.Markdown),
		ProjectID: int64(rec.ProjectID),
		CatID:     int64(rec.CatID),
		UID:       int64(rec.UID),
		AddTime:   int64(rec.AddTime),
		UpTime:    int64(rec.UpTime),
	}
}

// extractParams lists query parameters followed by path parameters.
// Path parameters are always required.
func extractParams(rec *InterfaceRecord) []ParameterDescriptor {
	params := make([]ParameterDescriptor, 0, len(rec.ReqQuery)+len(rec.ReqParams))

	for _, p := range rec.ReqQuery {
		params = append(params, ParameterDescriptor{
			Name:        string(p.Name),
			Location:    locationQuery,
			Required:    p.Required.Set(),
			Description: string(p.Desc),
			Example:     string(p.Example),
		})
	}

	for _, p := range rec.ReqParams {
		params = append(params, ParameterDescriptor{
			Name:        string(p.Name),
			Location:    locationPath,
			Required:    true,
			Description: string(p.Desc),
			Example:     string(p.Example),
		})
	}

	return params
}

func extractHeaders(rec *InterfaceRecord) []HeaderDescriptor {
	headers := make([]HeaderDescriptor, 0, len(rec.ReqHeaders))
	for _, h := range rec.ReqHeaders {
		headers = append(headers, HeaderDescriptor{
			Name:        string(h.Name),
			Value:       string(h.Value),
			Required:    h.Required.Set(),
			Description: string(h.Desc),
			Example:     string(h.Example),
		})
	}
	return headers
}

func extractRequestBody(rec *InterfaceRecord) RequestBody {
	body := RequestBody{Type: string(rec.ReqBodyType)}
	if body.Type == "" {
		body.Type = defaultReqBodyType
	}

	switch rec.ReqBodyType {
	case bodyTypeJSON:
		if rec.ReqBodyOther != "" {
			body.Schema = decodePtr(string(rec.ReqBodyOther))
		}
	case bodyTypeForm:
		if rec.hasForm() {
			body.Form = rec.ReqBodyForm
		}
	}

	return body
}

func extractResponse(rec *InterfaceRecord) ResponseSection {
	resp := ResponseSection{Type: string(rec.ResBodyType)}
	if resp.Type == "" {
		resp.Type = defaultResBodyType
	}

	// the example is only meaningful when the body is declared as json
	if rec.ResBodyType == bodyTypeJSON && rec.ResBody != "" {
		resp.Example = decodePtr(string(rec.ResBody))
	}
	if rec.ResBodyOther != "" {
		resp.Schema = decodePtr(string(rec.ResBodyOther))
	}

	return resp
}
