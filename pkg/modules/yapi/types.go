package yapi

import (
	"bytes"

	"github.com/spf13/cast"

	"github.com/shaowenchen/yapi-mcp-server/pkg/jsonx"
)

// Text is a string field that also accepts numbers and booleans.
// Values that cannot be represented as text decode to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := jsonx.Unmarshal(data, &v); err != nil {
		*t = ""
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		s = ""
	}
	*t = Text(s)
	return nil
}

// Number is an integer field that also accepts numeric strings.
// Anything else decodes to 0.
type Number int64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := jsonx.Unmarshal(data, &v); err != nil {
		*n = 0
		return nil
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		i = 0
	}
	*n = Number(i)
	return nil
}

// Flag holds a YApi "required" marker. YApi encodes it as the string "1" or
// "0"; only a JSON string is kept, every other JSON type decodes to "".
type Flag string

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	var s string
	if err := jsonx.Unmarshal(data, &s); err != nil {
		*f = ""
		return nil
	}
	*f = Flag(s)
	return nil
}

// Set reports whether the flag is exactly "1"
func (f Flag) Set() bool {
	return f == "1"
}

// Items is a list field that tolerates a non-array value (decodes to empty)
// and drops entries that do not decode into T.
type Items[T any] []T

// UnmarshalJSON implements json.Unmarshaler
func (l *Items[T]) UnmarshalJSON(data []byte) error {
	var raw []jsonx.RawMessage
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make(Items[T], 0, len(raw))
	for _, r := range raw {
		var v T
		if err := jsonx.Unmarshal(r, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// RequestParam is one entry of req_query or req_params
type RequestParam struct {
	Name     Text `json:"name"`
	Required Flag `json:"required"`
	Desc     Text `json:"desc"`
	Example  Text `json:"example"`
}

// RequestHeader is one entry of req_headers
type RequestHeader struct {
	Name     Text `json:"name"`
	Value    Text `json:"value"`
	Required Flag `json:"required"`
	Desc     Text `json:"desc"`
	Example  Text `json:"example"`
}

// InterfaceRecord is the interface payload returned by /api/interface/get.
// No field is guaranteed to be present.
type InterfaceRecord struct {
	ID           Number               `json:"_id"`
	Title        Text                 `json:"title"`
	Method       Text                 `json:"method"`
	Path         Text                 `json:"path"`
	Desc         Text                 `json:"desc"`
	Status       Text                 `json:"status"`
	Markdown     Text                 `json:"markdown"`
	ReqQuery     Items[RequestParam]  `json:"req_query"`
	ReqParams    Items[RequestParam]  `json:"req_params"`
	ReqHeaders   Items[RequestHeader] `json:"req_headers"`
	ReqBodyType  Text                 `json:"req_body_type"`
	ReqBodyOther Text                 `json:"req_body_other"`
	ReqBodyForm  jsonx.RawMessage     `json:"req_body_form"`
	ResBodyType  Text                 `json:"res_body_type"`
	ResBody      Text                 `json:"res_body"`
	ResBodyOther Text                 `json:"res_body_other"`
	ProjectID    Number               `json:"project_id"`
	CatID        Number               `json:"catid"`
	UID          Number               `json:"uid"`
	AddTime      Number               `json:"add_time"`
	UpTime       Number               `json:"up_time"`
}

// hasForm reports whether req_body_form carries a value other than null
func (r *InterfaceRecord) hasForm() bool {
	trimmed := bytes.TrimSpace(r.ReqBodyForm)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// ParameterDescriptor is a normalized query or path parameter
type ParameterDescriptor struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// HeaderDescriptor is a normalized request header
type HeaderDescriptor struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// RequestBody describes the request body. Schema is set for json bodies with
// a schema string, Form for form bodies.
type RequestBody struct {
	Type   string           `json:"type"`
	Schema *Decoded         `json:"schema,omitempty"`
	Form   jsonx.RawMessage `json:"form,omitempty"`
}

// RequestSection groups everything the caller sends
type RequestSection struct {
	Params  []ParameterDescriptor `json:"params"`
	Headers []HeaderDescriptor    `json:"headers"`
	Body    RequestBody           `json:"body"`
}

// ResponseSection groups the response example and schema
type ResponseSection struct {
	Type    string   `json:"type"`
	Example *Decoded `json:"example,omitempty"`
	Schema  *Decoded `json:"schema,omitempty"`
}

// FormattedInterface is the stable shape returned by the interface tools
type FormattedInterface struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Method      string          `json:"method"`
	Path        string          `json:"path"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Request     RequestSection  `json:"request"`
	Response    ResponseSection `json:"response"`
	Markdown    string          `json:"markdown"`
	ProjectID   int64           `json:"project_id"`
	CatID       int64           `json:"catid"`
	UID         int64           `json:"uid"`
	AddTime     int64           `json:"add_time"`
	UpTime      int64           `json:"up_time"`
}

// InterfaceLookup is the lookup-by-url result
type InterfaceLookup struct {
	FormattedInterface
	SourceURL  string `json:"source_url"`
	YApiServer string `json:"yapi_server"`
}

// ParsedInterfaceURL holds the pieces of a YApi interface page URL
type ParsedInterfaceURL struct {
	BaseURL     string
	ProjectID   string
	InterfaceID string
}

// envelope is the YApi response wrapper
type envelope struct {
	ErrCode *int             `json:"errcode"`
	ErrMsg  Text             `json:"errmsg"`
	Data    jsonx.RawMessage `json:"data"`
}
