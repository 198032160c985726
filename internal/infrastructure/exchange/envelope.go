package exchange

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// 名前空間
const (
	NamespaceSoap     = "http://schemas.xmlsoap.org/soap/envelope/"
	NamespaceTypes    = "http://schemas.microsoft.com/exchange/services/2006/types"
	NamespaceMessages = "http://schemas.microsoft.com/exchange/services/2006/messages"
)

var envelopeTag = []byte(`<Envelope xmlns="` + NamespaceSoap + `">`)

// Request SOAPで送信するEWS要求
type Request interface {
	Envelope() ([]byte, error)
}

// Response 解析済みのSOAP応答
type Response struct {
	Raw  []byte
	Body []byte
}

// Decode Body要素の中身をvに展開する
func (r *Response) Decode(v interface{}) error {
	if err := xml.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode soap body: %w", err)
	}
	return nil
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    struct {
		Inner []byte     `xml:",innerxml"`
		Fault *faultNode `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
	} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

type faultNode struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail *struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"detail"`
}

// parseResponse 応答を解析する。複数のエンベロープを含む場合は最初のものだけを使う
func parseResponse(content []byte, recovering func()) (*Response, error) {
	recoverMode := bytes.Count(content, envelopeTag) > 1
	if recoverMode && recovering != nil {
		recovering()
	}

	decoder := xml.NewDecoder(bytes.NewReader(content))
	decoder.Strict = !recoverMode

	var env responseEnvelope
	if err := decoder.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if f := env.Body.Fault; f != nil {
		fault := &SoapFault{Code: f.Code, Text: f.String}
		if f.Detail != nil {
			fault.Detail = string(bytes.TrimSpace(f.Detail.Inner))
		}
		return nil, fault
	}

	return &Response{Raw: content, Body: env.Body.Inner}, nil
}
