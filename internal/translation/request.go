package translation

import (
	"strings"

	"github.com/wanze/AppTranslator/internal/decoder"
)

// Endpoint paths relative to the service base URL.
const (
	EndpointUpload           = "upload"
	EndpointTranslateStrings = "translateStrings"
	EndpointTranslateXML     = "translateXML"
	EndpointTopTerms         = "getTopTerms"
	EndpointTermVariations   = "getTermVariations"
)

// Request is the JSON body posted to the translate endpoints.
type Request struct {
	LangFrom        string       `json:"lang_from"`
	LangTo          string       `json:"lang_to"`
	Decoder         decoder.Kind `json:"decoder"`
	DecoderSettings any          `json:"decoder_settings"`
	Strings         []string     `json:"strings,omitempty"`
	XMLFilename     string       `json:"xml_filename,omitempty"`
}

// Build produces the request for the given selection, languages and input
// together with the endpoint it must be posted to.
func Build(sel decoder.Selection, langs LanguagePair, payload Payload) (string, Request, error) {
	const op = "build request"

	if _, err := decoder.ParseKind(string(sel.Kind)); err != nil {
		return "", Request{}, Wrap(KindInvalidRequest, op, err)
	}
	if langs.Source == AutoDetect {
		return "", Request{}, Errorf(KindInvalidRequest, op, "source language was not resolved")
	}
	pair, err := langs.Normalize()
	if err != nil {
		return "", Request{}, Wrap(KindInvalidRequest, op, err)
	}
	settings, err := sel.Payload()
	if err != nil {
		return "", Request{}, Wrap(KindInvalidRequest, op, err)
	}

	req := Request{
		LangFrom:        pair.Source,
		LangTo:          pair.Target,
		Decoder:         sel.Kind,
		DecoderSettings: settings,
	}

	switch payload.Mode() {
	case ModeXML:
		if strings.TrimSpace(payload.Filename()) == "" {
			return "", Request{}, Errorf(KindInvalidRequest, op, "no uploaded XML file")
		}
		req.XMLFilename = payload.Filename()
		return EndpointTranslateXML, req, nil
	default:
		lines := payload.Lines()
		if len(lines) == 0 {
			return "", Request{}, Errorf(KindInvalidRequest, op, "no input strings")
		}
		req.Strings = lines
		return EndpointTranslateStrings, req, nil
	}
}
