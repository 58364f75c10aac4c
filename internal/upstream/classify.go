package upstream

import "net/http"

// Classifier maps a response status and raw body onto the error taxonomy.
// A nil return means the body should be decoded as the success payload.
type Classifier func(status int, body []byte) error

// Classify is the default Classifier.
func Classify(status int, body []byte) error {
	message := string(body)
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return NewError(KindNotFound, message, status)
	case status >= 400 && status < 500:
		return NewError(KindClientError, message, status)
	default:
		// 5xx, plus any 1xx/3xx that reached us without being followed.
		return NewError(KindServerError, ServerErrorPrefix+message, status)
	}
}
