package extract

import (
	"bytes"
	"fmt"
	"strings"

	"docqa/internal/util"

	"github.com/ledongthuc/pdf"
)

// PDF extracts plain text from in-memory PDF bytes, page by page in page
// order. A page that cannot be decoded contributes nothing; only a document
// that cannot be opened at all is an error. A readable document with no text
// layer yields the empty string.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

func (PDF) Extract(data []byte) (text string, err error) {
	// The parser panics on some malformed files instead of returning an
	// error, and one bad document must not take down the whole batch.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
	}
	return util.SanitizeText(b.String()), nil
}
