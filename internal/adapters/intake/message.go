package intake

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

// decodeEncodedHeader decodes RFC 2047 encoded words. Charsets beyond
// UTF-8 are resolved through the IANA MIME index.
func decodeEncodedHeader(value string) (string, error) {
	if !strings.Contains(value, "=?") {
		return value, nil
	}

	dec := mime.WordDecoder{
		CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
			enc, err := ianaindex.MIME.Encoding(charset)
			if err != nil || enc == nil {
				return nil, fmt.Errorf("unsupported charset %q", charset)
			}
			return enc.NewDecoder().Reader(input), nil
		},
	}
	return dec.DecodeHeader(value)
}

// parseSubmission turns a mail message into a job submission: the subject
// is the title, the text body is the description and the amount header
// prices the job. A missing amount header leaves the amount at zero; an
// unparseable one becomes NaN so the amount rules flag it as invalid.
func parseSubmission(sender string, msg *mail.Message, amountHeader string) (*core.JobSubmission, error) {
	title, err := decodeEncodedHeader(msg.Header.Get("Subject"))
	if err != nil {
		title = msg.Header.Get("Subject")
	}

	description, err := extractPostingText(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract posting text: %w", err)
	}

	amount := 0.0
	if raw := msg.Header.Get(amountHeader); raw != "" {
		amount, err = strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			amount = math.NaN()
		}
	}

	return &core.JobSubmission{
		PosterEmail: sender,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Source:      "smtp",
		SubmittedAt: time.Now(),
	}, nil
}

// extractPostingText extracts the text content from a mail message.
// For multipart messages it collects the text/plain parts.
func extractPostingText(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var textContent bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return whatever text was collected before the bad part
			if textContent.Len() > 0 {
				return textContent.String(), nil
			}
			return "", err
		}

		partContentType := part.Header.Get("Content-Type")
		if strings.Contains(strings.ToLower(partContentType), "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		}
		// Attachments and nested multiparts are not posting text
	}

	if textContent.Len() > 0 {
		return textContent.String(), nil
	}
	return "[no text content found in multipart message]", nil
}
