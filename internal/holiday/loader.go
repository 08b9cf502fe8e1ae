package holiday

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrHTTPGet  = errors.New("did not get 200 OK when downloading dataset")
	ErrNoURL    = errors.New("source has no download URL")
	ErrNoHeader = errors.New("dataset is empty")
	ErrDecode   = errors.New("dataset is not valid in its declared encoding")
)

// replacementChar is U+FFFD as emitted by x/text decoders for invalid input
var replacementChar = []byte("\ufffd")

// strictDecoder fails instead of substituting U+FFFD for undecodable bytes
type strictDecoder struct {
	transform.Transformer
}

func (d strictDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	nDst, nSrc, err = d.Transformer.Transform(dst, src, atEOF)
	if bytes.Contains(dst[:nDst], replacementChar) {
		return nDst, nSrc, ErrDecode
	}
	return nDst, nSrc, err
}

// decoderFor returns a strict transformer from the named encoding to UTF-8.
// UTF-8 input may carry a byte order mark.
func decoderFor(name string) (transform.Transformer, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownEncoding, name)
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return strictDecoder{unicode.BOMOverride(unicode.UTF8.NewDecoder())}, nil
	}
	return strictDecoder{enc.NewDecoder()}, nil
}

// Load decodes r with the source encoding, parses it as RFC 4180 CSV and
// normalizes every row in file order. Decode and CSV errors are fatal.
func Load(r io.Reader, src Source, names WeekdayNames) ([]Record, error) {
	dec, err := decoderFor(src.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.Comma = ','
	cr.LazyQuotes = false
	cr.TrimLeadingSpace = false
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", src.Name, ErrNoHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", src.Name, err)
	}

	binding, err := BindHeader(header, src)
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s row: %w", src.Name, err)
		}
		records = append(records, Normalize(binding.Row(row), src, names))
	}
	return records, nil
}

// Fetch issues a single GET for url. The caller closes the body.
func Fetch(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrHTTPGet, resp.Status)
	}
	return resp.Body, nil
}

// LoadSource downloads and loads the dataset of src
func LoadSource(ctx context.Context, client *http.Client, src Source, names WeekdayNames) ([]Record, error) {
	body, err := Fetch(ctx, client, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
	}
	defer func() { _ = body.Close() }()

	return Load(body, src, names)
}
