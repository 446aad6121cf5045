package invoice_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/export"
	invoiceHandler "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	renderer, err := render.NewRenderer()
	require.NoError(t, err)

	exporter, err := export.NewService(export.Config{SettleDelay: time.Millisecond, Scale: 1}, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/invoices", invoiceHandler.NewHandler(renderer, exporter, importer.NewService()).Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func documentBody(t *testing.T, mutate func(d *invoice.Document)) *bytes.Reader {
	t.Helper()

	doc := invoice.Default(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	if mutate != nil {
		mutate(doc)
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	return bytes.NewReader(data)
}

func TestHandler_Default(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/invoices/default")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var doc invoice.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Len(t, doc.Items, 2)
	assert.Equal(t, invoice.LocaleID, doc.Locale)
	assert.NoError(t, doc.Validate())
}

func TestHandler_Themes(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/invoices/themes")
	require.NoError(t, err)
	defer resp.Body.Close()

	var themes []map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&themes))
	require.Len(t, themes, len(invoice.Themes))
	assert.Equal(t, invoice.Themes[0].Primary, themes[0]["primaryColor"])
}

func TestHandler_Exports(t *testing.T) {
	type testCase struct {
		name            string
		path            string
		mutate          func(d *invoice.Document)
		wantStatus      int
		wantContentType string
		check           func(t *testing.T, resp *http.Response, body []byte)
	}

	tests := []testCase{
		{
			name:            "Preview",
			path:            "/invoices/preview",
			wantStatus:      http.StatusOK,
			wantContentType: "text/html; charset=utf-8",
			check: func(t *testing.T, _ *http.Response, body []byte) {
				assert.Contains(t, string(body), render.PreviewClass)
				assert.Contains(t, string(body), "Rp 2.000.000")
				assert.NotContains(t, string(body), "<!DOCTYPE html>")
			},
		},
		{
			name:            "PreviewStandalone",
			path:            "/invoices/preview?standalone=1",
			wantStatus:      http.StatusOK,
			wantContentType: "text/html; charset=utf-8",
			check: func(t *testing.T, _ *http.Response, body []byte) {
				assert.Contains(t, string(body), "<!DOCTYPE html>")
				assert.NotContains(t, string(body), "window.print()")
			},
		},
		{
			name:            "Print",
			path:            "/invoices/print",
			wantStatus:      http.StatusOK,
			wantContentType: "text/html; charset=utf-8",
			check: func(t *testing.T, _ *http.Response, body []byte) {
				assert.Contains(t, string(body), "size: A4")
				assert.Contains(t, string(body), "window.print()")
			},
		},
		{
			name:            "PDF",
			path:            "/invoices/pdf",
			wantStatus:      http.StatusOK,
			wantContentType: "application/pdf",
			check: func(t *testing.T, resp *http.Response, body []byte) {
				assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
				assert.Equal(t, `inline; filename="invoice-INV-001.pdf"`, resp.Header.Get("Content-Disposition"))
			},
		},
		{
			name:            "PNG",
			path:            "/invoices/png",
			wantStatus:      http.StatusOK,
			wantContentType: "image/png",
			check: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Regexp(t, regexp.MustCompile(`^attachment; filename="invoice-\d+\.png"$`), resp.Header.Get("Content-Disposition"))

				img, err := png.Decode(bytes.NewReader(body))
				require.NoError(t, err)
				assert.Equal(t, 794, img.Bounds().Dx())
			},
		},
		{
			name: "InvalidQuantity",
			path: "/invoices/png",
			mutate: func(d *invoice.Document) {
				d.Items[1].Quantity = 0
			},
			wantStatus:      http.StatusUnprocessableEntity,
			wantContentType: "application/json",
			check: func(t *testing.T, _ *http.Response, body []byte) {
				var got struct {
					Fields map[string]string `json:"fields"`
				}
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Contains(t, got.Fields, "items[1].quantity")
			},
		},
	}

	srv := newServer(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+tt.path, "application/json", documentBody(t, tt.mutate))
			require.NoError(t, err)
			defer resp.Body.Close()

			var body bytes.Buffer
			_, err = body.ReadFrom(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantContentType, resp.Header.Get("Content-Type"))
			tt.check(t, resp, body.Bytes())
		})
	}
}

func TestHandler_RejectsNonJSON(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/invoices/preview", "text/plain", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func upload(t *testing.T, url, contentType string, data []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="upload"`)
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	require.NoError(t, err)

	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)

	return resp
}

func TestHandler_UploadImage(t *testing.T) {
	var pngData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	tests := []struct {
		name        string
		contentType string
		data        []byte
		wantStatus  int
	}{
		{"Accepted", "image/png", pngData.Bytes(), http.StatusOK},
		{"NotAnImage", "text/plain", []byte("hello"), http.StatusUnsupportedMediaType},
		{"TooLarge", "image/png", make([]byte, invoice.MaxImageSize+1), http.StatusRequestEntityTooLarge},
	}

	srv := newServer(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upload(t, srv.URL+"/invoices/images", tt.contentType, tt.data)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusOK {
				var got map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
				assert.True(t, strings.HasPrefix(got["dataUri"], "data:image/png;base64,"))
			}
		})
	}
}

func TestHandler_ImportItems(t *testing.T) {
	srv := newServer(t)

	resp := upload(t, srv.URL+"/invoices/items/import", "text/csv", []byte("Deskripsi;Jumlah;Harga\nJasa;2;1.000,00\n"))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []invoice.LineItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "2000", items[0].Total().String())

	bad := upload(t, srv.URL+"/invoices/items/import", "text/csv", []byte("nothing useful"))
	defer bad.Body.Close()

	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}
