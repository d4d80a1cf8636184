package http_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	accountmem "github.com/MrJamesThe3rd/conta/internal/account/memstore"
	contaHttp "github.com/MrJamesThe3rd/conta/internal/http"
	accountHandler "github.com/MrJamesThe3rd/conta/internal/http/account"
	"github.com/MrJamesThe3rd/conta/internal/importer"
	"github.com/MrJamesThe3rd/conta/internal/ledger"
	"github.com/MrJamesThe3rd/conta/internal/statement"
	transactionmem "github.com/MrJamesThe3rd/conta/internal/transaction/memstore"
)

func newRouter() http.Handler {
	accounts := accountmem.New()
	transactions := transactionmem.New()

	engine := ledger.NewEngine(accounts, transactions, ledger.WithLogger(slog.New(slog.DiscardHandler)))
	query := ledger.NewQuery(accounts, transactions)

	return contaHttp.New(contaHttp.Options{AllowedOrigins: []string{"https://app.example.com"}},
		accountHandler.NewHandler(engine, query, statement.NewService(query), importer.NewService(engine)))
}

func TestRouter(t *testing.T) {
	router := newRouter()

	type testCase struct {
		name       string
		req        func() *http.Request
		wantStatus int
		verify     func(t *testing.T, rec *httptest.ResponseRecorder)
	}

	tests := []testCase{
		{
			name:       "Healthz",
			req:        func() *http.Request { return httptest.NewRequest(http.MethodGet, "/healthz", nil) },
			wantStatus: http.StatusNoContent,
		},
		{
			name: "ListAccounts",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/accounts/list", nil)
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "[]\n", rec.Body.String())
			},
		},
		{
			name: "UnsupportedContentType",
			req: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/deposit", strings.NewReader("cpf=1"))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

				return req
			},
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name: "Preflight",
			req: func() *http.Request {
				req := httptest.NewRequest(http.MethodOptions, "/api/v1/accounts/transfer", nil)
				req.Header.Set("Origin", "https://app.example.com")
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)

				return req
			},
			verify: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Less(t, rec.Code, 300)
				assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.req())

			if tt.wantStatus != 0 {
				assert.Equal(t, tt.wantStatus, rec.Code)
			}

			if tt.verify != nil {
				tt.verify(t, rec)
			}
		})
	}
}
