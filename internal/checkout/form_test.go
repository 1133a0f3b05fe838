package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"family-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFormSubmitter_Submit(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "OK response", status: http.StatusOK},
		{name: "Error status still counts as delivered", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received map[string]string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
				assert.NoError(t, r.ParseForm())

				received = map[string]string{
					FieldOrderer:    r.PostForm.Get(FieldOrderer),
					FieldTotal:      r.PostForm.Get(FieldTotal),
					FieldPickupDate: r.PostForm.Get(FieldPickupDate),
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			submitter := NewHTTPFormSubmitter(server.URL, nil, zerolog.Nop())
			err := submitter.Submit(context.Background(), &FormPayload{
				Orderer:    "爸爸",
				Lines:      []model.OrderLine{{Name: "油條", Category: model.CategoryChineseBreakfast, Price: 20, Quantity: 1, Subtotal: 20}},
				Total:      20,
				PickupDate: "2026-10-20",
			})

			require.NoError(t, err)
			assert.Equal(t, "爸爸", received[FieldOrderer])
			assert.Equal(t, "20", received[FieldTotal])
			assert.Equal(t, "2026-10-20", received[FieldPickupDate])
		})
	}
}

func TestHTTPFormSubmitter_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewHTTPFormSubmitter(url, nil, zerolog.Nop()).Submit(context.Background(), &FormPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to submit order form")
}

func TestNewHTTPFormSubmitter_DefaultEndpoint(t *testing.T) {
	s := NewHTTPFormSubmitter("", nil, zerolog.Nop())
	assert.Equal(t, DefaultFormEndpoint, s.endpoint)
	assert.NotNil(t, s.client)
}
