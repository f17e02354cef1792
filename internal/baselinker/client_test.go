package baselinker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCallSendsFormEncodedRequest(t *testing.T) {
	var gotMethod, gotParams, gotToken, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotMethod = r.PostFormValue("method")
		gotParams = r.PostFormValue("parameters")
		gotToken = r.Header.Get("X-BLToken")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"status": "SUCCESS"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-token", 5*time.Second)
	body, err := client.Call(context.Background(), "getOrders", map[string]any{"date_confirmed_from": 123})

	require.NoError(t, err)
	assert.Equal(t, "getOrders", gotMethod)
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.JSONEq(t, `{"date_confirmed_from": 123}`, gotParams)
	assert.JSONEq(t, `{"status": "SUCCESS"}`, string(body))
}

func TestClientCallNilParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "{}", r.PostFormValue("parameters"))
		w.Write([]byte(`{"status": "SUCCESS"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t", 5*time.Second)
	_, err := client.Call(context.Background(), "getInventories", nil)
	require.NoError(t, err)
}

func TestClientCallHTTPErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t", 5*time.Second)
	_, err := client.Call(context.Background(), "getOrders", nil)

	var tErr *TransportError
	assert.ErrorAs(t, err, &tErr)
}

func TestClientCallUnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately unreachable

	client := NewClient(srv.URL, "t", time.Second)
	_, err := client.Call(context.Background(), "getOrders", nil)

	var tErr *TransportError
	assert.ErrorAs(t, err, &tErr)
}

func TestParseOrdersEnvelopeError(t *testing.T) {
	_, err := ParseOrders([]byte(`{"status": "ERROR", "error_message": "Invalid token"}`))

	var aErr *APIError
	require.ErrorAs(t, err, &aErr)
	assert.Contains(t, aErr.Error(), "Invalid token")
}

func TestParseOrdersEnvelopeErrorWithoutMessage(t *testing.T) {
	_, err := ParseOrders([]byte(`{"status": "ERROR"}`))

	var aErr *APIError
	require.ErrorAs(t, err, &aErr)
	assert.Contains(t, aErr.Error(), "unknown error")
}

func TestParseOrdersSkipsBadRecords(t *testing.T) {
	raw := `{
		"status": "SUCCESS",
		"orders": [
			{"order_id": "1", "date_confirmed": 100},
			{"order_number": "no-id"},
			{"order_id": "2", "date_confirmed": 200}
		]
	}`
	orders, err := ParseOrders([]byte(raw))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "1", orders[0].ID)
	assert.Equal(t, "2", orders[1].ID)
}

func TestParseOrdersUndecodableBody(t *testing.T) {
	_, err := ParseOrders([]byte(`not json`))

	var dErr *DecodeError
	assert.ErrorAs(t, err, &dErr)
}

func TestParseInventories(t *testing.T) {
	raw := `{
		"status": "SUCCESS",
		"inventories": [
			{"inventory_id": 307, "name": "Main"},
			{"inventory_id": "308", "name": "Outlet"}
		]
	}`
	inventories, err := ParseInventories([]byte(raw))
	require.NoError(t, err)
	require.Len(t, inventories, 2)
	assert.Equal(t, "307", inventories[0].ID)
	assert.Equal(t, "308", inventories[1].ID)
}

func TestParseProductIDPage(t *testing.T) {
	raw := `{
		"status": "SUCCESS",
		"products": {"101": {}, "102": {}, "103": {}}
	}`
	ids, err := ParseProductIDPage([]byte(raw))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"101", "102", "103"}, ids)
}

func TestParseProductDetailsInjectsID(t *testing.T) {
	raw := `{
		"status": "SUCCESS",
		"products": {
			"101": {"text_fields": {"name": "Mug"}, "stock": {"bl_1": 5}}
		}
	}`
	products, err := ParseProductDetails([]byte(raw))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "101", products[0].ID)
	assert.Equal(t, "Mug", products[0].Name)
	assert.Equal(t, 5, products[0].Quantity)
}

func TestParseStatusList(t *testing.T) {
	raw := `{
		"status": "SUCCESS",
		"statuses": [
			{"id": 1, "name": "New", "color": "#ff0000"},
			{"id": "2", "name": "Paid", "name_for_customer": "Payment received"}
		]
	}`
	catalog, err := ParseStatusList([]byte(raw))
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "New", catalog["1"].Name)
	assert.Equal(t, "Payment received", catalog["2"].CustomerName)
}

// envelope decoding must not depend on field order or extra fields
func TestCheckEnvelopeTolerant(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{
		"orders": []any{},
		"status": "SUCCESS",
		"extra":  42,
	})
	assert.NoError(t, checkEnvelope(payload))
}
